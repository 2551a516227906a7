// file: internals/helpers/timewindow.go
package helper

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const DateLayout = "2006-01-02" // format tanggal di seluruh API

// ParseDate parse "YYYY-MM-DD"; error 400 kalau formatnya salah.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "tanggal harus format YYYY-MM-DD")
	}
	return t, nil
}

// DateOnly memotong jam/menit/detik (pakai lokasi waktu t sendiri).
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart: Senin dari minggu yang memuat t (window "week" statistik).
func WeekStart(t time.Time) time.Time {
	d := DateOnly(t)
	wd := int(d.Weekday())
	if wd == 0 { // Minggu → mundur 6 hari
		wd = 7
	}
	return d.AddDate(0, 0, -(wd - 1))
}

// MonthStart: tanggal 1 bulan kalender yang memuat t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// ISOWeekday: 1=Senin ... 7=Minggu.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// RoundPercent: round(present/total*100); total 0 → 0, bukan NaN.
func RoundPercent(present, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(float64(present)/float64(total)*100 + 0.5)
}

// Percent1: persentase 1 desimal; total 0 → 0.
func Percent1(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	raw := float64(part) / float64(total) * 100
	return float64(int(raw*10+0.5)) / 10
}
