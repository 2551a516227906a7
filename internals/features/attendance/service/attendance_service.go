// file: internals/features/attendance/service/attendance_service.go
package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"eschoolku_backend/internals/features/attendance/model"
	membershipModel "eschoolku_backend/internals/features/eschools/membership/model"
	userModel "eschoolku_backend/internals/features/users/user/model"
	helper "eschoolku_backend/internals/helpers"
)

// AttendanceService: satu row per (eschool, member, tanggal). Record
// adalah insert-only; koreksi lewat UpdateAttendance, bukan upsert,
// supaya double-submit kelihatan sebagai conflict.
type AttendanceService struct {
	DB *gorm.DB

	// Now bisa di-override di test untuk mengunci window statistik.
	Now func() time.Time
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{DB: db, Now: time.Now}
}

// =========================================================
// RECORD (insert-only)
// =========================================================

type AttendanceEntry struct {
	MemberID  uuid.UUID
	IsPresent bool
	Notes     *string
}

type RecordAttendanceCmd struct {
	EschoolID  uuid.UUID
	RecorderID uuid.UUID
	Date       string // YYYY-MM-DD
	Entries    []AttendanceEntry
}

func (s *AttendanceService) RecordAttendance(ctx context.Context, cmd RecordAttendanceCmd) ([]model.AttendanceRecord, error) {
	if len(cmd.Entries) == 0 {
		return nil, helper.ErrValidation("entries tidak boleh kosong")
	}
	date, err := helper.ParseDate(cmd.Date)
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{}
	for _, e := range cmd.Entries {
		if seen[e.MemberID] {
			return nil, helper.ErrConflict("member yang sama muncul dua kali dalam satu batch")
		}
		seen[e.MemberID] = true
	}

	var out []model.AttendanceRecord
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roster []uuid.UUID
		if err := tx.Model(&membershipModel.Membership{}).
			Where("membership_eschool_id = ?", cmd.EschoolID).
			Pluck("membership_user_id", &roster).Error; err != nil {
			return err
		}
		rosterSet := make(map[uuid.UUID]bool, len(roster))
		for _, id := range roster {
			rosterSet[id] = true
		}
		if len(rosterSet) == 0 {
			return helper.ErrNotFound("eschool tidak ditemukan atau belum punya anggota")
		}

		for _, e := range cmd.Entries {
			if !rosterSet[e.MemberID] {
				return helper.ErrValidation("member bukan anggota eschool ini: " + e.MemberID.String())
			}
			var dup int64
			if err := tx.Model(&model.AttendanceRecord{}).
				Where("attendance_eschool_id = ? AND attendance_member_id = ? AND attendance_date = ?",
					cmd.EschoolID, e.MemberID, date).
				Count(&dup).Error; err != nil {
				return err
			}
			if dup > 0 {
				return helper.ErrConflict("absensi member untuk tanggal ini sudah tercatat")
			}
		}

		for _, e := range cmd.Entries {
			rec := model.AttendanceRecord{
				AttendanceEschoolID:  cmd.EschoolID,
				AttendanceMemberID:   e.MemberID,
				AttendanceDate:       date,
				AttendanceIsPresent:  e.IsPresent,
				AttendanceNotes:      e.Notes,
				AttendanceRecorderID: cmd.RecorderID,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// =========================================================
// UPDATE / DELETE
// =========================================================

type UpdateAttendanceCmd struct {
	IsPresent *bool
	Notes     *string
	Date      *string
}

func (s *AttendanceService) UpdateAttendance(ctx context.Context, id uuid.UUID, cmd UpdateAttendanceCmd) (*model.AttendanceRecord, error) {
	var out model.AttendanceRecord
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec model.AttendanceRecord
		if err := tx.First(&rec, "attendance_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("attendance record tidak ditemukan")
			}
			return err
		}

		if cmd.Date != nil && strings.TrimSpace(*cmd.Date) != "" {
			newDate, err := helper.ParseDate(*cmd.Date)
			if err != nil {
				return err
			}
			if !newDate.Equal(rec.AttendanceDate) {
				var dup int64
				if err := tx.Model(&model.AttendanceRecord{}).
					Where("attendance_eschool_id = ? AND attendance_member_id = ? AND attendance_date = ? AND attendance_id <> ?",
						rec.AttendanceEschoolID, rec.AttendanceMemberID, newDate, rec.AttendanceID).
					Count(&dup).Error; err != nil {
					return err
				}
				if dup > 0 {
					return helper.ErrConflict("absensi member untuk tanggal tujuan sudah tercatat")
				}
				rec.AttendanceDate = newDate
			}
		}
		if cmd.IsPresent != nil {
			rec.AttendanceIsPresent = *cmd.IsPresent
		}
		if cmd.Notes != nil {
			rec.AttendanceNotes = cmd.Notes
		}

		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AttendanceService) DeleteAttendance(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Where("attendance_id = ?", id).Delete(&model.AttendanceRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return helper.ErrNotFound("attendance record tidak ditemukan")
	}
	return nil
}

// =========================================================
// LIST
// =========================================================

func (s *AttendanceService) ListRecords(ctx context.Context, eschoolID uuid.UUID, dateFrom, dateTo string, paging helper.Paging) ([]model.AttendanceRecord, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.AttendanceRecord{}).
		Where("attendance_eschool_id = ?", eschoolID)

	if dateFrom != "" {
		t, err := helper.ParseDate(dateFrom)
		if err != nil {
			return nil, 0, err
		}
		q = q.Where("attendance_date >= ?", t)
	}
	if dateTo != "" {
		t, err := helper.ParseDate(dateTo)
		if err != nil {
			return nil, 0, err
		}
		q = q.Where("attendance_date <= ?", t)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.AttendanceRecord
	if err := q.
		Order("attendance_date DESC, attendance_created_at DESC").
		Limit(paging.Limit).
		Offset(paging.Offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// =========================================================
// STATISTICS (today / week / month)
// =========================================================

type StatBucket struct {
	Present    int `json:"present"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type AttendanceStatistics struct {
	Today StatBucket `json:"today"`
	Week  StatBucket `json:"week"`
	Month StatBucket `json:"month"`
}

// GetStatistics menghitung rolling window: today, minggu berjalan
// (mulai Senin), dan bulan kalender. Total = jumlah row tercatat di
// window, bukan roster; nol row berarti bucket nol, bukan error.
func (s *AttendanceService) GetStatistics(ctx context.Context, eschoolID uuid.UUID) (*AttendanceStatistics, error) {
	now := s.Now().UTC()
	today := helper.DateOnly(now)

	bucket := func(from, to time.Time) (StatBucket, error) {
		var rows []model.AttendanceRecord
		if err := s.DB.WithContext(ctx).
			Where("attendance_eschool_id = ? AND attendance_date >= ? AND attendance_date <= ?", eschoolID, from, to).
			Find(&rows).Error; err != nil {
			return StatBucket{}, err
		}
		present := 0
		for _, r := range rows {
			if r.AttendanceIsPresent {
				present++
			}
		}
		return StatBucket{
			Present:    present,
			Total:      len(rows),
			Percentage: helper.RoundPercent(int64(present), int64(len(rows))),
		}, nil
	}

	t, err := bucket(today, today)
	if err != nil {
		return nil, err
	}
	w, err := bucket(helper.WeekStart(today), today)
	if err != nil {
		return nil, err
	}
	m, err := bucket(helper.MonthStart(today), today)
	if err != nil {
		return nil, err
	}

	return &AttendanceStatistics{Today: t, Week: w, Month: m}, nil
}

// =========================================================
// ANALYTICS (historis)
// =========================================================

type DailySummary struct {
	Date       string `json:"date"`
	Present    int    `json:"present"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type MemberAttendance struct {
	MemberID   uuid.UUID `json:"member_id"`
	MemberName string    `json:"member_name"`
	Present    int       `json:"present"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
}

type WeekdayAnalysis struct {
	Weekday     int     `json:"weekday"` // ISO: 1=Senin .. 7=Minggu
	WeekdayName string  `json:"weekday_name"`
	Sessions    int     `json:"sessions"`
	AverageRate float64 `json:"average_rate"`
}

type OverallAnalytics struct {
	AttendanceRate float64 `json:"attendance_rate"`
	TotalPresent   int     `json:"total_present"`
	TotalRecords   int     `json:"total_records"`
}

type AttendanceAnalytics struct {
	Overall          OverallAnalytics   `json:"overall"`
	DailySummary     []DailySummary     `json:"daily_summary"`
	MemberAttendance []MemberAttendance `json:"member_attendance"`
	WeekdayAnalysis  []WeekdayAnalysis  `json:"weekday_analysis"`
}

var weekdayNames = map[int]string{
	1: "monday", 2: "tuesday", 3: "wednesday", 4: "thursday",
	5: "friday", 6: "saturday", 7: "sunday",
}

// GetAnalytics merangkum seluruh riwayat: rate keseluruhan, ringkasan
// per tanggal, ranking member (rate desc, member id asc — ordering
// deterministik untuk paging), dan rata-rata rate per hari (ISO weekday).
func (s *AttendanceService) GetAnalytics(ctx context.Context, eschoolID uuid.UUID) (*AttendanceAnalytics, error) {
	var rows []model.AttendanceRecord
	if err := s.DB.WithContext(ctx).
		Where("attendance_eschool_id = ?", eschoolID).
		Order("attendance_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	type tally struct{ present, total int }

	totalPresent := 0
	byDate := map[string]*tally{}
	byMember := map[uuid.UUID]*tally{}
	for _, r := range rows {
		if r.AttendanceIsPresent {
			totalPresent++
		}
		dk := r.AttendanceDate.Format(helper.DateLayout)
		if byDate[dk] == nil {
			byDate[dk] = &tally{}
		}
		byDate[dk].total++
		if r.AttendanceIsPresent {
			byDate[dk].present++
		}
		if byMember[r.AttendanceMemberID] == nil {
			byMember[r.AttendanceMemberID] = &tally{}
		}
		byMember[r.AttendanceMemberID].total++
		if r.AttendanceIsPresent {
			byMember[r.AttendanceMemberID].present++
		}
	}

	// daily_summary, urut tanggal naik
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	daily := make([]DailySummary, 0, len(dates))
	for _, d := range dates {
		t := byDate[d]
		daily = append(daily, DailySummary{
			Date:       d,
			Present:    t.present,
			Total:      t.total,
			Percentage: helper.RoundPercent(int64(t.present), int64(t.total)),
		})
	}

	// member_attendance, rate desc lalu member id asc
	memberIDs := make([]uuid.UUID, 0, len(byMember))
	for id := range byMember {
		memberIDs = append(memberIDs, id)
	}
	names, err := s.memberNames(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	members := make([]MemberAttendance, 0, len(byMember))
	for id, t := range byMember {
		members = append(members, MemberAttendance{
			MemberID:   id,
			MemberName: names[id],
			Present:    t.present,
			Total:      t.total,
			Percentage: helper.RoundPercent(int64(t.present), int64(t.total)),
		})
	}
	sort.Slice(members, func(i, j int) bool {
		ri := float64(members[i].Present) / float64(members[i].Total)
		rj := float64(members[j].Present) / float64(members[j].Total)
		if ri != rj {
			return ri > rj
		}
		return members[i].MemberID.String() < members[j].MemberID.String()
	})

	// weekday_analysis: rata-rata rate harian per ISO weekday
	type wdAgg struct {
		sessions int
		rateSum  float64
	}
	byWeekday := map[int]*wdAgg{}
	for _, d := range dates {
		t := byDate[d]
		day, _ := time.Parse(helper.DateLayout, d)
		wd := helper.ISOWeekday(day)
		if byWeekday[wd] == nil {
			byWeekday[wd] = &wdAgg{}
		}
		byWeekday[wd].sessions++
		byWeekday[wd].rateSum += float64(t.present) / float64(t.total) * 100
	}
	weekdays := make([]WeekdayAnalysis, 0, len(byWeekday))
	for wd := 1; wd <= 7; wd++ {
		agg, ok := byWeekday[wd]
		if !ok {
			continue
		}
		avg := agg.rateSum / float64(agg.sessions)
		weekdays = append(weekdays, WeekdayAnalysis{
			Weekday:     wd,
			WeekdayName: weekdayNames[wd],
			Sessions:    agg.sessions,
			AverageRate: float64(int(avg*10+0.5)) / 10,
		})
	}

	return &AttendanceAnalytics{
		Overall: OverallAnalytics{
			AttendanceRate: helper.Percent1(int64(totalPresent), int64(len(rows))),
			TotalPresent:   totalPresent,
			TotalRecords:   len(rows),
		},
		DailySummary:     daily,
		MemberAttendance: members,
		WeekdayAnalysis:  weekdays,
	}, nil
}

// MemberRate: present/total satu member di satu eschool (untuk view
// student dan rollup dashboard).
func (s *AttendanceService) MemberRate(ctx context.Context, eschoolID, memberID uuid.UUID) (present, total int, err error) {
	var rows []model.AttendanceRecord
	if err = s.DB.WithContext(ctx).
		Where("attendance_eschool_id = ? AND attendance_member_id = ?", eschoolID, memberID).
		Find(&rows).Error; err != nil {
		return 0, 0, err
	}
	for _, r := range rows {
		if r.AttendanceIsPresent {
			present++
		}
	}
	return present, len(rows), nil
}

func (s *AttendanceService) memberNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	if len(ids) == 0 {
		return names, nil
	}
	var users []userModel.User
	if err := s.DB.WithContext(ctx).Find(&users, "user_id IN ?", ids).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.UserID] = u.UserName
	}
	return names, nil
}
