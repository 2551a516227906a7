// file: internals/features/attendance/service/attendance_service_test.go
package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"eschoolku_backend/internals/constants"
	"eschoolku_backend/internals/features/attendance/model"
	eschoolModel "eschoolku_backend/internals/features/eschools/eschool/model"
	membershipModel "eschoolku_backend/internals/features/eschools/membership/model"
	schoolModel "eschoolku_backend/internals/features/school/schools/model"
	userModel "eschoolku_backend/internals/features/users/user/model"
	helper "eschoolku_backend/internals/helpers"
)

// Rabu, 18 Maret 2026. Window: minggu berjalan mulai Senin 16 Maret,
// bulan berjalan mulai 1 Maret.
var fixedNow = time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&schoolModel.School{},
		&userModel.User{},
		&eschoolModel.Eschool{},
		&membershipModel.Membership{},
		&model.AttendanceRecord{},
	))
	return db
}

func newAttendanceService(db *gorm.DB) *AttendanceService {
	svc := NewAttendanceService(db)
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

type fixture struct {
	eschool eschoolModel.Eschool
	members []userModel.User
}

var userSeq int

func seedFixture(t *testing.T, db *gorm.DB, memberCount int) fixture {
	t.Helper()
	school := schoolModel.School{SchoolName: "SMA 1", SchoolSlug: "sma-1-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&school).Error)

	esc := eschoolModel.Eschool{
		EschoolName:     "Futsal",
		EschoolSchoolID: school.SchoolID,
		EschoolIsActive: true,
	}
	require.NoError(t, db.Create(&esc).Error)

	f := fixture{eschool: esc}
	for i := 0; i < memberCount; i++ {
		userSeq++
		u := userModel.User{
			UserName:     fmt.Sprintf("Member %02d", userSeq),
			UserEmail:    fmt.Sprintf("member%d-%s@example.com", userSeq, uuid.NewString()[:8]),
			UserPassword: "x",
			UserRole:     constants.RoleSiswa,
			UserSchoolID: school.SchoolID,
		}
		require.NoError(t, db.Create(&u).Error)
		require.NoError(t, db.Create(&membershipModel.Membership{
			MembershipUserID:    u.UserID,
			MembershipEschoolID: esc.EschoolID,
			MembershipRole:      constants.EschoolRoleMember,
		}).Error)
		f.members = append(f.members, u)
	}
	return f
}

func record(t *testing.T, svc *AttendanceService, f fixture, date string, present ...bool) []model.AttendanceRecord {
	t.Helper()
	entries := make([]AttendanceEntry, 0, len(present))
	for i, p := range present {
		entries = append(entries, AttendanceEntry{MemberID: f.members[i].UserID, IsPresent: p})
	}
	recs, err := svc.RecordAttendance(context.Background(), RecordAttendanceCmd{
		EschoolID:  f.eschool.EschoolID,
		RecorderID: f.members[0].UserID,
		Date:       date,
		Entries:    entries,
	})
	require.NoError(t, err)
	return recs
}

func TestRecordAttendanceRejectsDuplicateDate(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	f := seedFixture(t, db, 1)

	record(t, svc, f, "2026-03-18", true)

	_, err := svc.RecordAttendance(context.Background(), RecordAttendanceCmd{
		EschoolID:  f.eschool.EschoolID,
		RecorderID: f.members[0].UserID,
		Date:       "2026-03-18",
		Entries:    []AttendanceEntry{{MemberID: f.members[0].UserID, IsPresent: false}},
	})
	require.Error(t, err)
	assert.True(t, helper.IsConflict(err))
}

func TestRecordAttendanceRejectsBatchDuplicateMember(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	f := seedFixture(t, db, 1)

	_, err := svc.RecordAttendance(context.Background(), RecordAttendanceCmd{
		EschoolID:  f.eschool.EschoolID,
		RecorderID: f.members[0].UserID,
		Date:       "2026-03-18",
		Entries: []AttendanceEntry{
			{MemberID: f.members[0].UserID, IsPresent: true},
			{MemberID: f.members[0].UserID, IsPresent: false},
		},
	})
	require.Error(t, err)
	assert.True(t, helper.IsConflict(err))
}

func TestRecordAttendanceRejectsNonMember(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	f := seedFixture(t, db, 1)

	_, err := svc.RecordAttendance(context.Background(), RecordAttendanceCmd{
		EschoolID:  f.eschool.EschoolID,
		RecorderID: f.members[0].UserID,
		Date:       "2026-03-18",
		Entries:    []AttendanceEntry{{MemberID: uuid.New(), IsPresent: true}},
	})
	require.Error(t, err)
	assert.True(t, helper.IsValidation(err))
}

func TestUpdateAttendanceDateMoveConflict(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	f := seedFixture(t, db, 1)
	ctx := context.Background()

	record(t, svc, f, "2026-03-16", true)
	recs := record(t, svc, f, "2026-03-18", false)

	// Pindah ke tanggal yang sudah terisi → conflict
	target := "2026-03-16"
	_, err := svc.UpdateAttendance(ctx, recs[0].AttendanceID, UpdateAttendanceCmd{Date: &target})
	require.Error(t, err)
	assert.True(t, helper.IsConflict(err))

	// Pindah ke tanggal kosong + koreksi kehadiran
	free := "2026-03-17"
	present := true
	updated, err := svc.UpdateAttendance(ctx, recs[0].AttendanceID, UpdateAttendanceCmd{Date: &free, IsPresent: &present})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-17", updated.AttendanceDate.Format(helper.DateLayout))
	assert.True(t, updated.AttendanceIsPresent)
}

func TestDeleteAttendanceNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)

	err := svc.DeleteAttendance(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, helper.IsNotFound(err))
}

func TestStatisticsEmptyIsAllZero(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	f := seedFixture(t, db, 1)

	stats, err := svc.GetStatistics(context.Background(), f.eschool.EschoolID)
	require.NoError(t, err)
	assert.Equal(t, StatBucket{}, stats.Today)
	assert.Equal(t, StatBucket{}, stats.Week)
	assert.Equal(t, StatBucket{}, stats.Month)
}

func TestStatisticsWindows(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	f := seedFixture(t, db, 2)

	// Hari ini: 1 dari 2 hadir
	record(t, svc, f, "2026-03-18", true, false)
	// Senin minggu ini: semua hadir
	record(t, svc, f, "2026-03-16", true, true)
	// Awal bulan: tidak ada yang hadir
	record(t, svc, f, "2026-03-03", false, false)
	// Bulan lalu: tidak boleh ikut dihitung
	record(t, svc, f, "2026-02-10", true, true)

	stats, err := svc.GetStatistics(context.Background(), f.eschool.EschoolID)
	require.NoError(t, err)

	assert.Equal(t, StatBucket{Present: 1, Total: 2, Percentage: 50}, stats.Today)
	assert.Equal(t, StatBucket{Present: 3, Total: 4, Percentage: 75}, stats.Week)
	assert.Equal(t, StatBucket{Present: 3, Total: 6, Percentage: 50}, stats.Month)
}

func TestAnalyticsDeterministicOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	f := seedFixture(t, db, 2)
	ctx := context.Background()

	// member[0] hadir 2/2, member[1] hadir 1/2
	record(t, svc, f, "2026-03-16", true, true)  // Senin
	record(t, svc, f, "2026-03-18", true, false) // Rabu

	a, err := svc.GetAnalytics(ctx, f.eschool.EschoolID)
	require.NoError(t, err)

	assert.Equal(t, 3, a.Overall.TotalPresent)
	assert.Equal(t, 4, a.Overall.TotalRecords)
	assert.Equal(t, 75.0, a.Overall.AttendanceRate)

	require.Len(t, a.DailySummary, 2)
	assert.Equal(t, "2026-03-16", a.DailySummary[0].Date)
	assert.Equal(t, "2026-03-18", a.DailySummary[1].Date)
	assert.Equal(t, 100, a.DailySummary[0].Percentage)
	assert.Equal(t, 50, a.DailySummary[1].Percentage)

	// Ranking: rate tertinggi dulu
	require.Len(t, a.MemberAttendance, 2)
	assert.Equal(t, f.members[0].UserID, a.MemberAttendance[0].MemberID)
	assert.Equal(t, f.members[0].UserName, a.MemberAttendance[0].MemberName)
	assert.Equal(t, 100, a.MemberAttendance[0].Percentage)
	assert.Equal(t, 50, a.MemberAttendance[1].Percentage)

	// Weekday: Senin 100%, Rabu 50%
	require.Len(t, a.WeekdayAnalysis, 2)
	assert.Equal(t, 1, a.WeekdayAnalysis[0].Weekday)
	assert.Equal(t, "monday", a.WeekdayAnalysis[0].WeekdayName)
	assert.Equal(t, 100.0, a.WeekdayAnalysis[0].AverageRate)
	assert.Equal(t, 3, a.WeekdayAnalysis[1].Weekday)
	assert.Equal(t, "wednesday", a.WeekdayAnalysis[1].WeekdayName)
	assert.Equal(t, 50.0, a.WeekdayAnalysis[1].AverageRate)
}

func TestMemberRate(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	f := seedFixture(t, db, 2)

	record(t, svc, f, "2026-03-16", true, false)
	record(t, svc, f, "2026-03-18", true, true)

	present, total, err := svc.MemberRate(context.Background(), f.eschool.EschoolID, f.members[1].UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, present)
	assert.Equal(t, 2, total)
}
