// file: internals/features/dashboard/service/dashboard_service_test.go
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
	attendanceModel "eschoolku_backend/internals/features/attendance/model"
	attendanceService "eschoolku_backend/internals/features/attendance/service"
	eschoolModel "eschoolku_backend/internals/features/eschools/eschool/model"
	membershipModel "eschoolku_backend/internals/features/eschools/membership/model"
	kasModel "eschoolku_backend/internals/features/kas/model"
	kasService "eschoolku_backend/internals/features/kas/service"
	schoolModel "eschoolku_backend/internals/features/school/schools/model"
	userModel "eschoolku_backend/internals/features/users/user/model"
	helper "eschoolku_backend/internals/helpers"
	helperAuth "eschoolku_backend/internals/helpers/auth"
)

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
		&kasModel.KasRecord{},
		&kasModel.KasPayment{},
		&attendanceModel.AttendanceRecord{},
	))
	return db
}

func newDashboardService(db *gorm.DB) *DashboardService {
	svc := NewDashboardService(db)
	svc.Now = func() time.Time { return fixedNow }
	svc.Kas.Now = svc.Now
	svc.Attendance.Now = svc.Now
	return svc
}

func seedSchool(t *testing.T, db *gorm.DB) schoolModel.School {
	t.Helper()
	s := schoolModel.School{SchoolName: "SMA 1", SchoolSlug: "sma-1-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&s).Error)
	return s
}

var userSeq int

func seedUser(t *testing.T, db *gorm.DB, schoolID uuid.UUID, role string) userModel.User {
	t.Helper()
	userSeq++
	u := userModel.User{
		UserName:     fmt.Sprintf("User %d", userSeq),
		UserEmail:    fmt.Sprintf("user%d-%s@example.com", userSeq, uuid.NewString()[:8]),
		UserPassword: "x",
		UserRole:     role,
		UserSchoolID: schoolID,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedEschool(t *testing.T, db *gorm.DB, schoolID uuid.UUID, monthlyKas int) eschoolModel.Eschool {
	t.Helper()
	e := eschoolModel.Eschool{
		EschoolName:             "Eschool " + uuid.NewString()[:4],
		EschoolSchoolID:         schoolID,
		EschoolMonthlyKasAmount: monthlyKas,
		EschoolIsActive:         true,
	}
	require.NoError(t, db.Create(&e).Error)
	return e
}

func seedMembership(t *testing.T, db *gorm.DB, eschoolID, userID uuid.UUID, role string) {
	t.Helper()
	require.NoError(t, db.Create(&membershipModel.Membership{
		MembershipUserID:    userID,
		MembershipEschoolID: eschoolID,
		MembershipRole:      role,
	}).Error)
}

func payDues(t *testing.T, svc *DashboardService, eschoolID, memberID uuid.UUID, amount int) {
	t.Helper()
	_, err := svc.Kas.RecordIncome(context.Background(), kasService.RecordIncomeCmd{
		EschoolID:   eschoolID,
		RecorderID:  memberID,
		Description: "Iuran Maret",
		Date:        "2026-03-10",
		Payments:    []kasService.PaymentInput{{MemberID: memberID, Amount: amount, Month: 3, Year: 2026}},
	})
	require.NoError(t, err)
}

func attend(t *testing.T, svc *DashboardService, eschoolID, recorderID uuid.UUID, date string, entries []attendanceService.AttendanceEntry) {
	t.Helper()
	_, err := svc.Attendance.RecordAttendance(context.Background(), attendanceService.RecordAttendanceCmd{
		EschoolID:  eschoolID,
		RecorderID: recorderID,
		Date:       date,
		Entries:    entries,
	})
	require.NoError(t, err)
}

func TestStudentOverviewAggregatesAcrossEschools(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardService(db)
	ctx := context.Background()

	school := seedSchool(t, db)
	student := seedUser(t, db, school.SchoolID, constants.RoleSiswa)

	futsal := seedEschool(t, db, school.SchoolID, 50000)
	basket := seedEschool(t, db, school.SchoolID, 30000)
	seedMembership(t, db, futsal.EschoolID, student.UserID, constants.EschoolRoleMember)
	seedMembership(t, db, basket.EschoolID, student.UserID, constants.EschoolRoleBendahara)

	// Futsal: 2 sesi, hadir 1; iuran Maret lunas
	attend(t, svc, futsal.EschoolID, student.UserID, "2026-03-16",
		[]attendanceService.AttendanceEntry{{MemberID: student.UserID, IsPresent: true}})
	attend(t, svc, futsal.EschoolID, student.UserID, "2026-03-17",
		[]attendanceService.AttendanceEntry{{MemberID: student.UserID, IsPresent: false}})
	payDues(t, svc, futsal.EschoolID, student.UserID, 50000)

	// Basket: tanpa sesi, iuran belum dibayar

	viewer := helperAuth.Viewer{UserID: student.UserID, SchoolID: school.SchoolID, BaseRole: constants.RoleSiswa}
	out, err := svc.StudentOverview(ctx, viewer)
	require.NoError(t, err)

	require.Len(t, out.Eschools, 2)
	byID := map[uuid.UUID]int{}
	for i, row := range out.Eschools {
		byID[row.EschoolID] = i
	}
	fRow := out.Eschools[byID[futsal.EschoolID]]
	bRow := out.Eschools[byID[basket.EschoolID]]

	assert.Equal(t, 50.0, fRow.AttendanceRate)
	assert.True(t, fRow.CurrentMonthPaid)
	assert.EqualValues(t, 0, fRow.KasOutstanding)

	assert.False(t, bRow.CurrentMonthPaid)
	assert.EqualValues(t, 30000, bRow.KasOutstanding)

	// Rata-rata dibobot jumlah record: 1/2 = 50, basket tanpa sesi tidak menyeret
	assert.Equal(t, 50.0, out.AverageAttendanceRate)
	assert.EqualValues(t, 50000, out.TotalKasPaid)
	assert.EqualValues(t, 30000, out.TotalKasOutstanding)
}

func TestCoordinatorViewRequiresRole(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardService(db)
	ctx := context.Background()

	school := seedSchool(t, db)
	coord := seedUser(t, db, school.SchoolID, constants.RoleGuru)
	member := seedUser(t, db, school.SchoolID, constants.RoleSiswa)
	esc := seedEschool(t, db, school.SchoolID, 50000)
	seedMembership(t, db, esc.EschoolID, coord.UserID, constants.EschoolRoleKoordinator)
	seedMembership(t, db, esc.EschoolID, member.UserID, constants.EschoolRoleMember)

	// Member biasa → forbidden
	_, err := svc.CoordinatorView(ctx, helperAuth.Viewer{UserID: member.UserID, SchoolID: school.SchoolID, BaseRole: constants.RoleSiswa}, esc.EschoolID)
	require.Error(t, err)
	assert.True(t, helper.IsForbidden(err))

	// Koordinator boleh
	view, err := svc.CoordinatorView(ctx, helperAuth.Viewer{UserID: coord.UserID, SchoolID: school.SchoolID, BaseRole: constants.RoleGuru}, esc.EschoolID)
	require.NoError(t, err)
	assert.Len(t, view.Roster, 2)
	require.NotNil(t, view.Kas)
	require.NotNil(t, view.Attendance)

	// Staff sekolah pemilik juga boleh tanpa membership
	staff := seedUser(t, db, school.SchoolID, constants.RoleStaff)
	_, err = svc.CoordinatorView(ctx, helperAuth.Viewer{UserID: staff.UserID, SchoolID: school.SchoolID, BaseRole: constants.RoleStaff}, esc.EschoolID)
	require.NoError(t, err)
}

func TestTreasurerViewListsOutstanding(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardService(db)
	ctx := context.Background()

	school := seedSchool(t, db)
	bendahara := seedUser(t, db, school.SchoolID, constants.RoleSiswa)
	m1 := seedUser(t, db, school.SchoolID, constants.RoleSiswa)
	esc := seedEschool(t, db, school.SchoolID, 50000)
	seedMembership(t, db, esc.EschoolID, bendahara.UserID, constants.EschoolRoleBendahara)
	seedMembership(t, db, esc.EschoolID, m1.UserID, constants.EschoolRoleMember)

	payDues(t, svc, esc.EschoolID, bendahara.UserID, 50000)

	view, err := svc.TreasurerView(ctx, helperAuth.Viewer{UserID: bendahara.UserID, SchoolID: school.SchoolID, BaseRole: constants.RoleSiswa}, esc.EschoolID)
	require.NoError(t, err)

	require.Len(t, view.Outstanding, 1)
	assert.Equal(t, m1.UserID, view.Outstanding[0].UserID)
	assert.Equal(t, 50000, view.Outstanding[0].Amount)
	assert.Equal(t, 1, view.Summary.CurrentMonth.PaidCount)
	assert.Equal(t, 1, view.Summary.CurrentMonth.UnpaidCount)
}

func TestStaffRollupWeightedAverages(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardService(db)
	ctx := context.Background()

	school := seedSchool(t, db)
	staff := seedUser(t, db, school.SchoolID, constants.RoleStaff)

	// Eschool A: 2 anggota, semua hadir, semua bayar
	a := seedEschool(t, db, school.SchoolID, 50000)
	a1 := seedUser(t, db, school.SchoolID, constants.RoleSiswa)
	a2 := seedUser(t, db, school.SchoolID, constants.RoleSiswa)
	seedMembership(t, db, a.EschoolID, a1.UserID, constants.EschoolRoleMember)
	seedMembership(t, db, a.EschoolID, a2.UserID, constants.EschoolRoleMember)
	attend(t, svc, a.EschoolID, a1.UserID, "2026-03-16", []attendanceService.AttendanceEntry{
		{MemberID: a1.UserID, IsPresent: true},
		{MemberID: a2.UserID, IsPresent: true},
	})
	payDues(t, svc, a.EschoolID, a1.UserID, 50000)
	payDues(t, svc, a.EschoolID, a2.UserID, 50000)

	// Eschool B: 1 anggota, hadir 0%, belum bayar
	b := seedEschool(t, db, school.SchoolID, 50000)
	b1 := seedUser(t, db, school.SchoolID, constants.RoleSiswa)
	seedMembership(t, db, b.EschoolID, b1.UserID, constants.EschoolRoleMember)
	attend(t, svc, b.EschoolID, b1.UserID, "2026-03-16", []attendanceService.AttendanceEntry{
		{MemberID: b1.UserID, IsPresent: false},
	})

	// Eschool C: nol anggota, tidak boleh masuk penyebut rata-rata
	seedEschool(t, db, school.SchoolID, 50000)

	viewer := helperAuth.Viewer{UserID: staff.UserID, SchoolID: school.SchoolID, BaseRole: constants.RoleStaff}
	out, err := svc.StaffRollup(ctx, viewer, school.SchoolID)
	require.NoError(t, err)

	assert.Equal(t, 3, out.EschoolCount)
	assert.Equal(t, 3, out.MemberCount)
	assert.EqualValues(t, 100000, out.TotalBalance)

	// Bobot anggota: (100*2 + 0*1) / 3 = 66.7
	assert.Equal(t, 66.7, out.AverageAttendanceRate)
	assert.Equal(t, 66.7, out.AverageCollectionRate)
}

func TestStaffRollupDegradesForOtherSchool(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardService(db)
	ctx := context.Background()

	schoolA := seedSchool(t, db)
	schoolB := seedSchool(t, db)
	staffB := seedUser(t, db, schoolB.SchoolID, constants.RoleStaff)
	seedEschool(t, db, schoolA.SchoolID, 50000)

	// Staff sekolah lain: payload kosong, bukan error
	out, err := svc.StaffRollup(ctx, helperAuth.Viewer{UserID: staffB.UserID, SchoolID: schoolB.SchoolID, BaseRole: constants.RoleStaff}, schoolA.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, schoolA.SchoolID, out.SchoolID)
	assert.Equal(t, 0, out.EschoolCount)
	assert.Empty(t, out.Eschools)

	// Siswa juga bukan staff → tetap kosong
	siswa := seedUser(t, db, schoolA.SchoolID, constants.RoleSiswa)
	out, err = svc.StaffRollup(ctx, helperAuth.Viewer{UserID: siswa.UserID, SchoolID: schoolA.SchoolID, BaseRole: constants.RoleSiswa}, schoolA.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, 0, out.EschoolCount)
}
