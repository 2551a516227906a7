// file: internals/features/eschools/eschool/service/eschool_service_test.go
package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"eschoolku_backend/internals/constants"
	"eschoolku_backend/internals/features/eschools/eschool/model"
	membershipModel "eschoolku_backend/internals/features/eschools/membership/model"
	schoolModel "eschoolku_backend/internals/features/school/schools/model"
	userModel "eschoolku_backend/internals/features/users/user/model"
	helper "eschoolku_backend/internals/helpers"
)

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
		&model.Eschool{},
		&membershipModel.Membership{},
	))
	return db
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

func TestCreateEschoolCompoundWithNewUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewEschoolService(db)
	ctx := context.Background()

	school := seedSchool(t, db)

	esc, err := svc.CreateEschool(ctx, CreateEschoolCmd{
		Name:             "Basket",
		SchoolID:         school.SchoolID,
		MonthlyKasAmount: 25000,
		ScheduleDays:     []string{"monday", "thursday"},
		NewCoordinator:   &NewUserInput{Name: "Pak Budi", Email: "budi@example.com", Password: "rahasia123"},
		NewTreasurer:     &NewUserInput{Name: "Siti", Email: "siti@example.com", Password: "rahasia123"},
	})
	require.NoError(t, err)
	require.NotNil(t, esc.EschoolCoordinatorID)
	require.NotNil(t, esc.EschoolTreasurerID)

	// User baru dapat base role default
	var coord userModel.User
	require.NoError(t, db.First(&coord, "user_id = ?", *esc.EschoolCoordinatorID).Error)
	assert.Equal(t, constants.RoleGuru, coord.UserRole)
	assert.Equal(t, school.SchoolID, coord.UserSchoolID)

	var treasurer userModel.User
	require.NoError(t, db.First(&treasurer, "user_id = ?", *esc.EschoolTreasurerID).Error)
	assert.Equal(t, constants.RoleSiswa, treasurer.UserRole)

	// Membership ikut terbentuk dalam transaksi yang sama
	var roles []string
	require.NoError(t, db.Model(&membershipModel.Membership{}).
		Where("membership_eschool_id = ?", esc.EschoolID).
		Order("membership_role ASC").
		Pluck("membership_role", &roles).Error)
	assert.Equal(t, []string{constants.EschoolRoleBendahara, constants.EschoolRoleKoordinator}, roles)
}

func TestCreateEschoolRollsBackOnDuplicateTreasurerEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewEschoolService(db)
	ctx := context.Background()

	school := seedSchool(t, db)
	existing := seedUser(t, db, school.SchoolID, constants.RoleSiswa)

	_, err := svc.CreateEschool(ctx, CreateEschoolCmd{
		Name:           "Paduan Suara",
		SchoolID:       school.SchoolID,
		NewCoordinator: &NewUserInput{Name: "Bu Rina", Email: "rina@example.com", Password: "rahasia123"},
		NewTreasurer:   &NewUserInput{Name: "Dobel", Email: existing.UserEmail, Password: "rahasia123"},
	})
	require.Error(t, err)
	assert.True(t, helper.IsConflict(err))

	// Atomic: eschool DAN user koordinator baru ikut batal
	var eschools int64
	require.NoError(t, db.Model(&model.Eschool{}).Count(&eschools).Error)
	assert.EqualValues(t, 0, eschools)

	var rina int64
	require.NoError(t, db.Model(&userModel.User{}).Where("user_email = ?", "rina@example.com").Count(&rina).Error)
	assert.EqualValues(t, 0, rina)
}

func TestCreateEschoolCoordinatorRequired(t *testing.T) {
	db := newTestDB(t)
	svc := NewEschoolService(db)
	school := seedSchool(t, db)

	// Dua-duanya kosong
	_, err := svc.CreateEschool(context.Background(), CreateEschoolCmd{
		Name:     "Robotik",
		SchoolID: school.SchoolID,
	})
	require.Error(t, err)
	assert.True(t, helper.IsValidation(err))

	// Dua-duanya terisi
	id := uuid.New()
	_, err = svc.CreateEschool(context.Background(), CreateEschoolCmd{
		Name:              "Robotik",
		SchoolID:          school.SchoolID,
		CoordinatorUserID: &id,
		NewCoordinator:    &NewUserInput{Name: "X", Email: "x@example.com", Password: "rahasia123"},
	})
	require.Error(t, err)
	assert.True(t, helper.IsValidation(err))
}

func TestCreateEschoolTreasurerCannotBeCoordinator(t *testing.T) {
	db := newTestDB(t)
	svc := NewEschoolService(db)
	ctx := context.Background()

	school := seedSchool(t, db)
	guru := seedUser(t, db, school.SchoolID, constants.RoleGuru)

	_, err := svc.CreateEschool(ctx, CreateEschoolCmd{
		Name:              "Pramuka",
		SchoolID:          school.SchoolID,
		CoordinatorUserID: &guru.UserID,
		TreasurerUserID:   &guru.UserID,
	})
	require.Error(t, err)
	assert.True(t, helper.IsConflict(err))
}

func TestUpdateAndSoftDeleteEschool(t *testing.T) {
	db := newTestDB(t)
	svc := NewEschoolService(db)
	ctx := context.Background()

	school := seedSchool(t, db)
	guru := seedUser(t, db, school.SchoolID, constants.RoleGuru)

	esc, err := svc.CreateEschool(ctx, CreateEschoolCmd{
		Name:              "Teater",
		SchoolID:          school.SchoolID,
		MonthlyKasAmount:  10000,
		CoordinatorUserID: &guru.UserID,
	})
	require.NoError(t, err)

	name := "Teater Modern"
	amount := 15000
	updated, err := svc.UpdateEschool(ctx, esc.EschoolID, UpdateEschoolCmd{Name: &name, MonthlyKasAmount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "Teater Modern", updated.EschoolName)
	assert.Equal(t, 15000, updated.EschoolMonthlyKasAmount)

	require.NoError(t, svc.DeleteEschool(ctx, esc.EschoolID))

	_, err = svc.GetEschool(ctx, esc.EschoolID)
	require.Error(t, err)
	assert.True(t, helper.IsNotFound(err))

	// Hapus dua kali → 404
	err = svc.DeleteEschool(ctx, esc.EschoolID)
	require.Error(t, err)
	assert.True(t, helper.IsNotFound(err))
}

func TestListEligibleTreasurersExcludesKoordinators(t *testing.T) {
	db := newTestDB(t)
	svc := NewEschoolService(db)
	ctx := context.Background()

	school := seedSchool(t, db)
	guru := seedUser(t, db, school.SchoolID, constants.RoleGuru)
	siswa := seedUser(t, db, school.SchoolID, constants.RoleSiswa)

	_, err := svc.CreateEschool(ctx, CreateEschoolCmd{
		Name:              "Catur",
		SchoolID:          school.SchoolID,
		CoordinatorUserID: &guru.UserID,
	})
	require.NoError(t, err)

	users, err := svc.ListEligibleTreasurers(ctx, school.SchoolID)
	require.NoError(t, err)

	ids := map[uuid.UUID]bool{}
	for _, u := range users {
		ids[u.UserID] = true
	}
	assert.False(t, ids[guru.UserID], "koordinator aktif tidak boleh muncul")
	assert.True(t, ids[siswa.UserID])
}
