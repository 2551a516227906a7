// file: internals/features/eschools/eschool/service/eschool_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"eschoolku_backend/internals/constants"
	"eschoolku_backend/internals/features/eschools/eschool/model"
	membershipModel "eschoolku_backend/internals/features/eschools/membership/model"
	schoolModel "eschoolku_backend/internals/features/school/schools/model"
	userModel "eschoolku_backend/internals/features/users/user/model"
	helper "eschoolku_backend/internals/helpers"
)

type EschoolService struct {
	DB *gorm.DB
}

func NewEschoolService(db *gorm.DB) *EschoolService {
	return &EschoolService{DB: db}
}

// =========================================================
// CREATE (compound)
// =========================================================

// NewUserInput: data user baru yang dibuat bareng eschool-nya.
type NewUserInput struct {
	Name     string
	Email    string
	Password string
}

// CreateEschoolCmd: perintah compound. Koordinator wajib (existing atau
// baru); bendahara opsional. Semuanya atomic: gagal di langkah manapun
// (mis. email bendahara sudah terpakai) membatalkan seluruhnya —
// eschool tanpa koordinator tidak pernah bisa terobservasi.
type CreateEschoolCmd struct {
	Name             string
	SchoolID         uuid.UUID
	MonthlyKasAmount int
	ScheduleDays     []string

	CoordinatorUserID *uuid.UUID    // reuse user existing ...
	NewCoordinator    *NewUserInput // ... atau buat baru (tepat satu yang diisi)

	TreasurerUserID *uuid.UUID
	NewTreasurer    *NewUserInput
}

func (s *EschoolService) CreateEschool(ctx context.Context, cmd CreateEschoolCmd) (*model.Eschool, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, helper.ErrValidation("nama eschool wajib diisi")
	}
	if cmd.MonthlyKasAmount < 0 {
		return nil, helper.ErrValidation("monthly_kas_amount tidak boleh negatif")
	}
	if (cmd.CoordinatorUserID == nil) == (cmd.NewCoordinator == nil) {
		return nil, helper.ErrValidation("koordinator wajib: pilih user existing atau data user baru")
	}
	if cmd.TreasurerUserID != nil && cmd.NewTreasurer != nil {
		return nil, helper.ErrValidation("bendahara: pilih salah satu, user existing atau user baru")
	}

	var out model.Eschool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var school schoolModel.School
		if err := tx.First(&school, "school_id = ?", cmd.SchoolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("school tidak ditemukan")
			}
			return err
		}

		coordinator, err := resolveUser(tx, cmd.SchoolID, cmd.CoordinatorUserID, cmd.NewCoordinator, constants.RoleGuru)
		if err != nil {
			return err
		}

		var scheduleJSON datatypes.JSON
		if len(cmd.ScheduleDays) > 0 {
			b, err := json.Marshal(cmd.ScheduleDays)
			if err != nil {
				return err
			}
			scheduleJSON = datatypes.JSON(b)
		}

		esc := model.Eschool{
			EschoolName:             strings.TrimSpace(cmd.Name),
			EschoolSchoolID:         cmd.SchoolID,
			EschoolCoordinatorID:    &coordinator.UserID,
			EschoolMonthlyKasAmount: cmd.MonthlyKasAmount,
			EschoolScheduleDays:     scheduleJSON,
			EschoolIsActive:         true,
		}
		if err := tx.Create(&esc).Error; err != nil {
			return err
		}

		if err := tx.Create(&membershipModel.Membership{
			MembershipUserID:    coordinator.UserID,
			MembershipEschoolID: esc.EschoolID,
			MembershipRole:      constants.EschoolRoleKoordinator,
		}).Error; err != nil {
			return err
		}

		if cmd.TreasurerUserID != nil || cmd.NewTreasurer != nil {
			treasurer, err := resolveUser(tx, cmd.SchoolID, cmd.TreasurerUserID, cmd.NewTreasurer, constants.RoleSiswa)
			if err != nil {
				return err
			}
			if treasurer.UserID == coordinator.UserID {
				return helper.ErrConflict("koordinator tidak boleh merangkap bendahara di eschool yang sama")
			}
			if err := tx.Create(&membershipModel.Membership{
				MembershipUserID:    treasurer.UserID,
				MembershipEschoolID: esc.EschoolID,
				MembershipRole:      constants.EschoolRoleBendahara,
			}).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Eschool{}).
				Where("eschool_id = ?", esc.EschoolID).
				Update("eschool_treasurer_id", treasurer.UserID).Error; err != nil {
				return err
			}
			esc.EschoolTreasurerID = &treasurer.UserID
		}

		out = esc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// resolveUser: pakai user existing (harus satu sekolah) atau buat baru
// (email harus belum terpakai). Dipanggil di dalam transaksi compound.
func resolveUser(tx *gorm.DB, schoolID uuid.UUID, existingID *uuid.UUID, input *NewUserInput, defaultRole string) (*userModel.User, error) {
	if existingID != nil {
		var u userModel.User
		if err := tx.First(&u, "user_id = ?", *existingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, helper.ErrNotFound("user tidak ditemukan")
			}
			return nil, err
		}
		if u.UserSchoolID != schoolID {
			return nil, helper.ErrValidation("user bukan anggota sekolah ini")
		}
		return &u, nil
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.Name) == "" {
		return nil, helper.ErrValidation("nama dan email user baru wajib diisi")
	}

	var taken int64
	if err := tx.Model(&userModel.User{}).Where("user_email = ?", email).Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, helper.ErrConflict("email sudah terpakai: " + email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := userModel.User{
		UserName:     strings.TrimSpace(input.Name),
		UserEmail:    email,
		UserPassword: string(hash),
		UserRole:     defaultRole,
		UserSchoolID: schoolID,
	}
	if err := tx.Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// =========================================================
// READ / UPDATE / DELETE
// =========================================================

func (s *EschoolService) GetEschool(ctx context.Context, id uuid.UUID) (*model.Eschool, error) {
	var esc model.Eschool
	if err := s.DB.WithContext(ctx).First(&esc, "eschool_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.ErrNotFound("eschool tidak ditemukan")
		}
		return nil, err
	}
	return &esc, nil
}

func (s *EschoolService) ListEschools(ctx context.Context, schoolID uuid.UUID, paging helper.Paging) ([]model.Eschool, int64, error) {
	base := s.DB.WithContext(ctx).Model(&model.Eschool{}).
		Where("eschool_school_id = ?", schoolID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Eschool
	if err := base.
		Order("eschool_created_at ASC").
		Limit(paging.Limit).
		Offset(paging.Offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

type UpdateEschoolCmd struct {
	Name             *string
	MonthlyKasAmount *int
	ScheduleDays     []string
	IsActive         *bool
}

func (s *EschoolService) UpdateEschool(ctx context.Context, id uuid.UUID, cmd UpdateEschoolCmd) (*model.Eschool, error) {
	var out model.Eschool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var esc model.Eschool
		if err := tx.First(&esc, "eschool_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("eschool tidak ditemukan")
			}
			return err
		}

		if cmd.Name != nil {
			if strings.TrimSpace(*cmd.Name) == "" {
				return helper.ErrValidation("nama eschool tidak boleh kosong")
			}
			esc.EschoolName = strings.TrimSpace(*cmd.Name)
		}
		if cmd.MonthlyKasAmount != nil {
			if *cmd.MonthlyKasAmount < 0 {
				return helper.ErrValidation("monthly_kas_amount tidak boleh negatif")
			}
			esc.EschoolMonthlyKasAmount = *cmd.MonthlyKasAmount
		}
		if cmd.ScheduleDays != nil {
			b, err := json.Marshal(cmd.ScheduleDays)
			if err != nil {
				return err
			}
			esc.EschoolScheduleDays = datatypes.JSON(b)
		}
		if cmd.IsActive != nil {
			esc.EschoolIsActive = *cmd.IsActive
		}

		if err := tx.Save(&esc).Error; err != nil {
			return err
		}
		out = esc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEschool: soft delete tenant-nya. Data kas/absensi dibiarkan
// (masih bisa diaudit), hanya tenant yang disembunyikan.
func (s *EschoolService) DeleteEschool(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Where("eschool_id = ?", id).Delete(&model.Eschool{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return helper.ErrNotFound("eschool tidak ditemukan")
	}
	return nil
}

// =========================================================
// ELIGIBLE TREASURERS
// =========================================================

// ListEligibleTreasurers: user sekolah ini yang tidak sedang menjadi
// koordinator di eschool manapun milik sekolah tsb. Koordinator satu
// eschool masih boleh jadi bendahara eschool LAIN, tapi filter ini
// dipakai form pemilihan bendahara lintas-eschool, jadi yang ditahan
// adalah semua koordinator aktif sekolah itu.
func (s *EschoolService) ListEligibleTreasurers(ctx context.Context, schoolID uuid.UUID) ([]userModel.User, error) {
	sub := s.DB.Model(&membershipModel.Membership{}).
		Select("membership_user_id").
		Joins("JOIN eschools ON eschools.eschool_id = memberships.membership_eschool_id").
		Where("eschools.eschool_school_id = ? AND memberships.membership_role = ? AND eschools.eschool_deleted_at IS NULL",
			schoolID, constants.EschoolRoleKoordinator)

	var users []userModel.User
	err := s.DB.WithContext(ctx).
		Where("user_school_id = ?", schoolID).
		Where("user_id NOT IN (?)", sub).
		Order("user_name ASC").
		Find(&users).Error
	return users, err
}
