// file: internals/features/eschools/membership/service/membership_service.go
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eschoolku_backend/internals/constants"
	eschoolModel "eschoolku_backend/internals/features/eschools/eschool/model"
	"eschoolku_backend/internals/features/eschools/membership/model"
	userModel "eschoolku_backend/internals/features/users/user/model"
	helper "eschoolku_backend/internals/helpers"
)

// MembershipService menjaga invariant role per eschool:
// maksimal satu koordinator, maksimal satu bendahara, satu role per user
// per eschool. Tabel memberships adalah sumber kebenaran; pointer
// koordinator/bendahara di eschools hanya cache dan selalu ditulis
// dalam transaksi yang sama.
type MembershipService struct {
	DB *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{DB: db}
}

// lockForUpdate: row lock di Postgres supaya dua AssignRole(koordinator)
// bersamaan tidak lolos dua-duanya. SQLite tidak mendukung FOR UPDATE;
// di sana write tx sudah serialized oleh engine-nya.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// AssignRole membuat membership baru. Conflict (409) kalau:
//   - role koordinator/bendahara sudah terisi di eschool tsb
//   - user sudah punya role (apapun) di eschool tsb
func (s *MembershipService) AssignRole(ctx context.Context, eschoolID, userID uuid.UUID, role string) (*model.Membership, error) {
	if !constants.IsValidEschoolRole(role) {
		return nil, helper.ErrValidation("role harus koordinator, bendahara, atau member")
	}

	var out model.Membership
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		esc, err := findEschoolLocked(tx, eschoolID)
		if err != nil {
			return err
		}

		var user userModel.User
		if err := tx.First(&user, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("user tidak ditemukan")
			}
			return err
		}
		if user.UserSchoolID != esc.EschoolSchoolID {
			return helper.ErrValidation("user bukan anggota sekolah pemilik eschool ini")
		}

		// Satu user satu role per eschool
		var existing int64
		if err := tx.Model(&model.Membership{}).
			Where("membership_eschool_id = ? AND membership_user_id = ?", eschoolID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return helper.ErrConflict("user sudah memiliki role di eschool ini")
		}

		// Kardinalitas koordinator/bendahara
		if role == constants.EschoolRoleKoordinator || role == constants.EschoolRoleBendahara {
			var taken int64
			if err := tx.Model(&model.Membership{}).
				Where("membership_eschool_id = ? AND membership_role = ?", eschoolID, role).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return helper.ErrConflict("eschool sudah memiliki " + role)
			}
		}

		m := model.Membership{
			MembershipUserID:    userID,
			MembershipEschoolID: eschoolID,
			MembershipRole:      role,
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		if err := syncEschoolPointer(tx, esc, role, &userID); err != nil {
			return err
		}

		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveRole menghapus membership user di eschool. Pointer denormalized
// ikut dibersihkan kalau role yang dicopot koordinator/bendahara.
func (s *MembershipService) RemoveRole(ctx context.Context, eschoolID, userID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		esc, err := findEschoolLocked(tx, eschoolID)
		if err != nil {
			return err
		}

		var m model.Membership
		if err := tx.First(&m, "membership_eschool_id = ? AND membership_user_id = ?", eschoolID, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("membership tidak ditemukan")
			}
			return err
		}

		if err := tx.Delete(&m).Error; err != nil {
			return err
		}

		return syncEschoolPointer(tx, esc, m.MembershipRole, nil)
	})
}

// UpdateRole mengganti role user di eschool. Dimodelkan remove+assign
// dalam satu transaksi (row lama dihapus, row baru dibuat) supaya
// riwayat membership tetap bisa direkonstruksi.
func (s *MembershipService) UpdateRole(ctx context.Context, eschoolID, userID uuid.UUID, newRole string) (*model.Membership, error) {
	if !constants.IsValidEschoolRole(newRole) {
		return nil, helper.ErrValidation("role harus koordinator, bendahara, atau member")
	}

	var out model.Membership
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		esc, err := findEschoolLocked(tx, eschoolID)
		if err != nil {
			return err
		}

		var old model.Membership
		if err := tx.First(&old, "membership_eschool_id = ? AND membership_user_id = ?", eschoolID, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("membership tidak ditemukan")
			}
			return err
		}
		if old.MembershipRole == newRole {
			return helper.ErrConflict("user sudah memegang role tersebut")
		}

		if newRole == constants.EschoolRoleKoordinator || newRole == constants.EschoolRoleBendahara {
			var taken int64
			if err := tx.Model(&model.Membership{}).
				Where("membership_eschool_id = ? AND membership_role = ? AND membership_user_id <> ?", eschoolID, newRole, userID).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return helper.ErrConflict("eschool sudah memiliki " + newRole)
			}
		}

		// remove ...
		if err := tx.Delete(&old).Error; err != nil {
			return err
		}
		if err := syncEschoolPointer(tx, esc, old.MembershipRole, nil); err != nil {
			return err
		}

		// ... lalu assign
		m := model.Membership{
			MembershipUserID:    userID,
			MembershipEschoolID: eschoolID,
			MembershipRole:      newRole,
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if err := syncEschoolPointer(tx, esc, newRole, &userID); err != nil {
			return err
		}

		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RoleInEschool: role user di satu eschool ("" kalau bukan anggota).
func (s *MembershipService) RoleInEschool(ctx context.Context, eschoolID, userID uuid.UUID) (string, error) {
	var m model.Membership
	err := s.DB.WithContext(ctx).
		First(&m, "membership_eschool_id = ? AND membership_user_id = ?", eschoolID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.MembershipRole, nil
}

// MemberWithUser: row membership digabung identitas user (untuk roster).
type MemberWithUser struct {
	Membership model.Membership
	User       userModel.User
}

// ListMembers mengembalikan roster satu eschool, terurut nama.
func (s *MembershipService) ListMembers(ctx context.Context, eschoolID uuid.UUID, paging helper.Paging) ([]MemberWithUser, int64, error) {
	base := s.DB.WithContext(ctx).Model(&model.Membership{}).
		Where("membership_eschool_id = ?", eschoolID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.Membership
	if err := base.
		Order("membership_created_at ASC").
		Limit(paging.Limit).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.MembershipUserID)
	}
	users := map[uuid.UUID]userModel.User{}
	if len(ids) > 0 {
		var us []userModel.User
		if err := s.DB.WithContext(ctx).Find(&us, "user_id IN ?", ids).Error; err != nil {
			return nil, 0, err
		}
		for _, u := range us {
			users[u.UserID] = u
		}
	}

	out := make([]MemberWithUser, 0, len(rows))
	for _, r := range rows {
		out = append(out, MemberWithUser{Membership: r, User: users[r.MembershipUserID]})
	}
	return out, total, nil
}

// MemberIDs: semua user_id anggota eschool (roster pembayar yang
// diharapkan untuk summary kas).
func (s *MembershipService) MemberIDs(ctx context.Context, eschoolID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).Model(&model.Membership{}).
		Where("membership_eschool_id = ?", eschoolID).
		Pluck("membership_user_id", &ids).Error
	return ids, err
}

// ===== internal =====

func findEschoolLocked(tx *gorm.DB, eschoolID uuid.UUID) (*eschoolModel.Eschool, error) {
	var esc eschoolModel.Eschool
	if err := lockForUpdate(tx).First(&esc, "eschool_id = ?", eschoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.ErrNotFound("eschool tidak ditemukan")
		}
		return nil, err
	}
	return &esc, nil
}

// syncEschoolPointer menulis cache koordinator/bendahara di row eschool
// sesuai perubahan membership. userID nil berarti pointer dikosongkan.
func syncEschoolPointer(tx *gorm.DB, esc *eschoolModel.Eschool, role string, userID *uuid.UUID) error {
	var col string
	switch role {
	case constants.EschoolRoleKoordinator:
		col = "eschool_coordinator_id"
	case constants.EschoolRoleBendahara:
		col = "eschool_treasurer_id"
	default:
		return nil
	}
	return tx.Model(&eschoolModel.Eschool{}).
		Where("eschool_id = ?", esc.EschoolID).
		Update(col, userID).Error
}
