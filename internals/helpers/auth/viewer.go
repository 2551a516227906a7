// file: internals/helpers/auth/viewer.go
package helperAuth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"eschoolku_backend/internals/constants"
	helper "eschoolku_backend/internals/helpers"
)

const LocViewer = "viewer"

// Viewer adalah identitas request-scoped hasil resolve claims JWT sekali
// di middleware. Semua keputusan akses dashboard lewat capability di sini,
// bukan perbandingan string role yang tersebar di handler.
type Viewer struct {
	UserID   uuid.UUID
	SchoolID uuid.UUID
	BaseRole string // siswa|guru|staff
}

// GetViewer ambil Viewer dari locals; 401 kalau middleware belum mengisi.
func GetViewer(c *fiber.Ctx) (Viewer, error) {
	if v, ok := c.Locals(LocViewer).(Viewer); ok && v.UserID != uuid.Nil {
		return v, nil
	}
	return Viewer{}, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
}

// SetViewer dipakai middleware AuthJWT (dan test) untuk mengisi locals.
func SetViewer(c *fiber.Ctx, v Viewer) {
	c.Locals(LocViewer, v)
	c.Locals(helper.LocUserID, v.UserID)
	c.Locals(helper.LocBaseRole, v.BaseRole)
	c.Locals(helper.LocSchoolID, v.SchoolID)
}

// ===== Capabilities =====

// IsStaff: boleh lihat rollup lintas eschool di sekolahnya.
func (v Viewer) IsStaff() bool { return v.BaseRole == constants.RoleStaff }

// CanViewSchoolRollup: rollup hanya untuk staff di sekolahnya sendiri.
func (v Viewer) CanViewSchoolRollup(schoolID uuid.UUID) bool {
	return v.IsStaff() && v.SchoolID == schoolID
}

// CanViewSchoolFinance: detail finansial lintas sekolah tidak pernah boleh;
// aggregate read yang gagal di sini di-degrade jadi payload kosong, bukan 500.
func (v Viewer) CanViewSchoolFinance(schoolID uuid.UUID) bool {
	return v.SchoolID == schoolID
}
