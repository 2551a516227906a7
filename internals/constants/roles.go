package constants

import "fmt"

// =========================================================
// BASE ROLE (global, per user)
// =========================================================

const (
	RoleSiswa = "siswa" // murid biasa
	RoleGuru  = "guru"
	RoleStaff = "staff" // staf sekolah, akses rollup lintas eschool
)

// =========================================================
// ESCHOOL ROLE (per membership, scoped ke satu eschool)
// =========================================================

const (
	EschoolRoleKoordinator = "koordinator" // maksimal 1 per eschool
	EschoolRoleBendahara   = "bendahara"   // maksimal 1 per eschool
	EschoolRoleMember      = "member"
)

// Template pesan error role
const (
	ErrOnlyStaffCanAccess       = "Hanya staff yang boleh mengakses fitur %s."
	ErrOnlyKoordinatorCanAccess = "Hanya koordinator eschool yang boleh mengakses fitur %s."
	ErrOnlyBendaharaCanAccess   = "Hanya bendahara eschool yang boleh mengakses fitur %s."
)

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func RoleErrorKoordinator(feature string) string {
	return fmt.Sprintf(ErrOnlyKoordinatorCanAccess, feature)
}

func RoleErrorBendahara(feature string) string {
	return fmt.Sprintf(ErrOnlyBendaharaCanAccess, feature)
}

// ==========================
// Grouped Role Slices
// ==========================
var (
	AllBaseRoles = []string{
		RoleSiswa,
		RoleGuru,
		RoleStaff,
	}

	AllEschoolRoles = []string{
		EschoolRoleKoordinator,
		EschoolRoleBendahara,
		EschoolRoleMember,
	}

	// Role pengurus (boleh mutasi data eschool-nya sendiri)
	PengurusRoles = []string{
		EschoolRoleKoordinator,
		EschoolRoleBendahara,
	}
)

func IsValidBaseRole(role string) bool {
	for _, r := range AllBaseRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsValidEschoolRole(role string) bool {
	for _, r := range AllEschoolRoles {
		if r == role {
			return true
		}
	}
	return false
}
