package constants

import "fmt"

const (
	RoleAdmin      = "admin"
	RolePanitia    = "panitia"
	RoleBendahara  = "bendahara"
	RoleCalonSiswa = "calon_siswa"
)

const (
	GenderMale   = "L"
	GenderFemale = "P"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess     = "❌ Hanya admin yang boleh mengakses fitur %s."
	ErrOnlyCommitteeCanAccess  = "❌ Hanya admin atau panitia yang boleh mengakses fitur %s."
	ErrOnlyTreasurerCanAccess  = "❌ Hanya admin atau bendahara yang boleh mengakses fitur %s."
	ErrOnlyRegistrantCanAccess = "❌ Hanya calon siswa yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorCommittee(feature string) string {
	return fmt.Sprintf(ErrOnlyCommitteeCanAccess, feature)
}

func RoleErrorTreasurer(feature string) string {
	return fmt.Sprintf(ErrOnlyTreasurerCanAccess, feature)
}

func RoleErrorRegistrant(feature string) string {
	return fmt.Sprintf(ErrOnlyRegistrantCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RolePanitia,
		RoleBendahara,
		RoleCalonSiswa,
	}

	StaffRoles = []string{
		RoleAdmin,
		RolePanitia,
		RoleBendahara,
	}

	CommitteeAndAbove = []string{
		RoleAdmin,
		RolePanitia,
	}

	TreasurerAndAbove = []string{
		RoleAdmin,
		RoleBendahara,
	}

	AdminOnly = []string{
		RoleAdmin,
	}

	RegistrantOnly = []string{
		RoleCalonSiswa,
	}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale
}
