package constants

const (
	RoleAdmin     = "admin"
	RoleRegistrar = "registrar"
	RoleTeacher   = "teacher"
	RoleStudent   = "student"
)

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RoleRegistrar,
		RoleTeacher,
		RoleStudent,
	}

	StaffRoles = []string{
		RoleAdmin,
		RoleRegistrar,
		RoleTeacher,
	}

	// RegistrarAndAbove: boleh kelola data siswa
	RegistrarAndAbove = []string{
		RoleAdmin,
		RoleRegistrar,
	}

	// TeacherAndAbove: boleh kelola absensi & izin
	TeacherAndAbove = []string{
		RoleAdmin,
		RoleTeacher,
	}

	AdminOnly = []string{
		RoleAdmin,
	}

	StudentOnly = []string{
		RoleStudent,
	}
)
