package auth

type StaffPermission string

const (
	PermReports       StaffPermission = "reports"
	PermReportsExport StaffPermission = "reports_export"
)

// Allows reports whether a user with role and granted permissions may use perm.
// Admins hold every permission.
func Allows(role UserRole, granted []string, perm StaffPermission) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleStaff:
		for _, p := range granted {
			if p == string(perm) {
				return true
			}
		}
	}
	return false
}
