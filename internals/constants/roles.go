package constants

// Account roles. Only admins see the visitor dashboard; staff accounts can
// authenticate (e.g. for the kiosk tablet login) but carry no dashboard
// access. The kiosk flow itself is anonymous.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

var AdminOnly = []string{
	RoleAdmin,
}

// ValidRole reports whether role is one the system knows.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}
