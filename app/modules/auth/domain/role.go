package authdomain

// Role represents a user's role for authorization purposes.
type Role string

const (
	RoleViewer    Role = "viewer"
	RolePlayer    Role = "player"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// IsValid checks if the role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleViewer, RolePlayer, RoleOrganizer, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanImport reports whether the role may bulk-import match sheets.
func (r Role) CanImport() bool {
	return r == RoleOrganizer || r == RoleAdmin
}

// CanRecord reports whether the role may submit and answer matches.
func (r Role) CanRecord() bool {
	return r != RoleViewer && r.IsValid()
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
