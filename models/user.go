package models

// UserRole mirrors the "role" claim carried by access tokens.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "organizer"
	RolePlayer    UserRole = "player"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RolePlayer:
		return true
	}
	return false
}

// CanManageSchedules reports whether the role may generate and approve schedules.
func (r UserRole) CanManageSchedules() bool {
	return r == RoleAdmin || r == RoleOrganizer
}
