// Package models defines the wire types exchanged with the Vacation Service.
package models

// Role identifies the account kind. The service encodes it as role_id.
type Role int

const (
	RoleTraveler Role = 1
	RoleAdmin    Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleTraveler:
		return "traveler"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// User is the authenticated account as returned by /login, /register and /me.
// Immutable once loaded; a new value replaces it on re-login.
type User struct {
	ID        int    `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      Role   `json:"role_id"`
}

// FullName joins first and last name for display.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// IsAdmin reports whether the account has the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
