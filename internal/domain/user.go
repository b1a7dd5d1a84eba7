package domain

import "time"

type Role string

const (
	RoleGuest  Role = "guest"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ParseRole rejects anything outside the closed role set. Admin role edits
// go through this before touching the users table.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleGuest, RoleMember, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterUserReq struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
