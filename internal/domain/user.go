package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAgent Role = "AGENT"
	RoleAdmin Role = "ADMIN"
)

// User is the domain model for every account: requesters, agents and admins.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStaff reports whether the user holds an operator role.
func (u *User) IsStaff() bool {
	return u.Role == RoleAgent || u.Role == RoleAdmin
}

// EligibleAssignee reports whether tickets may be assigned to the user.
// Only active agents and admins qualify.
func (u *User) EligibleAssignee() bool {
	return u.IsActive && u.IsStaff()
}
