package models

import "time"

// Role identifies what a user is allowed to do across the claim workflow.
type Role string

const (
	RoleFaculty  Role = "faculty"
	RoleAccounts Role = "accounts"
	RoleAdmin    Role = "admin"
)

// IsValid returns true if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleFaculty, RoleAccounts, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered faculty or accounts-team member.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	EmployeeID   string    `json:"employee_id,omitempty"`
	Department   string    `json:"department,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor is the authenticated caller identity the workflow core consumes.
// It is extracted from the access token by the auth middleware; the
// workflow never re-derives it.
type Actor struct {
	UserID    int64
	Email     string
	Role      Role
	IP        string
	UserAgent string
}
