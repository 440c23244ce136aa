package model

// StaffRole is the closed set of roles recognized by the transition guard
// and the discharge workflow. Unknown role strings are rejected at the
// boundary, never propagated.
type StaffRole string

const (
	RoleFrontDesk  StaffRole = "frontdesk"
	RoleTherapist  StaffRole = "therapist"
	RoleClinician  StaffRole = "clinician"
	RoleSupervisor StaffRole = "supervisor"
	RoleAdmin      StaffRole = "admin"
)

// ParseStaffRole validates a role string against the closed set.
func ParseStaffRole(s string) (StaffRole, bool) {
	switch StaffRole(s) {
	case RoleFrontDesk, RoleTherapist, RoleClinician, RoleSupervisor, RoleAdmin:
		return StaffRole(s), true
	}
	return "", false
}

type Staff struct {
	Base
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         StaffRole `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
}

type CreateStaffRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,staffrole"`
}

type StaffFilters struct {
	Role       StaffRole
	ActiveOnly bool
	SearchTerm string
}
