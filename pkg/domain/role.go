package domain

import dErrors "slfcert/pkg/domain-errors"

// Role is a project participant's function in the SLF certification process.
//
// Usage: construct via ParseRole at trust boundaries; direct casting bypasses
// validation.
type Role string

const (
	RoleSuperadmin     Role = "superadmin"
	RoleAdminLead      Role = "admin_lead"
	RoleAdminTeam      Role = "admin_team"
	RoleProjectLead    Role = "project_lead"
	RoleInspector      Role = "inspector"
	RoleClient         Role = "client"
	RoleDrafter        Role = "drafter"
	RoleHeadConsultant Role = "head_consultant"
)

var validRoles = map[Role]bool{
	RoleSuperadmin:     true,
	RoleAdminLead:      true,
	RoleAdminTeam:      true,
	RoleProjectLead:    true,
	RoleInspector:      true,
	RoleClient:         true,
	RoleDrafter:        true,
	RoleHeadConsultant: true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported role: "+s)
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}

// Profile is the subset of a user profile the engine needs.
// Specialization is only meaningful for inspectors.
type Profile struct {
	ID             UserID          `json:"id"`
	FullName       string          `json:"full_name"`
	Role           Role            `json:"role"`
	Specialization *Specialization `json:"specialization,omitempty"`
}
