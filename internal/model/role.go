package model

// Role represents member roles in the system
type Role struct {
	Code        string      `json:"code"` // MASTER_ADMIN, ADMIN
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Privileges  []Privilege `json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleMasterAdmin = "MASTER_ADMIN"
	RoleAdmin       = "ADMIN"
)

// DefaultRoles defines the roles in the system. Roles are static; only the
// assignment of a role to a member is stored.
var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full system access with all privileges",
		Privileges:  DefaultPrivileges,
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Limited administrative access",
		Privileges:  privilegesByCode(adminPrivileges),
	},
}

var adminPrivileges = []string{
	PrivUserView,
	PrivProductView, PrivProductCreate, PrivProductUpdate, PrivProductDelete,
	PrivDashboardView,
}

// ValidRole reports whether code names one of DefaultRoles.
func ValidRole(code string) bool {
	for _, r := range DefaultRoles {
		if r.Code == code {
			return true
		}
	}
	return false
}

// PrivilegesFor returns the privilege codes granted to a role. Unknown roles get none.
func PrivilegesFor(role string) []string {
	for _, r := range DefaultRoles {
		if r.Code != role {
			continue
		}
		codes := make([]string, len(r.Privileges))
		for i, p := range r.Privileges {
			codes[i] = p.Code
		}
		return codes
	}
	return nil
}

func privilegesByCode(codes []string) []Privilege {
	out := make([]Privilege, 0, len(codes))
	for _, c := range codes {
		for _, p := range DefaultPrivileges {
			if p.Code == c {
				out = append(out, p)
			}
		}
	}
	return out
}
