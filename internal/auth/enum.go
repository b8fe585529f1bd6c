package auth

type Role string

const (
	RoleStudent    Role = "student"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

var AllRoles = []Role{RoleStudent, RoleAdmin, RoleSuperadmin}

func (r Role) IsValid() bool {
	for _, v := range AllRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Scope distinguishes a full login from a session minted by an exam entry.
type Scope string

const (
	ScopeFull Scope = "full"
	ScopeTemp Scope = "temp"
)
