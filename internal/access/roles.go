// Package access holds role membership and evaluates the role checks that
// gate every privileged registry operation.
package access

import "fmt"

// Role is a named capability grant. Many addresses may hold a role and an
// address may hold many roles. ADMIN manages membership of every role,
// including ADMIN itself; there is no further hierarchy.
type Role string

const (
	RoleAdmin      Role = "admin"
	RolePauser     Role = "pauser"
	RoleMinter     Role = "minter"
	RoleBurner     Role = "burner"
	RoleAttributor Role = "attributor"
)

// AllRoles lists every known role, in grant order used at bootstrap.
func AllRoles() []Role {
	return []Role{RoleAdmin, RolePauser, RoleMinter, RoleBurner, RoleAttributor}
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RolePauser, RoleMinter, RoleBurner, RoleAttributor:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}
