package enums

import "fmt"

// SystemRole is the platform-level role carried in access tokens. It gates
// the admin console routes and is distinct from workspace member roles.
type SystemRole string

const (
	SystemRoleAdmin  SystemRole = "admin"
	SystemRoleClient SystemRole = "client"
)

var validSystemRoles = []SystemRole{
	SystemRoleAdmin,
	SystemRoleClient,
}

// String implements fmt.Stringer.
func (s SystemRole) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known SystemRole.
func (s SystemRole) IsValid() bool {
	for _, candidate := range validSystemRoles {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSystemRole converts raw input into a SystemRole.
func ParseSystemRole(value string) (SystemRole, error) {
	for _, candidate := range validSystemRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid system role %q", value)
}
