package domain

import "strings"

// UserRole is persisted and embedded in token claims by name.
type UserRole string

const (
	RoleCustomer UserRole = "Customer"
	RoleAdmin    UserRole = "Admin"
)

// ParseRole maps role names (case-insensitive) and the legacy numeric
// codes "0" and "1" to a role. Anything unrecognised becomes Customer.
func ParseRole(raw string) UserRole {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "1":
		return RoleAdmin
	case "customer", "0":
		return RoleCustomer
	default:
		return RoleCustomer
	}
}

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsAdmin() bool { return r == RoleAdmin }

func (r UserRole) IsCustomer() bool { return r == RoleCustomer }

func (r UserRole) Description() string {
	switch r {
	case RoleAdmin:
		return "Administrator with full system access"
	case RoleCustomer:
		return "Customer with standard user privileges"
	default:
		return "Unknown role"
	}
}

func AllRoles() []UserRole {
	return []UserRole{RoleCustomer, RoleAdmin}
}
