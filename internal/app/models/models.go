package models

// RoleType defines the user role type
type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleAdmin RoleType = "admin"
)

// IsValid reports whether r is a known role
func (r RoleType) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}
