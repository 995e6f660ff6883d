package domain

import "github.com/google/uuid"

// Role of an authenticated user
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Actor is the authenticated caller resolved from the access token.
// Every tenant-scoped operation receives it explicitly.
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     Role
	Email    string
	Name     string
}

// IsAdmin returns true if the actor manages the tenant
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

// CanAccess returns true if the actor may see or change a booking
func (a Actor) CanAccess(b *Booking) bool {
	if b.TenantID != a.TenantID {
		return false
	}
	return b.UserID == a.UserID || a.IsAdmin()
}
