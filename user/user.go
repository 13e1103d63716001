// Package user defines user identity and credential records. Every
// user, including an organization's admin, belongs to exactly one
// organization.
package user

import "time"

// Role is the closed set of user roles. Routes declare explicit
// allowed-role sets; there is no implicit hierarchy between roles.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// User is the identity and credential record.
type User struct {
	ID             string    `bson:"_id" json:"id"`
	Email          string    `bson:"email" json:"email"` // globally unique
	PasswordHash   []byte    `bson:"password_hash" json:"-"`
	FirstName      string    `bson:"first_name" json:"firstName"`
	LastName       string    `bson:"last_name" json:"lastName"`
	Role           Role      `bson:"role" json:"role"`
	OrganizationID string    `bson:"organization_id" json:"organizationId"`
	IsActive       bool      `bson:"is_active" json:"isActive"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}
