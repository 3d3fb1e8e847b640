package models

import "time"

// Admin roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Admin is a dashboard operator. Sign-in is through Google or, when a password
// hash is set, email + password.
type Admin struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	Email        string     `bson:"email" json:"email" validate:"required,email"`
	Name         string     `bson:"name" json:"name"`
	Picture      string     `bson:"picture,omitempty" json:"picture,omitempty"`
	GoogleSub    string     `bson:"googleSub,omitempty" json:"-"`
	PasswordHash string     `bson:"passwordHash,omitempty" json:"-"`
	Role         string     `bson:"role" json:"role" validate:"required,oneof=admin superadmin"`
	Active       bool       `bson:"active" json:"active"`
	LastLoginAt  *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}
