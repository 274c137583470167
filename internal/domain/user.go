package domain

import (
	"fmt"  // Error formatting
	"time" // Timestamps

	"github.com/google/uuid" // UUID primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// User roles
const (
	RoleUser  = "user"  // Default role
	RoleAdmin = "admin" // Administrative role
)

// User Model
type User struct {
	ID           string        `gorm:"type:char(36);primaryKey" json:"id"`                                // Opaque system-assigned identifier
	Username     string        `gorm:"size:100;not null" json:"username"`                                 // Display name, no uniqueness constraint
	Email        string        `gorm:"size:255;uniqueIndex;not null" json:"email"`                        // Globally unique email
	Password     string        `gorm:"size:255;not null" json:"-"`                                        // Bcrypt hash, never the plaintext, never serialized
	Balance      float64       `gorm:"not null;default:0" json:"balance"`                                 // Reported balance
	Wallet       string        `gorm:"size:255;not null;default:''" json:"wallet"`                        // Opaque external wallet address, passed through
	Seed         string        `gorm:"size:255;not null;default:''" json:"-"`                             // Opaque sensitive seed, never serialized
	Role         string        `gorm:"size:20;not null;default:user" json:"role"`                         // Role: user or admin
	Transactions []Transaction `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"transactions"` // Append-only ledger, insertion order
	CreatedAt    time.Time     `json:"created_at"`                                                        // Creation timestamp
	UpdatedAt    time.Time     `json:"updated_at"`                                                        // Last modification timestamp
}

// BeforeCreate assigns a UUID primary key when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString() // System-assigned identifier
	}
	return nil
}

// ValidRole reports whether role is one of the defined roles
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Validate checks the User invariants; it runs on create and on every update
func (u *User) Validate() error {
	// Username is required
	if u.Username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	// Email is required (uniqueness is enforced by the store's unique index)
	if u.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	// Role must be one of the defined values
	if !ValidRole(u.Role) {
		return fmt.Errorf("%w: role must be %q or %q", ErrValidation, RoleUser, RoleAdmin)
	}
	return nil
}
