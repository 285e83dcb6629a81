package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents the access level of a profile
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Profile represents a user profile in the system
type Profile struct {
	ID        string    `json:"id" db:"id" validate:"required,uuid"`
	Email     *string   `json:"email,omitempty" db:"email" validate:"omitempty,email"`
	Role      Role      `json:"role" db:"role" validate:"required,oneof=admin user"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewProfile creates a new profile with generated ID and timestamps
func NewProfile(email string, role Role) *Profile {
	now := time.Now()
	p := &Profile{
		ID:        uuid.New().String(),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if email != "" {
		p.Email = &email
	}
	return p
}

// Validate validates the profile data
func (p *Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile ID is required")
	}

	if p.Role != RoleAdmin && p.Role != RoleUser {
		return fmt.Errorf("invalid role: %s", p.Role)
	}

	if p.Email != nil && *p.Email != "" {
		if !IsValidEmail(*p.Email) {
			return fmt.Errorf("invalid email format: %s", *p.Email)
		}
	}

	return nil
}

// IsAdmin returns true if the profile has the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (p *Profile) UpdateTimestamp() {
	p.UpdatedAt = time.Now()
}

// IsValidEmail performs basic email validation
func IsValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}
