package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ROLE_USER    = "user"
	ROLE_ADMIN   = "admin"
	ROLE_MANAGER = "manager"
	ROLE_VIEWER  = "viewer"
)

// Profile stores role and activation state for an identity. The ID is the
// user id issued by the identity provider.
type Profile struct {
	ID          string    `gorm:"primaryKey;type:char(36)" json:"id" validate:"required"`
	Email       string    `gorm:"type:varchar(200);index" json:"email" validate:"omitempty,email,max=200"`
	DisplayName string    `gorm:"type:varchar(100)" json:"display_name" validate:"max=100"`
	Role        string    `gorm:"type:varchar(20);not null" json:"role" validate:"oneof=user admin manager viewer"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	APIKeyHash  *string   `gorm:"type:char(64);uniqueIndex" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// IsAdmin reports whether the profile has the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == ROLE_ADMIN
}

// HashAPIKey returns the hex encoded SHA-256 of a plain API key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
