package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email             string           `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash      string           `gorm:"column:password_hash;not null"`
	FullName          string           `gorm:"column:full_name;not null"`
	Phone             *string          `gorm:"column:phone"`
	SystemRole        enums.SystemRole `gorm:"column:system_role;type:text;not null;default:'client'"`
	Confirmed         bool             `gorm:"column:confirmed;not null;default:false"`
	ConfirmationToken *string          `gorm:"column:confirmation_token"`
	ResetToken        *string          `gorm:"column:reset_token"`
	ResetExpiresAt    *time.Time       `gorm:"column:reset_expires_at"`
	LastLoginAt       *time.Time       `gorm:"column:last_login_at"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
