package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	FullName    string           `json:"full_name"`
	Phone       *string          `json:"phone,omitempty"`
	SystemRole  enums.SystemRole `json:"system_role"`
	Confirmed   bool             `json:"confirmed"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email             string
	PasswordHash      string
	FullName          string
	Phone             *string
	SystemRole        enums.SystemRole
	Confirmed         bool
	ConfirmationToken *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Phone:       u.Phone,
		SystemRole:  u.SystemRole,
		Confirmed:   u.Confirmed,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.SystemRole
	if role == "" {
		role = enums.SystemRoleClient
	}

	return &models.User{
		Email:             c.Email,
		PasswordHash:      c.PasswordHash,
		FullName:          c.FullName,
		Phone:             c.Phone,
		SystemRole:        role,
		Confirmed:         c.Confirmed,
		ConfirmationToken: c.ConfirmationToken,
	}
}
