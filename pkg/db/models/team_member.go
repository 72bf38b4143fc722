package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// TeamMember links an invited user with a workspace and carries their
// role/status plus the invitation token while the row is still pending.
// A user appears at most once per workspace; the partial unique index on
// (organization_id, email) enforces that, not application code.
type TeamMember struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID  uuid.UUID              `gorm:"column:organization_id;type:uuid;not null"`
	Email           string                 `gorm:"column:email;type:text;not null"`
	FullName        string                 `gorm:"column:full_name;type:text;not null"`
	Role            enums.MemberRole       `gorm:"column:role;type:text;not null"`
	Status          enums.MembershipStatus `gorm:"column:status;type:text;not null"`
	InviteToken     *string                `gorm:"column:invite_token;uniqueIndex"`
	TokenExpiresAt  *time.Time             `gorm:"column:token_expires_at"`
	ActivatedAt     *time.Time             `gorm:"column:activated_at"`
	InvitedByUserID *uuid.UUID             `gorm:"column:invited_by_user_id;type:uuid"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
