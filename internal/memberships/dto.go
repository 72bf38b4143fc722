package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// MemberDTO is the transport shape for a team member record. The invite
// token never leaves the persistence layer through this type.
type MemberDTO struct {
	ID              uuid.UUID              `json:"id"`
	OrganizationID  uuid.UUID              `json:"organization_id"`
	Email           string                 `json:"email"`
	FullName        string                 `json:"full_name"`
	Role            enums.MemberRole       `json:"role"`
	Status          enums.MembershipStatus `json:"status"`
	ActivatedAt     *time.Time             `json:"activated_at,omitempty"`
	InvitedByUserID *uuid.UUID             `json:"invited_by_user_id,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// CreateMemberDTO carries the fields needed to persist a pending invite row.
type CreateMemberDTO struct {
	OrganizationID  uuid.UUID
	Email           string
	FullName        string
	Role            enums.MemberRole
	InviteToken     string
	TokenExpiresAt  time.Time
	InvitedByUserID *uuid.UUID
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.TeamMember) *MemberDTO {
	if m == nil {
		return nil
	}

	return &MemberDTO{
		ID:              m.ID,
		OrganizationID:  m.OrganizationID,
		Email:           m.Email,
		FullName:        m.FullName,
		Role:            m.Role,
		Status:          m.Status,
		ActivatedAt:     copyTimePointer(m.ActivatedAt),
		InvitedByUserID: copyUUIDPointer(m.InvitedByUserID),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ToDTOs converts a slice of models, preserving order.
func ToDTOs(rows []models.TeamMember) []MemberDTO {
	out := make([]MemberDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

func copyTimePointer(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
