package workspace

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// TeamContext is the resolved view of a user's standing inside a workspace.
// A user with no affiliation gets the zero context plus NoAccess permissions.
type TeamContext struct {
	Role           enums.MemberRole `json:"role,omitempty"`
	OrganizationID *uuid.UUID       `json:"organization_id,omitempty"`
	IsOwner        bool             `json:"is_owner"`
	OwnerEmail     string           `json:"owner_email,omitempty"`
	Permissions    Permissions      `json:"permissions"`
	TeamMembers    []TeamMemberDTO  `json:"team_members"`
}

// TeamMemberDTO is the transport shape for one membership row.
type TeamMemberDTO struct {
	ID             uuid.UUID              `json:"id"`
	OrganizationID uuid.UUID              `json:"organization_id"`
	Email          string                 `json:"email"`
	FullName       string                 `json:"full_name"`
	Role           enums.MemberRole       `json:"role"`
	Status         enums.MembershipStatus `json:"status"`
	ActivatedAt    *time.Time             `json:"activated_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// WorkspaceDTO is the transport shape for a workspace row.
type WorkspaceDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func TeamMemberFromModel(m *models.TeamMember) TeamMemberDTO {
	if m == nil {
		return TeamMemberDTO{}
	}
	return TeamMemberDTO{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Email:          m.Email,
		FullName:       m.FullName,
		Role:           m.Role,
		Status:         m.Status,
		ActivatedAt:    m.ActivatedAt,
		CreatedAt:      m.CreatedAt,
	}
}

func TeamMembersFromModels(rows []models.TeamMember) []TeamMemberDTO {
	out := make([]TeamMemberDTO, 0, len(rows))
	for i := range rows {
		out = append(out, TeamMemberFromModel(&rows[i]))
	}
	return out
}

func workspaceFromModel(w *models.Workspace) *WorkspaceDTO {
	if w == nil {
		return nil
	}
	return &WorkspaceDTO{
		ID:        w.ID,
		Name:      w.Name,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
