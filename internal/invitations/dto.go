package invitations

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// IssueRequest is the payload for inviting a new team member.
type IssueRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// AcceptRequest is the payload for the direct acceptance path. FullName and
// Password are required only when the caller has no account yet.
type AcceptRequest struct {
	Token    string `json:"token" validate:"required"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password,omitempty"`
}

// InviteDetailsDTO is what a valid token resolves to. It powers the
// acceptance page before the invitee commits to anything.
type InviteDetailsDTO struct {
	MemberID       uuid.UUID        `json:"member_id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	WorkspaceName  string           `json:"workspace_name,omitempty"`
	Email          string           `json:"email"`
	FullName       string           `json:"full_name"`
	Role           enums.MemberRole `json:"role"`
	ExpiresAt      time.Time        `json:"expires_at"`
	HasAccount     bool             `json:"has_account"`
}
