package auth

import (
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/memberships"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/users"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/workspace"
)

// RegisterRequest contains the payload required to create an account.
type RegisterRequest struct {
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=8"`
	FullName      string  `json:"full_name" validate:"required"`
	Phone         *string `json:"phone,omitempty"`
	WorkspaceName string  `json:"workspace_name,omitempty"`
}

// LoginRequest authenticates by email/password. InviteToken, when present,
// triggers the login-path invitation acceptance after the credentials check.
type LoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	InviteToken string `json:"invite_token,omitempty"`
}

// LoginResponse carries the token pair plus the resolved profile.
type LoginResponse struct {
	AccessToken    string                  `json:"access_token"`
	RefreshToken   string                  `json:"refresh_token"`
	User           *users.UserDTO          `json:"user"`
	AcceptedInvite *memberships.MemberDTO  `json:"accepted_invite,omitempty"`
}

// RefreshRequest rotates the session pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse is the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// MeResponse is the session retrieval payload: profile plus the caller's
// workspace standing.
type MeResponse struct {
	User *users.UserDTO        `json:"user"`
	Team workspace.TeamContext `json:"team"`
}

// ChangeEmailRequest updates the account email. The current password is
// verified before anything is written.
type ChangeEmailRequest struct {
	NewEmail        string `json:"new_email" validate:"required,email"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// PasswordResetRequest kicks off the reset email flow.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest completes the reset with the emailed token.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
