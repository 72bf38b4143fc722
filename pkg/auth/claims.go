package auth

import (
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	Email      string
	SystemRole enums.SystemRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID     uuid.UUID        `json:"user_id"`
	Email      string           `json:"email"`
	SystemRole enums.SystemRole `json:"system_role"`
	jwt.RegisteredClaims
}
