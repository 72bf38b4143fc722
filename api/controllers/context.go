package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/api/middleware"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
)

// currentUserID pulls the authenticated user id out of the request context.
func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}

func isAdmin(r *http.Request) bool {
	return middleware.RoleFromContext(r.Context()) == string(enums.SystemRoleAdmin)
}
