package controllers

import (
	"net/http"

	"github.com/aetherdesk-ai/aetherdesk-backend/api/responses"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/analytics"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
)

// Dashboard returns the chart series scoped to the caller's own rows.
func Dashboard(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Dashboard(r.Context(), &userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminDashboard returns the cross-tenant series.
func AdminDashboard(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		result, err := svc.Dashboard(r.Context(), nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
