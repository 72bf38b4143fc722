package controllers

import (
	"net/http"
	"strings"

	"github.com/aetherdesk-ai/aetherdesk-backend/api/middleware"
	"github.com/aetherdesk-ai/aetherdesk-backend/api/responses"
	"github.com/aetherdesk-ai/aetherdesk-backend/api/validators"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	stripepkg "github.com/aetherdesk-ai/aetherdesk-backend/pkg/stripe"
)

// BillingCheckoutSession echoes the checkout session id back to the success
// page. The id is display-only; entitlements come from the subscription
// lookup, never from this value.
func BillingCheckoutSession(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := validators.SanitizeString(r.URL.Query().Get("session_id"), 255)
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session_id is required"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"session_id": sessionID})
	}
}

// BillingInvoices lists the caller's invoices. Callers with no billing
// customer get an empty list rather than an error.
func BillingInvoices(billing stripepkg.BillingAPI, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if billing == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing unavailable"))
			return
		}

		email := strings.TrimSpace(middleware.EmailFromContext(r.Context()))
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		customer, err := billing.FindCustomerByEmail(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up customer"))
			return
		}
		if customer == nil {
			responses.WriteSuccess(w, []stripepkg.Invoice{})
			return
		}

		invoices, err := billing.ListInvoices(r.Context(), customer.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices"))
			return
		}

		responses.WriteSuccess(w, invoices)
	}
}

// BillingSubscription resolves the caller's active plan and team limit from
// Stripe by email.
func BillingSubscription(billing stripepkg.BillingAPI, inviteCfg config.InviteConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if billing == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing unavailable"))
			return
		}

		email := strings.TrimSpace(middleware.EmailFromContext(r.Context()))
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		customer, err := billing.FindCustomerByEmail(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up customer"))
			return
		}

		payload := map[string]any{
			"plan":       "",
			"team_limit": inviteCfg.DefaultTeamSize,
			"active":     false,
		}
		if customer != nil {
			plan, err := billing.ActivePlan(r.Context(), customer.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up subscription"))
				return
			}
			if plan != "" {
				payload["plan"] = plan
				payload["team_limit"] = stripepkg.TeamLimitForPlan(plan, inviteCfg.DefaultTeamSize)
				payload["active"] = true
			}
		}

		responses.WriteSuccess(w, payload)
	}
}
