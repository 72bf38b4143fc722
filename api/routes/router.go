package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aetherdesk-ai/aetherdesk-backend/api/controllers"
	"github.com/aetherdesk-ai/aetherdesk-backend/api/middleware"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/analytics"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/auth"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/bookings"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/catalog"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/contact"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/files"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/invitations"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/orders"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/tickets"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/users"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/workspace"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/auth/session"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/redis"
	stripepkg "github.com/aetherdesk-ai/aetherdesk-backend/pkg/stripe"
)

// Params bundles everything the router mounts.
type Params struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis *redis.Client

	SessionChecker session.AccessSessionChecker

	Users *users.Repository

	Auth        auth.Service
	Register    auth.RegisterService
	Account     auth.AccountService
	Workspace   workspace.Service
	Invitations invitations.Service
	Catalog     catalog.Service
	Bookings    bookings.Service
	Orders      orders.Service
	Tickets     tickets.Service
	Analytics   analytics.Service
	Contact     contact.Service
	Billing     stripepkg.BillingAPI
	Files       files.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	// Unauthenticated surface: catalog browsing, contact form, invite
	// validation and the no-account acceptance path.
	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/services", controllers.CatalogList(p.Catalog, logg))
		r.Get("/services/{serviceId}", controllers.CatalogGet(p.Catalog, logg))
		r.Post("/contact", controllers.ContactSubmit(p.Contact, logg))
		r.Route("/invitations", func(r chi.Router) {
			r.Get("/validate", controllers.InviteValidate(p.Invitations, logg))
			r.Post("/accept", controllers.InviteAcceptPublic(p.Invitations, logg))
		})
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.Register, p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, cfg.JWT, logg))
		r.Post("/password-reset", controllers.AccountRequestPasswordReset(p.Account, logg))
		r.Post("/password-reset/confirm", controllers.AccountResetPassword(p.Account, logg))
		r.Get("/confirm-email", controllers.AccountConfirmEmail(p.Account, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/me", controllers.AuthMe(p.Auth, logg))

		r.Route("/account", func(r chi.Router) {
			r.Post("/change-email", controllers.AccountChangeEmail(p.Account, logg))
			r.Post("/resend-confirmation", controllers.AccountResendConfirmation(p.Account, logg))
		})

		r.Route("/workspace", func(r chi.Router) {
			r.Get("/", controllers.WorkspaceContext(p.Workspace, p.Users, logg))
			r.Get("/permissions", controllers.WorkspaceListPermissions(p.Workspace, p.Users, logg))
			r.Put("/permissions", controllers.WorkspaceUpdatePermissions(p.Workspace, p.Users, logg))
		})

		r.Route("/invitations", func(r chi.Router) {
			r.Post("/", controllers.InviteIssue(p.Invitations, p.Users, logg))
			r.Post("/accept", controllers.InviteAccept(p.Invitations, p.Users, logg))
		})
		r.Delete("/team/members/{memberId}", controllers.InviteRemove(p.Invitations, p.Users, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", controllers.BookingCreate(p.Bookings, p.Users, logg))
			r.Get("/", controllers.BookingList(p.Bookings, logg))
			r.Get("/{bookingId}", controllers.BookingGet(p.Bookings, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(p.Orders, p.Users, logg))
			r.Get("/", controllers.OrderList(p.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(p.Orders, logg))
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Post("/", controllers.TicketCreate(p.Tickets, p.Users, logg))
			r.Get("/", controllers.TicketList(p.Tickets, logg))
			r.Get("/{ticketId}", controllers.TicketGet(p.Tickets, logg))
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/", controllers.FileUpload(p.Files, p.Users, logg))
			r.Get("/", controllers.FileList(p.Files, p.Users, logg))
		})

		r.Get("/analytics/dashboard", controllers.Dashboard(p.Analytics, logg))

		r.Route("/billing", func(r chi.Router) {
			r.Get("/checkout-session", controllers.BillingCheckoutSession(logg))
			r.Get("/subscription", controllers.BillingSubscription(p.Billing, cfg.Invites, logg))
			r.Get("/invoices", controllers.BillingInvoices(p.Billing, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
		r.Use(middleware.RequireRole(enums.SystemRoleAdmin, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/services", func(r chi.Router) {
			r.Post("/", controllers.AdminServiceCreate(p.Catalog, logg))
			r.Put("/{serviceId}", controllers.AdminServiceUpdate(p.Catalog, logg))
			r.Delete("/{serviceId}", controllers.AdminServiceDelete(p.Catalog, logg))
			r.Post("/{serviceId}/packages", controllers.AdminPackageCreate(p.Catalog, logg))
		})
		r.Route("/packages", func(r chi.Router) {
			r.Put("/{packageId}", controllers.AdminPackageUpdate(p.Catalog, logg))
			r.Delete("/{packageId}", controllers.AdminPackageDelete(p.Catalog, logg))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", controllers.BookingList(p.Bookings, logg))
			r.Get("/{bookingId}", controllers.BookingGet(p.Bookings, logg))
			r.Put("/{bookingId}/status", controllers.AdminBookingUpdateStatus(p.Bookings, logg))
			r.Put("/{bookingId}/project", controllers.AdminBookingUpdateProject(p.Bookings, logg))
			r.Delete("/{bookingId}", controllers.AdminBookingDelete(p.Bookings, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(p.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(p.Orders, logg))
			r.Put("/{orderId}/status", controllers.AdminOrderUpdateStatus(p.Orders, logg))
			r.Delete("/{orderId}", controllers.AdminOrderDelete(p.Orders, logg))
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", controllers.TicketList(p.Tickets, logg))
			r.Get("/{ticketId}", controllers.TicketGet(p.Tickets, logg))
			r.Put("/{ticketId}/status", controllers.AdminTicketUpdateStatus(p.Tickets, logg))
			r.Delete("/{ticketId}", controllers.AdminTicketDelete(p.Tickets, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUserList(p.Users, logg))
			r.Delete("/{userId}", controllers.AdminUserDelete(p.Users, logg))
		})

		r.Get("/contact", controllers.AdminContactList(p.Contact, logg))
		r.Get("/analytics/dashboard", controllers.AdminDashboard(p.Analytics, logg))
	})

	return r
}
