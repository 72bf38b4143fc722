package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/internal/analytics"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/auth"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/bookings"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/catalog"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/contact"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/files"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/invitations"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/memberships"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/orders"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/tickets"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/users"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/workspace"
	pkgauth "github.com/aetherdesk-ai/aetherdesk-backend/pkg/auth"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/auth/session"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, claims *pkgauth.AccessTokenClaims, refreshToken string) (*auth.RefreshResponse, error) {
	return &auth.RefreshResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*auth.MeResponse, error) {
	return &auth.MeResponse{}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

type stubAccountService struct{}

func (stubAccountService) ChangeEmail(ctx context.Context, userID uuid.UUID, req auth.ChangeEmailRequest) error {
	return nil
}

func (stubAccountService) RequestPasswordReset(ctx context.Context, email string) error {
	return nil
}

func (stubAccountService) ResetPassword(ctx context.Context, req auth.PasswordResetConfirmRequest) error {
	return nil
}

func (stubAccountService) ConfirmEmail(ctx context.Context, token string) error {
	return nil
}

func (stubAccountService) ResendConfirmation(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubWorkspaceService struct{}

func (stubWorkspaceService) Resolve(ctx context.Context, user *models.User) workspace.TeamContext {
	return workspace.TeamContext{}
}

func (stubWorkspaceService) UpdatePermissions(ctx context.Context, actor *models.User, role enums.MemberRole, set workspace.Permissions) error {
	return nil
}

func (stubWorkspaceService) ListRolePermissions(ctx context.Context, actor *models.User) (map[enums.MemberRole]workspace.Permissions, error) {
	return nil, nil
}

func (stubWorkspaceService) GetWorkspace(ctx context.Context, id uuid.UUID) (*workspace.WorkspaceDTO, error) {
	return nil, nil
}

type stubInvitationsService struct{}

func (stubInvitationsService) Issue(ctx context.Context, actor *models.User, req invitations.IssueRequest) (*memberships.MemberDTO, error) {
	return nil, nil
}

func (stubInvitationsService) Validate(ctx context.Context, token string) (*invitations.InviteDetailsDTO, error) {
	return &invitations.InviteDetailsDTO{}, nil
}

func (stubInvitationsService) AcceptDirect(ctx context.Context, authUser *models.User, req invitations.AcceptRequest) (*memberships.MemberDTO, error) {
	return nil, nil
}

func (stubInvitationsService) AcceptForUser(ctx context.Context, user *models.User, token string) (*memberships.MemberDTO, error) {
	return nil, nil
}

func (stubInvitationsService) Remove(ctx context.Context, actor *models.User, memberID uuid.UUID) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) ListServices(ctx context.Context, filters catalog.ListFilters) ([]catalog.ServiceDTO, error) {
	return nil, nil
}

func (stubCatalogService) GetService(ctx context.Context, id uuid.UUID) (*catalog.ServiceDTO, error) {
	return nil, nil
}

func (stubCatalogService) CreateService(ctx context.Context, req catalog.UpsertServiceRequest) (*catalog.ServiceDTO, error) {
	return nil, nil
}

func (stubCatalogService) UpdateService(ctx context.Context, id uuid.UUID, req catalog.UpsertServiceRequest) (*catalog.ServiceDTO, error) {
	return nil, nil
}

func (stubCatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCatalogService) CreatePackage(ctx context.Context, serviceID uuid.UUID, req catalog.UpsertPackageRequest) (*catalog.PackageDTO, error) {
	return nil, nil
}

func (stubCatalogService) UpdatePackage(ctx context.Context, id uuid.UUID, req catalog.UpsertPackageRequest) (*catalog.PackageDTO, error) {
	return nil, nil
}

func (stubCatalogService) DeletePackage(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubBookingsService struct{}

func (stubBookingsService) Create(ctx context.Context, user *models.User, req bookings.CreateBookingRequest) (*bookings.BookingDTO, error) {
	return nil, nil
}

func (stubBookingsService) Get(ctx context.Context, id uuid.UUID) (*bookings.BookingDTO, error) {
	return &bookings.BookingDTO{}, nil
}

func (stubBookingsService) List(ctx context.Context, params bookings.ListParams) (*bookings.BookingList, error) {
	return &bookings.BookingList{}, nil
}

func (stubBookingsService) UpdateStatus(ctx context.Context, id uuid.UUID, req bookings.UpdateStatusRequest) (*bookings.BookingDTO, error) {
	return nil, nil
}

func (stubBookingsService) UpdateProject(ctx context.Context, id uuid.UUID, req bookings.UpdateProjectRequest) (*bookings.BookingDTO, error) {
	return nil, nil
}

func (stubBookingsService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, user *models.User, req orders.CreateOrderRequest) (*orders.OrderDTO, error) {
	return nil, nil
}

func (stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrdersService) List(ctx context.Context, params orders.ListParams) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, id uuid.UUID, req orders.UpdateStatusRequest) (*orders.OrderDTO, error) {
	return nil, nil
}

func (stubOrdersService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubTicketsService struct{}

func (stubTicketsService) Create(ctx context.Context, user *models.User, req tickets.CreateTicketRequest) (*tickets.TicketDTO, error) {
	return nil, nil
}

func (stubTicketsService) Get(ctx context.Context, id uuid.UUID) (*tickets.TicketDTO, error) {
	return &tickets.TicketDTO{}, nil
}

func (stubTicketsService) List(ctx context.Context, params tickets.ListParams) (*tickets.TicketList, error) {
	return &tickets.TicketList{}, nil
}

func (stubTicketsService) UpdateStatus(ctx context.Context, id uuid.UUID, req tickets.UpdateStatusRequest) (*tickets.TicketDTO, error) {
	return nil, nil
}

func (stubTicketsService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubAnalyticsService struct{}

func (stubAnalyticsService) Dashboard(ctx context.Context, userID *uuid.UUID) (*analytics.DashboardDTO, error) {
	return &analytics.DashboardDTO{}, nil
}

type stubContactService struct{}

func (stubContactService) Submit(ctx context.Context, req contact.SubmitRequest) (*contact.MessageDTO, error) {
	return &contact.MessageDTO{}, nil
}

func (stubContactService) List(ctx context.Context) ([]contact.MessageDTO, error) {
	return nil, nil
}

type stubFilesService struct{}

func (stubFilesService) Upload(ctx context.Context, user *models.User, input files.UploadInput) (*files.FileDTO, error) {
	return &files.FileDTO{}, nil
}

func (stubFilesService) List(ctx context.Context, user *models.User) ([]files.FileDTO, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Params{
		Config:         cfg,
		Logger:         logg,
		DB:             stubPinger{},
		Redis:          nil,
		SessionChecker: stubSessionChecker{},
		Users:          nil,
		Auth:           stubAuthService{},
		Register:       stubRegisterService{},
		Account:        stubAccountService{},
		Workspace:      stubWorkspaceService{},
		Invitations:    stubInvitationsService{},
		Catalog:        stubCatalogService{},
		Bookings:       stubBookingsService{},
		Orders:         stubOrdersService{},
		Tickets:        stubTicketsService{},
		Analytics:      stubAnalyticsService{},
		Contact:        stubContactService{},
		Billing:        nil,
		Files:          stubFilesService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.SystemRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:     uuid.New(),
		Email:      "tester@example.com",
		SystemRole: role,
		JTI:        session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicPingIsOpen(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public ping got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.SystemRoleClient))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	client := httptest.NewRequest(http.MethodGet, "/api/admin/v1/ping", nil)
	client.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.SystemRoleClient))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, client)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/ping", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.SystemRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestInviteValidateRequiresToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/invitations/validate", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without token got %d", resp.Code)
	}
}

func TestPublicCatalogIsOpen(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/services", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}
