package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/internal/auth"
	pkgauth "github.com/aetherdesk-ai/aetherdesk-backend/pkg/auth"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/auth/session"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

type stubAuthService struct {
	lastLogin     auth.LoginRequest
	loginResp     *auth.LoginResponse
	loginErr      error
	lastLogout    string
	logoutErr     error
	lastRefresh   string
	refreshResp   *auth.RefreshResponse
	refreshErr    error
	lastMe        uuid.UUID
	meResp        *auth.MeResponse
	meErr         error
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.lastLogin = req
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) Refresh(ctx context.Context, claims *pkgauth.AccessTokenClaims, refreshToken string) (*auth.RefreshResponse, error) {
	s.lastRefresh = refreshToken
	return s.refreshResp, s.refreshErr
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.lastLogout = accessID
	return s.logoutErr
}

func (s *stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*auth.MeResponse, error) {
	s.lastMe = userID
	return s.meResp, s.meErr
}

func mintControllerToken(t *testing.T, cfg config.JWTConfig) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID:     uuid.New(),
		Email:      "tester@example.com",
		SystemRole: enums.SystemRoleClient,
		JTI:        accessID,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	return token, accessID
}

func TestAuthLoginPassesBodyThrough(t *testing.T) {
	svc := &stubAuthService{loginResp: &auth.LoginResponse{AccessToken: "at", RefreshToken: "rt"}}
	handler := AuthLogin(svc, nil)

	body, _ := json.Marshal(map[string]string{"email": "tester@example.com", "password": "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastLogin.Email != "tester@example.com" {
		t.Fatalf("unexpected email %q", svc.lastLogin.Email)
	}
}

func TestAuthLoginRejectsUnknownFields(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte(`{"email":"a@b.co","password":"x","extra":true}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	svc := &stubAuthService{}
	handler := AuthLogout(svc, cfg, nil)

	token, jti := mintControllerToken(t, cfg)
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastLogout != jti {
		t.Fatalf("expected revoked %s got %s", jti, svc.lastLogout)
	}
}

func TestAuthLogoutRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	handler := AuthLogout(&stubAuthService{}, cfg, nil)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRefreshRotates(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	svc := &stubAuthService{refreshResp: &auth.RefreshResponse{AccessToken: "new-at", RefreshToken: "new-rt"}}
	handler := AuthRefresh(svc, cfg, nil)

	token, _ := mintControllerToken(t, cfg)
	body, _ := json.Marshal(map[string]string{"refresh_token": "old-rt"})
	req := httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastRefresh != "old-rt" {
		t.Fatalf("expected refresh token old-rt got %s", svc.lastRefresh)
	}

	var payload struct {
		Data auth.RefreshResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.AccessToken != "new-at" {
		t.Fatalf("unexpected access token %q", payload.Data.AccessToken)
	}
}
