package invitations

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/internal/memberships"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/users"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/workspace"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	stripepkg "github.com/aetherdesk-ai/aetherdesk-backend/pkg/stripe"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubMembers struct {
	byToken *models.TeamMember
	byEmail *models.TeamMember
	byID    *models.TeamMember
	count   int64

	created   *memberships.CreateMemberDTO
	activated *uuid.UUID
	deleted   *uuid.UUID
}

func (s *stubMembers) FindByID(context.Context, uuid.UUID) (*models.TeamMember, error) {
	if s.byID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byID, nil
}

func (s *stubMembers) FindByEmailActiveOrPending(context.Context, string) (*models.TeamMember, error) {
	if s.byEmail == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byEmail, nil
}

func (s *stubMembers) FindByToken(context.Context, string) (*models.TeamMember, error) {
	if s.byToken == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byToken, nil
}

func (s *stubMembers) CreateTx(_ *gorm.DB, dto memberships.CreateMemberDTO) (*models.TeamMember, error) {
	s.created = &dto
	token := dto.InviteToken
	expires := dto.TokenExpiresAt
	return &models.TeamMember{
		ID:             uuid.New(),
		OrganizationID: dto.OrganizationID,
		Email:          dto.Email,
		FullName:       dto.FullName,
		Role:           dto.Role,
		Status:         enums.MembershipStatusPending,
		InviteToken:    &token,
		TokenExpiresAt: &expires,
	}, nil
}

func (s *stubMembers) ActivateTx(_ *gorm.DB, id uuid.UUID, now time.Time) (*models.TeamMember, error) {
	if s.byToken == nil || s.byToken.Status != enums.MembershipStatusPending {
		return nil, memberships.ErrNotPending
	}
	s.activated = &id
	activated := *s.byToken
	activated.Status = enums.MembershipStatusActive
	activated.ActivatedAt = &now
	activated.InviteToken = nil
	activated.TokenExpiresAt = nil
	return &activated, nil
}

func (s *stubMembers) CountByOrganization(context.Context, uuid.UUID) (int64, error) {
	return s.count, nil
}

func (s *stubMembers) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = &id
	return nil
}

type stubUsers struct {
	byEmail *models.User
	created *users.CreateUserDTO
}

func (s *stubUsers) FindByEmail(context.Context, string) (*models.User, error) {
	if s.byEmail == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byEmail, nil
}

func (s *stubUsers) CreateTx(_ *gorm.DB, dto users.CreateUserDTO) (*models.User, error) {
	s.created = &dto
	return &models.User{ID: uuid.New(), Email: dto.Email, FullName: dto.FullName}, nil
}

type stubWorkspaces struct {
	tc workspace.TeamContext
}

func (s *stubWorkspaces) Resolve(context.Context, *models.User) workspace.TeamContext {
	return s.tc
}

func (s *stubWorkspaces) GetWorkspace(context.Context, uuid.UUID) (*workspace.WorkspaceDTO, error) {
	return &workspace.WorkspaceDTO{Name: "Acme"}, nil
}

type stubOutbox struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubBilling struct {
	customer *stripe.Customer
	plan     string
	err      error
}

func (s *stubBilling) FindCustomerByEmail(context.Context, string) (*stripe.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.customer, nil
}

func (s *stubBilling) ActivePlan(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.plan, nil
}

func (s *stubBilling) ListInvoices(context.Context, string) ([]stripepkg.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []stripepkg.Invoice{}, nil
}

type testDeps struct {
	members *stubMembers
	users   *stubUsers
	ws      *stubWorkspaces
	outbox  *stubOutbox
	billing *stubBilling
}

func newTestService(t *testing.T, deps testDeps) Service {
	t.Helper()

	if deps.members == nil {
		deps.members = &stubMembers{}
	}
	if deps.users == nil {
		deps.users = &stubUsers{}
	}
	if deps.ws == nil {
		deps.ws = &stubWorkspaces{}
	}
	if deps.outbox == nil {
		deps.outbox = &stubOutbox{}
	}

	params := ServiceParams{
		DB:         stubTxRunner{},
		Members:    deps.members,
		Users:      deps.users,
		Workspaces: deps.ws,
		Outbox:     deps.outbox,
		InviteCfg:  config.InviteConfig{TokenTTL: 24 * time.Hour, DefaultTeamSize: 3},
		PasswordCfg: config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Logger: logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard}),
	}
	if deps.billing != nil {
		params.Billing = deps.billing
	}

	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func ownerContext(orgID uuid.UUID) workspace.TeamContext {
	return workspace.TeamContext{
		Role:           enums.MemberRoleOwner,
		OrganizationID: &orgID,
		IsOwner:        true,
		OwnerEmail:     "owner@example.com",
		Permissions:    workspace.FullAccess(),
	}
}

func pendingMember(orgID uuid.UUID, email string, expiresIn time.Duration) *models.TeamMember {
	token := "tok-abc"
	expires := time.Now().Add(expiresIn)
	return &models.TeamMember{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          email,
		FullName:       "Invitee",
		Role:           enums.MemberRoleMember,
		Status:         enums.MembershipStatusPending,
		InviteToken:    &token,
		TokenExpiresAt: &expires,
	}
}

func TestIssueRequiresInvitePermission(t *testing.T) {
	orgID := uuid.New()
	ws := &stubWorkspaces{tc: workspace.TeamContext{
		Role:           enums.MemberRoleMember,
		OrganizationID: &orgID,
		Permissions:    workspace.NoAccess(),
	}}
	svc := newTestService(t, testDeps{ws: ws})

	_, err := svc.Issue(context.Background(), &models.User{ID: uuid.New()}, IssueRequest{
		Email:    "new@example.com",
		FullName: "New Member",
		Role:     "member",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestIssueRejectsOwnerRole(t *testing.T) {
	svc := newTestService(t, testDeps{ws: &stubWorkspaces{tc: ownerContext(uuid.New())}})

	_, err := svc.Issue(context.Background(), &models.User{ID: uuid.New()}, IssueRequest{
		Email:    "new@example.com",
		FullName: "New Member",
		Role:     "owner",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIssueRejectsExistingMember(t *testing.T) {
	orgID := uuid.New()
	members := &stubMembers{byEmail: pendingMember(orgID, "new@example.com", time.Hour)}
	svc := newTestService(t, testDeps{ws: &stubWorkspaces{tc: ownerContext(orgID)}, members: members})

	_, err := svc.Issue(context.Background(), &models.User{ID: uuid.New()}, IssueRequest{
		Email:    "new@example.com",
		FullName: "New Member",
		Role:     "member",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestIssueEnforcesPlanLimit(t *testing.T) {
	orgID := uuid.New()
	members := &stubMembers{count: 3}
	billing := &stubBilling{customer: &stripe.Customer{ID: "cus_1"}, plan: "starter"}
	svc := newTestService(t, testDeps{ws: &stubWorkspaces{tc: ownerContext(orgID)}, members: members, billing: billing})

	_, err := svc.Issue(context.Background(), &models.User{ID: uuid.New()}, IssueRequest{
		Email:    "new@example.com",
		FullName: "New Member",
		Role:     "member",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestIssueFallsBackWhenBillingUnavailable(t *testing.T) {
	orgID := uuid.New()
	members := &stubMembers{count: 2}
	billing := &stubBilling{err: errors.New("stripe down")}
	ob := &stubOutbox{}
	svc := newTestService(t, testDeps{ws: &stubWorkspaces{tc: ownerContext(orgID)}, members: members, billing: billing, outbox: ob})

	dto, err := svc.Issue(context.Background(), &models.User{ID: uuid.New()}, IssueRequest{
		Email:    "new@example.com",
		FullName: "New Member",
		Role:     "member",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if dto.Status != enums.MembershipStatusPending {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}
}

func TestIssueCreatesMemberAndEmitsEvent(t *testing.T) {
	orgID := uuid.New()
	actor := &models.User{ID: uuid.New(), Email: "owner@example.com"}
	members := &stubMembers{count: 1}
	ob := &stubOutbox{}
	svc := newTestService(t, testDeps{ws: &stubWorkspaces{tc: ownerContext(orgID)}, members: members, outbox: ob})

	dto, err := svc.Issue(context.Background(), actor, IssueRequest{
		Email:    "new@example.com",
		FullName: "New Member",
		Role:     "admin",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if dto.Role != enums.MemberRoleAdmin {
		t.Fatalf("unexpected role %s", dto.Role)
	}
	if members.created == nil {
		t.Fatal("expected member row created")
	}
	if members.created.InviteToken == "" {
		t.Fatal("expected token generated")
	}
	if members.created.InvitedByUserID == nil || *members.created.InvitedByUserID != actor.ID {
		t.Fatal("expected inviter recorded")
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.OutboxEventInviteCreated {
		t.Fatalf("expected invite.created event, got %+v", ob.events)
	}
}

func TestIssueLegacyOwnerSpellingStillRejected(t *testing.T) {
	svc := newTestService(t, testDeps{ws: &stubWorkspaces{tc: ownerContext(uuid.New())}})

	_, err := svc.Issue(context.Background(), &models.User{ID: uuid.New()}, IssueRequest{
		Email:    "new@example.com",
		FullName: "New Member",
		Role:     "workspaceOwner",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	svc := newTestService(t, testDeps{})

	_, err := svc.Validate(context.Background(), "nope")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	members := &stubMembers{byToken: pendingMember(uuid.New(), "in@example.com", -time.Minute)}
	svc := newTestService(t, testDeps{members: members})

	_, err := svc.Validate(context.Background(), "tok-abc")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestValidateAlreadyAccepted(t *testing.T) {
	member := pendingMember(uuid.New(), "in@example.com", time.Hour)
	member.Status = enums.MembershipStatusActive
	svc := newTestService(t, testDeps{members: &stubMembers{byToken: member}})

	_, err := svc.Validate(context.Background(), "tok-abc")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestValidateReturnsDetails(t *testing.T) {
	orgID := uuid.New()
	members := &stubMembers{byToken: pendingMember(orgID, "in@example.com", time.Hour)}
	svc := newTestService(t, testDeps{members: members, users: &stubUsers{byEmail: &models.User{ID: uuid.New()}}})

	details, err := svc.Validate(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if details.OrganizationID != orgID || details.Email != "in@example.com" {
		t.Fatalf("unexpected details %+v", details)
	}
	if details.WorkspaceName != "Acme" {
		t.Fatalf("expected workspace name, got %q", details.WorkspaceName)
	}
	if !details.HasAccount {
		t.Fatal("expected has_account true")
	}
}

func TestAcceptDirectCreatesAccount(t *testing.T) {
	orgID := uuid.New()
	members := &stubMembers{byToken: pendingMember(orgID, "in@example.com", time.Hour)}
	userStub := &stubUsers{}
	ob := &stubOutbox{}
	svc := newTestService(t, testDeps{members: members, users: userStub, outbox: ob})

	dto, err := svc.AcceptDirect(context.Background(), nil, AcceptRequest{
		Token:    "tok-abc",
		FullName: "Invitee",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if dto.Status != enums.MembershipStatusActive {
		t.Fatalf("expected active, got %s", dto.Status)
	}
	if userStub.created == nil {
		t.Fatal("expected account created")
	}
	if userStub.created.Email != "in@example.com" {
		t.Fatalf("account bound to %q, want invited email", userStub.created.Email)
	}
	if !userStub.created.Confirmed {
		t.Fatal("expected invite-created account to skip confirmation")
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.OutboxEventTeamMemberActivated {
		t.Fatalf("expected activation event, got %+v", ob.events)
	}
}

func TestAcceptDirectRequiresPassword(t *testing.T) {
	members := &stubMembers{byToken: pendingMember(uuid.New(), "in@example.com", time.Hour)}
	svc := newTestService(t, testDeps{members: members})

	_, err := svc.AcceptDirect(context.Background(), nil, AcceptRequest{Token: "tok-abc"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAcceptDirectAuthenticatedMismatch(t *testing.T) {
	members := &stubMembers{byToken: pendingMember(uuid.New(), "in@example.com", time.Hour)}
	svc := newTestService(t, testDeps{members: members})

	_, err := svc.AcceptDirect(context.Background(), &models.User{ID: uuid.New(), Email: "other@example.com"}, AcceptRequest{Token: "tok-abc"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAcceptForUserEmailIsCaseSensitive(t *testing.T) {
	members := &stubMembers{byToken: pendingMember(uuid.New(), "in@example.com", time.Hour)}
	svc := newTestService(t, testDeps{members: members})

	_, err := svc.AcceptForUser(context.Background(), &models.User{ID: uuid.New(), Email: "In@Example.com"}, "tok-abc")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden on case mismatch, got %v", err)
	}
}

func TestAcceptForUserActivates(t *testing.T) {
	orgID := uuid.New()
	members := &stubMembers{byToken: pendingMember(orgID, "in@example.com", time.Hour)}
	ob := &stubOutbox{}
	svc := newTestService(t, testDeps{members: members, outbox: ob})

	dto, err := svc.AcceptForUser(context.Background(), &models.User{ID: uuid.New(), Email: "in@example.com"}, "tok-abc")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if dto.Status != enums.MembershipStatusActive {
		t.Fatalf("expected active, got %s", dto.Status)
	}
	if members.activated == nil {
		t.Fatal("expected activation write")
	}
}

func TestRemoveRequiresPermission(t *testing.T) {
	orgID := uuid.New()
	ws := &stubWorkspaces{tc: workspace.TeamContext{
		Role:           enums.MemberRoleViewer,
		OrganizationID: &orgID,
		Permissions:    workspace.NoAccess(),
	}}
	svc := newTestService(t, testDeps{ws: ws})

	err := svc.Remove(context.Background(), &models.User{ID: uuid.New()}, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRemoveScopedToOwnWorkspace(t *testing.T) {
	orgID := uuid.New()
	foreign := pendingMember(uuid.New(), "other@example.com", time.Hour)
	members := &stubMembers{byID: foreign}
	svc := newTestService(t, testDeps{ws: &stubWorkspaces{tc: ownerContext(orgID)}, members: members})

	err := svc.Remove(context.Background(), &models.User{ID: uuid.New()}, foreign.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign member, got %v", err)
	}
	if members.deleted != nil {
		t.Fatal("expected no delete")
	}
}

func TestRemoveDeletesMember(t *testing.T) {
	orgID := uuid.New()
	member := pendingMember(orgID, "gone@example.com", time.Hour)
	members := &stubMembers{byID: member}
	svc := newTestService(t, testDeps{ws: &stubWorkspaces{tc: ownerContext(orgID)}, members: members})

	if err := svc.Remove(context.Background(), &models.User{ID: uuid.New()}, member.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if members.deleted == nil || *members.deleted != member.ID {
		t.Fatal("expected member deleted")
	}
}
