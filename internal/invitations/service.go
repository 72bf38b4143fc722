package invitations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/security"
	stripepkg "github.com/aetherdesk-ai/aetherdesk-backend/pkg/stripe"
)

const inviteTokenBytes = 32

type membersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.TeamMember, error)
	FindByEmailActiveOrPending(ctx context.Context, email string) (*models.TeamMember, error)
	FindByToken(ctx context.Context, token string) (*models.TeamMember, error)
	CreateTx(tx *gorm.DB, dto memberships.CreateMemberDTO) (*models.TeamMember, error)
	ActivateTx(tx *gorm.DB, id uuid.UUID, now time.Time) (*models.TeamMember, error)
	CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type usersRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateTx(tx *gorm.DB, dto users.CreateUserDTO) (*models.User, error)
}

type workspaceResolver interface {
	Resolve(ctx context.Context, user *models.User) workspace.TeamContext
	GetWorkspace(ctx context.Context, id uuid.UUID) (*workspace.WorkspaceDTO, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the invitation lifecycle: issue, validate, accept, remove.
type Service interface {
	Issue(ctx context.Context, actor *models.User, req IssueRequest) (*memberships.MemberDTO, error)
	Validate(ctx context.Context, token string) (*InviteDetailsDTO, error)
	AcceptDirect(ctx context.Context, authUser *models.User, req AcceptRequest) (*memberships.MemberDTO, error)
	AcceptForUser(ctx context.Context, user *models.User, token string) (*memberships.MemberDTO, error)
	Remove(ctx context.Context, actor *models.User, memberID uuid.UUID) error
}

// ServiceParams packages the dependencies for the invitation flow.
type ServiceParams struct {
	DB          txRunner
	Members     membersRepository
	Users       usersRepository
	Workspaces  workspaceResolver
	Outbox      outboxEmitter
	Billing     stripepkg.BillingAPI
	InviteCfg   config.InviteConfig
	PasswordCfg config.PasswordConfig
	Logger      *logger.Logger
}

type service struct {
	db          txRunner
	members     membersRepository
	users       usersRepository
	workspaces  workspaceResolver
	outbox      outboxEmitter
	billing     stripepkg.BillingAPI
	inviteCfg   config.InviteConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewService builds the invitation service with the provided dependencies.
// Billing may be nil; the team limit then falls back to the configured
// default size.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("members repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Workspaces == nil {
		return nil, fmt.Errorf("workspace resolver required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:          params.DB,
		members:     params.Members,
		users:       params.Users,
		workspaces:  params.Workspaces,
		outbox:      params.Outbox,
		billing:     params.Billing,
		inviteCfg:   params.InviteCfg,
		passwordCfg: params.PasswordCfg,
		logg:        params.Logger,
	}, nil
}

// Issue creates a pending member row and enqueues the invite email in the
// same transaction.
func (s *service) Issue(ctx context.Context, actor *models.User, req IssueRequest) (*memberships.MemberDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name is required")
	}
	role, err := enums.ParseMemberRole(req.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "the owner role cannot be granted by invitation")
	}

	tc := s.workspaces.Resolve(ctx, actor)
	if tc.OrganizationID == nil || (!tc.IsOwner && !tc.Permissions.InviteMembers) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "missing invite_members permission")
	}
	orgID := *tc.OrganizationID

	if _, err := s.members.FindByEmailActiveOrPending(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already belongs to a team")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing membership")
	}

	if err := s.checkTeamLimit(ctx, orgID, tc.OwnerEmail); err != nil {
		return nil, err
	}

	token, err := security.GenerateToken(inviteTokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invite token")
	}
	expiresAt := time.Now().Add(s.inviteCfg.TokenTTL)
	actorID := actor.ID

	var member *models.TeamMember
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.members.CreateTx(tx, memberships.CreateMemberDTO{
			OrganizationID:  orgID,
			Email:           email,
			FullName:        fullName,
			Role:            role,
			InviteToken:     token,
			TokenExpiresAt:  expiresAt,
			InvitedByUserID: &actorID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create member")
		}
		member = created

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventInviteCreated,
			AggregateType: enums.OutboxAggregateTeamMember,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: actorID, OrganizationID: &orgID, Role: tc.Role.String()},
			Data: payloads.InviteCreatedEvent{
				MemberID:       created.ID,
				OrganizationID: orgID,
				Email:          email,
				FullName:       fullName,
				Role:           role,
				InviteToken:    token,
				ExpiresAt:      expiresAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrganizationID(ctx, orgID.String())
	s.logg.Info(logCtx, "team invitation issued")
	return memberships.ToDTO(member), nil
}

// checkTeamLimit enforces the plan-based member quota. The limit comes from
// the owner's active Stripe subscription; any billing failure falls back to
// the configured default rather than blocking the invite.
func (s *service) checkTeamLimit(ctx context.Context, orgID uuid.UUID, ownerEmail string) error {
	count, err := s.members.CountByOrganization(ctx, orgID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count team members")
	}

	limit := s.inviteCfg.DefaultTeamSize
	if s.billing != nil && ownerEmail != "" {
		if plan := s.activePlan(ctx, ownerEmail); plan != "" {
			limit = stripepkg.TeamLimitForPlan(plan, s.inviteCfg.DefaultTeamSize)
		}
	}

	if count >= int64(limit) {
		return pkgerrors.New(pkgerrors.CodeForbidden,
			fmt.Sprintf("team limit of %d members reached for the current plan", limit))
	}
	return nil
}

func (s *service) activePlan(ctx context.Context, ownerEmail string) string {
	customer, err := s.billing.FindCustomerByEmail(ctx, ownerEmail)
	if err != nil || customer == nil {
		if err != nil {
			s.logg.Warn(ctx, "stripe customer lookup failed, using default team limit")
		}
		return ""
	}
	plan, err := s.billing.ActivePlan(ctx, customer.ID)
	if err != nil {
		s.logg.Warn(ctx, "stripe subscription lookup failed, using default team limit")
		return ""
	}
	return plan
}

// Validate resolves an invite token into its details. The same checks run
// on both acceptance paths, so expiry is always enforced.
func (s *service) Validate(ctx context.Context, token string) (*InviteDetailsDTO, error) {
	member, err := s.validateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	details := &InviteDetailsDTO{
		MemberID:       member.ID,
		OrganizationID: member.OrganizationID,
		Email:          member.Email,
		FullName:       member.FullName,
		Role:           member.Role,
	}
	if member.TokenExpiresAt != nil {
		details.ExpiresAt = *member.TokenExpiresAt
	}
	if ws, err := s.workspaces.GetWorkspace(ctx, member.OrganizationID); err == nil {
		details.WorkspaceName = ws.Name
	}
	if _, err := s.users.FindByEmail(ctx, member.Email); err == nil {
		details.HasAccount = true
	}
	return details, nil
}

func (s *service) validateToken(ctx context.Context, token string) (*models.TeamMember, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}

	member, err := s.members.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitation is invalid or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find invitation")
	}
	if member.Status == enums.MembershipStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invitation has already been accepted")
	}
	if member.TokenExpiresAt == nil || time.Now().After(*member.TokenExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invitation has expired")
	}
	return member, nil
}

// AcceptDirect activates the invitation from the acceptance page. An
// authenticated caller is activated immediately; an anonymous caller first
// gets an account bound to the invited email.
func (s *service) AcceptDirect(ctx context.Context, authUser *models.User, req AcceptRequest) (*memberships.MemberDTO, error) {
	member, err := s.validateToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	if authUser != nil {
		if authUser.Email != member.Email {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invitation was issued to a different email")
		}
		return s.activate(ctx, member, authUser.ID)
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = member.FullName
	}
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	if _, err := s.users.FindByEmail(ctx, member.Email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account already exists for this email, log in to accept")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing account")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var activated *models.TeamMember
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		// The invite email already proved address ownership, so the new
		// account skips the confirmation flow.
		user, err := s.users.CreateTx(tx, users.CreateUserDTO{
			Email:        member.Email,
			PasswordHash: passwordHash,
			FullName:     fullName,
			SystemRole:   enums.SystemRoleClient,
			Confirmed:    true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
		}
		activated, err = s.activateTx(ctx, tx, member, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return memberships.ToDTO(activated), nil
}

// AcceptForUser is the login-path acceptance: the caller authenticated
// first and presents the token with their session.
func (s *service) AcceptForUser(ctx context.Context, user *models.User, token string) (*memberships.MemberDTO, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	member, err := s.validateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	// Exact match against the stored email, including case.
	if user.Email != member.Email {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invitation was issued to a different email")
	}
	return s.activate(ctx, member, user.ID)
}

func (s *service) activate(ctx context.Context, member *models.TeamMember, actorID uuid.UUID) (*memberships.MemberDTO, error) {
	var activated *models.TeamMember
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		activated, err = s.activateTx(ctx, tx, member, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return memberships.ToDTO(activated), nil
}

func (s *service) activateTx(ctx context.Context, tx *gorm.DB, member *models.TeamMember, actorID uuid.UUID) (*models.TeamMember, error) {
	now := time.Now()
	activated, err := s.members.ActivateTx(tx, member.ID, now)
	if err != nil {
		if errors.Is(err, memberships.ErrNotPending) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invitation has already been accepted")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate member")
	}

	orgID := activated.OrganizationID
	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.OutboxEventTeamMemberActivated,
		AggregateType: enums.OutboxAggregateTeamMember,
		AggregateID:   activated.ID,
		Actor:         &outbox.ActorRef{UserID: actorID, OrganizationID: &orgID, Role: activated.Role.String()},
		Data: payloads.TeamMemberActivatedEvent{
			MemberID:       activated.ID,
			OrganizationID: orgID,
			Email:          activated.Email,
			ActivatedAt:    now,
		},
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrganizationID(ctx, orgID.String())
	s.logg.Info(logCtx, "team invitation accepted")
	return activated, nil
}

// Remove hard-deletes a member row. Revoking a pending invite uses the
// same path.
func (s *service) Remove(ctx context.Context, actor *models.User, memberID uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	tc := s.workspaces.Resolve(ctx, actor)
	if tc.OrganizationID == nil || (!tc.IsOwner && !tc.Permissions.RemoveMembers) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "missing remove_members permission")
	}

	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find member")
	}
	if member.OrganizationID != *tc.OrganizationID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}

	if err := s.members.Delete(ctx, memberID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete member")
	}

	logCtx := s.logg.WithOrganizationID(ctx, tc.OrganizationID.String())
	s.logg.Info(logCtx, "team member removed")
	return nil
}
