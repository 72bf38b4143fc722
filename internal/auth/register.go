package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/internal/users"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/security"
)

const (
	minPasswordLen         = 8
	confirmationTokenBytes = 32
)

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateTx(tx *gorm.DB, dto users.CreateUserDTO) (*models.User, error)
}

type registerWorkspaceRepository interface {
	CreateTx(tx *gorm.DB, ws *models.Workspace) error
}

// RegisterService handles onboarding: one account, one owned workspace, one
// confirmation email.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB          txRunner
	Users       registerUserRepository
	Workspaces  registerWorkspaceRepository
	Outbox      outboxEmitter
	PasswordCfg config.PasswordConfig
	Logger      *logger.Logger
}

type registerService struct {
	db          txRunner
	users       registerUserRepository
	workspaces  registerWorkspaceRepository
	outbox      outboxEmitter
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Workspaces == nil {
		return nil, fmt.Errorf("workspace repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &registerService{
		db:          params.DB,
		users:       params.Users,
		workspaces:  params.Workspaces,
		outbox:      params.Outbox,
		passwordCfg: params.PasswordCfg,
		logg:        params.Logger,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	confirmationToken, err := security.GenerateToken(confirmationTokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate confirmation token")
	}

	workspaceName := strings.TrimSpace(req.WorkspaceName)
	if workspaceName == "" {
		workspaceName = fullName
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.users.CreateTx(tx, users.CreateUserDTO{
			Email:             email,
			PasswordHash:      passwordHash,
			FullName:          fullName,
			Phone:             req.Phone,
			SystemRole:        enums.SystemRoleClient,
			ConfirmationToken: &confirmationToken,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user

		// Workspace rows share their owner's user id, which is what makes
		// the owner branch of the resolver a single keyed lookup.
		if err := s.workspaces.CreateTx(tx, &models.Workspace{
			ID:   user.ID,
			Name: workspaceName,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create workspace")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventUserRegistered,
			AggregateType: enums.OutboxAggregateUser,
			AggregateID:   user.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID},
			Data: payloads.UserRegisteredEvent{
				UserID:            user.ID,
				Email:             email,
				FullName:          fullName,
				ConfirmationToken: confirmationToken,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithUserID(ctx, created.ID.String())
	s.logg.Info(logCtx, "user registered")
	return users.FromModel(created), nil
}
