package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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
	resetTokenBytes = 32
	resetTokenTTL   = time.Hour
)

type accountUserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByConfirmationToken(ctx context.Context, token string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	SetConfirmationToken(ctx context.Context, id uuid.UUID, token string) error
	MarkConfirmed(ctx context.Context, id uuid.UUID) error
}

// AccountService covers self-service account maintenance: email change,
// password reset, and the confirmation flow.
type AccountService interface {
	ChangeEmail(ctx context.Context, userID uuid.UUID, req ChangeEmailRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req PasswordResetConfirmRequest) error
	ConfirmEmail(ctx context.Context, token string) error
	ResendConfirmation(ctx context.Context, userID uuid.UUID) error
}

// AccountServiceParams bundles the account service dependencies.
type AccountServiceParams struct {
	DB          txRunner
	Users       accountUserRepository
	Outbox      outboxEmitter
	PasswordCfg config.PasswordConfig
	Logger      *logger.Logger
}

type accountService struct {
	db          txRunner
	users       accountUserRepository
	outbox      outboxEmitter
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewAccountService builds the account maintenance service.
func NewAccountService(params AccountServiceParams) (AccountService, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &accountService{
		db:          params.DB,
		users:       params.Users,
		outbox:      params.Outbox,
		passwordCfg: params.PasswordCfg,
		logg:        params.Logger,
	}, nil
}

// ChangeEmail re-authenticates with the current password before any write
// happens; a wrong password leaves the account untouched.
func (s *accountService) ChangeEmail(ctx context.Context, userID uuid.UUID, req ChangeEmailRequest) error {
	newEmail := strings.ToLower(strings.TrimSpace(req.NewEmail))
	if newEmail == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "new_email is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	valid, err := security.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	if newEmail == user.Email {
		return nil
	}
	if _, err := s.users.FindByEmail(ctx, newEmail); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}

	if err := s.users.UpdateEmail(ctx, userID, newEmail); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update email")
	}

	logCtx := s.logg.WithUserID(ctx, userID.String())
	s.logg.Info(logCtx, "account email changed")
	return nil
}

// RequestPasswordReset stores a fresh reset token and enqueues the email.
// An unknown address is reported as success so the endpoint cannot be used
// to probe for accounts.
func (s *accountService) RequestPasswordReset(ctx context.Context, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	token, err := security.GenerateToken(resetTokenBytes)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	expiresAt := time.Now().Add(resetTokenTTL)

	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventPasswordResetRequest,
			AggregateType: enums.OutboxAggregateUser,
			AggregateID:   user.ID,
			Data: payloads.PasswordResetRequestedEvent{
				UserID:     user.ID,
				Email:      user.Email,
				ResetToken: token,
				ExpiresAt:  expiresAt,
			},
		})
	})
	if err != nil {
		return err
	}

	logCtx := s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(logCtx, "password reset requested")
	return nil
}

// ResetPassword completes the flow with the emailed token. The repository
// write clears the token so each token works once.
func (s *accountService) ResetPassword(ctx context.Context, req PasswordResetConfirmRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}
	if len(req.NewPassword) < minPasswordLen {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	user, err := s.users.FindByResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reset token is invalid or expired")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find reset token")
	}
	if user.ResetExpiresAt == nil || time.Now().After(*user.ResetExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "reset token has expired")
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	logCtx := s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(logCtx, "password reset completed")
	return nil
}

// ConfirmEmail flips the confirmed flag for the token's account.
func (s *accountService) ConfirmEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}

	user, err := s.users.FindByConfirmationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "confirmation token is invalid")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find confirmation token")
	}

	if err := s.users.MarkConfirmed(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark confirmed")
	}
	return nil
}

// ResendConfirmation issues a new token and re-enqueues the email.
func (s *accountService) ResendConfirmation(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}
	if user.Confirmed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "email already confirmed")
	}

	token, err := security.GenerateToken(confirmationTokenBytes)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate confirmation token")
	}
	if err := s.users.SetConfirmationToken(ctx, user.ID, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store confirmation token")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventUserRegistered,
			AggregateType: enums.OutboxAggregateUser,
			AggregateID:   user.ID,
			Data: payloads.UserRegisteredEvent{
				UserID:            user.ID,
				Email:             user.Email,
				FullName:          user.FullName,
				ConfirmationToken: token,
			},
		})
	})
}
