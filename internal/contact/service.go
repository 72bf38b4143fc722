package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
)

var validate = validator.New()

// SubmitRequest carries a marketing-site contact form submission. The
// endpoint is public, so no actor is attached.
type SubmitRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message" validate:"required"`
}

// MessageDTO is the stored submission.
type MessageDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type contactRepository interface {
	CreateTx(tx *gorm.DB, message *models.ContactMessage) error
	List(ctx context.Context) ([]models.ContactMessage, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service handles public contact submissions.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*MessageDTO, error)
	List(ctx context.Context) ([]MessageDTO, error)
}

// ServiceParams packages the contact service dependencies.
type ServiceParams struct {
	DB     txRunner
	Repo   contactRepository
	Outbox outboxEmitter
	Logger *logger.Logger
}

type service struct {
	db     txRunner
	repo   contactRepository
	outbox outboxEmitter
	logg   *logger.Logger
}

// NewService builds the contact service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		outbox: params.Outbox,
		logg:   params.Logger,
	}, nil
}

// Submit stores the message and queues the forwarding notification in the
// same transaction.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (*MessageDTO, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)
	if name == "" || email == "" || message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email and message are required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email format is invalid")
	}

	row := &models.ContactMessage{
		ID:      uuid.New(),
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(req.Subject),
		Message: message,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, row); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventContactFormSubmitted,
			AggregateType: enums.OutboxAggregateContact,
			AggregateID:   row.ID,
			Data: payloads.ContactFormSubmittedEvent{
				Name:    row.Name,
				Email:   row.Email,
				Subject: row.Subject,
				Message: row.Message,
			},
			Version:    1,
			OccurredAt: time.Now(),
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "submit contact message")
	}

	s.logg.Info(s.logg.WithField(ctx, "contact_id", row.ID.String()), "contact message submitted")
	return toDTO(row), nil
}

func (s *service) List(ctx context.Context) ([]MessageDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contact messages")
	}
	out := make([]MessageDTO, len(rows))
	for i := range rows {
		out[i] = *toDTO(&rows[i])
	}
	return out, nil
}

func toDTO(m *models.ContactMessage) *MessageDTO {
	return &MessageDTO{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}
