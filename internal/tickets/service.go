package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/pagination"
)

type ticketRepository interface {
	CreateTx(tx *gorm.DB, ticket *models.Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	List(ctx context.Context, params ListParams, cursor *pagination.Cursor) ([]models.Ticket, *pagination.Cursor, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status enums.TicketStatus, now time.Time) (*models.Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes ticket intake plus the admin status surface. Status
// changes are published as row events so ticket lists can update live.
type Service interface {
	Create(ctx context.Context, user *models.User, req CreateTicketRequest) (*TicketDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*TicketDTO, error)
	List(ctx context.Context, params ListParams) (*TicketList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*TicketDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams packages the ticket service dependencies.
type ServiceParams struct {
	DB     txRunner
	Repo   ticketRepository
	Outbox outboxEmitter
	Logger *logger.Logger
}

type service struct {
	db     txRunner
	repo   ticketRepository
	outbox outboxEmitter
	logg   *logger.Logger
}

// NewService builds the ticket service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("ticket repository required")
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

// Create inserts the ticket and its ticket.created notification in one
// transaction. Priority defaults to medium when omitted.
func (s *service) Create(ctx context.Context, user *models.User, req CreateTicketRequest) (*TicketDTO, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	subject := strings.TrimSpace(req.Subject)
	description := strings.TrimSpace(req.Description)
	if subject == "" || description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject and description are required")
	}

	priority := enums.TicketPriorityMedium
	if strings.TrimSpace(req.Priority) != "" {
		parsed, err := enums.ParseTicketPriority(req.Priority)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		priority = parsed
	}

	ticket := &models.Ticket{
		ID:          uuid.New(),
		UserID:      user.ID,
		Subject:     subject,
		Description: description,
		Priority:    priority,
		Status:      enums.TicketStatusOpen,
		ServiceID:   req.ServiceID,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, ticket); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventTicketCreated,
			AggregateType: enums.OutboxAggregateTicket,
			AggregateID:   ticket.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID},
			Data: payloads.TicketCreatedEvent{
				TicketID:  ticket.ID,
				UserID:    ticket.UserID,
				Subject:   ticket.Subject,
				Priority:  ticket.Priority,
				ServiceID: ticket.ServiceID,
			},
			Version:    1,
			OccurredAt: time.Now(),
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create ticket")
	}

	s.logg.Info(s.logg.WithField(ctx, "ticket_id", ticket.ID.String()), "ticket created")
	return ToDTO(ticket), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TicketDTO, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find ticket")
	}
	return ToDTO(ticket), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*TicketList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tickets")
	}

	list := &TicketList{Tickets: ToDTOs(rows)}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

// UpdateStatus overwrites the status unconditionally. Closing stamps
// closed_at and reopening clears it. The row event rides in the same
// transaction as the update.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*TicketDTO, error) {
	status, err := enums.ParseTicketStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var ticket *models.Ticket
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		updated, err := s.repo.UpdateStatusTx(tx, id, status, time.Now())
		if err != nil {
			return err
		}
		ticket = updated
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventTicketUpdated,
			AggregateType: enums.OutboxAggregateTicket,
			AggregateID:   ticket.ID,
			Data: payloads.TicketUpdatedEvent{
				TicketID:  ticket.ID,
				Status:    ticket.Status,
				UpdatedAt: ticket.UpdatedAt,
			},
			Version:    1,
			OccurredAt: time.Now(),
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update ticket status")
	}
	return ToDTO(ticket), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete ticket")
	}
	return nil
}
