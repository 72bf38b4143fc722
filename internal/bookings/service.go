package bookings

import (
	"context"
	"errors"
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
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/pagination"
)

var validate = validator.New()

type bookingRepository interface {
	CreateTx(tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, params ListParams, cursor *pagination.Cursor) ([]models.Booking, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) (*models.Booking, error)
	UpdateProject(ctx context.Context, id uuid.UUID, projectStatus string, projectProgress int) (*models.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes booking intake and the admin tracking surface.
type Service interface {
	Create(ctx context.Context, user *models.User, req CreateBookingRequest) (*BookingDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BookingDTO, error)
	List(ctx context.Context, params ListParams) (*BookingList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*BookingDTO, error)
	UpdateProject(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*BookingDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams packages the booking service dependencies.
type ServiceParams struct {
	DB     txRunner
	Repo   bookingRepository
	Outbox outboxEmitter
	Logger *logger.Logger
}

type service struct {
	db     txRunner
	repo   bookingRepository
	outbox outboxEmitter
	logg   *logger.Logger
}

// NewService builds the booking service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("booking repository required")
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

// Create validates the intake form, tags the row with the submitting user and
// queues the booking.created notification in the same transaction, so the
// notification can never be lost after a successful write nor sent for a
// rolled-back one.
func (s *service) Create(ctx context.Context, user *models.User, req CreateBookingRequest) (*BookingDTO, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := validateIntake(req); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:                 uuid.New(),
		UserID:             user.ID,
		ServiceID:          req.ServiceID,
		PackageID:          req.PackageID,
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.TrimSpace(req.Email),
		Phone:              strings.TrimSpace(req.Phone),
		Country:            strings.TrimSpace(req.Country),
		ProjectDescription: strings.TrimSpace(req.ProjectDescription),
		CommunicationPref:  strings.TrimSpace(req.CommunicationPref),
		Timeline:           strings.TrimSpace(req.Timeline),
		Budget:             strings.TrimSpace(req.Budget),
		Status:             enums.BookingStatusPending,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, booking); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventBookingCreated,
			AggregateType: enums.OutboxAggregateBooking,
			AggregateID:   booking.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID},
			Data: payloads.BookingCreatedEvent{
				BookingID:   booking.ID,
				UserID:      booking.UserID,
				ServiceID:   booking.ServiceID,
				PackageID:   booking.PackageID,
				Name:        booking.Name,
				Email:       booking.Email,
				Phone:       booking.Phone,
				Country:     booking.Country,
				Description: booking.ProjectDescription,
				Timeline:    booking.Timeline,
				Budget:      booking.Budget,
			},
			Version:    1,
			OccurredAt: time.Now(),
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create booking")
	}

	s.logg.Info(s.logg.WithField(ctx, "booking_id", booking.ID.String()), "booking created")
	return ToDTO(booking), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find booking")
	}
	return ToDTO(booking), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*BookingList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}

	list := &BookingList{Bookings: ToDTOs(rows)}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

// UpdateStatus is an unconditional overwrite. Any valid status may replace
// any other, including reverting a completed booking to pending.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*BookingDTO, error) {
	status, err := enums.ParseBookingStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	booking, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update booking status")
	}
	return ToDTO(booking), nil
}

func (s *service) UpdateProject(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*BookingDTO, error) {
	if req.ProjectProgress < 0 || req.ProjectProgress > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project_progress must be between 0 and 100")
	}

	booking, err := s.repo.UpdateProject(ctx, id, strings.TrimSpace(req.ProjectStatus), req.ProjectProgress)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update booking project")
	}
	return ToDTO(booking), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete booking")
	}
	return nil
}

func validateIntake(req CreateBookingRequest) error {
	required := map[string]string{
		"name":                req.Name,
		"email":               req.Email,
		"phone":               req.Phone,
		"country":             req.Country,
		"project_description": req.ProjectDescription,
		"communication_pref":  req.CommunicationPref,
		"timeline":            req.Timeline,
		"budget":              req.Budget,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is required", field))
		}
	}
	if err := validate.Var(strings.TrimSpace(req.Email), "email"); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "email format is invalid")
	}
	return nil
}
