package bookings

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/pagination"
)

type stubBookingRepo struct {
	created   *models.Booking
	createErr error
	found     *models.Booking
	updated   *models.Booking
}

func (s *stubBookingRepo) CreateTx(_ *gorm.DB, booking *models.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = booking
	return nil
}

func (s *stubBookingRepo) FindByID(context.Context, uuid.UUID) (*models.Booking, error) {
	if s.found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.found, nil
}

func (s *stubBookingRepo) List(context.Context, ListParams, *pagination.Cursor) ([]models.Booking, *pagination.Cursor, error) {
	if s.found == nil {
		return nil, nil, nil
	}
	return []models.Booking{*s.found}, nil, nil
}

func (s *stubBookingRepo) UpdateStatus(_ context.Context, _ uuid.UUID, status enums.BookingStatus) (*models.Booking, error) {
	if s.found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	row := *s.found
	row.Status = status
	s.updated = &row
	return &row, nil
}

func (s *stubBookingRepo) UpdateProject(_ context.Context, _ uuid.UUID, projectStatus string, projectProgress int) (*models.Booking, error) {
	if s.found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	row := *s.found
	row.ProjectStatus = projectStatus
	row.ProjectProgress = projectProgress
	s.updated = &row
	return &row, nil
}

func (s *stubBookingRepo) Delete(context.Context, uuid.UUID) error {
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events  []outbox.DomainEvent
	emitErr error
}

func (s *stubOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	if s.emitErr != nil {
		return s.emitErr
	}
	s.events = append(s.events, event)
	return nil
}

func buildBookingService(t *testing.T, repo *stubBookingRepo, ob *stubOutbox) Service {
	t.Helper()

	if ob == nil {
		ob = &stubOutbox{}
	}
	svc, err := NewService(ServiceParams{
		DB:     stubTxRunner{},
		Repo:   repo,
		Outbox: ob,
		Logger: logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validIntake() CreateBookingRequest {
	return CreateBookingRequest{
		Name:               "Aya",
		Email:              "aya@example.com",
		Phone:              "+96650000000",
		Country:            "SA",
		ProjectDescription: "AI chatbot for support",
		CommunicationPref:  "email",
		Timeline:           "1-3 months",
		Budget:             "5000-10000",
	}
}

func TestCreateRequiresAllIntakeFields(t *testing.T) {
	svc := buildBookingService(t, &stubBookingRepo{}, nil)
	user := &models.User{ID: uuid.New()}

	req := validIntake()
	req.Country = "  "
	_, err := svc.Create(context.Background(), user, req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank country, got %v", err)
	}
}

func TestCreateRejectsMalformedEmail(t *testing.T) {
	svc := buildBookingService(t, &stubBookingRepo{}, nil)
	user := &models.User{ID: uuid.New()}

	req := validIntake()
	req.Email = "not-an-email"
	_, err := svc.Create(context.Background(), user, req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for email, got %v", err)
	}
}

func TestCreateTagsRowAndQueuesNotification(t *testing.T) {
	repo := &stubBookingRepo{}
	ob := &stubOutbox{}
	svc := buildBookingService(t, repo, ob)
	user := &models.User{ID: uuid.New()}

	dto, err := svc.Create(context.Background(), user, validIntake())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if repo.created == nil || repo.created.UserID != user.ID {
		t.Fatal("expected row tagged with submitting user id")
	}
	if dto.Status != enums.BookingStatusPending {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}
	if len(ob.events) != 1 {
		t.Fatalf("expected one outbox event, got %d", len(ob.events))
	}
	event := ob.events[0]
	if event.EventType != enums.OutboxEventBookingCreated {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	payload, ok := event.Data.(payloads.BookingCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if payload.BookingID != repo.created.ID || payload.Email != "aya@example.com" {
		t.Fatalf("payload does not match row: %+v", payload)
	}
}

func TestCreateFailsWhenNotificationCannotBeQueued(t *testing.T) {
	repo := &stubBookingRepo{}
	ob := &stubOutbox{emitErr: errors.New("insert failed")}
	svc := buildBookingService(t, repo, ob)

	_, err := svc.Create(context.Background(), &models.User{ID: uuid.New()}, validIntake())
	if err == nil {
		t.Fatal("expected error when the outbox insert fails, so the tx rolls back")
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := buildBookingService(t, &stubBookingRepo{}, nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), UpdateStatusRequest{Status: "shipped"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusOverwrites(t *testing.T) {
	repo := &stubBookingRepo{found: &models.Booking{ID: uuid.New(), Status: enums.BookingStatusCompleted}}
	svc := buildBookingService(t, repo, nil)

	dto, err := svc.UpdateStatus(context.Background(), repo.found.ID, UpdateStatusRequest{Status: "pending"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Status != enums.BookingStatusPending {
		t.Fatalf("expected overwrite to pending, got %s", dto.Status)
	}
}

func TestUpdateProjectValidatesProgress(t *testing.T) {
	svc := buildBookingService(t, &stubBookingRepo{}, nil)

	_, err := svc.UpdateProject(context.Background(), uuid.New(), UpdateProjectRequest{ProjectProgress: 120})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateProjectDoesNotTouchStatus(t *testing.T) {
	repo := &stubBookingRepo{found: &models.Booking{ID: uuid.New(), Status: enums.BookingStatusConfirmed}}
	svc := buildBookingService(t, repo, nil)

	dto, err := svc.UpdateProject(context.Background(), repo.found.ID, UpdateProjectRequest{ProjectStatus: "in_development", ProjectProgress: 55})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Status != enums.BookingStatusConfirmed {
		t.Fatalf("status changed unexpectedly to %s", dto.Status)
	}
	if dto.ProjectStatus != "in_development" || dto.ProjectProgress != 55 {
		t.Fatalf("tracking fields not applied: %+v", dto)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := buildBookingService(t, &stubBookingRepo{}, nil)

	_, err := svc.Get(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
