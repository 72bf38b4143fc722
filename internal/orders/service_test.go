package orders

import (
	"context"
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

type stubOrderRepo struct {
	created *models.Order
	found   *models.Order
	updates map[string]interface{}
}

func (s *stubOrderRepo) CreateTx(_ *gorm.DB, order *models.Order) error {
	s.created = order
	return nil
}

func (s *stubOrderRepo) FindByID(context.Context, uuid.UUID) (*models.Order, error) {
	if s.found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.found, nil
}

func (s *stubOrderRepo) List(context.Context, ListParams, *pagination.Cursor) ([]models.Order, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubOrderRepo) UpdateStatuses(_ context.Context, _ uuid.UUID, updates map[string]interface{}) (*models.Order, error) {
	if s.found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	s.updates = updates
	return s.found, nil
}

func (s *stubOrderRepo) Delete(context.Context, uuid.UUID) error {
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func buildOrderService(t *testing.T, repo *stubOrderRepo, ob *stubOutbox) Service {
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

func TestCreateRequiresTitle(t *testing.T) {
	svc := buildOrderService(t, &stubOrderRepo{}, nil)

	_, err := svc.Create(context.Background(), &models.User{ID: uuid.New()}, CreateOrderRequest{Title: "  "})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateQueuesNotification(t *testing.T) {
	repo := &stubOrderRepo{}
	ob := &stubOutbox{}
	svc := buildOrderService(t, repo, ob)
	user := &models.User{ID: uuid.New()}

	short := "need it fast"
	dto, err := svc.Create(context.Background(), user, CreateOrderRequest{Title: "Landing page", ShortMessage: &short})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if dto.UserID != user.ID || dto.Status != enums.OrderStatusPending || dto.PaymentStatus != enums.PaymentStatusUnpaid {
		t.Fatalf("unexpected order defaults: %+v", dto)
	}
	if len(ob.events) != 1 {
		t.Fatalf("expected one outbox event, got %d", len(ob.events))
	}
	payload, ok := ob.events[0].Data.(payloads.OrderCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", ob.events[0].Data)
	}
	if payload.OrderID != repo.created.ID || payload.Title != "Landing page" {
		t.Fatalf("payload does not match row: %+v", payload)
	}
}

func TestUpdateStatusPartialFields(t *testing.T) {
	repo := &stubOrderRepo{found: &models.Order{ID: uuid.New()}}
	svc := buildOrderService(t, repo, nil)

	paid := "paid"
	if _, err := svc.UpdateStatus(context.Background(), repo.found.ID, UpdateStatusRequest{PaymentStatus: &paid}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := repo.updates["payment_status"]; !ok {
		t.Fatal("expected payment_status in updates")
	}
	if _, ok := repo.updates["status"]; ok {
		t.Fatal("status should not be touched when omitted")
	}
}

func TestUpdateStatusRejectsEmptyRequest(t *testing.T) {
	svc := buildOrderService(t, &stubOrderRepo{found: &models.Order{ID: uuid.New()}}, nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), UpdateStatusRequest{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	svc := buildOrderService(t, &stubOrderRepo{found: &models.Order{ID: uuid.New()}}, nil)

	bogus := "shipped"
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), UpdateStatusRequest{Status: &bogus})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
