package contact

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
)

type stubContactRepo struct {
	created *models.ContactMessage
}

func (s *stubContactRepo) CreateTx(_ *gorm.DB, message *models.ContactMessage) error {
	s.created = message
	return nil
}

func (s *stubContactRepo) List(context.Context) ([]models.ContactMessage, error) {
	return nil, nil
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

func buildContactService(t *testing.T, repo *stubContactRepo, ob *stubOutbox) Service {
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

func TestSubmitValidation(t *testing.T) {
	svc := buildContactService(t, &stubContactRepo{}, nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{Name: "Aya", Email: "aya@example.com"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing message, got %v", err)
	}

	_, err = svc.Submit(context.Background(), SubmitRequest{Name: "Aya", Email: "nope", Message: "hello"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad email, got %v", err)
	}
}

func TestSubmitStoresAndForwards(t *testing.T) {
	repo := &stubContactRepo{}
	ob := &stubOutbox{}
	svc := buildContactService(t, repo, ob)

	dto, err := svc.Submit(context.Background(), SubmitRequest{
		Name:    "Aya",
		Email:   "aya@example.com",
		Subject: "Pricing",
		Message: "How much for a custom bot?",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if repo.created == nil || repo.created.ID != dto.ID {
		t.Fatal("expected stored row")
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.OutboxEventContactFormSubmitted {
		t.Fatalf("expected contact.submitted event, got %+v", ob.events)
	}
	if ob.events[0].Actor != nil {
		t.Fatal("public submissions carry no actor")
	}
	payload, ok := ob.events[0].Data.(payloads.ContactFormSubmittedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", ob.events[0].Data)
	}
	if payload.Email != "aya@example.com" || payload.Subject != "Pricing" {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestSubmitFailsWhenForwardingCannotBeQueued(t *testing.T) {
	svc := buildContactService(t, &stubContactRepo{}, &stubOutbox{emitErr: errors.New("insert failed")})

	_, err := svc.Submit(context.Background(), SubmitRequest{Name: "Aya", Email: "aya@example.com", Message: "hi"})
	if err == nil {
		t.Fatal("expected error so the stored row rolls back with the event")
	}
}
