package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		NotificationTopic: "notification-topic",
		RealtimeTopic:     "realtime-topic",
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func envelopeRow(t *testing.T, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, data any) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}
}

func TestResolveRoutesTicketUpdateToRealtimeTopic(t *testing.T) {
	reg := testRegistry(t)
	ticketID := uuid.New()

	row := envelopeRow(t, enums.OutboxEventTicketUpdated, enums.OutboxAggregateTicket, payloads.TicketUpdatedEvent{
		TicketID:  ticketID,
		Status:    enums.TicketStatusClosed,
		UpdatedAt: time.Now().UTC(),
	})
	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "realtime-topic" {
		t.Fatalf("ticket updates belong on the realtime topic, got %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.TicketUpdatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.TicketID != ticketID {
		t.Fatalf("payload ticket id mismatch")
	}
}

func TestResolveRoutesInviteToNotificationTopic(t *testing.T) {
	reg := testRegistry(t)

	row := envelopeRow(t, enums.OutboxEventInviteCreated, enums.OutboxAggregateTeamMember, payloads.InviteCreatedEvent{
		MemberID:       uuid.New(),
		OrganizationID: uuid.New(),
		Email:          "invitee@example.com",
		Role:           enums.MemberRoleMember,
		InviteToken:    "tok",
		ExpiresAt:      time.Now().Add(time.Hour),
	})
	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "notification-topic" {
		t.Fatalf("invite events belong on the notification topic, got %q", resolved.Descriptor.Topic)
	}
}

func TestResolveRejectsUnknownEventType(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.OutboxEventType("mystery.event"), enums.OutboxAggregateUser, map[string]string{})

	_, err := reg.Resolve(row)
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("unknown event types must be non-retryable, got %v", err)
	}
}

func TestResolveRejectsAggregateMismatch(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.OutboxEventOrderCreated, enums.OutboxAggregateTicket, payloads.OrderCreatedEvent{})

	_, err := reg.Resolve(row)
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("aggregate mismatch must be non-retryable, got %v", err)
	}
}

func TestResolveRejectsEmptyPayloadData(t *testing.T) {
	reg := testRegistry(t)
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`null`),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.OutboxEventOrderCreated,
		AggregateType: enums.OutboxAggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}

	_, err = reg.Resolve(row)
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("empty payload must be non-retryable, got %v", err)
	}
}
