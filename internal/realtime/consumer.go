package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/idempotency"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
)

const realtimeConsumer = "realtime-worker"

// Consumer folds realtime topic events into per-aggregate reducers so
// connected clients converge on the same row state a fresh read would see.
type Consumer struct {
	tickets      *Reducer
	packages     *Reducer
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the realtime consumer.
func NewConsumer(subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("realtime subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		tickets:      NewReducer(),
		packages:     NewReducer(),
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Tickets exposes the merged ticket snapshot.
func (c *Consumer) Tickets() *Reducer {
	return c.tickets
}

// Packages exposes the merged package snapshot.
func (c *Consumer) Packages() *Reducer {
	return c.packages
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, realtimeConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.apply(eventType, envelope); err != nil {
		c.logg.Error(logCtx, "apply failed", err)
		return processResult{ack: true}
	}

	return processResult{ack: true}
}

// apply routes the decoded payload into the matching reducer. Decode failures
// are terminal, the envelope will never become valid on retry.
func (c *Consumer) apply(eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	switch eventType {
	case enums.OutboxEventTicketUpdated:
		var payload payloads.TicketUpdatedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("decode ticket payload: %w", err)
		}
		c.tickets.Apply(RowEvent{
			ID:        payload.TicketID,
			UpdatedAt: payload.UpdatedAt,
			Payload:   envelope.Data,
		})
		return nil
	case enums.OutboxEventPackageUpdated:
		var payload payloads.PackageUpdatedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("decode package payload: %w", err)
		}
		c.packages.Apply(RowEvent{
			ID:        payload.PackageID,
			UpdatedAt: payload.UpdatedAt,
			Payload:   envelope.Data,
		})
		return nil
	default:
		return nil
	}
}
