package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/mail"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/metrics"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/registry"
)

const (
	channelEmail   = "email"
	channelWebhook = "webhook"
)

type mailSender interface {
	Send(ctx context.Context, msg mail.Message) (string, error)
}

type webhookPoster interface {
	Post(ctx context.Context, url string, payload any) error
}

// Dispatcher turns decoded domain events into transactional emails and
// automation webhooks. Channel failures are aggregated so one bad channel
// does not hide the others; the caller decides whether to retry.
type Dispatcher struct {
	mail       mailSender
	webhook    webhookPoster
	decoders   *registry.DecoderRegistry
	metrics    *metrics.DispatchMetrics
	mailCfg    config.MailConfig
	automation config.AutomationConfig
	publicURL  string
	logg       *logger.Logger
}

// DispatcherParams packages the dispatcher dependencies.
type DispatcherParams struct {
	Mail       mailSender
	Webhook    webhookPoster
	Metrics    *metrics.DispatchMetrics
	MailCfg    config.MailConfig
	Automation config.AutomationConfig
	PublicURL  string
	Logger     *logger.Logger
}

// NewDispatcher builds a dispatcher with decoders for every handled event.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Mail == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if params.Webhook == nil {
		return nil, fmt.Errorf("webhook poster required")
	}
	if params.Metrics == nil {
		return nil, fmt.Errorf("dispatch metrics required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	d := &Dispatcher{
		mail:       params.Mail,
		webhook:    params.Webhook,
		decoders:   registry.NewDecoderRegistry(),
		metrics:    params.Metrics,
		mailCfg:    params.MailCfg,
		automation: params.Automation,
		publicURL:  params.PublicURL,
		logg:       params.Logger,
	}
	d.registerDecoders()
	return d, nil
}

func (d *Dispatcher) registerDecoders() {
	register := func(eventType enums.OutboxEventType, decode func(json.RawMessage) (interface{}, error)) {
		d.decoders.Register(eventType, 1, decode)
	}
	register(enums.OutboxEventUserRegistered, func(raw json.RawMessage) (interface{}, error) {
		var p payloads.UserRegisteredEvent
		return p, json.Unmarshal(raw, &p)
	})
	register(enums.OutboxEventPasswordResetRequest, func(raw json.RawMessage) (interface{}, error) {
		var p payloads.PasswordResetRequestedEvent
		return p, json.Unmarshal(raw, &p)
	})
	register(enums.OutboxEventInviteCreated, func(raw json.RawMessage) (interface{}, error) {
		var p payloads.InviteCreatedEvent
		return p, json.Unmarshal(raw, &p)
	})
	register(enums.OutboxEventTeamMemberActivated, func(raw json.RawMessage) (interface{}, error) {
		var p payloads.TeamMemberActivatedEvent
		return p, json.Unmarshal(raw, &p)
	})
	register(enums.OutboxEventBookingCreated, func(raw json.RawMessage) (interface{}, error) {
		var p payloads.BookingCreatedEvent
		return p, json.Unmarshal(raw, &p)
	})
	register(enums.OutboxEventOrderCreated, func(raw json.RawMessage) (interface{}, error) {
		var p payloads.OrderCreatedEvent
		return p, json.Unmarshal(raw, &p)
	})
	register(enums.OutboxEventTicketCreated, func(raw json.RawMessage) (interface{}, error) {
		var p payloads.TicketCreatedEvent
		return p, json.Unmarshal(raw, &p)
	})
	register(enums.OutboxEventContactFormSubmitted, func(raw json.RawMessage) (interface{}, error) {
		var p payloads.ContactFormSubmittedEvent
		return p, json.Unmarshal(raw, &p)
	})
}

// Dispatch decodes the envelope payload and fans it out to the channels the
// event requires. Unknown event types are skipped, not failed, so a new
// producer cannot wedge an old consumer.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	decoded, err := d.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		d.metrics.IncSkipped(eventType.String())
		d.logg.Warn(d.logg.WithField(ctx, "event_type", eventType.String()), "no decoder for event, skipping")
		return nil
	}

	switch payload := decoded.(type) {
	case payloads.UserRegisteredEvent:
		return d.sendEmail(ctx, eventType, mail.Message{
			To:      []string{payload.Email},
			Subject: "Confirm your AetherDesk account",
			HTML: fmt.Sprintf("<p>Hi %s,</p><p>Confirm your email to finish setting up your workspace:</p><p><a href=%q>Confirm email</a></p>",
				payload.FullName, d.link("/confirm-email?token="+payload.ConfirmationToken)),
		})
	case payloads.PasswordResetRequestedEvent:
		return d.sendEmail(ctx, eventType, mail.Message{
			To:      []string{payload.Email},
			Subject: "Reset your AetherDesk password",
			HTML: fmt.Sprintf("<p>A password reset was requested for your account.</p><p><a href=%q>Choose a new password</a></p><p>The link expires at %s.</p>",
				d.link("/reset-password?token="+payload.ResetToken), payload.ExpiresAt.Format(time.RFC1123)),
		})
	case payloads.InviteCreatedEvent:
		return d.sendEmail(ctx, eventType, mail.Message{
			To:      []string{payload.Email},
			Subject: "You have been invited to a workspace",
			HTML: fmt.Sprintf("<p>Hi %s,</p><p>You have been invited to join a workspace as %s.</p><p><a href=%q>Accept invitation</a></p>",
				payload.FullName, payload.Role, d.link("/invitations/accept?token="+payload.InviteToken)),
		})
	case payloads.TeamMemberActivatedEvent:
		return d.sendEmail(ctx, eventType, mail.Message{
			To:      []string{d.mailCfg.OpsAddress},
			Subject: "Team member joined",
			Text:    fmt.Sprintf("%s accepted their invitation at %s.", payload.Email, payload.ActivatedAt.Format(time.RFC1123)),
		})
	case payloads.BookingCreatedEvent:
		err := d.sendEmail(ctx, eventType, mail.Message{
			To:      []string{d.mailCfg.OpsAddress},
			Subject: fmt.Sprintf("New booking from %s", payload.Name),
			Text: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nCountry: %s\nTimeline: %s\nBudget: %s\n\n%s",
				payload.Name, payload.Email, payload.Phone, payload.Country, payload.Timeline, payload.Budget, payload.Description),
		})
		return multierr.Append(err, d.postWebhook(ctx, eventType, d.automation.BookingWebhookURL, payload))
	case payloads.OrderCreatedEvent:
		return d.sendEmail(ctx, eventType, mail.Message{
			To:      []string{d.mailCfg.OpsAddress},
			Subject: "New order: " + payload.Title,
			Text:    fmt.Sprintf("Order %s submitted by user %s.", payload.OrderID, payload.UserID),
		})
	case payloads.TicketCreatedEvent:
		err := d.sendEmail(ctx, eventType, mail.Message{
			To:      []string{d.mailCfg.OpsAddress},
			Subject: fmt.Sprintf("New %s priority ticket: %s", payload.Priority, payload.Subject),
			Text:    fmt.Sprintf("Ticket %s opened by user %s.", payload.TicketID, payload.UserID),
		})
		return multierr.Append(err, d.postWebhook(ctx, eventType, d.automation.TicketWebhookURL, payload))
	case payloads.ContactFormSubmittedEvent:
		err := d.sendEmail(ctx, eventType, mail.Message{
			To:      []string{d.mailCfg.OpsAddress},
			Subject: "Contact form: " + orDefault(payload.Subject, "no subject"),
			Text:    fmt.Sprintf("From: %s <%s>\n\n%s", payload.Name, payload.Email, payload.Message),
		})
		return multierr.Append(err, d.postWebhook(ctx, eventType, d.automation.ContactWebhookURL, payload))
	default:
		d.metrics.IncSkipped(eventType.String())
		return nil
	}
}

func (d *Dispatcher) sendEmail(ctx context.Context, eventType enums.OutboxEventType, msg mail.Message) error {
	start := time.Now()
	_, err := d.mail.Send(ctx, msg)
	d.metrics.ObserveDuration(channelEmail, time.Since(start))
	if err != nil {
		d.metrics.IncFailure(channelEmail, eventType.String())
		d.logg.Error(d.logg.WithField(ctx, "event_type", eventType.String()), "email dispatch failed", err)
		return err
	}
	d.metrics.IncSuccess(channelEmail, eventType.String())
	return nil
}

func (d *Dispatcher) postWebhook(ctx context.Context, eventType enums.OutboxEventType, url string, payload any) error {
	if url == "" {
		return nil
	}
	start := time.Now()
	err := d.webhook.Post(ctx, url, payload)
	d.metrics.ObserveDuration(channelWebhook, time.Since(start))
	if err != nil {
		d.metrics.IncFailure(channelWebhook, eventType.String())
		d.logg.Error(d.logg.WithField(ctx, "event_type", eventType.String()), "webhook dispatch failed", err)
		return err
	}
	d.metrics.IncSuccess(channelWebhook, eventType.String())
	return nil
}

func (d *Dispatcher) link(path string) string {
	return d.publicURL + path
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
