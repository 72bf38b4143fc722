package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/mail"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/metrics"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
)

type stubMail struct {
	sent    []mail.Message
	sendErr error
}

func (s *stubMail) Send(_ context.Context, msg mail.Message) (string, error) {
	if s.sendErr != nil {
		return "", s.sendErr
	}
	s.sent = append(s.sent, msg)
	return "msg-1", nil
}

type stubWebhook struct {
	posts   []string
	postErr error
}

func (s *stubWebhook) Post(_ context.Context, url string, _ any) error {
	if s.postErr != nil {
		return s.postErr
	}
	s.posts = append(s.posts, url)
	return nil
}

func buildDispatcher(t *testing.T, mailer *stubMail, webhook *stubWebhook) *Dispatcher {
	t.Helper()

	d, err := NewDispatcher(DispatcherParams{
		Mail:    mailer,
		Webhook: webhook,
		Metrics: metrics.NewDispatchMetrics(prometheus.NewRegistry()),
		MailCfg: config.MailConfig{DefaultFrom: "no-reply@aetherdesk.io", OpsAddress: "ops@aetherdesk.io"},
		Automation: config.AutomationConfig{
			TicketWebhookURL:  "https://hooks.example.com/tickets",
			ContactWebhookURL: "https://hooks.example.com/contact",
		},
		PublicURL: "https://app.aetherdesk.io",
		Logger:    logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d
}

func envelopeFor(t *testing.T, payload any) outbox.PayloadEnvelope {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       data,
	}
}

func TestDispatchInviteEmail(t *testing.T) {
	mailer := &stubMail{}
	d := buildDispatcher(t, mailer, &stubWebhook{})

	envelope := envelopeFor(t, payloads.InviteCreatedEvent{
		MemberID:    uuid.New(),
		Email:       "invitee@example.com",
		FullName:    "In Vitee",
		Role:        enums.MemberRoleMember,
		InviteToken: "tok123",
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	})
	if err := d.Dispatch(context.Background(), enums.OutboxEventInviteCreated, envelope); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.To[0] != "invitee@example.com" {
		t.Fatalf("wrong recipient %v", msg.To)
	}
	if !strings.Contains(msg.HTML, "token=tok123") {
		t.Fatalf("invite link missing token: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "https://app.aetherdesk.io/") {
		t.Fatalf("invite link not rooted at public url: %s", msg.HTML)
	}
}

func TestDispatchTicketFansOutToBothChannels(t *testing.T) {
	mailer := &stubMail{}
	webhook := &stubWebhook{}
	d := buildDispatcher(t, mailer, webhook)

	envelope := envelopeFor(t, payloads.TicketCreatedEvent{
		TicketID: uuid.New(),
		UserID:   uuid.New(),
		Subject:  "Bot down",
		Priority: enums.TicketPriorityHigh,
	})
	if err := d.Dispatch(context.Background(), enums.OutboxEventTicketCreated, envelope); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(mailer.sent) != 1 || mailer.sent[0].To[0] != "ops@aetherdesk.io" {
		t.Fatalf("expected ops email, got %+v", mailer.sent)
	}
	if len(webhook.posts) != 1 || webhook.posts[0] != "https://hooks.example.com/tickets" {
		t.Fatalf("expected ticket webhook, got %v", webhook.posts)
	}
}

func TestDispatchAggregatesChannelFailures(t *testing.T) {
	mailer := &stubMail{sendErr: errors.New("mail provider down")}
	webhook := &stubWebhook{postErr: errors.New("hook refused")}
	d := buildDispatcher(t, mailer, webhook)

	envelope := envelopeFor(t, payloads.ContactFormSubmittedEvent{
		Name:    "Aya",
		Email:   "aya@example.com",
		Message: "hi",
	})
	err := d.Dispatch(context.Background(), enums.OutboxEventContactFormSubmitted, envelope)
	if err == nil {
		t.Fatal("expected aggregated failure")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected both channel errors reported, got %d: %v", got, err)
	}
}

func TestDispatchSkipsWebhookWithoutURL(t *testing.T) {
	mailer := &stubMail{}
	webhook := &stubWebhook{}
	d := buildDispatcher(t, mailer, webhook)
	// Booking webhook URL is unset in the test config.
	envelope := envelopeFor(t, payloads.BookingCreatedEvent{
		BookingID: uuid.New(),
		UserID:    uuid.New(),
		Name:      "Aya",
		Email:     "aya@example.com",
	})
	if err := d.Dispatch(context.Background(), enums.OutboxEventBookingCreated, envelope); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(webhook.posts) != 0 {
		t.Fatalf("expected no webhook posts, got %v", webhook.posts)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected ops email, got %d", len(mailer.sent))
	}
}

func TestDispatchSkipsUnknownVersion(t *testing.T) {
	mailer := &stubMail{}
	d := buildDispatcher(t, mailer, &stubWebhook{})

	envelope := envelopeFor(t, payloads.OrderCreatedEvent{OrderID: uuid.New()})
	envelope.Version = 99
	if err := d.Dispatch(context.Background(), enums.OutboxEventOrderCreated, envelope); err != nil {
		t.Fatalf("unknown version must be skipped, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("no email expected for skipped event")
	}
}
