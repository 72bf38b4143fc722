package payloads

import (
	"time"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// BookingCreatedEvent notifies the ops team about a new service booking.
type BookingCreatedEvent struct {
	BookingID   uuid.UUID  `json:"booking_id"`
	UserID      uuid.UUID  `json:"user_id"`
	ServiceID   *uuid.UUID `json:"service_id,omitempty"`
	PackageID   *uuid.UUID `json:"package_id,omitempty"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Country     string     `json:"country"`
	Description string     `json:"description"`
	Timeline    string     `json:"timeline"`
	Budget      string     `json:"budget"`
}

// OrderCreatedEvent mirrors the lightweight order intake.
type OrderCreatedEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
	Title   string    `json:"title"`
}

// TicketCreatedEvent drives the ticket automation webhook and ops email.
type TicketCreatedEvent struct {
	TicketID  uuid.UUID            `json:"ticket_id"`
	UserID    uuid.UUID            `json:"user_id"`
	Subject   string               `json:"subject"`
	Priority  enums.TicketPriority `json:"priority"`
	ServiceID *uuid.UUID           `json:"service_id,omitempty"`
}

// TicketUpdatedEvent feeds the realtime channel for ticket lists.
type TicketUpdatedEvent struct {
	TicketID  uuid.UUID          `json:"ticket_id"`
	Status    enums.TicketStatus `json:"status"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// PackageUpdatedEvent feeds the realtime channel for catalog views.
type PackageUpdatedEvent struct {
	PackageID uuid.UUID `json:"package_id"`
	ServiceID uuid.UUID `json:"service_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InviteCreatedEvent carries everything the invite email needs.
type InviteCreatedEvent struct {
	MemberID       uuid.UUID        `json:"member_id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	Email          string           `json:"email"`
	FullName       string           `json:"full_name"`
	Role           enums.MemberRole `json:"role"`
	InviteToken    string           `json:"invite_token"`
	ExpiresAt      time.Time        `json:"expires_at"`
}

// TeamMemberActivatedEvent fires when an invitation is accepted.
type TeamMemberActivatedEvent struct {
	MemberID       uuid.UUID `json:"member_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Email          string    `json:"email"`
	ActivatedAt    time.Time `json:"activated_at"`
}

// UserRegisteredEvent triggers the welcome/confirmation email.
type UserRegisteredEvent struct {
	UserID            uuid.UUID `json:"user_id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	ConfirmationToken string    `json:"confirmation_token"`
}

// PasswordResetRequestedEvent triggers the reset email.
type PasswordResetRequestedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	ResetToken string    `json:"reset_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ContactFormSubmittedEvent forwards marketing-site contact submissions.
type ContactFormSubmittedEvent struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}
