package tickets

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// TicketDTO is the API shape of a support ticket.
type TicketDTO struct {
	ID          uuid.UUID            `json:"id"`
	UserID      uuid.UUID            `json:"user_id"`
	Subject     string               `json:"subject"`
	Description string               `json:"description"`
	Priority    enums.TicketPriority `json:"priority"`
	Status      enums.TicketStatus   `json:"status"`
	ServiceID   *uuid.UUID           `json:"service_id,omitempty"`
	ClosedAt    *time.Time           `json:"closed_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CreateTicketRequest carries a new support request.
type CreateTicketRequest struct {
	Subject     string     `json:"subject" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Priority    string     `json:"priority,omitempty"`
	ServiceID   *uuid.UUID `json:"service_id,omitempty"`
}

// UpdateStatusRequest overwrites the ticket status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListParams holds ticket list filters and cursor pagination inputs.
type ListParams struct {
	UserID   *uuid.UUID
	Status   *enums.TicketStatus
	Priority *enums.TicketPriority
	Limit    int
	Cursor   string
}

// TicketList wraps a page of tickets plus the next page cursor.
type TicketList struct {
	Tickets    []TicketDTO `json:"tickets"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// ToDTO converts a ticket model.
func ToDTO(m *models.Ticket) *TicketDTO {
	if m == nil {
		return nil
	}
	return &TicketDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		Subject:     m.Subject,
		Description: m.Description,
		Priority:    m.Priority,
		Status:      m.Status,
		ServiceID:   copyUUIDPointer(m.ServiceID),
		ClosedAt:    copyTimePointer(m.ClosedAt),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToDTOs converts a slice, preserving order.
func ToDTOs(rows []models.Ticket) []TicketDTO {
	out := make([]TicketDTO, len(rows))
	for i := range rows {
		out[i] = *ToDTO(&rows[i])
	}
	return out
}

func copyUUIDPointer(v *uuid.UUID) *uuid.UUID {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

func copyTimePointer(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
