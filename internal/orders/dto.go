package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// OrderDTO is the API shape of a lightweight service request.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	Title         string              `json:"title"`
	ShortMessage  *string             `json:"short_message,omitempty"`
	LongMessage   *string             `json:"long_message,omitempty"`
	Options       json.RawMessage     `json:"options,omitempty"`
	Links         json.RawMessage     `json:"links,omitempty"`
	Attachments   json.RawMessage     `json:"attachments,omitempty"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// CreateOrderRequest carries the order intake form. Only the title is
// mandatory.
type CreateOrderRequest struct {
	Title        string          `json:"title" validate:"required"`
	ShortMessage *string         `json:"short_message,omitempty"`
	LongMessage  *string         `json:"long_message,omitempty"`
	Options      json.RawMessage `json:"options,omitempty"`
	Links        json.RawMessage `json:"links,omitempty"`
	Attachments  json.RawMessage `json:"attachments,omitempty"`
}

// UpdateStatusRequest overwrites order status and/or payment status. A nil
// field leaves the current value in place.
type UpdateStatusRequest struct {
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
}

// ListParams holds order list filters and cursor pagination inputs.
type ListParams struct {
	UserID *uuid.UUID
	Status *enums.OrderStatus
	Limit  int
	Cursor string
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ToDTO converts an order model.
func ToDTO(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	return &OrderDTO{
		ID:            m.ID,
		UserID:        m.UserID,
		Title:         m.Title,
		ShortMessage:  copyStringPointer(m.ShortMessage),
		LongMessage:   copyStringPointer(m.LongMessage),
		Options:       m.Options,
		Links:         m.Links,
		Attachments:   m.Attachments,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ToDTOs converts a slice, preserving order.
func ToDTOs(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, len(rows))
	for i := range rows {
		out[i] = *ToDTO(&rows[i])
	}
	return out
}

func copyStringPointer(v *string) *string {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
