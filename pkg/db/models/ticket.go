package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// Ticket is a customer support request.
type Ticket struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	Subject     string               `gorm:"column:subject;type:text;not null"`
	Description string               `gorm:"column:description;type:text;not null"`
	Priority    enums.TicketPriority `gorm:"column:priority;type:text;not null;default:'medium'"`
	Status      enums.TicketStatus   `gorm:"column:status;type:text;not null;default:'open'"`
	ServiceID   *uuid.UUID           `gorm:"column:service_id;type:uuid"`
	ClosedAt    *time.Time           `gorm:"column:closed_at"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
