package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// Order is a lighter-weight service request than a booking: just a title
// plus optional free-form context and attachments.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	Title         string              `gorm:"column:title;type:text;not null"`
	ShortMessage  *string             `gorm:"column:short_message;type:text"`
	LongMessage   *string             `gorm:"column:long_message;type:text"`
	Options       json.RawMessage     `gorm:"column:options;type:jsonb"`
	Links         json.RawMessage     `gorm:"column:links;type:jsonb"`
	Attachments   json.RawMessage     `gorm:"column:attachments;type:jsonb"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
