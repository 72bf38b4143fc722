package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// Service is a bookable offering with bilingual copy.
type Service struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NameEN        string          `gorm:"column:name_en;type:text;not null"`
	NameAR        string          `gorm:"column:name_ar;type:text;not null"`
	DescriptionEN string          `gorm:"column:description_en;type:text"`
	DescriptionAR string          `gorm:"column:description_ar;type:text"`
	Category      string          `gorm:"column:category;type:text"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Currency      enums.Currency  `gorm:"column:currency;type:text;not null;default:'USD'"`
	Active        bool            `gorm:"column:active;not null;default:true"`
	SortOrder     int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ServicePackage is an ordered child tier of a service with a feature list.
type ServicePackage struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ServiceID uuid.UUID       `gorm:"column:service_id;type:uuid;not null"`
	NameEN    string          `gorm:"column:name_en;type:text;not null"`
	NameAR    string          `gorm:"column:name_ar;type:text;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Currency  enums.Currency  `gorm:"column:currency;type:text;not null;default:'USD'"`
	Features  json.RawMessage `gorm:"column:features;type:jsonb"`
	Active    bool            `gorm:"column:active;not null;default:true"`
	SortOrder int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
