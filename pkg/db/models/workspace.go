package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the tenant boundary. There is no separate organization id:
// the row is keyed by the owning user's id, and team members reference that
// id as their organization.
type Workspace struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
