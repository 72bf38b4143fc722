package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// Booking is a customer's request to engage a service. Status tracks the
// request lifecycle; project_status/project_progress are independent
// post-booking tracking fields and never change together with status.
type Booking struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	ServiceID          *uuid.UUID          `gorm:"column:service_id;type:uuid"`
	PackageID          *uuid.UUID          `gorm:"column:package_id;type:uuid"`
	Name               string              `gorm:"column:name;type:text;not null"`
	Email              string              `gorm:"column:email;type:text;not null"`
	Phone              string              `gorm:"column:phone;type:text;not null"`
	Country            string              `gorm:"column:country;type:text;not null"`
	ProjectDescription string              `gorm:"column:project_description;type:text;not null"`
	CommunicationPref  string              `gorm:"column:communication_pref;type:text;not null"`
	Timeline           string              `gorm:"column:timeline;type:text;not null"`
	Budget             string              `gorm:"column:budget;type:text;not null"`
	Status             enums.BookingStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ProjectStatus      string              `gorm:"column:project_status;type:text"`
	ProjectProgress    int                 `gorm:"column:project_progress;not null;default:0"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
