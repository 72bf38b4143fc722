package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// BookingDTO is the API shape of a service booking.
type BookingDTO struct {
	ID                 uuid.UUID           `json:"id"`
	UserID             uuid.UUID           `json:"user_id"`
	ServiceID          *uuid.UUID          `json:"service_id,omitempty"`
	PackageID          *uuid.UUID          `json:"package_id,omitempty"`
	Name               string              `json:"name"`
	Email              string              `json:"email"`
	Phone              string              `json:"phone"`
	Country            string              `json:"country"`
	ProjectDescription string              `json:"project_description"`
	CommunicationPref  string              `json:"communication_pref"`
	Timeline           string              `json:"timeline"`
	Budget             string              `json:"budget"`
	Status             enums.BookingStatus `json:"status"`
	ProjectStatus      string              `json:"project_status,omitempty"`
	ProjectProgress    int                 `json:"project_progress"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// CreateBookingRequest carries the booking intake form.
type CreateBookingRequest struct {
	ServiceID          *uuid.UUID `json:"service_id,omitempty"`
	PackageID          *uuid.UUID `json:"package_id,omitempty"`
	Name               string     `json:"name" validate:"required"`
	Email              string     `json:"email" validate:"required,email"`
	Phone              string     `json:"phone" validate:"required"`
	Country            string     `json:"country" validate:"required"`
	ProjectDescription string     `json:"project_description" validate:"required"`
	CommunicationPref  string     `json:"communication_pref" validate:"required"`
	Timeline           string     `json:"timeline" validate:"required"`
	Budget             string     `json:"budget" validate:"required"`
}

// UpdateStatusRequest overwrites the booking request status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateProjectRequest updates the post-booking tracking fields. These are
// independent of the request status and never change together with it.
type UpdateProjectRequest struct {
	ProjectStatus   string `json:"project_status"`
	ProjectProgress int    `json:"project_progress"`
}

// ListParams holds booking list filters and cursor pagination inputs.
type ListParams struct {
	UserID *uuid.UUID
	Status *enums.BookingStatus
	Limit  int
	Cursor string
}

// BookingList wraps a page of bookings plus the next page cursor.
type BookingList struct {
	Bookings   []BookingDTO `json:"bookings"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ToDTO converts a booking model.
func ToDTO(m *models.Booking) *BookingDTO {
	if m == nil {
		return nil
	}
	return &BookingDTO{
		ID:                 m.ID,
		UserID:             m.UserID,
		ServiceID:          copyUUIDPointer(m.ServiceID),
		PackageID:          copyUUIDPointer(m.PackageID),
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Country:            m.Country,
		ProjectDescription: m.ProjectDescription,
		CommunicationPref:  m.CommunicationPref,
		Timeline:           m.Timeline,
		Budget:             m.Budget,
		Status:             m.Status,
		ProjectStatus:      m.ProjectStatus,
		ProjectProgress:    m.ProjectProgress,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// ToDTOs converts a slice, preserving order.
func ToDTOs(rows []models.Booking) []BookingDTO {
	out := make([]BookingDTO, len(rows))
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
