package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// MonthValue is one month bucket from an aggregate query.
type MonthValue struct {
	Month string
	Value decimal.Decimal
}

// LabelCount is one label bucket from a breakdown query.
type LabelCount struct {
	Label string
	Count int64
}

// Repository runs the dashboard aggregate queries. A nil userID widens every
// query across all tenants for the admin dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an analytics repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// BookingsPerMonth counts bookings grouped by calendar month.
func (r *Repository) BookingsPerMonth(ctx context.Context, userID *uuid.UUID) ([]MonthValue, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("to_char(created_at, 'YYYY-MM') AS month, COUNT(*) AS value")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var rows []MonthValue
	if err := query.Group("month").Order("month").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// BookingStatusBreakdown counts bookings grouped by request status.
func (r *Repository) BookingStatusBreakdown(ctx context.Context, userID *uuid.UUID) ([]LabelCount, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("status AS label, COUNT(*) AS count")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var rows []LabelCount
	if err := query.Group("status").Order("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TicketStatusBreakdown counts tickets grouped by status.
func (r *Repository) TicketStatusBreakdown(ctx context.Context, userID *uuid.UUID) ([]LabelCount, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Select("status AS label, COUNT(*) AS count")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var rows []LabelCount
	if err := query.Group("status").Order("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TicketPriorityBreakdown counts tickets grouped by priority.
func (r *Repository) TicketPriorityBreakdown(ctx context.Context, userID *uuid.UUID) ([]LabelCount, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Select("priority AS label, COUNT(*) AS count")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var rows []LabelCount
	if err := query.Group("priority").Order("priority").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RevenuePerMonth sums confirmed-booking revenue grouped by calendar month.
// The booked package price wins over the service base price when both exist.
func (r *Repository) RevenuePerMonth(ctx context.Context, userID *uuid.UUID) ([]MonthValue, error) {
	query := r.db.WithContext(ctx).
		Table("bookings AS b").
		Select("to_char(b.created_at, 'YYYY-MM') AS month, SUM(COALESCE(p.price, s.price, 0)) AS value").
		Joins("LEFT JOIN service_packages p ON p.id = b.package_id").
		Joins("LEFT JOIN services s ON s.id = b.service_id").
		Where("b.status = ?", enums.BookingStatusConfirmed)
	if userID != nil {
		query = query.Where("b.user_id = ?", *userID)
	}

	var rows []MonthValue
	if err := query.Group("month").Order("month").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopServices counts bookings per service, most booked first.
func (r *Repository) TopServices(ctx context.Context, userID *uuid.UUID, limit int) ([]LabelCount, error) {
	query := r.db.WithContext(ctx).
		Table("bookings AS b").
		Select("s.name_en AS label, COUNT(*) AS count").
		Joins("JOIN services s ON s.id = b.service_id")
	if userID != nil {
		query = query.Where("b.user_id = ?", *userID)
	}

	var rows []LabelCount
	if err := query.Group("s.name_en").Order("count DESC, s.name_en").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
