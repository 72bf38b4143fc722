package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
)

const topServicesLimit = 5

type analyticsRepository interface {
	BookingsPerMonth(ctx context.Context, userID *uuid.UUID) ([]MonthValue, error)
	BookingStatusBreakdown(ctx context.Context, userID *uuid.UUID) ([]LabelCount, error)
	TicketStatusBreakdown(ctx context.Context, userID *uuid.UUID) ([]LabelCount, error)
	TicketPriorityBreakdown(ctx context.Context, userID *uuid.UUID) ([]LabelCount, error)
	RevenuePerMonth(ctx context.Context, userID *uuid.UUID) ([]MonthValue, error)
	TopServices(ctx context.Context, userID *uuid.UUID, limit int) ([]LabelCount, error)
}

// Service assembles dashboard series.
type Service interface {
	// Dashboard builds the workspace dashboard for one user, or the
	// cross-tenant admin dashboard when userID is nil.
	Dashboard(ctx context.Context, userID *uuid.UUID) (*DashboardDTO, error)
}

// ServiceParams packages the analytics service dependencies.
type ServiceParams struct {
	Repo   analyticsRepository
	Logger *logger.Logger
}

type service struct {
	repo analyticsRepository
	logg *logger.Logger
}

// NewService builds the analytics service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

func (s *service) Dashboard(ctx context.Context, userID *uuid.UUID) (*DashboardDTO, error) {
	bookingsPerMonth, err := s.repo.BookingsPerMonth(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bookings per month")
	}
	bookingStatuses, err := s.repo.BookingStatusBreakdown(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "booking status breakdown")
	}
	ticketStatuses, err := s.repo.TicketStatusBreakdown(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ticket status breakdown")
	}
	ticketPriorities, err := s.repo.TicketPriorityBreakdown(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ticket priority breakdown")
	}
	revenuePerMonth, err := s.repo.RevenuePerMonth(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revenue per month")
	}
	topServices, err := s.repo.TopServices(ctx, userID, topServicesLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top services")
	}

	return &DashboardDTO{
		BookingsPerMonth:        monthSeries(bookingsPerMonth),
		BookingStatusBreakdown:  countSeries(bookingStatuses),
		TicketStatusBreakdown:   countSeries(ticketStatuses),
		TicketPriorityBreakdown: countSeries(ticketPriorities),
		RevenuePerMonth:         monthSeries(revenuePerMonth),
		TopServices:             countSeries(topServices),
	}, nil
}

func monthSeries(rows []MonthValue) []ChartPoint {
	out := make([]ChartPoint, len(rows))
	for i, row := range rows {
		out[i] = ChartPoint{Label: row.Month, Value: row.Value.InexactFloat64()}
	}
	return out
}

func countSeries(rows []LabelCount) []ChartPoint {
	out := make([]ChartPoint, len(rows))
	for i, row := range rows {
		out[i] = ChartPoint{Label: row.Label, Value: float64(row.Count)}
	}
	return out
}
