package analytics

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
)

type stubAnalyticsRepo struct {
	scopedTo     []*uuid.UUID
	revenueErr   error
	bookingMonth []MonthValue
	revenue      []MonthValue
	breakdown    []LabelCount
}

func (s *stubAnalyticsRepo) record(userID *uuid.UUID) {
	s.scopedTo = append(s.scopedTo, userID)
}

func (s *stubAnalyticsRepo) BookingsPerMonth(_ context.Context, userID *uuid.UUID) ([]MonthValue, error) {
	s.record(userID)
	return s.bookingMonth, nil
}

func (s *stubAnalyticsRepo) BookingStatusBreakdown(_ context.Context, userID *uuid.UUID) ([]LabelCount, error) {
	s.record(userID)
	return s.breakdown, nil
}

func (s *stubAnalyticsRepo) TicketStatusBreakdown(_ context.Context, userID *uuid.UUID) ([]LabelCount, error) {
	s.record(userID)
	return s.breakdown, nil
}

func (s *stubAnalyticsRepo) TicketPriorityBreakdown(_ context.Context, userID *uuid.UUID) ([]LabelCount, error) {
	s.record(userID)
	return s.breakdown, nil
}

func (s *stubAnalyticsRepo) RevenuePerMonth(_ context.Context, userID *uuid.UUID) ([]MonthValue, error) {
	s.record(userID)
	if s.revenueErr != nil {
		return nil, s.revenueErr
	}
	return s.revenue, nil
}

func (s *stubAnalyticsRepo) TopServices(_ context.Context, userID *uuid.UUID, _ int) ([]LabelCount, error) {
	s.record(userID)
	return s.breakdown, nil
}

func buildAnalyticsService(t *testing.T, repo *stubAnalyticsRepo) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Logger: logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestDashboardReshapesSeries(t *testing.T) {
	repo := &stubAnalyticsRepo{
		bookingMonth: []MonthValue{
			{Month: "2026-01", Value: decimal.NewFromInt(4)},
			{Month: "2026-02", Value: decimal.NewFromInt(7)},
		},
		revenue: []MonthValue{
			{Month: "2026-01", Value: decimal.RequireFromString("1249.50")},
		},
		breakdown: []LabelCount{
			{Label: "open", Count: 3},
			{Label: "closed", Count: 1},
		},
	}
	svc := buildAnalyticsService(t, repo)

	userID := uuid.New()
	dashboard, err := svc.Dashboard(context.Background(), &userID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if len(dashboard.BookingsPerMonth) != 2 || dashboard.BookingsPerMonth[1].Label != "2026-02" || dashboard.BookingsPerMonth[1].Value != 7 {
		t.Fatalf("bookings series misshaped: %+v", dashboard.BookingsPerMonth)
	}
	if len(dashboard.RevenuePerMonth) != 1 || dashboard.RevenuePerMonth[0].Value != 1249.50 {
		t.Fatalf("revenue series misshaped: %+v", dashboard.RevenuePerMonth)
	}
	if len(dashboard.TicketStatusBreakdown) != 2 || dashboard.TicketStatusBreakdown[0].Label != "open" {
		t.Fatalf("breakdown misshaped: %+v", dashboard.TicketStatusBreakdown)
	}

	// Every query must carry the workspace scope.
	for i, scoped := range repo.scopedTo {
		if scoped == nil || *scoped != userID {
			t.Fatalf("query %d not scoped to user", i)
		}
	}
}

func TestDashboardAdminScopeIsUnfiltered(t *testing.T) {
	repo := &stubAnalyticsRepo{}
	svc := buildAnalyticsService(t, repo)

	if _, err := svc.Dashboard(context.Background(), nil); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	for i, scoped := range repo.scopedTo {
		if scoped != nil {
			t.Fatalf("query %d unexpectedly scoped", i)
		}
	}
}

func TestDashboardPropagatesQueryFailure(t *testing.T) {
	repo := &stubAnalyticsRepo{revenueErr: errors.New("relation missing")}
	svc := buildAnalyticsService(t, repo)

	_, err := svc.Dashboard(context.Background(), nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
