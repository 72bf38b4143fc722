package stripe

import (
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"
)

func TestTeamLimitForPlan(t *testing.T) {
	cases := []struct {
		plan     string
		fallback int
		want     int
	}{
		{"starter", 3, 3},
		{"Pro", 3, 10},
		{" ENTERPRISE ", 3, 50},
		{"unknown-plan", 3, 3},
		{"", 5, 5},
	}
	for _, tc := range cases {
		if got := TeamLimitForPlan(tc.plan, tc.fallback); got != tc.want {
			t.Errorf("TeamLimitForPlan(%q, %d) = %d, want %d", tc.plan, tc.fallback, got, tc.want)
		}
	}
}

func TestInvoiceFromAPI(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	inv := invoiceFromAPI(&stripe.Invoice{
		ID:               "in_42",
		Number:           "A-0042",
		Status:           stripe.InvoiceStatusPaid,
		AmountDue:        4900,
		AmountPaid:       4900,
		Currency:         stripe.CurrencyUSD,
		Created:          created.Unix(),
		HostedInvoiceURL: "https://pay.example.com/in_42",
	})

	if inv.ID != "in_42" || inv.Number != "A-0042" {
		t.Fatalf("unexpected identity %+v", inv)
	}
	if inv.Status != "paid" || inv.Currency != "usd" {
		t.Fatalf("unexpected status/currency %+v", inv)
	}
	if inv.AmountDue != 4900 || inv.AmountPaid != 4900 {
		t.Fatalf("unexpected amounts %+v", inv)
	}
	if !inv.CreatedAt.Equal(created) {
		t.Fatalf("expected created %s got %s", created, inv.CreatedAt)
	}
	if inv.PDFURL != "" {
		t.Fatalf("expected empty pdf url, got %q", inv.PDFURL)
	}
}

func TestInvoiceFromAPINil(t *testing.T) {
	if inv := invoiceFromAPI(nil); inv != (Invoice{}) {
		t.Fatalf("expected zero invoice, got %+v", inv)
	}
}
