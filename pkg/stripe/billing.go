package stripe

import (
	"context"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/invoice"
	"github.com/stripe/stripe-go/v84/subscription"
)

// Plan lookup keys mapped to the maximum team size the plan allows.
var planTeamLimits = map[string]int{
	"starter":    3,
	"pro":        10,
	"enterprise": 50,
}

// TeamLimitForPlan returns the team-size ceiling for a plan lookup key,
// falling back to the provided default when the plan is unknown.
func TeamLimitForPlan(plan string, fallback int) int {
	if limit, ok := planTeamLimits[strings.ToLower(strings.TrimSpace(plan))]; ok {
		return limit
	}
	return fallback
}

// Invoice is the transport shape for a customer invoice.
type Invoice struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	Status     string    `json:"status"`
	AmountDue  int64     `json:"amount_due"`
	AmountPaid int64     `json:"amount_paid"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
	HostedURL  string    `json:"hosted_url,omitempty"`
	PDFURL     string    `json:"pdf_url,omitempty"`
}

// BillingAPI exposes the subset of Stripe operations the invitation gate and
// billing endpoints need.
type BillingAPI interface {
	FindCustomerByEmail(ctx context.Context, email string) (*stripe.Customer, error)
	ActivePlan(ctx context.Context, customerID string) (string, error)
	ListInvoices(ctx context.Context, customerID string) ([]Invoice, error)
}

type billingClient struct{}

// NewBillingAPI wraps the initialized Stripe client so callers can be tested.
func NewBillingAPI(api *Client) BillingAPI {
	if api == nil {
		return nil
	}
	return &billingClient{}
}

// FindCustomerByEmail returns the first customer matching the email, or nil.
func (b *billingClient) FindCustomerByEmail(ctx context.Context, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := customer.List(params)
	for it.Next() {
		return it.Customer(), nil
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

// ActivePlan resolves the plan lookup key of the customer's active
// subscription. Empty string means no active subscription.
func (b *billingClient) ActivePlan(ctx context.Context, customerID string) (string, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := subscription.List(params)
	for it.Next() {
		return planFromSubscription(it.Subscription()), nil
	}
	if err := it.Err(); err != nil {
		return "", err
	}
	return "", nil
}

// ListInvoices returns the customer's invoices, newest first.
func (b *billingClient) ListInvoices(ctx context.Context, customerID string) ([]Invoice, error) {
	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(25)

	out := []Invoice{}
	it := invoice.List(params)
	for it.Next() {
		out = append(out, invoiceFromAPI(it.Invoice()))
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func invoiceFromAPI(inv *stripe.Invoice) Invoice {
	if inv == nil {
		return Invoice{}
	}
	return Invoice{
		ID:         inv.ID,
		Number:     inv.Number,
		Status:     string(inv.Status),
		AmountDue:  inv.AmountDue,
		AmountPaid: inv.AmountPaid,
		Currency:   string(inv.Currency),
		CreatedAt:  time.Unix(inv.Created, 0).UTC(),
		HostedURL:  inv.HostedInvoiceURL,
		PDFURL:     inv.InvoicePDF,
	}
}

func planFromSubscription(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil {
		return ""
	}
	for _, item := range sub.Items.Data {
		if item == nil || item.Price == nil {
			continue
		}
		if item.Price.LookupKey != "" {
			return item.Price.LookupKey
		}
		if item.Price.Nickname != "" {
			return item.Price.Nickname
		}
	}
	return ""
}
