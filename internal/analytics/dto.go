package analytics

// ChartPoint is one labelled value in a chart-ready series.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// DashboardDTO bundles every dashboard series in one response.
type DashboardDTO struct {
	BookingsPerMonth        []ChartPoint `json:"bookings_per_month"`
	BookingStatusBreakdown  []ChartPoint `json:"booking_status_breakdown"`
	TicketStatusBreakdown   []ChartPoint `json:"ticket_status_breakdown"`
	TicketPriorityBreakdown []ChartPoint `json:"ticket_priority_breakdown"`
	RevenuePerMonth         []ChartPoint `json:"revenue_per_month"`
	TopServices             []ChartPoint `json:"top_services"`
}
