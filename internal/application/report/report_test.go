package report

import (
	"testing"
	"time"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/circlesoft/crm/internal/domain/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func inquiry(id, date string, status crm.InquiryStatus, level crm.IntentionLevel) crm.Inquiry {
	return crm.Inquiry{
		ID:             id,
		Name:           "Client " + id,
		InquiryType:    crm.InquiryTypeOther,
		IntentionLevel: level,
		InquiryDate:    date,
		Status:         status,
		CreatedAt:      date + "T08:00:00.000Z",
	}
}

func TestCalculateTrend(t *testing.T) {
	tests := []struct {
		name       string
		curr, prev float64
		want       Trend
	}{
		{"growth from zero", 5, 0, Trend{Value: "100.0", Trend: TrendUp}},
		{"zero to zero", 0, 0, Trend{Value: "0.0", Trend: TrendUp}},
		{"halved", 3, 6, Trend{Value: "50.0", Trend: TrendDown}},
		{"unchanged", 4, 4, Trend{Value: "0.0", Trend: TrendUp}},
		{"one third up", 4, 3, Trend{Value: "33.3", Trend: TrendUp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateTrend(tt.curr, tt.prev))
		})
	}
}

func TestBuildDashboard(t *testing.T) {
	d := crm.NewEmptyData(identity.User{})
	d.Customers = []crm.Customer{
		{ID: "k1", CreatedAt: "2024-06-01T00:00:00.000Z"},
		{ID: "k2", CreatedAt: "2024-06-30T23:30:00.000Z"},
		{ID: "k3", CreatedAt: "2024-05-31T23:59:59.000Z"},
		{ID: "k4", CreatedAt: "garbage"},
	}
	d.Clients = []crm.Inquiry{
		inquiry("a", "2024-06-02", crm.StatusWon, crm.IntentionHigh),
		inquiry("b", "2024-06-10", crm.StatusPending, crm.IntentionLow),
		inquiry("c", "2024-06-14", crm.StatusPending, crm.IntentionLow),
		inquiry("d", "2024-05-01", crm.StatusWon, crm.IntentionMedium),
		inquiry("e", "2024-05-02", crm.StatusLost, crm.IntentionMedium),
		inquiry("f", "2024-05-03", crm.StatusLost, crm.IntentionMedium),
		inquiry("g", "2024-05-04", crm.StatusLost, crm.IntentionMedium),
		inquiry("h", "2024-05-05", crm.StatusLost, crm.IntentionMedium),
		inquiry("i", "2024-05-06", crm.StatusLost, crm.IntentionMedium),
		inquiry("old", "2023-06-10", crm.StatusWon, crm.IntentionHigh),
	}
	d.Orders = []crm.Order{{ID: "o1", CreatedAt: "2024-06-03T00:00:00.000Z"}}

	dash := BuildDashboard(d, now, settings.LocaleEnglish)

	assert.Equal(t, Metric{Current: 2, Previous: 1, Trend: Trend{Value: "100.0", Trend: TrendUp}}, dash.NewCustomers)
	assert.Equal(t, Metric{Current: 3, Previous: 6, Trend: Trend{Value: "50.0", Trend: TrendDown}}, dash.Inquiries)
	assert.Equal(t, Metric{Current: 1, Previous: 0, Trend: Trend{Value: "100.0", Trend: TrendUp}}, dash.Deals)
	assert.InDelta(t, 33.333, dash.ConversionRate.Current, 0.001)
	assert.Equal(t, 0.0, dash.ConversionRate.Previous)

	require.Len(t, dash.Chart, ChartMonths)
	assert.Equal(t, MonthBucket{Key: "2023-07", Label: "Jul"}, dash.Chart[0])
	assert.Equal(t, MonthBucket{Key: "2024-05", Label: "May", Inquiries: 6, Deals: 1}, dash.Chart[10])
	assert.Equal(t, MonthBucket{Key: "2024-06", Label: "Jun", Inquiries: 3, Deals: 1}, dash.Chart[11])

	assert.Equal(t, []Slice{{"高", 2}, {"中", 6}, {"低", 2}}, dash.Intentions)

	require.Len(t, dash.RecentInquiries, RecentInquiryCount)
	assert.Equal(t, []string{"c", "b", "a"}, []string{dash.RecentInquiries[0].ID, dash.RecentInquiries[1].ID, dash.RecentInquiries[2].ID})
}

func TestInquiryChart_SameLabelDifferentYear(t *testing.T) {
	clients := []crm.Inquiry{
		inquiry("a", "2023-06-20", crm.StatusWon, crm.IntentionHigh),
		inquiry("b", "2024-06-01", crm.StatusPending, crm.IntentionHigh),
	}
	chart := InquiryChart(clients, now, func(t time.Time) string { return settings.MonthShort(t.Month(), settings.LocaleChinese) })
	assert.Equal(t, "6月", chart[11].Label)
	assert.Equal(t, 1, chart[11].Inquiries)
	assert.Equal(t, 0, chart[11].Deals)
}

func TestBuildAnalytics(t *testing.T) {
	d := crm.NewEmptyData(identity.User{})
	d.Clients = []crm.Inquiry{
		inquiry("a", "2024-06-02", crm.StatusWon, crm.IntentionLow),
		inquiry("b", "2024-06-03", crm.StatusPending, crm.IntentionHigh),
		inquiry("c", "2024-04-03", crm.StatusPending, crm.IntentionLow),
	}
	d.Clients[1].InquiryType = crm.InquiryTypeGroupQuote

	a := BuildAnalytics(d, now, settings.LocaleEnglish)

	require.Len(t, a.MonthlyInquiries, ChartMonths)
	assert.Equal(t, "Jun 24", a.MonthlyInquiries[11].Label)
	assert.Equal(t, 2, a.MonthlyInquiries[11].Inquiries)
	assert.Equal(t, 50.0, a.ConversionTrend[11].Rate)
	assert.Equal(t, 0.0, a.ConversionTrend[9].Rate)
	assert.Equal(t, []Slice{{"其他", 2}, {"单团报价", 1}}, a.InquiryTypes)
	assert.Equal(t, []Slice{{"低", 2}, {"高", 1}}, a.Intentions)
}

func TestCalendar(t *testing.T) {
	d := crm.NewEmptyData(identity.User{})
	open := inquiry("a", "2024-06-01", crm.StatusInProgress, crm.IntentionHigh)
	open.FollowUpDate = strPtr("2024-06-20")
	closed := inquiry("b", "2024-06-01", crm.StatusWon, crm.IntentionHigh)
	closed.FollowUpDate = strPtr("2024-06-20")
	d.Clients = []crm.Inquiry{open, closed}
	d.Orders = []crm.Order{
		{ID: "o1", ClientName: "Ann", DepartureDate: "2024-06-20", ReturnDate: "2024-06-27"},
		{ID: "o2", DepartureDate: "2024-06-21", ReturnDate: "2024-06-28", DeparturePending: true},
	}

	events := CalendarEvents(d, time.UTC)
	require.Len(t, events, 4)
	assert.Equal(t, CalendarEvent{Type: EventFollowUp, Date: "2024-06-20", Name: "Client a", TargetType: crm.TargetClient, TargetID: "a"}, events[0])
	assert.Equal(t, NoName, events[3].Name)

	on := EventsOn(events, time.Date(2024, time.June, 20, 15, 0, 0, 0, time.UTC))
	assert.Len(t, on, 2)

	grid := MonthGrid(events, now)
	require.Len(t, grid, 42)
	assert.Equal(t, "2024-05-26", grid[0].Date)
	assert.False(t, grid[0].IsCurrentMonth)
	assert.Equal(t, "2024-06-01", grid[6].Date)
	assert.True(t, grid[6].IsCurrentMonth)
	assert.Equal(t, "2024-07-06", grid[41].Date)
	assert.Len(t, grid[25].Events, 2)
	assert.Empty(t, grid[0].Events)
}

func TestBuildProfileStats(t *testing.T) {
	d := crm.NewEmptyData(identity.User{})
	d.Clients = []crm.Inquiry{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	d.Orders = []crm.Order{
		{OrderStatus: crm.OrderPendingDeparture, StoreSettlement: floatPtr(6000)},
		{OrderStatus: crm.OrderInProgress},
		{OrderStatus: crm.OrderSettled, StoreSettlement: floatPtr(7000.5)},
	}

	stats := BuildProfileStats(d)
	assert.Equal(t, 4, stats.TotalClients)
	assert.Equal(t, 2, stats.ActiveOrders)
	assert.Equal(t, "13000.5", stats.TotalSales.String())
	assert.Equal(t, "75.0", stats.ConversionRate)

	empty := BuildProfileStats(crm.NewEmptyData(identity.User{}))
	assert.Equal(t, "0.0", empty.ConversionRate)
	assert.True(t, empty.TotalSales.IsZero())
}
