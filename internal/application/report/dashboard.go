package report

import (
	"time"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/settings"
	"github.com/circlesoft/crm/internal/domain/shared"
)

// ChartMonths is the length of the trailing monthly charts
const ChartMonths = 12

// RecentInquiryCount is how many inquiries the dashboard lists
const RecentInquiryCount = 3

// Metric is one stat card
type Metric struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Trend    Trend   `json:"trend"`
}

func newMetric(curr, prev float64) Metric {
	return Metric{Current: curr, Previous: prev, Trend: CalculateTrend(curr, prev)}
}

// MonthBucket counts inquiries and won deals in one month
type MonthBucket struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Inquiries int    `json:"inquiries"`
	Deals     int    `json:"deals"`
}

// Slice is one segment of a distribution
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Dashboard is everything on the landing page
type Dashboard struct {
	NewCustomers    Metric        `json:"newCustomers"`
	Inquiries       Metric        `json:"monthlyInquiries"`
	Deals           Metric        `json:"dealsThisMonth"`
	ConversionRate  Metric        `json:"conversionRate"`
	Chart           []MonthBucket `json:"chart"`
	Intentions      []Slice       `json:"intentions"`
	RecentInquiries []crm.Inquiry `json:"recentInquiries"`
}

// BuildDashboard compares this calendar month with the previous one.
// Customers count by createdAt, inquiries by inquiryDate and deals by the
// order's createdAt.
func BuildDashboard(d *crm.Data, now time.Time, locale settings.Locale) Dashboard {
	loc := now.Location()
	this, last := monthWindow(now, 0), monthWindow(now, -1)

	count := func(n int, match func(int, window) bool, w window) int {
		c := 0
		for i := 0; i < n; i++ {
			if match(i, w) {
				c++
			}
		}
		return c
	}
	customer := func(i int, w window) bool { return w.contains(d.Customers[i].CreatedAt, loc) }
	inquiry := func(i int, w window) bool { return w.contains(d.Clients[i].InquiryDate, loc) }
	deal := func(i int, w window) bool { return w.contains(d.Orders[i].CreatedAt, loc) }

	inqNow, inqPrev := count(len(d.Clients), inquiry, this), count(len(d.Clients), inquiry, last)
	dealNow, dealPrev := count(len(d.Orders), deal, this), count(len(d.Orders), deal, last)

	return Dashboard{
		NewCustomers:    newMetric(float64(count(len(d.Customers), customer, this)), float64(count(len(d.Customers), customer, last))),
		Inquiries:       newMetric(float64(inqNow), float64(inqPrev)),
		Deals:           newMetric(float64(dealNow), float64(dealPrev)),
		ConversionRate:  newMetric(Rate(dealNow, inqNow), Rate(dealPrev, inqPrev)),
		Chart:           InquiryChart(d.Clients, now, func(t time.Time) string { return settings.MonthShort(t.Month(), locale) }),
		Intentions:      IntentionDistribution(d.Clients),
		RecentInquiries: RecentInquiries(d.Clients, RecentInquiryCount),
	}
}

// InquiryChart buckets inquiries of the trailing twelve months (current
// month last) by inquiry date. Buckets are keyed by year and month, so two
// months with the same label never merge.
func InquiryChart(clients []crm.Inquiry, now time.Time, label func(time.Time) string) []MonthBucket {
	loc := now.Location()
	buckets := make([]MonthBucket, ChartMonths)
	index := make(map[string]int, ChartMonths)
	for i := range buckets {
		start := shared.StartOfMonth(now, i-(ChartMonths-1))
		key := monthKey(start)
		buckets[i] = MonthBucket{Key: key, Label: label(start)}
		index[key] = i
	}
	for _, c := range clients {
		t, ok := shared.ParseTime(c.InquiryDate, loc)
		if !ok {
			continue
		}
		i, ok := index[monthKey(t)]
		if !ok {
			continue
		}
		buckets[i].Inquiries++
		if c.Status == crm.StatusWon {
			buckets[i].Deals++
		}
	}
	return buckets
}

// IntentionDistribution counts inquiries per intention level, high to low
func IntentionDistribution(clients []crm.Inquiry) []Slice {
	counts := make(map[crm.IntentionLevel]int, len(crm.IntentionLevels))
	for _, c := range clients {
		counts[c.IntentionLevel]++
	}
	out := make([]Slice, len(crm.IntentionLevels))
	for i, level := range crm.IntentionLevels {
		out[i] = Slice{Name: string(level), Value: counts[level]}
	}
	return out
}

// RecentInquiries returns the n most recently created inquiries
func RecentInquiries(clients []crm.Inquiry, n int) []crm.Inquiry {
	sorted := make([]crm.Inquiry, len(clients))
	copy(sorted, clients)
	shared.SortStable(sorted, func(c crm.Inquiry) (int64, bool) {
		t, ok := shared.ParseTime(c.CreatedAt, time.UTC)
		return t.UnixMilli(), ok
	}, shared.SortDescending)
	return sorted[:min(n, len(sorted))]
}
