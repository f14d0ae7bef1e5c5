package report

import (
	"time"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/settings"
)

// RatePoint is the conversion rate of one month
type RatePoint struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
}

// Analytics is the content of the analytics page
type Analytics struct {
	MonthlyInquiries []MonthBucket `json:"monthlyInquiries"`
	ConversionTrend  []RatePoint   `json:"conversionTrend"`
	InquiryTypes     []Slice       `json:"inquiryTypes"`
	Intentions       []Slice       `json:"intentions"`
}

// BuildAnalytics labels months with a short month and two-digit year
func BuildAnalytics(d *crm.Data, now time.Time, locale settings.Locale) Analytics {
	months := InquiryChart(d.Clients, now, func(t time.Time) string { return settings.MonthYearShort(t, locale) })
	trend := make([]RatePoint, len(months))
	for i, m := range months {
		trend[i] = RatePoint{Key: m.Key, Label: m.Label, Rate: Rate(m.Deals, m.Inquiries)}
	}
	return Analytics{
		MonthlyInquiries: months,
		ConversionTrend:  trend,
		InquiryTypes: countInOrder(d.Clients, func(c crm.Inquiry) string {
			return string(c.InquiryType)
		}),
		Intentions: countInOrder(d.Clients, func(c crm.Inquiry) string {
			return string(c.IntentionLevel)
		}),
	}
}

// countInOrder counts values keeping the order in which they first appear
func countInOrder(clients []crm.Inquiry, key func(crm.Inquiry) string) []Slice {
	out := []Slice{}
	index := map[string]int{}
	for _, c := range clients {
		k := key(c)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Slice{Name: k})
		}
		out[i].Value++
	}
	return out
}
