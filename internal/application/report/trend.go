// Package report computes the read-only statistics shown on the dashboard,
// analytics, calendar and profile pages. Every function is pure over a
// snapshot of the CRM aggregate and an explicit "now".
package report

import (
	"strconv"
	"time"

	"github.com/circlesoft/crm/internal/domain/shared"
)

// Direction is the sign of a trend
type Direction string

const (
	TrendUp   Direction = "up"
	TrendDown Direction = "down"
)

// Trend is a month-over-month change. Value is the absolute percentage with
// one decimal.
type Trend struct {
	Value string    `json:"value"`
	Trend Direction `json:"trend"`
}

// CalculateTrend compares curr to prev. With no previous value the change is
// reported as 0% when curr is also zero and 100% otherwise, always up.
func CalculateTrend(curr, prev float64) Trend {
	if prev == 0 {
		if curr == 0 {
			return Trend{Value: "0.0", Trend: TrendUp}
		}
		return Trend{Value: "100.0", Trend: TrendUp}
	}
	pct := (curr - prev) / prev * 100
	dir := TrendUp
	if pct < 0 {
		dir = TrendDown
		pct = -pct
	}
	return Trend{Value: strconv.FormatFloat(pct, 'f', 1, 64), Trend: dir}
}

// Rate returns part/total as a percentage, or 0 for an empty total
func Rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// window is a half-open time range
type window struct {
	start, end time.Time
}

func monthWindow(now time.Time, offset int) window {
	return window{start: shared.StartOfMonth(now, offset), end: shared.StartOfMonth(now, offset+1)}
}

func (w window) contains(value string, loc *time.Location) bool {
	t, ok := shared.ParseTime(value, loc)
	return ok && !t.Before(w.start) && t.Before(w.end)
}

// monthKey identifies a calendar month independent of its display label
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
