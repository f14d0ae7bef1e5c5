package report

import (
	"strconv"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/shopspring/decimal"
)

// ProfileStats are the headline numbers on the profile page
type ProfileStats struct {
	TotalClients   int             `json:"totalClients"`
	ActiveOrders   int             `json:"activeOrders"`
	TotalSales     decimal.Decimal `json:"totalSales"`
	ConversionRate string          `json:"conversionRate"`
}

// BuildProfileStats sums store settlements and relates orders to inquiries
func BuildProfileStats(d *crm.Data) ProfileStats {
	stats := ProfileStats{TotalClients: len(d.Clients), TotalSales: decimal.Zero, ConversionRate: "0.0"}
	for _, o := range d.Orders {
		if o.OrderStatus.IsActive() {
			stats.ActiveOrders++
		}
		if o.StoreSettlement != nil {
			stats.TotalSales = stats.TotalSales.Add(decimal.NewFromFloat(*o.StoreSettlement))
		}
	}
	if stats.TotalClients > 0 {
		stats.ConversionRate = strconv.FormatFloat(Rate(len(d.Orders), stats.TotalClients), 'f', 1, 64)
	}
	return stats
}
