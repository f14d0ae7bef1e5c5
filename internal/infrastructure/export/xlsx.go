package export

import (
	"fmt"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names
const (
	SheetCustomers = "Customers"
	SheetInquiries = "Inquiries"
	SheetOrders    = "Orders"
)

var (
	customerHeaders = []any{"ID", "Name", "Store", "Contact", "Notes", "Created At"}
	inquiryHeaders  = []any{
		"ID", "Customer ID", "Name", "Store", "Contact", "Type", "Intention", "Inquiry Date",
		"Status", "Follow-up Date", "Follow-ups", "Details", "Notes", "Created At",
	}
	orderHeaders = []any{
		"ID", "Order Number", "Client", "Type", "Route", "Participants", "Departure", "Return",
		"Status", "Source", "Store Settlement", "Ground Settlement", "Rebate", "Created At",
	}
)

// WriteWorkbook renders customers, inquiries and orders as one sheet each.
// The orders sheet ends with a settlement total row.
func WriteWorkbook(data *crm.Data) ([]byte, error) {
	if data == nil {
		data = &crm.Data{}
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCustomers); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetInquiries, SheetOrders} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	customers := make([][]any, 0, len(data.Customers))
	for _, c := range data.Customers {
		customers = append(customers, []any{c.ID, c.Name, c.Store, c.Contact, c.Notes, c.CreatedAt})
	}

	inquiries := make([][]any, 0, len(data.Clients))
	for _, c := range data.Clients {
		inquiries = append(inquiries, []any{
			c.ID, c.CustomerID, c.Name, c.Store, c.Contact, string(c.InquiryType), string(c.IntentionLevel),
			c.InquiryDate, string(c.Status), deref(c.FollowUpDate), c.FollowUpCount, c.InquiryDetails, c.Notes, c.CreatedAt,
		})
	}

	names := data.ClientNames()
	var storeTotal, groundTotal, rebateTotal decimal.Decimal
	orders := make([][]any, 0, len(data.Orders)+1)
	for _, o := range data.Orders {
		client := names[o.ClientID]
		if client == "" {
			client = o.ClientName
		}
		orders = append(orders, []any{
			o.ID, o.OrderNumber, client, string(o.OrderType), o.RouteName, o.ParticipantCount,
			o.DepartureDate, o.ReturnDate, string(o.OrderStatus), string(o.CustomerSource),
			money(o.StoreSettlement), money(o.GroundSettlement), money(o.RebateAmount), o.CreatedAt,
		})
		storeTotal = storeTotal.Add(decimalOf(o.StoreSettlement))
		groundTotal = groundTotal.Add(decimalOf(o.GroundSettlement))
		rebateTotal = rebateTotal.Add(decimalOf(o.RebateAmount))
	}
	if len(data.Orders) > 0 {
		orders = append(orders, []any{
			"", "Total", "", "", "", "", "", "", "", "",
			storeTotal.InexactFloat64(), groundTotal.InexactFloat64(), rebateTotal.InexactFloat64(), "",
		})
	}

	for _, s := range []struct {
		name    string
		headers []any
		rows    [][]any
	}{
		{SheetCustomers, customerHeaders, customers},
		{SheetInquiries, inquiryHeaders, inquiries},
		{SheetOrders, orderHeaders, orders},
	} {
		if err := writeSheet(f, s.name, s.headers, s.rows, bold); err != nil {
			return nil, fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// money leaves absent amounts as empty cells
func money(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func decimalOf(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}
