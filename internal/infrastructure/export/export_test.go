package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func ptr[T any](v T) *T { return &v }

func sampleData() *crm.Data {
	d := crm.NewEmptyData(identity.User{ID: "u1", Name: "Gavano"})
	d.Customers = []crm.Customer{{ID: "c1", Name: "Randy Press", Store: "Downtown", Contact: "555-0100", CreatedAt: "2024-01-01T00:00:00.000Z"}}
	d.Clients = []crm.Inquiry{{
		ID: "i1", CustomerID: "c1", Name: "Randy Press", Store: "Downtown", Contact: "555-0100",
		InquiryType: crm.InquiryTypeGroupQuote, IntentionLevel: crm.IntentionHigh, InquiryDate: "2024-01-02",
		Status: crm.StatusWon, FollowUpCount: 2,
	}}
	d.Orders = []crm.Order{
		{ID: "o1", OrderNumber: "ORD20240001", ClientID: "i1", OrderStatus: crm.OrderCompleted, StoreSettlement: ptr(0.1)},
		{ID: "o2", OrderNumber: "ORD20240002", ClientID: "gone", ClientName: "Stored Name", StoreSettlement: ptr(0.2)},
	}
	return d
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML, " xlsx ": FormatXLSX}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestEncode_JSONAndYAML(t *testing.T) {
	snap := Snapshot{UserID: "u1", ExportedAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Data: sampleData()}

	raw, err := Encode(FormatJSON, snap)
	require.NoError(t, err)
	var back Snapshot
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "Randy Press", back.Data.Customers[0].Name)

	raw, err = Encode(FormatYAML, snap)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, "u1", doc["userId"])
	data := doc["data"].(map[string]any)
	assert.Contains(t, data, "followUpHistory")
	assert.Contains(t, data, "clients")
}

func TestWriteWorkbook(t *testing.T) {
	raw, err := Encode(FormatXLSX, Snapshot{Data: sampleData()})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetCustomers, SheetInquiries, SheetOrders}, f.GetSheetList())

	customers, err := f.GetRows(SheetCustomers)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Randy Press", customers[1][1])

	orders, err := f.GetRows(SheetOrders)
	require.NoError(t, err)
	require.Len(t, orders, 4)
	assert.Equal(t, "Randy Press", orders[1][2])
	assert.Equal(t, "Stored Name", orders[2][2])
	assert.Equal(t, "Total", orders[3][1])
	assert.Equal(t, "0.3", orders[3][10])
}

func buildCustomerSheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadCustomers(t *testing.T) {
	t.Run("english headers with title row", func(t *testing.T) {
		buf := buildCustomerSheet(t, [][]any{
			{"Customer list"},
			{"Name", "Store", "Contact", "Notes"},
			{"Alice", "North", "555-1", "VIP"},
			{"", "", "", ""},
			{"Bob", "", "555-2"},
			{"Alice", "North", "555-3"},
			{"Carol", "South", "555-4"},
		})

		res, err := ReadCustomers(buf)
		require.NoError(t, err)
		require.Len(t, res.Customers, 2)
		assert.Equal(t, "Alice", res.Customers[0].Name)
		assert.Equal(t, "VIP", res.Customers[0].Notes)
		assert.Equal(t, "Carol", res.Customers[1].Name)

		require.Len(t, res.Errors, 2)
		assert.Equal(t, RowError{Row: 5, Column: "store", Code: ErrCodeRequiredField, Message: "field 'store' is required"}, res.Errors[0])
		assert.Equal(t, 6, res.Errors[1].Row)
		assert.Equal(t, ErrCodeDuplicateRow, res.Errors[1].Code)
	})

	t.Run("chinese headers", func(t *testing.T) {
		buf := buildCustomerSheet(t, [][]any{
			{"姓名", "门店", "联系方式"},
			{"张三", "上海店", "13800000000"},
		})
		res, err := ReadCustomers(buf)
		require.NoError(t, err)
		require.Len(t, res.Customers, 1)
		assert.Equal(t, "上海店", res.Customers[0].Store)
	})

	t.Run("missing headers", func(t *testing.T) {
		buf := buildCustomerSheet(t, [][]any{{"Name", "Phone"}})
		_, err := ReadCustomers(buf)
		assert.ErrorIs(t, err, ErrMissingHeaders)
	})
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 5, 10, 4, 5, 0, time.UTC)
	assert.Equal(t, "crm-u1-20240305-100405.yaml", FileName("u1", at, FormatYAML))
}
