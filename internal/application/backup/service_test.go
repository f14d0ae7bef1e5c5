package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	crmapp "github.com/circlesoft/crm/internal/application/crm"
	"github.com/circlesoft/crm/internal/infrastructure/cache"
	"github.com/circlesoft/crm/internal/infrastructure/export"
	"github.com/circlesoft/crm/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memoryBlobs struct {
	puts map[string][]byte
	err  error
}

func (b *memoryBlobs) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if b.puts == nil {
		b.puts = map[string][]byte{}
	}
	b.puts[key] = data
	return "mem://" + key, nil
}

func newService(t *testing.T, blobs *memoryBlobs) *Service {
	t.Helper()
	workspaces := crmapp.NewService(crmapp.Dependencies{
		Repository: persistence.NewCRMRepository(cache.NewInMemoryKVStore(), nil),
		MockSeed:   7,
		Policies:   crmapp.DefaultPolicies(),
	})
	svc := NewService(workspaces, blobs, nil)
	svc.now = func() time.Time { return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func workbook(t *testing.T, rows ...[]any) []byte {
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
	return buf.Bytes()
}

func TestService_Export(t *testing.T) {
	svc := newService(t, nil)

	f, err := svc.Export(context.Background(), "u1", export.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "crm-u1-20240615-100000.json", f.Name)
	assert.Equal(t, "application/json", f.ContentType)

	var snap export.Snapshot
	require.NoError(t, json.Unmarshal(f.Data, &snap))
	assert.Equal(t, "u1", snap.UserID)
	assert.Len(t, snap.Data.Clients, crmapp.MockInquiryCount)
}

func TestService_Backup(t *testing.T) {
	ctx := context.Background()

	t.Run("stores under the user prefix", func(t *testing.T) {
		blobs := &memoryBlobs{}
		svc := newService(t, blobs)

		location, err := svc.Backup(ctx, "u1", export.FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, "mem://u1/crm-u1-20240615-100000.yaml", location)
		assert.Contains(t, string(blobs.puts["u1/crm-u1-20240615-100000.yaml"]), "userId: u1")
	})

	t.Run("store failure", func(t *testing.T) {
		svc := newService(t, &memoryBlobs{err: errors.New("bucket gone")})
		_, err := svc.Backup(ctx, "u1", export.FormatJSON)
		assert.ErrorContains(t, err, "bucket gone")
	})

	t.Run("no destination", func(t *testing.T) {
		svc := NewService(nil, nil, nil)
		_, err := svc.Backup(ctx, "u1", export.FormatJSON)
		assert.ErrorIs(t, err, ErrNoDestination)
	})
}

func TestService_ImportCustomers(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	file := workbook(t,
		[]any{"Name", "Store", "Contact", "Notes"},
		[]any{"Wu Lei", "Pudong", "138-0000-0001", "vip"},
		[]any{"Zhao Min", "Xuhui", "138-0000-0002", ""},
		[]any{"No Contact", "Xuhui", "", ""},
	)

	res, err := svc.ImportCustomers(ctx, "u1", bytes.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 4, res.Errors[0].Row)

	m, err := svc.workspaces.Manager(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Zhao Min", m.Snapshot().Customers[0].Name)

	res, err = svc.ImportCustomers(ctx, "u1", bytes.NewReader(file))
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.Equal(t, []string{"Wu Lei", "Zhao Min"}, res.Skipped)

	_, err = svc.ImportCustomers(ctx, "u1", bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}
