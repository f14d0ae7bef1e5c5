package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	identityapp "github.com/circlesoft/crm/internal/application/identity"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/circlesoft/crm/internal/infrastructure/cache"
	"github.com/circlesoft/crm/internal/infrastructure/config"
	"github.com/circlesoft/crm/internal/infrastructure/export"
	"github.com/circlesoft/crm/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T, blobs storage.BlobStore) *App {
	t.Helper()
	cfg := &config.Config{
		CRM: config.CRMConfig{
			CustomerDeletePolicy: "keep",
			EnforceReferences:    true,
			SeedDemoUser:         true,
			MockSeed:             7,
		},
		Notification: config.NotificationConfig{Debounce: time.Hour},
		Security:     config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
	return NewApp(cfg, cache.NewInMemoryKVStore(), blobs, nil)
}

func run(t *testing.T, app *App, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	opts := &rootOptions{open: func(context.Context) (*App, error) { return app, nil }}
	cmd := newRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUsersCommands(t *testing.T) {
	app := newTestApp(t, nil)

	out, err := run(t, app, nil, "users", "seed")
	require.NoError(t, err)
	assert.Equal(t, "1 account(s)\n", out)

	out, err = run(t, app, nil, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, identity.DemoUserID)
	assert.Contains(t, out, identity.DemoUserEmail)

	t.Run("reset password", func(t *testing.T) {
		out, err := run(t, app, nil, "users", "reset-password", "--email", identity.DemoUserEmail, "--password", "changed456")
		require.NoError(t, err)
		assert.Contains(t, out, "password updated")

		_, err = app.Auth.Login(context.Background(), identityapp.LoginInput{Email: identity.DemoUserEmail, Password: "changed456"})
		assert.NoError(t, err)
	})

	t.Run("missing flags", func(t *testing.T) {
		_, err := run(t, app, nil, "users", "reset-password", "--email", identity.DemoUserEmail)
		assert.ErrorIs(t, err, errMissingFlag)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := run(t, app, nil, "users", "reset-password", "--email", "nobody@example.com", "--password", "changed456")
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})
}

func TestExportCommand(t *testing.T) {
	app := newTestApp(t, nil)

	t.Run("stdout", func(t *testing.T) {
		out, err := run(t, app, nil, "export", "--format", "json", "--out", "-")
		require.NoError(t, err)

		var snap export.Snapshot
		require.NoError(t, json.Unmarshal([]byte(out), &snap))
		assert.Equal(t, identity.DemoUserID, snap.UserID)
		assert.NotEmpty(t, snap.Data.Clients)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.yaml")
		out, err := run(t, app, nil, "export", "-f", "yaml", "-o", path)
		require.NoError(t, err)
		assert.Contains(t, out, "wrote "+path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "userId: "+identity.DemoUserID)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, app, nil, "export", "--format", "csv")
		assert.Error(t, err)
	})
}

func TestImportCommand(t *testing.T) {
	app := newTestApp(t, nil)

	f := excelize.NewFile()
	rows := [][]any{
		{"Name", "Store", "Contact", "Notes"},
		{"Wu Lei", "Pudong", "138-0000-0001", ""},
		{"No Contact", "Xuhui", "", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "customers.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	out, err := run(t, app, nil, "import", "customers", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1, skipped 0, rejected 1")
	assert.Contains(t, out, "row 3")

	out, err = run(t, app, nil, "import", "customers", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped Wu Lei: already exists")

	_, err = run(t, app, nil, "import", "customers")
	assert.ErrorIs(t, err, errMissingFlag)
}

func TestBackupCommand(t *testing.T) {
	t.Run("local destination", func(t *testing.T) {
		dir := t.TempDir()
		blobs, err := storage.NewLocalStore(dir)
		require.NoError(t, err)
		app := newTestApp(t, blobs)

		out, err := run(t, app, nil, "backup", "--format", "json")
		require.NoError(t, err)
		location := strings.TrimSpace(out)
		assert.True(t, strings.HasPrefix(location, dir))
		assert.FileExists(t, location)
	})

	t.Run("no destination", func(t *testing.T) {
		_, err := run(t, newTestApp(t, nil), nil, "backup")
		assert.Error(t, err)
	})
}

func TestSearchCommand(t *testing.T) {
	app := newTestApp(t, nil)
	m, err := app.Workspaces.Manager(context.Background(), identity.DemoUserID)
	require.NoError(t, err)
	name := m.Snapshot().Clients[0].Name

	t.Run("argument", func(t *testing.T) {
		out, err := run(t, app, nil, "search", name)
		require.NoError(t, err)
		assert.Contains(t, out, "result(s)")
		assert.Contains(t, out, "[client] "+name)
	})

	t.Run("too short", func(t *testing.T) {
		out, err := run(t, app, nil, "search", "a")
		require.NoError(t, err)
		assert.Contains(t, out, "type at least 2 characters")
	})

	t.Run("stdin runs the last query", func(t *testing.T) {
		out, err := run(t, app, strings.NewReader("x\nzz-no-match\n"+name+"\n"), "search")
		require.NoError(t, err)
		assert.NotContains(t, out, "zz-no-match")
		assert.Contains(t, out, "[client] "+name)
	})
}
