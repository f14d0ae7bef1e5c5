package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "circlesoft-crm", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "crm.db", cfg.Storage.Path)
	assert.True(t, cfg.Storage.AllowMemoryFallback)
	assert.Equal(t, "keep", cfg.CRM.CustomerDeletePolicy)
	assert.False(t, cfg.CRM.RevertFollowUpOnDelete)
	assert.True(t, cfg.CRM.EnforceReferences)
	assert.Equal(t, 10, cfg.CRM.PageSize)
	assert.Equal(t, 4*time.Second, cfg.Notification.ToastTimeout)
	assert.Equal(t, 3, cfg.Notification.ToastLimit)
	assert.Equal(t, 300*time.Millisecond, cfg.Notification.Debounce)
	assert.Equal(t, "crm:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.NotEmpty(t, cfg.JWT.Secret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CRM_STORAGE_DRIVER", "memory")
	t.Setenv("CRM_CRM_CUSTOMER_DELETE_POLICY", "cascade")
	t.Setenv("CRM_CRM_REVERT_FOLLOW_UP_ON_DELETE", "true")
	t.Setenv("CRM_CRM_ENFORCE_REFERENCES", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "cascade", cfg.CRM.CustomerDeletePolicy)
	assert.True(t, cfg.CRM.RevertFollowUpOnDelete)
	assert.False(t, cfg.CRM.EnforceReferences)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crm.toml")
	content := `
[app]
port = "9090"

[storage]
driver = "redis"

[redis]
host = "cache"
port = 6380

[notification]
toast_timeout = "2s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, 2*time.Second, cfg.Notification.ToastTimeout)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, wantErr: "storage.driver"},
		{name: "unknown delete policy", mutate: func(c *Config) { c.CRM.CustomerDeletePolicy = "purge" }, wantErr: "customer_delete_policy"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Backup.Driver = "s3" }, wantErr: "backup.bucket"},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.Security.BcryptCost = 2 }, wantErr: "bcrypt_cost"},
		{name: "sampling ratio", mutate: func(c *Config) { c.Telemetry.SamplingRatio = 2 }, wantErr: "sampling_ratio"},
		{
			name: "short production secret",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.JWT.Secret = "short"
			},
			wantErr: "jwt.secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "crm", Password: "p@ss", DBName: "crm", SSLMode: "disable"}
	assert.Equal(t, "postgres://crm:p%40ss@db:5432/crm?sslmode=disable", d.DSN())
}
