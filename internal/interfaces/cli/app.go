// Package cli implements the crmctl administration commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/circlesoft/crm/internal/application/backup"
	crmapp "github.com/circlesoft/crm/internal/application/crm"
	identityapp "github.com/circlesoft/crm/internal/application/identity"
	settingsapp "github.com/circlesoft/crm/internal/application/settings"
	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/circlesoft/crm/internal/infrastructure/auth"
	"github.com/circlesoft/crm/internal/infrastructure/bootstrap"
	"github.com/circlesoft/crm/internal/infrastructure/config"
	"github.com/circlesoft/crm/internal/infrastructure/logger"
	"github.com/circlesoft/crm/internal/infrastructure/persistence"
	"github.com/circlesoft/crm/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// App holds the services a command works with
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Auth        *identityapp.AuthService
	Workspaces  *crmapp.Service
	Backup      *backup.Service
	Preferences *settingsapp.Service

	closeFn func() error
}

// NewApp wires the services over a key-value store. blobs may be nil.
func NewApp(cfg *config.Config, kv shared.KeyValueStore, blobs storage.BlobStore, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	accounts := persistence.NewAccountRepository(kv)
	crmRepo := persistence.NewCRMRepository(kv, log)
	workspaces := crmapp.NewService(crmapp.Dependencies{
		Repository: crmRepo,
		Accounts:   accounts,
		Logger:     log,
		Policies: crmapp.NewPolicies(
			cfg.CRM.CustomerDeletePolicy,
			cfg.CRM.RevertFollowUpOnDelete,
			cfg.CRM.EnforceReferences,
		),
		MockSeed: cfg.CRM.MockSeed,
		Location: time.Local,
	})
	return &App{
		Config:      cfg,
		Logger:      log,
		Auth:        identityapp.NewAuthService(accounts, crmRepo, auth.NewBcryptHasher(cfg.Security.BcryptCost), workspaces, cfg.CRM.SeedDemoUser, log),
		Workspaces:  workspaces,
		Backup:      backup.NewService(workspaces, blobs, log),
		Preferences: settingsapp.NewService(persistence.NewPreferenceRepository(kv), log),
	}
}

// OpenApp loads configuration and opens the configured store
func OpenApp(ctx context.Context, configPath string, verbose bool) (*App, error) {
	log := logger.ForCLI(verbose)
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	blobs, err := storage.New(ctx, cfg.Backup, log)
	if err != nil {
		log.Warn("Backups disabled", zap.Error(err))
		blobs = nil
	}
	app := NewApp(cfg, store.KV, blobs, log)
	app.closeFn = store.Close
	return app, nil
}

// Close releases the store and flushes the logger
func (a *App) Close() error {
	// stderr cannot be synced on every platform
	_ = logger.Sync(a.Logger)
	if a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}
