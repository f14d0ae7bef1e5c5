package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/circlesoft/crm/internal/infrastructure/config"
	"go.uber.org/zap"
)

// BlobStore is a backup destination. Put returns where the data ended up.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// New returns the store selected by cfg.Driver (local or s3)
func New(ctx context.Context, cfg config.BackupConfig, logger *zap.Logger) (BlobStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocalStore(cfg.Dir)
	case "s3":
		return NewS3Store(ctx, cfg, WithLogger(logger))
	}
	return nil, fmt.Errorf("unsupported backup driver %q", cfg.Driver)
}

var (
	_ BlobStore = (*LocalStore)(nil)
	_ BlobStore = (*S3Store)(nil)
)
