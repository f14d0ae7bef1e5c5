// Package backup exports a user's CRM data, uploads backups and imports
// customer spreadsheets.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	crmapp "github.com/circlesoft/crm/internal/application/crm"
	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/circlesoft/crm/internal/infrastructure/export"
	"github.com/circlesoft/crm/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// ErrNoDestination is returned by Backup when no store is configured
var ErrNoDestination = shared.NewDomainError(shared.ErrInvalidState.Code, "No backup destination configured")

// Workspaces opens a user's CRM manager
type Workspaces interface {
	Manager(ctx context.Context, userID string) (*crmapp.Manager, error)
}

// Service ties export formats to workspaces and a backup destination
type Service struct {
	workspaces Workspaces
	store      storage.BlobStore
	now        func() time.Time
	logger     *zap.Logger
}

// NewService creates a backup service. store may be nil when only exports
// and imports are needed.
func NewService(workspaces Workspaces, store storage.BlobStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{workspaces: workspaces, store: store, now: time.Now, logger: logger.Named("backup_service")}
}

// File is an encoded export
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export encodes the user's current data
func (s *Service) Export(ctx context.Context, userID string, format export.Format) (*File, error) {
	m, err := s.workspaces.Manager(ctx, userID)
	if err != nil {
		return nil, err
	}
	at := s.now()
	data, err := export.Encode(format, export.Snapshot{UserID: userID, ExportedAt: at.UTC(), Data: m.Snapshot()})
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return &File{Name: export.FileName(userID, at, format), ContentType: format.ContentType(), Data: data}, nil
}

// Backup exports the user's data and stores it, returning its location
func (s *Service) Backup(ctx context.Context, userID string, format export.Format) (string, error) {
	if s.store == nil {
		return "", ErrNoDestination
	}
	f, err := s.Export(ctx, userID, format)
	if err != nil {
		return "", err
	}
	location, err := s.store.Put(ctx, userID+"/"+f.Name, f.Data, f.ContentType)
	if err != nil {
		return "", err
	}
	s.logger.Info("Backup stored",
		zap.String("user_id", userID),
		zap.String("location", location),
		zap.Int("bytes", len(f.Data)))
	return location, nil
}

// ImportResult summarizes a customer import
type ImportResult struct {
	Imported int               `json:"imported"`
	Skipped  []string          `json:"skipped"`
	Errors   []export.RowError `json:"errors"`
}

// ImportCustomers adds every valid customer of the workbook. Customers that
// already exist are skipped by name.
func (s *Service) ImportCustomers(ctx context.Context, userID string, r io.Reader) (*ImportResult, error) {
	parsed, err := export.ReadCustomers(r)
	if err != nil {
		return nil, err
	}
	m, err := s.workspaces.Manager(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Skipped: []string{}, Errors: parsed.Errors}
	if res.Errors == nil {
		res.Errors = []export.RowError{}
	}
	for _, c := range parsed.Customers {
		_, err := m.AddCustomer(ctx, c)
		switch {
		case errors.Is(err, crm.ErrCustomerExists):
			res.Skipped = append(res.Skipped, c.Name)
		case err != nil:
			return res, fmt.Errorf("import customer %s: %w", c.Name, err)
		default:
			res.Imported++
		}
	}
	s.logger.Info("Customers imported",
		zap.String("user_id", userID),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("rejected", len(res.Errors)))
	return res, nil
}
