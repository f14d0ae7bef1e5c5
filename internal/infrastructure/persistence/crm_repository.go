package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/shared"
	"go.uber.org/zap"
)

// CRMRepository stores every user's aggregate in one JSON object under the
// crmData key, mapping user id to aggregate.
type CRMRepository struct {
	store  shared.KeyValueStore
	logger *zap.Logger
	mu     sync.Mutex
}

// NewCRMRepository creates a repository over a key-value store
func NewCRMRepository(store shared.KeyValueStore, logger *zap.Logger) *CRMRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CRMRepository{store: store, logger: logger.Named("crm_repository")}
}

// Load implements crm.Repository
func (r *CRMRepository) Load(ctx context.Context, userID string) (*crm.Data, error) {
	all, err := r.readAll(ctx)
	if err != nil {
		return nil, err
	}

	raw, ok := all[userID]
	if !ok || string(raw) == "null" {
		return nil, shared.ErrNotFound
	}

	var data crm.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: user %s: %v", crm.ErrCorruptData, userID, err)
	}
	return &data, nil
}

// Save implements crm.Repository. Entries of other users are preserved; a
// document that can no longer be parsed is replaced.
func (r *CRMRepository) Save(ctx context.Context, userID string, data *crm.Data) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.readAll(ctx)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		all = map[string]json.RawMessage{}
	case errors.Is(err, crm.ErrCorruptData):
		r.logger.Warn("crmData document is corrupt, starting a fresh one", zap.Error(err))
		all = map[string]json.RawMessage{}
	case err != nil:
		return err
	}

	entry, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode crm data: %w", err)
	}
	all[userID] = entry

	doc, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode crmData document: %w", err)
	}
	return r.store.Set(ctx, shared.KeyCRMData, doc)
}

// UserIDs implements crm.Repository
func (r *CRMRepository) UserIDs(ctx context.Context) ([]string, error) {
	all, err := r.readAll(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *CRMRepository) readAll(ctx context.Context) (map[string]json.RawMessage, error) {
	raw, err := r.store.Get(ctx, shared.KeyCRMData)
	if err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("%w: %v", crm.ErrCorruptData, err)
	}
	if all == nil {
		all = map[string]json.RawMessage{}
	}
	return all, nil
}

var _ crm.Repository = (*CRMRepository)(nil)
