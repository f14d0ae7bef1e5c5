package persistence

import (
	"context"
	"errors"

	"github.com/circlesoft/crm/internal/domain/settings"
	"github.com/circlesoft/crm/internal/domain/shared"
)

// PreferenceRepository stores each preference under its own key,
// preferences/<userID>/<name>.
type PreferenceRepository struct {
	store shared.KeyValueStore
}

// NewPreferenceRepository creates a repository over a key-value store
func NewPreferenceRepository(store shared.KeyValueStore) *PreferenceRepository {
	return &PreferenceRepository{store: store}
}

// PreferenceKey returns the storage key of one preference
func PreferenceKey(userID, name string) string {
	return shared.KeyPreferencesPrefix + userID + "/" + name
}

// Load implements settings.Repository
func (r *PreferenceRepository) Load(ctx context.Context, userID string) (map[string]string, error) {
	values := make(map[string]string, len(settings.Keys))
	for _, name := range settings.Keys {
		raw, err := r.store.Get(ctx, PreferenceKey(userID, name))
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		values[name] = string(raw)
	}
	return values, nil
}

// Save implements settings.Repository
func (r *PreferenceRepository) Save(ctx context.Context, userID string, values map[string]string) error {
	for name, value := range values {
		if err := r.store.Set(ctx, PreferenceKey(userID, name), []byte(value)); err != nil {
			return err
		}
	}
	return nil
}

var _ settings.Repository = (*PreferenceRepository)(nil)
