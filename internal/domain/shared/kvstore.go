package shared

import "context"

// KeyValueStore is the process-wide durable store. Every piece of persisted
// state (accounts, the session pointer, CRM aggregates, preferences) lives
// under a string key as an opaque value.
type KeyValueStore interface {
	// Get returns ErrNotFound when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for absent keys
	Delete(ctx context.Context, key string) error
}

// Well-known storage keys
const (
	KeyUsers                 = "users"
	KeyCurrentUserID         = "currentUserId"
	KeyCRMData               = "crmData"
	KeyRememberedCredentials = "rememberedCredentials"
	KeyPreferencesPrefix     = "preferences/"
)

// KeyLister is implemented by stores that can enumerate their keys
type KeyLister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}
