package crm

import "context"

// Repository loads and saves whole per-user aggregates
type Repository interface {
	// Load returns shared.ErrNotFound when the user has no stored entry and
	// ErrCorruptData when the stored document cannot be parsed. A stored
	// entry with no customers field comes back with Customers == nil.
	Load(ctx context.Context, userID string) (*Data, error)
	// Save replaces the user's entry
	Save(ctx context.Context, userID string, data *Data) error
	// UserIDs lists users with a stored entry
	UserIDs(ctx context.Context) ([]string, error)
}
