package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/circlesoft/crm/internal/domain/shared"
)

// AccountRepository implements identity.AccountRepository on the users,
// currentUserId and rememberedCredentials keys.
type AccountRepository struct {
	store shared.KeyValueStore
}

// NewAccountRepository creates a repository over a key-value store
func NewAccountRepository(store shared.KeyValueStore) *AccountRepository {
	return &AccountRepository{store: store}
}

// List returns shared.ErrNotFound when no account list exists yet
func (r *AccountRepository) List(ctx context.Context) ([]identity.Account, error) {
	raw, err := r.store.Get(ctx, shared.KeyUsers)
	if err != nil {
		return nil, err
	}
	var accounts []identity.Account
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if accounts == nil {
		accounts = []identity.Account{}
	}
	return accounts, nil
}

// SaveAll replaces the account list
func (r *AccountRepository) SaveAll(ctx context.Context, accounts []identity.Account) error {
	raw, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return r.store.Set(ctx, shared.KeyUsers, raw)
}

// CurrentUserID returns "" when nobody is signed in
func (r *AccountRepository) CurrentUserID(ctx context.Context) (string, error) {
	raw, err := r.store.Get(ctx, shared.KeyCurrentUserID)
	if errors.Is(err, shared.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SetCurrentUserID stores the session pointer
func (r *AccountRepository) SetCurrentUserID(ctx context.Context, userID string) error {
	return r.store.Set(ctx, shared.KeyCurrentUserID, []byte(userID))
}

// ClearCurrentUserID removes the session pointer
func (r *AccountRepository) ClearCurrentUserID(ctx context.Context) error {
	return r.store.Delete(ctx, shared.KeyCurrentUserID)
}

// Remembered returns nil when nothing is remembered
func (r *AccountRepository) Remembered(ctx context.Context) (*identity.RememberedCredentials, error) {
	raw, err := r.store.Get(ctx, shared.KeyRememberedCredentials)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var creds identity.RememberedCredentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		// an unreadable entry is as good as none
		return nil, nil
	}
	return &creds, nil
}

// SetRemembered stores the remembered email
func (r *AccountRepository) SetRemembered(ctx context.Context, creds identity.RememberedCredentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode remembered credentials: %w", err)
	}
	return r.store.Set(ctx, shared.KeyRememberedCredentials, raw)
}

// ClearRemembered forgets the remembered email
func (r *AccountRepository) ClearRemembered(ctx context.Context) error {
	return r.store.Delete(ctx, shared.KeyRememberedCredentials)
}

var _ identity.AccountRepository = (*AccountRepository)(nil)
