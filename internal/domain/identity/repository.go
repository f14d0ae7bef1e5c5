package identity

import "context"

// AccountRepository persists the account list, the current-user pointer and
// remembered credentials.
type AccountRepository interface {
	// List returns shared.ErrNotFound when no account list was ever stored
	List(ctx context.Context) ([]Account, error)
	SaveAll(ctx context.Context, accounts []Account) error

	CurrentUserID(ctx context.Context) (string, error)
	SetCurrentUserID(ctx context.Context, userID string) error
	ClearCurrentUserID(ctx context.Context) error

	Remembered(ctx context.Context) (*RememberedCredentials, error)
	SetRemembered(ctx context.Context, creds RememberedCredentials) error
	ClearRemembered(ctx context.Context) error
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// FindByEmail returns the index of the account with an exact email match, or -1
func FindByEmail(accounts []Account, email string) int {
	for i := range accounts {
		if accounts[i].Email == email {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the account with the id, or -1
func FindByID(accounts []Account, id string) int {
	for i := range accounts {
		if accounts[i].ID == id {
			return i
		}
	}
	return -1
}
