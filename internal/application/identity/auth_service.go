package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workspaces is the part of the CRM service that follows profile and
// session changes.
type Workspaces interface {
	UpdateUser(ctx context.Context, u identity.User) error
	Evict(userID string)
}

// AuthService handles accounts and the current-user pointer
type AuthService struct {
	accounts   identity.AccountRepository
	data       crm.Repository
	hasher     identity.PasswordHasher
	workspaces Workspaces
	seedDemo   bool
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. workspaces may be nil.
func NewAuthService(
	accounts identity.AccountRepository,
	data crm.Repository,
	hasher identity.PasswordHasher,
	workspaces Workspaces,
	seedDemo bool,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:   accounts,
		data:       data,
		hasher:     hasher,
		workspaces: workspaces,
		seedDemo:   seedDemo,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger.Named("auth_service"),
	}
}

// list returns the stored accounts; a missing list is empty
func (s *AuthService) list(ctx context.Context) ([]identity.Account, bool, error) {
	accounts, err := s.accounts.List(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return []identity.Account{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, true, nil
}

// Bootstrap seeds the demo account when no account list exists and returns
// the signed-in user, or nil.
func (s *AuthService) Bootstrap(ctx context.Context) (*identity.User, error) {
	_, exists, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	if !exists && s.seedDemo {
		hash, err := s.hasher.Hash(identity.DemoUserPassword)
		if err != nil {
			return nil, err
		}
		demo := identity.Account{User: identity.DemoUser(), PasswordHash: hash}
		if err := s.accounts.SaveAll(ctx, []identity.Account{demo}); err != nil {
			return nil, fmt.Errorf("seed demo account: %w", err)
		}
		s.logger.Info("Seeded demo account", zap.String("email", demo.Email))
	}

	u, err := s.CurrentUser(ctx)
	if errors.Is(err, shared.ErrNoCurrentUser) {
		return nil, nil
	}
	return u, err
}

// Users returns every account's public profile
func (s *AuthService) Users(ctx context.Context) ([]identity.User, error) {
	accounts, _, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]identity.User, len(accounts))
	for i, a := range accounts {
		users[i] = a.User
	}
	return users, nil
}

// CurrentUser resolves the current-user pointer. A pointer to a deleted
// account counts as nobody signed in.
func (s *AuthService) CurrentUser(ctx context.Context) (*identity.User, error) {
	id, err := s.accounts.CurrentUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read current user: %w", err)
	}
	if id == "" {
		return nil, shared.ErrNoCurrentUser
	}
	accounts, _, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	i := identity.FindByID(accounts, id)
	if i < 0 {
		s.logger.Warn("Current user pointer has no account", zap.String("user_id", id))
		return nil, shared.ErrNoCurrentUser
	}
	u := accounts[i].User
	return &u, nil
}

// Remembered returns the remembered sign-in email, or nil
func (s *AuthService) Remembered(ctx context.Context) (*identity.RememberedCredentials, error) {
	return s.accounts.Remembered(ctx)
}

// Login checks the credentials and makes the user current
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*identity.User, error) {
	email := identity.NormalizeEmail(input.Email)
	accounts, _, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	i := identity.FindByEmail(accounts, email)
	if i < 0 || !s.hasher.Verify(accounts[i].PasswordHash, input.Password) {
		s.logger.Warn("Invalid login attempt", zap.String("email", email))
		return nil, identity.ErrInvalidCredentials
	}
	u := accounts[i].User

	if input.RememberMe {
		err = s.accounts.SetRemembered(ctx, identity.RememberedCredentials{Email: email})
	} else {
		err = s.accounts.ClearRemembered(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("update remembered credentials: %w", err)
	}
	if err := s.accounts.SetCurrentUserID(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("set current user: %w", err)
	}

	s.logger.Info("User logged in", zap.String("user_id", u.ID))
	return &u, nil
}

// Register creates an account with an empty workspace and signs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*identity.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = identity.NormalizeEmail(input.Email)

	if !input.AcceptTerms {
		return nil, identity.ErrTermsNotAccepted
	}
	if input.Password != input.ConfirmPassword {
		return nil, identity.ErrPasswordMismatch
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}

	accounts, _, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	if identity.FindByEmail(accounts, input.Email) >= 0 {
		return nil, identity.ErrEmailInUse
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	u := identity.User{
		ID:         uuid.NewString(),
		Name:       input.Name,
		Role:       DefaultRole,
		AvatarURL:  identity.AvatarFor(input.Email),
		Email:      input.Email,
		About:      fmt.Sprintf("New user profile for %s.", input.Name),
		Department: DefaultDepartment,
	}
	if err := s.accounts.SaveAll(ctx, append(accounts, identity.Account{User: u, PasswordHash: hash})); err != nil {
		return nil, fmt.Errorf("save accounts: %w", err)
	}

	// Customers stays absent so the first load fills in sample customers
	workspace := crm.NewEmptyData(u)
	workspace.Customers = nil
	if err := s.data.Save(ctx, u.ID, workspace); err != nil {
		return nil, fmt.Errorf("allocate workspace: %w", err)
	}
	if err := s.accounts.SetCurrentUserID(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("set current user: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", u.ID), zap.String("email", u.Email))
	return &u, nil
}

// ResetPassword replaces the password of the account with the email
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if input.Password != input.ConfirmPassword {
		return identity.ErrPasswordMismatch
	}
	if err := s.validate.Struct(input); err != nil {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}
	accounts, _, err := s.list(ctx)
	if err != nil {
		return err
	}
	i := identity.FindByEmail(accounts, identity.NormalizeEmail(input.Email))
	if i < 0 {
		return identity.ErrUserNotFound
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return err
	}
	accounts[i].PasswordHash = hash
	if err := s.accounts.SaveAll(ctx, accounts); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	s.logger.Info("Password reset", zap.String("user_id", accounts[i].ID))
	return nil
}

// Logout clears the current-user pointer and drops the in-memory workspace
func (s *AuthService) Logout(ctx context.Context) error {
	id, err := s.accounts.CurrentUserID(ctx)
	if err != nil {
		return fmt.Errorf("read current user: %w", err)
	}
	if err := s.accounts.ClearCurrentUserID(ctx); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	if id != "" && s.workspaces != nil {
		s.workspaces.Evict(id)
	}
	return nil
}

// UpdateProfile merges the update into the account and the user's workspace
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update identity.ProfileUpdate) (*identity.User, error) {
	accounts, _, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	i := identity.FindByID(accounts, userID)
	if i < 0 {
		return nil, shared.ErrNotFound
	}
	update.Apply(&accounts[i].User)
	if err := s.accounts.SaveAll(ctx, accounts); err != nil {
		return nil, fmt.Errorf("save accounts: %w", err)
	}
	u := accounts[i].User
	if s.workspaces != nil {
		if err := s.workspaces.UpdateUser(ctx, u); err != nil {
			return nil, err
		}
	}
	return &u, nil
}
