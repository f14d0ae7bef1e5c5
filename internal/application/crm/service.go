package crm

import (
	"context"
	"sync"

	"github.com/circlesoft/crm/internal/domain/identity"
	"go.uber.org/zap"
)

type managerGauge interface {
	SetOpenManagers(n int)
}

// Service hands out one Manager per user, opening it on first use
type Service struct {
	deps Dependencies

	mu       sync.Mutex
	managers map[string]*Manager
}

// NewService creates a Service. deps is used as the template for every
// manager it opens.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{deps: deps, managers: make(map[string]*Manager)}
}

// Manager returns the user's manager, opening it when needed
func (s *Service) Manager(ctx context.Context, userID string) (*Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.managers[userID]; ok {
		return m, nil
	}
	m, err := Open(ctx, userID, s.deps)
	if err != nil {
		return nil, err
	}
	s.managers[userID] = m
	s.reportOpen()
	return m, nil
}

// Evict drops the user's manager. The next call to Manager reloads from storage.
func (s *Service) Evict(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.managers[userID]; ok {
		delete(s.managers, userID)
		s.reportOpen()
	}
}

// UpdateUser copies a changed profile into the user's workspace
func (s *Service) UpdateUser(ctx context.Context, u identity.User) error {
	m, err := s.Manager(ctx, u.ID)
	if err != nil {
		return err
	}
	return m.UpdateUser(ctx, u)
}

// OpenCount returns the number of live managers
func (s *Service) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.managers)
}

// UserIDs lists users that have stored data
func (s *Service) UserIDs(ctx context.Context) ([]string, error) {
	return s.deps.Repository.UserIDs(ctx)
}

func (s *Service) reportOpen() {
	if g, ok := s.deps.Observer.(managerGauge); ok {
		g.SetOpenManagers(len(s.managers))
	}
}
