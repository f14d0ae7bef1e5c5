// Package settings loads and stores per-user display preferences.
package settings

import (
	"context"
	"fmt"

	"github.com/circlesoft/crm/internal/domain/settings"
	"go.uber.org/zap"
)

// Service reads and writes preferences through a settings.Repository
type Service struct {
	repo   settings.Repository
	logger *zap.Logger
}

// NewService creates a preference service
func NewService(repo settings.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("settings_service")}
}

// Preferences returns the user's preferences. Missing or unreadable stored
// values fall back to their defaults.
func (s *Service) Preferences(ctx context.Context, userID string) (settings.Preferences, error) {
	values, err := s.repo.Load(ctx, userID)
	if err != nil {
		return settings.Defaults(), fmt.Errorf("load preferences: %w", err)
	}
	p := settings.Defaults()
	for _, key := range settings.Keys {
		v, ok := values[key]
		if !ok {
			continue
		}
		if err := p.Set(key, v); err != nil {
			s.logger.Warn("Ignoring stored preference",
				zap.String("user_id", userID),
				zap.String("key", key),
				zap.Error(err))
		}
	}
	return p, nil
}

// Update stores every preference
func (s *Service) Update(ctx context.Context, userID string, p settings.Preferences) error {
	if err := s.repo.Save(ctx, userID, p.Values()); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Set changes one preference from its string form and returns the result
func (s *Service) Set(ctx context.Context, userID, key, value string) (settings.Preferences, error) {
	p, err := s.Preferences(ctx, userID)
	if err != nil {
		return p, err
	}
	if err := p.Set(key, value); err != nil {
		return p, err
	}
	if err := s.repo.Save(ctx, userID, map[string]string{key: value}); err != nil {
		return p, fmt.Errorf("save preference %s: %w", key, err)
	}
	return p, nil
}

// Reset restores the defaults
func (s *Service) Reset(ctx context.Context, userID string) (settings.Preferences, error) {
	p := settings.Defaults()
	return p, s.Update(ctx, userID, p)
}
