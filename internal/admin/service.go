// Package admin holds maintenance operations reserved for administrators.
package admin

import (
	"context"
	"fmt"
	"log/slog"
)

// Purger empties one store.
type Purger interface {
	Purge(ctx context.Context) error
}

// Target names a store to purge.
type Target struct {
	Name   string
	Purger Purger
}

// Service runs maintenance tasks.
type Service struct {
	targets []Target
	logger  *slog.Logger
}

func NewService(logger *slog.Logger, targets ...Target) *Service {
	return &Service{targets: targets, logger: logger}
}

// CleanDB purges every registered store in order and stops at the first failure.
func (s *Service) CleanDB(ctx context.Context) error {
	for _, t := range s.targets {
		if err := t.Purger.Purge(ctx); err != nil {
			return fmt.Errorf("purge %s: %w", t.Name, err)
		}
		s.logger.Info("store purged", slog.String("store", t.Name))
	}
	return nil
}
