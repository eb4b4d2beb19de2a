// Package search implements debounced user lookup and thread
// create-or-fetch for a selected result.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/adamavenir/auradm/internal/types"
)

// ErrQueryTooShort is returned locally for queries below the minimum length.
var ErrQueryTooShort = errors.New("search query too short")

// Backend is the subset of the API the coordinator uses.
type Backend interface {
	SearchUsers(ctx context.Context, q string) ([]types.SearchUser, error)
	CreateOrGetThread(ctx context.Context, username string) (types.Thread, error)
}

// Coordinator issues user lookups and opens threads for chosen results.
type Coordinator struct {
	backend  Backend
	minChars int
	logger   *zap.Logger
}

// NewCoordinator builds a Coordinator.
func NewCoordinator(backend Backend, minChars int, logger *zap.Logger) *Coordinator {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{backend: backend, minChars: minChars, logger: logger}
}

// Search looks up users matching query. Short queries fail with
// ErrQueryTooShort without a request.
func (c *Coordinator) Search(ctx context.Context, query string) ([]types.SearchUser, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < c.minChars {
		return nil, ErrQueryTooShort
	}
	users, err := c.backend.SearchUsers(ctx, query)
	if err != nil {
		c.logger.Debug("search failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// Open returns the thread with username, creating it on first contact.
func (c *Coordinator) Open(ctx context.Context, username string) (types.Thread, error) {
	thread, err := c.backend.CreateOrGetThread(ctx, username)
	if err != nil {
		return types.Thread{}, fmt.Errorf("open thread with %s: %w", username, err)
	}
	c.logger.Info("thread opened", zap.String("username", username), zap.Int64("thread_id", thread.ID))
	return thread, nil
}
