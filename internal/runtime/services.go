// Package runtime holds engine components that can be swapped out while the
// process is running, rather than fixed at construction.
package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/core/ports/driven"
)

// Services holds the distributed lock backend used to coordinate rescans
// across instances. Redis is preferred; Postgres advisory locks are the
// fallback when Redis is unreachable. Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	config *domain.RuntimeConfig

	lock        driven.DistributedLock
	lockBackend string
}

// NewServices creates a Services registry backed by config.
func NewServices(config *domain.RuntimeConfig) *Services {
	if config == nil {
		config = domain.NewRuntimeConfig()
	}
	return &Services{config: config}
}

// Config returns the runtime configuration.
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// Lock returns the active distributed lock adapter (may be nil).
func (s *Services) Lock() driven.DistributedLock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lock
}

// SetLock installs lock as the active distributed lock backend without
// validating it first.
func (s *Services) SetLock(lock driven.DistributedLock, backend string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lock = lock
	s.lockBackend = backend
	s.config.SetLockAvailable(lock != nil, backend)
}

// ValidateAndSetLock pings lock before installing it, so a misconfigured
// backend never silently becomes the active one.
func (s *Services) ValidateAndSetLock(ctx context.Context, lock driven.DistributedLock, backend string) error {
	if lock == nil {
		s.SetLock(nil, "")
		return nil
	}
	if err := lock.Ping(ctx); err != nil {
		return fmt.Errorf("lock backend %q failed health check: %w", backend, err)
	}
	s.SetLock(lock, backend)
	return nil
}

// FailoverToPostgres switches the active lock backend to postgres when the
// current (presumably redis) backend has stopped responding.
func (s *Services) FailoverToPostgres(ctx context.Context, postgresLock driven.DistributedLock) error {
	return s.ValidateAndSetLock(ctx, postgresLock, "postgres")
}
