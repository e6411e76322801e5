package domain

import "sync"

// RuntimeConfig tracks capability flags that can flip while the engine is
// running, e.g. whether distributed locking is currently backed by a
// healthy adapter. Safe for concurrent use.
type RuntimeConfig struct {
	mu            sync.RWMutex
	lockAvailable bool
	lockBackend   string
}

// NewRuntimeConfig returns a RuntimeConfig with locking reported unavailable
// until SetLockAvailable is called.
func NewRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{}
}

// LockAvailable reports whether a distributed lock backend is currently set.
func (c *RuntimeConfig) LockAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lockAvailable
}

// LockBackend names the active lock backend ("redis", "postgres", or "").
func (c *RuntimeConfig) LockBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lockBackend
}

// SetLockAvailable updates the lock capability flags.
func (c *RuntimeConfig) SetLockAvailable(available bool, backend string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lockAvailable = available
	if available {
		c.lockBackend = backend
	} else {
		c.lockBackend = ""
	}
}
