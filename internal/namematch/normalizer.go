// Package namematch canonicalizes class names and matches runtime class,
// field, and method identities against mixin targets under the engine's
// three naming strategies.
package namematch

import (
	"strings"
	"sync"
)

// Normalizer canonicalizes class names to the internal, slash-separated
// form (e.g. "a.b.C" -> "a/b/C"), memoizing every name it has seen. It is
// pure string substitution — no validation — because mixin authors and the
// codec share this convention.
type Normalizer struct {
	mu    sync.RWMutex
	cache map[string]string
}

// NewNormalizer creates an empty normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		cache: make(map[string]string),
	}
}

// Normalize returns the canonical slash-separated form of name. The first
// call for a given name populates the cache; subsequent calls hit it.
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(name string) string {
	n.mu.RLock()
	if v, ok := n.cache[name]; ok {
		n.mu.RUnlock()
		return v
	}
	n.mu.RUnlock()

	canonical := strings.ReplaceAll(name, ".", "/")

	n.mu.Lock()
	n.cache[name] = canonical
	n.mu.Unlock()

	return canonical
}

// Size returns the number of distinct names currently cached. Exposed for
// diagnostics; the cache has no eviction policy (spec §4.1: bounded in
// practice by the number of distinct class names seen in a process).
func (n *Normalizer) Size() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.cache)
}
