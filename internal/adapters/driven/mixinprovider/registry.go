// Package mixinprovider is the discovery mechanism mixin modules use to
// announce themselves: each module's init() calls Register with the
// descriptors it provides, the same way database/sql drivers or
// image-format decoders register themselves by side effect of being
// imported. The engine's MixinScanner adapter (Scan) reads back whatever
// has accumulated by the time it runs.
package mixinprovider

import (
	"sync"

	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/core/ports/driven"
)

var (
	mu         sync.Mutex
	registered []domain.MixinDescriptor
)

// Register adds descriptor to the global mixin set. Intended to be called
// from a mixin module's init(), so registration happens purely as a side
// effect of blank-importing the module in main.
func Register(descriptor domain.MixinDescriptor) {
	mu.Lock()
	defer mu.Unlock()
	registered = append(registered, descriptor)
}

// RegisterAll is a convenience for modules that build their descriptor set
// as a slice before registering.
func RegisterAll(descriptors []domain.MixinDescriptor) {
	mu.Lock()
	defer mu.Unlock()
	registered = append(registered, descriptors...)
}

// Scanner implements driven.MixinScanner over the process-wide registry.
type Scanner struct{}

var _ driven.MixinScanner = Scanner{}

// NewScanner creates a scanner reading from the global registry.
func NewScanner() Scanner {
	return Scanner{}
}

// Scan returns every descriptor registered so far. It never errors: an
// empty or partial registry at rescan time is just "no mixins yet",
// consistent with the engine's fail-safe posture elsewhere.
func (Scanner) Scan() ([]domain.MixinDescriptor, error) {
	mu.Lock()
	defer mu.Unlock()
	out := make([]domain.MixinDescriptor, len(registered))
	copy(out, registered)
	return out, nil
}

// Reset clears the registry. Exposed for tests; production code never
// calls this.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registered = nil
}
