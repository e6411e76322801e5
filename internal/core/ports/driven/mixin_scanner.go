package driven

import "github.com/mixinforge/mixinengine/internal/core/domain"

// MixinScanner discovers mixin descriptors from external modules. The core
// engine treats discovery as an external collaborator (spec §1): it only
// calls Scan() and stores whatever comes back.
type MixinScanner interface {
	Scan() ([]domain.MixinDescriptor, error)
}
