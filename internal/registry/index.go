// Package registry holds the mixin index (the scanned, sorted mixin set)
// and the selector that matches it against runtime classes and members.
package registry

import (
	"sort"
	"sync"

	"github.com/mixinforge/mixinengine/internal/core/domain"
)

// Index stores the current mixin descriptor set, partitioned by kind and
// sorted by priority (lowest first) within each partition. A rescan
// replaces the whole index atomically; readers never see a half-built one.
type Index struct {
	mu      sync.RWMutex
	classes []domain.MixinDescriptor
	fields  []domain.MixinDescriptor
	methods []domain.MixinDescriptor
	codes   []domain.MixinDescriptor
	builtAt int64
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Rebuild replaces the index contents from a freshly scanned descriptor
// list. Discovery is stamped from each descriptor's position in the
// incoming slice before partitioning, so the tie-break below is anchored to
// scan order rather than to however sort.SliceStable happens to shuffle
// equal-priority entries. Within each kind, descriptors are sorted by
// Target.Priority (lowest first, so the lowest-priority mixin runs first)
// using a stable sort, with Discovery breaking ties between equal
// priorities.
func (idx *Index) Rebuild(descriptors []domain.MixinDescriptor, builtAt int64) {
	var classes, fields, methods, codes []domain.MixinDescriptor
	for i, d := range descriptors {
		d.Discovery = i
		switch d.Kind {
		case domain.MixinKindClass:
			classes = append(classes, d)
		case domain.MixinKindField:
			fields = append(fields, d)
		case domain.MixinKindMethod:
			methods = append(methods, d)
		case domain.MixinKindMethodCode:
			codes = append(codes, d)
		}
	}
	sortByPriority(classes)
	sortByPriority(fields)
	sortByPriority(methods)
	sortByPriority(codes)

	idx.mu.Lock()
	idx.classes = classes
	idx.fields = fields
	idx.methods = methods
	idx.codes = codes
	idx.builtAt = builtAt
	idx.mu.Unlock()
}

func sortByPriority(ds []domain.MixinDescriptor) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Target.Priority != ds[j].Target.Priority {
			return ds[i].Target.Priority < ds[j].Target.Priority
		}
		return ds[i].Discovery < ds[j].Discovery
	})
}

// Snapshot returns copies of every partition plus the unix time of the
// last Rebuild, so callers can iterate without holding the index lock.
func (idx *Index) Snapshot() (classes, fields, methods, codes []domain.MixinDescriptor, builtAt int64) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]domain.MixinDescriptor(nil), idx.classes...),
		append([]domain.MixinDescriptor(nil), idx.fields...),
		append([]domain.MixinDescriptor(nil), idx.methods...),
		append([]domain.MixinDescriptor(nil), idx.codes...),
		idx.builtAt
}

// Counts reports how many mixins are indexed per kind.
func (idx *Index) Counts() (classes, fields, methods, codes int) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.classes), len(idx.fields), len(idx.methods), len(idx.codes)
}

// BuiltAt returns the unix time of the last successful Rebuild, or zero if
// the index has never been built.
func (idx *Index) BuiltAt() int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.builtAt
}
