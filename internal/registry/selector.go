package registry

import (
	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/namematch"
)

// ClassMatch pairs a matched class mixin with the per-class mapping (if
// any) resolved while matching its target, needed downstream to resolve
// Mapped-mode member names against the right class's table.
type ClassMatch struct {
	Descriptor domain.MixinDescriptor
	Mapping    domain.ClassMapping
	HasMapping bool
}

// Selector resolves which mixins in an Index apply to a given runtime
// class, field, or method. It never mutates the index; selection is pure
// read-and-filter, safe to call concurrently from many transforms.
type Selector struct {
	index   *Index
	matcher *namematch.Matcher
}

// NewSelector creates a selector over index using matcher for name
// resolution.
func NewSelector(index *Index, matcher *namematch.Matcher) *Selector {
	return &Selector{index: index, matcher: matcher}
}

// SelectForClass returns every class mixin whose target matches
// runtimeName, in the index's priority order (lowest first).
func (s *Selector) SelectForClass(runtimeName string) []ClassMatch {
	classes, _, _, _, _ := s.index.Snapshot()
	var out []ClassMatch
	for _, d := range classes {
		matched, mapping, hasMapping := s.matcher.MatchClass(runtimeName, d.Target)
		if matched {
			out = append(out, ClassMatch{Descriptor: d, Mapping: mapping, HasMapping: hasMapping})
		}
	}
	return out
}

// SelectForField returns every field mixin targeting runtimeName whose
// declared field identity matches name/descriptor, in priority order.
func (s *Selector) SelectForField(runtimeName, name, descriptor string) []domain.MixinDescriptor {
	_, fields, _, _, _ := s.index.Snapshot()
	return selectMembers(s.matcher, fields, runtimeName, func(mapping domain.ClassMapping, hasMapping bool, d domain.MixinDescriptor) bool {
		return s.matcher.MatchField(mapping, hasMapping, name, descriptor, d.Target)
	})
}

// SelectForMethod returns every method mixin targeting runtimeName whose
// declared method identity matches name/signature, in priority order.
func (s *Selector) SelectForMethod(runtimeName, name, signature string) []domain.MixinDescriptor {
	_, _, methods, _, _ := s.index.Snapshot()
	return selectMembers(s.matcher, methods, runtimeName, func(mapping domain.ClassMapping, hasMapping bool, d domain.MixinDescriptor) bool {
		return s.matcher.MatchMethod(mapping, hasMapping, name, signature, d.Target)
	})
}

// SelectForMethodCode returns every method-code mixin targeting
// runtimeName whose declared method identity matches name/signature, in
// priority order.
func (s *Selector) SelectForMethodCode(runtimeName, name, signature string) []domain.MixinDescriptor {
	_, _, _, codes, _ := s.index.Snapshot()
	return selectMembers(s.matcher, codes, runtimeName, func(mapping domain.ClassMapping, hasMapping bool, d domain.MixinDescriptor) bool {
		return s.matcher.MatchMethod(mapping, hasMapping, name, signature, d.Target)
	})
}

func selectMembers(matcher *namematch.Matcher, candidates []domain.MixinDescriptor, runtimeName string, memberMatches func(domain.ClassMapping, bool, domain.MixinDescriptor) bool) []domain.MixinDescriptor {
	var out []domain.MixinDescriptor
	for _, d := range candidates {
		matchedClass, mapping, hasMapping := matcher.MatchClass(runtimeName, d.Target)
		if !matchedClass {
			continue
		}
		if memberMatches(mapping, hasMapping, d) {
			out = append(out, d)
		}
	}
	return out
}

// HasAnyMatch reports, without selecting individual mixins, whether any
// mixin of any kind targets runtimeName's class. It answers ModifyClass's
// probe mode (spec §4.6) without materializing a match list.
func (s *Selector) HasAnyMatch(runtimeName string) bool {
	classes, fields, methods, codes, _ := s.index.Snapshot()
	for _, group := range [][]domain.MixinDescriptor{classes, fields, methods, codes} {
		for _, d := range group {
			if matched, _, _ := s.matcher.MatchClass(runtimeName, d.Target); matched {
				return true
			}
		}
	}
	return false
}
