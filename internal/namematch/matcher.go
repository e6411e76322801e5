package namematch

import (
	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/core/ports/driven"
)

// Matcher decides whether an observed (runtime) class/field/method identity
// matches a mixin's declared target under the target's NameType.
type Matcher struct {
	normalizer *Normalizer
	mapping    driven.MappingService // may be nil: Obfuscated/Mapped targets then never match
}

// NewMatcher creates a matcher backed by normalizer and, optionally, a
// mapping service for Obfuscated/Mapped name resolution.
func NewMatcher(normalizer *Normalizer, mapping driven.MappingService) *Matcher {
	return &Matcher{normalizer: normalizer, mapping: mapping}
}

// MatchClass reports whether runtimeName matches target's class under
// target.NameType. Unknown NameType values never match (never an error).
// When the match resolves a per-class mapping entry (Mapped, and Obfuscated
// when the table has one), it is returned so callers can resolve member
// identities through it.
func (m *Matcher) MatchClass(runtimeName string, target domain.TargetAttribute) (matched bool, mapping domain.ClassMapping, hasMapping bool) {
	rn := m.normalizer.Normalize(runtimeName)
	tn := m.normalizer.Normalize(target.ClassName)

	switch target.NameType {
	case domain.NameTypeDefault:
		return rn == tn, domain.ClassMapping{}, false

	case domain.NameTypeObfuscated:
		if m.mapping == nil {
			return false, domain.ClassMapping{}, false
		}
		if !m.mapping.ClassesEquivalent(tn, rn) {
			return false, domain.ClassMapping{}, false
		}
		if cm, ok := m.mapping.LookupByObfuscated(rn); ok {
			return true, cm, true
		}
		return true, domain.ClassMapping{}, false

	case domain.NameTypeMapped:
		if m.mapping == nil {
			return false, domain.ClassMapping{}, false
		}
		cm, ok := m.mapping.LookupByMapped(tn)
		if !ok {
			return false, domain.ClassMapping{}, false
		}
		if m.normalizer.Normalize(cm.ObfuscatedName) != rn {
			return false, domain.ClassMapping{}, false
		}
		return true, cm, true

	default:
		return false, domain.ClassMapping{}, false
	}
}

// MatchField reports whether an observed field identity matches target.
// Under NameType = Mapped with a resolved class mapping, field identity is
// resolved through that class's member mapping table — the canonical
// resolution of the §9 open question. Every other mode compares name and
// descriptor directly, per §4.2's baseline.
func (m *Matcher) MatchField(mapping domain.ClassMapping, hasMapping bool, name, descriptor string, target domain.TargetAttribute) bool {
	if target.NameType == domain.NameTypeMapped && hasMapping {
		mm, ok := mapping.FindFieldByMapped(target.FieldName, target.FieldDescriptor)
		if !ok {
			return false
		}
		return mm.ObfuscatedName == name && mm.Descriptor == descriptor
	}
	return name == target.FieldName && descriptor == target.FieldDescriptor
}

// MatchMethod reports whether an observed method identity matches target,
// with the same Mapped-mode member resolution rule as MatchField.
func (m *Matcher) MatchMethod(mapping domain.ClassMapping, hasMapping bool, name, signature string, target domain.TargetAttribute) bool {
	if target.NameType == domain.NameTypeMapped && hasMapping {
		mm, ok := mapping.FindMethodByMapped(target.MethodName, target.MethodSignature)
		if !ok {
			return false
		}
		return mm.ObfuscatedName == name && mm.Descriptor == signature
	}
	return name == target.MethodName && signature == target.MethodSignature
}
