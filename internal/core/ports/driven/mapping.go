package driven

import "github.com/mixinforge/mixinengine/internal/core/domain"

// MappingService is the obfuscated<->mapped name lookup table. The core
// engine treats it as an external lookup service (spec §1): it never parses
// or maintains the table itself.
type MappingService interface {
	// ClassesEquivalent reports whether targetName (possibly given in a
	// partially-obfuscated form) and runtimeName refer to the same class.
	// Used for NameType = Obfuscated matching.
	ClassesEquivalent(targetName, runtimeName string) bool

	// LookupByMapped returns the class mapping whose normalized mapped name
	// equals mappedName.
	LookupByMapped(mappedName string) (domain.ClassMapping, bool)

	// LookupByObfuscated returns the class mapping whose normalized
	// obfuscated name equals obfuscatedName.
	LookupByObfuscated(obfuscatedName string) (domain.ClassMapping, bool)
}
