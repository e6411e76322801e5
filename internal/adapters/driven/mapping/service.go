// Package mapping implements driven.MappingService against a Tiny-style
// (FabricMC/Intermediary) tab-separated obfuscation mapping table: one row
// per class, field, or method, columns identifying the kind and the
// obfuscated/mapped name pair.
package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/core/ports/driven"
)

var _ driven.MappingService = (*Service)(nil)

// Row kinds as they appear in column 0 of the TSV.
const (
	rowClass  = "CLASS"
	rowField  = "FIELD"
	rowMethod = "METHOD"
)

// Service loads a Tiny-style mapping table and serves lookups from an
// in-memory index. Each call to Load replaces the previously loaded table.
type Service struct {
	log *slog.Logger

	mu           sync.RWMutex
	byObfuscated map[string]domain.ClassMapping
	byMapped     map[string]domain.ClassMapping
}

// New creates an empty mapping service. Load populates it.
func New(log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		log:          log,
		byObfuscated: make(map[string]domain.ClassMapping),
		byMapped:     make(map[string]domain.ClassMapping),
	}
}

// LoadFile opens path and loads its TSV rows into the service.
func (s *Service) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open mapping file: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()
	return s.Load(f)
}

// Load reads Tiny-style TSV rows from r and replaces the service's index.
//
// Expected columns:
//
//	CLASS	<obfuscatedName>	<mappedName>
//	FIELD	<obfuscatedOwner>	<obfuscatedName>	<obfuscatedDescriptor>	<mappedName>
//	METHOD	<obfuscatedOwner>	<obfuscatedName>	<obfuscatedDescriptor>	<mappedName>
//
// Field/method rows must follow their owning CLASS row's first appearance;
// rows referencing an unseen owner are skipped with a warning, not an
// error, so one malformed row never aborts the whole load.
func (s *Service) Load(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	classes := make(map[string]*domain.ClassMapping)
	var order []string

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: reading mapping row: %v", domain.ErrInvalidInput, err)
		}
		if len(record) == 0 || strings.HasPrefix(record[0], "#") {
			continue
		}

		switch record[0] {
		case rowClass:
			if len(record) < 3 {
				s.log.Warn("skipping malformed CLASS mapping row", "row", record)
				continue
			}
			obf, mapped := record[1], record[2]
			cm := &domain.ClassMapping{ObfuscatedName: obf, MappedName: mapped}
			classes[obf] = cm
			classes[mapped] = cm
			order = append(order, obf)

		case rowField, rowMethod:
			if len(record) < 5 {
				s.log.Warn("skipping malformed member mapping row", "row", record)
				continue
			}
			owner, obf, descriptor, mapped := record[1], record[2], record[3], record[4]
			cm, ok := classes[owner]
			if !ok {
				s.log.Warn("member mapping references unknown class", "owner", owner)
				continue
			}
			member := domain.MemberMapping{ObfuscatedName: obf, MappedName: mapped, Descriptor: descriptor}
			if record[0] == rowField {
				cm.Fields = append(cm.Fields, member)
			} else {
				cm.Methods = append(cm.Methods, member)
			}

		default:
			s.log.Warn("skipping unknown mapping row kind", "kind", record[0])
		}
	}

	byObfuscated := make(map[string]domain.ClassMapping, len(order))
	byMapped := make(map[string]domain.ClassMapping, len(order))
	for _, obf := range order {
		cm := classes[obf]
		byObfuscated[cm.ObfuscatedName] = *cm
		byMapped[cm.MappedName] = *cm
	}

	s.mu.Lock()
	s.byObfuscated = byObfuscated
	s.byMapped = byMapped
	s.mu.Unlock()

	s.log.Info("mapping table loaded", "classes", len(byObfuscated))
	return nil
}

// ClassesEquivalent reports whether targetName (as written by a mixin
// author, typically a mapped/deobfuscated name) and runtimeName (the name
// seen on the wire, typically obfuscated) denote the same class.
func (s *Service) ClassesEquivalent(targetName, runtimeName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cm, ok := s.byMapped[targetName]; ok {
		return cm.ObfuscatedName == runtimeName
	}
	if cm, ok := s.byObfuscated[targetName]; ok {
		return cm.ObfuscatedName == runtimeName || cm.MappedName == runtimeName
	}
	return targetName == runtimeName
}

// LookupByMapped resolves a mapped (deobfuscated) class name to its full
// mapping, if known.
func (s *Service) LookupByMapped(mappedName string) (domain.ClassMapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cm, ok := s.byMapped[mappedName]
	return cm, ok
}

// LookupByObfuscated resolves a runtime (obfuscated) class name to its
// full mapping, if known.
func (s *Service) LookupByObfuscated(obfuscatedName string) (domain.ClassMapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cm, ok := s.byObfuscated[obfuscatedName]
	return cm, ok
}
