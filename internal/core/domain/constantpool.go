package domain

// ConstantKind identifies which fields of a ConstantPoolEntry are
// meaningful. Values are numbered from 1 in declaration order and are not
// the class file format's constant_pool tag bytes; the classfile codec maps
// between the two.
type ConstantKind byte

const (
	ConstantUtf8 ConstantKind = iota + 1
	ConstantInteger
	ConstantFloat
	ConstantLong
	ConstantDouble
	ConstantClass
	ConstantString
	ConstantFieldref
	ConstantMethodref
	ConstantInterfaceMethodref
	ConstantNameAndType
	ConstantMethodHandle
	ConstantMethodType
	ConstantInvokeDynamic
)

// ConstantPoolEntry is one constant-pool slot. Only the fields relevant to
// Kind are populated; the rest are left zero.
type ConstantPoolEntry struct {
	Kind ConstantKind

	Utf8 string // ConstantUtf8

	ClassNameIndex   uint16 // ConstantClass
	NameIndex        uint16 // ConstantNameAndType
	DescriptorIndex  uint16 // ConstantNameAndType
	NameAndTypeIndex uint16 // ConstantFieldref / Methodref / InterfaceMethodref
	ClassIndex       uint16 // ConstantFieldref / Methodref / InterfaceMethodref
	StringIndex      uint16 // ConstantString

	Int    int32
	Float  float32
	Long   int64
	Double float64
}

// ConstantPool is an append-only table of constant pool entries backing a
// ClassModel. Entries are never renumbered or removed: a rewrite only
// appends new entries for names or descriptors a mixin introduced, so
// every index an untouched field/method/attribute already refers to keeps
// its original meaning across a transform.
type ConstantPool struct {
	entries []ConstantPoolEntry
}

// NewConstantPool creates an empty pool. Index 0 is reserved and unused,
// matching the class file format's one-based constant pool indexing.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{entries: make([]ConstantPoolEntry, 1)}
}

// NewConstantPoolFromEntries wraps an already-decoded entry slice (index 0
// included) as returned by a parse. Used only by the codec.
func NewConstantPoolFromEntries(entries []ConstantPoolEntry) *ConstantPool {
	return &ConstantPool{entries: entries}
}

// Get returns the entry at index, or false if index is out of range or 0.
func (cp *ConstantPool) Get(index uint16) (ConstantPoolEntry, bool) {
	if cp == nil || int(index) <= 0 || int(index) >= len(cp.entries) {
		return ConstantPoolEntry{}, false
	}
	return cp.entries[index], true
}

// Len returns the pool size including the unused index 0 slot.
func (cp *ConstantPool) Len() int {
	if cp == nil {
		return 0
	}
	return len(cp.entries)
}

// Entries exposes the full backing slice for the codec's encode pass.
func (cp *ConstantPool) Entries() []ConstantPoolEntry {
	if cp == nil {
		return nil
	}
	return cp.entries
}

// AppendUtf8 interns s as a new entry and returns its index. It never
// deduplicates against an existing Utf8 entry with the same text, to
// preserve the append-only growth invariant.
func (cp *ConstantPool) AppendUtf8(s string) uint16 {
	cp.entries = append(cp.entries, ConstantPoolEntry{Kind: ConstantUtf8, Utf8: s})
	return uint16(len(cp.entries) - 1)
}

// AppendClass interns a CONSTANT_Class entry pointing at nameIndex.
func (cp *ConstantPool) AppendClass(nameIndex uint16) uint16 {
	cp.entries = append(cp.entries, ConstantPoolEntry{Kind: ConstantClass, ClassNameIndex: nameIndex})
	return uint16(len(cp.entries) - 1)
}

// AppendNameAndType interns a CONSTANT_NameAndType entry.
func (cp *ConstantPool) AppendNameAndType(nameIndex, descriptorIndex uint16) uint16 {
	cp.entries = append(cp.entries, ConstantPoolEntry{Kind: ConstantNameAndType, NameIndex: nameIndex, DescriptorIndex: descriptorIndex})
	return uint16(len(cp.entries) - 1)
}

// FindUtf8 returns the index of an existing Utf8 entry equal to s, if any.
// Callers that want interning-with-reuse (rather than the append-only
// default) use this before calling AppendUtf8.
func (cp *ConstantPool) FindUtf8(s string) (uint16, bool) {
	for i := 1; i < len(cp.entries); i++ {
		if cp.entries[i].Kind == ConstantUtf8 && cp.entries[i].Utf8 == s {
			return uint16(i), true
		}
	}
	return 0, false
}
