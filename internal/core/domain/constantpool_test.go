package domain

import "testing"

func TestNewConstantPool_ReservesIndexZero(t *testing.T) {
	cp := NewConstantPool()
	if cp.Len() != 1 {
		t.Fatalf("expected length 1 for an empty pool, got %d", cp.Len())
	}
	if _, ok := cp.Get(0); ok {
		t.Error("expected index 0 to never resolve")
	}
}

func TestConstantPool_AppendUtf8_NeverDeduplicates(t *testing.T) {
	cp := NewConstantPool()
	i1 := cp.AppendUtf8("run")
	i2 := cp.AppendUtf8("run")
	if i1 == i2 {
		t.Error("expected AppendUtf8 to always grow the pool, never reuse an index")
	}
	if cp.Len() != 3 {
		t.Errorf("expected length 3 after two appends, got %d", cp.Len())
	}
}

func TestConstantPool_FindUtf8(t *testing.T) {
	cp := NewConstantPool()
	idx := cp.AppendUtf8("run")

	found, ok := cp.FindUtf8("run")
	if !ok || found != idx {
		t.Errorf("expected to find index %d, got %d ok=%v", idx, found, ok)
	}
	if _, ok := cp.FindUtf8("missing"); ok {
		t.Error("expected no match for an absent entry")
	}
}

func TestConstantPool_AppendClassAndNameAndType(t *testing.T) {
	cp := NewConstantPool()
	nameIdx := cp.AppendUtf8("a/b/C")
	classIdx := cp.AppendClass(nameIdx)

	entry, ok := cp.Get(classIdx)
	if !ok || entry.Kind != ConstantClass || entry.ClassNameIndex != nameIdx {
		t.Errorf("unexpected class entry: %+v ok=%v", entry, ok)
	}

	descIdx := cp.AppendUtf8("()V")
	natIdx := cp.AppendNameAndType(nameIdx, descIdx)
	nat, ok := cp.Get(natIdx)
	if !ok || nat.Kind != ConstantNameAndType || nat.NameIndex != nameIdx || nat.DescriptorIndex != descIdx {
		t.Errorf("unexpected name-and-type entry: %+v ok=%v", nat, ok)
	}
}

func TestConstantPool_Get_OutOfRange(t *testing.T) {
	cp := NewConstantPool()
	if _, ok := cp.Get(50); ok {
		t.Error("expected an out-of-range index to fail")
	}
}

func TestConstantPool_NilReceiver_IsSafe(t *testing.T) {
	var cp *ConstantPool
	if cp.Len() != 0 {
		t.Errorf("expected nil pool length 0, got %d", cp.Len())
	}
	if _, ok := cp.Get(1); ok {
		t.Error("expected nil pool Get to always fail")
	}
	if cp.Entries() != nil {
		t.Error("expected nil pool Entries to return nil")
	}
}

func TestNewConstantPoolFromEntries_WrapsGivenSlice(t *testing.T) {
	entries := []ConstantPoolEntry{
		{}, // reserved index 0
		{Kind: ConstantUtf8, Utf8: "x"},
	}
	cp := NewConstantPoolFromEntries(entries)
	if cp.Len() != 2 {
		t.Fatalf("expected length 2, got %d", cp.Len())
	}
	e, ok := cp.Get(1)
	if !ok || e.Utf8 != "x" {
		t.Errorf("unexpected entry at index 1: %+v ok=%v", e, ok)
	}
}
