package classfile

import (
	"testing"

	"github.com/mixinforge/mixinengine/internal/core/domain"
)

func TestCodec_RoundTrip_MinimalClass(t *testing.T) {
	c := New()
	class := &domain.ClassModel{
		Name:         "a/b/C",
		SuperName:    "java/lang/Object",
		MajorVersion: 52,
		MinorVersion: 0,
		AccessFlags:  0x0021,
	}

	data, err := c.Serialize(class)
	if err != nil {
		t.Fatalf("unexpected serialize error: %v", err)
	}

	parsed, err := c.Parse(data)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if parsed.Name != class.Name {
		t.Errorf("expected name %q, got %q", class.Name, parsed.Name)
	}
	if parsed.SuperName != class.SuperName {
		t.Errorf("expected super name %q, got %q", class.SuperName, parsed.SuperName)
	}
	if parsed.AccessFlags != class.AccessFlags {
		t.Errorf("expected access flags %#x, got %#x", class.AccessFlags, parsed.AccessFlags)
	}
	if parsed.MajorVersion != class.MajorVersion || parsed.MinorVersion != class.MinorVersion {
		t.Errorf("expected version %d.%d, got %d.%d", class.MajorVersion, class.MinorVersion, parsed.MajorVersion, parsed.MinorVersion)
	}
}

func TestCodec_RoundTrip_FieldsAndMethods(t *testing.T) {
	c := New()
	class := &domain.ClassModel{
		Name:      "x/Y",
		SuperName: "java/lang/Object",
		Fields: []domain.Field{
			{Name: "count", Descriptor: "I", AccessFlags: 0x0002},
		},
		Methods: []domain.Method{
			{Name: "run", Descriptor: "()V", AccessFlags: 0x0001},
		},
	}

	data, err := c.Serialize(class)
	if err != nil {
		t.Fatalf("unexpected serialize error: %v", err)
	}
	parsed, err := c.Parse(data)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if len(parsed.Fields) != 1 || parsed.Fields[0].Name != "count" || parsed.Fields[0].Descriptor != "I" {
		t.Errorf("unexpected fields: %+v", parsed.Fields)
	}
	if len(parsed.Methods) != 1 || parsed.Methods[0].Name != "run" || parsed.Methods[0].Descriptor != "()V" {
		t.Errorf("unexpected methods: %+v", parsed.Methods)
	}
}

func TestCodec_RoundTrip_Interfaces(t *testing.T) {
	c := New()
	class := &domain.ClassModel{
		Name:       "x/Y",
		SuperName:  "java/lang/Object",
		Interfaces: []string{"java/lang/Runnable", "java/io/Serializable"},
	}

	data, err := c.Serialize(class)
	if err != nil {
		t.Fatalf("unexpected serialize error: %v", err)
	}
	parsed, err := c.Parse(data)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if len(parsed.Interfaces) != 2 {
		t.Fatalf("expected 2 interfaces, got %d", len(parsed.Interfaces))
	}
	if parsed.Interfaces[0] != "java/lang/Runnable" || parsed.Interfaces[1] != "java/io/Serializable" {
		t.Errorf("unexpected interfaces: %v", parsed.Interfaces)
	}
}

func TestCodec_Parse_RejectsBadMagic(t *testing.T) {
	c := New()
	_, err := c.Parse([]byte{0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected an error for a bad magic number")
	}
}

func TestCodec_Parse_RejectsTruncatedInput(t *testing.T) {
	c := New()
	_, err := c.Parse([]byte{0xCA, 0xFE, 0xBA, 0xBE})
	if err == nil {
		t.Fatal("expected an error for truncated input")
	}
}

func TestCodec_Serialize_AppendOnlyConstantPool(t *testing.T) {
	c := New()
	class := &domain.ClassModel{Name: "a/b/C", SuperName: "java/lang/Object"}

	data, err := c.Serialize(class)
	if err != nil {
		t.Fatalf("unexpected serialize error: %v", err)
	}
	parsed, err := c.Parse(data)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	originalLen := parsed.ConstantPool.Len()

	parsed.Fields = append(parsed.Fields, domain.Field{Name: "extra", Descriptor: "I"})
	data2, err := c.Serialize(parsed)
	if err != nil {
		t.Fatalf("unexpected re-serialize error: %v", err)
	}
	reparsed, err := c.Parse(data2)
	if err != nil {
		t.Fatalf("unexpected re-parse error: %v", err)
	}

	if reparsed.ConstantPool.Len() <= originalLen {
		t.Error("expected the constant pool to grow after introducing a new field name")
	}
	if len(reparsed.Fields) != 1 || reparsed.Fields[0].Name != "extra" {
		t.Errorf("unexpected fields after round trip: %+v", reparsed.Fields)
	}
}
