package classfile

import (
	"bytes"
	"testing"

	"github.com/mixinforge/mixinengine/internal/core/domain"
)

func TestCodeCodec_RoundTrip_SimpleMethod(t *testing.T) {
	c := New()
	original := &domain.CodeAttribute{
		MaxStack:  2,
		MaxLocals: 1,
		Instructions: []domain.Instruction{
			{Offset: 0, Opcode: 0x2a},       // aload_0
			{Offset: 1, Opcode: 0xb1},       // return
		},
	}

	encoded, err := c.EncodeCode(original)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	decoded, err := c.DecodeCode(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if decoded.MaxStack != original.MaxStack || decoded.MaxLocals != original.MaxLocals {
		t.Errorf("expected max_stack/max_locals %d/%d, got %d/%d", original.MaxStack, original.MaxLocals, decoded.MaxStack, decoded.MaxLocals)
	}
	if len(decoded.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(decoded.Instructions))
	}
	if decoded.Instructions[0].Opcode != 0x2a || decoded.Instructions[1].Opcode != 0xb1 {
		t.Errorf("unexpected decoded opcodes: %+v", decoded.Instructions)
	}
}

func TestCodeCodec_RoundTrip_ExceptionTable(t *testing.T) {
	c := New()
	original := &domain.CodeAttribute{
		MaxStack:  1,
		MaxLocals: 1,
		Instructions: []domain.Instruction{
			{Offset: 0, Opcode: 0xb1},
		},
		ExceptionTable: []domain.ExceptionTableEntry{
			{StartPC: 0, EndPC: 1, HandlerPC: 2, CatchType: "#5"},
			{StartPC: 0, EndPC: 1, HandlerPC: 3, CatchType: ""},
		},
	}

	encoded, err := c.EncodeCode(original)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	decoded, err := c.DecodeCode(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if len(decoded.ExceptionTable) != 2 {
		t.Fatalf("expected 2 exception table entries, got %d", len(decoded.ExceptionTable))
	}
	if decoded.ExceptionTable[0].CatchType != "#5" {
		t.Errorf("expected catch type #5, got %q", decoded.ExceptionTable[0].CatchType)
	}
	if decoded.ExceptionTable[1].CatchType != "" {
		t.Errorf("expected catch-all (catch_type 0) to decode to empty CatchType, got %q", decoded.ExceptionTable[1].CatchType)
	}
}

func TestCodeCodec_RoundTrip_NestedAttributes(t *testing.T) {
	c := New()
	original := &domain.CodeAttribute{
		MaxStack:  1,
		MaxLocals: 1,
		Instructions: []domain.Instruction{
			{Offset: 0, Opcode: 0xb1},
		},
		Attributes: []domain.Attribute{
			{Name: "#9", Info: []byte{0x00, 0x01, 0x00, 0x00}},
		},
	}

	encoded, err := c.EncodeCode(original)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	decoded, err := c.DecodeCode(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if len(decoded.Attributes) != 1 || decoded.Attributes[0].Name != "#9" {
		t.Fatalf("unexpected nested attributes: %+v", decoded.Attributes)
	}
	if !bytes.Equal(decoded.Attributes[0].Info, original.Attributes[0].Info) {
		t.Errorf("expected nested attribute info to round trip unchanged")
	}
}

func TestCodeCodec_EncodeCode_RejectsUnresolvableCatchType(t *testing.T) {
	c := New()
	code := &domain.CodeAttribute{
		ExceptionTable: []domain.ExceptionTableEntry{
			{CatchType: "java/lang/Exception"},
		},
	}
	if _, err := c.EncodeCode(code); err == nil {
		t.Fatal("expected an error for a catch type that isn't a resolved pool index placeholder")
	}
}

func TestCodeCodec_DecodeCode_RejectsTruncatedInput(t *testing.T) {
	c := New()
	if _, err := c.DecodeCode([]byte{0x00, 0x01}); err == nil {
		t.Fatal("expected an error for truncated code info bytes")
	}
}
