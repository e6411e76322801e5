package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mixinforge/mixinengine/internal/core/domain"
)

// DecodeCode decodes a Code attribute's raw Info bytes into instructions,
// the exception table, and nested attributes (e.g. LineNumberTable).
// catch_type 0 ("catches everything") decodes to CatchType "".
func (c *Codec) DecodeCode(info []byte) (*domain.CodeAttribute, error) {
	r := bytes.NewReader(info)

	var maxStack, maxLocals uint16
	var codeLength uint32
	if err := binary.Read(r, binary.BigEndian, &maxStack); err != nil {
		return nil, fmt.Errorf("%w: max_stack: %v", domain.ErrCodeAttributeFailure, err)
	}
	if err := binary.Read(r, binary.BigEndian, &maxLocals); err != nil {
		return nil, fmt.Errorf("%w: max_locals: %v", domain.ErrCodeAttributeFailure, err)
	}
	if err := binary.Read(r, binary.BigEndian, &codeLength); err != nil {
		return nil, fmt.Errorf("%w: code_length: %v", domain.ErrCodeAttributeFailure, err)
	}

	code := make([]byte, codeLength)
	if _, err := readFull(r, code); err != nil {
		return nil, fmt.Errorf("%w: code bytes: %v", domain.ErrCodeAttributeFailure, err)
	}

	var instructions []domain.Instruction
	for offset := 0; offset < len(code); {
		length := instructionLength(code, offset)
		if length <= 0 || offset+length > len(code) {
			return nil, fmt.Errorf("%w: malformed instruction at offset %d", domain.ErrCodeAttributeFailure, offset)
		}
		instructions = append(instructions, domain.Instruction{
			Offset:   offset,
			Opcode:   code[offset],
			Mnemonic: mnemonicFor(code[offset]),
			Operands: append([]byte(nil), code[offset+1:offset+length]...),
		})
		offset += length
	}

	var exceptionCount uint16
	if err := binary.Read(r, binary.BigEndian, &exceptionCount); err != nil {
		return nil, fmt.Errorf("%w: exception_table_length: %v", domain.ErrCodeAttributeFailure, err)
	}
	exceptionTable := make([]domain.ExceptionTableEntry, exceptionCount)
	for i := range exceptionTable {
		var startPC, endPC, handlerPC, catchTypeIdx uint16
		if err := binary.Read(r, binary.BigEndian, &startPC); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &endPC); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &handlerPC); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &catchTypeIdx); err != nil {
			return nil, err
		}
		catchType := ""
		if catchTypeIdx != 0 {
			// Catch type names are not resolvable here: DecodeCode only sees
			// the Code attribute's own bytes, not the owning class's
			// constant pool. The pool index is kept as a "#<index>"
			// placeholder, which EncodeCode writes back unchanged.
			catchType = fmt.Sprintf("#%d", catchTypeIdx)
		}
		exceptionTable[i] = domain.ExceptionTableEntry{StartPC: startPC, EndPC: endPC, HandlerPC: handlerPC, CatchType: catchType}
	}

	// Nested attributes (LineNumberTable, LocalVariableTable, StackMapTable,
	// ...) are carried through opaquely; the engine never rewrites them.
	var attrCount uint16
	if err := binary.Read(r, binary.BigEndian, &attrCount); err != nil {
		return nil, fmt.Errorf("%w: code attributes_count: %v", domain.ErrCodeAttributeFailure, err)
	}
	attrs := make([]domain.Attribute, attrCount)
	for i := range attrs {
		var nameIdx uint16
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		buf := make([]byte, length)
		if _, err := readFull(r, buf); err != nil {
			return nil, err
		}
		// Name is left as the raw pool index in decimal; nested-attribute
		// names are resolved by the caller if it needs them.
		attrs[i] = domain.Attribute{Name: fmt.Sprintf("#%d", nameIdx), Info: buf}
	}

	return &domain.CodeAttribute{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Instructions:   instructions,
		ExceptionTable: exceptionTable,
		Attributes:     attrs,
	}, nil
}

// EncodeCode re-encodes a CodeAttribute into a Code attribute's Info bytes.
// It does not attempt to re-link branch offsets or table/lookupswitch
// targets when the instruction count changes: callers that insert or
// remove instructions are responsible for rewriting any operand bytes that
// encode a bytecode offset. Method-code mixins that only replace an
// instruction's opcode/operands in place (the common case) are unaffected.
func (c *Codec) EncodeCode(code *domain.CodeAttribute) ([]byte, error) {
	var codeBuf bytes.Buffer
	for _, ins := range code.Instructions {
		codeBuf.WriteByte(ins.Opcode)
		codeBuf.Write(ins.Operands)
	}

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, code.MaxStack)
	binary.Write(&out, binary.BigEndian, code.MaxLocals)
	binary.Write(&out, binary.BigEndian, uint32(codeBuf.Len()))
	out.Write(codeBuf.Bytes())

	binary.Write(&out, binary.BigEndian, uint16(len(code.ExceptionTable)))
	for _, et := range code.ExceptionTable {
		binary.Write(&out, binary.BigEndian, et.StartPC)
		binary.Write(&out, binary.BigEndian, et.EndPC)
		binary.Write(&out, binary.BigEndian, et.HandlerPC)
		var catchIdx uint16
		if et.CatchType != "" {
			if _, err := fmt.Sscanf(et.CatchType, "#%d", &catchIdx); err != nil {
				return nil, fmt.Errorf("%w: unresolvable catch type %q", domain.ErrCodeAttributeFailure, et.CatchType)
			}
		}
		binary.Write(&out, binary.BigEndian, catchIdx)
	}

	binary.Write(&out, binary.BigEndian, uint16(len(code.Attributes)))
	for _, a := range code.Attributes {
		var nameIdx uint16
		if _, err := fmt.Sscanf(a.Name, "#%d", &nameIdx); err != nil {
			return nil, fmt.Errorf("%w: unresolvable nested attribute name %q", domain.ErrCodeAttributeFailure, a.Name)
		}
		binary.Write(&out, binary.BigEndian, nameIdx)
		binary.Write(&out, binary.BigEndian, uint32(len(a.Info)))
		out.Write(a.Info)
	}

	return out.Bytes(), nil
}
