package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/core/ports/driven"
)

const classMagic = 0xCAFEBABE

var _ driven.Codec = (*Codec)(nil)

// Codec implements driven.Codec over the JVM class file binary format.
type Codec struct{}

// New creates a class file codec.
func New() *Codec {
	return &Codec{}
}

// Parse decodes raw class bytes into a ClassModel.
func (c *Codec) Parse(data []byte) (*domain.ClassModel, error) {
	r := bytes.NewReader(data)

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil || magic != classMagic {
		return nil, fmt.Errorf("%w: bad magic", domain.ErrParseFailure)
	}

	var minor, major uint16
	if err := binary.Read(r, binary.BigEndian, &minor); err != nil {
		return nil, fmt.Errorf("%w: minor version: %v", domain.ErrParseFailure, err)
	}
	if err := binary.Read(r, binary.BigEndian, &major); err != nil {
		return nil, fmt.Errorf("%w: major version: %v", domain.ErrParseFailure, err)
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}

	var accessFlags, thisClass, superClass uint16
	if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
		return nil, fmt.Errorf("%w: access flags: %v", domain.ErrParseFailure, err)
	}
	if err := binary.Read(r, binary.BigEndian, &thisClass); err != nil {
		return nil, fmt.Errorf("%w: this_class: %v", domain.ErrParseFailure, err)
	}
	if err := binary.Read(r, binary.BigEndian, &superClass); err != nil {
		return nil, fmt.Errorf("%w: super_class: %v", domain.ErrParseFailure, err)
	}

	var interfaceCount uint16
	if err := binary.Read(r, binary.BigEndian, &interfaceCount); err != nil {
		return nil, fmt.Errorf("%w: interfaces_count: %v", domain.ErrParseFailure, err)
	}
	interfaces := make([]string, interfaceCount)
	for i := range interfaces {
		var idx uint16
		if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
			return nil, fmt.Errorf("%w: interface %d: %v", domain.ErrParseFailure, i, err)
		}
		interfaces[i] = classNameAt(cp, idx)
	}

	fields, err := readMembers(r, cp)
	if err != nil {
		return nil, fmt.Errorf("%w: fields: %v", domain.ErrParseFailure, err)
	}
	methods, err := readMembers(r, cp)
	if err != nil {
		return nil, fmt.Errorf("%w: methods: %v", domain.ErrParseFailure, err)
	}
	attributes, err := readAttributes(r, cp)
	if err != nil {
		return nil, fmt.Errorf("%w: class attributes: %v", domain.ErrParseFailure, err)
	}

	fieldModels := make([]domain.Field, len(fields))
	for i, m := range fields {
		fieldModels[i] = domain.Field{Name: m.name, Descriptor: m.descriptor, AccessFlags: m.accessFlags, Attributes: m.attributes}
	}
	methodModels := make([]domain.Method, len(methods))
	for i, m := range methods {
		methodModels[i] = domain.Method{Name: m.name, Descriptor: m.descriptor, AccessFlags: m.accessFlags, Attributes: m.attributes}
	}

	return &domain.ClassModel{
		Name:         classNameAt(cp, thisClass),
		SuperName:    classNameAt(cp, superClass),
		Interfaces:   interfaces,
		MajorVersion: major,
		MinorVersion: minor,
		AccessFlags:  accessFlags,
		Fields:       fieldModels,
		Methods:      methodModels,
		Attributes:   attributes,
		ConstantPool: cp,
	}, nil
}

// Serialize re-encodes class into class file bytes. Any name a mixin
// introduced that is not already in the constant pool is interned by
// appending a new entry; existing entries are never renumbered or removed,
// so untouched fields/methods/attributes keep referring to the same index.
func (c *Codec) Serialize(class *domain.ClassModel) ([]byte, error) {
	cp := class.ConstantPool
	if cp == nil {
		cp = domain.NewConstantPool()
	}

	thisClassIdx := internClassIndex(cp, class.Name)
	superClassIdx := uint16(0)
	if class.SuperName != "" {
		superClassIdx = internClassIndex(cp, class.SuperName)
	}
	interfaceIdxs := make([]uint16, len(class.Interfaces))
	for i, iface := range class.Interfaces {
		interfaceIdxs[i] = internClassIndex(cp, iface)
	}

	var body bytes.Buffer
	binary.Write(&body, binary.BigEndian, class.AccessFlags)
	binary.Write(&body, binary.BigEndian, thisClassIdx)
	binary.Write(&body, binary.BigEndian, superClassIdx)
	binary.Write(&body, binary.BigEndian, uint16(len(interfaceIdxs)))
	for _, idx := range interfaceIdxs {
		binary.Write(&body, binary.BigEndian, idx)
	}

	if err := writeMembers(&body, cp, class.Fields); err != nil {
		return nil, fmt.Errorf("%w: fields: %v", domain.ErrSerializeFailure, err)
	}
	if err := writeMembers(&body, cp, class.Methods); err != nil {
		return nil, fmt.Errorf("%w: methods: %v", domain.ErrSerializeFailure, err)
	}
	if err := writeAttributes(&body, cp, class.Attributes); err != nil {
		return nil, fmt.Errorf("%w: class attributes: %v", domain.ErrSerializeFailure, err)
	}

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(classMagic))
	binary.Write(&out, binary.BigEndian, class.MinorVersion)
	binary.Write(&out, binary.BigEndian, class.MajorVersion)
	if err := writeConstantPool(&out, cp); err != nil {
		return nil, fmt.Errorf("%w: constant pool: %v", domain.ErrSerializeFailure, err)
	}
	out.Write(body.Bytes())

	return out.Bytes(), nil
}

// internClassIndex finds an existing CONSTANT_Class entry for name, or
// appends the Utf8 + Class entries needed to create one. Append-only: a
// pre-existing entry for the same name is reused, never duplicated, but a
// name not already present gets new entries rather than mutating any
// existing slot.
func internClassIndex(cp *domain.ConstantPool, name string) uint16 {
	entries := cp.Entries()
	for i, e := range entries {
		if e.Kind == domain.ConstantClass && utf8At(cp, e.ClassNameIndex) == name {
			return uint16(i)
		}
	}
	nameIdx, ok := cp.FindUtf8(name)
	if !ok {
		nameIdx = cp.AppendUtf8(name)
	}
	return cp.AppendClass(nameIdx)
}

// internUtf8Index finds or appends a Utf8 entry for s.
func internUtf8Index(cp *domain.ConstantPool, s string) uint16 {
	if idx, ok := cp.FindUtf8(s); ok {
		return idx
	}
	return cp.AppendUtf8(s)
}

type rawMember struct {
	accessFlags uint16
	name        string
	descriptor  string
	attributes  []domain.Attribute
}

func readMembers(r *bytes.Reader, cp *domain.ConstantPool) ([]rawMember, error) {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	members := make([]rawMember, count)
	for i := range members {
		var accessFlags, nameIdx, descIdx uint16
		if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &descIdx); err != nil {
			return nil, err
		}
		attrs, err := readAttributes(r, cp)
		if err != nil {
			return nil, err
		}
		members[i] = rawMember{
			accessFlags: accessFlags,
			name:        utf8At(cp, nameIdx),
			descriptor:  utf8At(cp, descIdx),
			attributes:  attrs,
		}
	}
	return members, nil
}

func writeMembers(buf *bytes.Buffer, cp *domain.ConstantPool, members interface{}) error {
	switch ms := members.(type) {
	case []domain.Field:
		binary.Write(buf, binary.BigEndian, uint16(len(ms)))
		for _, m := range ms {
			binary.Write(buf, binary.BigEndian, m.AccessFlags)
			binary.Write(buf, binary.BigEndian, internUtf8Index(cp, m.Name))
			binary.Write(buf, binary.BigEndian, internUtf8Index(cp, m.Descriptor))
			if err := writeAttributes(buf, cp, m.Attributes); err != nil {
				return err
			}
		}
	case []domain.Method:
		binary.Write(buf, binary.BigEndian, uint16(len(ms)))
		for _, m := range ms {
			binary.Write(buf, binary.BigEndian, m.AccessFlags)
			binary.Write(buf, binary.BigEndian, internUtf8Index(cp, m.Name))
			binary.Write(buf, binary.BigEndian, internUtf8Index(cp, m.Descriptor))
			if err := writeAttributes(buf, cp, m.Attributes); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported member slice type %T", members)
	}
	return nil
}

func readAttributes(r *bytes.Reader, cp *domain.ConstantPool) ([]domain.Attribute, error) {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	attrs := make([]domain.Attribute, count)
	for i := range attrs {
		var nameIdx uint16
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		info := make([]byte, length)
		if _, err := readFull(r, info); err != nil {
			return nil, err
		}
		attrs[i] = domain.Attribute{Name: utf8At(cp, nameIdx), Info: info}
	}
	return attrs, nil
}

func writeAttributes(buf *bytes.Buffer, cp *domain.ConstantPool, attrs []domain.Attribute) error {
	binary.Write(buf, binary.BigEndian, uint16(len(attrs)))
	for _, a := range attrs {
		binary.Write(buf, binary.BigEndian, internUtf8Index(cp, a.Name))
		binary.Write(buf, binary.BigEndian, uint32(len(a.Info)))
		buf.Write(a.Info)
	}
	return nil
}
