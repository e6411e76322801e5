package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mixinforge/mixinengine/internal/core/domain"
)

const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagInvokeDynamic      = 18
)

// readConstantPool decodes the constant_pool_count and constant_pool[] of a
// class file. Long and Double entries occupy two consecutive pool slots
// (the class file format's historical quirk); the second slot is left
// zero-valued so indices into it never resolve to a usable entry, matching
// the JVM spec.
func readConstantPool(r *bytes.Reader) (*domain.ConstantPool, error) {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: constant pool count: %v", domain.ErrParseFailure, err)
	}

	entries := make([]domain.ConstantPoolEntry, count)
	for i := 1; i < int(count); i++ {
		var tag byte
		if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
			return nil, fmt.Errorf("%w: constant pool tag at %d: %v", domain.ErrParseFailure, i, err)
		}

		switch tag {
		case tagUtf8:
			var length uint16
			if err := binary.Read(r, binary.BigEndian, &length); err != nil {
				return nil, fmt.Errorf("%w: utf8 length: %v", domain.ErrParseFailure, err)
			}
			buf := make([]byte, length)
			if _, err := readFull(r, buf); err != nil {
				return nil, fmt.Errorf("%w: utf8 bytes: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantUtf8, Utf8: string(buf)}

		case tagInteger:
			var v uint32
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, fmt.Errorf("%w: integer: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantInteger, Int: int32(v)}

		case tagFloat:
			var v uint32
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, fmt.Errorf("%w: float: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantFloat, Float: math.Float32frombits(v)}

		case tagLong:
			var v uint64
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, fmt.Errorf("%w: long: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantLong, Long: int64(v)}
			i++ // occupies two slots

		case tagDouble:
			var v uint64
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, fmt.Errorf("%w: double: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantDouble, Double: math.Float64frombits(v)}
			i++ // occupies two slots

		case tagClass:
			var nameIdx uint16
			if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
				return nil, fmt.Errorf("%w: class: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantClass, ClassNameIndex: nameIdx}

		case tagString:
			var strIdx uint16
			if err := binary.Read(r, binary.BigEndian, &strIdx); err != nil {
				return nil, fmt.Errorf("%w: string: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantString, StringIndex: strIdx}

		case tagFieldref, tagMethodref, tagInterfaceMethodref:
			var classIdx, natIdx uint16
			if err := binary.Read(r, binary.BigEndian, &classIdx); err != nil {
				return nil, fmt.Errorf("%w: ref class index: %v", domain.ErrParseFailure, err)
			}
			if err := binary.Read(r, binary.BigEndian, &natIdx); err != nil {
				return nil, fmt.Errorf("%w: ref name-and-type index: %v", domain.ErrParseFailure, err)
			}
			kind := domain.ConstantFieldref
			if tag == tagMethodref {
				kind = domain.ConstantMethodref
			} else if tag == tagInterfaceMethodref {
				kind = domain.ConstantInterfaceMethodref
			}
			entries[i] = domain.ConstantPoolEntry{Kind: kind, ClassIndex: classIdx, NameAndTypeIndex: natIdx}

		case tagNameAndType:
			var nameIdx, descIdx uint16
			if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
				return nil, fmt.Errorf("%w: name-and-type name: %v", domain.ErrParseFailure, err)
			}
			if err := binary.Read(r, binary.BigEndian, &descIdx); err != nil {
				return nil, fmt.Errorf("%w: name-and-type descriptor: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantNameAndType, NameIndex: nameIdx, DescriptorIndex: descIdx}

		case tagMethodHandle:
			var kind byte
			var refIdx uint16
			if err := binary.Read(r, binary.BigEndian, &kind); err != nil {
				return nil, fmt.Errorf("%w: method handle kind: %v", domain.ErrParseFailure, err)
			}
			if err := binary.Read(r, binary.BigEndian, &refIdx); err != nil {
				return nil, fmt.Errorf("%w: method handle ref: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantMethodHandle, NameAndTypeIndex: refIdx}

		case tagMethodType:
			var descIdx uint16
			if err := binary.Read(r, binary.BigEndian, &descIdx); err != nil {
				return nil, fmt.Errorf("%w: method type: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantMethodType, DescriptorIndex: descIdx}

		case tagInvokeDynamic:
			var bootstrapIdx, natIdx uint16
			if err := binary.Read(r, binary.BigEndian, &bootstrapIdx); err != nil {
				return nil, fmt.Errorf("%w: invokedynamic bootstrap: %v", domain.ErrParseFailure, err)
			}
			if err := binary.Read(r, binary.BigEndian, &natIdx); err != nil {
				return nil, fmt.Errorf("%w: invokedynamic name-and-type: %v", domain.ErrParseFailure, err)
			}
			entries[i] = domain.ConstantPoolEntry{Kind: domain.ConstantInvokeDynamic, ClassIndex: bootstrapIdx, NameAndTypeIndex: natIdx}

		default:
			return nil, fmt.Errorf("%w: unsupported constant pool tag %d at index %d", domain.ErrParseFailure, tag, i)
		}
	}

	return domain.NewConstantPoolFromEntries(entries), nil
}

// writeConstantPool re-encodes cp, including any entries a mixin appended
// during the transform.
func writeConstantPool(buf *bytes.Buffer, cp *domain.ConstantPool) error {
	entries := cp.Entries()
	if err := binary.Write(buf, binary.BigEndian, uint16(len(entries))); err != nil {
		return err
	}

	for i := 1; i < len(entries); i++ {
		e := entries[i]
		switch e.Kind {
		case domain.ConstantUtf8:
			buf.WriteByte(tagUtf8)
			binary.Write(buf, binary.BigEndian, uint16(len(e.Utf8)))
			buf.WriteString(e.Utf8)

		case domain.ConstantInteger:
			buf.WriteByte(tagInteger)
			binary.Write(buf, binary.BigEndian, uint32(e.Int))

		case domain.ConstantFloat:
			buf.WriteByte(tagFloat)
			binary.Write(buf, binary.BigEndian, math.Float32bits(e.Float))

		case domain.ConstantLong:
			buf.WriteByte(tagLong)
			binary.Write(buf, binary.BigEndian, uint64(e.Long))
			i++ // skip the reserved second slot

		case domain.ConstantDouble:
			buf.WriteByte(tagDouble)
			binary.Write(buf, binary.BigEndian, math.Float64bits(e.Double))
			i++ // skip the reserved second slot

		case domain.ConstantClass:
			buf.WriteByte(tagClass)
			binary.Write(buf, binary.BigEndian, e.ClassNameIndex)

		case domain.ConstantString:
			buf.WriteByte(tagString)
			binary.Write(buf, binary.BigEndian, e.StringIndex)

		case domain.ConstantFieldref:
			buf.WriteByte(tagFieldref)
			binary.Write(buf, binary.BigEndian, e.ClassIndex)
			binary.Write(buf, binary.BigEndian, e.NameAndTypeIndex)

		case domain.ConstantMethodref:
			buf.WriteByte(tagMethodref)
			binary.Write(buf, binary.BigEndian, e.ClassIndex)
			binary.Write(buf, binary.BigEndian, e.NameAndTypeIndex)

		case domain.ConstantInterfaceMethodref:
			buf.WriteByte(tagInterfaceMethodref)
			binary.Write(buf, binary.BigEndian, e.ClassIndex)
			binary.Write(buf, binary.BigEndian, e.NameAndTypeIndex)

		case domain.ConstantNameAndType:
			buf.WriteByte(tagNameAndType)
			binary.Write(buf, binary.BigEndian, e.NameIndex)
			binary.Write(buf, binary.BigEndian, e.DescriptorIndex)

		case domain.ConstantMethodHandle:
			buf.WriteByte(tagMethodHandle)
			buf.WriteByte(0)
			binary.Write(buf, binary.BigEndian, e.NameAndTypeIndex)

		case domain.ConstantMethodType:
			buf.WriteByte(tagMethodType)
			binary.Write(buf, binary.BigEndian, e.DescriptorIndex)

		case domain.ConstantInvokeDynamic:
			buf.WriteByte(tagInvokeDynamic)
			binary.Write(buf, binary.BigEndian, e.ClassIndex)
			binary.Write(buf, binary.BigEndian, e.NameAndTypeIndex)

		default:
			return fmt.Errorf("%w: unwritable constant pool entry at index %d", domain.ErrSerializeFailure, i)
		}
	}
	return nil
}

// utf8At resolves a Utf8 entry to its string, or "" if index is not a Utf8
// entry (callers treat "" as "absent" consistently with optional indices
// such as superclass == 0).
func utf8At(cp *domain.ConstantPool, index uint16) string {
	e, ok := cp.Get(index)
	if !ok || e.Kind != domain.ConstantUtf8 {
		return ""
	}
	return e.Utf8
}

// classNameAt resolves a CONSTANT_Class entry to its name string.
func classNameAt(cp *domain.ConstantPool, index uint16) string {
	if index == 0 {
		return ""
	}
	e, ok := cp.Get(index)
	if !ok || e.Kind != domain.ConstantClass {
		return ""
	}
	return utf8At(cp, e.ClassNameIndex)
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, fmt.Errorf("unexpected EOF")
		}
	}
	return n, nil
}
