package domain

// ClassModel is the parsed representation of a class file: an ordered
// sequence of fields, an ordered sequence of methods, and the class-level
// attributes other than fields/methods. Order is preserved across a rewrite
// except where a mixin explicitly replaces an entry in place.
type ClassModel struct {
	Name       string
	SuperName  string
	Interfaces []string

	MajorVersion uint16
	MinorVersion uint16
	AccessFlags  uint16

	Fields     []Field
	Methods    []Method
	Attributes []Attribute

	// ConstantPool is the codec's private working set of constant pool
	// entries backing this model. Mixins never touch it directly; the codec
	// consults and extends it on Serialize to intern any new names or
	// descriptors a mixin introduced.
	ConstantPool *ConstantPool
}

// Field is one entry in a class's field list.
type Field struct {
	Name        string
	Descriptor  string
	AccessFlags uint16
	Attributes  []Attribute
}

// Method is one entry in a class's method list. Descriptor is the JVM
// method descriptor string (spec vocabulary: "method_signature").
type Method struct {
	Name        string
	Descriptor  string
	AccessFlags uint16
	Attributes  []Attribute
}

// Attribute is a generically-named class/field/method/code attribute. Info
// carries its raw, still-encoded payload; a Code attribute's Info is decoded
// on demand into a CodeAttribute by the codec and re-encoded on write-back.
type Attribute struct {
	Name string
	Info []byte
}

// CodeNameAttr is the well-known name of the Code attribute.
const CodeNameAttr = "Code"

// FindAttribute returns the index of the first attribute with the given
// name, or -1 if absent.
func FindAttribute(attrs []Attribute, name string) int {
	for i := range attrs {
		if attrs[i].Name == name {
			return i
		}
	}
	return -1
}
