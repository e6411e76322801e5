package domain

// NameType selects the namespace a mixin target's class_name is expressed in.
type NameType int

const (
	// NameTypeDefault requires byte-for-byte equality of normalized names.
	NameTypeDefault NameType = iota
	// NameTypeObfuscated delegates to the mapping service's class-equivalence predicate.
	NameTypeObfuscated
	// NameTypeMapped resolves the target through the mapping table's mapped->obfuscated pair.
	NameTypeMapped
)

func (t NameType) String() string {
	switch t {
	case NameTypeDefault:
		return "default"
	case NameTypeObfuscated:
		return "obfuscated"
	case NameTypeMapped:
		return "mapped"
	default:
		return "unknown"
	}
}

// MixinKind distinguishes the four mixin target shapes.
type MixinKind int

const (
	MixinKindClass MixinKind = iota
	MixinKindField
	MixinKindMethod
	MixinKindMethodCode
)

func (k MixinKind) String() string {
	switch k {
	case MixinKindClass:
		return "class"
	case MixinKindField:
		return "field"
	case MixinKindMethod:
		return "method"
	case MixinKindMethodCode:
		return "method-code"
	default:
		return "unknown"
	}
}

// TargetAttribute is carried by every mixin, supplied at scan time.
type TargetAttribute struct {
	ClassName string
	NameType  NameType
	Priority  int

	// Field-kind payload
	FieldName       string
	FieldDescriptor string

	// Method and MethodCode-kind payload
	MethodName      string
	MethodSignature string
}

// ClassMixinFunc transforms a class model and returns the replacement.
type ClassMixinFunc func(class *ClassModel) (*ClassModel, error)

// FieldMixinFunc transforms a single field and returns the replacement.
// Implementations must not depend on in-place identity of class.
type FieldMixinFunc func(class *ClassModel, field *Field) (*Field, error)

// MethodMixinFunc transforms a single method and returns the replacement.
type MethodMixinFunc func(class *ClassModel, method *Method) (*Method, error)

// MethodCodeMixinFunc transforms a method's decoded Code attribute.
type MethodCodeMixinFunc func(class *ClassModel, code *CodeAttribute) (*CodeAttribute, error)

// MixinDescriptor is what the registry stores: the target attribute, a
// callable handle for the descriptor's kind, and the owning module identity
// used for logging and per-module failure accounting.
type MixinDescriptor struct {
	Kind   MixinKind
	Target TargetAttribute
	Module string

	// Discovery is the index this descriptor held in the scanned list,
	// stamped by Index.Rebuild before sorting; used to break priority ties
	// deterministically instead of relying on sort.SliceStable's incidental
	// preservation of whatever order the scanner happened to return.
	Discovery int

	ClassFn      ClassMixinFunc
	FieldFn      FieldMixinFunc
	MethodFn     MethodMixinFunc
	MethodCodeFn MethodCodeMixinFunc
}
