package driven

import "github.com/mixinforge/mixinengine/internal/core/domain"

// Codec is the class-file binary codec: it round-trips bytes to/from the
// parsed class model. The codec is a black box to the rest of the engine —
// mixin application never touches constant-pool indices or raw bytes
// directly, only the domain.ClassModel/Field/Method/CodeAttribute shapes.
type Codec interface {
	// Parse decodes a class file into a class model.
	Parse(data []byte) (*domain.ClassModel, error)

	// Serialize re-encodes a (possibly mutated) class model into class file bytes.
	Serialize(class *domain.ClassModel) ([]byte, error)

	// DecodeCode decodes a Code attribute's raw Info payload.
	DecodeCode(info []byte) (*domain.CodeAttribute, error)

	// EncodeCode re-encodes a (possibly mutated) Code attribute back into a
	// Code attribute's Info payload.
	EncodeCode(code *domain.CodeAttribute) ([]byte, error)
}
