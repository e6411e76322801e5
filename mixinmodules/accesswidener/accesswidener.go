// Package accesswidener is a sample mixin module: it widens a target
// field's or method's visibility to public. This is the canonical
// modding use case for a field/method-kind mixin and doubles as a
// reference for how a real mixin module registers itself.
//
// A module announces its mixins purely by being imported for its side
// effects:
//
//	import _ "github.com/mixinforge/mixinengine/mixinmodules/accesswidener"
package accesswidener

import (
	"github.com/mixinforge/mixinengine/internal/adapters/driven/mixinprovider"
	"github.com/mixinforge/mixinengine/internal/core/domain"
)

const (
	accPublic    uint16 = 0x0001
	accPrivate   uint16 = 0x0002
	accProtected uint16 = 0x0004
	accFinal     uint16 = 0x0010
)

func init() {
	mixinprovider.RegisterAll([]domain.MixinDescriptor{
		{
			Kind:   domain.MixinKindField,
			Module: "accesswidener",
			Target: domain.TargetAttribute{
				ClassName:       "com.example.target.Widget",
				NameType:        domain.NameTypeDefault,
				Priority:        100,
				FieldName:       "internalState",
				FieldDescriptor: "Ljava/lang/Object;",
			},
			FieldFn: widenFieldAccess,
		},
		{
			Kind:   domain.MixinKindMethod,
			Module: "accesswidener",
			Target: domain.TargetAttribute{
				ClassName:       "com.example.target.Widget",
				NameType:        domain.NameTypeDefault,
				Priority:        100,
				MethodName:      "recalculate",
				MethodSignature: "()V",
			},
			MethodFn: widenMethodAccess,
		},
	})
}

// widenFieldAccess clears private/protected and sets public, leaving final
// and the rest of the flag byte untouched.
func widenFieldAccess(class *domain.ClassModel, field *domain.Field) (*domain.Field, error) {
	widened := *field
	widened.AccessFlags = widenAccess(field.AccessFlags)
	return &widened, nil
}

func widenMethodAccess(class *domain.ClassModel, method *domain.Method) (*domain.Method, error) {
	widened := *method
	widened.AccessFlags = widenAccess(method.AccessFlags)
	return &widened, nil
}

func widenAccess(flags uint16) uint16 {
	flags &^= accPrivate | accProtected
	flags |= accPublic
	return flags
}
