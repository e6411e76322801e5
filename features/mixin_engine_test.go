// Package features runs the engine's end-to-end scenarios as executable
// Gherkin, against the real codec, matcher, registry, and transform
// pipeline — no mocks below the mixin functions themselves.
package features

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/mixinforge/mixinengine/internal/adapters/driven/classfile"
	"github.com/mixinforge/mixinengine/internal/adapters/driven/mapping"
	"github.com/mixinforge/mixinengine/internal/adapters/driven/mixinprovider"
	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/core/services"
	"github.com/mixinforge/mixinengine/internal/namematch"
	"github.com/mixinforge/mixinengine/internal/registry"
	"github.com/mixinforge/mixinengine/internal/transform"
)

type engineState struct {
	codec          *classfile.Codec
	mappingService *mapping.Service
	engine         *services.Engine

	classes map[string]*domain.ClassModel

	probeResult     []byte
	probeCalled     bool
	transformResult []byte
	transformCalled bool
	transformedOut  *domain.ClassModel

	observedMethodName string
}

func (s *engineState) reset() {
	mixinprovider.Reset()
	s.mappingService = mapping.New(nil)
	s.codec = classfile.New()

	normalizer := namematch.NewNormalizer()
	matcher := namematch.NewMatcher(normalizer, s.mappingService)
	index := registry.NewIndex()
	selector := registry.NewSelector(index, matcher)
	pipeline := transform.New(s.codec, selector, nil)

	s.engine = services.NewEngine(services.Config{
		Index:    index,
		Selector: selector,
		Pipeline: pipeline,
		Scanner:  mixinprovider.NewScanner(),
	})

	s.classes = make(map[string]*domain.ClassModel)
	s.probeResult = nil
	s.probeCalled = false
	s.transformResult = nil
	s.transformCalled = false
	s.transformedOut = nil
	s.observedMethodName = ""
}

func (s *engineState) rescan() error {
	return s.engine.Rescan(context.Background())
}

func (s *engineState) bytesFor(className string) ([]byte, error) {
	class, ok := s.classes[className]
	if !ok {
		return nil, fmt.Errorf("no class built named %q", className)
	}
	return s.codec.Serialize(class)
}

func (s *engineState) noMixinsAreRegistered() error {
	mixinprovider.Reset()
	return s.rescan()
}

func (s *engineState) aMinimalClass(name string) error {
	s.classes[name] = &domain.ClassModel{Name: name, SuperName: "java/lang/Object"}
	return nil
}

func (s *engineState) aMinimalClassWithMethod(name, methodName, descriptor string) error {
	s.classes[name] = &domain.ClassModel{
		Name:      name,
		SuperName: "java/lang/Object",
		Methods: []domain.Method{
			{Name: methodName, Descriptor: descriptor, AccessFlags: 0x0001},
		},
	}
	return nil
}

func (s *engineState) aMinimalClassWithAbstractMethod(name, methodName, descriptor string) error {
	const accAbstract = 0x0400
	s.classes[name] = &domain.ClassModel{
		Name:      name,
		SuperName: "java/lang/Object",
		Methods: []domain.Method{
			{Name: methodName, Descriptor: descriptor, AccessFlags: accAbstract},
		},
	}
	return nil
}

func (s *engineState) aMinimalClassWithTwoFields(name, field1, desc1, field2, desc2 string) error {
	s.classes[name] = &domain.ClassModel{
		Name:      name,
		SuperName: "java/lang/Object",
		Fields: []domain.Field{
			{Name: field1, Descriptor: desc1, AccessFlags: 0x0002},
			{Name: field2, Descriptor: desc2, AccessFlags: 0x0002},
		},
	}
	return nil
}

func (s *engineState) aClassMixinRenamesSuper(className, newSuper string) error {
	mixinprovider.Register(domain.MixinDescriptor{
		Kind:   domain.MixinKindClass,
		Module: "feature-test",
		Target: domain.TargetAttribute{ClassName: className, NameType: domain.NameTypeDefault},
		ClassFn: func(class *domain.ClassModel) (*domain.ClassModel, error) {
			out := *class
			out.SuperName = newSuper
			return &out, nil
		},
	})
	return s.rescan()
}

func (s *engineState) aMappingEntry(mapped, obfuscated string) error {
	row := fmt.Sprintf("CLASS\t%s\t%s\n", obfuscated, mapped)
	return s.mappingService.Load(strings.NewReader(row))
}

func (s *engineState) aMappedClassMixinRenamesSuper(className, newSuper string) error {
	mixinprovider.Register(domain.MixinDescriptor{
		Kind:   domain.MixinKindClass,
		Module: "feature-test",
		Target: domain.TargetAttribute{ClassName: className, NameType: domain.NameTypeMapped},
		ClassFn: func(class *domain.ClassModel) (*domain.ClassModel, error) {
			out := *class
			out.SuperName = newSuper
			return &out, nil
		},
	})
	return s.rescan()
}

func (s *engineState) aMethodMixinRenamesTo(className, methodName, descriptor string, priority int, newName string) error {
	mixinprovider.Register(domain.MixinDescriptor{
		Kind:   domain.MixinKindMethod,
		Module: "feature-test",
		Target: domain.TargetAttribute{
			ClassName: className, NameType: domain.NameTypeDefault, Priority: priority,
			MethodName: methodName, MethodSignature: descriptor,
		},
		MethodFn: func(class *domain.ClassModel, method *domain.Method) (*domain.Method, error) {
			out := *method
			out.Name = newName
			return &out, nil
		},
	})
	return s.rescan()
}

func (s *engineState) aMethodMixinRecordsObservedName(className, methodName, descriptor string, priority int) error {
	mixinprovider.Register(domain.MixinDescriptor{
		Kind:   domain.MixinKindMethod,
		Module: "feature-test",
		Target: domain.TargetAttribute{
			ClassName: className, NameType: domain.NameTypeDefault, Priority: priority,
			MethodName: methodName, MethodSignature: descriptor,
		},
		MethodFn: func(class *domain.ClassModel, method *domain.Method) (*domain.Method, error) {
			s.observedMethodName = method.Name
			return method, nil
		},
	})
	return s.rescan()
}

func (s *engineState) aMethodCodeMixin(className, methodName, descriptor string) error {
	mixinprovider.Register(domain.MixinDescriptor{
		Kind:   domain.MixinKindMethodCode,
		Module: "feature-test",
		Target: domain.TargetAttribute{
			ClassName: className, NameType: domain.NameTypeDefault,
			MethodName: methodName, MethodSignature: descriptor,
		},
		MethodCodeFn: func(class *domain.ClassModel, code *domain.CodeAttribute) (*domain.CodeAttribute, error) {
			return code, nil
		},
	})
	return s.rescan()
}

func (s *engineState) aFieldMixinThrows(className, fieldName, descriptor string) error {
	mixinprovider.Register(domain.MixinDescriptor{
		Kind:   domain.MixinKindField,
		Module: "feature-test",
		Target: domain.TargetAttribute{
			ClassName: className, NameType: domain.NameTypeDefault,
			FieldName: fieldName, FieldDescriptor: descriptor,
		},
		FieldFn: func(class *domain.ClassModel, field *domain.Field) (*domain.Field, error) {
			panic("simulated mixin failure")
		},
	})
	return s.rescan()
}

func (s *engineState) aFieldMixinRenamesTo(className, fieldName, descriptor, newName string) error {
	mixinprovider.Register(domain.MixinDescriptor{
		Kind:   domain.MixinKindField,
		Module: "feature-test",
		Target: domain.TargetAttribute{
			ClassName: className, NameType: domain.NameTypeDefault,
			FieldName: fieldName, FieldDescriptor: descriptor,
		},
		FieldFn: func(class *domain.ClassModel, field *domain.Field) (*domain.Field, error) {
			out := *field
			out.Name = newName
			return &out, nil
		},
	})
	return s.rescan()
}

func (s *engineState) iProbeClass(className string) error {
	s.probeResult = s.engine.ModifyClass(context.Background(), className, nil)
	s.probeCalled = true
	return nil
}

func (s *engineState) iTransformClass(className string) error {
	data, err := s.bytesFor(className)
	if err != nil {
		return err
	}
	s.transformResult = s.engine.ModifyClass(context.Background(), className, data)
	s.transformCalled = true
	if s.transformResult != nil {
		out, err := s.codec.Parse(s.transformResult)
		if err != nil {
			return fmt.Errorf("failed to parse transform output: %w", err)
		}
		s.transformedOut = out
	}
	return nil
}

func (s *engineState) theProbeResultIs(want string) error {
	switch want {
	case "nil":
		if s.probeResult != nil {
			return fmt.Errorf("expected nil probe result, got %v", s.probeResult)
		}
	case "empty":
		if s.probeResult == nil || len(s.probeResult) != 0 {
			return fmt.Errorf("expected empty non-nil probe result, got %v", s.probeResult)
		}
	default:
		return fmt.Errorf("unknown expectation %q", want)
	}
	return nil
}

func (s *engineState) theTransformResultIs(want string) error {
	switch want {
	case "nil":
		if s.transformResult != nil {
			return fmt.Errorf("expected nil transform result, got %d bytes", len(s.transformResult))
		}
	case "modified":
		if s.transformResult == nil {
			return fmt.Errorf("expected modified (non-nil) transform result, got nil")
		}
	default:
		return fmt.Errorf("unknown expectation %q", want)
	}
	return nil
}

func (s *engineState) theSecondMixinObservedMethodName(name string) error {
	if s.observedMethodName != name {
		return fmt.Errorf("expected observed method name %q, got %q", name, s.observedMethodName)
	}
	return nil
}

func (s *engineState) noPanicOrErrorCrossedTheBoundary() error {
	if !s.transformCalled {
		return fmt.Errorf("transform was never called")
	}
	return nil
}

func (s *engineState) fieldExistsInOutputClass(name string) error {
	if s.transformedOut == nil {
		return fmt.Errorf("no transformed class available")
	}
	for _, f := range s.transformedOut.Fields {
		if f.Name == name {
			return nil
		}
	}
	return fmt.Errorf("field %q not found in output class", name)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	s := &engineState{}

	ctx.Before(func(goCtx context.Context, sc *godog.Scenario) (context.Context, error) {
		s.reset()
		return goCtx, nil
	})

	ctx.Step(`^no mixins are registered$`, s.noMixinsAreRegistered)
	ctx.Step(`^a minimal class "([^"]*)"$`, s.aMinimalClass)
	ctx.Step(`^a minimal class "([^"]*)" with method "([^"]*)" descriptor "([^"]*)"$`, s.aMinimalClassWithMethod)
	ctx.Step(`^a minimal class "([^"]*)" with abstract method "([^"]*)" descriptor "([^"]*)"$`, s.aMinimalClassWithAbstractMethod)
	ctx.Step(`^a minimal class "([^"]*)" with field "([^"]*)" descriptor "([^"]*)" and field "([^"]*)" descriptor "([^"]*)"$`, s.aMinimalClassWithTwoFields)
	ctx.Step(`^a class mixin on "([^"]*)" that renames the super class to "([^"]*)"$`, s.aClassMixinRenamesSuper)
	ctx.Step(`^a mapping entry mapped "([^"]*)" obfuscated "([^"]*)"$`, s.aMappingEntry)
	ctx.Step(`^a mapped class mixin on "([^"]*)" that renames the super class to "([^"]*)"$`, s.aMappedClassMixinRenamesSuper)
	ctx.Step(`^a method mixin on "([^"]*)" method "([^"]*)" descriptor "([^"]*)" priority (\d+) that renames it to "([^"]*)"$`, s.aMethodMixinRenamesTo)
	ctx.Step(`^a method mixin on "([^"]*)" method "([^"]*)" descriptor "([^"]*)" priority (\d+) that records the observed name$`, s.aMethodMixinRecordsObservedName)
	ctx.Step(`^a method-code mixin on "([^"]*)" method "([^"]*)" descriptor "([^"]*)"$`, s.aMethodCodeMixin)
	ctx.Step(`^a field mixin on "([^"]*)" field "([^"]*)" descriptor "([^"]*)" that throws$`, s.aFieldMixinThrows)
	ctx.Step(`^a field mixin on "([^"]*)" field "([^"]*)" descriptor "([^"]*)" that renames it to "([^"]*)"$`, s.aFieldMixinRenamesTo)
	ctx.Step(`^I probe class "([^"]*)"$`, s.iProbeClass)
	ctx.Step(`^I transform class "([^"]*)"$`, s.iTransformClass)
	ctx.Step(`^the probe result is (nil|empty)$`, s.theProbeResultIs)
	ctx.Step(`^the transform result is (nil|modified)$`, s.theTransformResultIs)
	ctx.Step(`^the second mixin observed method name "([^"]*)"$`, s.theSecondMixinObservedMethodName)
	ctx.Step(`^no panic or error crossed the boundary$`, s.noPanicOrErrorCrossedTheBoundary)
	ctx.Step(`^field "([^"]*)" exists in the output class$`, s.fieldExistsInOutputClass)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"."},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
