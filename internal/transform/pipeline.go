// Package transform implements the class transformer: the per-class
// mixin pipeline that runs after the host adapter has decided a class is
// worth transforming (spec §4.6, §5). It parses once, applies every
// matching mixin in priority order across the four kinds, and serializes
// once — with every mixin invocation isolated so one misbehaving module
// can never take down a transform for every other module.
package transform

import (
	"log/slog"

	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/core/ports/driven"
	"github.com/mixinforge/mixinengine/internal/registry"
)

// Result reports what happened during one Transform call: how many mixins
// applied cleanly, how many failed (by error or panic), and which modules
// the failures came from.
type Result struct {
	Modified       bool
	Applied        int
	Failed         int
	ModuleFailures map[string]int
}

func newResult() Result {
	return Result{ModuleFailures: make(map[string]int)}
}

func (r *Result) recordFailure(module string) {
	r.Failed++
	r.ModuleFailures[module]++
}

// Pipeline applies the mixin index's matching descriptors to a single
// class, in the order: class mixins, then field mixins, then method
// mixins, then method-code mixins (spec §5's fixed phase order).
type Pipeline struct {
	codec    driven.Codec
	selector *registry.Selector
	log      *slog.Logger
}

// New creates a transform pipeline over codec and selector.
func New(codec driven.Codec, selector *registry.Selector, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{codec: codec, selector: selector, log: log}
}

// Transform parses classData, applies every matching mixin, and
// re-serializes if anything changed. A parse failure or a completely
// mixin-free class both return (nil, Result{}): the caller (the host
// adapter) treats a nil slice as "no replacement" either way.
func (p *Pipeline) Transform(runtimeName string, classData []byte) ([]byte, Result) {
	class, err := p.codec.Parse(classData)
	if err != nil {
		p.log.Warn("class parse failed, leaving class untouched", "class", runtimeName, "error", err)
		return nil, newResult()
	}

	result := newResult()

	for _, cm := range p.selector.SelectForClass(runtimeName) {
		descriptor := cm.Descriptor
		if descriptor.Kind != domain.MixinKindClass || descriptor.ClassFn == nil {
			continue
		}
		if p.invoke(descriptor.Module, &result, func() error {
			out, err := descriptor.ClassFn(class)
			if err != nil {
				return err
			}
			*class = *out
			return nil
		}) {
			result.Modified = true
		}
	}

	for i := range class.Fields {
		field := &class.Fields[i]
		for _, d := range p.selector.SelectForField(runtimeName, field.Name, field.Descriptor) {
			descriptor := d
			if descriptor.FieldFn == nil {
				continue
			}
			if p.invoke(descriptor.Module, &result, func() error {
				out, err := descriptor.FieldFn(class, field)
				if err != nil {
					return err
				}
				*field = *out
				return nil
			}) {
				result.Modified = true
			}
		}
	}

	for i := range class.Methods {
		method := &class.Methods[i]
		for _, d := range p.selector.SelectForMethod(runtimeName, method.Name, method.Descriptor) {
			descriptor := d
			if descriptor.MethodFn == nil {
				continue
			}
			if p.invoke(descriptor.Module, &result, func() error {
				out, err := descriptor.MethodFn(class, method)
				if err != nil {
					return err
				}
				*method = *out
				return nil
			}) {
				result.Modified = true
			}
		}
	}

	for i := range class.Methods {
		method := &class.Methods[i]
		codeIdx := domain.FindAttribute(method.Attributes, domain.CodeNameAttr)
		if codeIdx == -1 {
			continue
		}
		descriptors := p.selector.SelectForMethodCode(runtimeName, method.Name, method.Descriptor)
		if len(descriptors) == 0 {
			continue
		}
		if p.applyMethodCode(runtimeName, class, method, codeIdx, descriptors, &result) {
			result.Modified = true
		}
	}

	if !result.Modified {
		return nil, result
	}

	out, err := p.codec.Serialize(class)
	if err != nil {
		p.log.Error("class serialize failed after mixin transform", "class", runtimeName, "error", err)
		return nil, result
	}
	return out, result
}

// applyMethodCode decodes the Code attribute once, runs every matching
// method-code mixin against it, and re-encodes once.
func (p *Pipeline) applyMethodCode(runtimeName string, class *domain.ClassModel, method *domain.Method, codeIdx int, descriptors []domain.MixinDescriptor, result *Result) bool {
	code, err := p.codec.DecodeCode(method.Attributes[codeIdx].Info)
	if err != nil {
		p.log.Warn("code attribute decode failed, skipping method-code mixins", "class", runtimeName, "method", method.Name, "error", err)
		return false
	}

	modified := false
	for _, d := range descriptors {
		descriptor := d
		if descriptor.MethodCodeFn == nil {
			continue
		}
		if p.invoke(descriptor.Module, result, func() error {
			out, err := descriptor.MethodCodeFn(class, code)
			if err != nil {
				return err
			}
			*code = *out
			return nil
		}) {
			modified = true
		}
	}
	if !modified {
		return false
	}

	info, err := p.codec.EncodeCode(code)
	if err != nil {
		p.log.Error("code attribute encode failed after method-code mixin", "class", runtimeName, "method", method.Name, "error", err)
		return false
	}
	method.Attributes[codeIdx].Info = info
	return true
}

// invoke calls fn with both error returns and panics treated as the same
// failure mode (spec §4.7): a mixin that panics is exactly as isolated as
// one that returns an error. Neither ever propagates past invoke.
func (p *Pipeline) invoke(module string, result *Result, fn func() error) (applied bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("mixin panicked, isolating failure", "module", module, "recover", r)
			result.recordFailure(module)
			applied = false
		}
	}()

	if err := fn(); err != nil {
		p.log.Warn("mixin returned error, isolating failure", "module", module, "error", err)
		result.recordFailure(module)
		return false
	}
	result.Applied++
	return true
}
