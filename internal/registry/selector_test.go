package registry

import (
	"testing"

	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/namematch"
)

func newSelector() (*Index, *Selector) {
	idx := NewIndex()
	matcher := namematch.NewMatcher(namematch.NewNormalizer(), nil)
	return idx, NewSelector(idx, matcher)
}

func TestSelector_SelectForClass(t *testing.T) {
	idx, sel := newSelector()
	idx.Rebuild([]domain.MixinDescriptor{
		{Kind: domain.MixinKindClass, Module: "m1", Target: domain.TargetAttribute{ClassName: "a/b/C", Priority: 10}},
		{Kind: domain.MixinKindClass, Module: "m2", Target: domain.TargetAttribute{ClassName: "x/y/Z", Priority: 10}},
	}, 1)

	matches := sel.SelectForClass("a/b/C")
	if len(matches) != 1 || matches[0].Descriptor.Module != "m1" {
		t.Fatalf("expected only m1 to match a/b/C, got %+v", matches)
	}

	if len(sel.SelectForClass("unrelated/Class")) != 0 {
		t.Error("expected no matches for an unrelated class")
	}
}

func TestSelector_SelectForField(t *testing.T) {
	idx, sel := newSelector()
	idx.Rebuild([]domain.MixinDescriptor{
		{
			Kind:   domain.MixinKindField,
			Module: "widener",
			Target: domain.TargetAttribute{
				ClassName: "a/b/C", Priority: 0,
				FieldName: "count", FieldDescriptor: "I",
			},
		},
	}, 1)

	matches := sel.SelectForField("a/b/C", "count", "I")
	if len(matches) != 1 {
		t.Fatalf("expected one field mixin to match, got %d", len(matches))
	}

	if len(sel.SelectForField("a/b/C", "other", "I")) != 0 {
		t.Error("expected no match for a differently named field")
	}
	if len(sel.SelectForField("x/y/Z", "count", "I")) != 0 {
		t.Error("expected no match when the owning class differs")
	}
}

func TestSelector_SelectForMethod_And_MethodCode(t *testing.T) {
	idx, sel := newSelector()
	idx.Rebuild([]domain.MixinDescriptor{
		{
			Kind:   domain.MixinKindMethod,
			Module: "renamer",
			Target: domain.TargetAttribute{ClassName: "x/Y", MethodName: "run", MethodSignature: "()V"},
		},
		{
			Kind:   domain.MixinKindMethodCode,
			Module: "injector",
			Target: domain.TargetAttribute{ClassName: "x/Y", MethodName: "run", MethodSignature: "()V"},
		},
	}, 1)

	if len(sel.SelectForMethod("x/Y", "run", "()V")) != 1 {
		t.Error("expected one method mixin to match")
	}
	if len(sel.SelectForMethodCode("x/Y", "run", "()V")) != 1 {
		t.Error("expected one method-code mixin to match")
	}
	if len(sel.SelectForMethod("x/Y", "other", "()V")) != 0 {
		t.Error("expected no match for a differently named method")
	}
}

func TestSelector_HasAnyMatch(t *testing.T) {
	idx, sel := newSelector()

	if sel.HasAnyMatch("a/b/C") {
		t.Error("expected no match against an empty index")
	}

	idx.Rebuild([]domain.MixinDescriptor{
		{Kind: domain.MixinKindClass, Module: "m1", Target: domain.TargetAttribute{ClassName: "a/b/C"}},
	}, 1)

	if !sel.HasAnyMatch("a/b/C") {
		t.Error("expected a match now that a class mixin targets this class")
	}
	if sel.HasAnyMatch("x/y/Z") {
		t.Error("expected no match for an untargeted class")
	}
}
