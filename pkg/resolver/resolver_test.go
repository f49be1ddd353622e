package resolver

import (
	"context"
	"testing"

	"weaver/pkg/apperror"
	"weaver/pkg/loader"
	"weaver/pkg/semconv"
)

func rawGroup(id semconv.SignalID, gt semconv.GroupType) semconv.RawGroup {
	return semconv.RawGroup{ID: id, Type: gt, Brief: string(id), Provenance: semconv.Provenance{RegistryID: "test", Path: string(id) + ".yaml"}}
}

func inlineAttr(id semconv.SignalID, prim semconv.PrimitiveType, req semconv.RequirementLevelKind) semconv.AttrSpecOrRef {
	r := semconv.RequirementLevel{Kind: req}
	return semconv.AttrSpecOrRef{
		ID:          id,
		Brief:       string(id),
		Type:        &semconv.AttributeType{Primitive: prim},
		Requirement: &r,
	}
}

func refAttr(ref semconv.SignalID, req semconv.RequirementLevelKind) semconv.AttrSpecOrRef {
	r := semconv.RequirementLevel{Kind: req}
	return semconv.AttrSpecOrRef{Ref: ref, Requirement: &r}
}

func TestResolve_HappyPath(t *testing.T) {
	g := rawGroup("attribute_group.http.common", semconv.GroupAttributeGroup)
	g.Attributes = []semconv.AttrSpecOrRef{
		inlineAttr("http.request.method", semconv.TypeString, semconv.RequirementRequired),
	}

	span := rawGroup("span.http.client", semconv.GroupSpan)
	span.SpanKind = semconv.SpanKindClient
	span.Attributes = []semconv.AttrSpecOrRef{
		refAttr("http.request.method", semconv.RequirementRequired),
	}

	files := []loader.RawFile{{Groups: []semconv.RawGroup{g, span}}}

	r := New(DefaultOptions())
	schema, err := r.Resolve(context.Background(), "test", files, nil)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if schema.Registry.Len() != 2 {
		t.Fatalf("expected 2 resolved groups, got %d", schema.Registry.Len())
	}
	if schema.Catalog.Len() != 1 {
		t.Fatalf("expected 1 interned attribute, got %d", schema.Catalog.Len())
	}

	resolvedSpan, ok := schema.Registry.Get("span.http.client")
	if !ok {
		t.Fatalf("span.http.client not found in resolved registry")
	}
	if len(resolvedSpan.Attributes) != 1 {
		t.Fatalf("expected 1 resolved attribute on span, got %d", len(resolvedSpan.Attributes))
	}
	attr, ok := schema.Catalog.Get(resolvedSpan.Attributes[0].Ref)
	if !ok || attr.Key != "http.request.method" {
		t.Fatalf("unexpected resolved attribute: %+v", attr)
	}
}

func TestResolve_ExtendsInheritsStabilityAndAttributes(t *testing.T) {
	base := rawGroup("attribute_group.base", semconv.GroupAttributeGroup)
	base.Stability = semconv.StabilityStable
	base.Attributes = []semconv.AttrSpecOrRef{
		inlineAttr("example.x", semconv.TypeString, semconv.RequirementRequired),
	}

	child := rawGroup("attribute_group.child", semconv.GroupAttributeGroup)
	child.Extends = "attribute_group.base"
	child.Attributes = []semconv.AttrSpecOrRef{
		inlineAttr("example.y", semconv.TypeString, semconv.RequirementOptIn),
	}

	files := []loader.RawFile{{Groups: []semconv.RawGroup{base, child}}}

	r := New(DefaultOptions())
	schema, err := r.Resolve(context.Background(), "test", files, nil)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	resolvedChild, ok := schema.Registry.Get("attribute_group.child")
	if !ok {
		t.Fatalf("attribute_group.child not found")
	}
	if resolvedChild.Stability != semconv.StabilityStable {
		t.Errorf("expected child to inherit stability=stable from parent, got %q", resolvedChild.Stability)
	}
	if len(resolvedChild.Attributes) != 2 {
		t.Fatalf("expected 2 attributes (inherited + own), got %d", len(resolvedChild.Attributes))
	}

	keys := map[semconv.SignalID]semconv.RequirementLevelKind{}
	for _, a := range resolvedChild.Attributes {
		attr, _ := schema.Catalog.Get(a.Ref)
		keys[attr.Key] = a.Requirement.Kind
	}
	if keys["example.x"] != semconv.RequirementRequired {
		t.Errorf("expected inherited example.x to stay required, got %q", keys["example.x"])
	}
	if keys["example.y"] != semconv.RequirementOptIn {
		t.Errorf("expected own example.y to be opt_in, got %q", keys["example.y"])
	}
}

func TestResolve_StabilityDeprecationConflict(t *testing.T) {
	g := rawGroup("attribute_group.conflict", semconv.GroupAttributeGroup)
	g.Stability = semconv.StabilityStable
	g.Deprecated = &semconv.Deprecation{Kind: semconv.DeprecationUncategorized, Note: "no longer used"}

	files := []loader.RawFile{{Groups: []semconv.RawGroup{g}}}

	r := New(DefaultOptions())
	_, err := r.Resolve(context.Background(), "test", files, nil)
	if err == nil {
		t.Fatalf("expected a stability/deprecation conflict error")
	}
	ve, ok := err.(*apperror.ValidationErrors)
	if !ok {
		t.Fatalf("expected *apperror.ValidationErrors, got %T", err)
	}
	found := false
	for _, e := range ve.Errors {
		if e.Code == apperror.CodeStabilityConflict {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CodeStabilityConflict among errors, got %v", ve.ErrorMessages())
	}
}

func TestResolve_ExtendsCycleIsReported(t *testing.T) {
	a := rawGroup("attribute_group.a", semconv.GroupAttributeGroup)
	a.Extends = "attribute_group.b"
	b := rawGroup("attribute_group.b", semconv.GroupAttributeGroup)
	b.Extends = "attribute_group.a"

	files := []loader.RawFile{{Groups: []semconv.RawGroup{a, b}}}

	r := New(DefaultOptions())
	_, err := r.Resolve(context.Background(), "test", files, nil)
	if err == nil {
		t.Fatalf("expected an extends-cycle error")
	}
	ve, ok := err.(*apperror.ValidationErrors)
	if !ok {
		t.Fatalf("expected *apperror.ValidationErrors, got %T", err)
	}
	found := false
	for _, e := range ve.Errors {
		if e.Code == apperror.CodeExtendsCycle {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CodeExtendsCycle among errors, got %v", ve.ErrorMessages())
	}
}

func TestResolve_DuplicateGroupID(t *testing.T) {
	g1 := rawGroup("attribute_group.dup", semconv.GroupAttributeGroup)
	g2 := rawGroup("attribute_group.dup", semconv.GroupAttributeGroup)

	files := []loader.RawFile{{Groups: []semconv.RawGroup{g1, g2}}}

	r := New(DefaultOptions())
	_, err := r.Resolve(context.Background(), "test", files, nil)
	if err == nil {
		t.Fatalf("expected a duplicate-group-id error")
	}
	ve, ok := err.(*apperror.ValidationErrors)
	if !ok {
		t.Fatalf("expected *apperror.ValidationErrors, got %T", err)
	}
	found := false
	for _, e := range ve.Errors {
		if e.Code == apperror.CodeDuplicateGroupID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CodeDuplicateGroupID among errors, got %v", ve.ErrorMessages())
	}
}

func TestResolve_UnknownReferenceDoesNotShortCircuitRegistry(t *testing.T) {
	good := rawGroup("attribute_group.good", semconv.GroupAttributeGroup)
	good.Attributes = []semconv.AttrSpecOrRef{
		inlineAttr("example.ok", semconv.TypeString, semconv.RequirementRequired),
	}

	bad := rawGroup("span.broken", semconv.GroupSpan)
	bad.Attributes = []semconv.AttrSpecOrRef{
		refAttr("example.does_not_exist", semconv.RequirementRequired),
	}

	files := []loader.RawFile{{Groups: []semconv.RawGroup{good, bad}}}

	r := New(DefaultOptions())
	schema, err := r.Resolve(context.Background(), "test", files, nil)
	if err == nil {
		t.Fatalf("expected an unknown-reference error")
	}
	if schema == nil {
		t.Fatalf("expected a partially-resolved schema even with errors")
	}
	if schema.Registry.Len() != 2 {
		t.Errorf("expected both groups still present in the registry, got %d", schema.Registry.Len())
	}
	if _, ok := schema.Registry.Get("attribute_group.good"); !ok {
		t.Errorf("expected attribute_group.good to have resolved despite span.broken's bad reference")
	}
}
