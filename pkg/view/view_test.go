package view

import (
	"context"
	"testing"

	"weaver/pkg/loader"
	"weaver/pkg/resolver"
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

func mustResolve(t *testing.T, groups ...semconv.RawGroup) *resolver.ResolvedSchema {
	t.Helper()
	r := resolver.New(resolver.DefaultOptions())
	schema, err := r.Resolve(context.Background(), "test", []loader.RawFile{{Groups: groups}}, nil)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	return schema
}

func TestFlatten_InlinesAttributesAndRequirement(t *testing.T) {
	common := rawGroup("attribute_group.http.common", semconv.GroupAttributeGroup)
	common.Attributes = []semconv.AttrSpecOrRef{
		inlineAttr("http.request.method", semconv.TypeString, semconv.RequirementRequired),
	}

	span := rawGroup("span.http.client", semconv.GroupSpan)
	span.SpanKind = semconv.SpanKindClient
	span.Attributes = []semconv.AttrSpecOrRef{
		refAttr("http.request.method", semconv.RequirementRecommended),
	}

	schema := mustResolve(t, common, span)

	v, err := Flatten(schema)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	spans := v.GroupsByType[semconv.GroupSpan]
	if len(spans) != 1 {
		t.Fatalf("expected exactly one span group, got %d", len(spans))
	}
	if len(spans[0].Attributes) != 1 {
		t.Fatalf("expected one inlined attribute, got %d", len(spans[0].Attributes))
	}
	attr := spans[0].Attributes[0]
	if attr.Key != "http.request.method" {
		t.Errorf("expected inlined attribute key http.request.method, got %s", attr.Key)
	}
	if attr.Requirement.Kind != semconv.RequirementRecommended {
		t.Errorf("expected the span's own (recommended) requirement override, not the group's (required), got %s", attr.Requirement.Kind)
	}
}

func TestFlatten_SortedAttributeKeysDeduplicates(t *testing.T) {
	common := rawGroup("attribute_group.net", semconv.GroupAttributeGroup)
	common.Attributes = []semconv.AttrSpecOrRef{
		inlineAttr("net.peer.port", semconv.TypeInt, semconv.RequirementRecommended),
	}
	spanA := rawGroup("span.a", semconv.GroupSpan)
	spanA.SpanKind = semconv.SpanKindClient
	spanA.Attributes = []semconv.AttrSpecOrRef{refAttr("net.peer.port", semconv.RequirementRecommended)}
	spanB := rawGroup("span.b", semconv.GroupSpan)
	spanB.SpanKind = semconv.SpanKindServer
	spanB.Attributes = []semconv.AttrSpecOrRef{refAttr("net.peer.port", semconv.RequirementOptIn)}

	schema := mustResolve(t, common, spanA, spanB)

	v, err := Flatten(schema)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	keys := SortedAttributeKeys(v)
	if len(keys) != 1 || keys[0] != "net.peer.port" {
		t.Fatalf("expected a single deduplicated key, got %+v", keys)
	}
}

func TestFlatten_GroupsByTypeIndexesEveryGroup(t *testing.T) {
	schema := mustResolve(t,
		rawGroup("attribute_group.empty", semconv.GroupAttributeGroup),
		rawGroup("metric.empty", semconv.GroupMetric),
	)

	v, err := Flatten(schema)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if len(v.Groups) != 2 {
		t.Fatalf("expected 2 total groups, got %d", len(v.Groups))
	}
	if len(v.GroupsByType[semconv.GroupAttributeGroup]) != 1 || len(v.GroupsByType[semconv.GroupMetric]) != 1 {
		t.Fatalf("expected one group of each type, got %+v", v.GroupsByType)
	}
}
