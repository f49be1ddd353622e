package schemadiff

import (
	"context"
	"testing"

	"weaver/pkg/loader"
	"weaver/pkg/resolver"
	"weaver/pkg/semconv"
)

func mustResolve(t *testing.T, groups ...semconv.RawGroup) *resolver.ResolvedSchema {
	t.Helper()
	files := []loader.RawFile{{Groups: groups}}
	r := resolver.New(resolver.DefaultOptions())
	schema, err := r.Resolve(context.Background(), "test", files, nil)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	return schema
}

func attrGroup(id semconv.SignalID, attrs ...semconv.AttrSpecOrRef) semconv.RawGroup {
	return semconv.RawGroup{ID: id, Type: semconv.GroupAttributeGroup, Brief: string(id), Attributes: attrs}
}

func req(kind semconv.RequirementLevelKind) *semconv.RequirementLevel {
	return &semconv.RequirementLevel{Kind: kind}
}

func TestDiff_IdenticalSchemasIsEmpty(t *testing.T) {
	g := attrGroup("attribute_group.a", semconv.AttrSpecOrRef{
		ID: "net.peer.port", Brief: "port", Type: &semconv.AttributeType{Primitive: semconv.TypeInt}, Requirement: req(semconv.RequirementRecommended),
	})
	schema := mustResolve(t, g)

	changes := Diff(context.Background(), schema, schema)
	if !changes.IsEmpty() {
		t.Fatalf("expected Diff(S,S) to be empty, got %+v", changes.Registry)
	}
}

func TestDiff_AddedAndRemoved(t *testing.T) {
	base := mustResolve(t, attrGroup("attribute_group.a", semconv.AttrSpecOrRef{
		ID: "example.old", Brief: "old", Type: &semconv.AttributeType{Primitive: semconv.TypeString}, Requirement: req(semconv.RequirementRecommended),
	}))
	head := mustResolve(t, attrGroup("attribute_group.a", semconv.AttrSpecOrRef{
		ID: "example.new", Brief: "new", Type: &semconv.AttributeType{Primitive: semconv.TypeString}, Requirement: req(semconv.RequirementRecommended),
	}))

	changes := Diff(context.Background(), base, head)
	if len(changes.Registry.AttributeChanges) != 2 {
		t.Fatalf("expected 2 attribute changes, got %+v", changes.Registry.AttributeChanges)
	}
	var sawAdded, sawRemoved bool
	for _, c := range changes.Registry.AttributeChanges {
		switch {
		case c.Kind == ChangeAdded && c.ID == "example.new":
			sawAdded = true
		case c.Kind == ChangeRemoved && c.ID == "example.old":
			sawRemoved = true
		}
	}
	if !sawAdded || !sawRemoved {
		t.Errorf("expected added(example.new) and removed(example.old), got %+v", changes.Registry.AttributeChanges)
	}
}

func TestDiff_RenameCollapse(t *testing.T) {
	base := mustResolve(t, attrGroup("attribute_group.a", semconv.AttrSpecOrRef{
		ID: "net.peer.port", Brief: "port", Type: &semconv.AttributeType{Primitive: semconv.TypeInt}, Requirement: req(semconv.RequirementRecommended),
	}))

	renamed := semconv.AttrSpecOrRef{
		ID: "net.peer.port", Brief: "port", Type: &semconv.AttributeType{Primitive: semconv.TypeInt}, Requirement: req(semconv.RequirementRecommended),
		Deprecated: &semconv.Deprecation{Kind: semconv.DeprecationRenamed, NewName: "network.peer.port"},
	}
	added := semconv.AttrSpecOrRef{
		ID: "network.peer.port", Brief: "port", Type: &semconv.AttributeType{Primitive: semconv.TypeInt}, Requirement: req(semconv.RequirementRecommended),
	}
	head := mustResolve(t, attrGroup("attribute_group.a", renamed, added))

	changes := Diff(context.Background(), base, head)
	if len(changes.Registry.AttributeChanges) != 1 {
		t.Fatalf("expected exactly 1 collapsed rename change, got %+v", changes.Registry.AttributeChanges)
	}
	c := changes.Registry.AttributeChanges[0]
	if c.Kind != ChangeRenamed || c.OldID != "net.peer.port" || c.NewID != "network.peer.port" {
		t.Errorf("expected renamed(net.peer.port, network.peer.port), got %+v", c)
	}
}

func TestDiff_Modified(t *testing.T) {
	base := mustResolve(t, attrGroup("attribute_group.a", semconv.AttrSpecOrRef{
		ID: "example.attr", Brief: "x", Type: &semconv.AttributeType{Primitive: semconv.TypeString}, Requirement: req(semconv.RequirementRecommended),
	}))
	head := mustResolve(t, attrGroup("attribute_group.a", semconv.AttrSpecOrRef{
		ID: "example.attr", Brief: "x", Type: &semconv.AttributeType{Primitive: semconv.TypeString}, Requirement: req(semconv.RequirementRequired),
	}))

	changes := Diff(context.Background(), base, head)
	if len(changes.Registry.AttributeChanges) != 1 {
		t.Fatalf("expected 1 modified change, got %+v", changes.Registry.AttributeChanges)
	}
	c := changes.Registry.AttributeChanges[0]
	if c.Kind != ChangeModified {
		t.Fatalf("expected ChangeModified, got %v", c.Kind)
	}
	fc, ok := c.Diff["requirement_level"]
	if !ok {
		t.Fatalf("expected requirement_level in diff, got %+v", c.Diff)
	}
	if fc.Old != string(semconv.RequirementRecommended) || fc.New != string(semconv.RequirementRequired) {
		t.Errorf("unexpected field change: %+v", fc)
	}
}
