// Package view implements the template-facing view (C8): it dereferences
// every attribute reference in a Resolved Schema into an inlined copy, so
// template engines (or any other consumer that wants a self-contained,
// serializable registry) never have to chase a Catalog indirection,
// grounded in weaver_forge/src/registry.rs's TemplateRegistry.
package view

import (
	"sort"

	"weaver/pkg/apperror"
	"weaver/pkg/resolver"
	"weaver/pkg/semconv"
)

// Attribute is a fully inlined attribute: the catalog entry plus the
// requirement level in force at this particular group/use site (mirrors
// weaver_forge's flattening of weaver_resolved_schema::attribute::Attribute
// for template consumption).
type Attribute struct {
	semconv.Attribute
	Requirement semconv.RequirementLevel
}

// Group is a resolved group with every attribute reference dereferenced,
// translated from weaver_forge::registry::TemplateGroup.
type Group struct {
	ID         semconv.SignalID
	Type       semconv.GroupType
	Brief      string
	Note       string
	Prefix     string
	Extends    semconv.SignalID
	Stability  semconv.Stability
	Deprecated *semconv.Deprecation

	Constraints []semconv.Constraint
	Attributes  []Attribute

	SpanKind semconv.SpanKind
	Events   []string

	MetricName semconv.SignalID
	Instrument semconv.InstrumentKind
	Unit       string

	Name string
	Body *Attribute

	Lineage *resolver.Lineage
}

// View is the flattened, template-facing form of a Resolved Schema,
// translated from weaver_forge::registry::TemplateRegistry.
type View struct {
	RegistryURL string
	SchemaURL   string
	Groups      []Group

	// GroupsByType indexes Groups by their GroupType, in the same order
	// they appear in Groups, for template helpers that iterate "all
	// metrics" / "all spans" / etc. without re-filtering each time.
	GroupsByType map[semconv.GroupType][]Group
}

// Flatten dereferences every AttributeRef in schema's resolved registry
// into an inlined view.Attribute, grounded in
// weaver_forge::registry::TemplateRegistry::try_from_resolved_registry.
// It returns a compound apperror (CodeNotFound) listing every dangling
// reference rather than failing on the first one, matching the source's
// "collect every AttributeNotFound, then return them all" behavior.
func Flatten(schema *resolver.ResolvedSchema) (*View, error) {
	var danglingRefs []string

	groups := make([]Group, 0, schema.Registry.Len())
	for _, g := range schema.Registry.Groups() {
		vg := Group{
			ID:          g.ID,
			Type:        g.Type,
			Brief:       g.Brief,
			Note:        g.Note,
			Prefix:      g.Prefix,
			Extends:     g.Extends,
			Stability:   g.Stability,
			Deprecated:  g.Deprecated,
			Constraints: g.Constraints,
			SpanKind:    g.SpanKind,
			Events:      g.Events,
			MetricName:  g.MetricName,
			Instrument:  g.Instrument,
			Unit:        g.Unit,
			Name:        g.Name,
			Lineage:     g.Lineage,
		}

		for _, ga := range g.Attributes {
			attr, ok := schema.Catalog.Get(ga.Ref)
			if !ok {
				danglingRefs = append(danglingRefs, string(g.ID))
				continue
			}
			vg.Attributes = append(vg.Attributes, Attribute{Attribute: *attr, Requirement: ga.Requirement})
		}

		if g.Body != nil {
			if attr, ok := schema.Catalog.Get(g.Body.Ref); ok {
				vg.Body = &Attribute{Attribute: *attr, Requirement: g.Body.Requirement}
			} else {
				danglingRefs = append(danglingRefs, string(g.ID)+" (event body)")
			}
		}

		groups = append(groups, vg)
	}

	if len(danglingRefs) > 0 {
		err := apperror.New(apperror.CodeNotFound, "view: dangling attribute reference(s) while flattening resolved registry")
		err.Details["groups"] = danglingRefs
		return nil, err
	}

	v := &View{
		SchemaURL:    schema.SchemaURL,
		Groups:       groups,
		GroupsByType: make(map[semconv.GroupType][]Group),
	}
	for _, g := range groups {
		v.GroupsByType[g.Type] = append(v.GroupsByType[g.Type], g)
	}
	return v, nil
}

// SortedAttributeKeys returns every attribute key appearing anywhere in v,
// deduplicated and sorted, for template helpers and tests that want a
// deterministic full attribute listing without walking Groups themselves.
func SortedAttributeKeys(v *View) []string {
	seen := make(map[semconv.SignalID]struct{})
	for _, g := range v.Groups {
		for _, a := range g.Attributes {
			seen[a.Key] = struct{}{}
		}
		if g.Body != nil {
			seen[g.Body.Key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}
