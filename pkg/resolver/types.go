// Package resolver implements the registry resolver (C4): the six-phase
// algorithm that walks raw groups, expands extends/include, resolves
// attribute references against the catalog, normalizes stability, and
// records lineage, producing a self-contained Resolved Schema.
package resolver

import (
	"weaver/pkg/catalog"
	"weaver/pkg/semconv"
)

// GroupAttribute is one entry of a resolved group's attribute list: the
// catalog reference plus the requirement level in force at this particular
// use site, since the same attribute can be required on one signal and
// merely recommended on another (§4.3's reference-override precedence).
// This is a deliberate widening of the raw `AttributeRef` slice the data
// model names in spec.md §3 — see DESIGN.md's Open Question entry for why
// per-use overrides can't live on the shared catalog entry.
type GroupAttribute struct {
	Ref         catalog.AttributeRef
	Requirement semconv.RequirementLevel
}

// Lineage records, for a resolved group, the group it was resolved from
// (§4.3 phase 6). PerAttribute maps each resolved attribute id to that same
// group id; the extends parent or include source that contributed an
// attribute is not recorded.
type Lineage struct {
	SourceGroup  semconv.SignalID
	PerAttribute map[semconv.SignalID]semconv.SignalID
}

// ResolvedGroup is a fully resolved group: attribute references instead of
// specs, inherited fields already overlaid, stability normalized.
type ResolvedGroup struct {
	ID         semconv.SignalID
	Type       semconv.GroupType
	Brief      string
	Note       string
	Prefix     string
	Extends    semconv.SignalID
	Stability  semconv.Stability
	Deprecated *semconv.Deprecation

	Constraints []semconv.Constraint
	Attributes  []GroupAttribute

	SpanKind semconv.SpanKind
	Events   []string

	MetricName semconv.SignalID
	Instrument semconv.InstrumentKind
	Unit       string

	Name string
	Body *GroupAttribute

	Annotations        map[string]string
	EntityAssociations []semconv.SignalID

	Lineage    *Lineage
	Provenance semconv.Provenance
}

// Registry is the resolved, ordered collection of every group in one
// resolution run.
type Registry struct {
	byID  map[semconv.SignalID]*ResolvedGroup
	order []semconv.SignalID // insertion order, deterministic
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[semconv.SignalID]*ResolvedGroup)}
}

func (r *Registry) add(g *ResolvedGroup) {
	if _, exists := r.byID[g.ID]; !exists {
		r.order = append(r.order, g.ID)
	}
	r.byID[g.ID] = g
}

// Get looks up a resolved group by id.
func (r *Registry) Get(id semconv.SignalID) (*ResolvedGroup, bool) {
	g, ok := r.byID[id]
	return g, ok
}

// Groups returns every resolved group, in insertion order.
func (r *Registry) Groups() []*ResolvedGroup {
	out := make([]*ResolvedGroup, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// ByType returns every group of the given type, insertion order.
func (r *Registry) ByType(t semconv.GroupType) []*ResolvedGroup {
	var out []*ResolvedGroup
	for _, id := range r.order {
		if g := r.byID[id]; g.Type == t {
			out = append(out, g)
		}
	}
	return out
}

// Len returns the number of resolved groups.
func (r *Registry) Len() int { return len(r.order) }

// ResolvedSchema is the self-contained output of one resolution run: a
// registry of resolved groups plus the attribute catalog they reference
// (§3's "Resolved schema").
type ResolvedSchema struct {
	FileFormat   string
	SchemaURL    string
	RegistryID   string
	Registry     *Registry
	Catalog      *catalog.Catalog
	Resource     *semconv.Resource
	Dependencies []*ResolvedSchema
}
