package resolver

import (
	"context"
	"fmt"
	"sort"

	"weaver/pkg/apperror"
	"weaver/pkg/catalog"
	"weaver/pkg/loader"
	"weaver/pkg/semconv"
	"weaver/pkg/telemetry"
)

// Resolver runs the six-phase resolution algorithm (§4.3).
type Resolver struct {
	opts Options
}

// New returns a Resolver configured with opts.
func New(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Resolve turns a registry's raw files plus its already-resolved
// dependencies into a ResolvedSchema. Resolution errors are collected, not
// short-circuited: the returned schema is always populated with whatever
// could be resolved, and a non-nil *apperror.ValidationErrors is returned
// alongside it when any phase produced errors (§4.3, §7's "propagation
// policy").
func (r *Resolver) Resolve(ctx context.Context, registryID string, files []loader.RawFile, dependencies []*ResolvedSchema) (*ResolvedSchema, error) {
	return telemetry.Traced(ctx, "resolver.resolve", nil, func(ctx context.Context) (*ResolvedSchema, error) {
		schema, ve := r.resolve(registryID, files, dependencies)

		attributeCount := 0
		for _, g := range schema.Registry.Groups() {
			attributeCount += len(g.Attributes)
		}
		telemetry.SetAttributes(ctx, telemetry.ResolveAttributes(schema.Registry.Len(), attributeCount, schema.Catalog.Len())...)

		if ve == nil {
			return schema, nil
		}
		if ve.HasErrors() || (r.opts.WarningsAsErrors && ve.HasWarnings()) {
			return schema, ve
		}
		return schema, nil
	})
}

func (r *Resolver) resolve(registryID string, files []loader.RawFile, dependencies []*ResolvedSchema) (*ResolvedSchema, *apperror.ValidationErrors) {
	ve := apperror.NewValidationErrors()

	// Phase 1: register groups by id; collect inline attribute definitions.
	raw := make(map[semconv.SignalID]*semconv.RawGroup)
	definitions := make(map[semconv.SignalID]semconv.AttrSpecOrRef)

	for _, f := range files {
		for i := range f.Groups {
			g := f.Groups[i]
			if existing, exists := raw[g.ID]; exists {
				ve.Add(apperror.NewWithProvenance(apperror.CodeDuplicateGroupID,
					fmt.Sprintf("duplicate group id %q", g.ID), registryID, g.Provenance.Path).
					WithDetails("first_path", existing.Provenance.Path))
				continue
			}
			gCopy := g
			raw[g.ID] = &gCopy
			for _, a := range g.Attributes {
				if !a.IsRef() {
					definitions[a.ID] = a
				}
			}
		}
	}

	ids := make([]semconv.SignalID, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Phase 2: expand extends.
	extendsOrder, err := kahnToposort(ids, func(id semconv.SignalID) []semconv.SignalID {
		if g := raw[id]; g.Extends != "" {
			return []semconv.SignalID{g.Extends}
		}
		return nil
	}, apperror.CodeExtendsCycle)
	if err != nil {
		ve.Add(err.(*apperror.Error).WithProvenance(registryID, ""))
		extendsOrder = ids
	}

	stage2 := make(map[semconv.SignalID]*semconv.RawGroup, len(raw))
	for _, id := range extendsOrder {
		g, ok := raw[id]
		if !ok {
			continue
		}
		if g.Extends == "" {
			cp := *g
			stage2[id] = &cp
			continue
		}
		parent, ok := stage2[g.Extends]
		if !ok {
			ve.Add(apperror.NewWithProvenance(apperror.CodeUnresolvedDependency,
				fmt.Sprintf("group %q extends unknown group %q", id, g.Extends), registryID, g.Provenance.Path))
			cp := *g
			stage2[id] = &cp
			continue
		}
		merged := mergeExtends(parent, g)
		stage2[id] = &merged
	}

	// Phase 3: resolve include.
	includeOrder, err := kahnToposort(ids, func(id semconv.SignalID) []semconv.SignalID {
		if g, ok := stage2[id]; ok {
			return g.Include
		}
		return nil
	}, apperror.CodeIncludeCycle)
	if err != nil {
		ve.Add(err.(*apperror.Error).WithProvenance(registryID, ""))
		includeOrder = ids
	}

	stage3 := make(map[semconv.SignalID]*semconv.RawGroup, len(stage2))
	for _, id := range includeOrder {
		g, ok := stage2[id]
		if !ok {
			continue
		}
		merged := *g
		for _, incID := range g.Include {
			included, ok := stage3[incID]
			if !ok {
				ve.Add(apperror.NewWithProvenance(apperror.CodeUnresolvedDependency,
					fmt.Sprintf("group %q includes unknown group %q", id, incID), registryID, g.Provenance.Path))
				continue
			}
			merged = mergeInclude(merged, included)
		}
		stage3[id] = &merged
	}

	// Phases 4-6: resolve attribute refs, normalize stability, record lineage.
	cat := catalog.New()
	registry := NewRegistry()

	for _, id := range ids {
		g, ok := stage3[id]
		if !ok {
			continue
		}

		attrs, lineage := r.resolveGroupAttributes(g, definitions, dependencies, cat, ve, registryID)

		var body *GroupAttribute
		if g.Body != nil {
			if b, ok := r.resolveSingleAttribute(*g.Body, g, definitions, dependencies, cat, ve, registryID); ok {
				body = b
			}
		}

		stability, deprecated, stabErr := normalizeStability(g.Stability, g.Deprecated)
		if stabErr != nil {
			ve.Add(stabErr.WithProvenance(registryID, g.Provenance.Path))
		}

		registry.add(&ResolvedGroup{
			ID:                 g.ID,
			Type:               g.Type,
			Brief:              g.Brief,
			Note:               g.Note,
			Prefix:             g.Prefix,
			Extends:            g.Extends,
			Stability:          stability,
			Deprecated:         deprecated,
			Constraints:        g.Constraints,
			Attributes:         attrs,
			SpanKind:           g.SpanKind,
			Events:             g.Events,
			MetricName:         g.MetricName,
			Instrument:         g.Instrument,
			Unit:               g.Unit,
			Name:               g.Name,
			Body:               body,
			Annotations:        g.Annotations,
			EntityAssociations: g.EntityAssociations,
			Lineage:            &Lineage{SourceGroup: id, PerAttribute: lineage},
			Provenance:         g.Provenance,
		})
	}

	cat.Seal()

	schema := &ResolvedSchema{
		FileFormat:   "1.0.0",
		RegistryID:   registryID,
		Registry:     registry,
		Catalog:      cat,
		Dependencies: dependencies,
	}

	if ve.HasErrors() || ve.HasWarnings() {
		return schema, ve
	}
	return schema, nil
}

// resolveGroupAttributes resolves every attribute spec/ref of one group into
// a GroupAttribute, interning the effective attribute into cat.
func (r *Resolver) resolveGroupAttributes(
	g *semconv.RawGroup,
	definitions map[semconv.SignalID]semconv.AttrSpecOrRef,
	dependencies []*ResolvedSchema,
	cat *catalog.Catalog,
	ve *apperror.ValidationErrors,
	registryID string,
) ([]GroupAttribute, map[semconv.SignalID]semconv.SignalID) {
	var out []GroupAttribute
	lineage := make(map[semconv.SignalID]semconv.SignalID)

	for _, spec := range g.Attributes {
		if ga, ok := r.resolveSingleAttribute(spec, g, definitions, dependencies, cat, ve, registryID); ok {
			out = append(out, *ga)
			lineage[attrKey(spec)] = g.ID
		}
	}

	return out, lineage
}

// resolveSingleAttribute resolves and interns one spec/ref entry, reporting
// an unknown-reference or catalog-redefinition error via ve on failure.
func (r *Resolver) resolveSingleAttribute(
	spec semconv.AttrSpecOrRef,
	g *semconv.RawGroup,
	definitions map[semconv.SignalID]semconv.AttrSpecOrRef,
	dependencies []*ResolvedSchema,
	cat *catalog.Catalog,
	ve *apperror.ValidationErrors,
	registryID string,
) (*GroupAttribute, bool) {
	attr, _, ok := resolveAttribute(spec, definitions, dependencies)
	if !ok {
		ve.Add(apperror.NewWithProvenance(apperror.CodeUnknownReference,
			fmt.Sprintf("group %q references unknown attribute %q", g.ID, attrKey(spec)), registryID, g.Provenance.Path))
		return nil, false
	}

	ref, err := cat.Intern(attr)
	if err != nil {
		if appErr, ok := err.(*apperror.Error); ok {
			ve.Add(appErr)
		}
		return nil, false
	}

	requirement := attr.Requirement
	if spec.Requirement != nil {
		requirement = *spec.Requirement
	}

	return &GroupAttribute{Ref: ref, Requirement: requirement}, true
}

// resolveAttribute builds the effective semconv.Attribute for one spec/ref
// entry, applying the precedence rule "ref-site override > local-group
// default > parent (extends) > dependency definition" (§4.3). It also
// returns the attribute's own id (the inline id or the ref target).
func resolveAttribute(spec semconv.AttrSpecOrRef, definitions map[semconv.SignalID]semconv.AttrSpecOrRef, dependencies []*ResolvedSchema) (semconv.Attribute, semconv.SignalID, bool) {
	if !spec.IsRef() {
		attr := semconv.Attribute{
			Key:              spec.ID,
			Brief:            spec.Brief,
			Note:             spec.Note,
			Examples:         spec.Examples,
			Tag:              spec.Tag,
			SamplingRelevant: spec.SamplingRelevant,
			Prefix:           spec.Prefix,
			Requirement:      requirementOrDefault(spec.Requirement),
			Stability:        spec.Stability,
			Deprecated:       spec.Deprecated,
			Provenance:       spec.Provenance,
		}
		if spec.Type != nil {
			attr.Type = *spec.Type
		}
		return attr, spec.ID, true
	}

	if def, ok := definitions[spec.Ref]; ok {
		base, _, found := resolveAttribute(def, definitions, dependencies)
		if found {
			return overlayAttribute(base, spec), spec.Ref, true
		}
	}

	for _, dep := range dependencies {
		if dep == nil || dep.Catalog == nil {
			continue
		}
		if ref, ok := dep.Catalog.Lookup(spec.Ref); ok {
			base, ok := dep.Catalog.Get(ref)
			if ok {
				return overlayAttribute(*base, spec), spec.Ref, true
			}
		}
	}

	return semconv.Attribute{}, "", false
}

// overlayAttribute applies a ref-site override onto a base attribute
// definition. Fields left unset on spec fall back to base's value.
func overlayAttribute(base semconv.Attribute, spec semconv.AttrSpecOrRef) semconv.Attribute {
	out := base
	if spec.Brief != "" {
		out.Brief = spec.Brief
	}
	if spec.Note != "" {
		out.Note = spec.Note
	}
	if len(spec.Examples) > 0 {
		out.Examples = spec.Examples
	}
	if spec.Stability != "" {
		out.Stability = spec.Stability
	}
	if spec.Deprecated != nil {
		out.Deprecated = spec.Deprecated
	}
	if spec.SamplingRelevant != nil {
		out.SamplingRelevant = spec.SamplingRelevant
	}
	if spec.Tag != "" {
		out.Tag = spec.Tag
	}
	if spec.Requirement != nil {
		out.Requirement = *spec.Requirement
	}
	out.Provenance = spec.Provenance
	return out
}

func requirementOrDefault(r *semconv.RequirementLevel) semconv.RequirementLevel {
	if r == nil {
		return semconv.DefaultRequirementLevel()
	}
	return *r
}

// normalizeStability implements §4.3 phase 5: deprecated-without-stability
// defaults to stability=deprecated; a mismatch between the two is an error.
func normalizeStability(stability semconv.Stability, deprecated *semconv.Deprecation) (semconv.Stability, *semconv.Deprecation, *apperror.Error) {
	if deprecated != nil && stability == "" {
		return semconv.StabilityDeprecated, deprecated, nil
	}
	if deprecated != nil && stability != semconv.StabilityDeprecated {
		return stability, deprecated, apperror.New(apperror.CodeStabilityConflict,
			"stability and deprecated disagree: stability must be \"deprecated\"")
	}
	return stability, deprecated, nil
}
