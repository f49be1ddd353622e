package schemadiff

import (
	"context"

	"weaver/pkg/catalog"
	"weaver/pkg/resolver"
	"weaver/pkg/semconv"
	"weaver/pkg/telemetry"
)

// Diff compares base against head and returns the SchemaChanges describing
// every add/remove/rename/deprecate/modify across attributes and every
// group kind (§4.4). Diff never fails: an empty SchemaChanges is returned
// for identical schemas (Diff(S,S) = empty, per §8's testable property).
func Diff(ctx context.Context, base, head *resolver.ResolvedSchema) *SchemaChanges {
	ctx, span := telemetry.StartSpan(ctx, "schemadiff.diff")
	defer span.End()

	changes := &SchemaChanges{
		Registry: RegistryChanges{
			AttributeChanges:      diffAttributes(base, head),
			AttributeGroupChanges: diffGroups(base, head, semconv.GroupAttributeGroup),
			EntityChanges:         diffGroups(base, head, semconv.GroupEntity),
			EventChanges:          diffGroups(base, head, semconv.GroupEvent),
			MetricChanges:         diffGroups(base, head, semconv.GroupMetric),
			SpanChanges:           diffGroups(base, head, semconv.GroupSpan),
		},
	}

	added, removed, changed := countChanges(changes)
	telemetry.SetAttributes(ctx, telemetry.DiffAttributes(added, removed, changed)...)

	return changes
}

func countChanges(c *SchemaChanges) (added, removed, changed int) {
	for _, list := range [][]SchemaItemChange{
		c.Registry.AttributeChanges, c.Registry.AttributeGroupChanges,
		c.Registry.EntityChanges, c.Registry.EventChanges,
		c.Registry.MetricChanges, c.Registry.SpanChanges,
	} {
		for _, change := range list {
			switch change.Kind {
			case ChangeAdded:
				added++
			case ChangeRemoved:
				removed++
			default:
				changed++
			}
		}
	}
	return added, removed, changed
}

func diffAttributes(base, head *resolver.ResolvedSchema) []SchemaItemChange {
	return diffSet(catalogSnapshots(base.Catalog), catalogSnapshots(head.Catalog))
}

func catalogSnapshots(cat *catalog.Catalog) map[semconv.SignalID]itemSnapshot {
	out := make(map[semconv.SignalID]itemSnapshot)
	if cat == nil {
		return out
	}
	for _, a := range cat.All() {
		out[a.Key] = attributeSnapshot(a)
	}
	return out
}

func diffGroups(base, head *resolver.ResolvedSchema, groupType semconv.GroupType) []SchemaItemChange {
	return diffSet(groupSnapshots(base, groupType), groupSnapshots(head, groupType))
}

func groupSnapshots(schema *resolver.ResolvedSchema, groupType semconv.GroupType) map[semconv.SignalID]itemSnapshot {
	out := make(map[semconv.SignalID]itemSnapshot)
	if schema == nil || schema.Registry == nil {
		return out
	}
	for _, g := range schema.Registry.ByType(groupType) {
		out[g.ID] = groupSnapshot(g)
	}
	return out
}
