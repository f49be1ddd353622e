package resolver

import "weaver/pkg/semconv"

// attrKey returns the identity an AttrSpecOrRef is merged/overridden by:
// its ref target if it's a reference, else its own declared id.
func attrKey(a semconv.AttrSpecOrRef) semconv.SignalID {
	if a.IsRef() {
		return a.Ref
	}
	return a.ID
}

// mergeAttributeLists concatenates base and overlay, such that an entry in
// overlay sharing a key with one in base replaces it in place (preserving
// base's position), and any overlay entry with a new key is appended at the
// end. This realizes §4.3's "inherit parent's ... attribute list, then
// overlay the child's declarations" for both the extends and include merge
// steps.
func mergeAttributeLists(base, overlay []semconv.AttrSpecOrRef) []semconv.AttrSpecOrRef {
	merged := make([]semconv.AttrSpecOrRef, len(base))
	copy(merged, base)

	index := make(map[semconv.SignalID]int, len(base))
	for i, a := range base {
		index[attrKey(a)] = i
	}

	for _, a := range overlay {
		key := attrKey(a)
		if i, ok := index[key]; ok {
			merged[i] = a
			continue
		}
		index[key] = len(merged)
		merged = append(merged, a)
	}
	return merged
}

// mergeConstraints appends overlay's constraints after base's; constraints
// have no identity to dedup by, they simply accumulate (§4.3).
func mergeConstraints(base, overlay []semconv.Constraint) []semconv.Constraint {
	if len(overlay) == 0 {
		return base
	}
	merged := make([]semconv.Constraint, 0, len(base)+len(overlay))
	merged = append(merged, base...)
	merged = append(merged, overlay...)
	return merged
}

// mergeExtends produces the merged group for `child extends parent`: child
// inherits parent's prefix, constraints and attribute list, then overlays
// its own declarations (§4.3 phase 2). parent is assumed already fully
// merged (topological order guarantees this).
func mergeExtends(parent, child *semconv.RawGroup) semconv.RawGroup {
	merged := *child

	if merged.Prefix == "" {
		merged.Prefix = parent.Prefix
	}
	if merged.Brief == "" {
		merged.Brief = parent.Brief
	}
	if merged.Note == "" {
		merged.Note = parent.Note
	}
	if merged.Stability == "" {
		merged.Stability = parent.Stability
	}
	if merged.Deprecated == nil {
		merged.Deprecated = parent.Deprecated
	}
	if merged.SpanKind == "" {
		merged.SpanKind = parent.SpanKind
	}
	if merged.Instrument == "" {
		merged.Instrument = parent.Instrument
	}
	if merged.Unit == "" {
		merged.Unit = parent.Unit
	}

	merged.Constraints = mergeConstraints(parent.Constraints, child.Constraints)
	merged.Attributes = mergeAttributeLists(parent.Attributes, child.Attributes)

	return merged
}

// mergeInclude folds an included group's constraints and attributes into
// dst, with dst's own declarations taking precedence (§4.3 phase 3: "same
// shape as extends, but semantically a merge of constraints and attributes
// only — no identity inheritance").
func mergeInclude(dst semconv.RawGroup, included *semconv.RawGroup) semconv.RawGroup {
	dst.Constraints = mergeConstraints(included.Constraints, dst.Constraints)
	dst.Attributes = mergeAttributeLists(included.Attributes, dst.Attributes)
	return dst
}
