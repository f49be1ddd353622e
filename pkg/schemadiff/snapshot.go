package schemadiff

import (
	"sort"
	"strings"

	"weaver/pkg/resolver"
	"weaver/pkg/semconv"
)

// itemSnapshot is the design-level projection of one signal (attribute or
// group) used for comparison: identity, its deprecation record, and a flat
// map of the "only fields that changed at design level" §4.4 names (type,
// unit, instrument, stability, requirement-level, enum member set).
type itemSnapshot struct {
	Deprecated *semconv.Deprecation
	Fields     map[string]string
}

func attributeSnapshot(a semconv.Attribute) itemSnapshot {
	fields := map[string]string{
		"type":              string(a.Type.Primitive),
		"requirement_level": string(a.Requirement.Kind),
		"stability":         string(a.Stability),
	}
	if a.Type.Template {
		fields["template"] = "true"
	}
	if a.Type.Enum != nil {
		fields["enum_members"] = enumSignature(a.Type.Enum)
	}
	return itemSnapshot{Deprecated: a.Deprecated, Fields: fields}
}

func groupSnapshot(g *resolver.ResolvedGroup) itemSnapshot {
	fields := map[string]string{
		"stability": string(g.Stability),
	}
	switch g.Type {
	case semconv.GroupMetric:
		fields["instrument"] = string(g.Instrument)
		fields["unit"] = g.Unit
	case semconv.GroupSpan:
		fields["span_kind"] = string(g.SpanKind)
	case semconv.GroupEvent:
		fields["name"] = g.Name
	}
	return itemSnapshot{Deprecated: g.Deprecated, Fields: fields}
}

func enumSignature(e *semconv.EnumSpec) string {
	members := make([]string, len(e.Members))
	for i, m := range e.Members {
		members[i] = m.ID + "=" + m.Value.String()
	}
	sort.Strings(members)
	return strings.Join(members, ",")
}

func deprecationReason(d *semconv.Deprecation) string {
	if d == nil {
		return ""
	}
	switch d.Kind {
	case semconv.DeprecationRenamed:
		return "renamed to " + string(d.NewName)
	case semconv.DeprecationObsoleted:
		return "obsoleted"
	default:
		return d.Note
	}
}

// snapshotDiff returns the set of design-level fields whose value differs
// between b and h.
func snapshotDiff(b, h itemSnapshot) map[string]FieldChange {
	diff := make(map[string]FieldChange)
	seen := make(map[string]bool, len(b.Fields)+len(h.Fields))
	for k := range b.Fields {
		seen[k] = true
	}
	for k := range h.Fields {
		seen[k] = true
	}
	for k := range seen {
		if b.Fields[k] != h.Fields[k] {
			diff[k] = FieldChange{Old: b.Fields[k], New: h.Fields[k]}
		}
	}
	return diff
}

// diffSet compares two id-keyed snapshot sets and returns a deterministic,
// id-ordered list of SchemaItemChange, applying the rename-collapse rule
// (§4.4, scenario 6): if id's head entry is deprecated::renamed(new) and new
// is newly added in head, emit renamed(id,new) instead of modified(id) plus
// added(new).
func diffSet(base, head map[semconv.SignalID]itemSnapshot) []SchemaItemChange {
	renames := make(map[semconv.SignalID]semconv.SignalID) // old -> new
	renamedTargets := make(map[semconv.SignalID]bool)

	for id, b := range base {
		h, ok := head[id]
		if !ok {
			continue
		}
		if h.Deprecated == nil || h.Deprecated.Kind != semconv.DeprecationRenamed {
			continue
		}
		newID := h.Deprecated.NewName
		if newID == "" {
			continue
		}
		if _, newInBase := base[newID]; newInBase {
			continue // not newly added, not a rename for diff purposes
		}
		if _, newInHead := head[newID]; !newInHead {
			continue
		}
		_ = b
		renames[id] = newID
		renamedTargets[newID] = true
	}

	var changes []SchemaItemChange

	for old, new := range renames {
		changes = append(changes, SchemaItemChange{Kind: ChangeRenamed, OldID: old, NewID: new})
	}

	for id, h := range head {
		if renamedTargets[id] {
			continue
		}
		if _, ok := base[id]; ok {
			continue
		}
		_ = h
		changes = append(changes, SchemaItemChange{Kind: ChangeAdded, ID: id})
	}

	for id := range base {
		if _, isRenamedOld := renames[id]; isRenamedOld {
			continue
		}
		if _, ok := head[id]; ok {
			continue
		}
		changes = append(changes, SchemaItemChange{Kind: ChangeRemoved, ID: id})
	}

	for id, b := range base {
		if _, isRenamedOld := renames[id]; isRenamedOld {
			continue
		}
		h, ok := head[id]
		if !ok {
			continue
		}
		if h.Deprecated != nil && b.Deprecated == nil {
			changes = append(changes, SchemaItemChange{Kind: ChangeDeprecated, ID: id, Reason: deprecationReason(h.Deprecated)})
			continue
		}
		diff := snapshotDiff(b, h)
		if len(diff) == 0 {
			continue
		}
		changes = append(changes, SchemaItemChange{Kind: ChangeModified, ID: id, Diff: diff})
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].sortKey() < changes[j].sortKey() })
	return changes
}
