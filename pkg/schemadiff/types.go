// Package schemadiff implements the diff engine (C5): comparing two
// Resolved Schemas and producing an ordered, deterministic description of
// what changed, translated from weaver_version's v2 diff model (§4.4).
package schemadiff

import "weaver/pkg/semconv"

// ChangeKind discriminates the variants of SchemaItemChange (§4.4).
type ChangeKind string

const (
	ChangeAdded      ChangeKind = "added"
	ChangeRemoved    ChangeKind = "removed"
	ChangeRenamed    ChangeKind = "renamed"
	ChangeDeprecated ChangeKind = "deprecated"
	ChangeModified   ChangeKind = "modified"
)

// FieldChange is one changed field inside a ChangeModified entry.
type FieldChange struct {
	Old string
	New string
}

// SchemaItemChange is one change to a single signal id (§4.4).
type SchemaItemChange struct {
	Kind ChangeKind

	// ID is the signal id for added/removed/deprecated/modified.
	ID semconv.SignalID

	// OldID/NewID are set for ChangeRenamed only.
	OldID semconv.SignalID
	NewID semconv.SignalID

	// Reason is set for ChangeDeprecated: the deprecation's description.
	Reason string

	// Diff is set for ChangeModified: field name to before/after value.
	Diff map[string]FieldChange
}

// sortKey is the id a change is ordered by (§4.4's "output lists are ordered
// by id"): the renamed variant sorts by its old id, every other variant by
// its own id.
func (c SchemaItemChange) sortKey() semconv.SignalID {
	if c.Kind == ChangeRenamed {
		return c.OldID
	}
	return c.ID
}

// RegistryChanges holds one SchemaItemChange list per registry item kind,
// mirroring weaver_version::v2::RegistryChanges field-for-field.
type RegistryChanges struct {
	AttributeChanges      []SchemaItemChange
	AttributeGroupChanges []SchemaItemChange
	EntityChanges         []SchemaItemChange
	EventChanges          []SchemaItemChange
	MetricChanges         []SchemaItemChange
	SpanChanges           []SchemaItemChange
}

// IsEmpty reports whether no change was recorded in any category.
func (r RegistryChanges) IsEmpty() bool {
	return len(r.AttributeChanges) == 0 &&
		len(r.AttributeGroupChanges) == 0 &&
		len(r.EntityChanges) == 0 &&
		len(r.EventChanges) == 0 &&
		len(r.MetricChanges) == 0 &&
		len(r.SpanChanges) == 0
}

// SchemaChanges is the top-level diff result (§3, §4.4).
type SchemaChanges struct {
	Registry RegistryChanges
}

// IsEmpty reports whether base and head were identical for diff purposes.
func (s SchemaChanges) IsEmpty() bool {
	return s.Registry.IsEmpty()
}

// Total returns the total number of changes across every category, for
// telemetry/logging.
func (s SchemaChanges) Total() int {
	return len(s.Registry.AttributeChanges) + len(s.Registry.AttributeGroupChanges) +
		len(s.Registry.EntityChanges) + len(s.Registry.EventChanges) +
		len(s.Registry.MetricChanges) + len(s.Registry.SpanChanges)
}
