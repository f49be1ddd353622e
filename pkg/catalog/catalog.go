// Package catalog implements the attribute catalog (C3): a deduplicating
// interner that assigns a stable index to every distinct attribute produced
// during resolution, preserving first-definition provenance (§4.2).
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"weaver/pkg/apperror"
	"weaver/pkg/semconv"
)

// AttributeRef is an opaque index into a Catalog. Equality is by index;
// ordering is stable within a single resolution run (§3).
type AttributeRef uint32

// Catalog is an append-only (during resolution) interner mapping attribute
// keys to AttributeRefs. Once resolution finishes it is read-only and safe
// for concurrent readers without synchronization (§5); the mutex here only
// guards the build phase.
type Catalog struct {
	mu         sync.RWMutex
	attributes []semconv.Attribute
	byKey      map[semconv.SignalID]AttributeRef
	sealed     bool
}

// New returns an empty catalog ready for interning.
func New() *Catalog {
	return &Catalog{
		byKey: make(map[semconv.SignalID]AttributeRef),
	}
}

// Intern assigns attr a stable AttributeRef. If an attribute with the same
// key was interned earlier, the two definitions must be structurally
// equivalent (§4.2); otherwise a CodeAttributeRedefinition error is
// returned, carrying both provenances. If attr is an enum attribute, its
// members are validated first (invariants 5 and 6, §3/§8): member ids must
// be unique within the enum, and every member's value must share the
// enum's backing primitive type, inferred from its first member.
func (c *Catalog) Intern(attr semconv.Attribute) (AttributeRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sealed {
		return 0, apperror.New(apperror.CodeInternal, "catalog is sealed and cannot accept new attributes")
	}

	if attr.Type.Enum != nil {
		if err := validateEnum(attr.Key, attr.Type.Enum); err != nil {
			return 0, err
		}
	}

	if existing, ok := c.byKey[attr.Key]; ok {
		prior := c.attributes[existing]
		if !prior.StructurallyEqual(&attr) {
			return 0, apperror.New(apperror.CodeAttributeRedefinition,
				fmt.Sprintf("attribute %q redefined with a different shape", attr.Key)).
				WithDetails("first_provenance", prior.Provenance).
				WithDetails("second_provenance", attr.Provenance)
		}
		return existing, nil
	}

	ref := AttributeRef(len(c.attributes))
	c.attributes = append(c.attributes, attr)
	c.byKey[attr.Key] = ref
	return ref, nil
}

// validateEnum infers enum's backing ValueType from its first member if not
// already set, then checks invariants 5 and 6: every member id is unique
// within the enum, and every member's value shares the enum's backing
// primitive type.
func validateEnum(key semconv.SignalID, enum *semconv.EnumSpec) error {
	if len(enum.Members) == 0 {
		return nil
	}
	if enum.ValueType == "" {
		enum.ValueType = enum.Members[0].Value.Type()
	}

	seen := make(map[string]bool, len(enum.Members))
	for _, m := range enum.Members {
		if seen[m.ID] {
			return apperror.New(apperror.CodeEnumMemberDuplication,
				fmt.Sprintf("attribute %q declares enum member %q more than once", key, m.ID))
		}
		seen[m.ID] = true

		if got := m.Value.Type(); got != enum.ValueType {
			return apperror.New(apperror.CodeEnumValueTypeMismatch,
				fmt.Sprintf("attribute %q enum member %q has value type %q, expected %q", key, m.ID, got, enum.ValueType))
		}
	}
	return nil
}

// Get returns the attribute at ref. ok is false if ref is out of bounds
// (invariant 1, §8).
func (c *Catalog) Get(ref AttributeRef) (*semconv.Attribute, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if int(ref) >= len(c.attributes) {
		return nil, false
	}
	return &c.attributes[ref], true
}

// Lookup resolves an attribute key to its ref, if it has been interned.
func (c *Catalog) Lookup(key semconv.SignalID) (AttributeRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.byKey[key]
	return ref, ok
}

// Name returns the attribute key for ref, or "" if out of range.
func (c *Catalog) Name(ref AttributeRef) semconv.SignalID {
	a, ok := c.Get(ref)
	if !ok {
		return ""
	}
	return a.Key
}

// Len returns the number of distinct attributes interned so far.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.attributes)
}

// Seal marks the catalog read-only; further Intern calls fail. Called once
// resolution completes (§5's "catalog is mutated only during resolution").
func (c *Catalog) Seal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sealed = true
}

// All returns a snapshot slice of every interned attribute, ordered by
// AttributeRef (i.e. insertion order).
func (c *Catalog) All() []semconv.Attribute {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]semconv.Attribute, len(c.attributes))
	copy(out, c.attributes)
	return out
}

// Stats is a breakdown of the catalog's contents, mirroring
// weaver_resolved_schema::catalog::Stats (§4.2 EXPANSION).
type Stats struct {
	Total              int                                  `json:"total"`
	ByType             map[semconv.PrimitiveType]int        `json:"by_type"`
	ByRequirementLevel map[semconv.RequirementLevelKind]int `json:"by_requirement_level"`
	ByStability        map[semconv.Stability]int            `json:"by_stability"`
	Deprecated         int                                  `json:"deprecated"`
	Enums              int                                  `json:"enums"`
	Templates          int                                  `json:"templates"`
}

// Stats computes a point-in-time breakdown of the catalog.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		ByType:             make(map[semconv.PrimitiveType]int),
		ByRequirementLevel: make(map[semconv.RequirementLevelKind]int),
		ByStability:        make(map[semconv.Stability]int),
	}
	for _, a := range c.attributes {
		s.Total++
		if a.Type.Enum != nil {
			s.Enums++
		} else if a.Type.Template {
			s.Templates++
		} else {
			s.ByType[a.Type.Primitive]++
		}
		s.ByRequirementLevel[a.Requirement.Kind]++
		s.ByStability[a.Stability]++
		if a.Deprecated != nil {
			s.Deprecated++
		}
	}
	return s
}

// Keys returns every interned attribute key, sorted, for deterministic
// iteration/serialization.
func (c *Catalog) Keys() []semconv.SignalID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]semconv.SignalID, 0, len(c.attributes))
	for _, a := range c.attributes {
		keys = append(keys, a.Key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
