// Package semconv holds the typed, in-memory representation of a raw
// semantic-convention registry: groups, attributes, stability, deprecation,
// requirement levels, instrument kinds, span kinds and signal identifiers as
// they are declared in registry YAML, before reference resolution.
package semconv

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// SignalID is the dotted identifier used as the primary key for attributes,
// metrics, spans, events and entities (e.g. "http.request.method").
type SignalID string

var signalIDPattern = regexp.MustCompile(`^[a-z0-9]+(\.[a-z0-9_]+)*$`)

// Validate reports whether id is a well-formed dotted signal identifier:
// non-empty segments separated by dots; the first segment holds lowercase
// letters and digits, later segments may also hold underscores.
func (id SignalID) Validate() error {
	if id == "" {
		return fmt.Errorf("signal id must not be empty")
	}
	if !signalIDPattern.MatchString(string(id)) {
		return fmt.Errorf("signal id %q must be dot-separated lowercase segments", id)
	}
	return nil
}

func (id SignalID) String() string { return string(id) }

// Stability is the lifecycle state of a signal or attribute.
type Stability string

const (
	StabilityStable      Stability = "stable"
	StabilityDevelopment Stability = "development"
	StabilityDeprecated  Stability = "deprecated"
)

// Valid reports whether s is one of the known stability values. The empty
// value is considered valid (absence is resolved by the resolver's
// normalisation phase).
func (s Stability) Valid() bool {
	switch s {
	case "", StabilityStable, StabilityDevelopment, StabilityDeprecated:
		return true
	default:
		return false
	}
}

// DeprecationKind tags the shape of a Deprecation record.
type DeprecationKind string

const (
	DeprecationRenamed       DeprecationKind = "renamed"
	DeprecationObsoleted     DeprecationKind = "obsoleted"
	DeprecationUncategorized DeprecationKind = "uncategorized"
)

// Deprecation is a tagged record describing why/how a signal or attribute
// was deprecated.
type Deprecation struct {
	Kind    DeprecationKind `yaml:"-" json:"kind"`
	NewName SignalID        `yaml:"-" json:"new_name,omitempty"`
	Note    string          `yaml:"-" json:"note,omitempty"`
}

// UnmarshalYAML accepts both the shorthand string form ("renamed to <id>"
// is a rename, any other string is an uncategorized note) and the
// structured form with explicit renamed_to/note/reason keys, mirroring how
// the registry YAML declares deprecation.
func (d *Deprecation) UnmarshalYAML(node *yaml.Node) error {
	var asString string
	if err := node.Decode(&asString); err == nil {
		if asString == "" {
			return nil
		}
		if strings.HasPrefix(asString, "renamed to ") {
			d.Kind = DeprecationRenamed
			d.NewName = SignalID(strings.TrimPrefix(asString, "renamed to "))
			return nil
		}
		d.Kind = DeprecationUncategorized
		d.Note = asString
		return nil
	}

	var asStruct struct {
		RenamedTo SignalID `yaml:"renamed_to"`
		Note      string   `yaml:"note"`
		Reason    string   `yaml:"reason"`
	}
	if err := node.Decode(&asStruct); err != nil {
		return err
	}
	switch {
	case asStruct.RenamedTo != "":
		d.Kind = DeprecationRenamed
		d.NewName = asStruct.RenamedTo
	case asStruct.Reason == "obsoleted":
		d.Kind = DeprecationObsoleted
		d.Note = asStruct.Note
	default:
		d.Kind = DeprecationUncategorized
		d.Note = asStruct.Note
	}
	return nil
}

// RequirementLevelKind discriminates the requirement-level variants.
type RequirementLevelKind string

const (
	RequirementRequired              RequirementLevelKind = "required"
	RequirementConditionallyRequired RequirementLevelKind = "conditionally_required"
	RequirementRecommended           RequirementLevelKind = "recommended"
	RequirementOptIn                 RequirementLevelKind = "opt_in"
)

// RequirementLevel captures the kind plus an optional condition string for
// conditionally_required / recommended.
type RequirementLevel struct {
	Kind      RequirementLevelKind `json:"kind"`
	Condition string               `json:"condition,omitempty"`
}

// DefaultRequirementLevel is the resolver's default per §4.3.
func DefaultRequirementLevel() RequirementLevel {
	return RequirementLevel{Kind: RequirementRecommended}
}

// UnmarshalYAML accepts the shorthand scalar form ("required", "opt_in",
// "recommended") and the structured form with a condition.
func (r *RequirementLevel) UnmarshalYAML(node *yaml.Node) error {
	var asString string
	if err := node.Decode(&asString); err == nil {
		r.Kind = RequirementLevelKind(asString)
		return nil
	}

	var asStruct struct {
		ConditionallyRequired string `yaml:"conditionally_required"`
		Recommended           string `yaml:"recommended"`
	}
	if err := node.Decode(&asStruct); err != nil {
		return err
	}
	switch {
	case asStruct.ConditionallyRequired != "":
		r.Kind = RequirementConditionallyRequired
		r.Condition = asStruct.ConditionallyRequired
	case asStruct.Recommended != "":
		r.Kind = RequirementRecommended
		r.Condition = asStruct.Recommended
	}
	return nil
}

// AttributeType discriminates the primitive, array, template, and enum
// attribute type variants.
type AttributeType struct {
	Primitive PrimitiveType `yaml:"-" json:"primitive,omitempty"`
	// Template is set when this type is a "template[primitive]" prefix-match
	// type; Primitive names the backing primitive.
	Template bool `yaml:"-" json:"template,omitempty"`
	// Enum is set when this type is an enum declaration.
	Enum *EnumSpec `yaml:"-" json:"enum,omitempty"`
}

// UnmarshalYAML accepts the three shapes a `type:` key can take in registry
// YAML: a bare primitive scalar ("string", "int[]", ...), a
// "template[primitive]" prefix-match scalar, or an inline enum mapping
// ({allow_custom, members}).
func (t *AttributeType) UnmarshalYAML(node *yaml.Node) error {
	var asString string
	if err := node.Decode(&asString); err == nil {
		if prim, template, ok := parseTypeString(asString); ok {
			t.Primitive = prim
			t.Template = template
			return nil
		}
		return fmt.Errorf("%d:%d: %q is not a known attribute type (primitive or template[primitive])", node.Line, node.Column, asString)
	}

	var enum EnumSpec
	if err := node.Decode(&enum); err != nil {
		return err
	}
	t.Enum = &enum
	return nil
}

// parseTypeString recognizes a bare primitive ("string") or a
// "template[primitive]" prefix-match type string.
func parseTypeString(s string) (prim PrimitiveType, template bool, ok bool) {
	if strings.HasPrefix(s, "template[") && strings.HasSuffix(s, "]") {
		inner := PrimitiveType(strings.TrimSuffix(strings.TrimPrefix(s, "template["), "]"))
		if !inner.valid() {
			return "", false, false
		}
		return inner, true, true
	}
	p := PrimitiveType(s)
	if !p.valid() {
		return "", false, false
	}
	return p, false, true
}

// PrimitiveType enumerates the scalar/array primitive wire types.
type PrimitiveType string

const (
	TypeString      PrimitiveType = "string"
	TypeInt         PrimitiveType = "int"
	TypeDouble      PrimitiveType = "double"
	TypeBoolean     PrimitiveType = "boolean"
	TypeStringArray PrimitiveType = "string[]"
	TypeIntArray    PrimitiveType = "int[]"
	TypeDoubleArray PrimitiveType = "double[]"
	TypeBoolArray   PrimitiveType = "boolean[]"
)

func (p PrimitiveType) valid() bool {
	switch p {
	case TypeString, TypeInt, TypeDouble, TypeBoolean,
		TypeStringArray, TypeIntArray, TypeDoubleArray, TypeBoolArray:
		return true
	default:
		return false
	}
}

// EnumSpec is the `{allow_custom, members}` enum attribute type.
type EnumSpec struct {
	AllowCustom bool          `yaml:"allow_custom" json:"allow_custom"`
	Members     []EnumMember  `yaml:"members" json:"members"`
	ValueType   PrimitiveType `yaml:"-" json:"value_type"`
}

// EnumMember is one `{id, value, brief, stability?, deprecated?}` entry.
type EnumMember struct {
	ID         string       `yaml:"id" json:"id"`
	Value      EnumValue    `yaml:"value" json:"value"`
	Brief      string       `yaml:"brief" json:"brief,omitempty"`
	Note       string       `yaml:"note" json:"note,omitempty"`
	Stability  Stability    `yaml:"stability" json:"stability,omitempty"`
	Deprecated *Deprecation `yaml:"deprecated" json:"deprecated,omitempty"`
}

// EnumValue distinguishes int vs string member values.
type EnumValue struct {
	IntValue    *int64
	StringValue *string
}

// Type returns the primitive backing type implied by the value.
func (v EnumValue) Type() PrimitiveType {
	if v.IntValue != nil {
		return TypeInt
	}
	return TypeString
}

func (v *EnumValue) UnmarshalYAML(node *yaml.Node) error {
	var i int64
	if err := node.Decode(&i); err == nil {
		v.IntValue = &i
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v.StringValue = &s
	return nil
}

func (v EnumValue) String() string {
	if v.IntValue != nil {
		return fmt.Sprintf("%d", *v.IntValue)
	}
	if v.StringValue != nil {
		return *v.StringValue
	}
	return ""
}

// Examples holds the `examples` field, which may be a scalar, an array of
// scalars, or (rarely) mixed; it is normalized to a string slice for display.
type Examples []string

// UnmarshalYAML accepts a single scalar as a one-element list, and a
// sequence as a list of its scalars' string forms.
func (e *Examples) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*e = Examples{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*e = list
	return nil
}

// Attribute is the fully-declared attribute spec (§3), prior to interning.
type Attribute struct {
	Key              SignalID         `yaml:"id" json:"key"`
	Type             AttributeType    `yaml:"type" json:"type"`
	Brief            string           `yaml:"brief" json:"brief"`
	Note             string           `yaml:"note" json:"note,omitempty"`
	Stability        Stability        `yaml:"stability" json:"stability,omitempty"`
	Deprecated       *Deprecation     `yaml:"deprecated" json:"deprecated,omitempty"`
	Examples         Examples         `yaml:"examples" json:"examples,omitempty"`
	Tag              string           `yaml:"tag" json:"tag,omitempty"`
	SamplingRelevant *bool            `yaml:"sampling_relevant" json:"sampling_relevant,omitempty"`
	Prefix           string           `yaml:"prefix" json:"prefix,omitempty"`
	Requirement      RequirementLevel `yaml:"requirement_level" json:"requirement_level"`
	Value            *EnumValue       `yaml:"value" json:"value,omitempty"`
	Ref              SignalID         `yaml:"ref" json:"-"`
	Provenance       Provenance       `yaml:"-" json:"-"`
}

// SamplingRelevantOrDefault returns the sampling-relevance flag, defaulting
// to false per §4.3.
func (a *Attribute) SamplingRelevantOrDefault() bool {
	if a.SamplingRelevant == nil {
		return false
	}
	return *a.SamplingRelevant
}

// StructurallyEqual reports whether two attribute definitions declare the
// same shape for catalog-dedup purposes (§4.2's "structurally equivalent").
// Provenance and per-reference overrides are intentionally excluded.
func (a *Attribute) StructurallyEqual(other *Attribute) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Key == other.Key &&
		a.Type.Primitive == other.Type.Primitive &&
		a.Type.Template == other.Type.Template &&
		enumEqual(a.Type.Enum, other.Type.Enum)
}

func enumEqual(a, b *EnumSpec) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.AllowCustom != b.AllowCustom || len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		if a.Members[i].ID != b.Members[i].ID || a.Members[i].Value.String() != b.Members[i].Value.String() {
			return false
		}
	}
	return true
}

// GroupType enumerates the group kinds named in §3.
type GroupType string

const (
	GroupAttributeGroup GroupType = "attribute_group"
	GroupMetric         GroupType = "metric"
	GroupSpan           GroupType = "span"
	GroupEvent          GroupType = "event"
	GroupEntity         GroupType = "entity"
	GroupResource       GroupType = "resource"
)

// SpanKind enumerates OTel span kinds.
type SpanKind string

const (
	SpanKindClient   SpanKind = "client"
	SpanKindServer   SpanKind = "server"
	SpanKindProducer SpanKind = "producer"
	SpanKindConsumer SpanKind = "consumer"
	SpanKindInternal SpanKind = "internal"
)

// InstrumentKind enumerates metric instrument kinds.
type InstrumentKind string

const (
	InstrumentCounter       InstrumentKind = "counter"
	InstrumentUpDownCounter InstrumentKind = "updowncounter"
	InstrumentGauge         InstrumentKind = "gauge"
	InstrumentHistogram     InstrumentKind = "histogram"
)

// Constraint is a `{any_of, include}` group constraint.
type Constraint struct {
	AnyOf   [][]SignalID `yaml:"any_of" json:"any_of,omitempty"`
	Include []string     `yaml:"include" json:"include,omitempty"`
}

// AttrSpecOrRef is one entry of a group's `attributes` list: either an
// inline attribute spec or a `ref` plus per-reference overrides.
type AttrSpecOrRef struct {
	Ref              SignalID          `yaml:"ref" json:"ref,omitempty"`
	ID               SignalID          `yaml:"id" json:"id,omitempty"`
	Type             *AttributeType    `yaml:"type" json:"type,omitempty"`
	Brief            string            `yaml:"brief" json:"brief,omitempty"`
	Note             string            `yaml:"note" json:"note,omitempty"`
	Examples         Examples          `yaml:"examples" json:"examples,omitempty"`
	Requirement      *RequirementLevel `yaml:"requirement_level" json:"requirement_level,omitempty"`
	Stability        Stability         `yaml:"stability" json:"stability,omitempty"`
	Deprecated       *Deprecation      `yaml:"deprecated" json:"deprecated,omitempty"`
	SamplingRelevant *bool             `yaml:"sampling_relevant" json:"sampling_relevant,omitempty"`
	Tag              string            `yaml:"tag" json:"tag,omitempty"`
	Provenance       Provenance        `yaml:"-" json:"-"`
}

// IsRef reports whether this entry is a reference to a catalog/dependency
// attribute rather than an inline declaration.
func (a AttrSpecOrRef) IsRef() bool { return a.Ref != "" }

// RawGroup is the as-parsed representation of a single group declaration
// (§3's "Group (raw)").
type RawGroup struct {
	ID          SignalID        `yaml:"id" json:"id"`
	Type        GroupType       `yaml:"type" json:"type"`
	Brief       string          `yaml:"brief" json:"brief"`
	Note        string          `yaml:"note" json:"note,omitempty"`
	Prefix      string          `yaml:"prefix" json:"prefix,omitempty"`
	Extends     SignalID        `yaml:"extends" json:"extends,omitempty"`
	Include     []SignalID      `yaml:"include" json:"include,omitempty"`
	Stability   Stability       `yaml:"stability" json:"stability,omitempty"`
	Deprecated  *Deprecation    `yaml:"deprecated" json:"deprecated,omitempty"`
	Attributes  []AttrSpecOrRef `yaml:"attributes" json:"attributes,omitempty"`
	Constraints []Constraint    `yaml:"constraints" json:"constraints,omitempty"`

	SpanKind SpanKind `yaml:"span_kind" json:"span_kind,omitempty"`
	Events   []string `yaml:"events" json:"events,omitempty"`

	MetricName SignalID       `yaml:"metric_name" json:"metric_name,omitempty"`
	Instrument InstrumentKind `yaml:"instrument" json:"instrument,omitempty"`
	Unit       string         `yaml:"unit" json:"unit,omitempty"`

	Name string         `yaml:"name" json:"name,omitempty"`
	Body *AttrSpecOrRef `yaml:"body" json:"body,omitempty"`

	Annotations        map[string]string `yaml:"annotations" json:"annotations,omitempty"`
	EntityAssociations []SignalID        `yaml:"entity_associations" json:"entity_associations,omitempty"`

	Provenance Provenance `yaml:"-" json:"-"`
}

// Tags is a free-form string-keyed JSON-able value map, supplementing
// resolved attributes/samples per original_source's tags.rs/any_value.rs.
type Tags map[string]any

// Resource is the resolved schema's optional resource block: the set of
// attribute references describing the producing resource, per
// original_source's instrumentation_library.rs/resource.rs.
type Resource struct {
	Attributes []AttrSpecOrRef `yaml:"attributes" json:"attributes,omitempty"`
}
