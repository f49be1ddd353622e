// Package livecheck implements the live-check core (C7): a single-threaded
// cooperative pipeline that runs each incoming sample through an ordered
// chain of advisors (registry lookup, deprecation, stability, type match,
// enum membership, requirement level, policy rules), accumulating per-sample
// findings and stream-wide statistics (spec.md §4.6).
package livecheck

import (
	"encoding/json"
	"fmt"

	"weaver/pkg/semconv"
)

// SampleKind discriminates the five live-check sample shapes (§3's
// "Sample types"). A single tagged Sample type is used instead of separate
// per-kind stdin code paths, since producing this shape is an adapter's
// job, not the core's (SPEC_FULL.md §9, Open Question 3).
type SampleKind string

const (
	SampleKindAttribute SampleKind = "attribute"
	SampleKindMetric    SampleKind = "metric"
	SampleKindSpan      SampleKind = "span"
	SampleKindEvent     SampleKind = "event"
	SampleKindResource  SampleKind = "resource"
)

// AnyValue is a uniform JSON-able value carrier for observed sample values
// and finding context payloads, supplemented from
// weaver_resolved_schema/any_value.rs's notion of a free-form typed value
// but adapted here to a runtime value (string/int/double/bool/array)
// rather than a schema field definition.
type AnyValue struct {
	StringValue *string
	IntValue    *int64
	DoubleValue *float64
	BoolValue   *bool
	ArrayValue  []AnyValue
}

// PrimitiveType reports the observed primitive/array type implied by the
// value, mirroring the kinds semconv.PrimitiveType names, for use by the
// type-match advisor.
func (v AnyValue) PrimitiveType() semconv.PrimitiveType {
	switch {
	case v.ArrayValue != nil:
		if len(v.ArrayValue) == 0 {
			return ""
		}
		switch v.ArrayValue[0].PrimitiveType() {
		case semconv.TypeString:
			return semconv.TypeStringArray
		case semconv.TypeInt:
			return semconv.TypeIntArray
		case semconv.TypeDouble:
			return semconv.TypeDoubleArray
		case semconv.TypeBoolean:
			return semconv.TypeBoolArray
		default:
			return ""
		}
	case v.StringValue != nil:
		return semconv.TypeString
	case v.IntValue != nil:
		return semconv.TypeInt
	case v.DoubleValue != nil:
		return semconv.TypeDouble
	case v.BoolValue != nil:
		return semconv.TypeBoolean
	default:
		return ""
	}
}

// String renders the value for finding messages/context.
func (v AnyValue) String() string {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntValue != nil:
		return fmt.Sprintf("%d", *v.IntValue)
	case v.DoubleValue != nil:
		return fmt.Sprintf("%g", *v.DoubleValue)
	case v.BoolValue != nil:
		return fmt.Sprintf("%t", *v.BoolValue)
	case v.ArrayValue != nil:
		out := "["
		for i, e := range v.ArrayValue {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	default:
		return ""
	}
}

// AsJSON returns the value in a form suitable for Finding.Context /
// policy-engine input (plain Go values, not the tagged struct).
func (v AnyValue) AsJSON() any {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntValue != nil:
		return *v.IntValue
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.BoolValue != nil:
		return *v.BoolValue
	case v.ArrayValue != nil:
		out := make([]any, len(v.ArrayValue))
		for i, e := range v.ArrayValue {
			out[i] = e.AsJSON()
		}
		return out
	default:
		return nil
	}
}

// UnmarshalJSON decodes a plain JSON scalar or array into the matching
// tagged field.
func (v *AnyValue) UnmarshalJSON(data []byte) error {
	var asArray []AnyValue
	if err := json.Unmarshal(data, &asArray); err == nil {
		v.ArrayValue = asArray
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		v.StringValue = &asString
		return nil
	}
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		v.BoolValue = &asBool
		return nil
	}
	var asInt int64
	if err := json.Unmarshal(data, &asInt); err == nil {
		v.IntValue = &asInt
		return nil
	}
	var asDouble float64
	if err := json.Unmarshal(data, &asDouble); err == nil {
		v.DoubleValue = &asDouble
		return nil
	}
	return fmt.Errorf("livecheck: unsupported AnyValue JSON: %s", data)
}

// SampleAttribute is a standalone attribute observation (§3).
type SampleAttribute struct {
	Name  string
	Value *AnyValue
	Type  *semconv.PrimitiveType
}

// SampleDataPoint is one observed data point of a metric sample.
type SampleDataPoint struct {
	Attributes []SampleAttribute
	Value      AnyValue
}

// SampleMetric is a metric sample (§3).
type SampleMetric struct {
	Name       string
	Instrument semconv.InstrumentKind
	Unit       string
	DataPoints []SampleDataPoint
}

// SampleSpanLink is a span link, recursing into its own attribute list.
type SampleSpanLink struct {
	Attrs []SampleAttribute
}

// SampleEvent is an event sample (§3), also used for span events nested
// inside a SampleSpan.
type SampleEvent struct {
	Name  string
	Body  *AnyValue
	Attrs []SampleAttribute
}

// SampleSpan is a span sample (§3), recursing into child events and links.
type SampleSpan struct {
	Name   string
	Kind   semconv.SpanKind
	Status *string
	Attrs  []SampleAttribute
	Events []SampleEvent
	Links  []SampleSpanLink
}

// SampleResource is a resource sample (§3).
type SampleResource struct {
	Attrs []SampleAttribute
}

// SampleResult is the live-check result optionally carried on a sample
// after processing (§3's "Each carries an optional live_check_result").
type SampleResult struct {
	Findings []Finding
}

// Sample is the tagged union of every live-check input shape.
type Sample struct {
	Kind SampleKind

	Attribute *SampleAttribute
	Metric    *SampleMetric
	Span      *SampleSpan
	Event     *SampleEvent
	Resource  *SampleResource

	Result *SampleResult
}
