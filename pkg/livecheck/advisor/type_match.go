package advisor

import (
	"context"
	"fmt"

	"weaver/pkg/livecheck"
)

// TypeMatch compares the sample's observed type to the declared type
// (§4.6 item 4). It only applies to attribute samples that carry an
// observed type.
type TypeMatch struct{}

func NewTypeMatch() *TypeMatch { return &TypeMatch{} }

func (a *TypeMatch) Advise(_ context.Context, ref *livecheck.SampleRef, _ *livecheck.ResolvedContext) ([]livecheck.Finding, error) {
	if ref.Stop || ref.Sample.Kind != livecheck.SampleKindAttribute || ref.Attribute == nil {
		return nil, nil
	}

	sample := ref.Sample.Attribute
	observed := sample.Type
	if observed == nil && sample.Value != nil {
		t := sample.Value.PrimitiveType()
		observed = &t
	}
	if observed == nil || *observed == "" {
		return nil, nil
	}

	declared := ref.Attribute.Type.Primitive
	if ref.Attribute.Type.Enum != nil {
		declared = ref.Attribute.Type.Enum.ValueType
	}
	if declared == "" || declared == *observed {
		return nil, nil
	}

	return []livecheck.Finding{{
		ID:      livecheck.FindingTypeMismatch,
		Level:   livecheck.LevelViolation,
		Message: fmt.Sprintf("Attribute '%s' has type '%s' but the registry declares '%s'.", sample.Name, *observed, declared),
		Context: map[string]any{
			"attribute_key": sample.Name,
			"observed_type": string(*observed),
			"declared_type": string(declared),
		},
		SignalType: "attribute",
		SignalName: sample.Name,
	}}, nil
}
