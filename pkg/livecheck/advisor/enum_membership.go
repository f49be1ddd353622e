package advisor

import (
	"context"
	"fmt"

	"weaver/pkg/livecheck"
	"weaver/pkg/semconv"
)

// EnumMembership reports a sample attribute value that is not among an
// enum attribute's declared members, translated from
// weaver_live_check/src/advice/enum_advisor.rs. Per finding_id.rs's
// documented current behaviour, undefined_enum_variant is emitted at
// `information` level unconditionally — see SPEC_FULL.md/DESIGN.md's Open
// Question 2. StrictEnumVariant optionally elevates it to `violation` when
// allow_custom is false, an explicit opt-in rather than a silent change.
type EnumMembership struct {
	StrictEnumVariant bool
}

func NewEnumMembership(strict bool) *EnumMembership {
	return &EnumMembership{StrictEnumVariant: strict}
}

func (a *EnumMembership) Advise(_ context.Context, ref *livecheck.SampleRef, _ *livecheck.ResolvedContext) ([]livecheck.Finding, error) {
	if ref.Stop || ref.Sample.Kind != livecheck.SampleKindAttribute || ref.Attribute == nil {
		return nil, nil
	}

	enum := ref.Attribute.Type.Enum
	sample := ref.Sample.Attribute
	if enum == nil || sample.Value == nil {
		return nil, nil
	}

	if enumContains(enum, *sample.Value) {
		return nil, nil
	}

	level := livecheck.LevelInformation
	if a.StrictEnumVariant && !enum.AllowCustom {
		level = livecheck.LevelViolation
	}

	return []livecheck.Finding{{
		ID:      livecheck.FindingUndefinedEnumVariant,
		Level:   level,
		Message: fmt.Sprintf("Enum attribute '%s' has value '%s' which is not documented.", sample.Name, sample.Value.String()),
		Context: map[string]any{
			"attribute_key":   sample.Name,
			"attribute_value": sample.Value.AsJSON(),
		},
		SignalType: "attribute",
		SignalName: sample.Name,
	}}, nil
}

func enumContains(enum *semconv.EnumSpec, v livecheck.AnyValue) bool {
	for _, member := range enum.Members {
		switch {
		case v.StringValue != nil && member.Value.StringValue != nil:
			if *v.StringValue == *member.Value.StringValue {
				return true
			}
		case v.IntValue != nil && member.Value.IntValue != nil:
			if *v.IntValue == *member.Value.IntValue {
				return true
			}
		}
	}
	return false
}
