package advisor

import (
	"context"
	"fmt"

	"weaver/pkg/livecheck"
	"weaver/pkg/semconv"
)

// RequirementLevel checks, for the containing signal of a metric/span/
// event sample, that every declared attribute is present; one finding per
// missing attribute at the level matching its declared requirement
// (§4.6 item 6).
type RequirementLevel struct{}

func NewRequirementLevel() *RequirementLevel { return &RequirementLevel{} }

func findingForRequirement(kind semconv.RequirementLevelKind) livecheck.FindingID {
	switch kind {
	case semconv.RequirementRequired:
		return livecheck.FindingRequiredAttributeNotPresent
	case semconv.RequirementConditionallyRequired:
		return livecheck.FindingConditionallyRequiredAttributeNotPresent
	case semconv.RequirementOptIn:
		return livecheck.FindingOptInAttributeNotPresent
	default:
		return livecheck.FindingRecommendedAttributeNotPresent
	}
}

func levelForRequirement(kind semconv.RequirementLevelKind) livecheck.FindingLevel {
	switch kind {
	case semconv.RequirementRequired, semconv.RequirementConditionallyRequired:
		return livecheck.LevelViolation
	default:
		return livecheck.LevelImprovement
	}
}

func (a *RequirementLevel) Advise(_ context.Context, ref *livecheck.SampleRef, rc *livecheck.ResolvedContext) ([]livecheck.Finding, error) {
	if ref.Stop || ref.Group == nil {
		return nil, nil
	}

	var present map[string]struct{}
	var signalType, signalName string
	switch ref.Sample.Kind {
	case livecheck.SampleKindSpan:
		present = attrNameSet(ref.Sample.Span.Attrs)
		signalType, signalName = "span", ref.Sample.Span.Name
	case livecheck.SampleKindEvent:
		present = attrNameSet(ref.Sample.Event.Attrs)
		signalType, signalName = "event", ref.Sample.Event.Name
	case livecheck.SampleKindMetric:
		present = map[string]struct{}{}
		for _, dp := range ref.Sample.Metric.DataPoints {
			for k := range attrNameSet(dp.Attributes) {
				present[k] = struct{}{}
			}
		}
		signalType, signalName = "metric", ref.Sample.Metric.Name
	default:
		return nil, nil
	}

	var findings []livecheck.Finding
	for _, declared := range ref.Group.Attributes {
		attr, ok := rc.Schema.Catalog.Get(declared.Ref)
		if !ok {
			continue
		}
		if _, has := present[string(attr.Key)]; has {
			continue
		}
		findings = append(findings, livecheck.Finding{
			ID:    findingForRequirement(declared.Requirement.Kind),
			Level: levelForRequirement(declared.Requirement.Kind),
			Message: fmt.Sprintf("%s attribute '%s' is not present on %s '%s'.",
				requirementLabel(declared.Requirement.Kind), attr.Key, signalType, signalName),
			Context: map[string]any{
				"attribute_key":      string(attr.Key),
				signalType + "_name": signalName,
			},
			SignalType: signalType,
			SignalName: signalName,
		})
	}
	return findings, nil
}

func requirementLabel(kind semconv.RequirementLevelKind) string {
	switch kind {
	case semconv.RequirementRequired:
		return "Required"
	case semconv.RequirementConditionallyRequired:
		return "Conditionally required"
	case semconv.RequirementOptIn:
		return "Opt-in"
	default:
		return "Recommended"
	}
}

func attrNameSet(attrs []livecheck.SampleAttribute) map[string]struct{} {
	set := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		set[a.Name] = struct{}{}
	}
	return set
}
