package advisor

import (
	"context"
	"fmt"

	"weaver/pkg/livecheck"
	"weaver/pkg/semconv"
)

// Deprecation emits a violation-level finding when the resolved attribute
// or containing group is deprecated, translated from
// weaver_live_check/src/advice/deprecated_advisor.rs.
type Deprecation struct{}

func NewDeprecation() *Deprecation { return &Deprecation{} }

func deprecationReason(d *semconv.Deprecation) string {
	switch d.Kind {
	case semconv.DeprecationRenamed:
		return "renamed"
	case semconv.DeprecationObsoleted:
		return "obsoleted"
	default:
		return "uncategorized"
	}
}

func deprecationMessage(entityType, name string, d *semconv.Deprecation) string {
	return fmt.Sprintf("%s '%s' is deprecated; reason = '%s', note = '%s'.",
		entityType, name, deprecationReason(d), d.Note)
}

func (a *Deprecation) Advise(_ context.Context, ref *livecheck.SampleRef, _ *livecheck.ResolvedContext) ([]livecheck.Finding, error) {
	if ref.Stop {
		return nil, nil
	}

	switch ref.Sample.Kind {
	case livecheck.SampleKindAttribute:
		if ref.Attribute == nil || ref.Attribute.Deprecated == nil {
			return nil, nil
		}
		name := ref.Sample.Attribute.Name
		d := ref.Attribute.Deprecated
		return []livecheck.Finding{{
			ID:      livecheck.FindingDeprecated,
			Level:   livecheck.LevelViolation,
			Message: deprecationMessage("Attribute", name, d),
			Context: map[string]any{
				"attribute_name":     name,
				"deprecation_reason": deprecationReason(d),
				"deprecation_note":   d.Note,
			},
			SignalType: "attribute",
			SignalName: name,
		}}, nil
	case livecheck.SampleKindMetric, livecheck.SampleKindEvent:
		if ref.Group == nil || ref.Group.Deprecated == nil {
			return nil, nil
		}
		name, entityType, signalType := groupNameAndType(ref)
		d := ref.Group.Deprecated
		return []livecheck.Finding{{
			ID:      livecheck.FindingDeprecated,
			Level:   livecheck.LevelViolation,
			Message: deprecationMessage(entityType, name, d),
			Context: map[string]any{
				signalType + "_name": name,
				"deprecation_reason": deprecationReason(d),
				"deprecation_note":   d.Note,
			},
			SignalType: signalType,
			SignalName: name,
		}}, nil
	default:
		return nil, nil
	}
}

// groupNameAndType returns (name, human entity label, finding context
// signal-type key) for the metric/event sample ref currently points at.
func groupNameAndType(ref *livecheck.SampleRef) (name, entityType, signalType string) {
	switch ref.Sample.Kind {
	case livecheck.SampleKindMetric:
		return ref.Sample.Metric.Name, "Metric", "metric"
	case livecheck.SampleKindEvent:
		return ref.Sample.Event.Name, "Event", "event"
	default:
		return "", "", ""
	}
}
