package advisor

import (
	"context"
	"fmt"

	"weaver/pkg/livecheck"
	"weaver/pkg/semconv"
)

// Stability emits an improvement-level finding when the resolved
// attribute or containing group has not reached stable status,
// translated from weaver_live_check/src/advice/stability_advisor.rs.
type Stability struct{}

func NewStability() *Stability { return &Stability{} }

func (a *Stability) Advise(_ context.Context, ref *livecheck.SampleRef, _ *livecheck.ResolvedContext) ([]livecheck.Finding, error) {
	if ref.Stop {
		return nil, nil
	}

	switch ref.Sample.Kind {
	case livecheck.SampleKindAttribute:
		if ref.Attribute == nil || ref.Attribute.Stability == "" || ref.Attribute.Stability == semconv.StabilityStable {
			return nil, nil
		}
		name := ref.Sample.Attribute.Name
		return []livecheck.Finding{{
			ID:         livecheck.FindingNotStable,
			Level:      livecheck.LevelImprovement,
			Message:    fmt.Sprintf("Attribute '%s' is not stable; stability = %s.", name, ref.Attribute.Stability),
			Context:    map[string]any{"attribute_key": name, "stability": string(ref.Attribute.Stability)},
			SignalType: "attribute",
			SignalName: name,
		}}, nil
	case livecheck.SampleKindMetric, livecheck.SampleKindEvent:
		if ref.Group == nil || ref.Group.Stability == "" || ref.Group.Stability == semconv.StabilityStable {
			return nil, nil
		}
		name, entityType, signalType := groupNameAndType(ref)
		return []livecheck.Finding{{
			ID:         livecheck.FindingNotStable,
			Level:      livecheck.LevelImprovement,
			Message:    fmt.Sprintf("%s '%s' is not stable; stability = %s.", entityType, name, ref.Group.Stability),
			Context:    map[string]any{signalType + "_name": name, "stability": string(ref.Group.Stability)},
			SignalType: signalType,
			SignalName: name,
		}}, nil
	default:
		return nil, nil
	}
}
