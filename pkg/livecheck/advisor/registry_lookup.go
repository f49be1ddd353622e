// Package advisor implements the built-in live-check advisor chain (C7):
// one file per advisor, each a direct translation of one
// weaver_live_check/src/advice/*.rs file into the livecheck.Advisor
// interface.
package advisor

import (
	"context"
	"fmt"

	"weaver/pkg/livecheck"
	"weaver/pkg/resolver"
)

// RegistryLookup finds the registry entry a sample refers to: the
// attribute by exact key (falling back to template match) for attribute
// samples, or the declaring group by name for metric/span/event samples
// (§4.6 item 1). On a miss it emits missing_attribute/missing_metric/
// missing_event and stops the remaining semantic advisors for this
// sample; the policy advisor still runs regardless.
type RegistryLookup struct{}

func NewRegistryLookup() *RegistryLookup { return &RegistryLookup{} }

func (a *RegistryLookup) Advise(_ context.Context, ref *livecheck.SampleRef, rc *livecheck.ResolvedContext) ([]livecheck.Finding, error) {
	switch ref.Sample.Kind {
	case livecheck.SampleKindAttribute:
		return a.adviseAttribute(ref, rc), nil
	case livecheck.SampleKindMetric:
		name := ref.Sample.Metric.Name
		group, ok := rc.LookupMetricGroup(name)
		return a.adviseGroup(ref, group, ok, livecheck.FindingMissingMetric, "Metric", name, "metric"), nil
	case livecheck.SampleKindEvent:
		name := ref.Sample.Event.Name
		group, ok := rc.LookupEventGroup(name)
		return a.adviseGroup(ref, group, ok, livecheck.FindingMissingEvent, "Event", name, "event"), nil
	case livecheck.SampleKindSpan:
		if group, ok := rc.LookupSpanGroup(ref.Sample.Span.Name); ok {
			ref.Group = group
		}
		// No dedicated "missing span" finding id is defined upstream
		// (finding_id.rs only names missing_attribute/missing_metric/
		// missing_event); an unmatched span simply proceeds with a nil
		// Group, which the downstream advisors already treat as a no-op.
		return nil, nil
	default:
		return nil, nil
	}
}

func (a *RegistryLookup) adviseAttribute(ref *livecheck.SampleRef, rc *livecheck.ResolvedContext) []livecheck.Finding {
	name := ref.Sample.Attribute.Name
	attr, templateMatched, ok := rc.LookupAttribute(name)
	if !ok {
		ref.Stop = true
		return []livecheck.Finding{{
			ID:         livecheck.FindingMissingAttribute,
			Level:      livecheck.LevelViolation,
			Message:    fmt.Sprintf("Attribute '%s' is not defined in the registry.", name),
			Context:    map[string]any{"attribute_name": name},
			SignalType: "attribute",
			SignalName: name,
		}}
	}

	ref.Attribute = attr
	ref.TemplateMatched = templateMatched
	if !templateMatched {
		return nil
	}
	return []livecheck.Finding{{
		ID:         livecheck.FindingTemplateAttribute,
		Level:      livecheck.LevelInformation,
		Message:    fmt.Sprintf("Attribute '%s' matched template attribute '%s'.", name, attr.Key),
		Context:    map[string]any{"attribute_name": name, "template": string(attr.Key)},
		SignalType: "attribute",
		SignalName: name,
	}}
}

func (a *RegistryLookup) adviseGroup(ref *livecheck.SampleRef, group *resolver.ResolvedGroup, ok bool, missingID livecheck.FindingID, entityType, name, signalType string) []livecheck.Finding {
	if ok {
		ref.Group = group
		return nil
	}

	ref.Stop = true
	contextKey := signalType + "_name"
	return []livecheck.Finding{{
		ID:         missingID,
		Level:      livecheck.LevelViolation,
		Message:    fmt.Sprintf("%s '%s' is not defined in the registry.", entityType, name),
		Context:    map[string]any{contextKey: name},
		SignalType: signalType,
		SignalName: name,
	}}
}
