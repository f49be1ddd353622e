package advisor

import (
	"context"

	"weaver/pkg/livecheck"
	"weaver/pkg/policy"
)

// Policy evaluates per-sample Rego rules and merges their violations in
// last (§4.6 item 7), translated from
// weaver_live_check/src/advice/rego_advisor.rs. Unlike the other
// advisors it always runs, even when an earlier advisor set ref.Stop,
// since policy rules may want to flag samples that failed registry
// lookup too.
type Policy struct {
	engine *policy.Engine
}

func NewPolicy(engine *policy.Engine) *Policy {
	return &Policy{engine: engine}
}

func (a *Policy) Advise(ctx context.Context, ref *livecheck.SampleRef, rc *livecheck.ResolvedContext) ([]livecheck.Finding, error) {
	if a.engine == nil {
		return nil, nil
	}

	input := buildPolicyInput(ref)
	violations, err := a.engine.Check(ctx, policy.StageLiveCheckAdvice, input)
	if err != nil {
		return nil, err
	}

	findings := make([]livecheck.Finding, 0, len(violations))
	signalType, signalName := sampleSignal(ref.Sample)
	for _, v := range violations {
		findings = append(findings, livecheck.Finding{
			ID:         livecheck.FindingID(v.Rule),
			Level:      violationLevel(v.Rule),
			Message:    v.Message,
			Context:    v.Details,
			SignalType: signalType,
			SignalName: signalName,
		})
	}
	return findings, nil
}

// violationLevel reports information for the engine's own opaque-failure
// fallback rule and violation for every rule a real policy author wrote
// (§4.5, §7).
func violationLevel(rule string) livecheck.FindingLevel {
	if rule == string(livecheck.FindingPolicyEngineError) {
		return livecheck.LevelInformation
	}
	return livecheck.LevelViolation
}

func sampleSignal(s *livecheck.Sample) (signalType, signalName string) {
	switch s.Kind {
	case livecheck.SampleKindAttribute:
		return "attribute", s.Attribute.Name
	case livecheck.SampleKindMetric:
		return "metric", s.Metric.Name
	case livecheck.SampleKindSpan:
		return "span", s.Span.Name
	case livecheck.SampleKindEvent:
		return "event", s.Event.Name
	case livecheck.SampleKindResource:
		return "resource", ""
	default:
		return "", ""
	}
}

func buildPolicyInput(ref *livecheck.SampleRef) map[string]any {
	signalType, signalName := sampleSignal(ref.Sample)
	input := map[string]any{
		"signal_type": signalType,
		"signal_name": signalName,
	}
	if ref.Attribute != nil {
		input["registry_attribute"] = map[string]any{
			"key":       string(ref.Attribute.Key),
			"stability": string(ref.Attribute.Stability),
		}
	}
	if ref.Group != nil {
		input["registry_group"] = map[string]any{
			"id":   string(ref.Group.ID),
			"type": string(ref.Group.Type),
		}
	}
	if ref.Sample.Kind == livecheck.SampleKindAttribute && ref.Sample.Attribute.Value != nil {
		input["attribute_value"] = ref.Sample.Attribute.Value.AsJSON()
	}
	return input
}
