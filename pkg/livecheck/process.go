package livecheck

import "context"

// processSampleInner dispatches sample to its kind-specific processor and
// records coverage/sample-kind statistics.
func (p *Pipeline) processSampleInner(ctx context.Context, sample *Sample) []Finding {
	p.stats.RecordSample(sample.Kind)

	var findings []Finding
	switch sample.Kind {
	case SampleKindAttribute:
		findings = p.runChain(ctx, &SampleRef{Sample: sample})
	case SampleKindMetric:
		findings = p.processMetric(ctx, sample)
	case SampleKindSpan:
		findings = p.processSpan(ctx, sample)
	case SampleKindEvent:
		findings = p.processEvent(ctx, sample)
	case SampleKindResource:
		findings = p.processResource(ctx, sample)
	}

	sample.Result = &SampleResult{Findings: findings}
	return findings
}

// runChain runs every advisor in order against ref, collecting findings.
// An advisor error never aborts the chain: it becomes a
// policy_engine_error finding and the chain continues (§4.5, §7).
func (p *Pipeline) runChain(ctx context.Context, ref *SampleRef) []Finding {
	var findings []Finding
	for _, adv := range p.chain {
		fs, err := adv.Advise(ctx, ref, p.rc)
		if err != nil {
			findings = append(findings, Finding{
				ID:      FindingPolicyEngineError,
				Level:   LevelInformation,
				Message: err.Error(),
			})
			continue
		}
		findings = append(findings, fs...)
	}
	return findings
}

func (p *Pipeline) processMetric(ctx context.Context, sample *Sample) []Finding {
	ref := &SampleRef{Sample: sample}
	findings := p.runChain(ctx, ref)
	if ref.Group != nil {
		p.stats.RecordCoverage(string(ref.Group.ID))
	}
	for _, dp := range sample.Metric.DataPoints {
		for _, attr := range dp.Attributes {
			findings = append(findings, p.processChildAttribute(ctx, attr)...)
		}
	}
	return findings
}

func (p *Pipeline) processSpan(ctx context.Context, sample *Sample) []Finding {
	ref := &SampleRef{Sample: sample}
	findings := p.runChain(ctx, ref)
	if ref.Group != nil {
		p.stats.RecordCoverage(string(ref.Group.ID))
	}
	for _, attr := range sample.Span.Attrs {
		findings = append(findings, p.processChildAttribute(ctx, attr)...)
	}
	for _, evt := range sample.Span.Events {
		evt := evt
		eventSample := &Sample{Kind: SampleKindEvent, Event: &evt}
		findings = append(findings, p.processEvent(ctx, eventSample)...)
	}
	for _, link := range sample.Span.Links {
		for _, attr := range link.Attrs {
			findings = append(findings, p.processChildAttribute(ctx, attr)...)
		}
	}
	return findings
}

func (p *Pipeline) processEvent(ctx context.Context, sample *Sample) []Finding {
	ref := &SampleRef{Sample: sample}
	findings := p.runChain(ctx, ref)
	if ref.Group != nil {
		p.stats.RecordCoverage(string(ref.Group.ID))
	}
	for _, attr := range sample.Event.Attrs {
		findings = append(findings, p.processChildAttribute(ctx, attr)...)
	}
	return findings
}

func (p *Pipeline) processResource(ctx context.Context, sample *Sample) []Finding {
	var findings []Finding
	for _, attr := range sample.Resource.Attrs {
		findings = append(findings, p.processChildAttribute(ctx, attr)...)
	}
	return findings
}

func (p *Pipeline) processChildAttribute(ctx context.Context, attr SampleAttribute) []Finding {
	attr := attr
	childSample := &Sample{Kind: SampleKindAttribute, Attribute: &attr}
	ref := &SampleRef{Sample: childSample}
	findings := p.runChain(ctx, ref)
	if ref.Attribute != nil {
		p.stats.RecordCoverage(string(ref.Attribute.Key))
	}
	return findings
}
