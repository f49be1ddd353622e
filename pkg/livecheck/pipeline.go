package livecheck

import (
	"context"
	"time"

	"weaver/pkg/metrics"
	"weaver/pkg/resolver"
	"weaver/pkg/telemetry"
)

// Options configures one Pipeline run (§4.6, wired from
// pkg/config.LiveCheckConfig).
type Options struct {
	InactivityTimeout time.Duration
}

// Pipeline is a single-threaded cooperative live-check pipeline: one
// sample at a time flows through an ordered advisor chain (§4.6). Many
// Pipelines may share the same read-only ResolvedContext/Catalog (§5's
// "one core instance per stream, no shared mutable state").
type Pipeline struct {
	rc      *ResolvedContext
	chain   []Advisor
	opts    Options
	stats   *Stats
	metrics *metrics.Metrics
}

// NewPipeline builds a Pipeline over schema, running every sample through
// chain in order. chain is ordinarily built with
// pkg/livecheck/advisor.DefaultChain to avoid an import cycle between this
// package and the advisor implementations.
func NewPipeline(schema *resolver.ResolvedSchema, chain []Advisor, opts Options) *Pipeline {
	return &Pipeline{
		rc:      NewResolvedContext(schema),
		chain:   chain,
		opts:    opts,
		stats:   NewStats(),
		metrics: metrics.Get(),
	}
}

// Stats returns the pipeline's statistics aggregator. Finalize it after
// Run's output channel closes.
func (p *Pipeline) Stats() *Stats {
	return p.stats
}

// Run drains samples, pushing every finding produced onto the returned
// channel, until samples closes, ctx is cancelled, or the inactivity
// timeout elapses with no new sample (§4.6's cancellation rules: flush the
// current sample, emit final statistics, and exit).
func (p *Pipeline) Run(ctx context.Context, samples <-chan Sample) (<-chan Finding, error) {
	out := make(chan Finding)

	go func() {
		defer close(out)
		start := time.Now()
		defer func() {
			p.stats.Finalize()
			if p.metrics != nil {
				p.metrics.RecordLiveCheckRun(time.Since(start))
			}
		}()

		timeout := p.opts.InactivityTimeout
		var timer *time.Timer
		var timerC <-chan time.Time
		if timeout > 0 {
			timer = time.NewTimer(timeout)
			timerC = timer.C
			defer timer.Stop()
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-timerC:
				return
			case sample, ok := <-samples:
				if !ok {
					return
				}
				if timer != nil {
					if !timer.Stop() {
						<-timer.C
					}
					timer.Reset(timeout)
				}

				findings := p.ProcessSample(ctx, &sample)
				for _, f := range findings {
					p.stats.RecordFinding(f)
					if p.metrics != nil {
						p.metrics.RecordFinding(string(f.ID), string(f.Level))
					}
					select {
					case out <- f:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out, nil
}

// ProcessSample runs one sample through the advisor chain synchronously,
// returning every finding produced (exported for direct use in tests and
// by batch-mode adapters that don't need the channel-based Run).
func (p *Pipeline) ProcessSample(ctx context.Context, sample *Sample) []Finding {
	findings, _ := telemetry.Traced(ctx, "livecheck.process_sample", nil, func(ctx context.Context) ([]Finding, error) {
		return p.processSampleInner(ctx, sample), nil
	})
	return findings
}
