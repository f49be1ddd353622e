package livecheck

import "sync"

// Stats aggregates per-stream live-check statistics: per-sample-kind
// counters, per-finding-id counters, and the set of registry signals
// actually observed (coverage), grounded in
// weaver_resolved_schema::catalog::Stats's breakdown-map shape and the
// teacher's pkg/metrics counter-family pattern.
type Stats struct {
	mu sync.Mutex

	SamplesByKind  map[SampleKind]int
	FindingsByID   map[FindingID]int
	FindingsByKind map[FindingLevel]int
	CoveredKeys    map[string]struct{}

	finalized bool
	Summary   Summary
}

// Summary is the finalized, read-only snapshot Stats.Finalize produces.
type Summary struct {
	TotalSamples     int
	TotalFindings    int
	ViolationCount   int
	ImprovementCount int
	InformationCount int
	CoverageCount    int
}

// NewStats returns an empty Stats aggregator.
func NewStats() *Stats {
	return &Stats{
		SamplesByKind:  make(map[SampleKind]int),
		FindingsByID:   make(map[FindingID]int),
		FindingsByKind: make(map[FindingLevel]int),
		CoveredKeys:    make(map[string]struct{}),
	}
}

// RecordSample records one processed sample.
func (s *Stats) RecordSample(kind SampleKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SamplesByKind[kind]++
}

// RecordFinding records one emitted finding.
func (s *Stats) RecordFinding(f Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FindingsByID[f.ID]++
	s.FindingsByKind[f.Level]++
}

// RecordCoverage marks name as observed by at least one sample.
func (s *Stats) RecordCoverage(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CoveredKeys[name] = struct{}{}
}

// Finalize computes the Summary snapshot from the accumulated counters.
// Safe to call once at stream end (§170's "flushes the current sample,
// emits final statistics, and exits").
func (s *Stats) Finalize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return s.Summary
	}

	summary := Summary{
		ViolationCount:   s.FindingsByKind[LevelViolation],
		ImprovementCount: s.FindingsByKind[LevelImprovement],
		InformationCount: s.FindingsByKind[LevelInformation],
		CoverageCount:    len(s.CoveredKeys),
	}
	for _, n := range s.SamplesByKind {
		summary.TotalSamples += n
	}
	for _, n := range s.FindingsByID {
		summary.TotalFindings += n
	}

	s.finalized = true
	s.Summary = summary
	return summary
}
