package livecheck

import "context"

// Advisor is one stage of the live-check pipeline: it inspects a sample
// (enriched with whatever registry references earlier stages resolved)
// and returns zero or more findings (§4.6). Concrete advisors live in
// pkg/livecheck/advisor, each a direct translation of one
// weaver_live_check/src/advice/*.rs file; this interface lives in the
// core package (not the advisor subpackage) so Pipeline can depend on it
// without importing advisor and creating a cycle back into this package.
type Advisor interface {
	Advise(ctx context.Context, ref *SampleRef, rc *ResolvedContext) ([]Finding, error)
}
