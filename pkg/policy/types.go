// Package policy implements the policy engine interface (C6): an opaque
// adapter over OPA Rego that evaluates registry-wide and per-sample
// policies, following the `other_examples` Confirmate regoEval pattern of
// an in-memory store plus a cache of prepared queries keyed by stage.
package policy

// Stage discriminates when a set of policies runs: once per resolved
// registry, or once per live-check sample (§4.5).
type Stage string

const (
	StageRegistry        Stage = "registry"
	StageLiveCheckAdvice Stage = "live_check_advice"
)

// Violation is one policy rule firing against the current input, the
// engine's output unit before it is lifted into a live-check Finding by
// pkg/livecheck/advisor's policy advisor.
type Violation struct {
	Rule    string
	Message string
	Details map[string]any
}
