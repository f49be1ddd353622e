package advisor

import (
	"weaver/pkg/livecheck"
	"weaver/pkg/policy"
)

// DefaultChain returns the built-in advisor chain in spec order (§4.6):
// registry lookup, deprecation, stability, type match, enum membership,
// requirement level, policy. Constructing it here (rather than inside
// pkg/livecheck) avoids an import cycle, since this package already
// imports pkg/livecheck for the Advisor interface and sample/finding
// types.
func DefaultChain(policyEngine *policy.Engine, strictEnumVariant bool) []livecheck.Advisor {
	return []livecheck.Advisor{
		NewRegistryLookup(),
		NewDeprecation(),
		NewStability(),
		NewTypeMatch(),
		NewEnumMembership(strictEnumVariant),
		NewRequirementLevel(),
		NewPolicy(policyEngine),
	}
}
