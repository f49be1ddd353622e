package livecheck

// FindingLevel is the severity of a single finding (§3).
type FindingLevel string

const (
	LevelInformation FindingLevel = "information"
	LevelImprovement FindingLevel = "improvement"
	LevelViolation   FindingLevel = "violation"
)

// FindingID identifies the kind of observation a finding reports,
// translated from weaver_live_check/src/finding_id.rs's FindingId enum.
// Go's string type already behaves as a "closed enum plus a custom tail":
// the named consts below are the closed set, and any other string (e.g. a
// rule name from a custom Rego policy) is a valid, well-typed FindingID
// without a separate wrapper variant.
type FindingID string

const (
	// Built-in advisor findings.
	FindingMissingAttribute     FindingID = "missing_attribute"
	FindingTemplateAttribute    FindingID = "template_attribute"
	FindingMissingMetric        FindingID = "missing_metric"
	FindingMissingEvent         FindingID = "missing_event"
	FindingDeprecated           FindingID = "deprecated"
	FindingTypeMismatch         FindingID = "type_mismatch"
	FindingNotStable            FindingID = "not_stable"
	FindingUnitMismatch         FindingID = "unit_mismatch"
	FindingUnexpectedInstrument FindingID = "unexpected_instrument"
	FindingUndefinedEnumVariant FindingID = "undefined_enum_variant"

	// Requirement-level attribute findings.
	FindingRequiredAttributeNotPresent              FindingID = "required_attribute_not_present"
	FindingRecommendedAttributeNotPresent           FindingID = "recommended_attribute_not_present"
	FindingOptInAttributeNotPresent                 FindingID = "opt_in_attribute_not_present"
	FindingConditionallyRequiredAttributeNotPresent FindingID = "conditionally_required_attribute_not_present"

	// Policy engine findings.
	FindingPolicyEngineError FindingID = "policy_engine_error"
)

// Finding is a structured record of something the live check observed
// (§3).
type Finding struct {
	ID         FindingID
	Level      FindingLevel
	Message    string
	Context    map[string]any
	SignalType string
	SignalName string
}
