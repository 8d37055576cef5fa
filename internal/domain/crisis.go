package domain

// CrisisType classifies the kind of crisis a message may indicate.
type CrisisType string

const (
	CrisisSuicidal CrisisType = "suicidal"
	CrisisSelfHarm CrisisType = "self_harm"
	CrisisPanic    CrisisType = "panic"
	CrisisOther    CrisisType = "other"
	CrisisNone     CrisisType = "none"
)

// RecommendedAction is the adapter's suggested next step for the caller.
type RecommendedAction string

const (
	ActionEmergencyServices RecommendedAction = "emergency_services"
	ActionCrisisLine        RecommendedAction = "crisis_line"
	ActionProfessionalHelp  RecommendedAction = "professional_help"
	ActionSelfCare          RecommendedAction = "self_care"
	ActionMonitor           RecommendedAction = "monitor"
)

// CrisisAssessment is the structured result of classifying one message.
// It is produced per turn and never persisted as its own entity.
type CrisisAssessment struct {
	Risk              int               `json:"crisis_risk"`
	Type              CrisisType        `json:"crisis_type"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
}

// SafeDefaultAssessment is returned when the classifier cannot be reached.
// Deliberately non-zero risk: an unreachable classifier means unknown risk,
// so the system fails toward caution rather than silence.
func SafeDefaultAssessment() CrisisAssessment {
	return CrisisAssessment{
		Risk:              5,
		Type:              CrisisOther,
		RecommendedAction: ActionCrisisLine,
	}
}

// NoRiskAssessment is the default when the classifier answered but its
// output could not be parsed: a reachable-but-garbled classifier is no
// evidence of risk.
func NoRiskAssessment() CrisisAssessment {
	return CrisisAssessment{
		Risk:              0,
		Type:              CrisisNone,
		RecommendedAction: ActionMonitor,
	}
}

// ValidCrisisType reports whether t is one of the known classifier outputs.
func ValidCrisisType(t CrisisType) bool {
	switch t {
	case CrisisSuicidal, CrisisSelfHarm, CrisisPanic, CrisisOther, CrisisNone:
		return true
	}
	return false
}

// ValidRecommendedAction reports whether a is a known action.
func ValidRecommendedAction(a RecommendedAction) bool {
	switch a {
	case ActionEmergencyServices, ActionCrisisLine, ActionProfessionalHelp, ActionSelfCare, ActionMonitor:
		return true
	}
	return false
}
