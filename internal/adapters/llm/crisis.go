package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/calmlinehq/calmline/internal/domain"
	"github.com/calmlinehq/calmline/internal/observability"
)

type rawAssessment struct {
	CrisisRisk        *int   `json:"crisis_risk"`
	CrisisType        string `json:"crisis_type"`
	RecommendedAction string `json:"recommended_action"`
}

// ParseCrisisAssessment turns raw classifier output into a well-formed
// assessment. Any shape problem — invalid JSON, missing fields, values
// outside the contract — defaults the whole result to no-risk: a reachable
// but garbled classifier is no evidence of risk.
func ParseCrisisAssessment(text string) domain.CrisisAssessment {
	cleaned := stripCodeFences(text)

	var raw rawAssessment
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		logParseFailure(text, err)
		return domain.NoRiskAssessment()
	}

	if raw.CrisisRisk == nil || *raw.CrisisRisk < 0 || *raw.CrisisRisk > 10 {
		logParseFailure(text, fmt.Errorf("crisis_risk missing or out of range"))
		return domain.NoRiskAssessment()
	}
	if !domain.ValidCrisisType(domain.CrisisType(raw.CrisisType)) {
		logParseFailure(text, fmt.Errorf("unknown crisis_type %q", raw.CrisisType))
		return domain.NoRiskAssessment()
	}
	if !domain.ValidRecommendedAction(domain.RecommendedAction(raw.RecommendedAction)) {
		logParseFailure(text, fmt.Errorf("unknown recommended_action %q", raw.RecommendedAction))
		return domain.NoRiskAssessment()
	}

	return domain.CrisisAssessment{
		Risk:              *raw.CrisisRisk,
		Type:              domain.CrisisType(raw.CrisisType),
		RecommendedAction: domain.RecommendedAction(raw.RecommendedAction),
	}
}

// stripCodeFences unwraps the ```json ... ``` framing models tend to add
// even when told not to.
func stripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// drop the language tag line ("json")
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func logParseFailure(raw string, err error) {
	perr := &domain.ModelParseError{Raw: raw, Err: err}
	observability.Logger().Warn("crisis classifier output unusable, defaulting to no risk", "error", perr)
}
