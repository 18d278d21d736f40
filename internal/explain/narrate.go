package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/scoring"
)

// NarrateRequest is a fully-formed explanation request: everything needed to
// narrate a decision without touching the solver. Callers that want richer
// prose can hand the same payload to a language model instead.
type NarrateRequest struct {
	TaskID     uuid.UUID `json:"task_id"`
	TaskName   string    `json:"task_name"`
	MemberID   uuid.UUID `json:"team_member_id"`
	MemberName string    `json:"team_member_name"`

	// Score is the raw weighted total on the 0-1 scale, not the 0-100
	// confidence presentation; narration converts it.
	Score float64 `json:"chosen_score"`

	PredictedHours       float64                `json:"predicted_hours,omitempty"`
	ConstraintsSatisfied []string               `json:"constraints_satisfied,omitempty"`
	Factors              []scoring.FactorResult `json:"factors,omitempty"`
	ChosenReasons        []string               `json:"chosen_reasons,omitempty"`
	BestAlternative      *Alternative           `json:"best_alternative,omitempty"`
	TopRejectionReasons  []string               `json:"top_rejection_reasons,omitempty"`
	HardRules            []string               `json:"hard_rules,omitempty"`
	ScoringFactors       []string               `json:"scoring_factors,omitempty"`
}

func defaultHardRules() []string {
	return []string{
		"Minimum required skill coverage must be met.",
		"Member status must be available.",
		"Assigned hours must fit within remaining capacity.",
	}
}

func defaultScoringFactors() []string {
	return []string{
		scoring.FactorWorkloadFairness,
		scoring.FactorExperience,
		scoring.FactorAvailabilityRichness,
		scoring.FactorSkillBreadth,
		scoring.FactorDeliverySpeed,
	}
}

// Narrate renders a templated natural-language explanation for one
// assignment decision. Deterministic for identical requests.
func Narrate(req *NarrateRequest) string {
	hardRules := req.HardRules
	if len(hardRules) == 0 {
		hardRules = defaultHardRules()
	}
	factors := req.ScoringFactors
	if len(factors) == 0 {
		factors = defaultScoringFactors()
	}

	lines := []string{
		fmt.Sprintf("- %s assigned to %s with confidence %.0f/100.", req.MemberName, req.TaskName, Confidence(req.Score)),
		fmt.Sprintf("- Eligible: %s", strings.Join(hardRules, " ")),
		fmt.Sprintf("- Selected by weighted scoring (%s)%s.", strings.Join(factors, ", "), topFactorText(req.Factors)),
	}
	if req.PredictedHours > 0 {
		lines = append(lines, fmt.Sprintf("- Predicted completion time: %.2fh.", req.PredictedHours))
	}
	if alt := req.BestAlternative; alt != nil {
		lines = append(lines, fmt.Sprintf("- Runner-up: %s scored %.3f, a gap of %.3f.", alt.MemberName, alt.Score, alt.Gap))
	}
	if len(req.TopRejectionReasons) > 0 {
		lines = append(lines, fmt.Sprintf("- Others ruled out: %s.", strings.Join(req.TopRejectionReasons, "; ")))
	}
	return strings.Join(lines, "\n")
}

// topFactorText names the two largest weighted contributions, empty when no
// factor breakdown was supplied.
func topFactorText(factors []scoring.FactorResult) string {
	if len(factors) == 0 {
		return ""
	}
	sorted := make([]scoring.FactorResult, len(factors))
	copy(sorted, factors)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weighted > sorted[j].Weighted })
	if len(sorted) > 2 {
		sorted = sorted[:2]
	}
	parts := make([]string, 0, len(sorted))
	for _, f := range sorted {
		parts = append(parts, fmt.Sprintf("%s(%.2f x w%.2f)", f.Name, f.Raw, f.Weight))
	}
	return "; top contributors: " + strings.Join(parts, ", ")
}
