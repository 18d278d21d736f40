package scoring

import (
	"fmt"

	"github.com/kraftworks/kraft/internal/domain"
)

// Factor names are part of the explanation contract echoed to callers.
// Renaming one is a breaking change.
const (
	FactorWorkloadFairness     = "workload_fairness"
	FactorExperience           = "experience"
	FactorAvailabilityRichness = "availability_richness"
	FactorSkillBreadth         = "skill_breadth"
	FactorDeliverySpeed        = "delivery_speed"
)

// FactorResult captures one factor's contribution to the total score.
// Raw is the normalized 0–1 score before weighting.
type FactorResult struct {
	Name      string  `json:"name"`
	Raw       float64 `json:"raw"`
	Weight    float64 `json:"weight"`
	Weighted  float64 `json:"weighted"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason"`
}

// PairContext bundles the inputs needed to score one task–agent pair.
// CurrentLoad is the solver's working-copy load for the agent, which may
// already include hours committed earlier in the same run.
type PairContext struct {
	Task        *domain.Task
	Agent       *domain.Agent
	CurrentLoad float64
	MinMatches  int
	Matched     []string
}

// WorkloadFairnessFactor rewards agents further below their capacity
// ceiling, spreading load across the team.
func WorkloadFairnessFactor(pc *PairContext) FactorResult {
	cap := pc.Agent.AvailabilityHours
	raw := clamp(1.0-pc.CurrentLoad/cap, 0, 1)
	return FactorResult{
		Name:      FactorWorkloadFairness,
		Raw:       raw,
		Available: true,
		Reason:    fmt.Sprintf("current load %.1fh of %.1fh capacity", pc.CurrentLoad, cap),
	}
}

// ExperienceFactor is proportional to the agent's completed-task count for
// the required skills. Saturating normalization (n/(n+4)) keeps the score a
// pure function of the pair, independent of the rest of the candidate pool.
func ExperienceFactor(pc *PairContext) FactorResult {
	if pc.Agent.History == nil || len(pc.Agent.History.CompletedBySkill) == 0 {
		return FactorResult{Name: FactorExperience, Raw: 0, Available: false, Reason: "no completion history"}
	}
	n := 0
	for _, skill := range pc.Task.RequiredSkills {
		n += pc.Agent.History.CompletedBySkill[skill]
	}
	raw := float64(n) / (float64(n) + 4.0)
	return FactorResult{
		Name:      FactorExperience,
		Raw:       raw,
		Available: true,
		Reason:    fmt.Sprintf("%d completed tasks on required skills", n),
	}
}

// AvailabilityRichnessFactor rewards slack beyond the immediate task, so
// agents keep headroom for future work.
func AvailabilityRichnessFactor(pc *PairContext) FactorResult {
	cap := pc.Agent.AvailabilityHours
	slack := cap - pc.CurrentLoad - pc.Task.Hours()
	raw := clamp(slack/cap, 0, 1)
	return FactorResult{
		Name:      FactorAvailabilityRichness,
		Raw:       raw,
		Available: true,
		Reason:    fmt.Sprintf("%.1fh slack after task", slack),
	}
}

// SkillBreadthFactor counts required skills matched beyond the eligibility
// minimum. Called only for eligible pairs, so len(Matched) >= MinMatches.
func SkillBreadthFactor(pc *PairContext) FactorResult {
	required := len(pc.Task.RequiredSkills)
	matched := len(pc.Matched)
	denom := required - pc.MinMatches
	raw := 1.0
	if denom > 0 {
		raw = float64(matched-pc.MinMatches) / float64(denom)
	}
	return FactorResult{
		Name:      FactorSkillBreadth,
		Raw:       clamp(raw, 0, 1),
		Available: true,
		Reason:    fmt.Sprintf("matched %d of %d required skills", matched, required),
	}
}

// DeliverySpeedFactor rewards agents with a high historical on-time rate.
// Zero contribution when no history exists.
func DeliverySpeedFactor(pc *PairContext) FactorResult {
	if pc.Agent.History == nil || pc.Agent.History.OnTimeRate == nil {
		return FactorResult{Name: FactorDeliverySpeed, Raw: 0, Available: false, Reason: "no delivery history"}
	}
	raw := clamp(*pc.Agent.History.OnTimeRate, 0, 1)
	return FactorResult{
		Name:      FactorDeliverySpeed,
		Raw:       raw,
		Available: true,
		Reason:    fmt.Sprintf("on-time rate %.0f%%", raw*100),
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
