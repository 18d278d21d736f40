package scoring

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Epsilon is the tolerance under which two totals count as tied.
const Epsilon = 1e-6

// CandidateScore is the complete scoring output for one task–agent pair.
// It is engine-internal and never persisted; the explanation layer renders
// from it without recomputation.
type CandidateScore struct {
	TaskID    uuid.UUID      `json:"task_id"`
	AgentID   uuid.UUID      `json:"member_id"`
	AgentName string         `json:"member_name"`
	Factors   []FactorResult `json:"factors"`
	Total     float64        `json:"total_score"`
	Reasons   []string       `json:"reasons"`
}

// Scorer computes the weighted additive score for eligible pairs.
type Scorer struct {
	logger *slog.Logger
}

func NewScorer(logger *slog.Logger) *Scorer {
	return &Scorer{logger: logger}
}

// ScoreCandidate computes all five factors for an eligible pair and folds
// them into a total using the given weights. Deterministic: identical inputs
// yield identical output.
func (s *Scorer) ScoreCandidate(pc *PairContext, weights WeightSet) CandidateScore {
	cs := CandidateScore{
		TaskID:    pc.Task.ID,
		AgentID:   pc.Agent.ID,
		AgentName: pc.Agent.Name,
	}

	factors := []FactorResult{
		WorkloadFairnessFactor(pc),
		ExperienceFactor(pc),
		AvailabilityRichnessFactor(pc),
		SkillBreadthFactor(pc),
		DeliverySpeedFactor(pc),
	}

	ws := []float64{
		weights.WorkloadFairness,
		weights.Experience,
		weights.AvailabilityRichness,
		weights.SkillBreadth,
		weights.DeliverySpeed,
	}

	var total float64
	for i := range factors {
		factors[i].Weight = ws[i]
		factors[i].Weighted = factors[i].Raw * ws[i]
		total += factors[i].Weighted
	}
	cs.Factors = factors
	cs.Total = total

	cs.Reasons = append(cs.Reasons, fmt.Sprintf("weighted score: %.3f", total))
	cs.Reasons = append(cs.Reasons, fmt.Sprintf("predicted completion: %.2fh", PredictedHours(pc, factors)))
	for _, f := range factors {
		cs.Reasons = append(cs.Reasons,
			fmt.Sprintf("%s %.2f x w%.2f = %.2f (%s)", f.Name, f.Raw, f.Weight, f.Weighted, f.Reason))
	}
	return cs
}

// PredictedHours estimates how long this agent would need for the task.
// Stronger experience, breadth, availability and fairness scores all pull
// the multiplier below 1.0; weak ones push it up. Floor of 15 minutes.
func PredictedHours(pc *PairContext, factors []FactorResult) float64 {
	base := pc.Task.Hours()
	if base <= 0 {
		base = 4.0
	}
	raw := func(name string) float64 {
		for _, f := range factors {
			if f.Name == name {
				return f.Raw
			}
		}
		return 0
	}
	experience := 1.45 - 0.65*raw(FactorExperience)
	breadth := 1.30 - 0.40*raw(FactorSkillBreadth)
	availability := 1.25 - 0.35*raw(FactorAvailabilityRichness)
	workload := 1.40 - 0.50*raw(FactorWorkloadFairness)

	predicted := base * experience * breadth * availability * workload
	if predicted < 0.25 {
		predicted = 0.25
	}
	return predicted
}

// FactorRaw returns the raw score of a named factor, zero if absent.
func (cs *CandidateScore) FactorRaw(name string) float64 {
	for _, f := range cs.Factors {
		if f.Name == name {
			return f.Raw
		}
	}
	return 0
}

// Better reports whether a should rank ahead of b. Totals within Epsilon
// are tied and broken by higher skill_breadth, then lower agent id — a
// stable order independent of map iteration.
func Better(a, b *CandidateScore) bool {
	if a.Total > b.Total+Epsilon {
		return true
	}
	if b.Total > a.Total+Epsilon {
		return false
	}
	ab, bb := a.FactorRaw(FactorSkillBreadth), b.FactorRaw(FactorSkillBreadth)
	if ab != bb {
		return ab > bb
	}
	return a.AgentID.String() < b.AgentID.String()
}
