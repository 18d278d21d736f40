package scoring

import (
	"fmt"
	"math"

	"github.com/kraftworks/kraft/internal/domain"
)

// Strategy selects a named weighting profile. All strategies share the same
// scoring algorithm; only the factor weights differ.
type Strategy string

const (
	StrategyAutomatic         Strategy = "automatic"
	StrategyFast              Strategy = "fast"
	StrategyBalanced          Strategy = "balanced"
	StrategyConstraintFocused Strategy = "constraint_focused"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyAutomatic, StrategyFast, StrategyBalanced, StrategyConstraintFocused:
		return true
	}
	return false
}

// WeightSet defines the relative importance of each scoring factor.
// All weights must sum to 1.0 (±0.001 tolerance).
type WeightSet struct {
	WorkloadFairness     float64
	Experience           float64
	AvailabilityRichness float64
	SkillBreadth         float64
	DeliverySpeed        float64
}

// DefaultWeights is the automatic profile: fairness-first with a meaningful
// experience component.
func DefaultWeights() WeightSet {
	return WeightSet{
		WorkloadFairness:     0.35,
		Experience:           0.25,
		AvailabilityRichness: 0.20,
		SkillBreadth:         0.10,
		DeliverySpeed:        0.10,
	}
}

// ProfileWeights returns the built-in weight profile for a strategy. The
// automatic profile is the baseline passed in, so callers can tune it via
// configuration without touching the other profiles.
func ProfileWeights(s Strategy, automatic WeightSet) WeightSet {
	switch s {
	case StrategyFast:
		return WeightSet{
			WorkloadFairness:     0.20,
			Experience:           0.15,
			AvailabilityRichness: 0.25,
			SkillBreadth:         0.10,
			DeliverySpeed:        0.30,
		}
	case StrategyBalanced:
		return WeightSet{
			WorkloadFairness:     0.20,
			Experience:           0.20,
			AvailabilityRichness: 0.20,
			SkillBreadth:         0.20,
			DeliverySpeed:        0.20,
		}
	case StrategyConstraintFocused:
		return WeightSet{
			WorkloadFairness:     0.40,
			Experience:           0.15,
			AvailabilityRichness: 0.25,
			SkillBreadth:         0.10,
			DeliverySpeed:        0.10,
		}
	default:
		return automatic
	}
}

func (w WeightSet) Sum() float64 {
	return w.WorkloadFairness + w.Experience + w.AvailabilityRichness +
		w.SkillBreadth + w.DeliverySpeed
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}

func (w WeightSet) asList() []float64 {
	return []float64{
		w.WorkloadFairness, w.Experience, w.AvailabilityRichness,
		w.SkillBreadth, w.DeliverySpeed,
	}
}

// ApplySoftConstraints boosts the factor mapped to each active soft
// constraint's category by 1 + weight/10, then renormalizes so the set still
// sums to 1. Hard constraints and custom-category constraints do not affect
// weights.
func (w WeightSet) ApplySoftConstraints(constraints []*domain.Constraint) WeightSet {
	out := w
	for _, c := range constraints {
		if c == nil || !c.IsActive || c.Type != domain.ConstraintSoft {
			continue
		}
		boost := 1.0 + float64(c.Weight)/10.0
		switch c.Category {
		case domain.CategoryWorkload:
			out.WorkloadFairness *= boost
		case domain.CategoryAvailability:
			out.AvailabilityRichness *= boost
		case domain.CategorySkill:
			out.SkillBreadth *= boost
		case domain.CategoryTimeline:
			out.DeliverySpeed *= boost
		case domain.CategoryQuality:
			out.Experience *= boost
		}
	}
	sum := out.Sum()
	if sum <= 0 {
		return w
	}
	out.WorkloadFairness /= sum
	out.Experience /= sum
	out.AvailabilityRichness /= sum
	out.SkillBreadth /= sum
	out.DeliverySpeed /= sum
	return out
}
