package scoring

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/domain"
)

func TestProfileWeightsAllValid(t *testing.T) {
	for _, s := range []Strategy{StrategyAutomatic, StrategyFast, StrategyBalanced, StrategyConstraintFocused} {
		w := ProfileWeights(s, DefaultWeights())
		if err := w.Validate(); err != nil {
			t.Errorf("profile %s invalid: %v", s, err)
		}
	}
}

func TestProfileWeightsAutomaticUsesBaseline(t *testing.T) {
	custom := WeightSet{
		WorkloadFairness:     0.5,
		Experience:           0.2,
		AvailabilityRichness: 0.1,
		SkillBreadth:         0.1,
		DeliverySpeed:        0.1,
	}
	got := ProfileWeights(StrategyAutomatic, custom)
	if got != custom {
		t.Errorf("automatic profile should pass baseline through, got %+v", got)
	}
}

func TestWeightSetValidate(t *testing.T) {
	bad := WeightSet{WorkloadFairness: 0.5, Experience: 0.6}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for weights summing to 1.1")
	}
	neg := WeightSet{WorkloadFairness: 1.2, Experience: -0.2}
	if err := neg.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestApplySoftConstraints(t *testing.T) {
	base := DefaultWeights()

	t.Run("boosts mapped factor and renormalizes", func(t *testing.T) {
		c := &domain.Constraint{
			ID:       uuid.New(),
			Name:     "prefer quick delivery",
			Type:     domain.ConstraintSoft,
			Category: domain.CategoryTimeline,
			Weight:   10,
			IsActive: true,
		}
		got := base.ApplySoftConstraints([]*domain.Constraint{c})
		if math.Abs(got.Sum()-1.0) > 0.001 {
			t.Errorf("adjusted weights sum to %f, expected 1.0", got.Sum())
		}
		if got.DeliverySpeed <= base.DeliverySpeed {
			t.Errorf("expected delivery_speed boosted above %f, got %f", base.DeliverySpeed, got.DeliverySpeed)
		}
		if got.WorkloadFairness >= base.WorkloadFairness {
			t.Error("expected other weights reduced by renormalization")
		}
	})

	t.Run("inactive and hard constraints ignored", func(t *testing.T) {
		cs := []*domain.Constraint{
			{Type: domain.ConstraintSoft, Category: domain.CategoryTimeline, Weight: 10, IsActive: false},
			{Type: domain.ConstraintHard, Category: domain.CategoryTimeline, Weight: 10, IsActive: true},
		}
		got := base.ApplySoftConstraints(cs)
		if got != base {
			t.Errorf("expected weights unchanged, got %+v", got)
		}
	})

	t.Run("custom category has no mapped factor", func(t *testing.T) {
		cs := []*domain.Constraint{
			{Type: domain.ConstraintSoft, Category: domain.CategoryCustom, Weight: 10, IsActive: true},
		}
		got := base.ApplySoftConstraints(cs)
		if got != base {
			t.Errorf("expected weights unchanged, got %+v", got)
		}
	})
}

func scoredPair(capacity, load float64, history *domain.AgentHistory) *PairContext {
	task := testTask([]string{"go", "sql"}, 4)
	agent := testAgent([]string{"go", "sql"}, capacity, load)
	agent.History = history
	return &PairContext{
		Task:        task,
		Agent:       agent,
		CurrentLoad: load,
		MinMatches:  1,
		Matched:     []string{"go", "sql"},
	}
}

func TestScoreCandidateDeterministic(t *testing.T) {
	s := NewScorer(discardLogger())
	pc := scoredPair(40, 10, &domain.AgentHistory{
		CompletedBySkill: map[string]int{"go": 4},
		OnTimeRate:       float64Ptr(0.9),
	})
	w := DefaultWeights()

	a := s.ScoreCandidate(pc, w)
	b := s.ScoreCandidate(pc, w)
	if a.Total != b.Total {
		t.Errorf("scoring not deterministic: %f vs %f", a.Total, b.Total)
	}
	if len(a.Factors) != 5 {
		t.Fatalf("expected 5 factors, got %d", len(a.Factors))
	}

	var sum float64
	for _, f := range a.Factors {
		if f.Weighted != f.Raw*f.Weight {
			t.Errorf("factor %s weighted %f != raw*weight %f", f.Name, f.Weighted, f.Raw*f.Weight)
		}
		sum += f.Weighted
	}
	if math.Abs(sum-a.Total) > 1e-9 {
		t.Errorf("total %f != sum of weighted %f", a.Total, sum)
	}
	if a.Total < 0 || a.Total > 1 {
		t.Errorf("total %f outside [0,1]", a.Total)
	}
	if len(a.Reasons) < 7 {
		t.Errorf("expected summary plus per-factor reasons, got %d", len(a.Reasons))
	}
}

func TestScoreCandidateMissingHistoryContributesZero(t *testing.T) {
	s := NewScorer(discardLogger())
	pc := scoredPair(40, 10, nil)
	cs := s.ScoreCandidate(pc, DefaultWeights())
	for _, f := range cs.Factors {
		if f.Name == FactorExperience || f.Name == FactorDeliverySpeed {
			if f.Available {
				t.Errorf("factor %s should be unavailable without history", f.Name)
			}
			if f.Weighted != 0 {
				t.Errorf("factor %s should contribute 0, got %f", f.Name, f.Weighted)
			}
		}
	}
}

func TestPredictedHours(t *testing.T) {
	t.Run("strong candidate beats base estimate", func(t *testing.T) {
		pc := scoredPair(40, 0, &domain.AgentHistory{
			CompletedBySkill: map[string]int{"go": 40, "sql": 40},
			OnTimeRate:       float64Ptr(1.0),
		})
		s := NewScorer(discardLogger())
		cs := s.ScoreCandidate(pc, DefaultWeights())
		got := PredictedHours(pc, cs.Factors)
		if got >= pc.Task.Hours() {
			t.Errorf("expected prediction below %.1fh for strong candidate, got %.2fh", pc.Task.Hours(), got)
		}
	})

	t.Run("weak candidate exceeds base estimate", func(t *testing.T) {
		pc := scoredPair(40, 36, nil)
		pc.Matched = []string{"go"}
		s := NewScorer(discardLogger())
		cs := s.ScoreCandidate(pc, DefaultWeights())
		got := PredictedHours(pc, cs.Factors)
		if got <= pc.Task.Hours() {
			t.Errorf("expected prediction above %.1fh for weak candidate, got %.2fh", pc.Task.Hours(), got)
		}
	})

	t.Run("floor applies", func(t *testing.T) {
		hours := 0.1
		pc := scoredPair(40, 0, &domain.AgentHistory{
			CompletedBySkill: map[string]int{"go": 100, "sql": 100},
			OnTimeRate:       float64Ptr(1.0),
		})
		pc.Task.EstimatedHours = &hours
		s := NewScorer(discardLogger())
		cs := s.ScoreCandidate(pc, DefaultWeights())
		got := PredictedHours(pc, cs.Factors)
		if got < 0.25 {
			t.Errorf("expected floor of 0.25h, got %.2fh", got)
		}
	})
}

func TestBetterTieBreaks(t *testing.T) {
	idLow := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	idHigh := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	t.Run("higher total wins", func(t *testing.T) {
		a := &CandidateScore{AgentID: idHigh, Total: 0.8}
		b := &CandidateScore{AgentID: idLow, Total: 0.6}
		if !Better(a, b) {
			t.Error("expected higher total to win")
		}
	})

	t.Run("tie broken by skill breadth", func(t *testing.T) {
		a := &CandidateScore{AgentID: idHigh, Total: 0.7,
			Factors: []FactorResult{{Name: FactorSkillBreadth, Raw: 1.0}}}
		b := &CandidateScore{AgentID: idLow, Total: 0.7,
			Factors: []FactorResult{{Name: FactorSkillBreadth, Raw: 0.5}}}
		if !Better(a, b) {
			t.Error("expected higher breadth to break tie")
		}
	})

	t.Run("final tie broken by lower id", func(t *testing.T) {
		a := &CandidateScore{AgentID: idLow, Total: 0.7}
		b := &CandidateScore{AgentID: idHigh, Total: 0.7}
		if !Better(a, b) {
			t.Error("expected lower id to break tie")
		}
		if Better(b, a) {
			t.Error("tie-break must be asymmetric")
		}
	})

	t.Run("epsilon treats near totals as tied", func(t *testing.T) {
		a := &CandidateScore{AgentID: idLow, Total: 0.7}
		b := &CandidateScore{AgentID: idHigh, Total: 0.7 + Epsilon/2}
		if !Better(a, b) {
			t.Error("expected sub-epsilon difference to fall through to id tie-break")
		}
	})
}

func TestComputeFrontier(t *testing.T) {
	a := FrontierCandidate{MemberID: "a", Fairness: 0.9, Breadth: 0.5, Speed: 0.5}
	b := FrontierCandidate{MemberID: "b", Fairness: 0.5, Breadth: 0.9, Speed: 0.5}
	dominated := FrontierCandidate{MemberID: "c", Fairness: 0.4, Breadth: 0.4, Speed: 0.4}

	frontier := ComputeFrontier([]FrontierCandidate{a, b, dominated})
	if len(frontier) != 2 {
		t.Fatalf("expected 2 frontier candidates, got %d", len(frontier))
	}
	for _, f := range frontier {
		if f.MemberID == "c" {
			t.Error("dominated candidate should not be on frontier")
		}
	}
}
