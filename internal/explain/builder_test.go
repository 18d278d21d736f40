package explain

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/domain"
	"github.com/kraftworks/kraft/internal/scoring"
)

func TestRecorderNumbersSteps(t *testing.T) {
	tr := &Recorder{}
	f1 := tr.Fact("requires_skill(t, go)")
	f2 := tr.Fact("has_skill(m, go)")
	d := tr.Derived("can_perform(m, t)", RuleCanPerform, f1, f2)

	steps := tr.Steps()
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	if f1 != 1 || f2 != 2 || d != 3 {
		t.Errorf("step numbers wrong: %d %d %d", f1, f2, d)
	}
	if steps[0].Rule != "" {
		t.Error("facts carry no rule")
	}
	if steps[2].Rule != RuleCanPerform {
		t.Errorf("expected rule annotation, got %q", steps[2].Rule)
	}
	if len(steps[2].Premises) != 2 {
		t.Errorf("expected 2 premises, got %v", steps[2].Premises)
	}
}

func TestBuildTraceOrdering(t *testing.T) {
	hours := 4.0
	task := &domain.Task{
		ID:             uuid.New(),
		Name:           "migrate schema",
		RequiredSkills: []string{"sql"},
		Priority:       domain.PriorityHigh,
		EstimatedHours: &hours,
	}
	agent := &domain.Agent{
		ID:                uuid.New(),
		Name:              "Dana",
		Skills:            []string{"sql", "go"},
		AvailabilityHours: 40,
		CurrentLoad:       10,
		Status:            domain.AgentAvailable,
	}
	chosen := &scoring.CandidateScore{AgentID: agent.ID, AgentName: agent.Name, Total: 0.71}

	steps := BuildTrace(task, agent, chosen, []string{"sql"}, 1, 2)
	if len(steps) != 8 {
		t.Fatalf("expected 8 steps, got %d", len(steps))
	}
	sawDerived := false
	for _, s := range steps {
		if s.Rule != "" {
			sawDerived = true
		} else if sawDerived {
			t.Error("facts must precede derived steps")
		}
	}
	last := steps[len(steps)-1]
	if last.Rule != RuleBest {
		t.Errorf("final step must be the decision, got rule %q", last.Rule)
	}
	if !strings.Contains(last.Statement, "assign(Dana") {
		t.Errorf("decision statement missing assignment: %q", last.Statement)
	}
}

func TestBuildTraceDeterministic(t *testing.T) {
	task := &domain.Task{ID: uuid.New(), Name: "t", RequiredSkills: []string{"go"}}
	agent := &domain.Agent{ID: uuid.New(), Name: "m", Skills: []string{"go"}, AvailabilityHours: 40}
	chosen := &scoring.CandidateScore{AgentID: agent.ID, Total: 0.5}

	a := BuildTrace(task, agent, chosen, []string{"go"}, 1, 0)
	b := BuildTrace(task, agent, chosen, []string{"go"}, 1, 0)
	for i := range a {
		if a[i].Statement != b[i].Statement || a[i].Rule != b[i].Rule {
			t.Fatalf("trace not deterministic at step %d", i+1)
		}
	}
}

func TestBestAlternative(t *testing.T) {
	chosen := &scoring.CandidateScore{AgentID: uuid.New(), AgentName: "A", Total: 0.8}
	runnerUp := &scoring.CandidateScore{AgentID: uuid.New(), AgentName: "B", Total: 0.6}

	t.Run("runner-up found", func(t *testing.T) {
		alt := BestAlternative(chosen, []*scoring.CandidateScore{chosen, runnerUp})
		if alt == nil {
			t.Fatal("expected an alternative")
		}
		if alt.MemberName != "B" {
			t.Errorf("expected B, got %s", alt.MemberName)
		}
		if alt.Gap != 0.8-0.6 {
			t.Errorf("expected gap 0.2, got %f", alt.Gap)
		}
	})

	t.Run("sole candidate", func(t *testing.T) {
		if alt := BestAlternative(chosen, []*scoring.CandidateScore{chosen}); alt != nil {
			t.Errorf("expected nil, got %+v", alt)
		}
	})
}

func TestTopRejections(t *testing.T) {
	ids := []uuid.UUID{
		uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		uuid.MustParse("00000000-0000-0000-0000-000000000003"),
	}
	rej := map[uuid.UUID][]domain.Rejection{
		ids[0]: {{Rule: "skill_gap", Reason: "skill_gap: matched 0 of 1 required skills"}},
		ids[1]: {{Rule: "skill_gap", Reason: "skill_gap: matched 0 of 1 required skills"}},
		ids[2]: {{Rule: "capacity", Reason: "capacity: 38.0h + 10.0h exceeds 40.0h"}},
	}

	got := TopRejections(rej, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 deduplicated reasons, got %d: %v", len(got), got)
	}
	if !strings.Contains(got[0], "skill_gap") || !strings.Contains(got[0], "(2 members)") {
		t.Errorf("most shared reason should lead with count: %q", got[0])
	}
	if !strings.Contains(got[1], "capacity") {
		t.Errorf("expected capacity second, got %q", got[1])
	}
}

func TestTopRejectionsCapped(t *testing.T) {
	rej := make(map[uuid.UUID][]domain.Rejection)
	rules := []string{"skill_gap", "capacity", "unavailable", "workload", "timeline", "quality", "availability"}
	for _, r := range rules {
		rej[uuid.New()] = []domain.Rejection{{Rule: r, Reason: r + ": observed"}}
	}
	got := TopRejections(rej, 10)
	if len(got) != MaxRejectionReasons {
		t.Errorf("expected cap of %d, got %d", MaxRejectionReasons, len(got))
	}
}

func TestConfidence(t *testing.T) {
	if got := Confidence(0.73); got != 73.0 {
		t.Errorf("expected 73.0, got %f", got)
	}
	if got := Confidence(-0.1); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
	if got := Confidence(1.5); got != 100 {
		t.Errorf("expected 100, got %f", got)
	}
}

func TestRunSummary(t *testing.T) {
	summary, overall := RunSummary(scoring.StrategyAutomatic, 5, 3, []string{"skill_gap: matched 0 of 2 required skills (2 members)"})
	if !strings.Contains(summary, "Allocated 3 task(s)") || !strings.Contains(summary, "2 task(s)") {
		t.Errorf("summary counts wrong: %q", summary)
	}
	if !strings.Contains(overall, "assigned 3/5") {
		t.Errorf("overall missing counts: %q", overall)
	}
	if !strings.Contains(overall, "automatic strategy") {
		t.Errorf("overall missing strategy: %q", overall)
	}
	if !strings.Contains(overall, "bottleneck") {
		t.Errorf("overall missing bottleneck line: %q", overall)
	}

	_, clean := RunSummary(scoring.StrategyBalanced, 3, 3, nil)
	if strings.Contains(clean, "bottleneck") {
		t.Error("no bottleneck line expected when everything assigned")
	}
}

func TestNarrate(t *testing.T) {
	req := &NarrateRequest{
		TaskName:       "migrate schema",
		MemberName:     "Dana",
		Score:          0.73,
		PredictedHours: 3.5,
		Factors: []scoring.FactorResult{
			{Name: scoring.FactorExperience, Raw: 0.8, Weight: 0.25, Weighted: 0.2},
			{Name: scoring.FactorWorkloadFairness, Raw: 0.9, Weight: 0.35, Weighted: 0.315},
		},
		BestAlternative:     &Alternative{MemberName: "Lee", Score: 0.61, Gap: 0.12},
		TopRejectionReasons: []string{"skill_gap: matched 0 of 1 required skills"},
	}

	got := Narrate(req)
	for _, want := range []string{"Dana", "migrate schema", "73/100", "Lee", "0.120", "Predicted completion time: 3.50h", "skill_gap"} {
		if !strings.Contains(got, want) {
			t.Errorf("narration missing %q:\n%s", want, got)
		}
	}
	if !strings.Contains(got, "workload_fairness(0.90 x w0.35)") {
		t.Errorf("top contributor should be highest weighted factor:\n%s", got)
	}
	if Narrate(req) != got {
		t.Error("narration must be deterministic")
	}
}
