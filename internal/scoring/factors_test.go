package scoring

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func float64Ptr(v float64) *float64 { return &v }

func testTask(skills []string, hours float64) *domain.Task {
	return &domain.Task{
		ID:             uuid.New(),
		Name:           "test task",
		RequiredSkills: skills,
		Priority:       domain.PriorityMedium,
		EstimatedHours: &hours,
		Status:         domain.TaskUnassigned,
	}
}

func testAgent(skills []string, capacity, load float64) *domain.Agent {
	return &domain.Agent{
		ID:                uuid.New(),
		Name:              "test agent",
		Skills:            skills,
		AvailabilityHours: capacity,
		CurrentLoad:       load,
		Status:            domain.AgentAvailable,
	}
}

func TestWorkloadFairnessFactor(t *testing.T) {
	tests := []struct {
		name     string
		capacity float64
		load     float64
		want     float64
	}{
		{"idle", 40, 0, 1.0},
		{"half loaded", 40, 20, 0.5},
		{"fully loaded", 40, 40, 0.0},
		{"overloaded clamps", 40, 50, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := &PairContext{
				Task:        testTask([]string{"go"}, 4),
				Agent:       testAgent([]string{"go"}, tt.capacity, tt.load),
				CurrentLoad: tt.load,
			}
			r := WorkloadFairnessFactor(pc)
			if math.Abs(r.Raw-tt.want) > 0.001 {
				t.Errorf("expected %f, got %f", tt.want, r.Raw)
			}
			if !r.Available {
				t.Error("expected available=true")
			}
		})
	}
}

func TestExperienceFactor(t *testing.T) {
	t.Run("no history unavailable", func(t *testing.T) {
		pc := &PairContext{
			Task:  testTask([]string{"go"}, 4),
			Agent: testAgent([]string{"go"}, 40, 0),
		}
		r := ExperienceFactor(pc)
		if r.Available {
			t.Error("expected available=false without history")
		}
		if r.Raw != 0 {
			t.Errorf("expected 0, got %f", r.Raw)
		}
	})

	t.Run("saturating normalization", func(t *testing.T) {
		agent := testAgent([]string{"go"}, 40, 0)
		agent.History = &domain.AgentHistory{CompletedBySkill: map[string]int{"go": 4}}
		pc := &PairContext{Task: testTask([]string{"go"}, 4), Agent: agent}
		r := ExperienceFactor(pc)
		if math.Abs(r.Raw-0.5) > 0.001 {
			t.Errorf("expected 0.5 for 4 completions, got %f", r.Raw)
		}
	})

	t.Run("sums across required skills", func(t *testing.T) {
		agent := testAgent([]string{"go", "sql"}, 40, 0)
		agent.History = &domain.AgentHistory{CompletedBySkill: map[string]int{"go": 8, "sql": 4, "css": 100}}
		pc := &PairContext{Task: testTask([]string{"go", "sql"}, 4), Agent: agent}
		r := ExperienceFactor(pc)
		want := 12.0 / 16.0
		if math.Abs(r.Raw-want) > 0.001 {
			t.Errorf("expected %f, got %f", want, r.Raw)
		}
	})
}

func TestAvailabilityRichnessFactor(t *testing.T) {
	tests := []struct {
		name     string
		capacity float64
		load     float64
		hours    float64
		want     float64
	}{
		{"lots of slack", 40, 0, 4, 0.9},
		{"exact fit", 40, 36, 4, 0.0},
		{"negative slack clamps", 40, 38, 4, 0.0},
		{"no load no task", 40, 0, 0, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := &PairContext{
				Task:        testTask([]string{"go"}, tt.hours),
				Agent:       testAgent([]string{"go"}, tt.capacity, tt.load),
				CurrentLoad: tt.load,
			}
			r := AvailabilityRichnessFactor(pc)
			if math.Abs(r.Raw-tt.want) > 0.001 {
				t.Errorf("expected %f, got %f", tt.want, r.Raw)
			}
		})
	}
}

func TestSkillBreadthFactor(t *testing.T) {
	tests := []struct {
		name     string
		required int
		min      int
		matched  int
		want     float64
	}{
		{"full coverage", 3, 1, 3, 1.0},
		{"minimum only", 3, 1, 1, 0.0},
		{"partial", 3, 1, 2, 0.5},
		{"min equals required", 2, 2, 2, 1.0},
		{"no requirements", 0, 0, 0, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skills := make([]string, tt.required)
			for i := range skills {
				skills[i] = string(rune('a' + i))
			}
			pc := &PairContext{
				Task:       testTask(skills, 4),
				Agent:      testAgent(skills, 40, 0),
				MinMatches: tt.min,
				Matched:    skills[:tt.matched],
			}
			r := SkillBreadthFactor(pc)
			if math.Abs(r.Raw-tt.want) > 0.001 {
				t.Errorf("expected %f, got %f", tt.want, r.Raw)
			}
		})
	}
}

func TestDeliverySpeedFactor(t *testing.T) {
	t.Run("no history unavailable", func(t *testing.T) {
		pc := &PairContext{
			Task:  testTask([]string{"go"}, 4),
			Agent: testAgent([]string{"go"}, 40, 0),
		}
		r := DeliverySpeedFactor(pc)
		if r.Available {
			t.Error("expected available=false without history")
		}
	})

	t.Run("on-time rate passes through", func(t *testing.T) {
		agent := testAgent([]string{"go"}, 40, 0)
		agent.History = &domain.AgentHistory{OnTimeRate: float64Ptr(0.85)}
		pc := &PairContext{Task: testTask([]string{"go"}, 4), Agent: agent}
		r := DeliverySpeedFactor(pc)
		if math.Abs(r.Raw-0.85) > 0.001 {
			t.Errorf("expected 0.85, got %f", r.Raw)
		}
	})
}

func TestClamp(t *testing.T) {
	if got := clamp(1.5, 0, 1); got != 1.0 {
		t.Errorf("expected 1.0, got %f", got)
	}
	if got := clamp(-0.5, 0, 1); got != 0.0 {
		t.Errorf("expected 0.0, got %f", got)
	}
	if got := clamp(0.5, 0, 1); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
}
