// Package engine implements the allocation reasoning core: eligibility
// filtering, candidate scoring, greedy priority-order assignment and
// explanation assembly. The engine is synchronous, holds no cross-run state
// and never mutates caller-supplied records; capacity bookkeeping happens on
// a per-run working copy.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/explain"
	"github.com/kraftworks/kraft/internal/scoring"
)

// Options configures one allocation run.
type Options struct {
	// Strategy selects the factor weighting profile. Empty means automatic.
	Strategy scoring.Strategy

	// Apply signals whether the caller intends to persist the results. The
	// engine computes identically either way; the flag is echoed back so
	// downstream layers can honor dry runs.
	Apply bool

	// TaskIDs and AgentIDs are optional allow-lists restricting the run to
	// a subset of the supplied collections.
	TaskIDs  []uuid.UUID
	AgentIDs []uuid.UUID

	// Now pins the clock for timeline evaluation. Zero means wall clock.
	Now time.Time

	// MaxCandidatePairs bounds len(tasks) x len(agents) before the run
	// starts. Zero disables the bound.
	MaxCandidatePairs int
}

// Assignment is one committed task-to-member decision with its full
// explanation payload.
type Assignment struct {
	TaskID                uuid.UUID                      `json:"task_id"`
	TaskName              string                         `json:"task_name"`
	AgentID               uuid.UUID                      `json:"team_member_id"`
	AgentName             string                         `json:"team_member_name"`
	Score                 float64                        `json:"score"`
	PredictedHours        float64                        `json:"predicted_completion_hours"`
	ConstraintsSatisfied  []string                       `json:"constraints_satisfied"`
	Explanation           string                         `json:"explanation"`
	InferenceTrace        []explain.InferenceStep        `json:"inference_trace"`
	CandidateExplanations []explain.CandidateExplanation `json:"candidate_explanations"`
	BestAlternative       *explain.Alternative           `json:"best_alternative,omitempty"`
	CandidateFrontier     []scoring.FrontierCandidate    `json:"candidate_frontier,omitempty"`

	// Detail is the winning candidate's full score breakdown. Engine
	// output only, never persisted.
	Detail *scoring.CandidateScore `json:"-"`
}

// UnassignedTask reports a task that could not be allocated, with the
// deduplicated reasons observed during filtering.
type UnassignedTask struct {
	TaskID   uuid.UUID `json:"task_id"`
	TaskName string    `json:"task_name"`
	Reasons  []string  `json:"reasons"`
}

// RunResult is the complete outcome of one allocation run.
type RunResult struct {
	RunID                 uuid.UUID        `json:"run_id"`
	Strategy              scoring.Strategy `json:"strategy"`
	Applied               bool             `json:"applied"`
	Assignments           []Assignment     `json:"assignments"`
	UnassignedTasks       []UnassignedTask `json:"unassigned_tasks"`
	TasksProcessed        int              `json:"tasks_processed"`
	SuccessfulAllocations int              `json:"successful_allocations"`
	Summary               string           `json:"summary"`
	OverallExplanation    string           `json:"overall_explanation"`
	StartedAt             time.Time        `json:"started_at"`
}
