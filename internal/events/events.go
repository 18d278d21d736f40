package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/scoring"
)

// TaskAssignedEvent is published for each committed assignment. It carries
// the factor breakdown so consumers can render explanations without a
// follow-up query.
type TaskAssignedEvent struct {
	RunID          uuid.UUID              `json:"run_id"`
	TaskID         uuid.UUID              `json:"task_id"`
	TaskName       string                 `json:"task_name"`
	MemberID       uuid.UUID              `json:"team_member_id"`
	MemberName     string                 `json:"team_member_name"`
	Score          float64                `json:"score"`
	PredictedHours float64                `json:"predicted_completion_hours"`
	Factors        []scoring.FactorResult `json:"factors"`
	Applied        bool                   `json:"applied"`
	OccurredAt     time.Time              `json:"occurred_at"`
}

// TaskUnassignedEvent is published for each task left without a member.
type TaskUnassignedEvent struct {
	RunID      uuid.UUID `json:"run_id"`
	TaskID     uuid.UUID `json:"task_id"`
	TaskName   string    `json:"task_name"`
	Reasons    []string  `json:"reasons"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RunCompletedEvent summarizes one allocation run.
type RunCompletedEvent struct {
	RunID                 uuid.UUID `json:"run_id"`
	Strategy              string    `json:"strategy"`
	TasksProcessed        int       `json:"tasks_processed"`
	SuccessfulAllocations int       `json:"successful_allocations"`
	Applied               bool      `json:"applied"`
	Summary               string    `json:"summary"`
	OccurredAt            time.Time `json:"occurred_at"`
}
