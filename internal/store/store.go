// Package store persists tasks, team members, constraints and allocation
// runs. The engine never touches it; the API layer loads inputs here and
// applies results after a run.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/domain"
	"github.com/kraftworks/kraft/internal/engine"
)

// TaskFilter narrows ListTasks. Zero values mean no filter.
type TaskFilter struct {
	Status domain.TaskStatus
	IDs    []uuid.UUID
	Limit  int
}

// MemberFilter narrows ListMembers.
type MemberFilter struct {
	Status domain.AgentStatus
	IDs    []uuid.UUID
}

// PreAllocationStats are the cheap counts callers check before deciding to
// run an allocation.
type PreAllocationStats struct {
	TotalTasks       int `json:"total_tasks"`
	UnassignedTasks  int `json:"unassigned_tasks"`
	AssignedTasks    int `json:"assigned_tasks"`
	TotalMembers     int `json:"total_members"`
	AvailableMembers int `json:"available_members"`
	TotalSkills      int `json:"total_skills"`
}

type Store interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	CreateMember(ctx context.Context, member *domain.Agent) error
	GetMember(ctx context.Context, id uuid.UUID) (*domain.Agent, error)
	ListMembers(ctx context.Context, filter MemberFilter) ([]*domain.Agent, error)

	CreateConstraint(ctx context.Context, c *domain.Constraint) error
	ListConstraints(ctx context.Context, activeOnly bool) ([]*domain.Constraint, error)

	PreAllocationStats(ctx context.Context) (*PreAllocationStats, error)

	// ApplyRun persists a run and its assignments transactionally: run and
	// allocation rows, task status and assignee updates, member load
	// updates. All or nothing.
	ApplyRun(ctx context.Context, result *engine.RunResult) error

	Close() error
}
