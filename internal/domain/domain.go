package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank orders priorities for solver sorting; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 0
	default:
		return -1
	}
}

func (p Priority) Valid() bool { return p.Rank() >= 0 }

type TaskStatus string

const (
	TaskUnassigned TaskStatus = "unassigned"
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

type AgentStatus string

const (
	AgentAvailable AgentStatus = "available"
	AgentBusy      AgentStatus = "busy"
	AgentAway      AgentStatus = "away"
	AgentOffline   AgentStatus = "offline"
)

// Task is a unit of pending work. The allocation engine only reads tasks;
// the surrounding system owns and mutates them.
type Task struct {
	ID             uuid.UUID   `json:"task_id"`
	Name           string      `json:"task_name"`
	Description    string      `json:"description,omitempty"`
	RequiredSkills []string    `json:"required_skills"`
	Priority       Priority    `json:"priority"`
	EstimatedHours *float64    `json:"estimated_hours,omitempty"`
	Deadline       *time.Time  `json:"deadline,omitempty"`
	Dependencies   []uuid.UUID `json:"dependencies,omitempty"`
	Status         TaskStatus  `json:"status"`
	AssigneeID     *uuid.UUID  `json:"assignee_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Hours returns the estimated effort, zero when no estimate was given.
func (t *Task) Hours() float64 {
	if t.EstimatedHours == nil {
		return 0
	}
	return *t.EstimatedHours
}

// AgentHistory carries optional per-agent delivery history used for the
// experience and delivery_speed scoring factors.
type AgentHistory struct {
	CompletedBySkill map[string]int `json:"completed_by_skill,omitempty"`
	OnTimeRate       *float64       `json:"on_time_rate,omitempty"`
}

// Agent is an actor eligible to receive assignments (a team member in the
// surrounding product).
type Agent struct {
	ID                uuid.UUID     `json:"member_id"`
	Name              string        `json:"name"`
	Skills            []string      `json:"skills"`
	AvailabilityHours float64       `json:"availability_hours"`
	CurrentLoad       float64       `json:"current_load"`
	Status            AgentStatus   `json:"status"`
	Exclusions        []string      `json:"exclusions,omitempty"`
	History           *AgentHistory `json:"history,omitempty"`
}

func (a *Agent) HasSkill(skill string) bool {
	for _, s := range a.Skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}

// MatchedSkills returns the subset of required skills the agent has,
// preserving the order of required.
func (a *Agent) MatchedSkills(required []string) []string {
	var matched []string
	for _, r := range required {
		if a.HasSkill(r) {
			matched = append(matched, r)
		}
	}
	return matched
}

// Excludes reports whether the agent has a local exclusion rule against one
// of the required skills (e.g. a member who declines on-call work).
func (a *Agent) Excludes(required []string) (string, bool) {
	for _, e := range a.Exclusions {
		for _, r := range required {
			if strings.EqualFold(e, r) {
				return r, true
			}
		}
	}
	return "", false
}

type ConstraintType string

const (
	ConstraintHard ConstraintType = "hard"
	ConstraintSoft ConstraintType = "soft"
)

type ConstraintCategory string

const (
	CategorySkill        ConstraintCategory = "skill"
	CategoryWorkload     ConstraintCategory = "workload"
	CategoryAvailability ConstraintCategory = "availability"
	CategoryTimeline     ConstraintCategory = "timeline"
	CategoryQuality      ConstraintCategory = "quality"
	CategoryCustom       ConstraintCategory = "custom"
)

func (c ConstraintCategory) Valid() bool {
	switch c {
	case CategorySkill, CategoryWorkload, CategoryAvailability,
		CategoryTimeline, CategoryQuality, CategoryCustom:
		return true
	}
	return false
}

// Rejection records one hard-rule failure for a candidate pair. Rule is the
// stable rule name used for deduplication; Reason carries the observed
// values ("rule: observed values").
type Rejection struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

// Constraint is an allocation rule. Hard constraints disqualify candidates
// outright; soft constraints shift factor weights during scoring. Weight is
// meaningful only for soft constraints (1–10). Threshold is the
// category-specific parameter (e.g. max load ratio for workload).
type Constraint struct {
	ID        uuid.UUID          `json:"constraint_id"`
	Name      string             `json:"name"`
	Type      ConstraintType     `json:"type"`
	Category  ConstraintCategory `json:"category"`
	Weight    int                `json:"weight"`
	IsActive  bool               `json:"is_active"`
	Threshold *float64           `json:"threshold,omitempty"`
}
