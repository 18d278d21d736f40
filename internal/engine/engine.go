package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/domain"
	"github.com/kraftworks/kraft/internal/explain"
	"github.com/kraftworks/kraft/internal/scoring"
)

// Predicate evaluates a custom hard constraint for one pair. It returns
// whether the pair passes and, on failure, the observed values for the
// rejection reason. A panicking predicate is recovered per candidate: only
// that pair is rejected (scoring_unavailable); the task and the rest of the
// run continue.
type Predicate func(task *domain.Task, agent *domain.Agent) (bool, string)

// Engine is the run orchestrator. It is safe for concurrent runs: each run
// builds its own capacity working copy and the engine itself is read-only
// after construction.
type Engine struct {
	scorer     *scoring.Scorer
	weights    scoring.WeightSet
	predicates map[string]Predicate
	logger     *slog.Logger
}

// New builds an engine with the given automatic-profile weights. Invalid
// weights are rejected so a misconfigured service fails at startup rather
// than mid-run.
func New(weights scoring.WeightSet, logger *slog.Logger) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}
	return &Engine{
		scorer:     scoring.NewScorer(logger),
		weights:    weights,
		predicates: make(map[string]Predicate),
		logger:     logger,
	}, nil
}

// RegisterPredicate binds a named predicate to custom-category hard
// constraints. Call before the first run; the registry is not synchronized.
func (e *Engine) RegisterPredicate(name string, p Predicate) {
	e.predicates[name] = p
}

// Run performs one allocation pass: validate, filter, score, assign and
// explain. The caller's tasks, agents and constraints are never mutated;
// capacity bookkeeping uses a per-run working copy. Tasks are processed
// strictly in priority order so later tasks see capacity consumed by
// earlier ones.
func (e *Engine) Run(tasks []*domain.Task, agents []*domain.Agent, constraints []*domain.Constraint, opts Options) (*RunResult, error) {
	if opts.Strategy == "" {
		opts.Strategy = scoring.StrategyAutomatic
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if err := validateInputs(tasks, agents, constraints, opts); err != nil {
		return nil, err
	}

	tasks = filterByID(tasks, opts.TaskIDs, func(t *domain.Task) uuid.UUID { return t.ID })
	agents = filterByID(agents, opts.AgentIDs, func(a *domain.Agent) uuid.UUID { return a.ID })

	var active []*domain.Constraint
	for _, c := range constraints {
		if c.IsActive {
			active = append(active, c)
		}
	}
	weights := scoring.ProfileWeights(opts.Strategy, e.weights).ApplySoftConstraints(active)

	byID := make(map[uuid.UUID]*domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	var pending []*domain.Task
	for _, t := range tasks {
		if t.Status == domain.TaskUnassigned {
			pending = append(pending, t)
		}
	}

	loads := make(map[uuid.UUID]float64, len(agents))
	for _, a := range agents {
		loads[a.ID] = a.CurrentLoad
	}

	result := &RunResult{
		RunID:     uuid.New(),
		Strategy:  opts.Strategy,
		Applied:   opts.Apply,
		StartedAt: now,
	}

	for _, task := range orderTasks(pending) {
		result.TasksProcessed++

		if dep, ok := dependenciesMet(task, byID); !ok {
			result.UnassignedTasks = append(result.UnassignedTasks, UnassignedTask{
				TaskID:   task.ID,
				TaskName: task.Name,
				Reasons:  []string{fmt.Sprintf("%s: dependency %s not completed", RuleBlockedByDependency, dep)},
			})
			continue
		}

		assignment, reasons := e.runTask(task, agents, active, weights, loads, now)
		if assignment != nil {
			result.Assignments = append(result.Assignments, *assignment)
			result.SuccessfulAllocations++
			e.logger.Info("task assigned",
				"task_id", task.ID, "member_id", assignment.AgentID, "score", assignment.Score)
			continue
		}
		result.UnassignedTasks = append(result.UnassignedTasks, UnassignedTask{
			TaskID:   task.ID,
			TaskName: task.Name,
			Reasons:  reasons,
		})
		e.logger.Info("task unassigned", "task_id", task.ID, "reasons", reasons)
	}

	result.Summary, result.OverallExplanation = explain.RunSummary(
		opts.Strategy, result.TasksProcessed, result.SuccessfulAllocations,
		runBottlenecks(result.UnassignedTasks))
	return result, nil
}

// runTask wraps solveTask with a per-task recovery boundary: a panic while
// solving one task records it unassigned and never corrupts the rest of the
// run.
func (e *Engine) runTask(task *domain.Task, agents []*domain.Agent, constraints []*domain.Constraint, weights scoring.WeightSet, loads map[uuid.UUID]float64, now time.Time) (assignment *Assignment, reasons []string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("task processing panicked", "task_id", task.ID, "panic", fmt.Sprint(r))
			assignment = nil
			reasons = []string{fmt.Sprintf("%s: task processing failed", RuleInternalError)}
		}
	}()
	return e.solveTask(task, agents, constraints, weights, loads, now)
}

// runBottlenecks collects the leading rejection reason of each unassigned
// task, deduplicated, for the overall explanation.
func runBottlenecks(unassigned []UnassignedTask) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range unassigned {
		if len(u.Reasons) == 0 {
			continue
		}
		lead := u.Reasons[0]
		if !seen[lead] {
			seen[lead] = true
			out = append(out, lead)
		}
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func filterByID[T any](items []*T, allow []uuid.UUID, id func(*T) uuid.UUID) []*T {
	if len(allow) == 0 {
		return items
	}
	allowed := make(map[uuid.UUID]bool, len(allow))
	for _, a := range allow {
		allowed[a] = true
	}
	var out []*T
	for _, it := range items {
		if allowed[id(it)] {
			out = append(out, it)
		}
	}
	return out
}
