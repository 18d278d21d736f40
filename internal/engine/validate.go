package engine

import (
	"errors"
	"fmt"

	"github.com/kraftworks/kraft/internal/domain"
)

// ValidationError reports malformed input. It is raised before any
// processing starts; a run that returns one has computed nothing.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validateInputs(tasks []*domain.Task, agents []*domain.Agent, constraints []*domain.Constraint, opts Options) error {
	if opts.Strategy != "" && !opts.Strategy.Valid() {
		return &ValidationError{Field: "strategy", Msg: fmt.Sprintf("unknown strategy %q", opts.Strategy)}
	}
	if opts.MaxCandidatePairs > 0 && len(tasks)*len(agents) > opts.MaxCandidatePairs {
		return &ValidationError{
			Field: "input size",
			Msg:   fmt.Sprintf("%d candidate pairs exceed limit %d", len(tasks)*len(agents), opts.MaxCandidatePairs),
		}
	}

	for i, t := range tasks {
		if t == nil {
			return &ValidationError{Field: "tasks", Msg: fmt.Sprintf("task %d is nil", i)}
		}
		if t.Name == "" {
			return &ValidationError{Field: "task_name", Msg: fmt.Sprintf("task %s has no name", t.ID)}
		}
		if t.Priority != "" && !t.Priority.Valid() {
			return &ValidationError{Field: "priority", Msg: fmt.Sprintf("task %q has unknown priority %q", t.Name, t.Priority)}
		}
		if t.EstimatedHours != nil && *t.EstimatedHours < 0 {
			return &ValidationError{Field: "estimated_hours", Msg: fmt.Sprintf("task %q has negative hours %.1f", t.Name, *t.EstimatedHours)}
		}
	}

	for i, a := range agents {
		if a == nil {
			return &ValidationError{Field: "team_members", Msg: fmt.Sprintf("member %d is nil", i)}
		}
		if a.Name == "" {
			return &ValidationError{Field: "member_name", Msg: fmt.Sprintf("member %s has no name", a.ID)}
		}
		if a.AvailabilityHours <= 0 {
			return &ValidationError{Field: "availability_hours", Msg: fmt.Sprintf("member %q has non-positive capacity %.1f", a.Name, a.AvailabilityHours)}
		}
		if a.CurrentLoad < 0 {
			return &ValidationError{Field: "current_load", Msg: fmt.Sprintf("member %q has negative load %.1f", a.Name, a.CurrentLoad)}
		}
	}

	for i, c := range constraints {
		if c == nil {
			return &ValidationError{Field: "constraints", Msg: fmt.Sprintf("constraint %d is nil", i)}
		}
		if !c.Category.Valid() {
			return &ValidationError{Field: "constraint_category", Msg: fmt.Sprintf("constraint %q has unknown category %q", c.Name, c.Category)}
		}
		if c.Type != domain.ConstraintHard && c.Type != domain.ConstraintSoft {
			return &ValidationError{Field: "constraint_type", Msg: fmt.Sprintf("constraint %q has unknown type %q", c.Name, c.Type)}
		}
		if c.Type == domain.ConstraintSoft && (c.Weight < 1 || c.Weight > 10) {
			return &ValidationError{Field: "constraint_weight", Msg: fmt.Sprintf("constraint %q weight %d outside 1-10", c.Name, c.Weight)}
		}
	}

	return nil
}
