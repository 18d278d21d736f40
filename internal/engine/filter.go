package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/domain"
)

// Stable rule names used in rejection reasons. Reasons are rendered as
// "rule: observed values" and deduplicated by rule, so these names are part
// of the explanation contract.
const (
	RuleSkillGap            = "skill_gap"
	RuleUnavailable         = "unavailable"
	RuleCapacity            = "capacity"
	RuleAgentExclusion      = "agent_exclusion"
	RuleWorkload            = "workload"
	RuleAvailability        = "availability"
	RuleTimeline            = "timeline"
	RuleQuality             = "quality"
	RuleScoringUnavailable  = "scoring_unavailable"
	RuleBlockedByDependency = "blocked_by_dependency"
	RuleInternalError       = "internal_error"
)

// candidate pairs an eligible agent with the filter facts scoring needs.
type candidate struct {
	agent      *domain.Agent
	load       float64
	matched    []string
	minMatches int
}

// minSkillMatches returns how many required skills a member must hold for
// this task. Critical tasks with two or more requirements demand two
// matches; standard tasks demand one.
func minSkillMatches(task *domain.Task) int {
	if len(task.RequiredSkills) == 0 {
		return 0
	}
	if task.Priority == domain.PriorityCritical && len(task.RequiredSkills) >= 2 {
		return 2
	}
	return 1
}

// filterTask applies every hard rule to every agent, returning the eligible
// candidates and a structured rejection list per excluded agent. A panic in
// a custom predicate excludes only that candidate.
func (e *Engine) filterTask(task *domain.Task, agents []*domain.Agent, hard []*domain.Constraint, loads map[uuid.UUID]float64, now time.Time) ([]*candidate, map[uuid.UUID][]domain.Rejection) {
	var eligible []*candidate
	rejections := make(map[uuid.UUID][]domain.Rejection)

	for _, agent := range agents {
		rej := e.checkAgent(task, agent, hard, loads[agent.ID], now)
		if len(rej) > 0 {
			rejections[agent.ID] = rej
			continue
		}
		eligible = append(eligible, &candidate{
			agent:      agent,
			load:       loads[agent.ID],
			matched:    agent.MatchedSkills(task.RequiredSkills),
			minMatches: minSkillMatches(task),
		})
	}
	return eligible, rejections
}

func (e *Engine) checkAgent(task *domain.Task, agent *domain.Agent, hard []*domain.Constraint, load float64, now time.Time) (rej []domain.Rejection) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("constraint evaluation panicked",
				"task_id", task.ID, "member_id", agent.ID, "panic", fmt.Sprint(r))
			rej = append(rej, domain.Rejection{
				Rule:   RuleScoringUnavailable,
				Reason: fmt.Sprintf("%s: constraint evaluation failed for %s", RuleScoringUnavailable, agent.Name),
			})
		}
	}()

	if agent.Status != domain.AgentAvailable {
		rej = append(rej, domain.Rejection{
			Rule:   RuleUnavailable,
			Reason: fmt.Sprintf("%s: status is %s", RuleUnavailable, agent.Status),
		})
	}

	min := minSkillMatches(task)
	matched := agent.MatchedSkills(task.RequiredSkills)
	if len(matched) < min {
		reason := fmt.Sprintf("%s: matched %d of %d required skills", RuleSkillGap, len(matched), len(task.RequiredSkills))
		if min > 1 {
			reason = fmt.Sprintf("%s (critical task requires %d)", reason, min)
		}
		rej = append(rej, domain.Rejection{Rule: RuleSkillGap, Reason: reason})
	}

	if skill, excluded := agent.Excludes(task.RequiredSkills); excluded {
		rej = append(rej, domain.Rejection{
			Rule:   RuleAgentExclusion,
			Reason: fmt.Sprintf("%s: member excludes skill %q", RuleAgentExclusion, skill),
		})
	}

	if load+task.Hours() > agent.AvailabilityHours {
		rej = append(rej, domain.Rejection{
			Rule:   RuleCapacity,
			Reason: fmt.Sprintf("%s: %.1fh load + %.1fh task exceeds %.1fh capacity", RuleCapacity, load, task.Hours(), agent.AvailabilityHours),
		})
	}

	for _, c := range hard {
		if r, ok := e.evalHardConstraint(c, task, agent, load, now); !ok {
			rej = append(rej, r)
		}
	}
	return rej
}

// evalHardConstraint evaluates one active hard constraint against a pair.
// Threshold semantics are category-specific; a nil threshold falls back to
// the category default.
func (e *Engine) evalHardConstraint(c *domain.Constraint, task *domain.Task, agent *domain.Agent, load float64, now time.Time) (domain.Rejection, bool) {
	threshold := func(def float64) float64 {
		if c.Threshold != nil {
			return *c.Threshold
		}
		return def
	}

	switch c.Category {
	case domain.CategorySkill:
		// Full coverage: every required skill, not just the minimum.
		matched := agent.MatchedSkills(task.RequiredSkills)
		if len(matched) < len(task.RequiredSkills) {
			return domain.Rejection{
				Rule: RuleSkillGap,
				Reason: fmt.Sprintf("%s: %q requires all %d skills, matched %d",
					RuleSkillGap, c.Name, len(task.RequiredSkills), len(matched)),
			}, false
		}

	case domain.CategoryWorkload:
		max := threshold(1.0)
		projected := (load + task.Hours()) / agent.AvailabilityHours
		if projected > max {
			return domain.Rejection{
				Rule: RuleWorkload,
				Reason: fmt.Sprintf("%s: projected load ratio %.2f exceeds %.2f (%s)",
					RuleWorkload, projected, max, c.Name),
			}, false
		}

	case domain.CategoryAvailability:
		minSlack := threshold(0)
		slack := agent.AvailabilityHours - load - task.Hours()
		if slack < minSlack {
			return domain.Rejection{
				Rule: RuleAvailability,
				Reason: fmt.Sprintf("%s: %.1fh slack below required %.1fh (%s)",
					RuleAvailability, slack, minSlack, c.Name),
			}, false
		}

	case domain.CategoryTimeline:
		if task.Deadline != nil {
			remaining := task.Deadline.Sub(now).Hours()
			if task.Hours() > remaining {
				return domain.Rejection{
					Rule: RuleTimeline,
					Reason: fmt.Sprintf("%s: %.1fh estimate does not fit in %.1fh before deadline (%s)",
						RuleTimeline, task.Hours(), remaining, c.Name),
				}, false
			}
		}

	case domain.CategoryQuality:
		// Only enforced when delivery history exists.
		if agent.History != nil && agent.History.OnTimeRate != nil {
			min := threshold(0.5)
			if *agent.History.OnTimeRate < min {
				return domain.Rejection{
					Rule: RuleQuality,
					Reason: fmt.Sprintf("%s: on-time rate %.0f%% below %.0f%% (%s)",
						RuleQuality, *agent.History.OnTimeRate*100, min*100, c.Name),
				}, false
			}
		}

	case domain.CategoryCustom:
		pred, ok := e.predicates[c.Name]
		if !ok {
			e.logger.Warn("no predicate registered for custom constraint", "constraint", c.Name)
			return domain.Rejection{}, true
		}
		if pass, observed := pred(task, agent); !pass {
			return domain.Rejection{
				Rule:   c.Name,
				Reason: fmt.Sprintf("%s: %s", c.Name, observed),
			}, false
		}
	}
	return domain.Rejection{}, true
}
