package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/domain"
	"github.com/kraftworks/kraft/internal/explain"
	"github.com/kraftworks/kraft/internal/scoring"
)

// orderTasks sorts tasks by priority descending, then deadline ascending
// (tasks without a deadline last), then creation time, then id. The order
// is total, so two runs over the same input process tasks identically.
func orderTasks(tasks []*domain.Task) []*domain.Task {
	out := make([]*domain.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		switch {
		case a.Deadline != nil && b.Deadline == nil:
			return true
		case a.Deadline == nil && b.Deadline != nil:
			return false
		case a.Deadline != nil && b.Deadline != nil && !a.Deadline.Equal(*b.Deadline):
			return a.Deadline.Before(*b.Deadline)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}

// dependenciesMet reports whether every dependency of the task has reached
// completed status. A dependency outside the supplied set counts as unmet.
func dependenciesMet(task *domain.Task, byID map[uuid.UUID]*domain.Task) (uuid.UUID, bool) {
	for _, dep := range task.Dependencies {
		d, ok := byID[dep]
		if !ok || d.Status != domain.TaskCompleted {
			return dep, false
		}
	}
	return uuid.Nil, true
}

// solveTask runs filter, score and selection for one task against the
// current capacity ledger. It returns either an assignment or the reasons
// the task stays unassigned. Panics inside are caught by the caller.
func (e *Engine) solveTask(task *domain.Task, agents []*domain.Agent, constraints []*domain.Constraint, weights scoring.WeightSet, loads map[uuid.UUID]float64, now time.Time) (*Assignment, []string) {
	var hard []*domain.Constraint
	hardNames := []string{"skill coverage", "member availability", "capacity"}
	for _, c := range constraints {
		if c.IsActive && c.Type == domain.ConstraintHard {
			hard = append(hard, c)
			hardNames = append(hardNames, c.Name)
		}
	}

	eligible, rejections := e.filterTask(task, agents, hard, loads, now)
	if len(eligible) == 0 {
		reasons := explain.TopRejections(rejections, explain.MaxRejectionReasons)
		if len(reasons) == 0 {
			reasons = []string{fmt.Sprintf("%s: no members supplied", RuleUnavailable)}
		}
		return nil, reasons
	}

	ranked, frontier := e.scoreEligible(task, eligible, weights, rejections)
	if len(ranked) == 0 {
		return nil, explain.TopRejections(rejections, explain.MaxRejectionReasons)
	}
	chosen := ranked[0]

	var chosenCand *candidate
	for _, c := range eligible {
		if c.agent.ID == chosen.AgentID {
			chosenCand = c
			break
		}
	}

	loads[chosen.AgentID] += task.Hours()

	pc := pairContextFor(task, chosenCand)
	assignment := &Assignment{
		TaskID:               task.ID,
		TaskName:             task.Name,
		AgentID:              chosen.AgentID,
		AgentName:            chosen.AgentName,
		Score:                explain.Confidence(chosen.Total),
		PredictedHours:       scoring.PredictedHours(&pc, chosen.Factors),
		ConstraintsSatisfied: hardNames,
		InferenceTrace: explain.BuildTrace(task, chosenCand.agent, chosen,
			chosenCand.matched, chosenCand.minMatches, len(ranked)-1),
		CandidateExplanations: candidateExplanations(chosen, ranked, rejections, agents),
		BestAlternative:       explain.BestAlternative(chosen, ranked),
		CandidateFrontier:     frontier,
		Detail:                chosen,
	}
	assignment.Explanation = explain.Narrate(&explain.NarrateRequest{
		TaskID:               task.ID,
		TaskName:             task.Name,
		MemberID:             chosen.AgentID,
		MemberName:           chosen.AgentName,
		Score:                chosen.Total,
		PredictedHours:       assignment.PredictedHours,
		ConstraintsSatisfied: hardNames,
		Factors:              chosen.Factors,
		ChosenReasons:        chosen.Reasons,
		BestAlternative:      assignment.BestAlternative,
		TopRejectionReasons:  explain.TopRejections(rejections, 3),
	})
	return assignment, nil
}

// scoreEligible scores every eligible candidate, ranking best-first. A
// panicking factor computation rejects only that candidate.
func (e *Engine) scoreEligible(task *domain.Task, eligible []*candidate, weights scoring.WeightSet, rejections map[uuid.UUID][]domain.Rejection) ([]*scoring.CandidateScore, []scoring.FrontierCandidate) {
	ranked := make([]*scoring.CandidateScore, 0, len(eligible))
	for _, c := range eligible {
		cs, err := e.scoreOne(task, c, weights)
		if err != nil {
			rejections[c.agent.ID] = append(rejections[c.agent.ID], domain.Rejection{
				Rule:   RuleScoringUnavailable,
				Reason: fmt.Sprintf("%s: %v", RuleScoringUnavailable, err),
			})
			continue
		}
		ranked = append(ranked, cs)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return scoring.Better(ranked[i], ranked[j]) })
	return ranked, scoring.FrontierOf(ranked)
}

func (e *Engine) scoreOne(task *domain.Task, c *candidate, weights scoring.WeightSet) (cs *scoring.CandidateScore, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("scoring panicked",
				"task_id", task.ID, "member_id", c.agent.ID, "panic", fmt.Sprint(r))
			cs = nil
			err = fmt.Errorf("factor computation failed for %s", c.agent.Name)
		}
	}()
	pc := pairContextFor(task, c)
	scored := e.scorer.ScoreCandidate(&pc, weights)
	return &scored, nil
}

// pairContextFor builds the scoring context from filter output, so scoring
// never re-derives skill matches.
func pairContextFor(task *domain.Task, c *candidate) scoring.PairContext {
	return scoring.PairContext{
		Task:        task,
		Agent:       c.agent,
		CurrentLoad: c.load,
		MinMatches:  c.minMatches,
		Matched:     c.matched,
	}
}

// candidateExplanations renders the per-candidate entries for an
// assignment: every scored candidate plus every rejected agent, in a stable
// order (scored best-first, then rejected by member id).
func candidateExplanations(chosen *scoring.CandidateScore, ranked []*scoring.CandidateScore, rejections map[uuid.UUID][]domain.Rejection, agents []*domain.Agent) []explain.CandidateExplanation {
	names := make(map[uuid.UUID]string, len(agents))
	for _, a := range agents {
		names[a.ID] = a.Name
	}

	out := make([]explain.CandidateExplanation, 0, len(ranked)+len(rejections))
	for _, cs := range ranked {
		score := cs.Total
		out = append(out, explain.CandidateExplanation{
			MemberID:   cs.AgentID,
			MemberName: cs.AgentName,
			Chosen:     cs.AgentID == chosen.AgentID,
			Eligible:   true,
			Score:      &score,
			Factors:    cs.Factors,
			Reasons:    cs.Reasons,
		})
	}

	rejectedIDs := make([]uuid.UUID, 0, len(rejections))
	for id := range rejections {
		rejectedIDs = append(rejectedIDs, id)
	}
	sort.Slice(rejectedIDs, func(i, j int) bool { return rejectedIDs[i].String() < rejectedIDs[j].String() })
	for _, id := range rejectedIDs {
		reasons := make([]string, 0, len(rejections[id]))
		for _, r := range rejections[id] {
			reasons = append(reasons, r.Reason)
		}
		out = append(out, explain.CandidateExplanation{
			MemberID:   id,
			MemberName: names[id],
			Rejections: reasons,
		})
	}
	return out
}
