package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/domain"
	"github.com/kraftworks/kraft/internal/scoring"
)

// MaxRejectionReasons caps how many distinct rejection reasons are reported
// per task, to keep explanations concise.
const MaxRejectionReasons = 5

// CandidateExplanation is the per-candidate entry echoed into each
// assignment, covering both the winner and every loser.
type CandidateExplanation struct {
	MemberID   uuid.UUID              `json:"member_id"`
	MemberName string                 `json:"member_name"`
	Chosen     bool                   `json:"chosen"`
	Eligible   bool                   `json:"eligible"`
	Score      *float64               `json:"score,omitempty"`
	Factors    []scoring.FactorResult `json:"factors,omitempty"`
	Reasons    []string               `json:"reasons,omitempty"`
	Rejections []string               `json:"rejection_reasons,omitempty"`
}

// Alternative is the runner-up comparison attached to an assignment.
type Alternative struct {
	MemberID   uuid.UUID `json:"team_member_id"`
	MemberName string    `json:"team_member_name"`
	Score      float64   `json:"score"`
	Gap        float64   `json:"score_gap"`
}

// Confidence normalizes a 0–1 total score to the 0–100 presentation range.
func Confidence(total float64) float64 {
	if total < 0 {
		return 0
	}
	if total > 1 {
		return 100
	}
	return total * 100
}

// BuildTrace produces the inference trace for a chosen candidate: facts
// first, then rule applications, then the final decision.
func BuildTrace(task *domain.Task, agent *domain.Agent, chosen *scoring.CandidateScore, matched []string, minMatches, alternatives int) []InferenceStep {
	tr := &Recorder{}

	reqFact := tr.Fact(fmt.Sprintf("requires_skill(%s, {%s}) at priority %s",
		task.Name, strings.Join(task.RequiredSkills, ", "), task.Priority))
	hasFact := tr.Fact(fmt.Sprintf("has_skill(%s, {%s})",
		agent.Name, strings.Join(agent.Skills, ", ")))
	loadFact := tr.Fact(fmt.Sprintf("workload(%s, %.1fh of %.1fh)",
		agent.Name, agent.CurrentLoad, agent.AvailabilityHours))
	availFact := tr.Fact(fmt.Sprintf("available(%s)", agent.Name))

	canPerform := tr.Derived(
		fmt.Sprintf("can_perform(%s, %s): matched %d of %d required skills (minimum %d)",
			agent.Name, task.Name, len(matched), len(task.RequiredSkills), minMatches),
		RuleCanPerform, reqFact, hasFact)
	eligible := tr.Derived(
		fmt.Sprintf("eligible(%s, %s)", agent.Name, task.Name),
		RuleEligible, canPerform, loadFact, availFact)
	preferred := tr.Derived(
		fmt.Sprintf("preferred(%s, %s, %.3f) over %d other eligible candidate(s)",
			agent.Name, task.Name, chosen.Total, alternatives),
		RulePreferred, eligible)
	tr.Derived(
		fmt.Sprintf("best_candidate(%s, %s) -> assign(%s, %s)",
			agent.Name, task.Name, agent.Name, task.Name),
		RuleBest, preferred)

	return tr.Steps()
}

// BestAlternative returns the next-highest-scoring eligible candidate after
// the chosen one, nil when the chosen candidate was the only one. ranked
// must already be ordered best-first.
func BestAlternative(chosen *scoring.CandidateScore, ranked []*scoring.CandidateScore) *Alternative {
	for _, c := range ranked {
		if c.AgentID == chosen.AgentID {
			continue
		}
		return &Alternative{
			MemberID:   c.AgentID,
			MemberName: c.AgentName,
			Score:      c.Total,
			Gap:        chosen.Total - c.Total,
		}
	}
	return nil
}

// TopRejections deduplicates rejection reasons by rule, ranks them by how
// many agents share each rule, and returns at most limit reason strings.
// Counts break ties by rule name for a stable order.
func TopRejections(rejections map[uuid.UUID][]domain.Rejection, limit int) []string {
	type bucket struct {
		rule   string
		reason string
		count  int
	}

	agentIDs := make([]uuid.UUID, 0, len(rejections))
	for id := range rejections {
		agentIDs = append(agentIDs, id)
	}
	sort.Slice(agentIDs, func(i, j int) bool { return agentIDs[i].String() < agentIDs[j].String() })

	byRule := make(map[string]*bucket)
	for _, id := range agentIDs {
		seen := make(map[string]bool)
		for _, r := range rejections[id] {
			if seen[r.Rule] {
				continue
			}
			seen[r.Rule] = true
			b, ok := byRule[r.Rule]
			if !ok {
				b = &bucket{rule: r.Rule, reason: r.Reason}
				byRule[r.Rule] = b
			}
			b.count++
		}
	}

	buckets := make([]*bucket, 0, len(byRule))
	for _, b := range byRule {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].count != buckets[j].count {
			return buckets[i].count > buckets[j].count
		}
		return buckets[i].rule < buckets[j].rule
	})

	if limit <= 0 || limit > len(buckets) {
		limit = len(buckets)
	}
	if limit > MaxRejectionReasons {
		limit = MaxRejectionReasons
	}
	out := make([]string, 0, limit)
	for _, b := range buckets[:limit] {
		if b.count > 1 {
			out = append(out, fmt.Sprintf("%s (%d members)", b.reason, b.count))
		} else {
			out = append(out, b.reason)
		}
	}
	return out
}

// RunSummary renders the per-run summary line and the multi-line overall
// explanation, including the dominant bottleneck when tasks went unassigned.
func RunSummary(strategy scoring.Strategy, processed, succeeded int, bottlenecks []string) (summary, overall string) {
	unassigned := processed - succeeded
	summary = fmt.Sprintf("Allocated %d task(s). %d task(s) could not be assigned.", succeeded, unassigned)

	lines := []string{
		fmt.Sprintf("- Outcome: assigned %d/%d tasks using the %s strategy; %d unassigned.",
			succeeded, processed, strategy, unassigned),
		"- Hard rules: required skill coverage, member availability, capacity, active hard constraints.",
		fmt.Sprintf("- Scoring: weighted factors (%s).", strings.Join([]string{
			scoring.FactorWorkloadFairness,
			scoring.FactorExperience,
			scoring.FactorAvailabilityRichness,
			scoring.FactorSkillBreadth,
			scoring.FactorDeliverySpeed,
		}, ", ")),
	}
	if unassigned > 0 && len(bottlenecks) > 0 {
		lines = append(lines, fmt.Sprintf("- Dominant bottleneck: %s.", strings.Join(bottlenecks, "; ")))
	}
	return summary, strings.Join(lines, "\n")
}
