// Package explain turns filter and scoring intermediates into inference
// traces, runner-up comparisons and templated natural-language summaries.
// Everything here is pure: identical inputs render identical output, so the
// narration layer can be swapped without touching the solver.
package explain

// Inference rules annotating derived trace steps. The rule text is part of
// the explanation payload shown to users.
const (
	RuleCanPerform = "can_perform(M,T) <- M matches at least the minimum required skills of T"
	RuleEligible   = "eligible(M,T) <- can_perform(M,T) AND available(M) AND within_capacity(M,T) AND hard_constraints(M,T)"
	RulePreferred  = "preferred(M,T,S) <- eligible(M,T) AND S = weighted_factor_score(M,T)"
	RuleBest       = "best_candidate(M,T) <- preferred(M,T,S) AND no eligible M' scores above S"
)

// InferenceStep is one entry in a decision trace: either a stated fact or a
// conclusion derived from earlier steps by a named rule.
type InferenceStep struct {
	Step      int    `json:"step"`
	Statement string `json:"fact_or_derived"`
	Rule      string `json:"rule,omitempty"`
	Premises  []int  `json:"premises,omitempty"`
}

// Recorder accumulates numbered trace steps. Facts carry no rule; derived
// steps reference the premises they follow from.
type Recorder struct {
	steps []InferenceStep
}

// Fact appends a stated fact and returns its step number.
func (r *Recorder) Fact(statement string) int {
	n := len(r.steps) + 1
	r.steps = append(r.steps, InferenceStep{Step: n, Statement: statement})
	return n
}

// Derived appends a rule application and returns its step number.
func (r *Recorder) Derived(statement, rule string, premises ...int) int {
	n := len(r.steps) + 1
	r.steps = append(r.steps, InferenceStep{Step: n, Statement: statement, Rule: rule, Premises: premises})
	return n
}

func (r *Recorder) Steps() []InferenceStep {
	out := make([]InferenceStep, len(r.steps))
	copy(out, r.steps)
	return out
}
