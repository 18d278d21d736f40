package engine

import (
	"strings"
	"testing"

	"github.com/kraftworks/kraft/internal/domain"
)

func TestMinSkillMatches(t *testing.T) {
	tests := []struct {
		name     string
		priority domain.Priority
		skills   []string
		want     int
	}{
		{"no requirements", domain.PriorityMedium, nil, 0},
		{"standard one skill", domain.PriorityMedium, []string{"go"}, 1},
		{"standard many skills", domain.PriorityHigh, []string{"go", "sql", "k8s"}, 1},
		{"critical two skills", domain.PriorityCritical, []string{"go", "sql"}, 2},
		{"critical single skill", domain.PriorityCritical, []string{"go"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := makeTask("t", tt.skills, tt.priority, 1)
			if got := minSkillMatches(task); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCheckAgentExclusion(t *testing.T) {
	task := makeTask("on-call rotation", []string{"oncall"}, domain.PriorityMedium, 4)
	agent := makeAgent("Alice", []string{"oncall"}, 40, 0)
	agent.Exclusions = []string{"oncall"}

	e := newTestEngine(t)
	rej := e.checkAgent(task, agent, nil, 0, testNow)
	if len(rej) != 1 || rej[0].Rule != RuleAgentExclusion {
		t.Errorf("expected agent_exclusion rejection, got %v", rej)
	}
	if !strings.Contains(rej[0].Reason, "oncall") {
		t.Errorf("reason should name the excluded skill: %q", rej[0].Reason)
	}
}

func TestCheckAgentCollectsEveryFailure(t *testing.T) {
	task := makeTask("big job", []string{"rust"}, domain.PriorityMedium, 50)
	agent := makeAgent("Alice", []string{"go"}, 40, 0)
	agent.Status = domain.AgentBusy

	e := newTestEngine(t)
	rej := e.checkAgent(task, agent, nil, 0, testNow)
	rules := make(map[string]bool)
	for _, r := range rej {
		rules[r.Rule] = true
	}
	for _, want := range []string{RuleUnavailable, RuleSkillGap, RuleCapacity} {
		if !rules[want] {
			t.Errorf("missing %s in %v", want, rej)
		}
	}
}

func TestCheckAgentSkillMatchCaseInsensitive(t *testing.T) {
	task := makeTask("api work", []string{"Go"}, domain.PriorityMedium, 4)
	agent := makeAgent("Alice", []string{"go"}, 40, 0)

	e := newTestEngine(t)
	if rej := e.checkAgent(task, agent, nil, 0, testNow); len(rej) != 0 {
		t.Errorf("case difference must not reject: %v", rej)
	}
}
