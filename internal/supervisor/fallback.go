package supervisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vinayprograms/overseer/internal/agent"
	"github.com/vinayprograms/overseer/internal/task"
)

// completionMarkers are scanned case-insensitively when structured
// parsing fails.
var completionMarkers = []string{"task_complete", "done", "completed"}

// ParseDecision turns a raw provider proposal into a valid RoutingDecision.
// It never fails: a non-compliant or empty proposal degrades through three
// tiers and at worst yields a rule-based choice or completion.
//
// Tier 1 parses the proposal as strict JSON; unknown or missing fields
// reject the whole tier rather than partially applying it. Tier 2 scans
// for natural-language completion markers. Tier 3 applies the progressive
// default pipeline over task type, query keywords, and completed agents.
func ParseDecision(raw string, st *task.State) RoutingDecision {
	if dec, ok := parseStructured(raw); ok {
		return dec
	}

	lower := strings.ToLower(raw)
	for _, marker := range completionMarkers {
		if strings.Contains(lower, marker) {
			return RoutingDecision{
				Completed: true,
				Reason:    fmt.Sprintf("completion marker %q in response", marker),
			}
		}
	}

	return ruleBasedDecision(st)
}

// parseStructured attempts the strict tier-1 parse.
func parseStructured(raw string) (RoutingDecision, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields); err != nil {
		return RoutingDecision{}, false
	}

	for key := range fields {
		switch key {
		case "next_agent", "completed", "reason":
		default:
			return RoutingDecision{}, false
		}
	}
	if _, ok := fields["completed"]; !ok {
		return RoutingDecision{}, false
	}
	if _, ok := fields["reason"]; !ok {
		return RoutingDecision{}, false
	}

	var dec RoutingDecision
	if err := json.Unmarshal([]byte(raw), &dec); err != nil {
		return RoutingDecision{}, false
	}
	return dec, true
}

// ruleBasedDecision is the tier-3 heuristic: an ordered list of
// (role, predicate) pairs encoding gather, analyze, produce, verify.
// The first role whose predicate holds and which has not completed wins.
func ruleBasedDecision(st *task.State) RoutingDecision {
	completed := make(map[string]bool, len(st.CompletedAgents))
	for _, r := range st.CompletedAgents {
		completed[r] = true
	}
	query := strings.ToLower(st.Query)

	rules := []struct {
		role agent.Role
		fire func() bool
	}{
		{agent.RoleResearcher, func() bool {
			return st.TaskType == "research" || strings.Contains(query, "research")
		}},
		{agent.RoleAnalyst, func() bool {
			return st.TaskType == "analysis" || strings.Contains(query, "analysis")
		}},
		{agent.RoleWriter, func() bool {
			return strings.Contains(query, "write") || len(st.CompletedAgents) > 0
		}},
		{agent.RoleReviewer, func() bool {
			return len(st.CompletedAgents) > 1
		}},
	}

	for _, rule := range rules {
		if !completed[string(rule.role)] && rule.fire() {
			return RoutingDecision{
				NextAgent: string(rule.role),
				Completed: false,
				Reason:    fmt.Sprintf("%s needed", rule.role),
			}
		}
	}

	return RoutingDecision{Completed: true, Reason: "no rule matched"}
}
