package supervisor

import (
	"context"
	"fmt"

	"github.com/vinayprograms/agentkit/logging"
	"github.com/vinayprograms/overseer/internal/agent"
	"github.com/vinayprograms/overseer/internal/task"
)

// Supervisor is the only component permitted to decide task routing and
// termination. Failure is communicated exclusively through the task
// state; Run never panics past its boundary.
type Supervisor struct {
	provider DecisionProvider
	workers  []agent.Role
	logger   *logging.Logger
}

// New creates a supervisor over the given decision provider and the
// static set of known worker roles.
func New(provider DecisionProvider, workers []agent.Role) *Supervisor {
	return &Supervisor{
		provider: provider,
		workers:  workers,
		logger:   logging.New().WithComponent("supervisor"),
	}
}

// Role identifies the supervisor node.
func (s *Supervisor) Role() agent.Role { return agent.RoleSupervisor }

// Execute runs one supervisor visit: iteration control, decision, and
// state update.
func (s *Supervisor) Execute(ctx context.Context, st *task.State) error {
	s.Run(ctx, st)
	return nil
}

// Run increments the iteration counter, obtains a routing decision via
// the fallback chain, and records the outcome on the state. Any uncaught
// failure forces StatusFailed; nothing propagates to the caller.
func (s *Supervisor) Run(ctx context.Context, st *task.State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("supervisor panic", map[string]interface{}{
				"task_id": st.TaskID,
				"panic":   fmt.Sprint(r),
			})
			st.AddError(fmt.Sprintf("supervisor error: %v", r))
			st.Status = task.StatusFailed
			st.NextAgent = ""
		}
	}()

	s.logger.Info("supervisor processing task", map[string]interface{}{
		"task_id":   st.TaskID,
		"iteration": st.IterationCount + 1,
	})

	st.IterationCount++
	if st.IterationCount >= st.MaxIterations {
		s.logger.Warn("max iterations reached", map[string]interface{}{
			"task_id":        st.TaskID,
			"max_iterations": st.MaxIterations,
		})
		st.Status = task.StatusCompleted
		st.NextAgent = ""
		st.AppendMessage(string(agent.RoleSupervisor),
			fmt.Sprintf("workflow stopped: reached max iterations (%d)", st.MaxIterations), nil)
		return
	}

	dec := s.decide(ctx, st)

	st.CurrentAgent = string(agent.RoleSupervisor)
	st.NextAgent = dec.NextAgent
	if dec.Completed || st.NextAgent == "" {
		st.Status = task.StatusCompleted
		st.NextAgent = ""
		s.logger.Info("task marked completed by supervisor", map[string]interface{}{
			"task_id": st.TaskID,
		})
	} else {
		s.logger.Info("supervisor routed task", map[string]interface{}{
			"task_id":    st.TaskID,
			"next_agent": st.NextAgent,
		})
	}

	st.AppendMessage(string(agent.RoleSupervisor),
		fmt.Sprintf("Routing decision: %s", dec.Reason),
		map[string]any{"decision": dec})
}

// decide asks the provider for a proposal and normalizes it through the
// fallback chain. A provider failure degrades the same way a malformed
// proposal does.
func (s *Supervisor) decide(ctx context.Context, st *task.State) RoutingDecision {
	dc := DecisionContext{
		Query:           st.Query,
		TaskType:        st.TaskType,
		AvailableAgents: roleNames(s.workers),
		CompletedAgents: append([]string(nil), st.CompletedAgents...),
		IterationCount:  st.IterationCount,
		MaxIterations:   st.MaxIterations,
		Results:         st.Results,
	}

	raw, err := s.provider.Propose(ctx, dc)
	if err != nil {
		s.logger.Warn("decision provider failed, using fallback", map[string]interface{}{
			"task_id": st.TaskID,
			"error":   err.Error(),
		})
		return ruleBasedDecision(st)
	}
	return ParseDecision(raw, st)
}

func roleNames(roles []agent.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
