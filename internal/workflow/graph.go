// Package workflow provides the workflow graph and the execution engine
// that drives one task state to a terminal status.
package workflow

import (
	"fmt"

	"github.com/vinayprograms/overseer/internal/agent"
	"github.com/vinayprograms/overseer/internal/task"
)

// End is the termination sentinel returned by the routing function.
const End = "__end__"

// Graph declares which transitions are structurally legal: one node per
// role, a fixed worker-to-supervisor edge for every worker, and a single
// conditional edge out of the supervisor. No other topology exists.
type Graph struct {
	supervisor agent.Agent
	registry   *agent.Registry

	// edges maps each worker role to its unconditional successor.
	// Always the supervisor; kept explicit so the shape is inspectable.
	edges map[agent.Role]agent.Role
}

// NewGraph builds the cyclic supervisor/worker graph from a registry.
// The registry must not contain a supervisor node; the supervisor is
// passed separately since its edge kind differs.
func NewGraph(sup agent.Agent, registry *agent.Registry) *Graph {
	edges := make(map[agent.Role]agent.Role)
	for _, role := range registry.WorkerRoles() {
		edges[role] = agent.RoleSupervisor
	}
	return &Graph{supervisor: sup, registry: registry, edges: edges}
}

// Supervisor returns the supervisor node.
func (g *Graph) Supervisor() agent.Agent { return g.supervisor }

// Worker returns the node registered for a worker role.
func (g *Graph) Worker(role agent.Role) (agent.Agent, bool) {
	return g.registry.Get(role)
}

// Successor returns the fixed successor of a worker node.
func (g *Graph) Successor(role agent.Role) (agent.Role, bool) {
	next, ok := g.edges[role]
	return next, ok
}

// Route is the conditional edge out of the supervisor. It performs no
// decision-making of its own: it returns End when the supervisor marked
// the task completed or the iteration ceiling is reached, and otherwise
// translates NextAgent verbatim. An empty NextAgent on a non-terminal
// state is a programming error and fails loudly.
func (g *Graph) Route(st *task.State) (string, error) {
	if st.Status == task.StatusCompleted || st.IterationCount >= st.MaxIterations {
		return End, nil
	}
	if st.NextAgent == "" {
		return "", fmt.Errorf("no next agent set for non-terminal task %s", st.TaskID)
	}
	return st.NextAgent, nil
}
