package agent

import (
	"context"
	"fmt"

	"github.com/vinayprograms/overseer/internal/task"
)

// Agent is the executor contract. An agent consumes the task state, does
// its domain work, stores its result under its role key, appends one audit
// message, and marks itself completed. An agent that cannot finish its
// work appends to state.Errors and returns nil rather than failing the
// workflow; a non-nil error is reserved for contract violations.
type Agent interface {
	Role() Role
	Execute(ctx context.Context, st *task.State) error
}

// Registry is an explicit role-to-agent mapping owned by the engine.
// There is no ambient global registry.
type Registry struct {
	agents map[Role]Agent
	order  []Role
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[Role]Agent)}
}

// Register adds an agent under its declared role. Registering a role
// twice replaces the previous instance without changing registration order.
func (r *Registry) Register(a Agent) error {
	role := a.Role()
	if !Valid(role) {
		return fmt.Errorf("unknown role %q", role)
	}
	if _, exists := r.agents[role]; !exists {
		r.order = append(r.order, role)
	}
	r.agents[role] = a
	return nil
}

// Get returns the agent registered for a role.
func (r *Registry) Get(role Role) (Agent, bool) {
	a, ok := r.agents[role]
	return a, ok
}

// Roles returns registered roles in registration order.
func (r *Registry) Roles() []Role {
	return append([]Role(nil), r.order...)
}

// WorkerRoles returns registered non-supervisor roles in registration order.
func (r *Registry) WorkerRoles() []Role {
	var out []Role
	for _, role := range r.order {
		if role != RoleSupervisor {
			out = append(out, role)
		}
	}
	return out
}

// WorkerCount returns the number of registered worker roles.
func (r *Registry) WorkerCount() int {
	return len(r.WorkerRoles())
}
