package workflow

import (
	"context"
	"fmt"

	"github.com/vinayprograms/agentkit/logging"
	"github.com/vinayprograms/overseer/internal/agent"
	"github.com/vinayprograms/overseer/internal/events"
	"github.com/vinayprograms/overseer/internal/task"
)

// Reporter produces the final report for a terminal task state. The
// concrete formatting lives outside the engine.
type Reporter interface {
	Generate(st *task.State) string
}

// Engine drives one task state through the graph to a terminal status
// and owns the snapshot store. Each task runs as one strictly ordered
// sequence of node executions; distinct tasks may run concurrently.
type Engine struct {
	graph    *Graph
	store    *task.Store
	reporter Reporter
	events   *events.Publisher
	logger   *logging.Logger

	maxIterations int
}

// NewEngine creates an engine over a graph and snapshot store. reporter
// and publisher may be nil.
func NewEngine(graph *Graph, store *task.Store, reporter Reporter, pub *events.Publisher, maxIterations int) *Engine {
	if maxIterations <= 0 {
		maxIterations = 10
	}
	return &Engine{
		graph:         graph,
		store:         store,
		reporter:      reporter,
		events:        pub,
		logger:        logging.New().WithComponent("engine"),
		maxIterations: maxIterations,
	}
}

// Submit creates a task and runs it to completion, returning the final
// state. A fresh run for an existing task ID overwrites its snapshot.
func (e *Engine) Submit(ctx context.Context, id, query, taskType string) *task.State {
	st := e.store.Create(id, query, taskType, e.maxIterations)
	return e.Run(ctx, st)
}

// Get returns the latest snapshot for a task ID.
func (e *Engine) Get(id string) (*task.State, bool) {
	return e.store.Get(id)
}

// List returns snapshots of all known tasks.
func (e *Engine) List() map[string]*task.State {
	return e.store.List()
}

// Cancel requests cooperative cancellation of a running task. The run
// loop stops before invoking its next node; at most one in-flight node
// execution completes after this call.
func (e *Engine) Cancel(id, note string) bool {
	return e.store.Cancel(id, note)
}

// Run executes the graph for one task state and always returns a
// well-formed terminal state; failures of any kind are folded into the
// state instead of escaping to the caller.
func (e *Engine) Run(ctx context.Context, st *task.State) (final *task.State) {
	ctx, span := e.startTaskSpan(ctx, st)

	defer func() {
		if r := recover(); r != nil {
			st.AddError(fmt.Sprintf("workflow error: %v", r))
			st.Status = task.StatusFailed
			st.NextAgent = ""
			final = st
		}
		e.finalize(st)
		e.endTaskSpan(span, st)
	}()

	e.logger.Info("starting workflow", map[string]interface{}{
		"task_id":        st.TaskID,
		"task_type":      st.TaskType,
		"max_iterations": st.MaxIterations,
	})

	st.Status = task.StatusInProgress
	e.checkpoint(st)

	for {
		if e.cancelled(st) {
			break
		}

		e.runNode(ctx, e.graph.Supervisor(), st)
		e.checkpoint(st)

		if st.Status == task.StatusFailed {
			break
		}

		next, err := e.graph.Route(st)
		if err != nil {
			st.AddError(fmt.Sprintf("routing error: %v", err))
			st.Status = task.StatusFailed
			break
		}
		if next == End {
			break
		}

		if e.cancelled(st) {
			break
		}

		worker, ok := e.graph.Worker(agent.Role(next))
		if !ok {
			st.AddError(fmt.Sprintf("no agent registered for role %q", next))
			st.Status = task.StatusFailed
			break
		}
		e.runNode(ctx, worker, st)
		e.checkpoint(st)
		// Fixed edge: every worker returns control to the supervisor.
	}

	return st
}

// runNode executes a single node with panic containment. A worker that
// errors or panics only grows the error list; interpretation of executor
// failure stays with the supervisor on its next visit.
func (e *Engine) runNode(ctx context.Context, node agent.Agent, st *task.State) {
	role := node.Role()
	e.events.Publish(st.TaskID, events.EventAgentStart, map[string]any{"agent": string(role)})
	ctx, span := e.startNodeSpan(ctx, role, st)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("agent panic", map[string]interface{}{
				"task_id": st.TaskID,
				"agent":   string(role),
				"panic":   fmt.Sprint(r),
			})
			st.AddError(fmt.Sprintf("%s error: %v", role, r))
			if role == agent.RoleSupervisor {
				st.Status = task.StatusFailed
				st.NextAgent = ""
			}
		}
		e.endNodeSpan(span, st)
		e.events.Publish(st.TaskID, events.EventAgentComplete, map[string]any{
			"agent":  string(role),
			"status": string(st.Status),
		})
	}()

	if err := node.Execute(ctx, st); err != nil {
		st.AddError(fmt.Sprintf("%s error: %v", role, err))
	}
}

// cancelled reports whether an external collaborator terminated the
// stored snapshot while this run was between nodes. The run adopts the
// snapshot's verdict and any notes recorded with it.
func (e *Engine) cancelled(st *task.State) bool {
	snap, ok := e.store.Get(st.TaskID)
	if !ok || !snap.Terminal() || st.Terminal() {
		return false
	}

	st.Status = snap.Status
	st.NextAgent = ""
	// Merge by content, not position: the in-flight node may have
	// appended its own errors since the last checkpoint, so the snapshot
	// is not necessarily a prefix of the live state.
	seen := make(map[string]bool, len(st.Errors))
	for _, msg := range st.Errors {
		seen[msg] = true
	}
	for _, msg := range snap.Errors {
		if !seen[msg] {
			st.AddError(msg)
		}
	}
	e.logger.Warn("task terminated externally", map[string]interface{}{
		"task_id": st.TaskID,
		"status":  string(st.Status),
	})
	return true
}

// finalize settles a terminal state: report generation, final snapshot,
// terminal event.
func (e *Engine) finalize(st *task.State) {
	if !st.Terminal() {
		// The loop only exits on terminal conditions; anything else is
		// an engine defect surfaced as failure rather than a crash.
		st.AddError("workflow ended without terminal status")
		st.Status = task.StatusFailed
	}
	st.NextAgent = ""

	if e.reporter != nil && st.FinalReport == "" {
		st.FinalReport = e.reporter.Generate(st)
	}
	e.checkpoint(st)
	e.events.Publish(st.TaskID, events.EventTaskStatus, map[string]any{
		"status":    string(st.Status),
		"completed": st.CompletedAgents,
		"errors":    len(st.Errors),
	})

	e.logger.Info("workflow finished", map[string]interface{}{
		"task_id":    st.TaskID,
		"status":     string(st.Status),
		"iterations": st.IterationCount,
		"errors":     len(st.Errors),
	})
}

// checkpoint writes the current state through to the snapshot store so
// pollers observe progress between nodes.
func (e *Engine) checkpoint(st *task.State) {
	e.store.Put(st)
	e.events.Publish(st.TaskID, events.EventTaskStatus, map[string]any{
		"status":    string(st.Status),
		"iteration": st.IterationCount,
	})
}
