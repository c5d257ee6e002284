package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vinayprograms/overseer/internal/agent"
	"github.com/vinayprograms/overseer/internal/supervisor"
	"github.com/vinayprograms/overseer/internal/task"
)

// stubWorker records a canned result, or runs a custom behavior.
type stubWorker struct {
	role   agent.Role
	do     func(ctx context.Context, st *task.State) error
	output string
}

func (w *stubWorker) Role() agent.Role { return w.role }

func (w *stubWorker) Execute(ctx context.Context, st *task.State) error {
	if w.do != nil {
		return w.do(ctx, st)
	}
	st.SetResult(string(w.role), task.Result{
		Content:   w.output,
		Agent:     string(w.role),
		Timestamp: time.Now(),
	})
	st.AppendMessage(string(w.role), w.output, nil)
	st.MarkCompleted(string(w.role))
	return nil
}

// scriptedProvider replays routing proposals in order, repeating the last.
type scriptedProvider struct {
	responses []string
	calls     int
}

func (p *scriptedProvider) Propose(ctx context.Context, dc supervisor.DecisionContext) (string, error) {
	p.calls++
	i := p.calls - 1
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	return p.responses[i], nil
}

// stubReporter marks terminal states.
type stubReporter struct{}

func (stubReporter) Generate(st *task.State) string {
	return fmt.Sprintf("report for %s (%s)", st.TaskID, st.Status)
}

func route(role agent.Role) string {
	return fmt.Sprintf(`{"next_agent": %q, "completed": false, "reason": "%s needed"}`, role, role)
}

const doneDecision = `{"completed": true, "reason": "all work finished"}`

func newTestEngine(t *testing.T, provider supervisor.DecisionProvider, maxIterations int, workers ...agent.Agent) (*Engine, *task.Store) {
	t.Helper()
	reg := agent.NewRegistry()
	var roles []agent.Role
	for _, w := range workers {
		if err := reg.Register(w); err != nil {
			t.Fatalf("Register(%s) error = %v", w.Role(), err)
		}
		roles = append(roles, w.Role())
	}
	sup := supervisor.New(provider, roles)
	store := task.NewStore()
	return NewEngine(NewGraph(sup, reg), store, stubReporter{}, nil, maxIterations), store
}

func TestEngineEndToEnd(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		route(agent.RoleResearcher),
		route(agent.RoleWriter),
		doneDecision,
	}}
	engine, _ := newTestEngine(t, provider, 10,
		&stubWorker{role: agent.RoleResearcher, output: "findings about X"},
		&stubWorker{role: agent.RoleWriter, output: "written summary of X"},
	)

	final := engine.Submit(context.Background(), "t1", "research the impact of X", "research")

	if final.Status != task.StatusCompleted {
		t.Fatalf("Status = %v, want completed (errors: %v)", final.Status, final.Errors)
	}
	if len(final.CompletedAgents) != 2 ||
		final.CompletedAgents[0] != "researcher" || final.CompletedAgents[1] != "writer" {
		t.Errorf("CompletedAgents = %v, want [researcher writer]", final.CompletedAgents)
	}
	if final.IterationCount != 3 {
		t.Errorf("IterationCount = %d, want 3 supervisor visits", final.IterationCount)
	}
	if final.FinalReport == "" {
		t.Error("FinalReport not populated on terminal state")
	}
	if final.NextAgent != "" {
		t.Errorf("NextAgent = %q, want empty on termination", final.NextAgent)
	}

	// Expected trace: supervisor, researcher, supervisor, writer, supervisor.
	var trace []string
	for _, m := range final.Messages {
		trace = append(trace, m.Agent)
	}
	want := []string{"supervisor", "researcher", "supervisor", "writer", "supervisor"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace[%d] = %s, want %s (full trace %v)", i, trace[i], want[i], trace)
		}
	}
}

func TestEngineSnapshotPolling(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		route(agent.RoleResearcher),
		doneDecision,
	}}
	engine, _ := newTestEngine(t, provider, 10,
		&stubWorker{role: agent.RoleResearcher, output: "findings"},
	)

	final := engine.Submit(context.Background(), "t1", "query", "general")

	snap, ok := engine.Get("t1")
	if !ok {
		t.Fatal("Get(t1) not found after run")
	}
	if snap.Status != final.Status {
		t.Errorf("snapshot status = %v, final = %v", snap.Status, final.Status)
	}
	if snap.FinalReport == "" {
		t.Error("snapshot missing final report")
	}
	if len(engine.List()) != 1 {
		t.Errorf("List() size = %d, want 1", len(engine.List()))
	}
}

func TestEngineForcedStopSingleIteration(t *testing.T) {
	provider := &scriptedProvider{responses: []string{route(agent.RoleResearcher)}}
	researcherRan := false
	engine, _ := newTestEngine(t, provider, 1,
		&stubWorker{role: agent.RoleResearcher, do: func(ctx context.Context, st *task.State) error {
			researcherRan = true
			return nil
		}},
	)

	final := engine.Submit(context.Background(), "t1", "query", "general")

	if final.Status != task.StatusCompleted {
		t.Errorf("Status = %v, want completed", final.Status)
	}
	if final.IterationCount != 1 {
		t.Errorf("IterationCount = %d, want exactly 1", final.IterationCount)
	}
	if researcherRan {
		t.Error("worker ran despite forced stop on first supervisor visit")
	}
}

func TestEnginePanickingWorker(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		route(agent.RoleResearcher),
		doneDecision,
	}}
	engine, _ := newTestEngine(t, provider, 10,
		&stubWorker{role: agent.RoleResearcher, do: func(ctx context.Context, st *task.State) error {
			panic("worker blew up")
		}},
	)

	final := engine.Submit(context.Background(), "t1", "query", "general")

	if final.Status != task.StatusCompleted {
		t.Errorf("Status = %v, want completed: a worker failure alone must not fail the task", final.Status)
	}
	if len(final.Errors) == 0 {
		t.Fatal("worker panic left no error entry")
	}
	for _, r := range final.CompletedAgents {
		if r == "researcher" {
			t.Error("failed worker must not appear in CompletedAgents")
		}
	}
}

func TestEngineMissingRoleFailsTask(t *testing.T) {
	provider := &scriptedProvider{responses: []string{route(agent.RoleReviewer)}}
	engine, _ := newTestEngine(t, provider, 10,
		&stubWorker{role: agent.RoleResearcher, output: "findings"},
	)

	final := engine.Submit(context.Background(), "t1", "query", "general")

	if final.Status != task.StatusFailed {
		t.Errorf("Status = %v, want failed on unregistered role", final.Status)
	}
	if len(final.Errors) == 0 {
		t.Error("missing role left no error entry")
	}
}

func TestEngineCooperativeCancellation(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		route(agent.RoleResearcher),
		route(agent.RoleWriter),
		doneDecision,
	}}

	var engine *Engine
	cancelDuringWork := &stubWorker{role: agent.RoleResearcher, do: func(ctx context.Context, st *task.State) error {
		// External collaborator cancels while this node is in flight;
		// the loop must stop before the next node runs.
		engine.Cancel(st.TaskID, "cancelled by operator")
		st.MarkCompleted(string(agent.RoleResearcher))
		return nil
	}}
	writerRan := false
	writer := &stubWorker{role: agent.RoleWriter, do: func(ctx context.Context, st *task.State) error {
		writerRan = true
		return nil
	}}

	engine, _ = newTestEngine(t, provider, 10, cancelDuringWork, writer)
	final := engine.Submit(context.Background(), "t1", "query", "general")

	if final.Status != task.StatusFailed {
		t.Errorf("Status = %v, want failed after cancellation", final.Status)
	}
	found := false
	for _, e := range final.Errors {
		if e == "cancelled by operator" {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want cancellation note", final.Errors)
	}
	if writerRan {
		t.Error("node executed after cancellation was observed")
	}
	if final.IterationCount != 1 {
		t.Errorf("IterationCount = %d, want 1 (no supervisor visit after cancel)", final.IterationCount)
	}
}

func TestEngineCancellationMergesWorkerErrors(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		route(agent.RoleResearcher),
		doneDecision,
	}}

	// The worker records its own soft error before the external cancel
	// lands, so the live state and the stored snapshot diverge with
	// equal-length error lists. Both entries must survive.
	var engine *Engine
	worker := &stubWorker{role: agent.RoleResearcher, do: func(ctx context.Context, st *task.State) error {
		st.AddError("researcher: source unavailable")
		engine.Cancel(st.TaskID, "cancelled by operator")
		return nil
	}}

	engine, store := newTestEngine(t, provider, 10, worker)
	final := engine.Submit(context.Background(), "t1", "query", "general")

	if final.Status != task.StatusFailed {
		t.Fatalf("Status = %v, want failed after cancellation", final.Status)
	}
	wantErrors := map[string]bool{
		"researcher: source unavailable": false,
		"cancelled by operator":          false,
	}
	for _, e := range final.Errors {
		if _, ok := wantErrors[e]; ok {
			wantErrors[e] = true
		}
	}
	for msg, present := range wantErrors {
		if !present {
			t.Errorf("final.Errors = %v, missing %q", final.Errors, msg)
		}
	}

	snap, ok := store.Get("t1")
	if !ok {
		t.Fatal("stored snapshot missing after run")
	}
	found := false
	for _, e := range snap.Errors {
		if e == "cancelled by operator" {
			found = true
		}
	}
	if !found {
		t.Errorf("stored snapshot errors = %v, missing cancellation note", snap.Errors)
	}
}

func TestEngineSupervisorWithoutRouteFails(t *testing.T) {
	// A supervisor that neither terminates nor routes is a programming
	// error; the engine converts it to a failed state instead of
	// crashing.
	brokenSup := &stubWorker{role: agent.RoleSupervisor, do: func(ctx context.Context, st *task.State) error {
		st.IterationCount++
		return nil
	}}
	reg := agent.NewRegistry()
	if err := reg.Register(&stubWorker{role: agent.RoleResearcher, output: "findings"}); err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(NewGraph(brokenSup, reg), task.NewStore(), stubReporter{}, nil, 10)

	final := engine.Submit(context.Background(), "t1", "query", "general")

	if final.Status != task.StatusFailed {
		t.Errorf("Status = %v, want failed on routing contract violation", final.Status)
	}
	if len(final.Errors) == 0 {
		t.Error("routing error left no error entry")
	}
}
