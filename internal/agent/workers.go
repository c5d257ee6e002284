package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vinayprograms/agentkit/llm"
	"github.com/vinayprograms/agentkit/logging"
	"github.com/vinayprograms/overseer/internal/task"
)

// maxWorkerReruns is the soft ceiling on re-entries for a single worker.
// Exceeding it logs a warning but does not stop the workflow; termination
// stays with the supervisor's iteration control.
const maxWorkerReruns = 3

// Worker is an LLM-backed executor for a single role. The orchestrator
// core depends only on the Agent interface; Worker is one concrete family
// of collaborators.
type Worker struct {
	role     Role
	provider llm.Provider
	profile  Profile
	logger   *logging.Logger
}

// NewWorker creates an LLM-backed worker for a role using the given
// profile (prompt and capability tags).
func NewWorker(role Role, provider llm.Provider, profile Profile) *Worker {
	return &Worker{
		role:     role,
		provider: provider,
		profile:  profile,
		logger:   logging.New().WithComponent(string(role)),
	}
}

// Role returns the worker's role.
func (w *Worker) Role() Role { return w.role }

// Execute performs the role's domain work against the task state.
// Failures are recorded in state.Errors; the state is otherwise left
// unchanged and no error is returned to the engine.
func (w *Worker) Execute(ctx context.Context, st *task.State) error {
	w.logger.Info("worker processing task", map[string]interface{}{
		"task_id": st.TaskID,
		"role":    string(w.role),
	})

	if runs := st.AgentRuns(string(w.role)); runs >= maxWorkerReruns {
		w.logger.Warn("worker re-entered repeatedly", map[string]interface{}{
			"task_id": st.TaskID,
			"role":    string(w.role),
			"runs":    runs,
		})
	}

	user, err := w.buildUserMessage(st)
	if err != nil {
		st.AddError(fmt.Sprintf("%s error: %v", w.role, err))
		return nil
	}

	resp, err := w.provider.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: w.profile.Prompt},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		w.logger.Error("worker llm error", map[string]interface{}{
			"task_id": st.TaskID,
			"role":    string(w.role),
			"error":   err.Error(),
		})
		st.AddError(fmt.Sprintf("%s error: %v", w.role, err))
		return nil
	}

	st.SetResult(string(w.role), task.Result{
		Content:   resp.Content,
		Agent:     string(w.role),
		Timestamp: time.Now(),
	})
	st.AppendMessage(string(w.role), resp.Content, nil)
	st.MarkCompleted(string(w.role))

	w.logger.Info("worker completed", map[string]interface{}{
		"task_id": st.TaskID,
		"role":    string(w.role),
	})
	return nil
}

// buildUserMessage assembles the role-specific user message from the
// query and the results accumulated by earlier roles.
func (w *Worker) buildUserMessage(st *task.State) (string, error) {
	switch w.role {
	case RoleResearcher:
		return st.Query, nil

	case RoleAnalyst:
		data := resultsSubset(st, RoleResearcher, RoleWriter)
		blob, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding analysis data: %w", err)
		}
		return fmt.Sprintf("%s\n\nData to analyze: %s", st.Query, blob), nil

	case RoleWriter:
		return writerContext(st), nil

	case RoleReviewer:
		data := resultsSubset(st, RoleResearcher, RoleWriter, RoleAnalyst)
		blob, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding review data: %w", err)
		}
		return fmt.Sprintf("Review the following work:\n%s", blob), nil

	default:
		return st.Query, nil
	}
}

// resultsSubset picks the named role results that are present.
func resultsSubset(st *task.State, roles ...Role) map[string]task.Result {
	out := make(map[string]task.Result, len(roles))
	for _, r := range roles {
		if res, ok := st.Results[string(r)]; ok {
			out[string(r)] = res
		}
	}
	return out
}

// writerContext aggregates research findings, analysis insights, and the
// latest supervisor guidance into the writer's user message.
func writerContext(st *task.State) string {
	var parts []string

	if res, ok := st.Results[string(RoleResearcher)]; ok {
		parts = append(parts, "RESEARCH FINDINGS:\n"+res.Content)
	}
	if res, ok := st.Results[string(RoleAnalyst)]; ok {
		parts = append(parts, "ANALYSIS INSIGHTS:\n"+res.Content)
	}
	if guidance := supervisorGuidance(st); guidance != "" {
		parts = append(parts, "SUPERVISOR GUIDANCE:\n"+guidance)
	}

	ctx := "No previous context available."
	if len(parts) > 0 {
		ctx = joinSections(parts)
	}
	return fmt.Sprintf("%s\n\nCONTEXT:\n%s", st.Query, ctx)
}

// supervisorGuidance extracts the most recent supervisor decision from
// the audit trail, if any.
func supervisorGuidance(st *task.State) string {
	for i := len(st.Messages) - 1; i >= 0; i-- {
		m := st.Messages[i]
		if m.Agent != string(RoleSupervisor) || m.Meta == nil {
			continue
		}
		if dec, ok := m.Meta["decision"]; ok {
			blob, err := json.MarshalIndent(dec, "", "  ")
			if err != nil {
				return ""
			}
			return string(blob)
		}
	}
	return ""
}

func joinSections(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "\n\n" + p
	}
	return out
}
