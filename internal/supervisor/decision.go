// Package supervisor implements the routing decision-maker for the
// workflow: iteration control, the decision provider contract, and the
// fallback chain that turns unreliable proposals into valid decisions.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vinayprograms/agentkit/llm"
	"github.com/vinayprograms/overseer/internal/task"
)

// RoutingDecision is the contract every decision attempt must produce,
// by construction or by fallback.
type RoutingDecision struct {
	NextAgent string `json:"next_agent,omitempty"`
	Completed bool   `json:"completed"`
	Reason    string `json:"reason"`
}

// DecisionContext carries everything a provider may consider when
// proposing the next transition.
type DecisionContext struct {
	Query           string
	TaskType        string
	AvailableAgents []string
	CompletedAgents []string
	IterationCount  int
	MaxIterations   int
	Results         map[string]task.Result
}

// DecisionProvider produces a raw routing proposal for the current task
// state. The output may be malformed or the call may fail outright; the
// fallback chain is the orchestrator's defense, not the provider's duty.
type DecisionProvider interface {
	Propose(ctx context.Context, dc DecisionContext) (string, error)
}

// LLMProvider proposes routing decisions through an agentkit LLM
// provider.
type LLMProvider struct {
	provider llm.Provider
}

// NewLLMProvider wraps an LLM provider as a decision source.
func NewLLMProvider(p llm.Provider) *LLMProvider {
	return &LLMProvider{provider: p}
}

// Propose asks the LLM for a routing decision given the decision context.
func (p *LLMProvider) Propose(ctx context.Context, dc DecisionContext) (string, error) {
	results, err := json.MarshalIndent(dc.Results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding results: %w", err)
	}

	system := fmt.Sprintf(routingPrompt,
		dc.Query, dc.TaskType, dc.AvailableAgents, dc.CompletedAgents,
		dc.IterationCount, dc.MaxIterations)

	resp, err := p.provider.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: fmt.Sprintf("Current state: %s", results)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("routing proposal: %w", err)
	}
	return resp.Content, nil
}

const routingPrompt = `You are the supervisor of a multi-agent workflow.

Query: %s
Task type: %s
Available agents: %v
Completed agents: %v
Iteration %d of %d

Decide which agent should run next, or whether the task is complete.
Respond with ONLY a JSON object of this exact shape:
{"next_agent": "<agent name or empty>", "completed": false, "reason": "<why>"}

Rules:
- Pick an agent that has not already completed unless rework is needed.
- Set "completed": true and omit "next_agent" when the query is satisfied.
- Keep "reason" to one sentence.`
