// Package task provides the shared task state passed between the supervisor
// and worker agents, plus the snapshot store keyed by task ID.
package task

import (
	"time"
)

// Status represents the lifecycle status of a task.
type Status string

const (
	StatusPending             Status = "pending"
	StatusInProgress          Status = "in_progress"
	StatusCompleted           Status = "completed"
	StatusFailed              Status = "failed"
	StatusCompletedWithErrors Status = "completed_with_errors"
)

// Terminal reports whether the status is a terminal state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCompletedWithErrors:
		return true
	}
	return false
}

// Message is a single entry in the task's audit trail.
type Message struct {
	Agent     string         `json:"agent"`
	Timestamp time.Time      `json:"timestamp"`
	Content   string         `json:"content"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Result is the record a worker stores under its role key.
// It is owned by the agent that wrote it and never mutated by others.
type Result struct {
	Content   string         `json:"content"`
	Agent     string         `json:"agent"`
	Timestamp time.Time      `json:"timestamp"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// State is the complete mutable record of one task's progress.
// Exactly one node (supervisor or worker) writes to it at a time; the
// engine arbitrates the handoff.
type State struct {
	TaskID   string `json:"task_id"`
	Query    string `json:"query"`
	TaskType string `json:"task_type"`

	Status          Status            `json:"status"`
	CurrentAgent    string            `json:"current_agent,omitempty"`
	NextAgent       string            `json:"next_agent,omitempty"`
	CompletedAgents []string          `json:"completed_agents"`
	Results         map[string]Result `json:"results"`
	Messages        []Message         `json:"messages"`
	Errors          []string          `json:"errors"`

	IterationCount int `json:"iteration_count"`
	MaxIterations  int `json:"max_iterations"`

	FinalReport string         `json:"final_report,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a task state ready for execution.
func New(id, query, taskType string, maxIterations int) *State {
	now := time.Now()
	return &State{
		TaskID:          id,
		Query:           query,
		TaskType:        taskType,
		Status:          StatusPending,
		CompletedAgents: []string{},
		Results:         map[string]Result{},
		Messages:        []Message{},
		Errors:          []string{},
		MaxIterations:   maxIterations,
		Metadata:        map[string]any{"created_at": now.Format(time.RFC3339)},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AppendMessage adds an audit entry attributed to an agent.
func (s *State) AppendMessage(agent, content string, meta map[string]any) {
	s.Messages = append(s.Messages, Message{
		Agent:     agent,
		Timestamp: time.Now(),
		Content:   content,
		Meta:      meta,
	})
	s.UpdatedAt = time.Now()
}

// AddError records a failure description without deciding the task's fate.
// A non-empty error list does not by itself imply a failed task.
func (s *State) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
	s.UpdatedAt = time.Now()
}

// SetResult stores a worker's result under its role key.
func (s *State) SetResult(role string, r Result) {
	s.Results[role] = r
	s.UpdatedAt = time.Now()
}

// MarkCompleted adds a role to the completed set. Re-adding an already
// present role is a no-op; insertion order is preserved.
func (s *State) MarkCompleted(role string) {
	s.CurrentAgent = role
	s.UpdatedAt = time.Now()
	for _, r := range s.CompletedAgents {
		if r == role {
			return
		}
	}
	s.CompletedAgents = append(s.CompletedAgents, role)
}

// AgentRuns counts how many audit messages a role has contributed.
func (s *State) AgentRuns(role string) int {
	n := 0
	for _, m := range s.Messages {
		if m.Agent == role {
			n++
		}
	}
	return n
}

// Terminal reports whether the task has reached a terminal status.
func (s *State) Terminal() bool {
	return s.Status.Terminal()
}

// Progress returns completion as a fraction of known worker roles.
func (s *State) Progress(workerCount int) float64 {
	if workerCount <= 0 {
		return 0
	}
	return float64(len(s.CompletedAgents)) / float64(workerCount)
}

// Clone returns a deep copy of the state. Readers of the snapshot store
// get clones so the running node can keep mutating its own copy.
func (s *State) Clone() *State {
	c := *s
	c.CompletedAgents = append([]string(nil), s.CompletedAgents...)
	c.Errors = append([]string(nil), s.Errors...)
	c.Messages = append([]Message(nil), s.Messages...)
	c.Results = make(map[string]Result, len(s.Results))
	for k, v := range s.Results {
		c.Results[k] = v
	}
	c.Metadata = make(map[string]any, len(s.Metadata))
	for k, v := range s.Metadata {
		c.Metadata[k] = v
	}
	return &c
}
