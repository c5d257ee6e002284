// Package events publishes task lifecycle events to NATS so external
// collaborators (transports, UIs) can follow progress without polling.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vinayprograms/agentkit/logging"
)

// Event kinds published per task.
const (
	EventTaskStatus    = "task_status"
	EventAgentStart    = "agent_start"
	EventAgentComplete = "agent_complete"
)

// Event is the JSON envelope published to NATS.
type Event struct {
	Event     string    `json:"event"`
	TaskID    string    `json:"task_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Publisher publishes task events. A nil Publisher is a valid no-op, so
// callers never guard their publish sites.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	logger *logging.Logger
}

// Connect dials NATS and returns a publisher using the given subject
// prefix (e.g. "overseer.task").
func Connect(url, prefix string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("overseer"))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	if prefix == "" {
		prefix = "overseer.task"
	}
	return &Publisher{
		conn:   conn,
		prefix: prefix,
		logger: logging.New().WithComponent("events"),
	}, nil
}

// Publish sends an event for a task. Publish failures are logged and
// dropped; eventing is advisory and never affects the run loop.
func (p *Publisher) Publish(taskID, event string, payload any) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(Event{
		Event:     event,
		TaskID:    taskID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		p.logger.Warn("event encode failed", map[string]interface{}{
			"task_id": taskID,
			"event":   event,
			"error":   err.Error(),
		})
		return
	}

	subject := fmt.Sprintf("%s.%s", p.prefix, taskID)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("event publish failed", map[string]interface{}{
			"task_id": taskID,
			"subject": subject,
			"error":   err.Error(),
		})
	}
}

// Close flushes and closes the underlying connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Flush()
	p.conn.Close()
}
