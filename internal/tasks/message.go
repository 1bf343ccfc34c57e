// Package tasks defines the task message protocol shared by the beat
// scheduler, the API and the worker, plus the worker-side handlers.
package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultQueue is the broker queue all task messages go through.
const DefaultQueue = "simcontrol_tasks"

// Task names understood by the worker.
const (
	TaskRunFund      = "simulation.run_fund"
	TaskRunPortfolio = "simulation.run_portfolio"
	TaskExecuteRun   = "simulation.execute"
	TaskMarkStale    = "maintenance.mark_stale"
	TaskPurgeRuns    = "maintenance.purge_runs"
)

// Message is the wire format of a queued task.
type Message struct {
	ID          string          `json:"id"`
	Task        string          `json:"task"`
	Kwargs      json.RawMessage `json:"kwargs,omitempty"`
	PublishedAt time.Time       `json:"published_at"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

// NewMessage builds a task message. A zero expiry means the message
// never expires.
func NewMessage(task string, kwargs interface{}, expiry time.Duration) (Message, error) {
	msg := Message{
		ID:          uuid.NewString(),
		Task:        task,
		PublishedAt: time.Now().UTC(),
	}

	if kwargs != nil {
		raw, err := json.Marshal(kwargs)
		if err != nil {
			return Message{}, fmt.Errorf("marshal kwargs for %s: %w", task, err)
		}
		msg.Kwargs = raw
	}

	if expiry > 0 {
		expires := msg.PublishedAt.Add(expiry)
		msg.ExpiresAt = &expires
	}

	return msg, nil
}

// Expired reports whether the message is past its expiry at now.
func (m *Message) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && now.After(*m.ExpiresAt)
}
