// Package beat implements the periodic task scheduler: a static
// declarative schedule registered with cron, plus a tick loop over
// DB-stored periodic tasks.
package beat

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"simcontrol/internal/tasks"
)

// Entry is one static schedule line: task name, cron spec, kwargs
// and how long the published message stays valid.
type Entry struct {
	Name   string
	Task   string
	Spec   string
	Kwargs map[string]interface{}
	Expiry time.Duration
}

// Entries is the built-in beat schedule.
var Entries = []Entry{
	{
		Name: "run-fund-simulation-hourly",
		Task: tasks.TaskRunFund,
		Spec: "0 * * * *",
		Kwargs: map[string]interface{}{
			"initial_fund": "10000",
		},
		Expiry: 55 * time.Minute,
	},
	{
		Name: "run-portfolio-simulation-daily",
		Task: tasks.TaskRunPortfolio,
		Spec: "30 16 * * 1-5",
		Kwargs: map[string]interface{}{
			"initial_portfolio": map[string]interface{}{
				"AAPL": 25,
				"MSFT": 15,
				"GOOG": 10,
			},
		},
		Expiry: 12 * time.Hour,
	},
	{
		Name:   "mark-stale-runs",
		Task:   tasks.TaskMarkStale,
		Spec:   "*/30 * * * *",
		Expiry: 25 * time.Minute,
	},
	{
		Name: "purge-old-runs",
		Task: tasks.TaskPurgeRuns,
		Spec: "15 3 * * *",
	},
}

// ValidateEntries checks the static schedule at startup: every cron
// spec must parse and every name must be unique.
func ValidateEntries(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			return fmt.Errorf("schedule entry for task %q has no name", entry.Task)
		}
		if entry.Task == "" {
			return fmt.Errorf("schedule entry %q has no task", entry.Name)
		}
		if _, dup := seen[entry.Name]; dup {
			return fmt.Errorf("duplicate schedule entry %q", entry.Name)
		}
		seen[entry.Name] = struct{}{}

		if _, err := cron.ParseStandard(entry.Spec); err != nil {
			return fmt.Errorf("schedule entry %q: invalid spec %q: %w", entry.Name, entry.Spec, err)
		}
	}
	return nil
}
