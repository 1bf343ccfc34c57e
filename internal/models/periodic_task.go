package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// PeriodicTask is a DB-stored schedule entry consumed by the beat
// process. The schedule column holds either an interval form
//
//	{"type": "interval", "every": 5, "period": "minutes"}
//
// or a crontab form
//
//	{"type": "crontab", "minute": "0", "hour": "*/6"}
//
// Rows written by older releases may hold a different shape; those
// fail ScheduleSpec and are picked up by the repair command.
type PeriodicTask struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Task          string          `gorm:"size:200;not null" json:"task"`
	Schedule      json.RawMessage `gorm:"type:jsonb" json:"schedule"`
	Kwargs        json.RawMessage `gorm:"type:jsonb" json:"kwargs,omitempty"`
	Enabled       bool            `gorm:"default:true" json:"enabled"`
	OneOff        bool            `gorm:"default:false" json:"one_off"`
	ExpirySeconds int             `json:"expiry_seconds"`
	LastRunAt     *time.Time      `json:"last_run_at,omitempty"`
	TotalRunCount uint            `json:"total_run_count"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PeriodicTask) TableName() string {
	return "periodic_task"
}

// Schedule yields successive fire times.
type Schedule interface {
	Next(time.Time) time.Time
}

type intervalSchedule struct {
	every time.Duration
}

func (s intervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.every)
}

type scheduleSpec struct {
	Type string `json:"type"`

	// interval fields
	Every  int    `json:"every,omitempty"`
	Period string `json:"period,omitempty"`

	// crontab fields, "*" when empty
	Minute     string `json:"minute,omitempty"`
	Hour       string `json:"hour,omitempty"`
	DayOfMonth string `json:"day_of_month,omitempty"`
	Month      string `json:"month,omitempty"`
	DayOfWeek  string `json:"day_of_week,omitempty"`
}

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

var periodUnits = map[string]time.Duration{
	"seconds": time.Second,
	"minutes": time.Minute,
	"hours":   time.Hour,
	"days":    24 * time.Hour,
}

// ScheduleSpec parses the stored schedule column. It is strict: any
// shape other than the two documented forms is an error, so that
// malformed rows can be detected and repaired rather than silently
// never firing.
func (t *PeriodicTask) ScheduleSpec() (Schedule, error) {
	if len(t.Schedule) == 0 {
		return nil, fmt.Errorf("periodic task %q: empty schedule", t.Name)
	}

	dec := json.NewDecoder(strings.NewReader(string(t.Schedule)))
	dec.DisallowUnknownFields()
	var spec scheduleSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("periodic task %q: malformed schedule: %w", t.Name, err)
	}

	switch spec.Type {
	case "interval":
		unit, ok := periodUnits[spec.Period]
		if !ok {
			return nil, fmt.Errorf("periodic task %q: unknown interval period %q", t.Name, spec.Period)
		}
		if spec.Every <= 0 {
			return nil, fmt.Errorf("periodic task %q: interval must be positive, got %d", t.Name, spec.Every)
		}
		return intervalSchedule{every: time.Duration(spec.Every) * unit}, nil

	case "crontab":
		expr := strings.Join([]string{
			defaultStar(spec.Minute),
			defaultStar(spec.Hour),
			defaultStar(spec.DayOfMonth),
			defaultStar(spec.Month),
			defaultStar(spec.DayOfWeek),
		}, " ")
		sched, err := cronParser.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("periodic task %q: invalid crontab %q: %w", t.Name, expr, err)
		}
		return sched, nil

	case "":
		return nil, fmt.Errorf("periodic task %q: schedule has no type", t.Name)
	default:
		return nil, fmt.Errorf("periodic task %q: unknown schedule type %q", t.Name, spec.Type)
	}
}

// Due reports whether the task should fire at now, based on the last
// fire time (or creation time for never-fired tasks).
func (t *PeriodicTask) Due(now time.Time) (bool, error) {
	sched, err := t.ScheduleSpec()
	if err != nil {
		return false, err
	}
	base := t.CreatedAt
	if t.LastRunAt != nil {
		base = *t.LastRunAt
	}
	return !sched.Next(base).After(now), nil
}

// Expiry returns the message expiry for this task, zero when unset.
func (t *PeriodicTask) Expiry() time.Duration {
	if t.ExpirySeconds <= 0 {
		return 0
	}
	return time.Duration(t.ExpirySeconds) * time.Second
}

func defaultStar(field string) string {
	if field == "" {
		return "*"
	}
	return field
}
