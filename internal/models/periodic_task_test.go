package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(name string, schedule string) *PeriodicTask {
	return &PeriodicTask{
		Name:     name,
		Task:     "simulation.run_fund",
		Schedule: json.RawMessage(schedule),
	}
}

func TestScheduleSpecInterval(t *testing.T) {
	pt := task("every-5m", `{"type":"interval","every":5,"period":"minutes"}`)

	sched, err := pt.ScheduleSpec()
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, base.Add(5*time.Minute), sched.Next(base))
}

func TestScheduleSpecCrontab(t *testing.T) {
	pt := task("hourly", `{"type":"crontab","minute":"0"}`)

	sched, err := pt.ScheduleSpec()
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), sched.Next(base))
}

func TestScheduleSpecCrontabAllFields(t *testing.T) {
	pt := task("daily-close", `{"type":"crontab","minute":"30","hour":"16","day_of_week":"1-5"}`)

	sched, err := pt.ScheduleSpec()
	require.NoError(t, err)

	// Friday 17:00 -> next weekday 16:30 is Monday.
	base := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 16, 30, 0, 0, time.UTC), sched.Next(base))
}

func TestScheduleSpecMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":           ``,
		"not an object":   `"*/5 * * * *"`,
		"no type":         `{"every":5,"period":"minutes"}`,
		"unknown type":    `{"type":"solar","every":5}`,
		"nested interval": `{"type":"interval","every":{"minutes":5}}`,
		"bad period":      `{"type":"interval","every":5,"period":"fortnights"}`,
		"zero interval":   `{"type":"interval","every":0,"period":"minutes"}`,
		"bad cron field":  `{"type":"crontab","minute":"61"}`,
		"stray field":     `{"type":"crontab","minute":"0","tz":"UTC"}`,
	}

	for name, schedule := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := task("bad", schedule).ScheduleSpec()
			assert.Error(t, err)
		})
	}
}

func TestDue(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	pt := task("every-10m", `{"type":"interval","every":10,"period":"minutes"}`)
	pt.CreatedAt = now.Add(-time.Hour)

	due, err := pt.Due(now)
	require.NoError(t, err)
	assert.True(t, due)

	recent := now.Add(-time.Minute)
	pt.LastRunAt = &recent
	due, err = pt.Due(now)
	require.NoError(t, err)
	assert.False(t, due)

	old := now.Add(-11 * time.Minute)
	pt.LastRunAt = &old
	due, err = pt.Due(now)
	require.NoError(t, err)
	assert.True(t, due)
}

func TestDueMalformedSchedule(t *testing.T) {
	pt := task("bad", `{"schedule":{"every":5}}`)
	pt.CreatedAt = time.Now().Add(-time.Hour)

	_, err := pt.Due(time.Now())
	assert.Error(t, err)
}

func TestExpiry(t *testing.T) {
	pt := task("x", `{"type":"interval","every":1,"period":"hours"}`)
	assert.Equal(t, time.Duration(0), pt.Expiry())

	pt.ExpirySeconds = 3600
	assert.Equal(t, time.Hour, pt.Expiry())
}
