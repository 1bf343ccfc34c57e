package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simcontrol/internal/models"
)

func TestCrontabScheduleJSON(t *testing.T) {
	raw, err := crontabScheduleJSON("30 16 * * 1-5")
	require.NoError(t, err)

	var schedule map[string]string
	require.NoError(t, json.Unmarshal(raw, &schedule))
	assert.Equal(t, "crontab", schedule["type"])
	assert.Equal(t, "30", schedule["minute"])
	assert.Equal(t, "16", schedule["hour"])
	assert.Equal(t, "1-5", schedule["day_of_week"])

	// the produced form must parse back as a periodic task schedule
	task := models.PeriodicTask{Name: "seeded", Schedule: raw}
	_, err = task.ScheduleSpec()
	assert.NoError(t, err)
}

func TestCrontabScheduleJSONRejectsBadSpec(t *testing.T) {
	_, err := crontabScheduleJSON("0 * * *")
	assert.Error(t, err)

	_, err = crontabScheduleJSON("0 * * * * *")
	assert.Error(t, err)
}
