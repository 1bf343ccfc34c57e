package repair

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simcontrol/internal/models"
)

type fakeStore struct {
	tasks    []models.PeriodicTask
	listErr  error
	disabled []uint
	deleted  []uint
	failOn   map[uint]error
}

func (s *fakeStore) ListPeriodicTasks() ([]models.PeriodicTask, error) {
	return s.tasks, s.listErr
}

func (s *fakeStore) DisablePeriodicTask(id uint) error {
	if err := s.failOn[id]; err != nil {
		return err
	}
	s.disabled = append(s.disabled, id)
	return nil
}

func (s *fakeStore) DeletePeriodicTask(id uint) error {
	if err := s.failOn[id]; err != nil {
		return err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func fixtureTasks() []models.PeriodicTask {
	return []models.PeriodicTask{
		{ID: 1, Name: "good-interval", Schedule: json.RawMessage(`{"type":"interval","every":5,"period":"minutes"}`)},
		{ID: 2, Name: "good-crontab", Schedule: json.RawMessage(`{"type":"crontab","minute":"0","hour":"*/2"}`)},
		{ID: 3, Name: "legacy-shape", Schedule: json.RawMessage(`{"every":{"minutes":5}}`)},
		{ID: 4, Name: "no-type", Schedule: json.RawMessage(`{"minute":"0"}`)},
		{ID: 5, Name: "empty", Schedule: nil},
	}
}

func TestSweepDisablesInvalid(t *testing.T) {
	store := &fakeStore{tasks: fixtureTasks()}

	report, err := SweepInvalidSchedules(store, false, t.Logf)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 2, report.Valid)
	assert.Equal(t, 3, report.Disabled)
	assert.Equal(t, 0, report.Deleted)
	assert.ElementsMatch(t, []uint{3, 4, 5}, store.disabled)
	assert.Empty(t, store.deleted)
}

func TestSweepDeletesInvalid(t *testing.T) {
	store := &fakeStore{tasks: fixtureTasks()}

	report, err := SweepInvalidSchedules(store, true, t.Logf)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Deleted)
	assert.Equal(t, 0, report.Disabled)
	assert.ElementsMatch(t, []uint{3, 4, 5}, store.deleted)
	assert.Empty(t, store.disabled)
}

func TestSweepEmptyTable(t *testing.T) {
	report, err := SweepInvalidSchedules(&fakeStore{}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
}

func TestSweepContinuesPastUpdateFailures(t *testing.T) {
	store := &fakeStore{
		tasks:  fixtureTasks(),
		failOn: map[uint]error{3: errors.New("row locked")},
	}

	report, err := SweepInvalidSchedules(store, false, t.Logf)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.Disabled)
	assert.ElementsMatch(t, []uint{4, 5}, store.disabled)
}

func TestSweepListError(t *testing.T) {
	_, err := SweepInvalidSchedules(&fakeStore{listErr: errors.New("db down")}, false, nil)
	assert.Error(t, err)
}
