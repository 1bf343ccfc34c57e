package beat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simcontrol/internal/tasks"
)

func TestBuiltinEntriesValid(t *testing.T) {
	assert.NoError(t, ValidateEntries(Entries))
}

func TestValidateEntriesRejectsDuplicates(t *testing.T) {
	entries := []Entry{
		{Name: "a", Task: tasks.TaskMarkStale, Spec: "* * * * *"},
		{Name: "a", Task: tasks.TaskPurgeRuns, Spec: "* * * * *"},
	}
	assert.Error(t, ValidateEntries(entries))
}

func TestValidateEntriesRejectsBadSpec(t *testing.T) {
	entries := []Entry{
		{Name: "bad", Task: tasks.TaskMarkStale, Spec: "61 * * * *"},
	}
	assert.Error(t, ValidateEntries(entries))
}

func TestValidateEntriesRejectsMissingFields(t *testing.T) {
	assert.Error(t, ValidateEntries([]Entry{{Task: tasks.TaskMarkStale, Spec: "* * * * *"}}))
	assert.Error(t, ValidateEntries([]Entry{{Name: "x", Spec: "* * * * *"}}))
}

type capturingPublisher struct {
	queue    string
	messages []interface{}
}

func (p *capturingPublisher) Publish(queueName string, message interface{}) error {
	p.queue = queueName
	p.messages = append(p.messages, message)
	return nil
}

func TestFirePublishesTaskMessage(t *testing.T) {
	pub := &capturingPublisher{}
	b, err := New(nil, pub, Entries)
	require.NoError(t, err)

	entry := Entry{
		Name:   "test-entry",
		Task:   tasks.TaskRunFund,
		Spec:   "0 * * * *",
		Kwargs: map[string]interface{}{"initial_fund": "5000"},
		Expiry: time.Hour,
	}
	require.NoError(t, b.fire(entry))

	require.Len(t, pub.messages, 1)
	assert.Equal(t, tasks.DefaultQueue, pub.queue)

	msg, ok := pub.messages[0].(tasks.Message)
	require.True(t, ok)
	assert.Equal(t, tasks.TaskRunFund, msg.Task)
	assert.NotNil(t, msg.ExpiresAt)

	var kwargs map[string]string
	require.NoError(t, json.Unmarshal(msg.Kwargs, &kwargs))
	assert.Equal(t, "5000", kwargs["initial_fund"])
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	_, err := New(nil, &capturingPublisher{}, []Entry{
		{Name: "bad", Task: tasks.TaskMarkStale, Spec: "not a spec"},
	})
	assert.Error(t, err)
}
