package tasks

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageBody(t *testing.T, task string, kwargs interface{}) []byte {
	t.Helper()
	msg, err := NewMessage(task, kwargs, 0)
	require.NoError(t, err)
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

// Deterministic failures must be acked, not requeued: the consumer
// runs with prefetch 1, so a requeued bad message would block the
// queue head forever.
func TestHandleDropsUnparseableFund(t *testing.T) {
	r := NewRunner(nil, nil, time.Hour, time.Hour)

	body := messageBody(t, TaskRunFund, map[string]string{"initial_fund": "not-a-number"})
	assert.NoError(t, r.Handle(body))
}

func TestHandleDropsInvalidFund(t *testing.T) {
	r := NewRunner(nil, nil, time.Hour, time.Hour)

	body := messageBody(t, TaskRunFund, map[string]string{"initial_fund": "0"})
	assert.NoError(t, r.Handle(body))
}

func TestHandleDropsBadPortfolioKwargs(t *testing.T) {
	r := NewRunner(nil, nil, time.Hour, time.Hour)

	body := messageBody(t, TaskRunPortfolio, map[string]string{"initial_portfolio": "AAPL"})
	assert.NoError(t, r.Handle(body))
}

func TestHandleDropsBadExecuteKwargs(t *testing.T) {
	r := NewRunner(nil, nil, time.Hour, time.Hour)

	body := messageBody(t, TaskExecuteRun, map[string]string{"run_id": "abc"})
	assert.NoError(t, r.Handle(body))
}

func TestPermanentErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := permanent(cause)

	var perm permanentError
	assert.True(t, errors.As(err, &perm))
	assert.ErrorIs(t, err, cause)

	// transient errors must not match
	assert.False(t, errors.As(cause, &perm))
}
