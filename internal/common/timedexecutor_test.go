package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimedExecutorRunsOncePerTimeout(t *testing.T) {
	clock := newFakeClock()
	runs := 0
	te := NewTimedExecutorWithClock(time.Minute, func() error {
		runs++
		return nil
	}, clock.Now)

	executed, err := te.Execute()
	require.NoError(t, err)
	assert.True(t, executed, "first call always runs")

	executed, err = te.Execute()
	require.NoError(t, err)
	assert.False(t, executed)

	clock.Advance(time.Minute)
	executed, err = te.Execute()
	require.NoError(t, err)
	assert.True(t, executed)
	assert.Equal(t, 2, runs)
}

func TestTimedExecutorRetriesAfterFailure(t *testing.T) {
	clock := newFakeClock()
	fail := true
	runs := 0
	te := NewTimedExecutorWithClock(time.Minute, func() error {
		runs++
		if fail {
			return errors.New("boom")
		}
		return nil
	}, clock.Now)

	executed, err := te.Execute()
	assert.True(t, executed)
	assert.Error(t, err)

	fail = false
	executed, err = te.Execute()
	assert.True(t, executed)
	assert.NoError(t, err)
	assert.Equal(t, 2, runs)
}

func TestTimedExecutorExpireTouchForce(t *testing.T) {
	clock := newFakeClock()
	runs := 0
	te := NewTimedExecutorWithClock(time.Minute, func() error {
		runs++
		return nil
	}, clock.Now)

	te.Touch()
	executed, _ := te.Execute()
	assert.False(t, executed, "a touched executor waits for the timeout")

	te.Expire()
	executed, _ = te.Execute()
	assert.True(t, executed)

	require.NoError(t, te.Force())
	assert.Equal(t, 2, runs)
}
