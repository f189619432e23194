package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnTimerCancelSkipsSchedulerWhenIdle(t *testing.T) {
	sched := newFakeScheduler()
	timer := NewTurnTimer("room-1", sched, time.Second, sessionLogger)

	// nothing armed yet; the scheduler must not be bothered
	timer.Cancel()
	assert.Zero(t, sched.cancelCount())

	_, err := timer.Arm(1, 1)
	require.NoError(t, err)
	timer.Cancel()
	assert.Equal(t, 1, sched.cancelCount())

	// already idle again
	timer.Cancel()
	assert.Equal(t, 1, sched.cancelCount())
}

func TestTurnTimerIdleAfterValidFire(t *testing.T) {
	sched := newFakeScheduler()
	timer := NewTurnTimer("room-1", sched, time.Second, sessionLogger)

	_, err := timer.Arm(1, 5)
	require.NoError(t, err)
	payload := sched.armed(t, "room-1")

	h := &HandState{RoomID: "room-1", ActingPlayerID: 1, ActionSeq: 5}
	require.NoError(t, timer.ValidateFire(h, payload))

	// the fired job is gone from the scheduler; a cancel after a valid
	// fire must not reach it
	timer.Cancel()
	assert.Equal(t, 0, sched.cancelCount())
}

func TestTurnTimerArmReturnsDeadline(t *testing.T) {
	sched := newFakeScheduler()
	timer := NewTurnTimer("room-1", sched, 30*time.Second, sessionLogger)

	deadline, err := timer.Arm(2, 7)
	require.NoError(t, err)
	require.NotNil(t, deadline)
	assert.Equal(t, 30*time.Second, deadline.ExpiresAt.Sub(deadline.StartedAt))

	payload := sched.armed(t, "room-1")
	assert.Equal(t, uint64(2), payload.PlayerID)
	assert.Equal(t, uint32(7), payload.ActionSeq)
}
