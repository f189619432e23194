package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voyager.com/holdem/scheduler"
)

// fakeScheduler records scheduled jobs and lets tests fire them by hand.
type fakeScheduler struct {
	mu          sync.Mutex
	pending     map[string]scheduler.Payload
	cancelCalls int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: make(map[string]scheduler.Payload)}
}

func (f *fakeScheduler) Schedule(key string, delay time.Duration, payload scheduler.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[key] = payload
	return nil
}

func (f *fakeScheduler) Cancel(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	if _, ok := f.pending[key]; !ok {
		return scheduler.ErrNoPendingJob
	}
	delete(f.pending, key)
	return nil
}

func (f *fakeScheduler) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelCalls
}

func (f *fakeScheduler) armed(t *testing.T, key string) scheduler.Payload {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.pending[key]
	require.True(t, ok, "no pending job for %s", key)
	return payload
}

// captureReceiver records every notification the session emits.
type captureReceiver struct {
	mu        sync.Mutex
	started   []*TableSnapshot
	updated   []*TableSnapshot
	endedPots [][]*Pot
}

func (c *captureReceiver) HandStarted(snapshot *TableSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = append(c.started, snapshot)
}

func (c *captureReceiver) StateUpdated(snapshot *TableSnapshot, lastAction *LastAction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updated = append(c.updated, snapshot)
}

func (c *captureReceiver) HandEnded(snapshot *TableSnapshot, pots []*Pot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endedPots = append(c.endedPots, pots)
}

func (c *captureReceiver) endedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.endedPots)
}

func newTestSession(t *testing.T, stacks ...int64) (*Session, *MemoryTableStateTracker, *fakeScheduler, *captureReceiver) {
	t.Helper()
	store := NewMemoryTableStateTracker()
	sched := newFakeScheduler()
	receiver := &captureReceiver{}

	h := newTestTable(t, stacks...)
	require.NoError(t, store.Save(h.RoomID, h.ToSerialized()))

	s := NewSession(h.RoomID, testConfig(), store, sched, receiver)
	s.Run()
	t.Cleanup(func() { s.End() })
	return s, store, sched, receiver
}

func storedState(t *testing.T, store *MemoryTableStateTracker, roomID string) *HandState {
	t.Helper()
	st, err := store.Load(roomID)
	require.NoError(t, err)
	return FromSerialized(st)
}

func TestSessionStartHandArmsTimer(t *testing.T) {
	s, store, sched, receiver := newTestSession(t, 100, 100, 100)

	require.NoError(t, s.StartHand())

	h := storedState(t, store, s.RoomID())
	assert.Equal(t, uint64(1), h.ActingPlayerID)

	payload := sched.armed(t, s.RoomID())
	assert.Equal(t, uint64(1), payload.PlayerID)
	assert.Equal(t, h.ActionSeq, payload.ActionSeq)

	// deadline stamped into the persisted state
	acting := h.ActingPlayer()
	require.NotNil(t, acting.ActionDeadline)
	assert.True(t, acting.ActionDeadline.ExpiresAt.After(acting.ActionDeadline.StartedAt))
	assert.Len(t, receiver.started, 1)
}

func TestSessionActionPersistsBeforeNotify(t *testing.T) {
	s, store, sched, _ := newTestSession(t, 100, 100, 100)
	require.NoError(t, s.StartHand())
	before := storedState(t, store, s.RoomID())

	require.NoError(t, s.PlayerActed(1, Call()))

	h := storedState(t, store, s.RoomID())
	assert.Equal(t, uint64(2), h.ActingPlayerID)
	assert.Greater(t, h.ActionSeq, before.ActionSeq)

	// the timer now guards the next player's turn
	payload := sched.armed(t, s.RoomID())
	assert.Equal(t, uint64(2), payload.PlayerID)
	assert.Equal(t, h.ActionSeq, payload.ActionSeq)
}

func TestSessionRejectedActionLeavesStateAlone(t *testing.T) {
	s, store, _, _ := newTestSession(t, 100, 100, 100)
	require.NoError(t, s.StartHand())
	before := storedState(t, store, s.RoomID())

	err := s.PlayerActed(2, Fold())
	require.Error(t, err)
	assert.Equal(t, WrongTurn, KindOf(err))

	after := storedState(t, store, s.RoomID())
	assert.Equal(t, before.ActionSeq, after.ActionSeq)
	assert.Equal(t, before.ActingPlayerID, after.ActingPlayerID)
}

func TestTimerFireAutoFolds(t *testing.T) {
	s, store, sched, _ := newTestSession(t, 100, 100, 100)
	require.NoError(t, s.StartHand())
	payload := sched.armed(t, s.RoomID())

	s.OnTimerFired(payload)

	require.Eventually(t, func() bool {
		h := storedState(t, store, s.RoomID())
		return h.playerByID(1).Folded
	}, 2*time.Second, 10*time.Millisecond, "auto-fold never applied")

	h := storedState(t, store, s.RoomID())
	assert.Equal(t, uint64(2), h.ActingPlayerID)
	require.NotNil(t, h.LastActionApplied)
	assert.True(t, h.LastActionApplied.TimedOut)

	// the next turn is guarded again
	next := sched.armed(t, s.RoomID())
	assert.Equal(t, uint64(2), next.PlayerID)
}

func TestStaleTimerFireIsNoOp(t *testing.T) {
	s, store, sched, _ := newTestSession(t, 100, 100, 100)
	require.NoError(t, s.StartHand())
	stale := sched.armed(t, s.RoomID())

	// player 1 acts before their timer fires
	require.NoError(t, s.PlayerActed(1, Call()))
	before := storedState(t, store, s.RoomID())

	s.OnTimerFired(stale)
	time.Sleep(100 * time.Millisecond)

	after := storedState(t, store, s.RoomID())
	assert.Equal(t, before.ActionSeq, after.ActionSeq)
	assert.Equal(t, uint64(2), after.ActingPlayerID)
	assert.False(t, after.playerByID(1).Folded)
}

func TestDuplicateTimerFireFoldsOnce(t *testing.T) {
	s, store, sched, _ := newTestSession(t, 100, 100, 100)
	require.NoError(t, s.StartHand())
	payload := sched.armed(t, s.RoomID())

	s.OnTimerFired(payload)
	s.OnTimerFired(payload)

	require.Eventually(t, func() bool {
		h := storedState(t, store, s.RoomID())
		return h.playerByID(1).Folded
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	// the second delivery hit the seq check; only one fold applied
	h := storedState(t, store, s.RoomID())
	assert.Equal(t, uint64(2), h.ActingPlayerID)
	assert.False(t, h.playerByID(2).Folded)
}

func TestSessionHandEndedNotification(t *testing.T) {
	s, _, _, receiver := newTestSession(t, 100, 100, 100)
	require.NoError(t, s.StartHand())

	require.NoError(t, s.PlayerActed(1, Fold()))
	require.NoError(t, s.PlayerActed(2, Fold()))

	require.Equal(t, 1, receiver.endedCount())
	pots := receiver.endedPots[0]
	require.Len(t, pots, 1)
	assert.Equal(t, []uint64{3}, pots[0].WinnerIDs)
	assert.True(t, pots[0].Resolved)
}

func TestRevealOnlyAfterHandOver(t *testing.T) {
	s, store, _, _ := newTestSession(t, 100, 100, 100)
	require.NoError(t, s.StartHand())

	err := s.RevealCards(1)
	require.Error(t, err)

	require.NoError(t, s.PlayerActed(1, Fold()))
	require.NoError(t, s.PlayerActed(2, Fold()))

	require.NoError(t, s.RevealCards(1))
	h := storedState(t, store, s.RoomID())
	assert.True(t, h.playerByID(1).RevealCards)
}

func TestSessionRemovePlayer(t *testing.T) {
	s, store, sched, _ := newTestSession(t, 100, 100, 100)
	require.NoError(t, s.StartHand())

	// removing the acting player advances the turn and re-arms the timer
	require.NoError(t, s.RemovePlayer(1))

	h := storedState(t, store, s.RoomID())
	assert.Nil(t, h.playerByID(1))
	assert.Equal(t, uint64(2), h.ActingPlayerID)
	payload := sched.armed(t, s.RoomID())
	assert.Equal(t, uint64(2), payload.PlayerID)
}

func TestSessionDetectsForeignWrite(t *testing.T) {
	s, store, _, _ := newTestSession(t, 100, 100, 100)
	require.NoError(t, s.StartHand())

	// another writer clobbers the room's state behind the session's back
	h := storedState(t, store, s.RoomID())
	h.ActionSeq += 5
	require.NoError(t, store.Save(s.RoomID(), h.ToSerialized()))

	err := s.PlayerActed(1, Call())
	require.Error(t, err)
	assert.Equal(t, ConcurrencyViolation, KindOf(err))

	// the session resynced; the retry goes through
	require.NoError(t, s.PlayerActed(1, Call()))
}

func TestSessionStateUnavailable(t *testing.T) {
	store := NewMemoryTableStateTracker()
	sched := newFakeScheduler()
	s := NewSession("no-such-room", testConfig(), store, sched, &captureReceiver{})
	s.Run()
	defer s.End()

	err := s.StartHand()
	require.Error(t, err)
	assert.Equal(t, StateUnavailable, KindOf(err))
}
