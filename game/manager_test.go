package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *MemoryTableStateTracker, *fakeScheduler, *captureReceiver) {
	t.Helper()
	store := NewMemoryTableStateTracker()
	sched := newFakeScheduler()
	receiver := &captureReceiver{}
	return NewManager(testConfig(), store, sched, receiver), store, sched, receiver
}

func testPlayers(stacks ...int64) []*Player {
	players := make([]*Player, len(stacks))
	for i, stack := range stacks {
		players[i] = &Player{UserID: uint64(i + 1), SeatNo: i + 1, Coins: stack}
	}
	return players
}

func TestManagerCreateTable(t *testing.T) {
	m, store, _, _ := newTestManager(t)

	session, err := m.CreateTable("", testPlayers(100, 100, 100))
	require.NoError(t, err)
	defer m.EndTable(session.RoomID())

	// a room id was generated and the table is in the store
	assert.NotEmpty(t, session.RoomID())
	st, err := store.Load(session.RoomID())
	require.NoError(t, err)
	assert.Len(t, st.Players, 3)

	got, ok := m.GetSession(session.RoomID())
	assert.True(t, ok)
	assert.Same(t, session, got)
	assert.Contains(t, m.RoomIDs(), session.RoomID())
}

func TestManagerDuplicateRoomRejected(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	_, err := m.CreateTable("room-dup", testPlayers(100, 100))
	require.NoError(t, err)
	defer m.EndTable("room-dup")

	_, err = m.CreateTable("room-dup", testPlayers(100, 100))
	assert.Error(t, err)
}

func TestManagerResumeTable(t *testing.T) {
	m, store, _, _ := newTestManager(t)

	h := newTestTable(t, 100, 100)
	require.NoError(t, store.Save(h.RoomID, h.ToSerialized()))

	session, err := m.ResumeTable(h.RoomID)
	require.NoError(t, err)
	defer m.EndTable(h.RoomID)

	require.NoError(t, session.StartHand())

	// resuming again returns the running session
	again, err := m.ResumeTable(h.RoomID)
	require.NoError(t, err)
	assert.Same(t, session, again)
}

func TestManagerResumeUnknownRoom(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	_, err := m.ResumeTable("no-such-room")
	require.Error(t, err)
	assert.Equal(t, StateUnavailable, KindOf(err))
}

func TestManagerEndTableRemovesState(t *testing.T) {
	m, store, _, _ := newTestManager(t)

	session, err := m.CreateTable("room-end", testPlayers(100, 100))
	require.NoError(t, err)
	require.NoError(t, session.StartHand())

	require.NoError(t, m.EndTable("room-end"))

	_, ok := m.GetSession("room-end")
	assert.False(t, ok)
	_, err = store.Load("room-end")
	assert.Error(t, err)
}

func TestManagerRoutesTimerFires(t *testing.T) {
	m, store, sched, _ := newTestManager(t)

	session, err := m.CreateTable("room-timer", testPlayers(100, 100, 100))
	require.NoError(t, err)
	defer m.EndTable("room-timer")
	require.NoError(t, session.StartHand())

	payload := sched.armed(t, "room-timer")
	m.OnTimerFired(payload)

	require.Eventually(t, func() bool {
		h := storedState(t, store, "room-timer")
		return h.playerByID(payload.PlayerID).Folded
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManagerDropsFireForUnknownRoom(t *testing.T) {
	m, _, sched, _ := newTestManager(t)

	session, err := m.CreateTable("room-gone", testPlayers(100, 100, 100))
	require.NoError(t, err)
	require.NoError(t, session.StartHand())
	payload := sched.armed(t, "room-gone")
	require.NoError(t, m.EndTable("room-gone"))

	// must not panic or resurrect the room
	m.OnTimerFired(payload)
	_, ok := m.GetSession("room-gone")
	assert.False(t, ok)
}
