package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fireRecorder struct {
	mu    sync.Mutex
	fired []Payload
}

func (r *fireRecorder) record(p Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, p)
}

func (r *fireRecorder) payloads() []Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Payload, len(r.fired))
	copy(out, r.fired)
	return out
}

func (r *fireRecorder) waitFor(t *testing.T, count int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.payloads()) >= count {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d fired payloads, got %d", count, len(r.payloads()))
}

func TestScheduleFires(t *testing.T) {
	rec := &fireRecorder{}
	s := NewInProcess(rec.record)
	defer s.Stop()

	require.NoError(t, s.Schedule("room-1", 10*time.Millisecond, Payload{RoomID: "room-1", PlayerID: 7, ActionSeq: 3}))
	rec.waitFor(t, 1)

	fired := rec.payloads()
	assert.Equal(t, "room-1", fired[0].RoomID)
	assert.Equal(t, uint64(7), fired[0].PlayerID)
	assert.Equal(t, uint32(3), fired[0].ActionSeq)
}

func TestRescheduleReplacesPending(t *testing.T) {
	rec := &fireRecorder{}
	s := NewInProcess(rec.record)
	defer s.Stop()

	require.NoError(t, s.Schedule("room-1", time.Hour, Payload{RoomID: "room-1", ActionSeq: 1}))
	require.NoError(t, s.Schedule("room-1", 10*time.Millisecond, Payload{RoomID: "room-1", ActionSeq: 2}))
	rec.waitFor(t, 1)

	// only the replacement fires
	time.Sleep(50 * time.Millisecond)
	fired := rec.payloads()
	require.Len(t, fired, 1)
	assert.Equal(t, uint32(2), fired[0].ActionSeq)
}

func TestCancelPendingJob(t *testing.T) {
	rec := &fireRecorder{}
	s := NewInProcess(rec.record)
	defer s.Stop()

	require.NoError(t, s.Schedule("room-1", 20*time.Millisecond, Payload{RoomID: "room-1"}))
	require.NoError(t, s.Cancel("room-1"))

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.payloads())
}

func TestCancelWithoutJob(t *testing.T) {
	s := NewInProcess(func(Payload) {})
	defer s.Stop()

	err := s.Cancel("room-404")
	assert.Equal(t, ErrNoPendingJob, err)
}

func TestCancelAfterFire(t *testing.T) {
	rec := &fireRecorder{}
	s := NewInProcess(rec.record)
	defer s.Stop()

	require.NoError(t, s.Schedule("room-1", 5*time.Millisecond, Payload{RoomID: "room-1"}))
	rec.waitFor(t, 1)

	// the fired timer removed itself
	assert.Equal(t, ErrNoPendingJob, s.Cancel("room-1"))
}

func TestStopCancelsEverything(t *testing.T) {
	rec := &fireRecorder{}
	s := NewInProcess(rec.record)

	require.NoError(t, s.Schedule("room-1", 20*time.Millisecond, Payload{RoomID: "room-1"}))
	require.NoError(t, s.Schedule("room-2", 20*time.Millisecond, Payload{RoomID: "room-2"}))
	s.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.payloads())
}

func TestIndependentKeys(t *testing.T) {
	rec := &fireRecorder{}
	s := NewInProcess(rec.record)
	defer s.Stop()

	require.NoError(t, s.Schedule("room-1", 10*time.Millisecond, Payload{RoomID: "room-1"}))
	require.NoError(t, s.Schedule("room-2", 10*time.Millisecond, Payload{RoomID: "room-2"}))
	rec.waitFor(t, 2)

	rooms := map[string]bool{}
	for _, p := range rec.payloads() {
		rooms[p.RoomID] = true
	}
	assert.True(t, rooms["room-1"])
	assert.True(t, rooms["room-2"])
}
