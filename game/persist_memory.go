package game

import "sync"

// MemoryTableStateTracker keeps serialized tables in process memory.
// Used by tests and single-node deployments.
type MemoryTableStateTracker struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryTableStateTracker() *MemoryTableStateTracker {
	return &MemoryTableStateTracker{
		states: make(map[string][]byte),
	}
}

func (m *MemoryTableStateTracker) Load(roomID string) (*SerializedTable, error) {
	m.mu.RLock()
	data, ok := m.states[roomID]
	m.mu.RUnlock()
	if !ok {
		return nil, newHandError(StateUnavailable, "table state for room %s is not found", roomID)
	}
	return DecodeTable(data)
}

func (m *MemoryTableStateTracker) Save(roomID string, state *SerializedTable) error {
	data, err := state.Encode()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.states[roomID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryTableStateTracker) Remove(roomID string) error {
	m.mu.Lock()
	delete(m.states, roomID)
	m.mu.Unlock()
	return nil
}
