package game

// PersistTableState is the Store collaborator. Implementations are
// last-writer-wins; the Session's serialization discipline is what makes
// that safe.
type PersistTableState interface {
	Load(roomID string) (*SerializedTable, error)
	Save(roomID string, state *SerializedTable) error
	Remove(roomID string) error
}

// NewPersistTableState picks a store implementation by name ("memory" or
// "redis").
func NewPersistTableState(method string, redisHost string, redisPort int, redisPW string, redisDB int) PersistTableState {
	if method == "redis" {
		return NewRedisTableStateTracker(redisHost, redisPort, redisPW, redisDB)
	}
	return NewMemoryTableStateTracker()
}
