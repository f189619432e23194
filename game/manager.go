package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"voyager.com/holdem/scheduler"
)

var managerLogger = log.With().Str("logger_name", "game::manager").Logger()

// Manager owns one Session per room. Pending timer jobs are keyed by
// roomID through the scheduler, so any number of rooms can have a timer
// armed at once.
type Manager struct {
	config   GameConfig
	store    PersistTableState
	sched    scheduler.Scheduler
	receiver MessageReceiver

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(config GameConfig, store PersistTableState, sched scheduler.Scheduler, receiver MessageReceiver) *Manager {
	return &Manager{
		config:   config.withDefaults(),
		store:    store,
		sched:    sched,
		receiver: receiver,
		sessions: make(map[string]*Session),
	}
}

// CreateTable seeds the store with a fresh table for the given players
// and starts its session. An empty roomID gets a generated one.
func (m *Manager) CreateTable(roomID string, players []*Player) (*Session, error) {
	if roomID == "" {
		roomID = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[roomID]; ok {
		return nil, fmt.Errorf("room %s already has a session", roomID)
	}

	h, err := NewHandState(roomID, m.config, players)
	if err != nil {
		return nil, err
	}
	err = m.store.Save(roomID, h.ToSerialized())
	if err != nil {
		return nil, err
	}

	session := NewSession(roomID, m.config, m.store, m.sched, m.receiver)
	m.sessions[roomID] = session
	session.Run()

	managerLogger.Info().
		Str("roomID", roomID).
		Int("players", len(players)).
		Msg("Table created")
	return session, nil
}

// ResumeTable starts a session for a room whose state already exists in
// the store, e.g. after a server restart.
func (m *Manager) ResumeTable(roomID string) (*Session, error) {
	_, err := m.store.Load(roomID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[roomID]; ok {
		return existing, nil
	}
	session := NewSession(roomID, m.config, m.store, m.sched, m.receiver)
	m.sessions[roomID] = session
	session.Run()
	return session, nil
}

func (m *Manager) GetSession(roomID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[roomID]
	return session, ok
}

// RoomIDs lists the rooms with a running session.
func (m *Manager) RoomIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// EndTable stops the room's session and removes its stored state.
func (m *Manager) EndTable(roomID string) error {
	m.mu.Lock()
	session, ok := m.sessions[roomID]
	delete(m.sessions, roomID)
	m.mu.Unlock()
	if ok {
		session.End()
	}
	err := m.store.Remove(roomID)
	if err != nil {
		return err
	}
	managerLogger.Info().Str("roomID", roomID).Msg("Table ended")
	return nil
}

// OnTimerFired routes a fired scheduler callback to its room's session.
// Fires for unknown rooms are dropped; the job outlived the table.
func (m *Manager) OnTimerFired(payload scheduler.Payload) {
	m.mu.RLock()
	session, ok := m.sessions[payload.RoomID]
	m.mu.RUnlock()
	if !ok {
		managerLogger.Debug().
			Str("roomID", payload.RoomID).
			Msg("Dropping timer fire for unknown room")
		return
	}
	session.OnTimerFired(payload)
}
