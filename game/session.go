package game

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"voyager.com/holdem/logging"
	"voyager.com/holdem/scheduler"
)

var sessionLogger = log.With().Str("logger_name", "game::session").Logger()

type actionRequest struct {
	playerID uint64
	action   Action
	resp     chan error
}

type removeRequest struct {
	playerID uint64
	resp     chan error
}

type revealRequest struct {
	playerID uint64
	resp     chan error
}

// Session owns one room. Every mutation of the room's state, whether a
// player action from the network or a fired timer callback, goes through
// the session's single loop goroutine, so no two mutations ever
// interleave. Load-then-save against the store is not transactional by
// itself; this loop is what makes it safe.
type Session struct {
	roomID   string
	config   GameConfig
	store    PersistTableState
	timer    *TurnTimer
	receiver MessageReceiver

	chAction     chan actionRequest
	chTimerFired chan scheduler.Payload
	chStartHand  chan chan error
	chRemove     chan removeRequest
	chReveal     chan revealRequest
	chEnd        chan bool

	// expectedSeq tracks the last persisted ActionSeq to detect writes
	// from outside this loop.
	seqKnown    bool
	expectedSeq uint32

	logger zerolog.Logger
}

func NewSession(roomID string, config GameConfig, store PersistTableState, sched scheduler.Scheduler, receiver MessageReceiver) *Session {
	config = config.withDefaults()
	logger := sessionLogger.With().Str(logging.RoomIDKey, roomID).Logger()
	timeout := time.Duration(config.ActionTimeoutMs) * time.Millisecond
	return &Session{
		roomID:       roomID,
		config:       config,
		store:        store,
		timer:        NewTurnTimer(roomID, sched, timeout, logger),
		receiver:     receiver,
		chAction:     make(chan actionRequest),
		chTimerFired: make(chan scheduler.Payload, 4),
		chStartHand:  make(chan chan error),
		chRemove:     make(chan removeRequest),
		chReveal:     make(chan revealRequest),
		chEnd:        make(chan bool),
		logger:       logger,
	}
}

func (s *Session) RoomID() string {
	return s.roomID
}

// Run starts the session loop.
func (s *Session) Run() {
	go s.loop()
}

// End stops the session loop. Stored state stays behind for the room
// lifecycle owner to clean up.
func (s *Session) End() {
	s.chEnd <- true
}

func (s *Session) loop() {
	for {
		select {
		case <-s.chEnd:
			s.timer.Cancel()
			s.logger.Info().Msg("Session loop returning")
			return
		case req := <-s.chAction:
			req.resp <- s.handleAction(req.playerID, req.action, false)
		case payload := <-s.chTimerFired:
			s.handleTimerFired(payload)
		case resp := <-s.chStartHand:
			resp <- s.handleStartHand()
		case req := <-s.chRemove:
			req.resp <- s.handleRemove(req.playerID)
		case req := <-s.chReveal:
			req.resp <- s.handleReveal(req.playerID)
		}
	}
}

// PlayerActed is the serialized entry point for inbound action events.
// It blocks until the action is validated, applied and persisted.
func (s *Session) PlayerActed(playerID uint64, action Action) error {
	resp := make(chan error, 1)
	s.chAction <- actionRequest{playerID: playerID, action: action, resp: resp}
	return <-resp
}

// OnTimerFired hands a fired scheduler callback to the session loop.
func (s *Session) OnTimerFired(payload scheduler.Payload) {
	s.chTimerFired <- payload
}

// StartHand deals the next hand for the room.
func (s *Session) StartHand() error {
	resp := make(chan error, 1)
	s.chStartHand <- resp
	return <-resp
}

// RemovePlayer takes a disconnected player off the table.
func (s *Session) RemovePlayer(playerID uint64) error {
	resp := make(chan error, 1)
	s.chRemove <- removeRequest{playerID: playerID, resp: resp}
	return <-resp
}

// RevealCards marks a player's hole cards as voluntarily shown after the
// hand.
func (s *Session) RevealCards(playerID uint64) error {
	resp := make(chan error, 1)
	s.chReveal <- revealRequest{playerID: playerID, resp: resp}
	return <-resp
}

func (s *Session) loadState() (*HandState, error) {
	st, err := s.store.Load(s.roomID)
	if err != nil {
		return nil, err
	}
	if s.seqKnown && st.ActionSeq != s.expectedSeq {
		// someone else wrote this room's state; resync and give up on
		// this event
		s.seqKnown = false
		return nil, newHandError(ConcurrencyViolation,
			"room %s state changed outside the session (expected seq %d, got %d)",
			s.roomID, s.expectedSeq, st.ActionSeq)
	}
	return FromSerialized(st), nil
}

func (s *Session) saveState(h *HandState) error {
	err := s.store.Save(s.roomID, h.ToSerialized())
	if err != nil {
		return err
	}
	s.seqKnown = true
	s.expectedSeq = h.ActionSeq
	return nil
}

// armTurnTimer schedules the auto-fold for the current acting player and
// stamps their deadline into the state before it is persisted.
func (s *Session) armTurnTimer(h *HandState) {
	if h.HandOver || h.ActingPlayerID == 0 {
		return
	}
	acting := h.ActingPlayer()
	if acting == nil {
		return
	}
	deadline, err := s.timer.Arm(acting.UserID, h.ActionSeq)
	if err != nil {
		s.logger.Error().Err(err).
			Uint64(logging.PlayerIDKey, acting.UserID).
			Msg("Unable to arm turn timer")
		return
	}
	acting.ActionDeadline = deadline
}

func (s *Session) handleStartHand() error {
	h, err := s.loadState()
	if err != nil {
		return err
	}
	err = h.StartHand()
	if err != nil {
		return err
	}
	s.armTurnTimer(h)
	err = s.saveState(h)
	if err != nil {
		return err
	}
	s.receiver.HandStarted(h.Snapshot())
	if h.HandOver {
		s.receiver.HandEnded(h.Snapshot(), h.Pots)
	}
	return nil
}

func (s *Session) handleAction(playerID uint64, action Action, timedOut bool) error {
	h, err := s.loadState()
	if err != nil {
		return err
	}
	err = h.ActionReceived(playerID, action, timedOut)
	if err != nil {
		// rejected: state unchanged, nothing to persist or notify
		s.logger.Debug().Err(err).
			Uint64(logging.PlayerIDKey, playerID).
			Str(logging.ActionKey, action.Type.String()).
			Msg("Action rejected")
		return err
	}
	if !timedOut {
		s.timer.Cancel()
	}
	s.armTurnTimer(h)
	err = s.saveState(h)
	if err != nil {
		return err
	}
	s.receiver.StateUpdated(h.Snapshot(), h.LastActionApplied)
	if h.HandOver {
		s.receiver.HandEnded(h.Snapshot(), h.Pots)
	}
	return nil
}

func (s *Session) handleTimerFired(payload scheduler.Payload) {
	h, err := s.loadState()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Dropping timer fire; state unavailable")
		return
	}
	err = s.timer.ValidateFire(h, payload)
	if err != nil {
		// the turn already advanced; the fire is a no-op
		s.logger.Debug().Err(err).
			Uint64(logging.PlayerIDKey, payload.PlayerID).
			Msg("Stale timer fire ignored")
		return
	}
	s.logger.Info().
		Uint64(logging.PlayerIDKey, payload.PlayerID).
		Uint32("actionSeq", payload.ActionSeq).
		Msg("Action timed out; auto-folding")
	err = s.handleAutoFold(h, payload.PlayerID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Unable to apply auto-fold")
	}
}

func (s *Session) handleAutoFold(h *HandState, playerID uint64) error {
	err := h.ActionReceived(playerID, Fold(), true)
	if err != nil {
		return err
	}
	s.armTurnTimer(h)
	err = s.saveState(h)
	if err != nil {
		return err
	}
	s.receiver.StateUpdated(h.Snapshot(), h.LastActionApplied)
	if h.HandOver {
		s.receiver.HandEnded(h.Snapshot(), h.Pots)
	}
	return nil
}

func (s *Session) handleRemove(playerID uint64) error {
	h, err := s.loadState()
	if err != nil {
		return err
	}
	wasActing := h.ActingPlayerID == playerID
	removed, err := h.RemovePlayer(playerID)
	if err != nil {
		return err
	}
	if wasActing {
		s.timer.Cancel()
	}
	s.armTurnTimer(h)
	err = s.saveState(h)
	if err != nil {
		return err
	}
	s.logger.Info().
		Uint64(logging.PlayerIDKey, removed.UserID).
		Int64("refundedStack", removed.Coins).
		Msg("Player removed from table")
	s.receiver.StateUpdated(h.Snapshot(), h.LastActionApplied)
	if h.HandOver {
		s.receiver.HandEnded(h.Snapshot(), h.Pots)
	}
	return nil
}

func (s *Session) handleReveal(playerID uint64) error {
	h, err := s.loadState()
	if err != nil {
		return err
	}
	if !h.HandOver {
		return newHandError(IllegalAmount, "player %d cannot reveal before the hand is over", playerID)
	}
	p := h.playerByID(playerID)
	if p == nil {
		return newHandError(WrongTurn, "player %d is not at table %s", playerID, s.roomID)
	}
	p.RevealCards = true
	err = s.saveState(h)
	if err != nil {
		return err
	}
	s.receiver.StateUpdated(h.Snapshot(), h.LastActionApplied)
	return nil
}

// CurrentSnapshot loads and returns the redacted view of the room, for
// the REST debug surface.
func (s *Session) CurrentSnapshot() (*TableSnapshot, error) {
	st, err := s.store.Load(s.roomID)
	if err != nil {
		return nil, err
	}
	return FromSerialized(st).Snapshot(), nil
}
