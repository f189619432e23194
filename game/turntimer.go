package game

import (
	"time"

	"github.com/rs/zerolog"
	"voyager.com/holdem/scheduler"
)

type timerState int32

const (
	timerIdle timerState = iota
	timerArmed
)

// TurnTimer arms the auto-fold callback whenever the acting player
// changes and cancels it when the player acts voluntarily. Correctness
// never depends on cancellation succeeding; a stale fire is rejected by
// the ValidateFire check instead.
type TurnTimer struct {
	roomID  string
	sched   scheduler.Scheduler
	timeout time.Duration
	state   timerState
	armed   scheduler.Payload
	logger  zerolog.Logger
}

func NewTurnTimer(roomID string, sched scheduler.Scheduler, timeout time.Duration, logger zerolog.Logger) *TurnTimer {
	return &TurnTimer{
		roomID:  roomID,
		sched:   sched,
		timeout: timeout,
		logger:  logger,
	}
}

// Arm schedules the auto-fold for the given turn, replacing any pending
// job for this room. Returns the deadline window for notifications.
func (t *TurnTimer) Arm(playerID uint64, actionSeq uint32) (*ActionDeadline, error) {
	now := time.Now()
	payload := scheduler.Payload{
		RoomID:    t.roomID,
		PlayerID:  playerID,
		ActionSeq: actionSeq,
		StartedAt: now,
	}
	err := t.sched.Schedule(t.roomID, t.timeout, payload)
	if err != nil {
		return nil, err
	}
	t.state = timerArmed
	t.armed = payload
	t.logger.Debug().
		Uint64("playerID", playerID).
		Uint32("actionSeq", actionSeq).
		Msg("Turn timer armed")
	return &ActionDeadline{StartedAt: now, ExpiresAt: now.Add(t.timeout)}, nil
}

// Cancel makes a best-effort attempt to remove the pending job. A
// missing job means it already fired or was replaced; not an error.
// Idle timers skip the scheduler call entirely.
func (t *TurnTimer) Cancel() {
	if t.state == timerIdle {
		return
	}
	t.state = timerIdle
	err := t.sched.Cancel(t.roomID)
	if err != nil && err != scheduler.ErrNoPendingJob {
		t.logger.Warn().Err(err).Msg("Unable to cancel turn timer")
	}
}

// ValidateFire checks a fired callback against the current state. A fire
// for an already-advanced turn or a finished hand is stale.
func (t *TurnTimer) ValidateFire(h *HandState, payload scheduler.Payload) error {
	if h.HandOver {
		return newHandError(StaleTimer, "room %s hand is over", t.roomID)
	}
	if h.ActingPlayerID != payload.PlayerID {
		return newHandError(StaleTimer, "timer fired for player %d but player %d is acting", payload.PlayerID, h.ActingPlayerID)
	}
	if h.ActionSeq != payload.ActionSeq {
		return newHandError(StaleTimer, "timer fired for turn %d but table is at turn %d", payload.ActionSeq, h.ActionSeq)
	}
	t.state = timerIdle
	return nil
}
