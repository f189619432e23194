// Package scheduler provides delayed callback scheduling for the
// auto-fold turn timer. Scheduling is keyed: re-scheduling with the same
// key replaces any pending job, and only one job per room is ever armed.
package scheduler

import (
	"time"

	"github.com/pkg/errors"
)

// ErrNoPendingJob is returned by Cancel when no job exists for the key.
// Callers treat it as "already fired or irrelevant", never as a failure.
var ErrNoPendingJob = errors.New("no pending job for key")

// Payload identifies the turn a scheduled callback belongs to. The
// session uses it to detect stale fires.
type Payload struct {
	RoomID    string    `json:"roomId"`
	PlayerID  uint64    `json:"playerId"`
	ActionSeq uint32    `json:"actionSeq"`
	StartedAt time.Time `json:"startedAt"`
}

// Scheduler is the external job-scheduling collaborator. Delivery is
// at-least-once; cancellation is advisory only.
type Scheduler interface {
	Schedule(key string, delay time.Duration, payload Payload) error
	Cancel(key string) error
}
