package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var inProcLogger = log.With().Str("logger_name", "scheduler::inproc").Logger()

// InProcess runs delayed callbacks on in-process timers. One timer per
// key; scheduling a key again replaces the pending timer.
type InProcess struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fire   func(Payload)
}

// NewInProcess creates a scheduler delivering fired payloads to the
// given callback. The callback runs on the timer goroutine; receivers
// must hand it off to their own serialization point.
func NewInProcess(fire func(Payload)) *InProcess {
	return &InProcess{
		timers: make(map[string]*time.Timer),
		fire:   fire,
	}
}

func (s *InProcess) Schedule(key string, delay time.Duration, payload Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		inProcLogger.Debug().
			Str("timerKey", key).
			Uint64("playerID", payload.PlayerID).
			Msg("Delayed job fired")
		s.fire(payload)
	})
	return nil
}

func (s *InProcess) Cancel(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[key]
	if !ok {
		return ErrNoPendingJob
	}
	timer.Stop()
	delete(s.timers, key)
	return nil
}

// Stop cancels every pending job. Used at shutdown.
func (s *InProcess) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}
