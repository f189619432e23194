package game

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine errors so callers can react without
// string matching.
type ErrorKind int32

const (
	// WrongTurn is returned when the actor is not the current acting player.
	WrongTurn ErrorKind = iota + 1
	// IllegalAmount is returned when a check/call/raise violates betting rules.
	IllegalAmount
	// HandAlreadyOver is returned for actions arriving after the hand ended.
	HandAlreadyOver
	// StaleTimer marks a timer callback whose turn context no longer matches.
	StaleTimer
	// StateUnavailable is returned when the store has no state for the room.
	StateUnavailable
	// ConcurrencyViolation marks interleaved mutations observed for one room.
	ConcurrencyViolation
)

var errorKindToString = map[ErrorKind]string{
	WrongTurn:            "wrong turn",
	IllegalAmount:        "illegal amount",
	HandAlreadyOver:      "hand already over",
	StaleTimer:           "stale timer",
	StateUnavailable:     "state unavailable",
	ConcurrencyViolation: "concurrency violation",
}

func (k ErrorKind) String() string {
	return errorKindToString[k]
}

// HandError is the error type for all betting-logic rejections.
type HandError struct {
	Kind ErrorKind
	Msg  string
}

func (e *HandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newHandError(kind ErrorKind, format string, args ...interface{}) *HandError {
	return &HandError{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// KindOf returns the ErrorKind of err, or 0 if err is not a HandError.
func KindOf(err error) ErrorKind {
	var handErr *HandError
	if errors.As(err, &handErr) {
		return handErr.Kind
	}
	return 0
}
