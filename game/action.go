package game

import "fmt"

// ActionType is a closed set of player actions. Illegal action names are
// unrepresentable; amounts are validated by the betting engine.
type ActionType int32

const (
	ActionFold ActionType = iota + 1
	ActionCheck
	ActionCall
	ActionRaise
)

var actionTypeToString = map[ActionType]string{
	ActionFold:  "FOLD",
	ActionCheck: "CHECK",
	ActionCall:  "CALL",
	ActionRaise: "RAISE",
}

var stringToActionType = map[string]ActionType{
	"FOLD":  ActionFold,
	"CHECK": ActionCheck,
	"CALL":  ActionCall,
	"RAISE": ActionRaise,
}

func (a ActionType) String() string {
	return actionTypeToString[a]
}

// ParseActionType maps a wire action name to an ActionType.
func ParseActionType(s string) (ActionType, error) {
	t, ok := stringToActionType[s]
	if !ok {
		return 0, fmt.Errorf("unknown action %q", s)
	}
	return t, nil
}

// Action is one player move. Amount is the target total street
// contribution for RAISE and is ignored for the other actions
// (the engine fixes the call amount itself).
type Action struct {
	Type   ActionType
	Amount int64
}

func Fold() Action {
	return Action{Type: ActionFold}
}

func Check() Action {
	return Action{Type: ActionCheck}
}

func Call() Action {
	return Action{Type: ActionCall}
}

func Raise(amount int64) Action {
	return Action{Type: ActionRaise, Amount: amount}
}

// LastAction describes the most recently applied action for notifications.
type LastAction struct {
	PlayerID uint64     `json:"playerId"`
	SeatNo   int        `json:"seatNo"`
	Action   ActionType `json:"action"`
	Amount   int64      `json:"amount"`
	TimedOut bool       `json:"timedOut"`
}
