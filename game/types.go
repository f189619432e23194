package game

import (
	"time"

	"voyager.com/holdem/poker"
)

// Street is one betting phase of a hand.
type Street int32

const (
	StreetPreflop Street = iota + 1
	StreetFlop
	StreetTurn
	StreetRiver
	StreetShowdown
)

var streetToString = map[Street]string{
	StreetPreflop:  "PREFLOP",
	StreetFlop:     "FLOP",
	StreetTurn:     "TURN",
	StreetRiver:    "RIVER",
	StreetShowdown: "SHOWDOWN",
}

func (s Street) String() string {
	return streetToString[s]
}

// OddChipPolicy decides who receives the remainder chips when a pot
// does not split evenly among tied winners.
type OddChipPolicy int32

const (
	// OddChipFirstActive hands remainder chips one each to tied winners in
	// seat order starting left of the dealer button.
	OddChipFirstActive OddChipPolicy = iota + 1
	// OddChipLowestSeat hands remainder chips to tied winners in plain
	// seat index order.
	OddChipLowestSeat
)

// GameConfig holds the per-table configuration.
type GameConfig struct {
	BigBlind        int64         `yaml:"bigBlind" json:"bigBlind"`
	ActionTimeoutMs int           `yaml:"actionTimeoutMs" json:"actionTimeoutMs"`
	SeatCount       int           `yaml:"seatCount" json:"seatCount"`
	MinPlayers      int           `yaml:"minPlayers" json:"minPlayers"`
	OddChipPolicy   OddChipPolicy `yaml:"oddChipPolicy" json:"oddChipPolicy"`
}

// DefaultGameConfig fills in the values used when a field is left zero.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		BigBlind:        2,
		ActionTimeoutMs: 25000,
		SeatCount:       9,
		MinPlayers:      2,
		OddChipPolicy:   OddChipFirstActive,
	}
}

func (c GameConfig) withDefaults() GameConfig {
	def := DefaultGameConfig()
	if c.BigBlind == 0 {
		c.BigBlind = def.BigBlind
	}
	if c.ActionTimeoutMs == 0 {
		c.ActionTimeoutMs = def.ActionTimeoutMs
	}
	if c.SeatCount == 0 {
		c.SeatCount = def.SeatCount
	}
	if c.MinPlayers == 0 {
		c.MinPlayers = def.MinPlayers
	}
	if c.OddChipPolicy == 0 {
		c.OddChipPolicy = def.OddChipPolicy
	}
	return c
}

// PendingRaise records the last raise a player announced, kept for
// notifications.
type PendingRaise struct {
	IsRaise bool  `json:"isRaise"`
	Amount  int64 `json:"amount"`
}

// ActionDeadline is the window the acting player has before the
// auto-fold fires.
type ActionDeadline struct {
	StartedAt time.Time `json:"startedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Player is one seated player within a hand.
type Player struct {
	UserID    uint64       `json:"userId"`
	SeatNo    int          `json:"seatNo"`
	Coins     int64        `json:"coins"`
	HoleCards []poker.Card `json:"holeCards"`

	StreetContribution int64 `json:"streetContribution"`
	HandContribution   int64 `json:"handContribution"`

	Folded bool `json:"isFolded"`
	AllIn  bool `json:"isAllIn"`

	// per-street acted flags
	Checked bool `json:"checked"`
	Called  bool `json:"called"`
	Raised  bool `json:"raised"`

	PendingRaise   PendingRaise    `json:"pendingRaise"`
	Hand           *poker.HandRank `json:"hand,omitempty"`
	BestCards      []poker.Card    `json:"bestCards,omitempty"`
	ActionDeadline *ActionDeadline `json:"actionDeadline,omitempty"`
	RevealCards    bool            `json:"revealCards"`
}

// CanAct reports whether the player may still take a betting action.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// HasActedThisStreet reports whether the player took a voluntary action
// during the current street. Posting a blind does not count, which is
// what gives the big blind its preflop option.
func (p *Player) HasActedThisStreet() bool {
	return p.Checked || p.Called || p.Raised
}

func (p *Player) clearActedFlags() {
	p.Checked = false
	p.Called = false
	p.Raised = false
}

func (p *Player) resetForStreet() {
	p.StreetContribution = 0
	p.clearActedFlags()
	p.PendingRaise = PendingRaise{}
}

func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.StreetContribution = 0
	p.HandContribution = 0
	p.Folded = false
	p.AllIn = false
	p.clearActedFlags()
	p.PendingRaise = PendingRaise{}
	p.Hand = nil
	p.BestCards = nil
	p.ActionDeadline = nil
	p.RevealCards = false
}

// Pot is one named pot. Entries are append-only within a hand and
// immutable once resolved.
type Pot struct {
	Name        string          `json:"name"`
	Amount      int64           `json:"amount"`
	Eligible    []uint64        `json:"eligible"`
	WinnerIDs   []uint64        `json:"winners,omitempty"`
	IsDraw      bool            `json:"isDraw"`
	Resolved    bool            `json:"resolved"`
	WinningHand *poker.HandRank `json:"winningHand,omitempty"`
}
