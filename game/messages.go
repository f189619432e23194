package game

import (
	"voyager.com/holdem/poker"
)

// MessageReceiver receives outbound notifications. Implementations
// publish them to the transport; the engine never talks to the wire
// directly.
type MessageReceiver interface {
	HandStarted(snapshot *TableSnapshot)
	StateUpdated(snapshot *TableSnapshot, lastAction *LastAction)
	HandEnded(snapshot *TableSnapshot, pots []*Pot)
}

// PlayerSnapshot is one player's public view within a snapshot. Hole
// cards are present only at showdown or when the player chose to reveal.
type PlayerSnapshot struct {
	UserID             uint64          `json:"userId"`
	SeatNo             int             `json:"seatNo"`
	Coins              int64           `json:"coins"`
	HoleCards          []string        `json:"holeCards,omitempty"`
	StreetContribution int64           `json:"streetContribution"`
	Folded             bool            `json:"isFolded"`
	AllIn              bool            `json:"isAllIn"`
	Hand               *poker.HandRank `json:"hand,omitempty"`
	BestCards          []string        `json:"bestCards,omitempty"`
	ActionDeadline     *ActionDeadline `json:"actionDeadline,omitempty"`
}

// NextAction tells the acting player what moves are legal right now.
type NextAction struct {
	PlayerID   uint64          `json:"playerId"`
	SeatNo     int             `json:"seatNo"`
	CanCheck   bool            `json:"canCheck"`
	CallAmount int64           `json:"callAmount"`
	MinRaiseTo int64           `json:"minRaiseTo"`
	MaxRaiseTo int64           `json:"maxRaiseTo"`
	Deadline   *ActionDeadline `json:"deadline,omitempty"`
}

// TableSnapshot is the redacted table view sent in notifications.
type TableSnapshot struct {
	RoomID         string           `json:"roomId"`
	HandNum        uint32           `json:"handNum"`
	ButtonSeat     int              `json:"buttonSeat"`
	CurrentStreet  string           `json:"currentStreet"`
	CommunityCards []string         `json:"communityCards"`
	PotAmount      int64            `json:"potAmount"`
	TotalPot       int64            `json:"totalPot"`
	BigBlind       int64            `json:"bigBlind"`
	ActingPlayerID uint64           `json:"actingPlayerId"`
	HandOver       bool             `json:"isHandOver"`
	Players        []PlayerSnapshot `json:"players"`
	Pots           []*Pot           `json:"potInfo,omitempty"`
	NextAction     *NextAction      `json:"nextAction,omitempty"`
}

// Snapshot builds the notification view of the table. Hole cards are
// redacted except for players whose hand reached showdown or who chose
// to reveal after the hand.
func (h *HandState) Snapshot() *TableSnapshot {
	snapshot := &TableSnapshot{
		RoomID:         h.RoomID,
		HandNum:        h.HandNum,
		ButtonSeat:     h.ButtonSeat,
		CurrentStreet:  h.CurrentStreet.String(),
		CommunityCards: cardsToStrings(h.CommunityCards),
		PotAmount:      h.PotAmount,
		BigBlind:       h.BigBlind,
		ActingPlayerID: h.ActingPlayerID,
		HandOver:       h.HandOver,
		Pots:           h.Pots,
	}

	totalPot := h.PotAmount
	atShowdown := h.CurrentStreet == StreetShowdown
	for _, p := range h.Players {
		totalPot += p.StreetContribution
		ps := PlayerSnapshot{
			UserID:             p.UserID,
			SeatNo:             p.SeatNo,
			Coins:              p.Coins,
			StreetContribution: p.StreetContribution,
			Folded:             p.Folded,
			AllIn:              p.AllIn,
			ActionDeadline:     p.ActionDeadline,
		}
		if (atShowdown && !p.Folded) || (h.HandOver && p.RevealCards) {
			ps.HoleCards = cardsToStrings(p.HoleCards)
			ps.Hand = p.Hand
			ps.BestCards = cardsToStrings(p.BestCards)
		}
		snapshot.Players = append(snapshot.Players, ps)
	}
	for _, pot := range h.Pots {
		if !pot.Resolved {
			totalPot += pot.Amount
		}
	}
	snapshot.TotalPot = totalPot

	if acting := h.ActingPlayer(); acting != nil && !h.HandOver {
		snapshot.NextAction = h.nextActionFor(acting)
	}
	return snapshot
}

func (h *HandState) nextActionFor(p *Player) *NextAction {
	owed := h.LastMaxBet - p.StreetContribution
	if owed < 0 {
		owed = 0
	}
	callAmount := owed
	if callAmount > p.Coins {
		callAmount = p.Coins
	}
	minRaiseTo := h.LastMaxBet + h.MinRaiseDelta
	maxRaiseTo := p.StreetContribution + p.Coins
	if minRaiseTo > maxRaiseTo {
		// the player can only get it in for less
		minRaiseTo = maxRaiseTo
	}
	return &NextAction{
		PlayerID:   p.UserID,
		SeatNo:     p.SeatNo,
		CanCheck:   owed == 0,
		CallAmount: callAmount,
		MinRaiseTo: minRaiseTo,
		MaxRaiseTo: maxRaiseTo,
		Deadline:   p.ActionDeadline,
	}
}
