package game

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"voyager.com/holdem/poker"
)

var handStateLogger = log.With().Str("logger_name", "game::handstate").Logger()

// HandState is the full betting state of one table for one hand lineage.
// It is a plain state machine; all synchronization happens in the Session
// that owns it.
type HandState struct {
	RoomID         string
	HandNum        uint32
	Players        []*Player
	ButtonSeat     int
	CommunityCards []poker.Card
	Deck           *poker.Deck
	CurrentStreet  Street
	PotAmount      int64
	LastMaxBet     int64
	MinRaiseDelta  int64
	BigBlind       int64
	OddChipPolicy  OddChipPolicy
	ActingPlayerID uint64
	HandOver       bool
	Pots           []*Pot

	// ActionSeq increments on every state transition that changes whose
	// turn it is. Timer payloads carry it for the staleness check.
	ActionSeq uint32

	// StartingTotal is the chip total introduced into the current hand,
	// used to verify conservation.
	StartingTotal int64

	LastActionApplied *LastAction

	// deckForTesting, when set, replaces the shuffled deck for the next
	// hand. Used by scripted-hand tests.
	deckForTesting *poker.Deck
}

// UseDeckForTesting stacks the deck for the next StartHand.
func (h *HandState) UseDeckForTesting(cards []poker.Card) {
	h.deckForTesting = poker.NewDeckFromCards(cards)
}

// NewHandState seats the given players at a new table. Players are kept
// in seat order; seat numbers are 1-based like the real table and must
// be unique.
func NewHandState(roomID string, config GameConfig, players []*Player) (*HandState, error) {
	config = config.withDefaults()
	if len(players) < config.MinPlayers {
		return nil, fmt.Errorf("table %s needs at least %d players, got %d", roomID, config.MinPlayers, len(players))
	}
	if len(players) > config.SeatCount {
		return nil, fmt.Errorf("table %s has %d seats, got %d players", roomID, config.SeatCount, len(players))
	}
	seen := map[int]bool{}
	for _, p := range players {
		if p.SeatNo < 1 || p.SeatNo > config.SeatCount {
			return nil, fmt.Errorf("invalid seat %d for player %d", p.SeatNo, p.UserID)
		}
		if seen[p.SeatNo] {
			return nil, fmt.Errorf("seat %d is taken twice", p.SeatNo)
		}
		seen[p.SeatNo] = true
	}
	sorted := make([]*Player, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SeatNo < sorted[j].SeatNo })

	return &HandState{
		RoomID:        roomID,
		Players:       sorted,
		BigBlind:      config.BigBlind,
		OddChipPolicy: config.OddChipPolicy,
	}, nil
}

// StartHand shuffles a fresh deck, rotates the button, deals hole cards,
// posts the blinds and hands the turn to the first player after the big
// blind.
func (h *HandState) StartHand() error {
	if h.HandNum > 0 && !h.HandOver {
		return fmt.Errorf("table %s hand %d is still in progress", h.RoomID, h.HandNum)
	}
	dealtIn := 0
	for _, p := range h.Players {
		p.resetForHand()
		if p.Coins > 0 {
			dealtIn++
		} else {
			// busted stack sits this hand out
			p.Folded = true
		}
	}
	if dealtIn < 2 {
		return fmt.Errorf("table %s cannot start a hand with %d funded players", h.RoomID, dealtIn)
	}

	h.HandNum++
	h.CurrentStreet = StreetPreflop
	h.CommunityCards = nil
	h.Pots = nil
	h.PotAmount = 0
	h.HandOver = false
	h.LastActionApplied = nil
	h.ActionSeq++

	h.StartingTotal = 0
	for _, p := range h.Players {
		h.StartingTotal += p.Coins
	}

	if h.deckForTesting != nil {
		h.Deck = h.deckForTesting
		h.deckForTesting = nil
	} else {
		h.Deck = poker.NewDeck()
	}
	for _, p := range h.Players {
		if !p.Folded {
			p.HoleCards = h.Deck.Draw(2)
		}
	}

	button := h.nextSeat(h.ButtonSeat, func(p *Player) bool { return !p.Folded })
	h.ButtonSeat = button.SeatNo

	smallBlind := h.nextSeat(h.ButtonSeat, func(p *Player) bool { return !p.Folded })
	bigBlind := h.nextSeat(smallBlind.SeatNo, func(p *Player) bool { return !p.Folded })
	h.postBlind(smallBlind, h.BigBlind/2)
	h.postBlind(bigBlind, h.BigBlind)
	h.LastMaxBet = h.BigBlind
	h.MinRaiseDelta = h.BigBlind

	handStateLogger.Info().
		Str("roomID", h.RoomID).
		Uint32("handNo", h.HandNum).
		Int("button", h.ButtonSeat).
		Int("sb", smallBlind.SeatNo).
		Int("bb", bigBlind.SeatNo).
		Msg("Hand started")

	first := h.nextSeat(bigBlind.SeatNo, (*Player).CanAct)
	if first == nil {
		// blinds put everyone all-in
		h.finishStreet()
		return nil
	}
	h.ActingPlayerID = first.UserID
	return nil
}

func (h *HandState) postBlind(p *Player, amount int64) {
	if amount > p.Coins {
		amount = p.Coins
	}
	h.applyContribution(p, amount)
}

func (h *HandState) applyContribution(p *Player, delta int64) {
	p.Coins -= delta
	p.StreetContribution += delta
	p.HandContribution += delta
	if p.Coins == 0 {
		p.AllIn = true
	}
}

// ActionReceived validates and applies one player action. The state is
// unchanged when an error is returned.
func (h *HandState) ActionReceived(playerID uint64, action Action, timedOut bool) error {
	if h.HandOver {
		return newHandError(HandAlreadyOver, "room %s hand %d is over", h.RoomID, h.HandNum)
	}
	if playerID != h.ActingPlayerID {
		return newHandError(WrongTurn, "player %d acted out of turn (acting: %d)", playerID, h.ActingPlayerID)
	}
	p := h.playerByID(playerID)
	if p == nil || !p.CanAct() {
		return newHandError(WrongTurn, "player %d cannot act", playerID)
	}

	var amount int64
	switch action.Type {
	case ActionFold:
		p.Folded = true
		p.clearActedFlags()
		p.PendingRaise = PendingRaise{}

	case ActionCheck:
		if p.StreetContribution != h.LastMaxBet {
			return newHandError(IllegalAmount, "player %d cannot check facing a bet of %d", playerID, h.LastMaxBet)
		}
		p.Checked = true

	case ActionCall:
		owed := h.LastMaxBet - p.StreetContribution
		if owed <= 0 {
			return newHandError(IllegalAmount, "player %d has nothing to call", playerID)
		}
		delta := owed
		if delta > p.Coins {
			delta = p.Coins
		}
		h.applyContribution(p, delta)
		p.Called = true
		amount = p.StreetContribution

	case ActionRaise:
		target := action.Amount
		if target <= h.LastMaxBet {
			return newHandError(IllegalAmount, "raise to %d is not above the current bet %d", target, h.LastMaxBet)
		}
		delta := target - p.StreetContribution
		if delta <= 0 || delta > p.Coins {
			return newHandError(IllegalAmount, "player %d cannot put in %d chips", playerID, delta)
		}
		fullRaise := target-h.LastMaxBet >= h.MinRaiseDelta
		if !fullRaise && delta != p.Coins {
			return newHandError(IllegalAmount, "raise to %d is below the minimum raise to %d", target, h.LastMaxBet+h.MinRaiseDelta)
		}
		h.applyContribution(p, delta)
		p.Raised = true
		p.PendingRaise = PendingRaise{IsRaise: true, Amount: target}
		if fullRaise {
			// a full raise reopens the action
			h.MinRaiseDelta = target - h.LastMaxBet
			for _, other := range h.Players {
				if other != p && other.CanAct() {
					other.clearActedFlags()
				}
			}
		}
		h.LastMaxBet = target
		amount = target

	default:
		return newHandError(IllegalAmount, "unknown action %d", action.Type)
	}

	p.ActionDeadline = nil
	h.ActionSeq++
	h.LastActionApplied = &LastAction{
		PlayerID: p.UserID,
		SeatNo:   p.SeatNo,
		Action:   action.Type,
		Amount:   amount,
		TimedOut: timedOut,
	}

	handStateLogger.Debug().
		Str("roomID", h.RoomID).
		Uint32("handNo", h.HandNum).
		Int("seatNo", p.SeatNo).
		Str("action", action.Type.String()).
		Int64("amount", amount).
		Msg("Action applied")

	h.afterAction(p)
	return nil
}

func (h *HandState) afterAction(p *Player) {
	if h.nonFoldedCount() == 1 {
		h.foldOutWin()
		return
	}
	if h.roundComplete() {
		h.finishStreet()
		return
	}
	next := h.nextSeat(p.SeatNo, (*Player).CanAct)
	if next == nil {
		h.finishStreet()
		return
	}
	h.ActingPlayerID = next.UserID
}

// roundComplete reports whether the current betting round is settled:
// every non-folded player is either all-in, or has matched the max bet
// and acted at least once this street.
func (h *HandState) roundComplete() bool {
	for _, p := range h.Players {
		if p.Folded || p.AllIn {
			continue
		}
		if !p.HasActedThisStreet() {
			return false
		}
		if p.StreetContribution != h.LastMaxBet {
			return false
		}
	}
	return true
}

// finishStreet sweeps the street bets into the pot and either advances
// to the next street, runs out the board when no betting is possible, or
// goes to showdown.
func (h *HandState) finishStreet() {
	h.sweepStreetBets()

	if h.CurrentStreet >= StreetRiver {
		h.showdown()
		return
	}
	if h.actorCount() <= 1 {
		// all but at most one player are all-in; deal the remaining
		// streets back-to-back with no further betting
		h.runOutBoard()
		h.showdown()
		return
	}
	h.setupNextStreet()
}

func (h *HandState) sweepStreetBets() {
	for _, p := range h.Players {
		h.PotAmount += p.StreetContribution
		p.StreetContribution = 0
	}
}

func (h *HandState) setupNextStreet() {
	h.CurrentStreet++
	h.dealCommunity()
	for _, p := range h.Players {
		p.resetForStreet()
	}
	h.LastMaxBet = 0
	h.MinRaiseDelta = h.BigBlind
	h.ActionSeq++

	first := h.nextSeat(h.ButtonSeat, (*Player).CanAct)
	if first == nil {
		h.finishStreet()
		return
	}
	h.ActingPlayerID = first.UserID

	handStateLogger.Debug().
		Str("roomID", h.RoomID).
		Uint32("handNo", h.HandNum).
		Str("street", h.CurrentStreet.String()).
		Str("board", poker.CardsToString(h.CommunityCards)).
		Msg("Street advanced")
}

func (h *HandState) dealCommunity() {
	switch h.CurrentStreet {
	case StreetFlop:
		h.CommunityCards = append(h.CommunityCards, h.Deck.Draw(3)...)
	case StreetTurn, StreetRiver:
		h.CommunityCards = append(h.CommunityCards, h.Deck.Draw(1)...)
	}
}

func (h *HandState) runOutBoard() {
	for len(h.CommunityCards) < 5 {
		if len(h.CommunityCards) == 0 {
			h.CommunityCards = append(h.CommunityCards, h.Deck.Draw(3)...)
		} else {
			h.CommunityCards = append(h.CommunityCards, h.Deck.Draw(1)...)
		}
	}
}

// foldOutWin ends the hand when a single non-folded player remains. The
// pot is awarded without a showdown and no cards are revealed.
func (h *HandState) foldOutWin() {
	h.sweepStreetBets()
	var winner *Player
	for _, p := range h.Players {
		if !p.Folded {
			winner = p
			break
		}
	}
	pot := &Pot{
		Name:      "main",
		Amount:    h.PotAmount,
		Eligible:  []uint64{winner.UserID},
		WinnerIDs: []uint64{winner.UserID},
		Resolved:  true,
	}
	winner.Coins += pot.Amount
	h.PotAmount = 0
	h.Pots = append(h.Pots, pot)
	h.ActingPlayerID = 0
	h.ActionSeq++
	h.HandOver = true

	handStateLogger.Info().
		Str("roomID", h.RoomID).
		Uint32("handNo", h.HandNum).
		Uint64("playerID", winner.UserID).
		Int64("amount", pot.Amount).
		Msg("Hand won by fold-out")
}

func (h *HandState) showdown() {
	h.CurrentStreet = StreetShowdown
	h.ActingPlayerID = 0
	h.ActionSeq++

	for _, p := range h.Players {
		if p.Folded {
			continue
		}
		cards := make([]poker.Card, 0, 7)
		cards = append(cards, p.HoleCards...)
		cards = append(cards, h.CommunityCards...)
		rank, best := poker.Evaluate(cards)
		p.Hand = &rank
		p.BestCards = best
	}

	h.settlePots()
	h.HandOver = true

	handStateLogger.Info().
		Str("roomID", h.RoomID).
		Uint32("handNo", h.HandNum).
		Int("pots", len(h.Pots)).
		Msg("Showdown complete")
}

// RemovePlayer takes a player out of the table mid-hand, refunding their
// committed chips to their stack before removal. This is the disconnect
// courtesy rule, not a fold.
func (h *HandState) RemovePlayer(playerID uint64) (*Player, error) {
	idx := -1
	for i, p := range h.Players {
		if p.UserID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("player %d is not at table %s", playerID, h.RoomID)
	}
	p := h.Players[idx]

	if !h.HandOver {
		// refund the street bet plus whatever already went into the pot
		h.PotAmount -= p.HandContribution - p.StreetContribution
		p.Coins += p.HandContribution
		p.StreetContribution = 0
		p.HandContribution = 0
	}

	wasActing := h.ActingPlayerID == p.UserID
	h.Players = append(h.Players[:idx], h.Players[idx+1:]...)
	h.StartingTotal -= p.Coins
	h.ActionSeq++

	if h.HandOver {
		return p, nil
	}

	if h.nonFoldedCount() == 1 {
		h.foldOutWin()
		return p, nil
	}
	if h.roundComplete() {
		h.finishStreet()
		return p, nil
	}
	if wasActing {
		next := h.nextSeat(p.SeatNo, (*Player).CanAct)
		if next == nil {
			h.finishStreet()
			return p, nil
		}
		h.ActingPlayerID = next.UserID
	}
	return p, nil
}

// ActingPlayer resolves the acting player by identity. Never hold the
// returned pointer across transitions.
func (h *HandState) ActingPlayer() *Player {
	if h.ActingPlayerID == 0 {
		return nil
	}
	return h.playerByID(h.ActingPlayerID)
}

func (h *HandState) playerByID(playerID uint64) *Player {
	for _, p := range h.Players {
		if p.UserID == playerID {
			return p
		}
	}
	return nil
}

// nextSeat walks the seats clockwise starting after fromSeat and returns
// the first player matching pred, or nil when no player matches.
func (h *HandState) nextSeat(fromSeat int, pred func(*Player) bool) *Player {
	if len(h.Players) == 0 {
		return nil
	}
	start := 0
	for i, p := range h.Players {
		if p.SeatNo > fromSeat {
			start = i
			break
		}
		if i == len(h.Players)-1 {
			start = 0
		}
	}
	for i := 0; i < len(h.Players); i++ {
		p := h.Players[(start+i)%len(h.Players)]
		if pred(p) {
			return p
		}
	}
	return nil
}

func (h *HandState) nonFoldedCount() int {
	count := 0
	for _, p := range h.Players {
		if !p.Folded {
			count++
		}
	}
	return count
}

// actorCount counts players who may still take a betting action.
func (h *HandState) actorCount() int {
	count := 0
	for _, p := range h.Players {
		if p.CanAct() {
			count++
		}
	}
	return count
}

// TotalChips sums every chip visible at the table. It equals
// StartingTotal after every transition while a hand is in progress.
func (h *HandState) TotalChips() int64 {
	total := h.PotAmount
	for _, p := range h.Players {
		total += p.Coins + p.StreetContribution
	}
	for _, pot := range h.Pots {
		if !pot.Resolved {
			total += pot.Amount
		}
	}
	return total
}
