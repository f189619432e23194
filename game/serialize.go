package game

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"voyager.com/holdem/poker"
)

// SerializedTable is the flat, engine-agnostic shape stored by the Store
// collaborator. It carries no behavior; the live HandState is rebuilt
// from it explicitly.
type SerializedTable struct {
	RoomID         string             `json:"roomId"`
	HandNum        uint32             `json:"handNum"`
	ButtonSeat     int                `json:"buttonSeat"`
	CurrentStreet  int32              `json:"currentStreet"`
	CommunityCards []string           `json:"communityCards"`
	DeckCards      []string           `json:"deckCards"`
	PotAmount      int64              `json:"potAmount"`
	LastMaxBet     int64              `json:"lastMaxBet"`
	MinRaiseDelta  int64              `json:"minRaiseDelta"`
	BigBlind       int64              `json:"bigBlind"`
	OddChipPolicy  int32              `json:"oddChipPolicy"`
	ActingPlayerID uint64             `json:"actingPlayerId"`
	HandOver       bool               `json:"isHandOver"`
	ActionSeq      uint32             `json:"actionSeq"`
	StartingTotal  int64              `json:"startingTotal"`
	Players        []SerializedPlayer `json:"players"`
	Pots           []SerializedPot    `json:"potInfo"`
	LastAction     *LastAction        `json:"lastAction,omitempty"`
}

type SerializedPlayer struct {
	UserID             uint64          `json:"userId"`
	SeatNo             int             `json:"seatNo"`
	Coins              int64           `json:"coins"`
	HoleCards          []string        `json:"holeCards"`
	StreetContribution int64           `json:"streetContribution"`
	HandContribution   int64           `json:"handContribution"`
	Folded             bool            `json:"isFolded"`
	AllIn              bool            `json:"isAllIn"`
	Checked            bool            `json:"checked"`
	Called             bool            `json:"called"`
	Raised             bool            `json:"raised"`
	PendingRaise       PendingRaise    `json:"pendingRaise"`
	Hand               *poker.HandRank `json:"hand,omitempty"`
	BestCards          []string        `json:"bestCards,omitempty"`
	ActionDeadline     *ActionDeadline `json:"actionDeadline,omitempty"`
	RevealCards        bool            `json:"revealCards"`
}

type SerializedPot struct {
	Name        string          `json:"name"`
	Amount      int64           `json:"amount"`
	Eligible    []uint64        `json:"eligible"`
	WinnerIDs   []uint64        `json:"winners,omitempty"`
	IsDraw      bool            `json:"isDraw"`
	Resolved    bool            `json:"resolved"`
	WinningHand *poker.HandRank `json:"winningHand,omitempty"`
}

func cardsToStrings(cards []poker.Card) []string {
	if cards == nil {
		return nil
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func cardsFromStrings(strs []string) []poker.Card {
	if strs == nil {
		return nil
	}
	return poker.NewCards(strs...)
}

// ToSerialized flattens the live state for storage.
func (h *HandState) ToSerialized() *SerializedTable {
	st := &SerializedTable{
		RoomID:         h.RoomID,
		HandNum:        h.HandNum,
		ButtonSeat:     h.ButtonSeat,
		CurrentStreet:  int32(h.CurrentStreet),
		CommunityCards: cardsToStrings(h.CommunityCards),
		PotAmount:      h.PotAmount,
		LastMaxBet:     h.LastMaxBet,
		MinRaiseDelta:  h.MinRaiseDelta,
		BigBlind:       h.BigBlind,
		OddChipPolicy:  int32(h.OddChipPolicy),
		ActingPlayerID: h.ActingPlayerID,
		HandOver:       h.HandOver,
		ActionSeq:      h.ActionSeq,
		StartingTotal:  h.StartingTotal,
		LastAction:     h.LastActionApplied,
	}
	if h.Deck != nil {
		st.DeckCards = cardsToStrings(h.Deck.Cards())
	}
	for _, p := range h.Players {
		st.Players = append(st.Players, SerializedPlayer{
			UserID:             p.UserID,
			SeatNo:             p.SeatNo,
			Coins:              p.Coins,
			HoleCards:          cardsToStrings(p.HoleCards),
			StreetContribution: p.StreetContribution,
			HandContribution:   p.HandContribution,
			Folded:             p.Folded,
			AllIn:              p.AllIn,
			Checked:            p.Checked,
			Called:             p.Called,
			Raised:             p.Raised,
			PendingRaise:       p.PendingRaise,
			Hand:               p.Hand,
			BestCards:          cardsToStrings(p.BestCards),
			ActionDeadline:     p.ActionDeadline,
			RevealCards:        p.RevealCards,
		})
	}
	for _, pot := range h.Pots {
		st.Pots = append(st.Pots, SerializedPot{
			Name:        pot.Name,
			Amount:      pot.Amount,
			Eligible:    pot.Eligible,
			WinnerIDs:   pot.WinnerIDs,
			IsDraw:      pot.IsDraw,
			Resolved:    pot.Resolved,
			WinningHand: pot.WinningHand,
		})
	}
	return st
}

// FromSerialized rebuilds a live HandState from the stored shape.
func FromSerialized(st *SerializedTable) *HandState {
	h := &HandState{
		RoomID:            st.RoomID,
		HandNum:           st.HandNum,
		ButtonSeat:        st.ButtonSeat,
		CurrentStreet:     Street(st.CurrentStreet),
		CommunityCards:    cardsFromStrings(st.CommunityCards),
		Deck:              poker.NewDeckFromCards(cardsFromStrings(st.DeckCards)),
		PotAmount:         st.PotAmount,
		LastMaxBet:        st.LastMaxBet,
		MinRaiseDelta:     st.MinRaiseDelta,
		BigBlind:          st.BigBlind,
		OddChipPolicy:     OddChipPolicy(st.OddChipPolicy),
		ActingPlayerID:    st.ActingPlayerID,
		HandOver:          st.HandOver,
		ActionSeq:         st.ActionSeq,
		StartingTotal:     st.StartingTotal,
		LastActionApplied: st.LastAction,
	}
	for _, sp := range st.Players {
		h.Players = append(h.Players, &Player{
			UserID:             sp.UserID,
			SeatNo:             sp.SeatNo,
			Coins:              sp.Coins,
			HoleCards:          cardsFromStrings(sp.HoleCards),
			StreetContribution: sp.StreetContribution,
			HandContribution:   sp.HandContribution,
			Folded:             sp.Folded,
			AllIn:              sp.AllIn,
			Checked:            sp.Checked,
			Called:             sp.Called,
			Raised:             sp.Raised,
			PendingRaise:       sp.PendingRaise,
			Hand:               sp.Hand,
			BestCards:          cardsFromStrings(sp.BestCards),
			ActionDeadline:     sp.ActionDeadline,
			RevealCards:        sp.RevealCards,
		})
	}
	for _, sp := range st.Pots {
		h.Pots = append(h.Pots, &Pot{
			Name:        sp.Name,
			Amount:      sp.Amount,
			Eligible:    sp.Eligible,
			WinnerIDs:   sp.WinnerIDs,
			IsDraw:      sp.IsDraw,
			Resolved:    sp.Resolved,
			WinningHand: sp.WinningHand,
		})
	}
	return h
}

// Encode marshals the serialized shape to the opaque blob stored by the
// Store collaborator.
func (st *SerializedTable) Encode() ([]byte, error) {
	data, err := jsoniter.Marshal(st)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to encode table state for room %s", st.RoomID)
	}
	return data, nil
}

// DecodeTable unmarshals a stored blob.
func DecodeTable(data []byte) (*SerializedTable, error) {
	var st SerializedTable
	err := jsoniter.Unmarshal(data, &st)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode table state")
	}
	return &st, nil
}
