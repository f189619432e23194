package game

import (
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
	"voyager.com/holdem/poker"
)

// HandScript describes a fully scripted table: seeded players, stacked
// decks, the action sequence of each hand and the expected outcome.
// Scripts drive the engine in tests the way bot drivers would.
type HandScript struct {
	Title   string         `yaml:"title"`
	Config  GameConfig     `yaml:"config"`
	Players []ScriptSeat   `yaml:"players"`
	Hands   []ScriptedHand `yaml:"hands"`
}

type ScriptSeat struct {
	ID    uint64 `yaml:"id"`
	Seat  int    `yaml:"seat"`
	BuyIn int64  `yaml:"buy-in"`
}

type ScriptedHand struct {
	Deck    ScriptDeck     `yaml:"deck"`
	Actions []ScriptAction `yaml:"actions"`
	Expect  ScriptExpect   `yaml:"expect"`
}

type ScriptDeck struct {
	// SeatCards maps seat number to the two hole cards dealt to it.
	SeatCards map[int][]string `yaml:"seat-cards"`
	Board     []string         `yaml:"board"`
}

type ScriptAction struct {
	Player uint64 `yaml:"player"`
	Action string `yaml:"action"`
	Amount int64  `yaml:"amount"`
	// Reject names the expected rejection kind for deliberately illegal
	// actions ("wrong turn", "illegal amount", ...).
	Reject string `yaml:"reject"`
}

type ScriptExpect struct {
	HandOver bool             `yaml:"hand-over"`
	Pots     []ScriptPot      `yaml:"pots"`
	Stacks   map[uint64]int64 `yaml:"stacks"`
}

type ScriptPot struct {
	Name    string   `yaml:"name"`
	Amount  int64    `yaml:"amount"`
	Winners []uint64 `yaml:"winners"`
	IsDraw  bool     `yaml:"is-draw"`
}

// LoadHandScript parses a yaml script file.
func LoadHandScript(fileName string) (*HandScript, error) {
	data, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read script %s", fileName)
	}
	var script HandScript
	err = yaml.Unmarshal(data, &script)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse script %s", fileName)
	}
	return &script, nil
}

// Run plays the whole script against a fresh table and returns the final
// state. Any divergence from the script's expectations is an error.
func (s *HandScript) Run() (*HandState, error) {
	players := make([]*Player, 0, len(s.Players))
	for _, seat := range s.Players {
		players = append(players, &Player{
			UserID: seat.ID,
			SeatNo: seat.Seat,
			Coins:  seat.BuyIn,
		})
	}
	h, err := NewHandState("script", s.Config, players)
	if err != nil {
		return nil, err
	}

	for handIdx, hand := range s.Hands {
		h.UseDeckForTesting(s.stackDeck(h, hand.Deck))
		err = h.StartHand()
		if err != nil {
			return nil, errors.Wrapf(err, "hand %d", handIdx+1)
		}
		startingTotal := h.TotalChips()

		for actionIdx, sa := range hand.Actions {
			actionType, err := ParseActionType(sa.Action)
			if err != nil {
				return nil, errors.Wrapf(err, "hand %d action %d", handIdx+1, actionIdx+1)
			}
			actionErr := h.ActionReceived(sa.Player, Action{Type: actionType, Amount: sa.Amount}, false)
			if sa.Reject != "" {
				if actionErr == nil {
					return nil, fmt.Errorf("hand %d action %d: expected rejection %q, action was accepted", handIdx+1, actionIdx+1, sa.Reject)
				}
				if KindOf(actionErr).String() != sa.Reject {
					return nil, fmt.Errorf("hand %d action %d: expected rejection %q, got %q", handIdx+1, actionIdx+1, sa.Reject, KindOf(actionErr))
				}
				continue
			}
			if actionErr != nil {
				return nil, errors.Wrapf(actionErr, "hand %d action %d", handIdx+1, actionIdx+1)
			}
			if total := h.TotalChips(); total != startingTotal {
				return nil, fmt.Errorf("hand %d action %d: chip conservation broken: %d != %d", handIdx+1, actionIdx+1, total, startingTotal)
			}
		}

		err = s.checkExpectations(h, handIdx, hand.Expect)
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

// stackDeck lays out the deck so the scripted cards fall where the
// dealing order puts them: two cards per funded seat in seat order, then
// the board.
func (s *HandScript) stackDeck(h *HandState, deck ScriptDeck) []poker.Card {
	used := map[string]bool{}
	var cards []poker.Card
	take := func(name string) {
		used[name] = true
		cards = append(cards, poker.NewCard(name))
	}

	for _, p := range h.Players {
		if p.Coins <= 0 {
			continue
		}
		for _, name := range deck.SeatCards[p.SeatNo] {
			take(name)
		}
	}
	for _, name := range deck.Board {
		take(name)
	}

	// pad with the rest of the deck so undealt cards stay a full set
	for _, rank := range "23456789TJQKA" {
		for _, suit := range "shdc" {
			name := string(rank) + string(suit)
			if !used[name] {
				cards = append(cards, poker.NewCard(name))
			}
		}
	}
	return cards
}

func (s *HandScript) checkExpectations(h *HandState, handIdx int, expect ScriptExpect) error {
	if h.HandOver != expect.HandOver {
		return fmt.Errorf("hand %d: hand-over is %v, expected %v", handIdx+1, h.HandOver, expect.HandOver)
	}
	if len(expect.Pots) > 0 {
		if len(h.Pots) != len(expect.Pots) {
			return fmt.Errorf("hand %d: got %d pots, expected %d", handIdx+1, len(h.Pots), len(expect.Pots))
		}
		for i, want := range expect.Pots {
			got := h.Pots[i]
			if got.Name != want.Name || got.Amount != want.Amount {
				return fmt.Errorf("hand %d pot %d: got %s/%d, expected %s/%d", handIdx+1, i, got.Name, got.Amount, want.Name, want.Amount)
			}
			if want.IsDraw != got.IsDraw {
				return fmt.Errorf("hand %d pot %s: is-draw is %v, expected %v", handIdx+1, got.Name, got.IsDraw, want.IsDraw)
			}
			if len(want.Winners) > 0 {
				if len(got.WinnerIDs) != len(want.Winners) {
					return fmt.Errorf("hand %d pot %s: winners %v, expected %v", handIdx+1, got.Name, got.WinnerIDs, want.Winners)
				}
				wanted := map[uint64]bool{}
				for _, w := range want.Winners {
					wanted[w] = true
				}
				for _, w := range got.WinnerIDs {
					if !wanted[w] {
						return fmt.Errorf("hand %d pot %s: winners %v, expected %v", handIdx+1, got.Name, got.WinnerIDs, want.Winners)
					}
				}
			}
		}
	}
	for playerID, wantStack := range expect.Stacks {
		p := h.playerByID(playerID)
		if p == nil {
			return fmt.Errorf("hand %d: player %d not at table", handIdx+1, playerID)
		}
		if p.Coins != wantStack {
			return fmt.Errorf("hand %d: player %d stack is %d, expected %d", handIdx+1, playerID, p.Coins, wantStack)
		}
	}
	return nil
}
