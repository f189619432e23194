package poker

import (
	"fmt"
	"strings"
)

// Card is packed into an int32: rank index (0-12) in bits 8-11,
// suit bit (1/2/4/8) in bits 12-15.
type Card int32

var strRanks = "23456789TJQKA"

var (
	charRankToIntRank = map[uint8]int32{}
	charSuitToIntSuit = map[uint8]int32{
		's': 1, // spades
		'h': 2, // hearts
		'd': 4, // diamonds
		'c': 8, // clubs
	}
	intSuitToCharSuit = "xshxdxxxc"
)

var prettySuits = map[int32]string{
	1: "♠", // spades
	2: "❤", // hearts
	4: "♦", // diamonds
	8: "♣", // clubs
}

func init() {
	for i := range strRanks {
		charRankToIntRank[strRanks[i]] = int32(i)
	}
}

// NewCard parses a two character card string, e.g. "As", "Td", "2c".
func NewCard(s string) Card {
	rankInt := charRankToIntRank[s[0]]
	suitInt := charSuitToIntSuit[s[1]]
	return Card(rankInt<<8 | suitInt<<12)
}

func NewCards(s ...string) []Card {
	cards := make([]Card, len(s))
	for i, c := range s {
		cards[i] = NewCard(c)
	}
	return cards
}

func (c *Card) MarshalJSON() ([]byte, error) {
	return []byte("\"" + c.String() + "\""), nil
}

func (c *Card) UnmarshalJSON(b []byte) error {
	if len(b) != 4 || b[0] != '"' || b[3] != '"' {
		return fmt.Errorf("invalid card %q", string(b))
	}
	rankInt, ok := charRankToIntRank[b[1]]
	if !ok {
		return fmt.Errorf("invalid card rank %q", string(b[1]))
	}
	suitInt, ok := charSuitToIntSuit[b[2]]
	if !ok {
		return fmt.Errorf("invalid card suit %q", string(b[2]))
	}
	*c = Card(rankInt<<8 | suitInt<<12)
	return nil
}

func (c Card) String() string {
	return string(strRanks[c.Rank()]) + string(intSuitToCharSuit[c.Suit()])
}

// Rank returns the rank index 0 (deuce) through 12 (ace).
func (c Card) Rank() int32 {
	return (int32(c) >> 8) & 0xF
}

// RankValue returns the poker rank 2 through 14 (ace high).
func (c Card) RankValue() int32 {
	return c.Rank() + 2
}

func (c Card) Suit() int32 {
	return (int32(c) >> 12) & 0xF
}

func (c Card) Pretty() string {
	return string(strRanks[c.Rank()]) + prettySuits[c.Suit()]
}

func CardsToString(cards []Card) string {
	var b strings.Builder
	b.Grow(32)
	fmt.Fprintf(&b, "[")
	for _, c := range cards {
		fmt.Fprintf(&b, " %s ", c.Pretty())
	}
	fmt.Fprintf(&b, "]")
	return b.String()
}
