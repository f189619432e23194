package poker

import (
	"fmt"
	"sort"
)

// HandCategory orders hand types weakest to strongest.
type HandCategory int32

const (
	HighCard HandCategory = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var categoryToString = map[HandCategory]string{
	HighCard:      "High Card",
	Pair:          "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
}

func (c HandCategory) String() string {
	return categoryToString[c]
}

// HandRank is the comparable strength of a five card hand. Ranks use
// poker values 2-14 (ace high); the wheel straight ranks as 5 high.
type HandRank struct {
	Category  HandCategory `json:"category"`
	Primary   int32        `json:"primaryRank"`
	Secondary int32        `json:"secondaryRank"`
	Kickers   []int32      `json:"kickers"`
}

// Compare returns a positive value if h beats o, negative if o beats h,
// and zero on an exact tie.
func (h HandRank) Compare(o HandRank) int {
	if h.Category != o.Category {
		return int(h.Category - o.Category)
	}
	if h.Primary != o.Primary {
		return int(h.Primary - o.Primary)
	}
	if h.Secondary != o.Secondary {
		return int(h.Secondary - o.Secondary)
	}
	for i := 0; i < len(h.Kickers) && i < len(o.Kickers); i++ {
		if h.Kickers[i] != o.Kickers[i] {
			return int(h.Kickers[i] - o.Kickers[i])
		}
	}
	return 0
}

func (h HandRank) String() string {
	return fmt.Sprintf("%s (primary %d, secondary %d, kickers %v)",
		h.Category, h.Primary, h.Secondary, h.Kickers)
}

// fiveOfCombos[n] lists the index combinations for choosing 5 out of n
// cards. Built once; at most C(7,5)=21 entries.
var fiveOfCombos = map[int][][5]int{}

func init() {
	for n := 5; n <= 7; n++ {
		fiveOfCombos[n] = buildCombos(n)
	}
}

func buildCombos(n int) [][5]int {
	var combos [][5]int
	idx := [5]int{0, 1, 2, 3, 4}
	for {
		combos = append(combos, idx)
		// advance to the next combination
		i := 4
		for i >= 0 && idx[i] == n-5+i {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < 5; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return combos
}

// Evaluate finds the best five card hand out of 5 to 7 cards and returns
// its rank along with the winning five cards.
func Evaluate(cards []Card) (HandRank, []Card) {
	if len(cards) < 5 || len(cards) > 7 {
		panic(fmt.Sprintf("evaluate needs 5 to 7 cards, got %d", len(cards)))
	}

	var best HandRank
	var bestCards []Card
	for _, combo := range fiveOfCombos[len(cards)] {
		five := []Card{
			cards[combo[0]], cards[combo[1]], cards[combo[2]],
			cards[combo[3]], cards[combo[4]],
		}
		rank := scoreFive(five)
		if bestCards == nil || rank.Compare(best) > 0 {
			best = rank
			bestCards = five
		}
	}
	return best, bestCards
}

// scoreFive ranks exactly five cards using rank and suit multiplicity.
func scoreFive(five []Card) HandRank {
	rankCount := map[int32]int{}
	suitCount := map[int32]int{}
	for _, c := range five {
		rankCount[c.RankValue()]++
		suitCount[c.Suit()]++
	}

	flush := len(suitCount) == 1
	straightHigh := straightTopCard(rankCount)

	if flush && straightHigh > 0 {
		if straightHigh == 14 {
			return HandRank{Category: RoyalFlush, Primary: 14}
		}
		return HandRank{Category: StraightFlush, Primary: straightHigh}
	}

	// group ranks by multiplicity, highest count first, then highest rank
	type group struct {
		rank  int32
		count int
	}
	groups := make([]group, 0, len(rankCount))
	for rank, count := range rankCount {
		groups = append(groups, group{rank, count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	kickersAfter := func(n int) []int32 {
		kickers := make([]int32, 0, 5)
		for _, g := range groups[n:] {
			kickers = append(kickers, g.rank)
		}
		return kickers
	}

	switch {
	case groups[0].count == 4:
		return HandRank{Category: FourOfAKind, Primary: groups[0].rank, Kickers: kickersAfter(1)}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRank{Category: FullHouse, Primary: groups[0].rank, Secondary: groups[1].rank}
	case flush:
		kickers := kickersAfter(1)
		return HandRank{Category: Flush, Primary: groups[0].rank, Kickers: kickers}
	case straightHigh > 0:
		return HandRank{Category: Straight, Primary: straightHigh}
	case groups[0].count == 3:
		return HandRank{Category: ThreeOfAKind, Primary: groups[0].rank, Kickers: kickersAfter(1)}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandRank{Category: TwoPair, Primary: groups[0].rank, Secondary: groups[1].rank, Kickers: kickersAfter(2)}
	case groups[0].count == 2:
		return HandRank{Category: Pair, Primary: groups[0].rank, Kickers: kickersAfter(1)}
	default:
		return HandRank{Category: HighCard, Primary: groups[0].rank, Kickers: kickersAfter(1)}
	}
}

// straightTopCard returns the top card of a straight formed by the given
// ranks, 0 if there is none. The ace plays low only in the wheel (A-5).
func straightTopCard(rankCount map[int32]int) int32 {
	if len(rankCount) != 5 {
		return 0
	}
	low := int32(15)
	high := int32(0)
	for rank := range rankCount {
		if rank < low {
			low = rank
		}
		if rank > high {
			high = rank
		}
	}
	if high-low == 4 {
		return high
	}
	// wheel: A-2-3-4-5
	if high == 14 {
		_, has2 := rankCount[2]
		_, has3 := rankCount[3]
		_, has4 := rankCount[4]
		_, has5 := rankCount[5]
		if has2 && has3 && has4 && has5 {
			return 5
		}
	}
	return 0
}
