package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRoyalFlush(t *testing.T) {
	rank, best := Evaluate(NewCards("Ah", "Kh", "Qh", "Jh", "Th"))
	assert.Equal(t, RoyalFlush, rank.Category)
	assert.Equal(t, int32(14), rank.Primary)
	assert.Len(t, best, 5)
}

func TestEvaluateWheelStraight(t *testing.T) {
	rank, _ := Evaluate(NewCards("2h", "3d", "4c", "5s", "Ah"))
	assert.Equal(t, Straight, rank.Category)
	// ace plays low; the wheel is a five-high straight
	assert.Equal(t, int32(5), rank.Primary)
}

func TestEvaluatePrefersHighStraightOverWheel(t *testing.T) {
	// seven cards allow both the wheel and the six-high straight
	rank, _ := Evaluate(NewCards("Ah", "2d", "3c", "4s", "5h", "6d", "9c"))
	assert.Equal(t, Straight, rank.Category)
	assert.Equal(t, int32(6), rank.Primary)
}

func TestEvaluateQuadsBeatFullHouse(t *testing.T) {
	quads, _ := Evaluate(NewCards("9h", "9d", "9c", "9s", "2h", "3d", "4c"))
	fullHouse, _ := Evaluate(NewCards("Kh", "Kd", "Kc", "3d", "3h", "Ah", "Qd"))
	assert.Equal(t, FourOfAKind, quads.Category)
	assert.Equal(t, FullHouse, fullHouse.Category)
	assert.Greater(t, quads.Compare(fullHouse), 0)
}

func TestEvaluateBestOfSeven(t *testing.T) {
	// two pair on the board plus a flush in hand; the flush must win out
	rank, best := Evaluate(NewCards("Ad", "8d", "Kd", "Kc", "2d", "2c", "7d"))
	assert.Equal(t, Flush, rank.Category)
	assert.Equal(t, int32(14), rank.Primary)
	require.Len(t, best, 5)
	for _, c := range best {
		assert.Equal(t, NewCard("2d").Suit(), c.Suit())
	}
}

func TestEvaluateFullHouseRanks(t *testing.T) {
	rank, _ := Evaluate(NewCards("Th", "Td", "Tc", "4s", "4h"))
	assert.Equal(t, FullHouse, rank.Category)
	assert.Equal(t, int32(10), rank.Primary)
	assert.Equal(t, int32(4), rank.Secondary)
}

func TestEvaluateTwoPairKicker(t *testing.T) {
	better, _ := Evaluate(NewCards("Ah", "Ad", "5c", "5s", "Kh"))
	worse, _ := Evaluate(NewCards("Ac", "As", "5d", "5h", "Qh"))
	assert.Equal(t, TwoPair, better.Category)
	assert.Equal(t, int32(14), better.Primary)
	assert.Equal(t, int32(5), better.Secondary)
	assert.Greater(t, better.Compare(worse), 0)
}

func TestEvaluateExactTieIsDraw(t *testing.T) {
	// same board plays for both after identical kickers
	a, _ := Evaluate(NewCards("Ah", "Kd", "Qc", "Js", "9h"))
	b, _ := Evaluate(NewCards("Ad", "Kh", "Qs", "Jc", "9d"))
	assert.Equal(t, HighCard, a.Category)
	assert.Zero(t, a.Compare(b))
}

func TestEvaluateCategoryOrdering(t *testing.T) {
	hands := [][]string{
		{"Ah", "Kd", "Qc", "Js", "9h"},                     // high card
		{"Ah", "Ad", "Qc", "Js", "9h"},                     // pair
		{"Ah", "Ad", "Qc", "Qs", "9h"},                     // two pair
		{"Ah", "Ad", "Ac", "Qs", "9h"},                     // trips
		{"Th", "9d", "8c", "7s", "6h"},                     // straight
		{"Ah", "Jh", "8h", "5h", "2h"},                     // flush
		{"Ah", "Ad", "Ac", "Qs", "Qh"},                     // full house
		{"Ah", "Ad", "Ac", "As", "9h"},                     // quads
		{"9h", "8h", "7h", "6h", "5h"},                     // straight flush
		{"Ah", "Kh", "Qh", "Jh", "Th"},                     // royal flush
	}
	var prev HandRank
	for i, cards := range hands {
		rank, _ := Evaluate(NewCards(cards...))
		assert.Equal(t, HandCategory(i+1), rank.Category, "hand %v", cards)
		if i > 0 {
			assert.Greater(t, rank.Compare(prev), 0, "hand %v must beat the previous category", cards)
		}
		prev = rank
	}
}

func TestStraightFlushNotRoyal(t *testing.T) {
	rank, _ := Evaluate(NewCards("Kh", "Qh", "Jh", "Th", "9h"))
	assert.Equal(t, StraightFlush, rank.Category)
	assert.Equal(t, int32(13), rank.Primary)
}
