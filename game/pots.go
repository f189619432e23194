package game

import (
	"fmt"
	"sort"
)

// settlePots carves the pot into a main pot and side pots from the
// players' hand contributions, then awards each pot to the best hand
// among its eligible players. Folded players' chips stay in the pots
// they were carved into, but folded players are never eligible.
func (h *HandState) settlePots() {
	h.carvePots()
	h.awardPots()
}

// carvePots repeatedly takes the lowest remaining contribution level of
// the non-folded players and collects that level from every contributor
// into one pot. Eligibility for a pot is restricted to non-folded
// players who still had chips at that level.
func (h *HandState) carvePots() {
	remaining := make(map[uint64]int64, len(h.Players))
	for _, p := range h.Players {
		if p.HandContribution > 0 {
			remaining[p.UserID] = p.HandContribution
		}
	}

	for {
		level := int64(0)
		for _, p := range h.Players {
			if p.Folded {
				continue
			}
			r := remaining[p.UserID]
			if r > 0 && (level == 0 || r < level) {
				level = r
			}
		}
		if level == 0 {
			break
		}

		pot := &Pot{Name: h.nextPotName()}
		for _, p := range h.Players {
			r := remaining[p.UserID]
			if r == 0 {
				continue
			}
			take := level
			if take > r {
				take = r
			}
			pot.Amount += take
			remaining[p.UserID] = r - take
			if !p.Folded {
				pot.Eligible = append(pot.Eligible, p.UserID)
			}
		}
		h.Pots = append(h.Pots, pot)
	}

	// a folded player can have contributed beyond the deepest non-folded
	// stack; those chips go to the last pot
	leftover := int64(0)
	for _, r := range remaining {
		leftover += r
	}
	if leftover > 0 && len(h.Pots) > 0 {
		h.Pots[len(h.Pots)-1].Amount += leftover
	}
	h.PotAmount = 0
}

func (h *HandState) nextPotName() string {
	if len(h.Pots) == 0 {
		return "main"
	}
	return fmt.Sprintf("side-%d", len(h.Pots))
}

// awardPots resolves each pot independently: the best hand among the
// pot's eligible players takes it, ties split evenly with the remainder
// chips distributed per the table's odd-chip policy.
func (h *HandState) awardPots() {
	for _, pot := range h.Pots {
		if pot.Resolved {
			continue
		}
		winners := h.bestOf(pot.Eligible)
		if len(winners) == 0 {
			// eligible players all removed mid-hand; nothing sane to do
			// but leave the pot unawarded
			handStateLogger.Error().
				Str("roomID", h.RoomID).
				Str("pot", pot.Name).
				Msg("Pot has no eligible winner")
			continue
		}

		pot.WinnerIDs = make([]uint64, 0, len(winners))
		for _, w := range winners {
			pot.WinnerIDs = append(pot.WinnerIDs, w.UserID)
		}
		pot.IsDraw = len(winners) > 1
		pot.WinningHand = winners[0].Hand

		share := pot.Amount / int64(len(winners))
		remainder := pot.Amount % int64(len(winners))
		for _, w := range h.oddChipOrder(winners) {
			payout := share
			if remainder > 0 {
				payout++
				remainder--
			}
			w.Coins += payout
		}
		pot.Resolved = true

		handStateLogger.Info().
			Str("roomID", h.RoomID).
			Uint32("handNo", h.HandNum).
			Str("pot", pot.Name).
			Int64("amount", pot.Amount).
			Interface("winners", pot.WinnerIDs).
			Bool("isDraw", pot.IsDraw).
			Msg("Pot awarded")
	}
}

// bestOf returns the players holding the best hand among the given ids.
// More than one player means an exact tie.
func (h *HandState) bestOf(playerIDs []uint64) []*Player {
	var winners []*Player
	for _, id := range playerIDs {
		p := h.playerByID(id)
		if p == nil || p.Folded || p.Hand == nil {
			continue
		}
		if len(winners) == 0 {
			winners = []*Player{p}
			continue
		}
		cmp := p.Hand.Compare(*winners[0].Hand)
		if cmp > 0 {
			winners = []*Player{p}
		} else if cmp == 0 {
			winners = append(winners, p)
		}
	}
	return winners
}

// oddChipOrder orders tied winners for remainder distribution.
func (h *HandState) oddChipOrder(winners []*Player) []*Player {
	ordered := make([]*Player, len(winners))
	copy(ordered, winners)
	switch h.OddChipPolicy {
	case OddChipLowestSeat:
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].SeatNo < ordered[j].SeatNo
		})
	default:
		// first seat after the dealer button receives the first odd chip
		sort.Slice(ordered, func(i, j int) bool {
			return h.seatDistanceFromButton(ordered[i].SeatNo) < h.seatDistanceFromButton(ordered[j].SeatNo)
		})
	}
	return ordered
}

func (h *HandState) seatDistanceFromButton(seatNo int) int {
	maxSeat := 0
	for _, p := range h.Players {
		if p.SeatNo > maxSeat {
			maxSeat = p.SeatNo
		}
	}
	d := seatNo - h.ButtonSeat
	if d <= 0 {
		d += maxSeat
	}
	return d
}
