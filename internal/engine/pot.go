package engine

import (
	"fmt"
	"sort"
)

// Pot is one layer of the hand's money, capped at a per-player contribution
// level. Cap is zero for the final, uncapped pot.
type Pot struct {
	Amount   int
	Eligible []int // seats still in the hand that covered this layer, ascending
	Cap      int
}

// PotAward records the settlement of a single pot.
type PotAward struct {
	PotIndex int
	Amount   int
	Winners  []int
	Shares   map[int]int // seat -> chips awarded, remainder included
}

// BuildPots layers the hand's full contribution ledger into a main pot and
// side pots keyed by the distinct all-in totals, processed ascending. Folded
// players' money still funds every layer they reached; eligibility for a
// layer is the set of in-hand players whose hand total covered it. Any
// contribution beyond the highest all-in level lands in a final uncapped pot
// (when a single player over-contributed, that pot is their refund).
func BuildPots(players []*Player) []Pot {
	levels := make(map[int]bool)
	for _, p := range players {
		if p.Status == StatusAllIn && p.TotalBet > 0 {
			levels[p.TotalBet] = true
		}
	}
	caps := make([]int, 0, len(levels))
	for l := range levels {
		caps = append(caps, l)
	}
	sort.Ints(caps)

	var pots []Pot
	prev := 0
	for _, cap := range caps {
		pot := Pot{Cap: cap}
		for _, p := range players {
			slice := min(p.TotalBet, cap) - prev
			if slice > 0 {
				pot.Amount += slice
			}
			if p.InHand() && p.TotalBet >= cap {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
		prev = cap
	}

	// Remainder beyond the highest all-in level.
	last := Pot{}
	for _, p := range players {
		if slice := p.TotalBet - prev; slice > 0 {
			last.Amount += slice
		}
		if p.InHand() && p.TotalBet > prev {
			last.Eligible = append(last.Eligible, p.Seat)
		}
	}
	if last.Amount > 0 || len(pots) == 0 {
		pots = append(pots, last)
	}

	for i := range pots {
		sort.Ints(pots[i].Eligible)
	}
	return pots
}

// SettlePots divides each pot among its best-ranked eligible players using
// the oracle, ties split evenly with any indivisible remainder going to the
// first winner in seat order after the button. When only one player remains
// in the hand the oracle is never consulted: every pot is theirs.
//
// The returned map is seat -> total winnings. An error here means an engine
// invariant was violated; the caller must abort the hand, not pay out.
func SettlePots(pots []Pot, players []*Player, oracle Oracle, button int) (map[int]int, []PotAward, error) {
	byseat := make(map[int]*Player, len(players))
	inHand := make([]*Player, 0, len(players))
	for _, p := range players {
		byseat[p.Seat] = p
		if p.InHand() {
			inHand = append(inHand, p)
		}
	}

	winnings := make(map[int]int)
	awards := make([]PotAward, 0, len(pots))

	for i, pot := range pots {
		if pot.Amount == 0 {
			continue
		}

		var winners []int
		switch {
		case len(inHand) == 1:
			// Everyone else folded: no showdown, sole survivor takes all.
			winners = []int{inHand[0].Seat}
		case len(pot.Eligible) == 0:
			return nil, nil, &InternalError{Err: fmt.Errorf("pot %d (%d chips): %w", i, pot.Amount, ErrNoEligiblePlayers)}
		case len(pot.Eligible) == 1:
			winners = []int{pot.Eligible[0]}
		default:
			var err error
			winners, err = bestHands(pot.Eligible, byseat, oracle)
			if err != nil {
				return nil, nil, err
			}
		}

		shares := splitPot(pot.Amount, winners, button)
		award := PotAward{PotIndex: i, Amount: pot.Amount, Winners: winners, Shares: shares}
		for seat, amt := range shares {
			winnings[seat] += amt
		}
		awards = append(awards, award)
	}
	return winnings, awards, nil
}

// bestHands finds the maximal-rank subset of the eligible seats.
func bestHands(eligible []int, players map[int]*Player, oracle Oracle) ([]int, error) {
	if oracle == nil {
		return nil, &InternalError{Err: fmt.Errorf("showdown with %d contenders but no oracle", len(eligible))}
	}
	var best []int
	var bestHand Hand
	for _, seat := range eligible {
		p := players[seat]
		if p.showdown == nil {
			return nil, &InternalError{Err: fmt.Errorf("seat %d: %w", seat, ErrMissingShowdownHand)}
		}
		if best == nil {
			best = []int{seat}
			bestHand = p.showdown
			continue
		}
		switch cmp := oracle.Compare(p.showdown, bestHand); {
		case cmp > 0:
			best = []int{seat}
			bestHand = p.showdown
		case cmp == 0:
			best = append(best, seat)
		}
	}
	return best, nil
}

// splitPot divides amount evenly among winners; the odd-chip remainder goes
// to the first winner in seat order after the button.
func splitPot(amount int, winners []int, button int) map[int]int {
	shares := make(map[int]int, len(winners))
	share := amount / len(winners)
	rem := amount % len(winners)
	for _, seat := range winners {
		shares[seat] = share
	}
	if rem > 0 {
		shares[firstAfterButton(winners, button)] += rem
	}
	return shares
}

// firstAfterButton picks the winner closest to the button's left.
func firstAfterButton(winners []int, button int) int {
	best := winners[0]
	bestDist := -1
	for _, seat := range winners {
		dist := seat - button
		if dist <= 0 {
			dist += 1 << 16 // seats at or before the button come last
		}
		if bestDist == -1 || dist < bestDist {
			best = seat
			bestDist = dist
		}
	}
	return best
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
