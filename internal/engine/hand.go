package engine

import "sort"

// handState is the state of a single hand: the players that began it, the current
// street and betting round, and the event journal. Created by StartHand,
// torn down after settlement.
type handState struct {
	number    int
	variant   Variant
	players   []*Player // participants in ascending seat order
	button    int
	streetIdx int
	round     *BettingRound
	preStacks map[int]int // stacks at StartHand, for rollback and invariants
	journal   []Event
}

// Street returns the name of the current street.
func (h *handState) Street() string {
	return h.variant.Streets[h.streetIdx].Name
}

func (h *handState) player(seat int) *Player {
	for _, p := range h.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// potTotal is all money wagered this hand, collected or not.
func (h *handState) potTotal() int {
	total := 0
	for _, p := range h.players {
		total += p.TotalBet
	}
	return total
}

// inHandCount counts players still contesting the pot.
func (h *handState) inHandCount() int {
	n := 0
	for _, p := range h.players {
		if p.InHand() {
			n++
		}
	}
	return n
}

// closeStreet clears per-street bets; hand totals live on in TotalBet.
func (h *handState) closeStreet() {
	for _, p := range h.players {
		p.Bet = 0
	}
}

// activeRing builds the acting order for the current street: active seats in
// cyclic seat order starting just after the given position.
func (h *handState) activeRing(after int) *SeatRing {
	seats := make([]int, 0, len(h.players))
	for _, p := range h.players {
		if p.CanAct() {
			seats = append(seats, p.Seat)
		}
	}
	return NewSeatRing(rotateAfter(seats, after))
}

// rotateAfter rotates an ascending seat list to start at the first seat
// strictly after pos, wrapping to the lowest seat.
func rotateAfter(seats []int, pos int) []int {
	sort.Ints(seats)
	idx := len(seats)
	for i, s := range seats {
		if s > pos {
			idx = i
			break
		}
	}
	out := make([]int, 0, len(seats))
	out = append(out, seats[idx:]...)
	out = append(out, seats[:idx]...)
	return out
}
