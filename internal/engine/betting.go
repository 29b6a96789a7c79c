package engine

import "fmt"

// BettingRound drives one street of action. It accepts actions only from the
// seat at the ring cursor, validates them against the table rules, and tracks
// completion: every remaining active player must have acted since the last
// full bet or raise, with equal street contributions.
//
// A raise of at least the minimum increment reopens action for everyone
// still active. A short all-in raises the amount to call but does not reopen
// action for players who already matched the prior full bet.
type BettingRound struct {
	players    map[int]*Player
	ring       *SeatRing // active (non-folded, non-all-in) seats in acting order
	currentBet int       // amount to call this street
	minRaise   int       // size of the last full bet/raise, big blind before any
	acted      map[int]bool
	complete   bool
}

// NewBettingRound starts a street over the given active seats. openingBet is
// the amount already owed when action opens (the big blind preflop, zero on
// later streets); blind postings do not count as having acted, which is what
// gives the big blind its option.
func NewBettingRound(players []*Player, ring *SeatRing, bigBlind, openingBet int) *BettingRound {
	byseat := make(map[int]*Player, len(players))
	for _, p := range players {
		byseat[p.Seat] = p
	}
	br := &BettingRound{
		players:    byseat,
		ring:       ring,
		currentBet: openingBet,
		minRaise:   bigBlind,
		acted:      make(map[int]bool),
	}
	br.refresh()
	return br
}

// Awaiting returns the seat whose action the round is waiting on, or false
// when the round is complete.
func (br *BettingRound) Awaiting() (int, bool) {
	if br.complete {
		return -1, false
	}
	seat, err := br.ring.Current()
	if err != nil {
		return -1, false
	}
	return seat, true
}

// Complete reports whether the street's betting has finished.
func (br *BettingRound) Complete() bool {
	return br.complete
}

// CurrentBet returns the amount to call this street.
func (br *BettingRound) CurrentBet() int {
	return br.currentBet
}

// MinRaise returns the current minimum raise increment.
func (br *BettingRound) MinRaise() int {
	return br.minRaise
}

// LegalActions returns the valid actions for the seat awaiting action, empty
// when the round is complete.
func (br *BettingRound) LegalActions() []ValidAction {
	seat, ok := br.Awaiting()
	if !ok {
		return nil
	}
	return br.legalFor(br.players[seat])
}

func (br *BettingRound) legalFor(p *Player) []ValidAction {
	legal := []ValidAction{{Type: Fold}}
	toCall := br.currentBet - p.Bet
	allIn := p.Bet + p.Chips

	if toCall == 0 {
		legal = append(legal, ValidAction{Type: Check})
	} else if p.Chips >= toCall {
		legal = append(legal, ValidAction{Type: Call, Min: toCall, Max: toCall})
	}

	if br.currentBet == 0 {
		if allIn >= br.minRaise {
			legal = append(legal, ValidAction{Type: Bet, Min: br.minRaise, Max: allIn})
		}
	} else if !br.acted[p.Seat] && allIn >= br.currentBet+br.minRaise {
		legal = append(legal, ValidAction{Type: Raise, Min: br.currentBet + br.minRaise, Max: allIn})
	}

	if p.Chips > 0 {
		legal = append(legal, ValidAction{Type: AllIn, Min: allIn, Max: allIn})
	}
	return legal
}

func (br *BettingRound) illegal(p *Player, act Action, reason string) error {
	return &IllegalActionError{
		Seat:   p.Seat,
		Action: act,
		Reason: reason,
		Legal:  br.legalFor(p),
	}
}

// Submit validates and applies an action for the given seat. Violations
// return OutOfTurnError or IllegalActionError with no state change.
func (br *BettingRound) Submit(seat int, act Action) error {
	cur, ok := br.Awaiting()
	if !ok {
		return &OutOfTurnError{Seat: seat, Current: -1}
	}
	if seat != cur {
		return &OutOfTurnError{Seat: seat, Current: cur}
	}

	p := br.players[seat]
	toCall := br.currentBet - p.Bet

	switch act.Type {
	case Fold:
		p.Status = StatusFolded
		if err := br.ring.Remove(seat); err != nil {
			return err
		}
		delete(br.acted, seat)

	case Check:
		if toCall != 0 {
			return br.illegal(p, act, fmt.Sprintf("must call %d to stay in", toCall))
		}
		br.acted[seat] = true
		br.moveOn(p)

	case Call:
		if toCall == 0 {
			return br.illegal(p, act, "nothing to call, check instead")
		}
		if p.Chips < toCall {
			return br.illegal(p, act, fmt.Sprintf("stack %d cannot cover call of %d, go all-in instead", p.Chips, toCall))
		}
		p.pay(toCall)
		br.acted[seat] = true
		br.moveOn(p)

	case Bet:
		if br.currentBet != 0 {
			return br.illegal(p, act, "a bet is already open, raise instead")
		}
		if act.Amount < br.minRaise {
			return br.illegal(p, act, fmt.Sprintf("bet %d below minimum %d", act.Amount, br.minRaise))
		}
		if act.Amount > p.Bet+p.Chips {
			return br.illegal(p, act, fmt.Sprintf("bet %d exceeds stack", act.Amount))
		}
		p.pay(act.Amount - p.Bet)
		br.minRaise = act.Amount
		br.currentBet = act.Amount
		br.reopen(seat)
		br.moveOn(p)

	case Raise:
		if br.currentBet == 0 {
			return br.illegal(p, act, "nothing to raise, bet instead")
		}
		if br.acted[seat] {
			return br.illegal(p, act, "betting is not reopened for this seat")
		}
		if act.Amount > p.Bet+p.Chips {
			return br.illegal(p, act, fmt.Sprintf("raise to %d exceeds stack", act.Amount))
		}
		if act.Amount < br.currentBet+br.minRaise {
			return br.illegal(p, act, fmt.Sprintf("raise to %d below minimum %d", act.Amount, br.currentBet+br.minRaise))
		}
		p.pay(act.Amount - p.Bet)
		br.minRaise = act.Amount - br.currentBet
		br.currentBet = act.Amount
		br.reopen(seat)
		br.moveOn(p)

	case AllIn:
		if p.Chips == 0 {
			return br.illegal(p, act, "no chips remaining")
		}
		total := p.Bet + p.Chips
		p.pay(p.Chips)
		if err := br.ring.Remove(seat); err != nil {
			return err
		}
		if total > br.currentBet {
			// A full minimum raise reopens action; a short all-in only
			// raises the amount to call.
			if total >= br.currentBet+br.minRaise {
				br.minRaise = total - br.currentBet
				br.reopen(seat)
			}
			br.currentBet = total
		}
		delete(br.acted, seat)

	default:
		return br.illegal(p, act, "unknown action")
	}

	br.refresh()
	return nil
}

// ForceFold folds a seat immediately regardless of turn order. Used for
// disconnects and action timeouts resolved by the host.
func (br *BettingRound) ForceFold(seat int) error {
	if !br.ring.Contains(seat) {
		return ErrSeatNotFound
	}
	p := br.players[seat]
	p.Status = StatusFolded
	if err := br.ring.Remove(seat); err != nil {
		return err
	}
	delete(br.acted, seat)
	br.refresh()
	return nil
}

// moveOn advances past a player who just acted, removing them from the ring
// if the action put them all-in.
func (br *BettingRound) moveOn(p *Player) {
	if p.Status == StatusAllIn {
		_ = br.ring.Remove(p.Seat)
		delete(br.acted, p.Seat)
		return
	}
	_ = br.ring.Advance()
}

// reopen clears acted flags after a full bet or raise; everyone else must
// act again.
func (br *BettingRound) reopen(actor int) {
	for seat := range br.acted {
		delete(br.acted, seat)
	}
	br.acted[actor] = true
}

func (br *BettingRound) refresh() {
	n := br.ring.Len()
	if n == 0 {
		br.complete = true
		return
	}
	if n == 1 {
		seat, _ := br.ring.Current()
		br.complete = br.players[seat].Bet == br.currentBet
		return
	}
	for _, seat := range br.ring.Seats() {
		p := br.players[seat]
		if p.Bet != br.currentBet || !br.acted[seat] {
			br.complete = false
			return
		}
	}
	br.complete = true
}
