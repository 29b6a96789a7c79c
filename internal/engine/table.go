package engine

import (
	"fmt"
	"sync"
)

// Table is a long-lived poker table: the seat arena, blind configuration and
// the hand currently in flight. A table lives across many hands; HandState
// is created by StartHand and torn down at settlement.
//
// All exported methods serialize on the table mutex. One table is one
// logical actor; independent tables run in parallel.
type Table struct {
	mu sync.Mutex

	id         string
	smallBlind int
	bigBlind   int
	maxSeats   int
	variant    Variant
	oracle     Oracle
	provider   HandProvider
	bus        EventBus

	seats   []*Player // fixed-size arena indexed by seat number
	button  int
	handNum int
	hand    *handState
}

// TableOption customizes table construction.
type TableOption func(*Table)

// WithVariant sets the street structure. Defaults to HoldemVariant.
func WithVariant(v Variant) TableOption {
	return func(t *Table) { t.variant = v }
}

// WithHandProvider sets the deal-source collaborator queried for showdown
// hands not pushed via SetShowdownHand.
func WithHandProvider(p HandProvider) TableOption {
	return func(t *Table) { t.provider = p }
}

// WithEventBus replaces the default event bus.
func WithEventBus(bus EventBus) TableOption {
	return func(t *Table) { t.bus = bus }
}

// NewTable validates the blind configuration and creates an empty table.
// The big blind must be positive and at least twice the small blind.
func NewTable(id string, smallBlind, bigBlind, maxSeats int, oracle Oracle, opts ...TableOption) (*Table, error) {
	if smallBlind <= 0 || bigBlind <= 0 || bigBlind < 2*smallBlind {
		return nil, &InvalidBlindConfigError{SmallBlind: smallBlind, BigBlind: bigBlind}
	}
	if maxSeats < 2 {
		return nil, &ConfigError{Reason: fmt.Sprintf("max seats %d, need at least 2", maxSeats)}
	}

	t := &Table{
		id:         id,
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
		maxSeats:   maxSeats,
		variant:    HoldemVariant(),
		oracle:     oracle,
		bus:        NewEventBus(),
		seats:      make([]*Player, maxSeats),
		button:     -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// ID returns the table identifier.
func (t *Table) ID() string {
	return t.id
}

// Events returns the table's event bus for subscription.
func (t *Table) Events() EventBus {
	return t.bus
}

// Seat places a new player with the given buy-in. Joining mid-hand is
// allowed; the player is dealt in from the next hand.
func (t *Table) Seat(seat int, name string, buyIn int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seat < 0 || seat >= t.maxSeats {
		return &ConfigError{Reason: fmt.Sprintf("seat %d outside [0,%d)", seat, t.maxSeats)}
	}
	if buyIn <= 0 {
		return &ConfigError{Reason: "buy-in must be positive"}
	}
	if t.seats[seat] != nil {
		return ErrSeatTaken
	}
	t.seats[seat] = &Player{Seat: seat, Name: name, Chips: buyIn, Status: StatusActive}
	return nil
}

// Leave removes a player. A player owed action in the current hand is folded
// implicitly; an all-in player's contributions stay live until settlement
// and the seat is vacated afterwards.
func (t *Table) Leave(seat int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seat < 0 || seat >= t.maxSeats || t.seats[seat] == nil {
		return ErrSeatNotFound
	}
	p := t.seats[seat]

	if t.hand != nil && t.hand.player(seat) != nil {
		switch p.Status {
		case StatusActive:
			if err := t.hand.round.ForceFold(seat); err != nil {
				return err
			}
			p.Status = StatusLeft
			p.leaving = true
			t.seats[seat] = nil
			return t.progress()
		case StatusAllIn:
			// Cards play to showdown; vacate the seat at settlement.
			p.leaving = true
			return nil
		default:
			p.Status = StatusLeft
			p.leaving = true
			t.seats[seat] = nil
			return nil
		}
	}

	p.Status = StatusLeft
	t.seats[seat] = nil
	return nil
}

// StartHand snapshots the eligible seats into a new hand, posts blinds and
// opens the preflop betting round.
func (t *Table) StartHand() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hand != nil {
		return ErrHandInProgress
	}

	var players []*Player
	var seats []int
	for _, p := range t.seats {
		if p != nil && p.Status == StatusActive && p.Chips > 0 {
			players = append(players, p)
			seats = append(seats, p.Seat)
		}
	}
	if len(players) < 2 {
		return ErrLackOfPlayers
	}

	t.handNum++
	t.button = rotateAfter(append([]int(nil), seats...), t.button)[0]

	preStacks := make(map[int]int, len(players))
	for _, p := range players {
		p.Bet = 0
		p.TotalBet = 0
		p.showdown = nil
		p.Status = StatusActive
		preStacks[p.Seat] = p.Chips
	}

	t.hand = &handState{
		number:    t.handNum,
		variant:   t.variant,
		players:   players,
		button:    t.button,
		preStacks: preStacks,
	}

	t.emit(HandStartEvent{
		eventStamp: stamp(),
		HandNumber: t.handNum,
		TableID:    t.id,
		Seats:      seats,
		Button:     t.button,
		SmallBlind: t.smallBlind,
		BigBlind:   t.bigBlind,
	})

	sbSeat, bbSeat := t.blindSeats(seats)
	t.postBlind(sbSeat, "small", t.smallBlind)
	t.postBlind(bbSeat, "big", t.bigBlind)

	t.emit(StreetAdvancedEvent{
		eventStamp: stamp(),
		Street:     t.variant.Streets[0].Name,
		Reveal:     t.variant.Streets[0].Reveal,
		Pot:        t.hand.potTotal(),
	})

	// Preflop action opens after the big blind, owing the big blind. The
	// blinds have not "acted": the big blind keeps its option.
	ring := t.hand.activeRing(bbSeat)
	t.hand.round = NewBettingRound(t.hand.players, ring, t.bigBlind, t.bigBlind)
	return t.progress()
}

// blindSeats returns the small and big blind seats for this hand. Heads-up
// the button posts the small blind.
func (t *Table) blindSeats(seats []int) (sb, bb int) {
	order := rotateAfter(append([]int(nil), seats...), t.button)
	if len(seats) == 2 {
		return t.button, order[0]
	}
	return order[0], order[1]
}

// postBlind forces a blind contribution. A stack shorter than the blind goes
// all-in for its remainder, creating an all-in level immediately.
func (t *Table) postBlind(seat int, blind string, amount int) {
	p := t.hand.player(seat)
	paid := p.pay(amount)
	t.emit(BlindPostedEvent{
		eventStamp: stamp(),
		Seat:       seat,
		Blind:      blind,
		Amount:     paid,
		AllIn:      p.Status == StatusAllIn,
	})
}

// SubmitAction validates and applies an action from the given seat.
// Rejections (OutOfTurnError, IllegalActionError) leave state unchanged and
// are returned to the submitter only, never broadcast.
func (t *Table) SubmitAction(seat int, act Action) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hand == nil {
		return ErrNoHand
	}
	return t.applyAction(seat, act)
}

// ForceDefaultAction resolves an expired action clock for the seat currently
// awaiting action: check when legal, fold otherwise. It goes through the
// same validation path as a submitted action.
func (t *Table) ForceDefaultAction(seat int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hand == nil {
		return ErrNoHand
	}
	cur, ok := t.hand.round.Awaiting()
	if !ok || cur != seat {
		return &OutOfTurnError{Seat: seat, Current: cur}
	}

	act := Action{Type: Fold}
	if p := t.hand.player(seat); p != nil && p.Bet == t.hand.round.CurrentBet() {
		act = Action{Type: Check}
	}
	return t.applyAction(seat, act)
}

func (t *Table) applyAction(seat int, act Action) error {
	if err := t.hand.round.Submit(seat, act); err != nil {
		return err
	}

	p := t.hand.player(seat)
	t.emit(ActionTakenEvent{
		eventStamp:   stamp(),
		Seat:         seat,
		Action:       act,
		Contribution: p.Bet,
		Pot:          t.hand.potTotal(),
	})
	return t.progress()
}

// progress drives the hand forward after any state change: announces the
// next seat to act, closes completed streets, fast-forwards streets once
// voluntary action is exhausted, and settles when the hand ends.
func (t *Table) progress() error {
	for {
		h := t.hand
		if h == nil {
			return nil
		}

		if seat, ok := h.round.Awaiting(); ok {
			p := h.player(seat)
			t.emit(AwaitingActionEvent{
				eventStamp: stamp(),
				Seat:       seat,
				ToCall:     h.round.CurrentBet() - p.Bet,
				MinRaise:   h.round.MinRaise(),
				Legal:      h.round.LegalActions(),
			})
			return nil
		}

		h.closeStreet()

		if h.inHandCount() <= 1 {
			return t.settle()
		}
		if h.streetIdx+1 >= len(h.variant.Streets) {
			return t.settle()
		}

		// Streets keep coming even with no voluntary action left; the
		// all-in runout is dealt through to showdown.
		h.streetIdx++
		def := h.variant.Streets[h.streetIdx]
		t.emit(StreetAdvancedEvent{
			eventStamp: stamp(),
			Street:     def.Name,
			Reveal:     def.Reveal,
			Pot:        h.potTotal(),
		})
		h.round = NewBettingRound(h.players, h.activeRing(h.button), t.bigBlind, 0)
	}
}

// SetShowdownHand attaches the host-dealt hand for a seat in the current
// hand. The engine treats it as opaque; only the oracle reads it.
func (t *Table) SetShowdownHand(seat int, hand Hand) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hand == nil {
		return ErrNoHand
	}
	p := t.hand.player(seat)
	if p == nil {
		return ErrSeatNotFound
	}
	p.showdown = hand
	return nil
}

// settle builds and distributes the pots, verifies conservation and updates
// stacks. A failed invariant aborts the hand with stacks rolled back.
func (t *Table) settle() error {
	h := t.hand
	showdown := h.inHandCount() > 1

	if showdown && t.provider != nil {
		for _, p := range h.players {
			if p.InHand() && p.showdown == nil {
				hand, err := t.provider.ShowdownHand(p.Seat)
				if err != nil {
					return t.abort(fmt.Errorf("hand provider for seat %d: %w", p.Seat, err))
				}
				p.showdown = hand
			}
		}
	}

	pots := BuildPots(h.players)
	winnings, awards, err := SettlePots(pots, h.players, t.oracle, h.button)
	if err != nil {
		return t.abort(err)
	}

	contributed := 0
	for _, p := range h.players {
		contributed += p.TotalBet
	}
	distributed := 0
	for _, amt := range winnings {
		distributed += amt
	}
	if distributed != contributed {
		return t.abort(fmt.Errorf("distributed %d != contributed %d", distributed, contributed))
	}

	for _, p := range h.players {
		p.Chips += winnings[p.Seat]
		if p.Chips < 0 || p.Chips != h.preStacks[p.Seat]-p.TotalBet+winnings[p.Seat] {
			return t.abort(fmt.Errorf("seat %d stack %d violates ledger", p.Seat, p.Chips))
		}
	}

	for _, award := range awards {
		t.emit(PotAwardedEvent{
			eventStamp: stamp(),
			PotIndex:   award.PotIndex,
			Amount:     award.Amount,
			Winners:    award.Winners,
			Shares:     award.Shares,
		})
	}
	t.emit(HandEndEvent{
		eventStamp: stamp(),
		HandNumber: h.number,
		Showdown:   showdown,
		Winnings:   winnings,
	})

	for _, p := range h.players {
		p.Bet = 0
		p.TotalBet = 0
		switch {
		case p.leaving:
			p.Status = StatusLeft
			if t.seats[p.Seat] == p {
				t.seats[p.Seat] = nil
			}
		case p.Chips == 0:
			p.Status = StatusSittingOut
		default:
			p.Status = StatusActive
		}
	}
	t.hand = nil
	return nil
}

// abort rolls the hand back to its pre-hand stacks. The engine never leaves
// a hand half-settled.
func (t *Table) abort(err error) error {
	h := t.hand
	for _, p := range h.players {
		p.Chips = h.preStacks[p.Seat]
		p.Bet = 0
		p.TotalBet = 0
		if p.leaving {
			p.Status = StatusLeft
			if t.seats[p.Seat] == p {
				t.seats[p.Seat] = nil
			}
		} else if p.Chips == 0 {
			p.Status = StatusSittingOut
		} else {
			p.Status = StatusActive
		}
	}
	t.emit(HandAbortedEvent{
		eventStamp: stamp(),
		HandNumber: h.number,
		Reason:     err.Error(),
	})
	t.hand = nil

	if _, ok := err.(*InternalError); !ok {
		err = &InternalError{Err: err}
	}
	return err
}

// Journal returns a copy of the current hand's ordered event journal, nil
// when no hand is running.
func (t *Table) Journal() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hand == nil {
		return nil
	}
	out := make([]Event, len(t.hand.journal))
	copy(out, t.hand.journal)
	return out
}

func (t *Table) emit(e Event) {
	if t.hand != nil {
		t.hand.journal = append(t.hand.journal, e)
	}
	t.bus.Publish(e)
}
