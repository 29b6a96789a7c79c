package engine

// SeatState is the read-only view of one seat.
type SeatState struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Chips     int    `json:"chips"`
	Status    string `json:"status"`
	StreetBet int    `json:"streetBet"`
	TotalBet  int    `json:"totalBet"`
}

// PotState is the read-only view of one pot layer.
type PotState struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

// TableState is a structured snapshot of the table: seats, stacks, pots and
// the seat to act. It replaces the old concatenated string dump with
// something a settlement client can actually consume.
type TableState struct {
	TableID    string      `json:"tableId"`
	SmallBlind int         `json:"smallBlind"`
	BigBlind   int         `json:"bigBlind"`
	MaxSeats   int         `json:"maxSeats"`
	HandNumber int         `json:"handNumber"`
	HandActive bool        `json:"handActive"`
	Street     string      `json:"street,omitempty"`
	Button     int         `json:"button"`
	CurrentBet int         `json:"currentBet"`
	MinRaise   int         `json:"minRaise"`
	ToAct      int         `json:"toAct"` // -1 when no action pending
	Seats      []SeatState `json:"seats"`
	Pots       []PotState  `json:"pots,omitempty"`
}

// State returns a consistent snapshot of the table.
func (t *Table) State() TableState {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := TableState{
		TableID:    t.id,
		SmallBlind: t.smallBlind,
		BigBlind:   t.bigBlind,
		MaxSeats:   t.maxSeats,
		HandNumber: t.handNum,
		Button:     t.button,
		ToAct:      -1,
	}

	for _, p := range t.seats {
		if p == nil {
			continue
		}
		st.Seats = append(st.Seats, SeatState{
			Seat:      p.Seat,
			Name:      p.Name,
			Chips:     p.Chips,
			Status:    p.Status.String(),
			StreetBet: p.Bet,
			TotalBet:  p.TotalBet,
		})
	}

	if h := t.hand; h != nil {
		st.HandActive = true
		st.Street = h.Street()
		st.CurrentBet = h.round.CurrentBet()
		st.MinRaise = h.round.MinRaise()
		if seat, ok := h.round.Awaiting(); ok {
			st.ToAct = seat
		}
		for _, pot := range BuildPots(h.players) {
			st.Pots = append(st.Pots, PotState{Amount: pot.Amount, Eligible: pot.Eligible})
		}
	}
	return st
}
