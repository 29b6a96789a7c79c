package engine

// SeatRing is a cyclic order over seat numbers with a cursor at the seat to
// act. Removal keeps the cycle intact: removing the seat at the cursor lands
// the cursor on the next remaining seat without a separate Advance. An empty
// ring is a signal to the caller (the hand is over), never a panic.
type SeatRing struct {
	seats []int
	cur   int
}

// NewSeatRing builds a ring from seats already in acting order. The cursor
// starts on the first seat.
func NewSeatRing(seats []int) *SeatRing {
	r := &SeatRing{seats: make([]int, len(seats))}
	copy(r.seats, seats)
	return r
}

// Current returns the seat to act.
func (r *SeatRing) Current() (int, error) {
	if len(r.seats) == 0 {
		return 0, ErrEmptyOrder
	}
	return r.seats[r.cur], nil
}

// Advance moves the cursor to the next seat, wrapping from last to first.
func (r *SeatRing) Advance() error {
	if len(r.seats) == 0 {
		return ErrEmptyOrder
	}
	r.cur = (r.cur + 1) % len(r.seats)
	return nil
}

// Remove takes a seat out of the order. If the removed seat was current, the
// cursor lands on the next remaining seat.
func (r *SeatRing) Remove(seat int) error {
	idx := -1
	for i, s := range r.seats {
		if s == seat {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrSeatNotFound
	}

	r.seats = append(r.seats[:idx], r.seats[idx+1:]...)
	if idx < r.cur {
		r.cur--
	}
	if len(r.seats) > 0 && r.cur >= len(r.seats) {
		r.cur = 0
	}
	if len(r.seats) == 0 {
		r.cur = 0
	}
	return nil
}

// Contains reports whether seat is still in the order.
func (r *SeatRing) Contains(seat int) bool {
	for _, s := range r.seats {
		if s == seat {
			return true
		}
	}
	return false
}

// Len returns the number of seats remaining.
func (r *SeatRing) Len() int {
	return len(r.seats)
}

// Seats returns the remaining seats in cyclic order starting at the cursor.
func (r *SeatRing) Seats() []int {
	out := make([]int, 0, len(r.seats))
	for i := range r.seats {
		out = append(out, r.seats[(r.cur+i)%len(r.seats)])
	}
	return out
}
