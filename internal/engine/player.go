package engine

// Status is a player's standing at the table.
type Status int

const (
	StatusActive Status = iota
	StatusFolded
	StatusAllIn
	StatusSittingOut
	StatusLeft
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFolded:
		return "folded"
	case StatusAllIn:
		return "allin"
	case StatusSittingOut:
		return "sitting-out"
	case StatusLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Player is one seat's ledger entry. Players are owned by the Table's seat
// arena and referenced by seat number everywhere else.
type Player struct {
	Seat   int
	Name   string
	Chips  int
	Status Status

	Bet      int // contribution this street
	TotalBet int // contribution this hand

	showdown Hand // opaque hand for the oracle, set by the host
	leaving  bool // left the table while all-in; seat vacated at settlement
}

// CanAct reports whether the player can still take voluntary actions.
func (p *Player) CanAct() bool {
	return p.Status == StatusActive
}

// InHand reports whether the player is still contesting the pot.
func (p *Player) InHand() bool {
	return p.Status == StatusActive || p.Status == StatusAllIn
}

// pay moves up to amount chips from the stack into the street contribution,
// returning the amount actually paid. Going broke marks the player all-in.
func (p *Player) pay(amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Chips == 0 && p.Status == StatusActive {
		p.Status = StatusAllIn
	}
	return amount
}
