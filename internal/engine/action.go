package engine

// ActionType identifies a betting action.
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a ActionType) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Bet:
		return "bet"
	case Raise:
		return "raise"
	case AllIn:
		return "allin"
	default:
		return "unknown"
	}
}

// ParseActionType converts a wire-format action name to an ActionType.
func ParseActionType(s string) (ActionType, bool) {
	switch s {
	case "fold":
		return Fold, true
	case "check":
		return Check, true
	case "call":
		return Call, true
	case "bet":
		return Bet, true
	case "raise":
		return Raise, true
	case "allin", "all-in":
		return AllIn, true
	}
	return 0, false
}

// Action is a single betting decision. For Bet and Raise, Amount is the
// player's proposed total contribution this street, not the delta.
type Action struct {
	Type   ActionType
	Amount int
}

// ValidAction describes one legal action for the seat awaiting action.
// For Bet and Raise, Min and Max bound the total street contribution.
type ValidAction struct {
	Type ActionType
	Min  int
	Max  int
}
