package engine

// Hand is an opaque showdown hand. The engine never inspects it; only the
// Oracle can interpret one.
type Hand interface{}

// Oracle compares two showdown hands. Compare returns a positive value if a
// wins, negative if b wins, zero on a tie. Implementations are typically
// backed by a concrete evaluator; the engine only needs the ordering.
type Oracle interface {
	Compare(a, b Hand) int
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(a, b Hand) int

func (f OracleFunc) Compare(a, b Hand) int {
	return f(a, b)
}

// HandProvider supplies showdown hands the host has not pushed via
// SetShowdownHand by the time settlement needs them. This is how the deal
// source collaborator plugs in.
type HandProvider interface {
	ShowdownHand(seat int) (Hand, error)
}
