package engine

// StreetDef describes one betting street of a variant. Reveal indicates
// whether entering the street exposes shared state; what gets dealt is the
// host's concern, the engine only sequences the rounds.
type StreetDef struct {
	Name   string
	Reveal bool
}

// Variant is a street-structure table: the ordered list of betting streets
// for a game type. Variants replace per-game subclassing; the engine drives
// any game expressible as a sequence of streets.
type Variant struct {
	Name    string
	Streets []StreetDef
}

// HoldemVariant returns the standard four-street structure used by Texas
// Hold'em and Omaha.
func HoldemVariant() Variant {
	return Variant{
		Name: "holdem",
		Streets: []StreetDef{
			{Name: "preflop", Reveal: false},
			{Name: "flop", Reveal: true},
			{Name: "turn", Reveal: true},
			{Name: "river", Reveal: true},
		},
	}
}
