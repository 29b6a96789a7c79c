// Package engine implements the authoritative rules for a single poker table:
// seating, blind posting, turn-ordered betting rounds, all-in and side-pot
// resolution, and showdown settlement.
//
// The main type is Table, which persists across hands and owns the seat
// arena. Each call to StartHand snapshots the seated players into a Hand,
// runs one BettingRound per street of the configured Variant, and settles
// the resulting pots through an opaque hand-rank Oracle.
//
// The engine never touches I/O. Card dealing, hand ranking and transport are
// external collaborators: hands are opaque values supplied by the host (see
// Oracle and HandProvider), and every state change is reported through the
// event journal and EventBus for the host to broadcast.
//
// All mutating operations on a Table are serialized by an internal mutex;
// one table is one logical actor. Independent tables may run in parallel.
package engine
