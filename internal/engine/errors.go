package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyOrder is returned when the seat order has no seats left.
	ErrEmptyOrder = errors.New("no seats remain in the order")

	// ErrSeatNotFound is returned when an operation names a seat that is not
	// present. This indicates a caller bug and is never swallowed.
	ErrSeatNotFound = errors.New("seat not found")

	// ErrSeatTaken is returned when seating a player at an occupied seat.
	ErrSeatTaken = errors.New("seat already occupied")

	// ErrLackOfPlayers is returned by StartHand when fewer than two players
	// are eligible. It is recoverable: seat more players and retry.
	ErrLackOfPlayers = errors.New("at least two players required to start a hand")

	// ErrHandInProgress is returned when StartHand is called mid-hand.
	ErrHandInProgress = errors.New("a hand is already in progress")

	// ErrNoHand is returned when an action is submitted with no hand running.
	ErrNoHand = errors.New("no hand in progress")

	// ErrNoEligiblePlayers indicates a pot with an empty eligibility set.
	// Unreachable under correct pot construction; always wrapped in an
	// InternalError when it surfaces.
	ErrNoEligiblePlayers = errors.New("pot has no eligible players")

	// ErrMissingShowdownHand indicates a showdown contender with no hand set
	// and no HandProvider to supply one.
	ErrMissingShowdownHand = errors.New("showdown hand not provided")
)

// ConfigError reports an invalid table configuration. Fatal at setup and
// never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid table configuration: " + e.Reason
}

// InvalidBlindConfigError reports blind sizes that violate the table rules:
// both blinds must be positive and the big blind at least twice the small.
type InvalidBlindConfigError struct {
	SmallBlind int
	BigBlind   int
}

func (e *InvalidBlindConfigError) Error() string {
	return fmt.Sprintf("invalid blinds: small %d, big %d (big blind must be positive and at least twice the small blind)", e.SmallBlind, e.BigBlind)
}

// OutOfTurnError is returned when a seat other than the one awaiting action
// submits an action. The submission is rejected with no state change.
type OutOfTurnError struct {
	Seat    int // seat that attempted the action
	Current int // seat actually awaiting action, -1 if none
}

func (e *OutOfTurnError) Error() string {
	if e.Current < 0 {
		return fmt.Sprintf("seat %d acted out of turn: no action pending", e.Seat)
	}
	return fmt.Sprintf("seat %d acted out of turn: action is on seat %d", e.Seat, e.Current)
}

// IllegalActionError is returned when the acting seat submits an action that
// violates the betting rules. State is unchanged. Legal carries the currently
// valid actions so a client can present a corrected choice.
type IllegalActionError struct {
	Seat   int
	Action Action
	Reason string
	Legal  []ValidAction
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("seat %d: illegal %s: %s", e.Seat, e.Action.Type, e.Reason)
}

// InternalError wraps a violated engine invariant (pot totals, negative
// stacks). The hand that produced it is aborted and stacks are rolled back
// to their pre-hand values; the table remains usable.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return "internal consistency failure: " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
