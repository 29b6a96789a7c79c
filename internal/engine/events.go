package engine

import "time"

// EventType identifies a table event.
type EventType string

const (
	EventTypeHandStart      EventType = "hand_start"
	EventTypeBlindPosted    EventType = "blind_posted"
	EventTypeActionTaken    EventType = "action_taken"
	EventTypeAwaitingAction EventType = "awaiting_action"
	EventTypeStreetAdvanced EventType = "street_advanced"
	EventTypePotAwarded     EventType = "pot_awarded"
	EventTypeHandEnd        EventType = "hand_end"
	EventTypeHandAborted    EventType = "hand_aborted"
)

func (et EventType) String() string {
	return string(et)
}

// Event is anything that happens at the table. Events are appended in order
// to the hand journal and published to subscribers; the journal is
// append-only within a hand.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

type eventStamp struct {
	at time.Time
}

func (e eventStamp) Timestamp() time.Time { return e.at }

func stamp() eventStamp {
	return eventStamp{at: time.Now()}
}

// HandStartEvent is published when a hand begins.
type HandStartEvent struct {
	eventStamp
	HandNumber int
	TableID    string
	Seats      []int
	Button     int
	SmallBlind int
	BigBlind   int
}

func (HandStartEvent) EventType() EventType { return EventTypeHandStart }

// BlindPostedEvent is published for each forced blind contribution.
type BlindPostedEvent struct {
	eventStamp
	Seat   int
	Blind  string // "small" or "big"
	Amount int
	AllIn  bool // the blind consumed the whole stack
}

func (BlindPostedEvent) EventType() EventType { return EventTypeBlindPosted }

// ActionTakenEvent is published after a legal action is applied. Rejected
// actions are surfaced to the submitter only and never broadcast.
type ActionTakenEvent struct {
	eventStamp
	Seat         int
	Action       Action
	Contribution int // seat's street contribution after the action
	Pot          int // total money in play after the action
}

func (ActionTakenEvent) EventType() EventType { return EventTypeActionTaken }

// AwaitingActionEvent is published when the round turns to a new seat. The
// host's timeout policy hangs off this event.
type AwaitingActionEvent struct {
	eventStamp
	Seat     int
	ToCall   int
	MinRaise int
	Legal    []ValidAction
}

func (AwaitingActionEvent) EventType() EventType { return EventTypeAwaitingAction }

// StreetAdvancedEvent is published entering each street. Reveal tells the
// host whether shared state should be exposed; dealing itself is the host's
// job.
type StreetAdvancedEvent struct {
	eventStamp
	Street string
	Reveal bool
	Pot    int
}

func (StreetAdvancedEvent) EventType() EventType { return EventTypeStreetAdvanced }

// PotAwardedEvent is published per pot at settlement.
type PotAwardedEvent struct {
	eventStamp
	PotIndex int
	Amount   int
	Winners  []int
	Shares   map[int]int
}

func (PotAwardedEvent) EventType() EventType { return EventTypePotAwarded }

// HandEndEvent is published once all pots are settled and stacks updated.
type HandEndEvent struct {
	eventStamp
	HandNumber int
	Showdown   bool        // false when all but one player folded
	Winnings   map[int]int // seat -> total chips won
}

func (HandEndEvent) EventType() EventType { return EventTypeHandEnd }

// HandAbortedEvent is published when an internal consistency check fails and
// the hand is rolled back with stacks unchanged.
type HandAbortedEvent struct {
	eventStamp
	HandNumber int
	Reason     string
}

func (HandAbortedEvent) EventType() EventType { return EventTypeHandAborted }

// EventSubscriber receives table events.
type EventSubscriber interface {
	OnEvent(event Event)
}

// EventBus fans events out to subscribers.
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is a basic synchronous in-memory event bus.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus.
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
