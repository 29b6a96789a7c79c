package engine

import (
	"errors"
	"testing"
)

// eventRecorder captures the broadcast stream for assertions.
type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) OnEvent(e Event) {
	r.events = append(r.events, e)
}

func newTestTable(t *testing.T, sb, bb int, stacks ...int) *Table {
	t.Helper()
	tbl, err := NewTable("t1", sb, bb, 9, intOracle)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	for seat, chips := range stacks {
		if err := tbl.Seat(seat, names[seat], chips); err != nil {
			t.Fatalf("seating %d failed: %v", seat, err)
		}
	}
	return tbl
}

var names = []string{"Alice", "Bob", "Charlie", "Dave", "Eve", "Frank", "Grace", "Heidi", "Ivan"}

func totalChips(tbl *Table) int {
	total := 0
	for _, s := range tbl.State().Seats {
		total += s.Chips
	}
	return total
}

func TestNewTableRejectsBadBlinds(t *testing.T) {
	t.Parallel()
	cases := []struct{ sb, bb int }{
		{5, 9},  // big blind under twice the small
		{0, 10}, // non-positive small
		{5, 0},  // non-positive big
		{-1, 2},
	}
	for _, tc := range cases {
		_, err := NewTable("t", tc.sb, tc.bb, 6, intOracle)
		var blindErr *InvalidBlindConfigError
		if !errors.As(err, &blindErr) {
			t.Errorf("blinds (%d,%d): expected InvalidBlindConfigError, got %v", tc.sb, tc.bb, err)
		}
	}

	if _, err := NewTable("t", 5, 10, 6, intOracle); err != nil {
		t.Errorf("blinds (5,10) should be accepted, got %v", err)
	}
}

func TestSeatValidation(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2)

	var cfgErr *ConfigError
	if err := tbl.Seat(9, "Zed", 100); !errors.As(err, &cfgErr) {
		t.Errorf("seat out of range should be a ConfigError, got %v", err)
	}
	if err := tbl.Seat(-1, "Zed", 100); !errors.As(err, &cfgErr) {
		t.Errorf("negative seat should be a ConfigError, got %v", err)
	}

	if err := tbl.Seat(3, "Alice", 100); err != nil {
		t.Fatalf("seat failed: %v", err)
	}
	if err := tbl.Seat(3, "Bob", 100); !errors.Is(err, ErrSeatTaken) {
		t.Errorf("expected ErrSeatTaken, got %v", err)
	}
}

func TestStartHandRequiresTwoPlayers(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100)

	if err := tbl.StartHand(); !errors.Is(err, ErrLackOfPlayers) {
		t.Fatalf("expected ErrLackOfPlayers with one seat, got %v", err)
	}

	if err := tbl.Seat(1, "Bob", 100); err != nil {
		t.Fatalf("seat failed: %v", err)
	}
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand with two players failed: %v", err)
	}

	st := tbl.State()
	if !st.HandActive {
		t.Error("hand should be active")
	}
	if st.ToAct == -1 {
		t.Error("someone should be awaiting action")
	}
	if err := tbl.StartHand(); !errors.Is(err, ErrHandInProgress) {
		t.Errorf("expected ErrHandInProgress, got %v", err)
	}
}

func TestBlindsPosted(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100, 100)
	rec := &eventRecorder{}
	tbl.Events().Subscribe(rec)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	st := tbl.State()
	if st.Button != 0 {
		t.Fatalf("first hand button should be seat 0, got %d", st.Button)
	}
	if st.Seats[1].TotalBet != 1 || st.Seats[2].TotalBet != 2 {
		t.Errorf("blinds not posted: sb=%d bb=%d", st.Seats[1].TotalBet, st.Seats[2].TotalBet)
	}
	if st.ToAct != 0 {
		t.Errorf("action should open on the seat after the big blind, got %d", st.ToAct)
	}
	if st.CurrentBet != 2 {
		t.Errorf("amount to call should be the big blind, got %d", st.CurrentBet)
	}

	blinds := 0
	for _, e := range rec.events {
		if e.EventType() == EventTypeBlindPosted {
			blinds++
		}
	}
	if blinds != 2 {
		t.Errorf("expected 2 blind events, got %d", blinds)
	}
}

func TestHeadsUpButtonPostsSmallBlind(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	st := tbl.State()
	if st.Button != 0 {
		t.Fatalf("button should be seat 0, got %d", st.Button)
	}
	if st.Seats[0].TotalBet != 1 || st.Seats[1].TotalBet != 2 {
		t.Errorf("heads-up blinds wrong: %d/%d", st.Seats[0].TotalBet, st.Seats[1].TotalBet)
	}
	// Preflop the small blind (button) acts first heads-up.
	if st.ToAct != 0 {
		t.Errorf("small blind should act first, got seat %d", st.ToAct)
	}
}

// The reference all-in scenario: three 100-chip stacks, blinds (1,2).
// Everyone limps would be too quiet; instead Charlie jams, Bob calls,
// Alice folds. One pot of 202 (including Alice's dead 2), Bob and Charlie
// eligible.
func TestPreflopAllInScenario(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100, 100)
	pre := totalChips(tbl)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	// Button 0, SB seat 1 (Bob), BB seat 2 (Charlie), Alice first to act.
	if err := tbl.SubmitAction(0, Action{Type: Call}); err != nil {
		t.Fatalf("Alice call failed: %v", err)
	}
	if err := tbl.SubmitAction(1, Action{Type: Call}); err != nil {
		t.Fatalf("Bob call failed: %v", err)
	}
	if err := tbl.SubmitAction(2, Action{Type: AllIn}); err != nil {
		t.Fatalf("Charlie all-in failed: %v", err)
	}
	if err := tbl.SubmitAction(0, Action{Type: Fold}); err != nil {
		t.Fatalf("Alice fold failed: %v", err)
	}

	if err := tbl.SetShowdownHand(1, 40); err != nil {
		t.Fatalf("set hand failed: %v", err)
	}
	if err := tbl.SetShowdownHand(2, 80); err != nil {
		t.Fatalf("set hand failed: %v", err)
	}

	st := tbl.State()
	if len(st.Pots) != 1 {
		t.Fatalf("expected a single pot before the call, got %+v", st.Pots)
	}

	if err := tbl.SubmitAction(1, Action{Type: AllIn}); err != nil {
		t.Fatalf("Bob calling all-in failed: %v", err)
	}

	st = tbl.State()
	if st.HandActive {
		t.Fatal("hand should have settled")
	}
	// Charlie's better hand scoops 202: his 100, Bob's 100, Alice's dead 2.
	if st.Seats[2].Chips != 202 {
		t.Errorf("Charlie should hold 202, got %d", st.Seats[2].Chips)
	}
	if st.Seats[1].Chips != 0 || st.Seats[1].Status != StatusSittingOut.String() {
		t.Errorf("Bob should be felted and sitting out, got %d %s", st.Seats[1].Chips, st.Seats[1].Status)
	}
	if st.Seats[0].Chips != 98 {
		t.Errorf("Alice should hold 98, got %d", st.Seats[0].Chips)
	}
	if got := totalChips(tbl); got != pre {
		t.Errorf("chips not conserved: %d before, %d after", pre, got)
	}
}

func TestChipConservationThroughHand(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 150, 80, 220)
	pre := totalChips(tbl)

	check := func() {
		t.Helper()
		inPlay := 0
		st := tbl.State()
		for _, s := range st.Seats {
			inPlay += s.Chips + s.TotalBet
		}
		if inPlay != pre {
			t.Fatalf("stacks plus pots diverged: %d, want %d", inPlay, pre)
		}
	}

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	check()

	script := []struct {
		seat int
		act  Action
	}{
		{0, Action{Type: Raise, Amount: 6}},
		{1, Action{Type: Call}},
		{2, Action{Type: Call}},
		// Flop: SB first.
		{1, Action{Type: Check}},
		{2, Action{Type: Bet, Amount: 10}},
		{0, Action{Type: Call}},
		{1, Action{Type: Fold}},
		// Turn.
		{2, Action{Type: Check}},
		{0, Action{Type: Check}},
		// River.
		{2, Action{Type: Bet, Amount: 20}},
		{0, Action{Type: Call}},
	}
	for i, step := range script {
		if i == len(script)-1 {
			// Showdown follows the final call.
			if err := tbl.SetShowdownHand(0, 60); err != nil {
				t.Fatalf("set hand failed: %v", err)
			}
			if err := tbl.SetShowdownHand(2, 30); err != nil {
				t.Fatalf("set hand failed: %v", err)
			}
		}
		if err := tbl.SubmitAction(step.seat, step.act); err != nil {
			t.Fatalf("step %d seat %d %s failed: %v", i, step.seat, step.act.Type, err)
		}
		check()
	}

	st := tbl.State()
	if st.HandActive {
		t.Fatal("hand should be over after the river call")
	}
	// Pot: 6*3 preflop + 10*2 flop + 20*2 river = 78, to Alice.
	if st.Seats[0].Chips != 150-36+78 {
		t.Errorf("Alice should hold 192, got %d", st.Seats[0].Chips)
	}
}

func TestEarlyTerminationByFolds(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100, 100)
	rec := &eventRecorder{}
	tbl.Events().Subscribe(rec)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	if err := tbl.SubmitAction(0, Action{Type: Fold}); err != nil {
		t.Fatalf("fold failed: %v", err)
	}
	if err := tbl.SubmitAction(1, Action{Type: Fold}); err != nil {
		t.Fatalf("fold failed: %v", err)
	}

	st := tbl.State()
	if st.HandActive {
		t.Fatal("hand should end when all but one fold")
	}
	// Big blind wins the small blind without showdown.
	if st.Seats[2].Chips != 101 {
		t.Errorf("Charlie should hold 101, got %d", st.Seats[2].Chips)
	}

	for _, e := range rec.events {
		if he, ok := e.(HandEndEvent); ok {
			if he.Showdown {
				t.Error("fold-out must not be reported as a showdown")
			}
			return
		}
	}
	t.Error("no HandEndEvent observed")
}

func TestLeaveMidHandIsImplicitFold(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100, 100)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	// Alice is due to act and leaves.
	if err := tbl.Leave(0); err != nil {
		t.Fatalf("leave failed: %v", err)
	}

	st := tbl.State()
	if !st.HandActive {
		t.Fatal("hand should continue between the blinds")
	}
	if st.ToAct != 1 {
		t.Errorf("action should have passed to Bob, got %d", st.ToAct)
	}
	if len(st.Seats) != 2 {
		t.Errorf("Alice's seat should be vacated, got %d seats", len(st.Seats))
	}

	if err := tbl.Leave(0); !errors.Is(err, ErrSeatNotFound) {
		t.Errorf("leaving twice should report ErrSeatNotFound, got %v", err)
	}
}

func TestOutOfTurnSubmission(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100, 100)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	err := tbl.SubmitAction(2, Action{Type: Call})
	var oot *OutOfTurnError
	if !errors.As(err, &oot) {
		t.Fatalf("expected OutOfTurnError, got %v", err)
	}
	if oot.Current != 0 {
		t.Errorf("expected action on seat 0, got %d", oot.Current)
	}
}

func TestForceDefaultActionChecksWhenFree(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	// Heads-up: button/SB seat 0 completes, BB times out with nothing owed.
	if err := tbl.SubmitAction(0, Action{Type: Call}); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if err := tbl.ForceDefaultAction(1); err != nil {
		t.Fatalf("forced default failed: %v", err)
	}

	st := tbl.State()
	if st.Street != "flop" {
		t.Errorf("timeout with no bet should check to the flop, got %s", st.Street)
	}
	if st.Seats[1].Status != StatusActive.String() {
		t.Errorf("big blind must not be folded by a free timeout, got %s", st.Seats[1].Status)
	}
}

func TestForceDefaultActionFoldsWhenFacingBet(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100, 100)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	if err := tbl.SubmitAction(0, Action{Type: Raise, Amount: 10}); err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if err := tbl.ForceDefaultAction(1); err != nil {
		t.Fatalf("forced default failed: %v", err)
	}

	st := tbl.State()
	if st.Seats[1].Status != StatusFolded.String() {
		t.Errorf("timeout facing a raise should fold, got %s", st.Seats[1].Status)
	}

	// Timer firing for the wrong seat must be rejected, not applied.
	if err := tbl.ForceDefaultAction(0); err == nil {
		t.Error("stale timeout for a seat not on turn should fail")
	}
}

func TestShortBlindCreatesAllInLevel(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 1)
	pre := totalChips(tbl)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	// Bob could only post 1 of the big blind and is already all-in.
	st := tbl.State()
	if st.Seats[1].Status != StatusAllIn.String() {
		t.Fatalf("short big blind should be all-in, got %s", st.Seats[1].Status)
	}
	// The amount to call is still the full big blind.
	if st.CurrentBet != 2 {
		t.Errorf("amount to call should remain 2, got %d", st.CurrentBet)
	}

	if err := tbl.SetShowdownHand(0, 10); err != nil {
		t.Fatalf("set hand failed: %v", err)
	}
	if err := tbl.SetShowdownHand(1, 90); err != nil {
		t.Fatalf("set hand failed: %v", err)
	}
	if err := tbl.SubmitAction(0, Action{Type: Call}); err != nil {
		t.Fatalf("call failed: %v", err)
	}

	st = tbl.State()
	if st.HandActive {
		t.Fatal("hand should run out to showdown")
	}
	// Bob wins the 2-chip main pot he covered; Alice's uncalled 1 returns.
	if st.Seats[1].Chips != 2 {
		t.Errorf("Bob should hold 2, got %d", st.Seats[1].Chips)
	}
	if st.Seats[0].Chips != 99 {
		t.Errorf("Alice should hold 99, got %d", st.Seats[0].Chips)
	}
	if got := totalChips(tbl); got != pre {
		t.Errorf("chips not conserved: %d vs %d", got, pre)
	}
}

func TestMissingShowdownHandAborts(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100)
	rec := &eventRecorder{}
	tbl.Events().Subscribe(rec)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	script := []struct {
		seat int
		act  Action
	}{
		{0, Action{Type: Call}}, {1, Action{Type: Check}},
		{1, Action{Type: Check}}, {0, Action{Type: Check}},
		{1, Action{Type: Check}}, {0, Action{Type: Check}},
		{1, Action{Type: Check}},
	}
	for _, step := range script {
		if err := tbl.SubmitAction(step.seat, step.act); err != nil {
			t.Fatalf("seat %d %s failed: %v", step.seat, step.act.Type, err)
		}
	}

	// Final check reaches showdown with no hands supplied: the hand must
	// abort with stacks rolled back, never half-settle.
	err := tbl.SubmitAction(0, Action{Type: Check})
	var internal *InternalError
	if !errors.As(err, &internal) {
		t.Fatalf("expected InternalError, got %v", err)
	}

	st := tbl.State()
	if st.HandActive {
		t.Fatal("aborted hand should be torn down")
	}
	if st.Seats[0].Chips != 100 || st.Seats[1].Chips != 100 {
		t.Errorf("stacks must roll back to pre-hand values, got %d/%d", st.Seats[0].Chips, st.Seats[1].Chips)
	}

	aborted := false
	for _, e := range rec.events {
		if e.EventType() == EventTypeHandAborted {
			aborted = true
		}
	}
	if !aborted {
		t.Error("expected a HandAbortedEvent on the stream")
	}
}

func TestHandProviderSuppliesShowdown(t *testing.T) {
	t.Parallel()
	provider := providerFunc(func(seat int) (Hand, error) {
		return seat * 10, nil // seat 1 beats seat 0
	})
	tbl, err := NewTable("t1", 1, 2, 6, intOracle, WithHandProvider(provider))
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	for seat := 0; seat < 2; seat++ {
		if err := tbl.Seat(seat, names[seat], 50); err != nil {
			t.Fatalf("seat failed: %v", err)
		}
	}

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	script := []struct {
		seat int
		act  Action
	}{
		{0, Action{Type: Call}}, {1, Action{Type: Check}},
		{1, Action{Type: Check}}, {0, Action{Type: Check}},
		{1, Action{Type: Check}}, {0, Action{Type: Check}},
		{1, Action{Type: Check}}, {0, Action{Type: Check}},
	}
	for _, step := range script {
		if err := tbl.SubmitAction(step.seat, step.act); err != nil {
			t.Fatalf("seat %d %s failed: %v", step.seat, step.act.Type, err)
		}
	}

	st := tbl.State()
	if st.HandActive {
		t.Fatal("hand should have settled via the provider")
	}
	if st.Seats[1].Chips != 52 {
		t.Errorf("Bob should win the 4-chip pot, got %d", st.Seats[1].Chips)
	}
}

type providerFunc func(seat int) (Hand, error)

func (f providerFunc) ShowdownHand(seat int) (Hand, error) {
	return f(seat)
}

func TestButtonRotatesBetweenHands(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100, 100)

	playFoldOut := func() {
		t.Helper()
		if err := tbl.StartHand(); err != nil {
			t.Fatalf("StartHand failed: %v", err)
		}
		for tbl.State().HandActive {
			st := tbl.State()
			if err := tbl.SubmitAction(st.ToAct, Action{Type: Fold}); err != nil {
				t.Fatalf("fold failed: %v", err)
			}
		}
	}

	playFoldOut()
	first := tbl.State().Button
	playFoldOut()
	second := tbl.State().Button
	if first != 0 || second != 1 {
		t.Errorf("button should walk 0 then 1, got %d then %d", first, second)
	}
}

func TestJournalIsOrderedAndAppendOnly(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 1, 2, 100, 100, 100)

	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	j1 := tbl.Journal()
	if len(j1) == 0 || j1[0].EventType() != EventTypeHandStart {
		t.Fatalf("journal should open with hand_start, got %v", j1)
	}

	if err := tbl.SubmitAction(0, Action{Type: Call}); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	j2 := tbl.Journal()
	if len(j2) <= len(j1) {
		t.Fatal("journal should grow after an action")
	}
	for i := range j1 {
		if j2[i].EventType() != j1[i].EventType() {
			t.Fatal("journal prefix changed: not append-only")
		}
	}
}
