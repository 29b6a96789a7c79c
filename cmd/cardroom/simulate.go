package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/cardroom/internal/engine"
	"github.com/lox/cardroom/internal/server"
)

// SimulateCmd drives self-play hands through the engine to shake out rule
// and accounting bugs: every hand is checked for chip conservation.
type SimulateCmd struct {
	Hands    int    `default:"1000" help:"Hands to play per table"`
	Tables   int    `default:"4" help:"Tables to run in parallel"`
	Players  int    `default:"6" help:"Players per table"`
	BuyIn    int    `default:"200" help:"Starting stack per player"`
	Seed     int64  `default:"0" help:"RNG seed (0 for random)"`
	LogLevel string `short:"l" default:"info" help:"Log level"`
}

func (c *SimulateCmd) Run() error {
	logger := setupLogger(c.LogLevel)

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("Starting simulation",
		"hands", c.Hands, "tables", c.Tables, "players", c.Players, "seed", seed)

	start := time.Now()
	var g errgroup.Group
	results := make([]tableResult, c.Tables)

	for i := 0; i < c.Tables; i++ {
		i := i
		g.Go(func() error {
			res, err := c.runTable(logger, seed+int64(i), i)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	total := 0
	for _, res := range results {
		total += res.hands
	}
	logger.Info("Simulation complete",
		"hands", total,
		"elapsed", time.Since(start),
		"handsPerSec", fmt.Sprintf("%.0f", float64(total)/time.Since(start).Seconds()))
	return nil
}

type tableResult struct {
	hands int
}

func (c *SimulateCmd) runTable(logger *log.Logger, seed int64, index int) (tableResult, error) {
	tableID := fmt.Sprintf("sim-%d", index)
	tlog := logger.WithPrefix("sim").With("table", tableID)

	dealer := server.NewRandomDealer(seed)
	table, err := engine.NewTable(tableID, 1, 2, c.Players, dealer.Oracle(),
		engine.WithHandProvider(dealer))
	if err != nil {
		return tableResult{}, err
	}

	for seat := 0; seat < c.Players; seat++ {
		if err := table.Seat(seat, fmt.Sprintf("sim-%d-%d", index, seat), c.BuyIn); err != nil {
			return tableResult{}, err
		}
	}
	bankroll := c.Players * c.BuyIn

	rng := rand.New(rand.NewSource(seed))
	res := tableResult{}

	for hand := 0; hand < c.Hands; hand++ {
		if err := table.StartHand(); err == engine.ErrLackOfPlayers {
			tlog.Info("Table thinned out", "handsPlayed", res.hands)
			return res, nil
		} else if err != nil {
			return res, err
		}

		for {
			st := table.State()
			if !st.HandActive {
				break
			}
			if err := table.SubmitAction(st.ToAct, choose(rng, st)); err != nil {
				return res, fmt.Errorf("hand %d seat %d: %w", hand, st.ToAct, err)
			}
		}

		total := 0
		for _, s := range table.State().Seats {
			total += s.Chips
		}
		if total != bankroll {
			return res, fmt.Errorf("hand %d: chips not conserved, %d != %d", hand, total, bankroll)
		}
		res.hands++
	}

	tlog.Debug("Table finished", "hands", res.hands)
	return res, nil
}

// choose implements a loose-passive policy with occasional aggression, enough
// to reach every engine path: checks, calls, short all-ins, raises and folds.
func choose(rng *rand.Rand, st engine.TableState) engine.Action {
	var me engine.SeatState
	for _, s := range st.Seats {
		if s.Seat == st.ToAct {
			me = s
		}
	}
	toCall := st.CurrentBet - me.StreetBet

	if toCall == 0 {
		if rng.Intn(5) == 0 && me.Chips > st.MinRaise {
			if st.CurrentBet == 0 {
				return engine.Action{Type: engine.Bet, Amount: st.MinRaise}
			}
			return engine.Action{Type: engine.Raise, Amount: st.CurrentBet + st.MinRaise}
		}
		return engine.Action{Type: engine.Check}
	}

	if rng.Intn(6) == 0 {
		return engine.Action{Type: engine.Fold}
	}
	if me.Chips <= toCall {
		return engine.Action{Type: engine.AllIn}
	}
	if rng.Intn(8) == 0 && me.Chips+me.StreetBet >= st.CurrentBet+st.MinRaise {
		return engine.Action{Type: engine.Raise, Amount: st.CurrentBet + st.MinRaise}
	}
	return engine.Action{Type: engine.Call}
}
