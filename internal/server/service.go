package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/cardroom/internal/engine"
	"github.com/lox/cardroom/internal/handid"
)

// nextHandDelay is the pause between a settled hand and the automatic start
// of the next one on auto-start tables.
const nextHandDelay = 2 * time.Second

// Broadcaster delivers messages to every client watching a table. *Server
// implements it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastToTable(tableID string, msg *Message)
}

// hostedTable pairs an engine table with its server-side bookkeeping.
type hostedTable struct {
	cfg    TableConfig
	table  *engine.Table
	timer  *ActionTimer
	logger *log.Logger

	mu      sync.Mutex
	players map[string]int // playerName -> seat
	handID  string         // identifier of the hand in flight
}

func (h *hostedTable) setHandID(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handID = id
}

func (h *hostedTable) currentHandID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handID
}

func (h *hostedTable) seatOf(playerName string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	seat, ok := h.players[playerName]
	return seat, ok
}

// TableService owns the engine tables and bridges them to the transport:
// client requests go in through it, engine events come back out through the
// per-table subscriber and are broadcast.
type TableService struct {
	broadcaster Broadcaster
	logger      *log.Logger
	clock       quartz.Clock
	timeout     time.Duration
	oracle      engine.Oracle
	provider    engine.HandProvider

	mu     sync.RWMutex
	tables map[string]*hostedTable
}

// NewTableService creates the service and opens a table per configuration
// entry. The oracle and provider are shared by all tables.
func NewTableService(broadcaster Broadcaster, logger *log.Logger, clock quartz.Clock, cfg *ServerConfig, oracle engine.Oracle, provider engine.HandProvider) (*TableService, error) {
	svc := &TableService{
		broadcaster: broadcaster,
		logger:      logger.WithPrefix("tables"),
		clock:       clock,
		timeout:     time.Duration(cfg.Server.ActionTimeoutSeconds) * time.Second,
		oracle:      oracle,
		provider:    provider,
		tables:      make(map[string]*hostedTable),
	}

	for _, tc := range cfg.Tables {
		if err := svc.OpenTable(tc); err != nil {
			return nil, fmt.Errorf("table %s: %w", tc.Name, err)
		}
	}
	return svc, nil
}

// OpenTable registers a new table under its configured name.
func (svc *TableService) OpenTable(tc TableConfig) error {
	table, err := engine.NewTable(tc.Name, tc.SmallBlind, tc.BigBlind, tc.MaxSeats, svc.oracle,
		engine.WithHandProvider(svc.provider))
	if err != nil {
		return err
	}

	host := &hostedTable{
		cfg:     tc,
		table:   table,
		timer:   NewActionTimer(svc.clock, svc.timeout),
		logger:  svc.logger.With("table", tc.Name),
		players: make(map[string]int),
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if _, exists := svc.tables[tc.Name]; exists {
		return fmt.Errorf("table %s already exists", tc.Name)
	}
	svc.tables[tc.Name] = host

	table.Events().Subscribe(&tableEventSubscriber{svc: svc, host: host})
	host.logger.Info("Table opened", "stakes", fmt.Sprintf("%d/%d", tc.SmallBlind, tc.BigBlind), "maxSeats", tc.MaxSeats)
	return nil
}

func (svc *TableService) host(tableID string) (*hostedTable, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	host, ok := svc.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("table not found: %s", tableID)
	}
	return host, nil
}

// JoinTable seats a player, choosing the first free seat unless one was
// requested. On auto-start tables a hand begins as soon as two players with
// chips are seated.
func (svc *TableService) JoinTable(tableID, playerName string, seatNumber *int, buyIn int) (int, error) {
	host, err := svc.host(tableID)
	if err != nil {
		return 0, err
	}

	if buyIn < host.cfg.BuyInMin || buyIn > host.cfg.BuyInMax {
		return 0, fmt.Errorf("buy-in %d outside [%d,%d]", buyIn, host.cfg.BuyInMin, host.cfg.BuyInMax)
	}

	host.mu.Lock()
	if _, dup := host.players[playerName]; dup {
		host.mu.Unlock()
		return 0, fmt.Errorf("player %s already seated at %s", playerName, tableID)
	}
	host.mu.Unlock()

	seat, err := svc.takeSeat(host, playerName, seatNumber, buyIn)
	if err != nil {
		return 0, err
	}

	host.mu.Lock()
	host.players[playerName] = seat
	host.mu.Unlock()

	host.logger.Info("Player seated", "player", playerName, "seat", seat, "buyIn", buyIn)

	if host.cfg.AutoStart {
		svc.startIfReady(host)
	}
	return seat, nil
}

func (svc *TableService) takeSeat(host *hostedTable, playerName string, seatNumber *int, buyIn int) (int, error) {
	if seatNumber != nil {
		if err := host.table.Seat(*seatNumber, playerName, buyIn); err != nil {
			return 0, err
		}
		return *seatNumber, nil
	}

	occupied := make(map[int]bool)
	for _, s := range host.table.State().Seats {
		occupied[s.Seat] = true
	}
	for seat := 0; seat < host.cfg.MaxSeats; seat++ {
		if occupied[seat] {
			continue
		}
		if err := host.table.Seat(seat, playerName, buyIn); err != nil {
			if err == engine.ErrSeatTaken {
				continue
			}
			return 0, err
		}
		return seat, nil
	}
	return 0, fmt.Errorf("table %s is full", host.cfg.Name)
}

// LeaveTable removes a player. Mid-hand departures fold implicitly; all-in
// departures play to showdown with the seat vacated at settlement.
func (svc *TableService) LeaveTable(tableID, playerName string) error {
	host, err := svc.host(tableID)
	if err != nil {
		return err
	}

	seat, ok := host.seatOf(playerName)
	if !ok {
		return fmt.Errorf("player %s not seated at %s", playerName, tableID)
	}

	if err := host.table.Leave(seat); err != nil {
		return err
	}

	host.mu.Lock()
	delete(host.players, playerName)
	host.mu.Unlock()

	host.logger.Info("Player left", "player", playerName, "seat", seat)
	return nil
}

// SubmitAction validates player identity and routes the action to the
// engine. Engine rejections come back to the submitter only.
func (svc *TableService) SubmitAction(playerName string, data SubmitActionData) error {
	host, err := svc.host(data.TableID)
	if err != nil {
		return err
	}

	seat, ok := host.seatOf(playerName)
	if !ok {
		return fmt.Errorf("player %s not seated at %s", playerName, data.TableID)
	}

	actionType, ok := engine.ParseActionType(data.Action)
	if !ok {
		return fmt.Errorf("invalid action: %s", data.Action)
	}

	return host.table.SubmitAction(seat, engine.Action{Type: actionType, Amount: data.Amount})
}

// StartHand starts a hand on demand.
func (svc *TableService) StartHand(tableID string) error {
	host, err := svc.host(tableID)
	if err != nil {
		return err
	}
	return host.table.StartHand()
}

// GetState returns the table snapshot.
func (svc *TableService) GetState(tableID string) (engine.TableState, error) {
	host, err := svc.host(tableID)
	if err != nil {
		return engine.TableState{}, err
	}
	return host.table.State(), nil
}

// ListTables summarizes all open tables.
func (svc *TableService) ListTables() []TableInfo {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	infos := make([]TableInfo, 0, len(svc.tables))
	for _, host := range svc.tables {
		st := host.table.State()
		infos = append(infos, TableInfo{
			ID:         st.TableID,
			SeatCount:  len(st.Seats),
			MaxSeats:   st.MaxSeats,
			Stakes:     fmt.Sprintf("%d/%d", st.SmallBlind, st.BigBlind),
			HandActive: st.HandActive,
		})
	}
	return infos
}

// Stop cancels all pending action clocks.
func (svc *TableService) Stop() {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for _, host := range svc.tables {
		host.timer.Stop()
	}
}

// startIfReady starts a hand when the table can seat one. Races with an
// in-flight hand or a thin table resolve to doing nothing.
func (svc *TableService) startIfReady(host *hostedTable) {
	err := host.table.StartHand()
	switch err {
	case nil, engine.ErrHandInProgress, engine.ErrLackOfPlayers:
	default:
		host.logger.Error("Failed to start hand", "error", err)
	}
}

// expireAction resolves a fired action clock: check when free, fold
// otherwise. A clock that lost the race to a real action is ignored.
func (svc *TableService) expireAction(host *hostedTable, seat int) {
	st := host.table.State()
	if !st.HandActive || st.ToAct != seat {
		return
	}

	applied := "fold"
	for _, s := range st.Seats {
		if s.Seat == seat && s.StreetBet == st.CurrentBet {
			applied = "check"
		}
	}

	if err := host.table.ForceDefaultAction(seat); err != nil {
		host.logger.Debug("Stale action clock", "seat", seat, "error", err)
		return
	}

	host.logger.Warn("Action clock expired", "seat", seat, "applied", applied)
	if msg, err := NewMessage(MessageTypePlayerTimeout, PlayerTimeoutData{
		TableID:        host.cfg.Name,
		Seat:           seat,
		TimeoutSeconds: int(svc.timeout / time.Second),
		Action:         applied,
	}); err == nil {
		svc.broadcaster.BroadcastToTable(host.cfg.Name, msg)
	}
}

// tableEventSubscriber translates engine events into broadcast messages and
// drives the action clock. Engine events arrive synchronously under the
// table lock, so the subscriber never calls back into the table directly;
// anything that must act on the table is deferred through the clock.
type tableEventSubscriber struct {
	svc  *TableService
	host *hostedTable
}

func (tes *tableEventSubscriber) OnEvent(event engine.Event) {
	tableID := tes.host.cfg.Name

	switch e := event.(type) {
	case engine.HandStartEvent:
		tes.host.setHandID(handid.New())
		tes.broadcast(MessageTypeHandStart, HandStartData{
			TableID:    tableID,
			HandID:     tes.host.currentHandID(),
			HandNumber: e.HandNumber,
			Seats:      e.Seats,
			Button:     e.Button,
			SmallBlind: e.SmallBlind,
			BigBlind:   e.BigBlind,
		})

	case engine.BlindPostedEvent:
		tes.broadcast(MessageTypeBlindPosted, BlindPostedData{
			TableID: tableID,
			Seat:    e.Seat,
			Blind:   e.Blind,
			Amount:  e.Amount,
			AllIn:   e.AllIn,
		})

	case engine.ActionTakenEvent:
		tes.broadcast(MessageTypeActionTaken, ActionTakenData{
			TableID:      tableID,
			Seat:         e.Seat,
			Action:       e.Action.Type.String(),
			Amount:       e.Action.Amount,
			Contribution: e.Contribution,
			PotAfter:     e.Pot,
		})

	case engine.AwaitingActionEvent:
		tes.broadcast(MessageTypeActionRequired, ActionRequiredData{
			TableID:        tableID,
			Seat:           e.Seat,
			ToCall:         e.ToCall,
			MinRaise:       e.MinRaise,
			ValidActions:   ValidActionInfosFromEngine(e.Legal),
			TimeoutSeconds: int(tes.svc.timeout / time.Second),
		})
		seat := e.Seat
		tes.host.timer.Arm(seat, func(int) {
			tes.svc.expireAction(tes.host, seat)
		})

	case engine.StreetAdvancedEvent:
		tes.broadcast(MessageTypeStreetAdvanced, StreetAdvancedData{
			TableID: tableID,
			Street:  e.Street,
			Reveal:  e.Reveal,
			Pot:     e.Pot,
		})

	case engine.PotAwardedEvent:
		tes.broadcast(MessageTypePotAwarded, PotAwardedData{
			TableID:  tableID,
			PotIndex: e.PotIndex,
			Amount:   e.Amount,
			Winners:  e.Winners,
			Shares:   e.Shares,
		})

	case engine.HandEndEvent:
		tes.host.timer.Stop()
		tes.broadcast(MessageTypeHandEnd, HandEndData{
			TableID:    tableID,
			HandID:     tes.host.currentHandID(),
			HandNumber: e.HandNumber,
			Showdown:   e.Showdown,
			Winnings:   e.Winnings,
		})
		if tes.host.cfg.AutoStart {
			host := tes.host
			tes.svc.clock.AfterFunc(nextHandDelay, func() {
				tes.svc.startIfReady(host)
			})
		}

	case engine.HandAbortedEvent:
		tes.host.timer.Stop()
		tes.broadcast(MessageTypeHandAborted, HandAbortedData{
			TableID:    tableID,
			HandID:     tes.host.currentHandID(),
			HandNumber: e.HandNumber,
			Reason:     e.Reason,
		})
	}
}

func (tes *tableEventSubscriber) broadcast(mt MessageType, data interface{}) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		tes.host.logger.Error("Failed to encode broadcast", "type", mt, "error", err)
		return
	}
	tes.svc.broadcaster.BroadcastToTable(tes.host.cfg.Name, msg)
}
