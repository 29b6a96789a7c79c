package server

import (
	"encoding/json"
	"time"

	"github.com/lox/cardroom/internal/engine"
)

// MessageType identifies a WebSocket message
type MessageType string

const (
	// Client → Server
	MessageTypeAuth         MessageType = "auth"
	MessageTypeJoinTable    MessageType = "join_table"
	MessageTypeLeaveTable   MessageType = "leave_table"
	MessageTypeListTables   MessageType = "list_tables"
	MessageTypeSubmitAction MessageType = "submit_action"
	MessageTypeStartHand    MessageType = "start_hand"
	MessageTypeGetState     MessageType = "get_state"

	// Server → Client
	MessageTypeAuthResponse   MessageType = "auth_response"
	MessageTypeTableJoined    MessageType = "table_joined"
	MessageTypeTableLeft      MessageType = "table_left"
	MessageTypeTableList      MessageType = "table_list"
	MessageTypeTableState     MessageType = "table_state"
	MessageTypeHandStart      MessageType = "hand_start"
	MessageTypeBlindPosted    MessageType = "blind_posted"
	MessageTypeActionTaken    MessageType = "action_taken"
	MessageTypeActionRequired MessageType = "action_required"
	MessageTypeStreetAdvanced MessageType = "street_advanced"
	MessageTypePotAwarded     MessageType = "pot_awarded"
	MessageTypeHandEnd        MessageType = "hand_end"
	MessageTypeHandAborted    MessageType = "hand_aborted"
	MessageTypePlayerTimeout  MessageType = "player_timeout"
	MessageTypeError          MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

type JoinTableData struct {
	TableID    string `json:"tableId"`
	SeatNumber *int   `json:"seatNumber,omitempty"`
	BuyIn      int    `json:"buyIn"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

type SubmitActionData struct {
	TableID string `json:"tableId"`
	Action  string `json:"action"`
	Amount  int    `json:"amount,omitempty"`
}

type StartHandData struct {
	TableID string `json:"tableId"`
}

type GetStateData struct {
	TableID string `json:"tableId"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableInfo struct {
	ID         string `json:"id"`
	SeatCount  int    `json:"seatCount"`
	MaxSeats   int    `json:"maxSeats"`
	Stakes     string `json:"stakes"`
	HandActive bool   `json:"handActive"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type TableJoinedData struct {
	TableID    string            `json:"tableId"`
	SeatNumber int               `json:"seatNumber"`
	State      engine.TableState `json:"state"`
}

type HandStartData struct {
	TableID    string `json:"tableId"`
	HandID     string `json:"handId"`
	HandNumber int    `json:"handNumber"`
	Seats      []int  `json:"seats"`
	Button     int    `json:"button"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
}

type BlindPostedData struct {
	TableID string `json:"tableId"`
	Seat    int    `json:"seat"`
	Blind   string `json:"blind"`
	Amount  int    `json:"amount"`
	AllIn   bool   `json:"allIn"`
}

type ActionTakenData struct {
	TableID      string `json:"tableId"`
	Seat         int    `json:"seat"`
	Action       string `json:"action"`
	Amount       int    `json:"amount"`
	Contribution int    `json:"contribution"`
	PotAfter     int    `json:"potAfter"`
}

type ValidActionInfo struct {
	Action    string `json:"action"`
	MinAmount int    `json:"minAmount,omitempty"`
	MaxAmount int    `json:"maxAmount,omitempty"`
}

type ActionRequiredData struct {
	TableID        string            `json:"tableId"`
	Seat           int               `json:"seat"`
	ToCall         int               `json:"toCall"`
	MinRaise       int               `json:"minRaise"`
	ValidActions   []ValidActionInfo `json:"validActions"`
	TimeoutSeconds int               `json:"timeoutSeconds"`
}

type StreetAdvancedData struct {
	TableID string `json:"tableId"`
	Street  string `json:"street"`
	Reveal  bool   `json:"reveal"`
	Pot     int    `json:"pot"`
}

type PotAwardedData struct {
	TableID  string      `json:"tableId"`
	PotIndex int         `json:"potIndex"`
	Amount   int         `json:"amount"`
	Winners  []int       `json:"winners"`
	Shares   map[int]int `json:"shares"`
}

type HandEndData struct {
	TableID    string      `json:"tableId"`
	HandID     string      `json:"handId"`
	HandNumber int         `json:"handNumber"`
	Showdown   bool        `json:"showdown"`
	Winnings   map[int]int `json:"winnings"`
}

type HandAbortedData struct {
	TableID    string `json:"tableId"`
	HandID     string `json:"handId"`
	HandNumber int    `json:"handNumber"`
	Reason     string `json:"reason"`
}

type PlayerTimeoutData struct {
	TableID        string `json:"tableId"`
	Seat           int    `json:"seat"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	Action         string `json:"action"` // the action applied on timeout (fold/check)
}

// Helper functions to convert between engine types and message types

func ValidActionInfoFromEngine(va engine.ValidAction) ValidActionInfo {
	return ValidActionInfo{
		Action:    va.Type.String(),
		MinAmount: va.Min,
		MaxAmount: va.Max,
	}
}

func ValidActionInfosFromEngine(vas []engine.ValidAction) []ValidActionInfo {
	out := make([]ValidActionInfo, len(vas))
	for i, va := range vas {
		out[i] = ValidActionInfoFromEngine(va)
	}
	return out
}
