package models

import "time"

type EventType string

const (
	EventSwipe       EventType = "swipe"
	EventTradeQueued EventType = "trade.submitted"
	EventTx          EventType = "tx"
	EventDeck        EventType = "deck"
	EventDrag        EventType = "drag"
	EventPortfolio   EventType = "portfolio"
)

// Event is published to the event bus and streamed to connected clients.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	At        time.Time   `json:"at"`
	Data      interface{} `json:"data"`
}
