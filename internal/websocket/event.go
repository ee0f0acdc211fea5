package websocket

import (
	"encoding/json"
	"time"
)

// Event represents a WebSocket event pushed to leaderboard clients
type Event struct {
	Type      string      `json:"type"`
	Entity    string      `json:"entity"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Event type constants
const (
	EventUsersUpdated    = "users.updated"
	EventActivityUpdated = "activity.updated"
)

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType, entity string, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Entity:    entity,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// NewUsersUpdatedEvent carries the full sorted user snapshot
func NewUsersUpdatedEvent(payload interface{}) Event {
	return NewEvent(EventUsersUpdated, "users", payload)
}

// NewActivityUpdatedEvent carries the recent activity snapshot
func NewActivityUpdatedEvent(payload interface{}) Event {
	return NewEvent(EventActivityUpdated, "activity", payload)
}

// ToJSON serializes the event to JSON
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
