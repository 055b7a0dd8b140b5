package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Event represents a notification pushed to connected clients
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client represents an authenticated WebSocket connection
type Client struct {
	ID       string
	UserID   string
	Role     string
	Conn     *websocket.Conn
	Send     chan Event
	LastPing time.Time
}

// EventEmitter is the contract the services use to push notifications
type EventEmitter interface {
	EmitToRole(role string, event Event)
	EmitToUser(userID string, event Event)
	EmitToAll(event Event)
}

// HubStats provides statistics about connected clients
type HubStats struct {
	TotalClients  int            `json:"totalClients"`
	ClientsByRole map[string]int `json:"clientsByRole"`
}

// Event types pushed over the socket
const (
	EventTripStatusChanged = "trip_status_changed"
	EventOverdueTripAlert  = "overdue_trip_alert"
	EventMaintenanceAlert  = "maintenance_alert"
)

// NewEvent stamps an event with the current time
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
}
