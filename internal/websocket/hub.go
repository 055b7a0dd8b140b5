package websocket

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub tracks connected clients keyed by ID and indexed by role so that
// alerts can be targeted at fleet managers and admins without touching
// driver connections.
type Hub struct {
	clients    map[string]*Client
	byRole     map[string]map[string]*Client
	register   chan *Client
	unregister chan *Client
	emit       chan targetedEvent
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	done       chan struct{}
}

type targetedEvent struct {
	event  Event
	role   string
	userID string
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		byRole:     make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		emit:       make(chan targetedEvent, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		done: make(chan struct{}),
	}
}

// Start begins the hub's main loop
func (h *Hub) Start() {
	go h.run()
	log.Println("WebSocket hub started")
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	close(h.done)

	h.mutex.Lock()
	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.clients = make(map[string]*Client)
	h.byRole = make(map[string]map[string]*Client)
	h.mutex.Unlock()

	log.Println("WebSocket hub stopped")
}

func (h *Hub) run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
			log.Printf("Client %s (role %s) connected", client.ID, client.Role)
			go h.handleClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
			log.Printf("Client %s disconnected", client.ID)

		case te := <-h.emit:
			h.dispatch(te)

		case <-ticker.C:
			h.healthCheck()

		case <-h.done:
			return
		}
	}
}

// RegisterClient registers an authenticated connection with the hub
func (h *Hub) RegisterClient(userID, role string, conn *websocket.Conn) {
	client := &Client{
		ID:       fmt.Sprintf("%s-%d", userID, time.Now().UnixNano()),
		UserID:   userID,
		Role:     role,
		Conn:     conn,
		Send:     make(chan Event, 64),
		LastPing: time.Now(),
	}

	h.register <- client
}

// EmitToRole queues an event for every client holding the given role
func (h *Hub) EmitToRole(role string, event Event) {
	h.queue(targetedEvent{event: event, role: role})
}

// EmitToUser queues an event for every connection of one user
func (h *Hub) EmitToUser(userID string, event Event) {
	h.queue(targetedEvent{event: event, userID: userID})
}

// EmitToAll queues an event for every connected client
func (h *Hub) EmitToAll(event Event) {
	h.queue(targetedEvent{event: event})
}

func (h *Hub) queue(te targetedEvent) {
	select {
	case h.emit <- te:
	default:
		log.Printf("Event channel full, dropping %s event", te.event.Type)
	}
}

// GetUpgrader returns the WebSocket upgrader for the connection handler
func (h *Hub) GetUpgrader() *websocket.Upgrader {
	return &h.upgrader
}

// Stats returns the current connection counts
func (h *Hub) Stats() HubStats {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	stats := HubStats{
		TotalClients:  len(h.clients),
		ClientsByRole: make(map[string]int),
	}
	for role, clients := range h.byRole {
		stats.ClientsByRole[role] = len(clients)
	}

	return stats
}

func (h *Hub) addClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client.ID] = client
	if h.byRole[client.Role] == nil {
		h.byRole[client.Role] = make(map[string]*Client)
	}
	h.byRole[client.Role][client.ID] = client
}

func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	delete(h.clients, client.ID)
	if roleClients := h.byRole[client.Role]; roleClients != nil {
		delete(roleClients, client.ID)
		if len(roleClients) == 0 {
			delete(h.byRole, client.Role)
		}
	}

	close(client.Send)
	if client.Conn != nil {
		client.Conn.Close()
	}
}

func (h *Hub) dispatch(te targetedEvent) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	switch {
	case te.role != "":
		for _, client := range h.byRole[te.role] {
			h.send(client, te.event)
		}
	case te.userID != "":
		for _, client := range h.clients {
			if client.UserID == te.userID {
				h.send(client, te.event)
			}
		}
	default:
		for _, client := range h.clients {
			h.send(client, te.event)
		}
	}
}

func (h *Hub) send(client *Client, event Event) {
	select {
	case client.Send <- event:
	default:
		log.Printf("Client %s send channel full, dropping %s event", client.ID, event.Type)
	}
}

// handleClient manages one client connection until it drops
func (h *Hub) handleClient(client *Client) {
	defer func() {
		h.unregister <- client
	}()

	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		h.touch(client)
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.writeMessages(client)

	// Clients only receive; drain incoming frames so pongs and close
	// messages are processed.
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for client %s: %v", client.ID, err)
			}
			break
		}
	}
}

func (h *Hub) writeMessages(client *Client) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteJSON(event); err != nil {
				log.Printf("Error writing to client %s: %v", client.ID, err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Error sending ping to client %s: %v", client.ID, err)
				return
			}
		}
	}
}

// touch records a pong. It runs on the client's read goroutine while
// healthCheck reads LastPing under the hub lock, so the write takes
// the lock too.
func (h *Hub) touch(client *Client) {
	h.mutex.Lock()
	client.LastPing = time.Now()
	h.mutex.Unlock()
}

func (h *Hub) healthCheck() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	now := time.Now()
	for id, client := range h.clients {
		if now.Sub(client.LastPing) > 90*time.Second {
			log.Printf("Client %s timed out, removing", id)
			delete(h.clients, id)
			if roleClients := h.byRole[client.Role]; roleClients != nil {
				delete(roleClients, id)
				if len(roleClients) == 0 {
					delete(h.byRole, client.Role)
				}
			}
			close(client.Send)
			if client.Conn != nil {
				client.Conn.Close()
			}
		}
	}
}
