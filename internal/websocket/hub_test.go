package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, hub *Hub, userID, role string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := hub.GetUpgrader().Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.RegisterClient(userID, role, conn)
	}))
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func TestHubRegistersAndCountsClients(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	server := newHubServer(t, hub, "user-1", "driver")
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	stats := hub.Stats()
	assert.Equal(t, 1, stats.TotalClients)
	assert.Equal(t, 1, stats.ClientsByRole["driver"])
}

func TestHubEmitToAll(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	server := newHubServer(t, hub, "user-1", "driver")
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	hub.EmitToAll(NewEvent(EventTripStatusChanged, map[string]string{"tripId": "abc"}))

	event := readEvent(t, conn)
	assert.Equal(t, EventTripStatusChanged, event.Type)
	assert.False(t, event.Timestamp.IsZero())
}

func TestHubEmitToRoleTargetsOnlyThatRole(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	managerServer := newHubServer(t, hub, "manager-1", "fleet_manager")
	defer managerServer.Close()
	driverServer := newHubServer(t, hub, "driver-1", "driver")
	defer driverServer.Close()

	managerConn := dial(t, managerServer)
	defer managerConn.Close()
	driverConn := dial(t, driverServer)
	defer driverConn.Close()

	time.Sleep(100 * time.Millisecond)

	hub.EmitToRole("fleet_manager", NewEvent(EventOverdueTripAlert, map[string]string{"tripId": "abc"}))

	event := readEvent(t, managerConn)
	assert.Equal(t, EventOverdueTripAlert, event.Type)

	driverConn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err := driverConn.ReadMessage()
	assert.Error(t, err)
}

func TestHubEmitToUser(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	server := newHubServer(t, hub, "driver-1", "driver")
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	hub.EmitToUser("driver-1", NewEvent(EventTripStatusChanged, map[string]string{"status": "in_progress"}))

	event := readEvent(t, conn)
	assert.Equal(t, EventTripStatusChanged, event.Type)
}

func TestHubRemovesDisconnectedClients(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	server := newHubServer(t, hub, "user-1", "driver")
	defer server.Close()

	conn := dial(t, server)

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, hub.Stats().TotalClients)

	conn.Close()
	time.Sleep(200 * time.Millisecond)

	stats := hub.Stats()
	assert.Equal(t, 0, stats.TotalClients)
	assert.Empty(t, stats.ClientsByRole)
}

func TestHubPongUpdatesSurviveConcurrentHealthChecks(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	server := newHubServer(t, hub, "user-1", "driver")
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	hub.mutex.RLock()
	var client *Client
	for _, c := range hub.clients {
		client = c
	}
	hub.mutex.RUnlock()
	require.NotNil(t, client)

	// Pongs arrive on the read goroutine while the health ticker scans
	// LastPing; both must be safe to run at once.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.touch(client)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.healthCheck()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, hub.Stats().TotalClients)
}

func TestNewEventSetsTimestamp(t *testing.T) {
	event := NewEvent(EventMaintenanceAlert, nil)
	assert.Equal(t, EventMaintenanceAlert, event.Type)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Second)
}
