package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"luciadash/internal/logging"
)

var sseClientGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "luciadash",
	Subsystem: "sse",
	Name:      "clients",
	Help:      "Currently connected dashboard event stream clients.",
})

// sendTimeout is how long a broadcast waits on one client before
// treating it as dead.
const sendTimeout = 500 * time.Millisecond

// SSEClient represents one connected dashboard browser.
type SSEClient struct {
	Messages chan string
	Close    chan bool
}

// NewSSEClient creates a client with the standard buffer sizes.
func NewSSEClient() *SSEClient {
	return &SSEClient{
		Messages: make(chan string, 256),
		Close:    make(chan bool, 1),
	}
}

// SSEManager fans dashboard updates out to all connected clients. It
// implements the Broadcaster interface the activity hub, the poller and
// the notifier publish through.
type SSEManager struct {
	mu      sync.RWMutex
	clients map[*SSEClient]bool
}

// NewSSEManager creates an empty SSE manager.
func NewSSEManager() *SSEManager {
	return &SSEManager{
		clients: make(map[*SSEClient]bool),
	}
}

// Register adds a connected client.
func (m *SSEManager) Register(client *SSEClient) {
	m.mu.Lock()
	m.clients[client] = true
	sseClientGauge.Set(float64(len(m.clients)))
	m.mu.Unlock()
}

// Unregister removes a client.
func (m *SSEManager) Unregister(client *SSEClient) {
	m.mu.Lock()
	delete(m.clients, client)
	sseClientGauge.Set(float64(len(m.clients)))
	m.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (m *SSEManager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Broadcast sends an event to every connected client. Clients that
// don't drain their buffer within the send timeout are evicted so one
// stalled browser can't block the fan-out.
func (m *SSEManager) Broadcast(event string, payload interface{}) {
	m.mu.RLock()
	clients := make([]*SSEClient, 0, len(m.clients))
	for client := range m.clients {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	message, err := FormatSSE(event, payload)
	if err != nil {
		logging.Errorf("Failed to marshal SSE message: %v", err)
		return
	}

	var dead []*SSEClient
	for _, client := range clients {
		select {
		case client.Messages <- message:
		case <-time.After(sendTimeout):
			dead = append(dead, client)
		}
	}

	if len(dead) == 0 {
		return
	}

	m.mu.Lock()
	for _, client := range dead {
		delete(m.clients, client)
		select {
		case client.Close <- true:
		default:
		}
	}
	sseClientGauge.Set(float64(len(m.clients)))
	m.mu.Unlock()
	logging.Printf("Evicted %d unresponsive SSE clients", len(dead))
}

// FormatSSE renders one server-sent event frame.
func FormatSSE(event string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", event, data), nil
}
