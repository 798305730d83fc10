package api

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"corrlab/domain/core"
	"corrlab/domain/sample"
	"corrlab/internal"
	"corrlab/internal/explorer"
)

// StateEvent is the SSE payload published for every committed snapshot
type StateEvent struct {
	EventType   string            `json:"event_type"`
	Revision    uint64            `json:"revision"`
	Parameters  sample.Parameters `json:"parameters"`
	Mode        string            `json:"mode"`
	Correlation float64           `json:"correlation"`
	Summary     string            `json:"summary"`
	Fingerprint string            `json:"fingerprint"`
	GeneratedAt core.Timestamp    `json:"generated_at"`
}

// NewStateEvent builds the event for a snapshot
func NewStateEvent(snap explorer.Snapshot) StateEvent {
	return StateEvent{
		EventType:   "state",
		Revision:    snap.Revision,
		Parameters:  snap.Parameters,
		Mode:        snap.Mode.String(),
		Correlation: snap.Correlation,
		Summary:     snap.SummaryText(),
		Fingerprint: snap.Fingerprint().Short(),
		GeneratedAt: snap.GeneratedAt,
	}
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID      core.ClientID
	Channel chan StateEvent
	ready   chan struct{}
}

// SSEHub fans snapshot events out to every connected browser
type SSEHub struct {
	clients    map[core.ClientID]chan StateEvent
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan core.ClientID
	broadcast  chan StateEvent
	done       chan struct{}
	closeOnce  sync.Once
	logger     *internal.Logger

	keepAlive time.Duration
}

// NewSSEHub creates a new SSE hub and starts its dispatch loop
func NewSSEHub(logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	hub := &SSEHub{
		clients:    make(map[core.ClientID]chan StateEvent),
		register:   make(chan SSEClient, 10),
		unregister: make(chan core.ClientID, 10),
		broadcast:  make(chan StateEvent, 100),
		done:       make(chan struct{}),
		logger:     logger.WithComponent("SSE"),
		keepAlive:  30 * time.Second,
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client.ID] = client.Channel
			h.logger.Debug("client %s registered (total clients: %d)", client.ID, len(h.clients))
			h.clientsMu.Unlock()
			close(client.ready)

		case id := <-h.unregister:
			h.clientsMu.Lock()
			if ch, exists := h.clients[id]; exists {
				delete(h.clients, id)
				close(ch)
				h.logger.Debug("client %s unregistered (remaining clients: %d)", id, len(h.clients))
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for id, ch := range h.clients {
				select {
				case ch <- event:
				default:
					h.logger.Warn("client %s channel full, skipping revision %d", id, event.Revision)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			h.clientsMu.Lock()
			for id, ch := range h.clients {
				close(ch)
				delete(h.clients, id)
			}
			h.clientsMu.Unlock()
			return
		}
	}
}

// Publish queues a snapshot for every connected client. It matches the
// explorer observer signature.
func (h *SSEHub) Publish(snap explorer.Snapshot) {
	h.Broadcast(NewStateEvent(snap))
}

// Broadcast sends an event to all connected clients
func (h *SSEHub) Broadcast(event StateEvent) {
	select {
	case h.broadcast <- event:
	case <-h.done:
	default:
		h.logger.Warn("broadcast channel full, dropping revision %d", event.Revision)
	}
}

// Connect registers a new client and returns its event channel. The
// channel is closed on Disconnect or Close.
func (h *SSEHub) Connect() (core.ClientID, <-chan StateEvent, bool) {
	client := SSEClient{
		ID:      core.NewClientID(),
		Channel: make(chan StateEvent, 10),
		ready:   make(chan struct{}),
	}
	select {
	case h.register <- client:
	case <-h.done:
		return "", nil, false
	}
	select {
	case <-client.ready:
		return client.ID, client.Channel, true
	case <-h.done:
		return "", nil, false
	}
}

// Disconnect removes a client
func (h *SSEHub) Disconnect(id core.ClientID) {
	select {
	case h.unregister <- id:
	case <-h.done:
	}
}

// Close stops the dispatch loop and closes every client channel
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// HandleSSE streams state events until the client goes away. initial, when
// set, is sent first so a fresh page does not wait for the next change.
func (h *SSEHub) HandleSSE(c *gin.Context, initial *StateEvent) {
	id, events, ok := h.Connect()
	if !ok {
		c.JSON(503, gin.H{"error": "event stream is shutting down"})
		return
	}
	defer h.Disconnect(id)

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	if initial != nil {
		h.send(c, *initial)
	}

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-events:
			if !open {
				return false
			}
			h.send(c, event)
			return true

		case <-time.After(h.keepAlive):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

func (h *SSEHub) send(c *gin.Context, event StateEvent) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event: %v", err)
		return
	}
	c.SSEvent(event.EventType, string(eventJSON))
	c.Writer.Flush()
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
