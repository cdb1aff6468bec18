package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"busreserve/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope written to websocket clients.
type Message struct {
	Type string       `json:"type"`
	Data models.Event `json:"data"`
}

// Client is one websocket connection following a single trip.
type Client struct {
	TripID      string
	Participant models.Participant
	Conn        *websocket.Conn
	Send        chan []byte
	Hub         *Hub
}

// Hub tracks connected clients per trip and fans lifecycle events out to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Debug("Realtime client connected",
				zap.String("tripId", client.TripID), zap.String("participant", client.Participant.ID))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			h.logger.Debug("Realtime client disconnected", zap.String("tripId", client.TripID))
		}
	}
}

// BroadcastToTrip queues message for every client following tripID. Slow clients are dropped.
func (h *Hub) BroadcastToTrip(tripID string, message []byte) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	sent := 0
	for client := range h.clients {
		if client.TripID != tripID {
			continue
		}
		select {
		case client.Send <- message:
			sent++
		default:
			close(client.Send)
			delete(h.clients, client)
			h.logger.Warn("Dropped slow realtime client", zap.String("tripId", tripID))
		}
	}
	return sent
}

// Dispatch makes the hub a notification target for in-process delivery.
func (h *Hub) Dispatch(_ context.Context, event models.Event) error {
	data, err := json.Marshal(Message{Type: string(event.Type), Data: event})
	if err != nil {
		return err
	}
	h.BroadcastToTrip(event.TripID, data)
	return nil
}

// ConnectedClients returns the number of open connections.
func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeTrip upgrades the request and follows tripID on behalf of participant.
func (h *Hub) ServeTrip(w http.ResponseWriter, r *http.Request, tripID string, participant models.Participant) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := &Client{
		TripID:      tripID,
		Participant: participant,
		Conn:        conn,
		Send:        make(chan []byte, sendBuffer),
		Hub:         h,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump only watches for close and pong frames; clients do not send commands.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Realtime read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Warn("Realtime write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
