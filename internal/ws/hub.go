package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
	"vibechat-service/internal/observability"
	"vibechat-service/internal/rabbitmq"
)

// RoutingKey is the topic websocket lifecycle events are published under.
const RoutingKey = "ws_events.sessions"

const (
	writeTimeout = 10 * time.Second
	// sendQueueSize bounds the frames buffered per connection. A client that
	// falls this far behind is disconnected.
	sendQueueSize = 64
)

var errSlowConsumer = errors.New("send queue full")

type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one websocket connection. Frames go through send and are written
// by the connection's own writer goroutine.
type Client struct {
	conn wsConn
	info ConnInfo
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- payload:
		return true
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) stop() {
	c.once.Do(func() { close(c.done) })
}

// Hub tracks live websocket connections per user and pushes store events.
type Hub struct {
	users     map[string]map[*Client]struct{}
	mu        sync.RWMutex
	publisher rabbitmq.Publisher
	log       zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(publisher rabbitmq.Publisher, log zerolog.Logger) *Hub {
	return &Hub{
		users:     make(map[string]map[*Client]struct{}),
		publisher: publisher,
		log:       log.With().Str("component", "ws_hub").Logger(),
	}
}

// Add registers a connection for info.UserID and starts its writer.
func (h *Hub) Add(conn wsConn, info ConnInfo) *Client {
	c := &Client{
		conn: conn,
		info: info,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	if _, ok := h.users[info.UserID]; !ok {
		h.users[info.UserID] = make(map[*Client]struct{})
	}
	h.users[info.UserID][c] = struct{}{}
	h.mu.Unlock()
	go h.writeLoop(c)
	return c
}

func (h *Hub) writeLoop(c *Client) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.drop(c, err)
				return
			}
		}
	}
}

// drop closes a failed connection and reports it once.
func (h *Hub) drop(c *Client, err error) {
	h.log.Warn().Err(err).Str("user_id", c.info.UserID).Str("conn_id", c.info.ConnID).Msg("websocket write error")
	c.stop()
	_ = c.conn.Close()
	if h.Remove(c) {
		observability.DecWSActive()
		h.publishWSEvent(context.Background(), c.info, "ws_error", err.Error())
	}
}

// Remove drops a connection and stops its writer. Removing twice is a no-op.
func (h *Hub) Remove(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.stop()
	conns, ok := h.users[c.info.UserID]
	if !ok {
		return false
	}
	if _, ok := conns[c]; !ok {
		return false
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.users, c.info.UserID)
	}
	return true
}

// Connections reports how many sockets userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// SendToUser queues ev on every connection of userID without waiting for the
// socket. Connections whose queue is full are closed and dropped.
func (h *Hub) SendToUser(userID string, ev models.StoreEvent) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.users[userID]))
	for c := range h.users[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Str("type", ev.Type).Msg("encode store event")
		return
	}
	for _, c := range clients {
		if !c.enqueue(payload) {
			h.drop(c, errSlowConsumer)
		}
	}
}

func (h *Hub) publishWSEvent(ctx context.Context, info ConnInfo, event, reason string) {
	observability.IncWSEvent(event)
	if h.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"ws":       info.lifecycle(event, reason, time.Now()),
		"identity": info.identity(),
		"trace_id": info.TraceID,
	}
	ctx = observability.WithRequestID(ctx, info.RequestID)
	if err := h.publisher.Publish(ctx, RoutingKey, map[string]interface{}{
		"event_type": "ws_events",
		"event_name": event,
		"payload":    payload,
	}); err != nil {
		h.log.Warn().Err(err).Str("event", event).Msg("ws event publish failed")
	}
}
