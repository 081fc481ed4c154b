package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"techconnect/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// Outbound buffer per client. A client that cannot drain this many
	// messages is treated as unreachable and pruned.
	sendBufferSize = 64
)

// controlMessage is what clients send over the socket to manage their
// channel subscriptions.
type controlMessage struct {
	Action  string `json:"action"`
	EventID string `json:"event_id"`
}

const (
	actionJoin  = "join:event"
	actionLeave = "leave:event"
)

// Client is one websocket connection registered with the broadcast hub.
// It implements domain.Subscriber.
type Client struct {
	hub    domain.Broadcaster
	conn   *websocket.Conn
	logger *slog.Logger

	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(hub domain.Broadcaster, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		logger: logger,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Notify queues a message for delivery. It never blocks: a full buffer or a
// finished client reports false so the hub can prune the subscription.
func (c *Client) Notify(msg *domain.BroadcastMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal broadcast message", "err", err)
		return true
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.hub.OnDisconnect(c)
	})
}

// readPump consumes join/leave control messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.close()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", "err", err)
			}
			return
		}
		var msg controlMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.EventID == "" {
			continue
		}
		switch msg.Action {
		case actionJoin:
			c.hub.Join(msg.EventID, c)
		case actionLeave:
			c.hub.Leave(msg.EventID, c)
		}
	}
}

// writePump flushes queued messages and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
