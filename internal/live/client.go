package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/revelare/revelare-web/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	pingPeriod     = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 4 * 1024
	sendBuffer     = 16
)

// Client is one live connection. Every frame is written by WritePump.
type Client struct {
	ID          string
	UserID      string
	Conn        *websocket.Conn
	Send        chan []byte
	ConnectedAt time.Time

	limiter *rate.Limiter
	log     *logger.Logger

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, userID string, log *logger.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		ID:          id,
		UserID:      userID,
		Conn:        conn,
		Send:        make(chan []byte, sendBuffer),
		ConnectedAt: time.Now(),
		// 20 messages per 10s, as a steady rate with a burst of 20
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 20),
		log:     log.WithContext("client_id", id),
	}
}

// Enqueue queues msg for the writer. A full buffer drops the message: a
// newer result will follow.
func (c *Client) Enqueue(msg ServerMessage) bool {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("live_encode_failed", "type", string(msg.Type), "error", err.Error())
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		c.log.Warn("live_send_buffer_full", "type", string(msg.Type))
		return false
	}
}

// Shutdown stops accepting messages. Queued frames are still written,
// then the writer sends a close frame.
func (c *Client) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// ReadPump feeds decoded messages to handle until the connection drops.
func (c *Client) ReadPump(handle func(ClientMessage)) {
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn("live_read_error", "error", err.Error())
			}
			return
		}
		if !c.limiter.Allow() {
			c.Enqueue(ServerMessage{Type: MessageTypeError, Error: "rate limit exceeded"})
			continue
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.Enqueue(ServerMessage{Type: MessageTypeError, Error: "malformed message"})
			continue
		}
		handle(msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
