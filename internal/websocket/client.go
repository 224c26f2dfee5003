package websocket

import (
	"context"
	"sync"
	"time"

	"realtime-chat-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Dispatcher handles the inbound side of a connection. Dispatch is called
// from the connection's read loop, one frame at a time.
type Dispatcher interface {
	Dispatch(ctx context.Context, connID string, raw []byte)
	Disconnect(connID string)
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger logger.ILogger

	maxFrameSize int64
}

func NewClient(conn *websocket.Conn, bufferSize int, maxFrameSize int64, log logger.ILogger) *Client {
	return &Client{
		conn:         conn,
		send:         make(chan []byte, bufferSize),
		done:         make(chan struct{}),
		logger:       log,
		maxFrameSize: maxFrameSize,
	}
}

// Send queues a frame for the write loop without blocking.
func (c *Client) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close stops the write loop, which closes the socket and so ends the read
// loop. Safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

// Serve runs the connection until it closes. The read loop runs on the
// calling goroutine; fiber closes the socket when it returns.
func (c *Client) Serve(ctx context.Context, connID string, d Dispatcher) {
	go c.writePump(connID)
	c.readPump(ctx, connID, d)
}

func (c *Client) readPump(ctx context.Context, connID string, d Dispatcher) {
	defer func() {
		d.Disconnect(connID)
		c.Close()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(c.maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("CLIENT", "Unexpected close", map[string]interface{}{"conn_id": connID, "error": err.Error()})
			}
			return
		}
		d.Dispatch(ctx, connID, raw)
	}
}

// writePump writes one queued frame per websocket message and keeps the
// connection alive with pings.
func (c *Client) writePump(connID string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn("CLIENT", "Write failed", map[string]interface{}{"conn_id": connID, "error": err.Error()})
				c.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
