// Package websocket adapts gorilla websocket connections to domain.Connection.
package websocket

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maxswackygames-dev/nexus-chat/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	DefaultMaxMessageSize = 4096
	DefaultSendBuffer     = 256
)

type Conn struct {
	id             string
	ws             *websocket.Conn
	send           chan []byte
	done           chan struct{}
	closeOnce      sync.Once
	handler        domain.Handler
	maxMessageSize int64
}

var _ domain.Connection = (*Conn)(nil)

type Option func(*Conn)

func WithSendBuffer(size int) Option {
	return func(c *Conn) {
		if size > 0 {
			c.send = make(chan []byte, size)
		}
	}
}

func WithMaxMessageSize(size int64) Option {
	return func(c *Conn) {
		if size > 0 {
			c.maxMessageSize = size
		}
	}
}

func NewConn(id string, ws *websocket.Conn, h domain.Handler, opts ...Option) *Conn {
	c := &Conn{
		id:             id,
		ws:             ws,
		send:           make(chan []byte, DefaultSendBuffer),
		done:           make(chan struct{}),
		handler:        h,
		maxMessageSize: DefaultMaxMessageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conn) ID() string { return c.id }

// Send queues data without blocking. The frame is dropped when the
// connection is closed or its buffer is full.
func (c *Conn) Send(data []byte) error {
	select {
	case <-c.done:
		return net.ErrClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		return domain.ErrSendBufferFull
	}
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) Start() {
	c.handler.Connect(c)
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		c.handler.Disconnect(c)
		c.Close()
	}()

	c.ws.SetReadLimit(c.maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) && !errors.Is(err, net.ErrClosed) {
				slog.Error("read error", "clientId", c.id, "error", err)
			}
			return
		}

		c.handler.Handle(c, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Debug("write error", "clientId", c.id, "error", err)
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
