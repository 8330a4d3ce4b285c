package websocket

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxswackygames-dev/nexus-chat/domain"
)

type recordingHandler struct {
	connected    chan string
	disconnected chan string
	frames       chan []byte
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		connected:    make(chan string, 1),
		disconnected: make(chan string, 1),
		frames:       make(chan []byte, 8),
	}
}

func (h *recordingHandler) Connect(conn domain.Connection)    { h.connected <- conn.ID() }
func (h *recordingHandler) Disconnect(conn domain.Connection) { h.disconnected <- conn.ID() }

// Handle echoes every frame back to the sender.
func (h *recordingHandler) Handle(conn domain.Connection, data []byte) {
	h.frames <- data
	_ = conn.Send(data)
}

func startServer(t *testing.T, h domain.Handler) (*httptest.Server, *sync.Map) {
	t.Helper()
	conns := &sync.Map{}
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewConn("conn-1", ws, h, WithSendBuffer(4), WithMaxMessageSize(1024))
		conns.Store(c.ID(), c)
		c.Start()
	}))
	t.Cleanup(srv.Close)
	return srv, conns
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return ws
}

func receive[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestConn_RoundTrip(t *testing.T) {
	h := newRecordingHandler()
	srv, _ := startServer(t, h)
	client := dial(t, srv)
	defer client.Close()

	assert.Equal(t, "conn-1", receive(t, h.connected))

	frame, err := domain.Encode(domain.EventUserJoin, domain.UserJoin{UserID: 1})
	require.NoError(t, err)
	require.NoError(t, client.WriteMessage(websocket.TextMessage, frame))

	assert.Equal(t, frame, receive(t, h.frames))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, echoed, err := client.ReadMessage()
	require.NoError(t, err)

	var env domain.Envelope
	require.NoError(t, json.Unmarshal(echoed, &env))
	assert.Equal(t, domain.EventUserJoin, env.Event)
}

func TestConn_DisconnectOnClientClose(t *testing.T) {
	h := newRecordingHandler()
	srv, conns := startServer(t, h)
	client := dial(t, srv)
	receive(t, h.connected)

	require.NoError(t, client.Close())

	assert.Equal(t, "conn-1", receive(t, h.disconnected))

	v, ok := conns.Load("conn-1")
	require.True(t, ok)
	c := v.(*Conn)
	require.Eventually(t, func() bool {
		return errors.Is(c.Send([]byte("late")), net.ErrClosed)
	}, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, c.Close())
}

func TestConn_SendBufferFull(t *testing.T) {
	c := NewConn("idle", nil, newRecordingHandler(), WithSendBuffer(2))

	require.NoError(t, c.Send([]byte("1")))
	require.NoError(t, c.Send([]byte("2")))

	assert.ErrorIs(t, c.Send([]byte("3")), domain.ErrSendBufferFull)
}
