package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxswackygames-dev/nexus-chat/domain"
)

type mockConn struct {
	id string
}

func (m *mockConn) ID() string             { return m.id }
func (m *mockConn) Send(data []byte) error { return nil }
func (m *mockConn) Close() error           { return nil }

func TestConnections_RegisterOverwrites(t *testing.T) {
	c := NewConnections()
	first := &mockConn{id: "first"}
	second := &mockConn{id: "second"}

	_, replaced := c.Register(1, first)
	require.False(t, replaced)

	prev, replaced := c.Register(1, second)
	require.True(t, replaced)
	assert.Equal(t, "first", prev.ID())

	conn, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "second", conn.ID())
	assert.Equal(t, 1, c.Len())

	_, ok = c.UserOf(first)
	assert.False(t, ok)
}

func TestConnections_RegisterSameConnectionTwice(t *testing.T) {
	c := NewConnections()
	conn := &mockConn{id: "a"}

	c.Register(1, conn)
	_, replaced := c.Register(1, conn)

	assert.False(t, replaced)
	assert.Equal(t, 1, c.Len())
}

func TestConnections_ConnectionSwitchesUser(t *testing.T) {
	c := NewConnections()
	conn := &mockConn{id: "a"}

	c.Register(1, conn)
	c.Register(2, conn)

	_, ok := c.Lookup(1)
	assert.False(t, ok)
	userID, ok := c.UserOf(conn)
	require.True(t, ok)
	assert.Equal(t, domain.UserID(2), userID)
	assert.Equal(t, 1, c.Len())
}

func TestConnections_Unregister(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*Connections) domain.Connection
		wantUser   domain.UserID
		wantOK     bool
		wantRemain int
	}{
		{
			name: "known connection",
			setup: func(c *Connections) domain.Connection {
				conn := &mockConn{id: "a"}
				c.Register(1, conn)
				c.Register(2, &mockConn{id: "b"})
				return conn
			},
			wantUser:   1,
			wantOK:     true,
			wantRemain: 1,
		},
		{
			name: "unknown connection",
			setup: func(c *Connections) domain.Connection {
				c.Register(1, &mockConn{id: "a"})
				return &mockConn{id: "ghost"}
			},
			wantOK:     false,
			wantRemain: 1,
		},
		{
			name: "replaced connection keeps newer one",
			setup: func(c *Connections) domain.Connection {
				old := &mockConn{id: "old"}
				c.Register(1, old)
				c.Register(1, &mockConn{id: "new"})
				return old
			},
			wantOK:     false,
			wantRemain: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConnections()
			conn := tt.setup(c)

			userID, ok := c.Unregister(conn)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantUser, userID)
			assert.Equal(t, tt.wantRemain, c.Len())
		})
	}
}

func TestPresenceStore_SetStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewPresenceStore(func() time.Time { return now })

	_, ok := s.Status(1)
	require.False(t, ok)

	s.SetStatus(1, domain.StatusOnline)
	now = now.Add(time.Second)
	p := s.SetStatus(1, domain.StatusAway)

	got, ok := s.Status(1)
	require.True(t, ok)
	assert.Equal(t, p, got)
	assert.Equal(t, domain.StatusAway, got.Status)
	assert.Equal(t, now, got.LastSeenAt)
	assert.Equal(t, 1, s.Len())
}

func TestPresenceStore_Online(t *testing.T) {
	s := NewPresenceStore(nil)
	s.SetStatus(3, domain.StatusOnline)
	s.SetStatus(1, domain.StatusOnline)
	s.SetStatus(2, domain.StatusAway)
	s.SetStatus(4, domain.StatusOffline)

	assert.Equal(t, []domain.UserID{1, 3}, s.Online())

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 4)
	assert.Equal(t, domain.UserID(1), snapshot[0].UserID)
	assert.Equal(t, domain.UserID(4), snapshot[3].UserID)
}

func TestPresenceStore_Sweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewPresenceStore(func() time.Time { return now })

	s.SetStatus(1, domain.StatusOffline)
	s.SetStatus(2, domain.StatusOnline)
	s.SetStatus(3, domain.StatusAway)
	now = now.Add(30 * time.Minute)
	s.SetStatus(4, domain.StatusOffline)
	now = now.Add(45 * time.Minute)

	assert.Zero(t, s.Sweep(0))
	assert.Equal(t, 1, s.Sweep(time.Hour))

	_, ok := s.Status(1)
	assert.False(t, ok)
	assert.Equal(t, 3, s.Len())
}

func TestTypingRegistry_StartStop(t *testing.T) {
	r := NewTypingRegistry(nil)
	room := domain.ChannelRoom(5)
	ref := domain.RoomRef{ChannelID: 5}

	r.Start(room, 1, ref)
	r.Start(room, 2, ref)

	got, ok := r.Get(room)
	require.True(t, ok)
	assert.Equal(t, domain.UserID(2), got.UserID)
	assert.Equal(t, 1, r.Len())

	stopped, ok := r.Stop(room)
	require.True(t, ok)
	assert.Equal(t, domain.UserID(2), stopped.UserID)

	_, ok = r.Stop(room)
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestTypingRegistry_Expire(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewTypingRegistry(func() time.Time { return now })

	r.Start(domain.ChannelRoom(1), 1, domain.RoomRef{ChannelID: 1})
	now = now.Add(8 * time.Second)
	r.Start(domain.DirectMessageRoom(2), 2, domain.RoomRef{DirectMessageID: 2})
	now = now.Add(4 * time.Second)

	assert.Nil(t, r.Expire(0))

	expired := r.Expire(10 * time.Second)
	require.Len(t, expired, 1)
	assert.Equal(t, domain.ChannelRoom(1), expired[0].Room)
	assert.Equal(t, domain.ChannelID(1), expired[0].ChannelID)

	_, ok := r.Get(domain.DirectMessageRoom(2))
	assert.True(t, ok)
}
