// Package protocol decodes client frames and turns them into registry
// updates and room or global broadcasts.
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maxswackygames-dev/nexus-chat/domain"
	"github.com/maxswackygames-dev/nexus-chat/registry"
)

type handlerFunc func(conn domain.Connection, data json.RawMessage) error

// Dispatcher owns the coordinator state for one process. It is built once at
// startup and shared by every connection.
type Dispatcher struct {
	router            domain.Router
	conns             *registry.Connections
	presence          *registry.PresenceStore
	typing            *registry.TypingRegistry
	validate          *validator.Validate
	handlers          map[string]handlerFunc
	now               func() time.Time
	typingTTL         time.Duration
	presenceRetention time.Duration
}

var _ domain.Handler = (*Dispatcher)(nil)

type Option func(*Dispatcher)

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithTypingTTL bounds how long a typing record survives without a stop.
// Zero keeps records until stopped or overwritten.
func WithTypingTTL(ttl time.Duration) Option {
	return func(d *Dispatcher) { d.typingTTL = ttl }
}

// WithPresenceRetention bounds how long offline presence records are kept.
func WithPresenceRetention(retention time.Duration) Option {
	return func(d *Dispatcher) { d.presenceRetention = retention }
}

func NewDispatcher(router domain.Router, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		router:   router,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.conns = registry.NewConnections()
	d.presence = registry.NewPresenceStore(d.now)
	d.typing = registry.NewTypingRegistry(d.now)
	d.handlers = d.routes()
	return d
}

func (d *Dispatcher) Connections() *registry.Connections { return d.conns }
func (d *Dispatcher) Presence() *registry.PresenceStore  { return d.presence }
func (d *Dispatcher) Typing() *registry.TypingRegistry   { return d.typing }

// Connect makes conn reachable by global broadcasts before it identifies itself.
func (d *Dispatcher) Connect(conn domain.Connection) {
	d.router.Attach(conn)
}

// Handle processes one inbound frame. Malformed frames, unknown events and
// invalid payloads are logged and dropped.
func (d *Dispatcher) Handle(conn domain.Connection, data []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("invalid frame", "clientId", conn.ID(), "error", err)
		return
	}

	handle, ok := d.handlers[env.Event]
	if !ok {
		slog.Warn("event dropped", "clientId", conn.ID(), "event", env.Event, "error", domain.ErrUnknownEvent)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panic", "clientId", conn.ID(), "event", env.Event, "panic", r)
		}
	}()

	if err := handle(conn, env.Data); err != nil {
		slog.Warn("event dropped", "clientId", conn.ID(), "event", env.Event, "error", err)
	}
}

// Disconnect tears down conn. The user goes offline only when conn was still
// their current connection.
func (d *Dispatcher) Disconnect(conn domain.Connection) {
	d.router.Detach(conn)

	userID, ok := d.conns.Unregister(conn)
	if !ok {
		return
	}
	p := d.presence.SetStatus(userID, domain.StatusOffline)
	slog.Info("user disconnected", "userId", userID, "clientId", conn.ID())

	d.announce(domain.EventUserOffline, domain.UserConnectivity{UserID: userID, Timestamp: p.LastSeenAt})
	d.announce(domain.EventPresenceChanged, domain.PresenceChanged{UserID: userID, Status: p.Status, Timestamp: p.LastSeenAt})
}

// Sweep expires stale typing records, telling their rooms the typer stopped,
// and prunes old offline presence records.
func (d *Dispatcher) Sweep() (typing, presence int) {
	expired := d.typing.Expire(d.typingTTL)
	for _, t := range expired {
		notice := domain.TypingNotice{UserID: t.UserID, RoomRef: t.RoomRef}
		if err := d.router.Broadcast(t.Room, domain.EventTypingInactive, notice); err != nil {
			slog.Warn("typing expiry broadcast failed", "room", t.Room, "error", err)
		}
	}
	presence = d.presence.Sweep(d.presenceRetention)

	if len(expired) > 0 || presence > 0 {
		slog.Debug("sweep", "typingExpired", len(expired), "presencePruned", presence)
	}
	return len(expired), presence
}

// Run sweeps every interval until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Sweep()
		}
	}
}

func (d *Dispatcher) announce(event string, payload any) {
	if err := d.router.BroadcastGlobal(event, payload); err != nil {
		slog.Warn("global broadcast failed", "event", event, "error", err)
	}
}

// on decodes and validates the payload before calling fn.
func on[T any](d *Dispatcher, fn func(conn domain.Connection, payload T) error) handlerFunc {
	return func(conn domain.Connection, data json.RawMessage) error {
		var payload T
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		if err := d.validate.Struct(payload); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		return fn(conn, payload)
	}
}
