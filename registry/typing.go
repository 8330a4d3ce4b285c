package registry

import (
	"sync"
	"time"

	"github.com/maxswackygames-dev/nexus-chat/domain"
)

// TypingRegistry keeps one typer per room. A new start overwrites the
// previous occupant, and a stop clears the room whoever sends it.
type TypingRegistry struct {
	records map[domain.RoomKey]domain.Typing
	now     func() time.Time
	mu      sync.Mutex
}

func NewTypingRegistry(now func() time.Time) *TypingRegistry {
	if now == nil {
		now = time.Now
	}
	return &TypingRegistry{
		records: make(map[domain.RoomKey]domain.Typing),
		now:     now,
	}
}

// Start records userID as the typer of room.
func (r *TypingRegistry) Start(room domain.RoomKey, userID domain.UserID, ref domain.RoomRef) domain.Typing {
	t := domain.Typing{Room: room, UserID: userID, StartedAt: r.now(), RoomRef: ref}

	r.mu.Lock()
	r.records[room] = t
	r.mu.Unlock()

	return t
}

// Stop clears room and returns the record it held, if any.
func (r *TypingRegistry) Stop(room domain.RoomKey) (domain.Typing, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.records[room]
	delete(r.records, room)
	return t, ok
}

func (r *TypingRegistry) Get(room domain.RoomKey) (domain.Typing, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.records[room]
	return t, ok
}

// Expire removes and returns records started more than ttl ago.
func (r *TypingRegistry) Expire(ttl time.Duration) []domain.Typing {
	if ttl <= 0 {
		return nil
	}
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []domain.Typing
	for room, t := range r.records {
		if t.StartedAt.Before(cutoff) {
			expired = append(expired, t)
			delete(r.records, room)
		}
	}
	return expired
}

func (r *TypingRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
