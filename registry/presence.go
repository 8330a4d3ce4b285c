package registry

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/maxswackygames-dev/nexus-chat/domain"
)

// PresenceStore keeps the most recent status of every user seen. It never
// broadcasts; announcing changes is the dispatcher's job.
type PresenceStore struct {
	records map[domain.UserID]domain.Presence
	now     func() time.Time
	mu      sync.RWMutex
}

func NewPresenceStore(now func() time.Time) *PresenceStore {
	if now == nil {
		now = time.Now
	}
	return &PresenceStore{
		records: make(map[domain.UserID]domain.Presence),
		now:     now,
	}
}

// SetStatus upserts the record for userID stamped with the current time.
func (s *PresenceStore) SetStatus(userID domain.UserID, status domain.Status) domain.Presence {
	p := domain.Presence{UserID: userID, Status: status, LastSeenAt: s.now()}

	s.mu.Lock()
	s.records[userID] = p
	s.mu.Unlock()

	return p
}

func (s *PresenceStore) Status(userID domain.UserID) (domain.Presence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.records[userID]
	return p, ok
}

// Online returns the ids of users currently marked online, in ascending order.
func (s *PresenceStore) Online() []domain.UserID {
	s.mu.RLock()
	ids := lo.FilterMap(lo.Values(s.records), func(p domain.Presence, _ int) (domain.UserID, bool) {
		return p.UserID, p.Status == domain.StatusOnline
	})
	s.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

func (s *PresenceStore) Snapshot() []domain.Presence {
	s.mu.RLock()
	records := lo.Values(s.records)
	s.mu.RUnlock()

	slices.SortFunc(records, func(a, b domain.Presence) int {
		return cmp.Compare(a.UserID, b.UserID)
	})
	return records
}

// Sweep drops offline records last seen more than retention ago and returns
// how many were removed. Online and away records are kept.
func (s *PresenceStore) Sweep(retention time.Duration) int {
	if retention <= 0 {
		return 0
	}
	cutoff := s.now().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, p := range s.records {
		if p.Status == domain.StatusOffline && p.LastSeenAt.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

func (s *PresenceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
