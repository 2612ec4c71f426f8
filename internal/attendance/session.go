package attendance

import (
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// Session is one attendance-taking run: a frozen identity store plus the
// per-identity debounce counters and the set of identities already committed.
type Session struct {
	ID        string
	StartedAt time.Time

	store     *Store
	index     *database.IdentityIndex
	threshold int

	mu        sync.Mutex
	counters  map[string]int
	committed map[string]bool
}

// newSession starts every loaded identity at a zero count.
func newSession(id string, startedAt time.Time, store *Store, index *database.IdentityIndex, threshold int) *Session {
	candidates := store.Snapshot()
	counters := make(map[string]int, len(candidates))
	for _, c := range candidates {
		counters[c.ID] = 0
	}
	return &Session{
		ID:        id,
		StartedAt: startedAt,
		store:     store,
		index:     index,
		threshold: threshold,
		counters:  counters,
		committed: make(map[string]bool),
	}
}

// observe counts one matched detection of id and reports whether the caller
// now owns the commit. The identity is marked committed before returning true,
// so concurrent frames never both commit it.
func (s *Session) observe(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[id]++
	count := s.counters[id]
	if count >= s.threshold && !s.committed[id] {
		s.committed[id] = true
		return count, true
	}
	return count, false
}

// release returns id to the uncommitted state after a failed write,
// so the next matched frame retries.
func (s *Session) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.committed, id)
}

// Counter returns the number of matched detections of id in this session.
func (s *Session) Counter(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[id]
}

// Committed reports whether attendance of id has been recorded in this session.
func (s *Session) Committed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed[id]
}

// SessionStatus is a point-in-time view of a session.
type SessionStatus struct {
	SessionID  string         `json:"session_id"`
	Active     bool           `json:"active"`
	StartedAt  time.Time      `json:"started_at"`
	Identities int            `json:"identities"`
	Threshold  int            `json:"frame_threshold"`
	Counters   map[string]int `json:"counters"`
	Committed  []string       `json:"committed"`
}

func (s *Session) status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := make(map[string]int, len(s.counters))
	for id, c := range s.counters {
		counters[id] = c
	}
	committed := make([]string, 0, len(s.committed))
	for id := range s.committed {
		committed = append(committed, id)
	}
	sort.Strings(committed)

	return SessionStatus{
		SessionID:  s.ID,
		Active:     s.ID != "",
		StartedAt:  s.StartedAt,
		Identities: s.store.Len(),
		Threshold:  s.threshold,
		Counters:   counters,
		Committed:  committed,
	}
}
