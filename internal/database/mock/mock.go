// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// MockIdentityStore is a mock implementation of database.IdentityWriter
type MockIdentityStore struct {
	mu         sync.RWMutex
	identities map[string]database.StoredIdentity
	order      []string
	clock      time.Time

	// Error injection
	ListError   error
	GetError    error
	InsertError error
	DeleteError error
}

// NewMockIdentityStore creates a new mock identity store
func NewMockIdentityStore() *MockIdentityStore {
	return &MockIdentityStore{
		identities: make(map[string]database.StoredIdentity),
		clock:      time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

// AddIdentity adds a student to the mock store, replacing any previous entry with the same ID
func (m *MockIdentityStore) AddIdentity(identity database.StoredIdentity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(identity)
}

func (m *MockIdentityStore) put(identity database.StoredIdentity) {
	if _, ok := m.identities[identity.StudentID]; !ok {
		m.order = append(m.order, identity.StudentID)
	}
	if identity.CreatedAt.IsZero() {
		m.clock = m.clock.Add(time.Second)
		identity.CreatedAt = m.clock
	}
	m.identities[identity.StudentID] = identity
}

// ListIdentities returns all students in insertion order
func (m *MockIdentityStore) ListIdentities(ctx context.Context) ([]database.StoredIdentity, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]database.StoredIdentity, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.identities[id])
	}
	return result, nil
}

// GetIdentity returns one student or database.ErrNotFound
func (m *MockIdentityStore) GetIdentity(ctx context.Context, studentID string) (*database.StoredIdentity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.identities[studentID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &s, nil
}

// InsertIdentity stores a student, returning database.ErrConflict for a duplicate ID
func (m *MockIdentityStore) InsertIdentity(ctx context.Context, identity database.StoredIdentity) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[identity.StudentID]; ok {
		return fmt.Errorf("insert student %s: %w", identity.StudentID, database.ErrConflict)
	}
	m.put(identity)
	return nil
}

// DeleteIdentity removes a student, returning database.ErrNotFound if absent
func (m *MockIdentityStore) DeleteIdentity(ctx context.Context, studentID string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[studentID]; !ok {
		return database.ErrNotFound
	}
	delete(m.identities, studentID)
	for i, id := range m.order {
		if id == studentID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// MockAttendanceStore is a mock implementation of database.AttendanceWriter
type MockAttendanceStore struct {
	mu      sync.RWMutex
	records map[string]database.AttendanceRecord

	inserts int
	clears  int

	// Error injection
	ListError  error
	ClearError error
	// InsertError is returned by every insert while set.
	InsertError error
	// FailInserts makes the next N inserts fail with InsertFailure.
	FailInserts   int
	InsertFailure error
}

// NewMockAttendanceStore creates a new mock attendance store
func NewMockAttendanceStore() *MockAttendanceStore {
	return &MockAttendanceStore{
		records: make(map[string]database.AttendanceRecord),
	}
}

// ListAttendance returns all records ordered by mark time then student ID
func (m *MockAttendanceStore) ListAttendance(ctx context.Context) ([]database.AttendanceRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]database.AttendanceRecord, 0, len(m.records))
	for _, r := range m.records {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].MarkedAt.Equal(result[j].MarkedAt) {
			return result[i].MarkedAt.Before(result[j].MarkedAt)
		}
		return result[i].StudentID < result[j].StudentID
	})
	return result, nil
}

// ClearAttendance removes every record
func (m *MockAttendanceStore) ClearAttendance(ctx context.Context) error {
	if m.ClearError != nil {
		return m.ClearError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]database.AttendanceRecord)
	m.clears++
	return nil
}

// InsertAttendance stores a record, returning database.ErrConflict if the student is already present
func (m *MockAttendanceStore) InsertAttendance(ctx context.Context, record database.AttendanceRecord) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.FailInserts > 0 {
		m.FailInserts--
		if m.InsertFailure != nil {
			return m.InsertFailure
		}
		return fmt.Errorf("insert attendance: injected failure")
	}
	if _, ok := m.records[record.StudentID]; ok {
		return fmt.Errorf("insert attendance %s: %w", record.StudentID, database.ErrConflict)
	}
	m.records[record.StudentID] = record
	return nil
}

// AddRecord seeds a record without going through InsertAttendance
func (m *MockAttendanceStore) AddRecord(record database.AttendanceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.StudentID] = record
}

// InsertCalls returns how many times InsertAttendance reached the store
func (m *MockAttendanceStore) InsertCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inserts
}

// ClearCalls returns how many times ClearAttendance succeeded
func (m *MockAttendanceStore) ClearCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clears
}

// Compile-time interface checks
var (
	_ database.IdentityWriter   = (*MockIdentityStore)(nil)
	_ database.AttendanceWriter = (*MockAttendanceStore)(nil)
)
