package database

import (
	"context"
	"errors"
	"sync"
)

var errNotInitialized = errors.New("PostgreSQL backend not initialized: DATABASE_URL is required")

var (
	providerMu               sync.RWMutex
	postgresIdentityWriter   func() IdentityWriter
	postgresAttendanceWriter func() AttendanceWriter
	postgresInitialized      bool
)

// RegisterPostgresBackend registers PostgreSQL repository constructors.
// This is called by the command layer to avoid import cycles.
func RegisterPostgresBackend(identities func() IdentityWriter, attendance func() AttendanceWriter) {
	providerMu.Lock()
	defer providerMu.Unlock()
	postgresIdentityWriter = identities
	postgresAttendanceWriter = attendance
	postgresInitialized = true
}

// ResetBackend drops every registered constructor. Used by tests.
func ResetBackend() {
	providerMu.Lock()
	defer providerMu.Unlock()
	postgresIdentityWriter = nil
	postgresAttendanceWriter = nil
	postgresInitialized = false
}

// GetIdentityWriter returns an IdentityWriter from the PostgreSQL backend
func GetIdentityWriter(ctx context.Context) (IdentityWriter, error) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	if !postgresInitialized {
		return nil, errNotInitialized
	}
	if postgresIdentityWriter == nil {
		return nil, errors.New("PostgreSQL identity writer not registered")
	}
	return postgresIdentityWriter(), nil
}

// GetAttendanceWriter returns an AttendanceWriter from the PostgreSQL backend
func GetAttendanceWriter(ctx context.Context) (AttendanceWriter, error) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	if !postgresInitialized {
		return nil, errNotInitialized
	}
	if postgresAttendanceWriter == nil {
		return nil, errors.New("PostgreSQL attendance writer not registered")
	}
	return postgresAttendanceWriter(), nil
}
