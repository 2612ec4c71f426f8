package database

import (
	"context"
)

// IdentityReader provides read-only access to enrolled students
type IdentityReader interface {
	// ListIdentities returns every enrolled student ordered by enrollment
	ListIdentities(ctx context.Context) ([]StoredIdentity, error)
	// GetIdentity returns one student, or ErrNotFound
	GetIdentity(ctx context.Context, studentID string) (*StoredIdentity, error)
}

// IdentityWriter provides write access to enrolled students
type IdentityWriter interface {
	IdentityReader

	// InsertIdentity stores a new student. Returns ErrConflict if the student ID is taken.
	InsertIdentity(ctx context.Context, identity StoredIdentity) error

	// DeleteIdentity removes a student. Returns ErrNotFound if no such student exists.
	DeleteIdentity(ctx context.Context, studentID string) error
}

// AttendanceReader provides read-only access to the attendance log of the current session
type AttendanceReader interface {
	// ListAttendance returns all records ordered by the time they were marked
	ListAttendance(ctx context.Context) ([]AttendanceRecord, error)
}

// AttendanceWriter provides write access to the attendance log
type AttendanceWriter interface {
	AttendanceReader

	// ClearAttendance removes every record; called when a new session starts
	ClearAttendance(ctx context.Context) error

	// InsertAttendance stores a record. Returns ErrConflict if the student is already marked.
	InsertAttendance(ctx context.Context, record AttendanceRecord) error
}
