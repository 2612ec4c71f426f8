package database

import (
	"time"
)

// StoredIdentity is an enrolled student as persisted in the students table.
// Encoding holds the raw little-endian float64 embedding blob.
type StoredIdentity struct {
	StudentID   string
	StudentName string
	Encoding    []byte
	CreatedAt   time.Time
}

// AttendanceRecord marks a student as present in a session.
type AttendanceRecord struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	SessionID   string    `json:"session_id"`
	MarkedAt    time.Time `json:"marked_at"`
}
