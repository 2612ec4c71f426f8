package postgres

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed storage of the attendance log
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// ListAttendance returns all records in the order they were marked
func (r *AttendanceRepository) ListAttendance(ctx context.Context) ([]database.AttendanceRecord, error) {
	query := `
		SELECT student_id, student_name, session_id, marked_at
		FROM attendance
		ORDER BY marked_at, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	records := make([]database.AttendanceRecord, 0)
	for rows.Next() {
		var a database.AttendanceRecord
		if err := rows.Scan(&a.StudentID, &a.StudentName, &a.SessionID, &a.MarkedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return records, nil
}

// ClearAttendance removes every record
func (r *AttendanceRepository) ClearAttendance(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM attendance"); err != nil {
		return fmt.Errorf("clear attendance: %w", err)
	}
	return nil
}

// InsertAttendance marks a student as present
func (r *AttendanceRepository) InsertAttendance(ctx context.Context, record database.AttendanceRecord) error {
	query := `
		INSERT INTO attendance (student_id, student_name, session_id, marked_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, record.StudentID, record.StudentName, record.SessionID, record.MarkedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert attendance %s: %w", record.StudentID, database.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}
