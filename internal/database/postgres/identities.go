package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// IdentityRepository provides PostgreSQL-backed storage of enrolled students
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// ListIdentities returns every enrolled student in enrollment order
func (r *IdentityRepository) ListIdentities(ctx context.Context) ([]database.StoredIdentity, error) {
	query := `
		SELECT student_id, student_name, encoding, created_at
		FROM students
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	identities := make([]database.StoredIdentity, 0)
	for rows.Next() {
		var s database.StoredIdentity
		if err := rows.Scan(&s.StudentID, &s.StudentName, &s.Encoding, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		identities = append(identities, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return identities, nil
}

// GetIdentity returns a single student by ID
func (r *IdentityRepository) GetIdentity(ctx context.Context, studentID string) (*database.StoredIdentity, error) {
	query := `
		SELECT student_id, student_name, encoding, created_at
		FROM students
		WHERE student_id = $1
	`

	var s database.StoredIdentity
	err := r.pool.QueryRow(ctx, query, studentID).Scan(&s.StudentID, &s.StudentName, &s.Encoding, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &s, nil
}

// InsertIdentity stores a newly enrolled student
func (r *IdentityRepository) InsertIdentity(ctx context.Context, identity database.StoredIdentity) error {
	query := `
		INSERT INTO students (student_id, student_name, encoding)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, identity.StudentID, identity.StudentName, identity.Encoding)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert student %s: %w", identity.StudentID, database.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// DeleteIdentity removes a student
func (r *IdentityRepository) DeleteIdentity(ctx context.Context, studentID string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM students WHERE student_id = $1", studentID)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student rows affected: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}
