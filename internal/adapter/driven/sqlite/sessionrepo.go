package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port interface.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo backed by the given DB.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a new session.
func (r *SessionRepo) Create(ctx context.Context, session model.Session) error {
	const query = `INSERT INTO sessions (id, title, goal, status, summary, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		session.ID,
		session.Title,
		session.Goal,
		string(session.Status),
		session.Summary,
		nullableTime(session.StartedAt),
		nullableTimePtr(session.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("create session %s: %w", session.ID, err)
	}
	return nil
}

// Get retrieves a session by ID. Returns nil, nil if none exists.
func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	const query = `SELECT id, title, goal, status, summary, started_at, ended_at, created_at, updated_at
		FROM sessions WHERE id = ?`

	session, err := scanSession(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return session, nil
}

// List returns sessions most recently created first, optionally filtered by status.
func (r *SessionRepo) List(ctx context.Context, status model.SessionStatus) ([]model.Session, error) {
	query := `SELECT id, title, goal, status, summary, started_at, ended_at, created_at, updated_at
		FROM sessions ORDER BY created_at DESC, id`
	args := []any{}
	if status != "" {
		query = `SELECT id, title, goal, status, summary, started_at, ended_at, created_at, updated_at
			FROM sessions WHERE status = ? ORDER BY created_at DESC, id`
		args = append(args, string(status))
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Update replaces the stored session. Returns driven.ErrNotFound if the ID is unknown.
func (r *SessionRepo) Update(ctx context.Context, session model.Session) error {
	const query = `UPDATE sessions
		SET title = ?, goal = ?, status = ?, summary = ?, started_at = ?, ended_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		session.Title,
		session.Goal,
		string(session.Status),
		session.Summary,
		nullableTime(session.StartedAt),
		nullableTimePtr(session.EndedAt),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update session %s: %w", session.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update session %s: %w", session.ID, driven.ErrNotFound)
	}
	return nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*model.Session, error) {
	var session model.Session
	var status string
	var startedAt, endedAt sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&session.ID, &session.Title, &session.Goal, &status, &session.Summary,
		&startedAt, &endedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	session.Status = model.SessionStatus(status)

	if startedAt.Valid {
		if session.StartedAt, err = parseTime(startedAt.String); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
	}
	if endedAt.Valid {
		t, err := parseTime(endedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		session.EndedAt = &t
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &session, nil
}

// nullableTime maps the zero time to NULL so "never started" round-trips.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func nullableTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
