package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

// SessionService owns the session lifecycle: creation, status transitions,
// and summary updates. It depends only on port interfaces.
type SessionService struct {
	sessions driven.SessionStore
}

// NewSessionService creates a new SessionService with the required dependencies.
func NewSessionService(sessions driven.SessionStore) *SessionService {
	return &SessionService{sessions: sessions}
}

// Create registers a new session. Status defaults to planned; an active
// session gets its start time stamped.
func (s *SessionService) Create(ctx context.Context, title, goal string, status model.SessionStatus) (model.Session, error) {
	if status == "" {
		status = model.SessionStatusPlanned
	}
	if !model.ValidSessionStatus(status) {
		return model.Session{}, fmt.Errorf("create session: unknown status %q", status)
	}

	session := model.Session{
		ID:     uuid.NewString(),
		Title:  title,
		Goal:   goal,
		Status: status,
	}
	if status == model.SessionStatusActive {
		session.StartedAt = time.Now().UTC()
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return model.Session{}, err
	}

	created, err := s.sessions.Get(ctx, session.ID)
	if err != nil {
		return model.Session{}, err
	}
	if created == nil {
		return session, nil
	}
	return *created, nil
}

// Get returns the session with the given ID, or nil if none exists.
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	return s.sessions.Get(ctx, id)
}

// List returns sessions, optionally filtered by status.
func (s *SessionService) List(ctx context.Context, status model.SessionStatus) ([]model.Session, error) {
	if status != "" && !model.ValidSessionStatus(status) {
		return nil, fmt.Errorf("list sessions: unknown status %q", status)
	}
	return s.sessions.List(ctx, status)
}

// Update changes a session's title, goal, status, or summary. Moving into
// active stamps the start time; moving into a terminal status stamps the end
// time; both are idempotent on repeated saves.
func (s *SessionService) Update(ctx context.Context, session model.Session) (model.Session, error) {
	if !model.ValidSessionStatus(session.Status) {
		return model.Session{}, fmt.Errorf("update session: unknown status %q", session.Status)
	}

	now := time.Now().UTC()
	if session.Status != model.SessionStatusPlanned && session.StartedAt.IsZero() {
		session.StartedAt = now
	}
	if session.Finished() && session.EndedAt == nil {
		session.EndedAt = &now
	}
	if !session.Finished() {
		session.EndedAt = nil
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return model.Session{}, err
	}

	updated, err := s.sessions.Get(ctx, session.ID)
	if err != nil {
		return model.Session{}, err
	}
	return *updated, nil
}

// Complete marks a session completed with the given summary.
func (s *SessionService) Complete(ctx context.Context, id, summary string) (model.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return model.Session{}, err
	}
	if session == nil {
		return model.Session{}, fmt.Errorf("complete session %s: %w", id, driven.ErrNotFound)
	}

	session.Status = model.SessionStatusCompleted
	if summary != "" {
		session.Summary = summary
	}
	return s.Update(ctx, *session)
}

// Delete removes a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}
