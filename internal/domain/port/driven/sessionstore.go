package driven

import (
	"context"

	"github.com/sherpadev/sherpa/internal/domain/model"
)

// SessionStore defines the driven port for session persistence.
type SessionStore interface {
	// Create inserts a new session. The caller assigns the ID.
	Create(ctx context.Context, session model.Session) error

	// Get returns the session with the given ID, or nil if none exists.
	Get(ctx context.Context, id string) (*model.Session, error)

	// List returns all sessions, most recently created first. An empty
	// status filters nothing.
	List(ctx context.Context, status model.SessionStatus) ([]model.Session, error)

	// Update replaces the stored session. Returns ErrNotFound if the ID is unknown.
	Update(ctx context.Context, session model.Session) error

	// Delete removes the session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}
