package driven

import (
	"context"
	"errors"

	"github.com/sherpadev/sherpa/internal/domain/model"
)

// ErrNotFound is returned by store updates targeting a record that does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateSlug is returned when creating a knowledge entry whose slug is taken.
var ErrDuplicateSlug = errors.New("knowledge slug already exists")

// KnowledgeStore defines the driven port for knowledge-entry persistence.
type KnowledgeStore interface {
	// Create inserts a new entry and returns it with the assigned ID.
	Create(ctx context.Context, entry model.KnowledgeEntry) (model.KnowledgeEntry, error)

	// Get returns the entry with the given ID, or nil if none exists.
	Get(ctx context.Context, id int64) (*model.KnowledgeEntry, error)

	// GetBySlug returns the entry with the given slug, or nil if none exists.
	GetBySlug(ctx context.Context, slug string) (*model.KnowledgeEntry, error)

	// List returns entries ordered by category then slug. An empty category
	// filters nothing; enabledOnly restricts to enabled entries.
	List(ctx context.Context, category model.KnowledgeCategory, enabledOnly bool) ([]model.KnowledgeEntry, error)

	// Update replaces the stored entry. Returns ErrNotFound if the ID is unknown.
	Update(ctx context.Context, entry model.KnowledgeEntry) error

	// Delete removes the entry. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id int64) error
}
