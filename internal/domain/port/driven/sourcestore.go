package driven

import (
	"context"
	"errors"

	"github.com/sherpadev/sherpa/internal/domain/model"
)

// ErrDuplicateSourceName is returned when creating a source whose name is taken.
var ErrDuplicateSourceName = errors.New("source name already exists")

// SourceStore defines the driven port for source-connection persistence.
// Implementations own credential encryption: PAT values cross this interface
// as plaintext and must be encrypted before they reach storage. A read that
// encounters a pre-encryption stored value sets Source.PATIsLegacy so the
// caller can re-encrypt on the next write. A read whose ciphertext fails
// authentication sets Source.PATInvalid with an empty PAT instead of failing
// the read: one broken credential must not make the other sources
// unreadable.
type SourceStore interface {
	// Create inserts a new source and returns it with the assigned ID.
	// Returns ErrDuplicateSourceName if the name is already taken.
	Create(ctx context.Context, source model.Source) (model.Source, error)

	// Get returns the source with the given ID, or nil if none exists.
	Get(ctx context.Context, id int64) (*model.Source, error)

	// List returns all sources ordered by name.
	List(ctx context.Context) ([]model.Source, error)

	// Count returns the number of stored sources without reading credentials.
	Count(ctx context.Context) (int, error)

	// Update replaces the stored source. Returns ErrNotFound if the ID is unknown.
	Update(ctx context.Context, source model.Source) error

	// Delete removes the source. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id int64) error
}
