package driven

import (
	"context"
	"errors"

	"github.com/sherpadev/sherpa/internal/domain/model"
)

// ErrUnauthorized is returned by Verify when the host rejected the credential.
var ErrUnauthorized = errors.New("source credential rejected")

// SourceVerifier checks that a source's credential can actually reach the
// configured organization/project/repository on its host.
type SourceVerifier interface {
	// Verify performs a read-only probe against the source's host using the
	// plaintext PAT. Returns ErrUnauthorized when the host rejects the
	// credential, and other errors for transport or configuration failures.
	Verify(ctx context.Context, source model.Source) error
}
