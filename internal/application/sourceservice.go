package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
	"github.com/sherpadev/sherpa/internal/secret"
)

// SourceService manages source connections and their credentials. It owns
// the legacy-credential migration: any PAT read back with the legacy flag is
// rewritten through the store, which encrypts it.
type SourceService struct {
	sources   driven.SourceStore
	verifiers map[model.SourceKind]driven.SourceVerifier
	logger    *slog.Logger
}

// NewSourceService creates a new SourceService. verifiers maps each source
// kind to the client that can probe that host.
func NewSourceService(
	sources driven.SourceStore,
	verifiers map[model.SourceKind]driven.SourceVerifier,
	logger *slog.Logger,
) *SourceService {
	return &SourceService{
		sources:   sources,
		verifiers: verifiers,
		logger:    logger,
	}
}

// Create registers a new source connection.
func (s *SourceService) Create(ctx context.Context, source model.Source) (model.Source, error) {
	if !model.ValidSourceKind(source.Kind) {
		return model.Source{}, fmt.Errorf("create source: unknown kind %q", source.Kind)
	}
	created, err := s.sources.Create(ctx, source)
	if err != nil {
		return model.Source{}, err
	}

	s.logger.Info("source created",
		"source", created.Name,
		"kind", created.Kind,
		"pat_configured", created.HasPAT(),
		"pat_hint", secret.Redact(created.PAT, secret.DefaultVisibleSuffix),
	)
	return created, nil
}

// Get returns the source with the given ID, or nil if none exists.
func (s *SourceService) Get(ctx context.Context, id int64) (*model.Source, error) {
	return s.sources.Get(ctx, id)
}

// List returns all sources.
func (s *SourceService) List(ctx context.Context) ([]model.Source, error) {
	return s.sources.List(ctx)
}

// Update replaces a source. An empty PAT on the incoming source keeps the
// stored credential, so callers can edit coordinates without re-entering the
// token; rotation is just an update with a new PAT.
func (s *SourceService) Update(ctx context.Context, source model.Source) (model.Source, error) {
	if !model.ValidSourceKind(source.Kind) {
		return model.Source{}, fmt.Errorf("update source: unknown kind %q", source.Kind)
	}

	if source.PAT == "" {
		existing, err := s.sources.Get(ctx, source.ID)
		if err != nil {
			return model.Source{}, err
		}
		if existing == nil {
			return model.Source{}, fmt.Errorf("update source %d: %w", source.ID, driven.ErrNotFound)
		}
		source.PAT = existing.PAT
	}

	if err := s.sources.Update(ctx, source); err != nil {
		return model.Source{}, err
	}

	updated, err := s.sources.Get(ctx, source.ID)
	if err != nil {
		return model.Source{}, err
	}
	return *updated, nil
}

// Delete removes a source.
func (s *SourceService) Delete(ctx context.Context, id int64) error {
	return s.sources.Delete(ctx, id)
}

// Verify probes the source's host with its stored credential.
func (s *SourceService) Verify(ctx context.Context, id int64) error {
	source, err := s.sources.Get(ctx, id)
	if err != nil {
		return err
	}
	if source == nil {
		return fmt.Errorf("verify source %d: %w", id, driven.ErrNotFound)
	}

	verifier, ok := s.verifiers[source.Kind]
	if !ok {
		return fmt.Errorf("verify source %q: no verifier for kind %q", source.Name, source.Kind)
	}
	return verifier.Verify(ctx, *source)
}

// MigrateLegacyCredentials rewrites every source whose PAT was stored as
// pre-encryption plaintext. Run once at startup; each rewrite goes through
// the store's normal write path, which encrypts. A source that fails to
// rewrite is logged and skipped so one bad row never blocks startup or the
// remaining migrations. Returns the number of sources migrated.
func (s *SourceService) MigrateLegacyCredentials(ctx context.Context) (migrated int, err error) {
	sources, err := s.sources.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate legacy credentials: %w", err)
	}

	for _, source := range sources {
		if !source.PATIsLegacy {
			continue
		}
		if err := s.sources.Update(ctx, source); err != nil {
			s.logger.Error("failed to re-encrypt legacy credential",
				"source", source.Name,
				"error", err,
			)
			continue
		}
		migrated++
		s.logger.Info("re-encrypted legacy credential",
			"source", source.Name,
			"pat_hint", secret.Redact(source.PAT, secret.DefaultVisibleSuffix),
		)
	}
	return migrated, nil
}
