package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
	"github.com/sherpadev/sherpa/internal/secret"
)

// Compile-time interface satisfaction check.
var _ driven.SourceStore = (*SourceRepo)(nil)

// SourceRepo is the SQLite implementation of the SourceStore port interface.
// PAT values are sealed by the secret store before write and opened after
// read; the encrypted column never leaves this adapter. A stored value
// without ciphertext framing is a pre-encryption legacy credential: it is
// returned as-is with Source.PATIsLegacy set so the service layer can
// re-encrypt it. A stored value that fails authentication marks only that
// source invalid; the rest of the row set stays readable.
type SourceRepo struct {
	db      *DB
	secrets *secret.Store
	logger  *slog.Logger
}

// NewSourceRepo creates a new SourceRepo backed by the given DB and secret store.
func NewSourceRepo(db *DB, secrets *secret.Store, logger *slog.Logger) *SourceRepo {
	return &SourceRepo{db: db, secrets: secrets, logger: logger}
}

// Create inserts a new source and returns it with the assigned ID.
// Returns driven.ErrDuplicateSourceName if the name is already taken.
func (r *SourceRepo) Create(ctx context.Context, source model.Source) (model.Source, error) {
	stored, err := r.sealPAT(source)
	if err != nil {
		return model.Source{}, fmt.Errorf("create source %q: %w", source.Name, err)
	}

	const query = `INSERT INTO sources (name, kind, organization, project, repository, pat)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.Writer.ExecContext(ctx, query,
		source.Name,
		string(source.Kind),
		source.Organization,
		source.Project,
		source.Repository,
		stored,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.Source{}, fmt.Errorf("create source %q: %w", source.Name, driven.ErrDuplicateSourceName)
		}
		return model.Source{}, fmt.Errorf("create source %q: %w", source.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Source{}, fmt.Errorf("last insert id: %w", err)
	}

	created, err := r.Get(ctx, id)
	if err != nil {
		return model.Source{}, err
	}
	return *created, nil
}

// Get retrieves a source by ID with its PAT decrypted. Returns nil, nil if
// none exists.
func (r *SourceRepo) Get(ctx context.Context, id int64) (*model.Source, error) {
	const query = `SELECT id, name, kind, organization, project, repository, pat, created_at, updated_at
		FROM sources WHERE id = ?`

	source, err := r.scanSource(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get source %d: %w", id, err)
	}
	return source, nil
}

// List returns all sources ordered by name with PATs decrypted.
func (r *SourceRepo) List(ctx context.Context) ([]model.Source, error) {
	const query = `SELECT id, name, kind, organization, project, repository, pat, created_at, updated_at
		FROM sources ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []model.Source
	for rows.Next() {
		source, err := r.scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, *source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// Update replaces the stored source, re-encrypting its PAT. Returns
// driven.ErrNotFound if the ID is unknown and driven.ErrDuplicateSourceName
// if the new name collides with another source.
func (r *SourceRepo) Update(ctx context.Context, source model.Source) error {
	stored, err := r.sealPAT(source)
	if err != nil {
		return fmt.Errorf("update source %d: %w", source.ID, err)
	}

	const query = `UPDATE sources
		SET name = ?, kind = ?, organization = ?, project = ?, repository = ?, pat = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		source.Name,
		string(source.Kind),
		source.Organization,
		source.Project,
		source.Repository,
		stored,
		source.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("update source %d: %w", source.ID, driven.ErrDuplicateSourceName)
		}
		return fmt.Errorf("update source %d: %w", source.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update source %d: %w", source.ID, driven.ErrNotFound)
	}
	return nil
}

// Count returns the number of stored sources. No credential columns are
// read, so counting never touches the secret store.
func (r *SourceRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sources: %w", err)
	}
	return count, nil
}

// Delete removes a source. Deleting an unknown ID is not an error.
func (r *SourceRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM sources WHERE id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete source %d: %w", id, err)
	}
	return nil
}

// sealPAT returns the stored form of the source's credential: encrypted when
// present, empty when the source has no PAT.
func (r *SourceRepo) sealPAT(source model.Source) (string, error) {
	if source.PAT == "" {
		return "", nil
	}
	encrypted, err := r.secrets.Encrypt(source.PAT)
	if err != nil {
		return "", fmt.Errorf("encrypt credential: %w", err)
	}
	return encrypted, nil
}

func (r *SourceRepo) scanSource(s scanner) (*model.Source, error) {
	var source model.Source
	var kind, stored, createdAt, updatedAt string

	err := s.Scan(&source.ID, &source.Name, &kind, &source.Organization,
		&source.Project, &source.Repository, &stored, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	source.Kind = model.SourceKind(kind)

	if stored != "" {
		plaintext, legacy, err := r.secrets.Decrypt(stored)
		if err != nil {
			// Tampered or written under another machine's key. Mark this
			// source invalid so the user can enter a new PAT; never fail the
			// row set, and never surface the stored value.
			source.PATInvalid = true
			r.logger.Warn("stored credential failed decryption, re-entry required",
				"source", source.Name)
		} else {
			source.PAT = plaintext
			source.PATIsLegacy = legacy
		}
	}

	if source.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if source.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &source, nil
}
