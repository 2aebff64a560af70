package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KnowledgeStore = (*KnowledgeRepo)(nil)

// KnowledgeRepo is the SQLite implementation of the KnowledgeStore port interface.
// Tags are stored comma-joined in a single column.
type KnowledgeRepo struct {
	db *DB
}

// NewKnowledgeRepo creates a new KnowledgeRepo backed by the given DB.
func NewKnowledgeRepo(db *DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

// Create inserts a new entry and returns it with the assigned ID.
// Returns driven.ErrDuplicateSlug if the slug is already taken.
func (r *KnowledgeRepo) Create(ctx context.Context, entry model.KnowledgeEntry) (model.KnowledgeEntry, error) {
	const query = `INSERT INTO knowledge_entries (slug, title, category, content, tags, enabled)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.Writer.ExecContext(ctx, query,
		entry.Slug,
		entry.Title,
		string(entry.Category),
		entry.Content,
		joinTags(entry.Tags),
		entry.Enabled,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.KnowledgeEntry{}, fmt.Errorf("create knowledge entry %q: %w", entry.Slug, driven.ErrDuplicateSlug)
		}
		return model.KnowledgeEntry{}, fmt.Errorf("create knowledge entry %q: %w", entry.Slug, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.KnowledgeEntry{}, fmt.Errorf("last insert id: %w", err)
	}

	created, err := r.Get(ctx, id)
	if err != nil {
		return model.KnowledgeEntry{}, err
	}
	return *created, nil
}

// Get retrieves an entry by ID. Returns nil, nil if none exists.
func (r *KnowledgeRepo) Get(ctx context.Context, id int64) (*model.KnowledgeEntry, error) {
	const query = `SELECT id, slug, title, category, content, tags, enabled, created_at, updated_at
		FROM knowledge_entries WHERE id = ?`

	entry, err := scanKnowledgeEntry(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get knowledge entry %d: %w", id, err)
	}
	return entry, nil
}

// GetBySlug retrieves an entry by slug. Returns nil, nil if none exists.
func (r *KnowledgeRepo) GetBySlug(ctx context.Context, slug string) (*model.KnowledgeEntry, error) {
	const query = `SELECT id, slug, title, category, content, tags, enabled, created_at, updated_at
		FROM knowledge_entries WHERE slug = ?`

	entry, err := scanKnowledgeEntry(r.db.Reader.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get knowledge entry %q: %w", slug, err)
	}
	return entry, nil
}

// List returns entries ordered by category then slug, optionally filtered.
func (r *KnowledgeRepo) List(ctx context.Context, category model.KnowledgeCategory, enabledOnly bool) ([]model.KnowledgeEntry, error) {
	query := `SELECT id, slug, title, category, content, tags, enabled, created_at, updated_at
		FROM knowledge_entries`
	var clauses []string
	var args []any
	if category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(category))
	}
	if enabledOnly {
		clauses = append(clauses, "enabled = 1")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY category, slug"

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list knowledge entries: %w", err)
	}
	defer rows.Close()

	var entries []model.KnowledgeEntry
	for rows.Next() {
		entry, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan knowledge entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge entries: %w", err)
	}
	return entries, nil
}

// Update replaces the stored entry. Returns driven.ErrNotFound if the ID is
// unknown and driven.ErrDuplicateSlug if the new slug collides with another entry.
func (r *KnowledgeRepo) Update(ctx context.Context, entry model.KnowledgeEntry) error {
	const query = `UPDATE knowledge_entries
		SET slug = ?, title = ?, category = ?, content = ?, tags = ?, enabled = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		entry.Slug,
		entry.Title,
		string(entry.Category),
		entry.Content,
		joinTags(entry.Tags),
		entry.Enabled,
		entry.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("update knowledge entry %d: %w", entry.ID, driven.ErrDuplicateSlug)
		}
		return fmt.Errorf("update knowledge entry %d: %w", entry.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update knowledge entry %d: %w", entry.ID, driven.ErrNotFound)
	}
	return nil
}

// Delete removes an entry. Deleting an unknown ID is not an error.
func (r *KnowledgeRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM knowledge_entries WHERE id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete knowledge entry %d: %w", id, err)
	}
	return nil
}

func scanKnowledgeEntry(s scanner) (*model.KnowledgeEntry, error) {
	var entry model.KnowledgeEntry
	var category, tags, createdAt, updatedAt string

	err := s.Scan(&entry.ID, &entry.Slug, &entry.Title, &category, &entry.Content,
		&tags, &entry.Enabled, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	entry.Category = model.KnowledgeCategory(category)
	entry.Tags = splitTags(tags)

	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &entry, nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
