package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// KnowledgeService manages knowledge-base entries. It depends only on port
// interfaces.
type KnowledgeService struct {
	entries driven.KnowledgeStore
}

// NewKnowledgeService creates a new KnowledgeService with the required dependencies.
func NewKnowledgeService(entries driven.KnowledgeStore) *KnowledgeService {
	return &KnowledgeService{entries: entries}
}

// Create inserts a new entry. The slug defaults to a slugified title when empty.
func (s *KnowledgeService) Create(ctx context.Context, entry model.KnowledgeEntry) (model.KnowledgeEntry, error) {
	if entry.Slug == "" {
		entry.Slug = Slugify(entry.Title)
	}
	if !slugPattern.MatchString(entry.Slug) {
		return model.KnowledgeEntry{}, fmt.Errorf("create knowledge entry: invalid slug %q", entry.Slug)
	}
	if !model.ValidKnowledgeCategory(entry.Category) {
		return model.KnowledgeEntry{}, fmt.Errorf("create knowledge entry: unknown category %q", entry.Category)
	}
	return s.entries.Create(ctx, entry)
}

// Get returns the entry with the given ID, or nil if none exists.
func (s *KnowledgeService) Get(ctx context.Context, id int64) (*model.KnowledgeEntry, error) {
	return s.entries.Get(ctx, id)
}

// List returns entries, optionally filtered by category or enabled state.
func (s *KnowledgeService) List(ctx context.Context, category model.KnowledgeCategory, enabledOnly bool) ([]model.KnowledgeEntry, error) {
	if category != "" && !model.ValidKnowledgeCategory(category) {
		return nil, fmt.Errorf("list knowledge entries: unknown category %q", category)
	}
	return s.entries.List(ctx, category, enabledOnly)
}

// Update replaces an entry.
func (s *KnowledgeService) Update(ctx context.Context, entry model.KnowledgeEntry) (model.KnowledgeEntry, error) {
	if !slugPattern.MatchString(entry.Slug) {
		return model.KnowledgeEntry{}, fmt.Errorf("update knowledge entry: invalid slug %q", entry.Slug)
	}
	if !model.ValidKnowledgeCategory(entry.Category) {
		return model.KnowledgeEntry{}, fmt.Errorf("update knowledge entry: unknown category %q", entry.Category)
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		return model.KnowledgeEntry{}, err
	}

	updated, err := s.entries.Get(ctx, entry.ID)
	if err != nil {
		return model.KnowledgeEntry{}, err
	}
	return *updated, nil
}

// Delete removes an entry.
func (s *KnowledgeService) Delete(ctx context.Context, id int64) error {
	return s.entries.Delete(ctx, id)
}

// Slugify lowercases a title and replaces runs of non-alphanumeric
// characters with single hyphens: "Error Wrapping (Go)" -> "error-wrapping-go".
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
