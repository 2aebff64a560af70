package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherpadev/sherpa/internal/domain/model"
)

func TestKnowledgeService_CreateSlugFromTitle(t *testing.T) {
	svc := NewKnowledgeService(newMockKnowledgeStore())

	entry, err := svc.Create(context.Background(), model.KnowledgeEntry{
		Title:    "Error Wrapping (Go)",
		Category: model.CategoryConventions,
		Content:  "Wrap with %w.",
		Enabled:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "error-wrapping-go", entry.Slug)
}

func TestKnowledgeService_CreateRejectsBadSlug(t *testing.T) {
	svc := NewKnowledgeService(newMockKnowledgeStore())

	_, err := svc.Create(context.Background(), model.KnowledgeEntry{
		Slug:     "Not A Slug",
		Title:    "x",
		Category: model.CategoryConventions,
	})
	assert.Error(t, err)
}

func TestKnowledgeService_CreateRejectsUnknownCategory(t *testing.T) {
	svc := NewKnowledgeService(newMockKnowledgeStore())

	_, err := svc.Create(context.Background(), model.KnowledgeEntry{
		Title:    "x",
		Category: "misc",
	})
	assert.Error(t, err)
}

func TestKnowledgeService_ListValidatesCategory(t *testing.T) {
	svc := NewKnowledgeService(newMockKnowledgeStore())

	_, err := svc.List(context.Background(), "misc", false)
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Error Wrapping (Go)", "error-wrapping-go"},
		{"  spaced  out  ", "spaced-out"},
		{"UPPER", "upper"},
		{"already-a-slug", "already-a-slug"},
		{"trailing!", "trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}
