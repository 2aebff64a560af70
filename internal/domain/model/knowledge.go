package model

import "time"

// KnowledgeEntry is one reusable project-knowledge snippet: a convention,
// architectural note, or workflow rule, written as markdown. Enabled entries
// are rendered into assistant instruction files by the generator.
type KnowledgeEntry struct {
	ID        int64
	Slug      string // stable identifier, used as an anchor in generated files
	Title     string
	Category  KnowledgeCategory
	Content   string // markdown
	Tags      []string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
