// Package generate renders enabled knowledge entries into AI-assistant
// instruction files: CLAUDE.md, .github/copilot-instructions.md, and one
// .cursor/rules file per category.
package generate

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/natefinch/atomic"

	"github.com/sherpadev/sherpa/internal/domain/model"
)

// Target names one generated file.
type Target struct {
	Path    string // relative to the output directory
	Entries []model.KnowledgeEntry
}

// Result reports what a generation run wrote.
type Result struct {
	Files []string
}

// Generator renders knowledge entries to instruction files. Output is a pure
// function of the entries and output directory; entries arrive pre-sorted by
// category then slug from the store and the file list is sorted, so repeated
// runs over the same data are byte-identical.
type Generator struct {
	outDir string
	logger *slog.Logger
}

// New creates a Generator that writes under outDir.
func New(outDir string, logger *slog.Logger) *Generator {
	return &Generator{outDir: outDir, logger: logger}
}

// Run renders all targets for the given entries and writes them atomically.
// Disabled entries must be filtered out by the caller; Run renders exactly
// what it is given.
func (g *Generator) Run(entries []model.KnowledgeEntry) (*Result, error) {
	targets := Targets(entries)

	result := &Result{}
	for _, target := range targets {
		content, err := render(target)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", target.Path, err)
		}

		path := filepath.Join(g.outDir, target.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", target.Path, err)
		}
		if err := atomic.WriteFile(path, bytes.NewReader(content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", target.Path, err)
		}

		g.logger.Info("instruction file written", "path", target.Path, "entries", len(target.Entries))
		result.Files = append(result.Files, target.Path)
	}

	return result, nil
}

// Targets maps entries to the instruction files they produce: the two
// single-file targets get every entry, and each category gets its own cursor
// rules file.
func Targets(entries []model.KnowledgeEntry) []Target {
	targets := []Target{
		{Path: "CLAUDE.md", Entries: entries},
		{Path: filepath.Join(".github", "copilot-instructions.md"), Entries: entries},
	}

	byCategory := make(map[model.KnowledgeCategory][]model.KnowledgeEntry)
	for _, e := range entries {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	categories := make([]model.KnowledgeCategory, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, c := range categories {
		targets = append(targets, Target{
			Path:    filepath.Join(".cursor", "rules", string(c)+".md"),
			Entries: byCategory[c],
		})
	}

	return targets
}

var fileTemplate = template.Must(template.New("instructions").Parse(
	`<!-- Generated by sherpa. Do not edit; update the knowledge base and re-run "sherpa generate". -->

# Project knowledge
{{range .Entries}}
## {{.Title}} {{printf "<!-- %s -->" .Slug}}

{{.Content}}
{{end}}`))

func render(target Target) ([]byte, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, target); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
