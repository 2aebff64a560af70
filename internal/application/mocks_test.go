package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

// mockSessionStore is an in-memory SessionStore.
type mockSessionStore struct {
	sessions map[string]model.Session
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]model.Session)}
}

func (m *mockSessionStore) Create(_ context.Context, session model.Session) error {
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, id string) (*model.Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (m *mockSessionStore) List(_ context.Context, status model.SessionStatus) ([]model.Session, error) {
	var out []model.Session
	for _, s := range m.sessions {
		if status == "" || s.Status == status {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSessionStore) Update(_ context.Context, session model.Session) error {
	if _, ok := m.sessions[session.ID]; !ok {
		return driven.ErrNotFound
	}
	session.UpdatedAt = time.Now().UTC()
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

// mockKnowledgeStore is an in-memory KnowledgeStore.
type mockKnowledgeStore struct {
	entries map[int64]model.KnowledgeEntry
	nextID  int64
}

func newMockKnowledgeStore() *mockKnowledgeStore {
	return &mockKnowledgeStore{entries: make(map[int64]model.KnowledgeEntry), nextID: 1}
}

func (m *mockKnowledgeStore) Create(_ context.Context, entry model.KnowledgeEntry) (model.KnowledgeEntry, error) {
	for _, e := range m.entries {
		if e.Slug == entry.Slug {
			return model.KnowledgeEntry{}, driven.ErrDuplicateSlug
		}
	}
	entry.ID = m.nextID
	m.nextID++
	entry.CreatedAt = time.Now().UTC()
	entry.UpdatedAt = entry.CreatedAt
	m.entries[entry.ID] = entry
	return entry, nil
}

func (m *mockKnowledgeStore) Get(_ context.Context, id int64) (*model.KnowledgeEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (m *mockKnowledgeStore) GetBySlug(_ context.Context, slug string) (*model.KnowledgeEntry, error) {
	for _, e := range m.entries {
		if e.Slug == slug {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *mockKnowledgeStore) List(_ context.Context, category model.KnowledgeCategory, enabledOnly bool) ([]model.KnowledgeEntry, error) {
	var out []model.KnowledgeEntry
	for _, e := range m.entries {
		if category != "" && e.Category != category {
			continue
		}
		if enabledOnly && !e.Enabled {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

func (m *mockKnowledgeStore) Update(_ context.Context, entry model.KnowledgeEntry) error {
	if _, ok := m.entries[entry.ID]; !ok {
		return driven.ErrNotFound
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockKnowledgeStore) Delete(_ context.Context, id int64) error {
	delete(m.entries, id)
	return nil
}

// mockSourceStore is an in-memory SourceStore. It mimics the sqlite adapter's
// credential behavior: writes clear the legacy flag, reads report it.
type mockSourceStore struct {
	sources map[int64]model.Source
	nextID  int64

	// failUpdateID makes Update fail for one source ID.
	failUpdateID int64
	updateErr    error
}

func newMockSourceStore() *mockSourceStore {
	return &mockSourceStore{sources: make(map[int64]model.Source), nextID: 1}
}

func (m *mockSourceStore) Create(_ context.Context, source model.Source) (model.Source, error) {
	source.ID = m.nextID
	m.nextID++
	source.PATIsLegacy = false
	m.sources[source.ID] = source
	return source, nil
}

func (m *mockSourceStore) Get(_ context.Context, id int64) (*model.Source, error) {
	source, ok := m.sources[id]
	if !ok {
		return nil, nil
	}
	return &source, nil
}

func (m *mockSourceStore) List(_ context.Context) ([]model.Source, error) {
	var out []model.Source
	for _, s := range m.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockSourceStore) Count(_ context.Context) (int, error) {
	return len(m.sources), nil
}

func (m *mockSourceStore) Update(_ context.Context, source model.Source) error {
	if source.ID == m.failUpdateID && m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.sources[source.ID]; !ok {
		return driven.ErrNotFound
	}
	source.PATIsLegacy = false
	m.sources[source.ID] = source
	return nil
}

func (m *mockSourceStore) Delete(_ context.Context, id int64) error {
	delete(m.sources, id)
	return nil
}

// mockVerifier records calls and returns a fixed error.
type mockVerifier struct {
	err    error
	called int
	last   model.Source
}

func (m *mockVerifier) Verify(_ context.Context, source model.Source) error {
	m.called++
	m.last = source
	if m.err != nil {
		return fmt.Errorf("verify %q: %w", source.Name, m.err)
	}
	return nil
}
