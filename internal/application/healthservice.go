package application

import (
	"context"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

// HealthSummary is the aggregate view served by the health endpoint.
type HealthSummary struct {
	ActiveSessions   int
	TotalSessions    int
	KnowledgeEntries int
	Sources          int
}

// HealthService assembles the health view from stored data. It depends only
// on port interfaces.
type HealthService struct {
	sessions driven.SessionStore
	entries  driven.KnowledgeStore
	sources  driven.SourceStore
}

// NewHealthService creates a new HealthService with the required dependencies.
func NewHealthService(sessions driven.SessionStore, entries driven.KnowledgeStore, sources driven.SourceStore) *HealthService {
	return &HealthService{
		sessions: sessions,
		entries:  entries,
		sources:  sources,
	}
}

// Summary counts stored records. A failure here means the database is not
// answering, which is exactly what the health endpoint needs to surface.
func (s *HealthService) Summary(ctx context.Context) (*HealthSummary, error) {
	sessions, err := s.sessions.List(ctx, "")
	if err != nil {
		return nil, err
	}

	active := 0
	for _, session := range sessions {
		if session.Status == model.SessionStatusActive {
			active++
		}
	}

	entries, err := s.entries.List(ctx, "", false)
	if err != nil {
		return nil, err
	}

	// Count, not List: the summary needs a number, and listing would decrypt
	// every stored credential on each probe.
	sources, err := s.sources.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &HealthSummary{
		ActiveSessions:   active,
		TotalSessions:    len(sessions),
		KnowledgeEntries: len(entries),
		Sources:          sources,
	}, nil
}
