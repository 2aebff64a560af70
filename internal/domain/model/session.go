package model

import "time"

// Session records one AI-assisted development session: what was planned,
// what happened, and when. Summary holds markdown written as the session
// progresses.
type Session struct {
	ID        string // uuid
	Title     string
	Goal      string
	Status    SessionStatus
	Summary   string
	StartedAt time.Time
	EndedAt   *time.Time // nil while the session is planned or active
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Duration returns the elapsed time of a finished session, or the time since
// start for one still running. Zero for sessions that never started.
func (s Session) Duration() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.EndedAt != nil {
		return s.EndedAt.Sub(s.StartedAt)
	}
	return time.Since(s.StartedAt)
}

// Finished reports whether the session reached a terminal status.
func (s Session) Finished() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusAbandoned
}
