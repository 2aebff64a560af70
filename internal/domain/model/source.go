package model

import "time"

// Source is a source-control connection: the host, coordinates, and the
// personal access token used to reach it. PAT holds plaintext only while in
// memory; the persistence adapter encrypts it before the value touches disk.
type Source struct {
	ID           int64
	Name         string
	Kind         SourceKind
	Organization string
	Project      string // Azure DevOps project; empty for GitHub sources
	Repository   string
	PAT          string

	// PATIsLegacy is set by the persistence adapter when the stored value
	// predates encryption-at-rest. The service layer re-encrypts such
	// credentials on the next successful write.
	PATIsLegacy bool

	// PATInvalid is set by the persistence adapter when the stored value
	// carries ciphertext framing but fails authentication, typically after
	// the machine's host, account, or salt changed. The credential is
	// unusable until the user enters a new PAT; PAT is empty when this is set.
	PATInvalid bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPAT reports whether a credential is configured for this source.
func (s Source) HasPAT() bool {
	return s.PAT != ""
}
