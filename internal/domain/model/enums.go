package model

// SessionStatus represents the lifecycle state of a development session.
type SessionStatus string

const (
	SessionStatusPlanned   SessionStatus = "planned"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// ValidSessionStatus reports whether s is one of the known statuses.
func ValidSessionStatus(s SessionStatus) bool {
	switch s {
	case SessionStatusPlanned, SessionStatusActive, SessionStatusCompleted, SessionStatusAbandoned:
		return true
	}
	return false
}

// KnowledgeCategory groups knowledge entries for generation. Each category
// becomes one rules file in the generated assistant instructions.
type KnowledgeCategory string

const (
	CategoryArchitecture KnowledgeCategory = "architecture"
	CategoryConventions  KnowledgeCategory = "conventions"
	CategoryWorkflow     KnowledgeCategory = "workflow"
	CategoryTesting      KnowledgeCategory = "testing"
	CategoryDomain       KnowledgeCategory = "domain"
)

// ValidKnowledgeCategory reports whether c is one of the known categories.
func ValidKnowledgeCategory(c KnowledgeCategory) bool {
	switch c {
	case CategoryArchitecture, CategoryConventions, CategoryWorkflow, CategoryTesting, CategoryDomain:
		return true
	}
	return false
}

// SourceKind identifies the source-control host a connection points at.
type SourceKind string

const (
	SourceKindAzureDevOps SourceKind = "azuredevops"
	SourceKindGitHub      SourceKind = "github"
)

// ValidSourceKind reports whether k is one of the known kinds.
func ValidSourceKind(k SourceKind) bool {
	return k == SourceKindAzureDevOps || k == SourceKindGitHub
}
