package store

import (
	"strings"
	"time"

	"lineage/internal/facts"
)

// ResolutionStatus represents the lifecycle of a person resolution.
type ResolutionStatus string

const (
	ResolutionMatched   ResolutionStatus = "matched"
	ResolutionPending   ResolutionStatus = "pending"
	ResolutionCreateNew ResolutionStatus = "create_new"
	ResolutionRejected  ResolutionStatus = "rejected"
	ResolutionCommitted ResolutionStatus = "committed"
	ResolutionFailed    ResolutionStatus = "failed"
)

var allResolutionStatuses = []ResolutionStatus{
	ResolutionMatched,
	ResolutionPending,
	ResolutionCreateNew,
	ResolutionRejected,
	ResolutionCommitted,
	ResolutionFailed,
}

var resolutionStatusSet = func() map[ResolutionStatus]struct{} {
	set := make(map[ResolutionStatus]struct{}, len(allResolutionStatuses))
	for _, status := range allResolutionStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllResolutionStatuses returns the ordered list of known person resolution statuses.
func AllResolutionStatuses() []ResolutionStatus {
	cp := make([]ResolutionStatus, len(allResolutionStatuses))
	copy(cp, allResolutionStatuses)
	return cp
}

// ParseResolutionStatus converts a string into a known ResolutionStatus.
func ParseResolutionStatus(value string) (ResolutionStatus, bool) {
	normalized := ResolutionStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := resolutionStatusSet[normalized]
	return normalized, ok
}

// FactStatus represents the lifecycle of a fact resolution.
type FactStatus string

const (
	FactMatched   FactStatus = "matched"
	FactPending   FactStatus = "pending"
	FactApproved  FactStatus = "approved"
	FactRejected  FactStatus = "rejected"
	FactCommitted FactStatus = "committed"
	FactFailed    FactStatus = "failed"
)

var allFactStatuses = []FactStatus{
	FactMatched,
	FactPending,
	FactApproved,
	FactRejected,
	FactCommitted,
	FactFailed,
}

var factStatusSet = func() map[FactStatus]struct{} {
	set := make(map[FactStatus]struct{}, len(allFactStatuses))
	for _, status := range allFactStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllFactStatuses returns the ordered list of known fact resolution statuses.
func AllFactStatuses() []FactStatus {
	cp := make([]FactStatus, len(allFactStatuses))
	copy(cp, allFactStatuses)
	return cp
}

// ParseFactStatus converts a string into a known FactStatus.
func ParseFactStatus(value string) (FactStatus, bool) {
	normalized := FactStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := factStatusSet[normalized]
	return normalized, ok
}

// CommittableFactStatuses lists fact statuses the commit stage picks up.
func CommittableFactStatuses() []FactStatus {
	return []FactStatus{FactMatched, FactApproved}
}

// Action describes what a committed fact does to the external record.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// MatchMethod records how a person resolution obtained its handle.
type MatchMethod string

const (
	MatchExact   MatchMethod = "exact"
	MatchFuzzy   MatchMethod = "fuzzy"
	MatchCreated MatchMethod = "created"
)

// BatchStatus represents the lifecycle of a commit batch.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchInProgress BatchStatus = "in_progress"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// RecordType classifies external records tracked in record_mappings.
type RecordType string

const (
	RecordPerson RecordType = "person"
	RecordEvent  RecordType = "event"
	RecordFamily RecordType = "family"
)

// Obituary is a stored obituary text awaiting or undergoing reconciliation.
type Obituary struct {
	ID          string
	Source      string
	SubjectName string
	Text        string
	CreatedAt   time.Time
}

// Candidate is one scored external match kept for review.
type Candidate struct {
	Handle            string  `json:"handle"`
	Name              string  `json:"name"`
	Score             float64 `json:"score"`
	MatchedMaidenName bool    `json:"matched_maiden_name,omitempty"`
}

// PersonResolution links a person mentioned in an obituary to an external
// person record, or marks them for creation.
//
// The override fields hold reviewer corrections; once set they take
// precedence over the extracted name and gender at commit time.
type PersonResolution struct {
	ID                int64
	ObituaryID        string
	PersonName        string
	Role              facts.Role
	Status            ResolutionStatus
	GrampsHandle      string
	MatchScore        float64
	MatchMethod       MatchMethod
	MatchedMaidenName bool
	Candidates        []Candidate
	FirstNameOverride string
	SurnameOverride   string
	GenderOverride    string
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FactResolution records the decision for a single fact against the
// external store. A non-empty ValueOverride replaces the fact's value
// when the commit stage writes it out.
type FactResolution struct {
	ID                 int64
	ObituaryID         string
	FactID             int64
	PersonResolutionID int64
	Status             FactStatus
	Action             Action
	IsConflict         bool
	ExternalValue      string
	ValueOverride      string
	ErrorMessage       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CommitBatch tracks one commit run for an obituary.
type CommitBatch struct {
	ID              string
	ObituaryID      string
	Status          BatchStatus
	ErrorMessage    string
	PersonsCreated  int
	FactsCommitted  int
	FamiliesCreated int
	StartedAt       *time.Time
	FinishedAt      *time.Time
	CreatedAt       time.Time
}

// RecordMapping ties an external record handle back to the obituary that
// produced it. The unique key makes commit idempotent.
type RecordMapping struct {
	ID         int64
	RecordType RecordType
	RecordID   string
	ObituaryID string
	CreatedAt  time.Time
}
