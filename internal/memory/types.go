// Package memory implements the per-user fact store, collective knowledge
// base, episodic timeline, and knowledge-graph cache that feed the prompt
// builder, plus the asynchronous persistence path that writes them after
// each turn.
package memory

import "time"

// Fact is one piece of personal memory about a user. Facts are
// deduplicated case-insensitively per user and soft-capped; the oldest
// is evicted once a user is over quota.
type Fact struct {
	UserID     string
	Content    string
	FactType   string
	Confidence float64
	Source     string
	Metadata   map[string]string
	CreatedAt  time.Time
}

// CollectiveFact is a fact contributed by any user and retrievable by
// any other user via query-semantic similarity, independent of who
// recorded it.
type CollectiveFact struct {
	Content   string
	Score     float64
	CreatedAt time.Time
}

// TimelineEntry is one episodic memory record (a past turn summary).
type TimelineEntry struct {
	UserID    string
	Summary   string
	CreatedAt time.Time
}

// Entity is a knowledge-graph node. (Type, CanonicalName) is unique;
// MentionCount increments and Metadata merges on every upsert.
type Entity struct {
	ID           string
	Type         string
	CanonicalName string
	MentionCount int
	LastSeenAt   time.Time
	Metadata     map[string]string
}

// Relationship is a knowledge-graph edge. (SourceID, TargetID, RelType)
// is unique; Strength is averaged and Evidence/SourceReferences are
// appended on conflict.
type Relationship struct {
	SourceID         string
	TargetID         string
	RelType          string
	Strength         float64
	Evidence         []string
	SourceReferences []string
}

// Profile is the user's identity card assembled into the prompt's
// memory block.
type Profile struct {
	Name       string
	Role       string
	Department string
	Language   string
	Email      string
}

// Context is the read-path result handed to the prompt builder:
// everything known about a user plus any query-relevant collective
// knowledge.
type Context struct {
	Profile          Profile
	Facts            []Fact
	CollectiveFacts  []CollectiveFact
	TimelineSummary  string
	KGEntities       []Entity
	Summary          string
	Counters         map[string]int
}

// ProcessResult reports the outcome of a post-turn memory write.
type ProcessResult struct {
	FactsExtracted int
	FactsSaved     int
	ProcessingMS   int64
	Success        bool
}

// maxFactsPerUser bounds personal fact storage; the oldest fact is
// evicted once a new one pushes a user over this count.
const maxFactsPerUser = 200

// maxSummaryLen bounds the persisted conversation summary length.
const maxSummaryLen = 2000
