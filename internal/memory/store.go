package memory

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres-backed persistence layer for facts, the
// knowledge-graph cache, and the episodic timeline. It follows the
// teacher's create-table-if-not-exists-at-construction convention
// (see internal/persistence/databases postgres_graph.go) rather than a
// separate migration step, since the core treats schema management as
// its collaborator's concern and only needs the tables to exist.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires the repository and ensures its tables exist.
func NewRepository(ctx context.Context, pool *pgxpool.Pool) (*Repository, error) {
	r := &Repository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memory_facts (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			fact_type TEXT,
			confidence DOUBLE PRECISION DEFAULT 1.0,
			source TEXT,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// The case-fold dedup key is a generated column added after table
		// creation so re-running this migration against an older table is
		// safe; the uniqueness constraint is a separate index rather than
		// an inline UNIQUE() clause for the same reason.
		`ALTER TABLE memory_facts ADD COLUMN IF NOT EXISTS content_lower TEXT GENERATED ALWAYS AS (lower(content)) STORED`,
		`CREATE UNIQUE INDEX IF NOT EXISTS memory_facts_user_content_lower ON memory_facts(user_id, content_lower)`,
		`CREATE TABLE IF NOT EXISTS collective_memories (
			id SERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			source_user_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS episodic_memories (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			summary TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS episodic_memories_user_ts ON episodic_memories(user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS kg_entities (
			id SERIAL PRIMARY KEY,
			entity_type TEXT NOT NULL,
			canonical_name TEXT NOT NULL,
			mention_count INT NOT NULL DEFAULT 0,
			last_seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			UNIQUE(entity_type, canonical_name)
		)`,
		`CREATE TABLE IF NOT EXISTS kg_relationships (
			id SERIAL PRIMARY KEY,
			source_id INT NOT NULL REFERENCES kg_entities(id),
			target_id INT NOT NULL REFERENCES kg_entities(id),
			rel_type TEXT NOT NULL,
			strength DOUBLE PRECISION NOT NULL DEFAULT 0,
			sample_count INT NOT NULL DEFAULT 0,
			evidence TEXT[] NOT NULL DEFAULT '{}',
			source_references TEXT[] NOT NULL DEFAULT '{}',
			UNIQUE(source_id, target_id, rel_type)
		)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id TEXT PRIMARY KEY,
			summary TEXT,
			counters JSONB NOT NULL DEFAULT '{}'::jsonb
		)`,
	}
	for _, s := range stmts {
		if _, err := r.pool.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// AddFact inserts a fact, deduplicating case-insensitively on
// (user_id, lower(content)). After a new fact is inserted, facts beyond
// the per-user quota are evicted oldest-first, so the user never stays
// over quota.
func (r *Repository) AddFact(ctx context.Context, f Fact) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO memory_facts (user_id, content, fact_type, confidence, source, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, content_lower) DO NOTHING
	`, f.UserID, f.Content, f.FactType, f.Confidence, f.Source, toJSONMap(f.Metadata))
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if err := r.evictOverQuota(ctx, f.UserID); err != nil {
		return true, err
	}
	return true, nil
}

func (r *Repository) evictOverQuota(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM memory_facts
		WHERE id IN (
			SELECT id FROM memory_facts WHERE user_id = $1
			ORDER BY created_at DESC
			OFFSET $2
		)
	`, userID, maxFactsPerUser)
	return err
}

// Facts returns every fact recorded for a user, most recent first.
func (r *Repository) Facts(ctx context.Context, userID string) ([]Fact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, content, COALESCE(fact_type,''), COALESCE(confidence,1.0), COALESCE(source,''), created_at
		FROM memory_facts WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(&f.UserID, &f.Content, &f.FactType, &f.Confidence, &f.Source, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AddCollectiveFact records a fact in the cross-user collective store.
func (r *Repository) AddCollectiveFact(ctx context.Context, sourceUserID, content string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO collective_memories (content, source_user_id) VALUES ($1, $2)
	`, content, sourceUserID)
	return err
}

// CollectiveFacts returns the n most recent collective facts. Query-aware
// semantic ranking is applied by the caller (the memory orchestrator),
// which embeds the query and re-scores these rows; the repository itself
// only exposes a cheap recency-bounded candidate set.
func (r *Repository) CollectiveFacts(ctx context.Context, limit int) ([]CollectiveFact, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT content, created_at FROM collective_memories ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CollectiveFact
	for rows.Next() {
		var c CollectiveFact
		if err := rows.Scan(&c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddTimelineEntry appends one episodic memory record.
func (r *Repository) AddTimelineEntry(ctx context.Context, userID, summary string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO episodic_memories (user_id, summary) VALUES ($1, $2)
	`, userID, summary)
	return err
}

// RecentTimeline returns a flattened summary of the user's last n
// episodic entries, newest first.
func (r *Repository) RecentTimeline(ctx context.Context, userID string, n int) (string, error) {
	if n <= 0 {
		n = 5
	}
	rows, err := r.pool.Query(ctx, `
		SELECT summary FROM episodic_memories WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
	`, userID, n)
	if err != nil {
		return "", err
	}
	defer rows.Close()
	var parts []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n"), rows.Err()
}

// UpsertEntity inserts or updates a knowledge-graph entity keyed by
// (entityType, canonicalName): mention_count increments by one, metadata
// is merged (new keys win on conflict), and last_seen_at advances.
func (r *Repository) UpsertEntity(ctx context.Context, entityType, canonicalName string, metadata map[string]string) (Entity, error) {
	var e Entity
	row := r.pool.QueryRow(ctx, `
		INSERT INTO kg_entities (entity_type, canonical_name, mention_count, last_seen_at, metadata)
		VALUES ($1, $2, 1, now(), $3)
		ON CONFLICT (entity_type, canonical_name) DO UPDATE SET
			mention_count = kg_entities.mention_count + 1,
			last_seen_at = now(),
			metadata = kg_entities.metadata || EXCLUDED.metadata
		RETURNING id::text, entity_type, canonical_name, mention_count, last_seen_at
	`, entityType, canonicalName, toJSONMap(metadata))
	if err := row.Scan(&e.ID, &e.Type, &e.CanonicalName, &e.MentionCount, &e.LastSeenAt); err != nil {
		return Entity{}, err
	}
	return e, nil
}

// UpsertRelationship inserts or updates an edge keyed by
// (sourceID, targetID, relType): strength is averaged across every call
// (running mean via sample_count) and evidence/source references are
// appended.
func (r *Repository) UpsertRelationship(ctx context.Context, rel Relationship) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO kg_relationships (source_id, target_id, rel_type, strength, sample_count, evidence, source_references)
		VALUES ($1, $2, $3, $4, 1, $5, $6)
		ON CONFLICT (source_id, target_id, rel_type) DO UPDATE SET
			strength = (kg_relationships.strength * kg_relationships.sample_count + EXCLUDED.strength) / (kg_relationships.sample_count + 1),
			sample_count = kg_relationships.sample_count + 1,
			evidence = kg_relationships.evidence || EXCLUDED.evidence,
			source_references = kg_relationships.source_references || EXCLUDED.source_references
	`, rel.SourceID, rel.TargetID, rel.RelType, rel.Strength, rel.Evidence, rel.SourceReferences)
	return err
}

// Neighbors returns the canonical names of entities reachable from the
// entity named id via rel, for the graph_traversal tool. Lookup is by
// canonical_name rather than numeric id so a caller can chain hops using
// the names this method itself returns.
func (r *Repository) Neighbors(ctx context.Context, id, rel string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.canonical_name FROM kg_relationships k
		JOIN kg_entities s ON s.id = k.source_id
		JOIN kg_entities t ON t.id = k.target_id
		WHERE s.canonical_name = $1 AND k.rel_type = $2
		ORDER BY t.canonical_name
	`, id, rel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// NodeProps returns the entity type, mention count, and metadata for the
// entity named id, satisfying tools.GraphStore for the graph_traversal
// tool's per-hop description of what it found.
func (r *Repository) NodeProps(ctx context.Context, id string) (map[string]any, bool, error) {
	var (
		entityType   string
		mentionCount int
		metadata     map[string]string
	)
	row := r.pool.QueryRow(ctx, `
		SELECT entity_type, mention_count, metadata FROM kg_entities WHERE canonical_name = $1
	`, id)
	if err := row.Scan(&entityType, &mentionCount, &metadata); err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	props := map[string]any{
		"type":          entityType,
		"mention_count": mentionCount,
	}
	for k, v := range metadata {
		props[k] = v
	}
	return props, true, nil
}

// SetSummary truncates and persists the rolling conversation summary for
// a user, creating the row lazily on first write.
func (r *Repository) SetSummary(ctx context.Context, userID, summary string) error {
	if len(summary) > maxSummaryLen {
		summary = summary[:maxSummaryLen]
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_stats (user_id, summary) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET summary = EXCLUDED.summary
	`, userID, summary)
	return err
}

// UserStats returns the persisted summary and counters for a user,
// creating neither row nor error when the user has never been seen —
// a user is created lazily on first write, not first read.
func (r *Repository) UserStats(ctx context.Context, userID string) (summary string, counters map[string]int, err error) {
	row := r.pool.QueryRow(ctx, `SELECT COALESCE(summary,''), counters FROM user_stats WHERE user_id = $1`, userID)
	var raw map[string]any
	if scanErr := row.Scan(&summary, &raw); scanErr != nil {
		return "", map[string]int{}, nil
	}
	counters = make(map[string]int, len(raw))
	for k, v := range raw {
		if f, ok := v.(float64); ok {
			counters[k] = int(f)
		}
	}
	return summary, counters, nil
}

// IncrementCounter bumps a named per-user counter (e.g. "turns",
// "tool_calls") by delta, creating the user's row lazily.
func (r *Repository) IncrementCounter(ctx context.Context, userID, name string, delta int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_stats (user_id, counters) VALUES ($1, jsonb_build_object($2, $3::int))
		ON CONFLICT (user_id) DO UPDATE SET counters = jsonb_set(
			user_stats.counters, ARRAY[$2], to_jsonb(COALESCE((user_stats.counters->>$2)::int, 0) + $3)
		)
	`, userID, name, delta)
	return err
}

func toJSONMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
