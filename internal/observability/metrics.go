package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog/log"

	"zantaracore/internal/config"
	"zantaracore/internal/retrieval"
)

// MetricsSink publishes retrieval health diagnostics and LLM cascade/tier
// usage counters to ClickHouse. A nil *MetricsSink is valid and every
// method on it is a no-op, so callers can wire it unconditionally and
// simply skip construction when no DSN is configured.
type MetricsSink struct {
	conn    clickhouse.Conn
	table   string
	timeout time.Duration
}

// NewMetricsSink opens the ClickHouse connection and ensures the metrics
// table exists. It returns (nil, nil) when metrics are disabled or no DSN
// is configured, mirroring the teacher's optional-sink constructors.
func NewMetricsSink(ctx context.Context, cfg config.ClickHouseConfig) (*MetricsSink, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if !cfg.Enabled || dsn == "" {
		return nil, nil
	}

	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	table, err := sanitizeTableName(cfg.MetricsTable)
	if err != nil {
		return nil, fmt.Errorf("invalid metrics table: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}

	sink := &MetricsSink{conn: conn, table: table, timeout: timeout}
	if err := sink.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure clickhouse schema: %w", err)
	}
	return sink, nil
}

func (s *MetricsSink) ensureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    Timestamp   DateTime DEFAULT now(),
    QueryID     String,
    Kind        LowCardinality(String),
    Name        String,
    HadResults  UInt8,
    ResultCount UInt32,
    AvgScore    Float64,
    LatencyMs   UInt32,
    Error       String
) ENGINE = MergeTree
ORDER BY (Kind, Name, Timestamp)
`, s.table)
	execCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.conn.Exec(execCtx, ddl)
}

// RecordRetrievalDiagnostics publishes the health-monitor record for
// every collection touched by one retrieval.Service.Search call
// (had_results/result_count/avg_score plus any per-collection error).
// Failures are logged, never returned, matching the fire-and-forget
// style of the memory orchestrator's task runner.
func (s *MetricsSink) RecordRetrievalDiagnostics(ctx context.Context, queryID string, diag retrieval.SourceDiagnostics) {
	if s == nil || s.conn == nil {
		return
	}
	execCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	batch, err := s.conn.PrepareBatch(execCtx, fmt.Sprintf("INSERT INTO %s (QueryID, Kind, Name, HadResults, ResultCount, AvgScore, LatencyMs, Error)", s.table))
	if err != nil {
		log.Warn().Err(err).Msg("clickhouse_prepare_batch_failed")
		return
	}
	for collection, d := range diag.PerCollection {
		errText := ""
		if d.Err != nil {
			errText = d.Err.Error()
		}
		hadResults := uint8(0)
		if d.HadResults {
			hadResults = 1
		}
		if err := batch.Append(
			queryID,
			"retrieval",
			collection,
			hadResults,
			uint32(d.ResultCount),
			d.AvgScore,
			uint32(d.Latency.Milliseconds()),
			errText,
		); err != nil {
			log.Warn().Err(err).Str("collection", collection).Msg("clickhouse_append_failed")
			return
		}
	}
	if err := batch.Send(); err != nil {
		log.Warn().Err(err).Msg("clickhouse_send_failed")
	}
}

// RecordTierUsage publishes one cascade/tier usage counter for an LLM
// gateway call: which tier answered, how long it took, and whether it
// errored.
func (s *MetricsSink) RecordTierUsage(ctx context.Context, queryID, tier string, latency time.Duration, callErr error) {
	if s == nil || s.conn == nil {
		return
	}
	errText := ""
	if callErr != nil {
		errText = callErr.Error()
	}
	execCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.conn.Exec(execCtx, fmt.Sprintf(
		"INSERT INTO %s (QueryID, Kind, Name, HadResults, ResultCount, AvgScore, LatencyMs, Error) VALUES (?, 'tier_usage', ?, ?, 0, 0, ?, ?)",
		s.table,
	), queryID, tier, boolToU8(callErr == nil), uint32(latency.Milliseconds()), errText)
	if err != nil {
		log.Warn().Err(err).Msg("clickhouse_tier_usage_insert_failed")
	}
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func sanitizeTableName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("table name is empty")
	}
	for _, r := range name {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return "", fmt.Errorf("table name contains invalid character %q", r)
		}
	}
	return name, nil
}

// Close releases the underlying ClickHouse connection.
func (s *MetricsSink) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
