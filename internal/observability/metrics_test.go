package observability

import (
	"testing"

	"zantaracore/internal/retrieval"
)

func TestSanitizeTableName(t *testing.T) {
	cases := []struct {
		name  string
		value string
		ok    bool
	}{
		{"simple", "zantara_query_metrics", true},
		{"empty", "", false},
		{"dash", "metrics-raw", false},
		{"space", "metrics raw", false},
		{"dot", "db.metrics", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sanitizeTableName(tc.value)
			if tc.ok && err != nil {
				t.Fatalf("expected success, got error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error for value %q", tc.value)
			}
		})
	}
}

func TestMetricsSinkNilReceiverIsNoOp(t *testing.T) {
	var s *MetricsSink
	s.RecordRetrievalDiagnostics(nil, "q", retrieval.SourceDiagnostics{})
	s.RecordTierUsage(nil, "q", "lite", 0, nil)
	if err := s.Close(); err != nil {
		t.Fatalf("expected nil-receiver Close to be a no-op, got: %v", err)
	}
}
