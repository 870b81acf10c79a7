package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"zantaracore/internal/errs"
)

// DatabaseQueryTool runs read-only SQL against the operational Postgres
// database (pricing tables, team roster, service catalog). It is admin-only
// because arbitrary SQL execution is not something an anonymous caller
// should be able to trigger through the reasoning loop.
type DatabaseQueryTool struct {
	Pool *pgxpool.Pool
}

func (t *DatabaseQueryTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "database_query",
		Description: "Run a read-only SQL query against the operational database (pricing, services, team roster tables).",
		AdminOnly:   true,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "a SELECT statement"},
			},
			"required": []string{"query"},
		},
	}
}

func (t *DatabaseQueryTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := validateRequired(args, "query"); err != nil {
		return "", err
	}
	query, _ := args["query"].(string)
	trimmed := strings.TrimSpace(strings.ToLower(query))
	if !strings.HasPrefix(trimmed, "select") {
		return "", fmt.Errorf("%w: only SELECT statements are allowed", errs.ErrInvalidArgs)
	}

	rows, err := t.Pool.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	results := make([]map[string]any, 0, 32)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return "", fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
		}
		row := make(map[string]any, len(vals))
		for i, fd := range fieldDescs {
			row[string(fd.Name)] = vals[i]
		}
		results = append(results, row)
		if len(results) >= 200 {
			break
		}
	}
	if rows.Err() != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, rows.Err())
	}

	b, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
