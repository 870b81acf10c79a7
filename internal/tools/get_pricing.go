package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"zantaracore/internal/errs"
)

// GetPricingTool looks up Bali Zero service pricing by name, using a
// parameterized query rather than free-form SQL so it is safe to expose to
// non-admin callers.
type GetPricingTool struct {
	Pool *pgxpool.Pool
}

func (t *GetPricingTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "get_pricing",
		Description: "Look up the current price of a Bali Zero service by name (e.g. KITAS extension, company setup, tax reporting).",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"service_name": map[string]any{"type": "string", "description": "the service to look up, matched case-insensitively as a substring"},
			},
			"required": []string{"service_name"},
		},
	}
}

type pricingRow struct {
	ServiceName string  `json:"service_name"`
	PriceIDR    float64 `json:"price_idr"`
	Tier        string  `json:"tier"`
	Notes       string  `json:"notes"`
}

func (t *GetPricingTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := validateRequired(args, "service_name"); err != nil {
		return "", err
	}
	name, _ := args["service_name"].(string)

	rows, err := t.Pool.Query(ctx,
		`SELECT service_name, price_idr, tier, COALESCE(notes, '') FROM service_pricing
		 WHERE service_name ILIKE '%' || $1 || '%'
		 ORDER BY service_name LIMIT 20`, name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
	}
	defer rows.Close()

	var results []pricingRow
	for rows.Next() {
		var r pricingRow
		if err := rows.Scan(&r.ServiceName, &r.PriceIDR, &r.Tier, &r.Notes); err != nil {
			return "", fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
		}
		results = append(results, r)
	}
	if rows.Err() != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, rows.Err())
	}
	if len(results) == 0 {
		return fmt.Sprintf("No pricing found for %q.", name), nil
	}

	b, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
