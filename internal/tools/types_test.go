package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zantaracore/internal/errs"
)

type stubTool struct {
	spec ToolSpec
	fn   func(ctx context.Context, args map[string]any) (string, error)
}

func (s *stubTool) Describe() ToolSpec { return s.spec }
func (s *stubTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	return s.fn(ctx, args)
}

func TestRegistrySpecsHidesAdminOnlyFromNonAdmin(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubTool{spec: ToolSpec{Name: "public_tool"}})
	reg.Register(&stubTool{spec: ToolSpec{Name: "admin_tool", AdminOnly: true}})

	assert.Len(t, reg.Specs(false), 1)
	assert.Len(t, reg.Specs(true), 2)
}

func TestDispatchUnknownToolReturnsError(t *testing.T) {
	reg := NewRegistry()
	_, err := Dispatch(context.Background(), reg, NewBudget(5), "nope", nil, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrToolNotFound))
}

func TestDispatchRejectsAdminOnlyForNonAdmin(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubTool{spec: ToolSpec{Name: "admin_tool", AdminOnly: true}})
	_, err := Dispatch(context.Background(), reg, NewBudget(5), "admin_tool", nil, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotAuthorized))
}

func TestDispatchSwallowsExecutionErrorIntoObservation(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubTool{
		spec: ToolSpec{Name: "flaky"},
		fn: func(ctx context.Context, args map[string]any) (string, error) {
			return "", errors.New("boom")
		},
	})
	out, err := Dispatch(context.Background(), reg, NewBudget(5), "flaky", nil, false)
	require.NoError(t, err)
	assert.Contains(t, out, "Error executing flaky: boom")
}

func TestBudgetExhaustsAfterMaxCalls(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubTool{
		spec: ToolSpec{Name: "noop"},
		fn:   func(ctx context.Context, args map[string]any) (string, error) { return "ok", nil },
	})
	budget := NewBudget(1)
	_, err := Dispatch(context.Background(), reg, budget, "noop", nil, false)
	require.NoError(t, err)

	_, err = Dispatch(context.Background(), reg, budget, "noop", nil, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrRateLimited))
}

func TestMarshalArgsRoundTripsIntoTypedStruct(t *testing.T) {
	type params struct {
		Query string `json:"query"`
		K     int    `json:"k"`
	}
	p, err := MarshalArgs[params](map[string]any{"query": "visa", "k": float64(5)})
	require.NoError(t, err)
	assert.Equal(t, "visa", p.Query)
	assert.Equal(t, 5, p.K)
}
