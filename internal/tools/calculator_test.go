package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatorEvaluatesExpression(t *testing.T) {
	c := &CalculatorTool{}
	out, err := c.Execute(context.Background(), map[string]any{"expression": "(12000000 * 0.11) / 12"})
	require.NoError(t, err)
	assert.Equal(t, "110000", out)
}

func TestCalculatorRejectsDivisionByZero(t *testing.T) {
	c := &CalculatorTool{}
	_, err := c.Execute(context.Background(), map[string]any{"expression": "1 / 0"})
	require.Error(t, err)
}

func TestCalculatorRejectsUnparsableExpression(t *testing.T) {
	c := &CalculatorTool{}
	_, err := c.Execute(context.Background(), map[string]any{"expression": "func() {}"})
	require.Error(t, err)
}

func TestCalculatorRequiresExpression(t *testing.T) {
	c := &CalculatorTool{}
	_, err := c.Execute(context.Background(), map[string]any{})
	require.Error(t, err)
}
