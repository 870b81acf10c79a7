package tools

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"zantaracore/internal/errs"
)

// CalculatorTool evaluates arithmetic expressions (tax brackets, prorated
// fees, currency conversions) without shelling out to an interpreter. It
// parses the expression with go/parser and walks the resulting AST,
// rejecting anything that is not a literal, a parenthesized expression, or
// one of +, -, *, /, acting as a restricted four-function calculator rather
// than a general Go evaluator.
type CalculatorTool struct{}

func (t *CalculatorTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "calculator",
		Description: "Evaluate an arithmetic expression, e.g. for tax brackets or prorated fees.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{"type": "string", "description": "an arithmetic expression such as (12000000 * 0.11) / 12"},
			},
			"required": []string{"expression"},
		},
	}
}

func (t *CalculatorTool) Execute(_ context.Context, args map[string]any) (string, error) {
	if err := validateRequired(args, "expression"); err != nil {
		return "", err
	}
	expr, _ := args["expression"].(string)

	node, err := parser.ParseExpr(expr)
	if err != nil {
		return "", fmt.Errorf("%w: could not parse expression: %v", errs.ErrInvalidArgs, err)
	}
	result, err := evalNode(node)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%g", result), nil
}

func evalNode(n ast.Expr) (float64, error) {
	switch v := n.(type) {
	case *ast.BasicLit:
		if v.Kind != token.INT && v.Kind != token.FLOAT {
			return 0, fmt.Errorf("%w: unsupported literal %q", errs.ErrInvalidArgs, v.Value)
		}
		var f float64
		if _, err := fmt.Sscanf(v.Value, "%g", &f); err != nil {
			return 0, fmt.Errorf("%w: %v", errs.ErrInvalidArgs, err)
		}
		return f, nil
	case *ast.ParenExpr:
		return evalNode(v.X)
	case *ast.UnaryExpr:
		x, err := evalNode(v.X)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case token.SUB:
			return -x, nil
		case token.ADD:
			return x, nil
		}
		return 0, fmt.Errorf("%w: unsupported unary operator %s", errs.ErrInvalidArgs, v.Op)
	case *ast.BinaryExpr:
		x, err := evalNode(v.X)
		if err != nil {
			return 0, err
		}
		y, err := evalNode(v.Y)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case token.ADD:
			return x + y, nil
		case token.SUB:
			return x - y, nil
		case token.MUL:
			return x * y, nil
		case token.QUO:
			if y == 0 {
				return 0, fmt.Errorf("%w: division by zero", errs.ErrInvalidArgs)
			}
			return x / y, nil
		}
		return 0, fmt.Errorf("%w: unsupported operator %s", errs.ErrInvalidArgs, v.Op)
	default:
		return 0, fmt.Errorf("%w: unsupported expression", errs.ErrInvalidArgs)
	}
}
