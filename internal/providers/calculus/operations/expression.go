package operations

import (
	"context"
	"errors"
	"strings"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
)

// ExpressionOps handles compilation and point evaluation
type ExpressionOps struct {
	*common.CalcOps
}

// GetTools returns expression tool definitions
func (e *ExpressionOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "calculus.evaluate",
			Name:        "Evaluate",
			Description: "Evaluate f(x, y, t) at a point",
			Parameters: []types.Parameter{
				{Name: "expression", Type: "string", Description: "Expression in x, y and t", Required: true},
				{Name: "x", Type: "number", Description: "x coordinate", Required: true},
				{Name: "y", Type: "number", Description: "y coordinate", Required: true},
				{Name: "t", Type: "number", Description: "Time parameter (default 0)", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "calculus.validate",
			Name:        "Validate",
			Description: "Check an expression and report the first syntax error",
			Parameters: []types.Parameter{
				{Name: "expression", Type: "string", Description: "Expression to check", Required: true},
				{Name: "arity", Type: "string", Description: "Variables in scope: xy or xyt (default xyt)", Required: false},
				{Name: "vocabulary", Type: "boolean", Description: "Also list the allowed functions and constants", Required: false},
			},
			Returns: "object",
		},
	}
}

// Evaluate computes f at (x, y, t)
func (e *ExpressionOps) Evaluate(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f, err := e.Func(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}
	xy, err := common.RequireNumbers(params, "x", "y")
	if err != nil {
		return common.Failure(err.Error())
	}
	t := common.GetNumberOr(params, "t", 0)

	v := f(xy[0], xy[1], t)
	return common.Success(map[string]interface{}{
		"value":   common.Num(v),
		"defined": common.Num(v) != nil,
	})
}

// Validate parses without evaluating and describes the outcome
func (e *ExpressionOps) Validate(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	src, ok := common.GetString(params, "expression")
	if !ok {
		return common.Failure("expression parameter required")
	}

	arity := expr.XYT
	if a, ok := common.GetString(params, "arity"); ok {
		switch strings.ToLower(a) {
		case "xy", "2":
			arity = expr.XY
		case "xyt", "3", "":
		default:
			return common.Failure("arity must be xy or xyt")
		}
	}

	var data map[string]interface{}
	parsed, err := e.Cache.Parse(src, arity)
	if err != nil {
		data = map[string]interface{}{
			"valid": false,
			"error": err.Error(),
		}
		var syn *expr.SyntaxError
		if errors.As(err, &syn) {
			data["position"] = syn.Pos
		}
	} else {
		data = map[string]interface{}{
			"valid":     true,
			"canonical": parsed.String(),
			"arity":     parsed.Arity().String(),
			"usesTime":  parsed.UsesTime(),
		}
	}

	if vocab, _ := common.GetBool(params, "vocabulary"); vocab {
		data["functions"] = expr.Functions()
		data["constants"] = expr.Constants()
	}
	return common.Success(data)
}
