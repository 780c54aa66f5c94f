package optimization

import (
	"context"

	"github.com/GriffinCanCode/grafy/internal/calculus/optimize"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
)

// OptimizationOps handles constrained optimization
type OptimizationOps struct {
	*common.CalcOps
}

// GetTools returns optimization tool definitions
func (o *OptimizationOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "calculus.lagrange",
			Name:        "Lagrange Multipliers",
			Description: "Find extrema of f subject to g(x, y) = 0 by grid search",
			Parameters: []types.Parameter{
				{Name: "expression", Type: "string", Description: "Objective f(x, y, t)", Required: true},
				{Name: "constraint", Type: "string", Description: "Constraint g(x, y, t) = 0", Required: true},
				{Name: "range", Type: "number", Description: "Search half-width (default 5)", Required: false},
				{Name: "step", Type: "number", Description: "Search step (default 0.3)", Required: false},
				{Name: "t", Type: "number", Description: "Time parameter (default 0)", Required: false},
			},
			Returns: "object",
		},
	}
}

// Lagrange runs the constrained critical-point search
func (o *OptimizationOps) Lagrange(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f, err := o.Surface(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}
	g, err := o.Surface(params, "constraint")
	if err != nil {
		return common.Failure(err.Error())
	}

	searchRange := common.GetNumberOr(params, "range", optimize.DefaultRange)
	step := common.GetNumberOr(params, "step", optimize.DefaultStep)
	if steps := 2 * searchRange / step; step > 0 && steps > float64(o.Limits.MaxResolution) {
		return common.Failure("range/step exceeds the configured resolution limit")
	}

	r := optimize.Constrained(f, g, searchRange, step)

	points := make([]map[string]interface{}, 0, len(r.CriticalPoints))
	for _, p := range r.CriticalPoints {
		pt := common.XYZ(p.X, p.Y, p.Z)
		pt["lambda"] = common.Num(p.Lambda)
		pt["type"] = string(p.Type)
		points = append(points, pt)
	}
	return common.Success(map[string]interface{}{
		"criticalPoints": points,
		"converged":      r.Converged,
		"candidates":     r.Candidates,
	})
}
