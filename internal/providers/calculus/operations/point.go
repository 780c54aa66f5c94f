package operations

import (
	"context"

	"github.com/GriffinCanCode/grafy/internal/calculus/derivative"
	"github.com/GriffinCanCode/grafy/internal/calculus/limit"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
)

// DefaultFieldCount is the lattice size of gradient_field when none is given.
const DefaultFieldCount = 18

// PointOps handles local analysis around a point
type PointOps struct {
	*common.CalcOps
}

// GetTools returns point tool definitions
func (p *PointOps) GetTools() []types.Tool {
	expression := types.Parameter{Name: "expression", Type: "string", Description: "Expression in x, y and t", Required: true}
	x := types.Parameter{Name: "x", Type: "number", Description: "x coordinate", Required: true}
	y := types.Parameter{Name: "y", Type: "number", Description: "y coordinate", Required: true}
	t := types.Parameter{Name: "t", Type: "number", Description: "Time parameter (default 0)", Required: false}
	h := types.Parameter{Name: "h", Type: "number", Description: "Finite-difference step", Required: false}

	return []types.Tool{
		{
			ID:          "calculus.derivatives",
			Name:        "Partial Derivatives",
			Description: "First and second partials, gradient and second-derivative test at a point",
			Parameters:  []types.Parameter{expression, x, y, t, h},
			Returns:     "object",
		},
		{
			ID:          "calculus.gradient_field",
			Name:        "Gradient Field",
			Description: "Sample gradient arrows on a lattice over the bounds",
			Parameters: []types.Parameter{
				expression, t, h,
				{Name: "bounds", Type: "object", Description: "{xMin, xMax, yMin, yMax}", Required: false},
				{Name: "range", Type: "number", Description: "Half-width of a square domain (default 4)", Required: false},
				{Name: "count", Type: "number", Description: "Arrows per axis (default 18)", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "calculus.directional",
			Name:        "Directional Derivative",
			Description: "Rate of change along a direction vector",
			Parameters: []types.Parameter{
				expression, x, y, t, h,
				{Name: "ux", Type: "number", Description: "Direction x component", Required: true},
				{Name: "uy", Type: "number", Description: "Direction y component", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "calculus.limit",
			Name:        "Limit",
			Description: "Estimate a two-variable limit by approaching along several paths",
			Parameters: []types.Parameter{
				expression, x, y, t,
				{Name: "epsilon", Type: "number", Description: "Approach distance (default 1e-3)", Required: false},
			},
			Returns: "object",
		},
	}
}

// Derivatives computes partials at (x, y)
func (p *PointOps) Derivatives(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f, err := p.Surface(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}
	xy, err := common.RequireNumbers(params, "x", "y")
	if err != nil {
		return common.Failure(err.Error())
	}

	h := p.Step(params)
	r := derivative.Partials(f, xy[0], xy[1], h)
	kind, d := derivative.Classify(r)

	return common.Success(map[string]interface{}{
		"x":            xy[0],
		"y":            xy[1],
		"z":            common.Num(f(xy[0], xy[1])),
		"h":            h,
		"fx":           common.Num(r.Fx),
		"fy":           common.Num(r.Fy),
		"fxx":          common.Num(r.Fxx),
		"fyy":          common.Num(r.Fyy),
		"fxy":          common.Num(r.Fxy),
		"gradMag":      common.Num(r.GradMag),
		"gradDir":      common.Nums(r.GradDir[:]),
		"discriminant": common.Num(d),
		"kind":         string(kind),
	})
}

// GradientField samples gradient arrows over the bounds
func (p *PointOps) GradientField(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f, err := p.Surface(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}

	b := common.GetBounds(params, 4)
	n := p.Resolution(params, "count", DefaultFieldCount)
	arrows := derivative.Field(f, b, n, p.Step(params))

	out := make([]map[string]interface{}, 0, len(arrows))
	for _, a := range arrows {
		out = append(out, map[string]interface{}{
			"x":         common.Num(a.X),
			"y":         common.Num(a.Y),
			"z":         common.Num(a.Z),
			"direction": common.Nums(a.Direction[:]),
			"magnitude": common.Num(a.Magnitude),
		})
	}
	return common.Success(map[string]interface{}{
		"bounds": b,
		"count":  n,
		"arrows": out,
	})
}

// Directional computes ∇f·u for the normalized direction u
func (p *PointOps) Directional(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f, err := p.Surface(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}
	v, err := common.RequireNumbers(params, "x", "y", "ux", "uy")
	if err != nil {
		return common.Failure(err.Error())
	}

	d := derivative.Directional(f, v[0], v[1], v[2], v[3], p.Step(params))
	return common.Success(map[string]interface{}{
		"value":   common.Num(d),
		"defined": common.Num(d) != nil,
	})
}

// Limit estimates the limit of f at (x, y)
func (p *PointOps) Limit(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f, err := p.Surface(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}
	xy, err := common.RequireNumbers(params, "x", "y")
	if err != nil {
		return common.Failure(err.Error())
	}

	r := limit.Estimate(f, xy[0], xy[1], common.GetNumberOr(params, "epsilon", limit.DefaultEpsilon))

	paths := make([]map[string]interface{}, 0, len(r.Paths))
	for _, path := range r.Paths {
		paths = append(paths, map[string]interface{}{
			"name":    path.Name,
			"dx":      common.Num(path.DX),
			"dy":      common.Num(path.DY),
			"value":   common.Num(path.Value),
			"defined": path.Defined,
		})
	}
	return common.Success(map[string]interface{}{
		"x":       common.Num(r.X),
		"y":       common.Num(r.Y),
		"epsilon": common.Num(r.Epsilon),
		"status":  string(r.Status),
		"value":   common.Num(r.Value),
		"paths":   paths,
	})
}
