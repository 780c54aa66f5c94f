// Package grids exposes the whole-domain analyses: integration, domain
// scanning, region statistics, intersection curves and height grids.
package grids

import (
	"context"

	"github.com/GriffinCanCode/grafy/internal/calculus/domain"
	"github.com/GriffinCanCode/grafy/internal/calculus/integrate"
	"github.com/GriffinCanCode/grafy/internal/calculus/intersect"
	"github.com/GriffinCanCode/grafy/internal/calculus/surface"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
)

// Defaults applied when a call leaves the resolution out.
const (
	DefaultIntegrationResolution  = 50
	DefaultIntegrationRange       = 2.0
	DefaultScanResolution         = 50
	DefaultRegionResolution       = 100
	DefaultIntersectionResolution = 80
	DefaultSegments               = 140
)

// GridOps handles analyses that sample a whole rectangle
type GridOps struct {
	*common.CalcOps
}

// GetTools returns grid tool definitions
func (g *GridOps) GetTools() []types.Tool {
	expression := types.Parameter{Name: "expression", Type: "string", Description: "Expression in x, y and t", Required: true}
	t := types.Parameter{Name: "t", Type: "number", Description: "Time parameter (default 0)", Required: false}
	bounds := types.Parameter{Name: "bounds", Type: "object", Description: "{xMin, xMax, yMin, yMax}", Required: false}
	rng := types.Parameter{Name: "range", Type: "number", Description: "Half-width of a square domain", Required: false}
	resolution := types.Parameter{Name: "resolution", Type: "number", Description: "Cells per axis", Required: false}
	density := types.Parameter{Name: "density", Type: "string", Description: "Density ρ(x, y); 1 when omitted", Required: false}

	return []types.Tool{
		{
			ID:          "calculus.integrate",
			Name:        "Double Integral",
			Description: "Volume, surface area, mass, center of mass and moments of inertia over the bounds",
			Parameters:  []types.Parameter{expression, density, bounds, rng, resolution, t},
			Returns:     "object",
		},
		{
			ID:          "calculus.domain_range",
			Name:        "Domain and Range",
			Description: "Scan a square domain for the value range, defined share and local extrema",
			Parameters:  []types.Parameter{expression, rng, resolution, t},
			Returns:     "object",
		},
		{
			ID:          "calculus.region_stats",
			Name:        "Region Statistics",
			Description: "Height range, volume, mass and center of mass over an implicit region",
			Parameters: []types.Parameter{
				expression, density, bounds, rng, resolution, t,
				{Name: "region", Type: "string", Description: "Region r(x, y) ≤ 0; whole bounds when omitted", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "calculus.intersection",
			Name:        "Surface Intersection",
			Description: "Points on the curve where two surfaces meet",
			Parameters: []types.Parameter{
				expression, bounds, rng, resolution, t,
				{Name: "other", Type: "string", Description: "Second surface", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "calculus.surface",
			Name:        "Surface Mesh",
			Description: "Height grid for rendering; undefined heights are null",
			Parameters: []types.Parameter{
				expression, bounds, rng, t,
				{Name: "segments", Type: "number", Description: "Vertices per axis", Required: false},
			},
			Returns: "object",
		},
	}
}

// Integrate computes the double integral and mass properties
func (g *GridOps) Integrate(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f, err := g.Surface(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}
	density, err := g.OptionalSurface(params, "density")
	if err != nil {
		return common.Failure(err.Error())
	}

	b := common.GetBounds(params, DefaultIntegrationRange)
	n := g.Resolution(params, "resolution", DefaultIntegrationResolution)
	r := integrate.Integrate(f, density, b, n)

	return common.Success(map[string]interface{}{
		"bounds":       b,
		"resolution":   n,
		"volume":       common.Num(r.Volume),
		"surfaceArea":  common.Num(r.SurfaceArea),
		"mass":         common.Num(r.Mass),
		"centerOfMass": common.XYZ(r.CenterOfMass.X, r.CenterOfMass.Y, r.CenterOfMass.Z),
		"momentOfInertia": map[string]interface{}{
			"Ix": common.Num(r.MomentOfInertia.Ix),
			"Iy": common.Num(r.MomentOfInertia.Iy),
			"Iz": common.Num(r.MomentOfInertia.Iz),
		},
		"samples":  r.Samples,
		"skipped":  r.Skipped,
		"massless": r.Massless,
	})
}

// DomainRange scans [-range, range]² for value range and extrema
func (g *GridOps) DomainRange(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f, err := g.Surface(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}

	n := g.Resolution(params, "resolution", DefaultScanResolution)
	r := domain.Scan(f, common.GetNumberOr(params, "range", domain.DefaultRange), n)

	points := make([]map[string]interface{}, 0, len(r.CriticalPoints))
	for _, p := range r.CriticalPoints {
		pt := common.XYZ(p.X, p.Y, p.Z)
		pt["type"] = string(p.Type)
		points = append(points, pt)
	}
	return common.Success(map[string]interface{}{
		"halfRange":      r.HalfRange,
		"resolution":     r.Resolution,
		"zMin":           common.Num(r.ZMin),
		"zMax":           common.Num(r.ZMax),
		"valid":          r.Valid,
		"total":          r.Total,
		"validRatio":     r.ValidRatio,
		"everywhere":     r.Everywhere(),
		"mean":           common.Num(r.Mean),
		"stdDev":         common.Num(r.StdDev),
		"criticalPoints": points,
	})
}

// RegionStats integrates over an optional implicit region
func (g *GridOps) RegionStats(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f, err := g.Surface(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}
	density, err := g.OptionalSurface(params, "density")
	if err != nil {
		return common.Failure(err.Error())
	}
	region, err := g.OptionalSurface(params, "region")
	if err != nil {
		return common.Failure(err.Error())
	}

	b := common.GetBounds(params, domain.DefaultRange)
	st := domain.Region(f, density, region, b, g.Resolution(params, "resolution", DefaultRegionResolution))

	return common.Success(map[string]interface{}{
		"bounds":       b,
		"zMin":         common.Num(st.ZMin),
		"zMax":         common.Num(st.ZMax),
		"volume":       common.Num(st.Volume),
		"mass":         common.Num(st.Mass),
		"centerOfMass": common.XYZ(st.CenterOfMass.X, st.CenterOfMass.Y, st.CenterOfMass.Z),
		"cells":        st.Cells,
		"included":     st.Included,
	})
}

// Intersection extracts the curve where expression meets other
func (g *GridOps) Intersection(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f1, err := g.Surface(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}
	f2, err := g.Surface(params, "other")
	if err != nil {
		return common.Failure(err.Error())
	}

	b := common.GetBounds(params, domain.DefaultRange)
	n := intersect.Cells(g.Resolution(params, "resolution", DefaultIntersectionResolution))
	pts := intersect.Extract(f1, f2, b, n)

	out := make([]map[string]interface{}, 0, len(pts))
	for _, p := range pts {
		out = append(out, common.XYZ(p.X, p.Y, p.Z))
	}
	return common.Success(map[string]interface{}{
		"bounds":     b,
		"resolution": n,
		"count":      len(out),
		"points":     out,
	})
}

// Mesh samples a height grid
func (g *GridOps) Mesh(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f, err := g.Func(params, "expression")
	if err != nil {
		return common.Failure(err.Error())
	}

	b := common.GetBounds(params, domain.DefaultRange)
	n := g.Resolution(params, "segments", DefaultSegments)
	m := surface.Sample(f, b, n, n, common.GetNumberOr(params, "t", 0))
	return common.Success(MeshData(m))
}

// MeshData encodes a mesh with undefined heights as nil.
func MeshData(m surface.Mesh) map[string]interface{} {
	return map[string]interface{}{
		"t":      common.Num(m.T),
		"bounds": m.Bounds,
		"nx":     m.NX,
		"ny":     m.NY,
		"xs":     common.Nums(m.Xs),
		"ys":     common.Nums(m.Ys),
		"z":      common.Nums(m.Z),
		"valid":  m.Valid,
	}
}
