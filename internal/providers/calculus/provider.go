package calculus

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/grafy/internal/presets"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/grids"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/library"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/operations"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/optimization"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
)

// Options configures a Provider
type Options struct {
	CacheSize int
	Limits    common.Limits
	Library   *presets.Library
}

// Provider implements surface calculus tools
type Provider struct {
	ops *common.CalcOps

	// Module instances
	expressions  *operations.ExpressionOps
	points       *operations.PointOps
	grids        *grids.GridOps
	optimization *optimization.OptimizationOps
	presets      *library.PresetOps
}

// NewProvider creates a modular calculus provider
func NewProvider(opts Options) *Provider {
	ops := common.NewCalcOps(opts.CacheSize, opts.Limits)
	lib := opts.Library
	if lib == nil {
		lib = presets.NewLibrary(nil)
	}

	return &Provider{
		ops:          ops,
		expressions:  &operations.ExpressionOps{CalcOps: ops},
		points:       &operations.PointOps{CalcOps: ops},
		grids:        &grids.GridOps{CalcOps: ops},
		optimization: &optimization.OptimizationOps{CalcOps: ops},
		presets:      &library.PresetOps{Library: lib},
	}
}

// Definition returns service metadata with all module tools
func (p *Provider) Definition() types.Service {
	tools := []types.Tool{}
	tools = append(tools, p.expressions.GetTools()...)
	tools = append(tools, p.points.GetTools()...)
	tools = append(tools, p.grids.GetTools()...)
	tools = append(tools, p.optimization.GetTools()...)
	tools = append(tools, p.presets.GetTools()...)

	return types.Service{
		ID:          "calculus",
		Name:        "Surface Calculus",
		Description: "Numeric calculus of surfaces z = f(x, y, t): derivatives, limits, integrals, extrema and intersections",
		Category:    types.CategoryCalculus,
		Capabilities: []string{
			"evaluate",
			"derivatives",
			"gradient_field",
			"limits",
			"integration",
			"domain_range",
			"lagrange",
			"intersection",
			"surface_mesh",
			"presets",
		},
		Tools: tools,
		DataModels: []types.DataModel{
			{Name: "Bounds", Fields: map[string]string{"xMin": "number", "xMax": "number", "yMin": "number", "yMax": "number"}},
			{Name: "Point", Fields: map[string]string{"x": "number", "y": "number", "z": "number|null"}},
		},
	}
}

// Execute routes to appropriate module
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	// Expressions
	case "calculus.evaluate":
		return p.expressions.Evaluate(ctx, params, appCtx)
	case "calculus.validate":
		return p.expressions.Validate(ctx, params, appCtx)

	// Point analysis
	case "calculus.derivatives":
		return p.points.Derivatives(ctx, params, appCtx)
	case "calculus.gradient_field":
		return p.points.GradientField(ctx, params, appCtx)
	case "calculus.directional":
		return p.points.Directional(ctx, params, appCtx)
	case "calculus.limit":
		return p.points.Limit(ctx, params, appCtx)

	// Grid analysis
	case "calculus.integrate":
		return p.grids.Integrate(ctx, params, appCtx)
	case "calculus.domain_range":
		return p.grids.DomainRange(ctx, params, appCtx)
	case "calculus.region_stats":
		return p.grids.RegionStats(ctx, params, appCtx)
	case "calculus.intersection":
		return p.grids.Intersection(ctx, params, appCtx)
	case "calculus.surface":
		return p.grids.Mesh(ctx, params, appCtx)

	// Optimization
	case "calculus.lagrange":
		return p.optimization.Lagrange(ctx, params, appCtx)

	// Presets
	case "calculus.presets.list":
		return p.presets.List(ctx, params, appCtx)
	case "calculus.presets.get":
		return p.presets.Get(ctx, params, appCtx)

	default:
		return common.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

// Cache exposes the compiled-expression cache for metrics and streaming
func (p *Provider) Cache() *common.Cache {
	return p.ops.Cache
}

// Limits returns the effective resolution limits
func (p *Provider) Limits() common.Limits {
	return p.ops.Limits
}

// Library returns the preset library backing the preset tools
func (p *Provider) Library() *presets.Library {
	return p.presets.Library
}
