// Package optimize locates constrained extrema of f subject to g(x, y) = 0
// by a coarse grid search for points where ∇f = λ∇g.
//
// There is no refinement step: resolution is bounded by the search step, and
// the labels are a ranking of the surviving points by f, not a proof.
package optimize

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/GriffinCanCode/grafy/internal/calculus/derivative"
	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
)

const (
	DefaultRange = 5.0
	DefaultStep  = 0.3
	// MaxPoints caps the reported critical points.
	MaxPoints = 6

	constraintTol = 0.1
	minGradient   = 0.01
	lambdaTol     = 0.5
	dedupRadius   = 0.5
	gradStep      = 1e-3
)

// Kind labels a constrained critical point.
type Kind string

const (
	Maximum  Kind = "Maximum"
	Minimum  Kind = "Minimum"
	Critical Kind = "Critical Point"
)

// Point is a constrained critical point with its multiplier.
type Point struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Lambda float64 `json:"lambda"`
	Type   Kind    `json:"type"`
}

// Result is the outcome of Constrained.
type Result struct {
	CriticalPoints []Point `json:"criticalPoints"`
	Converged      bool    `json:"converged"`
	Candidates     int     `json:"candidates"`
}

// Constrained scans [-searchRange, searchRange]² at searchStep increments.
// A lattice point is kept when |g| < 0.1, both components of ∇g exceed 0.01
// in magnitude and the two multiplier estimates fx/gx and fy/gy agree within
// 0.5. Survivors are deduplicated (first seen wins within 0.5), sorted by
// descending f and labelled before truncation to MaxPoints.
func Constrained(f, g expr.Surface, searchRange, searchStep float64) Result {
	axis := grid.Steps(searchRange, searchStep)
	res := Result{CriticalPoints: []Point{}}
	if axis == nil {
		return res
	}

	var candidates []Point
	for _, x := range axis {
		for _, y := range axis {
			if p, ok := candidate(f, g, x, y); ok {
				candidates = append(candidates, p)
			}
		}
	}
	res.Candidates = len(candidates)

	points := dedup(candidates)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Z > points[j].Z })
	if len(points) > 0 {
		points[0].Type = Maximum
		if len(points) > 1 {
			points[len(points)-1].Type = Minimum
		}
	}
	if len(points) > MaxPoints {
		points = points[:MaxPoints]
	}
	res.CriticalPoints = points
	res.Converged = len(points) > 0
	return res
}

func candidate(f, g expr.Surface, x, y float64) (Point, bool) {
	if !(math.Abs(g(x, y)) < constraintTol) {
		return Point{}, false
	}
	fx, fy := derivative.Gradient(f, x, y, gradStep)
	gx, gy := derivative.Gradient(g, x, y, gradStep)
	if !(math.Abs(gx) > minGradient && math.Abs(gy) > minGradient) {
		return Point{}, false
	}
	l1, l2 := fx/gx, fy/gy
	if !(math.Abs(l1-l2) < lambdaTol) {
		return Point{}, false
	}
	lambda := (l1 + l2) / 2
	z := f(x, y)
	if !finite(z) || !finite(lambda) {
		return Point{}, false
	}
	return Point{X: x, Y: y, Z: z, Lambda: lambda, Type: Critical}, true
}

func dedup(candidates []Point) []Point {
	out := make([]Point, 0, len(candidates))
	for _, c := range candidates {
		dup := false
		for _, p := range out {
			if floats.Distance([]float64{c.X, c.Y}, []float64{p.X, p.Y}, 2) < dedupRadius {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
