// Package limit approximates two-variable limits by sampling a handful of
// approach paths at a small offset.
//
// The estimate is heuristic: agreement along five paths is evidence, not
// proof, that a limit exists.
package limit

import (
	"math"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
)

const (
	DefaultEpsilon = 1e-3
	// Tolerance is the largest spread, measured from the first defined path,
	// that still counts as agreement.
	Tolerance = 0.01
)

// Status is the verdict of Estimate.
type Status string

const (
	Exists        Status = "exists"
	PathDependent Status = "path-dependent"
	DoesNotExist  Status = "does-not-exist"
)

// Path is one approach direction and the value sampled along it. Value is
// NaN and Defined false when the sample is undefined.
type Path struct {
	Name    string  `json:"name"`
	DX      float64 `json:"dx"`
	DY      float64 `json:"dy"`
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Result is the outcome of Estimate. Value is NaN unless Status is Exists.
type Result struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Epsilon float64 `json:"epsilon"`
	Status  Status  `json:"status"`
	Value   float64 `json:"value"`
	Paths   []Path  `json:"paths"`
}

type approach struct {
	name   string
	dx, dy func(eps float64) float64
}

func plus(eps float64) float64  { return eps }
func minus(eps float64) float64 { return -eps }
func zero(float64) float64      { return 0 }
func square(eps float64) float64 {
	return eps * eps
}

var approaches = []approach{
	{"x-axis", plus, zero},
	{"y-axis", zero, plus},
	{"diagonal y=x", plus, plus},
	{"diagonal y=-x", plus, minus},
	{"parabola y=x^2", plus, square},
}

// Estimate samples f at (x0, y0) offset along each approach path. A
// non-positive or non-finite epsilon falls back to DefaultEpsilon.
func Estimate(f expr.Surface, x0, y0, epsilon float64) Result {
	if !(epsilon > 0) || math.IsInf(epsilon, 0) {
		epsilon = DefaultEpsilon
	}
	res := Result{X: x0, Y: y0, Epsilon: epsilon, Value: math.NaN(), Paths: make([]Path, 0, len(approaches))}

	var defined []float64
	for _, a := range approaches {
		dx, dy := a.dx(epsilon), a.dy(epsilon)
		v := f(x0+dx, y0+dy)
		p := Path{Name: a.name, DX: dx, DY: dy, Value: math.NaN()}
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			p.Value, p.Defined = v, true
			defined = append(defined, v)
		}
		res.Paths = append(res.Paths, p)
	}

	if len(defined) == 0 {
		res.Status = DoesNotExist
		return res
	}
	first := defined[0]
	for _, v := range defined[1:] {
		if !(math.Abs(v-first) < Tolerance) {
			res.Status = PathDependent
			return res
		}
	}
	res.Status = Exists
	res.Value = first
	return res
}
