package derivative

import (
	"math"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
)

// minArrow is the gradient magnitude below which no arrow is emitted.
const minArrow = 1e-9

// Arrow is one gradient sample: position on the surface, unit direction in
// the xy plane and magnitude.
type Arrow struct {
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Z         float64    `json:"z"`
	Direction [2]float64 `json:"direction"`
	Magnitude float64    `json:"magnitude"`
}

// Field samples the gradient on an n×n lattice spanning b inclusively.
// Points with an undefined or vanishing gradient are skipped.
func Field(f expr.Surface, b grid.Bounds, n int, h float64) []Arrow {
	if n < 2 {
		n = 2
	}
	b = b.Normalize()
	xs := grid.Axis(b.XMin, b.XMax, n-1)
	ys := grid.Axis(b.YMin, b.YMax, n-1)

	arrows := make([]Arrow, 0, n*n)
	for _, y := range ys {
		for _, x := range xs {
			fx, fy := Gradient(f, x, y, h)
			mag := math.Hypot(fx, fy)
			if math.IsNaN(mag) || math.IsInf(mag, 0) || mag <= minArrow {
				continue
			}
			arrows = append(arrows, Arrow{
				X:         x,
				Y:         y,
				Z:         f(x, y),
				Direction: [2]float64{fx / mag, fy / mag},
				Magnitude: mag,
			})
		}
	}
	return arrows
}

// Directional is the derivative along (ux, uy), normalized first. A zero or
// non-finite direction is undefined.
func Directional(f expr.Surface, x, y, ux, uy, h float64) float64 {
	n := math.Hypot(ux, uy)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return math.NaN()
	}
	fx, fy := Gradient(f, x, y, h)
	return (fx*ux + fy*uy) / n
}

// Kind classifies a stationary point by the second-derivative test.
type Kind string

const (
	Minimum      Kind = "Minimum"
	Maximum      Kind = "Maximum"
	Saddle       Kind = "Saddle"
	Inconclusive Kind = "Inconclusive"
)

// Classify applies D = fxx·fyy - fxy². Any undefined input is Inconclusive.
func Classify(r Result) (Kind, float64) {
	d := r.Fxx*r.Fyy - r.Fxy*r.Fxy
	switch {
	case math.IsNaN(d):
		return Inconclusive, d
	case d > 0 && r.Fxx > 0:
		return Minimum, d
	case d > 0 && r.Fxx < 0:
		return Maximum, d
	case d < 0:
		return Saddle, d
	}
	return Inconclusive, d
}
