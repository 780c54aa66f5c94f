// Package integrate computes double integrals and mass properties of a
// surface z = f(x, y) by midpoint Riemann sums.
package integrate

import (
	"math"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
)

// slopeStep is the fixed central-difference step for the area element.
const slopeStep = 1e-3

// Vec3 is a point or vector in space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Inertia holds moments of inertia about the coordinate axes.
type Inertia struct {
	Ix float64 `json:"Ix"`
	Iy float64 `json:"Iy"`
	Iz float64 `json:"Iz"`
}

// Result is the outcome of Integrate.
//
// Volume is unsigned (∫∫|f| dA) while the moments use the signed z, so a
// surface symmetric about z = 0 has positive volume but a centre of mass
// on the plane.
type Result struct {
	Volume          float64 `json:"volume"`
	SurfaceArea     float64 `json:"surfaceArea"`
	Mass            float64 `json:"mass"`
	CenterOfMass    Vec3    `json:"centerOfMass"`
	MomentOfInertia Inertia `json:"momentOfInertia"`
	Samples         int     `json:"samples"`
	Skipped         int     `json:"skipped"`
	Massless        int     `json:"massless"`
}

// Integrate sums over a resolution×resolution grid of cell centres. density
// may be nil, meaning ρ ≡ 1. Samples where f is undefined are skipped.
// Samples with an undefined slope count toward volume only, and samples with
// an undefined density contribute area but no mass. Both are tallied in
// Massless.
func Integrate(f, density expr.Surface, b grid.Bounds, resolution int) Result {
	if resolution < 1 {
		resolution = 1
	}
	if density == nil {
		density = func(_, _ float64) float64 { return 1 }
	}
	b = b.Normalize()
	xs := grid.Centers(b.XMin, b.XMax, resolution)
	ys := grid.Centers(b.YMin, b.YMax, resolution)
	dA := (b.Width() / float64(resolution)) * (b.Height() / float64(resolution))

	var (
		res                Result
		mx, my, mz         float64
		ix, iy, iz         float64
		volume, area, mass float64
	)
	for _, x := range xs {
		for _, y := range ys {
			z := f(x, y)
			if !finite(z) {
				res.Skipped++
				continue
			}
			res.Samples++
			volume += math.Abs(z) * dA

			fx := (f(x+slopeStep, y) - f(x-slopeStep, y)) / (2 * slopeStep)
			fy := (f(x, y+slopeStep) - f(x, y-slopeStep)) / (2 * slopeStep)
			if !finite(fx) || !finite(fy) {
				res.Massless++
				continue
			}
			dS := math.Sqrt(1+fx*fx+fy*fy) * dA
			area += dS

			rho := density(x, y)
			if !finite(rho) {
				res.Massless++
				continue
			}
			dm := rho * dS
			mass += dm
			mx += x * dm
			my += y * dm
			mz += z * dm
			ix += (y*y + z*z) * dm
			iy += (x*x + z*z) * dm
			iz += (x*x + y*y) * dm
		}
	}

	res.Volume = volume
	res.SurfaceArea = area
	res.Mass = mass
	if mass > 0 {
		res.CenterOfMass = Vec3{X: mx / mass, Y: my / mass, Z: mz / mass}
	}
	res.MomentOfInertia = Inertia{Ix: ix, Iy: iy, Iz: iz}
	return res
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
