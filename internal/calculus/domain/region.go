package domain

import (
	"math"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
	"github.com/GriffinCanCode/grafy/internal/calculus/integrate"
)

const (
	minRegionCells = 16
	maxRegionCells = 200
)

// RegionStats summarizes the solid between z = 0 and the positive part of f
// over an optional implicit region.
type RegionStats struct {
	ZMin         float64        `json:"zMin"`
	ZMax         float64        `json:"zMax"`
	Volume       float64        `json:"volume"`
	Mass         float64        `json:"mass"`
	CenterOfMass integrate.Vec3 `json:"centerOfMass"`
	Cells        int            `json:"cells"`
	Included     int            `json:"included"`
}

// Region integrates over the n×n cell centres of b (n clamped to
// [16, 200]). When region is non-nil only cells with region(x, y) ≤ 0 are
// included; an undefined region value excludes the cell. density may be nil
// for ρ ≡ 1. The centre of mass is NaN when the mass is zero.
func Region(f, density, region expr.Surface, b grid.Bounds, n int) RegionStats {
	if n < minRegionCells {
		n = minRegionCells
	}
	if n > maxRegionCells {
		n = maxRegionCells
	}
	if density == nil {
		density = func(_, _ float64) float64 { return 1 }
	}
	b = b.Normalize()
	xs := grid.Centers(b.XMin, b.XMax, n)
	ys := grid.Centers(b.YMin, b.YMax, n)
	dA := (b.Width() / float64(n)) * (b.Height() / float64(n))

	st := RegionStats{ZMin: math.NaN(), ZMax: math.NaN(), Cells: n * n}
	var mx, my, mz float64
	for _, y := range ys {
		for _, x := range xs {
			if region != nil && !(region(x, y) <= 0) {
				continue
			}
			z := f(x, y)
			if !finite(z) {
				continue
			}
			if st.Included == 0 {
				st.ZMin, st.ZMax = z, z
			}
			st.Included++
			st.ZMin = math.Min(st.ZMin, z)
			st.ZMax = math.Max(st.ZMax, z)

			h := math.Max(0, z)
			dV := h * dA
			st.Volume += dV
			sigma := density(x, y)
			if !finite(sigma) {
				continue
			}
			dM := sigma * dV
			st.Mass += dM
			mx += x * dM
			my += y * dM
			mz += h * h * 0.5 * sigma * dA
		}
	}

	if st.Mass > 0 {
		st.CenterOfMass = integrate.Vec3{X: mx / st.Mass, Y: my / st.Mass, Z: mz / st.Mass}
	} else {
		st.CenterOfMass = integrate.Vec3{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}
	return st
}
