// Package domain estimates where a surface is defined, the range it takes
// and where it has local extrema, all by exhaustive grid sampling.
package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
)

const (
	// DefaultRange replaces a zero or non-finite half range.
	DefaultRange = 4.0
	// MaxCriticalPoints caps the extrema reported by Scan.
	MaxCriticalPoints = 5

	coarseCells = 20
)

// Kind labels a sampled local extremum.
type Kind string

const (
	Maximum Kind = "Maximum"
	Minimum Kind = "Minimum"
)

// CriticalPoint is a coarse-grid node that dominates its four neighbours.
type CriticalPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Type Kind    `json:"type"`
}

// Result is the outcome of Scan. ZMin, ZMax, Mean and StdDev are NaN when no
// sample is defined.
type Result struct {
	HalfRange      float64         `json:"halfRange"`
	Resolution     int             `json:"resolution"`
	ZMin           float64         `json:"zMin"`
	ZMax           float64         `json:"zMax"`
	Valid          int             `json:"valid"`
	Total          int             `json:"total"`
	ValidRatio     float64         `json:"validRatio"`
	Mean           float64         `json:"mean"`
	StdDev         float64         `json:"stdDev"`
	CriticalPoints []CriticalPoint `json:"criticalPoints"`
}

// Everywhere reports whether every sample was defined.
func (r Result) Everywhere() bool { return r.Valid == r.Total }

// Scan samples f on the (resolution+1)² lattice over [-halfRange, halfRange]²
// and searches a 20×20 coarse lattice for local extrema.
func Scan(f expr.Surface, halfRange float64, resolution int) Result {
	r := halfRangeOf(halfRange)
	if resolution < 1 {
		resolution = 1
	}
	axis := grid.Lattice(r, resolution+1)

	res := Result{HalfRange: r, Resolution: resolution, ZMin: math.NaN(), ZMax: math.NaN()}
	values := make([]float64, 0, len(axis)*len(axis))
	for _, x := range axis {
		for _, y := range axis {
			res.Total++
			z := f(x, y)
			if !finite(z) {
				continue
			}
			values = append(values, z)
			if len(values) == 1 {
				res.ZMin, res.ZMax = z, z
				continue
			}
			res.ZMin = math.Min(res.ZMin, z)
			res.ZMax = math.Max(res.ZMax, z)
		}
	}
	res.Valid = len(values)
	res.ValidRatio = float64(res.Valid) / float64(res.Total)
	res.Mean, res.StdDev = summarize(values)
	res.CriticalPoints = extrema(f, r)
	return res
}

func summarize(values []float64) (float64, float64) {
	switch len(values) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// extrema compares interior coarse nodes against their axis neighbours. A
// node equal to all four neighbours is reported as a Maximum.
func extrema(f expr.Surface, r float64) []CriticalPoint {
	cs := 2 * r / coarseCells
	nodes := grid.Lattice(r, coarseCells+1)
	points := []CriticalPoint{}
	for i := 1; i < coarseCells-1; i++ {
		x := nodes[i]
		for j := 1; j < coarseCells-1; j++ {
			y := nodes[j]
			z := f(x, y)
			if !finite(z) {
				continue
			}
			neighbours := [4]float64{f(x+cs, y), f(x-cs, y), f(x, y+cs), f(x, y-cs)}
			isMax, isMin := true, true
			defined := true
			for _, n := range neighbours {
				if !finite(n) {
					defined = false
					break
				}
				isMax = isMax && z >= n
				isMin = isMin && z <= n
			}
			if !defined || !(isMax || isMin) {
				continue
			}
			kind := Minimum
			if isMax {
				kind = Maximum
			}
			points = append(points, CriticalPoint{X: x, Y: y, Z: z, Type: kind})
		}
	}
	sort.SliceStable(points, func(a, b int) bool { return math.Abs(points[a].Z) > math.Abs(points[b].Z) })
	if len(points) > MaxCriticalPoints {
		points = points[:MaxCriticalPoints]
	}
	return points
}

func halfRangeOf(r float64) float64 {
	r = math.Abs(r)
	if r == 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return DefaultRange
	}
	return r
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
