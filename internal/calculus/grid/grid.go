// Package grid builds the axis-aligned uniform sampling grids shared by the
// analysis packages.
package grid

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Bounds is the rectangle [XMin,XMax]×[YMin,YMax].
type Bounds struct {
	XMin float64 `json:"xMin"`
	XMax float64 `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
}

// Square returns [-r,r]².
func Square(r float64) Bounds {
	return Bounds{XMin: -r, XMax: r, YMin: -r, YMax: r}
}

// Normalize widens a degenerate axis by 1 and swaps a reversed one, so every
// axis has strictly positive width. A non-finite axis becomes [-1, 1].
func (b Bounds) Normalize() Bounds {
	b.XMin, b.XMax = normalizeAxis(b.XMin, b.XMax)
	b.YMin, b.YMax = normalizeAxis(b.YMin, b.YMax)
	return b
}

func normalizeAxis(lo, hi float64) (float64, float64) {
	if !isFinite(lo) || !isFinite(hi) {
		return -1, 1
	}
	if lo == hi {
		return lo, lo + 1
	}
	if lo > hi {
		return hi, lo
	}
	return lo, hi
}

// Width is XMax-XMin.
func (b Bounds) Width() float64 { return b.XMax - b.XMin }

// Height is YMax-YMin.
func (b Bounds) Height() float64 { return b.YMax - b.YMin }

// Axis returns n+1 equally spaced nodes from lo to hi inclusive. n < 1 is
// raised to 1.
func Axis(lo, hi float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	return floats.Span(make([]float64, n+1), lo, hi)
}

// Centers returns the midpoints of n equal cells spanning [lo, hi]. n < 1 is
// raised to 1.
func Centers(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{(lo + hi) / 2}
	}
	d := (hi - lo) / float64(n)
	return floats.Span(make([]float64, n), lo+d/2, hi-d/2)
}

// Lattice returns n equally spaced nodes from -r to r inclusive, n ≥ 2.
func Lattice(r float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	return floats.Span(make([]float64, n), -r, r)
}

// Steps returns the lattice -r, -r+step, ... up to r (inclusive within
// 1e-9), computed by index to avoid accumulated error. A non-positive step or
// range yields nil.
func Steps(r, step float64) []float64 {
	if !(r > 0) || !(step > 0) || !isFinite(r) || !isFinite(step) {
		return nil
	}
	n := int(math.Floor((2*r+1e-9)/step)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = -r + float64(i)*step
	}
	return out
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
