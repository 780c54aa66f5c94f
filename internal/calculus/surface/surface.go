// Package surface produces height grids for rendering collaborators.
//
// Heights are raw: undefined samples stay NaN. Substituting a display value
// is the renderer's decision.
package surface

import (
	"math"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
)

const (
	MinSegments = 2
	// MaxFrames bounds the slices Frames will produce.
	MaxFrames = 600
)

// Mesh is an nx×ny vertex grid. Z is row-major with y as the outer index.
type Mesh struct {
	T      float64     `json:"t"`
	Bounds grid.Bounds `json:"bounds"`
	NX     int         `json:"nx"`
	NY     int         `json:"ny"`
	Xs     []float64   `json:"xs"`
	Ys     []float64   `json:"ys"`
	Z      []float64   `json:"z"`
	Valid  int         `json:"valid"`
}

// At returns the height at vertex (i, j).
func (m *Mesh) At(i, j int) float64 { return m.Z[j*m.NX+i] }

// Sample evaluates f at time t on nx×ny vertices spanning b inclusively.
// nx and ny below MinSegments are raised to it.
func Sample(f expr.Func, b grid.Bounds, nx, ny int, t float64) Mesh {
	nx, ny = atLeast(nx), atLeast(ny)
	b = b.Normalize()
	m := Mesh{
		T:      t,
		Bounds: b,
		NX:     nx,
		NY:     ny,
		Xs:     grid.Axis(b.XMin, b.XMax, nx-1),
		Ys:     grid.Axis(b.YMin, b.YMax, ny-1),
		Z:      make([]float64, 0, nx*ny),
	}
	for _, y := range m.Ys {
		for _, x := range m.Xs {
			z := f(x, y, t)
			if !math.IsNaN(z) && !math.IsInf(z, 0) {
				m.Valid++
			}
			m.Z = append(m.Z, z)
		}
	}
	return m
}

// Frames samples count evenly spaced time slices from t0 to t1 inclusive. A
// single frame is taken at t0; count is clamped to [1, MaxFrames].
func Frames(f expr.Func, b grid.Bounds, nx, ny int, t0, t1 float64, count int) []Mesh {
	if count < 1 {
		count = 1
	}
	if count > MaxFrames {
		count = MaxFrames
	}
	frames := make([]Mesh, 0, count)
	for k := 0; k < count; k++ {
		frames = append(frames, Sample(f, b, nx, ny, FrameTime(t0, t1, k, count)))
	}
	return frames
}

// FrameTime is the time of frame k out of count. Finite endpoints always give
// a finite time, even when t1-t0 overflows.
func FrameTime(t0, t1 float64, k, count int) float64 {
	if count <= 1 {
		return t0
	}
	s := float64(k) / float64(count-1)
	return t0*(1-s) + t1*s
}

func atLeast(n int) int {
	if n < MinSegments {
		return MinSegments
	}
	return n
}
