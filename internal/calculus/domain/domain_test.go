package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
)

func TestScan(t *testing.T) {
	t.Run("Paraboloid", func(t *testing.T) {
		r := Scan(expr.CompileSurface("x*x + y*y"), 2, 40)
		assert.Equal(t, 41*41, r.Total)
		assert.True(t, r.Everywhere())
		assert.Equal(t, 1.0, r.ValidRatio)
		assert.InDelta(t, 0.0, r.ZMin, 1e-12)
		assert.InDelta(t, 8.0, r.ZMax, 1e-12)
		require.Len(t, r.CriticalPoints, 1)
		assert.Equal(t, Minimum, r.CriticalPoints[0].Type)
		assert.InDelta(t, 0.0, r.CriticalPoints[0].X, 1e-12)
		assert.InDelta(t, 0.0, r.CriticalPoints[0].Y, 1e-12)
	})

	t.Run("Cap", func(t *testing.T) {
		r := Scan(expr.CompileSurface("4 - x*x - y*y"), 2, 20)
		require.Len(t, r.CriticalPoints, 1)
		assert.Equal(t, Maximum, r.CriticalPoints[0].Type)
		assert.InDelta(t, 4.0, r.CriticalPoints[0].Z, 1e-12)
	})

	t.Run("Flat surface reports maxima", func(t *testing.T) {
		r := Scan(expr.CompileSurface("1"), 1, 10)
		require.Len(t, r.CriticalPoints, MaxCriticalPoints)
		for _, p := range r.CriticalPoints {
			assert.Equal(t, Maximum, p.Type)
		}
		assert.Equal(t, 1.0, r.Mean)
		assert.Equal(t, 0.0, r.StdDev)
	})

	t.Run("Sorted by magnitude", func(t *testing.T) {
		r := Scan(expr.CompileSurface("sin(x)*sin(y)*x"), 6, 30)
		for i := 1; i < len(r.CriticalPoints); i++ {
			assert.GreaterOrEqual(t, math.Abs(r.CriticalPoints[i-1].Z), math.Abs(r.CriticalPoints[i].Z))
		}
	})

	t.Run("Partial domain", func(t *testing.T) {
		r := Scan(expr.CompileSurface("sqrt(x)"), 1, 10)
		assert.Equal(t, 121, r.Total)
		assert.Equal(t, 66, r.Valid)
		assert.InDelta(t, 6.0/11.0, r.ValidRatio, 1e-12)
		assert.False(t, r.Everywhere())
		assert.InDelta(t, 0.0, r.ZMin, 1e-12)
		assert.InDelta(t, 1.0, r.ZMax, 1e-12)
	})

	t.Run("Nowhere defined", func(t *testing.T) {
		r := Scan(expr.CompileSurface("foo"), 1, 10)
		assert.Equal(t, 0, r.Valid)
		assert.Equal(t, 0.0, r.ValidRatio)
		assert.True(t, math.IsNaN(r.ZMin))
		assert.True(t, math.IsNaN(r.ZMax))
		assert.True(t, math.IsNaN(r.Mean))
		assert.Empty(t, r.CriticalPoints)
	})

	t.Run("Degenerate inputs", func(t *testing.T) {
		r := Scan(expr.CompileSurface("x"), 0, 0)
		assert.Equal(t, DefaultRange, r.HalfRange)
		assert.Equal(t, 1, r.Resolution)
		assert.Equal(t, 4, r.Total)

		assert.Equal(t, 3.0, Scan(expr.CompileSurface("x"), -3, 4).HalfRange)
	})
}

func TestRegion(t *testing.T) {
	t.Run("Unit slab", func(t *testing.T) {
		st := Region(expr.CompileSurface("1"), nil, nil, grid.Bounds{XMin: 0, XMax: 2, YMin: 0, YMax: 2}, 16)
		assert.InDelta(t, 4.0, st.Volume, 1e-9)
		assert.InDelta(t, 4.0, st.Mass, 1e-9)
		assert.InDelta(t, 1.0, st.CenterOfMass.X, 1e-9)
		assert.InDelta(t, 1.0, st.CenterOfMass.Y, 1e-9)
		assert.InDelta(t, 0.5, st.CenterOfMass.Z, 1e-9)
		assert.Equal(t, 256, st.Included)
	})

	t.Run("Implicit disc", func(t *testing.T) {
		st := Region(expr.CompileSurface("1"), nil, expr.CompileSurface("x*x + y*y - 1"), grid.Square(1), 200)
		assert.InDelta(t, math.Pi, st.Volume, 0.02)
		assert.Less(t, st.Included, st.Cells)
	})

	t.Run("Negative surface has no mass", func(t *testing.T) {
		st := Region(expr.CompileSurface("-1"), nil, nil, grid.Square(1), 16)
		assert.Equal(t, 0.0, st.Volume)
		assert.Equal(t, 0.0, st.Mass)
		assert.True(t, math.IsNaN(st.CenterOfMass.X))
		assert.Equal(t, -1.0, st.ZMin)
	})

	t.Run("Empty region", func(t *testing.T) {
		st := Region(expr.CompileSurface("1"), nil, expr.CompileSurface("1"), grid.Square(1), 16)
		assert.Equal(t, 0, st.Included)
		assert.True(t, math.IsNaN(st.ZMin))
		assert.True(t, math.IsNaN(st.CenterOfMass.Z))
	})

	t.Run("Cell clamp", func(t *testing.T) {
		assert.Equal(t, 256, Region(expr.CompileSurface("1"), nil, nil, grid.Square(1), 3).Cells)
		assert.Equal(t, 40000, Region(expr.CompileSurface("1"), nil, nil, grid.Square(1), 900).Cells)
	})
}
