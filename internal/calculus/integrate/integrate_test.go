package integrate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
)

func TestIntegrate(t *testing.T) {
	t.Run("Unit height square", func(t *testing.T) {
		r := Integrate(expr.CompileSurface("1"), nil, grid.Bounds{XMin: 0, XMax: 2, YMin: 0, YMax: 2}, 50)
		assert.InEpsilon(t, 4.0, r.Volume, 0.01)
		assert.InEpsilon(t, 4.0, r.SurfaceArea, 0.01)
		assert.InEpsilon(t, 4.0, r.Mass, 0.01)
		assert.InDelta(t, 1.0, r.CenterOfMass.X, 1e-9)
		assert.InDelta(t, 1.0, r.CenterOfMass.Y, 1e-9)
		assert.InDelta(t, 1.0, r.CenterOfMass.Z, 1e-9)
		assert.Equal(t, 2500, r.Samples)
		assert.Equal(t, 0, r.Skipped)
		assert.Equal(t, 0, r.Massless)
	})

	t.Run("Even function centres on origin", func(t *testing.T) {
		r := Integrate(expr.CompileSurface("x*x + y*y"), nil, grid.Square(1), 50)
		assert.InDelta(t, 0.0, r.CenterOfMass.X, 1e-9)
		assert.InDelta(t, 0.0, r.CenterOfMass.Y, 1e-9)
		assert.Greater(t, r.CenterOfMass.Z, 0.0)
		assert.InDelta(t, 8.0/3.0, r.Volume, 0.01)
		assert.InDelta(t, r.MomentOfInertia.Ix, r.MomentOfInertia.Iy, 1e-9)
	})

	t.Run("Volume is unsigned", func(t *testing.T) {
		r := Integrate(expr.CompileSurface("x"), nil, grid.Square(1), 20)
		assert.InDelta(t, 2.0, r.Volume, 1e-9)
		assert.InDelta(t, 0.0, r.CenterOfMass.Z, 1e-9)
	})

	t.Run("Density weights mass", func(t *testing.T) {
		b := grid.Bounds{XMin: 0, XMax: 1, YMin: 0, YMax: 1}
		r := Integrate(expr.CompileSurface("0"), expr.CompileSurface("x"), b, 100)
		assert.InDelta(t, 0.5, r.Mass, 1e-6)
		assert.InDelta(t, 2.0/3.0, r.CenterOfMass.X, 1e-3)
		assert.InDelta(t, 0.5, r.CenterOfMass.Y, 1e-6)
	})

	t.Run("Zero mass leaves centre at zero", func(t *testing.T) {
		r := Integrate(expr.CompileSurface("1"), expr.CompileSurface("0"), grid.Square(1), 10)
		assert.Equal(t, 0.0, r.Mass)
		assert.Equal(t, Vec3{}, r.CenterOfMass)
	})

	t.Run("Undefined density is counted", func(t *testing.T) {
		r := Integrate(expr.CompileSurface("1"), expr.CompileSurface("sqrt(x)"), grid.Square(1), 10)
		assert.Equal(t, 100, r.Samples)
		assert.Equal(t, 0, r.Skipped)
		assert.Equal(t, 50, r.Massless)
		assert.InDelta(t, 4.0, r.SurfaceArea, 1e-9)
		assert.Greater(t, r.Mass, 0.0)
		assert.Greater(t, r.CenterOfMass.X, 0.0)
	})

	t.Run("Undefined region is skipped", func(t *testing.T) {
		r := Integrate(expr.CompileSurface("sqrt(x)"), nil, grid.Square(1), 10)
		assert.Equal(t, 50, r.Skipped)
		assert.Equal(t, 50, r.Samples)
		assert.False(t, math.IsNaN(r.Volume))
		assert.False(t, math.IsNaN(r.Mass))
	})

	t.Run("Everywhere undefined", func(t *testing.T) {
		r := Integrate(expr.CompileSurface("foo"), nil, grid.Square(1), 10)
		assert.Equal(t, 0.0, r.Volume)
		assert.Equal(t, 0.0, r.Mass)
		assert.Equal(t, 100, r.Skipped)
	})

	t.Run("Degenerate bounds and resolution", func(t *testing.T) {
		r := Integrate(expr.CompileSurface("1"), nil, grid.Bounds{XMin: 2, XMax: 2, YMin: 1, YMax: 0}, 0)
		assert.InDelta(t, 1.0, r.Volume, 1e-12)
		assert.Equal(t, 1, r.Samples)
	})

	t.Run("Deterministic", func(t *testing.T) {
		f := expr.CompileSurface("sin(x)*cos(y) + 0.3")
		a := Integrate(f, nil, grid.Square(3), 30)
		b := Integrate(f, nil, grid.Square(3), 30)
		assert.Equal(t, a, b)
	})
}
