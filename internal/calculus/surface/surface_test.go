package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
)

func TestSample(t *testing.T) {
	t.Run("Vertex layout", func(t *testing.T) {
		m := Sample(expr.Compile("x + 10*y", expr.XY), grid.Bounds{XMin: 0, XMax: 2, YMin: 0, YMax: 1}, 3, 2, 0)
		require.Len(t, m.Z, 6)
		assert.Equal(t, 6, m.Valid)
		assert.InDelta(t, 2.0, m.At(2, 0), 1e-12)
		assert.InDelta(t, 11.0, m.At(1, 1), 1e-12)
	})

	t.Run("NaN heights are kept", func(t *testing.T) {
		m := Sample(expr.Compile("sqrt(x)", expr.XY), grid.Square(1), 3, 3, 0)
		assert.True(t, math.IsNaN(m.At(0, 0)))
		assert.Equal(t, 6, m.Valid)
	})

	t.Run("Minimum segments", func(t *testing.T) {
		m := Sample(expr.Compile("1", expr.XY), grid.Square(1), 0, 1, 0)
		assert.Equal(t, MinSegments, m.NX)
		assert.Equal(t, MinSegments, m.NY)
		assert.Len(t, m.Z, 4)
	})

	t.Run("Time parameter", func(t *testing.T) {
		m := Sample(expr.Compile("t", expr.XYT), grid.Square(1), 2, 2, 1.5)
		for _, z := range m.Z {
			assert.Equal(t, 1.5, z)
		}
	})
}

func TestFrames(t *testing.T) {
	f := expr.Compile("x*t", expr.XYT)

	frames := Frames(f, grid.Square(1), 4, 4, 0, 1, 5)
	require.Len(t, frames, 5)
	assert.Equal(t, 0.0, frames[0].T)
	assert.Equal(t, 0.25, frames[1].T)
	assert.Equal(t, 1.0, frames[4].T)

	one := Frames(f, grid.Square(1), 4, 4, 2, 9, 0)
	require.Len(t, one, 1)
	assert.Equal(t, 2.0, one[0].T)

	assert.Len(t, Frames(f, grid.Square(1), 2, 2, 0, 1, MaxFrames+50), MaxFrames)
}

func TestFrameTime(t *testing.T) {
	assert.Equal(t, 3.0, FrameTime(3, 9, 0, 1))
	assert.Equal(t, 3.0, FrameTime(3, 9, 0, 4))
	assert.Equal(t, 9.0, FrameTime(3, 9, 3, 4))
	assert.Equal(t, 5.0, FrameTime(3, 9, 1, 4))

	t.Run("Span wider than float64", func(t *testing.T) {
		for k := 0; k < 5; k++ {
			v := FrameTime(-math.MaxFloat64, math.MaxFloat64, k, 5)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "frame %d", k)
		}
		assert.Equal(t, 0.0, FrameTime(-math.MaxFloat64, math.MaxFloat64, 2, 5))
	})
}
