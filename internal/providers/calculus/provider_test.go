package calculus

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/grafy/internal/calculus/intersect"
	"github.com/GriffinCanCode/grafy/internal/presets"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/testutil"
)

func TestDefinition(t *testing.T) {
	def := NewProvider(Options{}).Definition()

	assert.Equal(t, "calculus", def.ID)
	require.Len(t, def.Tools, 14)

	seen := map[string]bool{}
	for _, tool := range def.Tools {
		assert.True(t, strings.HasPrefix(tool.ID, "calculus."), tool.ID)
		assert.False(t, seen[tool.ID], "duplicate tool %s", tool.ID)
		seen[tool.ID] = true
	}
}

func TestCalculusProvider(t *testing.T) {
	p := NewProvider(Options{CacheSize: 32})
	ctx := context.Background()

	exec := func(t *testing.T, toolID string, params map[string]interface{}) map[string]interface{} {
		t.Helper()
		result, err := p.Execute(ctx, toolID, params, nil)
		require.NoError(t, err)
		testutil.AssertSuccess(t, result)
		return result.Data
	}
	fail := func(t *testing.T, toolID string, params map[string]interface{}) string {
		t.Helper()
		result, err := p.Execute(ctx, toolID, params, nil)
		require.NoError(t, err)
		testutil.AssertError(t, result)
		return *result.Error
	}

	t.Run("Expression Operations", func(t *testing.T) {
		t.Run("Evaluate", func(t *testing.T) {
			result, err := p.Execute(ctx, "calculus.evaluate", map[string]interface{}{
				"expression": "x*x + y*y", "x": 2.0, "y": 3,
			}, nil)
			require.NoError(t, err)
			testutil.AssertDataField(t, result, "value", 13.0)
			testutil.AssertDataField(t, result, "defined", true)
		})

		t.Run("Evaluate with time", func(t *testing.T) {
			data := exec(t, "calculus.evaluate", map[string]interface{}{
				"expression": "sin(x) + t", "x": 0.0, "y": 5.0, "t": 2.0,
			})
			assert.Equal(t, 2.0, data["value"])
		})

		t.Run("Undefined value is null", func(t *testing.T) {
			data := exec(t, "calculus.evaluate", map[string]interface{}{
				"expression": "sqrt(x)", "x": -1.0, "y": 0.0,
			})
			assert.Nil(t, data["value"])
			assert.Equal(t, false, data["defined"])
		})

		t.Run("Syntax error", func(t *testing.T) {
			msg := fail(t, "calculus.evaluate", map[string]interface{}{
				"expression": "x + * y", "x": 0.0, "y": 0.0,
			})
			assert.Contains(t, msg, "syntax error")
		})

		t.Run("Missing coordinate", func(t *testing.T) {
			msg := fail(t, "calculus.evaluate", map[string]interface{}{"expression": "x", "x": 1.0})
			assert.Contains(t, msg, "y")
		})

		t.Run("Validate", func(t *testing.T) {
			data := exec(t, "calculus.validate", map[string]interface{}{"expression": "x +"})
			assert.Equal(t, false, data["valid"])
			assert.Contains(t, data, "position")

			data = exec(t, "calculus.validate", map[string]interface{}{"expression": "x*t", "arity": "xy"})
			assert.Equal(t, false, data["valid"])

			data = exec(t, "calculus.validate", map[string]interface{}{"expression": "Math.sin(x)*t"})
			assert.Equal(t, true, data["valid"])
			assert.Equal(t, true, data["usesTime"])

			fail(t, "calculus.validate", map[string]interface{}{"expression": "x", "arity": "xyz"})
			assert.NotContains(t, data, "functions")
		})

		t.Run("Validate vocabulary", func(t *testing.T) {
			data := exec(t, "calculus.validate", map[string]interface{}{"expression": "foo(x)", "vocabulary": true})
			assert.Equal(t, false, data["valid"])
			require.IsType(t, []string{}, data["functions"])
			fns := data["functions"].([]string)
			assert.Contains(t, fns, "sin")
			assert.Contains(t, fns, "atan2")
			assert.True(t, sort.StringsAreSorted(fns))
			assert.Equal(t, []string{"e", "pi", "tau"}, data["constants"])

			data = exec(t, "calculus.validate", map[string]interface{}{"expression": "x", "vocabulary": "yes"})
			assert.NotContains(t, data, "constants")
		})
	})

	t.Run("Point Operations", func(t *testing.T) {
		t.Run("Derivatives", func(t *testing.T) {
			data := exec(t, "calculus.derivatives", map[string]interface{}{
				"expression": "x*x + y*y", "x": 1.0, "y": 1.0,
			})
			assert.InDelta(t, 2.0, data["fx"], 1e-2)
			assert.InDelta(t, 2.0, data["fy"], 1e-2)
			assert.InDelta(t, 2.0, data["fxx"], 1e-2)
			assert.InDelta(t, 0.0, data["fxy"], 1e-2)
			assert.Equal(t, "Minimum", data["kind"])
		})

		t.Run("Derivatives of undefined point", func(t *testing.T) {
			data := exec(t, "calculus.derivatives", map[string]interface{}{
				"expression": "sqrt(x)", "x": -1.0, "y": 0.0,
			})
			assert.Nil(t, data["fx"])
			assert.Nil(t, data["z"])
			assert.Equal(t, "Inconclusive", data["kind"])
		})

		t.Run("Gradient field", func(t *testing.T) {
			data := exec(t, "calculus.gradient_field", map[string]interface{}{
				"expression": "x*x + y*y", "range": 1.0, "count": 3.0,
			})
			arrows := data["arrows"].([]map[string]interface{})
			assert.Len(t, arrows, 8)
		})

		t.Run("Directional", func(t *testing.T) {
			data := exec(t, "calculus.directional", map[string]interface{}{
				"expression": "x + y", "x": 0.0, "y": 0.0, "ux": 1.0, "uy": 1.0,
			})
			assert.InDelta(t, math.Sqrt2, data["value"], 1e-6)

			data = exec(t, "calculus.directional", map[string]interface{}{
				"expression": "x + y", "x": 0.0, "y": 0.0, "ux": 0.0, "uy": 0.0,
			})
			assert.Nil(t, data["value"])
		})

		t.Run("Limit", func(t *testing.T) {
			data := exec(t, "calculus.limit", map[string]interface{}{
				"expression": "x*y/(x*x + y*y)", "x": 0.0, "y": 0.0,
			})
			assert.Equal(t, "path-dependent", data["status"])
			assert.Nil(t, data["value"])
			assert.Len(t, data["paths"], 5)
		})
	})

	t.Run("Grid Operations", func(t *testing.T) {
		t.Run("Integrate", func(t *testing.T) {
			data := exec(t, "calculus.integrate", map[string]interface{}{
				"expression": "1",
				"bounds":     map[string]interface{}{"xMin": 0.0, "xMax": 2.0, "yMin": 0.0, "yMax": 2.0},
				"resolution": 20.0,
			})
			assert.InDelta(t, 4.0, data["volume"], 0.04)
			assert.InDelta(t, 4.0, data["surfaceArea"], 0.04)
			assert.InDelta(t, 4.0, data["mass"], 0.04)
		})

		t.Run("Integrate with density", func(t *testing.T) {
			data := exec(t, "calculus.integrate", map[string]interface{}{
				"expression": "1", "density": "2", "range": 1.0, "resolution": 10.0,
			})
			assert.InDelta(t, 8.0, data["mass"], 1e-6)
			assert.Equal(t, 0, data["massless"])

			data = exec(t, "calculus.integrate", map[string]interface{}{
				"expression": "1", "density": "log(y)", "range": 1.0, "resolution": 10.0,
			})
			assert.Equal(t, 50, data["massless"])
		})

		t.Run("Bad density", func(t *testing.T) {
			msg := fail(t, "calculus.integrate", map[string]interface{}{"expression": "1", "density": "(("})
			assert.Contains(t, msg, "density")
		})

		t.Run("Domain and range", func(t *testing.T) {
			data := exec(t, "calculus.domain_range", map[string]interface{}{
				"expression": "x*x + y*y", "range": 2.0, "resolution": 40.0,
			})
			assert.InDelta(t, 0.0, data["zMin"], 1e-9)
			assert.InDelta(t, 8.0, data["zMax"], 1e-9)
			assert.Equal(t, true, data["everywhere"])
			assert.Len(t, data["criticalPoints"], 1)
		})

		t.Run("Region stats", func(t *testing.T) {
			data := exec(t, "calculus.region_stats", map[string]interface{}{
				"expression": "1", "region": "x*x + y*y - 1", "range": 1.0, "resolution": 200.0,
			})
			assert.InDelta(t, math.Pi, data["volume"], 0.05)
		})

		t.Run("Intersection", func(t *testing.T) {
			data := exec(t, "calculus.intersection", map[string]interface{}{
				"expression": "x", "other": "0", "range": 1.0, "resolution": 9.0,
			})
			assert.Greater(t, data["count"], 0)
			for _, pt := range data["points"].([]map[string]interface{}) {
				assert.Less(t, math.Abs(pt["x"].(float64)), 2.0/9.0)
			}

			fail(t, "calculus.intersection", map[string]interface{}{"expression": "x"})
		})

		t.Run("Intersection reports cells used", func(t *testing.T) {
			data := exec(t, "calculus.intersection", map[string]interface{}{
				"expression": "x", "other": "0", "range": 1.0, "resolution": 300.0,
			})
			assert.Equal(t, intersect.MaxCells, data["resolution"])

			data = exec(t, "calculus.intersection", map[string]interface{}{
				"expression": "x", "other": "0", "range": 1.0, "resolution": 1.0,
			})
			assert.Equal(t, intersect.MinCells, data["resolution"])
		})

		t.Run("Surface mesh", func(t *testing.T) {
			data := exec(t, "calculus.surface", map[string]interface{}{
				"expression": "sqrt(x)", "range": 1.0, "segments": 3.0,
			})
			z := data["z"].([]interface{})
			require.Len(t, z, 9)
			assert.Nil(t, z[0])
			assert.Equal(t, 0.0, z[1])
			assert.Equal(t, 6, data["valid"])
		})
	})

	t.Run("Optimization", func(t *testing.T) {
		data := exec(t, "calculus.lagrange", map[string]interface{}{
			"expression": "x + y", "constraint": "x*x + y*y - 1", "range": 2.1, "step": 0.7,
		})
		assert.Equal(t, true, data["converged"])
		points := data["criticalPoints"].([]map[string]interface{})
		require.Len(t, points, 2)
		assert.Equal(t, "Maximum", points[0]["type"])
		assert.Equal(t, "Minimum", points[1]["type"])

		msg := fail(t, "calculus.lagrange", map[string]interface{}{
			"expression": "x", "constraint": "y", "range": 100.0, "step": 0.01,
		})
		assert.Contains(t, msg, "resolution limit")
	})

	t.Run("Presets", func(t *testing.T) {
		data := exec(t, "calculus.presets.list", nil)
		assert.Equal(t, len(presets.Builtin()), data["count"])

		data = exec(t, "calculus.presets.list", map[string]interface{}{"tag": "Saddle"})
		assert.Equal(t, 2, data["count"])

		data = exec(t, "calculus.presets.get", map[string]interface{}{"id": "monkey-saddle"})
		assert.Equal(t, "x*x*x - 3*x*y*y", data["preset"].(presets.Preset).Expression)

		fail(t, "calculus.presets.get", map[string]interface{}{"id": "nope"})
		fail(t, "calculus.presets.get", map[string]interface{}{})
	})

	t.Run("Unknown tool", func(t *testing.T) {
		msg := fail(t, "calculus.nope", nil)
		assert.Contains(t, msg, "unknown tool")
	})
}

func TestResultsEncodeAsJSON(t *testing.T) {
	p := NewProvider(Options{})
	result, err := p.Execute(context.Background(), "calculus.domain_range", map[string]interface{}{
		"expression": "foo + x", "resolution": 4.0,
	}, nil)
	require.NoError(t, err)
	testutil.AssertError(t, result)

	result, err = p.Execute(context.Background(), "calculus.surface", map[string]interface{}{
		"expression": "1/x", "range": 1.0, "segments": 3.0,
	}, nil)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "null")
}

func TestLimitsAndCache(t *testing.T) {
	p := NewProvider(Options{CacheSize: 4, Limits: common.Limits{MaxResolution: 10}})
	ctx := context.Background()

	result, err := p.Execute(ctx, "calculus.surface", map[string]interface{}{
		"expression": "x", "segments": 1000.0,
	}, nil)
	require.NoError(t, err)
	testutil.AssertDataField(t, result, "nx", 10)
	assert.Equal(t, common.DefaultLimits().DefaultStep, p.Limits().DefaultStep)

	before := p.Cache().Stats()
	for i := 0; i < 3; i++ {
		_, err := p.Execute(ctx, "calculus.evaluate", map[string]interface{}{
			"expression": "x*y", "x": 1.0, "y": 2.0,
		}, nil)
		require.NoError(t, err)
	}
	after := p.Cache().Stats()
	assert.Equal(t, before.Misses+1, after.Misses)
	assert.Equal(t, before.Hits+2, after.Hits)
}
