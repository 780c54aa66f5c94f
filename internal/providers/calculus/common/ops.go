package common

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
)

// Limits caps the work a single tool call may request.
type Limits struct {
	MaxResolution int
	DefaultStep   float64
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxResolution: 400, DefaultStep: 1e-3}
}

// CalcOps provides shared helpers for calculus op groups
type CalcOps struct {
	Cache  *Cache
	Limits Limits
}

// NewCalcOps creates shared helpers with a cache of the given size.
func NewCalcOps(cacheSize int, limits Limits) *CalcOps {
	if limits.MaxResolution <= 0 {
		limits.MaxResolution = DefaultLimits().MaxResolution
	}
	if !(limits.DefaultStep > 0) || math.IsInf(limits.DefaultStep, 0) {
		limits.DefaultStep = DefaultLimits().DefaultStep
	}
	return &CalcOps{Cache: NewCache(cacheSize), Limits: limits}
}

// Success creates a successful result
func Success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

// Failure creates a failed result
func Failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}

// ErrMissing reports an absent required parameter.
var ErrMissing = errors.New("parameter required")

// Parse parses the expression in params[key] with x, y and t in scope.
func (o *CalcOps) Parse(params map[string]interface{}, key string) (*expr.Expr, error) {
	src, ok := GetString(params, key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrMissing)
	}
	e, err := o.Cache.Parse(src, expr.XYT)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return e, nil
}

// Func compiles the required expression params[key].
func (o *CalcOps) Func(params map[string]interface{}, key string) (expr.Func, error) {
	e, err := o.Parse(params, key)
	if err != nil {
		return nil, err
	}
	return e.Func(), nil
}

// Surface compiles params[key] and fixes t at params["t"] (default 0).
func (o *CalcOps) Surface(params map[string]interface{}, key string) (expr.Surface, error) {
	f, err := o.Func(params, key)
	if err != nil {
		return nil, err
	}
	return f.At(GetNumberOr(params, "t", 0)), nil
}

// OptionalSurface is Surface for a parameter that may be absent or blank,
// in which case it returns nil.
func (o *CalcOps) OptionalSurface(params map[string]interface{}, key string) (expr.Surface, error) {
	if src, ok := GetString(params, key); !ok || strings.TrimSpace(src) == "" {
		return nil, nil
	}
	return o.Surface(params, key)
}

// Resolution reads params[key] as a count, defaulting to def and clamped to
// [1, MaxResolution].
func (o *CalcOps) Resolution(params map[string]interface{}, key string, def int) int {
	n := def
	if v, ok := GetNumber(params, key); ok && !math.IsNaN(v) {
		v = math.Max(math.Min(v, float64(o.Limits.MaxResolution)), 1)
		n = int(math.Round(v))
	}
	if n < 1 {
		n = 1
	}
	if n > o.Limits.MaxResolution {
		n = o.Limits.MaxResolution
	}
	return n
}

// Step reads the finite-difference step h, falling back to the configured default.
func (o *CalcOps) Step(params map[string]interface{}) float64 {
	if h, ok := GetNumber(params, "h"); ok && h > 0 && !math.IsInf(h, 0) {
		return h
	}
	return o.Limits.DefaultStep
}

// GetNumber extracts float64 from params with validation
func GetNumber(params map[string]interface{}, key string) (float64, bool) {
	val, ok := params[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}

// GetNumberOr extracts a number or returns def
func GetNumberOr(params map[string]interface{}, key string, def float64) float64 {
	if v, ok := GetNumber(params, key); ok {
		return v
	}
	return def
}

// RequireNumbers extracts every named number or reports the first missing one
func RequireNumbers(params map[string]interface{}, keys ...string) ([]float64, error) {
	out := make([]float64, len(keys))
	for i, key := range keys {
		v, ok := GetNumber(params, key)
		if !ok {
			return nil, fmt.Errorf("%s: %w", key, ErrMissing)
		}
		if err := ValidateNumber(v, key); err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// GetString extracts string from params
func GetString(params map[string]interface{}, key string) (string, bool) {
	val, ok := params[key].(string)
	return val, ok
}

// GetBool extracts bool from params
func GetBool(params map[string]interface{}, key string) (bool, bool) {
	val, ok := params[key].(bool)
	return val, ok
}

// GetBounds reads a "bounds" object ({xMin, xMax, yMin, yMax}) over a
// symmetric "range" half-width (default defaultRange). Fields missing from
// bounds come from the range square. The result is normalized.
func GetBounds(params map[string]interface{}, defaultRange float64) grid.Bounds {
	r := math.Abs(GetNumberOr(params, "range", defaultRange))
	if r == 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		r = defaultRange
	}
	b := grid.Square(r)

	if raw, ok := params["bounds"].(map[string]interface{}); ok {
		b.XMin = GetNumberOr(raw, "xMin", b.XMin)
		b.XMax = GetNumberOr(raw, "xMax", b.XMax)
		b.YMin = GetNumberOr(raw, "yMin", b.YMin)
		b.YMax = GetNumberOr(raw, "yMax", b.YMax)
	}
	return b.Normalize()
}

// ValidateNumber checks if a number is valid (not NaN or Inf)
func ValidateNumber(x float64, name string) error {
	if math.IsNaN(x) {
		return fmt.Errorf("%s is NaN", name)
	}
	if math.IsInf(x, 0) {
		return fmt.Errorf("%s is infinite", name)
	}
	return nil
}
