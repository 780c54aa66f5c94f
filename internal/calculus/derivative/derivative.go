// Package derivative estimates partial derivatives of black-box surfaces with
// fixed-step central differences.
package derivative

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
)

// DefaultStep is used whenever a caller supplies a non-positive or
// non-finite step.
const DefaultStep = 1e-3

// Result holds the first and second partials at one point. NaN marks a
// quantity that depends on an undefined sample.
type Result struct {
	Fx      float64    `json:"fx"`
	Fy      float64    `json:"fy"`
	Fxx     float64    `json:"fxx"`
	Fyy     float64    `json:"fyy"`
	Fxy     float64    `json:"fxy"`
	GradMag float64    `json:"gradMag"`
	GradDir [2]float64 `json:"gradDir"`
}

// Step returns h, or DefaultStep when h is unusable.
func Step(h float64) float64 {
	if !(h > 0) || math.IsInf(h, 0) {
		return DefaultStep
	}
	return h
}

var (
	first  = fd.Settings{Formula: fd.Central}
	second = fd.Settings{Formula: fd.Central2nd}
)

// Fx is (f(x+h,y) - f(x-h,y)) / 2h.
func Fx(f expr.Surface, x, y, h float64) float64 {
	s := first
	s.Step = Step(h)
	return fd.Derivative(func(v float64) float64 { return f(v, y) }, x, &s)
}

// Fy is (f(x,y+h) - f(x,y-h)) / 2h.
func Fy(f expr.Surface, x, y, h float64) float64 {
	s := first
	s.Step = Step(h)
	return fd.Derivative(func(v float64) float64 { return f(x, v) }, y, &s)
}

// Gradient returns (fx, fy).
func Gradient(f expr.Surface, x, y, h float64) (float64, float64) {
	return Fx(f, x, y, h), Fy(f, x, y, h)
}

// Partials computes every first and second partial at (x, y).
func Partials(f expr.Surface, x, y, h float64) Result {
	h = Step(h)
	s := second
	s.Step = h

	r := Result{
		Fx:  Fx(f, x, y, h),
		Fy:  Fy(f, x, y, h),
		Fxx: fd.Derivative(func(v float64) float64 { return f(v, y) }, x, &s),
		Fyy: fd.Derivative(func(v float64) float64 { return f(x, v) }, y, &s),
		Fxy: mixed(f, x, y, h),
	}
	r.GradMag = math.Hypot(r.Fx, r.Fy)
	r.GradDir = direction(r.Fx, r.Fy, r.GradMag)
	return r
}

// mixed uses the four-corner stencil, which fd.Hessian does not reproduce
// at step h on the diagonal.
func mixed(f expr.Surface, x, y, h float64) float64 {
	return (f(x+h, y+h) - f(x+h, y-h) - f(x-h, y+h) + f(x-h, y-h)) / (4 * h * h)
}

func direction(fx, fy, mag float64) [2]float64 {
	switch {
	case math.IsNaN(mag):
		return [2]float64{math.NaN(), math.NaN()}
	case mag == 0:
		return [2]float64{0, 0}
	}
	return [2]float64{fx / mag, fy / mag}
}
