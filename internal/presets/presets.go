// Package presets holds the library of named example surfaces.
//
// The library starts with the built-in set and can be extended with preset
// files discovered under a directory. Files are YAML, TOML or JSON, chosen
// by extension, and hold a top-level "presets" list:
//
//	presets:
//	  - id: ripple
//	    name: Ripple
//	    expression: sin(sqrt(x*x + y*y) - t*3)
//	    range: 4
//
// Text fields are stripped of markup and every expression must parse with
// x, y and t in scope. An invalid entry is skipped; it never aborts loading.
package presets

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
)

// DefaultRange is the half-width used when a preset does not name one.
const DefaultRange = 4.0

// SourceBuiltin marks presets compiled into the binary.
const SourceBuiltin = "builtin"

// Preset is a named surface expression.
type Preset struct {
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Name        string   `json:"name" yaml:"name" toml:"name"`
	Description string   `json:"description,omitempty" yaml:"description" toml:"description"`
	Expression  string   `json:"expression" yaml:"expression" toml:"expression"`
	Icon        string   `json:"icon,omitempty" yaml:"icon" toml:"icon"`
	Range       float64  `json:"range" yaml:"range" toml:"range"`
	Animated    bool     `json:"animated" yaml:"-" toml:"-"`
	Tags        []string `json:"tags,omitempty" yaml:"tags" toml:"tags"`
	Source      string   `json:"source" yaml:"-" toml:"-"`
}

// Builtin returns the presets shipped with the service.
func Builtin() []Preset {
	raw := []Preset{
		{ID: "ripple", Name: "Ripple", Icon: "🌊", Expression: "sin(sqrt(x*x + y*y) - t*3) / (1 + sqrt(x*x + y*y)/4)",
			Description: "Damped radial wave travelling outward", Tags: []string{"wave", "radial"}},
		{ID: "hyperbolic-paraboloid", Name: "Hyperbolic Paraboloid", Icon: "🥨", Expression: "x*x - y*y",
			Description: "Classic saddle surface", Tags: []string{"saddle", "quadric"}},
		{ID: "torus-slice", Name: "Torus Slice", Icon: "🍩", Expression: "sin(sqrt((sqrt(x*x + y*y) - 2)**2))*cos(t)",
			Description: "Ring ridge around radius 2", Tags: []string{"radial"}},
		{ID: "gaussian-peak", Name: "Gaussian Peak", Icon: "⛰️", Expression: "3*exp(-(x*x + y*y)/4)*cos(t*2)",
			Description: "Pulsing bell curve", Tags: []string{"peak"}},
		{ID: "twisted-surface", Name: "Twisted Surface", Icon: "🌀", Expression: "sin(x)*cos(y) + 0.3*sin(t*2)",
			Description: "Periodic ripples with a bobbing offset", Tags: []string{"wave", "periodic"}},
		{ID: "mexican-hat", Name: "Mexican Hat", Icon: "🎩", Expression: "sin(sqrt(x*x + y*y))/sqrt(x*x + y*y + 0.1)",
			Description: "Sombrero-shaped radial sinc", Tags: []string{"radial"}},
		{ID: "monkey-saddle", Name: "Monkey Saddle", Icon: "🐵", Expression: "x*x*x - 3*x*y*y",
			Description: "Three-fold saddle with a degenerate critical point", Tags: []string{"saddle"}},
		{ID: "egg-crate", Name: "Egg Crate", Icon: "🥚", Expression: "sin(x)*sin(y)",
			Description: "Alternating peaks and pits", Tags: []string{"periodic"}},
	}
	out := make([]Preset, 0, len(raw))
	for _, p := range raw {
		p.Source = SourceBuiltin
		n, err := normalize(p)
		if err != nil {
			panic(fmt.Sprintf("builtin preset %s: %v", p.ID, err))
		}
		out = append(out, n)
	}
	return out
}

// normalize fills defaults and validates p. Text is expected to be
// sanitized already.
func normalize(p Preset) (Preset, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Expression = strings.TrimSpace(p.Expression)
	if p.ID == "" {
		p.ID = slug(p.Name)
	} else {
		p.ID = slug(p.ID)
	}
	if p.ID == "" {
		return p, fmt.Errorf("preset needs an id or a name")
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.Expression == "" {
		return p, fmt.Errorf("preset %s: expression is empty", p.ID)
	}
	e, err := expr.Parse(p.Expression, expr.XYT)
	if err != nil {
		return p, fmt.Errorf("preset %s: %w", p.ID, err)
	}
	p.Animated = e.UsesTime()
	if !(p.Range > 0) || p.Range > 1e6 {
		p.Range = DefaultRange
	}
	return p, nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
