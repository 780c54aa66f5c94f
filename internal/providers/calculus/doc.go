// Package calculus exposes the surface-calculus engine as a service provider.
//
// This package is organized into op groups:
//   - operations: expression evaluation/validation and point analysis
//     (partials, gradient field, directional derivative, limits)
//   - grids: integration, domain/range scan, region statistics,
//     intersection curves and height meshes
//   - optimization: Lagrange multiplier search
//   - library: preset surfaces
//
// Every expression parameter is parsed once per (source, arity) and kept in
// an LRU cache shared by all groups. Expressions see x, y and t; analyses
// that work on a surface fix t from the "t" parameter.
//
// Undefined results are encoded as null rather than NaN.
//
// Example Usage:
//
//	p := calculus.NewProvider(calculus.Options{CacheSize: 256})
//	result, err := p.Execute(ctx, "calculus.derivatives", map[string]interface{}{
//	    "expression": "x*x + y*y", "x": 1.0, "y": 1.0,
//	}, nil)
package calculus
