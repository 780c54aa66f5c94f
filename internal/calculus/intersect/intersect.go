// Package intersect approximates the curve where two surfaces meet by
// marching squares over g = f1 - f2.
package intersect

import (
	"math"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
)

const (
	MinCells = 2
	MaxCells = 200

	// Eps is the magnitude below which g counts as zero.
	Eps = 1e-8

	fractionSlack = 1e-6
)

// Point lies approximately on both surfaces.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Extract walks the n×n cells of b row by row and emits one point for every
// cell edge whose endpoints straddle g = 0. Edges shared by two cells are
// visited from both. n is clamped to [MinCells, MaxCells].
func Extract(f1, f2 expr.Surface, b grid.Bounds, n int) []Point {
	n = Cells(n)
	b = b.Normalize()
	xs := grid.Axis(b.XMin, b.XMax, n)
	ys := grid.Axis(b.YMin, b.YMax, n)

	g := make([][]float64, n+1)
	for j, y := range ys {
		g[j] = make([]float64, n+1)
		for i, x := range xs {
			g[j][i] = f1(x, y) - f2(x, y)
		}
	}

	points := []Point{}
	cross := func(xa, ya, ga, xb, yb, gb float64) {
		if p, ok := edgeCrossing(f1, xa, ya, ga, xb, yb, gb); ok {
			points = append(points, p)
		}
	}
	for j := 0; j < n; j++ {
		y0, y1 := ys[j], ys[j+1]
		for i := 0; i < n; i++ {
			x0, x1 := xs[i], xs[i+1]
			g00, g10 := g[j][i], g[j][i+1]
			g11, g01 := g[j+1][i+1], g[j+1][i]

			cross(x0, y0, g00, x1, y0, g10) // bottom
			cross(x1, y0, g10, x1, y1, g11) // right
			cross(x1, y1, g11, x0, y1, g01) // top
			cross(x0, y1, g01, x0, y0, g00) // left
		}
	}
	return points
}

func edgeCrossing(f1 expr.Surface, xa, ya, ga, xb, yb, gb float64) (Point, bool) {
	if math.IsNaN(ga) || math.IsNaN(gb) {
		return Point{}, false
	}
	sa, sb := signTol(ga), signTol(gb)
	if sa == sb {
		// covers both-zero edges, which lie along the curve
		return Point{}, false
	}
	denom := gb - ga
	if math.Abs(denom) <= Eps {
		return Point{}, false
	}
	t := -ga / denom
	if t < -fractionSlack || t > 1+fractionSlack {
		return Point{}, false
	}
	x := xa + t*(xb-xa)
	y := ya + t*(yb-ya)
	z := f1(x, y)
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return Point{}, false
	}
	return Point{X: x, Y: y, Z: z}, true
}

func signTol(v float64) int {
	switch {
	case math.Abs(v) <= Eps:
		return 0
	case v > 0:
		return 1
	}
	return -1
}

// Cells is the cell count Extract actually uses for a requested n.
func Cells(n int) int {
	if n < MinCells {
		return MinCells
	}
	if n > MaxCells {
		return MaxCells
	}
	return n
}
