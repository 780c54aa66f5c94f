package expr

import (
	"fmt"
	"math"
	"strings"
)

// Arity is the number of free variables an expression may reference.
type Arity int

const (
	// XY expressions reference x and y only.
	XY Arity = 2
	// XYT expressions may also reference the time parameter t.
	XYT Arity = 3
)

func (a Arity) String() string {
	switch a {
	case XY:
		return "f(x,y)"
	case XYT:
		return "f(x,y,t)"
	}
	return fmt.Sprintf("arity(%d)", int(a))
}

// Func is a compiled expression. It is pure and safe for concurrent use. XY
// functions ignore t.
type Func func(x, y, t float64) float64

// Surface is a function of the two spatial variables, the form every
// analysis in this module samples.
type Surface func(x, y float64) float64

// At fixes the time parameter.
func (f Func) At(t float64) Surface {
	return func(x, y float64) float64 { return f(x, y, t) }
}

// Expr is a successfully parsed expression.
type Expr struct {
	src   string
	arity Arity
	root  node
	eval  evalFn
}

// Parse tokenizes and parses src. The returned error is a *SyntaxError that
// may wrap ErrUnknownIdentifier, ErrArity or ErrTooDeep.
func Parse(src string, arity Arity) (*Expr, error) {
	if arity != XY && arity != XYT {
		return nil, &SyntaxError{Msg: fmt.Sprintf("unsupported %s", arity)}
	}
	if strings.TrimSpace(src) == "" {
		root := &numberNode{value: 0}
		return &Expr{src: src, arity: arity, root: root, eval: root.compile()}, nil
	}

	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, arity: arity}
	root, err := p.parseExpression(bpNone)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, errorAt(t.pos, nil, "unexpected %s after expression", describe(t))
	}
	return &Expr{src: src, arity: arity, root: root, eval: root.compile()}, nil
}

// Compile returns a total function for src. Malformed input yields a
// function that is NaN everywhere; use Parse to learn why.
func Compile(src string, arity Arity) Func {
	e, err := Parse(src, arity)
	if err != nil {
		return undefined
	}
	return e.Func()
}

// CompileSurface compiles an XY expression.
func CompileSurface(src string) Surface {
	return Compile(src, XY).At(0)
}

func undefined(_, _, _ float64) float64 { return math.NaN() }

// Func returns the compiled evaluator.
func (e *Expr) Func() Func {
	eval := e.eval
	return func(x, y, t float64) (z float64) {
		defer func() {
			if recover() != nil {
				z = math.NaN()
			}
		}()
		return eval(x, y, t)
	}
}

// Source returns the text the expression was parsed from.
func (e *Expr) Source() string { return e.src }

// Arity returns the arity the expression was parsed with.
func (e *Expr) Arity() Arity { return e.arity }

// String returns a fully parenthesized canonical form.
func (e *Expr) String() string { return e.root.String() }

// UsesTime reports whether the expression references t.
func (e *Expr) UsesTime() bool { return usesVar(e.root, 2) }

func usesVar(n node, index int) bool {
	switch v := n.(type) {
	case *varNode:
		return v.index == index
	case *unaryNode:
		return usesVar(v.operand, index)
	case *binaryNode:
		return usesVar(v.left, index) || usesVar(v.right, index)
	case *callNode:
		for _, a := range v.args {
			if usesVar(a, index) {
				return true
			}
		}
	}
	return false
}
