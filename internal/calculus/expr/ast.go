package expr

import (
	"math"
	"strconv"
	"strings"
)

type evalFn func(x, y, t float64) float64

// node is one element of a parsed expression tree.
type node interface {
	compile() evalFn
	String() string
}

type numberNode struct {
	value float64
}

type varNode struct {
	name  string
	index int
}

type constNode struct {
	name  string
	value float64
}

type unaryNode struct {
	op      tokenKind
	operand node
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

type callNode struct {
	fn   builtin
	args []node
}

// finite maps any non-finite value onto the NaN sentinel.
func finite(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func (n *numberNode) compile() evalFn {
	v := finite(n.value)
	return func(_, _, _ float64) float64 { return v }
}

func (n *numberNode) String() string {
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}

func (n *varNode) compile() evalFn {
	switch n.index {
	case 0:
		return func(x, _, _ float64) float64 { return finite(x) }
	case 1:
		return func(_, y, _ float64) float64 { return finite(y) }
	default:
		return func(_, _, t float64) float64 { return finite(t) }
	}
}

func (n *varNode) String() string { return n.name }

func (n *constNode) compile() evalFn {
	v := n.value
	return func(_, _, _ float64) float64 { return v }
}

func (n *constNode) String() string { return n.name }

func (n *unaryNode) compile() evalFn {
	operand := n.operand.compile()
	if n.op == tokMinus {
		return func(x, y, t float64) float64 { return -operand(x, y, t) }
	}
	return operand
}

func (n *unaryNode) String() string {
	if n.op == tokMinus {
		return "(-" + n.operand.String() + ")"
	}
	return n.operand.String()
}

func (n *binaryNode) compile() evalFn {
	l, r := n.left.compile(), n.right.compile()
	switch n.op {
	case tokPlus:
		return func(x, y, t float64) float64 { return finite(l(x, y, t) + r(x, y, t)) }
	case tokMinus:
		return func(x, y, t float64) float64 { return finite(l(x, y, t) - r(x, y, t)) }
	case tokStar:
		return func(x, y, t float64) float64 { return finite(l(x, y, t) * r(x, y, t)) }
	case tokSlash:
		return func(x, y, t float64) float64 { return finite(l(x, y, t) / r(x, y, t)) }
	case tokCaret:
		return func(x, y, t float64) float64 { return finite(math.Pow(l(x, y, t), r(x, y, t))) }
	}
	return func(_, _, _ float64) float64 { return math.NaN() }
}

func (n *binaryNode) String() string {
	op := map[tokenKind]string{tokPlus: "+", tokMinus: "-", tokStar: "*", tokSlash: "/", tokCaret: "^"}[n.op]
	return "(" + n.left.String() + " " + op + " " + n.right.String() + ")"
}

func (n *callNode) compile() evalFn {
	args := make([]evalFn, len(n.args))
	for i, a := range n.args {
		args[i] = a.compile()
	}
	switch {
	case n.fn.fn1 != nil:
		f, a := n.fn.fn1, args[0]
		return func(x, y, t float64) float64 { return finite(f(a(x, y, t))) }
	case n.fn.fn2 != nil:
		f, a, b := n.fn.fn2, args[0], args[1]
		return func(x, y, t float64) float64 { return finite(f(a(x, y, t), b(x, y, t))) }
	default:
		f := n.fn.fnN
		return func(x, y, t float64) float64 {
			vals := make([]float64, len(args))
			for i, a := range args {
				vals[i] = a(x, y, t)
			}
			return finite(f(vals))
		}
	}
}

func (n *callNode) String() string {
	parts := make([]string, len(n.args))
	for i, a := range n.args {
		parts[i] = a.String()
	}
	return n.fn.name + "(" + strings.Join(parts, ", ") + ")"
}
