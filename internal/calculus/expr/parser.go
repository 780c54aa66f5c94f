package expr

import "fmt"

// maxDepth bounds recursion so pathological input fails as a syntax error
// instead of exhausting the stack.
const maxDepth = 256

const (
	bpNone    = 0
	bpSum     = 10
	bpProduct = 20
	bpPrefix  = 30
	bpPower   = 40
)

type parser struct {
	toks  []token
	pos   int
	arity Arity
	depth int
}

func infixPower(k tokenKind) int {
	switch k {
	case tokPlus, tokMinus:
		return bpSum
	case tokStar, tokSlash:
		return bpProduct
	case tokCaret:
		return bpPower
	}
	return bpNone
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, errorAt(t.pos, nil, "expected %s, found %s", kind, describe(t))
	}
	return t, nil
}

func describe(t token) string {
	if t.text == "" {
		return t.kind.String()
	}
	return fmt.Sprintf("%q", t.text)
}

func (p *parser) parseExpression(minBP int) (node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, errorAt(p.peek().pos, ErrTooDeep, "nesting deeper than %d", maxDepth)
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		lbp := infixPower(op.kind)
		if lbp <= minBP {
			return left, nil
		}
		p.next()
		rbp := lbp
		if op.kind == tokCaret {
			rbp = lbp - 1
		}
		right, err := p.parseExpression(rbp)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op.kind, left: left, right: right}
	}
}

func (p *parser) parsePrefix() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &numberNode{value: t.num}, nil
	case tokMinus, tokPlus:
		operand, err := p.parseExpression(bpPrefix)
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: t.kind, operand: operand}, nil
	case tokLParen:
		inner, err := p.parseExpression(bpNone)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent:
		return p.parseIdent(t)
	}
	return nil, errorAt(t.pos, nil, "unexpected %s", describe(t))
}

func (p *parser) parseIdent(t token) (node, error) {
	name := t.text
	if p.peek().kind == tokDot {
		if lookupName(name) != "math" {
			return nil, errorAt(p.peek().pos, ErrUnknownIdentifier, "unknown namespace %q", name)
		}
		p.next()
		member, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		name = name + "." + member.text
	} else if idx, ok := p.variable(name); ok {
		return &varNode{name: name, index: idx}, nil
	}

	key := lookupName(name)
	if v, ok := constants[key]; ok {
		if p.peek().kind == tokLParen {
			return nil, errorAt(p.peek().pos, nil, "constant %q is not callable", name)
		}
		return &constNode{name: key, value: v}, nil
	}
	fn, ok := builtins[key]
	if !ok {
		return nil, errorAt(t.pos, ErrUnknownIdentifier, "unknown identifier %q", name)
	}
	if p.peek().kind != tokLParen {
		return nil, errorAt(t.pos, nil, "function %q must be called", name)
	}
	p.next()
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	if fn.arity != variadic && len(args) != fn.arity {
		return nil, errorAt(t.pos, ErrArity, "%s takes %d argument(s), got %d", fn.name, fn.arity, len(args))
	}
	return &callNode{fn: fn, args: args}, nil
}

func (p *parser) parseArgs() ([]node, error) {
	var args []node
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpression(bpNone)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t := p.next()
		switch t.kind {
		case tokComma:
			continue
		case tokRParen:
			return args, nil
		default:
			return nil, errorAt(t.pos, nil, "expected ',' or ')', found %s", describe(t))
		}
	}
}

func (p *parser) variable(name string) (int, bool) {
	switch name {
	case "x":
		return 0, true
	case "y":
		return 1, true
	case "t":
		if p.arity == XYT {
			return 2, true
		}
	}
	return 0, false
}
