package parse

import (
	"math"
	"strconv"

	"github.com/dyscolab/symbolite/internal/expr"
	"github.com/dyscolab/symbolite/internal/scanner"
	"github.com/dyscolab/symbolite/internal/token"
)

// levels holds the binary operators from loosest to tightest binding,
// mapped to their catalog names. Every level is left-associative, the
// same way the renderer parenthesizes.
var levels = []map[string]string{
	{"==": "eq", "!=": "ne", "<": "lt", "<=": "le", ">": "gt", ">=": "ge"},
	{"|": "or"},
	{"^": "xor"},
	{"&": "and"},
	{"<<": "lshift", ">>": "rshift"},
	{"+": "add", "-": "sub"},
	{"*": "mul", "/": "truediv", "//": "floordiv", "%": "mod", "@": "matmul"},
}

var unaryNames = map[string]string{"-": "neg", "+": "pos", "~": "invert"}

func (p *parser) expression() (expr.Node, error) {
	return p.binary(0)
}

func (p *parser) binary(level int) (expr.Node, error) {
	if level == len(levels) {
		return p.unary()
	}
	x, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		it := p.peek()
		name, ok := levels[level][it.Value]
		if it.Token != token.OP || !ok {
			return x, nil
		}
		p.pos++
		y, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		if x, err = p.apply(it, name, x, y); err != nil {
			return nil, err
		}
	}
}

func (p *parser) apply(at *scanner.Item, name string, args ...expr.Node) (expr.Node, error) {
	var n expr.Node
	var err error
	if len(args) == 1 {
		n, err = expr.UnaryOp(name, args[0])
	} else {
		n, err = expr.BinaryOp(name, args[0], args[1])
	}
	if err != nil {
		return nil, p.errorf(at, "%v", err)
	}
	return n, nil
}

// unary parses prefix operators.
func (p *parser) unary() (expr.Node, error) {
	return p.prefixed(p.power)
}

// power parses "**". The right operand may carry a sign but binds no
// further "**", so chains associate to the left.
func (p *parser) power() (expr.Node, error) {
	x, err := p.postfix()
	if err != nil {
		return nil, err
	}
	for {
		it := p.peek()
		if !it.Is("**") {
			return x, nil
		}
		p.pos++
		y, err := p.prefixed(p.postfix)
		if err != nil {
			return nil, err
		}
		if x, err = p.apply(it, "pow", x, y); err != nil {
			return nil, err
		}
	}
}

// prefixed parses any number of prefix operators in front of operand. A
// minus sign directly before a number folds into a negative literal.
func (p *parser) prefixed(operand func() (expr.Node, error)) (expr.Node, error) {
	it := p.peek()
	name, ok := unaryNames[it.Value]
	if it.Token != token.OP || !ok {
		return operand()
	}
	p.pos++
	x, err := p.prefixed(operand)
	if err != nil {
		return nil, err
	}
	if lit, ok := x.(expr.Lit); ok && name != "invert" {
		switch v := lit.V.(type) {
		case int64:
			if name == "neg" {
				v = -v
			}
			return expr.Lit{V: v}, nil
		case float64:
			if name == "neg" {
				v = -v
			}
			return expr.Lit{V: v}, nil
		}
	}
	return p.apply(it, name, x)
}

func (p *parser) postfix() (expr.Node, error) {
	x, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		it := p.peek()
		switch {
		case it.Is("("):
			p.pos++
			if x, err = p.call(it, x); err != nil {
				return nil, err
			}
		case it.Is("["):
			p.pos++
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(token.OP, "]"); err != nil {
				return nil, err
			}
			if x, err = p.apply(it, "getitem", x, idx); err != nil {
				return nil, err
			}
		case it.Is("."):
			p.pos++
			attr := p.next()
			if attr.Token != token.IDENT {
				return nil, p.errorf(attr, "expected an attribute name, got %s", attr)
			}
			if x, err = p.apply(it, "getattr", x, expr.Lit{V: attr.Value}); err != nil {
				return nil, err
			}
		default:
			return x, nil
		}
	}
}

func (p *parser) atom() (expr.Node, error) {
	it := p.next()
	switch it.Token {
	case token.INT:
		v, err := strconv.ParseInt(it.Value, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(it.Value, 64)
			if ferr != nil {
				return nil, p.errorf(it, "invalid number %s", it.Value)
			}
			return expr.Lit{V: f}, nil
		}
		return expr.Lit{V: v}, nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(it.Value, 64)
		if err != nil {
			return nil, p.errorf(it, "invalid number %s", it.Value)
		}
		return expr.Lit{V: f}, nil
	case token.STRING:
		return expr.Lit{V: it.Value}, nil
	case token.IDENT:
		return p.name(it)
	case token.OP:
		switch it.Value {
		case "(":
			return p.parenthesized()
		case "[":
			items, _, err := p.sequence("]")
			if err != nil {
				return nil, err
			}
			return expr.List(items), nil
		case "{":
			return p.dict()
		}
	}
	return nil, p.errorf(it, "unexpected %s", it)
}

func (p *parser) parenthesized() (expr.Node, error) {
	items, trailing, err := p.sequence(")")
	if err != nil {
		return nil, err
	}
	if len(items) == 1 && !trailing {
		return items[0], nil
	}
	return expr.Tuple(items), nil
}

// sequence parses comma-separated expressions up to the closing bracket
// and reports whether the last one was followed by a comma.
func (p *parser) sequence(closing string) ([]expr.Node, bool, error) {
	var items []expr.Node
	trailing := false
	for !p.accept(closing) {
		n, err := p.expression()
		if err != nil {
			return nil, false, err
		}
		items = append(items, n)
		trailing = p.accept(",")
		if !trailing && !p.peek().Is(closing) {
			it := p.peek()
			return nil, false, p.errorf(it, "expected ',' or %q, got %s", closing, it)
		}
	}
	return items, trailing, nil
}

func (p *parser) dict() (expr.Node, error) {
	m := map[string]expr.Node{}
	for !p.accept("}") {
		key := p.next()
		if key.Token != token.STRING {
			return nil, p.errorf(key, "dict keys must be strings, got %s", key)
		}
		if err := p.expect(token.OP, ":"); err != nil {
			return nil, err
		}
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		m[key.Value] = v
		if !p.accept(",") && !p.peek().Is("}") {
			it := p.peek()
			return nil, p.errorf(it, "expected ',' or '}', got %s", it)
		}
	}
	return expr.NewDict(m), nil
}

// name resolves an identifier: the scope first, then literals, leaf
// constructors, catalog namespaces, pow and user functions.
func (p *parser) name(it *scanner.Item) (expr.Node, error) {
	if n, ok := p.scope[it.Value]; ok {
		return n, nil
	}
	switch it.Value {
	case "True":
		return expr.Lit{V: true}, nil
	case "False":
		return expr.Lit{V: false}, nil
	case "None":
		return expr.Lit{}, nil
	case "inf":
		return expr.Lit{V: math.Inf(1)}, nil
	case "nan":
		return expr.Lit{V: math.NaN()}, nil
	case "pow":
		if p.peek().Is("(") {
			return p.pow()
		}
	}
	if k, ok := expr.ParseKind(it.Value); ok {
		if k.ClassName() == it.Value && p.peek().Is("(") {
			return p.constructor(k)
		}
		if k.String() == it.Value && p.peek().Is(".") {
			return p.qualified(it)
		}
	}
	if fn, ok := p.registry.Function(it.Value); ok {
		return fn, nil
	}
	return nil, p.errorf(it, "undefined name %s", it.Value)
}

// qualified resolves "namespace.attr" against the catalog.
func (p *parser) qualified(ns *scanner.Item) (expr.Node, error) {
	p.pos++
	attr := p.next()
	if attr.Token != token.IDENT {
		return nil, p.errorf(attr, "expected an attribute name, got %s", attr)
	}
	if k, ok := expr.ParseKind(ns.Value); ok && k.ClassName() == attr.Value && p.peek().Is("(") {
		return p.constructor(k)
	}
	if c, ok := expr.LookupCallable(ns.Value, attr.Value); ok {
		return c, nil
	}
	if l, ok := expr.LookupConstant(ns.Value, attr.Value); ok {
		return expr.Wrap(l), nil
	}
	return nil, p.errorf(attr, "%s.%s is not defined", ns.Value, attr.Value)
}

// constructor parses "Real()" or "Real('x')" into a free leaf.
func (p *parser) constructor(k expr.Kind) (expr.Node, error) {
	p.pos++
	name := ""
	if it := p.peek(); it.Token == token.STRING {
		name = it.Value
		p.pos++
	}
	if err := p.expect(token.OP, ")"); err != nil {
		return nil, err
	}
	return expr.Wrap(expr.NewLeaf(k, name)), nil
}

// pow parses the builtin pow: two arguments are "**", three a modular power.
func (p *parser) pow() (expr.Node, error) {
	open := p.next()
	args, _, err := p.sequence(")")
	if err != nil {
		return nil, err
	}
	switch len(args) {
	case 2:
		return p.apply(open, "pow", args[0], args[1])
	case 3:
		fn := expr.RealPow3
		for _, a := range args {
			if l, ok := expr.AsLeaf(a); ok {
				if l.Kind() == expr.KindSymbol {
					fn = expr.SymbolPow3
				}
				break
			}
		}
		n, err := fn.Apply([]any{args[0], args[1], args[2]}, nil)
		if err != nil {
			return nil, p.errorf(open, "%v", err)
		}
		return n, nil
	}
	return nil, p.errorf(open, "pow expected 2 or 3 arguments, got %d", len(args))
}

// call applies a callable to the argument list after "(".
func (p *parser) call(open *scanner.Item, callee expr.Node) (expr.Node, error) {
	var args []any
	kwargs := map[string]any{}
	for !p.accept(")") {
		if it := p.peek(); it.Token == token.IDENT && p.peekAt(1).Is("=") {
			p.pos += 2
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			kwargs[it.Value] = v
		} else {
			if len(kwargs) > 0 {
				return nil, p.errorf(it, "positional argument follows keyword argument")
			}
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		if !p.accept(",") && !p.peek().Is(")") {
			it := p.peek()
			return nil, p.errorf(it, "expected ',' or ')', got %s", it)
		}
	}
	if len(kwargs) == 0 {
		kwargs = nil
	}

	var n expr.Node
	var err error
	switch c := callee.(type) {
	case *expr.Function:
		n, err = c.Apply(args, kwargs)
	case *expr.UserFunction:
		n, err = c.Apply(args, kwargs)
	case *expr.Operator:
		if kwargs != nil {
			return nil, p.errorf(open, "%s takes no keyword arguments", c.QualifiedName())
		}
		var e *expr.Expression
		if e, err = c.Build(args...); err == nil {
			n = expr.Wrap(expr.NewDerived(c.Result(), e))
		}
	default:
		return nil, p.errorf(open, "%s is not callable", callee)
	}
	if err != nil {
		return nil, p.errorf(open, "%v", err)
	}
	return n, nil
}
