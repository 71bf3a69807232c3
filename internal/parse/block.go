package parse

import (
	"github.com/dyscolab/symbolite/internal/expr"
	"github.com/dyscolab/symbolite/internal/scanner"
	"github.com/dyscolab/symbolite/internal/token"
)

// Block parses a function definition:
//
//	def name(x: real.Real) -> tuple[real.Real, real.Real]:
//	    y = x + 1
//	    return x, y
//
// Indentation is not significant. Parameters and outputs take their kinds
// from the annotations; other assignment targets take the kind of their
// right-hand side.
func Block(src string, opts ...Option) (*expr.Block, error) {
	p, err := newParser(src, opts)
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	def := p.next()
	if def.Token != token.IDENT || def.Value != "def" {
		return nil, p.errorf(def, "expected def, got %s", def)
	}
	name := p.next()
	if name.Token != token.IDENT {
		return nil, p.errorf(name, "expected a block name, got %s", name)
	}

	if err := p.expect(token.OP, "("); err != nil {
		return nil, err
	}
	var inputs []expr.Node
	for !p.accept(")") {
		param := p.next()
		if param.Token != token.IDENT {
			return nil, p.errorf(param, "expected a parameter name, got %s", param)
		}
		if err := p.expect(token.OP, ":"); err != nil {
			return nil, err
		}
		kind, err := p.annotation()
		if err != nil {
			return nil, err
		}
		leaf := expr.Wrap(expr.NewLeaf(kind, param.Value))
		inputs = append(inputs, leaf)
		p.scope[param.Value] = leaf
		if !p.accept(",") && !p.peek().Is(")") {
			it := p.peek()
			return nil, p.errorf(it, "expected ',' or ')', got %s", it)
		}
	}

	if err := p.expect(token.OP, "->"); err != nil {
		return nil, err
	}
	kinds, err := p.returnAnnotation()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.OP, ":"); err != nil {
		return nil, err
	}
	p.outputNames(kinds)

	var lines []*expr.Assign
	for {
		p.skipNewlines()
		it := p.peek()
		if it.Token == token.EOF {
			return nil, p.errorf(it, "block %s has no return statement", name.Value)
		}
		if it.Token == token.IDENT && it.Value == "return" {
			break
		}
		target, rhs, err := p.assignment()
		if err != nil {
			return nil, err
		}
		kind := targetKind(rhs)
		if k, ok := kinds.byName[target]; ok {
			kind = k
		}
		lhs := expr.Wrap(expr.NewLeaf(kind, target))
		a, err := expr.NewAssign(lhs, rhs)
		if err != nil {
			return nil, p.errorf(it, "%v", err)
		}
		lines = append(lines, a)
		p.scope[target] = lhs
	}

	ret := p.next()
	outputs, err := p.returned(ret, kinds)
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if err := p.expect(token.EOF, ""); err != nil {
		return nil, err
	}
	b, err := expr.NewBlock(name.Value, inputs, outputs, lines)
	if err != nil {
		return nil, p.errorf(def, "%v", err)
	}
	return b, nil
}

// outputKinds is the declared return type, in order and by output name.
type outputKinds struct {
	kinds  []expr.Kind
	byName map[string]expr.Kind
}

// annotation parses "real.Real" or "Real".
func (p *parser) annotation() (expr.Kind, error) {
	it := p.next()
	if it.Token != token.IDENT {
		return 0, p.errorf(it, "expected a type, got %s", it)
	}
	name := it.Value
	if p.accept(".") {
		attr := p.next()
		if attr.Token != token.IDENT {
			return 0, p.errorf(attr, "expected a type, got %s", attr)
		}
		name = attr.Value
	}
	k, ok := expr.ParseKind(name)
	if !ok {
		return 0, p.errorf(it, "unknown type %s", name)
	}
	return k, nil
}

// returnAnnotation parses "None", a single type or "tuple[...]".
func (p *parser) returnAnnotation() (*outputKinds, error) {
	out := &outputKinds{byName: map[string]expr.Kind{}}
	it := p.peek()
	switch {
	case it.Token == token.IDENT && it.Value == "None":
		p.pos++
	case it.Token == token.IDENT && it.Value == "tuple" && p.peekAt(1).Is("["):
		p.pos += 2
		for !p.accept("]") {
			k, err := p.annotation()
			if err != nil {
				return nil, err
			}
			out.kinds = append(out.kinds, k)
			if !p.accept(",") && !p.peek().Is("]") {
				it := p.peek()
				return nil, p.errorf(it, "expected ',' or ']', got %s", it)
			}
		}
	default:
		k, err := p.annotation()
		if err != nil {
			return nil, err
		}
		out.kinds = []expr.Kind{k}
	}
	return out, nil
}

// outputNames looks ahead to the return statement so that assignments to
// outputs take their declared kinds.
func (p *parser) outputNames(kinds *outputKinds) {
	for i := p.pos; i < len(p.items); i++ {
		if it := p.items[i]; it.Token != token.IDENT || it.Value != "return" {
			continue
		}
		for j, k := i+1, 0; j < len(p.items) && k < len(kinds.kinds); j, k = j+2, k+1 {
			if p.items[j].Token != token.IDENT {
				break
			}
			kinds.byName[p.items[j].Value] = kinds.kinds[k]
			if !p.items[j+1].Is(",") {
				break
			}
		}
	}
}

// returned parses the names after "return" and builds the output leaves.
func (p *parser) returned(ret *scanner.Item, kinds *outputKinds) ([]expr.Node, error) {
	var names []*scanner.Item
	if it := p.peek(); it.Token == token.IDENT && it.Value == "None" {
		p.pos++
	} else {
		for {
			it := p.next()
			if it.Token != token.IDENT {
				return nil, p.errorf(it, "expected an output name, got %s", it)
			}
			names = append(names, it)
			if !p.accept(",") {
				break
			}
		}
	}
	if len(names) != len(kinds.kinds) {
		return nil, p.errorf(ret, "return declares %d outputs but returns %d", len(kinds.kinds), len(names))
	}
	outputs := make([]expr.Node, len(names))
	for i, it := range names {
		n, ok := p.scope[it.Value]
		if !ok {
			return nil, p.errorf(it, "output %s is never assigned", it.Value)
		}
		l, ok := expr.AsLeaf(n)
		if !ok || l.Kind() != kinds.kinds[i] {
			return nil, p.errorf(it, "output %s does not have type %s", it.Value, expr.TypeAnnotation(kinds.kinds[i]))
		}
		outputs[i] = n
	}
	return outputs, nil
}

func targetKind(rhs expr.Node) expr.Kind {
	if l, ok := expr.AsLeaf(rhs); ok {
		return l.Kind()
	}
	if lit, ok := rhs.(expr.Lit); ok {
		switch lit.V.(type) {
		case int64, float64:
			return expr.KindReal
		case bool:
			return expr.KindBoolean
		}
	}
	return expr.KindSymbol
}
