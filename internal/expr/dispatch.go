package expr

import "github.com/pkg/errors"

// operandKind picks the catalog an operator is taken from: the kind of the
// first leaf operand, real for plain numbers, symbol otherwise.
func operandKind(args ...Node) Kind {
	for _, a := range args {
		if l, ok := AsLeaf(a); ok {
			return l.kind
		}
	}
	for _, a := range args {
		if lit, ok := a.(Lit); ok {
			switch lit.V.(type) {
			case int64, float64:
				continue
			}
		}
		return KindSymbol
	}
	return KindReal
}

// BinaryOp applies the operator called name ("add", "getitem") to x and y,
// choosing the catalog by operand kind. Indexing and attribute access use
// the symbol catalog; indexing a vector yields a real.
func BinaryOp(name string, x, y any) (Node, error) {
	a, b := From(x), From(y)
	k := operandKind(a, b)
	if name == "getitem" || name == "getattr" {
		op := SymbolOps.Lookup(name)
		e, err := op.Build(a, b)
		if err != nil {
			return nil, err
		}
		if name == "getitem" && k == KindVector {
			return Real{NewDerived(KindReal, e)}, nil
		}
		return Symbol{NewDerived(KindSymbol, e)}, nil
	}
	return applyOperator(k, name, a, b)
}

// UnaryOp applies the unary operator called name ("neg") to x.
func UnaryOp(name string, x any) (Node, error) {
	a := From(x)
	return applyOperator(operandKind(a), name, a)
}

func applyOperator(k Kind, name string, args ...Node) (Node, error) {
	op := OperatorsOf(k).Lookup(name)
	if op == nil {
		return nil, errors.Errorf("%s values do not support %s", k, name)
	}
	if op.arity != len(args) {
		return nil, &ArityError{Func: op.QualifiedName(), Want: op.arity, Got: len(args)}
	}
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	return op.Call(vals...), nil
}
