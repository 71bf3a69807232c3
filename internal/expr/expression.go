package expr

import (
	"strconv"
	"strings"
)

// KwArg is a keyword argument of an Expression.
type KwArg struct {
	Name  string
	Value Node
}

// Expression is the application of a callable to positional and keyword
// arguments. Keyword arguments are kept sorted by name.
type Expression struct {
	fn     Callable
	args   []Node
	kwargs []KwArg
	key    string
}

// NewExpression builds an expression without checking arity.
func NewExpression(fn Callable, args []Node, kwargs []KwArg) *Expression {
	e := &Expression{fn: fn, args: append([]Node(nil), args...), kwargs: sortKwargs(kwargs)}
	var sb strings.Builder
	sb.WriteString(fn.Key())
	sb.WriteByte('(')
	for i, a := range e.args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.Key())
	}
	sb.WriteByte(';')
	for i, kw := range e.kwargs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Quote(kw.Name))
		sb.WriteByte('=')
		sb.WriteString(kw.Value.Key())
	}
	sb.WriteByte(')')
	e.key = sb.String()
	return e
}

func (e *Expression) Func() Callable  { return e.fn }
func (e *Expression) Args() []Node    { return append([]Node(nil), e.args...) }
func (e *Expression) Kwargs() []KwArg { return append([]KwArg(nil), e.kwargs...) }
func (e *Expression) Key() string     { return e.key }
func (*Expression) isNode()           {}

// Kwarg returns the keyword argument called name.
func (e *Expression) Kwarg(name string) (Node, bool) {
	for _, kw := range e.kwargs {
		if kw.Name == name {
			return kw.Value, true
		}
	}
	return nil, false
}

func (e *Expression) String() string {
	args := make([]Operand, len(e.args))
	for i, a := range e.args {
		args[i] = OperandOf(a)
	}
	if op, ok := e.fn.(*Operator); ok && op.bare && len(e.args) == 2 {
		if lit, ok := e.args[1].(Lit); ok {
			if s, ok := lit.V.(string); ok {
				args[1] = Operand{Text: s, Prec: PrecAtom}
			}
		}
	}
	kwargs := make([]string, len(e.kwargs))
	for i, kw := range e.kwargs {
		kwargs[i] = kw.Name + "=" + kw.Value.String()
	}
	return RenderCall(e.fn, args, kwargs).Text
}
