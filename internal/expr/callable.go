package expr

import (
	"fmt"
	"sort"
	"strconv"
)

// Variadic marks a callable that accepts any number of positional and
// keyword arguments.
const Variadic = -1

// Callable is a named function or operator that can head an Expression.
type Callable interface {
	Node
	Name() string
	Namespace() string
	QualifiedName() string
	// Arity is the number of positional arguments, or Variadic.
	Arity() int
	// Result is the kind of the leaf produced by applying the callable.
	Result() Kind
	// Format is the rendering template with one "{}" per argument, or empty
	// for prefix-call rendering.
	Format() string
}

// ArityError reports a call whose arguments do not fit the callable.
type ArityError struct {
	Func   string
	Want   int
	Got    int
	Kwargs bool
}

func (e *ArityError) Error() string {
	if e.Kwargs {
		return fmt.Sprintf("%s does not accept keyword arguments", e.Func)
	}
	return fmt.Sprintf("%s takes %d positional arguments but %d were given", e.Func, e.Want, e.Got)
}

type signature struct {
	name      string
	namespace string
	format    string
	arity     int
	result    Kind
}

func (s *signature) Name() string      { return s.name }
func (s *signature) Namespace() string { return s.namespace }
func (s *signature) Arity() int        { return s.arity }
func (s *signature) Result() Kind      { return s.result }
func (s *signature) Format() string    { return s.format }

func (s *signature) QualifiedName() string {
	if s.namespace == "" {
		return s.name
	}
	return s.namespace + "." + s.name
}

// Function is a catalog function such as real.cos.
type Function struct {
	signature
}

// NewFunction declares a function. It is not added to the catalog.
func NewFunction(namespace, name, format string, arity int, result Kind) *Function {
	return &Function{signature{name: name, namespace: namespace, format: format, arity: arity, result: result}}
}

func (f *Function) Key() string    { return "func:" + strconv.Quote(f.QualifiedName()) }
func (f *Function) String() string { return f.QualifiedName() }
func (*Function) isNode()          {}

// Build applies the function to arguments, checking arity.
func (f *Function) Build(args []any, kwargs map[string]any) (*Expression, error) {
	return build(f, args, kwargs)
}

// Apply builds the expression and wraps it as a derived leaf of the result kind.
func (f *Function) Apply(args []any, kwargs map[string]any) (Node, error) {
	return apply(f, args, kwargs)
}

// Call is Apply with positional arguments; it panics with *ArityError on misuse.
func (f *Function) Call(args ...any) Node {
	return mustApply(f, args)
}

// Operator is a catalog operator with a precedence and a rendering template.
type Operator struct {
	signature
	precedence int
	// bare renders a string right operand unquoted (attribute access).
	bare bool
	// closed templates delimit their right operand ("{}[{}]").
	closed bool
}

// NewOperator declares a unary (arity 1) or binary (arity 2) operator.
func NewOperator(namespace, name, format string, arity, precedence int, result Kind) *Operator {
	return &Operator{
		signature:  signature{name: name, namespace: namespace, format: format, arity: arity, result: result},
		precedence: precedence,
	}
}

func (o *Operator) Precedence() int { return o.precedence }
func (o *Operator) Unary() bool     { return o.arity == 1 }
func (o *Operator) Bare() bool      { return o.bare }
func (o *Operator) Key() string     { return "op:" + strconv.Quote(o.QualifiedName()) }
func (o *Operator) String() string  { return o.QualifiedName() }
func (*Operator) isNode()           {}

// Build applies the operator to its operands.
func (o *Operator) Build(args ...any) (*Expression, error) {
	return build(o, args, nil)
}

// Call applies the operator and wraps the result as a derived leaf.
func (o *Operator) Call(args ...any) Node {
	return mustApply(o, args)
}

func (o *Operator) derive(args ...any) *Leaf {
	e, err := build(o, args, nil)
	if err != nil {
		panic(err)
	}
	return NewDerived(o.result, e)
}

// UserFunction is a function defined outside the catalog. Its
// implementations are looked up per backend in a Registry.
type UserFunction struct {
	signature
}

// NewUserFunction declares a user function and records it in DefaultRegistry
// so decoders can find it by name.
func NewUserFunction(name string, arity int, result Kind) *UserFunction {
	u := &UserFunction{signature{name: name, arity: arity, result: result}}
	DefaultRegistry.declare(u)
	return u
}

// FromFunction declares a user function and registers impl as its default
// implementation.
func FromFunction(name string, arity int, result Kind, impl any) *UserFunction {
	u := NewUserFunction(name, arity, result)
	u.RegisterImpl(DefaultImpl, impl)
	return u
}

// Key identifies a user function by name, arity and result kind.
func (u *UserFunction) Key() string {
	return fmt.Sprintf("user:%s/%d:%s", strconv.Quote(u.name), u.arity, u.result)
}

func (u *UserFunction) String() string { return u.name }
func (*UserFunction) isNode()          {}

// RegisterImpl registers impl for the backend named backendID in DefaultRegistry.
func (u *UserFunction) RegisterImpl(backendID string, impl any) {
	DefaultRegistry.Register(u, backendID, impl)
}

func (u *UserFunction) Build(args []any, kwargs map[string]any) (*Expression, error) {
	return build(u, args, kwargs)
}

func (u *UserFunction) Apply(args []any, kwargs map[string]any) (Node, error) {
	return apply(u, args, kwargs)
}

func (u *UserFunction) Call(args ...any) Node {
	return mustApply(u, args)
}

func build(c Callable, args []any, kwargs map[string]any) (*Expression, error) {
	if n := c.Arity(); n != Variadic {
		if len(kwargs) > 0 {
			return nil, &ArityError{Func: c.QualifiedName(), Want: n, Got: len(args), Kwargs: true}
		}
		if len(args) != n {
			return nil, &ArityError{Func: c.QualifiedName(), Want: n, Got: len(args)}
		}
	}
	nodes := make([]Node, len(args))
	for i, a := range args {
		nodes[i] = From(a)
	}
	var kw []KwArg
	if len(kwargs) > 0 {
		kw = make([]KwArg, 0, len(kwargs))
		for k, v := range kwargs {
			kw = append(kw, KwArg{Name: k, Value: From(v)})
		}
	}
	return NewExpression(c, nodes, kw), nil
}

func apply(c Callable, args []any, kwargs map[string]any) (Node, error) {
	e, err := build(c, args, kwargs)
	if err != nil {
		return nil, err
	}
	return Wrap(NewDerived(c.Result(), e)), nil
}

func mustApply(c Callable, args []any) Node {
	n, err := apply(c, args, nil)
	if err != nil {
		panic(err)
	}
	return n
}

func sortKwargs(kw []KwArg) []KwArg {
	out := make([]KwArg, len(kw))
	copy(out, kw)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
