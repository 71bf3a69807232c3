package expr

import (
	"sort"
	"sync"
)

// The catalog holds every built-in callable and library constant, keyed by
// qualified name. Backends implement entries of the catalog; decoders and
// the parser resolve names through it.
var catalog = struct {
	sync.RWMutex
	callables map[string]Callable
	constants map[string]*Leaf
}{
	callables: make(map[string]Callable),
	constants: make(map[string]*Leaf),
}

func register[T Callable](c T) T {
	catalog.Lock()
	defer catalog.Unlock()
	catalog.callables[c.QualifiedName()] = c
	return c
}

func constant(kind Kind, qualified string) *Leaf {
	l := NewLeaf(kind, qualified)
	catalog.Lock()
	defer catalog.Unlock()
	catalog.constants[qualified] = l
	return l
}

func binary(ns, name, format string, prec int, result Kind) *Operator {
	return register(NewOperator(ns, name, format, 2, prec, result))
}

func unary(ns, name, format string, result Kind) *Operator {
	return register(NewOperator(ns, name, format, 1, PrecUnary, result))
}

func function(ns, name string, arity int, result Kind) *Function {
	return register(NewFunction(ns, name, "", arity, result))
}

// LookupCallable finds a catalog callable by namespace and name.
func LookupCallable(namespace, name string) (Callable, bool) {
	q := name
	if namespace != "" {
		q = namespace + "." + name
	}
	catalog.RLock()
	defer catalog.RUnlock()
	c, ok := catalog.callables[q]
	return c, ok
}

// LookupConstant finds a library constant such as real.pi.
func LookupConstant(namespace, name string) (*Leaf, bool) {
	catalog.RLock()
	defer catalog.RUnlock()
	l, ok := catalog.constants[namespace+"."+name]
	return l, ok
}

// Callables returns the catalog sorted by qualified name.
func Callables() []Callable {
	catalog.RLock()
	out := make([]Callable, 0, len(catalog.callables))
	for _, c := range catalog.callables {
		out = append(out, c)
	}
	catalog.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName() < out[j].QualifiedName() })
	return out
}

// CallablesIn returns the callables of one namespace, sorted by name.
func CallablesIn(namespace string) []Callable {
	var out []Callable
	for _, c := range Callables() {
		if c.Namespace() == namespace {
			out = append(out, c)
		}
	}
	return out
}

// Constants returns every library constant sorted by qualified name.
func Constants() []*Leaf {
	catalog.RLock()
	out := make([]*Leaf, 0, len(catalog.constants))
	for _, l := range catalog.constants {
		out = append(out, l)
	}
	catalog.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName() < out[j].QualifiedName() })
	return out
}

// Operators is the operator set a kind supports. Unsupported entries are nil.
type Operators struct {
	Eq, Ne, Lt, Le, Gt, Ge                   *Operator
	Add, Sub, Mul, MatMul, TrueDiv, FloorDiv *Operator
	Mod, Pow, LShift, RShift, And, Xor, Or   *Operator
	Neg, Pos, Invert                         *Operator
	GetItem, GetAttr                         *Operator
}

func numericOperators(ns string, result Kind) *Operators {
	return &Operators{
		Eq:       binary(ns, "eq", "{} == {}", PrecCompare, KindBoolean),
		Ne:       binary(ns, "ne", "{} != {}", PrecCompare, KindBoolean),
		Lt:       binary(ns, "lt", "{} < {}", PrecCompare, KindBoolean),
		Le:       binary(ns, "le", "{} <= {}", PrecCompare, KindBoolean),
		Gt:       binary(ns, "gt", "{} > {}", PrecCompare, KindBoolean),
		Ge:       binary(ns, "ge", "{} >= {}", PrecCompare, KindBoolean),
		Add:      binary(ns, "add", "{} + {}", PrecAdd, result),
		Sub:      binary(ns, "sub", "{} - {}", PrecAdd, result),
		Mul:      binary(ns, "mul", "{} * {}", PrecMul, result),
		MatMul:   binary(ns, "matmul", "{} @ {}", PrecMul, result),
		TrueDiv:  binary(ns, "truediv", "{} / {}", PrecMul, result),
		FloorDiv: binary(ns, "floordiv", "{} // {}", PrecMul, result),
		Mod:      binary(ns, "mod", "{} % {}", PrecMul, result),
		Pow:      binary(ns, "pow", "{} ** {}", PrecPow, result),
		LShift:   binary(ns, "lshift", "{} << {}", PrecShift, result),
		RShift:   binary(ns, "rshift", "{} >> {}", PrecShift, result),
		And:      binary(ns, "and", "{} & {}", PrecAnd, result),
		Xor:      binary(ns, "xor", "{} ^ {}", PrecXor, result),
		Or:       binary(ns, "or", "{} | {}", PrecOr, result),
		Neg:      unary(ns, "neg", "-{}", result),
		Pos:      unary(ns, "pos", "+{}", result),
		Invert:   unary(ns, "invert", "~{}", result),
	}
}

// Lookup returns the operator called name ("add", "getitem").
func (o *Operators) Lookup(name string) *Operator {
	switch name {
	case "eq":
		return o.Eq
	case "ne":
		return o.Ne
	case "lt":
		return o.Lt
	case "le":
		return o.Le
	case "gt":
		return o.Gt
	case "ge":
		return o.Ge
	case "add":
		return o.Add
	case "sub":
		return o.Sub
	case "mul":
		return o.Mul
	case "matmul":
		return o.MatMul
	case "truediv":
		return o.TrueDiv
	case "floordiv":
		return o.FloorDiv
	case "mod":
		return o.Mod
	case "pow":
		return o.Pow
	case "lshift":
		return o.LShift
	case "rshift":
		return o.RShift
	case "and":
		return o.And
	case "xor":
		return o.Xor
	case "or":
		return o.Or
	case "neg":
		return o.Neg
	case "pos":
		return o.Pos
	case "invert":
		return o.Invert
	case "getitem":
		return o.GetItem
	case "getattr":
		return o.GetAttr
	}
	return nil
}

// Symbol catalog.
var (
	SymbolOps  = symbolOperators()
	SymbolPow3 = register(NewFunction("symbol", "pow3", "pow({}, {}, {})", 3, KindSymbol))
)

func symbolOperators() *Operators {
	ops := numericOperators("symbol", KindSymbol)
	ops.GetItem = binary("symbol", "getitem", "{}[{}]", PrecAccess, KindSymbol)
	ops.GetItem.closed = true
	ops.GetAttr = binary("symbol", "getattr", "{}.{}", PrecAccess, KindSymbol)
	ops.GetAttr.bare = true
	return ops
}

// Real catalog.
var (
	RealOps  = numericOperators("real", KindReal)
	RealPow3 = register(NewFunction("real", "pow3", "pow({}, {}, {})", 3, KindReal))

	E   = Real{constant(KindReal, "real.e")}
	Inf = Real{constant(KindReal, "real.inf")}
	NaN = Real{constant(KindReal, "real.nan")}
	Pi  = Real{constant(KindReal, "real.pi")}
	Tau = Real{constant(KindReal, "real.tau")}
)

var realFunctions = realCatalog()

func realCatalog() map[string]*Function {
	unaryReal := []string{
		"abs", "acos", "acosh", "asin", "asinh", "atan", "atanh", "ceil", "cos", "cosh",
		"degrees", "erf", "erfc", "exp", "expm1", "fabs", "factorial", "floor", "gamma",
		"isqrt", "lgamma", "log", "log10", "log1p", "log2", "radians", "sin", "sinh",
		"sqrt", "tan", "tanh", "trunc", "ulp",
	}
	binaryReal := []string{
		"atan2", "comb", "copysign", "fmod", "hypot", "ldexp", "nextafter", "remainder",
	}
	predicates := []string{"isfinite", "isinf", "isnan"}
	pairs := []string{"frexp", "modf"}

	m := make(map[string]*Function)
	for _, n := range unaryReal {
		m[n] = function("real", n, 1, KindReal)
	}
	for _, n := range binaryReal {
		m[n] = function("real", n, 2, KindReal)
	}
	for _, n := range predicates {
		m[n] = function("real", n, 1, KindBoolean)
	}
	for _, n := range pairs {
		m[n] = function("real", n, 1, KindSymbol)
	}
	return m
}

// RealFunction returns the real catalog function called name.
func RealFunction(name string) (*Function, bool) {
	f, ok := realFunctions[name]
	return f, ok
}

// Frequently used real functions.
var (
	Abs   = realFunctions["abs"]
	Atan2 = realFunctions["atan2"]
	Cos   = realFunctions["cos"]
	Erf   = realFunctions["erf"]
	Exp   = realFunctions["exp"]
	Log   = realFunctions["log"]
	Sin   = realFunctions["sin"]
	Sqrt  = realFunctions["sqrt"]
	Tan   = realFunctions["tan"]
)

// Vector catalog.
var (
	VectorOps = &Operators{
		Eq:       binary("vector", "eq", "{} == {}", PrecCompare, KindBoolean),
		Ne:       binary("vector", "ne", "{} != {}", PrecCompare, KindBoolean),
		Add:      binary("vector", "add", "{} + {}", PrecAdd, KindVector),
		Sub:      binary("vector", "sub", "{} - {}", PrecAdd, KindVector),
		Mul:      binary("vector", "mul", "{} * {}", PrecMul, KindVector),
		MatMul:   binary("vector", "matmul", "{} @ {}", PrecMul, KindReal),
		TrueDiv:  binary("vector", "truediv", "{} / {}", PrecMul, KindVector),
		FloorDiv: binary("vector", "floordiv", "{} // {}", PrecMul, KindVector),
		Neg:      unary("vector", "neg", "-{}", KindVector),
		Pos:      unary("vector", "pos", "+{}", KindVector),
		Invert:   unary("vector", "invert", "~{}", KindVector),
	}
	VectorSum  = function("vector", "sum", 1, KindReal)
	VectorProd = function("vector", "prod", 1, KindReal)
)

// Boolean catalog.
var BooleanOps = &Operators{
	Eq:  binary("boolean", "eq", "{} == {}", PrecCompare, KindBoolean),
	Ne:  binary("boolean", "ne", "{} != {}", PrecCompare, KindBoolean),
	And: binary("boolean", "and", "{} & {}", PrecAnd, KindBoolean),
	Xor: binary("boolean", "xor", "{} ^ {}", PrecXor, KindBoolean),
	Or:  binary("boolean", "or", "{} | {}", PrecOr, KindBoolean),
}

// OperatorsOf returns the operator set of a kind.
func OperatorsOf(k Kind) *Operators {
	switch k {
	case KindReal:
		return RealOps
	case KindVector:
		return VectorOps
	case KindBoolean:
		return BooleanOps
	}
	return SymbolOps
}
