package expr

import (
	"errors"
	"testing"
)

func TestRenderPrecedence(t *testing.T) {
	x, y, z := NewReal("x"), NewReal("y"), NewReal("z")
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"neg of pow", x.Pow(y).Neg(), "-x ** y"},
		{"pow of neg", x.Neg().Pow(y), "(-x) ** y"},
		{"right grouping", x.Add(y.Add(z)), "x + (y + z)"},
		{"left grouping", x.Add(y).Add(z), "x + y + z"},
		{"right sub", x.Sub(y.Sub(z)), "x - (y - z)"},
		{"mixed", x.Add(y.RMul(2)), "x + 2 * y"},
		{"product of sum", x.Add(y).Mul(z), "(x + y) * z"},
		{"negative literal exponent", x.Pow(-1), "x ** (-1)"},
		{"reflected", x.RSub(2), "2 - x"},
		{"function", Cos.Call(x.Add(1)), "real.cos(x + 1)"},
		{"constant", Pi.Mul(x), "real.pi * x"},
		{"comparison", x.Add(1).Lt(y), "x + 1 < y"},
		{"pow3", x.Pow3(y, 7), "pow(x, y, 7)"},
		{"float literal", x.Mul(2.0), "x * 2.0"},
	}
	for _, tt := range tests {
		if got := tt.node.String(); got != tt.want {
			t.Errorf("%s: expected '%s', got '%s'", tt.name, tt.want, got)
		}
	}
}

func TestRenderIndexing(t *testing.T) {
	v := NewVector("v")
	x := NewReal("x")
	if got := v.Index(0).String(); got != "v[0]" {
		t.Errorf("expected 'v[0]', got '%s'", got)
	}
	if got := v.Index(x.Add(1)).String(); got != "v[x + 1]" {
		t.Errorf("expected 'v[x + 1]', got '%s'", got)
	}
	s := NewSymbol("s")
	if got := s.Attr("size").Add(1).String(); got != "s.size + 1" {
		t.Errorf("expected 's.size + 1', got '%s'", got)
	}
	if got := v.Sum().String(); got != "vector.sum(v)" {
		t.Errorf("expected 'vector.sum(v)', got '%s'", got)
	}
}

func TestStructuralEquality(t *testing.T) {
	x1, x2 := NewReal("x"), NewReal("x")
	if !Equal(x1, x2) {
		t.Error("expected two real leaves named x to be equal")
	}
	if Equal(x1, NewSymbol("x")) {
		t.Error("expected leaves of different kinds to differ")
	}
	a, b := x1.Add(1), x2.Add(1)
	if !Equal(a, b) {
		t.Error("expected equal expressions to be equal")
	}
	if Hash(a) != Hash(b) {
		t.Errorf("expected equal hashes, got %d and %d", Hash(a), Hash(b))
	}
	if Equal(x1.Add(1), x1.Add(1.0)) {
		t.Error("expected int and float literals to differ")
	}
	if Equal(NewReal(""), NewReal("")) {
		t.Error("expected anonymous leaves to be distinct")
	}
}

func TestKeysDoNotCollideAcrossShapes(t *testing.T) {
	tests := []struct {
		name string
		a, b Node
	}{
		{"string literal", Tuple{Lit{V: "a,lit:string:b"}}, Tuple{Lit{V: "a"}, Lit{V: "b"}}},
		{"leaf name", Tuple{NewReal("p,leaf:real:q")}, Tuple{NewReal("p"), NewReal("q")}},
		{"ref", List{Ref("a),ref:b")}, List{Ref("a"), Ref("b")}},
		{"dict key", NewDict(map[string]Node{"k": Lit{V: "v\",\"k2\":x"}}), NewDict(map[string]Node{"k": Lit{V: "v"}, "k2": NewReal("x")})},
	}
	for _, tt := range tests {
		if Equal(tt.a, tt.b) {
			t.Errorf("%s: expected %s and %s to differ", tt.name, tt.a, tt.b)
		}
		if Hash(tt.a) == Hash(tt.b) {
			t.Errorf("%s: expected different hashes", tt.name)
		}
	}

	x := NewReal("x")
	one := x.Add(Tuple{Lit{V: "a,lit:string:b"}})
	two := x.Add(Tuple{Lit{V: "a"}, Lit{V: "b"}})
	if Equal(one, two) {
		t.Errorf("expected %s and %s to differ", one, two)
	}
	m := NewMapping().Set(Tuple{Lit{V: "a"}, Lit{V: "b"}}, 99)
	if got := Substitute(one, m); !Equal(got, one) {
		t.Errorf("expected %s to be left alone, got %s", one, got)
	}
	if got := Substitute(two, m).String(); got != "x + 99" {
		t.Errorf("expected 'x + 99', got '%s'", got)
	}
}

func TestUserFunctionsDifferBySignature(t *testing.T) {
	reg := NewRegistry()
	unary := NewUserFunction("expr_test_sig", 1, KindReal)
	binary := NewUserFunction("expr_test_sig", 2, KindReal)
	if Equal(unary, binary) {
		t.Error("expected functions of different arity to differ")
	}
	if Equal(unary, NewUserFunction("expr_test_sig", 1, KindBoolean)) {
		t.Error("expected functions of different result kinds to differ")
	}
	if !Equal(unary, NewUserFunction("expr_test_sig", 1, KindReal)) {
		t.Error("expected identical declarations to be equal")
	}
	reg.Register(unary, DefaultImpl, "unary impl")
	if _, ok := reg.Lookup(binary, DefaultImpl); ok {
		t.Error("expected no implementation for the binary declaration")
	}
	if impl, ok := reg.Lookup(unary, DefaultImpl); !ok || impl != "unary impl" {
		t.Errorf("expected the unary implementation, got %v", impl)
	}
}

func TestDerivedLeafEqualityIgnoresName(t *testing.T) {
	x := NewReal("x")
	ns := NewNamespace("N")
	bound := ns.Bind("z", x.Add(1))
	if !Equal(bound, x.Add(1)) {
		t.Errorf("expected bound derived leaf to equal its expression, got %s", bound.Key())
	}
	l, _ := AsLeaf(bound)
	if l.Name() != "z" {
		t.Errorf("expected name 'z', got '%s'", l.Name())
	}
}

func TestDowncast(t *testing.T) {
	s := NewSymbol("s")
	item := s.Index(0)
	r, err := Downcast(item, KindReal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.(Real); !ok {
		t.Errorf("expected Real, got %T", r)
	}
	if r.String() != "s[0]" {
		t.Errorf("expected 's[0]', got '%s'", r.String())
	}
	if _, err := Downcast(NewReal("x"), KindVector); err == nil {
		t.Error("expected error narrowing a free real")
	}
	if _, err := Downcast(Lit{V: int64(1)}, KindReal); err == nil {
		t.Error("expected error narrowing a literal")
	}
}

func TestArity(t *testing.T) {
	x := NewReal("x")
	_, err := Atan2.Build([]any{x}, nil)
	var ae *ArityError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ArityError, got %v", err)
	}
	if ae.Want != 2 || ae.Got != 1 {
		t.Errorf("expected want 2 got 1, got want %d got %d", ae.Want, ae.Got)
	}
	_, err = Cos.Build([]any{x}, map[string]any{"base": 2})
	if !errors.As(err, &ae) || !ae.Kwargs {
		t.Errorf("expected keyword ArityError, got %v", err)
	}

	f := NewUserFunction("F_arity", Variadic, KindReal)
	e, err := f.Build([]any{x, 1}, map[string]any{"scale": 2, "offset": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := e.String(); got != "F_arity(x, 1, offset=1, scale=2)" {
		t.Errorf("expected sorted keyword rendering, got '%s'", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected Call with wrong arity to panic")
		}
	}()
	Cos.Call(x, x)
}

func TestCountNamed(t *testing.T) {
	x, y := NewReal("x"), NewReal("y")
	counts := CountNamed(x.Add(x).Mul(y))
	if len(counts) != 4 {
		t.Fatalf("expected 4 named elements, got %d", len(counts))
	}
	if counts[0].Node.Key() != RealOps.Mul.Key() {
		t.Errorf("expected real.mul first, got %s", counts[0].Node)
	}
	for _, c := range counts {
		if Equal(c.Node, x) && c.N != 2 {
			t.Errorf("expected x twice, got %d", c.N)
		}
	}

	lit := Lit{V: int64(3)}
	counts = CountNamed(lit)
	if len(counts) != 1 || !Equal(counts[0].Node, lit) || counts[0].N != 1 {
		t.Errorf("expected literal to count as itself, got %v", counts)
	}
}

func TestFreeSymbolsAndNames(t *testing.T) {
	x, y := NewReal("x"), NewReal("y")
	e := Cos.Call(x.Add(y).Mul(x)).(Real).Add(Pi)
	free := FreeSymbols(e)
	if len(free) != 2 || free[0].Name() != "x" || free[1].Name() != "y" {
		t.Fatalf("expected [x y], got %v", free)
	}
	names := SymbolNames(e, "")
	if _, ok := names["x"]; !ok || len(names) != 2 {
		t.Errorf("expected user names {x y}, got %v", names)
	}
	realNames := SymbolNames(e, "real")
	for _, n := range []string{"cos", "add", "mul", "pi"} {
		if _, ok := realNames[n]; !ok {
			t.Errorf("expected %s among real names, got %v", n, realNames)
		}
	}
	nss := SymbolNamespaces(e)
	if _, ok := nss["real"]; !ok {
		t.Errorf("expected real namespace, got %v", nss)
	}
	anon := NewReal("")
	if len(SymbolNames(anon.Add(1), "")) != 0 {
		t.Error("expected anonymous leaves to be skipped by SymbolNames")
	}
	if len(FreeSymbols(anon.Add(1))) != 1 {
		t.Error("expected anonymous leaves among free symbols")
	}
}

func TestSubstitute(t *testing.T) {
	x, y := NewReal("x"), NewReal("y")
	e := Cos.Call(x.Add(y.RMul(2)))

	if got := Substitute(e, NewMapping()); !Equal(got, e) {
		t.Errorf("expected identity substitution, got %s", got)
	}

	m := NewMapping().Set(x, 1).Set(y, 2)
	got := Substitute(e, m)
	if got.String() != "real.cos(1 + 2 * 2)" {
		t.Errorf("expected 'real.cos(1 + 2 * 2)', got '%s'", got.String())
	}
	inner := Substitute(x.Add(y.RMul(2)), m)
	if !Equal(got, Cos.Call(inner)) {
		t.Error("expected substitution to commute with function application")
	}

	// single pass: the replacement is not searched again
	swap := NewMapping().Set(x, y).Set(y, x)
	if got := Substitute(x.Sub(y), swap).String(); got != "y - x" {
		t.Errorf("expected 'y - x', got '%s'", got)
	}

	// callables can be replaced too
	fm := NewMapping().Set(Cos, Sin)
	if got := Substitute(e, fm).String(); got != "real.sin(x + 2 * y)" {
		t.Errorf("expected callable replacement, got '%s'", got)
	}

	tuple := Tuple{x, List{y, Lit{V: "s"}}}
	if got := Substitute(tuple, m).String(); got != "(1, [2, 's'])" {
		t.Errorf("expected containers rebuilt, got '%s'", got)
	}
}

func TestVectorize(t *testing.T) {
	x, y := NewReal("x"), NewReal("y")
	got := Vectorize(x.Add(y.RMul(2)), []string{"x", "y"}, "vec")
	if got.String() != "vec[0] + 2 * vec[1]" {
		t.Errorf("expected 'vec[0] + 2 * vec[1]', got '%s'", got.String())
	}
	got, names := AutoVectorize(y.Sub(x), "p")
	if len(names) != 2 || names[0] != "x" {
		t.Errorf("expected sorted names [x y], got %v", names)
	}
	if got.String() != "p[1] - p[0]" {
		t.Errorf("expected 'p[1] - p[0]', got '%s'", got.String())
	}
}

func TestBinaryOp(t *testing.T) {
	x := NewReal("x")
	n, err := BinaryOp("add", 1, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := n.(Real); !ok || n.String() != "1 + x" {
		t.Errorf("expected real '1 + x', got %T '%s'", n, n)
	}
	v := NewVector("v")
	n, err = BinaryOp("getitem", v, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := n.(Real); !ok {
		t.Errorf("expected vector element to be Real, got %T", n)
	}
	if _, err := BinaryOp("lt", v, v); err == nil {
		t.Error("expected vectors to reject ordering")
	}
	n, err = UnaryOp("neg", v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := n.(Vector); !ok {
		t.Errorf("expected Vector, got %T", n)
	}
}
