package std

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
)

func evaluate(t *testing.T, n expr.Node, values map[string]any) any {
	t.Helper()
	v, err := eval.Evaluate(expr.Substitute(n, expr.BindNames(n, values)), Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func TestRealArithmetic(t *testing.T) {
	x, y := expr.NewReal("x"), expr.NewReal("y")
	vals := map[string]any{"x": 7, "y": -3}
	tests := []struct {
		name string
		node expr.Node
		want any
	}{
		{"add", x.Add(y), 4.0},
		{"floordiv", x.FloorDiv(y), -3.0},
		{"mod", x.Mod(y), -2.0},
		{"pow", x.Pow(2), 49.0},
		{"neg", y.Neg(), 3.0},
		{"compare", x.Gt(y), true},
		{"lshift", x.LShift(2), int64(28)},
		{"invert", x.Invert(), int64(-8)},
		{"pow3", x.Pow3(2, 5), int64(4)},
		{"function", expr.Atan2.Call(0, x), 0.0},
		{"constant", expr.Pi.Mul(2), 2 * math.Pi},
	}
	for _, tt := range tests {
		if got := evaluate(t, tt.node, vals); got != tt.want {
			t.Errorf("%s: expected %v (%T), got %v (%T)", tt.name, tt.want, tt.want, got, got)
		}
	}
}

func TestRealFunctions(t *testing.T) {
	x := expr.NewReal("x")
	for _, name := range []string{"sin", "cos", "exp", "sqrt", "log", "tanh"} {
		fn, _ := expr.RealFunction(name)
		got := evaluate(t, fn.Call(x), map[string]any{"x": 0.5})
		if got.(float64) == 0 || math.IsNaN(got.(float64)) {
			t.Errorf("%s(0.5): unexpected %v", name, got)
		}
	}
	frexp, _ := expr.RealFunction("frexp")
	parts := evaluate(t, frexp.Call(x), map[string]any{"x": 8.0}).([]any)
	if parts[0] != 0.5 || parts[1] != int64(4) {
		t.Errorf("expected (0.5, 4), got %v", parts)
	}
	isnan, _ := expr.RealFunction("isnan")
	if got := evaluate(t, isnan.Call(expr.NaN), nil); got != true {
		t.Errorf("expected isnan(nan) to be true, got %v", got)
	}
}

func TestDivisionByZero(t *testing.T) {
	x := expr.NewReal("x")
	n := x.RDiv(1)
	_, err := eval.Evaluate(expr.Substitute(n, expr.NewMapping().Set(x, 0)), Default())
	var ce *eval.CallError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CallError, got %v", err)
	}
	if ce.Func != "real.truediv" {
		t.Errorf("expected 'real.truediv', got '%s'", ce.Func)
	}
	sqrt := expr.Sqrt.Call(x)
	_, err = eval.Evaluate(expr.Substitute(sqrt, expr.NewMapping().Set(x, -1)), Default())
	if err == nil {
		t.Error("expected domain error for sqrt(-1)")
	}
}

func TestVectorAndSymbolOperations(t *testing.T) {
	v, w := expr.NewVector("v"), expr.NewVector("w")
	vals := map[string]any{"v": []float64{1, 2, 3}, "w": []float64{4, 5, 6}}
	if got := evaluate(t, v.MatMul(w), vals); got != 32.0 {
		t.Errorf("expected 32, got %v", got)
	}
	if got := evaluate(t, v.Index(-1), vals); got != 3.0 {
		t.Errorf("expected 3, got %v", got)
	}
	if got := evaluate(t, v.Add(w).Sum(), vals); got != 21.0 {
		t.Errorf("expected 21, got %v", got)
	}
	scaled := evaluate(t, v.Mul(2), vals).([]float64)
	if len(scaled) != 3 || scaled[2] != 6 {
		t.Errorf("expected [2 4 6], got %v", scaled)
	}
	if got := evaluate(t, v.Eq(w), vals); got != false {
		t.Errorf("expected false, got %v", got)
	}

	s := expr.NewSymbol("s")
	rec := map[string]any{"s": map[string]any{"size": 4.0}}
	if got := evaluate(t, s.Attr("size").Add(1), rec); got != 5.0 {
		t.Errorf("expected 5, got %v", got)
	}
	if got := evaluate(t, s.Index("size"), rec); got != 4.0 {
		t.Errorf("expected 4, got %v", got)
	}
}

func TestBooleanOperations(t *testing.T) {
	a, b := expr.NewBoolean("a"), expr.NewBoolean("b")
	vals := map[string]any{"a": true, "b": false}
	if got := evaluate(t, a.And(b), vals); got != false {
		t.Errorf("expected false, got %v", got)
	}
	if got := evaluate(t, a.Xor(b).Or(b), vals); got != true {
		t.Errorf("expected true, got %v", got)
	}
}

func TestInvertUnsupportedOnVectors(t *testing.T) {
	v := expr.NewVector("v")
	_, err := eval.Evaluate(expr.Substitute(v.Invert(), expr.NewMapping().Set(v, []any{1.0})), Default())
	var ue *backend.UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedError, got %v", err)
	}
	if ue.Name != "vector.invert" || ue.Backend != Name {
		t.Errorf("expected vector.invert in std, got %s in %s", ue.Name, ue.Backend)
	}
}

func TestCatalogCovered(t *testing.T) {
	if missing := backend.Missing(Default()); len(missing) > 0 {
		t.Errorf("expected every catalog entry to be covered, missing %v", missing)
	}
}
