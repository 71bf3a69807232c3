package array

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
)

func TestBroadcastingArithmetic(t *testing.T) {
	x := expr.NewReal("x")
	n := expr.Cos.Call(x.Mul(0)).(expr.Real).Add(x)
	m := expr.NewMapping().Set(x, expr.Lit{V: []float64{1, 2, 3}})
	v, err := eval.Evaluate(expr.Substitute(n, m), Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := v.([]float64)
	if !ok {
		t.Fatalf("expected []float64, got %T", v)
	}
	want := []float64{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestIEEESemantics(t *testing.T) {
	x := expr.NewReal("x")
	m := expr.NewMapping().Set(x, 0)
	v, err := eval.Evaluate(expr.Substitute(x.RDiv(1), m), Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(v.(float64), 1) {
		t.Errorf("expected +Inf, got %v", v)
	}
	v, err = eval.Evaluate(expr.Substitute(expr.Sqrt.Call(x.Sub(1)), m), Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(v.(float64)) {
		t.Errorf("expected NaN, got %v", v)
	}
}

func TestComparisonMask(t *testing.T) {
	x := expr.NewReal("x")
	m := expr.NewMapping().Set(x, expr.Lit{V: []float64{1, 5, 3}})
	v, err := eval.Evaluate(expr.Substitute(x.Gt(2), m), Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mask, ok := v.([]bool)
	if !ok || len(mask) != 3 {
		t.Fatalf("expected a 3-element mask, got %#v", v)
	}
	if mask[0] || !mask[1] || !mask[2] {
		t.Errorf("expected [false true true], got %v", mask)
	}
}

func TestListLiteralBecomesArray(t *testing.T) {
	v, err := eval.Evaluate(expr.List{expr.Lit{V: 1.0}, expr.Lit{V: int64(2)}}, Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.([]float64); !ok {
		t.Errorf("expected []float64, got %T", v)
	}
}

func TestUnsupportedFunctions(t *testing.T) {
	x := expr.Lit{V: 0.5}
	for _, name := range unsupported {
		fn, _ := expr.RealFunction(name)
		_, err := eval.Translate(fn.Call(x), Default())
		var ue *backend.UnsupportedError
		if !errors.As(err, &ue) {
			t.Fatalf("%s: expected UnsupportedError, got %v", name, err)
		}
		if ue.Name != "real."+name || ue.Backend != Name {
			t.Errorf("expected real.%s in %s, got %s in %s", name, Name, ue.Name, ue.Backend)
		}
	}
	if got := (&backend.UnsupportedError{Name: "real.erf", Backend: Name}).Error(); got != "real.erf is not supported in module array" {
		t.Errorf("unexpected message '%s'", got)
	}

	_, err := eval.Translate(expr.NewReal("free"), Default())
	var ue *backend.UnsupportedError
	if !errors.As(err, &ue) || ue.Name != "real.Real" {
		t.Errorf("expected real.Real to be unsupported, got %v", err)
	}
}

func TestCompiledBlockOnArrays(t *testing.T) {
	x, y := expr.NewReal("x"), expr.NewReal("y")
	b, err := expr.NewBlock("scale", []expr.Node{x}, []expr.Node{y}, []*expr.Assign{
		expr.Let(y, x.Mul(2).Add(1)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := eval.Translate(b, Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := v.(*eval.Compiled).Call([]float64{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.([]float64)
	if got[0] != 1 || got[1] != 3 {
		t.Errorf("expected [1 3], got %v", got)
	}
}

func TestCatalogCovered(t *testing.T) {
	if missing := backend.Missing(Default()); len(missing) > 0 {
		t.Errorf("expected every catalog entry to be covered, missing %v", missing)
	}
}
