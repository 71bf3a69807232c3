package eval_test

import (
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/backend/std"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
)

func newNamespaceX() *expr.Namespace {
	ns := expr.NewNamespace("X")
	x := ns.Real("x")
	y := ns.Real("y")
	z := ns.Bind("z", x.Add(y.RMul(2))).(expr.Real)
	ns.Bind("p", expr.Cos.Call(z))
	return ns
}

func TestEvaluateExpression(t *testing.T) {
	x := expr.NewReal("x")
	n := expr.Substitute(x.Mul(3).Add(expr.Pi), expr.NewMapping().Set(x, 2))
	v, err := eval.Evaluate(n, std.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.(float64); math.Abs(got-(6+math.Pi)) > 1e-12 {
		t.Errorf("expected %v, got %v", 6+math.Pi, got)
	}
}

func TestEvalNamespaceOrdersDependencies(t *testing.T) {
	ns := newNamespaceX()
	bindings := expr.BindNames(ns, map[string]any{"x": 1, "y": 2})
	out, err := eval.EvalNamespace(ns, bindings, std.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["z"] != 5.0 {
		t.Errorf("expected z = 5, got %v", out["z"])
	}
	if out["p"] != math.Cos(5) {
		t.Errorf("expected p = %v, got %v", math.Cos(5), out["p"])
	}
}

func TestEvalContentReverseOrder(t *testing.T) {
	a, b, c := expr.NewReal("a"), expr.NewReal("b"), expr.NewReal("c")
	content := eval.Content{
		{Key: c.Leaf, Value: b.Mul(2)},
		{Key: b.Leaf, Value: a.Add(1)},
		{Key: a.Leaf, Value: expr.Lit{V: int64(3)}},
	}
	for _, workers := range []int{1, 4} {
		out, err := eval.New(std.Default(), eval.WithWorkers(workers)).EvalContent(content)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out["c"] != 8.0 {
			t.Errorf("workers=%d: expected c = 8, got %v", workers, out["c"])
		}
	}

	subs, err := eval.SubstituteContent(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := subs["c"].String(); got != "(3 + 1) * 2" {
		t.Errorf("expected '(3 + 1) * 2', got '%s'", got)
	}
}

func TestSolveDependencies(t *testing.T) {
	deps := map[string]eval.Set[string]{
		"a": {},
		"b": {"a": {}},
		"c": {"a": {}},
		"d": {"b": {}, "c": {}, "outside": {}},
	}
	waves, err := eval.SolveDependencies(deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{{"a"}, {"b", "c"}, {"d"}}
	if len(waves) != len(want) {
		t.Fatalf("expected %d waves, got %v", len(want), waves)
	}
	for i := range want {
		if len(waves[i]) != len(want[i]) {
			t.Fatalf("wave %d: expected %v, got %v", i, want[i], waves[i])
		}
		for j := range want[i] {
			if waves[i][j] != want[i][j] {
				t.Errorf("wave %d: expected %v, got %v", i, want[i], waves[i])
			}
		}
	}
}

func TestCycleIsReported(t *testing.T) {
	a, b := expr.NewReal("a"), expr.NewReal("b")
	content := eval.Content{
		{Key: a.Leaf, Value: b.Add(1)},
		{Key: b.Leaf, Value: a.Add(1)},
	}
	_, err := eval.EvalContent(content, std.Default())
	var ce *eval.CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(ce.Remaining) != 2 {
		t.Errorf("expected 2 remaining items, got %v", ce.Remaining)
	}
	if deps := ce.Remaining["a"]; len(deps) != 1 || deps[0] != "b" {
		t.Errorf("expected a to wait on b, got %v", ce.Remaining)
	}
	if want := "a -> {b}; b -> {a}"; !strings.Contains(err.Error(), want) {
		t.Errorf("expected error to contain %q, got %v", want, err)
	}
}

func TestSelfReferenceIsNotADependency(t *testing.T) {
	x := expr.NewReal("x")
	content := eval.Content{{Key: x.Leaf, Value: x}}
	deps := eval.ComputeDependencies(content)
	if len(deps[x.Key()]) != 0 {
		t.Errorf("expected no dependencies, got %v", deps[x.Key()])
	}
}

func TestCallErrorWrapsImplementationFailure(t *testing.T) {
	boom := errors.New("boom")
	m := backend.NewModule("failing")
	m.Set("real", "add", backend.Func(func(args []any, _ map[string]any) (any, error) {
		return nil, boom
	}))
	x := expr.NewReal("x")
	n := expr.Substitute(x.Add(1), expr.NewMapping().Set(x, 2))
	_, err := eval.Translate(n, m)
	var ce *eval.CallError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CallError, got %v", err)
	}
	if ce.Func != "real.add" {
		t.Errorf("expected 'real.add', got '%s'", ce.Func)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected the original error in the chain, got %v", err)
	}
	if got := ce.Error(); got != "while evaluating real.add(2, 1): boom" {
		t.Errorf("expected 'while evaluating real.add(2, 1): boom', got '%s'", got)
	}
}

func TestUnsupportedAndNotFound(t *testing.T) {
	m := backend.NewModule("partial")
	m.MarkUnsupported("real", "cos")
	x := expr.Lit{V: 1.0}
	_, err := eval.Translate(expr.Cos.Call(x), m)
	var ue *backend.UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedError, got %v", err)
	}
	if ue.Name != "real.cos" || ue.Backend != "partial" {
		t.Errorf("expected real.cos in partial, got %s in %s", ue.Name, ue.Backend)
	}

	_, err = eval.Translate(expr.Sin.Call(x), m)
	var nf *backend.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	_, err = eval.Translate(expr.NewReal("free"), std.Default())
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedError for a free leaf, got %v", err)
	}
}

func TestUserFunctionImplementations(t *testing.T) {
	reg := expr.NewRegistry()
	twice := expr.NewUserFunction("eval_test_twice", 1, expr.KindReal)
	ev := eval.New(std.Default(), eval.WithRegistry(reg))

	n := twice.Call(expr.Lit{V: 4.0})
	_, err := ev.Translate(n)
	var me *backend.MissingImplError
	if !errors.As(err, &me) {
		t.Fatalf("expected MissingImplError, got %v", err)
	}

	reg.Register(twice, expr.DefaultImpl, backend.Func(func(args []any, _ map[string]any) (any, error) {
		return args[0].(float64) * 2, nil
	}))
	v, err := ev.Translate(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 8.0 {
		t.Errorf("expected 8, got %v", v)
	}

	reg.Register(twice, std.Name, func(args []any, _ map[string]any) (any, error) {
		return args[0].(float64) * 20, nil
	})
	v, err = ev.Translate(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 80.0 {
		t.Errorf("expected the backend-specific implementation, got %v", v)
	}
}

func TestCompileBlock(t *testing.T) {
	x, y := expr.NewReal("x"), expr.NewReal("y")
	total, cosine := expr.NewReal("total"), expr.NewReal("cosine")
	b, err := expr.NewBlock("", []expr.Node{x, y}, []expr.Node{total, cosine}, []*expr.Assign{
		expr.Let(total, x.Add(y)),
		expr.Let(cosine, expr.Cos.Call(total)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := eval.Translate(b, std.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := v.(*eval.Compiled)
	if !ok {
		t.Fatalf("expected *eval.Compiled, got %T", v)
	}
	if fn.Source != b.String() {
		t.Errorf("expected source:\n%s\ngot:\n%s", b.String(), fn.Source)
	}
	if fn.Block != b {
		t.Error("expected the compiled function to keep its block")
	}

	out, err := fn.Call(2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, ok := out.([]any)
	if !ok || len(res) != 2 {
		t.Fatalf("expected two results, got %#v", out)
	}
	if res[0] != 5.0 {
		t.Errorf("expected 5, got %v", res[0])
	}
	if res[1] != math.Cos(5) {
		t.Errorf("expected %v, got %v", math.Cos(5), res[1])
	}

	if _, err := fn.Call(1); err == nil {
		t.Error("expected error for a missing argument")
	}
}

func TestCompileSingleOutputBlock(t *testing.T) {
	x, half := expr.NewReal("x"), expr.NewReal("half")
	b, err := expr.NewBlock("halve", []expr.Node{x}, []expr.Node{half}, []*expr.Assign{
		expr.Let(half, x.Div(2)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := eval.Translate(b, std.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := v.(*eval.Compiled).Call(9.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != 4.5 {
		t.Errorf("expected 4.5, got %v", out)
	}

	_, err = v.(*eval.Compiled).Call(0.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCompiledStepFailure(t *testing.T) {
	x, r := expr.NewReal("x"), expr.NewReal("r")
	b, err := expr.NewBlock("inv", []expr.Node{x}, []expr.Node{r}, []*expr.Assign{
		expr.Let(r, x.RDiv(1)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := eval.Translate(b, std.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = v.(*eval.Compiled).Call(0.0)
	var ce *eval.CallError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CallError, got %v", err)
	}
}

func TestCallEnvBindsAssignments(t *testing.T) {
	x, y := expr.NewReal("x"), expr.NewReal("y")
	b, err := expr.NewBlock("double", []expr.Node{x}, []expr.Node{y}, []*expr.Assign{expr.Let(y, x.Mul(2))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := eval.Translate(b, std.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := v.(*eval.Compiled)

	values := map[string]any{"x": 3.0, "other": "kept"}
	out, err := c.CallEnv(eval.NewEnv(values))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != 6.0 {
		t.Errorf("expected 6, got %v", out)
	}
	if values["y"] != 6.0 || values["other"] != "kept" {
		t.Errorf("expected y bound next to the existing values, got %v", values)
	}

	if _, err := c.CallEnv(eval.NewEnv(nil)); err == nil || !strings.Contains(err.Error(), "input x is not bound") {
		t.Errorf("expected an unbound input error, got %v", err)
	}
}
