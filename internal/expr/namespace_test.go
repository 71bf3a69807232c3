package expr

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newNamespaceX() *Namespace {
	ns := NewNamespace("X")
	x := ns.Real("x")
	y := ns.Real("y")
	z := ns.Bind("z", x.Add(y.RMul(2))).(Real)
	ns.Bind("p", Cos.Call(z))
	return ns
}

func TestNamespaceString(t *testing.T) {
	ns := NewNamespace("X")
	x := ns.Real("x")
	y := ns.Real("y")
	ns.Bind("z", x.Add(y.RMul(2)))

	want := "# X\n\nx = Real()\ny = Real()\n\nz = x + 2 * y"
	if got := ns.String(); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestNamespaceBindOrder(t *testing.T) {
	ns := newNamespaceX()
	names := ns.Names()
	if len(names) != 4 || names[0] != "x" || names[3] != "p" {
		t.Errorf("expected [x y z p], got %v", names)
	}
	ns.Bind("x", 3)
	if names := ns.Names(); names[0] != "x" || ns.Len() != 4 {
		t.Errorf("expected rebinding to keep order, got %v", names)
	}
	v, ok := ns.Get("x")
	if !ok || !Equal(v, Lit{V: int64(3)}) {
		t.Errorf("expected x = 3, got %v", v)
	}
}

func TestNamespaceNamingMismatchWarns(t *testing.T) {
	logger, hook := test.NewNullLogger()
	SetLogger(logger)
	defer SetLogger(nil)

	ns := NewNamespace("N")
	bound := ns.Bind("a", NewReal("b"))

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a warning")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("expected warn level, got %s", entry.Level)
	}
	if entry.Data["attribute"] != "a" || entry.Data["name"] != "b" {
		t.Errorf("expected attribute a and name b, got %v", entry.Data)
	}
	l, _ := AsLeaf(bound)
	if l.Name() != "a" {
		t.Errorf("expected attribute name to win, got '%s'", l.Name())
	}

	hook.Reset()
	ns.Bind("c", NewReal("c"))
	ns.Bind("d", NewReal(""))
	ns.Bind("e", Pi)
	if len(hook.AllEntries()) != 0 {
		t.Errorf("expected no warnings, got %d", len(hook.AllEntries()))
	}
	if v, _ := ns.Get("e"); !Equal(v, Pi) {
		t.Error("expected library constant to keep its name")
	}
	if v, _ := ns.Get("d"); v.(Real).IsAnonymous() {
		t.Error("expected anonymous leaf to take the attribute name")
	}
}

func TestNamespaceSubstitute(t *testing.T) {
	ns := newNamespaceX()
	out := Substitute(ns, NewMapping().Set(NewReal("x"), 1)).(*Namespace)
	if out == ns {
		t.Fatal("expected a new namespace")
	}
	z, _ := out.Get("z")
	if z.String() != "1 + 2 * y" {
		t.Errorf("expected '1 + 2 * y', got '%s'", z.String())
	}
	orig, _ := ns.Get("z")
	if orig.String() != "x + 2 * y" {
		t.Errorf("expected original untouched, got '%s'", orig.String())
	}
}

func TestNamespaceDefinitions(t *testing.T) {
	ns := newNamespaceX()
	defs := ns.Definitions()
	if len(defs) != 2 || defs[0].Name != "z" || defs[1].Name != "p" {
		t.Errorf("expected definitions [z p], got %v", defs)
	}
	want := "# X\n\nx = Real()\ny = Real()\n\nz = x + 2 * y\np = real.cos(x + 2 * y)"
	if got := ns.String(); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}
