package expr

import (
	"math"
	"testing"
)

func TestJSONNamespaceRoundTrip(t *testing.T) {
	ns := newNamespaceX()
	ns.Bind("k", Tuple{Lit{V: 1.5}, Lit{V: "s"}, Lit{V: true}, Lit{}})
	ns.Bind("v", NewVector("v").Index(2))
	ns.Bind("inf", Lit{V: math.Inf(1)})

	data, err := Marshal(ns)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !Equal(got, ns) {
		t.Errorf("expected round trip to be equal:\n%s\ngot:\n%s", ns.Key(), got.Key())
	}
	if got.String() != ns.String() {
		t.Errorf("expected same rendering, got:\n%s", got.String())
	}
}

func TestJSONUserFunctionAndBlock(t *testing.T) {
	f := NewUserFunction("json_f", 1, KindReal)
	x, w := NewReal("x"), NewReal("w")
	b, err := NewBlock("g", []Node{x}, []Node{w}, []*Assign{Let(w, f.Call(x))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	gb, ok := got.(*Block)
	if !ok {
		t.Fatalf("expected *Block, got %T", got)
	}
	if !Equal(gb, b) {
		t.Errorf("expected equal blocks, got %s", gb)
	}
	e := gb.Lines()[0].Rhs().(Real).Expression()
	if e.Func() != Callable(f) {
		t.Error("expected the declared user function to be reused")
	}
}

func TestJSONErrors(t *testing.T) {
	if _, err := Marshal(Lit{V: struct{}{}}); err == nil {
		t.Error("expected error encoding an opaque literal")
	}
	if _, err := Unmarshal([]byte(`{"type":"func","namespace":"real","name":"nope"}`)); err == nil {
		t.Error("expected error decoding an unknown callable")
	}
	if _, err := Unmarshal([]byte(`{"type":"mystery"}`)); err == nil {
		t.Error("expected error decoding an unknown node type")
	}
	if _, err := Unmarshal([]byte(`not json`)); err == nil {
		t.Error("expected error decoding invalid JSON")
	}
}
