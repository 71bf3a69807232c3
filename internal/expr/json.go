package expr

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// wire is the JSON form of a node. Type selects which fields are used.
type wire struct {
	Type      string     `json:"type"`
	Lit       string     `json:"lit,omitempty"`
	Value     string     `json:"value,omitempty"`
	Name      string     `json:"name,omitempty"`
	Namespace string     `json:"namespace,omitempty"`
	Kind      string     `json:"kind,omitempty"`
	Anonymous bool       `json:"anonymous,omitempty"`
	Arity     int        `json:"arity,omitempty"`
	Expr      *wire      `json:"expr,omitempty"`
	Func      *wire      `json:"func,omitempty"`
	Args      []*wire    `json:"args,omitempty"`
	Kwargs    []wireAttr `json:"kwargs,omitempty"`
	Items     []*wire    `json:"items,omitempty"`
	Attrs     []wireAttr `json:"attrs,omitempty"`
	Inputs    []*wire    `json:"inputs,omitempty"`
	Outputs   []*wire    `json:"outputs,omitempty"`
	Lines     []*wire    `json:"lines,omitempty"`
	Lhs       *wire      `json:"lhs,omitempty"`
	Rhs       *wire      `json:"rhs,omitempty"`
}

type wireAttr struct {
	Name  string `json:"name"`
	Value *wire  `json:"value"`
}

// Marshal encodes a node as JSON.
func Marshal(n Node) ([]byte, error) {
	w, err := toWire(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Unmarshal decodes a node encoded by Marshal. Catalog callables are
// resolved by qualified name and user functions through DefaultRegistry;
// unknown user functions are declared without implementations.
func Unmarshal(data []byte) (Node, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "decoding expression")
	}
	return fromWire(&w)
}

func toWire(n Node) (*wire, error) {
	if l, ok := AsLeaf(n); ok {
		w := &wire{Type: "leaf", Name: l.name, Namespace: l.namespace, Kind: l.kind.String(), Anonymous: l.anonymous}
		if l.expr != nil {
			e, err := toWire(l.expr)
			if err != nil {
				return nil, err
			}
			w.Expr = e
		}
		return w, nil
	}
	switch x := n.(type) {
	case Lit:
		return litWire(x.V)
	case Ref:
		return &wire{Type: "ref", Value: string(x)}, nil
	case Tuple:
		items, err := toWires(x)
		return &wire{Type: "tuple", Items: items}, err
	case List:
		items, err := toWires(x)
		return &wire{Type: "list", Items: items}, err
	case Dict:
		w := &wire{Type: "dict"}
		for _, it := range x {
			v, err := toWire(it.Value)
			if err != nil {
				return nil, err
			}
			w.Attrs = append(w.Attrs, wireAttr{Name: it.Key, Value: v})
		}
		return w, nil
	case *Function:
		return &wire{Type: "func", Name: x.name, Namespace: x.namespace}, nil
	case *Operator:
		return &wire{Type: "op", Name: x.name, Namespace: x.namespace}, nil
	case *UserFunction:
		return &wire{Type: "user", Name: x.name, Arity: x.arity, Kind: x.result.String()}, nil
	case *Expression:
		fn, err := toWire(x.fn)
		if err != nil {
			return nil, err
		}
		args, err := toWires(x.args)
		if err != nil {
			return nil, err
		}
		w := &wire{Type: "expr", Func: fn, Args: args}
		for _, kw := range x.kwargs {
			v, err := toWire(kw.Value)
			if err != nil {
				return nil, err
			}
			w.Kwargs = append(w.Kwargs, wireAttr{Name: kw.Name, Value: v})
		}
		return w, nil
	case *Namespace:
		w := &wire{Type: "ns", Name: x.name}
		for _, a := range x.attrs {
			v, err := toWire(a.Value)
			if err != nil {
				return nil, err
			}
			w.Attrs = append(w.Attrs, wireAttr{Name: a.Name, Value: v})
		}
		return w, nil
	case *Assign:
		lhs, err := toWire(x.lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := toWire(x.rhs)
		if err != nil {
			return nil, err
		}
		return &wire{Type: "assign", Lhs: lhs, Rhs: rhs}, nil
	case *Block:
		w := &wire{Type: "block", Name: x.name}
		var err error
		if w.Inputs, err = leafWires(x.inputs); err != nil {
			return nil, err
		}
		if w.Outputs, err = leafWires(x.outputs); err != nil {
			return nil, err
		}
		for _, a := range x.lines {
			lw, err := toWire(a)
			if err != nil {
				return nil, err
			}
			w.Lines = append(w.Lines, lw)
		}
		return w, nil
	}
	return nil, errors.Errorf("cannot encode %T", n)
}

func litWire(v any) (*wire, error) {
	switch x := v.(type) {
	case nil:
		return &wire{Type: "lit", Lit: "none"}, nil
	case bool:
		return &wire{Type: "lit", Lit: "bool", Value: strconv.FormatBool(x)}, nil
	case int64:
		return &wire{Type: "lit", Lit: "int", Value: strconv.FormatInt(x, 10)}, nil
	case float64:
		return &wire{Type: "lit", Lit: "float", Value: strconv.FormatFloat(x, 'g', -1, 64)}, nil
	case string:
		return &wire{Type: "lit", Lit: "string", Value: x}, nil
	}
	return nil, errors.Errorf("cannot encode literal of type %T", v)
}

func toWires(ns []Node) ([]*wire, error) {
	out := make([]*wire, len(ns))
	for i, n := range ns {
		w, err := toWire(n)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func leafWires(ls []*Leaf) ([]*wire, error) {
	out := make([]*wire, len(ls))
	for i, l := range ls {
		w, err := toWire(l)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func fromWire(w *wire) (Node, error) {
	if w == nil {
		return nil, errors.New("missing node")
	}
	switch w.Type {
	case "lit":
		return litFromWire(w)
	case "ref":
		return Ref(w.Value), nil
	case "tuple", "list":
		items, err := fromWires(w.Items)
		if err != nil {
			return nil, err
		}
		if w.Type == "tuple" {
			return Tuple(items), nil
		}
		return List(items), nil
	case "dict":
		d := make(Dict, len(w.Attrs))
		for i, a := range w.Attrs {
			v, err := fromWire(a.Value)
			if err != nil {
				return nil, err
			}
			d[i] = Item{Key: a.Name, Value: v}
		}
		return d, nil
	case "leaf":
		return leafFromWire(w)
	case "func", "op":
		c, ok := LookupCallable(w.Namespace, w.Name)
		if !ok {
			return nil, errors.Errorf("unknown callable %s.%s", w.Namespace, w.Name)
		}
		return c, nil
	case "user":
		k, ok := ParseKind(w.Kind)
		if !ok {
			return nil, errors.Errorf("unknown kind %q for user function %s", w.Kind, w.Name)
		}
		if fn, ok := DefaultRegistry.Function(w.Name); ok && fn.arity == w.Arity && fn.result == k {
			return fn, nil
		}
		return NewUserFunction(w.Name, w.Arity, k), nil
	case "expr":
		fn, err := fromWire(w.Func)
		if err != nil {
			return nil, err
		}
		c, ok := fn.(Callable)
		if !ok {
			return nil, errors.Errorf("expression head %s is not callable", fn)
		}
		args, err := fromWires(w.Args)
		if err != nil {
			return nil, err
		}
		var kwargs []KwArg
		for _, a := range w.Kwargs {
			v, err := fromWire(a.Value)
			if err != nil {
				return nil, err
			}
			kwargs = append(kwargs, KwArg{Name: a.Name, Value: v})
		}
		return NewExpression(c, args, kwargs), nil
	case "ns":
		ns := NewNamespace(w.Name)
		for _, a := range w.Attrs {
			v, err := fromWire(a.Value)
			if err != nil {
				return nil, err
			}
			ns.set(a.Name, v)
		}
		return ns, nil
	case "assign":
		lhs, err := fromWire(w.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := fromWire(w.Rhs)
		if err != nil {
			return nil, err
		}
		return NewAssign(lhs, rhs)
	case "block":
		ins, err := fromWires(w.Inputs)
		if err != nil {
			return nil, err
		}
		outs, err := fromWires(w.Outputs)
		if err != nil {
			return nil, err
		}
		lines := make([]*Assign, len(w.Lines))
		for i, lw := range w.Lines {
			n, err := fromWire(lw)
			if err != nil {
				return nil, err
			}
			a, ok := n.(*Assign)
			if !ok {
				return nil, errors.Errorf("block line %d is not an assignment", i+1)
			}
			lines[i] = a
		}
		return NewBlock(w.Name, ins, outs, lines)
	}
	return nil, errors.Errorf("unknown node type %q", w.Type)
}

func litFromWire(w *wire) (Node, error) {
	switch w.Lit {
	case "none":
		return Lit{}, nil
	case "bool":
		b, err := strconv.ParseBool(w.Value)
		return Lit{V: b}, errors.Wrap(err, "decoding bool literal")
	case "int":
		i, err := strconv.ParseInt(w.Value, 10, 64)
		return Lit{V: i}, errors.Wrap(err, "decoding int literal")
	case "float":
		f, err := strconv.ParseFloat(w.Value, 64)
		return Lit{V: f}, errors.Wrap(err, "decoding float literal")
	case "string":
		return Lit{V: w.Value}, nil
	}
	return nil, errors.Errorf("unknown literal type %q", w.Lit)
}

func leafFromWire(w *wire) (Node, error) {
	k, ok := ParseKind(w.Kind)
	if !ok {
		return nil, errors.Errorf("unknown kind %q", w.Kind)
	}
	l := &Leaf{name: w.Name, namespace: w.Namespace, kind: k, anonymous: w.Anonymous}
	if w.Expr != nil {
		n, err := fromWire(w.Expr)
		if err != nil {
			return nil, err
		}
		e, ok := n.(*Expression)
		if !ok {
			return nil, errors.Errorf("derived leaf holds %T, not an expression", n)
		}
		l.expr = e
	}
	return Wrap(l), nil
}

func fromWires(ws []*wire) ([]Node, error) {
	out := make([]Node, len(ws))
	for i, w := range ws {
		n, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
