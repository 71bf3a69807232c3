// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultBlockName names blocks built without an explicit name.
const DefaultBlockName = "symbolite_block"

// Assign binds the value of rhs to a free leaf.
type Assign struct {
	lhs *Leaf
	rhs Node
}

// NewAssign builds lhs = rhs. The left-hand side must be a free leaf.
func NewAssign(lhs Node, rhs any) (*Assign, error) {
	l, ok := AsLeaf(lhs)
	if !ok || !l.IsFree() {
		return nil, errors.Errorf("assignment target %s is not a free leaf", lhs)
	}
	return &Assign{lhs: l, rhs: From(rhs)}, nil
}

// Let is NewAssign for targets known to be free leaves; it panics otherwise.
func Let(lhs Node, rhs any) *Assign {
	a, err := NewAssign(lhs, rhs)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Assign) Lhs() *Leaf     { return a.lhs }
func (a *Assign) Rhs() Node      { return a.rhs }
func (a *Assign) Key() string    { return "assign(" + a.lhs.Key() + "=" + a.rhs.Key() + ")" }
func (a *Assign) String() string { return a.lhs.name + " = " + a.rhs.String() }
func (*Assign) isNode()          {}

// ValidationError reports a block referring to a value before it exists.
type ValidationError struct {
	// Line is the 1-based line of the offending assignment, or 0 for an output.
	Line   int
	Value  string
	Output bool
}

func (e *ValidationError) Error() string {
	if e.Output {
		return fmt.Sprintf("block output value '%s' must be provided as an input or defined in the block body", e.Value)
	}
	return fmt.Sprintf("block line %d: value '%s' must be provided as an input or defined in a previous line", e.Line, e.Value)
}

// Block is a named, ordered sequence of assignments with declared inputs
// and outputs. Every block is validated when built.
type Block struct {
	name    string
	inputs  []*Leaf
	outputs []*Leaf
	lines   []*Assign
}

// NewBlock validates and builds a block. Each line may only read inputs
// and the targets of earlier lines, and each output must be an input or a
// line target. An empty name selects DefaultBlockName.
func NewBlock(name string, inputs, outputs []Node, lines []*Assign) (*Block, error) {
	ins, err := freeLeaves("input", inputs)
	if err != nil {
		return nil, err
	}
	outs, err := freeLeaves("output", outputs)
	if err != nil {
		return nil, err
	}
	return newBlock(name, ins, outs, lines)
}

func newBlock(name string, inputs, outputs []*Leaf, lines []*Assign) (*Block, error) {
	if name == "" {
		name = DefaultBlockName
	}
	defined := make(map[string]bool)
	for _, l := range inputs {
		defined[l.name] = true
	}
	for i, a := range lines {
		for _, l := range FreeSymbols(a.rhs) {
			if !defined[l.name] {
				return nil, &ValidationError{Line: i + 1, Value: l.name}
			}
		}
		defined[a.lhs.name] = true
	}
	for _, l := range outputs {
		if !defined[l.name] {
			return nil, &ValidationError{Value: l.name, Output: true}
		}
	}
	return &Block{
		name:    name,
		inputs:  append([]*Leaf(nil), inputs...),
		outputs: append([]*Leaf(nil), outputs...),
		lines:   append([]*Assign(nil), lines...),
	}, nil
}

func freeLeaves(role string, ns []Node) ([]*Leaf, error) {
	out := make([]*Leaf, len(ns))
	for i, n := range ns {
		l, ok := AsLeaf(n)
		if !ok || !l.IsFree() {
			return nil, errors.Errorf("block %s %s is not a free leaf", role, n)
		}
		out[i] = l
	}
	return out, nil
}

func (b *Block) Name() string      { return b.name }
func (b *Block) Inputs() []*Leaf   { return append([]*Leaf(nil), b.inputs...) }
func (b *Block) Outputs() []*Leaf  { return append([]*Leaf(nil), b.outputs...) }
func (b *Block) Lines() []*Assign  { return append([]*Assign(nil), b.lines...) }
func (*Block) isNode()             {}

func (b *Block) Key() string {
	var sb strings.Builder
	sb.WriteString("block:")
	sb.WriteString(strconv.Quote(b.name))
	sb.WriteByte('(')
	for _, l := range b.inputs {
		sb.WriteString(l.Key())
		sb.WriteByte(',')
	}
	sb.WriteString(")[")
	for _, a := range b.lines {
		sb.WriteString(a.Key())
		sb.WriteByte(';')
	}
	sb.WriteString("](")
	for _, l := range b.outputs {
		sb.WriteString(l.Key())
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

func (b *Block) String() string {
	body := make([]string, len(b.lines))
	for i, a := range b.lines {
		body[i] = a.String()
	}
	return RenderBlock(b.name, b.inputs, b.outputs, body)
}

// Substitute applies m to the right-hand sides of the block. Inputs,
// outputs and targets follow the mapping only when it maps them onto free
// leaves. The result is validated again.
func (b *Block) Substitute(m *Mapping) (*Block, error) {
	out, _, err := b.substitute(m)
	return out, err
}

// substitute returns b itself when nothing was rewritten.
func (b *Block) substitute(m *Mapping) (*Block, bool, error) {
	changed := false
	rename := func(l *Leaf) *Leaf {
		if r, ok := m.Get(l); ok {
			if rl, ok := AsLeaf(r); ok && rl.IsFree() && rl.Key() != l.Key() {
				changed = true
				return rl
			}
		}
		return l
	}
	ins := make([]*Leaf, len(b.inputs))
	for i, l := range b.inputs {
		ins[i] = rename(l)
	}
	outs := make([]*Leaf, len(b.outputs))
	for i, l := range b.outputs {
		outs[i] = rename(l)
	}
	lines := make([]*Assign, len(b.lines))
	for i, a := range b.lines {
		rhs, c := substitute(a.rhs, m)
		changed = changed || c
		lines[i] = &Assign{lhs: rename(a.lhs), rhs: rhs}
	}
	if !changed {
		return b, false, nil
	}
	nb, err := newBlock(b.name, ins, outs, lines)
	if err != nil {
		return b, false, err
	}
	return nb, true, nil
}

// TypeAnnotation renders the annotation of a leaf kind ("real.Real").
func TypeAnnotation(k Kind) string {
	return k.String() + "." + k.ClassName()
}

// RenderBlock lays out a block as a function definition whose body is the
// already-rendered lines:
//
//	def name(x: real.Real, y: real.Real) -> tuple[real.Real, real.Real]:
//	    total = x + y
//	    return total, y
func RenderBlock(name string, inputs, outputs []*Leaf, body []string) string {
	params := make([]string, len(inputs))
	for i, l := range inputs {
		params[i] = l.name + ": " + TypeAnnotation(l.kind)
	}
	var ret, result string
	switch len(outputs) {
	case 0:
		ret, result = "None", "None"
	case 1:
		ret, result = TypeAnnotation(outputs[0].kind), outputs[0].name
	default:
		types := make([]string, len(outputs))
		names := make([]string, len(outputs))
		for i, l := range outputs {
			types[i] = TypeAnnotation(l.kind)
			names[i] = l.name
		}
		ret = "tuple[" + strings.Join(types, ", ") + "]"
		result = strings.Join(names, ", ")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "def %s(%s) -> %s:\n", name, strings.Join(params, ", "), ret)
	for _, line := range body {
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString("    return ")
	sb.WriteString(result)
	return sb.String()
}
