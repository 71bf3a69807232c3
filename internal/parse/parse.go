// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package parse reads rendered source back into expression trees: single
// expressions, "# name" namespaces and "def" blocks, in the layout the
// code backend emits.
package parse

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/expr"
	"github.com/dyscolab/symbolite/internal/scanner"
	"github.com/dyscolab/symbolite/internal/token"
)

// Error is a syntax or resolution error at a source position.
type Error struct {
	Line, Col int
	Msg       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Option configures a parse.
type Option func(*parser)

// WithRegistry resolves user functions in r instead of expr.DefaultRegistry.
func WithRegistry(r *expr.Registry) Option {
	return func(p *parser) { p.registry = r }
}

// DefaultName names a namespace whose source has no "# name" header.
const DefaultName = "namespace"

type parser struct {
	items    []*scanner.Item
	pos      int
	header   string
	scope    map[string]expr.Node
	registry *expr.Registry
}

func newParser(src string, opts []Option) (*parser, error) {
	all, err := scanner.NewFromString(src).All()
	if err != nil {
		var se *scanner.Error
		if errors.As(err, &se) {
			return nil, &Error{Line: se.Line, Col: se.Col, Msg: se.Msg}
		}
		return nil, err
	}
	p := &parser{scope: map[string]expr.Node{}, registry: expr.DefaultRegistry}
	for i, it := range all {
		if it.Token == token.COMMENT {
			if i == 0 {
				p.header = it.Value
			}
			continue
		}
		p.items = append(p.items, it)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Scope returns the attributes of ns keyed by name, for use with Expr.
func Scope(ns *expr.Namespace) map[string]expr.Node {
	scope := make(map[string]expr.Node, ns.Len())
	for _, a := range ns.Attrs() {
		scope[a.Name] = a.Value
	}
	return scope
}

// Expr parses a single expression. Identifiers resolve against scope;
// anything else must name a catalog entry, a literal or a registered user
// function.
func Expr(src string, scope map[string]expr.Node, opts ...Option) (expr.Node, error) {
	p, err := newParser(src, opts)
	if err != nil {
		return nil, err
	}
	for k, v := range scope {
		p.scope[k] = v
	}
	p.skipNewlines()
	n, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if err := p.expect(token.EOF, ""); err != nil {
		return nil, err
	}
	return n, nil
}

// Namespace parses a namespace: an optional "# name" header followed by
// one "name = expression" statement per line. Declarations such as
// "x = Real()" bind free leaves.
func Namespace(src string, opts ...Option) (*expr.Namespace, error) {
	p, err := newParser(src, opts)
	if err != nil {
		return nil, err
	}
	name := p.header
	if name == "" {
		name = DefaultName
	}
	ns := expr.NewNamespace(name)
	for {
		p.skipNewlines()
		if p.peek().Token == token.EOF {
			return ns, nil
		}
		attr, rhs, err := p.assignment()
		if err != nil {
			return nil, err
		}
		p.scope[attr] = ns.Bind(attr, rhs)
	}
}

func (p *parser) assignment() (string, expr.Node, error) {
	lhs := p.next()
	if lhs.Token != token.IDENT {
		return "", nil, p.errorf(lhs, "expected a name, got %s", lhs)
	}
	if err := p.expect(token.OP, "="); err != nil {
		return "", nil, err
	}
	rhs, err := p.expression()
	if err != nil {
		return "", nil, err
	}
	if err := p.endOfStatement(); err != nil {
		return "", nil, err
	}
	return lhs.Value, rhs, nil
}

func (p *parser) endOfStatement() error {
	it := p.peek()
	if it.Token == token.EOF {
		return nil
	}
	if it.Token != token.NEWLINE {
		return p.errorf(it, "expected end of line, got %s", it)
	}
	p.pos++
	return nil
}

func (p *parser) peek() *scanner.Item { return p.items[p.pos] }

func (p *parser) peekAt(offset int) *scanner.Item {
	if i := p.pos + offset; i < len(p.items) {
		return p.items[i]
	}
	return p.items[len(p.items)-1]
}

func (p *parser) next() *scanner.Item {
	it := p.items[p.pos]
	if it.Token != token.EOF {
		p.pos++
	}
	return it
}

// accept consumes the operator op if it is next.
func (p *parser) accept(op string) bool {
	if p.peek().Is(op) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(tok token.Token, value string) error {
	it := p.next()
	if it.Token != tok || (value != "" && it.Value != value) {
		want := tok.String()
		if value != "" {
			want = strconv.Quote(value)
		}
		return p.errorf(it, "expected %s, got %s", want, it)
	}
	return nil
}

func (p *parser) skipNewlines() {
	for p.peek().Token == token.NEWLINE {
		p.pos++
	}
}

func (p *parser) errorf(at *scanner.Item, format string, args ...any) error {
	return &Error{Line: at.Line, Col: at.Col, Msg: fmt.Sprintf(format, args...)}
}
