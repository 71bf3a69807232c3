// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides a streaming lexer for rendered symbolite source.
package scanner

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/dyscolab/symbolite/internal/token"
)

// Scanner tokenizes source rune-by-rune.
type Scanner struct {
	reader *bufio.Reader
	buf    strings.Builder
	peeked *Item
	line   int // Current line number (1-based)
	col    int // Column of the last rune read (1-based)
	prev   int // Column before the last newline, for UnreadRune
	depth  int // Bracket nesting; newlines inside brackets are skipped
}

// Item represents a scanned token with its value.
type Item struct {
	Token token.Token
	Value string
	Line  int // Line number where this token started
	Col   int
}

func (i *Item) String() string {
	if i.Token == token.EOF || i.Token == token.NEWLINE {
		return i.Token.String()
	}
	return fmt.Sprintf("%s %q", i.Token, i.Value)
}

// Is reports whether the item is the operator op.
func (i *Item) Is(op string) bool {
	return i.Token == token.OP && i.Value == op
}

// Error is a lexical error at a source position.
type Error struct {
	Line, Col int
	Msg       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// New creates a new Scanner from an io.Reader.
func New(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReader(r),
		line:   1,
	}
}

// NewFromString creates a new Scanner from a string.
func NewFromString(s string) *Scanner {
	return New(strings.NewReader(s))
}

// Line returns the current line number (1-based).
func (s *Scanner) Line() int {
	return s.line
}

// Peek returns the next item without consuming it.
func (s *Scanner) Peek() (*Item, error) {
	if s.peeked != nil {
		return s.peeked, nil
	}
	item, err := s.Next()
	if err != nil {
		return nil, err
	}
	s.peeked = item
	return item, nil
}

// All scans the remaining input.
func (s *Scanner) All() ([]*Item, error) {
	var items []*Item
	for {
		item, err := s.Next()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if item.Token == token.EOF {
			return items, nil
		}
	}
}

func (s *Scanner) read() (rune, error) {
	r, _, err := s.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	if r == '\n' {
		s.line++
		s.prev, s.col = s.col, 0
	} else {
		s.col++
	}
	return r, nil
}

func (s *Scanner) unread(r rune) {
	s.reader.UnreadRune()
	if r == '\n' {
		s.line--
		s.col = s.prev
	} else {
		s.col--
	}
}

// Next returns the next token from the input.
func (s *Scanner) Next() (*Item, error) {
	if s.peeked != nil {
		item := s.peeked
		s.peeked = nil
		return item, nil
	}

	for {
		r, err := s.read()
		if err == io.EOF {
			return &Item{Token: token.EOF, Line: s.line, Col: s.col + 1}, nil
		}
		if err != nil {
			return nil, err
		}
		line, col := s.line, s.col

		switch {
		case r == '\n':
			if s.depth > 0 {
				continue
			}
			return &Item{Token: token.NEWLINE, Value: "\n", Line: line - 1, Col: s.prev}, nil
		case unicode.IsSpace(r):
			continue
		case r == '#':
			text, err := s.readWhile(func(r rune) bool { return r != '\n' })
			if err != nil {
				return nil, err
			}
			return &Item{Token: token.COMMENT, Value: strings.TrimSpace(text), Line: line, Col: col}, nil
		case r == '\'' || r == '"':
			text, err := s.readString(r, line, col)
			if err != nil {
				return nil, err
			}
			return &Item{Token: token.STRING, Value: text, Line: line, Col: col}, nil
		case unicode.IsDigit(r):
			s.unread(r)
			return s.readNumber(line, col)
		case isIdentStart(r):
			s.unread(r)
			name, err := s.readWhile(isIdentChar)
			if err != nil {
				return nil, err
			}
			return &Item{Token: token.IDENT, Value: name, Line: line, Col: col}, nil
		case token.IsOperatorStart(r):
			op, err := s.readOperator(r)
			if err != nil {
				return nil, err
			}
			if token.IsOpen(op) {
				s.depth++
			} else if token.IsClose(op) && s.depth > 0 {
				s.depth--
			}
			return &Item{Token: token.OP, Value: op, Line: line, Col: col}, nil
		}
		return nil, &Error{Line: line, Col: col, Msg: fmt.Sprintf("unexpected character %q", r)}
	}
}

func (s *Scanner) readWhile(ok func(rune) bool) (string, error) {
	s.buf.Reset()
	for {
		r, err := s.read()
		if err == io.EOF {
			return s.buf.String(), nil
		}
		if err != nil {
			return "", err
		}
		if !ok(r) {
			s.unread(r)
			return s.buf.String(), nil
		}
		s.buf.WriteRune(r)
	}
}

func (s *Scanner) readOperator(first rune) (string, error) {
	r, err := s.read()
	if err == io.EOF {
		return string(first), nil
	}
	if err != nil {
		return "", err
	}
	pair := string([]rune{first, r})
	for _, op := range token.Operators {
		if op == pair {
			return pair, nil
		}
	}
	s.unread(r)
	if first == '!' {
		return "", &Error{Line: s.line, Col: s.col, Msg: "unexpected character '!'"}
	}
	return string(first), nil
}

// readNumber scans digits with an optional fraction and exponent.
func (s *Scanner) readNumber(line, col int) (*Item, error) {
	s.buf.Reset()
	tok := token.INT
	digits := func() error {
		for {
			r, err := s.read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if !unicode.IsDigit(r) && r != '_' {
				s.unread(r)
				return nil
			}
			if r != '_' {
				s.buf.WriteRune(r)
			}
		}
	}
	optional := func(set string) (bool, error) {
		r, err := s.read()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if !strings.ContainsRune(set, r) {
			s.unread(r)
			return false, nil
		}
		s.buf.WriteRune(r)
		return true, nil
	}

	if err := digits(); err != nil {
		return nil, err
	}
	if ok, err := optional("."); err != nil {
		return nil, err
	} else if ok {
		tok = token.FLOAT
		if err := digits(); err != nil {
			return nil, err
		}
	}
	if ok, err := optional("eE"); err != nil {
		return nil, err
	} else if ok {
		tok = token.FLOAT
		if _, err := optional("+-"); err != nil {
			return nil, err
		}
		n := s.buf.Len()
		if err := digits(); err != nil {
			return nil, err
		}
		if s.buf.Len() == n {
			return nil, &Error{Line: line, Col: col, Msg: "malformed exponent in " + s.buf.String()}
		}
	}
	return &Item{Token: tok, Value: s.buf.String(), Line: line, Col: col}, nil
}

// readString scans a quoted string after its opening quote, resolving
// backslash escapes.
func (s *Scanner) readString(quote rune, line, col int) (string, error) {
	s.buf.Reset()
	for {
		r, err := s.read()
		if err == io.EOF || r == '\n' {
			return "", &Error{Line: line, Col: col, Msg: "unterminated string"}
		}
		if err != nil {
			return "", err
		}
		switch r {
		case quote:
			return s.buf.String(), nil
		case '\\':
			e, err := s.read()
			if err != nil {
				return "", &Error{Line: line, Col: col, Msg: "unterminated string"}
			}
			switch e {
			case 'n':
				s.buf.WriteRune('\n')
			case 't':
				s.buf.WriteRune('\t')
			default:
				s.buf.WriteRune(e)
			}
		default:
			s.buf.WriteRune(r)
		}
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

// isIdentChar returns true if the rune is valid in an identifier (letter, digit, underscore).
func isIdentChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
