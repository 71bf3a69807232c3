// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines the token types of rendered symbolite source.
package token

// Token represents a token type.
type Token int

const (
	EOF Token = iota
	NEWLINE
	COMMENT
	IDENT
	INT
	FLOAT
	STRING
	OP // operator or punctuation; the item value holds the text
)

// Operators lists every operator and punctuation mark, longest first so
// that a prefix scan picks the longest match.
var Operators = []string{
	"**", "//", "<<", ">>", "<=", ">=", "==", "!=", "->",
	"+", "-", "*", "/", "%", "@", "&", "|", "^", "~", "<", ">", "=",
	"(", ")", "[", "]", "{", "}", ",", ".", ":",
}

// IsOperatorStart returns true if r can begin an operator.
func IsOperatorStart(r rune) bool {
	for _, op := range Operators {
		if rune(op[0]) == r {
			return true
		}
	}
	return false
}

// IsOpen returns true for the brackets that suspend NEWLINE tokens.
func IsOpen(op string) bool { return op == "(" || op == "[" || op == "{" }

// IsClose returns true for the closing brackets.
func IsClose(op string) bool { return op == ")" || op == "]" || op == "}" }

// String returns the string representation of a token.
func (t Token) String() string {
	switch t {
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case COMMENT:
		return "COMMENT"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case OP:
		return "OP"
	}
	return "UNKNOWN"
}

// IsLiteral returns true for number and string tokens.
func (t Token) IsLiteral() bool {
	switch t {
	case INT, FLOAT, STRING:
		return true
	}
	return false
}
