package expr

import (
	"strings"
)

// Operator precedences, lowest binding first.
const (
	PrecCompare = -5
	PrecOr      = -4
	PrecXor     = -3
	PrecAnd     = -2
	PrecShift   = -1
	PrecAdd     = 0
	PrecMul     = 1
	PrecUnary   = 2
	PrecPow     = 3
	PrecAccess  = 5
	// PrecAtom is the precedence of names, calls and non-negative literals.
	PrecAtom = 1 << 10
)

// Operand is rendered text together with the precedence of its top-level
// operator.
type Operand struct {
	Text string
	Prec int
}

func (o Operand) String() string { return o.Text }

// OperandOf renders a node as an operand.
func OperandOf(n Node) Operand {
	return Operand{Text: n.String(), Prec: precedenceOf(n)}
}

func precedenceOf(n Node) int {
	if l, ok := AsLeaf(n); ok {
		if l.expr == nil {
			return PrecAtom
		}
		n = l.expr
	}
	switch x := n.(type) {
	case *Expression:
		if op, ok := x.fn.(*Operator); ok {
			return op.precedence
		}
	case Lit:
		return LiteralPrecedence(x.V)
	}
	return PrecAtom
}

// LiteralPrecedence is PrecUnary for negative numbers, which render with a
// leading minus sign, and PrecAtom otherwise.
func LiteralPrecedence(v any) int {
	switch x := v.(type) {
	case int64:
		if x < 0 {
			return PrecUnary
		}
	case int:
		if x < 0 {
			return PrecUnary
		}
	case float64:
		if x < 0 {
			return PrecUnary
		}
	}
	return PrecAtom
}

// NeedsParens reports whether an operand of precedence prec must be
// parenthesized under an operator of precedence outer. Right operands are
// also parenthesized at equal precedence.
func NeedsParens(outer, prec int, right bool) bool {
	if right {
		return prec <= outer
	}
	return prec < outer
}

// ApplyFormat fills each "{}" of format with the next part.
func ApplyFormat(format string, parts ...string) string {
	var sb strings.Builder
	i := 0
	for {
		j := strings.Index(format, "{}")
		if j < 0 || i >= len(parts) {
			sb.WriteString(format)
			return sb.String()
		}
		sb.WriteString(format[:j])
		sb.WriteString(parts[i])
		format = format[j+2:]
		i++
	}
}

// RenderCall renders the application of fn to already-rendered operands.
// Operators use their template with precedence-aware parentheses, functions
// with a template fill it, and everything else renders as a prefix call.
func RenderCall(fn Callable, args []Operand, kwargs []string) Operand {
	if op, ok := fn.(*Operator); ok && op.format != "" && len(args) == op.arity {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.Text
			if (i == 0 || !op.closed) && NeedsParens(op.precedence, a.Prec, i > 0) {
				parts[i] = "(" + a.Text + ")"
			}
		}
		return Operand{Text: ApplyFormat(op.format, parts...), Prec: op.precedence}
	}
	if f := fn.Format(); f != "" && len(kwargs) == 0 {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.Text
		}
		return Operand{Text: ApplyFormat(f, parts...), Prec: PrecAtom}
	}
	parts := make([]string, 0, len(args)+len(kwargs))
	for _, a := range args {
		parts = append(parts, a.Text)
	}
	parts = append(parts, kwargs...)
	return Operand{Text: fn.QualifiedName() + "(" + strings.Join(parts, ", ") + ")", Prec: PrecAtom}
}
