package symbolite

import (
	"github.com/dyscolab/symbolite/internal/backend/code"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
	"github.com/dyscolab/symbolite/internal/parse"
)

// Expression types.
type (
	Node         = expr.Node
	Leaf         = expr.Leaf
	Kind         = expr.Kind
	Symbol       = expr.Symbol
	Real         = expr.Real
	Vector       = expr.Vector
	Boolean      = expr.Boolean
	Namespace    = expr.Namespace
	Block        = expr.Block
	Assign       = expr.Assign
	Mapping      = expr.Mapping
	Lit          = expr.Lit
	Tuple        = expr.Tuple
	List         = expr.List
	Dict         = expr.Dict
	Function     = expr.Function
	UserFunction = expr.UserFunction
	Registry     = expr.Registry
	Compiled     = eval.Compiled
)

// Leaf kinds.
const (
	KindSymbol  = expr.KindSymbol
	KindReal    = expr.KindReal
	KindVector  = expr.KindVector
	KindBoolean = expr.KindBoolean
)

// Constructors and tree operations.
var (
	NewSymbol       = expr.NewSymbol
	NewReal         = expr.NewReal
	NewVector       = expr.NewVector
	NewBoolean      = expr.NewBoolean
	NewNamespace    = expr.NewNamespace
	NewBlock        = expr.NewBlock
	Let             = expr.Let
	NewMapping      = expr.NewMapping
	NewUserFunction = expr.NewUserFunction
	FromFunction    = expr.FromFunction
	RealFunction    = expr.RealFunction
	Equal           = expr.Equal
	Substitute      = expr.Substitute
	BindNames       = expr.BindNames
	FreeSymbols     = expr.FreeSymbols
	Vectorize       = expr.Vectorize
	AutoVectorize   = expr.AutoVectorize
	Marshal         = expr.Marshal
	Unmarshal       = expr.Unmarshal
)

// Catalog constants.
var (
	Pi  = expr.Pi
	E   = expr.E
	Tau = expr.Tau
	Inf = expr.Inf
	NaN = expr.NaN
)

// Evaluation and rendering.
var (
	Translate = eval.Translate
	Evaluate  = eval.Evaluate
	AsCode    = code.AsCode
)

// ParseExpr parses a single expression against scope.
func ParseExpr(src string, scope map[string]Node) (Node, error) {
	return parse.Expr(src, scope)
}

// ParseNamespace parses namespace source.
func ParseNamespace(src string) (*Namespace, error) {
	return parse.Namespace(src)
}

// ParseBlock parses a "def" block.
func ParseBlock(src string) (*Block, error) {
	return parse.Block(src)
}
