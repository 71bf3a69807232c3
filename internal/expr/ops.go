package expr

// Operator methods build derived leaves. Forward methods take the receiver
// as the left operand; the R-prefixed reflected methods take it as the
// right operand, so x.RSub(2) is 2 - x.

// Real operators.
func (x Real) Eq(y any) Boolean { return Boolean{RealOps.Eq.derive(x, y)} }
func (x Real) Ne(y any) Boolean { return Boolean{RealOps.Ne.derive(x, y)} }
func (x Real) Lt(y any) Boolean { return Boolean{RealOps.Lt.derive(x, y)} }
func (x Real) Le(y any) Boolean { return Boolean{RealOps.Le.derive(x, y)} }
func (x Real) Gt(y any) Boolean { return Boolean{RealOps.Gt.derive(x, y)} }
func (x Real) Ge(y any) Boolean { return Boolean{RealOps.Ge.derive(x, y)} }

func (x Real) Add(y any) Real      { return Real{RealOps.Add.derive(x, y)} }
func (x Real) Sub(y any) Real      { return Real{RealOps.Sub.derive(x, y)} }
func (x Real) Mul(y any) Real      { return Real{RealOps.Mul.derive(x, y)} }
func (x Real) MatMul(y any) Real   { return Real{RealOps.MatMul.derive(x, y)} }
func (x Real) Div(y any) Real      { return Real{RealOps.TrueDiv.derive(x, y)} }
func (x Real) FloorDiv(y any) Real { return Real{RealOps.FloorDiv.derive(x, y)} }
func (x Real) Mod(y any) Real      { return Real{RealOps.Mod.derive(x, y)} }
func (x Real) Pow(y any) Real      { return Real{RealOps.Pow.derive(x, y)} }
func (x Real) LShift(y any) Real   { return Real{RealOps.LShift.derive(x, y)} }
func (x Real) RShift(y any) Real   { return Real{RealOps.RShift.derive(x, y)} }
func (x Real) And(y any) Real      { return Real{RealOps.And.derive(x, y)} }
func (x Real) Xor(y any) Real      { return Real{RealOps.Xor.derive(x, y)} }
func (x Real) Or(y any) Real       { return Real{RealOps.Or.derive(x, y)} }

func (x Real) RAdd(y any) Real      { return Real{RealOps.Add.derive(y, x)} }
func (x Real) RSub(y any) Real      { return Real{RealOps.Sub.derive(y, x)} }
func (x Real) RMul(y any) Real      { return Real{RealOps.Mul.derive(y, x)} }
func (x Real) RMatMul(y any) Real   { return Real{RealOps.MatMul.derive(y, x)} }
func (x Real) RDiv(y any) Real      { return Real{RealOps.TrueDiv.derive(y, x)} }
func (x Real) RFloorDiv(y any) Real { return Real{RealOps.FloorDiv.derive(y, x)} }
func (x Real) RMod(y any) Real      { return Real{RealOps.Mod.derive(y, x)} }
func (x Real) RPow(y any) Real      { return Real{RealOps.Pow.derive(y, x)} }
func (x Real) RLShift(y any) Real   { return Real{RealOps.LShift.derive(y, x)} }
func (x Real) RRShift(y any) Real   { return Real{RealOps.RShift.derive(y, x)} }
func (x Real) RAnd(y any) Real      { return Real{RealOps.And.derive(y, x)} }
func (x Real) RXor(y any) Real      { return Real{RealOps.Xor.derive(y, x)} }
func (x Real) ROr(y any) Real       { return Real{RealOps.Or.derive(y, x)} }

func (x Real) Neg() Real    { return Real{RealOps.Neg.derive(x)} }
func (x Real) Pos() Real    { return Real{RealOps.Pos.derive(x)} }
func (x Real) Invert() Real { return Real{RealOps.Invert.derive(x)} }

// Pow3 is pow(x, y, mod).
func (x Real) Pow3(y, mod any) Real {
	e, err := RealPow3.Build([]any{x, y, mod}, nil)
	if err != nil {
		panic(err)
	}
	return Real{NewDerived(KindReal, e)}
}

// Symbol operators.
func (x Symbol) Eq(y any) Boolean { return Boolean{SymbolOps.Eq.derive(x, y)} }
func (x Symbol) Ne(y any) Boolean { return Boolean{SymbolOps.Ne.derive(x, y)} }
func (x Symbol) Lt(y any) Boolean { return Boolean{SymbolOps.Lt.derive(x, y)} }
func (x Symbol) Le(y any) Boolean { return Boolean{SymbolOps.Le.derive(x, y)} }
func (x Symbol) Gt(y any) Boolean { return Boolean{SymbolOps.Gt.derive(x, y)} }
func (x Symbol) Ge(y any) Boolean { return Boolean{SymbolOps.Ge.derive(x, y)} }

func (x Symbol) Add(y any) Symbol      { return Symbol{SymbolOps.Add.derive(x, y)} }
func (x Symbol) Sub(y any) Symbol      { return Symbol{SymbolOps.Sub.derive(x, y)} }
func (x Symbol) Mul(y any) Symbol      { return Symbol{SymbolOps.Mul.derive(x, y)} }
func (x Symbol) MatMul(y any) Symbol   { return Symbol{SymbolOps.MatMul.derive(x, y)} }
func (x Symbol) Div(y any) Symbol      { return Symbol{SymbolOps.TrueDiv.derive(x, y)} }
func (x Symbol) FloorDiv(y any) Symbol { return Symbol{SymbolOps.FloorDiv.derive(x, y)} }
func (x Symbol) Mod(y any) Symbol      { return Symbol{SymbolOps.Mod.derive(x, y)} }
func (x Symbol) Pow(y any) Symbol      { return Symbol{SymbolOps.Pow.derive(x, y)} }
func (x Symbol) LShift(y any) Symbol   { return Symbol{SymbolOps.LShift.derive(x, y)} }
func (x Symbol) RShift(y any) Symbol   { return Symbol{SymbolOps.RShift.derive(x, y)} }
func (x Symbol) And(y any) Symbol      { return Symbol{SymbolOps.And.derive(x, y)} }
func (x Symbol) Xor(y any) Symbol      { return Symbol{SymbolOps.Xor.derive(x, y)} }
func (x Symbol) Or(y any) Symbol       { return Symbol{SymbolOps.Or.derive(x, y)} }

func (x Symbol) RAdd(y any) Symbol      { return Symbol{SymbolOps.Add.derive(y, x)} }
func (x Symbol) RSub(y any) Symbol      { return Symbol{SymbolOps.Sub.derive(y, x)} }
func (x Symbol) RMul(y any) Symbol      { return Symbol{SymbolOps.Mul.derive(y, x)} }
func (x Symbol) RMatMul(y any) Symbol   { return Symbol{SymbolOps.MatMul.derive(y, x)} }
func (x Symbol) RDiv(y any) Symbol      { return Symbol{SymbolOps.TrueDiv.derive(y, x)} }
func (x Symbol) RFloorDiv(y any) Symbol { return Symbol{SymbolOps.FloorDiv.derive(y, x)} }
func (x Symbol) RMod(y any) Symbol      { return Symbol{SymbolOps.Mod.derive(y, x)} }
func (x Symbol) RPow(y any) Symbol      { return Symbol{SymbolOps.Pow.derive(y, x)} }
func (x Symbol) RLShift(y any) Symbol   { return Symbol{SymbolOps.LShift.derive(y, x)} }
func (x Symbol) RRShift(y any) Symbol   { return Symbol{SymbolOps.RShift.derive(y, x)} }
func (x Symbol) RAnd(y any) Symbol      { return Symbol{SymbolOps.And.derive(y, x)} }
func (x Symbol) RXor(y any) Symbol      { return Symbol{SymbolOps.Xor.derive(y, x)} }
func (x Symbol) ROr(y any) Symbol       { return Symbol{SymbolOps.Or.derive(y, x)} }

func (x Symbol) Neg() Symbol    { return Symbol{SymbolOps.Neg.derive(x)} }
func (x Symbol) Pos() Symbol    { return Symbol{SymbolOps.Pos.derive(x)} }
func (x Symbol) Invert() Symbol { return Symbol{SymbolOps.Invert.derive(x)} }

// Index is x[key].
func (x Symbol) Index(key any) Symbol { return Symbol{SymbolOps.GetItem.derive(x, key)} }

// Attr is x.name.
func (x Symbol) Attr(name string) Symbol { return Symbol{SymbolOps.GetAttr.derive(x, name)} }

// Vector operators.
func (x Vector) Eq(y any) Boolean { return Boolean{VectorOps.Eq.derive(x, y)} }
func (x Vector) Ne(y any) Boolean { return Boolean{VectorOps.Ne.derive(x, y)} }

func (x Vector) Add(y any) Vector      { return Vector{VectorOps.Add.derive(x, y)} }
func (x Vector) Sub(y any) Vector      { return Vector{VectorOps.Sub.derive(x, y)} }
func (x Vector) Mul(y any) Vector      { return Vector{VectorOps.Mul.derive(x, y)} }
func (x Vector) Div(y any) Vector      { return Vector{VectorOps.TrueDiv.derive(x, y)} }
func (x Vector) FloorDiv(y any) Vector { return Vector{VectorOps.FloorDiv.derive(x, y)} }

func (x Vector) RAdd(y any) Vector      { return Vector{VectorOps.Add.derive(y, x)} }
func (x Vector) RSub(y any) Vector      { return Vector{VectorOps.Sub.derive(y, x)} }
func (x Vector) RMul(y any) Vector      { return Vector{VectorOps.Mul.derive(y, x)} }
func (x Vector) RDiv(y any) Vector      { return Vector{VectorOps.TrueDiv.derive(y, x)} }
func (x Vector) RFloorDiv(y any) Vector { return Vector{VectorOps.FloorDiv.derive(y, x)} }

func (x Vector) Neg() Vector    { return Vector{VectorOps.Neg.derive(x)} }
func (x Vector) Pos() Vector    { return Vector{VectorOps.Pos.derive(x)} }
func (x Vector) Invert() Vector { return Vector{VectorOps.Invert.derive(x)} }

func (x Vector) MatMul(y any) Real  { return Real{VectorOps.MatMul.derive(x, y)} }
func (x Vector) RMatMul(y any) Real { return Real{VectorOps.MatMul.derive(y, x)} }

// Index is x[i]. Indexing goes through the generic symbol catalog and the
// element is narrowed to Real.
func (x Vector) Index(i any) Real {
	return Real{NewDerived(KindReal, SymbolOps.GetItem.derive(x, i).expr)}
}

// Sum adds the elements of x.
func (x Vector) Sum() Real { return Real{mustLeaf(VectorSum, x)} }

// Prod multiplies the elements of x.
func (x Vector) Prod() Real { return Real{mustLeaf(VectorProd, x)} }

// Boolean operators.
func (x Boolean) Eq(y any) Boolean { return Boolean{BooleanOps.Eq.derive(x, y)} }
func (x Boolean) Ne(y any) Boolean { return Boolean{BooleanOps.Ne.derive(x, y)} }

func (x Boolean) And(y any) Boolean { return Boolean{BooleanOps.And.derive(x, y)} }
func (x Boolean) Xor(y any) Boolean { return Boolean{BooleanOps.Xor.derive(x, y)} }
func (x Boolean) Or(y any) Boolean  { return Boolean{BooleanOps.Or.derive(x, y)} }

func (x Boolean) RAnd(y any) Boolean { return Boolean{BooleanOps.And.derive(y, x)} }
func (x Boolean) RXor(y any) Boolean { return Boolean{BooleanOps.Xor.derive(y, x)} }
func (x Boolean) ROr(y any) Boolean  { return Boolean{BooleanOps.Or.derive(y, x)} }

func mustLeaf(c Callable, args ...any) *Leaf {
	e, err := build(c, args, nil)
	if err != nil {
		panic(err)
	}
	return NewDerived(c.Result(), e)
}
