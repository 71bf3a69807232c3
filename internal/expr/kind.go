package expr

// Kind identifies the value family of a leaf. Each kind owns a catalog
// of operators and functions under the namespace of the same name.
type Kind int

const (
	KindSymbol Kind = iota
	KindReal
	KindVector
	KindBoolean
)

var kindNames = [...]string{
	KindSymbol:  "symbol",
	KindReal:    "real",
	KindVector:  "vector",
	KindBoolean: "boolean",
}

var kindClasses = [...]string{
	KindSymbol:  "Symbol",
	KindReal:    "Real",
	KindVector:  "Vector",
	KindBoolean: "Boolean",
}

// String returns the catalog namespace of the kind ("real").
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ClassName returns the leaf constructor name of the kind ("Real").
func (k Kind) ClassName() string {
	if k < 0 || int(k) >= len(kindClasses) {
		return "Unknown"
	}
	return kindClasses[k]
}

// ParseKind accepts either a namespace name or a class name.
func ParseKind(s string) (Kind, bool) {
	for i := range kindNames {
		if kindNames[i] == s || kindClasses[i] == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindSymbol, KindReal, KindVector, KindBoolean}
}
