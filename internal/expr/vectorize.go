package expr

import "sort"

// Vectorize replaces the free real leaves named in names by the elements
// of a vector leaf: the i-th name becomes vectorName[i].
func Vectorize(n Node, names []string, vectorName string) Node {
	vec := NewVector(vectorName)
	m := NewMapping()
	for i, name := range names {
		m.Set(NewReal(name), vec.Index(i))
	}
	return Substitute(n, m)
}

// AutoVectorize vectorizes every user-level symbol of n in sorted name
// order and returns the names used.
func AutoVectorize(n Node, vectorName string) (Node, []string) {
	var names []string
	for _, l := range FreeSymbols(n) {
		if !l.anonymous && l.kind == KindReal {
			names = append(names, l.name)
		}
	}
	sort.Strings(names)
	return Vectorize(n, names, vectorName), names
}
