package compiler

import "github.com/yanshi-lang/yanshi/internal/ast"

// FindLCA returns the lowest common ancestor of u and v in the
// expression tree arena belongs to, using the binary-lifted ancestor
// tables filled in during the post-order traversal in compile.go. Both
// nodes must already have been visited (their Depth/Anc fields set).
func FindLCA(arena *ast.Arena, u, v ast.ExprID) ast.ExprID {
	eu, ev := arena.Get(u), arena.Get(v)
	if eu.Depth < ev.Depth {
		u, v = v, u
		eu, ev = ev, eu
	}
	diff := eu.Depth - ev.Depth
	for k := 0; diff > 0; k++ {
		if diff&1 == 1 {
			u = nthAnc(arena.Get(u), k)
		}
		diff >>= 1
	}
	if u == v {
		return u
	}
	maxK := len(arena.Get(u).Anc)
	if lv := len(arena.Get(v).Anc); lv > maxK {
		maxK = lv
	}
	for k := maxK - 1; k >= 0; k-- {
		au := nthAnc(arena.Get(u), k)
		av := nthAnc(arena.Get(v), k)
		if au != av {
			u, v = au, av
		}
	}
	return nthAnc(arena.Get(u), 0)
}
