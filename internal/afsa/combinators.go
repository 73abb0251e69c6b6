package afsa

import (
	"github.com/yanshi-lang/yanshi/internal/ast"
	"github.com/yanshi-lang/yanshi/internal/fsa"
)

// Literal builds a chain of len(b)+1 states, one edge per byte, per
// component B.
func Literal(arena *ast.Arena, expr ast.ExprID, b []byte) *AFSA {
	out := New(arena, len(b)+1)
	out.Fsa.Start = 0
	out.Fsa.Finals = []fsa.StateID{fsa.StateID(len(b))}
	for i, byt := range b {
		out.Fsa.AddEdge(fsa.StateID(i), int(byt), int(byt)+1, fsa.StateID(i+1))
	}
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// Bracket builds two states with one edge per range in ranges, after
// sorting and coalescing the ranges so that structurally different but
// semantically identical range lists produce identical adjacency.
func Bracket(arena *ast.Arena, expr ast.ExprID, ranges []ast.Range) *AFSA {
	out := New(arena, 2)
	out.Fsa.Start = 0
	out.Fsa.Finals = []fsa.StateID{1}
	for _, r := range canonicalizeRanges(ranges) {
		out.Fsa.AddEdge(0, r.Lo, r.Hi, 1)
	}
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

func canonicalizeRanges(ranges []ast.Range) []ast.Range {
	sorted := append([]ast.Range(nil), ranges...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Lo > sorted[j].Lo; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	out := sorted[:0]
	for _, r := range sorted {
		if n := len(out); n > 0 && out[n-1].Hi >= r.Lo {
			if r.Hi > out[n-1].Hi {
				out[n-1].Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Dot builds two states with a single edge [0, AB).
func Dot(arena *ast.Arena, expr ast.ExprID) *AFSA {
	out := New(arena, 2)
	out.Fsa.Start = 0
	out.Fsa.Finals = []fsa.StateID{1}
	out.Fsa.AddEdge(0, 0, fsa.AB, 1)
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// Epsilon builds a single state that is both start and final.
func Epsilon(arena *ast.Arena, expr ast.ExprID) *AFSA {
	out := New(arena, 1)
	out.Fsa.Start = 0
	out.Fsa.Finals = []fsa.StateID{0}
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// Embed copies an externally-built AFSA verbatim, then tags every state
// with expr. src is not mutated.
func Embed(arena *ast.Arena, expr ast.ExprID, src *AFSA) *AFSA {
	out := clone(src)
	out.Arena = arena
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// Collapse builds two states linked by a single edge on the reserved
// special symbol assigned to slot. The collapse expander (component D)
// rewrites this edge into epsilon entry/return links at inlining time.
func Collapse(arena *ast.Arena, expr ast.ExprID, slot int) *AFSA {
	out := New(arena, 2)
	out.Fsa.Start = 0
	out.Fsa.Finals = []fsa.StateID{1}
	sym := fsa.CollapseSlotBase + slot
	out.Fsa.AddEdge(0, sym, sym+1, 1)
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// clone deep-copies an AFSA's FSA and annotation bags.
func clone(src *AFSA) *AFSA {
	out := &AFSA{
		Fsa: fsa.FSA{
			Start:  src.Fsa.Start,
			Finals: append([]fsa.StateID(nil), src.Fsa.Finals...),
			Adj:    make([][]fsa.Edge, src.NumStates()),
		},
		Assoc: make([][]AssocEntry, src.NumStates()),
		Arena: src.Arena,
	}
	for i := range src.Fsa.Adj {
		out.Fsa.Adj[i] = append([]fsa.Edge(nil), src.Fsa.Adj[i]...)
		out.Assoc[i] = append([]AssocEntry(nil), src.Assoc[i]...)
	}
	return out
}

// disjointUnion returns a fresh AFSA containing a copy of a's states
// followed by a copy of b's states, with b's internal edges rebased by
// offset len(a). It does not add any start/final/connecting structure;
// callers add that and then call TagAll for the combining node.
func disjointUnion(a, b *AFSA) (out *AFSA, offA, offB fsa.StateID) {
	offA = 0
	offB = fsa.StateID(a.NumStates())
	out = New(a.Arena, a.NumStates()+b.NumStates())
	for i := range a.Fsa.Adj {
		out.Fsa.Adj[offA+fsa.StateID(i)] = append([]fsa.Edge(nil), a.Fsa.Adj[i]...)
		out.Assoc[offA+fsa.StateID(i)] = append([]AssocEntry(nil), a.Assoc[i]...)
	}
	for i := range b.Fsa.Adj {
		rebased := make([]fsa.Edge, len(b.Fsa.Adj[i]))
		for j, e := range b.Fsa.Adj[i] {
			rebased[j] = fsa.Edge{Range: e.Range, Dest: e.Dest + offB}
		}
		out.Fsa.Adj[offB+fsa.StateID(i)] = rebased
		out.Assoc[offB+fsa.StateID(i)] = append([]AssocEntry(nil), b.Assoc[i]...)
	}
	return out, offA, offB
}

// Concat builds a disjoint union of a, b plus an epsilon edge from every
// final of a to the start of b; the result's finals are b's finals.
func Concat(arena *ast.Arena, expr ast.ExprID, a, b *AFSA) *AFSA {
	out, offA, offB := disjointUnion(a, b)
	out.Fsa.Start = offA + a.Fsa.Start
	for _, f := range a.Fsa.Finals {
		out.Fsa.AddEdge(offA+f, fsa.Epsilon, fsa.Epsilon+1, offB+b.Fsa.Start)
	}
	out.Fsa.Finals = make([]fsa.StateID, len(b.Fsa.Finals))
	for i, f := range b.Fsa.Finals {
		out.Fsa.Finals[i] = offB + f
	}
	out.Fsa.SortFinals()
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// Union builds a disjoint union of a, b plus a fresh start state with
// epsilons to both sub-starts; finals = a.finals ∪ b.finals.
func Union(arena *ast.Arena, expr ast.ExprID, a, b *AFSA) *AFSA {
	out, offA, offB := disjointUnion(a, b)
	start := out.NewState()
	out.Fsa.Start = start
	out.Fsa.AddEdge(start, fsa.Epsilon, fsa.Epsilon+1, offA+a.Fsa.Start)
	out.Fsa.AddEdge(start, fsa.Epsilon, fsa.Epsilon+1, offB+b.Fsa.Start)
	for _, f := range a.Fsa.Finals {
		out.Fsa.Finals = append(out.Fsa.Finals, offA+f)
	}
	for _, f := range b.Fsa.Finals {
		out.Fsa.Finals = append(out.Fsa.Finals, offB+f)
	}
	out.Fsa.SortFinals()
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// Star is Union(Epsilon, a) plus epsilon edges from every final of a
// back to a's start.
func Star(arena *ast.Arena, expr ast.ExprID, a *AFSA) *AFSA {
	eps := Epsilon(arena, expr)
	out := Union(arena, expr, eps, a)
	// a's states were offset by eps.NumStates() inside Union.
	off := fsa.StateID(eps.NumStates())
	for _, f := range a.Fsa.Finals {
		out.Fsa.AddEdge(off+f, fsa.Epsilon, fsa.Epsilon+1, off+a.Fsa.Start)
	}
	out.checkInvariants()
	return out
}

// Plus adds epsilon edges from every final of a back to a's start, on
// a copy of a; a is not mutated.
func Plus(arena *ast.Arena, expr ast.ExprID, a *AFSA) *AFSA {
	out := clone(a)
	for _, f := range a.Fsa.Finals {
		out.Fsa.AddEdge(f, fsa.Epsilon, fsa.Epsilon+1, out.Fsa.Start)
	}
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// Question marks a's start as an additional final.
func Question(arena *ast.Arena, expr ast.ExprID, a *AFSA) *AFSA {
	out := clone(a)
	out.Fsa.Finals = append(out.Fsa.Finals, out.Fsa.Start)
	out.Fsa.SortFinals()
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// Repeat builds the concatenation chain a^min followed by up to
// (max-min) further optional copies of a (max < 0 means unbounded,
// rendered as a trailing Star).
func Repeat(arena *ast.Arena, expr ast.ExprID, a *AFSA, min, max int) *AFSA {
	var out *AFSA
	if min == 0 {
		out = Epsilon(arena, expr)
	} else {
		out = clone(a)
		for i := 1; i < min; i++ {
			out = Concat(arena, expr, out, clone(a))
		}
	}
	switch {
	case max < 0:
		out = Concat(arena, expr, out, Star(arena, expr, clone(a)))
	case max > min:
		for i := min; i < max; i++ {
			out = Concat(arena, expr, out, Question(arena, expr, clone(a)))
		}
	}
	out.TagAll(expr)
	out.checkInvariants()
	return out
}
