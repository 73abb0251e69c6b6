package afsa

import (
	"github.com/yanshi-lang/yanshi/internal/ast"
	"github.com/yanshi-lang/yanshi/internal/fsa"
)

// domainMax returns the widest symbol boundary present in a machine's
// adjacency, defaulting to AB when the machine has no edges at all.
// Intersect/Difference/Complement totalize up to this bound so that
// missing transitions can be treated as "go to the sink" rather than
// as a special case in the product walk.
func domainMax(a *AFSA) int {
	max := fsa.AB
	for _, edges := range a.Fsa.Adj {
		for _, e := range edges {
			if e.Range.Hi > max {
				max = e.Range.Hi
			}
		}
	}
	return max
}

// totalize adds a non-final sink state with a self-loop over [0,
// domain) and routes every state's gaps in that range to it, so every
// state has exactly one outgoing edge per symbol in [0, domain).
func totalize(a *AFSA, domain int) *AFSA {
	out := clone(a)
	sink := out.NewState()
	out.Fsa.AddEdge(sink, 0, domain, sink)
	for s := 0; s < a.NumStates(); s++ {
		covered := make([]bool, domain)
		for _, e := range a.Fsa.Adj[s] {
			for x := e.Range.Lo; x < e.Range.Hi && x < domain; x++ {
				covered[x] = true
			}
		}
		lo := -1
		for x := 0; x <= domain; x++ {
			if x < domain && !covered[x] {
				if lo < 0 {
					lo = x
				}
			} else if lo >= 0 {
				out.Fsa.AddEdge(fsa.StateID(s), lo, x, sink)
				lo = -1
			}
		}
	}
	return out
}

// destAt returns the destination of the edge in edges covering symbol
// sym, or -1 if none (can only happen on a non-totalized machine).
func destAt(edges []fsa.Edge, sym int) fsa.StateID {
	for _, e := range edges {
		if e.Range.Lo <= sym && sym < e.Range.Hi {
			return e.Dest
		}
	}
	return -1
}

// product runs a synchronized walk over two deterministic, totalized
// machines, building one state per visited (i,j) pair. accept decides
// finality of the pair from each operand's own finality, which is what
// lets one product implementation serve Intersect and Difference.
func product(arena *ast.Arena, da, db *AFSA, accept func(aFinal, bFinal bool) bool) *AFSA {
	out := &AFSA{Arena: arena}
	type pair struct{ i, j fsa.StateID }
	idx := map[pair]fsa.StateID{}
	var pairs []pair

	add := func(p pair) fsa.StateID {
		if id, ok := idx[p]; ok {
			return id
		}
		id := fsa.StateID(len(pairs))
		idx[p] = id
		pairs = append(pairs, p)
		out.Fsa.Adj = append(out.Fsa.Adj, nil)
		out.Assoc = append(out.Assoc, nil)
		return id
	}

	startPair := pair{da.Fsa.Start, db.Fsa.Start}
	out.Fsa.Start = add(startPair)

	for i := 0; i < len(pairs); i++ {
		p := pairs[i]
		u := fsa.StateID(i)
		out.Assoc[u] = unionBags(da.Assoc[p.i], db.Assoc[p.j])
		if accept(da.Fsa.IsFinal(p.i), db.Fsa.IsFinal(p.j)) {
			out.Fsa.Finals = append(out.Fsa.Finals, u)
		}

		bounds := fsa.Boundaries(da.Fsa.Adj, []fsa.StateID{p.i})
		bounds = append(bounds, fsa.Boundaries(db.Fsa.Adj, []fsa.StateID{p.j})...)
		bounds = dedupSortInts(bounds)
		for bi := 0; bi+1 < len(bounds); bi++ {
			lo, hi := bounds[bi], bounds[bi+1]
			di := destAt(da.Fsa.Adj[p.i], lo)
			dj := destAt(db.Fsa.Adj[p.j], lo)
			if di < 0 || dj < 0 {
				continue
			}
			v := add(pair{di, dj})
			out.Fsa.AddEdge(u, lo, hi, v)
		}
	}
	out.Fsa.SortFinals()
	return out
}

func dedupSortInts(xs []int) []int {
	seen := map[int]bool{}
	out := xs[:0]
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sortInts(out)
	return out
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// Intersect builds the product of determinized a, b; a state is final
// iff both operands are.
func Intersect(arena *ast.Arena, expr ast.ExprID, a, b *AFSA) *AFSA {
	da, db := Determinize(a), Determinize(b)
	domain := domainMax(da)
	if d := domainMax(db); d > domain {
		domain = d
	}
	da, db = totalize(da, domain), totalize(db, domain)
	out := product(arena, da, db, func(fa, fb bool) bool { return fa && fb })
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// Difference builds the product of determinized a, b; a state is final
// iff a accepts and b does not.
func Difference(arena *ast.Arena, expr ast.ExprID, a, b *AFSA) *AFSA {
	da, db := Determinize(a), Determinize(b)
	domain := domainMax(da)
	if d := domainMax(db); d > domain {
		domain = d
	}
	da, db = totalize(da, domain), totalize(db, domain)
	out := product(arena, da, db, func(fa, fb bool) bool { return fa && !fb })
	out.TagAll(expr)
	out.checkInvariants()
	return out
}

// Complement determinizes a, totalizes it with a sink, and flips
// finality.
func Complement(arena *ast.Arena, expr ast.ExprID, a *AFSA) *AFSA {
	det := Determinize(a)
	total := totalize(det, domainMax(det))
	out := clone(total)
	out.Arena = arena
	finalSet := make(map[fsa.StateID]bool, len(out.Fsa.Finals))
	for _, f := range out.Fsa.Finals {
		finalSet[f] = true
	}
	out.Fsa.Finals = out.Fsa.Finals[:0]
	for s := 0; s < out.NumStates(); s++ {
		if !finalSet[fsa.StateID(s)] {
			out.Fsa.Finals = append(out.Fsa.Finals, fsa.StateID(s))
		}
	}
	out.Fsa.SortFinals()
	out.TagAll(expr)
	out.checkInvariants()
	return out
}
