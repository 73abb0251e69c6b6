package afsa

import (
	"sort"

	"github.com/yanshi-lang/yanshi/internal/fsa"
)

// subset is a sorted, deduplicated set of NFA StateIDs, used as a map
// key during subset construction.
type subset []fsa.StateID

func (s subset) key() string {
	buf := make([]byte, 0, len(s)*4)
	for _, id := range s {
		buf = append(buf, byte(id), byte(id>>8), byte(id>>16), byte(id>>24))
	}
	return string(buf)
}

func normalizeSubset(ids []fsa.StateID) subset {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:0]
	for _, id := range ids {
		if n := len(out); n == 0 || out[n-1] != id {
			out = append(out, id)
		}
	}
	return subset(out)
}

// epsilonClosure extends states with every state reachable by following
// only Epsilon edges, per "epsilon closure is computed over edges whose
// symbol range contains epsilon".
func epsilonClosure(adj [][]fsa.Edge, states []fsa.StateID) subset {
	seen := map[fsa.StateID]bool{}
	stack := append([]fsa.StateID(nil), states...)
	for _, s := range states {
		seen[s] = true
	}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range adj[u] {
			if e.Range.Lo <= fsa.Epsilon && fsa.Epsilon < e.Range.Hi && !seen[e.Dest] {
				seen[e.Dest] = true
				stack = append(stack, e.Dest)
			}
		}
	}
	out := make([]fsa.StateID, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	return normalizeSubset(out)
}

// Determinize runs classical subset construction over the full symbol
// range [0, AB+k), treating every non-epsilon edge (including collapse
// markers, which are ordinary symbols until the collapse expander
// rewrites them) as consuming. Subset states inherit the union of their
// constituents' annotation bags.
func Determinize(in *AFSA) *AFSA {
	out := &AFSA{Arena: in.Arena}
	idxOf := map[string]fsa.StateID{}
	var subsets []subset

	add := func(ss subset) fsa.StateID {
		k := ss.key()
		if id, ok := idxOf[k]; ok {
			return id
		}
		id := fsa.StateID(len(subsets))
		idxOf[k] = id
		subsets = append(subsets, ss)
		out.Fsa.Adj = append(out.Fsa.Adj, nil)
		out.Assoc = append(out.Assoc, nil)
		return id
	}

	startSet := epsilonClosure(in.Fsa.Adj, []fsa.StateID{in.Fsa.Start})
	out.Fsa.Start = add(startSet)

	for i := 0; i < len(subsets); i++ {
		ss := subsets[i]
		u := fsa.StateID(i)

		// Populate the union annotation bag for this subset state now
		// that its identity (the NFA-state set) is fixed.
		bags := make([][]AssocEntry, 0, len(ss))
		for _, s := range ss {
			bags = append(bags, in.Assoc[s])
		}
		out.Assoc[u] = unionBags(bags...)

		bounds := fsa.Boundaries(in.Fsa.Adj, ss)
		for bi := 0; bi+1 < len(bounds); bi++ {
			lo, hi := bounds[bi], bounds[bi+1]
			if lo == fsa.Epsilon {
				continue // epsilon never consumes; handled by closure
			}
			var dests []fsa.StateID
			for _, s := range ss {
				for _, e := range in.Fsa.Adj[s] {
					if e.Range.Lo <= lo && lo < e.Range.Hi {
						dests = append(dests, e.Dest)
					}
				}
			}
			if len(dests) == 0 {
				continue
			}
			closure := epsilonClosure(in.Fsa.Adj, dests)
			v := add(closure)
			out.Fsa.AddEdge(u, lo, hi, v)
		}
	}

	for i, ss := range subsets {
		for _, s := range ss {
			if in.Fsa.IsFinal(s) {
				out.Fsa.Finals = append(out.Fsa.Finals, fsa.StateID(i))
				break
			}
		}
	}
	out.Fsa.SortFinals()
	out.checkInvariants()
	return out
}
