package afsa

import (
	"github.com/yanshi-lang/yanshi/internal/fsa"
)

// Minimize merges indistinguishable states of a deterministic in by
// partition refinement over the distinguishing ranges of the whole
// machine. The initial partition separates finals from non-finals *and*
// states with differing annotation bags, which is what guarantees
// merging never erases an observable action (testable property #3).
//
// in must already be deterministic; call Determinize first.
func Minimize(in *AFSA) *AFSA {
	n := in.NumStates()
	if n == 0 {
		return in
	}

	bounds := allBoundaries(in.Fsa.Adj, n)

	// class[s] is the current partition class index of state s.
	class := make([]int, n)
	classKey := map[string]int{}
	for s := 0; s < n; s++ {
		fin := in.Fsa.IsFinal(fsa.StateID(s))
		k := bagKey(in.Arena, in.Assoc[s])
		if fin {
			k = "F" + k
		} else {
			k = "N" + k
		}
		id, ok := classKey[k]
		if !ok {
			id = len(classKey)
			classKey[k] = id
		}
		class[s] = id
	}

	for {
		numClasses := len(classKey)
		sig := make([]string, n)
		for s := 0; s < n; s++ {
			sig[s] = signature(in.Fsa.Adj[s], bounds, class, class[s])
		}
		newClass := make([]int, n)
		newKey := map[string]int{}
		for s := 0; s < n; s++ {
			id, ok := newKey[sig[s]]
			if !ok {
				id = len(newKey)
				newKey[sig[s]] = id
			}
			newClass[s] = id
		}
		class = newClass
		classKey = newKey
		if len(classKey) == numClasses {
			break
		}
	}

	out := buildFromPartition(in, class, len(classKey))
	out.checkInvariants()
	return out
}

// allBoundaries collects distinguishing symbol boundaries across every
// state of the machine (minimize needs a single global split, unlike
// determinize's per-subset boundaries).
func allBoundaries(adj [][]fsa.Edge, n int) []int {
	all := make([]fsa.StateID, n)
	for i := range all {
		all[i] = fsa.StateID(i)
	}
	return fsa.Boundaries(adj, all)
}

// signature describes, for state s (with current class own), the class
// reached by each distinguishing range plus its own class, forming the
// refinement key.
func signature(edges []fsa.Edge, bounds []int, class []int, own int) string {
	buf := make([]byte, 0, 64)
	appendInt := func(x int) {
		buf = append(buf, byte(x), byte(x>>8), byte(x>>16), byte(x>>24))
	}
	appendInt(own)
	for bi := 0; bi+1 < len(bounds); bi++ {
		lo := bounds[bi]
		if lo == fsa.Epsilon {
			continue
		}
		dest := -1
		for _, e := range edges {
			if e.Range.Lo <= lo && lo < e.Range.Hi {
				dest = class[e.Dest]
				break
			}
		}
		appendInt(dest)
	}
	return string(buf)
}

// buildFromPartition constructs the quotient AFSA: one state per class,
// with the representative's edges rewritten to point at class ids, and
// annotation bags unioned across every state of the class (the merger's
// contract: merged states must already share bags, but defensive union
// keeps this correct even if that invariant is ever relaxed).
func buildFromPartition(in *AFSA, class []int, numClasses int) *AFSA {
	out := New(in.Arena, numClasses)
	bagsByClass := make([][][]AssocEntry, numClasses)
	repByClass := make([]fsa.StateID, numClasses)
	seenRep := make([]bool, numClasses)

	for s := 0; s < in.NumStates(); s++ {
		c := class[s]
		bagsByClass[c] = append(bagsByClass[c], in.Assoc[s])
		if !seenRep[c] {
			seenRep[c] = true
			repByClass[c] = fsa.StateID(s)
		}
	}
	for c := 0; c < numClasses; c++ {
		out.Assoc[c] = unionBags(bagsByClass[c]...)
		for _, e := range in.Fsa.Adj[repByClass[c]] {
			out.Fsa.AddEdge(fsa.StateID(c), e.Range.Lo, e.Range.Hi, fsa.StateID(class[e.Dest]))
		}
	}
	out.Fsa.Start = fsa.StateID(class[in.Fsa.Start])
	finals := map[fsa.StateID]bool{}
	for _, f := range in.Fsa.Finals {
		finals[fsa.StateID(class[f])] = true
	}
	for c := range finals {
		out.Fsa.Finals = append(out.Fsa.Finals, c)
	}
	out.Fsa.SortFinals()
	out.checkInvariants()
	return out
}

// Accessible prunes states unreachable from start, renumbering densely
// and carrying annotation bags along.
func Accessible(in *AFSA) *AFSA {
	reach := fsa.Accessible(in.Fsa.Adj, in.Fsa.Start)
	return prune(in, reach)
}

// CoAccessible prunes states that cannot reach any final, renumbering
// densely and carrying annotation bags along.
func CoAccessible(in *AFSA) *AFSA {
	reach := fsa.CoAccessible(in.Fsa.Adj, in.Fsa.Finals)
	return prune(in, reach)
}

func prune(in *AFSA, keep []bool) *AFSA {
	remap := make([]fsa.StateID, len(keep))
	next := fsa.StateID(0)
	for s, ok := range keep {
		if ok {
			remap[s] = next
			next++
		} else {
			remap[s] = -1
		}
	}
	out := New(in.Arena, int(next))
	for s, ok := range keep {
		if !ok {
			continue
		}
		u := remap[s]
		out.Assoc[u] = append([]AssocEntry(nil), in.Assoc[s]...)
		for _, e := range in.Fsa.Adj[s] {
			if remap[e.Dest] < 0 {
				continue
			}
			out.Fsa.AddEdge(u, e.Range.Lo, e.Range.Hi, remap[e.Dest])
		}
	}
	out.Fsa.Start = remap[in.Fsa.Start]
	for _, f := range in.Fsa.Finals {
		if remap[f] >= 0 {
			out.Fsa.Finals = append(out.Fsa.Finals, remap[f])
		}
	}
	out.Fsa.SortFinals()
	out.checkInvariants()
	return out
}
