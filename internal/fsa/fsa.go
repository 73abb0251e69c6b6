// Package fsa implements the graph-only finite-state-automaton primitives
// (component A's leaf layer): states, ranged edges, and the ordered,
// coalesced adjacency representation the rest of the compiler builds on.
// Nothing here is aware of annotation bags; see internal/afsa for the
// annotation-preserving transforms layered on top.
package fsa

import "sort"

// StateID identifies a state by its dense index into FSA.Adj.
type StateID int

// AB is the exclusive upper bound of the real byte alphabet. Special
// symbols (epsilon and collapse markers) live at values >= AB.
const AB = 256

// Epsilon is the reserved symbol whose edges participate in epsilon
// closure during determinization. It is the first value at or above AB.
const Epsilon = AB

// CollapseSlotBase is the first special symbol value used for collapse
// markers; slot i occupies the single-width range [CollapseSlotBase+i,
// CollapseSlotBase+i+1).
const CollapseSlotBase = AB + 1

// Range is a half-open symbol range [Lo, Hi).
type Range struct {
	Lo, Hi int
}

// Len returns the number of symbols covered by the range.
func (r Range) Len() int { return r.Hi - r.Lo }

// Edge is one adjacency entry: a symbol range paired with a destination
// state.
type Edge struct {
	Range Range
	Dest  StateID
}

// FSA is the graph-only machine: an adjacency list ordered and coalesced
// per state, a start state, and a sorted set of final states.
type FSA struct {
	Start  StateID
	Finals []StateID
	Adj    [][]Edge
}

// New returns an empty FSA with n freshly allocated, edgeless states.
func New(n int) *FSA {
	return &FSA{Adj: make([][]Edge, n)}
}

// NumStates returns the number of states.
func (f *FSA) NumStates() int { return len(f.Adj) }

// NewState appends a fresh, edgeless state and returns its ID.
func (f *FSA) NewState() StateID {
	id := StateID(len(f.Adj))
	f.Adj = append(f.Adj, nil)
	return id
}

// AddEdge inserts an edge and re-establishes the canonical ordering:
// sorted by (lo, dest), with contiguous same-destination ranges
// coalesced. Equal (lo,hi) keys for different destinations are kept
// distinct entries; true overlaps across different destinations are a
// caller error (combinators are responsible for building disjoint
// ranges per state, per the data-model invariant).
func (f *FSA) AddEdge(u StateID, lo, hi int, v StateID) {
	f.Adj[u] = append(f.Adj[u], Edge{Range: Range{Lo: lo, Hi: hi}, Dest: v})
	f.canonicalize(u)
}

// canonicalize restores sort order and merges adjacent same-destination
// ranges for state u.
func (f *FSA) canonicalize(u StateID) {
	edges := f.Adj[u]
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Range.Lo != edges[j].Range.Lo {
			return edges[i].Range.Lo < edges[j].Range.Lo
		}
		return edges[i].Dest < edges[j].Dest
	})
	merged := edges[:0]
	for _, e := range edges {
		if n := len(merged); n > 0 &&
			merged[n-1].Dest == e.Dest &&
			merged[n-1].Range.Hi == e.Range.Lo {
			merged[n-1].Range.Hi = e.Range.Hi
			continue
		}
		merged = append(merged, e)
	}
	f.Adj[u] = merged
}

// IsFinal reports whether s is a final state. Finals must be sorted for
// this to be correct; call SortFinals after bulk mutation.
func (f *FSA) IsFinal(s StateID) bool {
	i := sort.Search(len(f.Finals), func(i int) bool { return f.Finals[i] >= s })
	return i < len(f.Finals) && f.Finals[i] == s
}

// SortFinals restores the sorted-set invariant on Finals, removing
// duplicates.
func (f *FSA) SortFinals() {
	sort.Slice(f.Finals, func(i, j int) bool { return f.Finals[i] < f.Finals[j] })
	out := f.Finals[:0]
	for _, s := range f.Finals {
		if n := len(out); n == 0 || out[n-1] != s {
			out = append(out, s)
		}
	}
	f.Finals = out
}

// Boundaries returns the sorted, deduplicated set of distinguishing
// symbol values across every edge in states, i.e. every Lo and every Hi.
// Consecutive boundaries bracket a maximal sub-range over which no edge
// in states starts or ends, which is exactly what determinize and
// minimize need to split the alphabet into workable chunks.
func Boundaries(adj [][]Edge, states []StateID) []int {
	seen := map[int]bool{}
	for _, s := range states {
		for _, e := range adj[s] {
			seen[e.Range.Lo] = true
			seen[e.Range.Hi] = true
		}
	}
	out := make([]int, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}
