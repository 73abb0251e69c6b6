// Package afsa implements the annotated finite-state automaton: an
// fsa.FSA plus per-state bags of (expression, tag) pairs, and the
// annotation-preserving transforms (determinize, minimize, accessible,
// co_accessible) that component A's contract requires. This is also
// where the AFSA combinators (component B) live.
package afsa

import (
	"sort"

	"github.com/yanshi-lang/yanshi/internal/ast"
	"github.com/yanshi-lang/yanshi/internal/fsa"
)

// ExprTag is a bitset recording a state's role within a sub-expression's
// sub-machine.
type ExprTag uint8

const (
	TagStart ExprTag = 1 << iota
	TagInner
	TagFinal
)

func (t ExprTag) Has(bit ExprTag) bool { return t&bit != 0 }

// AssocEntry is one (expression, tag) pair in a state's annotation bag.
type AssocEntry struct {
	Expr ast.ExprID
	Tag  ExprTag
}

// LessByPre orders two annotation-bag entries by (expr.Pre, tag), the
// order the action synthesizer's sort step needs. arena is required to
// read Pre for the pre-order comparison.
func LessByPre(arena *ast.Arena, a, b AssocEntry) bool {
	pa, pb := arena.Get(a.Expr).Pre, arena.Get(b.Expr).Pre
	if pa != pb {
		return pa < pb
	}
	return a.Tag < b.Tag
}

// AFSA is an fsa.FSA plus per-state annotation bags, keyed to the
// expression arena that owns the tagged nodes.
type AFSA struct {
	Fsa   fsa.FSA
	Assoc [][]AssocEntry
	Arena *ast.Arena
}

// New returns an AFSA with n edgeless, bag-less states backed by arena.
func New(arena *ast.Arena, n int) *AFSA {
	return &AFSA{
		Fsa:   *fsa.New(n),
		Assoc: make([][]AssocEntry, n),
		Arena: arena,
	}
}

// NumStates returns the number of states.
func (a *AFSA) NumStates() int { return a.Fsa.NumStates() }

// NewState appends a fresh state to both the FSA and the annotation
// table and returns its ID.
func (a *AFSA) NewState() fsa.StateID {
	id := a.Fsa.NewState()
	a.Assoc = append(a.Assoc, nil)
	return id
}

// Tag merges (expr, tag) into state s's annotation bag: if the bag
// already carries an entry for expr (a combinator that wraps a
// sub-machine built from the same node, e.g. Star's inner Epsilon, can
// call TagAll with the same expr more than once on one physical state)
// its tag is OR'd with tag rather than appending a second entry, so a
// bag never carries two different tags for one expr.
func (a *AFSA) Tag(s fsa.StateID, expr ast.ExprID, tag ExprTag) {
	for i, e := range a.Assoc[s] {
		if e.Expr == expr {
			a.Assoc[s][i].Tag |= tag
			return
		}
	}
	a.Assoc[s] = append(a.Assoc[s], AssocEntry{Expr: expr, Tag: tag})
}

// TagAll merges (expr, tag) into every state's bag via Tag, selecting tag by the
// state's structural role (start / final / inner) within this
// sub-machine. This is the "append the current expression node to every
// state's annotation bag with its tag" step every combinator performs
// after constructing its result (component B).
func (a *AFSA) TagAll(expr ast.ExprID) {
	isFinal := make(map[fsa.StateID]bool, len(a.Fsa.Finals))
	for _, f := range a.Fsa.Finals {
		isFinal[f] = true
	}
	for s := 0; s < a.NumStates(); s++ {
		tag := TagInner
		if fsa.StateID(s) == a.Fsa.Start {
			tag |= TagStart
		}
		if isFinal[fsa.StateID(s)] {
			tag |= TagFinal
		}
		a.Tag(fsa.StateID(s), expr, tag)
	}
}

// bagKey renders a sorted annotation bag into a comparable key for
// annotation-equivalence checks (the minimizer's initial partition).
func bagKey(arena *ast.Arena, bag []AssocEntry) string {
	sorted := append([]AssocEntry(nil), bag...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Expr != sorted[j].Expr {
			return sorted[i].Expr < sorted[j].Expr
		}
		return sorted[i].Tag < sorted[j].Tag
	})
	// dedupe
	out := sorted[:0]
	for _, e := range sorted {
		if n := len(out); n == 0 || out[n-1] != e {
			out = append(out, e)
		}
	}
	buf := make([]byte, 0, len(out)*8)
	for _, e := range out {
		buf = append(buf, byte(e.Expr), byte(e.Expr>>8), byte(e.Expr>>16), byte(e.Tag))
	}
	return string(buf)
}

// unionBags merges several state bags into one, used when subset
// construction merges multiple NFA states into one DFA state. Entries
// for the same expr are OR'd together rather than kept as separate
// entries, for the same reason Tag merges rather than appends: two NFA
// states carrying different tags for the same expr (e.g. one marking
// it Start, another Final) must not let only one of those tags survive
// into the merged state's bag.
func unionBags(bags ...[]AssocEntry) []AssocEntry {
	index := map[ast.ExprID]int{}
	var out []AssocEntry
	for _, bag := range bags {
		for _, e := range bag {
			if i, ok := index[e.Expr]; ok {
				out[i].Tag |= e.Tag
				continue
			}
			index[e.Expr] = len(out)
			out = append(out, e)
		}
	}
	return out
}
