package compiler

import (
	"sort"

	"github.com/yanshi-lang/yanshi/internal/afsa"
	"github.com/yanshi-lang/yanshi/internal/ast"
	"github.com/yanshi-lang/yanshi/internal/fsa"
)

// WithinEntry names one ancestor node whose subtree structurally
// contains a given state, carrying the tag of whichever leaf entry's
// walk first reached it (used later to gate finishing actions on
// Expr.has_final-style reasoning — see classify).
type WithinEntry struct {
	Expr ast.ExprID
	Tag  afsa.ExprTag
}

// ActionBucket holds the resolved action code bodies for one
// transition, split into leaving, entering, transiting, and finishing.
type ActionBucket struct {
	Leaving    []string
	Entering   []string
	Transiting []string
	Finishing  []string
}

// Transition is one (u, v) edge of a compiled machine together with the
// symbol ranges that reach v from u and the actions that fire when it
// is taken. Multiple disjoint ranges collapse into one Transition when
// they share a destination, matching how the emitter groups cases.
type Transition struct {
	From, To fsa.StateID
	Ranges   []fsa.Range
	Actions  ActionBucket
}

// ActionTable is the synthesized action program for one exported
// nonterminal's compiled machine (component E's output).
type ActionTable struct {
	Stmt        *ast.DefineStmt
	Transitions []Transition
	Within      [][]WithinEntry
}

// CompileActions derives, for every state of a (the machine returned by
// CompileExport), the set of expression-tree ancestors it lives inside,
// then classifies every transition's actions by comparing the
// within-sets of its two endpoints.
func CompileActions(stmt *ast.DefineStmt, a *afsa.AFSA) *ActionTable {
	arena := stmt.Module.Arena
	within := computeWithin(arena, a)

	var transitions []Transition
	for u := 0; u < a.NumStates(); u++ {
		edges := a.Fsa.Adj[u]
		if len(edges) == 0 {
			continue
		}
		type group struct {
			to     fsa.StateID
			ranges []fsa.Range
		}
		var groups []group
		idx := map[fsa.StateID]int{}
		for _, e := range edges {
			gi, ok := idx[e.Dest]
			if !ok {
				gi = len(groups)
				idx[e.Dest] = gi
				groups = append(groups, group{to: e.Dest})
			}
			groups[gi].ranges = append(groups[gi].ranges, e.Range)
		}
		for _, g := range groups {
			transitions = append(transitions, Transition{
				From:    fsa.StateID(u),
				To:      g.to,
				Ranges:  g.ranges,
				Actions: classify(arena, within[u], within[g.to], stmt.Module.Actions),
			})
		}
	}
	return &ActionTable{Stmt: stmt, Transitions: transitions, Within: within}
}

// computeWithin builds, for every state, the deduplicated set of
// expression-tree ancestors covering it: each (expr, tag) in the
// state's annotation bag contributes every ancestor from expr up to
// (but excluding) its LCA with the previously processed bag entry, so
// the same ancestor is never walked twice across a state's whole bag.
func computeWithin(arena *ast.Arena, a *afsa.AFSA) [][]WithinEntry {
	n := a.NumStates()
	within := make([][]WithinEntry, n)
	for u := 0; u < n; u++ {
		bag := append([]afsa.AssocEntry(nil), a.Assoc[u]...)
		sort.Slice(bag, func(i, j int) bool { return afsa.LessByPre(arena, bag[i], bag[j]) })

		var result []WithinEntry
		last := ast.NoExpr
		for _, aa := range bag {
			stop := ast.NoExpr
			if last != ast.NoExpr {
				stop = FindLCA(arena, last, aa.Expr)
			}
			last = aa.Expr
			for x := aa.Expr; x != stop; x = arena.Get(x).Parent() {
				result = append(result, WithinEntry{Expr: x, Tag: aa.Tag})
			}
		}
		sort.Slice(result, func(i, j int) bool { return result[i].Expr < result[j].Expr })
		within[u] = result
	}
	return within
}

// classify compares the within-sets of an edge's source and
// destination state to produce the four action buckets: leaving =
// within(u) minus within(v), entering = within(v) minus within(u),
// transiting = their intersection, and finishing = the intersection
// restricted to entries whose within(v) tag marks a subtree final.
func classify(arena *ast.Arena, wu, wv []WithinEntry, actions map[string]string) ActionBucket {
	var out ActionBucket
	i, j := 0, 0
	for i < len(wu) {
		switch {
		case j >= len(wv) || wu[i].Expr < wv[j].Expr:
			out.Leaving = append(out.Leaving, resolveAll(arena.Get(wu[i].Expr).Leaving, actions)...)
			i++
		case wu[i].Expr > wv[j].Expr:
			out.Entering = append(out.Entering, resolveAll(arena.Get(wv[j].Expr).Entering, actions)...)
			j++
		default:
			e := arena.Get(wv[j].Expr)
			out.Transiting = append(out.Transiting, resolveAll(e.Transiting, actions)...)
			if wv[j].Tag.Has(afsa.TagFinal) {
				out.Finishing = append(out.Finishing, resolveAll(e.Finishing, actions)...)
			}
			i++
			j++
		}
	}
	for j < len(wv) {
		out.Entering = append(out.Entering, resolveAll(arena.Get(wv[j].Expr).Entering, actions)...)
		j++
	}
	return out
}

func resolveAll(list []ast.Action, actions map[string]string) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Resolve(actions)
	}
	return out
}
