package compiler

import (
	"github.com/yanshi-lang/yanshi/internal/afsa"
	"github.com/yanshi-lang/yanshi/internal/ast"
	"github.com/yanshi-lang/yanshi/internal/fsa"
)

// collapseBuilder assembles the composite machine CompileExport needs:
// one big adjacency built by recursively laying out every DefineStmt
// reachable through Collapse edges.
type collapseBuilder struct {
	ctx     *Context
	adj     [][]fsa.Edge
	assoc   [][]afsa.AssocEntry
	offsets map[*ast.DefineStmt]fsa.StateID
	own     map[*ast.DefineStmt]*afsa.AFSA
}

// allocate lays stmt's compiled machine into the composite adjacency,
// followed by one completion vertex, then resolves every collapse edge
// reachable from it (recursively allocating whatever those edges point
// at). It is a no-op if stmt was already allocated.
//
// A collapse edge's symbol never sits adjacent to a real byte range
// (the reserved Epsilon symbol is deliberately a one-wide gap between
// [0,AB) and the collapse slots), so no edge can ever straddle that
// boundary; this lets the resolution loop below treat every
// special-range edge uniformly instead of truncating a partially-real
// edge.
func (cb *collapseBuilder) allocate(stmt *ast.DefineStmt) {
	if _, ok := cb.offsets[stmt]; ok {
		return
	}
	anno := Compile(cb.ctx, stmt)
	old := fsa.StateID(len(cb.adj))
	cb.offsets[stmt] = old
	cb.own[stmt] = anno

	n := anno.NumStates()
	for i := 0; i < n; i++ {
		src := anno.Fsa.Adj[i]
		rebased := make([]fsa.Edge, len(src))
		for j, e := range src {
			rebased[j] = fsa.Edge{Range: e.Range, Dest: e.Dest + old}
		}
		cb.adj = append(cb.adj, rebased)
		cb.assoc = append(cb.assoc, append([]afsa.AssocEntry(nil), anno.Assoc[i]...))
	}
	// the completion vertex for stmt: not itself a reachable state of
	// stmt's own machine, but reserved so that a future collapse of some
	// other nonterminal onto stmt keeps a stable offset to build from.
	cb.adj = append(cb.adj, nil)
	cb.assoc = append(cb.assoc, nil)

	for i := 0; i < n; i++ {
		global := old + fsa.StateID(i)
		cb.resolveCollapseEdges(global)
	}
}

// resolveCollapseEdges rewrites every collapse-slot edge leaving global
// into epsilon entry/return edges around the referenced nonterminal's
// machine, then drops the collapse edges themselves.
func (cb *collapseBuilder) resolveCollapseEdges(global fsa.StateID) {
	edges := cb.adj[global]
	originalLen := len(edges)
	kept := edges[:0:0]
	for _, e := range edges {
		if e.Range.Lo < fsa.CollapseSlotBase {
			kept = append(kept, e)
			continue
		}
		slot := e.Range.Lo - fsa.CollapseSlotBase
		node, ok := cb.ctx.collapseBySlot[slot]
		if !ok {
			panic("compiler: unresolved collapse slot")
		}
		target := node.Target
		cb.allocate(target)
		tAnno := cb.own[target]
		tOld := cb.offsets[target]

		// enter: global -eps-> target's start.
		kept = append(kept, fsa.Edge{
			Range: fsa.Range{Lo: fsa.Epsilon, Hi: fsa.Epsilon + 1},
			Dest:  tOld + tAnno.Fsa.Start,
		})
		// return: every final of target -eps-> v, the collapse edge's
		// own destination, resuming where the caller left off.
		for _, f := range tAnno.Fsa.Finals {
			g := tOld + f
			cb.adj[g] = append(cb.adj[g], fsa.Edge{
				Range: fsa.Range{Lo: fsa.Epsilon, Hi: fsa.Epsilon + 1},
				Dest:  e.Dest,
			})
		}
	}
	// A collapse edge that resolves back to stmt's own machine (direct
	// self-reference) appends its return edge straight onto cb.adj[global]
	// while this loop is still running, past the snapshot in edges; carry
	// any such tail forward instead of letting the kept-edges reassignment
	// below discard it.
	if tail := cb.adj[global][originalLen:]; len(tail) > 0 {
		kept = append(kept, tail...)
	}
	cb.adj[global] = kept
}

// CompileExport builds the fully expanded, standalone machine for an
// exported nonterminal: every Collapse leaf it (transitively) uses is
// inlined, reserved symbols are gone, and the result is determinized,
// minimized, and pruned to its accessible and co-accessible core.
// substringGrammar, when set, additionally expands every non-intact
// export to accept every substring of its language before the final
// determinize/minimize pass.
func CompileExport(ctx *Context, stmt *ast.DefineStmt, substringGrammar bool) *afsa.AFSA {
	cb := &collapseBuilder{
		ctx:     ctx,
		offsets: map[*ast.DefineStmt]fsa.StateID{},
		own:     map[*ast.DefineStmt]*afsa.AFSA{},
	}
	cb.allocate(stmt)

	base := cb.own[stmt]
	off := cb.offsets[stmt]
	out := &afsa.AFSA{
		Arena: stmt.Module.Arena,
		Fsa:   fsa.FSA{Adj: cb.adj, Start: off + base.Fsa.Start},
		Assoc: cb.assoc,
	}
	for _, f := range base.Fsa.Finals {
		out.Fsa.Finals = append(out.Fsa.Finals, off+f)
	}
	out.Fsa.SortFinals()

	if substringGrammar && !stmt.Intact {
		out = afsa.SubstringGrammar(out)
	}

	out = afsa.Determinize(out)
	out = afsa.Minimize(out)
	out = afsa.Accessible(out)
	out = afsa.CoAccessible(out)
	return out
}
