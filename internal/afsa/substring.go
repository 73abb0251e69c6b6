package afsa

import "github.com/yanshi-lang/yanshi/internal/fsa"

// SubstringGrammar transforms a non-deterministic AFSA so that it
// accepts every substring of the original language: a fresh start
// state gets an epsilon edge to every original state, and every
// original state becomes final. Subsequent determinize+minimize collapse
// the epsilon fan-out into a single canonical start state, per S6.
func SubstringGrammar(a *AFSA) *AFSA {
	out := clone(a)
	n := out.NumStates()
	start := out.NewState()
	for s := 0; s < n; s++ {
		out.Fsa.AddEdge(start, fsa.Epsilon, fsa.Epsilon+1, fsa.StateID(s))
		out.Fsa.Finals = append(out.Fsa.Finals, fsa.StateID(s))
	}
	out.Fsa.Start = start
	out.Fsa.SortFinals()
	out.checkInvariants()
	return out
}
