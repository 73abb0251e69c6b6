//go:build debugAssertions

package afsa

import "github.com/yanshi-lang/yanshi/internal/fsa"

// checkInvariants panics if a violates the data-model invariants:
// start/finals reference valid states, edges target valid states, and
// no edge range straddles AB without being an intentional special
// symbol. Compiled in only under the debugAssertions build tag; elided
// entirely in release builds.
func (a *AFSA) checkInvariants() {
	n := a.NumStates()
	if int(a.Fsa.Start) >= n {
		panic("afsa: start state out of range")
	}
	for _, f := range a.Fsa.Finals {
		if int(f) >= n {
			panic("afsa: final state out of range")
		}
	}
	for u, edges := range a.Fsa.Adj {
		for _, e := range edges {
			if int(e.Dest) >= n {
				panic("afsa: edge destination out of range")
			}
			if e.Range.Lo >= e.Range.Hi {
				panic("afsa: empty or inverted edge range")
			}
			if e.Range.Lo < fsa.AB && e.Range.Hi > fsa.AB {
				panic("afsa: edge range straddles AB without an explicit split")
			}
			_ = u
		}
	}
}
