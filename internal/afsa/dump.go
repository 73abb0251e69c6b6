package afsa

import (
	"fmt"
	"io"
)

// DumpAutomaton writes a human-readable rendering of the machine's
// start state, finals, and coalesced edge list.
func (a *AFSA) DumpAutomaton(w io.Writer) {
	fmt.Fprintf(w, "start: %d\n", a.Fsa.Start)
	fmt.Fprintf(w, "finals:")
	for _, f := range a.Fsa.Finals {
		fmt.Fprintf(w, " %d", f)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "edges:")
	for u, edges := range a.Fsa.Adj {
		fmt.Fprintf(w, "%d:", u)
		for _, e := range edges {
			if e.Range.Hi == e.Range.Lo+1 {
				fmt.Fprintf(w, " (%d,%d)", e.Range.Lo, e.Dest)
			} else {
				fmt.Fprintf(w, " (%d-%d,%d)", e.Range.Lo, e.Range.Hi-1, e.Dest)
			}
		}
		fmt.Fprintln(w)
	}
}

// DumpAssoc writes each state's annotation bag on one line, each entry
// rendered by nameOf. nameOf lets the caller choose how an entry is
// shown without this package depending on the ast action-list shape
// beyond what it already imports.
func (a *AFSA) DumpAssoc(w io.Writer, nameOf func(entry AssocEntry) string) {
	for u := range a.Assoc {
		fmt.Fprintf(w, "%d:", u)
		for _, e := range a.Assoc[u] {
			fmt.Fprintf(w, " %s", nameOf(e))
		}
		fmt.Fprintln(w)
	}
}
