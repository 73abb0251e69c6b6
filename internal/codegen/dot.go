package codegen

import (
	"fmt"
	"io"

	"github.com/yanshi-lang/yanshi/internal/afsa"
	"github.com/yanshi-lang/yanshi/internal/fsa"
)

// EmitDot renders a's compiled machine as a Graphviz digraph named
// name: finals as filled double circles, the start state in orchid
// (doubled if it is itself final), every other state a plain black
// circle, and one edge per (source, destination) pair labeled with its
// merged, comma-separated symbol ranges.
func EmitDot(w io.Writer, name string, a *afsa.AFSA) {
	fmt.Fprintf(w, "digraph %q {\n", name)

	startIsFinal := false
	fmt.Fprint(w, "  node[shape=doublecircle,color=olivedrab1,style=filled,fontname=Monospace];")
	for _, f := range a.Fsa.Finals {
		if f == a.Fsa.Start {
			startIsFinal = true
			continue
		}
		fmt.Fprintf(w, " %d", f)
	}
	fmt.Fprintln(w)

	if startIsFinal {
		fmt.Fprint(w, "  node[shape=doublecircle,color=orchid];")
	} else {
		fmt.Fprint(w, "  node[shape=circle,color=orchid];")
	}
	fmt.Fprintf(w, " %d\n", a.Fsa.Start)

	fmt.Fprintln(w, `  node[shape=circle,color=black,style=""]`)

	for u := 0; u < a.NumStates(); u++ {
		labels := map[fsa.StateID]string{}
		var order []fsa.StateID
		for _, e := range a.Fsa.Adj[u] {
			if _, ok := labels[e.Dest]; !ok {
				order = append(order, e.Dest)
			}
			if labels[e.Dest] != "" {
				labels[e.Dest] += ","
			}
			if e.Range.Hi == e.Range.Lo+1 {
				labels[e.Dest] += fmt.Sprintf("%d", e.Range.Lo)
			} else {
				labels[e.Dest] += fmt.Sprintf("%d-%d", e.Range.Lo, e.Range.Hi-1)
			}
		}
		for _, dest := range order {
			fmt.Fprintf(w, "  %d -> %d[label=%q]\n", u, dest, labels[dest])
		}
	}

	fmt.Fprintln(w, "}")
}
