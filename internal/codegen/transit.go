package codegen

import (
	"github.com/dave/jennifer/jen"

	"github.com/yanshi-lang/yanshi/internal/compiler"
	"github.com/yanshi-lang/yanshi/internal/fsa"
)

// EmitTransit renders the dense transition function for lhs's compiled
// machine into f: a switch on the current state, each case a further
// switch on the input symbol whose cases run the entering, leaving,
// transiting, and finishing action bodies synthesized by component E
// before updating the state. Go's switch has no range-case syntax, so
// each symbol range becomes a boolean guard instead.
func EmitTransit(f *jen.File, lhs string, table *compiler.ActionTable) {
	byState := map[fsa.StateID][]compiler.Transition{}
	var states []fsa.StateID
	for _, t := range table.Transitions {
		if _, ok := byState[t.From]; !ok {
			states = append(states, t.From)
		}
		byState[t.From] = append(byState[t.From], t)
	}

	var stateCases []jen.Code
	for _, u := range states {
		stateCases = append(stateCases, jen.Case(jen.Lit(int(u))).Block(
			jen.Id(NextStateName).Op("=").Lit(NoTransition),
			jen.Switch().Block(symbolCases(byState[u])...),
		))
	}

	f.Comment(TransitFuncName(lhs) + " returns the next state reached from u on input symbol c,")
	f.Comment("running every action the transition crosses, or codegen.NoTransition if c has no edge from u.")
	f.Func().Id(TransitFuncName(lhs)).Params(
		jen.Id(StateParamName).Int(),
		jen.Id(SymbolParamName).Int(),
	).Int().Block(
		jen.Var().Id(NextStateName).Op("=").Lit(NoTransition),
		jen.Switch(jen.Id(StateParamName)).Block(stateCases...),
		jen.Return(jen.Id(NextStateName)),
	)
	f.Line()
}

// symbolCases renders one case per destination state reachable from a
// single source state, guarded by the disjunction of its symbol ranges.
func symbolCases(transitions []compiler.Transition) []jen.Code {
	var cases []jen.Code
	for _, t := range transitions {
		body := []jen.Code{}
		for _, code := range t.Actions.Leaving {
			body = append(body, jen.Block(jen.Op(code)))
		}
		for _, code := range t.Actions.Entering {
			body = append(body, jen.Block(jen.Op(code)))
		}
		for _, code := range t.Actions.Transiting {
			body = append(body, jen.Block(jen.Op(code)))
		}
		for _, code := range t.Actions.Finishing {
			body = append(body, jen.Block(jen.Op(code)))
		}
		body = append(body, jen.Id(NextStateName).Op("=").Lit(int(t.To)))
		cases = append(cases, jen.Case(rangeGuard(t.Ranges)).Block(body...))
	}
	return cases
}

// rangeGuard renders "lo1 <= c && c < hi1 || lo2 <= c && c < hi2 || ..."
// for the ranges that share one destination.
func rangeGuard(ranges []fsa.Range) jen.Code {
	var guard jen.Code
	for _, r := range ranges {
		var clause jen.Code
		if r.Hi == r.Lo+1 {
			clause = jen.Id(SymbolParamName).Op("==").Lit(r.Lo)
		} else {
			clause = jen.Lit(r.Lo).Op("<=").Id(SymbolParamName).Op("&&").Id(SymbolParamName).Op("<").Lit(r.Hi)
		}
		if guard == nil {
			guard = clause
		} else {
			guard = jen.Add(guard).Op("||").Add(clause)
		}
	}
	return guard
}
