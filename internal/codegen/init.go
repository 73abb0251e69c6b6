package codegen

import (
	"github.com/dave/jennifer/jen"

	"github.com/yanshi-lang/yanshi/internal/afsa"
)

// EmitInit renders the init function for lhs's compiled machine: it
// returns the start state and the ordered (ascending) list of final
// states, the two pieces of state a generated driver loop needs besides
// the transition function itself. Finals come out of afsa already
// sorted (Determinize/Minimize call Fsa.SortFinals), so the list a
// caller gets back is fit for binary search without any extra sorting.
func EmitInit(f *jen.File, lhs string, a *afsa.AFSA) {
	finals := make([]jen.Code, len(a.Fsa.Finals))
	for i, s := range a.Fsa.Finals {
		finals[i] = jen.Lit(int(s))
	}
	f.Comment(InitFuncName(lhs) + " returns the start state and the ordered list of final states of lhs's compiled machine.")
	f.Func().Id(InitFuncName(lhs)).Params().Params(jen.Int(), jen.Index().Int()).Block(
		jen.Return(jen.Lit(int(a.Fsa.Start)), jen.Index().Int().Values(finals...)),
	)
	f.Line()

	f.Comment(finalFuncName(lhs) + " reports whether u appears in finals (as returned by " + InitFuncName(lhs) + "), by binary search.")
	f.Func().Id(finalFuncName(lhs)).Params(jen.Id(StateParamName).Int(), jen.Id("finals").Index().Int()).Bool().Block(
		jen.Id("i").Op(":=").Qual("sort", "SearchInts").Call(jen.Id("finals"), jen.Id(StateParamName)),
		jen.Return(jen.Id("i").Op("<").Len(jen.Id("finals")).Op("&&").Id("finals").Index(jen.Id("i")).Op("==").Id(StateParamName)),
	)
	f.Line()
}

func finalFuncName(lhs string) string {
	return "Yanshi" + UpperFirst(lhs) + "IsFinal"
}
