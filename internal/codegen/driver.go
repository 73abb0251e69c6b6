package codegen

import "github.com/dave/jennifer/jen"

// EmitDriver renders a standalone main function that feeds its argument
// (if given on argv) or stdin, read one byte at a time and stopping the
// moment the machine goes dead, into the "main" export's transit
// function, then reports the resulting length, state, and finality. It
// assumes a nonterminal literally named "main" was compiled into this
// file.
func EmitDriver(f *jen.File) {
	f.Func().Id("main").Params().Block(
		jen.List(jen.Id(StateParamName), jen.Id("finals")).Op(":=").Id(InitFuncName("main")).Call(),
		jen.Id("length").Op(":=").Lit(0),

		jen.If(jen.Len(jen.Qual("os", "Args")).Op(">").Lit(1)).Block(
			jen.For(jen.List(jen.Id("_"), jen.Id("b")).Op(":=").Range().Index().Byte().Call(jen.Qual("os", "Args").Index(jen.Lit(1)))).Block(
				jen.Id(StateParamName).Op("=").Id(TransitFuncName("main")).Call(jen.Id(StateParamName), jen.Int().Call(jen.Id("b"))),
				jen.If(jen.Id(StateParamName).Op("<").Lit(0)).Block(jen.Break()),
				jen.Id("length").Op("++"),
			),
		).Else().Block(
			jen.Id("r").Op(":=").Qual("bufio", "NewReader").Call(jen.Qual("os", "Stdin")),
			jen.For().Block(
				jen.List(jen.Id("b"), jen.Id("err")).Op(":=").Id("r").Dot("ReadByte").Call(),
				jen.If(jen.Id("err").Op("!=").Nil()).Block(jen.Break()),
				jen.Id(StateParamName).Op("=").Id(TransitFuncName("main")).Call(jen.Id(StateParamName), jen.Int().Call(jen.Id("b"))),
				jen.If(jen.Id(StateParamName).Op("<").Lit(0)).Block(jen.Break()),
				jen.Id("length").Op("++"),
			),
		),

		jen.Qual("fmt", "Printf").Call(
			jen.Lit("len: %d\nstate: %d\nfinal: %t\n"),
			jen.Id("length"),
			jen.Id(StateParamName),
			jen.Id(finalFuncName("main")).Call(jen.Id(StateParamName), jen.Id("finals")),
		),
	)
}
