package codegen

import "fmt"

// Header returns the declaration-only signatures (bodies omitted) of
// lhs's init/transit function pair, for a caller building a separate
// header stream alongside the generated body.
func Header(lhs string) string {
	return fmt.Sprintf(
		"func %s() (int, []int)\nfunc %s(%s int, %s int) int\n",
		InitFuncName(lhs), TransitFuncName(lhs), StateParamName, SymbolParamName,
	)
}
