// Package codegen provides code generation helpers and naming conventions
// shared by the transition-table, init-function, dot, and standalone-driver
// emitters.
package codegen

import "fmt"

// Variable names used inside emitted transition/init functions.
const (
	StateParamName  = "u"
	SymbolParamName = "c"
	NextStateName   = "v"
	StartVarName    = "start"
	FinalsVarName   = "finals"
	InputName       = "input"
	OffsetName      = "offset"
)

// NoTransition is the sentinel value returned by a generated transit
// function when no outgoing edge matches the given symbol.
const NoTransition = -1

// InitFuncName returns the emitted name of the init function for lhs,
// e.g. "YanshiMainInit".
func InitFuncName(lhs string) string {
	return fmt.Sprintf("Yanshi%sInit", UpperFirst(lhs))
}

// TransitFuncName returns the emitted name of the transition function for
// lhs, e.g. "YanshiMainTransit".
func TransitFuncName(lhs string) string {
	return fmt.Sprintf("Yanshi%sTransit", UpperFirst(lhs))
}

// LowerFirst converts the first character of s to lowercase.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}

// UpperFirst converts the first character of s to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]&^0x20) + s[1:]
}
