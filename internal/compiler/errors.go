package compiler

import (
	"fmt"

	"github.com/yanshi-lang/yanshi/internal/ast"
)

// ErrorKind classifies a compilation failure per the four-kind taxonomy
// this module's error handling follows (malformed input, unresolved
// action reference, internal invariant violation, collapse cycle). Only
// the first and third surface as *Error; an unresolved action reference
// resolves silently to "" and a collapse cycle is absorbed by the
// allocation memo as an epsilon loop determinization resolves on its
// own, so neither kind constructs one of these.
type ErrorKind int

const (
	// KindMalformedInput covers a Module that violates a precondition
	// this compiler assumes rather than checks at its own boundary: an
	// unresolved collapse slot, an Embed node with no registered
	// sub-machine, an unknown Expr.Kind.
	KindMalformedInput ErrorKind = iota
	// KindInvariant covers a checkInvariants panic recovered at the
	// pkg/yanshi boundary (debugAssertions builds only).
	KindInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedInput:
		return "malformed input"
	case KindInvariant:
		return "internal invariant violation"
	default:
		return "unknown"
	}
}

// Error reports a failure compiling one exported nonterminal.
type Error struct {
	Stmt *ast.DefineStmt
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	lhs := "<unknown>"
	if e.Stmt != nil {
		lhs = e.Stmt.Lhs
	}
	return fmt.Sprintf("yanshi: compiling %q: %s: %s", lhs, e.Kind, e.Msg)
}
