// Package compiler implements the expression-tree compiler (component
// C), the collapse expander (component D), and the action synthesizer
// (component E): everything that turns a parsed ast.Module into
// per-statement AFSAs and their transition action programs.
package compiler

import (
	"github.com/yanshi-lang/yanshi/internal/afsa"
	"github.com/yanshi-lang/yanshi/internal/ast"
)

// Context is the explicitly-passed compilation context: the stmt→AFSA
// cache and the collapse-slot allocator. Owned by the driver and passed
// through every call instead of living as hidden package-level state.
type Context struct {
	cache          map[*ast.DefineStmt]*afsa.AFSA
	nextSlot       int
	collapseBySlot map[int]*ast.Expr
	embeds         map[*ast.Expr]*afsa.AFSA
	Logger         *Logger
}

// NewContext returns a fresh, empty compilation context.
func NewContext(logger *Logger) *Context {
	if logger == nil {
		logger = NewLogger(false)
	}
	return &Context{
		cache:          map[*ast.DefineStmt]*afsa.AFSA{},
		collapseBySlot: map[int]*ast.Expr{},
		embeds:         map[*ast.Expr]*afsa.AFSA{},
		Logger:         logger,
	}
}

// WithEmbed registers the sub-machine a KindEmbed node should copy in
// verbatim when ctx compiles it. Embedding wraps a foreign
// automaton built outside this module's own expression tree, so there
// is no natural field on ast.Expr for it without ast depending on afsa;
// this keeps that dependency one-directional while still avoiding
// package-level mutable state.
func WithEmbed(ctx *Context, e *ast.Expr, m *afsa.AFSA) {
	ctx.embeds[e] = m
}

// Compile builds (or returns the cached) AFSA for stmt.Rhs: a post-order
// structural traversal of the expression tree producing one AFSA via a
// value stack, immediately determinized and minimized. Cache insertion
// happens once per stmt; later calls short-circuit.
func Compile(ctx *Context, stmt *ast.DefineStmt) *afsa.AFSA {
	if cached, ok := ctx.cache[stmt]; ok {
		return cached
	}
	ec := &exprCompiler{ctx: ctx, arena: stmt.Module.Arena}
	result := ec.visit(stmt.Rhs)
	result = afsa.Determinize(result)
	result = afsa.Minimize(result)
	ctx.Logger.MachineStats(stmt, result)
	ctx.cache[stmt] = result
	return result
}

// exprCompiler holds the transient state scoped to one Compile call: the
// Euler-tour tick counter, the ancestor path stack used to fill anc[],
// and (implicitly, via Go's call stack) the value stack of component C.
type exprCompiler struct {
	ctx   *Context
	arena *ast.Arena
	tick  int
	path  []ast.ExprID
}

// preVisit assigns pre, depth, and the binary-lifted ancestor table by
// doubling from the parent, then pushes id onto the path stack.
func (ec *exprCompiler) preVisit(id ast.ExprID) {
	e := ec.arena.Get(id)
	e.Pre = ec.tick
	ec.tick++
	e.Depth = len(ec.path)
	if len(ec.path) > 0 {
		parent := ec.path[len(ec.path)-1]
		e.Anc = []ast.ExprID{parent}
		for k := 1; 1<<k <= e.Depth; k++ {
			prev := e.Anc[k-1]
			if prev == ast.NoExpr {
				break
			}
			e.Anc = append(e.Anc, nthAnc(ec.arena.Get(prev), k-1))
		}
	} else {
		e.Anc = []ast.ExprID{ast.NoExpr}
	}
	ec.path = append(ec.path, id)
}

// postVisit pops the path stack and records post = tick (tick is not
// bumped again on post).
func (ec *exprCompiler) postVisit(id ast.ExprID) {
	ec.path = ec.path[:len(ec.path)-1]
	ec.arena.Get(id).Post = ec.tick
}

// nthAnc returns Anc[k] or NoExpr if the table is too short, used while
// filling in a descendant's own doubling table.
func nthAnc(e *ast.Expr, k int) ast.ExprID {
	if k >= len(e.Anc) {
		return ast.NoExpr
	}
	return e.Anc[k]
}

// visit performs the post-order structural recursion: binary nodes
// visit rhs, set it aside, visit lhs, then apply the combinator to
// both. After visiting node N, exactly one more AFSA exists than before
// the call, returned directly here rather than threaded through an
// explicit value stack, since Go's own call stack already gives the
// same LIFO discipline.
func (ec *exprCompiler) visit(id ast.ExprID) *afsa.AFSA {
	ec.preVisit(id)
	defer ec.postVisit(id)

	e := ec.arena.Get(id)
	var out *afsa.AFSA
	switch e.Kind {
	case ast.KindBracket:
		out = afsa.Bracket(ec.arena, id, e.Ranges)
	case ast.KindLiteral:
		out = afsa.Literal(ec.arena, id, e.Literal)
	case ast.KindDot:
		out = afsa.Dot(ec.arena, id)
	case ast.KindEpsilon:
		out = afsa.Epsilon(ec.arena, id)
	case ast.KindEmbed:
		out = afsa.Embed(ec.arena, id, ec.embedded(e))
	case ast.KindCollapse:
		if e.Slot < 0 {
			e.Slot = ec.ctx.nextSlot
			ec.ctx.nextSlot++
			ec.ctx.collapseBySlot[e.Slot] = e
		}
		out = afsa.Collapse(ec.arena, id, e.Slot)
	case ast.KindStar:
		out = afsa.Star(ec.arena, id, ec.visit(e.Lhs))
	case ast.KindPlus:
		out = afsa.Plus(ec.arena, id, ec.visit(e.Lhs))
	case ast.KindQuestion:
		out = afsa.Question(ec.arena, id, ec.visit(e.Lhs))
	case ast.KindRepeat:
		out = afsa.Repeat(ec.arena, id, ec.visit(e.Lhs), e.Min, e.Max)
	case ast.KindComplement:
		out = afsa.Complement(ec.arena, id, ec.visit(e.Lhs))
	case ast.KindConcat:
		rhs := ec.visit(e.Rhs)
		lhs := ec.visit(e.Lhs)
		out = afsa.Concat(ec.arena, id, lhs, rhs)
	case ast.KindUnion:
		rhs := ec.visit(e.Rhs)
		lhs := ec.visit(e.Lhs)
		out = afsa.Union(ec.arena, id, lhs, rhs)
	case ast.KindIntersect:
		rhs := ec.visit(e.Rhs)
		lhs := ec.visit(e.Lhs)
		out = afsa.Intersect(ec.arena, id, lhs, rhs)
	case ast.KindDifference:
		rhs := ec.visit(e.Rhs)
		lhs := ec.visit(e.Lhs)
		out = afsa.Difference(ec.arena, id, lhs, rhs)
	default:
		panic("compiler: unknown expression kind")
	}
	return out
}

// embedded resolves a KindEmbed node's externally-built sub-machine,
// registered out of band via WithEmbed before compiling.
func (ec *exprCompiler) embedded(e *ast.Expr) *afsa.AFSA {
	m, ok := ec.ctx.embeds[e]
	if !ok {
		panic("compiler: Embed node has no registered sub-machine")
	}
	return m
}
