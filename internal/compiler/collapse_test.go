package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yanshi-lang/yanshi/internal/afsa"
	"github.com/yanshi-lang/yanshi/internal/ast"
	"github.com/yanshi-lang/yanshi/internal/fsa"
)

func accepts(a *afsa.AFSA, s string) bool {
	cur := a.Fsa.Start
	for i := 0; i < len(s); i++ {
		next := fsa.StateID(-1)
		for _, e := range a.Fsa.Adj[cur] {
			if e.Range.Lo <= int(s[i]) && int(s[i]) < e.Range.Hi {
				next = e.Dest
				break
			}
		}
		if next < 0 {
			return false
		}
		cur = next
	}
	return a.Fsa.IsFinal(cur)
}

// selfRecursiveModule builds x = "done" | "a" x, a directly
// self-referential nonterminal, the case resolveCollapseEdges must
// handle without losing the return edge it appends mid-allocation.
func selfRecursiveModule(t *testing.T) *ast.DefineStmt {
	t.Helper()
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena}
	stmt := &ast.DefineStmt{Lhs: "x", Export: true, Module: mo}

	done := arena.New(ast.Expr{Kind: ast.KindLiteral, Literal: []byte("done"), Lhs: ast.NoExpr, Rhs: ast.NoExpr})
	a := arena.New(ast.Expr{Kind: ast.KindLiteral, Literal: []byte("a"), Lhs: ast.NoExpr, Rhs: ast.NoExpr})
	collapse := arena.New(ast.NewCollapse(stmt))
	aX := arena.New(ast.Expr{Kind: ast.KindConcat, Lhs: a, Rhs: collapse})
	root := arena.New(ast.Expr{Kind: ast.KindUnion, Lhs: done, Rhs: aX})

	stmt.Rhs = root
	mo.Stmts = []*ast.DefineStmt{stmt}
	return stmt
}

func TestCompileExportResolvesSelfReferentialCollapse(t *testing.T) {
	stmt := selfRecursiveModule(t)
	out := CompileExport(NewContext(nil), stmt, false)

	assert.True(t, accepts(out, "done"))
	assert.True(t, accepts(out, "adone"))
	assert.True(t, accepts(out, "aaaadone"))
	assert.False(t, accepts(out, "a"))
	assert.False(t, accepts(out, ""))
}

func TestCompileExportIsIdempotentAcrossCalls(t *testing.T) {
	stmt := selfRecursiveModule(t)
	ctx := NewContext(nil)

	first := CompileExport(ctx, stmt, false)
	second := CompileExport(ctx, stmt, false)

	assert.Equal(t, first.NumStates(), second.NumStates())
	for _, s := range []string{"done", "adone", "aadone"} {
		assert.Equal(t, accepts(first, s), accepts(second, s))
	}
}

// mutuallyRecursiveModule builds y = "b" z, z = "c" y | "stop", a pair
// of nonterminals whose collapse edges resolve through each other.
func mutuallyRecursiveModule(t *testing.T) (*ast.DefineStmt, *ast.DefineStmt) {
	t.Helper()
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena}
	y := &ast.DefineStmt{Lhs: "y", Export: true, Module: mo}
	z := &ast.DefineStmt{Lhs: "z", Export: true, Module: mo}

	b := arena.New(ast.Expr{Kind: ast.KindLiteral, Literal: []byte("b"), Lhs: ast.NoExpr, Rhs: ast.NoExpr})
	collapseZ := arena.New(ast.NewCollapse(z))
	y.Rhs = arena.New(ast.Expr{Kind: ast.KindConcat, Lhs: b, Rhs: collapseZ})

	c := arena.New(ast.Expr{Kind: ast.KindLiteral, Literal: []byte("c"), Lhs: ast.NoExpr, Rhs: ast.NoExpr})
	collapseY := arena.New(ast.NewCollapse(y))
	cY := arena.New(ast.Expr{Kind: ast.KindConcat, Lhs: c, Rhs: collapseY})
	stop := arena.New(ast.Expr{Kind: ast.KindLiteral, Literal: []byte("stop"), Lhs: ast.NoExpr, Rhs: ast.NoExpr})
	z.Rhs = arena.New(ast.Expr{Kind: ast.KindUnion, Lhs: stop, Rhs: cY})

	mo.Stmts = []*ast.DefineStmt{y, z}
	return y, z
}

func TestCompileExportResolvesMutualRecursion(t *testing.T) {
	y, _ := mutuallyRecursiveModule(t)
	ctx := NewContext(nil)
	out := CompileExport(ctx, y, false)

	assert.True(t, accepts(out, "bstop"))
	assert.True(t, accepts(out, "bcbstop"))
	assert.False(t, accepts(out, "b"))
}
