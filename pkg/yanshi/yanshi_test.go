package yanshi

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yanshi-lang/yanshi/internal/afsa"
	"github.com/yanshi-lang/yanshi/internal/ast"
	"github.com/yanshi-lang/yanshi/internal/compiler"
	"github.com/yanshi-lang/yanshi/internal/fsa"
)

// accepts walks a's deterministic transitions byte by byte.
func accepts(a *afsa.AFSA, s string) bool {
	cur := a.Fsa.Start
	for i := 0; i < len(s); i++ {
		next := step(a, cur, s[i])
		if next < 0 {
			return false
		}
		cur = next
	}
	return a.Fsa.IsFinal(cur)
}

func step(a *afsa.AFSA, u fsa.StateID, b byte) fsa.StateID {
	for _, e := range a.Fsa.Adj[u] {
		if e.Range.Lo <= int(b) && int(b) < e.Range.Hi {
			return e.Dest
		}
	}
	return -1
}

// isTotal reports whether every state of a has exactly one outgoing
// edge for every byte in [0, 256), the property S5 requires of a
// complemented machine.
func isTotal(a *afsa.AFSA) bool {
	for u := 0; u < a.NumStates(); u++ {
		for b := 0; b < fsa.AB; b++ {
			if step(a, fsa.StateID(u), byte(b)) < 0 {
				return false
			}
		}
	}
	return true
}

func literal(arena *ast.Arena, s string) ast.ExprID {
	return arena.New(ast.Expr{Kind: ast.KindLiteral, Literal: []byte(s), Lhs: ast.NoExpr, Rhs: ast.NoExpr})
}

// TestScenarioS1Alternation builds main = "ab" | "ac" exported with no
// actions, and checks the compiled DFA accepts exactly {"ab", "ac"}, per
// scenario.
func TestScenarioS1Alternation(t *testing.T) {
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena}
	ab := literal(arena, "ab")
	ac := literal(arena, "ac")
	root := arena.New(ast.Expr{Kind: ast.KindUnion, Lhs: ab, Rhs: ac})
	stmt := &ast.DefineStmt{Lhs: "main", Rhs: root, Export: true, Module: mo}
	mo.Stmts = []*ast.DefineStmt{stmt}

	out := compiler.CompileExport(compiler.NewContext(nil), stmt, false)

	assert.True(t, accepts(out, "ab"))
	assert.True(t, accepts(out, "ac"))
	assert.False(t, accepts(out, "ad"))
	assert.False(t, accepts(out, "a"))
	assert.False(t, accepts(out, "abc"))

	s1 := step(out, out.Fsa.Start, 'a')
	if assert.GreaterOrEqual(t, int(s1), 0, "transit(0, 'a') should reach a live state") {
		sb := step(out, s1, 'b')
		sc := step(out, s1, 'c')
		assert.GreaterOrEqual(t, int(sb), 0)
		assert.GreaterOrEqual(t, int(sc), 0)
		assert.NotEqual(t, sb, sc, "'b' and 'c' should reach distinct finals")
		assert.True(t, out.Fsa.IsFinal(sb))
		assert.True(t, out.Fsa.IsFinal(sc))
		assert.Equal(t, fsa.StateID(-1), step(out, s1, 'd'))
	}

	artifact, err := Compile(mo, Options{PackageName: "demo"})
	assert.NoError(t, err)
	assert.Contains(t, artifact.Source, "YanshiMainInit")
	assert.Contains(t, artifact.Source, "YanshiMainTransit")
}

// TestScenarioS2PlusOverBracketMinimizesToTwoStates builds
// main = [a-z]+ and checks the minimized DFA has exactly 2 states, per
// scenario.
func TestScenarioS2PlusOverBracketMinimizesToTwoStates(t *testing.T) {
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena}
	bracket := arena.New(ast.Expr{Kind: ast.KindBracket, Ranges: []ast.Range{{Lo: 'a', Hi: 'z' + 1}}, Lhs: ast.NoExpr, Rhs: ast.NoExpr})
	root := arena.New(ast.Expr{Kind: ast.KindPlus, Lhs: bracket, Rhs: ast.NoExpr})
	stmt := &ast.DefineStmt{Lhs: "main", Rhs: root, Export: true, Module: mo}
	mo.Stmts = []*ast.DefineStmt{stmt}

	out := compiler.CompileExport(compiler.NewContext(nil), stmt, false)

	assert.Equal(t, 2, out.NumStates())
	s1 := step(out, out.Fsa.Start, 'a')
	s2 := step(out, out.Fsa.Start, 'z')
	if assert.GreaterOrEqual(t, int(s1), 0) && assert.GreaterOrEqual(t, int(s2), 0) {
		assert.Equal(t, s1, s2, "'a' and 'z' should reach the same final from start")
		assert.True(t, out.Fsa.IsFinal(s1))
		assert.Equal(t, fsa.StateID(-1), step(out, s1, 'A'), "uppercase should not transition from the final")
	}
}

// TestScenarioS3EnteringAndLeavingFireOnBoundaryTransitions builds
// main = "x" ("a" >enter_a %leave_a)+ "y" and checks enter_a fires
// exactly once, on the transition crossing into the repeated literal's
// region, and leave_a fires exactly once, on the transition crossing
// back out of it; repeated 'a' self-transitions fire neither, per the
// entering/leaving/transiting partition for this scenario.
func TestScenarioS3EnteringAndLeavingFireOnBoundaryTransitions(t *testing.T) {
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena, Actions: map[string]string{
		"enter_a": "e();",
		"leave_a": "l();",
	}}
	x := literal(arena, "x")
	a := arena.New(ast.Expr{
		Kind: ast.KindLiteral, Literal: []byte("a"), Lhs: ast.NoExpr, Rhs: ast.NoExpr,
		Entering: []ast.Action{{Kind: ast.ActionRef, Ident: "enter_a"}},
		Leaving:  []ast.Action{{Kind: ast.ActionRef, Ident: "leave_a"}},
	})
	plus := arena.New(ast.Expr{Kind: ast.KindPlus, Lhs: a, Rhs: ast.NoExpr})
	y := literal(arena, "y")
	inner := arena.New(ast.Expr{Kind: ast.KindConcat, Lhs: x, Rhs: plus})
	root := arena.New(ast.Expr{Kind: ast.KindConcat, Lhs: inner, Rhs: y})
	stmt := &ast.DefineStmt{Lhs: "main", Rhs: root, Export: true, Module: mo}
	mo.Stmts = []*ast.DefineStmt{stmt}

	machine := compiler.CompileExport(compiler.NewContext(nil), stmt, false)
	table := compiler.CompileActions(stmt, machine)

	var entered, left int
	sawEnterCode, sawLeaveCode := false, false
	for _, tr := range table.Transitions {
		entered += len(tr.Actions.Entering)
		left += len(tr.Actions.Leaving)
		for _, c := range tr.Actions.Entering {
			if c == "e();" {
				sawEnterCode = true
			}
		}
		for _, c := range tr.Actions.Leaving {
			if c == "l();" {
				sawLeaveCode = true
			}
		}
	}
	assert.Equal(t, 1, entered)
	assert.Equal(t, 1, left)
	assert.True(t, sawEnterCode)
	assert.True(t, sawLeaveCode)

	assert.True(t, accepts(machine, "xay"))
	assert.True(t, accepts(machine, "xaaaay"))
	assert.False(t, accepts(machine, "xy"))
}

// TestScenarioS4CollapseExpandsNonIntactNonterminalTwice builds
// x = "foo" (non-intact); main = x x and checks main accepts exactly
// "foofoo".
func TestScenarioS4CollapseExpandsNonIntactNonterminalTwice(t *testing.T) {
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena}
	xStmt := &ast.DefineStmt{Lhs: "x", Rhs: literal(arena, "foo"), Export: false, Intact: false, Module: mo}
	c1 := arena.New(ast.NewCollapse(xStmt))
	c2 := arena.New(ast.NewCollapse(xStmt))
	root := arena.New(ast.Expr{Kind: ast.KindConcat, Lhs: c1, Rhs: c2})
	mainStmt := &ast.DefineStmt{Lhs: "main", Rhs: root, Export: true, Module: mo}
	mo.Stmts = []*ast.DefineStmt{xStmt, mainStmt}

	out := compiler.CompileExport(compiler.NewContext(nil), mainStmt, false)

	assert.True(t, accepts(out, "foofoo"))
	assert.False(t, accepts(out, "foo"))
	assert.False(t, accepts(out, "foofoobar"))
	assert.False(t, accepts(out, "foofo"))
}

// TestScenarioS5ComplementIsTotalOverTheFullAlphabet builds
// main = ~"bad" and checks it accepts every byte string except "bad"
// and never dead-ends (every state has an outgoing edge for every
// byte).
func TestScenarioS5ComplementIsTotalOverTheFullAlphabet(t *testing.T) {
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena}
	bad := literal(arena, "bad")
	root := arena.New(ast.Expr{Kind: ast.KindComplement, Lhs: bad, Rhs: ast.NoExpr})
	stmt := &ast.DefineStmt{Lhs: "main", Rhs: root, Export: true, Module: mo}
	mo.Stmts = []*ast.DefineStmt{stmt}

	out := compiler.CompileExport(compiler.NewContext(nil), stmt, false)

	assert.True(t, isTotal(out))
	assert.False(t, accepts(out, "bad"))
	assert.True(t, accepts(out, ""))
	assert.True(t, accepts(out, "good"))
	assert.True(t, accepts(out, "badx"))
	assert.True(t, accepts(out, "ba"))
}

// TestScenarioS6SubstringGrammarAcceptsEverySubstring builds main =
// "abc" compiled with the substring-grammar option and checks it
// accepts every substring of "abc", including the empty string.
func TestScenarioS6SubstringGrammarAcceptsEverySubstring(t *testing.T) {
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena}
	root := literal(arena, "abc")
	stmt := &ast.DefineStmt{Lhs: "main", Rhs: root, Export: true, Module: mo}
	mo.Stmts = []*ast.DefineStmt{stmt}

	out := compiler.CompileExport(compiler.NewContext(nil), stmt, true)

	word := "abc"
	for i := 0; i <= len(word); i++ {
		for j := i; j <= len(word); j++ {
			assert.True(t, accepts(out, word[i:j]), "substring %q should be accepted", word[i:j])
		}
	}
	assert.False(t, accepts(out, "abcd"))
	assert.False(t, accepts(out, "x"))

	reachable := reachableFrom(out, out.Fsa.Start)
	finalReaching := finalReachingStates(out)
	for s := 0; s < out.NumStates(); s++ {
		assert.True(t, reachable[fsa.StateID(s)], "state %d should be start-reachable", s)
		assert.True(t, finalReaching[fsa.StateID(s)], "state %d should be final-reachable", s)
	}
}

func reachableFrom(a *afsa.AFSA, start fsa.StateID) map[fsa.StateID]bool {
	seen := map[fsa.StateID]bool{start: true}
	stack := []fsa.StateID{start}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range a.Fsa.Adj[u] {
			if !seen[e.Dest] {
				seen[e.Dest] = true
				stack = append(stack, e.Dest)
			}
		}
	}
	return seen
}

func finalReachingStates(a *afsa.AFSA) map[fsa.StateID]bool {
	rev := make(map[fsa.StateID][]fsa.StateID)
	for u := 0; u < a.NumStates(); u++ {
		for _, e := range a.Fsa.Adj[u] {
			rev[e.Dest] = append(rev[e.Dest], fsa.StateID(u))
		}
	}
	seen := map[fsa.StateID]bool{}
	var stack []fsa.StateID
	for _, f := range a.Fsa.Finals {
		if !seen[f] {
			seen[f] = true
			stack = append(stack, f)
		}
	}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range rev[u] {
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return seen
}

// TestCompileRejectsModuleWithNoExports checks the public API's
// malformed-input guard fires before any compilation work happens.
func TestCompileRejectsModuleWithNoExports(t *testing.T) {
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena}
	_, err := Compile(mo, Options{PackageName: "demo"})
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "exports nothing"))
}

// TestSafeCompileExportTagsUnresolvedCollapseSlotAsMalformedInput builds
// a Collapse leaf with its Slot already set (bypassing the -1 convention
// NewCollapse uses, which is what lets the expression-tree compiler
// register it), so the collapse builder can never find it in the
// context's slot table. This is the precondition violation
// KindMalformedInput exists for, not an internal invariant failure.
func TestSafeCompileExportTagsUnresolvedCollapseSlotAsMalformedInput(t *testing.T) {
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena}
	target := &ast.DefineStmt{Lhs: "y", Module: mo}
	target.Rhs = literal(arena, "y")

	collapse := arena.New(ast.Expr{Kind: ast.KindCollapse, Target: target, Slot: 0, Lhs: ast.NoExpr, Rhs: ast.NoExpr})
	stmt := &ast.DefineStmt{Lhs: "x", Rhs: collapse, Export: true, Module: mo}
	mo.Stmts = []*ast.DefineStmt{stmt}

	_, err := Compile(mo, Options{PackageName: "demo"})
	assert.Error(t, err)
	var cerr *compiler.Error
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, compiler.KindMalformedInput, cerr.Kind)
}

// TestSafeCompileExportTagsUnknownExprKindAsMalformedInput builds a leaf
// with a Kind value the expression-tree compiler's switch has no case
// for, the other precondition violation KindMalformedInput covers.
func TestSafeCompileExportTagsUnknownExprKindAsMalformedInput(t *testing.T) {
	arena := ast.NewArena()
	mo := &ast.Module{Name: "t", Arena: arena}
	bogus := arena.New(ast.Expr{Kind: ast.Kind(999), Lhs: ast.NoExpr, Rhs: ast.NoExpr})
	stmt := &ast.DefineStmt{Lhs: "x", Rhs: bogus, Export: true, Module: mo}
	mo.Stmts = []*ast.DefineStmt{stmt}

	_, err := Compile(mo, Options{PackageName: "demo"})
	assert.Error(t, err)
	var cerr *compiler.Error
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, compiler.KindMalformedInput, cerr.Kind)
}
