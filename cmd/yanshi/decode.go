package main

import (
	"encoding/json"
	"fmt"

	"github.com/yanshi-lang/yanshi/internal/ast"
)

// wireModule is the JSON shape this command reads: an arena of
// expressions addressed by their slice index (which becomes their
// ast.ExprID once loaded), a statement list, and the two flat-string
// tables (Actions, Code) the ast.Module carries verbatim.
type wireModule struct {
	Name    string            `json:"name"`
	Exprs   []wireExpr        `json:"exprs"`
	Stmts   []wireStmt        `json:"stmts"`
	Actions map[string]string `json:"actions"`
	Code    []string          `json:"code"`
}

type wireRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

type wireAction struct {
	// Ref names an entry in wireModule.Actions; if empty, Code is used
	// as an inline action body.
	Ref  string `json:"ref,omitempty"`
	Code string `json:"code,omitempty"`
}

type wireExpr struct {
	Kind    string      `json:"kind"`
	Loc     [2]int      `json:"loc"`
	Ranges  []wireRange `json:"ranges,omitempty"`
	Literal string      `json:"literal,omitempty"`
	// Target names the Stmts entry a KindCollapse leaf refers to.
	Target string `json:"target,omitempty"`

	// Lhs and Rhs are indices into wireModule.Exprs, or -1 for none.
	Lhs int `json:"lhs,omitempty"`
	Rhs int `json:"rhs,omitempty"`

	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`

	Entering   []wireAction `json:"entering,omitempty"`
	Leaving    []wireAction `json:"leaving,omitempty"`
	Transiting []wireAction `json:"transiting,omitempty"`
	Finishing  []wireAction `json:"finishing,omitempty"`
}

type wireStmt struct {
	Lhs    string `json:"lhs"`
	Rhs    int    `json:"rhs"`
	Export bool   `json:"export"`
	Intact bool   `json:"intact"`
}

var kindByName = map[string]ast.Kind{
	"Bracket":    ast.KindBracket,
	"Literal":    ast.KindLiteral,
	"Dot":        ast.KindDot,
	"Epsilon":    ast.KindEpsilon,
	"Embed":      ast.KindEmbed,
	"Collapse":   ast.KindCollapse,
	"Star":       ast.KindStar,
	"Plus":       ast.KindPlus,
	"Question":   ast.KindQuestion,
	"Repeat":     ast.KindRepeat,
	"Complement": ast.KindComplement,
	"Concat":     ast.KindConcat,
	"Union":      ast.KindUnion,
	"Intersect":  ast.KindIntersect,
	"Difference": ast.KindDifference,
}

// decodeModule parses data into an ast.Module: every wireExpr is
// appended to a fresh ast.Arena in file order (so wire index == ExprID),
// then a second pass resolves KindCollapse Target references by stmt
// name now that every *ast.DefineStmt exists.
func decodeModule(data []byte) (*ast.Module, error) {
	var wm wireModule
	if err := json.Unmarshal(data, &wm); err != nil {
		return nil, err
	}

	arena := ast.NewArena()
	for i, we := range wm.Exprs {
		kind, ok := kindByName[we.Kind]
		if !ok {
			return nil, fmt.Errorf("expr %d: unknown kind %q", i, we.Kind)
		}
		e := ast.Expr{
			Kind:    kind,
			Loc:     ast.Loc{Start: we.Loc[0], End: we.Loc[1]},
			Literal: []byte(we.Literal),
			Lhs:     ast.NoExpr,
			Rhs:     ast.NoExpr,
			Min:     we.Min,
			Max:     we.Max,
			Slot:    -1,
		}
		switch kind {
		case ast.KindStar, ast.KindPlus, ast.KindQuestion, ast.KindRepeat, ast.KindComplement:
			e.Lhs = ast.ExprID(we.Lhs)
		case ast.KindConcat, ast.KindUnion, ast.KindIntersect, ast.KindDifference:
			e.Lhs = ast.ExprID(we.Lhs)
			e.Rhs = ast.ExprID(we.Rhs)
		}
		for _, r := range we.Ranges {
			e.Ranges = append(e.Ranges, ast.Range{Lo: r.Lo, Hi: r.Hi})
		}
		e.Entering = resolveActions(we.Entering)
		e.Leaving = resolveActions(we.Leaving)
		e.Transiting = resolveActions(we.Transiting)
		e.Finishing = resolveActions(we.Finishing)
		id := arena.New(e)
		if int(id) != i {
			return nil, fmt.Errorf("expr %d: arena index drifted from wire index", i)
		}
	}

	mo := &ast.Module{
		Name:    wm.Name,
		Arena:   arena,
		Actions: wm.Actions,
	}
	byLhs := map[string]*ast.DefineStmt{}
	for _, ws := range wm.Stmts {
		stmt := &ast.DefineStmt{
			Lhs:    ws.Lhs,
			Rhs:    ast.ExprID(ws.Rhs),
			Export: ws.Export,
			Intact: ws.Intact,
			Module: mo,
		}
		if _, dup := byLhs[ws.Lhs]; dup {
			return nil, fmt.Errorf("stmt %q: duplicate definition", ws.Lhs)
		}
		byLhs[ws.Lhs] = stmt
		mo.Stmts = append(mo.Stmts, stmt)
	}

	for i, we := range wm.Exprs {
		if kindByName[we.Kind] != ast.KindCollapse {
			continue
		}
		target, ok := byLhs[we.Target]
		if !ok {
			return nil, fmt.Errorf("expr %d: collapse target %q not defined", i, we.Target)
		}
		arena.Get(ast.ExprID(i)).Target = target
	}

	for _, code := range wm.Code {
		mo.Code = append(mo.Code, ast.CodeStmt{Code: code})
	}

	return mo, nil
}

func resolveActions(was []wireAction) []ast.Action {
	var out []ast.Action
	for _, wa := range was {
		if wa.Ref != "" {
			out = append(out, ast.Action{Kind: ast.ActionRef, Ident: wa.Ref})
		} else {
			out = append(out, ast.Action{Kind: ast.ActionInline, Code: wa.Code})
		}
	}
	return out
}
