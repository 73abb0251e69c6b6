package ast

// DefineStmt names a nonterminal: lhs = rhs. A stmt with Export set
// gets a pair of emitted functions; intact stmts are exempted from the
// substring-grammar transform CompileExport otherwise applies.
type DefineStmt struct {
	Lhs      string
	Rhs      ExprID
	Export   bool
	Intact   bool
	Module   *Module
}

// CodeStmt is an opaque pass-through code block, carried verbatim to the
// output stream between generated functions.
type CodeStmt struct {
	Code string
}

// Module is the parsed, name-resolved unit this compiler consumes. The
// external parser/resolver is responsible for producing one of these;
// nothing in this module parses source text.
type Module struct {
	Name  string
	Arena *Arena
	Stmts []*DefineStmt
	Code  []CodeStmt

	// Actions is the named-action table consulted by ActionRef actions.
	// A lookup miss resolves to the empty string rather than an error.
	Actions map[string]string
}

// Exported returns the stmts in Module with Export set, in declaration
// order.
func (m *Module) Exported() []*DefineStmt {
	var out []*DefineStmt
	for _, s := range m.Stmts {
		if s.Export {
			out = append(out, s)
		}
	}
	return out
}
