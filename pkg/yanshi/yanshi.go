// Package yanshi compiles a parsed regular-language module into Go
// source: one transition function and one init function per exported
// nonterminal, plus an optional Graphviz dump and standalone driver.
package yanshi

import (
	"fmt"
	"io"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/yanshi-lang/yanshi/internal/afsa"
	"github.com/yanshi-lang/yanshi/internal/ast"
	"github.com/yanshi-lang/yanshi/internal/codegen"
	"github.com/yanshi-lang/yanshi/internal/compiler"
)

// Mode selects the emission backend.
type Mode int

const (
	// ModeGo emits one Go source file with a transit/init function pair
	// per exported nonterminal (the default).
	ModeGo Mode = iota
	// ModeDot emits a Graphviz dot digraph per exported nonterminal
	// instead of Go source.
	ModeDot
)

// Options configures one compilation run.
type Options struct {
	// PackageName names the emitted Go package (ModeGo only).
	PackageName string

	// Standalone additionally emits a main function that feeds argv[1]
	// (or stdin) into the "main" export and reports the result. Requires
	// a nonterminal literally named "main" to be exported.
	Standalone bool

	// SubstringGrammar makes every non-intact export additionally accept
	// every substring of its original language.
	SubstringGrammar bool

	// Verbose turns on the compiler's section-by-section size logging.
	Verbose bool

	// Mode selects Go source or Graphviz dot output.
	Mode Mode

	// DumpAutomaton, if non-nil, receives a DumpAutomaton rendering of
	// every exported nonterminal's final compiled machine.
	DumpAutomaton io.Writer

	// DumpAssoc, if non-nil, receives a DumpAssoc rendering of every
	// exported nonterminal's final compiled machine.
	DumpAssoc io.Writer

	// HeaderWriter, if non-nil, receives the declaration-only signatures
	// (bodies omitted) of every emitted init/transit function pair,
	// letting a caller generate a header stream alongside the body.
	HeaderWriter io.Writer
}

// Validate reports whether opts is well formed.
func (o Options) Validate() error {
	if o.Mode == ModeGo && o.PackageName == "" {
		return fmt.Errorf("yanshi: package name cannot be empty in Go mode")
	}
	return nil
}

// Artifact is the rendered output of one Compile call.
type Artifact struct {
	// Source is the emitted Go source (ModeGo) or dot markup (ModeDot).
	Source string
}

// Compile renders mo's exported nonterminals per opts. Every export is
// compiled independently (expression tree, collapse expansion,
// determinize/minimize/prune, action synthesis) and then emitted into
// one combined artifact.
func Compile(mo *ast.Module, opts Options) (Artifact, error) {
	if err := opts.Validate(); err != nil {
		return Artifact{}, err
	}

	exported := mo.Exported()
	if len(exported) == 0 {
		return Artifact{}, fmt.Errorf("yanshi: module %q exports nothing", mo.Name)
	}
	if opts.Standalone && lookup(exported, "main") == nil {
		return Artifact{}, fmt.Errorf("yanshi: standalone driver requires an export named %q", "main")
	}

	logger := compiler.NewLogger(opts.Verbose)
	ctx := compiler.NewContext(logger)

	switch opts.Mode {
	case ModeDot:
		return compileDot(ctx, mo, exported, opts, logger)
	default:
		return compileGo(ctx, mo, exported, opts, logger)
	}
}

func lookup(stmts []*ast.DefineStmt, lhs string) *ast.DefineStmt {
	for _, s := range stmts {
		if s.Lhs == lhs {
			return s
		}
	}
	return nil
}

func compileGo(ctx *compiler.Context, mo *ast.Module, exported []*ast.DefineStmt, opts Options, logger *compiler.Logger) (Artifact, error) {
	f := jen.NewFile(opts.PackageName)
	f.HeaderComment("Code generated by yanshi. DO NOT EDIT.")

	for _, stmt := range exported {
		logger.Section(stmt.Lhs)
		machine, err := safeCompileExport(ctx, stmt, opts.SubstringGrammar)
		if err != nil {
			return Artifact{}, err
		}
		if opts.DumpAutomaton != nil {
			machine.DumpAutomaton(opts.DumpAutomaton)
		}
		if opts.DumpAssoc != nil {
			machine.DumpAssoc(opts.DumpAssoc, func(e afsa.AssocEntry) string {
				return fmt.Sprintf("%s(%d)", stmt.Module.Arena.Get(e.Expr).Kind, e.Expr)
			})
		}
		if opts.HeaderWriter != nil {
			fmt.Fprint(opts.HeaderWriter, codegen.Header(stmt.Lhs))
		}
		table := compiler.CompileActions(stmt, machine)
		codegen.EmitInit(f, stmt.Lhs, machine)
		codegen.EmitTransit(f, stmt.Lhs, table)
	}

	for _, c := range mo.Code {
		f.Add(jen.Op(c.Code))
		f.Line()
	}
	if opts.Standalone {
		codegen.EmitDriver(f)
	}

	var buf strings.Builder
	if err := f.Render(&buf); err != nil {
		return Artifact{}, fmt.Errorf("yanshi: render: %w", err)
	}
	return Artifact{Source: buf.String()}, nil
}

func compileDot(ctx *compiler.Context, mo *ast.Module, exported []*ast.DefineStmt, opts Options, logger *compiler.Logger) (Artifact, error) {
	var buf strings.Builder
	for _, stmt := range exported {
		logger.Section(stmt.Lhs)
		machine, err := safeCompileExport(ctx, stmt, opts.SubstringGrammar)
		if err != nil {
			return Artifact{}, err
		}
		if opts.DumpAutomaton != nil {
			machine.DumpAutomaton(opts.DumpAutomaton)
		}
		if opts.DumpAssoc != nil {
			machine.DumpAssoc(opts.DumpAssoc, func(e afsa.AssocEntry) string {
				return fmt.Sprintf("%s(%d)", stmt.Module.Arena.Get(e.Expr).Kind, e.Expr)
			})
		}
		codegen.EmitDot(&buf, stmt.Lhs, machine)
	}
	return Artifact{Source: buf.String()}, nil
}

// safeCompileExport recovers from the panics internal/compiler and the
// debug build of internal/afsa raise, turning them into a
// *compiler.Error rather than letting them cross the package boundary
// as a bare panic. The three malformed-input panics (unresolved
// collapse slot, unregistered Embed, unknown Expr.Kind) all carry a
// "compiler: "-prefixed string and are tagged KindMalformedInput;
// anything else, including a checkInvariants panic, is an internal
// invariant violation.
func safeCompileExport(ctx *compiler.Context, stmt *ast.DefineStmt, substringGrammar bool) (out *afsa.AFSA, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			kind := compiler.KindInvariant
			if msg, ok := r.(string); ok && strings.HasPrefix(msg, "compiler: ") {
				kind = compiler.KindMalformedInput
			}
			err = &compiler.Error{Stmt: stmt, Kind: kind, Msg: fmt.Sprint(r)}
		}
	}()
	return compiler.CompileExport(ctx, stmt, substringGrammar), nil
}
