// Command yanshi reads a JSON-encoded, already-resolved module and
// emits the compiled Go source (or Graphviz dot) for its exported
// nonterminals.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/yanshi-lang/yanshi/internal/ast"
	"github.com/yanshi-lang/yanshi/pkg/yanshi"
)

// arrayFlags collects repeated occurrences of a flag into a slice.
type arrayFlags []string

func (f *arrayFlags) String() string {
	out := ""
	for i, v := range *f {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}

func (f *arrayFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	var (
		inputPath     = flag.String("i", "", "input module JSON file (default: stdin)")
		outputPath    = flag.String("o", "", "output file (default: stdout)")
		packageName   = flag.String("package", "main", "Go package name for emitted source")
		standalone    = flag.Bool("standalone", false, "emit a standalone main() driver for the \"main\" export")
		substring     = flag.Bool("substring", false, "accept every substring of each non-intact export's language")
		dot           = flag.Bool("dot", false, "emit Graphviz dot instead of Go source")
		dumpAutomaton = flag.Bool("dump-automaton", false, "dump each export's compiled machine shape to stderr")
		dumpAssoc     = flag.Bool("dump-assoc", false, "dump each export's per-state annotation bags to stderr")
		verbose       = flag.Bool("v", false, "log compilation size decisions to stderr")
	)
	var only arrayFlags
	flag.Var(&only, "only", "export lhs to compile (repeatable; default: all exports)")
	flag.Parse()

	if err := run(*inputPath, *outputPath, *packageName, only, runFlags{
		standalone:    *standalone,
		substring:     *substring,
		dot:           *dot,
		dumpAutomaton: *dumpAutomaton,
		dumpAssoc:     *dumpAssoc,
		verbose:       *verbose,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runFlags struct {
	standalone    bool
	substring     bool
	dot           bool
	dumpAutomaton bool
	dumpAssoc     bool
	verbose       bool
}

func run(inputPath, outputPath, packageName string, only arrayFlags, flags runFlags) error {
	data, err := readAll(inputPath)
	if err != nil {
		return fmt.Errorf("yanshi: reading input: %w", err)
	}

	mo, err := decodeModule(data)
	if err != nil {
		return fmt.Errorf("yanshi: decoding module: %w", err)
	}
	if len(only) > 0 {
		restrictExports(mo, only)
	}

	opts := yanshi.Options{
		PackageName:      packageName,
		Standalone:       flags.standalone,
		SubstringGrammar: flags.substring,
		Verbose:          flags.verbose,
	}
	if flags.dot {
		opts.Mode = yanshi.ModeDot
	}
	if flags.dumpAutomaton {
		opts.DumpAutomaton = os.Stderr
	}
	if flags.dumpAssoc {
		opts.DumpAssoc = os.Stderr
	}

	artifact, err := yanshi.Compile(mo, opts)
	if err != nil {
		return err
	}

	return writeAll(outputPath, artifact.Source)
}

func readAll(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeAll(path, source string) error {
	if path == "" {
		_, err := io.WriteString(os.Stdout, source)
		return err
	}
	return os.WriteFile(path, []byte(source), 0o644)
}

// restrictExports clears Export on every statement not named in only,
// so a single compiled module's JSON can drive a narrower build without
// re-encoding it.
func restrictExports(mo *ast.Module, only arrayFlags) {
	want := map[string]bool{}
	for _, lhs := range only {
		want[lhs] = true
	}
	for _, s := range mo.Stmts {
		if !want[s.Lhs] {
			s.Export = false
		}
	}
}
