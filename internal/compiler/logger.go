package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/yanshi-lang/yanshi/internal/afsa"
	"github.com/yanshi-lang/yanshi/internal/ast"
)

// Logger provides verbose output for compilation decisions: one section
// header per exported nonterminal, and one size line for every
// nonterminal Compile builds (its determinized, minimized machine,
// before collapse expansion).
type Logger struct {
	enabled bool
	out     io.Writer
}

// NewLogger creates a new logger instance.
func NewLogger(enabled bool) *Logger {
	return &Logger{
		enabled: enabled,
		out:     os.Stderr,
	}
}

// SetOutput sets the output writer for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.out = w
}

// Section prints a section header naming the nonterminal about to be
// compiled, if verbose mode is enabled.
func (l *Logger) Section(name string) {
	if l.enabled {
		fmt.Fprintf(l.out, "\n[yanshi] === %s ===\n", name)
	}
}

// MachineStats prints the state, transition, and final count of stmt's
// compiled machine, if verbose mode is enabled.
func (l *Logger) MachineStats(stmt *ast.DefineStmt, a *afsa.AFSA) {
	if !l.enabled {
		return
	}
	transitions := 0
	for _, edges := range a.Fsa.Adj {
		transitions += len(edges)
	}
	fmt.Fprintf(l.out, "[yanshi] %s: %d states, %d transitions, %d finals\n",
		stmt.Lhs, a.NumStates(), transitions, len(a.Fsa.Finals))
}

// Enabled returns whether the logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}
