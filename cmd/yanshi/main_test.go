package main

import (
	"testing"

	"github.com/yanshi-lang/yanshi/internal/ast"
)

func TestArrayFlagsString(t *testing.T) {
	tests := []struct {
		name     string
		flags    arrayFlags
		expected string
	}{
		{
			name:     "empty",
			flags:    arrayFlags{},
			expected: "",
		},
		{
			name:     "single",
			flags:    arrayFlags{"main"},
			expected: "main",
		},
		{
			name:     "multiple",
			flags:    arrayFlags{"main", "ident", "ws"},
			expected: "main, ident, ws",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.flags.String()
			if result != tt.expected {
				t.Errorf("String() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestArrayFlagsSet(t *testing.T) {
	var flags arrayFlags

	if err := flags.Set("main"); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}
	if len(flags) != 1 || flags[0] != "main" {
		t.Errorf("Set() = %v, want [\"main\"]", flags)
	}

	if err := flags.Set("ident"); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}
	if len(flags) != 2 || flags[1] != "ident" {
		t.Errorf("Set() = %v, want [\"main\", \"ident\"]", flags)
	}
}

func TestRestrictExportsKeepsOnlyNamedStmts(t *testing.T) {
	mo := &ast.Module{
		Name: "t",
		Stmts: []*ast.DefineStmt{
			{Lhs: "main", Export: true},
			{Lhs: "ident", Export: true},
			{Lhs: "ws", Export: true},
		},
	}

	restrictExports(mo, arrayFlags{"main", "ws"})

	got := map[string]bool{}
	for _, s := range mo.Stmts {
		got[s.Lhs] = s.Export
	}
	want := map[string]bool{"main": true, "ident": false, "ws": true}
	for lhs, exported := range want {
		if got[lhs] != exported {
			t.Errorf("restrictExports: stmt %q Export = %v, want %v", lhs, got[lhs], exported)
		}
	}
}

func TestRestrictExportsLeavesAlreadyUnexportedStmtsAlone(t *testing.T) {
	mo := &ast.Module{
		Name: "t",
		Stmts: []*ast.DefineStmt{
			{Lhs: "main", Export: true},
			{Lhs: "helper", Export: false},
		},
	}

	restrictExports(mo, arrayFlags{"main"})

	if !mo.Stmts[0].Export {
		t.Errorf("restrictExports: %q should stay exported", "main")
	}
	if mo.Stmts[1].Export {
		t.Errorf("restrictExports: %q should stay unexported", "helper")
	}
}
