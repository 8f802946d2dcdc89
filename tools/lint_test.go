package tools

import (
	"testing"

	"github.com/zkir-vm/zkir/parser"
)

func assemble(t *testing.T, src string) *parser.Program {
	t.Helper()
	prog, err := parser.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return prog
}

func TestLintCleanProgramHasNoDiagnostics(t *testing.T) {
	prog := assemble(t, `
start:
	addi a0, r0, 1
	addi a1, r0, 2
	add  a0, a0, a1
	ebreak
`)
	if diags := Lint(prog); len(diags) != 0 {
		t.Errorf("Lint() = %v, want none", diags)
	}
}

func TestLintUnreachableAfterEbreak(t *testing.T) {
	prog := assemble(t, `
	ebreak
	addi a0, r0, 1
`)
	diags := Lint(prog)
	found := false
	for _, d := range diags {
		if d.Code == "UNREACHABLE_CODE" {
			found = true
		}
	}
	if !found {
		t.Errorf("Lint() = %v, want an UNREACHABLE_CODE diagnostic", diags)
	}
}

func TestLintUnusedLabel(t *testing.T) {
	prog := assemble(t, `
unused:
	addi a0, r0, 1
	ebreak
`)
	diags := Lint(prog)
	found := false
	for _, d := range diags {
		if d.Code == "UNUSED_LABEL" {
			found = true
		}
	}
	if !found {
		t.Errorf("Lint() = %v, want an UNUSED_LABEL diagnostic", diags)
	}
}

func TestLintUsedLabelNotFlagged(t *testing.T) {
	prog := assemble(t, `
	jal r0, target
target:
	ebreak
`)
	for _, d := range Lint(prog) {
		if d.Code == "UNUSED_LABEL" {
			t.Errorf("Lint() flagged a branch target as unused: %v", d)
		}
	}
}
