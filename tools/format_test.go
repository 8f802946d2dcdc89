package tools

import (
	"strings"
	"testing"

	"github.com/zkir-vm/zkir/parser"
)

func TestFormatRoundTripsThroughAssemble(t *testing.T) {
	prog := assemble(t, `
start:
	addi a0, r0, 5
	add  a0, a0, a0
	ebreak
`)
	out := Format(prog)
	reassembled, err := parser.Assemble(out)
	if err != nil {
		t.Fatalf("reassembling formatted output: %v\n--- formatted ---\n%s", err, out)
	}
	if len(reassembled.Code) != len(prog.Code) {
		t.Errorf("reassembled code has %d words, want %d", len(reassembled.Code), len(prog.Code))
	}
	for i := range prog.Code {
		if reassembled.Code[i] != prog.Code[i] {
			t.Errorf("word %d: reassembled 0x%08x, want 0x%08x", i, reassembled.Code[i], prog.Code[i])
		}
	}
}

func TestFormatEmitsConfigLineOnlyWhenNonDefault(t *testing.T) {
	prog := assemble(t, `
	ebreak
`)
	out := Format(prog)
	if strings.Contains(out, ".config") {
		t.Errorf("Format() emitted .config for a default-config program:\n%s", out)
	}

	withCfg := assemble(t, `
.config limb_bits 24
	ebreak
`)
	out = Format(withCfg)
	if !strings.Contains(out, ".config") {
		t.Errorf("Format() omitted .config for a non-default program:\n%s", out)
	}
}
