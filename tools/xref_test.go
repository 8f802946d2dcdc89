package tools

import "testing"

func TestXrefTracksBranchAndJumpReferences(t *testing.T) {
	prog := assemble(t, `
	jal r0, loop
loop:
	beq a0, a1, loop
	ebreak
`)
	xrefs := Xref(prog)

	var loop *SymbolXref
	for i := range xrefs {
		if xrefs[i].Name == "loop" {
			loop = &xrefs[i]
		}
	}
	if loop == nil {
		t.Fatalf("Xref() missing entry for label %q: %v", "loop", xrefs)
	}
	if len(loop.References) != 2 {
		t.Errorf("loop has %d references, want 2 (jal + beq)", len(loop.References))
	}
}

func TestXrefUnreferencedLabelHasNoReferences(t *testing.T) {
	prog := assemble(t, `
dead:
	ebreak
`)
	xrefs := Xref(prog)
	if len(xrefs) != 1 || len(xrefs[0].References) != 0 {
		t.Errorf("Xref() = %+v, want one unreferenced symbol", xrefs)
	}
}
