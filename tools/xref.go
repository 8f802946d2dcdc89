package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zkir-vm/zkir/encoder"
	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/memory"
	"github.com/zkir-vm/zkir/parser"
)

// RefKind classifies how an instruction refers to a symbol's address.
type RefKind int

const (
	RefBranch RefKind = iota
	RefJump
	RefLoadStore
)

func (k RefKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefJump:
		return "jump"
	case RefLoadStore:
		return "load/store"
	default:
		return "unknown"
	}
}

// Reference is one instruction's use of a symbol's address.
type Reference struct {
	Kind    RefKind
	At      uint64
	Text    string
}

// SymbolXref pairs a defined symbol with every instruction that refers to
// its address.
type SymbolXref struct {
	Name       string
	Address    uint64
	References []Reference
}

// Xref builds a full cross-reference of prog's symbol table: every label
// paired with every branch, jump, load, or store instruction whose target
// resolves to that label's address.
func Xref(prog *parser.Program) []SymbolXref {
	byAddr := make(map[uint64]*SymbolXref)
	for _, sym := range prog.Symbols.All() {
		byAddr[sym.Address] = &SymbolXref{Name: sym.Name, Address: sym.Address}
	}

	for i, word := range prog.Code {
		addr := memory.CodeStart + uint64(i)*4
		inst, err := encoder.Decode(word)
		if err != nil {
			continue
		}
		var target uint64
		var kind RefKind
		switch {
		case inst.Op.IsBranch():
			target, kind = addr+uint64(inst.Offset), RefBranch
		case inst.Op == isa.OpJal:
			target, kind = addr+uint64(inst.Offset), RefJump
		case (inst.Op.IsLoad() || inst.Op.IsStore()) && inst.Rs1.IsZero():
			// Load/store immediates are base-relative, not label-relative in
			// general, but a base of r0 (never assigned) with an immediate
			// equal to a known symbol address is common enough in hand-written
			// ZKIR to be worth surfacing.
			target, kind = uint64(inst.Imm), RefLoadStore
		default:
			continue
		}
		if x, ok := byAddr[target]; ok {
			x.References = append(x.References, Reference{Kind: kind, At: addr, Text: inst.String()})
		}
	}

	out := make([]SymbolXref, 0, len(byAddr))
	for _, x := range byAddr {
		out = append(out, *x)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Report renders a cross-reference list as text, one block per symbol.
func Report(xrefs []SymbolXref) string {
	var b strings.Builder
	for _, x := range xrefs {
		fmt.Fprintf(&b, "%s (0x%08x):\n", x.Name, x.Address)
		if len(x.References) == 0 {
			b.WriteString("  (unreferenced)\n")
			continue
		}
		for _, r := range x.References {
			fmt.Fprintf(&b, "  %s at 0x%08x: %s\n", r.Kind, r.At, r.Text)
		}
	}
	return b.String()
}
