package tools

import (
	"fmt"
	"strings"

	"github.com/zkir-vm/zkir/disasm"
	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/memory"
	"github.com/zkir-vm/zkir/parser"
)

// Format re-renders an assembled program as canonical assembly text: a
// `.config` line for any non-default Config field, label lines for every
// defined symbol, and one disassembled instruction per code word. It does
// not reproduce the original source's comments or blank-line layout —
// Assemble discards source positions once labels are resolved, so, like
// disasm.Listing, Format always prints the canonical text for the program
// it was handed, not the text it was typed as.
func Format(prog *parser.Program) string {
	var b strings.Builder

	if prog.Cfg != isa.DefaultConfig() {
		fmt.Fprintf(&b, ".config limb_bits %d\n.config data_limbs %d\n.config addr_limbs %d\n\n",
			prog.Cfg.LimbBits, prog.Cfg.DataLimbs, prog.Cfg.AddrLimbs)
	}

	labelsAt := make(map[uint64][]string)
	for _, sym := range prog.Symbols.All() {
		labelsAt[sym.Address] = append(labelsAt[sym.Address], sym.Name)
	}

	b.WriteString(".text\n")
	for i, line := range disasm.Program(memory.CodeStart, prog.Code) {
		for _, name := range labelsAt[memory.CodeStart+uint64(i)*4] {
			fmt.Fprintf(&b, "%s:\n", name)
		}
		fmt.Fprintf(&b, "\t%s\n", line.Text)
	}

	if len(prog.Data) > 0 {
		b.WriteString("\n.data\n")
		for i, bt := range prog.Data {
			addr := memory.DataStart + uint64(i)
			for _, name := range labelsAt[addr] {
				fmt.Fprintf(&b, "%s:\n", name)
			}
			fmt.Fprintf(&b, "\t.byte 0x%02x\n", bt)
		}
	}

	return b.String()
}
