// Package disasm renders decoded ZKIR instructions and whole program images
// back to assembly text (spec.md §2 component D, inverse of package
// encoder/parser), laid out with text/tabwriter the way the toolchain's
// listings are formatted.
package disasm

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/zkir-vm/zkir/encoder"
	"github.com/zkir-vm/zkir/isa"
)

// Line is one disassembled instruction: its address, raw word, and
// rendered text (or a decode error rendered as a comment).
type Line struct {
	Address uint64
	Word    uint32
	Text    string
}

// Instruction decodes and formats a single word at address addr. A word
// whose low 7 bits do not name a defined opcode renders as a ".word"
// directive with an explanatory comment rather than failing outright,
// since a disassembler must produce output for data interleaved with code.
func Instruction(addr uint64, word uint32) Line {
	inst, err := encoder.Decode(word)
	if err != nil {
		return Line{Address: addr, Word: word, Text: fmt.Sprintf(".word 0x%08x  # %s", word, err)}
	}
	return Line{Address: addr, Word: word, Text: inst.String()}
}

// Program disassembles a contiguous run of code words starting at base,
// one Line per word.
func Program(base uint64, words []uint32) []Line {
	lines := make([]Line, len(words))
	for i, w := range words {
		lines[i] = Instruction(base+uint64(i)*4, w)
	}
	return lines
}

// Listing renders lines as an aligned address/hex/mnemonic table.
func Listing(cfg isa.Config, lines []Line) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# config: limb_bits=%d data_limbs=%d addr_limbs=%d (data_bits=%d addr_bits=%d)\n",
		cfg.LimbBits, cfg.DataLimbs, cfg.AddrLimbs, cfg.DataBits(), cfg.AddrBits())
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for _, l := range lines {
		fmt.Fprintf(w, "%08x:\t%08x\t%s\n", l.Address, l.Word, l.Text)
	}
	w.Flush()
	return buf.String()
}
