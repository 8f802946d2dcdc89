package disasm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkir-vm/zkir/disasm"
	"github.com/zkir-vm/zkir/encoder"
	"github.com/zkir-vm/zkir/isa"
)

func TestInstructionRendersKnownOpcode(t *testing.T) {
	word, err := encoder.Encode(isa.Instruction{Op: isa.OpAddi, Rd: isa.T0, Rs1: isa.Zero, Imm: 5})
	require.NoError(t, err)
	line := disasm.Instruction(0x1000, word)
	assert.Equal(t, "addi t0, zero, 5", line.Text)
	assert.Equal(t, uint64(0x1000), line.Address)
}

func TestInstructionRendersUnknownOpcodeAsWordDirective(t *testing.T) {
	line := disasm.Instruction(0, 0xFFFFFFFF)
	assert.True(t, strings.HasPrefix(line.Text, ".word "))
}

func TestProgramDisassemblesConsecutiveAddresses(t *testing.T) {
	w1, _ := encoder.Encode(isa.Instruction{Op: isa.OpEbreak})
	w2, _ := encoder.Encode(isa.Instruction{Op: isa.OpEbreak})
	lines := disasm.Program(0x2000, []uint32{w1, w2})
	require.Len(t, lines, 2)
	assert.Equal(t, uint64(0x2000), lines[0].Address)
	assert.Equal(t, uint64(0x2004), lines[1].Address)
}

func TestListingIncludesConfigHeaderAndEachLine(t *testing.T) {
	cfg := isa.DefaultConfig()
	w, _ := encoder.Encode(isa.Instruction{Op: isa.OpEbreak})
	lines := disasm.Program(0, []uint32{w})
	out := disasm.Listing(cfg, lines)
	assert.Contains(t, out, "limb_bits=20")
	assert.Contains(t, out, "ebreak")
}
