package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkir-vm/zkir/encoder"
	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/memory"
	"github.com/zkir-vm/zkir/parser"
)

func TestAssembleSimpleProgram(t *testing.T) {
	prog, err := parser.Assemble(`
		addi t0, zero, 5
		add  t1, t0, t0
		ebreak
	`)
	require.NoError(t, err)
	assert.Equal(t, memory.CodeStart, prog.EntryPoint)
	require.Len(t, prog.Code, 3)

	inst, err := encoder.Decode(prog.Code[0])
	require.NoError(t, err)
	assert.Equal(t, isa.OpAddi, inst.Op)
	assert.Equal(t, isa.T0, inst.Rd)
	assert.Equal(t, int32(5), inst.Imm)
}

func TestAssembleResolvesForwardLabel(t *testing.T) {
	prog, err := parser.Assemble(`
		beq r1, r2, done
		addi r3, zero, 1
	done:
		ebreak
	`)
	require.NoError(t, err)
	inst, err := encoder.Decode(prog.Code[0])
	require.NoError(t, err)
	assert.Equal(t, isa.OpBeq, inst.Op)
	assert.Equal(t, int32(8), inst.Offset, "done is 2 instructions (8 bytes) after the beq")
}

func TestAssembleResolvesBackwardLabel(t *testing.T) {
	prog, err := parser.Assemble(`
	loop:
		beq zero, zero, loop
	`)
	require.NoError(t, err)
	inst, err := encoder.Decode(prog.Code[0])
	require.NoError(t, err)
	assert.Equal(t, int32(0), inst.Offset, "loop points at the beq itself")
}

func TestAssembleRejectsDuplicateLabel(t *testing.T) {
	_, err := parser.Assemble(`
	foo:
		ebreak
	foo:
		ebreak
	`)
	require.Error(t, err)
	var dup *parser.DuplicateLabelError
	assert.ErrorAs(t, err, &dup)
}

func TestAssembleRejectsUndefinedLabel(t *testing.T) {
	_, err := parser.Assemble(`
		beq r1, r2, nowhere
	`)
	require.Error(t, err)
	var undef *parser.UndefinedLabelError
	assert.ErrorAs(t, err, &undef)
}

func TestAssembleRejectsUnknownMnemonic(t *testing.T) {
	_, err := parser.Assemble(`bogus r1, r2, r3`)
	require.Error(t, err)
	var asmErr *parser.AssemblyError
	assert.ErrorAs(t, err, &asmErr)
}

func TestAssembleRejectsUnknownDirective(t *testing.T) {
	_, err := parser.Assemble(`.bogus 1`)
	require.Error(t, err)
}

func TestAssembleStripsComments(t *testing.T) {
	prog, err := parser.Assemble(`
		ebreak # this is a comment
		; so is this, and the line above has none
	`)
	require.NoError(t, err)
	require.Len(t, prog.Code, 1)
}

func TestAssembleDataDirectives(t *testing.T) {
	prog, err := parser.Assemble(`
		.data
		.word 0x11223344
		.byte 1, 2, 3
	`)
	require.NoError(t, err)
	require.Len(t, prog.Data, 7)
	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11, 1, 2, 3}, prog.Data)
}

func TestAssembleConfigDirectiveOverridesDefaults(t *testing.T) {
	prog, err := parser.Assemble(`
		.config limb_bits 16
		.config data_limbs 4
		ebreak
	`)
	require.NoError(t, err)
	assert.Equal(t, uint8(16), prog.Cfg.LimbBits)
	assert.Equal(t, uint8(4), prog.Cfg.DataLimbs)
}

func TestAssembleRejectsInvalidConfig(t *testing.T) {
	_, err := parser.Assemble(`.config limb_bits 15`)
	require.Error(t, err)
}

func TestAssembleLoadStoreMemoryOperand(t *testing.T) {
	prog, err := parser.Assemble(`
		lw t0, 4(sp)
		sw t0, 8(sp)
	`)
	require.NoError(t, err)
	require.Len(t, prog.Code, 2)

	load, err := encoder.Decode(prog.Code[0])
	require.NoError(t, err)
	assert.Equal(t, isa.T0, load.Rd)
	assert.Equal(t, isa.SP, load.Rs1)
	assert.Equal(t, int32(4), load.Imm)

	store, err := encoder.Decode(prog.Code[1])
	require.NoError(t, err)
	assert.Equal(t, isa.SP, store.Rs1)
	assert.Equal(t, isa.T0, store.Rs2)
	assert.Equal(t, int32(8), store.Imm)
}

func TestSymbolTableAllOrdersByAddress(t *testing.T) {
	prog, err := parser.Assemble(`
	b:
		ebreak
	a:
		ebreak
	`)
	require.NoError(t, err)
	syms := prog.Symbols.All()
	require.Len(t, syms, 2)
	assert.Equal(t, "b", syms[0].Name)
	assert.Equal(t, "a", syms[1].Name)
}
