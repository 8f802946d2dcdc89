package isa

// Opcode is the 7-bit instruction identifier occupying bits [6:0] of every
// encoded word (spec.md §3, §4.1). Families are laid out in contiguous
// ranges so a decoder can classify an opcode by a handful of comparisons.
type Opcode uint8

const (
	OpAdd   Opcode = 0x00
	OpSub   Opcode = 0x01
	OpMul   Opcode = 0x02
	OpMulh  Opcode = 0x03
	OpDivu  Opcode = 0x04
	OpRemu  Opcode = 0x05
	OpDiv   Opcode = 0x06
	OpRem   Opcode = 0x07
	OpAddi  Opcode = 0x08
	OpAnd   Opcode = 0x10
	OpOr    Opcode = 0x11
	OpXor   Opcode = 0x12
	OpAndi  Opcode = 0x13
	OpOri   Opcode = 0x14
	OpXori  Opcode = 0x15
	OpSll   Opcode = 0x18
	OpSrl   Opcode = 0x19
	OpSra   Opcode = 0x1A
	OpSlli  Opcode = 0x1B
	OpSrli  Opcode = 0x1C
	OpSrai  Opcode = 0x1D
	OpSltu  Opcode = 0x20
	OpSgeu  Opcode = 0x21
	OpSlt   Opcode = 0x22
	OpSge   Opcode = 0x23
	OpSeq   Opcode = 0x24
	OpSne   Opcode = 0x25
	OpCmov   Opcode = 0x26
	OpCmovz  Opcode = 0x27
	OpCmovnz Opcode = 0x28
	OpLb    Opcode = 0x30
	OpLbu   Opcode = 0x31
	OpLh    Opcode = 0x32
	OpLhu   Opcode = 0x33
	OpLw    Opcode = 0x34
	OpLd    Opcode = 0x35
	OpSb    Opcode = 0x38
	OpSh    Opcode = 0x39
	OpSw    Opcode = 0x3A
	OpSd    Opcode = 0x3B
	OpBeq   Opcode = 0x40
	OpBne   Opcode = 0x41
	OpBlt   Opcode = 0x42
	OpBge   Opcode = 0x43
	OpBltu  Opcode = 0x44
	OpBgeu  Opcode = 0x45
	OpJal   Opcode = 0x48
	OpJalr  Opcode = 0x49
	OpEcall  Opcode = 0x50
	OpEbreak Opcode = 0x51
)

// Format identifies one of the five bitfield layouts from spec.md §4.1.
type Format int

const (
	FormatR Format = iota // opcode:7 | rd:4 | rs1:4 | rs2:4 | funct:13
	FormatI               // opcode:7 | rd:4 | rs1:4 | imm:17
	FormatS               // opcode:7 | rs1:4 | rs2:4 | imm:17
	FormatB               // opcode:7 | rs1:4 | rs2:4 | offset:17
	FormatJ               // opcode:7 | rd:4 | offset:21
)

var mnemonics = map[Opcode]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpMulh: "mulh",
	OpDivu: "divu", OpRemu: "remu", OpDiv: "div", OpRem: "rem", OpAddi: "addi",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpAndi: "andi", OpOri: "ori", OpXori: "xori",
	OpSll: "sll", OpSrl: "srl", OpSra: "sra", OpSlli: "slli", OpSrli: "srli", OpSrai: "srai",
	OpSltu: "sltu", OpSgeu: "sgeu", OpSlt: "slt", OpSge: "sge", OpSeq: "seq", OpSne: "sne",
	OpCmov: "cmov", OpCmovz: "cmovz", OpCmovnz: "cmovnz",
	OpLb: "lb", OpLbu: "lbu", OpLh: "lh", OpLhu: "lhu", OpLw: "lw", OpLd: "ld",
	OpSb: "sb", OpSh: "sh", OpSw: "sw", OpSd: "sd",
	OpBeq: "beq", OpBne: "bne", OpBlt: "blt", OpBge: "bge", OpBltu: "bltu", OpBgeu: "bgeu",
	OpJal: "jal", OpJalr: "jalr",
	OpEcall: "ecall", OpEbreak: "ebreak",
}

var mnemonicToOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(mnemonics))
	for op, name := range mnemonics {
		m[name] = op
	}
	return m
}()

// Mnemonic returns the lowercase assembly mnemonic for op, or "" if op is
// not a defined opcode.
func (op Opcode) Mnemonic() string { return mnemonics[op] }

// OpcodeFromMnemonic looks up an opcode by its assembly mnemonic.
func OpcodeFromMnemonic(name string) (Opcode, bool) {
	op, ok := mnemonicToOpcode[name]
	return op, ok
}

// Format returns the encoding layout used by op.
func (op Opcode) Format() Format {
	switch {
	case op == OpAddi, op >= OpAndi && op <= OpXori, op >= OpSlli && op <= OpSrai,
		op >= OpLb && op <= OpLd, op == OpJalr:
		return FormatI
	case op >= OpSb && op <= OpSd:
		return FormatS
	case op >= OpBeq && op <= OpBgeu:
		return FormatB
	case op == OpJal:
		return FormatJ
	default:
		return FormatR
	}
}

// IsDefined reports whether op names an instruction in the ISA.
func (op Opcode) IsDefined() bool {
	_, ok := mnemonics[op]
	return ok
}

// IsBranch, IsJump, IsLoad, IsStore, IsShiftImmediate classify op for the
// observation-point policy, the range-check checkpoint policy, and the
// assembler/disassembler operand layout.
func (op Opcode) IsBranch() bool { return op >= OpBeq && op <= OpBgeu }
func (op Opcode) IsJump() bool   { return op == OpJal || op == OpJalr }
func (op Opcode) IsLoad() bool   { return op >= OpLb && op <= OpLd }
func (op Opcode) IsStore() bool  { return op >= OpSb && op <= OpSd }
func (op Opcode) IsShiftImmediate() bool {
	return op >= OpSlli && op <= OpSrai
}
func (op Opcode) IsDivOrRem() bool {
	return op == OpDiv || op == OpDivu || op == OpRem || op == OpRemu
}
