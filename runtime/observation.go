package runtime

import "github.com/zkir-vm/zkir/isa"

// OperandSet names which of an instruction's source operands an
// observation point requires normalized (spec.md §4.7).
type OperandSet struct {
	Rs1 bool
	Rs2 bool
}

// Any reports whether either operand needs normalization.
func (s OperandSet) Any() bool { return s.Rs1 || s.Rs2 }

// ObservationPoint classifies op per spec.md §4.7's closed list. ADD/SUB/
// ADDI are deferred and are never observation points: their own deferred
// path (ExecuteAdd's overflow guard) is the only place they normalize.
//
// The reference's normalization policy here normalizes both source
// operands unconditionally wherever op reads two registers, rather than
// only the first — the stricter, equally-correct alternative spec.md's
// design notes call out as removing a noted prover-side limitation.
func ObservationPoint(op isa.Opcode) OperandSet {
	switch {
	case op == isa.OpAdd, op == isa.OpSub, op == isa.OpAddi:
		return OperandSet{}

	case op.IsBranch():
		return OperandSet{Rs1: true, Rs2: true}

	case op == isa.OpSltu, op == isa.OpSgeu, op == isa.OpSlt, op == isa.OpSge,
		op == isa.OpSeq, op == isa.OpSne:
		return OperandSet{Rs1: true, Rs2: true}

	case op.IsStore():
		return OperandSet{Rs1: true, Rs2: true}

	case op == isa.OpAnd, op == isa.OpOr, op == isa.OpXor:
		return OperandSet{Rs1: true, Rs2: true}
	case op == isa.OpAndi, op == isa.OpOri, op == isa.OpXori:
		return OperandSet{Rs1: true}

	case op == isa.OpSll, op == isa.OpSrl, op == isa.OpSra:
		return OperandSet{Rs1: true, Rs2: true}
	case op.IsShiftImmediate():
		return OperandSet{Rs1: true}

	case op == isa.OpMul, op == isa.OpMulh, op.IsDivOrRem():
		return OperandSet{Rs1: true, Rs2: true}

	case op.IsLoad():
		return OperandSet{Rs1: true}

	default:
		// cmov/jal/jalr/ecall/ebreak are not observation points: cmov's
		// condition test is zero-vs-nonzero, which is representation
		// agnostic (a deferred-carry zero is all-zero limbs under any
		// stride), and control-transfer/syscall instructions don't read
		// register values through arithmetic or comparison at all.
		return OperandSet{}
	}
}

// NormalizeOperands normalizes whichever of inst's source registers
// ObservationPoint requires, in rs1-then-rs2 order, before the VM driver
// executes inst.
func NormalizeOperands(rf *RegisterFile, op isa.Opcode, rs1, rs2 isa.Register, cycle, pc uint64, w *Witnesses) {
	set := ObservationPoint(op)
	if set.Rs1 {
		NormalizeRegister(rf, rs1, cycle, pc, CauseObservationPoint, op, w)
	}
	if set.Rs2 {
		NormalizeRegister(rf, rs2, cycle, pc, CauseObservationPoint, op, w)
	}
}
