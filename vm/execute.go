package vm

import (
	"math/bits"

	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/memory"
	"github.com/zkir-vm/zkir/runtime"
)

// toSigned reinterprets the low width bits of v as a two's-complement
// signed integer.
func toSigned(v uint64, width uint32) int64 {
	shift := 64 - width
	return int64(v<<shift) >> shift
}

// loadWidthOf returns the byte width and signedness of a load opcode.
func loadWidthOf(op isa.Opcode) (width uint8, signed bool) {
	switch op {
	case isa.OpLb:
		return 1, true
	case isa.OpLbu:
		return 1, false
	case isa.OpLh:
		return 2, true
	case isa.OpLhu:
		return 2, false
	case isa.OpLw:
		return 4, false
	case isa.OpLd:
		return 8, false
	default:
		return 0, false
	}
}

// storeWidthOf returns the byte width of a store opcode.
func storeWidthOf(op isa.Opcode) uint8 {
	switch op {
	case isa.OpSb:
		return 1
	case isa.OpSh:
		return 2
	case isa.OpSw:
		return 4
	case isa.OpSd:
		return 8
	default:
		return 0
	}
}

// executeResult carries what step() needs to finish a cycle: the
// instruction's natural successor pc (branches/jumps may override it) and
// whether a checkpoint-triggering event occurred this cycle.
type executeResult struct {
	nextPC            uint64
	triggerCheckpoint bool
}

// execute performs inst's effect against v's register file and memory,
// having already normalized whichever operands ObservationPoint required.
// It returns the instruction's successor pc; faults are recorded directly
// on v.Halt and signalled by the returned ok=false.
func (v *VM) execute(inst isa.Instruction, pc uint64) (executeResult, bool) {
	cfg := v.Cfg
	dataBits := cfg.DataBits()
	// regBits is the width a register can actually round-trip (see
	// RegisterFile.EffectiveBits): the sign bit and truncation boundary for
	// every signed/shift op sit here, not at the nominal data_bits dataBits
	// names for bound-propagation saturation.
	regBits := v.Regs.EffectiveBits()
	fallthroughPC := pc + 4
	res := executeResult{nextPC: fallthroughPC}

	switch inst.Op {
	case isa.OpAdd:
		runtime.ExecuteAdd(v.Regs, inst.Rd, inst.Rs1, inst.Rs2, v.Cycle, pc, v.Witnesses)
		v.deferRangeCheck(inst.Rd, pc)
		return res, true

	case isa.OpSub:
		runtime.ExecuteSub(v.Regs, inst.Rd, inst.Rs1, inst.Rs2, v.Cycle, pc, v.Witnesses)
		v.deferRangeCheck(inst.Rd, pc)
		return res, true

	case isa.OpAddi:
		runtime.ExecuteAddi(v.Regs, inst.Rd, inst.Rs1, inst.Imm, v.Cycle, pc, v.Witnesses)
		v.deferRangeCheck(inst.Rd, pc)
		return res, true

	case isa.OpMul:
		a, b := v.Regs.Read(inst.Rs1), v.Regs.Read(inst.Rs2)
		lo, _ := bits.Mul64(a, b)
		bound := isa.AfterMul(v.Regs.ReadBound(inst.Rs1), v.Regs.ReadBound(inst.Rs2), dataBits, cfg.Headroom())
		v.Regs.WriteNormalized(inst.Rd, lo&runtime.MaskN(dataBits), bound)
		v.deferRangeCheck(inst.Rd, pc)
		return res, true

	case isa.OpMulh:
		a, b := v.Regs.Read(inst.Rs1), v.Regs.Read(inst.Rs2)
		_, hi := bits.Mul64(a, b)
		bound := isa.AfterMul(v.Regs.ReadBound(inst.Rs1), v.Regs.ReadBound(inst.Rs2), dataBits, cfg.Headroom())
		v.Regs.WriteNormalized(inst.Rd, hi, bound)
		v.deferRangeCheck(inst.Rd, pc)
		return res, true

	case isa.OpDivu, isa.OpRemu:
		a, b := v.Regs.Read(inst.Rs1), v.Regs.Read(inst.Rs2)
		if b == 0 {
			v.fault(FaultDivisionByZero, pc, (&DivisionByZeroError{PC: pc}).Error())
			return res, false
		}
		var result uint64
		if inst.Op == isa.OpDivu {
			result = a / b
		} else {
			result = a % b
		}
		bound := isa.AfterDivRem(v.Regs.ReadBound(inst.Rs1), v.Regs.ReadBound(inst.Rs2))
		v.Regs.WriteNormalized(inst.Rd, result, bound)
		res.triggerCheckpoint = true
		return res, true

	case isa.OpDiv, isa.OpRem:
		a := toSigned(v.Regs.Read(inst.Rs1), regBits)
		b := toSigned(v.Regs.Read(inst.Rs2), regBits)
		if b == 0 {
			v.fault(FaultDivisionByZero, pc, (&DivisionByZeroError{PC: pc}).Error())
			return res, false
		}
		var result int64
		if inst.Op == isa.OpDiv {
			result = a / b
		} else {
			result = a % b
		}
		bound := isa.AfterDivRem(v.Regs.ReadBound(inst.Rs1), v.Regs.ReadBound(inst.Rs2))
		v.Regs.WriteNormalized(inst.Rd, uint64(result)&runtime.MaskN(regBits), bound)
		res.triggerCheckpoint = true
		return res, true

	case isa.OpAnd:
		v.Regs.WriteNormalized(inst.Rd, v.Regs.Read(inst.Rs1)&v.Regs.Read(inst.Rs2),
			isa.AfterAnd(v.Regs.ReadBound(inst.Rs1), v.Regs.ReadBound(inst.Rs2)))
		return res, true
	case isa.OpOr:
		v.Regs.WriteNormalized(inst.Rd, v.Regs.Read(inst.Rs1)|v.Regs.Read(inst.Rs2),
			isa.AfterOrXor(v.Regs.ReadBound(inst.Rs1), v.Regs.ReadBound(inst.Rs2)))
		return res, true
	case isa.OpXor:
		v.Regs.WriteNormalized(inst.Rd, v.Regs.Read(inst.Rs1)^v.Regs.Read(inst.Rs2),
			isa.AfterOrXor(v.Regs.ReadBound(inst.Rs1), v.Regs.ReadBound(inst.Rs2)))
		return res, true

	case isa.OpAndi:
		imm := uint64(int64(inst.Imm)) & runtime.MaskN(dataBits)
		v.Regs.WriteNormalized(inst.Rd, v.Regs.Read(inst.Rs1)&imm,
			isa.AfterAnd(v.Regs.ReadBound(inst.Rs1), isa.ConstantBound(imm)))
		return res, true
	case isa.OpOri:
		imm := uint64(int64(inst.Imm)) & runtime.MaskN(dataBits)
		v.Regs.WriteNormalized(inst.Rd, v.Regs.Read(inst.Rs1)|imm,
			isa.AfterOrXor(v.Regs.ReadBound(inst.Rs1), isa.ConstantBound(imm)))
		return res, true
	case isa.OpXori:
		imm := uint64(int64(inst.Imm)) & runtime.MaskN(dataBits)
		v.Regs.WriteNormalized(inst.Rd, v.Regs.Read(inst.Rs1)^imm,
			isa.AfterOrXor(v.Regs.ReadBound(inst.Rs1), isa.ConstantBound(imm)))
		return res, true

	case isa.OpSll:
		shamt := uint32(v.Regs.Read(inst.Rs2)) & 0x3F
		v.Regs.WriteNormalized(inst.Rd, (v.Regs.Read(inst.Rs1)<<shamt)&runtime.MaskN(dataBits),
			isa.AfterShl(v.Regs.ReadBound(inst.Rs1), shamt, dataBits))
		return res, true
	case isa.OpSrl:
		shamt := uint32(v.Regs.Read(inst.Rs2)) & 0x3F
		v.Regs.WriteNormalized(inst.Rd, v.Regs.Read(inst.Rs1)>>shamt,
			isa.AfterSrl(v.Regs.ReadBound(inst.Rs1), shamt))
		return res, true
	case isa.OpSra:
		shamt := uint32(v.Regs.Read(inst.Rs2)) & 0x3F
		signed := toSigned(v.Regs.Read(inst.Rs1), regBits)
		v.Regs.WriteNormalized(inst.Rd, uint64(signed>>shamt)&runtime.MaskN(regBits),
			isa.AfterSra(v.Regs.ReadBound(inst.Rs1), shamt, dataBits))
		return res, true

	case isa.OpSlli:
		shamt := uint32(inst.Shamt())
		v.Regs.WriteNormalized(inst.Rd, (v.Regs.Read(inst.Rs1)<<shamt)&runtime.MaskN(dataBits),
			isa.AfterShl(v.Regs.ReadBound(inst.Rs1), shamt, dataBits))
		return res, true
	case isa.OpSrli:
		shamt := uint32(inst.Shamt())
		v.Regs.WriteNormalized(inst.Rd, v.Regs.Read(inst.Rs1)>>shamt,
			isa.AfterSrl(v.Regs.ReadBound(inst.Rs1), shamt))
		return res, true
	case isa.OpSrai:
		shamt := uint32(inst.Shamt())
		signed := toSigned(v.Regs.Read(inst.Rs1), regBits)
		v.Regs.WriteNormalized(inst.Rd, uint64(signed>>shamt)&runtime.MaskN(regBits),
			isa.AfterSra(v.Regs.ReadBound(inst.Rs1), shamt, dataBits))
		return res, true

	case isa.OpSltu:
		v.setCompare(inst.Rd, v.Regs.Read(inst.Rs1) < v.Regs.Read(inst.Rs2))
		return res, true
	case isa.OpSgeu:
		v.setCompare(inst.Rd, v.Regs.Read(inst.Rs1) >= v.Regs.Read(inst.Rs2))
		return res, true
	case isa.OpSlt:
		v.setCompare(inst.Rd, toSigned(v.Regs.Read(inst.Rs1), regBits) < toSigned(v.Regs.Read(inst.Rs2), regBits))
		return res, true
	case isa.OpSge:
		v.setCompare(inst.Rd, toSigned(v.Regs.Read(inst.Rs1), regBits) >= toSigned(v.Regs.Read(inst.Rs2), regBits))
		return res, true
	case isa.OpSeq:
		v.setCompare(inst.Rd, v.Regs.Read(inst.Rs1) == v.Regs.Read(inst.Rs2))
		return res, true
	case isa.OpSne:
		v.setCompare(inst.Rd, v.Regs.Read(inst.Rs1) != v.Regs.Read(inst.Rs2))
		return res, true

	case isa.OpCmov, isa.OpCmovnz:
		if !v.Regs.IsZeroRaw(inst.Rs2) {
			v.copyRegister(inst.Rd, inst.Rs1)
		}
		return res, true
	case isa.OpCmovz:
		if v.Regs.IsZeroRaw(inst.Rs2) {
			v.copyRegister(inst.Rd, inst.Rs1)
		}
		return res, true

	case isa.OpLb, isa.OpLbu, isa.OpLh, isa.OpLhu, isa.OpLw, isa.OpLd:
		return v.executeLoad(inst, pc, fallthroughPC)

	case isa.OpSb, isa.OpSh, isa.OpSw, isa.OpSd:
		return v.executeStore(inst, pc, fallthroughPC)

	case isa.OpBeq, isa.OpBne, isa.OpBlt, isa.OpBge, isa.OpBltu, isa.OpBgeu:
		return v.executeBranch(inst, pc, fallthroughPC)

	case isa.OpJal:
		v.Regs.WriteNormalized(inst.Rd, fallthroughPC, isa.ProgramWidthBound(dataBits))
		res.nextPC = uint64(int64(pc) + int64(inst.Offset))
		res.triggerCheckpoint = true
		return res, true

	case isa.OpJalr:
		target := uint64(int64(v.Regs.Read(inst.Rs1))+int64(inst.Imm)) &^ 1
		v.Regs.WriteNormalized(inst.Rd, fallthroughPC, isa.ProgramWidthBound(dataBits))
		res.nextPC = target
		res.triggerCheckpoint = true
		return res, true

	case isa.OpEcall:
		nextPC, ok := v.syscall(pc, fallthroughPC)
		res.nextPC = nextPC
		return res, ok

	case isa.OpEbreak:
		v.Halt = HaltReason{Kind: HaltEbreak}
		return res, false

	default:
		v.fault(FaultDecodeError, pc, "unhandled opcode")
		return res, false
	}
}

func (v *VM) setCompare(rd isa.Register, cond bool) {
	var value uint64
	if cond {
		value = 1
	}
	v.Regs.WriteNormalized(rd, value, isa.AfterCompare())
}

func (v *VM) copyRegister(rd, rs isa.Register) {
	v.Regs.WriteNormalized(rd, v.Regs.Read(rs), v.Regs.ReadBound(rs))
}

// deferRangeCheck enqueues rd's post-op bound for a later checkpoint if it
// now exceeds the data width.
func (v *VM) deferRangeCheck(rd isa.Register, pc uint64) {
	if rd.IsZero() {
		return
	}
	v.RangeCheck.Defer(v.Regs.Read(rd), v.Regs.ReadBound(rd), pc)
}

func (v *VM) executeLoad(inst isa.Instruction, pc, fallthroughPC uint64) (executeResult, bool) {
	res := executeResult{nextPC: fallthroughPC}
	width, signed := loadWidthOf(inst.Op)
	addr := uint64(int64(v.Regs.Read(inst.Rs1)) + int64(inst.Imm))
	raw, err := v.Mem.Read(addr, width)
	if err != nil {
		v.faultFromMemErr(err, pc)
		return res, false
	}
	bound := isa.TypeWidthBound(uint32(width))
	value := raw
	if signed {
		value = uint64(toSigned(raw, uint32(width)*8)) & runtime.MaskN(v.Regs.EffectiveBits())
		bound = isa.AfterSignExtend(v.Cfg.DataBits())
	}
	v.Regs.WriteNormalized(inst.Rd, value, bound)
	v.recordMemOp(memory.NewRead(addr, raw, v.Cycle, width, bound))
	return res, true
}

func (v *VM) executeStore(inst isa.Instruction, pc, fallthroughPC uint64) (executeResult, bool) {
	res := executeResult{nextPC: fallthroughPC, triggerCheckpoint: true}
	width := storeWidthOf(inst.Op)
	addr := uint64(int64(v.Regs.Read(inst.Rs1)) + int64(inst.Imm))
	value := v.Regs.Read(inst.Rs2) & runtime.MaskN(uint32(width)*8)
	if err := v.Mem.Write(addr, value, width); err != nil {
		v.faultFromMemErr(err, pc)
		return res, false
	}
	v.recordMemOp(memory.NewWrite(addr, value, v.Cycle, width, v.Regs.ReadBound(inst.Rs2)))
	return res, true
}

func (v *VM) executeBranch(inst isa.Instruction, pc, fallthroughPC uint64) (executeResult, bool) {
	res := executeResult{nextPC: fallthroughPC}
	a, b := v.Regs.Read(inst.Rs1), v.Regs.Read(inst.Rs2)
	regBits := v.Regs.EffectiveBits()
	var taken bool
	switch inst.Op {
	case isa.OpBeq:
		taken = a == b
	case isa.OpBne:
		taken = a != b
	case isa.OpBlt:
		taken = toSigned(a, regBits) < toSigned(b, regBits)
	case isa.OpBge:
		taken = toSigned(a, regBits) >= toSigned(b, regBits)
	case isa.OpBltu:
		taken = a < b
	case isa.OpBgeu:
		taken = a >= b
	}
	if taken {
		res.nextPC = uint64(int64(pc) + int64(inst.Offset))
	}
	res.triggerCheckpoint = true
	return res, true
}
