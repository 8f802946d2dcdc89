package runtime

import "github.com/zkir-vm/zkir/isa"

// ExecuteAdd implements the deferred ADD of spec.md §4.6: limb-wise
// addition without carry propagation. If any limb would exceed
// 2^limb_bits, both sources are normalized first (emitting their carry
// witnesses) and the sum is retried against the now-Normalized operands.
func ExecuteAdd(rf *RegisterFile, rd, rs1, rs2 isa.Register, cycle, pc uint64, w *Witnesses) {
	a := limbsOf(rf, rs1)
	b := limbsOf(rf, rs2)
	if wouldOverflowLimb(rf.Cfg, a, b) {
		NormalizeRegister(rf, rs1, cycle, pc, CauseOverflow, isa.OpAdd, w)
		NormalizeRegister(rf, rs2, cycle, pc, CauseOverflow, isa.OpAdd, w)
		a = limbsOf(rf, rs1)
		b = limbsOf(rf, rs2)
	}
	sum := make([]uint64, len(a))
	for i := range a {
		sum[i] = a[i] + b[i]
	}
	bound := isa.AfterAdd(rf.ReadBound(rs1), rf.ReadBound(rs2), rf.Cfg.DataBits(), rf.Cfg.Headroom())
	rf.WriteAccumulated(rd, sum, bound)
}

// ExecuteAddi is ExecuteAdd with an assembled immediate as the second
// operand (spec.md §4.6, §4.8).
func ExecuteAddi(rf *RegisterFile, rd, rs1 isa.Register, imm int32, cycle, pc uint64, w *Witnesses) {
	a := limbsOf(rf, rs1)
	b := splitSignedImmediate(rf.Cfg, imm)
	if wouldOverflowLimb(rf.Cfg, a, b) {
		NormalizeRegister(rf, rs1, cycle, pc, CauseOverflow, isa.OpAddi, w)
		a = limbsOf(rf, rs1)
	}
	sum := make([]uint64, len(a))
	for i := range a {
		sum[i] = a[i] + b[i]
	}
	immBound := isa.ConstantBound(uint64(int64(imm)) & maskN(rf.Cfg.DataBits()))
	bound := isa.AfterAdd(rf.ReadBound(rs1), immBound, rf.Cfg.DataBits(), rf.Cfg.Headroom())
	rf.WriteAccumulated(rd, sum, bound)
}

// ExecuteSub implements deferred SUB (spec.md §4.6): limbs subtract with
// wrapping modulo 2^limb_bits, relying on the field arithmetic to make
// this equivalent to the correct modular result (see DESIGN.md for the
// Mersenne-31-specific justification spec.md §9 calls out).
func ExecuteSub(rf *RegisterFile, rd, rs1, rs2 isa.Register, cycle, pc uint64, w *Witnesses) {
	a := limbsOf(rf, rs1)
	b := limbsOf(rf, rs2)
	limbMod := uint64(1) << rf.Cfg.LimbBits
	diff := make([]uint64, len(a))
	for i := range a {
		diff[i] = (a[i] + limbMod - (b[i] % limbMod)) % limbMod
	}
	bound := isa.AfterSub(rf.ReadBound(rs1), rf.ReadBound(rs2), rf.Cfg.DataBits(), rf.Cfg.Headroom())
	rf.WriteAccumulated(rd, diff, bound)
}

// wouldOverflowLimb reports whether summing a and b limb-wise would push
// any limb's stored magnitude past 2^limb_bits, the accumulated
// representation's storage ceiling.
func wouldOverflowLimb(cfg isa.Config, a, b []uint64) bool {
	limbMask := cfg.LimbMask()
	for i := range a {
		if a[i]+b[i] > limbMask {
			return true
		}
	}
	return false
}
