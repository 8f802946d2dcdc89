package runtime

import "github.com/zkir-vm/zkir/isa"

// StateTag is the sum type from spec.md §3/§4.6: a register's limbs are
// either fully carry-reduced (Normalized) or may still hold un-folded
// carries from deferred arithmetic (Accumulated).
type StateTag int

const (
	Normalized StateTag = iota
	Accumulated
)

func (t StateTag) String() string {
	if t == Normalized {
		return "normalized"
	}
	return "accumulated"
}

// RegisterEntry is one register's full state: its limbs, the bound on its
// raw numeric value, and its normalization tag.
//
// The digit weight of Value.Limbs[i] is always normalized_bits, for both
// tags (see DESIGN.md): what differs between Normalized and Accumulated is
// only the permitted magnitude per limb (< 2^normalized_bits vs
// < 2^limb_bits), not the positional stride used to reconstruct the
// integer. This keeps deferred addition a plain digit-wise sum that
// reconstructs to the exact integer result before any carry is folded.
type RegisterEntry struct {
	Value isa.Value
	Bound isa.ValueBound
	State StateTag
}

// RegisterFile holds ZKIR's 16 registers. R0 is never stored explicitly:
// reads synthesize it as a permanent Constant(0) zero, and writes to it
// are silently discarded (spec.md §3).
type RegisterFile struct {
	Cfg  isa.Config
	Regs [isa.NumRegisters]RegisterEntry
}

// EffectiveBits is the actual number of bits a register can round-trip
// through Read/WriteNormalized: normalized_bits per limb, not limb_bits
// (see DESIGN.md). isa.Config.DataBits stays the nominal width bound
// propagation saturates against; this is the narrower width signed
// interpretation and register masking must use instead, since that is
// where the real sign bit and truncation boundary sit.
func (rf *RegisterFile) EffectiveBits() uint32 {
	return rf.Cfg.NormalizedBits() * uint32(rf.Cfg.DataLimbs)
}

// NewRegisterFile builds a zeroed, all-Normalized register file.
func NewRegisterFile(cfg isa.Config) *RegisterFile {
	rf := &RegisterFile{Cfg: cfg}
	zero := isa.ValueBound{MaxBits: 0, Source: isa.SourceConstant}
	for i := range rf.Regs {
		rf.Regs[i] = RegisterEntry{Value: isa.NewValue(cfg), Bound: zero, State: Normalized}
	}
	return rf
}

// Read reconstructs r's current raw numeric value at normalized_bits
// stride. R0 always reads 0.
func (rf *RegisterFile) Read(r isa.Register) uint64 {
	if r.IsZero() {
		return 0
	}
	return rf.Regs[r.Index()].Value.ToUint64(rf.Cfg.NormalizedBits())
}

// ReadBound returns the ValueBound currently tracked for r. R0 is
// permanently Constant(0).
func (rf *RegisterFile) ReadBound(r isa.Register) isa.ValueBound {
	if r.IsZero() {
		return isa.ValueBound{MaxBits: 0, Source: isa.SourceConstant}
	}
	return rf.Regs[r.Index()].Bound
}

// ReadState returns r's current tag. R0 is permanently Normalized.
func (rf *RegisterFile) ReadState(r isa.Register) StateTag {
	if r.IsZero() {
		return Normalized
	}
	return rf.Regs[r.Index()].State
}

// WriteNormalized stores the full integer v into r, tagged Normalized.
// Writes to R0 are silently discarded.
func (rf *RegisterFile) WriteNormalized(r isa.Register, v uint64, bound isa.ValueBound) {
	if r.IsZero() {
		return
	}
	limbs := splitLimbs(v&maskN(rf.Cfg.DataBits()), rf.Cfg.NormalizedBits(), rf.Cfg.DataLimbs)
	val := isa.Value{Limbs: limbs}
	rf.Regs[r.Index()] = RegisterEntry{Value: val, Bound: bound, State: Normalized}
}

// WriteAccumulated stores already limb-wise-computed values into r, tagged
// Accumulated. Writes to R0 are silently discarded.
func (rf *RegisterFile) WriteAccumulated(r isa.Register, limbs []uint64, bound isa.ValueBound) {
	if r.IsZero() {
		return
	}
	v := isa.NewValue(rf.Cfg)
	copy(v.Limbs, limbs)
	rf.Regs[r.Index()] = RegisterEntry{Value: v, Bound: bound, State: Accumulated}
}

// IsZeroRaw reports whether r's underlying limbs are all zero, without
// normalizing first. cmov's condition test uses this rather than Read
// because zero-vs-nonzero is representation agnostic under deferred-carry
// arithmetic (spec.md §4.7): it is not an observation point.
func (rf *RegisterFile) IsZeroRaw(r isa.Register) bool {
	if r.IsZero() {
		return true
	}
	for _, l := range rf.Regs[r.Index()].Value.Limbs {
		if l != 0 {
			return false
		}
	}
	return true
}

// Snapshot deep-copies every register entry for a trace row's pre-state
// (spec.md design note: trace rows record the operand values before the
// cycle's effect, which matters when rd aliases rs1/rs2).
func (rf *RegisterFile) Snapshot() [isa.NumRegisters]RegisterEntry {
	var out [isa.NumRegisters]RegisterEntry
	for i, e := range rf.Regs {
		out[i] = RegisterEntry{Value: e.Value.Clone(), Bound: e.Bound, State: e.State}
	}
	return out
}
