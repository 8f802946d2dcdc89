// Package runtime implements the components of ZKIR execution that sit
// between the ISA definitions and the VM driver: register state tagging
// (Normalized | Accumulated), deferred-carry limb arithmetic, carry
// normalization, the observation-point policy, the range-check tracker,
// and the crypto witness emitter (spec.md §2 components G-M).
package runtime

import "github.com/zkir-vm/zkir/isa"

// maskN returns a mask of the low n bits, saturating to all-ones when n
// would overflow a uint64 (only reachable for configurations this
// reference implementation does not target, see DESIGN.md).
func maskN(n uint32) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<n - 1
}

// MaskN is the exported form of maskN, used by package vm to mask/extend
// values to a register's data width.
func MaskN(n uint32) uint64 { return maskN(n) }

// splitLimbs decomposes full into numLimbs limbs of strideBits each,
// little-limb-first. strideBits is the limb's positional weight, which is
// always normalized_bits regardless of a value's Normalized/Accumulated
// tag (see DESIGN.md): only the permitted magnitude per limb differs
// between the two states, not the digit weight.
func splitLimbs(full uint64, strideBits uint32, numLimbs uint8) []uint64 {
	limbs := make([]uint64, numLimbs)
	mask := maskN(strideBits)
	for i := range limbs {
		limbs[i] = full & mask
		full >>= strideBits
	}
	return limbs
}

// joinLimbs reconstructs a uint64 from limbs packed at strideBits per limb.
func joinLimbs(limbs []uint64, strideBits uint32) uint64 {
	var result uint64
	for i := len(limbs) - 1; i >= 0; i-- {
		result = (result << strideBits) | limbs[i]
	}
	return result
}

// limbsOf returns the raw limbs currently stored for r (whatever stride
// they are packed at), without interpreting them as an integer. Deferred
// arithmetic operates limb-wise regardless of the source state tag.
func limbsOf(rf *RegisterFile, r isa.Register) []uint64 {
	if r.IsZero() {
		return make([]uint64, rf.Cfg.DataLimbs)
	}
	return append([]uint64(nil), rf.Regs[r.Index()].Value.Limbs...)
}

// splitSignedImmediate sign-extends imm to the register's data width and
// splits it into normalized_bits-wide limbs: an assembled immediate has no
// deferred carries of its own, so it enters deferred arithmetic already at
// normalized magnitude.
func splitSignedImmediate(cfg isa.Config, imm int32) []uint64 {
	full := uint64(int64(imm)) & maskN(cfg.DataBits())
	return splitLimbs(full, cfg.NormalizedBits(), cfg.DataLimbs)
}
