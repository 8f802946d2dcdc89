package runtime

import "github.com/zkir-vm/zkir/isa"

// NormalizationCause records why a register was normalized, carried in
// the witness for the downstream prover (spec.md §4.6).
type NormalizationCause int

const (
	CauseObservationPoint NormalizationCause = iota
	CauseOverflow
	CauseExplicit
)

func (c NormalizationCause) String() string {
	switch c {
	case CauseObservationPoint:
		return "observation_point"
	case CauseOverflow:
		return "overflow"
	case CauseExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// NormalizationWitness records one carry-extraction event: the
// accumulated limbs it started from, the normalized limbs and extracted
// carries it produced, and enough context (cycle/pc/register/cause) for
// the downstream prover to bind it to the instruction that triggered it.
type NormalizationWitness struct {
	Cycle            uint64
	PC               uint64
	Register         isa.Register
	Accumulated      []uint64
	Normalized       []uint64
	Carries          []uint64
	NormalizedBits   uint32
	LimbBits         uint32
	Cause            NormalizationCause
	TriggeringOpcode isa.Opcode
}

// Verify implements the normalization law from spec.md §8: recomputing
// carries/normalized from the stored accumulated limbs must reproduce the
// stored values bit-for-bit.
func (w NormalizationWitness) Verify() bool {
	normalized, carries := normalizeLimbs(w.NormalizedBits, w.Accumulated)
	if len(normalized) != len(w.Normalized) || len(carries) != len(w.Carries) {
		return false
	}
	for i := range normalized {
		if normalized[i] != w.Normalized[i] {
			return false
		}
	}
	for i := range carries {
		if carries[i] != w.Carries[i] {
			return false
		}
	}
	return true
}

// normalizeLimbs implements the carry-extraction algorithm of spec.md
// §4.6, generalized from the two-limb example to N limbs: each limb's
// carry out folds into the next limb in, and the final limb's carry out is
// dropped (the value wraps modulo 2^(normalized_bits*len(limbs))).
func normalizeLimbs(normalizedBits uint32, accumulated []uint64) (normalized, carries []uint64) {
	mask := maskN(normalizedBits)
	n := len(accumulated)
	normalized = make([]uint64, n)
	carries = make([]uint64, n)
	var carryIn uint64
	for i := 0; i < n; i++ {
		l := accumulated[i] + carryIn
		carries[i] = l >> normalizedBits
		normalized[i] = l & mask
		carryIn = carries[i]
	}
	return normalized, carries
}

// NormalizeRegister folds r's accumulated carries into a fresh Normalized
// value, appending a NormalizationWitness to w. A no-op if r is already
// Normalized (or is R0, which is permanently Normalized).
func NormalizeRegister(rf *RegisterFile, r isa.Register, cycle, pc uint64, cause NormalizationCause, triggeringOp isa.Opcode, w *Witnesses) {
	if r.IsZero() {
		return
	}
	entry := rf.Regs[r.Index()]
	if entry.State == Normalized {
		return
	}
	accumulated := append([]uint64(nil), entry.Value.Limbs...)
	normalized, carries := normalizeLimbs(rf.Cfg.NormalizedBits(), accumulated)

	if w != nil {
		w.Normalizations = append(w.Normalizations, NormalizationWitness{
			Cycle:            cycle,
			PC:               pc,
			Register:         r,
			Accumulated:      accumulated,
			Normalized:       normalized,
			Carries:          carries,
			NormalizedBits:   rf.Cfg.NormalizedBits(),
			LimbBits:         uint32(rf.Cfg.LimbBits),
			Cause:            cause,
			TriggeringOpcode: triggeringOp,
		})
	}

	newValue := isa.NewValue(rf.Cfg)
	copy(newValue.Limbs, normalized)
	// A freshly normalized value fits within normalized_bits per limb, so
	// its bound is no larger than that product (strictly under data_bits,
	// hence it owes no further range check by isa.ValueBound.NeedsRangeCheck).
	newBound := isa.ValueBound{MaxBits: rf.Cfg.NormalizedBits() * uint32(rf.Cfg.DataLimbs), Source: isa.SourceComputed}
	rf.Regs[r.Index()] = RegisterEntry{Value: newValue, Bound: newBound, State: Normalized}
}
