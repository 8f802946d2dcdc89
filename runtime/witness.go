package runtime

import "fmt"

// Witnesses aggregates the append-only auxiliary streams the witness
// generator produces alongside the per-cycle trace (spec.md §2 component
// L, §4.6, §4.9, §4.11): normalization events, range-check decompositions,
// and the fixed-round crypto traces.
type Witnesses struct {
	Normalizations []NormalizationWitness
	RangeChecks    []RangeCheckWitness
	Sha256         []Sha256Witness
	Keccak256      []KeccakWitness
	Blake3         []Blake3Witness
	Poseidon2      []Poseidon2Witness
}

// BoundViolationError reports a range-check failure: a deferred value's
// chunk decomposition contained a value outside the lookup table (spec.md
// §7 BoundViolation).
type BoundViolationError struct {
	PC    uint64
	Value uint64
}

func (e *BoundViolationError) Error() string {
	return fmt.Sprintf("runtime: bound violation for value %d at pc 0x%x", e.Value, e.PC)
}
