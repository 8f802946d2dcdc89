package runtime

import "github.com/zkir-vm/zkir/isa"

// PendingCheck is a value whose propagated bound exceeds data_bits and
// therefore owes a deferred range check before the next checkpoint
// (spec.md §4.2, §4.9).
type PendingCheck struct {
	Value uint64
	Bound isa.ValueBound
	PC    uint64
}

// RangeCheckWitness is the chunk decomposition a checkpoint emits for one
// pending value: 2*data_limbs chunks of chunk_bits each, low half then
// high half per limb.
type RangeCheckWitness struct {
	PC        uint64
	Chunks    []uint64
	ChunkBits uint32
}

// RangeCheckTracker owns the lookup table of valid chunk_bits-wide values
// and the queue of values awaiting a checkpoint (spec.md §4.9). Disabling
// it (Enabled=false) affects only whether checkpoints/witnesses are
// produced, never program semantics (spec.md §9 design note).
type RangeCheckTracker struct {
	Cfg     isa.Config
	Enabled bool
	Table   map[uint64]bool
	Pending []PendingCheck
}

// NewRangeCheckTracker builds a tracker whose lookup table enumerates
// every value representable in chunk_bits.
func NewRangeCheckTracker(cfg isa.Config) *RangeCheckTracker {
	size := cfg.TableSize()
	table := make(map[uint64]bool, size)
	for i := uint64(0); i < uint64(size); i++ {
		table[i] = true
	}
	return &RangeCheckTracker{Cfg: cfg, Enabled: true, Table: table}
}

// Defer records value as owing a range check. A no-op if the tracker is
// disabled or value's bound does not exceed data_bits.
func (t *RangeCheckTracker) Defer(value uint64, bound isa.ValueBound, pc uint64) {
	if !t.Enabled || !bound.NeedsRangeCheck(t.Cfg.DataBits()) {
		return
	}
	t.Pending = append(t.Pending, PendingCheck{Value: value, Bound: bound, PC: pc})
}

// NeedsCheckpoint reports whether a checkpoint should fire per spec.md
// §4.9: 16 or more checks pending, or any pending bound has grown to
// data_bits+4.
func (t *RangeCheckTracker) NeedsCheckpoint() bool {
	if len(t.Pending) >= 16 {
		return true
	}
	threshold := t.Cfg.DataBits() + 4
	for _, p := range t.Pending {
		if p.Bound.MaxBits >= threshold {
			return true
		}
	}
	return false
}

// Checkpoint decomposes every pending value into chunks, asserts each
// chunk is a table member, appends the resulting witnesses to w, and
// clears the pending queue. A chunk outside the table surfaces as a
// *BoundViolationError (spec.md §7: range-check failures are never caught
// locally).
func (t *RangeCheckTracker) Checkpoint(w *Witnesses) ([]RangeCheckWitness, error) {
	var out []RangeCheckWitness
	for _, p := range t.Pending {
		chunks := decomposeChunks(t.Cfg, p.Value)
		for _, c := range chunks {
			if !t.Table[c] {
				return nil, &BoundViolationError{PC: p.PC, Value: p.Value}
			}
		}
		out = append(out, RangeCheckWitness{PC: p.PC, Chunks: chunks, ChunkBits: t.Cfg.ChunkBits()})
	}
	if w != nil {
		w.RangeChecks = append(w.RangeChecks, out...)
	}
	t.Pending = nil
	return out, nil
}

// decomposeChunks splits value into data_limbs limb_bits-wide limbs, then
// each limb into a low and high chunk_bits-wide chunk (spec.md §4.9).
func decomposeChunks(cfg isa.Config, value uint64) []uint64 {
	limbs := splitLimbs(value, uint32(cfg.LimbBits), cfg.DataLimbs)
	chunkBits := cfg.ChunkBits()
	chunkMask := cfg.ChunkMask()
	out := make([]uint64, 0, 2*len(limbs))
	for _, l := range limbs {
		out = append(out, l&chunkMask, (l>>chunkBits)&chunkMask)
	}
	return out
}
