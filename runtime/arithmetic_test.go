package runtime

import (
	"math/rand"
	"testing"

	"github.com/zkir-vm/zkir/isa"
	"github.com/stretchr/testify/assert"
)

// readNormalized forces r to Normalized and returns its integer value,
// without depending on Read's stride assumption holding for Accumulated
// state.
func readNormalized(rf *RegisterFile, r isa.Register, w *Witnesses) uint64 {
	NormalizeRegister(rf, r, 0, 0, CauseExplicit, isa.OpAdd, w)
	return rf.Read(r)
}

func TestDeferredAddMatchesModularSum(t *testing.T) {
	cfg := isa.DefaultConfig()
	rf := NewRegisterFile(cfg)
	mod := uint64(1) << rf.EffectiveBits()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		x := rng.Uint64() % mod
		y := rng.Uint64() % mod

		rf := NewRegisterFile(cfg)
		w := &Witnesses{}
		rf.WriteNormalized(isa.A0, x, isa.ProgramWidthBound(cfg.DataBits()))
		rf.WriteNormalized(isa.A1, y, isa.ProgramWidthBound(cfg.DataBits()))

		ExecuteAdd(rf, isa.A2, isa.A0, isa.A1, 0, 0, w)
		got := readNormalized(rf, isa.A2, w)

		assert.Equal(t, (x+y)%mod, got, "normalize(ADD(x,y)) must equal (x+y) mod 2^effective_bits")
	}
}

func TestDeferredSubMatchesModularDifference(t *testing.T) {
	cfg := isa.DefaultConfig()
	rf0 := NewRegisterFile(cfg)
	mod := uint64(1) << rf0.EffectiveBits()
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 200; i++ {
		x := rng.Uint64() % mod
		y := rng.Uint64() % mod

		rf := NewRegisterFile(cfg)
		w := &Witnesses{}
		rf.WriteNormalized(isa.A0, x, isa.ProgramWidthBound(cfg.DataBits()))
		rf.WriteNormalized(isa.A1, y, isa.ProgramWidthBound(cfg.DataBits()))

		ExecuteSub(rf, isa.A2, isa.A0, isa.A1, 0, 0, w)
		got := readNormalized(rf, isa.A2, w)

		want := (x + mod - y) % mod
		assert.Equal(t, want, got, "normalize(SUB(x,y)) must equal (x-y) mod 2^effective_bits")
	}
}

func TestDeferredAddChainBeforeNormalization(t *testing.T) {
	cfg := isa.DefaultConfig()
	rf := NewRegisterFile(cfg)
	mod := uint64(1) << rf.EffectiveBits()
	w := &Witnesses{}

	rf.WriteNormalized(isa.A0, 5, isa.ConstantBound(5))
	rf.WriteNormalized(isa.A1, 7, isa.ConstantBound(7))
	ExecuteAdd(rf, isa.A2, isa.A0, isa.A1, 0, 0, w)
	ExecuteAdd(rf, isa.A3, isa.A2, isa.A2, 0, 0, w)

	assert.Equal(t, Accumulated, rf.ReadState(isa.A3), "a chained deferred add should stay Accumulated until observed")
	got := readNormalized(rf, isa.A3, w)
	assert.Equal(t, (24)%mod, got)
}

func TestWriteToZeroRegisterIsDiscarded(t *testing.T) {
	cfg := isa.DefaultConfig()
	rf := NewRegisterFile(cfg)
	w := &Witnesses{}
	rf.WriteNormalized(isa.A0, 1, isa.ConstantBound(1))
	ExecuteAdd(rf, isa.Zero, isa.A0, isa.A0, 0, 0, w)
	assert.Equal(t, uint64(0), rf.Read(isa.Zero), "writes to r0 must be silently discarded")
}
