package runtime

import (
	"testing"

	"github.com/zkir-vm/zkir/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizationWitnessVerify(t *testing.T) {
	cfg := isa.DefaultConfig()
	rf := NewRegisterFile(cfg)
	rf.WriteAccumulated(isa.A0, []uint64{cfg.LimbMask(), cfg.LimbMask()}, isa.ProgramWidthBound(cfg.DataBits()))

	w := &Witnesses{}
	NormalizeRegister(rf, isa.A0, 0, 0, CauseExplicit, isa.OpAdd, w)

	require.Len(t, w.Normalizations, 1)
	assert.True(t, w.Normalizations[0].Verify(), "a genuine normalization event must satisfy its own law")
}

func TestNormalizationWitnessVerifyRejectsTamperedCarries(t *testing.T) {
	cfg := isa.DefaultConfig()
	rf := NewRegisterFile(cfg)
	rf.WriteAccumulated(isa.A0, []uint64{cfg.LimbMask(), cfg.LimbMask()}, isa.ProgramWidthBound(cfg.DataBits()))

	w := &Witnesses{}
	NormalizeRegister(rf, isa.A0, 0, 0, CauseExplicit, isa.OpAdd, w)
	tampered := w.Normalizations[0]
	tampered.Carries[0]++
	assert.False(t, tampered.Verify(), "a tampered carry must fail Verify")
}

func TestNormalizeRegisterIsNoopWhenAlreadyNormalized(t *testing.T) {
	cfg := isa.DefaultConfig()
	rf := NewRegisterFile(cfg)
	rf.WriteNormalized(isa.A0, 42, isa.ConstantBound(42))

	w := &Witnesses{}
	NormalizeRegister(rf, isa.A0, 0, 0, CauseExplicit, isa.OpAdd, w)

	assert.Empty(t, w.Normalizations, "normalizing an already-Normalized register should not emit a witness")
	assert.Equal(t, uint64(42), rf.Read(isa.A0))
}

func TestNormalizeRegisterIsNoopOnR0(t *testing.T) {
	cfg := isa.DefaultConfig()
	rf := NewRegisterFile(cfg)
	w := &Witnesses{}
	NormalizeRegister(rf, isa.Zero, 0, 0, CauseExplicit, isa.OpAdd, w)
	assert.Empty(t, w.Normalizations)
	assert.Equal(t, uint64(0), rf.Read(isa.Zero))
}
