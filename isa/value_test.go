package isa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zkir-vm/zkir/isa"
)

func TestValueRoundTripsThroughLimbs(t *testing.T) {
	cfg := isa.DefaultConfig()
	v := isa.FromUint64(cfg, 0xdeadbeef, cfg.NormalizedBits())
	assert.Equal(t, uint64(0xdeadbeef), v.ToUint64(cfg.NormalizedBits()))
}

func TestValueLimbsAreLittleLimbFirst(t *testing.T) {
	cfg := isa.DefaultConfig()
	stride := cfg.NormalizedBits()
	x := uint64(1) << stride // exactly spills into the second limb
	v := isa.FromUint64(cfg, x, stride)
	assert.Equal(t, uint64(0), v.Limbs[0])
	assert.Equal(t, uint64(1), v.Limbs[1])
}

func TestValueCloneIsIndependent(t *testing.T) {
	cfg := isa.DefaultConfig()
	v := isa.FromUint64(cfg, 42, cfg.NormalizedBits())
	clone := v.Clone()
	clone.Limbs[0] = 99
	assert.NotEqual(t, v.Limbs[0], clone.Limbs[0])
}

func TestNewValueIsZeroed(t *testing.T) {
	cfg := isa.DefaultConfig()
	v := isa.NewValue(cfg)
	assert.Len(t, v.Limbs, int(cfg.DataLimbs))
	for _, l := range v.Limbs {
		assert.Equal(t, uint64(0), l)
	}
}
