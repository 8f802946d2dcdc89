package isa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zkir-vm/zkir/isa"
)

func TestDefaultConfigValidates(t *testing.T) {
	assert.NoError(t, isa.DefaultConfig().Validate())
}

func TestConfigDerivedWidths(t *testing.T) {
	c := isa.DefaultConfig()
	assert.Equal(t, uint32(40), c.DataBits())
	assert.Equal(t, uint32(40), c.AddrBits())
	assert.Equal(t, uint32(10), c.ChunkBits())
	assert.Equal(t, uint32(1024), c.TableSize())
	assert.Equal(t, uint32(10), c.NormalizedBits())
	assert.Equal(t, uint32(10), c.Headroom())
}

func TestConfigValidateRejectsOutOfRangeLimbBits(t *testing.T) {
	c := isa.Config{LimbBits: 15, DataLimbs: 2, AddrLimbs: 2}
	assert.Error(t, c.Validate())

	c = isa.Config{LimbBits: 31, DataLimbs: 2, AddrLimbs: 2}
	assert.Error(t, c.Validate())

	c = isa.Config{LimbBits: 21, DataLimbs: 2, AddrLimbs: 2}
	assert.Error(t, c.Validate(), "limb_bits must be even")
}

func TestConfigValidateRejectsOutOfRangeLimbCounts(t *testing.T) {
	c := isa.Config{LimbBits: 20, DataLimbs: 0, AddrLimbs: 2}
	assert.Error(t, c.Validate())

	c = isa.Config{LimbBits: 20, DataLimbs: 5, AddrLimbs: 2}
	assert.Error(t, c.Validate())

	c = isa.Config{LimbBits: 20, DataLimbs: 2, AddrLimbs: 3}
	assert.Error(t, c.Validate())
}

func TestNormalizedBitsReservesTenBitsHeadroom(t *testing.T) {
	c := isa.Config{LimbBits: 30, DataLimbs: 2, AddrLimbs: 2}
	assert.Equal(t, uint32(20), c.NormalizedBits())
	assert.Equal(t, uint32(10), c.Headroom())
}

func TestNormalizedBitsFloorsAtLimbBitsWhenSmall(t *testing.T) {
	c := isa.Config{LimbBits: 10, DataLimbs: 2, AddrLimbs: 2}
	assert.Equal(t, uint32(10), c.NormalizedBits())
	assert.Equal(t, uint32(0), c.Headroom())
}

func TestMasks(t *testing.T) {
	c := isa.DefaultConfig()
	assert.Equal(t, uint64(1<<20)-1, c.LimbMask())
	assert.Equal(t, uint64(1<<10)-1, c.NormalizedMask())
	assert.Equal(t, uint64(1<<10)-1, c.ChunkMask())
}
