package isa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zkir-vm/zkir/isa"
)

const dataBits = 40
const headroom = 10

func TestConstantBoundOfZero(t *testing.T) {
	b := isa.ConstantBound(0)
	assert.Equal(t, uint32(0), b.MaxBits)
	assert.Equal(t, isa.SourceConstant, b.Source)
}

func TestConstantBoundIsFloorLog2Plus1(t *testing.T) {
	assert.Equal(t, uint32(1), isa.ConstantBound(1).MaxBits)
	assert.Equal(t, uint32(3), isa.ConstantBound(7).MaxBits)
	assert.Equal(t, uint32(4), isa.ConstantBound(8).MaxBits)
}

func TestAfterAddIsMaxPlusOne(t *testing.T) {
	a := isa.ValueBound{MaxBits: 10}
	b := isa.ValueBound{MaxBits: 20}
	got := isa.AfterAdd(a, b, dataBits, headroom)
	assert.Equal(t, uint32(21), got.MaxBits)
	assert.Equal(t, isa.SourceComputed, got.Source)
}

func TestAfterAddSaturatesAtDataBitsPlusHeadroom(t *testing.T) {
	a := isa.ValueBound{MaxBits: dataBits + headroom}
	b := isa.ValueBound{MaxBits: dataBits + headroom}
	got := isa.AfterAdd(a, b, dataBits, headroom)
	assert.Equal(t, dataBits+headroom, got.MaxBits)
}

func TestAfterSubIsMax(t *testing.T) {
	a := isa.ValueBound{MaxBits: 12}
	b := isa.ValueBound{MaxBits: 30}
	assert.Equal(t, uint32(30), isa.AfterSub(a, b, dataBits, headroom).MaxBits)
}

func TestAfterMulIsSum(t *testing.T) {
	a := isa.ValueBound{MaxBits: 15}
	b := isa.ValueBound{MaxBits: 15}
	assert.Equal(t, uint32(30), isa.AfterMul(a, b, dataBits, headroom).MaxBits)
}

func TestAfterMulSaturates(t *testing.T) {
	a := isa.ValueBound{MaxBits: dataBits}
	b := isa.ValueBound{MaxBits: dataBits}
	assert.Equal(t, dataBits+headroom, isa.AfterMul(a, b, dataBits, headroom).MaxBits)
}

func TestAfterDivRemIsMin(t *testing.T) {
	dividend := isa.ValueBound{MaxBits: 30}
	divisor := isa.ValueBound{MaxBits: 8}
	assert.Equal(t, uint32(8), isa.AfterDivRem(dividend, divisor).MaxBits)
}

func TestAfterAndIsMin(t *testing.T) {
	a := isa.ValueBound{MaxBits: 5}
	b := isa.ValueBound{MaxBits: 40}
	assert.Equal(t, uint32(5), isa.AfterAnd(a, b).MaxBits)
}

func TestAfterOrXorIsMax(t *testing.T) {
	a := isa.ValueBound{MaxBits: 5}
	b := isa.ValueBound{MaxBits: 40}
	assert.Equal(t, uint32(40), isa.AfterOrXor(a, b).MaxBits)
}

func TestAfterNotFillsDataBits(t *testing.T) {
	assert.Equal(t, uint32(dataBits), isa.AfterNot(dataBits).MaxBits)
}

func TestAfterShlAddsShamtCappedAtDataBits(t *testing.T) {
	a := isa.ValueBound{MaxBits: 10}
	assert.Equal(t, uint32(15), isa.AfterShl(a, 5, dataBits).MaxBits)
	assert.Equal(t, dataBits, isa.AfterShl(a, dataBits, dataBits).MaxBits)
}

func TestAfterSrlSubtractsShamtFloorsAtZero(t *testing.T) {
	a := isa.ValueBound{MaxBits: 10}
	assert.Equal(t, uint32(4), isa.AfterSrl(a, 6).MaxBits)
	assert.Equal(t, uint32(0), isa.AfterSrl(a, 20).MaxBits)
}

func TestAfterSraConservativeWhenAtFullWidth(t *testing.T) {
	a := isa.ValueBound{MaxBits: dataBits}
	assert.Equal(t, dataBits, isa.AfterSra(a, 5, dataBits).MaxBits)
}

func TestAfterSraShrinksBelowFullWidth(t *testing.T) {
	a := isa.ValueBound{MaxBits: 20}
	assert.Equal(t, uint32(15), isa.AfterSra(a, 5, dataBits).MaxBits)
	assert.Equal(t, uint32(0), isa.AfterSra(a, 25, dataBits).MaxBits)
}

func TestAfterCompareIsOneBit(t *testing.T) {
	assert.Equal(t, uint32(1), isa.AfterCompare().MaxBits)
}

func TestNeedsRangeCheck(t *testing.T) {
	assert.False(t, isa.ValueBound{MaxBits: dataBits}.NeedsRangeCheck(dataBits))
	assert.True(t, isa.ValueBound{MaxBits: dataBits + 1}.NeedsRangeCheck(dataBits))
}

func TestCryptoOutputBoundWidths(t *testing.T) {
	assert.Equal(t, uint32(32), isa.CryptoOutputBound(isa.CryptoSha256).MaxBits)
	assert.Equal(t, uint32(64), isa.CryptoOutputBound(isa.CryptoKeccak256).MaxBits)
	assert.Equal(t, uint32(31), isa.CryptoOutputBound(isa.CryptoPoseidon2).MaxBits)
	assert.Equal(t, uint32(32), isa.CryptoOutputBound(isa.CryptoBlake3).MaxBits)
}

func TestTypeWidthBound(t *testing.T) {
	assert.Equal(t, uint32(8), isa.TypeWidthBound(1).MaxBits)
	assert.Equal(t, uint32(32), isa.TypeWidthBound(4).MaxBits)
}
