package isa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zkir-vm/zkir/isa"
)

func TestFieldAddCommutative(t *testing.T) {
	a := isa.NewFieldElement(123456789)
	b := isa.NewFieldElement(987654321)
	assert.Equal(t, a.Add(b), b.Add(a))
}

func TestFieldAddIdentity(t *testing.T) {
	a := isa.NewFieldElement(42)
	assert.Equal(t, a, a.Add(isa.FieldElement(0)))
}

func TestFieldMulCommutativeAndAssociative(t *testing.T) {
	a := isa.NewFieldElement(3)
	b := isa.NewFieldElement(5)
	c := isa.NewFieldElement(7)
	assert.Equal(t, a.Mul(b), b.Mul(a))
	assert.Equal(t, a.Mul(b).Mul(c), a.Mul(b.Mul(c)))
}

func TestFieldSubUndoesAdd(t *testing.T) {
	a := isa.NewFieldElement(111)
	b := isa.NewFieldElement(222)
	assert.Equal(t, a, a.Add(b).Sub(b))
}

func TestFieldNegIsAdditiveInverse(t *testing.T) {
	a := isa.NewFieldElement(555)
	assert.Equal(t, isa.FieldElement(0), a.Add(a.Neg()))
	assert.Equal(t, isa.FieldElement(0), isa.FieldElement(0).Neg())
}

func TestFieldInvIsMultiplicativeInverse(t *testing.T) {
	for _, v := range []uint64{1, 2, 3, 1000, isa.FieldPrime - 1} {
		a := isa.NewFieldElement(v)
		assert.Equal(t, isa.FieldElement(1), a.Mul(a.Inv()))
	}
}

func TestFieldInvOfZeroPanics(t *testing.T) {
	assert.Panics(t, func() {
		isa.FieldElement(0).Inv()
	})
}

func TestFieldReductionWrapsAtPrime(t *testing.T) {
	assert.Equal(t, isa.FieldElement(0), isa.NewFieldElement(uint64(isa.FieldPrime)))
	assert.Equal(t, isa.FieldElement(1), isa.NewFieldElement(uint64(isa.FieldPrime)+1))
}

func TestFieldReductionOfLargeValue(t *testing.T) {
	// reduce64 must agree with a plain big modulus computation.
	x := uint64(1) << 40
	want := isa.FieldElement(uint32(x % uint64(isa.FieldPrime)))
	assert.Equal(t, want, isa.NewFieldElement(x))
}

func TestFieldPowZeroExponentIsOne(t *testing.T) {
	a := isa.NewFieldElement(999)
	assert.Equal(t, isa.FieldElement(1), a.Pow(0))
}
