// Package isa defines the ZKIR instruction set: field arithmetic, value
// bounds, the register file, and the instruction encoding.
package isa

import "fmt"

// FieldPrime is the Mersenne-31 prime p = 2^31 - 1, the field the witness
// generator's constraint system is defined over.
const FieldPrime uint32 = (1 << 31) - 1

// FieldElement is an element of GF(FieldPrime), always held in reduced
// form (< FieldPrime).
type FieldElement uint32

// NewFieldElement reduces x into GF(FieldPrime).
func NewFieldElement(x uint64) FieldElement {
	return FieldElement(reduce64(x))
}

// reduce performs the Mersenne-prime fold: for p = 2^31-1, x mod p can be
// computed by splitting x into its low 31 bits and the remainder above,
// then adding the two (they differ by a multiple of p).
func reduce(x uint32) uint32 {
	lo := x & FieldPrime
	hi := x >> 31
	r := lo + hi
	if r >= FieldPrime {
		r -= FieldPrime
	}
	return r
}

func reduce64(x uint64) uint32 {
	lo := uint32(x & uint64(FieldPrime))
	hi := uint32(x >> 31)
	r := reduce(lo) + reduce(hi)
	if r >= FieldPrime {
		r -= FieldPrime
	}
	return r
}

// Add returns a+b mod p.
func (a FieldElement) Add(b FieldElement) FieldElement {
	return FieldElement(reduce(uint32(a) + uint32(b)))
}

// Sub returns a-b mod p.
func (a FieldElement) Sub(b FieldElement) FieldElement {
	return a.Add(b.Neg())
}

// Neg returns -a mod p.
func (a FieldElement) Neg() FieldElement {
	if a == 0 {
		return 0
	}
	return FieldElement(FieldPrime - uint32(a))
}

// Mul returns a*b mod p.
func (a FieldElement) Mul(b FieldElement) FieldElement {
	return FieldElement(reduce64(uint64(a) * uint64(b)))
}

// Pow returns a^exp mod p via binary exponentiation.
func (a FieldElement) Pow(exp uint32) FieldElement {
	result := FieldElement(1)
	base := a
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		exp >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse of a via Fermat's little theorem
// (a^(p-2)). Panics if a is zero; callers must check first.
func (a FieldElement) Inv() FieldElement {
	if a == 0 {
		panic("isa: inverse of zero field element")
	}
	return a.Pow(FieldPrime - 2)
}

func (a FieldElement) String() string {
	return fmt.Sprintf("%d", uint32(a))
}
