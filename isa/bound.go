package isa

import "math/bits"

// BoundSource records why a ValueBound has the max_bits it does.
type BoundSource int

const (
	SourceProgramWidth BoundSource = iota // full data_bits, no further information
	SourceTypeWidth                       // a load of known width w
	SourceCryptoOutput                    // output of a crypto syscall
	SourceComputed                        // propagated from an arithmetic/logical op
	SourceConstant                        // an assembled immediate
)

// CryptoType names a crypto syscall for bound-propagation purposes.
type CryptoType int

const (
	CryptoSha256 CryptoType = iota
	CryptoKeccak256
	CryptoPoseidon2
	CryptoBlake3
)

// AlgorithmBits is the output width of the hash, which becomes the bound
// on the register that receives CryptoOutput(t).
func (t CryptoType) AlgorithmBits() uint32 {
	switch t {
	case CryptoSha256:
		return 32
	case CryptoKeccak256:
		return 64
	case CryptoPoseidon2:
		return 31
	case CryptoBlake3:
		return 32
	default:
		return 32
	}
}

// ValueBound is an upper bound on the bit-width a register's raw numeric
// value could occupy, tracked so the range-check tracker knows when a
// deferred check is owed (max_bits > data_bits).
type ValueBound struct {
	MaxBits uint32
	Source  BoundSource
}

// ConstantBound computes the bound of an assembled immediate: floor(log2(v))+1,
// or 0 if v is zero.
func ConstantBound(v uint64) ValueBound {
	if v == 0 {
		return ValueBound{MaxBits: 0, Source: SourceConstant}
	}
	return ValueBound{MaxBits: uint32(bits.Len64(v)), Source: SourceConstant}
}

// ProgramWidthBound is the bound assigned to a value about which nothing
// more specific is known (full register width).
func ProgramWidthBound(dataBits uint32) ValueBound {
	return ValueBound{MaxBits: dataBits, Source: SourceProgramWidth}
}

// TypeWidthBound is the bound assigned to the result of a load of width w
// bytes (zero- or sign-extended).
func TypeWidthBound(widthBytes uint32) ValueBound {
	return ValueBound{MaxBits: widthBytes * 8, Source: SourceTypeWidth}
}

// CryptoOutputBound is the bound assigned to the output of a crypto syscall.
func CryptoOutputBound(t CryptoType) ValueBound {
	return ValueBound{MaxBits: t.AlgorithmBits(), Source: SourceCryptoOutput}
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// saturate caps a propagated bound at data_bits + headroom, the point
// beyond which the accumulator representation itself cannot grow further
// without normalization.
func saturate(b, dataBits, headroom uint32) uint32 {
	cap := dataBits + headroom
	if b > cap {
		return cap
	}
	return b
}

// AfterAdd implements §4.2: max(a,b)+1.
func AfterAdd(a, b ValueBound, dataBits, headroom uint32) ValueBound {
	return ValueBound{MaxBits: saturate(max32(a.MaxBits, b.MaxBits)+1, dataBits, headroom), Source: SourceComputed}
}

// AfterSub implements §4.2: max(a,b).
func AfterSub(a, b ValueBound, dataBits, headroom uint32) ValueBound {
	return ValueBound{MaxBits: saturate(max32(a.MaxBits, b.MaxBits), dataBits, headroom), Source: SourceComputed}
}

// AfterMul implements §4.2: a+b.
func AfterMul(a, b ValueBound, dataBits, headroom uint32) ValueBound {
	return ValueBound{MaxBits: saturate(a.MaxBits+b.MaxBits, dataBits, headroom), Source: SourceComputed}
}

// AfterDivRem implements §4.2: min(dividend, divisor) for both div and rem.
func AfterDivRem(dividend, divisor ValueBound) ValueBound {
	return ValueBound{MaxBits: min32(dividend.MaxBits, divisor.MaxBits), Source: SourceComputed}
}

// AfterAnd implements §4.2: min(a,b).
func AfterAnd(a, b ValueBound) ValueBound {
	return ValueBound{MaxBits: min32(a.MaxBits, b.MaxBits), Source: SourceComputed}
}

// AfterOrXor implements §4.2: max(a,b).
func AfterOrXor(a, b ValueBound) ValueBound {
	return ValueBound{MaxBits: max32(a.MaxBits, b.MaxBits), Source: SourceComputed}
}

// AfterNot fills to the full data width: the complement of a bounded value
// is not itself boundable below the register width.
func AfterNot(dataBits uint32) ValueBound {
	return ValueBound{MaxBits: dataBits, Source: SourceComputed}
}

// AfterShl implements §4.2: min(a+s, data_bits).
func AfterShl(a ValueBound, shamt, dataBits uint32) ValueBound {
	return ValueBound{MaxBits: min32(a.MaxBits+shamt, dataBits), Source: SourceComputed}
}

// AfterSrl implements §4.2: max(a-s, 0).
func AfterSrl(a ValueBound, shamt uint32) ValueBound {
	if shamt >= a.MaxBits {
		return ValueBound{MaxBits: 0, Source: SourceComputed}
	}
	return ValueBound{MaxBits: a.MaxBits - shamt, Source: SourceComputed}
}

// AfterSra implements §4.2: conservative full width if a>=data_bits, else a-shift.
func AfterSra(a ValueBound, shamt, dataBits uint32) ValueBound {
	if a.MaxBits >= dataBits {
		return ValueBound{MaxBits: dataBits, Source: SourceComputed}
	}
	if shamt >= a.MaxBits {
		return ValueBound{MaxBits: 0, Source: SourceComputed}
	}
	return ValueBound{MaxBits: a.MaxBits - shamt, Source: SourceComputed}
}

// AfterCompare implements §4.2: comparisons always produce a 0/1 result.
func AfterCompare() ValueBound {
	return ValueBound{MaxBits: 1, Source: SourceComputed}
}

// AfterSignExtend and AfterZeroExtend/AfterTruncate adjust a bound when a
// value's effective width changes without a new arithmetic op (used by the
// loader/loads rather than by register-to-register arithmetic).
func AfterZeroExtend(fromBits uint32) ValueBound {
	return ValueBound{MaxBits: fromBits, Source: SourceComputed}
}

func AfterSignExtend(toBits uint32) ValueBound {
	return ValueBound{MaxBits: toBits, Source: SourceComputed}
}

func AfterTruncate(toBits uint32) ValueBound {
	return ValueBound{MaxBits: toBits, Source: SourceComputed}
}

// NeedsRangeCheck reports whether b's max_bits exceeds the register width,
// meaning the value owes a deferred range check (§4.2 rule).
func (b ValueBound) NeedsRangeCheck(dataBits uint32) bool {
	return b.MaxBits > dataBits
}
