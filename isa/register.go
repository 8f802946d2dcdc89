package isa

// NumRegisters is the size of the ZKIR register file.
const NumRegisters = 16

// Register identifies one of R0..R15 by its 4-bit index.
type Register uint8

// Calling-convention aliases. R0 is hardwired to zero.
const (
	Zero Register = 0  // r0
	RA   Register = 1  // r1: return address
	SP   Register = 2  // r2: stack pointer
	FP   Register = 3  // r3: frame pointer
	A0   Register = 4  // r4: argument / return value
	A1   Register = 5  // r5
	A2   Register = 6  // r6
	A3   Register = 7  // r7
	A4   Register = 8  // r8
	A5   Register = 9  // r9
	S0   Register = 10 // r10: callee-saved
	S1   Register = 11 // r11
	S2   Register = 12 // r12
	S3   Register = 13 // r13
	T0   Register = 14 // r14: caller-saved temporary
	T1   Register = 15 // r15
)

var registerNames = [NumRegisters]string{
	"zero", "ra", "sp", "fp",
	"a0", "a1", "a2", "a3", "a4", "a5",
	"s0", "s1", "s2", "s3",
	"t0", "t1",
}

// RegisterFromIndex validates a 4-bit register index.
func RegisterFromIndex(idx uint8) (Register, bool) {
	if idx >= NumRegisters {
		return 0, false
	}
	return Register(idx), true
}

// Index returns the 4-bit encoding of r.
func (r Register) Index() uint8 { return uint8(r) }

// IsZero reports whether r is the hardwired-zero register.
func (r Register) IsZero() bool { return r == Zero }

// Name returns the ABI alias (e.g. "sp").
func (r Register) Name() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return "?"
}

func (r Register) String() string { return r.Name() }

// RegisterFromName parses either an ABI alias ("sp") or numeric form
// ("r2"). Numeric forms are preferred when both a digit-only token and a
// matching alias exist in a program's label namespace, but this function
// never consults labels — only the fixed register vocabulary.
func RegisterFromName(name string) (Register, bool) {
	for i, n := range registerNames {
		if n == name {
			return Register(i), true
		}
	}
	if len(name) >= 2 && name[0] == 'r' {
		n := 0
		for _, c := range name[1:] {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		if n >= 0 && n < NumRegisters {
			return Register(n), true
		}
	}
	return 0, false
}
