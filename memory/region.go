// Package memory implements ZKIR's sparse paged byte-addressed memory
// (spec.md §3, §4.5): region protection, page-on-demand storage, and the
// append-only memory-operation trace consumed by the witness generator.
package memory

import "fmt"

// PageSize is the granularity at which storage is allocated.
const PageSize = 4096

// Region classifies an address range for the write-protection policy.
type Region int

const (
	RegionReserved Region = iota
	RegionCode
	RegionData
	RegionHeap
	RegionStack
)

func (r Region) String() string {
	switch r {
	case RegionReserved:
		return "reserved"
	case RegionCode:
		return "code"
	case RegionData:
		return "data"
	case RegionHeap:
		return "heap"
	case RegionStack:
		return "stack"
	default:
		return "unknown"
	}
}

// Layout bounds, matching spec.md §3.
const (
	ReservedEnd  uint64 = 0x0FFF
	CodeStart    uint64 = 0x00001000
	CodeEnd      uint64 = 0x0FFFFFFF
	DataStart    uint64 = 0x10000000
	DataEnd      uint64 = 0x1FFFFFFF
	HeapStart    uint64 = 0x20000000
	StackSize    uint64 = 1 << 20 // top 1 MiB below StackTop
)

// RegionOf classifies address a given the current heap break and stack top
// (both runtime-configurable; stack top defaults to the top of the
// 40-bit address space unless overridden).
func RegionOf(a, heapBreak, stackTop uint64) Region {
	switch {
	case a <= ReservedEnd:
		return RegionReserved
	case a >= CodeStart && a <= CodeEnd:
		return RegionCode
	case a >= DataStart && a <= DataEnd:
		return RegionData
	case a >= HeapStart && a < heapBreak:
		return RegionHeap
	case stackTop > 0 && a >= stackTop-StackSize && a < stackTop:
		return RegionStack
	default:
		return RegionHeap // unallocated heap space above the break, still heap-policy
	}
}

// WriteProtectionError reports a write rejected by region policy.
type WriteProtectionError struct {
	Address uint64
	Region  Region
	Reason  string
}

func (e *WriteProtectionError) Error() string {
	return fmt.Sprintf("memory: write to 0x%x in %s region denied: %s", e.Address, e.Region, e.Reason)
}

// MisalignedAccessError reports an access whose address does not satisfy
// the width's alignment requirement.
type MisalignedAccessError struct {
	Address   uint64
	Alignment uint8
}

func (e *MisalignedAccessError) Error() string {
	return fmt.Sprintf("memory: misaligned access at 0x%x (requires %d-byte alignment)", e.Address, e.Alignment)
}
