package memory

import (
	"encoding/binary"
	"fmt"
)

// page is one 4 KiB byte-array, allocated lazily.
type page [PageSize]byte

// Memory is ZKIR's sparse paged byte-addressed memory. Pages are allocated
// on first write; a read of an unallocated page yields all zeros. Code
// becomes read-only once CodeLoaded is set by the loader.
type Memory struct {
	pages       map[uint64]*page
	CodeLoaded  bool
	HeapBreak   uint64
	StackTop    uint64

	AccessCount uint64
	ReadCount   uint64
	WriteCount  uint64
}

// New constructs an empty memory with the heap break and stack top at
// their default positions.
func New() *Memory {
	return &Memory{
		pages:     make(map[uint64]*page),
		HeapBreak: HeapStart,
		StackTop:  1 << 40, // top of the default 40-bit address space
	}
}

func pageOf(addr uint64) uint64   { return addr / PageSize }
func offsetOf(addr uint64) uint64 { return addr % PageSize }

func (m *Memory) pageFor(addr uint64, allocate bool) *page {
	pn := pageOf(addr)
	p, ok := m.pages[pn]
	if !ok {
		if !allocate {
			return nil
		}
		p = &page{}
		m.pages[pn] = p
	}
	return p
}

func checkAlignment(addr uint64, width uint8) error {
	if width == 1 {
		return nil
	}
	if addr%uint64(width) != 0 {
		return &MisalignedAccessError{Address: addr, Alignment: width}
	}
	return nil
}

// region classifies addr using the memory's current heap/stack state.
func (m *Memory) region(addr uint64) Region {
	return RegionOf(addr, m.HeapBreak, m.StackTop)
}

// checkWritable enforces the region policy from spec.md §4.5: only the
// region containing addr needs to be writable, but a width>1 write that
// crosses a region boundary must fail even if both endpoints, checked
// individually, would be writable.
func (m *Memory) checkWritable(addr uint64, width uint8, duringLoad bool) error {
	first := m.region(addr)
	last := m.region(addr + uint64(width) - 1)
	if first != last {
		return &WriteProtectionError{Address: addr, Region: first, Reason: "write crosses a region boundary"}
	}
	switch first {
	case RegionReserved:
		return &WriteProtectionError{Address: addr, Region: first, Reason: "reserved region is never writable"}
	case RegionCode:
		if !duringLoad && m.CodeLoaded {
			return &WriteProtectionError{Address: addr, Region: first, Reason: "code is read-only after load"}
		}
	}
	return nil
}

// readBytes reads width bytes at addr without bounds/region checks,
// little-endian, zero-filling unallocated pages.
func (m *Memory) readBytes(addr uint64, width uint8) []byte {
	buf := make([]byte, width)
	for i := uint8(0); i < width; i++ {
		a := addr + uint64(i)
		p := m.pageFor(a, false)
		if p != nil {
			buf[i] = p[offsetOf(a)]
		}
	}
	return buf
}

func (m *Memory) writeBytes(addr uint64, buf []byte) {
	for i, b := range buf {
		a := addr + uint64(i)
		p := m.pageFor(a, true)
		p[offsetOf(a)] = b
	}
}

// Read loads width bytes at addr (width in {1,2,4,8}), little-endian.
// Returns (value, error); callers build the MemoryOp and choose
// the timestamp since that is owned by the VM driver's cycle counter.
func (m *Memory) Read(addr uint64, width uint8) (uint64, error) {
	if err := checkAlignment(addr, width); err != nil {
		return 0, err
	}
	buf := m.readBytes(addr, width)
	m.AccessCount++
	m.ReadCount++
	var value uint64
	switch width {
	case 1:
		value = uint64(buf[0])
	case 2:
		value = uint64(binary.LittleEndian.Uint16(buf))
	case 4:
		value = uint64(binary.LittleEndian.Uint32(buf))
	case 8:
		value = binary.LittleEndian.Uint64(buf)
	default:
		return 0, fmt.Errorf("memory: unsupported read width %d", width)
	}
	return value, nil
}

// Write stores width bytes of value at addr, little-endian, atomically:
// the region check happens once upfront and no partial write is ever
// observed on failure.
func (m *Memory) Write(addr uint64, value uint64, width uint8) error {
	if err := checkAlignment(addr, width); err != nil {
		return err
	}
	if err := m.checkWritable(addr, width, false); err != nil {
		return err
	}
	buf := make([]byte, width)
	switch width {
	case 1:
		buf[0] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(value))
	case 8:
		binary.LittleEndian.PutUint64(buf, value)
	default:
		return fmt.Errorf("memory: unsupported write width %d", width)
	}
	m.writeBytes(addr, buf)
	m.AccessCount++
	m.WriteCount++
	return nil
}

// LoadCode writes the code section during program load, bypassing the
// read-only-after-load check (CodeLoaded must still be false).
func (m *Memory) LoadCode(base uint64, words []uint32) error {
	if m.CodeLoaded {
		return fmt.Errorf("memory: code already loaded")
	}
	for i, w := range words {
		addr := base + uint64(i)*4
		if err := m.checkWritable(addr, 4, true); err != nil {
			return err
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, w)
		m.writeBytes(addr, buf)
	}
	return nil
}

// LoadData writes the data section during program load.
func (m *Memory) LoadData(base uint64, data []byte) error {
	for i, b := range data {
		addr := base + uint64(i)
		if err := m.checkWritable(addr, 1, true); err != nil {
			return err
		}
		m.writeBytes(addr, []byte{b})
	}
	return nil
}

// FetchInstruction reads a 32-bit word for the fetch stage of the VM
// driver. This is intentionally a distinct method from Read: fetch must
// never produce a MemoryOp in the trace (spec.md design note), so it is
// kept out of the AccessCount/ReadCount bookkeeping used to drive traced
// reads and simply returns the raw word.
func (m *Memory) FetchInstruction(pc uint64) (uint32, error) {
	if pc%4 != 0 {
		return 0, &MisalignedAccessError{Address: pc, Alignment: 4}
	}
	buf := m.readBytes(pc, 4)
	return binary.LittleEndian.Uint32(buf), nil
}

// PageCount reports how many pages are currently resident, for
// statistics/debugging.
func (m *Memory) PageCount() int { return len(m.pages) }
