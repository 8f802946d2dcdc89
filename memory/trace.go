package memory

import "github.com/zkir-vm/zkir/isa"

// OpType distinguishes a memory operation's direction for trace ordering.
type OpType int

const (
	OpRead OpType = iota
	OpWrite
)

// MemoryOp is one entry in the append-only memory-operation trace
// (spec.md §3 "MemoryOp"). Instruction fetches are never recorded here —
// only data accesses performed by load/store/syscall execution.
type MemoryOp struct {
	Address   uint64
	Value     uint64
	Timestamp uint64
	Type      OpType
	Bound     isa.ValueBound
	Width     uint8 // 1, 2, 4, or 8
}

// Less implements the total order (timestamp, address, Read<Write) that
// every pair of memory ops in a trace must respect.
func (op MemoryOp) Less(other MemoryOp) bool {
	if op.Timestamp != other.Timestamp {
		return op.Timestamp < other.Timestamp
	}
	if op.Address != other.Address {
		return op.Address < other.Address
	}
	return op.Type == OpRead && other.Type == OpWrite
}

// NewRead builds a Read MemoryOp.
func NewRead(address, value, timestamp uint64, width uint8, bound isa.ValueBound) MemoryOp {
	return MemoryOp{Address: address, Value: value, Timestamp: timestamp, Type: OpRead, Width: width, Bound: bound}
}

// NewWrite builds a Write MemoryOp.
func NewWrite(address, value, timestamp uint64, width uint8, bound isa.ValueBound) MemoryOp {
	return MemoryOp{Address: address, Value: value, Timestamp: timestamp, Type: OpWrite, Width: width, Bound: bound}
}
