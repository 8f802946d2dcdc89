package vm

import (
	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/runtime"
)

// TraceRow is one cycle's entry in the execution trace (spec.md §4.12):
// the fetched instruction, the pc it was fetched from, and a pre-execution
// snapshot of every register so a downstream prover can see operand values
// even when rd aliases rs1/rs2.
type TraceRow struct {
	Cycle       uint64
	PC          uint64
	Word        uint32
	Instruction isa.Instruction
	PreState    [isa.NumRegisters]runtime.RegisterEntry
	NextPC      uint64
}
