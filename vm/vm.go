// Package vm implements the ZKIR fetch-decode-execute driver (spec.md §2
// component N, §4.12): the cycle loop, per-opcode execution, syscall
// dispatch, and the halt taxonomy, wired on top of packages isa, encoder,
// memory, and runtime.
package vm

import (
	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/memory"
	"github.com/zkir-vm/zkir/runtime"
)

// DefaultEntryPoint is where execution begins absent an explicit program
// image entry field (the base of the code region).
const DefaultEntryPoint = memory.CodeStart

// VM is one program's full execution state.
type VM struct {
	Cfg isa.Config

	Mem        *memory.Memory
	Regs       *runtime.RegisterFile
	RangeCheck *runtime.RangeCheckTracker
	Witnesses  *runtime.Witnesses

	InputTape  *runtime.Tape
	OutputTape *runtime.Tape

	PC        uint64
	Cycle     uint64
	MaxCycles uint64

	Trace  []TraceRow
	MemOps []memory.MemoryOp

	Halt HaltReason

	entry     uint64
	inputSeed []uint64
}

// New builds a VM ready to run from entry, with mem already holding the
// loaded program image. input seeds the syscall read tape (pass nil for an
// empty tape). maxCycles of 0 means unbounded.
func New(cfg isa.Config, mem *memory.Memory, entry uint64, input []uint64, maxCycles uint64) *VM {
	return &VM{
		Cfg:        cfg,
		Mem:        mem,
		Regs:       runtime.NewRegisterFile(cfg),
		RangeCheck: runtime.NewRangeCheckTracker(cfg),
		Witnesses:  &runtime.Witnesses{},
		InputTape:  runtime.NewTape(input),
		OutputTape: runtime.NewTape(nil),
		PC:         entry,
		MaxCycles:  maxCycles,
		entry:      entry,
		inputSeed:  input,
	}
}

// Reset restores the VM to the state New left it in: fresh registers, a
// cleared trace and range-check queue, PC back at the original entry point.
// Memory (code and data already loaded) is left untouched, matching a
// debugger's "rerun this image" expectation rather than a cold reload.
func (v *VM) Reset() {
	v.Regs = runtime.NewRegisterFile(v.Cfg)
	v.RangeCheck = runtime.NewRangeCheckTracker(v.Cfg)
	v.Witnesses = &runtime.Witnesses{}
	v.InputTape = runtime.NewTape(v.inputSeed)
	v.OutputTape = runtime.NewTape(nil)
	v.PC = v.entry
	v.Cycle = 0
	v.Trace = nil
	v.MemOps = nil
	v.Halt = HaltReason{}
}

// Running reports whether the VM has not yet halted.
func (v *VM) Running() bool { return v.Halt.Kind == HaltNone }

func (v *VM) fault(kind FaultKind, pc uint64, msg string) {
	v.Halt = HaltReason{Kind: HaltFault, Fault: &FaultInfo{Kind: kind, PC: pc, Message: msg}}
}

// faultFromMemErr classifies a memory package error into the matching
// FaultKind.
func (v *VM) faultFromMemErr(err error, pc uint64) {
	switch err.(type) {
	case *memory.MisalignedAccessError:
		v.fault(FaultMisalignedAccess, pc, err.Error())
	case *memory.WriteProtectionError:
		v.fault(FaultWriteProtected, pc, err.Error())
	default:
		v.fault(FaultMisalignedAccess, pc, err.Error())
	}
}

// recordMemOp appends op to the VM's op log. It does not queue a range
// check; only deferRangeCheck and the syscall results feed the tracker.
func (v *VM) recordMemOp(op memory.MemoryOp) {
	v.MemOps = append(v.MemOps, op)
}

// checkpointIfNeeded runs a range-check checkpoint when the tracker judges
// one is owed, surfacing a BoundViolation as a fault (spec.md §4.9, §7).
func (v *VM) checkpointIfNeeded(pc uint64) bool {
	if !v.RangeCheck.NeedsCheckpoint() {
		return true
	}
	return v.forceCheckpoint(pc)
}

func (v *VM) forceCheckpoint(pc uint64) bool {
	if _, err := v.RangeCheck.Checkpoint(v.Witnesses); err != nil {
		v.fault(FaultBoundViolation, pc, err.Error())
		return false
	}
	return true
}
