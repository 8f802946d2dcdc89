package vm

import (
	"github.com/zkir-vm/zkir/encoder"
	"github.com/zkir-vm/zkir/runtime"
)

// Step executes exactly one fetch-decode-execute cycle (spec.md §4.12):
//
//  1. fetch the word at PC (untraced; FetchInstruction never produces a
//     MemoryOp) and decode it;
//  2. normalize whichever operands the opcode's observation point requires;
//  3. snapshot the pre-execution register state for the trace row;
//  4. execute the instruction's effect;
//  5. run a range-check checkpoint if the opcode or the pending queue
//     requires one;
//  6. append the trace row and advance PC/Cycle.
//
// It returns false once the VM has halted (v.Halt.Kind != HaltNone); the
// halt reason is already recorded by the time it returns false.
func (v *VM) Step() bool {
	if !v.Running() {
		return false
	}
	if v.MaxCycles > 0 && v.Cycle >= v.MaxCycles {
		v.Halt = HaltReason{Kind: HaltCycleLimit}
		return false
	}

	pc := v.PC
	word, err := v.Mem.FetchInstruction(pc)
	if err != nil {
		v.faultFromMemErr(err, pc)
		return false
	}
	inst, err := encoder.Decode(word)
	if err != nil {
		v.fault(FaultDecodeError, pc, err.Error())
		return false
	}

	runtime.NormalizeOperands(v.Regs, inst.Op, inst.Rs1, inst.Rs2, v.Cycle, pc, v.Witnesses)
	preState := v.Regs.Snapshot()

	result, ok := v.execute(inst, pc)

	// A halt raised by execute (ebreak, exit, or a fault) still completes
	// its cycle: the trace row is emitted and the cycle counted before the
	// driver's next iteration observes !Running() and stops (spec.md §4.12,
	// §7 "the trace row for that cycle is still emitted"). A checkpoint is
	// only attempted when the cycle did not already halt.
	if ok {
		if result.triggerCheckpoint {
			ok = v.forceCheckpoint(pc)
		} else {
			ok = v.checkpointIfNeeded(pc)
		}
	}

	v.Trace = append(v.Trace, TraceRow{
		Cycle:       v.Cycle,
		PC:          pc,
		Word:        word,
		Instruction: inst,
		PreState:    preState,
		NextPC:      result.nextPC,
	})

	v.PC = result.nextPC
	v.Cycle++
	return ok
}

// Run steps the VM until it halts, returning the terminal HaltReason.
func (v *VM) Run() HaltReason {
	for v.Step() {
	}
	return v.Halt
}
