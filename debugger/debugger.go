// Package debugger implements an interactive source-level debugger for
// ZKIR programs: breakpoints, watchpoints, single-stepping, and an
// expression evaluator over registers, bounds, and memory, driven either
// from a line-oriented CLI (interface.go) or a tcell/tview TUI (tui.go).
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zkir-vm/zkir/encoder"
	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/vm"
)

// Debugger holds all interactive-session state layered on top of a VM.
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running           bool
	StepMode          StepMode
	StepOverCallDepth int
	StepOverPC        uint64

	// Symbols maps label names to code addresses (spec.md §4.3), loaded
	// from the assembler's SymbolTable for address resolution in commands
	// and expressions.
	Symbols map[string]uint64

	// SourceMap maps a code address to the assembly line that produced it,
	// for the list command and the TUI source pane. Empty when the session
	// was started without source (e.g. debugging a bare image).
	SourceMap map[uint64]string

	LastCommand string
	Output      strings.Builder
}

// StepMode selects what ShouldBreak treats as a stopping condition between
// single-step boundaries.
type StepMode int

const (
	StepNone StepMode = iota
	StepSingle
	StepOver
	StepOut
)

// NewDebugger wraps machine in a fresh interactive session.
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		Symbols:     make(map[string]uint64),
	}
}

// LoadSymbols installs a label->address table for address resolution.
func (d *Debugger) LoadSymbols(symbols map[string]uint64) {
	d.Symbols = symbols
}

// LoadSource installs a code-address->source-line table for the list
// command and the TUI source pane.
func (d *Debugger) LoadSource(source map[uint64]string) {
	d.SourceMap = source
}

// ResolveAddress resolves a label to an address, or parses a numeric
// literal (decimal or 0x-prefixed hex).
func (d *Debugger) ResolveAddress(addrStr string) (uint64, error) {
	if addr, ok := d.Symbols[addrStr]; ok {
		return addr, nil
	}
	addr, err := strconv.ParseUint(addrStr, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", addrStr, err)
	}
	return addr, nil
}

// ExecuteCommand parses and dispatches one debugger command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.AddAt(cmdLine, d.VM.Cycle)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}
	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)
	case "rwatch":
		return d.cmdRWatch(args)
	case "awatch":
		return d.cmdAWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "list", "l":
		return d.cmdList(args)
	case "backtrace", "bt":
		return d.cmdBacktrace(args)
	case "set":
		return d.cmdSet(args)

	case "reset":
		return d.cmdReset(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should pause at the VM's current
// pc, and why: the active step mode, a hit (and possibly conditional)
// breakpoint, or a changed watchpoint, in that priority order.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.VM.PC

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"
	case StepOver, StepOut:
		if pc == d.StepOverPC {
			d.StepMode = StepNone
			return true, "step complete"
		}
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}
		if bp.Condition != "" {
			result, err := d.Evaluator.Evaluate(bp.Condition, d.VM, d.Symbols)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !result {
				return false, ""
			}
		}
		bp.HitCount++
		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
		}
		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// GetOutput returns and clears the session's output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}

// SetStepOver arms step-over at the current pc: a jal that discards its
// link register (an unconditional jump) single-steps, any other jal steps
// over by running until control returns to the instruction after it.
func (d *Debugger) SetStepOver() {
	word, err := d.VM.Mem.FetchInstruction(d.VM.PC)
	if err != nil {
		d.StepMode = StepSingle
		d.Running = true
		return
	}
	inst, err := encoder.Decode(word)
	if err != nil {
		d.StepMode = StepSingle
		d.Running = true
		return
	}
	if inst.Op == isa.OpJal && !inst.Rd.IsZero() {
		d.StepOverPC = d.VM.PC + 4
		d.StepMode = StepOver
	} else {
		d.StepMode = StepSingle
	}
	d.Running = true
}

// SetStepOut arms running until the next instruction after the current pc
// is reached (approximating a return from the current call frame).
func (d *Debugger) SetStepOut() {
	d.StepOverPC = d.VM.PC + 4
	d.StepMode = StepOut
	d.Running = true
}
