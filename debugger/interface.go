package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/zkir-vm/zkir/vm"
)

// RunCLI runs the command-line debugger interface
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		// Print prompt
		fmt.Print("(zkir-dbg) ")

		// Read command
		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		// Exit commands
		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		// Execute command
		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		// Print any output from the debugger
		output := dbg.GetOutput()
		if output != "" {
			fmt.Print(output)
		}

		// If running, execute until breakpoint or halt
		if dbg.Running {
			for dbg.Running {
				// Check for breakpoint before execution
				if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
					dbg.Running = false
					fmt.Printf("Stopped: %s at PC=0x%X\n", reason, dbg.VM.PC)
					break
				}

				if !dbg.VM.Step() {
					dbg.Running = false
					fmt.Printf("Halted: %s (cycles=%d)\n", dbg.VM.Halt.String(), dbg.VM.Cycle)
					break
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// RunTUI starts the TUI (Text User Interface) debugger over machine. symbols
// is an optional label->address table (pass nil when none is available).
func RunTUI(machine *vm.VM, symbols map[string]uint64) error {
	dbg := NewDebugger(machine)
	if symbols != nil {
		dbg.LoadSymbols(symbols)
	}
	tui := NewTUI(dbg)
	return tui.Run()
}
