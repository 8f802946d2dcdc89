// Command zkir is the ZKIR toolchain entrypoint: assemble, run, disassemble,
// debug, lint, and format ZKIR assembly sources and program images.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zkir-vm/zkir/debugger"
	"github.com/zkir-vm/zkir/disasm"
	"github.com/zkir-vm/zkir/loader"
	"github.com/zkir-vm/zkir/memory"
	"github.com/zkir-vm/zkir/parser"
	"github.com/zkir-vm/zkir/tools"
	"github.com/zkir-vm/zkir/vm"
)

// Version information, set at build time with -ldflags "-X main.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "asm":
		err = runAsm(args)
	case "run":
		err = runRun(args)
	case "disasm":
		err = runDisasm(args)
	case "debug":
		err = runDebug(args)
	case "lint":
		err = runLint(args)
	case "fmt":
		err = runFmt(args)
	case "-version", "--version", "version":
		fmt.Printf("zkir %s (%s)\n", Version, Commit)
		return
	case "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "zkir: unknown command %q\n", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkir %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: zkir <command> [arguments]

commands:
  asm     <source.zkasm> -o <out.zkimg>   assemble to a program image
  run     <program.zkimg>                 run a program image
  disasm  <program.zkimg>                  disassemble a program image
  debug   <program.zkimg>                  start the interactive TUI debugger
  lint    <source.zkasm>                   check a source file for diagnostics
  fmt     <source.zkasm>                   print the canonical formatting of a source file`)
}

func assembleFile(path string) (*parser.Program, error) {
	src, err := os.ReadFile(path) // #nosec G304 -- operator-supplied tool input
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	prog, err := parser.Assemble(string(src))
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", path, err)
	}
	return prog, nil
}

func runAsm(args []string) error {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	out := fs.String("o", "a.zkimg", "output image path")
	stackSize := fs.Uint64("stack-size", memory.StackSize, "stack size in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one source file")
	}

	prog, err := assembleFile(fs.Arg(0))
	if err != nil {
		return err
	}

	img := loader.NewImage(prog.Cfg, uint32(prog.EntryPoint), prog.Code, prog.Data, uint32(*stackSize), 0, 0)
	if err := os.WriteFile(*out, img.Encode(), 0o644); err != nil { //nolint:gosec // tool output, not sensitive
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	fmt.Printf("wrote %s (%d code words, %d data bytes)\n", *out, len(prog.Code), len(prog.Data))
	return nil
}

func parseInputTape(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	vals := make([]uint64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid input value %q: %w", p, err)
		}
		vals[i] = n
	}
	return vals, nil
}

func loadImage(path string) (*loader.Image, error) {
	buf, err := os.ReadFile(path) // #nosec G304 -- operator-supplied tool input
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	img, err := loader.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func buildVM(img *loader.Image, maxCycles uint64, input []uint64) (*vm.VM, error) {
	mem := memory.New()
	if err := loader.LoadIntoMemory(mem, img); err != nil {
		return nil, fmt.Errorf("loading image into memory: %w", err)
	}
	return vm.New(img.Header.Cfg, mem, memory.CodeStart, input, maxCycles), nil
}

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	maxCycles := fs.Uint64("max-cycles", 1_000_000, "maximum cycles before a cycle-limit halt")
	inputs := fs.String("input", "", "comma-separated uint64 values to seed the read syscall tape")
	showOutput := fs.Bool("print-output", true, "print the write syscall output tape on halt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one program image")
	}

	img, err := loadImage(fs.Arg(0))
	if err != nil {
		return err
	}
	input, err := parseInputTape(*inputs)
	if err != nil {
		return err
	}
	machine, err := buildVM(img, *maxCycles, input)
	if err != nil {
		return err
	}

	halt := machine.Run()
	fmt.Printf("halted: %s (cycles=%d)\n", halt.String(), machine.Cycle)
	if *showOutput {
		fmt.Printf("output tape: %v\n", machine.OutputTape.Values)
	}
	os.Exit(vm.ExitCodeOf(halt))
	return nil
}

func runDisasm(args []string) error {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one program image")
	}
	img, err := loadImage(fs.Arg(0))
	if err != nil {
		return err
	}
	lines := disasm.Program(memory.CodeStart, img.Code)
	fmt.Print(disasm.Listing(img.Header.Cfg, lines))
	return nil
}

func runDebug(args []string) error {
	fs := flag.NewFlagSet("debug", flag.ExitOnError)
	maxCycles := fs.Uint64("max-cycles", 1_000_000, "maximum cycles before a cycle-limit halt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one program image")
	}
	img, err := loadImage(fs.Arg(0))
	if err != nil {
		return err
	}
	machine, err := buildVM(img, *maxCycles, nil)
	if err != nil {
		return err
	}
	return debugger.RunTUI(machine, nil)
}

func runLint(args []string) error {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one source file")
	}
	prog, err := assembleFile(fs.Arg(0))
	if err != nil {
		return err
	}
	diags := tools.Lint(prog)
	for _, d := range diags {
		fmt.Printf("%s: %s\n", d.Severity, d.Message)
	}
	if len(diags) > 0 {
		os.Exit(1)
	}
	return nil
}

func runFmt(args []string) error {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one source file")
	}
	prog, err := assembleFile(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Print(tools.Format(prog))
	return nil
}
