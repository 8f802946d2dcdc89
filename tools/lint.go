package tools

import (
	"fmt"
	"sort"

	"github.com/zkir-vm/zkir/encoder"
	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/memory"
	"github.com/zkir-vm/zkir/parser"
)

// LintLevel is the severity of a lint finding.
type LintLevel int

const (
	LintError LintLevel = iota
	LintWarning
	LintInfo
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a single lint finding, addressed by the code-word offset it
// concerns rather than a source line/column, since a Program has already
// been resolved past source positions by the time tools operate on it.
type Diagnostic struct {
	Severity LintLevel
	Address  uint64
	Message  string
	Code     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("0x%08x: %s: %s [%s]", d.Address, d.Severity, d.Message, d.Code)
}

// Lint runs static checks over an assembled program: unreachable code after
// an unconditional jump or ebreak, unused labels, and branch/jump targets
// that land outside the code section (spec.md's closed ISA has no forward
// syntax errors left to catch once Assemble succeeds, so lint.go's job here
// is the structural diagnostics Assemble itself has no reason to refuse).
func Lint(prog *parser.Program) []Diagnostic {
	var diags []Diagnostic
	diags = append(diags, checkUnreachable(prog)...)
	diags = append(diags, checkUnusedLabels(prog)...)
	diags = append(diags, checkBranchTargets(prog)...)

	sort.Slice(diags, func(i, j int) bool { return diags[i].Address < diags[j].Address })
	return diags
}

// checkUnreachable flags any code word that follows an unconditional jump
// or ebreak without being the target of some branch/jump/label, since it
// can never be reached by the fetch-decode-execute loop.
func checkUnreachable(prog *parser.Program) []Diagnostic {
	targets := collectTargets(prog)
	var diags []Diagnostic
	deadUntil := false
	for i, word := range prog.Code {
		addr := memory.CodeStart + uint64(i)*4
		if targets[addr] {
			deadUntil = false
		}
		inst, err := encoder.Decode(word)
		if err != nil {
			deadUntil = false
			continue
		}
		if deadUntil {
			diags = append(diags, Diagnostic{
				Severity: LintWarning, Address: addr,
				Message: fmt.Sprintf("unreachable instruction %q", inst.String()),
				Code:    "UNREACHABLE_CODE",
			})
		}
		if (inst.Op == isa.OpJal && inst.Rd.IsZero()) || inst.Op == isa.OpEbreak {
			deadUntil = true
		}
	}
	return diags
}

// collectTargets returns the set of addresses named by a branch offset, a
// jump offset, or a defined label.
func collectTargets(prog *parser.Program) map[uint64]bool {
	targets := make(map[uint64]bool)
	for _, sym := range prog.Symbols.All() {
		targets[sym.Address] = true
	}
	for i, word := range prog.Code {
		addr := memory.CodeStart + uint64(i)*4
		inst, err := encoder.Decode(word)
		if err != nil {
			continue
		}
		if inst.Op.IsBranch() || inst.Op == isa.OpJal {
			targets[addr+uint64(inst.Offset)] = true
		}
	}
	return targets
}

// checkUnusedLabels flags labels that no branch, jump, load, or store in
// the program ever resolves to, as found by Xref. A label referenced only
// from a .data directive is flagged too: the assembled Program keeps no
// record of which symbols its data section used.
func checkUnusedLabels(prog *parser.Program) []Diagnostic {
	used := make(map[uint64]bool)
	for _, x := range Xref(prog) {
		if len(x.References) > 0 {
			used[x.Address] = true
		}
	}
	var diags []Diagnostic
	for _, sym := range prog.Symbols.All() {
		if !used[sym.Address] {
			diags = append(diags, Diagnostic{
				Severity: LintInfo, Address: sym.Address,
				Message: fmt.Sprintf("label %q is never referenced", sym.Name),
				Code:    "UNUSED_LABEL",
			})
		}
	}
	return diags
}

// checkBranchTargets flags any branch/jump whose resolved target address
// falls outside the assembled code section.
func checkBranchTargets(prog *parser.Program) []Diagnostic {
	codeEnd := memory.CodeStart + uint64(len(prog.Code))*4
	var diags []Diagnostic
	for i, word := range prog.Code {
		addr := memory.CodeStart + uint64(i)*4
		inst, err := encoder.Decode(word)
		if err != nil {
			continue
		}
		if !inst.Op.IsBranch() && inst.Op != isa.OpJal {
			continue
		}
		target := addr + uint64(inst.Offset)
		if target < memory.CodeStart || target >= codeEnd {
			diags = append(diags, Diagnostic{
				Severity: LintError, Address: addr,
				Message: fmt.Sprintf("%s targets 0x%08x, outside the code section", inst.Mnemonic(), target),
				Code:    "TARGET_OUT_OF_RANGE",
			})
		}
	}
	return diags
}
