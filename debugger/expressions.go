package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/runtime"
	"github.com/zkir-vm/zkir/vm"
)

// ExpressionEvaluator evaluates the small expression language accepted by
// print, x, watch, and breakpoint conditions: register and memory
// references, symbols, value history ($1, $2, ...), and the register-state
// predicates normalized(rN)/bound(rN) that stand in for the CPSR-flag
// queries a flat-register machine has no use for.
type ExpressionEvaluator struct {
	valueHistory []uint64
	valueNumber  int
}

// NewExpressionEvaluator creates a new expression evaluator.
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{
		valueHistory: make([]uint64, 0),
		valueNumber:  0,
	}
}

// EvaluateExpression evaluates an expression and records the result in the
// value history.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, machine *vm.VM, symbols map[string]uint64) (uint64, error) {
	result, err := e.evaluate(expr, machine, symbols)
	if err != nil {
		return 0, err
	}

	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)

	return result, nil
}

// Evaluate evaluates an expression as a boolean condition (nonzero is true).
func (e *ExpressionEvaluator) Evaluate(expr string, machine *vm.VM, symbols map[string]uint64) (bool, error) {
	result, err := e.evaluate(expr, machine, symbols)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

// GetValueNumber returns the current value number.
func (e *ExpressionEvaluator) GetValueNumber() int {
	return e.valueNumber
}

// GetValue returns a value from history by number.
func (e *ExpressionEvaluator) GetValue(number int) (uint64, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}
	return e.valueHistory[number-1], nil
}

// evaluate is the main evaluation logic.
func (e *ExpressionEvaluator) evaluate(expr string, machine *vm.VM, symbols map[string]uint64) (uint64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	if val, err := e.trySimpleEval(expr, machine, symbols); err == nil {
		return val, nil
	}

	// Look for a binary operator with whitespace on at least one side, so
	// we don't split inside a hex literal like "0xFF".
	operators := []string{"<<", ">>", "&", "|", "^", "+", "-", "*", "/"}
	for _, op := range operators {
		patterns := []string{" " + op + " ", " " + op, op + " "}

		for _, pattern := range patterns {
			idx := strings.Index(expr, pattern)
			if idx < 0 {
				continue
			}

			opPos := idx
			if pattern[0] == ' ' {
				opPos++
			}

			left := strings.TrimSpace(expr[:opPos])
			right := strings.TrimSpace(expr[opPos+len(op):])
			if left == "" || right == "" {
				continue
			}

			leftVal, err := e.evaluate(left, machine, symbols)
			if err != nil {
				continue
			}
			rightVal, err := e.evaluate(right, machine, symbols)
			if err != nil {
				continue
			}

			return applyOperator(leftVal, rightVal, op)
		}
	}

	return 0, fmt.Errorf("invalid expression: %s", expr)
}

// trySimpleEval evaluates a single atom: a memory dereference, value
// history reference, predicate call, register, symbol, or numeric literal.
func (e *ExpressionEvaluator) trySimpleEval(expr string, machine *vm.VM, symbols map[string]uint64) (uint64, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addrExpr := strings.TrimSpace(expr[1 : len(expr)-1])
		addr, err := e.evaluate(addrExpr, machine, symbols)
		if err != nil {
			return 0, err
		}
		value, err := machine.Mem.Read(addr, 8)
		if err != nil {
			return 0, fmt.Errorf("failed to read memory at 0x%X: %w", addr, err)
		}
		return value, nil
	}

	if strings.HasPrefix(expr, "*") {
		addrExpr := strings.TrimSpace(expr[1:])
		addr, err := e.evaluate(addrExpr, machine, symbols)
		if err != nil {
			return 0, err
		}
		value, err := machine.Mem.Read(addr, 8)
		if err != nil {
			return 0, fmt.Errorf("failed to read memory at 0x%X: %w", addr, err)
		}
		return value, nil
	}

	if strings.HasPrefix(expr, "$") {
		num, err := strconv.Atoi(expr[1:])
		if err != nil {
			return 0, fmt.Errorf("invalid value reference: %s", expr)
		}
		return e.GetValue(num)
	}

	if val, ok, err := evalPredicate(expr, machine); ok {
		return val, err
	}

	if val, err := evalRegister(expr, machine); err == nil {
		return val, nil
	}

	if addr, exists := symbols[expr]; exists {
		return addr, nil
	}

	if val, err := parseNumber(expr); err == nil {
		return val, nil
	}

	return 0, fmt.Errorf("unknown identifier: %s", expr)
}

// evalPredicate recognizes normalized(rN) and bound(rN), the register-state
// queries that replace CPSR-flag conditions in this architecture. ok is
// false when expr isn't one of these calls, in which case err is always nil
// and the caller should keep trying other forms.
func evalPredicate(expr string, machine *vm.VM) (value uint64, ok bool, err error) {
	open := strings.Index(expr, "(")
	if open < 0 || !strings.HasSuffix(expr, ")") {
		return 0, false, nil
	}
	name := strings.TrimSpace(expr[:open])
	arg := strings.TrimSpace(expr[open+1 : len(expr)-1])

	if name != "normalized" && name != "bound" {
		return 0, false, nil
	}

	reg, found := isa.RegisterFromName(strings.ToLower(arg))
	if !found {
		return 0, true, fmt.Errorf("%s: unknown register %q", name, arg)
	}

	switch name {
	case "normalized":
		if machine.Regs.ReadState(reg) == runtime.Normalized {
			return 1, true, nil
		}
		return 0, true, nil
	default: // "bound"
		return uint64(machine.Regs.ReadBound(reg).MaxBits), true, nil
	}
}

// evalRegister evaluates a register reference ("t0", "r4", "pc", ...).
func evalRegister(expr string, machine *vm.VM) (uint64, error) {
	expr = strings.ToLower(expr)
	if expr == "pc" {
		return machine.PC, nil
	}
	if reg, ok := isa.RegisterFromName(expr); ok {
		return machine.Regs.Read(reg), nil
	}
	return 0, fmt.Errorf("not a register")
}

// parseNumber parses a numeric literal in decimal, hex, binary, or octal.
func parseNumber(expr string) (uint64, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(strings.ToLower(expr), "0x") {
		return strconv.ParseUint(expr[2:], 16, 64)
	}
	if strings.HasPrefix(strings.ToLower(expr), "0b") {
		return strconv.ParseUint(expr[2:], 2, 64)
	}
	if strings.HasPrefix(expr, "0") && len(expr) > 1 && !strings.ContainsAny(expr, "89") {
		return strconv.ParseUint(expr, 8, 64)
	}

	val, err := strconv.ParseInt(expr, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint64(val), nil
}

// applyOperator applies a binary operator to two uint64 operands.
func applyOperator(left, right uint64, op string) (uint64, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case "&":
		return left & right, nil
	case "|":
		return left | right, nil
	case "^":
		return left ^ right, nil
	case "<<":
		return left << right, nil
	case ">>":
		return left >> right, nil
	default:
		return 0, fmt.Errorf("unknown operator: %s", op)
	}
}

// Reset clears the value history.
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}
