package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/vm"
)

// ExprParser parses debugger expressions using precedence climbing. This is
// the tokenized counterpart to ExpressionEvaluator's recursive-descent
// string matching; it works on tokens from the expression lexer. The
// debugger's commands and the TUI evaluate expressions through
// ExpressionEvaluator and do not construct an ExprParser.
type ExprParser struct {
	tokens  []ExprToken
	pos     int
	vm      *vm.VM
	symbols map[string]uint64
	eval    *ExpressionEvaluator
}

// NewExprParser creates a new expression parser.
func NewExprParser(tokens []ExprToken, machine *vm.VM, symbols map[string]uint64, eval *ExpressionEvaluator) *ExprParser {
	return &ExprParser{
		tokens:  tokens,
		pos:     0,
		vm:      machine,
		symbols: symbols,
		eval:    eval,
	}
}

func (p *ExprParser) currentToken() ExprToken {
	if p.pos >= len(p.tokens) {
		return ExprToken{Type: ExprTokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *ExprParser) advance() {
	p.pos++
}

// operatorPrecedence returns the precedence of an operator; higher binds
// tighter.
func operatorPrecedence(op string) int {
	switch op {
	case "|":
		return 1
	case "^":
		return 2
	case "&":
		return 3
	case "<<", ">>":
		return 4
	case "+", "-":
		return 5
	case "*", "/":
		return 6
	default:
		return 0
	}
}

// Parse parses the expression and returns the result.
func (p *ExprParser) Parse() (uint64, error) {
	result, err := p.parseExpression(0)
	if err != nil {
		return 0, err
	}
	if p.currentToken().Type != ExprTokenEOF {
		return 0, fmt.Errorf("unexpected token: %s", p.currentToken().Value)
	}
	return result, nil
}

func (p *ExprParser) parseExpression(minPrecedence int) (uint64, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	for {
		tok := p.currentToken()
		if tok.Type != ExprTokenOperator {
			break
		}

		precedence := operatorPrecedence(tok.Value)
		if precedence < minPrecedence {
			break
		}

		op := tok.Value
		p.advance()

		right, err := p.parseExpression(precedence + 1)
		if err != nil {
			return 0, err
		}

		left, err = applyOperator(left, right, op)
		if err != nil {
			return 0, err
		}
	}

	return left, nil
}

// parsePrimary parses a primary expression: number, register, memory
// access, value-history reference, or parenthesized subexpression.
func (p *ExprParser) parsePrimary() (uint64, error) {
	tok := p.currentToken()

	switch tok.Type {
	case ExprTokenNumber:
		p.advance()
		return parseNumber(tok.Value)

	case ExprTokenRegister:
		p.advance()
		return p.parseRegisterValue(tok.Value)

	case ExprTokenSymbol:
		p.advance()
		if addr, exists := p.symbols[tok.Value]; exists {
			return addr, nil
		}
		return 0, fmt.Errorf("unknown symbol: %s", tok.Value)

	case ExprTokenValueRef:
		p.advance()
		numStr := strings.TrimPrefix(tok.Value, "$")
		num, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid value reference: %s", tok.Value)
		}
		return p.eval.GetValue(num)

	case ExprTokenLParen:
		p.advance()
		result, err := p.parseExpression(0)
		if err != nil {
			return 0, err
		}
		if p.currentToken().Type != ExprTokenRParen {
			return 0, fmt.Errorf("expected ')', got %s", p.currentToken().Value)
		}
		p.advance()
		return result, nil

	case ExprTokenLBracket:
		p.advance()
		addr, err := p.parseExpression(0)
		if err != nil {
			return 0, err
		}
		if p.currentToken().Type != ExprTokenRBracket {
			return 0, fmt.Errorf("expected ']', got %s", p.currentToken().Value)
		}
		p.advance()

		value, err := p.vm.Mem.Read(addr, 8)
		if err != nil {
			return 0, fmt.Errorf("failed to read memory at 0x%X: %w", addr, err)
		}
		return value, nil

	case ExprTokenOperator:
		if tok.Value == "*" {
			p.advance()
			addr, err := p.parsePrimary()
			if err != nil {
				return 0, err
			}
			value, err := p.vm.Mem.Read(addr, 8)
			if err != nil {
				return 0, fmt.Errorf("failed to read memory at 0x%X: %w", addr, err)
			}
			return value, nil
		}
		return 0, fmt.Errorf("unexpected operator: %s", tok.Value)

	case ExprTokenStar:
		p.advance()
		addr, err := p.parsePrimary()
		if err != nil {
			return 0, err
		}
		value, err := p.vm.Mem.Read(addr, 8)
		if err != nil {
			return 0, fmt.Errorf("failed to read memory at 0x%X: %w", addr, err)
		}
		return value, nil

	default:
		return 0, fmt.Errorf("unexpected token: %s (%s)", tok.Value, tok.Type)
	}
}

// parseRegisterValue gets the value of a register token ("pc" or an ABI
// name/numeric form resolved via isa.RegisterFromName).
func (p *ExprParser) parseRegisterValue(reg string) (uint64, error) {
	reg = strings.ToLower(reg)
	if reg == "pc" {
		return p.vm.PC, nil
	}
	if r, ok := isa.RegisterFromName(reg); ok {
		return p.vm.Regs.Read(r), nil
	}
	return 0, fmt.Errorf("invalid register: %s", reg)
}
