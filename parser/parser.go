package parser

import (
	"strconv"
	"strings"

	"github.com/zkir-vm/zkir/encoder"
	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/memory"
)

// section names which byte stream a directive or instruction targets.
type section int

const (
	sectionText section = iota
	sectionData
)

// Program is the output of a successful Assemble: a resolved code/data
// image plus the symbol table used to build it (spec.md §4.3, §6).
type Program struct {
	Cfg        isa.Config
	EntryPoint uint64
	Code       []uint32
	Data       []byte
	Symbols    *SymbolTable
}

type rawLine struct {
	pos     Position
	label   string
	mnem    string
	operands []string
	sect    section
	address uint64 // absolute address: code words or data bytes
	width   int    // for .word/.byte: 1 or 4; 0 for instructions
}

// Assemble runs the two-pass assembler over src (spec.md §4.3): pass 1
// strips comments, collects labels, and classifies each line; pass 2
// encodes instructions and resolves data directives against the symbol
// table built in pass 1.
func Assemble(src string) (*Program, error) {
	cfg := isa.DefaultConfig()
	symbols := NewSymbolTable()

	var lines []rawLine
	sect := sectionText
	codePC := memory.CodeStart
	dataPC := memory.DataStart

	for lineNo, raw := range strings.Split(src, "\n") {
		pos := Position{Line: lineNo + 1}
		text := stripComment(raw)
		label, rest := splitLabel(text)
		toks := fields(rest)

		var addr uint64
		if sect == sectionText {
			addr = codePC
		} else {
			addr = dataPC
		}

		if label != "" {
			if err := symbols.Define(label, addr, pos); err != nil {
				return nil, err
			}
		}
		if len(toks) == 0 {
			continue
		}

		head := toks[0]
		switch {
		case head == ".text":
			sect = sectionText
			continue
		case head == ".data":
			sect = sectionData
			continue
		case head == ".config":
			if len(toks) != 3 {
				return nil, NewAssemblyError(pos, ".config expects field and value, got %q", rest)
			}
			if err := applyConfig(&cfg, toks[1], toks[2], pos); err != nil {
				return nil, err
			}
			continue
		case head == ".word" || head == ".byte":
			if sect != sectionData {
				return nil, NewAssemblyError(pos, "%s is only valid in .data", head)
			}
			width := 4
			if head == ".byte" {
				width = 1
			}
			for _, v := range toks[1:] {
				lines = append(lines, rawLine{pos: pos, mnem: v, sect: sect, address: dataPC, width: width})
				dataPC += uint64(width)
			}
			continue
		case strings.HasPrefix(head, "."):
			return nil, NewAssemblyError(pos, "unknown directive %q", head)
		default:
			if sect != sectionText {
				return nil, NewAssemblyError(pos, "instruction %q not valid in .data", head)
			}
			lines = append(lines, rawLine{pos: pos, mnem: head, operands: toks[1:], sect: sect, address: codePC})
			codePC += 4
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, NewAssemblyError(Position{}, "invalid config: %v", err)
	}

	var code []uint32
	var data []byte
	for _, l := range lines {
		if l.sect == sectionData {
			v, err := resolveNumber(l.mnem, symbols, l.pos)
			if err != nil {
				return nil, err
			}
			data = appendLE(data, uint64(v), l.width)
			continue
		}
		inst, err := parseInstruction(cfg, l, symbols)
		if err != nil {
			return nil, err
		}
		word, err := encoder.Encode(inst)
		if err != nil {
			return nil, NewAssemblyError(l.pos, "%v", err)
		}
		code = append(code, word)
	}

	return &Program{
		Cfg:        cfg,
		EntryPoint: memory.CodeStart,
		Code:       code,
		Data:       data,
		Symbols:    symbols,
	}, nil
}

func appendLE(buf []byte, v uint64, width int) []byte {
	for i := 0; i < width; i++ {
		buf = append(buf, byte(v>>(8*i)))
	}
	return buf
}

func applyConfig(cfg *isa.Config, field, value string, pos Position) error {
	n, err := resolveNumber(value, nil, pos)
	if err != nil {
		return err
	}
	switch field {
	case "limb_bits":
		cfg.LimbBits = uint8(n)
	case "data_limbs":
		cfg.DataLimbs = uint8(n)
	case "addr_limbs":
		cfg.AddrLimbs = uint8(n)
	default:
		return NewAssemblyError(pos, "unknown .config field %q", field)
	}
	return nil
}

// resolveNumber parses a numeric literal (decimal, 0x, 0b, optional
// leading '-') or, if symbols is non-nil, a label reference.
func resolveNumber(tok string, symbols *SymbolTable, pos Position) (int64, error) {
	if n, err := parseLiteral(tok); err == nil {
		return n, nil
	}
	if symbols != nil {
		if addr, ok := symbols.Lookup(tok); ok {
			return int64(addr), nil
		}
		return 0, &UndefinedLabelError{Name: tok, Pos: pos}
	}
	return 0, NewAssemblyError(pos, "invalid numeric literal %q", tok)
}

func parseLiteral(tok string) (int64, error) {
	neg := false
	s := tok
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var n uint64
	var err error
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		n, err = strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		n, err = strconv.ParseUint(s[2:], 2, 64)
	default:
		n, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		return -int64(n), nil
	}
	return int64(n), nil
}

func parseReg(tok string, pos Position) (isa.Register, error) {
	r, ok := isa.RegisterFromName(tok)
	if !ok {
		return 0, NewAssemblyError(pos, "invalid register %q", tok)
	}
	return r, nil
}

// parseInstruction builds the isa.Instruction for one code line, per the
// operand syntax implied by the opcode's format (spec.md §4.1, §6).
func parseInstruction(cfg isa.Config, l rawLine, symbols *SymbolTable) (isa.Instruction, error) {
	op, ok := isa.OpcodeFromMnemonic(l.mnem)
	if !ok {
		return isa.Instruction{}, NewAssemblyError(l.pos, "unknown mnemonic %q", l.mnem)
	}
	ops := l.operands
	need := func(n int) error {
		if len(ops) != n {
			return NewAssemblyError(l.pos, "%s expects %d operands, got %d", l.mnem, n, len(ops))
		}
		return nil
	}

	if op == isa.OpEcall || op == isa.OpEbreak {
		if err := need(0); err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op}, nil
	}

	switch op.Format() {
	case isa.FormatR:
		if err := need(3); err != nil {
			return isa.Instruction{}, err
		}
		rd, err := parseReg(ops[0], l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		rs1, err := parseReg(ops[1], l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		rs2, err := parseReg(ops[2], l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}, nil

	case isa.FormatI:
		if op.IsLoad() {
			if err := need(2); err != nil {
				return isa.Instruction{}, err
			}
			rd, err := parseReg(ops[0], l.pos)
			if err != nil {
				return isa.Instruction{}, err
			}
			immTok, baseTok, ok := splitMemOperand(ops[1])
			if !ok {
				return isa.Instruction{}, NewAssemblyError(l.pos, "expected imm(reg) operand, got %q", ops[1])
			}
			base, err := parseReg(baseTok, l.pos)
			if err != nil {
				return isa.Instruction{}, err
			}
			imm, err := resolveNumber(immTok, symbols, l.pos)
			if err != nil {
				return isa.Instruction{}, err
			}
			return isa.Instruction{Op: op, Rd: rd, Rs1: base, Imm: int32(imm)}, nil
		}
		if op == isa.OpJalr {
			if err := need(3); err != nil {
				return isa.Instruction{}, err
			}
			rd, err := parseReg(ops[0], l.pos)
			if err != nil {
				return isa.Instruction{}, err
			}
			rs1, err := parseReg(ops[1], l.pos)
			if err != nil {
				return isa.Instruction{}, err
			}
			imm, err := resolveNumber(ops[2], symbols, l.pos)
			if err != nil {
				return isa.Instruction{}, err
			}
			return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: int32(imm)}, nil
		}
		// addi, logical-imm, shift-imm: rd, rs1, imm
		if err := need(3); err != nil {
			return isa.Instruction{}, err
		}
		rd, err := parseReg(ops[0], l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		rs1, err := parseReg(ops[1], l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		imm, err := resolveNumber(ops[2], symbols, l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: int32(imm)}, nil

	case isa.FormatS:
		if err := need(2); err != nil {
			return isa.Instruction{}, err
		}
		rs2, err := parseReg(ops[0], l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		immTok, baseTok, ok := splitMemOperand(ops[1])
		if !ok {
			return isa.Instruction{}, NewAssemblyError(l.pos, "expected imm(reg) operand, got %q", ops[1])
		}
		base, err := parseReg(baseTok, l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		imm, err := resolveNumber(immTok, symbols, l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op, Rs1: base, Rs2: rs2, Imm: int32(imm)}, nil

	case isa.FormatB:
		if err := need(3); err != nil {
			return isa.Instruction{}, err
		}
		rs1, err := parseReg(ops[0], l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		rs2, err := parseReg(ops[1], l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		offset, err := resolvePCRelative(ops[2], l.address, symbols, l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op, Rs1: rs1, Rs2: rs2, Offset: int32(offset)}, nil

	case isa.FormatJ:
		if err := need(2); err != nil {
			return isa.Instruction{}, err
		}
		rd, err := parseReg(ops[0], l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		offset, err := resolvePCRelative(ops[1], l.address, symbols, l.pos)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op, Rd: rd, Offset: int32(offset)}, nil

	default:
		if err := need(0); err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op}, nil
	}
}

// resolvePCRelative resolves a branch/jump target operand, which is
// either a raw numeric offset already relative to pc, or a label whose
// resolved offset is computed as target-pc.
func resolvePCRelative(tok string, pc uint64, symbols *SymbolTable, pos Position) (int64, error) {
	if n, err := parseLiteral(tok); err == nil {
		return n, nil
	}
	target, ok := symbols.Lookup(tok)
	if !ok {
		return 0, &UndefinedLabelError{Name: tok, Pos: pos}
	}
	return int64(target) - int64(pc), nil
}
