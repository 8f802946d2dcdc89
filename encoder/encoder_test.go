package encoder

import (
	"errors"
	"testing"

	"github.com/zkir-vm/zkir/isa"
)

func TestRoundTripR(t *testing.T) {
	inst := isa.Instruction{Op: isa.OpAdd, Rd: isa.A0, Rs1: isa.A1, Rs2: isa.A2}
	word, err := Encode(inst)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(word)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != inst {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, inst)
	}
}

func TestRoundTripI(t *testing.T) {
	inst := isa.Instruction{Op: isa.OpAddi, Rd: isa.A0, Rs1: isa.A1, Imm: -42}
	word, err := Encode(inst)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(word)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != inst {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, inst)
	}
}

func TestRoundTripBranch(t *testing.T) {
	inst := isa.Instruction{Op: isa.OpBeq, Rs1: isa.A0, Rs2: isa.A1, Offset: 1020}
	word, err := Encode(inst)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(word)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != inst {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, inst)
	}
}

func TestRoundTripJal(t *testing.T) {
	inst := isa.Instruction{Op: isa.OpJal, Rd: isa.RA, Offset: -4096}
	word, err := Encode(inst)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(word)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != inst {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, inst)
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, err := Decode(0x7F) // opcode 0x7F is undefined
	if err == nil {
		t.Fatal("expected error for unknown opcode")
	}
	var uo *UnknownOpcodeError
	if !errors.As(err, &uo) {
		t.Errorf("expected *UnknownOpcodeError, got %T", err)
	}
}

func TestBranchOffsetMustBeMultipleOf4(t *testing.T) {
	inst := isa.Instruction{Op: isa.OpBeq, Rs1: isa.A0, Rs2: isa.A1, Offset: 3}
	if _, err := Encode(inst); err == nil {
		t.Error("expected error for non-multiple-of-4 branch offset")
	}
}
