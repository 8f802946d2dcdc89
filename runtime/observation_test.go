package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zkir-vm/zkir/isa"
)

func TestDeferredArithmeticIsNeverAnObservationPoint(t *testing.T) {
	for _, op := range []isa.Opcode{isa.OpAdd, isa.OpSub, isa.OpAddi} {
		assert.False(t, ObservationPoint(op).Any(), "%v must not be an observation point", op)
	}
}

func TestBranchesNormalizeBothOperands(t *testing.T) {
	set := ObservationPoint(isa.OpBeq)
	assert.True(t, set.Rs1)
	assert.True(t, set.Rs2)
}

func TestStoresNormalizeBothOperands(t *testing.T) {
	set := ObservationPoint(isa.OpSw)
	assert.True(t, set.Rs1)
	assert.True(t, set.Rs2)
}

func TestLoadsNormalizeOnlyTheBaseRegister(t *testing.T) {
	set := ObservationPoint(isa.OpLw)
	assert.True(t, set.Rs1)
	assert.False(t, set.Rs2)
}

func TestImmediateLogicalOpsNormalizeOnlyRs1(t *testing.T) {
	set := ObservationPoint(isa.OpAndi)
	assert.True(t, set.Rs1)
	assert.False(t, set.Rs2)
}

func TestControlTransferAndSyscallAreNotObservationPoints(t *testing.T) {
	for _, op := range []isa.Opcode{isa.OpJal, isa.OpJalr, isa.OpEcall, isa.OpEbreak, isa.OpCmov} {
		assert.False(t, ObservationPoint(op).Any(), "%v must not be an observation point", op)
	}
}

func TestNormalizeOperandsOnlyTouchesRequiredRegisters(t *testing.T) {
	cfg := isa.DefaultConfig()
	rf := NewRegisterFile(cfg)
	w := &Witnesses{}

	rf.WriteNormalized(isa.A0, 3, isa.ConstantBound(3))
	rf.WriteNormalized(isa.A1, 4, isa.ConstantBound(4))
	ExecuteAdd(rf, isa.A2, isa.A0, isa.A1, 0, 0, w)
	// a2 is Accumulated and not an operand of addi below, so it must stay that way.
	NormalizeOperands(rf, isa.OpAddi, isa.A0, isa.Zero, 0, 0, w)

	assert.Equal(t, Accumulated, rf.ReadState(isa.A2))
}
