package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkir-vm/zkir/isa"
)

func TestDeferSkipsValuesWithinDataBits(t *testing.T) {
	cfg := isa.DefaultConfig()
	tr := NewRangeCheckTracker(cfg)
	tr.Defer(5, isa.ValueBound{MaxBits: cfg.DataBits()}, 0)
	assert.Empty(t, tr.Pending)
}

func TestDeferQueuesValuesExceedingDataBits(t *testing.T) {
	cfg := isa.DefaultConfig()
	tr := NewRangeCheckTracker(cfg)
	tr.Defer(5, isa.ValueBound{MaxBits: cfg.DataBits() + 1}, 7)
	require.Len(t, tr.Pending, 1)
	assert.Equal(t, uint64(7), tr.Pending[0].PC)
}

func TestDeferIsNoOpWhenDisabled(t *testing.T) {
	cfg := isa.DefaultConfig()
	tr := NewRangeCheckTracker(cfg)
	tr.Enabled = false
	tr.Defer(5, isa.ValueBound{MaxBits: cfg.DataBits() + 1}, 0)
	assert.Empty(t, tr.Pending)
}

func TestNeedsCheckpointOnSixteenPending(t *testing.T) {
	cfg := isa.DefaultConfig()
	tr := NewRangeCheckTracker(cfg)
	for i := 0; i < 16; i++ {
		tr.Defer(uint64(i), isa.ValueBound{MaxBits: cfg.DataBits() + 1}, 0)
	}
	assert.True(t, tr.NeedsCheckpoint())
}

func TestNeedsCheckpointOnBoundGrowthThreshold(t *testing.T) {
	cfg := isa.DefaultConfig()
	tr := NewRangeCheckTracker(cfg)
	tr.Defer(1, isa.ValueBound{MaxBits: cfg.DataBits() + 4}, 0)
	assert.True(t, tr.NeedsCheckpoint())
}

func TestNeedsCheckpointFalseWhenNothingPending(t *testing.T) {
	cfg := isa.DefaultConfig()
	tr := NewRangeCheckTracker(cfg)
	assert.False(t, tr.NeedsCheckpoint())
}

func TestCheckpointEmitsWitnessesAndClearsPending(t *testing.T) {
	cfg := isa.DefaultConfig()
	tr := NewRangeCheckTracker(cfg)
	tr.Defer(12345, isa.ValueBound{MaxBits: cfg.DataBits() + 1}, 3)
	w := &Witnesses{}

	out, err := tr.Checkpoint(w)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, uint64(3), out[0].PC)
	assert.Equal(t, int(2*cfg.DataLimbs), len(out[0].Chunks))
	assert.Empty(t, tr.Pending)
	assert.Len(t, w.RangeChecks, 1)
}

func TestCheckpointDecomposesValueIntoInTableChunks(t *testing.T) {
	cfg := isa.DefaultConfig()
	tr := NewRangeCheckTracker(cfg)
	tr.Defer(0xABCDEF, isa.ValueBound{MaxBits: cfg.DataBits() + 1}, 0)

	out, err := tr.Checkpoint(nil)
	require.NoError(t, err)
	for _, c := range out[0].Chunks {
		assert.True(t, tr.Table[c], "every emitted chunk must be a table member by construction")
	}
}

func TestCheckpointOnEmptyPendingIsANoOp(t *testing.T) {
	cfg := isa.DefaultConfig()
	tr := NewRangeCheckTracker(cfg)
	out, err := tr.Checkpoint(&Witnesses{})
	require.NoError(t, err)
	assert.Empty(t, out)
}
