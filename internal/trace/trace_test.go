package trace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chainedqueue "github.com/timzifer/chained_queue"
	"github.com/timzifer/chained_queue/internal/sim"
)

func TestRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	rec, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, rec.Record(0,
		chainedqueue.Inputs[uint64]{Valid: true},
		chainedqueue.Outputs[uint64]{Ready: true, Pushed: true, Usage: 1},
	))
	require.NoError(t, rec.Record(1,
		chainedqueue.Inputs[uint64]{Ready: true, Flush: true},
		chainedqueue.Outputs[uint64]{Flushed: true},
	))
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())

	assert.ErrorIs(t, rec.Record(2, chainedqueue.Inputs[uint64]{}, chainedqueue.Outputs[uint64]{}), ErrClosed)

	rows, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{Tick: 0, ValidIn: true, ReadyOut: true, Pushed: true, Usage: 1},
		{Tick: 1, ReadyIn: true, Flush: true},
	}, rows)
}

func TestRecorderCapturesSimulation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.db")

	q, err := chainedqueue.New[uint64](chainedqueue.Config{Depth: 8, MaxSegmentSize: 4})
	require.NoError(t, err)

	rec, err := Open(path)
	require.NoError(t, err)

	res, err := sim.Run(q, sim.Options{Pattern: sim.PatternBurst, Items: 8, Recorder: rec})
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, int(res.Ticks))

	// Usage climbs during the fill phase and falls during the drain phase.
	for i := 0; i < 8; i++ {
		assert.Equal(t, i+1, rows[i].Usage)
		assert.True(t, rows[i].Pushed)
	}
	for i := 8; i < 16; i++ {
		assert.Equal(t, 15-i, rows[i].Usage)
		assert.True(t, rows[i].Popped)
	}
}
