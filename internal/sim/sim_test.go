package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chainedqueue "github.com/timzifer/chained_queue"
)

type countingRecorder struct {
	ticks   []uint64
	flushes int
}

func (r *countingRecorder) Record(tick uint64, in chainedqueue.Inputs[uint64], out chainedqueue.Outputs[uint64]) error {
	r.ticks = append(r.ticks, tick)
	if out.Flushed {
		r.flushes++
	}
	return nil
}

func newQueue(t *testing.T, cfg chainedqueue.Config) *chainedqueue.Queue[uint64] {
	t.Helper()
	q, err := chainedqueue.New[uint64](cfg)
	require.NoError(t, err)
	return q
}

func TestRunPatterns(t *testing.T) {
	configs := []chainedqueue.Config{
		{Depth: 8, MaxSegmentSize: 4},
		{Depth: 10, MaxSegmentSize: 3, BalanceSegments: true},
		{Depth: 10, MaxSegmentSize: 3, FallThrough: true},
		{Depth: 1, MaxSegmentSize: 1},
	}
	patterns := []Pattern{PatternBurst, PatternStream, PatternRandom}

	for _, cfg := range configs {
		for _, pattern := range patterns {
			opts := DefaultOptions()
			opts.Pattern = pattern
			opts.Items = 500

			res, err := Run(newQueue(t, cfg), opts)
			require.NoError(t, err, "cfg=%+v pattern=%s", cfg, pattern)
			assert.True(t, res.InOrder, "cfg=%+v pattern=%s", cfg, pattern)
			assert.Equal(t, 500, res.Sent)
			assert.Equal(t, 500, res.Received)
			assert.Zero(t, res.Dropped)
			assert.LessOrEqual(t, res.MaxUsage, cfg.Depth)
		}
	}
}

func TestRunBurstReachesFullDepth(t *testing.T) {
	q := newQueue(t, chainedqueue.Config{Depth: 8, MaxSegmentSize: 4})

	res, err := Run(q, Options{Pattern: PatternBurst, Items: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, res.MaxUsage)
	// 8 fill ticks followed by 8 drain ticks.
	assert.Equal(t, uint64(16), res.Ticks)
	assert.Equal(t, uint64(8), res.FirstOutputTick)
}

func TestRunStreamLatency(t *testing.T) {
	single, err := Run(newQueue(t, chainedqueue.Config{Depth: 16, MaxSegmentSize: 16}), Options{Pattern: PatternStream, Items: 64})
	require.NoError(t, err)
	segmented, err := Run(newQueue(t, chainedqueue.Config{Depth: 16, MaxSegmentSize: 4}), Options{Pattern: PatternStream, Items: 64})
	require.NoError(t, err)

	assert.Equal(t, single.FirstOutputTick+3, segmented.FirstOutputTick)
	assert.Equal(t, single.Ticks+3, segmented.Ticks)
}

func TestRunWithFlushes(t *testing.T) {
	rec := &countingRecorder{}
	opts := Options{
		Pattern:      PatternRandom,
		Items:        400,
		FlushEvery:   50,
		ValidPercent: 80,
		ReadyPercent: 40,
		Recorder:     rec,
	}

	res, err := Run(newQueue(t, chainedqueue.Config{Depth: 12, MaxSegmentSize: 5}), opts)
	require.NoError(t, err)
	assert.True(t, res.InOrder)
	assert.Equal(t, 400, res.Received+res.Dropped)
	assert.Positive(t, res.Flushes)
	assert.Equal(t, res.Flushes, rec.flushes)
	require.Len(t, rec.ticks, int(res.Ticks))
	for i, tick := range rec.ticks {
		require.Equal(t, uint64(i), tick)
	}
}

func TestRunRejectsUnknownPattern(t *testing.T) {
	_, err := Run(newQueue(t, chainedqueue.DefaultConfig()), Options{Pattern: "zigzag", Items: 1})
	assert.ErrorIs(t, err, ErrUnknownPattern)
}

func TestRunStopsWhenBudgetExhausted(t *testing.T) {
	opts := Options{Pattern: PatternRandom, Items: 10, ReadyPercent: 0, ValidPercent: 100, MaxTicks: 100}
	res, err := Run(newQueue(t, chainedqueue.DefaultConfig()), opts)
	assert.ErrorIs(t, err, ErrNoProgress)
	assert.Equal(t, uint64(100), res.Ticks)
	assert.Equal(t, 8, res.Sent)
}
