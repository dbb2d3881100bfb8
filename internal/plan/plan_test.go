package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanScenarios(t *testing.T) {
	tests := []struct {
		name    string
		depth   int
		max     int
		balance bool
		want    []int
	}{
		{"even split", 8, 4, false, []int{4, 4}},
		{"remainder last", 10, 3, false, []int{3, 3, 3, 1}},
		{"balanced earliest get extra", 10, 3, true, []int{3, 3, 2, 2}},
		{"balanced even", 8, 4, true, []int{4, 4}},
		{"balanced spread", 9, 4, true, []int{3, 3, 3}},
		{"max larger than depth", 5, 100, false, []int{5}},
		{"depth one", 1, 1, false, []int{1}},
		{"depth one big max", 1, 16, true, []int{1}},
		{"unit segments", 4, 1, false, []int{1, 1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Plan(tt.depth, tt.max, tt.balance)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Capacities)
			assert.Equal(t, len(tt.want), p.Count())
			assert.NoError(t, p.Validate())
		})
	}
}

func TestPlanRejectsInvalidConfiguration(t *testing.T) {
	_, err := Plan(0, 4, false)
	assert.ErrorIs(t, err, ErrInvalidDepth)

	_, err = Plan(-3, 4, true)
	assert.ErrorIs(t, err, ErrInvalidDepth)

	_, err = Plan(8, 0, false)
	assert.ErrorIs(t, err, ErrInvalidSegmentSize)
}

func TestPlanInvariantsExhaustive(t *testing.T) {
	for depth := 1; depth <= 64; depth++ {
		for maxSize := 1; maxSize <= 70; maxSize++ {
			for _, balance := range []bool{false, true} {
				p, err := Plan(depth, maxSize, balance)
				require.NoError(t, err)
				require.NoError(t, p.Validate(), "depth=%d max=%d balance=%v", depth, maxSize, balance)

				effective := min(maxSize, depth)
				wantCount := (depth + effective - 1) / effective
				require.Equal(t, wantCount, p.Count(), "depth=%d max=%d balance=%v", depth, maxSize, balance)

				if !balance {
					for i := 0; i < p.Count()-1; i++ {
						require.Equal(t, effective, p.Capacity(i))
					}
				}
			}
		}
	}
}

func TestPlanUsageWidth(t *testing.T) {
	tests := map[int]int{1: 1, 2: 2, 3: 2, 7: 3, 8: 4, 255: 8, 256: 9}
	for depth, want := range tests {
		p, err := Plan(depth, depth, false)
		require.NoError(t, err)
		assert.Equal(t, want, p.UsageWidth(), "depth=%d", depth)
	}
}

func TestValidateDetectsBrokenPlans(t *testing.T) {
	broken := []SegmentPlan{
		{Depth: 8, MaxSegmentSize: 4},
		{Depth: 8, MaxSegmentSize: 4, Capacities: []int{4, 3}},
		{Depth: 8, MaxSegmentSize: 4, Capacities: []int{5, 3}},
		{Depth: 8, MaxSegmentSize: 4, Capacities: []int{8, 0}},
		{Depth: 7, MaxSegmentSize: 4, Balanced: true, Capacities: []int{4, 1, 2}},
	}
	for _, p := range broken {
		assert.ErrorIs(t, p.Validate(), ErrPlanInvariant, "plan %s", p)
	}
}
