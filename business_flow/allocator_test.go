package businessflow

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quotasByChannel(quotas []ChannelQuota) map[uint]int {
	out := make(map[uint]int, len(quotas))
	for _, q := range quotas {
		out[q.ChannelID] = q.Count
	}
	return out
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name     string
		channels []ChannelWeight
		total    int
		expected map[uint]int
	}{
		{
			name: "60/40 over 7 units",
			channels: []ChannelWeight{
				{ChannelID: 1, Weight: 60},
				{ChannelID: 2, Weight: 40},
			},
			total:    7,
			expected: map[uint]int{1: 4, 2: 3},
		},
		{
			name: "50/30/20 over 10 units",
			channels: []ChannelWeight{
				{ChannelID: 1, Weight: 50},
				{ChannelID: 2, Weight: 30},
				{ChannelID: 3, Weight: 20},
			},
			total:    10,
			expected: map[uint]int{1: 5, 2: 3, 3: 2},
		},
		{
			name: "zero weight channel receives nothing",
			channels: []ChannelWeight{
				{ChannelID: 1, Weight: 100},
				{ChannelID: 2, Weight: 0},
			},
			total:    5,
			expected: map[uint]int{1: 5, 2: 0},
		},
		{
			name: "equal weights tie broken by input order",
			channels: []ChannelWeight{
				{ChannelID: 1, Weight: 1},
				{ChannelID: 2, Weight: 1},
				{ChannelID: 3, Weight: 1},
			},
			total:    4,
			expected: map[uint]int{1: 2, 2: 1, 3: 1},
		},
		{
			name: "zero total allocates nothing",
			channels: []ChannelWeight{
				{ChannelID: 1, Weight: 70},
				{ChannelID: 2, Weight: 30},
			},
			total:    0,
			expected: map[uint]int{1: 0, 2: 0},
		},
		{
			name: "fewer units than channels",
			channels: []ChannelWeight{
				{ChannelID: 1, Weight: 34},
				{ChannelID: 2, Weight: 33},
				{ChannelID: 3, Weight: 33},
			},
			total:    1,
			expected: map[uint]int{1: 1, 2: 0, 3: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotas, err := Allocate(tt.channels, tt.total)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, quotasByChannel(quotas))
		})
	}
}

func TestAllocateErrors(t *testing.T) {
	t.Run("empty channel list", func(t *testing.T) {
		_, err := Allocate(nil, 5)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("negative total", func(t *testing.T) {
		_, err := Allocate([]ChannelWeight{{ChannelID: 1, Weight: 1}}, -1)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("all weights zero", func(t *testing.T) {
		_, err := Allocate([]ChannelWeight{{ChannelID: 1, Weight: 0}, {ChannelID: 2, Weight: 0}}, 5)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("negative weight", func(t *testing.T) {
		_, err := Allocate([]ChannelWeight{{ChannelID: 1, Weight: -3}}, 5)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

// TestAllocateSumsExactly fuzzes random weight tables and totals and checks
// the counts always sum to exactly the requested total.
func TestAllocateSumsExactly(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := 1 + rnd.Intn(8)
		channels := make([]ChannelWeight, n)
		for j := range channels {
			channels[j] = ChannelWeight{ChannelID: uint(j + 1), Weight: rnd.Float64()*99 + 1}
		}
		total := rnd.Intn(1000)

		quotas, err := Allocate(channels, total)
		require.NoError(t, err)

		sum := 0
		for _, q := range quotas {
			assert.GreaterOrEqual(t, q.Count, 0)
			sum += q.Count
		}
		assert.Equal(t, total, sum)
	}
}

// TestAllocateFloorGuarantee checks each channel gets at least the floor of
// its exact proportional share and at most one unit above it.
func TestAllocateFloorGuarantee(t *testing.T) {
	channels := []ChannelWeight{
		{ChannelID: 1, Weight: 17},
		{ChannelID: 2, Weight: 29},
		{ChannelID: 3, Weight: 54},
	}
	total := 100

	quotas, err := Allocate(channels, total)
	require.NoError(t, err)

	byID := quotasByChannel(quotas)
	assert.Equal(t, 17, byID[1])
	assert.Equal(t, 29, byID[2])
	assert.Equal(t, 54, byID[3])
}

func TestAllocateDeterministic(t *testing.T) {
	channels := []ChannelWeight{
		{ChannelID: 1, Weight: 13},
		{ChannelID: 2, Weight: 7},
		{ChannelID: 3, Weight: 11},
	}

	first, err := Allocate(channels, 23)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Allocate(channels, 23)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
