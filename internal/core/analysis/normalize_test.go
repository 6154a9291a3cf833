package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLinear(t *testing.T) {
	tests := []struct {
		name            string
		value, min, max float64
		want            float64
	}{
		{"bottom of range", 0, 0, 10, 0},
		{"top of range", 10, 0, 10, 100},
		{"midpoint", 5, 0, 10, 50},
		{"degenerate range", 7, 7, 7, 0},
		{"rounded to two decimals", 1, 0, 3, 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLinear(tt.value, tt.min, tt.max))
		})
	}
}

func TestNormalizeLog(t *testing.T) {
	tests := []struct {
		name            string
		value, min, max float64
		want            float64
	}{
		{"zero value", 0, 10_000, 15_000_000, 0},
		{"negative value", -5, 10_000, 15_000_000, 0},
		{"zero min", 100, 0, 15_000_000, 0},
		{"degenerate range", 100, 500, 500, 0},
		{"at min", 10_000, 10_000, 15_000_000, 0},
		{"at max", 15_000_000, 10_000, 15_000_000, 100},
		{"below min clamps to zero", 5_000, 10_000, 15_000_000, 0},
		{"above max clamps to hundred", 50_000_000, 10_000, 15_000_000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLog(tt.value, tt.min, tt.max))
		})
	}
}

func TestNormalizeLogMidScale(t *testing.T) {
	// A million listeners sits about two thirds up the log scale from
	// 10k to 15M.
	got := NormalizeLog(1_000_000, 10_000, 15_000_000)
	assert.InDelta(t, 62.97, got, 0.01)
}

func TestFusePopularity(t *testing.T) {
	global := 80.0
	local := 40.0
	zero := 0.0

	t.Run("both present uses weights", func(t *testing.T) {
		got := FusePopularity(&global, &local, 0.3, 0.7)
		require.NotNil(t, got)
		assert.InDelta(t, 52.0, *got, 0.001)
	})

	t.Run("nil local falls back to global", func(t *testing.T) {
		got := FusePopularity(&global, nil, 0.3, 0.7)
		require.NotNil(t, got)
		assert.Equal(t, 80.0, *got)
	})

	t.Run("zero local treated as absent", func(t *testing.T) {
		got := FusePopularity(&global, &zero, 0.3, 0.7)
		require.NotNil(t, got)
		assert.Equal(t, 80.0, *got)
	})

	t.Run("nil global falls back to local", func(t *testing.T) {
		got := FusePopularity(nil, &local, 0.3, 0.7)
		require.NotNil(t, got)
		assert.Equal(t, 40.0, *got)
	})

	t.Run("both absent stays nil", func(t *testing.T) {
		assert.Nil(t, FusePopularity(nil, nil, 0.3, 0.7))
	})
}
