package timeframes

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_File(t *testing.T) {
	path := "../../config/timeframes.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	set, err := Load(path, 365)
	require.NoError(t, err)
	assert.Equal(t, Default(), set)
}

func TestLoad_Default(t *testing.T) {
	set, err := Load("", 365)
	require.NoError(t, err)
	require.Len(t, set.Timeframes, 5)
	assert.Equal(t, "7d", set.Timeframes[0].Label)
	assert.Equal(t, 365, set.MaxWindow())

	// 기본 세트도 lookback 제한을 받음
	_, err = Load("", 90)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	set, err := Parse([]byte(`
timeframes:
  - label: 14d
    window_days: 14
    min_coverage_fraction: 0.9
`), 365)
	require.NoError(t, err)

	tf, ok := set.Lookup("14d")
	require.True(t, ok)
	assert.Equal(t, 12, tf.RequiredPoints())

	_, ok = set.Lookup("30d")
	assert.False(t, ok)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`
timeframes:
  - label: 14d
    window_day: 14
    min_coverage_fraction: 0.9
`), 365)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"empty", "timeframes: []", "timeframes"},
		{"missing label", "timeframes: [{window_days: 7, min_coverage_fraction: 0.5}]", "timeframes[0].label"},
		{"path in label", "timeframes: [{label: ../x, window_days: 7, min_coverage_fraction: 0.5}]", "timeframes[0].label"},
		{"space in label", "timeframes: [{label: \"30 d\", window_days: 7, min_coverage_fraction: 0.5}]", "timeframes[0].label"},
		{"duplicate label", "timeframes: [{label: a, window_days: 7, min_coverage_fraction: 0.5}, {label: a, window_days: 8, min_coverage_fraction: 0.5}]", "timeframes[1].label"},
		{"zero window", "timeframes: [{label: a, window_days: 0, min_coverage_fraction: 0.5}]", "timeframes[0].window_days"},
		{"window beyond lookback", "timeframes: [{label: a, window_days: 400, min_coverage_fraction: 0.5}]", "timeframes[0].window_days"},
		{"zero fraction", "timeframes: [{label: a, window_days: 7, min_coverage_fraction: 0}]", "timeframes[0].min_coverage_fraction"},
		{"fraction above one", "timeframes: [{label: a, window_days: 7, min_coverage_fraction: 1.5}]", "timeframes[0].min_coverage_fraction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), 365)
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHash(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, _ := Hash(Default())
	assert.Equal(t, h1, h2, "hash not deterministic")

	other := Default()
	other.Timeframes[0].MinCoverageFraction = 0.9
	h3, _ := Hash(other)
	assert.NotEqual(t, h1, h3)
}
