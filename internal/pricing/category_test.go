package pricing

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCategory(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{value: 1, want: 59.5},
		{value: 59.5, want: 59.5},
		{value: 59.6, want: 119.5},
		{value: 104, want: 119.5},
		{value: 239.5, want: 239.5},
	}
	for _, tt := range tests {
		got, err := FindCategory(tt.value, AluminumXCategories)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "value %v", tt.value)
	}
}

func TestFindCategory_PastLargestIsError(t *testing.T) {
	_, err := FindCategory(240, AluminumXCategories)
	require.ErrorIs(t, err, ErrDimensionOutOfRange)

	_, err = FindCategory(1, nil)
	require.ErrorIs(t, err, ErrDimensionOutOfRange)
}

func TestCategoryKey(t *testing.T) {
	assert.Equal(t, "119.5x47.5", CategoryKey(119.5, 47.5))
	assert.Equal(t, "48x96", CategoryKey(48, 96))
}

func TestFormedDimensions(t *testing.T) {
	x, y, err := FormedDimensions([]float64{100, 40, 2})
	require.NoError(t, err)
	assert.Equal(t, 104.0, x)
	assert.Equal(t, 44.0, y)

	x, y, err = FormedDimensions([]float64{40, 100})
	require.NoError(t, err)
	assert.Equal(t, 100.0, x, "longer side becomes X")
	assert.Equal(t, 40.0, y)

	_, _, err = FormedDimensions([]float64{40})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = FormedDimensions([]float64{40, 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = FormedDimensions([]float64{40, 20, -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFindCategory_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("category is the smallest threshold at or above the value", prop.ForAll(
		func(v float64) bool {
			got, err := FindCategory(v, ACMLargeXCategories)
			if err != nil {
				return false
			}
			for _, c := range ACMLargeXCategories {
				if c >= v {
					return got == c
				}
			}
			return false
		},
		gen.Float64Range(0, 119.5),
	))

	properties.Property("normalised pairs put the longer side first", prop.ForAll(
		func(a, b float64) bool {
			x, y := NormalizeDimensions(a, b)
			return x >= y && x+y == a+b
		},
		gen.Float64Range(0, 300),
		gen.Float64Range(0, 300),
	))

	properties.TestingRun(t)
}
