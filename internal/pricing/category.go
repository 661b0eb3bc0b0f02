package pricing

import (
	"fmt"
	"sort"
)

// Category thresholds in inches, ascending.
var (
	AluminumXCategories = []float64{59.5, 119.5, 179.5, 239.5}
	AluminumYCategories = []float64{15.5, 23.5, 31.5, 39.5, 47.5}

	ACMSmallXCategories = []float64{23.5, 47.5, 71.5, 95.5}
	ACMSmallYCategories = []float64{23.5, 47.5}

	ACMLargeXCategories = []float64{23.5, 47.5, 71.5, 95.5, 119.5}
	ACMLargeYCategories = []float64{23.5, 47.5, 59.5}
)

// FindCategory rounds value up to the first threshold >= value. Values past
// the largest threshold are an error, never clamped.
func FindCategory(value float64, sortedThresholds []float64) (float64, error) {
	i := sort.SearchFloat64s(sortedThresholds, value)
	if i == len(sortedThresholds) {
		largest := 0.0
		if len(sortedThresholds) > 0 {
			largest = sortedThresholds[len(sortedThresholds)-1]
		}
		return 0, fmt.Errorf("%w: %s exceeds largest category %s",
			ErrDimensionOutOfRange, formatDim(value), formatDim(largest))
	}
	return sortedThresholds[i], nil
}

// CategoryKey builds the composite lookup key, e.g. "119.5x47.5".
func CategoryKey(x, y float64) string {
	return formatDim(x) + "x" + formatDim(y)
}

// NormalizeDimensions orders a pair so the longer side is X.
func NormalizeDimensions(a, b float64) (x, y float64) {
	if b > a {
		return b, a
	}
	return a, b
}

// FormedDimensions returns the flat blank for a formed panel: each side grows
// by a return on both edges.
func FormedDimensions(dims []float64) (x, y float64, err error) {
	if len(dims) < 2 {
		return 0, 0, domainErr("Enter width and height", fmt.Errorf("%w: need at least 2 dimensions, got %d", ErrInvalidInput, len(dims)))
	}
	for _, d := range dims {
		if d < 0 {
			return 0, 0, domainErr("Dimensions must be positive", fmt.Errorf("%w: negative dimension %s", ErrInvalidInput, formatDim(d)))
		}
	}
	if dims[0] <= 0 || dims[1] <= 0 {
		return 0, 0, domainErr("Dimensions must be positive", fmt.Errorf("%w: zero dimension", ErrInvalidInput))
	}
	depth := 0.0
	if len(dims) >= 3 {
		depth = dims[2]
	}
	x, y = NormalizeDimensions(dims[0]+2*depth, dims[1]+2*depth)
	return x, y, nil
}

// bucket maps a normalised pair onto a category pair.
func bucket(x, y float64, xs, ys []float64) (float64, float64, error) {
	cx, err := FindCategory(x, xs)
	if err != nil {
		return 0, 0, err
	}
	cy, err := FindCategory(y, ys)
	if err != nil {
		return 0, 0, err
	}
	return cx, cy, nil
}
