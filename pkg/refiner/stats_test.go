package refiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"odd count", []float64{3, 1, 2}, 2},
		{"even count", []float64{1, 2, 3, 4}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(append([]float64(nil), tt.vals...)))
		})
	}
}

func TestPercentile(t *testing.T) {
	vals := []float64{10, 20, 30, 40}
	assert.Equal(t, 10.0, Percentile(append([]float64(nil), vals...), 0))
	assert.Equal(t, 40.0, Percentile(append([]float64(nil), vals...), 100))
	assert.InDelta(t, 25.0, Percentile(append([]float64(nil), vals...), 50), 1e-9)
}

func TestVariance(t *testing.T) {
	assert.Equal(t, 0.0, Variance(nil))
	assert.Equal(t, 0.0, Variance([]float64{5, 5, 5}))
	assert.InDelta(t, 2.0, Variance([]float64{1, 2, 3, 4, 5}), 1e-9)
}

func TestMedianUint8(t *testing.T) {
	assert.Equal(t, uint8(0), medianUint8(nil))
	assert.Equal(t, uint8(5), medianUint8([]uint8{1, 5, 9}))
}
