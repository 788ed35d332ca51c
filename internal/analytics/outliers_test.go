package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutlierMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    OutlierMethod
		wantErr bool
	}{
		{"iqr", OutlierIQR, false},
		{"", OutlierIQR, false},
		{"z-score", OutlierZScore, false},
		{"zscore", OutlierZScore, false},
		{"mad", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutlierMethod(tt.in)
			if tt.wantErr {
				var unsupported *UnsupportedMethodError
				require.ErrorAs(t, err, &unsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterOutliersIQR(t *testing.T) {
	values := []float64{10, 11, 12, 13, 14, 100}

	kept := FilterOutliers(values, OutlierIQR, 1.5)
	assert.Equal(t, []float64{10, 11, 12, 13, 14}, kept)
}

func TestFilterOutliersZScore(t *testing.T) {
	values := []float64{1, 2, 1, 2, 1, 2, 1, 2, 50}

	kept := FilterOutliers(values, OutlierZScore, 2)
	assert.NotContains(t, kept, 50.0)
	assert.Len(t, kept, 8)
}

func TestFilterOutliersDegenerate(t *testing.T) {
	t.Run("constant values survive z-score", func(t *testing.T) {
		values := []float64{5, 5, 5}
		assert.Equal(t, values, FilterOutliers(values, OutlierZScore, 3))
	})

	t.Run("short input returned unchanged", func(t *testing.T) {
		values := []float64{42}
		assert.Equal(t, values, FilterOutliers(values, OutlierIQR, 1.5))
	})

	t.Run("input not modified", func(t *testing.T) {
		values := []float64{10, 11, 100}
		FilterOutliers(values, OutlierIQR, 1.5)
		assert.Equal(t, []float64{10, 11, 100}, values)
	})
}
