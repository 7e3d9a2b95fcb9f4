package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScalesToPeak(t *testing.T) {
	r, err := FromSamples(3, 1, []float64{0, 10, 20})
	require.NoError(t, err)

	assert.Equal(t, []uint8{0, 128, 255}, Normalize(r).Pix)
}

func TestNormalizeAllZero(t *testing.T) {
	r, err := New(4, 4)
	require.NoError(t, err)

	out := Normalize(r)
	assert.Equal(t, 4, out.Width)
	assert.Equal(t, 4, out.Height)
	assert.Zero(t, out.CountNonZero())
}

func TestNormalizeTreatsResidueAsZero(t *testing.T) {
	r, err := FromSamples(3, 1, []float64{2.84e-14, 1e-15, 0})
	require.NoError(t, err)
	assert.Zero(t, Normalize(r).CountNonZero())

	r, err = FromSamples(3, 1, []float64{2.84e-14, 8, 4})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255, 128}, Normalize(r).Pix)
}

func TestNormalizeIgnoresNegativeAndNaN(t *testing.T) {
	r, err := FromSamples(3, 1, []float64{-4, math.NaN(), 2})
	require.NoError(t, err)

	assert.Equal(t, []uint8{0, 0, 255}, Normalize(r).Pix)
}

func TestNormalizeIdempotent(t *testing.T) {
	r, err := FromSamples(4, 1, []float64{0.3, 1.7, 9.1, 4})
	require.NoError(t, err)

	once := Normalize(r)
	twice := Normalize(once.ToRaster())
	assert.Equal(t, once.Pix, twice.Pix)
}
