package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 3}, {3, 0}, {-1, 2}, {0, 0}} {
		_, err := New(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrEmptyRaster, "New(%d, %d)", dims[0], dims[1])

		_, err = NewGray(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrEmptyRaster, "NewGray(%d, %d)", dims[0], dims[1])
	}
}

func TestFromSamplesLengthMismatch(t *testing.T) {
	_, err := FromSamples(2, 2, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = GrayFromSamples(2, 2, []uint8{1, 2, 3, 4, 5})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFromSamplesCopies(t *testing.T) {
	samples := []float64{1, 2, 3, 4}
	r, err := FromSamples(2, 2, samples)
	require.NoError(t, err)

	samples[0] = 99
	assert.Equal(t, 1.0, r.At(0, 0))
	assert.Equal(t, 4.0, r.At(1, 1))
	assert.Equal(t, []float64{3, 4}, r.Row(1))
}

func TestMax(t *testing.T) {
	r, err := FromSamples(3, 1, []float64{-5, 2.5, 1})
	require.NoError(t, err)
	assert.Equal(t, 2.5, r.Max())

	neg, err := FromSamples(2, 1, []float64{-1, -2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, neg.Max())
}

func TestHypotAndAbs(t *testing.T) {
	a, _ := FromSamples(2, 1, []float64{3, -6})
	b, _ := FromSamples(2, 1, []float64{4, 8})

	h, err := Hypot(a, b, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 10}, h.Pix)

	assert.Equal(t, []float64{3, 6}, Abs(a, 1).Pix)

	c, _ := New(1, 1)
	_, err = Hypot(a, c, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestAdd(t *testing.T) {
	a, _ := FromSamples(2, 1, []float64{1, 2})
	b, _ := FromSamples(2, 1, []float64{10, 20})

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22}, sum.Pix)
	assert.Equal(t, []float64{1, 2}, a.Pix)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name    string
		samples []uint8
		want    float64
	}{
		{"odd", []uint8{5, 1, 3}, 3},
		{"even averages middle pair", []uint8{1, 2, 3, 4}, 2.5},
		{"constant", []uint8{128, 128, 128, 128}, 128},
		{"extremes", []uint8{0, 255}, 127.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := GrayFromSamples(len(tt.samples), 1, tt.samples)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Median())
		})
	}
}

func TestFromImageGray(t *testing.T) {
	src := image.NewGray(image.Rect(2, 3, 5, 5))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 10)
	}

	g, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Width)
	assert.Equal(t, 2, g.Height)
	assert.Equal(t, uint8(0), g.At(0, 0))
	assert.Equal(t, src.GrayAt(4, 4).Y, g.At(2, 1))
}

func TestFromImageColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.Set(1, 0, color.RGBA{A: 255})

	g, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 0}, g.Pix)

	_, err = FromImage(nil)
	assert.Error(t, err)
}

func TestToImageRoundTrip(t *testing.T) {
	g, err := GrayFromSamples(2, 2, []uint8{1, 2, 3, 4})
	require.NoError(t, err)

	back, err := FromImage(g.ToImage())
	require.NoError(t, err)
	if diff := cmp.Diff(g, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCountNonZero(t *testing.T) {
	g, _ := GrayFromSamples(4, 1, []uint8{0, 255, 0, 1})
	assert.Equal(t, 2, g.CountNonZero())

	f, err := Filled(3, 2, 7)
	require.NoError(t, err)
	assert.Equal(t, 6, f.CountNonZero())
}
