package convolution

import (
	"math/rand"
	"testing"

	"edge-detector/internal/raster"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// leftNeighbour copies in[y, x-1] into out[y, x].
func leftNeighbour(t *testing.T) *Kernel {
	t.Helper()
	k, err := NewKernel([][]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 0, 0},
	})
	require.NoError(t, err)
	return k
}

func rampRows(t *testing.T) *raster.Raster {
	t.Helper()
	r, err := raster.FromSamples(3, 3, []float64{
		1, 2, 3,
		1, 2, 3,
		1, 2, 3,
	})
	require.NoError(t, err)
	return r
}

func TestBorderPolicies(t *testing.T) {
	tests := []struct {
		border Border
		want   []float64
	}{
		{BorderReflect101, []float64{2, 1, 2, 2, 1, 2, 2, 1, 2}},
		{BorderReplicate, []float64{1, 1, 2, 1, 1, 2, 1, 1, 2}},
		{BorderSkip, []float64{0, 0, 0, 0, 1, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.border.String(), func(t *testing.T) {
			out, err := Convolve(rampRows(t), leftNeighbour(t), Options{Border: tt.border, Workers: 2})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Pix)
		})
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, 1, BorderReflect101.resolve(-1, 5))
	assert.Equal(t, 2, BorderReflect101.resolve(-2, 5))
	assert.Equal(t, 3, BorderReflect101.resolve(5, 5))
	assert.Equal(t, 2, BorderReflect101.resolve(6, 5))
	assert.Equal(t, 0, BorderReplicate.resolve(-2, 5))
	assert.Equal(t, 4, BorderReplicate.resolve(6, 5))
	assert.Equal(t, 0, BorderReflect101.resolve(-1, 1))
}

func TestConvolveRejectsInvalidInput(t *testing.T) {
	small, err := raster.New(3, 4)
	require.NoError(t, err)
	big, err := Gaussian(5, 1)
	require.NoError(t, err)

	_, err = Convolve(small, big, Options{})
	assert.ErrorIs(t, err, ErrInvalidKernel)

	_, err = Convolve(small, nil, Options{})
	assert.ErrorIs(t, err, ErrInvalidKernel)

	_, err = Convolve(&raster.Raster{}, SobelX(), Options{})
	assert.ErrorIs(t, err, raster.ErrEmptyRaster)

	_, err = Convolve(nil, SobelX(), Options{})
	assert.ErrorIs(t, err, raster.ErrEmptyRaster)
}

func TestConvolveDoesNotMutateInput(t *testing.T) {
	r := rampRows(t)
	before := r.Clone()

	_, err := Convolve(r, Laplacian4(), Options{})
	require.NoError(t, err)
	assert.Equal(t, before.Pix, r.Pix)
}

func TestConvolveLinear(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := randomRaster(t, rng, 17, 11)
	b := randomRaster(t, rng, 17, 11)
	const ca, cb = 0.75, -2.5

	k, err := Gaussian(5, 1.4)
	require.NoError(t, err)

	for _, border := range []Border{BorderReflect101, BorderReplicate, BorderSkip} {
		opts := Options{Border: border}

		combined := raster.NewLike(a)
		for i := range combined.Pix {
			combined.Pix[i] = ca*a.Pix[i] + cb*b.Pix[i]
		}
		lhs, err := Convolve(combined, k, opts)
		require.NoError(t, err)

		ka, err := Convolve(a, k, opts)
		require.NoError(t, err)
		kb, err := Convolve(b, k, opts)
		require.NoError(t, err)

		for i := range lhs.Pix {
			assert.InDelta(t, ca*ka.Pix[i]+cb*kb.Pix[i], lhs.Pix[i], 1e-9, "border=%s i=%d", border, i)
		}
	}
}

func TestConvolveSameForAnyWorkerCount(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	r := randomRaster(t, rng, 40, 33)

	want, err := Convolve(r, SobelY(), Options{Workers: 1})
	require.NoError(t, err)

	for _, workers := range []int{2, 5, 64} {
		got, err := Convolve(r, SobelY(), Options{Workers: workers})
		require.NoError(t, err)
		if diff := cmp.Diff(want.Pix, got.Pix); diff != "" {
			t.Errorf("workers=%d mismatch (-want +got):\n%s", workers, diff)
		}
	}
}

func TestParseBorder(t *testing.T) {
	for in, want := range map[string]Border{
		"":           BorderReflect101,
		"reflect101": BorderReflect101,
		"Mirror":     BorderReflect101,
		"replicate":  BorderReplicate,
		"clamp":      BorderReplicate,
		"skip":       BorderSkip,
	} {
		got, err := ParseBorder(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBorder("wrap")
	assert.Error(t, err)

	var b Border
	require.NoError(t, b.UnmarshalText([]byte("replicate")))
	assert.Equal(t, BorderReplicate, b)
	text, err := BorderSkip.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "skip", string(text))
}

func randomRaster(t *testing.T, rng *rand.Rand, w, h int) *raster.Raster {
	t.Helper()
	r, err := raster.New(w, h)
	require.NoError(t, err)
	for i := range r.Pix {
		r.Pix[i] = rng.Float64() * 255
	}
	return r
}
