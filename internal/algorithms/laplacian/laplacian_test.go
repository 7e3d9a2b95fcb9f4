package laplacian

import (
	"context"
	"errors"
	"testing"

	"edge-detector/internal/algorithms/params"
	"edge-detector/internal/convolution"
	"edge-detector/internal/raster"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(t *testing.T) *raster.Gray {
	t.Helper()
	g, err := raster.NewGray(5, 5)
	require.NoError(t, err)
	g.SetGray(2, 2, 255)
	return g
}

func TestFlatFieldHasNoEdges(t *testing.T) {
	for _, value := range []uint8{1, 50, 128, 200, 255} {
		for _, size := range []int{5, 8, 16} {
			g, err := raster.Filled(size, size, value)
			require.NoError(t, err)

			for _, smoothing := range []bool{true, false} {
				opts := DefaultOptions()
				opts.Smoothing = smoothing

				out, err := Detect(g, opts)
				require.NoError(t, err)
				assert.Zero(t, out.CountNonZero(), "value=%d size=%d smoothing=%v", value, size, smoothing)
			}
		}
	}
}

func TestDotWithoutSmoothing(t *testing.T) {
	opts := DefaultOptions()
	opts.Smoothing = false

	out, err := Detect(dot(t), opts)
	require.NoError(t, err)

	want := []uint8{
		0, 0, 0, 0, 0,
		0, 0, 64, 0, 0,
		0, 64, 255, 64, 0,
		0, 0, 64, 0, 0,
		0, 0, 0, 0, 0,
	}
	if diff := cmp.Diff(want, out.Pix); diff != "" {
		t.Errorf("laplacian mismatch (-want +got):\n%s", diff)
	}
}

func TestSmoothingSpreadsResponse(t *testing.T) {
	out, err := Detect(dot(t), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, uint8(255), out.At(2, 2))
	assert.NotZero(t, out.At(1, 1))
}

func TestProcessorDefaultsToSmoothing(t *testing.T) {
	p := NewProcessor()
	assert.Equal(t, "laplacian", p.GetName())
	assert.Equal(t, true, p.GetDefaultParameters()[ParamSmoothing])

	withDefaults, err := p.Process(context.Background(), dot(t), nil)
	require.NoError(t, err)
	smoothed, err := Detect(dot(t), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, smoothed.Pix, withDefaults.Pix)
}

func TestProcessorRejectsBadKernel(t *testing.T) {
	p := NewProcessor()

	for _, bad := range []map[string]interface{}{
		{ParamKernelSize: 4},
		{ParamKernelSize: 17},
		{ParamSigma: 0.0},
	} {
		err := p.ValidateParameters(bad)
		var ve *params.ValidationError
		require.True(t, errors.As(err, &ve), "%v", bad)
		assert.ErrorIs(t, err, convolution.ErrInvalidKernel)
	}
}

func TestProcessorRejectsMistypedValues(t *testing.T) {
	p := NewProcessor()

	for _, bad := range []map[string]interface{}{
		{ParamSigma: "1.4"},
		{ParamKernelSize: 5.5},
		{ParamSmoothing: "no"},
	} {
		_, err := p.Process(context.Background(), dot(t), bad)
		var ve *params.ValidationError
		require.True(t, errors.As(err, &ve), "%v", bad)
		assert.Equal(t, "laplacian", ve.Context)
	}
}
