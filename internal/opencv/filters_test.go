//go:build opencv

package opencv

import (
	"context"
	"testing"

	"edge-detector/internal/algorithms/gradient"
	"edge-detector/internal/algorithms/params"
	"edge-detector/internal/convolution"
	"edge-detector/internal/raster"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(t *testing.T) *raster.Gray {
	t.Helper()
	g, err := raster.Filled(24, 24, 30)
	require.NoError(t, err)
	for y := 8; y < 16; y++ {
		for x := 8; x < 16; x++ {
			g.SetGray(x, y, 210)
		}
	}
	return g
}

func TestGrayMatRoundTrip(t *testing.T) {
	g := square(t)

	mat, err := GrayToMat(g)
	require.NoError(t, err)
	defer mat.Close()

	back, err := MatToGray(mat)
	require.NoError(t, err)
	if diff := cmp.Diff(g, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	_, err = GrayToMat(nil)
	assert.ErrorIs(t, err, raster.ErrEmptyRaster)
}

func TestGradientMatchesNative(t *testing.T) {
	g := square(t)

	for _, tc := range []struct {
		proc *Processor
		op   gradient.Operator
	}{
		{NewSobelProcessor(), gradient.SobelOperator},
		{NewPrewittProcessor(), gradient.PrewittOperator},
	} {
		want, err := gradient.Detect(g, tc.op, convolution.Options{})
		require.NoError(t, err)

		got, err := tc.proc.Process(context.Background(), g, tc.proc.GetDefaultParameters())
		require.NoError(t, err)
		if diff := cmp.Diff(want.Pix, got.Pix); diff != "" {
			t.Errorf("%s mismatch (-native +opencv):\n%s", tc.op.Name, diff)
		}
	}
}

func TestSkipBorderUnsupported(t *testing.T) {
	p := NewSobelProcessor()
	_, err := p.Process(context.Background(), square(t), map[string]interface{}{params.Border: "skip"})
	assert.Error(t, err)
}

func TestFlatFieldHasNoEdges(t *testing.T) {
	g, err := raster.Filled(16, 16, 90)
	require.NoError(t, err)

	for _, p := range []*Processor{NewSobelProcessor(), NewPrewittProcessor(), NewLaplacianProcessor(), NewCannyProcessor()} {
		out, err := p.Process(context.Background(), g, p.GetDefaultParameters())
		require.NoError(t, err, p.GetName())
		assert.Zero(t, out.CountNonZero(), p.GetName())
	}
}
