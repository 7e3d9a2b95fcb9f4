package algorithms

import (
	"context"
	"testing"

	"edge-detector/internal/algorithms/canny"
	"edge-detector/internal/algorithms/params"
	"edge-detector/internal/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRegistersNativeFilters(t *testing.T) {
	m := NewManager()

	assert.Equal(t, BackendNative, m.GetBackend())
	assert.Equal(t, "sobel", m.GetCurrentAlgorithm())
	assert.Equal(t, []string{"canny", "laplacian", "prewitt", "sobel"}, m.GetAvailableAlgorithms())
	assert.Contains(t, m.GetAvailableBackends(), BackendNative)
}

func TestManagerUnknownNames(t *testing.T) {
	m := NewManager()

	assert.ErrorIs(t, m.SetCurrentAlgorithm("roberts"), ErrUnknownAlgorithm)
	assert.ErrorIs(t, m.SetBackend("cuda"), ErrUnknownBackend)
	assert.ErrorIs(t, m.SetParameters("roberts", map[string]interface{}{"x": 1}), ErrUnknownAlgorithm)

	_, err := m.GetAlgorithmFor("cuda", "sobel")
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = m.ProcessWith(context.Background(), BackendNative, "roberts", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = m.ProcessWith(context.Background(), "cuda", "sobel", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestManagerParametersAreCopied(t *testing.T) {
	m := NewManager()

	p := m.GetParameters("canny")
	p[canny.ParamLowThreshold] = 1.0
	assert.NotContains(t, m.GetParameters("canny"), canny.ParamLowThreshold)

	require.NoError(t, m.SetParameters("canny", map[string]interface{}{
		canny.ParamLowThreshold: 10.0,
	}))
	assert.Equal(t, 10.0, m.GetParameters("canny")[canny.ParamLowThreshold])
	assert.NotContains(t, m.GetParameters("canny"), canny.ParamHighThreshold)

	assert.Empty(t, m.GetParameters("roberts"))
}

func TestManagerProcess(t *testing.T) {
	m := NewManager()
	input, err := raster.Filled(9, 9, 40)
	require.NoError(t, err)
	input.SetGray(4, 4, 250)

	for _, name := range m.GetAvailableAlgorithms() {
		out, err := m.ProcessWith(context.Background(), BackendNative, name, input, nil)
		require.NoError(t, err, name)
		assert.True(t, out.SameSize(input), name)
		assert.NotZero(t, out.CountNonZero(), name)
	}

	_, err = m.ProcessWith(context.Background(), BackendNative, "canny", input, map[string]interface{}{
		canny.ParamLowThreshold:  200.0,
		canny.ParamHighThreshold: 100.0,
	})
	assert.ErrorIs(t, err, canny.ErrInvalidThreshold)

	_, err = m.ProcessWith(context.Background(), BackendNative, "canny", input, map[string]interface{}{
		canny.ParamAuto:         true,
		canny.ParamLowThreshold: 20.0,
	})
	assert.ErrorIs(t, err, canny.ErrInvalidThreshold)

	_, err = m.ProcessWith(context.Background(), BackendNative, "laplacian", input, map[string]interface{}{
		"kernel_size": 5.5,
	})
	var verr *params.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kernel_size", verr.Field)
}
