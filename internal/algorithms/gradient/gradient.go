// Package gradient implements the first-derivative edge filters, Sobel and
// Prewitt. Both convolve the input with a horizontal and a vertical kernel,
// combine the two responses into sqrt(gx²+gy²) and normalize the result
// into 0–255.
package gradient

import (
	"fmt"

	"edge-detector/internal/convolution"
	"edge-detector/internal/raster"
)

// Operator is a pair of directional kernels.
type Operator struct {
	Name    string
	KernelX func() *convolution.Kernel
	KernelY func() *convolution.Kernel
}

var (
	SobelOperator = Operator{
		Name:    "sobel",
		KernelX: convolution.SobelX,
		KernelY: convolution.SobelY,
	}
	PrewittOperator = Operator{
		Name:    "prewitt",
		KernelX: convolution.PrewittX,
		KernelY: convolution.PrewittY,
	}
)

// Sobel returns the normalized Sobel edge-strength map of g.
func Sobel(g *raster.Gray, opts convolution.Options) (*raster.Gray, error) {
	return Detect(g, SobelOperator, opts)
}

// Prewitt returns the normalized Prewitt edge-strength map of g.
func Prewitt(g *raster.Gray, opts convolution.Options) (*raster.Gray, error) {
	return Detect(g, PrewittOperator, opts)
}

func Detect(g *raster.Gray, op Operator, opts convolution.Options) (*raster.Gray, error) {
	if g == nil {
		return nil, raster.ErrEmptyRaster
	}

	magnitude, err := Magnitude(g.ToRaster(), op, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	return raster.Normalize(magnitude), nil
}

// Gradients convolves r with both kernels of op.
func Gradients(r *raster.Raster, op Operator, opts convolution.Options) (gx, gy *raster.Raster, err error) {
	gx, err = convolution.Convolve(r, op.KernelX(), opts)
	if err != nil {
		return nil, nil, fmt.Errorf("horizontal gradient: %w", err)
	}
	gy, err = convolution.Convolve(r, op.KernelY(), opts)
	if err != nil {
		return nil, nil, fmt.Errorf("vertical gradient: %w", err)
	}
	return gx, gy, nil
}

// Magnitude returns the unnormalized gradient magnitude of r.
func Magnitude(r *raster.Raster, op Operator, opts convolution.Options) (*raster.Raster, error) {
	gx, gy, err := Gradients(r, op, opts)
	if err != nil {
		return nil, err
	}
	return raster.Hypot(gx, gy, opts.Workers)
}
