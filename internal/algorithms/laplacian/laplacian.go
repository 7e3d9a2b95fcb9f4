// Package laplacian implements the second-derivative edge filter.
package laplacian

import (
	"fmt"

	"edge-detector/internal/convolution"
	"edge-detector/internal/raster"
)

// Options configures Detect. Smoothing applies a KernelSize×KernelSize
// Gaussian with the given Sigma before the Laplacian.
type Options struct {
	Smoothing  bool
	KernelSize int
	Sigma      float64
	Conv       convolution.Options
}

func DefaultOptions() Options {
	return Options{
		Smoothing:  true,
		KernelSize: 3,
		Sigma:      1.0,
	}
}

// Detect convolves g with the 4-neighbourhood Laplacian, takes absolute
// responses and normalizes them into 0–255.
func Detect(g *raster.Gray, opts Options) (*raster.Gray, error) {
	if g == nil {
		return nil, raster.ErrEmptyRaster
	}

	r := g.ToRaster()
	if opts.Smoothing {
		blur, err := convolution.Gaussian(opts.KernelSize, opts.Sigma)
		if err != nil {
			return nil, fmt.Errorf("laplacian smoothing: %w", err)
		}
		r, err = convolution.Convolve(r, blur, opts.Conv)
		if err != nil {
			return nil, fmt.Errorf("laplacian smoothing: %w", err)
		}
	}

	response, err := convolution.Convolve(r, convolution.Laplacian4(), opts.Conv)
	if err != nil {
		return nil, fmt.Errorf("laplacian: %w", err)
	}

	return raster.Normalize(raster.Abs(response, opts.Conv.Workers)), nil
}
