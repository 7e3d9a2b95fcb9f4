// Package canny implements the Canny edge detector as five stages run in
// order: Gaussian smoothing, Sobel gradients, magnitude and direction,
// non-maximum suppression and double-threshold hysteresis. Each stage
// allocates its own output and finishes before the next one starts.
package canny

import (
	"errors"
	"fmt"
	"math"

	"edge-detector/internal/algorithms/gradient"
	"edge-detector/internal/convolution"
	"edge-detector/internal/raster"
)

var ErrInvalidThreshold = errors.New("invalid threshold")

// Options configures Detect. Low and High are on the 0–255 intensity scale
// and are ignored when Auto is set.
type Options struct {
	Low        float64
	High       float64
	Auto       bool
	KernelSize int
	Sigma      float64
	Hysteresis Hysteresis
	Conv       convolution.Options
}

func DefaultOptions() Options {
	return Options{
		Low:        50,
		High:       150,
		Auto:       true,
		KernelSize: 5,
		Sigma:      1.4,
		Hysteresis: HysteresisSinglePass,
	}
}

// Detect runs the full pipeline on g and returns a map whose samples are
// either 0 or 255.
func Detect(g *raster.Gray, opts Options) (*raster.Gray, error) {
	if g == nil {
		return nil, raster.ErrEmptyRaster
	}

	low, high := opts.Low, opts.High
	if opts.Auto {
		low, high = AutoThresholds(g)
	}
	if err := ValidateThresholds(low, high); err != nil {
		return nil, err
	}

	smoothed, err := Smooth(g.ToRaster(), opts.KernelSize, opts.Sigma, opts.Conv)
	if err != nil {
		return nil, err
	}

	gx, gy, err := gradient.Gradients(smoothed, gradient.SobelOperator, opts.Conv)
	if err != nil {
		return nil, fmt.Errorf("canny gradients: %w", err)
	}

	field, err := NewGradientField(gx, gy, opts.Conv.Workers)
	if err != nil {
		return nil, err
	}

	suppressed := SuppressNonMaxima(field, opts.Conv.Workers)
	return Threshold(suppressed, low, high, opts.Hysteresis, opts.Conv.Workers), nil
}

// AutoThresholds derives thresholds from the median intensity:
// low = round(0.66·median), high = round(1.33·median), both clamped to
// [0, 255].
func AutoThresholds(g *raster.Gray) (low, high float64) {
	median := g.Median()
	low = clamp255(math.Round(0.66 * median))
	high = clamp255(math.Round(1.33 * median))
	return low, high
}

func ValidateThresholds(low, high float64) error {
	if math.IsNaN(low) || low < 0 || low > 255 {
		return fmt.Errorf("%w: low %v outside [0, 255]", ErrInvalidThreshold, low)
	}
	if math.IsNaN(high) || high < 0 || high > 255 {
		return fmt.Errorf("%w: high %v outside [0, 255]", ErrInvalidThreshold, high)
	}
	if low > high {
		return fmt.Errorf("%w: low %v above high %v", ErrInvalidThreshold, low, high)
	}
	return nil
}

// Smooth convolves r with a normalized size×size Gaussian.
func Smooth(r *raster.Raster, size int, sigma float64, opts convolution.Options) (*raster.Raster, error) {
	kernel, err := convolution.Gaussian(size, sigma)
	if err != nil {
		return nil, fmt.Errorf("canny smoothing: %w", err)
	}
	smoothed, err := convolution.Convolve(r, kernel, opts)
	if err != nil {
		return nil, fmt.Errorf("canny smoothing: %w", err)
	}
	return smoothed, nil
}

func clamp255(v float64) float64 {
	return math.Max(0, math.Min(255, v))
}
