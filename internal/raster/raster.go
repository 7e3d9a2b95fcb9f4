// Package raster holds the sample grids shared by every filter stage.
//
// A Raster carries floating-point responses between stages; a Gray carries
// 8-bit intensities in and out of the filters. Stages allocate a fresh grid
// for their result and never write into a grid they were handed.
package raster

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyRaster       = errors.New("raster has zero dimensions")
	ErrDimensionMismatch = errors.New("raster dimensions do not match")
)

// Raster is a row-major grid of float64 samples.
type Raster struct {
	Pix    []float64
	Width  int
	Height int
}

func New(width, height int) (*Raster, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}
	return &Raster{
		Pix:    make([]float64, width*height),
		Width:  width,
		Height: height,
	}, nil
}

// FromSamples copies samples into a new Raster. len(samples) must equal
// width*height.
func FromSamples(width, height int, samples []float64) (*Raster, error) {
	r, err := New(width, height)
	if err != nil {
		return nil, err
	}
	if len(samples) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrDimensionMismatch, len(samples), width, height)
	}
	copy(r.Pix, samples)
	return r, nil
}

// newLike allocates a zeroed raster with the dimensions of r. r is assumed
// to be valid.
func newLike(width, height int) *Raster {
	return &Raster{
		Pix:    make([]float64, width*height),
		Width:  width,
		Height: height,
	}
}

// NewLike returns a zeroed raster with the same dimensions as r.
func NewLike(r *Raster) *Raster {
	return newLike(r.Width, r.Height)
}

func (r *Raster) At(x, y int) float64 {
	return r.Pix[y*r.Width+x]
}

func (r *Raster) Row(y int) []float64 {
	i := y * r.Width
	return r.Pix[i : i+r.Width : i+r.Width]
}

func (r *Raster) SameSize(o *Raster) bool {
	return r.Width == o.Width && r.Height == o.Height
}

// Max returns the largest sample, or 0 for a raster whose samples are all
// negative or NaN.
func (r *Raster) Max() float64 {
	m := 0.0
	for _, v := range r.Pix {
		if v > m {
			m = v
		}
	}
	return m
}

func (r *Raster) Clone() *Raster {
	c := newLike(r.Width, r.Height)
	copy(c.Pix, r.Pix)
	return c
}

// Add returns the sample-wise sum of r and o.
func (r *Raster) Add(o *Raster) (*Raster, error) {
	if !r.SameSize(o) {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, r.Width, r.Height, o.Width, o.Height)
	}
	sum := newLike(r.Width, r.Height)
	for i := range sum.Pix {
		sum.Pix[i] = r.Pix[i] + o.Pix[i]
	}
	return sum, nil
}

// Hypot combines two co-indexed rasters into sqrt(a²+b²).
func Hypot(a, b *Raster, workers int) (*Raster, error) {
	if !a.SameSize(b) {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	out := newLike(a.Width, a.Height)
	ParallelRows(a.Height, workers, func(y0, y1 int) {
		for i := y0 * a.Width; i < y1*a.Width; i++ {
			out.Pix[i] = math.Hypot(a.Pix[i], b.Pix[i])
		}
	})
	return out, nil
}

// Abs returns a raster of absolute sample values.
func Abs(r *Raster, workers int) *Raster {
	out := newLike(r.Width, r.Height)
	ParallelRows(r.Height, workers, func(y0, y1 int) {
		for i := y0 * r.Width; i < y1*r.Width; i++ {
			out.Pix[i] = math.Abs(r.Pix[i])
		}
	})
	return out
}

func validateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyRaster, width, height)
	}
	return nil
}
