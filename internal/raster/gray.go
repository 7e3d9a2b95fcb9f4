package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Gray is a row-major grid of 8-bit intensities.
type Gray struct {
	Pix    []uint8
	Width  int
	Height int
}

func NewGray(width, height int) (*Gray, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}
	return &Gray{
		Pix:    make([]uint8, width*height),
		Width:  width,
		Height: height,
	}, nil
}

// GrayFromSamples copies samples into a new Gray.
func GrayFromSamples(width, height int, samples []uint8) (*Gray, error) {
	g, err := NewGray(width, height)
	if err != nil {
		return nil, err
	}
	if len(samples) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrDimensionMismatch, len(samples), width, height)
	}
	copy(g.Pix, samples)
	return g, nil
}

// Filled returns a width×height Gray with every sample set to v.
func Filled(width, height int, v uint8) (*Gray, error) {
	g, err := NewGray(width, height)
	if err != nil {
		return nil, err
	}
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g, nil
}

// FromImage reduces img to a single channel. Gray images are copied as is;
// anything else goes through the BT.601 luminance weights of
// color.GrayModel.
func FromImage(img image.Image) (*Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	b := img.Bounds()
	g, err := NewGray(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < g.Height; y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(g.Pix[y*g.Width:(y+1)*g.Width], src.Pix[i:i+g.Width])
		}
		return g, nil
	}

	dst := &image.Gray{Pix: g.Pix, Stride: g.Width, Rect: image.Rect(0, 0, g.Width, g.Height)}
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return g, nil
}

// ToImage wraps a copy of the samples in an *image.Gray.
func (g *Gray) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(img.Pix, g.Pix)
	return img
}

func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

func (g *Gray) SetGray(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

func (g *Gray) GrayAt(x, y int) color.Gray {
	return color.Gray{Y: g.At(x, y)}
}

func (g *Gray) SameSize(o *Gray) bool {
	return g.Width == o.Width && g.Height == o.Height
}

func (g *Gray) Clone() *Gray {
	c := &Gray{Pix: make([]uint8, len(g.Pix)), Width: g.Width, Height: g.Height}
	copy(c.Pix, g.Pix)
	return c
}

// ToRaster widens the samples to float64.
func (g *Gray) ToRaster() *Raster {
	r := newLike(g.Width, g.Height)
	for i, v := range g.Pix {
		r.Pix[i] = float64(v)
	}
	return r
}

func (g *Gray) CountNonZero() int {
	n := 0
	for _, v := range g.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Median returns the median intensity. For an even sample count it is the
// mean of the two middle samples.
func (g *Gray) Median() float64 {
	var hist [256]int
	for _, v := range g.Pix {
		hist[v]++
	}

	n := len(g.Pix)
	lo := valueAtRank(&hist, (n-1)/2)
	if n%2 == 1 {
		return float64(lo)
	}
	hi := valueAtRank(&hist, n/2)
	return (float64(lo) + float64(hi)) / 2
}

func valueAtRank(hist *[256]int, rank int) int {
	seen := 0
	for v, c := range hist {
		seen += c
		if seen > rank {
			return v
		}
	}
	return 255
}
