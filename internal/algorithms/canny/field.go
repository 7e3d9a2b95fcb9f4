package canny

import (
	"fmt"
	"math"

	"edge-detector/internal/raster"
)

// GradientField holds co-indexed magnitude and direction rasters. Direction
// is in degrees within [0, 180): opposite gradients share an orientation.
type GradientField struct {
	Magnitude *raster.Raster
	Direction *raster.Raster
}

func NewGradientField(gx, gy *raster.Raster, workers int) (*GradientField, error) {
	if !gx.SameSize(gy) {
		return nil, fmt.Errorf("gradient field: %w", raster.ErrDimensionMismatch)
	}

	field := &GradientField{
		Magnitude: raster.NewLike(gx),
		Direction: raster.NewLike(gx),
	}
	raster.ParallelRows(gx.Height, workers, func(y0, y1 int) {
		for i := y0 * gx.Width; i < y1*gx.Width; i++ {
			x, y := gx.Pix[i], gy.Pix[i]
			field.Magnitude.Pix[i] = math.Hypot(x, y)
			field.Direction.Pix[i] = Orientation(x, y)
		}
	})
	return field, nil
}

// Orientation returns atan2(gy, gx) in degrees reduced to [0, 180).
func Orientation(gx, gy float64) float64 {
	deg := math.Atan2(gy, gx) * 180 / math.Pi
	if deg < 0 {
		deg += 180
	}
	if deg >= 180 {
		deg -= 180
	}
	return deg
}

type sector int

const (
	sectorHorizontal sector = iota // compare left and right
	sectorDiagonal                 // compare (x+1,y+1) and (x-1,y-1)
	sectorVertical                 // compare above and below
	sectorAntiDiagonal             // compare (x-1,y+1) and (x+1,y-1)
)

// quantize maps an orientation in [0, 180) onto one of four 45° sectors.
// Rows grow downward, so a 45° gradient points toward (x+1, y+1).
func quantize(deg float64) sector {
	switch {
	case deg < 22.5 || deg >= 157.5:
		return sectorHorizontal
	case deg < 67.5:
		return sectorDiagonal
	case deg < 112.5:
		return sectorVertical
	default:
		return sectorAntiDiagonal
	}
}

// SuppressNonMaxima keeps a pixel's magnitude only when it is at least as
// large as both neighbours along its gradient direction. Border pixels and
// magnitudes below raster.Epsilon are always zero.
func SuppressNonMaxima(f *GradientField, workers int) *raster.Raster {
	mag := f.Magnitude
	w, h := mag.Width, mag.Height
	out := raster.NewLike(mag)
	if w < 3 || h < 3 {
		return out
	}

	raster.ParallelRows(h, workers, func(y0, y1 int) {
		for y := max(y0, 1); y < min(y1, h-1); y++ {
			for x := 1; x < w-1; x++ {
				m := mag.At(x, y)
				if m < raster.Epsilon {
					continue
				}

				var a, b float64
				switch quantize(f.Direction.At(x, y)) {
				case sectorHorizontal:
					a, b = mag.At(x-1, y), mag.At(x+1, y)
				case sectorDiagonal:
					a, b = mag.At(x-1, y-1), mag.At(x+1, y+1)
				case sectorVertical:
					a, b = mag.At(x, y-1), mag.At(x, y+1)
				case sectorAntiDiagonal:
					a, b = mag.At(x+1, y-1), mag.At(x-1, y+1)
				}

				if m >= a && m >= b {
					out.Pix[y*w+x] = m
				}
			}
		}
	})
	return out
}
