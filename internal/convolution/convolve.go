// Package convolution applies square kernels to rasters.
//
// Convolve computes the correlation form used by image filters:
// out[y,x] = Σ in[y+ky-h, x+kx-h] × K[ky,kx], so kernel weights are not
// flipped. Border selects how out-of-range neighbours are produced.
package convolution

import (
	"fmt"

	"edge-detector/internal/raster"
)

// Options controls a convolution. The zero value mirrors at the border and
// uses one worker per CPU.
type Options struct {
	Border  Border
	Workers int
}

// Convolve applies k to r and returns a new raster of the same size.
func Convolve(r *raster.Raster, k *Kernel, opts Options) (*raster.Raster, error) {
	if err := Validate(r, k); err != nil {
		return nil, err
	}

	out := raster.NewLike(r)
	if opts.Border == BorderSkip {
		convolveInterior(r, k, out, opts.Workers)
		return out, nil
	}

	w, h := r.Width, r.Height
	size, half := k.Size(), k.Half()

	// Column lookups are the same for every row.
	cols := make([]int, w*size)
	for x := 0; x < w; x++ {
		for kx := 0; kx < size; kx++ {
			cols[x*size+kx] = opts.Border.resolve(x+kx-half, w)
		}
	}

	raster.ParallelRows(h, opts.Workers, func(y0, y1 int) {
		rows := make([][]float64, size)
		for y := y0; y < y1; y++ {
			for ky := 0; ky < size; ky++ {
				rows[ky] = r.Row(opts.Border.resolve(y+ky-half, h))
			}
			dst := out.Row(y)
			for x := 0; x < w; x++ {
				idx := cols[x*size : (x+1)*size]
				sum := 0.0
				for ky, row := range rows {
					kr := k.weights[ky*size : (ky+1)*size]
					for kx, c := range idx {
						sum += row[c] * kr[kx]
					}
				}
				dst[x] = sum
			}
		}
	})
	return out, nil
}

func convolveInterior(r *raster.Raster, k *Kernel, out *raster.Raster, workers int) {
	w, h := r.Width, r.Height
	size, half := k.Size(), k.Half()
	if h-2*half <= 0 || w-2*half <= 0 {
		return
	}

	raster.ParallelRows(h-2*half, workers, func(b0, b1 int) {
		for y := b0 + half; y < b1+half; y++ {
			dst := out.Row(y)
			for x := half; x < w-half; x++ {
				sum := 0.0
				for ky := 0; ky < size; ky++ {
					src := r.Row(y + ky - half)
					kr := k.weights[ky*size : (ky+1)*size]
					for kx, wt := range kr {
						sum += src[x+kx-half] * wt
					}
				}
				dst[x] = sum
			}
		}
	})
}

// Validate reports whether k can be applied to r: r must be non-empty and
// k must have an odd side no larger than min(width, height).
func Validate(r *raster.Raster, k *Kernel) error {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		return raster.ErrEmptyRaster
	}
	if k == nil {
		return fmt.Errorf("%w: nil kernel", ErrInvalidKernel)
	}
	if k.Size()%2 == 0 {
		return fmt.Errorf("%w: side %d is not odd", ErrInvalidKernel, k.Size())
	}
	if k.Size() > min(r.Width, r.Height) {
		return fmt.Errorf("%w: side %d exceeds raster %dx%d", ErrInvalidKernel, k.Size(), r.Width, r.Height)
	}
	return nil
}
