package raster

import "math"

// Epsilon is the smallest response treated as signal. Smoothing a constant
// image leaves residues around 1e-14 in the derivatives; anything below
// Epsilon counts as zero.
const Epsilon = 1e-9

// Normalize rescales non-negative magnitudes into 0–255 so that the largest
// sample maps to 255: out = round(255 * m / max(m)). When every sample is
// below Epsilon the result is all zero. Negative and NaN samples map to 0.
func Normalize(m *Raster) *Gray {
	out := &Gray{
		Pix:    make([]uint8, len(m.Pix)),
		Width:  m.Width,
		Height: m.Height,
	}

	peak := m.Max()
	if peak < Epsilon || math.IsInf(peak, 1) {
		return out
	}

	scale := 255 / peak
	for i, v := range m.Pix {
		if !(v >= Epsilon) {
			continue
		}
		s := math.Round(v * scale)
		if s > 255 {
			s = 255
		}
		out.Pix[i] = uint8(s)
	}
	return out
}
