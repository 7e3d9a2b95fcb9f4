// Package metrics compares two edge maps of the same size, treating samples
// above 127 as edge pixels.
package metrics

import (
	"fmt"
	"math"

	"edge-detector/internal/raster"
)

// EdgeMetrics scores a candidate edge map against a reference.
type EdgeMetrics struct {
	TruePositives  int
	TrueNegatives  int
	FalsePositives int
	FalseNegatives int
	TotalPixels    int

	ReferenceDensity float64
	CandidateDensity float64
	PSNR             float64
}

func Compare(reference, candidate *raster.Gray) (*EdgeMetrics, error) {
	if reference == nil || candidate == nil {
		return nil, fmt.Errorf("metrics: %w", raster.ErrEmptyRaster)
	}
	if !reference.SameSize(candidate) {
		return nil, fmt.Errorf("metrics: %w: %dx%d vs %dx%d", raster.ErrDimensionMismatch,
			reference.Width, reference.Height, candidate.Width, candidate.Height)
	}

	m := &EdgeMetrics{}
	m.calculateConfusionMatrix(reference, candidate)
	m.PSNR = PSNR(reference, candidate)
	return m, nil
}

func (m *EdgeMetrics) calculateConfusionMatrix(reference, candidate *raster.Gray) {
	m.TotalPixels = len(reference.Pix)

	for i := range reference.Pix {
		refEdge := reference.Pix[i] > 127
		candEdge := candidate.Pix[i] > 127

		switch {
		case refEdge && candEdge:
			m.TruePositives++
		case !refEdge && !candEdge:
			m.TrueNegatives++
		case !refEdge && candEdge:
			m.FalsePositives++
		default:
			m.FalseNegatives++
		}
	}

	total := float64(m.TotalPixels)
	m.ReferenceDensity = float64(m.TruePositives+m.FalseNegatives) / total
	m.CandidateDensity = float64(m.TruePositives+m.FalsePositives) / total
}

func (m *EdgeMetrics) Precision() float64 {
	if m.TruePositives+m.FalsePositives == 0 {
		return 0.0
	}
	return float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
}

func (m *EdgeMetrics) Recall() float64 {
	if m.TruePositives+m.FalseNegatives == 0 {
		return 0.0
	}
	return float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
}

func (m *EdgeMetrics) FMeasure() float64 {
	precision, recall := m.Precision(), m.Recall()
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * (precision * recall) / (precision + recall)
}

// Agreement is the fraction of pixels on which both maps agree.
func (m *EdgeMetrics) Agreement() float64 {
	if m.TotalPixels == 0 {
		return 0.0
	}
	return float64(m.TruePositives+m.TrueNegatives) / float64(m.TotalPixels)
}

// PSNR returns the peak signal-to-noise ratio in dB, or +Inf for identical
// maps.
func PSNR(a, b *raster.Gray) float64 {
	var sse float64
	for i := range a.Pix {
		d := float64(a.Pix[i]) - float64(b.Pix[i])
		sse += d * d
	}
	if sse == 0 {
		return math.Inf(1)
	}
	mse := sse / float64(len(a.Pix))
	return 10 * math.Log10(255*255/mse)
}

// Density is the fraction of samples above 127.
func Density(g *raster.Gray) float64 {
	n := 0
	for _, v := range g.Pix {
		if v > 127 {
			n++
		}
	}
	return float64(n) / float64(len(g.Pix))
}
