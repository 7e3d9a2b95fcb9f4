package canny

import (
	"fmt"
	"strings"

	"edge-detector/internal/raster"
)

// Hysteresis selects how weak edges are promoted.
type Hysteresis int

const (
	// HysteresisSinglePass promotes a weak pixel only when one of its eight
	// neighbours is strong. Weak pixels that reach a strong edge only
	// through other weak pixels stay off.
	HysteresisSinglePass Hysteresis = iota
	// HysteresisConnected promotes every weak pixel 8-connected to a strong
	// pixel through a chain of weak pixels.
	HysteresisConnected
)

func (h Hysteresis) String() string {
	switch h {
	case HysteresisSinglePass:
		return "single-pass"
	case HysteresisConnected:
		return "connected"
	default:
		return fmt.Sprintf("Hysteresis(%d)", int(h))
	}
}

func ParseHysteresis(s string) (Hysteresis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single-pass", "single", "one-hop":
		return HysteresisSinglePass, nil
	case "connected", "flood", "full":
		return HysteresisConnected, nil
	default:
		return 0, fmt.Errorf("unknown hysteresis mode: %q", s)
	}
}

func (h Hysteresis) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hysteresis) UnmarshalText(text []byte) error {
	v, err := ParseHysteresis(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

const (
	classNone uint8 = iota
	classWeak
	classStrong
)

const edge = 255

// Threshold classifies the suppressed magnitudes and resolves weak edges.
// low and high are on the 0–255 scale and are rescaled by the largest
// suppressed magnitude before comparison. Magnitudes below raster.Epsilon
// are never edges, and a raster whose peak is below it has no edges at all.
func Threshold(suppressed *raster.Raster, low, high float64, mode Hysteresis, workers int) *raster.Gray {
	w, h := suppressed.Width, suppressed.Height
	out := &raster.Gray{Pix: make([]uint8, w*h), Width: w, Height: h}

	peak := suppressed.Max()
	if peak < raster.Epsilon {
		return out
	}
	lowR := low / 255 * peak
	highR := high / 255 * peak

	class := make([]uint8, w*h)
	raster.ParallelRows(h, workers, func(y0, y1 int) {
		for i := y0 * w; i < y1*w; i++ {
			v := suppressed.Pix[i]
			switch {
			case !(v >= raster.Epsilon):
			case v >= highR:
				class[i] = classStrong
				out.Pix[i] = edge
			case v >= lowR:
				class[i] = classWeak
			}
		}
	})

	if mode == HysteresisConnected {
		promoteConnected(class, out, w, h)
	} else {
		promoteAdjacent(class, out, w, h, workers)
	}
	return out
}

// promoteAdjacent reads only the initial classification, so the outcome does
// not depend on scan order and rows can be processed in parallel.
func promoteAdjacent(class []uint8, out *raster.Gray, w, h, workers int) {
	raster.ParallelRows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				if class[y*w+x] == classWeak && hasStrongNeighbour(class, w, h, x, y) {
					out.Pix[y*w+x] = edge
				}
			}
		}
	})
}

func hasStrongNeighbour(class []uint8, w, h, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		ny := y + dy
		if ny < 0 || ny >= h {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			nx := x + dx
			if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
				continue
			}
			if class[ny*w+nx] == classStrong {
				return true
			}
		}
	}
	return false
}

// promoteConnected flood-fills from every strong pixel through weak ones.
func promoteConnected(class []uint8, out *raster.Gray, w, h int) {
	stack := make([]int, 0, len(class)/8)
	for i, c := range class {
		if c == classStrong {
			stack = append(stack, i)
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			ny := y + dy
			if ny < 0 || ny >= h {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				nx := x + dx
				if nx < 0 || nx >= w {
					continue
				}
				j := ny*w + nx
				if class[j] == classWeak && out.Pix[j] != edge {
					out.Pix[j] = edge
					stack = append(stack, j)
				}
			}
		}
	}
}
