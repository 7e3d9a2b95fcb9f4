package convolution

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidKernel = errors.New("invalid kernel")

// Kernel is an immutable square grid of weights with odd side length.
type Kernel struct {
	weights []float64
	size    int
}

// NewKernel builds a kernel from rows of weights. The grid must be square
// with an odd side.
func NewKernel(rows [][]float64) (*Kernel, error) {
	n := len(rows)
	if n == 0 || n%2 == 0 {
		return nil, fmt.Errorf("%w: side %d is not odd", ErrInvalidKernel, n)
	}
	w := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d weights, want %d", ErrInvalidKernel, i, len(row), n)
		}
		w = append(w, row...)
	}
	return &Kernel{weights: w, size: n}, nil
}

func mustKernel(rows [][]float64) *Kernel {
	k, err := NewKernel(rows)
	if err != nil {
		panic(err)
	}
	return k
}

// Size is the side length of the kernel.
func (k *Kernel) Size() int {
	return k.size
}

// Half is the distance from the centre to the edge of the kernel.
func (k *Kernel) Half() int {
	return k.size / 2
}

// At returns the weight at column kx, row ky, both in [0, Size()).
func (k *Kernel) At(kx, ky int) float64 {
	return k.weights[ky*k.size+kx]
}

// Weights returns a copy of the row-major weights.
func (k *Kernel) Weights() []float64 {
	w := make([]float64, len(k.weights))
	copy(w, k.weights)
	return w
}

func (k *Kernel) Sum() float64 {
	s := 0.0
	for _, w := range k.weights {
		s += w
	}
	return s
}

// Gradient and second-derivative kernels. They are rebuilt on every call so
// callers can never share mutable state through them.

func SobelX() *Kernel {
	return mustKernel([][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	})
}

func SobelY() *Kernel {
	return mustKernel([][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	})
}

func PrewittX() *Kernel {
	return mustKernel([][]float64{
		{-1, 0, 1},
		{-1, 0, 1},
		{-1, 0, 1},
	})
}

func PrewittY() *Kernel {
	return mustKernel([][]float64{
		{-1, -1, -1},
		{0, 0, 0},
		{1, 1, 1},
	})
}

// Laplacian4 is the 4-neighbourhood discrete Laplacian.
func Laplacian4() *Kernel {
	return mustKernel([][]float64{
		{0, 1, 0},
		{1, -4, 1},
		{0, 1, 0},
	})
}

// Gaussian builds a size×size kernel with weights
// exp(-(x²+y²)/(2σ²)) / (2πσ²), normalized so the weights sum to 1.
func Gaussian(size int, sigma float64) (*Kernel, error) {
	if size < 1 || size%2 == 0 {
		return nil, fmt.Errorf("%w: gaussian size %d is not a positive odd number", ErrInvalidKernel, size)
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: gaussian sigma %v must be positive", ErrInvalidKernel, sigma)
	}

	half := size / 2
	twoSigmaSq := 2 * sigma * sigma
	norm := 1 / (math.Pi * twoSigmaSq)

	w := make([]float64, size*size)
	sum := 0.0
	for y := -half; y <= half; y++ {
		for x := -half; x <= half; x++ {
			v := math.Exp(-float64(x*x+y*y)/twoSigmaSq) * norm
			w[(y+half)*size+(x+half)] = v
			sum += v
		}
	}
	for i := range w {
		w[i] /= sum
	}

	return &Kernel{weights: w, size: size}, nil
}
