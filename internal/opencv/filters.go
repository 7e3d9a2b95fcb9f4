//go:build opencv

package opencv

import (
	"context"
	"fmt"
	"image"
	"math"

	"edge-detector/internal/algorithms/canny"
	"edge-detector/internal/algorithms/gradient"
	"edge-detector/internal/algorithms/laplacian"
	"edge-detector/internal/algorithms/params"
	"edge-detector/internal/convolution"
	"edge-detector/internal/raster"

	"gocv.io/x/gocv"
)

// Processor adapts a gocv routine to the registry interface. Parameter
// defaults and validation come from the native filter with the same name.
type Processor struct {
	native interface {
		GetName() string
		GetDefaultParameters() map[string]interface{}
		ValidateParameters(map[string]interface{}) error
	}
	run func(src gocv.Mat, parameters map[string]interface{}) (*raster.Gray, error)
}

func (p *Processor) GetName() string {
	return p.native.GetName()
}

func (p *Processor) GetDefaultParameters() map[string]interface{} {
	return p.native.GetDefaultParameters()
}

func (p *Processor) ValidateParameters(parameters map[string]interface{}) error {
	return p.native.ValidateParameters(parameters)
}

func (p *Processor) Process(ctx context.Context, input *raster.Gray, parameters map[string]interface{}) (*raster.Gray, error) {
	if err := p.ValidateParameters(parameters); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	src, err := GrayToMat(input)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return p.run(src, parameters)
}

func NewSobelProcessor() *Processor {
	return &Processor{
		native: gradient.NewSobelProcessor(),
		run: func(src gocv.Mat, parameters map[string]interface{}) (*raster.Gray, error) {
			border, err := borderFromParams(parameters, "sobel")
			if err != nil {
				return nil, err
			}

			dx, dy := gocv.NewMat(), gocv.NewMat()
			defer dx.Close()
			defer dy.Close()
			gocv.Sobel(src, &dx, gocv.MatTypeCV64F, 1, 0, 3, 1, 0, border)
			gocv.Sobel(src, &dy, gocv.MatTypeCV64F, 0, 1, 3, 1, 0, border)

			return magnitudeFromDerivatives(dx, dy)
		},
	}
}

func NewPrewittProcessor() *Processor {
	return &Processor{
		native: gradient.NewPrewittProcessor(),
		run: func(src gocv.Mat, parameters map[string]interface{}) (*raster.Gray, error) {
			border, err := borderFromParams(parameters, "prewitt")
			if err != nil {
				return nil, err
			}

			kx := kernelToMat(convolution.PrewittX())
			ky := kernelToMat(convolution.PrewittY())
			defer kx.Close()
			defer ky.Close()

			dx, dy := gocv.NewMat(), gocv.NewMat()
			defer dx.Close()
			defer dy.Close()
			gocv.Filter2D(src, &dx, gocv.MatTypeCV64F, kx, image.Pt(-1, -1), 0, border)
			gocv.Filter2D(src, &dy, gocv.MatTypeCV64F, ky, image.Pt(-1, -1), 0, border)

			return magnitudeFromDerivatives(dx, dy)
		},
	}
}

func NewLaplacianProcessor() *Processor {
	native := laplacian.NewProcessor()
	return &Processor{
		native: native,
		run: func(src gocv.Mat, parameters map[string]interface{}) (*raster.Gray, error) {
			opts, err := native.Options(parameters)
			if err != nil {
				return nil, err
			}
			border, err := borderType(opts.Conv.Border)
			if err != nil {
				return nil, err
			}

			working := src
			if opts.Smoothing {
				blurred := gocv.NewMat()
				defer blurred.Close()
				gocv.GaussianBlur(src, &blurred, image.Pt(opts.KernelSize, opts.KernelSize), opts.Sigma, opts.Sigma, border)
				working = blurred
			}

			lap := gocv.NewMat()
			defer lap.Close()
			gocv.Laplacian(working, &lap, gocv.MatTypeCV64F, 1, 1, 0, border)

			r, err := MatToRaster(lap)
			if err != nil {
				return nil, err
			}
			return raster.Normalize(raster.Abs(r, opts.Conv.Workers)), nil
		},
	}
}

// NewCannyProcessor wraps cv::Canny. Explicit thresholds are passed through
// unscaled, as OpenCV compares them against raw gradient magnitudes; in
// auto mode the median rule supplies them.
func NewCannyProcessor() *Processor {
	native := canny.NewProcessor()
	return &Processor{
		native: native,
		run: func(src gocv.Mat, parameters map[string]interface{}) (*raster.Gray, error) {
			opts, err := native.Options(parameters)
			if err != nil {
				return nil, err
			}

			low, high := opts.Low, opts.High
			if opts.Auto {
				gray, err := MatToGray(src)
				if err != nil {
					return nil, err
				}
				low, high = canny.AutoThresholds(gray)
			}

			edges := gocv.NewMat()
			defer edges.Close()
			gocv.Canny(src, &edges, float32(math.Round(low)), float32(math.Round(high)))

			return MatToGray(edges)
		},
	}
}

func borderFromParams(parameters map[string]interface{}, context string) (gocv.BorderType, error) {
	conv, err := params.ConvolutionOptions(parameters, context)
	if err != nil {
		return 0, err
	}
	return borderType(conv.Border)
}
