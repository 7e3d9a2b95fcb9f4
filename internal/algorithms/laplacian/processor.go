package laplacian

import (
	"context"
	"fmt"

	"edge-detector/internal/algorithms/params"
	"edge-detector/internal/convolution"
	"edge-detector/internal/raster"
)

const (
	ParamSmoothing  = "smoothing"
	ParamKernelSize = "kernel_size"
	ParamSigma      = "sigma"
)

type Processor struct {
	name string
}

func NewProcessor() *Processor {
	return &Processor{
		name: "laplacian",
	}
}

func (p *Processor) GetName() string {
	return p.name
}

func (p *Processor) GetDefaultParameters() map[string]interface{} {
	defaults := DefaultOptions()
	return map[string]interface{}{
		ParamSmoothing:  defaults.Smoothing,
		ParamKernelSize: defaults.KernelSize,
		ParamSigma:      defaults.Sigma,
		params.Border:   "reflect101",
		params.Workers:  0,
	}
}

func (p *Processor) ValidateParameters(parameters map[string]interface{}) error {
	_, err := p.Options(parameters)
	return err
}

// Options merges parameters over the defaults and checks them.
func (p *Processor) Options(parameters map[string]interface{}) (Options, error) {
	reader := params.NewReader(p.name, parameters)
	opts := DefaultOptions()
	opts.Smoothing = reader.Bool(ParamSmoothing, opts.Smoothing)
	opts.KernelSize = reader.Int(ParamKernelSize, opts.KernelSize)
	opts.Sigma = reader.Float(ParamSigma, opts.Sigma)
	if err := reader.Err(); err != nil {
		return opts, err
	}

	conv, err := params.ConvolutionOptions(parameters, p.name)
	if err != nil {
		return opts, err
	}
	opts.Conv = conv

	if opts.KernelSize < 1 || opts.KernelSize > 15 || opts.KernelSize%2 == 0 {
		return opts, &params.ValidationError{
			Context: p.name,
			Field:   ParamKernelSize,
			Value:   opts.KernelSize,
			Reason:  "must be an odd number between 1 and 15",
			Err:     convolution.ErrInvalidKernel,
		}
	}

	if opts.Sigma <= 0 || opts.Sigma > 10 {
		return opts, &params.ValidationError{
			Context: p.name,
			Field:   ParamSigma,
			Value:   opts.Sigma,
			Reason:  "must be in (0, 10]",
			Err:     convolution.ErrInvalidKernel,
		}
	}

	return opts, nil
}

func (p *Processor) Process(ctx context.Context, input *raster.Gray, parameters map[string]interface{}) (*raster.Gray, error) {
	opts, err := p.Options(parameters)
	if err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return Detect(input, opts)
}
