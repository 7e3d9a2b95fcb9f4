package canny

import (
	"context"
	"fmt"

	"edge-detector/internal/algorithms/params"
	"edge-detector/internal/convolution"
	"edge-detector/internal/raster"
)

const (
	ParamLowThreshold  = "low_threshold"
	ParamHighThreshold = "high_threshold"
	ParamAuto          = "auto_threshold"
	ParamKernelSize    = "kernel_size"
	ParamSigma         = "sigma"
	ParamHysteresis    = "hysteresis"
)

type Processor struct {
	name string
}

func NewProcessor() *Processor {
	return &Processor{
		name: "canny",
	}
}

func (p *Processor) GetName() string {
	return p.name
}

// GetDefaultParameters leaves both thresholds out so the defaults select
// auto mode.
func (p *Processor) GetDefaultParameters() map[string]interface{} {
	defaults := DefaultOptions()
	return map[string]interface{}{
		ParamKernelSize: defaults.KernelSize,
		ParamSigma:      defaults.Sigma,
		ParamHysteresis: defaults.Hysteresis.String(),
		params.Border:   "reflect101",
		params.Workers:  0,
	}
}

func (p *Processor) ValidateParameters(parameters map[string]interface{}) error {
	_, err := p.Options(parameters)
	return err
}

// Options converts a parameter map into checked Options. Auto mode is on
// unless a threshold is given or auto_threshold is false; a missing
// threshold then takes its default. Asking for auto mode together with a
// threshold is an error.
func (p *Processor) Options(parameters map[string]interface{}) (Options, error) {
	reader := params.NewReader(p.name, parameters)
	opts := DefaultOptions()

	explicit := reader.Has(ParamLowThreshold) || reader.Has(ParamHighThreshold)
	opts.Auto = reader.Bool(ParamAuto, !explicit)
	opts.Low = reader.Float(ParamLowThreshold, opts.Low)
	opts.High = reader.Float(ParamHighThreshold, opts.High)
	opts.KernelSize = reader.Int(ParamKernelSize, opts.KernelSize)
	opts.Sigma = reader.Float(ParamSigma, opts.Sigma)
	hysteresis := reader.String(ParamHysteresis, opts.Hysteresis.String())
	if err := reader.Err(); err != nil {
		return opts, err
	}

	mode, err := ParseHysteresis(hysteresis)
	if err != nil {
		return opts, &params.ValidationError{
			Context: p.name,
			Field:   ParamHysteresis,
			Value:   parameters[ParamHysteresis],
			Reason:  "must be single-pass or connected",
		}
	}
	opts.Hysteresis = mode

	conv, err := params.ConvolutionOptions(parameters, p.name)
	if err != nil {
		return opts, err
	}
	opts.Conv = conv

	if opts.Auto && explicit {
		return opts, &params.ValidationError{
			Context: p.name,
			Field:   ParamAuto,
			Value:   true,
			Reason:  "cannot be combined with low_threshold or high_threshold",
			Err:     ErrInvalidThreshold,
		}
	}

	if !opts.Auto {
		if err := ValidateThresholds(opts.Low, opts.High); err != nil {
			return opts, &params.ValidationError{
				Context: p.name,
				Field:   "thresholds",
				Value:   fmt.Sprintf("low=%v high=%v", opts.Low, opts.High),
				Reason:  "need 0 <= low <= high <= 255",
				Err:     ErrInvalidThreshold,
			}
		}
	}

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
