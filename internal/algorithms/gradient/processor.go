package gradient

import (
	"context"
	"fmt"

	"edge-detector/internal/algorithms/params"
	"edge-detector/internal/raster"
)

type Processor struct {
	name     string
	operator Operator
}

func NewSobelProcessor() *Processor {
	return &Processor{name: SobelOperator.Name, operator: SobelOperator}
}

func NewPrewittProcessor() *Processor {
	return &Processor{name: PrewittOperator.Name, operator: PrewittOperator}
}

func (p *Processor) GetName() string {
	return p.name
}

func (p *Processor) GetDefaultParameters() map[string]interface{} {
	return map[string]interface{}{
		params.Border:  "reflect101",
		params.Workers: 0,
	}
}

func (p *Processor) ValidateParameters(parameters map[string]interface{}) error {
	_, err := params.ConvolutionOptions(parameters, p.name)
	return err
}

func (p *Processor) Process(ctx context.Context, input *raster.Gray, parameters map[string]interface{}) (*raster.Gray, error) {
	opts, err := params.ConvolutionOptions(parameters, p.name)
	if err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return Detect(input, p.operator, opts)
}
