package pipeline

import (
	"context"
	"fmt"
	"time"

	"edge-detector/internal/algorithms"
	"edge-detector/internal/logger"
)

type imageProcessor struct {
	manager *algorithms.Manager
	logger  logger.Logger
}

// ProcessImage runs the registry filter name of backend on inputData. The
// manager merges and validates the parameters before the filter sees them.
func (p *imageProcessor) ProcessImage(ctx context.Context, inputData *ImageData, backend, name string, overrides map[string]interface{}) (*ImageData, error) {
	if inputData == nil || inputData.Gray == nil {
		return nil, fmt.Errorf("no input image")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	start := time.Now()
	result, err := p.manager.ProcessWith(ctx, backend, name, inputData.Gray, overrides)
	if err != nil {
		return nil, fmt.Errorf("algorithm processing failed: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("algorithm returned nil result")
	}
	if !result.SameSize(inputData.Gray) {
		return nil, fmt.Errorf("algorithm %s changed dimensions from %dx%d to %dx%d",
			name, inputData.Width, inputData.Height, result.Width, result.Height)
	}

	processedData := &ImageData{
		Image:  result.ToImage(),
		Gray:   result,
		Width:  result.Width,
		Height: result.Height,
		Format: inputData.Format,
		Path:   inputData.Path,
	}

	p.logger.Info("ImageProcessor", "processing completed", map[string]interface{}{
		"algorithm":       name,
		"backend":         backend,
		"size":            fmt.Sprintf("%dx%d", processedData.Width, processedData.Height),
		"edge_pixels":     result.CountNonZero(),
		"processing_time": time.Since(start).String(),
	})

	return processedData, nil
}
