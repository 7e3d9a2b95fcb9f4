// Package pipeline wires file decoding, filtering and encoding around the
// algorithm registry.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"edge-detector/internal/algorithms"
	"edge-detector/internal/logger"
	"edge-detector/internal/metrics"
	"edge-detector/internal/raster"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type ImageProcessor interface {
	ProcessImage(ctx context.Context, inputData *ImageData, backend, name string, overrides map[string]interface{}) (*ImageData, error)
}

type ImageLoader interface {
	LoadFromFile(path string) (*ImageData, error)
	LoadFromReader(reader io.Reader, extension string) (*ImageData, error)
	LoadFromBytes(data []byte, extension string) (*ImageData, error)
}

type ImageSaver interface {
	SaveToWriter(writer io.Writer, imageData *ImageData, format string) error
	SaveToPath(path string, imageData *ImageData, format string) error
}

// ImageData is a decoded image together with its grayscale reduction.
type ImageData struct {
	Image  image.Image
	Gray   *raster.Gray
	Width  int
	Height int
	Format string
	Path   string
}

// ImageExtensions lists the file extensions picked up by ListImages.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".tif", ".gif", ".webp"}

// BatchResult reports the outcome for one file of a batch run.
type BatchResult struct {
	Input    string
	Output   string
	Duration time.Duration
	Err      error
}

type Coordinator struct {
	mu               sync.RWMutex
	originalImage    *ImageData
	processedImage   *ImageData
	logger           logger.Logger
	algorithmManager *algorithms.Manager
	loader           ImageLoader
	processor        ImageProcessor
	saver            ImageSaver
}

func NewCoordinator(algMgr *algorithms.Manager, log logger.Logger) *Coordinator {
	coord := &Coordinator{
		logger:           log,
		algorithmManager: algMgr,
		loader:           &imageLoader{logger: log},
		processor:        &imageProcessor{manager: algMgr, logger: log},
		saver:            &imageSaver{logger: log},
	}

	log.Debug("PipelineCoordinator", "initialized", map[string]interface{}{
		"backend": algMgr.GetBackend(),
	})
	return coord
}

func (c *Coordinator) LoadImage(path string) (*ImageData, error) {
	start := time.Now()

	imageData, err := c.loader.LoadFromFile(path)
	if err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"operation": "load_image",
			"path":      path,
		})
		return nil, err
	}

	c.mu.Lock()
	c.originalImage = imageData
	c.processedImage = nil
	c.mu.Unlock()

	c.logger.Info("PipelineCoordinator", "image loaded", map[string]interface{}{
		"path":      path,
		"width":     imageData.Width,
		"height":    imageData.Height,
		"format":    imageData.Format,
		"load_time": time.Since(start).String(),
	})

	return imageData, nil
}

// ProcessImage filters the loaded image with algorithmName from the current
// backend, using the stored parameters overlaid by overrides.
func (c *Coordinator) ProcessImage(ctx context.Context, algorithmName string, overrides map[string]interface{}) (*ImageData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.originalImage == nil {
		return nil, fmt.Errorf("no image loaded")
	}

	processed, err := c.process(ctx, c.algorithmManager.GetBackend(), algorithmName, c.originalImage, overrides)
	if err != nil {
		return nil, err
	}

	c.processedImage = processed
	return processed, nil
}

func (c *Coordinator) process(ctx context.Context, backend, algorithmName string, input *ImageData, overrides map[string]interface{}) (*ImageData, error) {
	processedData, err := c.processor.ProcessImage(ctx, input, backend, algorithmName, overrides)
	if err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"algorithm": algorithmName,
			"backend":   backend,
			"path":      input.Path,
		})
		return nil, err
	}
	return processedData, nil
}

func (c *Coordinator) SaveImage(path string, imageData *ImageData, format string) error {
	start := time.Now()
	if err := c.saver.SaveToPath(path, imageData, format); err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"operation": "save_image",
			"path":      path,
		})
		return err
	}

	c.logger.Info("PipelineCoordinator", "image saved", map[string]interface{}{
		"path":      path,
		"save_time": time.Since(start).String(),
	})
	return nil
}

// SaveImageToWriter encodes imageData to writer. An empty format follows
// the format the image was decoded from.
func (c *Coordinator) SaveImageToWriter(writer io.Writer, imageData *ImageData, format string) error {
	if err := c.saver.SaveToWriter(writer, imageData, strings.ToLower(format)); err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"operation": "save_image",
			"format":    format,
		})
		return err
	}
	return nil
}

// Filter loads input and filters it, leaving the result as the processed
// image.
func (c *Coordinator) Filter(ctx context.Context, input, algorithmName string, overrides map[string]interface{}) (*ImageData, error) {
	if _, err := c.LoadImage(input); err != nil {
		return nil, err
	}
	return c.ProcessImage(ctx, algorithmName, overrides)
}

// Run loads input, filters it and writes the result to output.
func (c *Coordinator) Run(ctx context.Context, input, output, algorithmName string, overrides map[string]interface{}, format string) error {
	processed, err := c.Filter(ctx, input, algorithmName, overrides)
	if err != nil {
		return err
	}
	return c.SaveImage(output, processed, format)
}

func (c *Coordinator) GetOriginalImage() *ImageData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.originalImage
}

func (c *Coordinator) GetProcessedImage() *ImageData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processedImage
}

// ListImages returns the image files directly inside dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	files := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		if e.IsDir() {
			return "", false
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		return filepath.Join(dir, e.Name()), lo.Contains(ImageExtensions, ext)
	})
	return files, nil
}

// Batch filters every image in inputDir into outputDir, running up to
// concurrency files at once. A failing file does not stop the others; its
// error is reported in the corresponding BatchResult.
func (c *Coordinator) Batch(ctx context.Context, inputDir, outputDir, algorithmName string, overrides map[string]interface{}, format string, concurrency int) ([]BatchResult, error) {
	files, err := ListImages(inputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	backend := c.algorithmManager.GetBackend()
	outputs := BatchOutputs(files, outputDir, algorithmName, format)
	results := make([]BatchResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			start := time.Now()
			out := outputs[i]
			err := c.batchOne(gctx, backend, algorithmName, file, out, overrides, format)
			results[i] = BatchResult{Input: file, Output: out, Duration: time.Since(start), Err: err}
			if err != nil && ctx.Err() == nil {
				c.logger.Warning("PipelineCoordinator", "batch file failed", map[string]interface{}{
					"input": file,
					"error": err.Error(),
				})
			}
			// Cancellation is the only error that aborts the batch.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := lo.CountBy(results, func(r BatchResult) bool { return r.Err != nil })
	c.logger.Info("PipelineCoordinator", "batch completed", map[string]interface{}{
		"algorithm": algorithmName,
		"backend":   backend,
		"files":     len(files),
		"failed":    failed,
	})
	return results, nil
}

func (c *Coordinator) batchOne(ctx context.Context, backend, algorithmName, input, output string, overrides map[string]interface{}, format string) error {
	data, err := c.loader.LoadFromFile(input)
	if err != nil {
		return err
	}
	processed, err := c.process(ctx, backend, algorithmName, data, overrides)
	if err != nil {
		return err
	}
	return c.saver.SaveToPath(output, processed, format)
}

// BatchOutputs names the output file for each input as
// <base>_<algorithm><ext>. Inputs sharing a base name also carry their
// source extension, as in photo_jpg_sobel.png, and any name still taken
// gets a numeric suffix.
func BatchOutputs(files []string, outputDir, algorithmName, format string) []string {
	baseOf := func(file string) string {
		return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	shared := lo.CountValuesBy(files, baseOf)

	taken := make(map[string]bool, len(files))
	outputs := make([]string, len(files))
	for i, file := range files {
		srcExt := strings.ToLower(filepath.Ext(file))
		ext := extensionFor(resolveSaveFormat(format, determineFormat(srcExt, "")))

		stem := baseOf(file)
		if shared[stem] > 1 {
			stem += "_" + strings.TrimPrefix(srcExt, ".")
		}
		name := fmt.Sprintf("%s_%s%s", stem, algorithmName, ext)
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%s_%d%s", stem, algorithmName, n, ext)
		}
		taken[name] = true
		outputs[i] = filepath.Join(outputDir, name)
	}
	return outputs
}

// Compare runs algorithmName on the loaded image with two backends and
// scores the candidate against the reference.
func (c *Coordinator) Compare(ctx context.Context, algorithmName, referenceBackend, candidateBackend string, overrides map[string]interface{}) (*metrics.EdgeMetrics, error) {
	input := c.GetOriginalImage()
	if input == nil {
		return nil, fmt.Errorf("no image loaded")
	}

	reference, err := c.process(ctx, referenceBackend, algorithmName, input, overrides)
	if err != nil {
		return nil, err
	}
	candidate, err := c.process(ctx, candidateBackend, algorithmName, input, overrides)
	if err != nil {
		return nil, err
	}

	result, err := metrics.Compare(reference.Gray, candidate.Gray)
	if err != nil {
		return nil, err
	}

	c.logger.Info("PipelineCoordinator", "comparison completed", map[string]interface{}{
		"algorithm": algorithmName,
		"reference": referenceBackend,
		"candidate": candidateBackend,
		"f_measure": result.FMeasure(),
		"psnr":      result.PSNR,
	})
	return result, nil
}
