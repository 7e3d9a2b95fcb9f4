// Package config holds the run configuration for the edge-detector
// command. Values are read from a YAML or TOML file on top of Default and
// passed explicitly into every filter invocation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"edge-detector/internal/algorithms/canny"
	"edge-detector/internal/algorithms/laplacian"
	"edge-detector/internal/algorithms/params"
	"edge-detector/internal/convolution"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Filter   string             `yaml:"filter" toml:"filter"`
	Backend  string             `yaml:"backend" toml:"backend"`
	Workers  int                `yaml:"workers" toml:"workers"`
	Border   convolution.Border `yaml:"border" toml:"border"`
	LogLevel string             `yaml:"log_level" toml:"log_level"`

	Laplacian LaplacianConfig `yaml:"laplacian" toml:"laplacian"`
	Canny     CannyConfig     `yaml:"canny" toml:"canny"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
	Batch     BatchConfig     `yaml:"batch" toml:"batch"`
}

type LaplacianConfig struct {
	Smoothing  bool    `yaml:"smoothing" toml:"smoothing"`
	KernelSize int     `yaml:"kernel_size" toml:"kernel_size"`
	Sigma      float64 `yaml:"sigma" toml:"sigma"`
}

// CannyConfig leaves Low, High and Auto nil when unset. Setting either
// threshold selects manual mode.
type CannyConfig struct {
	Low        *float64         `yaml:"low" toml:"low"`
	High       *float64         `yaml:"high" toml:"high"`
	Auto       *bool            `yaml:"auto" toml:"auto"`
	KernelSize int              `yaml:"kernel_size" toml:"kernel_size"`
	Sigma      float64          `yaml:"sigma" toml:"sigma"`
	Hysteresis canny.Hysteresis `yaml:"hysteresis" toml:"hysteresis"`
}

type OutputConfig struct {
	Format string `yaml:"format" toml:"format"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency" toml:"concurrency"`
}

var supportedFormats = map[string]bool{
	"":     true,
	"png":  true,
	"jpeg": true,
	"bmp":  true,
	"tiff": true,
}

func Default() Config {
	lap := laplacian.DefaultOptions()
	cn := canny.DefaultOptions()
	return Config{
		Filter:   "sobel",
		Backend:  "native",
		Border:   convolution.BorderReflect101,
		Laplacian: LaplacianConfig{
			Smoothing:  lap.Smoothing,
			KernelSize: lap.KernelSize,
			Sigma:      lap.Sigma,
		},
		Canny: CannyConfig{
			KernelSize: cn.KernelSize,
			Sigma:      cn.Sigma,
			Hysteresis: cn.Hysteresis,
		},
		Output: OutputConfig{},
		Batch:  BatchConfig{Concurrency: 4},
	}
}

// Load decodes path over Default. The decoder is chosen by extension:
// .yaml/.yml or .toml.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that are not checked by the filters themselves.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return &params.ValidationError{
			Context: "config",
			Field:   "workers",
			Value:   c.Workers,
			Reason:  "must be zero (one per CPU) or positive",
		}
	}
	if c.Batch.Concurrency < 1 {
		return &params.ValidationError{
			Context: "config",
			Field:   "batch.concurrency",
			Value:   c.Batch.Concurrency,
			Reason:  "must be at least 1",
		}
	}
	if c.Canny.Auto != nil && *c.Canny.Auto && (c.Canny.Low != nil || c.Canny.High != nil) {
		return &params.ValidationError{
			Context: "config",
			Field:   "canny.auto",
			Value:   true,
			Reason:  "cannot be combined with canny.low or canny.high",
			Err:     canny.ErrInvalidThreshold,
		}
	}
	if !supportedFormats[strings.ToLower(c.Output.Format)] {
		return &params.ValidationError{
			Context: "config",
			Field:   "output.format",
			Value:   c.Output.Format,
			Reason:  "must be png, jpeg, bmp or tiff",
		}
	}
	return nil
}

// Parameters renders the parameter map for filter.
func (c Config) Parameters(filter string) map[string]interface{} {
	p := map[string]interface{}{
		params.Border:  c.Border.String(),
		params.Workers: c.Workers,
	}

	switch filter {
	case "laplacian":
		p[laplacian.ParamSmoothing] = c.Laplacian.Smoothing
		p[laplacian.ParamKernelSize] = c.Laplacian.KernelSize
		p[laplacian.ParamSigma] = c.Laplacian.Sigma
	case "canny":
		if c.Canny.Low != nil {
			p[canny.ParamLowThreshold] = *c.Canny.Low
		}
		if c.Canny.High != nil {
			p[canny.ParamHighThreshold] = *c.Canny.High
		}
		if c.Canny.Auto != nil {
			p[canny.ParamAuto] = *c.Canny.Auto
		}
		p[canny.ParamKernelSize] = c.Canny.KernelSize
		p[canny.ParamSigma] = c.Canny.Sigma
		p[canny.ParamHysteresis] = c.Canny.Hysteresis.String()
	}

	return p
}
