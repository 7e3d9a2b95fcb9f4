package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"edge-detector/internal/algorithms/canny"
	"edge-detector/internal/app"
	"edge-detector/internal/config"
	"edge-detector/internal/convolution"
	"edge-detector/internal/logger"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type globalFlags struct {
	configPath string
	logLevel   string
	backend    string
	workers    int
	border     string
}

type filterFlags struct {
	filter      string
	low         float64
	high        float64
	auto        bool
	noSmoothing bool
	hysteresis  string
	format      string
}

func newRootCommand() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           app.AppName,
		Short:         "Edge extraction with Sobel, Prewitt, Laplacian and Canny filters",
		Version:       app.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML or TOML configuration file")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to $"+logger.LevelEnv)
	pf.StringVar(&g.backend, "backend", "", "filter backend (native, opencv)")
	pf.IntVar(&g.workers, "workers", 0, "row workers per filter stage, 0 for one per CPU")
	pf.StringVar(&g.border, "border", "", "border policy (reflect101, replicate, skip)")

	root.AddCommand(
		newApplyCommand(&g),
		newBatchCommand(&g),
		newCompareCommand(&g),
		newListCommand(&g),
	)
	return root
}

func addFilterFlags(fs *pflag.FlagSet, f *filterFlags) {
	fs.StringVarP(&f.filter, "filter", "f", "", "filter name (sobel, prewitt, laplacian, canny)")
	fs.Float64Var(&f.low, "low", 0, "canny low threshold, 0-255 (disables auto mode)")
	fs.Float64Var(&f.high, "high", 0, "canny high threshold, 0-255 (disables auto mode)")
	fs.BoolVar(&f.auto, "auto", false, "canny thresholds from the median intensity")
	fs.BoolVar(&f.noSmoothing, "no-smoothing", false, "skip the gaussian pre-blur of the laplacian filter")
	fs.StringVar(&f.hysteresis, "hysteresis", "", "canny hysteresis mode (single-pass, connected)")
	fs.StringVar(&f.format, "format", "", "output format (png, jpeg, bmp, tiff)")
}

// buildConfig layers explicitly set flags over the config file over the
// defaults.
func buildConfig(fs *pflag.FlagSet, g *globalFlags, f *filterFlags) (config.Config, error) {
	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if fs.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if fs.Changed("backend") {
		cfg.Backend = g.backend
	}
	if fs.Changed("workers") {
		cfg.Workers = g.workers
	}
	if fs.Changed("border") {
		border, err := convolution.ParseBorder(g.border)
		if err != nil {
			return cfg, err
		}
		cfg.Border = border
	}

	if f == nil {
		return cfg, cfg.Validate()
	}

	if fs.Changed("filter") {
		cfg.Filter = strings.ToLower(f.filter)
	}
	if fs.Changed("low") || fs.Changed("high") {
		cfg.Canny.Auto = nil
	}
	if fs.Changed("low") {
		cfg.Canny.Low = lo.ToPtr(f.low)
	}
	if fs.Changed("high") {
		cfg.Canny.High = lo.ToPtr(f.high)
	}
	if fs.Changed("auto") {
		cfg.Canny.Auto = lo.ToPtr(f.auto)
		if f.auto && !fs.Changed("low") && !fs.Changed("high") {
			cfg.Canny.Low, cfg.Canny.High = nil, nil
		}
	}
	if fs.Changed("no-smoothing") {
		cfg.Laplacian.Smoothing = !f.noSmoothing
	}
	if fs.Changed("hysteresis") {
		mode, err := canny.ParseHysteresis(f.hysteresis)
		if err != nil {
			return cfg, err
		}
		cfg.Canny.Hysteresis = mode
	}
	if fs.Changed("format") {
		cfg.Output.Format = strings.ToLower(f.format)
	}

	return cfg, cfg.Validate()
}

func newApplication(cmd *cobra.Command, g *globalFlags, f *filterFlags) (*app.Application, error) {
	cfg, err := buildConfig(cmd.Flags(), g, f)
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	application, err := app.NewApplication(cfg, logger.NewConsoleLogger(level))
	if err != nil {
		return nil, err
	}
	application.HandleSignals()
	return application, nil
}

func newApplyCommand(g *globalFlags) *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "apply INPUT OUTPUT",
		Short: "Filter one image; OUTPUT - writes to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd, g, &f)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			filter := a.Manager.GetCurrentAlgorithm()
			if args[1] == "-" {
				processed, err := a.Coordinator.Filter(a.Context(), args[0], filter, nil)
				if err != nil {
					return err
				}
				return a.Coordinator.SaveImageToWriter(cmd.OutOrStdout(), processed, a.Config.Output.Format)
			}
			return a.Coordinator.Run(a.Context(), args[0], args[1], filter, nil, a.Config.Output.Format)
		},
	}
	addFilterFlags(cmd.Flags(), &f)
	return cmd
}

func newBatchCommand(g *globalFlags) *cobra.Command {
	var (
		f           filterFlags
		inputDir    string
		outputDir   string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Filter every image in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd, g, &f)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			if cmd.Flags().Changed("concurrency") {
				a.Config.Batch.Concurrency = concurrency
			}

			results, err := a.Coordinator.Batch(a.Context(), inputDir, outputDir, a.Manager.GetCurrentAlgorithm(), nil,
				a.Config.Output.Format, a.Config.Batch.Concurrency)
			if err != nil {
				return err
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", r.Input, r.Err)
					continue
				}
				fmt.Fprintf(out, "ok   %s -> %s (%s)\n", r.Input, r.Output, r.Duration.Round(time.Millisecond))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(results))
			}
			return nil
		},
	}
	addFilterFlags(cmd.Flags(), &f)
	cmd.Flags().StringVar(&inputDir, "in", "images", "input directory")
	cmd.Flags().StringVar(&outputDir, "out", "results", "output directory")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "images processed at once")
	return cmd
}

func newCompareCommand(g *globalFlags) *cobra.Command {
	var (
		f       filterFlags
		against string
	)

	cmd := &cobra.Command{
		Use:   "compare INPUT",
		Short: "Compare the output of two backends on one image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd, g, &f)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			if _, err := a.Coordinator.LoadImage(args[0]); err != nil {
				return err
			}
			m, err := a.Coordinator.Compare(a.Context(), a.Manager.GetCurrentAlgorithm(), a.Manager.GetBackend(), against, nil)
			if err != nil {
				return err
			}

			psnr := fmt.Sprintf("%.2f dB", m.PSNR)
			if math.IsInf(m.PSNR, 1) {
				psnr = "identical"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "filter:     %s\n", a.Config.Filter)
			fmt.Fprintf(out, "reference:  %s (edge density %.4f)\n", a.Manager.GetBackend(), m.ReferenceDensity)
			fmt.Fprintf(out, "candidate:  %s (edge density %.4f)\n", against, m.CandidateDensity)
			fmt.Fprintf(out, "precision:  %.4f\n", m.Precision())
			fmt.Fprintf(out, "recall:     %.4f\n", m.Recall())
			fmt.Fprintf(out, "f-measure:  %.4f\n", m.FMeasure())
			fmt.Fprintf(out, "agreement:  %.4f\n", m.Agreement())
			fmt.Fprintf(out, "psnr:       %s\n", psnr)
			return nil
		},
	}
	addFilterFlags(cmd.Flags(), &f)
	cmd.Flags().StringVar(&against, "against", "opencv", "candidate backend")
	return cmd
}

func newListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backends, filters and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd, g, nil)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backends: %s\n", strings.Join(a.Manager.GetAvailableBackends(), ", "))
			for _, name := range a.Manager.GetAvailableAlgorithms() {
				p := a.Manager.GetParameters(name)
				keys := make([]string, 0, len(p))
				for k := range p {
					keys = append(keys, k)
				}
				sort.Strings(keys)

				fmt.Fprintf(out, "%s\n", name)
				for _, k := range keys {
					fmt.Fprintf(out, "  %-15s %v\n", k, p[k])
				}
			}
			return nil
		},
	}
}
