package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edge-detector/internal/algorithms/canny"
	"edge-detector/internal/convolution"
	"edge-detector/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeSquare(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 6; y < 14; y++ {
		for x := 6; x < 14; x++ {
			img.Pix[y*img.Stride+x] = 220
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestListCommand(t *testing.T) {
	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "backends: native")
	assert.Contains(t, out, "canny")
	assert.Contains(t, out, "hysteresis")
	assert.Contains(t, out, "smoothing")
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "square.png")
	out := filepath.Join(dir, "edges.bmp")
	writeSquare(t, in)

	_, err := run(t, "apply", "-f", "canny", "--low", "20", "--high", "60", "--hysteresis", "connected", in, out)
	require.NoError(t, err)
	assert.FileExists(t, out)

	_, err = run(t, "apply", "-f", "canny", "--low", "90", "--high", "30", in, out)
	assert.ErrorIs(t, err, canny.ErrInvalidThreshold)

	_, err = run(t, "apply", "-f", "canny", "--auto", "--low", "20", in, out)
	assert.ErrorIs(t, err, canny.ErrInvalidThreshold)

	_, err = run(t, "apply", in)
	assert.Error(t, err)

	_, err = run(t, "apply", in, filepath.Join(dir, "edges.gif"))
	assert.ErrorIs(t, err, pipeline.ErrUnsupportedFormat)
}

func TestApplyToStdout(t *testing.T) {
	in := filepath.Join(t.TempDir(), "square.png")
	writeSquare(t, in)

	out, err := run(t, "apply", "-f", "sobel", in, "-")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "\x89PNG\r\n\x1a\n"))

	img, err := png.Decode(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())
}

func TestBatchCommand(t *testing.T) {
	in := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "results")
	writeSquare(t, filepath.Join(in, "a.png"))
	writeSquare(t, filepath.Join(in, "b.png"))
	writeSquare(t, filepath.Join(in, "b.jpg"))

	out, err := run(t, "batch", "-f", "laplacian", "--no-smoothing", "--in", in, "--out", outDir, "--format", "tiff")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.FileExists(t, filepath.Join(outDir, "a_laplacian.tiff"))
	assert.FileExists(t, filepath.Join(outDir, "b_png_laplacian.tiff"))
	assert.FileExists(t, filepath.Join(outDir, "b_jpg_laplacian.tiff"))
}

func TestCompareCommand(t *testing.T) {
	in := filepath.Join(t.TempDir(), "square.png")
	writeSquare(t, in)

	out, err := run(t, "compare", "-f", "sobel", "--against", "native", in)
	require.NoError(t, err)
	assert.Contains(t, out, "psnr:       identical")
	assert.Contains(t, out, "f-measure:  1.0000")
}

func TestBuildConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filter: prewitt\nborder: skip\nworkers: 3\n"), 0o644))

	root := newRootCommand()
	cmd, _, err := root.Find([]string{"apply"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--border", "replicate", "--no-smoothing"}))

	var g globalFlags
	g.configPath = path
	g.border = "replicate"
	f := filterFlags{noSmoothing: true}

	cfg, err := buildConfig(cmd.Flags(), &g, &f)
	require.NoError(t, err)
	assert.Equal(t, "prewitt", cfg.Filter)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, convolution.BorderReplicate, cfg.Border)
	assert.False(t, cfg.Laplacian.Smoothing)
	assert.Nil(t, cfg.Canny.Auto)
	assert.Nil(t, cfg.Canny.Low)
}

func TestBuildConfigThresholdFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("canny:\n  low: 30\n  high: 90\n"), 0o644))

	root := newRootCommand()
	cmd, _, err := root.Find([]string{"apply"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--high", "120"}))

	cfg, err := buildConfig(cmd.Flags(), &globalFlags{configPath: path}, &filterFlags{high: 120})
	require.NoError(t, err)
	assert.Nil(t, cfg.Canny.Auto)
	assert.Equal(t, 30.0, *cfg.Canny.Low)
	assert.Equal(t, 120.0, *cfg.Canny.High)

	// --auto alone drops thresholds that came from the file.
	root = newRootCommand()
	cmd, _, err = root.Find([]string{"apply"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--auto"}))

	cfg, err = buildConfig(cmd.Flags(), &globalFlags{configPath: path}, &filterFlags{auto: true})
	require.NoError(t, err)
	assert.True(t, *cfg.Canny.Auto)
	assert.Nil(t, cfg.Canny.Low)
	assert.Nil(t, cfg.Canny.High)
}
