package pipeline

import (
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"edge-detector/internal/logger"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned when an output path names a format that
// cannot be encoded.
var ErrUnsupportedFormat = errors.New("unsupported output format")

type imageSaver struct {
	logger logger.Logger
}

// SaveToWriter encodes the grayscale result of imageData. An empty format
// falls back to the input format when it can be encoded, else png.
func (s *imageSaver) SaveToWriter(writer io.Writer, imageData *ImageData, format string) error {
	if imageData == nil || imageData.Gray == nil {
		return fmt.Errorf("no image data to save")
	}

	saveFormat := resolveSaveFormat(format, imageData.Format)
	img := imageData.Gray.ToImage()

	var err error
	switch saveFormat {
	case "jpeg":
		err = jpeg.Encode(writer, img, &jpeg.Options{Quality: 95})
	case "bmp":
		err = bmp.Encode(writer, img)
	case "tiff":
		err = tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(writer, img)
	}

	if err != nil {
		s.logger.Error("ImageSaver", err, map[string]interface{}{
			"format": saveFormat,
		})
		return fmt.Errorf("failed to encode %s: %w", saveFormat, err)
	}

	s.logger.Debug("ImageSaver", "image encoded", map[string]interface{}{
		"format": saveFormat,
	})

	return nil
}

// SaveToPath writes imageData to path, creating missing parent
// directories. The format follows the file extension unless format is set;
// gif and webp extensions are rejected since neither can be encoded.
func (s *imageSaver) SaveToPath(path string, imageData *ImageData, format string) error {
	extFormat := determineFormat(strings.ToLower(filepath.Ext(path)), "")
	switch {
	case format == "" && (extFormat == "gif" || extFormat == "webp"):
		return fmt.Errorf("%w: %s (use png, jpeg, bmp or tiff)", ErrUnsupportedFormat, path)
	case format == "":
		format = extFormat
	case encodable(extFormat) && resolveSaveFormat(format, "") != extFormat:
		s.logger.Warning("ImageSaver", "output format does not match file extension", map[string]interface{}{
			"path":   path,
			"format": resolveSaveFormat(format, ""),
		})
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := s.SaveToWriter(f, imageData, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodable(format string) bool {
	switch format {
	case "png", "jpeg", "bmp", "tiff":
		return true
	}
	return false
}

func resolveSaveFormat(requested, original string) string {
	for _, f := range []string{strings.ToLower(requested), original} {
		switch f {
		case "png", "jpeg", "bmp", "tiff":
			return f
		case "jpg":
			return "jpeg"
		case "tif":
			return "tiff"
		}
	}
	return "png"
}

// extensionFor returns the file extension written for format.
func extensionFor(format string) string {
	switch resolveSaveFormat(format, "") {
	case "jpeg":
		return ".jpg"
	case "bmp":
		return ".bmp"
	case "tiff":
		return ".tiff"
	default:
		return ".png"
	}
}
