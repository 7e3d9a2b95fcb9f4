package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"edge-detector/internal/logger"
	"edge-detector/internal/raster"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type imageLoader struct {
	logger logger.Logger
}

func (l *imageLoader) LoadFromFile(path string) (*ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	data, err := l.LoadFromReader(f, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	data.Path = path
	return data, nil
}

func (l *imageLoader) LoadFromReader(reader io.Reader, extension string) (*ImageData, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return l.LoadFromBytes(data, extension)
}

func (l *imageLoader) LoadFromBytes(data []byte, extension string) (*ImageData, error) {
	img, decodedFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	gray, err := raster.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to reduce image to grayscale: %w", err)
	}

	actualFormat := determineFormat(extension, decodedFormat)
	imageData := &ImageData{
		Image:  img,
		Gray:   gray,
		Width:  gray.Width,
		Height: gray.Height,
		Format: actualFormat,
	}

	l.logger.Debug("ImageLoader", "image loaded", map[string]interface{}{
		"width":       imageData.Width,
		"height":      imageData.Height,
		"format":      actualFormat,
		"color_model": fmt.Sprintf("%T", img.ColorModel()),
	})

	return imageData, nil
}

func determineFormat(extension, decodedFormat string) string {
	switch extension {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		if decodedFormat != "" {
			return decodedFormat
		}
		return "unknown"
	}
}
