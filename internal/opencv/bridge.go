//go:build opencv

// Package opencv is the library-backed alternative to the native filters.
// It runs the same four filters through gocv and is compiled only with
// -tags opencv, since it needs the OpenCV shared libraries at link time.
package opencv

import (
	"fmt"

	"edge-detector/internal/convolution"
	"edge-detector/internal/raster"

	"gocv.io/x/gocv"
)

// GrayToMat copies g into a new single-channel 8-bit Mat. The caller owns
// the Mat and must Close it.
func GrayToMat(g *raster.Gray) (gocv.Mat, error) {
	if g == nil || g.Width <= 0 || g.Height <= 0 {
		return gocv.Mat{}, raster.ErrEmptyRaster
	}
	mat, err := gocv.NewMatFromBytes(g.Height, g.Width, gocv.MatTypeCV8UC1, g.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to create Mat from raster: %w", err)
	}
	return mat, nil
}

// MatToGray copies a single-channel 8-bit Mat into a Gray.
func MatToGray(mat gocv.Mat) (*raster.Gray, error) {
	if err := validateMat(mat, "MatToGray"); err != nil {
		return nil, err
	}
	if mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("MatToGray: unsupported Mat type %v", mat.Type())
	}
	return raster.GrayFromSamples(mat.Cols(), mat.Rows(), mat.ToBytes())
}

// MatToRaster copies a single-channel float64 Mat into a Raster.
func MatToRaster(mat gocv.Mat) (*raster.Raster, error) {
	if err := validateMat(mat, "MatToRaster"); err != nil {
		return nil, err
	}
	data, err := mat.DataPtrFloat64()
	if err != nil {
		return nil, fmt.Errorf("MatToRaster: %w", err)
	}
	return raster.FromSamples(mat.Cols(), mat.Rows(), data)
}

func validateMat(mat gocv.Mat, context string) error {
	if mat.Empty() {
		return fmt.Errorf("%s: matrix is empty: %w", context, raster.ErrEmptyRaster)
	}
	if mat.Channels() != 1 {
		return fmt.Errorf("%s: expected 1 channel, got %d", context, mat.Channels())
	}
	return nil
}

// borderType maps a border policy onto OpenCV. BorderSkip has no OpenCV
// equivalent.
func borderType(b convolution.Border) (gocv.BorderType, error) {
	switch b {
	case convolution.BorderReflect101:
		return gocv.BorderReflect101, nil
	case convolution.BorderReplicate:
		return gocv.BorderReplicate, nil
	default:
		return 0, fmt.Errorf("border policy %s is not supported by the opencv backend", b)
	}
}

func kernelToMat(k *convolution.Kernel) gocv.Mat {
	n := k.Size()
	mat := gocv.NewMatWithSize(n, n, gocv.MatTypeCV64F)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			mat.SetDoubleAt(y, x, k.At(x, y))
		}
	}
	return mat
}

// magnitudeFromDerivatives combines two float64 derivative Mats and
// normalizes the result the same way the native filters do.
func magnitudeFromDerivatives(dx, dy gocv.Mat) (*raster.Gray, error) {
	mag := gocv.NewMat()
	defer mag.Close()
	gocv.Magnitude(dx, dy, &mag)

	r, err := MatToRaster(mag)
	if err != nil {
		return nil, err
	}
	return raster.Normalize(r), nil
}
