//go:build opencv

package algorithms

import "edge-detector/internal/opencv"

func optionalBackends() map[string][]Algorithm {
	return map[string][]Algorithm{
		BackendOpenCV: {
			opencv.NewSobelProcessor(),
			opencv.NewPrewittProcessor(),
			opencv.NewLaplacianProcessor(),
			opencv.NewCannyProcessor(),
		},
	}
}
