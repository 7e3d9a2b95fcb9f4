//go:build !opencv

package algorithms

// optionalBackends is empty unless the binary is built with -tags opencv.
func optionalBackends() map[string][]Algorithm {
	return nil
}
