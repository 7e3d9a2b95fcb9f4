// Command edge-detector extracts edges from image files with the Sobel,
// Prewitt, Laplacian and Canny filters.
//
// Usage:
//
//	edge-detector apply -f canny --low 50 --high 150 input.png edges.png
//	edge-detector batch -f sobel --in images --out results
//	edge-detector compare -f canny --against opencv input.png
//	edge-detector list
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
