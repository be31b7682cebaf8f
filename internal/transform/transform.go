// Package transform implements the pixel-level operations. Every function
// allocates and fills a new buffer; inputs are never modified.
package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/rm-hull/image-editor/internal/pixel"
)

var ErrDimensionMismatch = errors.New("dimension mismatch")

// DefaultMid is the contrast pivot for samples normalised to [0, 1].
const DefaultMid = 0.5

// AdjustBrightness multiplies every sample by factor. Results are not
// clamped.
func AdjustBrightness(img *pixel.Buffer, factor float64) *pixel.Buffer {
	return img.Map(func(v float64) float64 {
		return v * factor
	})
}

// AdjustContrast scales each sample's distance from mid by factor:
// (v - mid) * factor + mid.
func AdjustContrast(img *pixel.Buffer, factor, mid float64) *pixel.Buffer {
	// Expanded so that factor 1 reproduces v bit for bit.
	offset := mid * (1 - factor)
	return img.Map(func(v float64) float64 {
		return v*factor + offset
	})
}

// Blur replaces each sample with the unweighted sum of its neighbourhood
// divided by kernelSize². The neighbourhood is clipped at the image edges but
// the divisor is not, so border pixels come out darker than the interior.
// The radius is kernelSize / 2 (rounded down) on both sides, even for even
// sizes. A negative size leaves every window empty and yields all zeros; zero
// is rejected since the divisor would be zero.
func Blur(img *pixel.Buffer, kernelSize int) (*pixel.Buffer, error) {
	if kernelSize == 0 {
		return nil, fmt.Errorf("%w: blur size must not be zero", ErrInvalidKernel)
	}

	shape := img.Shape()
	out, err := pixel.New(shape.Height, shape.Width, shape.Channels)
	if err != nil {
		return nil, err
	}

	r := floorHalf(kernelSize)
	area := float64(kernelSize * kernelSize)
	for x := 0; x < shape.Height; x++ {
		x0, x1 := window(x, r, shape.Height)
		for y := 0; y < shape.Width; y++ {
			y0, y1 := window(y, r, shape.Width)
			for c := 0; c < shape.Channels; c++ {
				total := 0.0
				for xi := x0; xi <= x1; xi++ {
					for yi := y0; yi <= y1; yi++ {
						total += img.At(xi, yi, c)
					}
				}
				out.Put(x, y, c, total/area)
			}
		}
	}
	return out, nil
}

// ApplyKernel correlates img with kernel over the same clipped window as
// Blur. The neighbour at offset (dx, dy) is weighted by
// kernel.At(dx+r, dy+r), so kernel row 0 faces the row above. No flipping
// and no normalisation are applied.
func ApplyKernel(img *pixel.Buffer, kernel Kernel) (*pixel.Buffer, error) {
	if err := kernel.validate(); err != nil {
		return nil, err
	}

	shape := img.Shape()
	out, err := pixel.New(shape.Height, shape.Width, shape.Channels)
	if err != nil {
		return nil, err
	}

	r := kernel.Radius()
	for x := 0; x < shape.Height; x++ {
		x0, x1 := window(x, r, shape.Height)
		for y := 0; y < shape.Width; y++ {
			y0, y1 := window(y, r, shape.Width)
			for c := 0; c < shape.Channels; c++ {
				total := 0.0
				for xi := x0; xi <= x1; xi++ {
					for yi := y0; yi <= y1; yi++ {
						total += img.At(xi, yi, c) * kernel.At(xi+r-x, yi+r-y)
					}
				}
				out.Put(x, y, c, total)
			}
		}
	}
	return out, nil
}

// CombineTwoImages returns the per-sample Euclidean magnitude
// sqrt(a² + b²). Both inputs must share a shape.
func CombineTwoImages(img1, img2 *pixel.Buffer) (*pixel.Buffer, error) {
	shape := img1.Shape()
	if shape != img2.Shape() {
		return nil, fmt.Errorf("%w: %s vs %s", ErrDimensionMismatch, shape, img2.Shape())
	}

	out, err := pixel.New(shape.Height, shape.Width, shape.Channels)
	if err != nil {
		return nil, err
	}
	for x := 0; x < shape.Height; x++ {
		for y := 0; y < shape.Width; y++ {
			for c := 0; c < shape.Channels; c++ {
				a, b := img1.At(x, y, c), img2.At(x, y, c)
				out.Put(x, y, c, math.Sqrt(a*a+b*b))
			}
		}
	}
	return out, nil
}

// EdgeDetect runs both Sobel kernels and combines the responses into a
// gradient magnitude image.
func EdgeDetect(img *pixel.Buffer) (*pixel.Buffer, error) {
	gx, err := ApplyKernel(img, SobelX)
	if err != nil {
		return nil, err
	}
	gy, err := ApplyKernel(img, SobelY)
	if err != nil {
		return nil, err
	}
	return CombineTwoImages(gx, gy)
}

// window returns the inclusive index range [i-r, i+r] clipped to [0, n-1].
func floorHalf(k int) int {
	if k < 0 {
		return -((1 - k) / 2)
	}
	return k / 2
}

func window(i, r, n int) (int, int) {
	return max(0, i-r), min(n-1, i+r)
}
