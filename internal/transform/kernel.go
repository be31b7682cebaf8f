package transform

import (
	"errors"
	"fmt"
)

var ErrInvalidKernel = errors.New("invalid kernel")

// Kernel is an immutable square weight matrix with an odd side length.
// Weights are applied exactly as given: no normalisation and no flipping.
type Kernel struct {
	size    int
	weights []float64
}

// NewKernel validates rows and copies them into a Kernel. The matrix must be
// non-empty, square and have an odd side.
func NewKernel(rows [][]float64) (Kernel, error) {
	size := len(rows)
	if size == 0 {
		return Kernel{}, fmt.Errorf("%w: empty", ErrInvalidKernel)
	}
	if size%2 == 0 {
		return Kernel{}, fmt.Errorf("%w: side %d is even", ErrInvalidKernel, size)
	}

	weights := make([]float64, 0, size*size)
	for i, row := range rows {
		if len(row) != size {
			return Kernel{}, fmt.Errorf("%w: row %d has %d weights, want %d", ErrInvalidKernel, i, len(row), size)
		}
		weights = append(weights, row...)
	}
	return Kernel{size: size, weights: weights}, nil
}

// MustKernel is NewKernel for package-level literals; it panics on bad input.
func MustKernel(rows [][]float64) Kernel {
	k, err := NewKernel(rows)
	if err != nil {
		panic(err)
	}
	return k
}

// Size returns the side length k.
func (k Kernel) Size() int {
	return k.size
}

// Radius returns k / 2.
func (k Kernel) Radius() int {
	return k.size / 2
}

// At returns the weight at row i, column j.
func (k Kernel) At(i, j int) float64 {
	return k.weights[i*k.size+j]
}

// Rows returns a copy of the weights as a matrix.
func (k Kernel) Rows() [][]float64 {
	rows := make([][]float64, k.size)
	for i := range rows {
		rows[i] = make([]float64, k.size)
		copy(rows[i], k.weights[i*k.size:(i+1)*k.size])
	}
	return rows
}

func (k Kernel) validate() error {
	if k.size == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidKernel)
	}
	return nil
}

var (
	// SobelX responds to intensity changes between the rows above and below.
	SobelX = MustKernel([][]float64{
		{1, 2, 1},
		{0, 0, 0},
		{-1, -2, -1},
	})

	// SobelY responds to intensity changes between the columns left and right.
	SobelY = MustKernel([][]float64{
		{1, 0, -1},
		{2, 0, -2},
		{1, 0, -1},
	})

	Identity = MustKernel([][]float64{{1}})
)

// BoxKernel returns a size × size kernel whose weights all equal
// 1 / (size * size).
func BoxKernel(size int) (Kernel, error) {
	if size <= 0 || size%2 == 0 {
		return Kernel{}, fmt.Errorf("%w: box size %d must be a positive odd number", ErrInvalidKernel, size)
	}
	w := 1 / float64(size*size)
	rows := make([][]float64, size)
	for i := range rows {
		rows[i] = make([]float64, size)
		for j := range rows[i] {
			rows[i][j] = w
		}
	}
	return NewKernel(rows)
}

var named = map[string]Kernel{
	"identity": Identity,
	"sobel_x":  SobelX,
	"sobel_y":  SobelY,
}

// Named looks up one of the built-in kernels by name.
func Named(name string) (Kernel, error) {
	k, ok := named[name]
	if !ok {
		return Kernel{}, fmt.Errorf("%w: unknown kernel %q", ErrInvalidKernel, name)
	}
	return k, nil
}
