// Package pixel holds the in-memory sample buffer that every transform reads
// from and writes to.
//
// A Buffer is a dense height × width × channels array of float64 samples,
// nominally in [0, 1] but never clamped. The first coordinate (x) selects the
// row, the second (y) the column and the third (c) the channel.
package pixel

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrIndexOutOfRange   = errors.New("index out of range")
)

// Shape is the (height, width, channels) triple of a buffer.
type Shape struct {
	Height   int
	Width    int
	Channels int
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Height, s.Width, s.Channels)
}

// Size returns the number of samples a buffer of this shape holds.
func (s Shape) Size() int {
	return s.Height * s.Width * s.Channels
}

func (s Shape) validate() error {
	if s.Height <= 0 || s.Width <= 0 || s.Channels <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDimensions, s)
	}
	return nil
}

type Buffer struct {
	shape   Shape
	samples []float64
}

// New creates a zero-filled buffer.
func New(height, width, channels int) (*Buffer, error) {
	shape := Shape{Height: height, Width: width, Channels: channels}
	if err := shape.validate(); err != nil {
		return nil, err
	}
	return &Buffer{
		shape:   shape,
		samples: make([]float64, shape.Size()),
	}, nil
}

// FromSamples builds a buffer from a row-major, channel-interleaved sample
// slice, as produced by a decoder. The slice is copied.
func FromSamples(height, width, channels int, samples []float64) (*Buffer, error) {
	b, err := New(height, width, channels)
	if err != nil {
		return nil, err
	}
	if len(samples) != len(b.samples) {
		return nil, fmt.Errorf("%w: %d samples for shape %s", ErrInvalidDimensions, len(samples), b.shape)
	}
	copy(b.samples, samples)
	return b, nil
}

func (b *Buffer) Shape() Shape {
	return b.shape
}

func (b *Buffer) Height() int {
	return b.shape.Height
}

func (b *Buffer) Width() int {
	return b.shape.Width
}

func (b *Buffer) Channels() int {
	return b.shape.Channels
}

// Get returns the sample at row x, column y, channel c.
func (b *Buffer) Get(x, y, c int) (float64, error) {
	i, err := b.index(x, y, c)
	if err != nil {
		return 0, err
	}
	return b.samples[i], nil
}

// Set stores value at row x, column y, channel c.
func (b *Buffer) Set(x, y, c int, value float64) error {
	i, err := b.index(x, y, c)
	if err != nil {
		return err
	}
	b.samples[i] = value
	return nil
}

// At is the unchecked form of Get. Callers must already hold coordinates
// inside the shape; transforms use it inside loops bounded by the shape.
func (b *Buffer) At(x, y, c int) float64 {
	return b.samples[b.offset(x, y, c)]
}

// Put is the unchecked form of Set.
func (b *Buffer) Put(x, y, c int, value float64) {
	b.samples[b.offset(x, y, c)] = value
}

// Samples returns a copy of the raw sample array in row-major,
// channel-interleaved order.
func (b *Buffer) Samples() []float64 {
	out := make([]float64, len(b.samples))
	copy(out, b.samples)
	return out
}

// Clone returns a deep copy that shares no storage with b.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{
		shape:   b.shape,
		samples: b.Samples(),
	}
}

// Equal reports whether both buffers have the same shape and identical
// samples.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.shape != other.shape {
		return false
	}
	for i, v := range b.samples {
		if other.samples[i] != v {
			return false
		}
	}
	return true
}

// Map returns a new buffer of the same shape with fn applied to every sample.
func (b *Buffer) Map(fn func(v float64) float64) *Buffer {
	out := &Buffer{
		shape:   b.shape,
		samples: make([]float64, len(b.samples)),
	}
	for i, v := range b.samples {
		out.samples[i] = fn(v)
	}
	return out
}

func (b *Buffer) index(x, y, c int) (int, error) {
	if x < 0 || x >= b.shape.Height || y < 0 || y >= b.shape.Width || c < 0 || c >= b.shape.Channels {
		return 0, fmt.Errorf("%w: (%d, %d, %d) outside %s", ErrIndexOutOfRange, x, y, c, b.shape)
	}
	return b.offset(x, y, c), nil
}

func (b *Buffer) offset(x, y, c int) int {
	return (x*b.shape.Width+y)*b.shape.Channels + c
}
