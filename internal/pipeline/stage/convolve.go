package stage

import (
	"github.com/rm-hull/image-editor/internal/pixel"
	"github.com/rm-hull/image-editor/internal/transform"
)

type BlurStage struct {
	KernelSize int
}

// Process applies a box blur over a KernelSize x KernelSize window
// Pixels near the border darken because the divisor is always KernelSize squared
func (s *BlurStage) Process(buf *pixel.Buffer) (*pixel.Buffer, error) {
	return colourOnly(buf, func(colour *pixel.Buffer) (*pixel.Buffer, error) {
		return transform.Blur(colour, s.KernelSize)
	})
}

type KernelStage struct {
	Kernel transform.Kernel
}

// Process correlates the image with Kernel, without flipping or normalising it
func (s *KernelStage) Process(buf *pixel.Buffer) (*pixel.Buffer, error) {
	return colourOnly(buf, func(colour *pixel.Buffer) (*pixel.Buffer, error) {
		return transform.ApplyKernel(colour, s.Kernel)
	})
}

type EdgeStage struct{}

// Process combines the horizontal and vertical Sobel responses into a
// gradient magnitude image
func (s *EdgeStage) Process(buf *pixel.Buffer) (*pixel.Buffer, error) {
	return colourOnly(buf, transform.EdgeDetect)
}
