package stage

import (
	"github.com/anthonynsimon/bild/blur"
	"github.com/rm-hull/image-editor/internal/imageio"
	"github.com/rm-hull/image-editor/internal/pixel"
)

type GaussianBlurStage struct {
	Sigma float64
}

// Process renders the buffer to 8 bits, blurs it with a Gaussian of radius
// Sigma and reads it back with the original channel count. Out of range
// samples are clamped on the way through.
func (s *GaussianBlurStage) Process(buf *pixel.Buffer) (*pixel.Buffer, error) {
	img, err := imageio.FromBuffer(buf)
	if err != nil {
		return nil, err
	}
	return imageio.ToBufferChannels(blur.Gaussian(img, s.Sigma), buf.Channels())
}
