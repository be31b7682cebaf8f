package stage

import (
	"errors"
	"image"
	"math"

	"github.com/rm-hull/image-editor/internal/imageio"
	"github.com/rm-hull/image-editor/internal/pixel"
	"golang.org/x/image/draw"
)

type ResampleStage struct {
	Scale float64
}

// Process resizes the image by Scale using Catmull-Rom interpolation
// Unlike the other stages the output shape differs from the input whenever
// Scale != 1; each dimension is rounded and kept at least one pixel
func (s *ResampleStage) Process(buf *pixel.Buffer) (*pixel.Buffer, error) {
	if s.Scale <= 0 {
		return nil, errors.New("resample scale must be positive")
	}

	img, err := imageio.FromBuffer(buf)
	if err != nil {
		return nil, err
	}

	width := max(1, int(math.Round(float64(buf.Width())*s.Scale)))
	height := max(1, int(math.Round(float64(buf.Height())*s.Scale)))
	resized := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)

	return imageio.ToBufferChannels(resized, buf.Channels())
}
