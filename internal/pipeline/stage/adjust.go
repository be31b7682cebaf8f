package stage

import (
	"github.com/rm-hull/image-editor/internal/pixel"
	"github.com/rm-hull/image-editor/internal/transform"
)

type BrightnessStage struct {
	Factor float64
}

// Process multiplies every colour sample by Factor
// Values above 1 brighten the image, values below 1 darken it
func (s *BrightnessStage) Process(buf *pixel.Buffer) (*pixel.Buffer, error) {
	return colourOnly(buf, func(colour *pixel.Buffer) (*pixel.Buffer, error) {
		return transform.AdjustBrightness(colour, s.Factor), nil
	})
}

type ContrastStage struct {
	Factor float64
	Mid    float64
}

// Process stretches (Factor > 1) or squeezes (Factor < 1) every colour
// sample's distance from Mid
func (s *ContrastStage) Process(buf *pixel.Buffer) (*pixel.Buffer, error) {
	return colourOnly(buf, func(colour *pixel.Buffer) (*pixel.Buffer, error) {
		return transform.AdjustContrast(colour, s.Factor, s.Mid), nil
	})
}
