// Package imageio moves pixel buffers in and out of encoded images.
//
// Decoded 8-bit samples are divided by 255; on the way out samples are
// clamped to [0, 1] and scaled back to 8 bits. Greyscale images map to one
// channel, opaque colour images to three and anything with transparency to
// four (RGBA, non-premultiplied).
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/rm-hull/image-editor/internal/pixel"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

type opaquer interface {
	Opaque() bool
}

// ChannelsFor reports how many channels ToBuffer will produce for img.
func ChannelsFor(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	if o, ok := img.(opaquer); ok && o.Opaque() {
		return 3
	}
	return 4
}

// ToBuffer converts a decoded image into a buffer with samples in [0, 1],
// using ChannelsFor to pick the channel count.
func ToBuffer(img image.Image) (*pixel.Buffer, error) {
	return ToBufferChannels(img, ChannelsFor(img))
}

// ToBufferChannels converts img into a buffer with exactly the given number of
// channels: 1 is grey, 2 grey plus alpha, 3 RGB and 4 RGBA.
func ToBufferChannels(img image.Image, channels int) (*pixel.Buffer, error) {
	if channels < 1 || channels > 4 {
		return nil, fmt.Errorf("%w: cannot decode into %d channels", ErrUnsupportedFormat, channels)
	}

	bounds := img.Bounds()
	buf, err := pixel.New(bounds.Dy(), bounds.Dx(), channels)
	if err != nil {
		return nil, err
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := y - bounds.Min.Y
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			col := x - bounds.Min.X
			src := img.At(x, y)
			if channels <= 2 {
				g := color.GrayModel.Convert(src).(color.Gray)
				buf.Put(row, col, 0, float64(g.Y)/255)
				if channels == 2 {
					buf.Put(row, col, 1, float64(color.NRGBAModel.Convert(src).(color.NRGBA).A)/255)
				}
				continue
			}
			c := color.NRGBAModel.Convert(src).(color.NRGBA)
			buf.Put(row, col, 0, float64(c.R)/255)
			buf.Put(row, col, 1, float64(c.G)/255)
			buf.Put(row, col, 2, float64(c.B)/255)
			if channels == 4 {
				buf.Put(row, col, 3, float64(c.A)/255)
			}
		}
	}
	return buf, nil
}

// FromBuffer renders a buffer as an 8-bit image. One channel becomes
// *image.Gray, two are read as grey plus alpha, three as RGB and four as
// RGBA; all but the first produce *image.NRGBA.
func FromBuffer(buf *pixel.Buffer) (image.Image, error) {
	shape := buf.Shape()
	rect := image.Rect(0, 0, shape.Width, shape.Height)

	switch shape.Channels {
	case 1:
		img := image.NewGray(rect)
		for x := 0; x < shape.Height; x++ {
			for y := 0; y < shape.Width; y++ {
				img.SetGray(y, x, color.Gray{Y: toByte(buf.At(x, y, 0))})
			}
		}
		return img, nil

	case 2, 3, 4:
		img := image.NewNRGBA(rect)
		for x := 0; x < shape.Height; x++ {
			for y := 0; y < shape.Width; y++ {
				img.SetNRGBA(y, x, toNRGBA(buf, x, y, shape.Channels))
			}
		}
		return img, nil
	}

	return nil, fmt.Errorf("%w: cannot render %d channels", ErrUnsupportedFormat, shape.Channels)
}

func toNRGBA(buf *pixel.Buffer, x, y, channels int) color.NRGBA {
	switch channels {
	case 2:
		g := toByte(buf.At(x, y, 0))
		return color.NRGBA{R: g, G: g, B: g, A: toByte(buf.At(x, y, 1))}
	case 3:
		return color.NRGBA{
			R: toByte(buf.At(x, y, 0)),
			G: toByte(buf.At(x, y, 1)),
			B: toByte(buf.At(x, y, 2)),
			A: 255,
		}
	default:
		return color.NRGBA{
			R: toByte(buf.At(x, y, 0)),
			G: toByte(buf.At(x, y, 1)),
			B: toByte(buf.At(x, y, 2)),
			A: toByte(buf.At(x, y, 3)),
		}
	}
}

// toByte clamps v to [0, 1] and scales it to [0, 255]. NaN maps to 0.
func toByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
