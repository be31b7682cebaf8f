package stage

import (
	"fmt"

	"github.com/rm-hull/image-editor/internal/pixel"
)

// hasAlpha follows the imageio channel layout: grey+alpha and RGBA carry
// alpha in their last channel.
func hasAlpha(buf *pixel.Buffer) bool {
	c := buf.Channels()
	return c == 2 || c == 4
}

// colourOnly runs fn over the colour channels of buf and copies any alpha
// channel through untouched.
func colourOnly(buf *pixel.Buffer, fn func(*pixel.Buffer) (*pixel.Buffer, error)) (*pixel.Buffer, error) {
	if !hasAlpha(buf) {
		return fn(buf)
	}

	colour, alpha, err := splitAlpha(buf)
	if err != nil {
		return nil, err
	}
	out, err := fn(colour)
	if err != nil {
		return nil, err
	}
	return joinAlpha(out, alpha)
}

func splitAlpha(buf *pixel.Buffer) (*pixel.Buffer, *pixel.Buffer, error) {
	shape := buf.Shape()
	last := shape.Channels - 1

	colour, err := pixel.New(shape.Height, shape.Width, last)
	if err != nil {
		return nil, nil, err
	}
	alpha, err := pixel.New(shape.Height, shape.Width, 1)
	if err != nil {
		return nil, nil, err
	}

	for x := 0; x < shape.Height; x++ {
		for y := 0; y < shape.Width; y++ {
			for c := 0; c < last; c++ {
				colour.Put(x, y, c, buf.At(x, y, c))
			}
			alpha.Put(x, y, 0, buf.At(x, y, last))
		}
	}
	return colour, alpha, nil
}

func joinAlpha(colour, alpha *pixel.Buffer) (*pixel.Buffer, error) {
	shape := colour.Shape()
	if shape.Height != alpha.Height() || shape.Width != alpha.Width() {
		return nil, fmt.Errorf("colour is %s but alpha is %s", shape, alpha.Shape())
	}

	out, err := pixel.New(shape.Height, shape.Width, shape.Channels+1)
	if err != nil {
		return nil, err
	}
	for x := 0; x < shape.Height; x++ {
		for y := 0; y < shape.Width; y++ {
			for c := 0; c < shape.Channels; c++ {
				out.Put(x, y, c, colour.At(x, y, c))
			}
			out.Put(x, y, shape.Channels, alpha.At(x, y, 0))
		}
	}
	return out, nil
}
