package imageio

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/kettek/apng"
	"github.com/rm-hull/image-editor/internal/pixel"
)

// Animate encodes frames as a looping animated PNG, showing each frame for
// frameDelay seconds. All frames must share one shape.
func Animate(frames []*pixel.Buffer, frameDelay float64) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to animate")
	}

	a := apng.APNG{
		Frames:    make([]apng.Frame, len(frames)),
		LoopCount: 0,
	}

	for i, frame := range frames {
		if frame.Shape() != frames[0].Shape() {
			return nil, fmt.Errorf("frame %d is %s, want %s", i, frame.Shape(), frames[0].Shape())
		}
		img, err := FromBuffer(frame)
		if err != nil {
			return nil, fmt.Errorf("failed to render frame %d: %w", i, err)
		}

		a.Frames[i] = apng.Frame{
			Image:            img,
			DelayNumerator:   uint16(frameDelay * 1000),
			DelayDenominator: 1000,
		}
	}

	var buf bytes.Buffer
	if err := apng.Encode(&buf, a); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
