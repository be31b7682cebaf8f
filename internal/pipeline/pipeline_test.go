package pipeline

import (
	"errors"
	"testing"

	"github.com/rm-hull/image-editor/internal/pipeline/stage"
	"github.com/rm-hull/image-editor/internal/pixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStage struct{}

func (failingStage) Process(*pixel.Buffer) (*pixel.Buffer, error) {
	return nil, errors.New("boom")
}

func TestRun(t *testing.T) {
	img, err := pixel.FromSamples(1, 2, 1, []float64{0.2, 0.4})
	require.NoError(t, err)

	t.Run("no stages", func(t *testing.T) {
		out, err := Run(img)
		require.NoError(t, err)
		assert.Same(t, img, out)
	})

	t.Run("stages run in order", func(t *testing.T) {
		out, err := Run(img,
			&stage.BrightnessStage{Factor: 2},
			&stage.ContrastStage{Factor: 2, Mid: 0.5},
		)
		require.NoError(t, err)
		// (0.4-0.5)*2+0.5, (0.8-0.5)*2+0.5
		assert.InDeltaSlice(t, []float64{0.3, 1.1}, out.Samples(), 1e-12)
		assert.Equal(t, []float64{0.2, 0.4}, img.Samples())
	})

	t.Run("stops at first failure", func(t *testing.T) {
		out, err := Run(img, &stage.BrightnessStage{Factor: 2}, failingStage{})
		assert.Nil(t, out)
		assert.ErrorContains(t, err, "stage 1")
		assert.ErrorContains(t, err, "boom")
	})
}

func TestTrace(t *testing.T) {
	img, err := pixel.FromSamples(1, 1, 1, []float64{0.25})
	require.NoError(t, err)

	frames, err := Trace(img,
		&stage.BrightnessStage{Factor: 2},
		&stage.BrightnessStage{Factor: 2},
	)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Same(t, img, frames[0])
	assert.Equal(t, []float64{0.5}, frames[1].Samples())
	assert.Equal(t, []float64{1}, frames[2].Samples())

	_, err = Trace(img, failingStage{})
	assert.Error(t, err)
}
