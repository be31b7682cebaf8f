package pipeline

import (
	"fmt"

	"github.com/rm-hull/image-editor/internal/pixel"
)

// Stage is one step of a pipeline. Process must not modify its input; it
// returns a new buffer instead.
type Stage interface {
	Process(buf *pixel.Buffer) (*pixel.Buffer, error)
}

// Run feeds buf through each stage in turn and returns the final buffer.
// With no stages the input itself is returned.
func Run(buf *pixel.Buffer, stages ...Stage) (*pixel.Buffer, error) {
	current := buf
	for i, stage := range stages {
		next, err := stage.Process(current)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%T): %w", i, stage, err)
		}
		current = next
	}
	return current, nil
}

// Trace is like Run but returns every intermediate buffer, starting with the
// input, so len(result) == len(stages)+1.
func Trace(buf *pixel.Buffer, stages ...Stage) ([]*pixel.Buffer, error) {
	frames := make([]*pixel.Buffer, 0, len(stages)+1)
	frames = append(frames, buf)
	for i, stage := range stages {
		next, err := stage.Process(frames[len(frames)-1])
		if err != nil {
			return nil, fmt.Errorf("stage %d (%T): %w", i, stage, err)
		}
		frames = append(frames, next)
	}
	return frames, nil
}
