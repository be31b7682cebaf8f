package cmd

import (
	"fmt"
	"os"

	"github.com/rm-hull/image-editor/internal/imageio"
	"github.com/rm-hull/image-editor/internal/pipeline"
	"go.uber.org/zap"
)

// Animate writes an animated PNG with one frame per recipe step, starting
// from the unmodified input.
func Animate(input, output, recipePath string, frameDelay float64) error {
	recipe, err := resolveRecipe(recipePath, pipeline.Step{})
	if err != nil {
		return err
	}

	stages, err := recipe.Stages()
	if err != nil {
		return err
	}

	img, err := imageio.NewFetcher().Open(input)
	if err != nil {
		return err
	}

	frames, err := pipeline.Trace(img, stages...)
	if err != nil {
		return fmt.Errorf("failed to apply recipe %q: %w", recipe.Name, err)
	}

	apngBytes, err := imageio.Animate(frames, frameDelay)
	if err != nil {
		return fmt.Errorf("failed to animate: %w", err)
	}

	if err := os.WriteFile(output, apngBytes, 0644); err != nil {
		return err
	}
	zap.S().Infof("Wrote %d frames to %s", len(frames), output)
	return nil
}
