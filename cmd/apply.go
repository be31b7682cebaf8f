package cmd

import (
	"fmt"

	"github.com/rm-hull/image-editor/internal/imageio"
	"github.com/rm-hull/image-editor/internal/pipeline"
	"go.uber.org/zap"
)

// Apply runs one image (a file path or an http(s) URL) through a recipe, or
// through a single step when no recipe is given, and saves the result. The
// output format follows the output file extension.
func Apply(input, output, recipePath string, step pipeline.Step) error {
	recipe, err := resolveRecipe(recipePath, step)
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
	zap.S().Infof("Loaded %s (%s)", input, img.Shape())

	out, err := pipeline.Run(img, stages...)
	if err != nil {
		return fmt.Errorf("failed to apply recipe %q: %w", recipe.Name, err)
	}

	if err := imageio.Save(output, out); err != nil {
		return err
	}
	zap.S().Infof("Wrote %s (%s)", output, out.Shape())
	return nil
}
