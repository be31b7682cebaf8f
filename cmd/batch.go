package cmd

import (
	"github.com/rm-hull/image-editor/internal"
	"github.com/rm-hull/image-editor/internal/pipeline"
)

func Batch(inDir, outDir, recipePath string, workers int) error {
	internal.ShowVersion()

	recipe, err := resolveRecipe(recipePath, pipeline.Step{})
	if err != nil {
		return err
	}
	return internal.RunBatch(inDir, outDir, workers, recipe)
}
