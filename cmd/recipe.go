package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rm-hull/image-editor/internal/pipeline"
	"go.uber.org/zap"
)

const recipeEnvVar = "IMAGE_EDITOR_RECIPE"

// resolveRecipe picks the recipe for a command: an explicit recipe file, a
// single ad-hoc step, or the recipe named by IMAGE_EDITOR_RECIPE.
func resolveRecipe(recipePath string, step pipeline.Step) (*pipeline.Recipe, error) {
	switch {
	case recipePath != "" && step.Op != "":
		return nil, errors.New("--recipe and --op are mutually exclusive")

	case recipePath != "":
		return pipeline.LoadRecipe(recipePath)

	case step.Op != "":
		recipe := &pipeline.Recipe{Name: step.Op, Steps: []pipeline.Step{step}}
		if _, err := recipe.Stages(); err != nil {
			return nil, err
		}
		return recipe, nil
	}

	if path := os.Getenv(recipeEnvVar); path != "" {
		zap.S().Infof("Using recipe from %s: %s", recipeEnvVar, path)
		return pipeline.LoadRecipe(path)
	}
	return nil, fmt.Errorf("no recipe given: use --recipe, --op or set %s", recipeEnvVar)
}
