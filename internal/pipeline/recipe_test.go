package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rm-hull/image-editor/internal/pipeline/stage"
	"github.com/rm-hull/image-editor/internal/pixel"
	"github.com/rm-hull/image-editor/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const edgeRecipe = `
name: edges
steps:
  - op: brightness
    factor: 1.8
  - op: contrast
    factor: 2
  - op: blur
    size: 3
  - op: kernel
    kernel: sobel_x
  - op: kernel
    weights:
      - [0, 0, 0]
      - [0, 1, 0]
      - [0, 0, 0]
  - op: edges
  - op: gaussian
    sigma: 1.5
  - op: resample
    scale: 0.5
`

func TestParseRecipe(t *testing.T) {
	recipe, err := ParseRecipe(strings.NewReader(edgeRecipe))
	require.NoError(t, err)
	assert.Equal(t, "edges", recipe.Name)
	require.Len(t, recipe.Steps, 8)

	stages, err := recipe.Stages()
	require.NoError(t, err)
	require.Len(t, stages, 8)

	assert.Equal(t, &stage.BrightnessStage{Factor: 1.8}, stages[0])
	assert.Equal(t, &stage.ContrastStage{Factor: 2, Mid: transform.DefaultMid}, stages[1])
	assert.Equal(t, &stage.BlurStage{KernelSize: 3}, stages[2])
	assert.Equal(t, &stage.KernelStage{Kernel: transform.SobelX}, stages[3])
	assert.IsType(t, &stage.KernelStage{}, stages[4])
	assert.Equal(t, &stage.EdgeStage{}, stages[5])
	assert.Equal(t, &stage.GaussianBlurStage{Sigma: 1.5}, stages[6])
	assert.Equal(t, &stage.ResampleStage{Scale: 0.5}, stages[7])
}

func TestParseRecipe_Errors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		target error
		text   string
	}{
		{"unknown op", "steps:\n  - op: sharpen\n", ErrUnknownOp, ""},
		{"missing factor", "steps:\n  - op: brightness\n", ErrInvalidStep, ""},
		{"contrast without factor", "steps:\n  - op: contrast\n    mid: 0.2\n", ErrInvalidStep, ""},
		{"zero blur", "steps:\n  - op: blur\n", ErrInvalidStep, ""},
		{"even kernel", "steps:\n  - op: kernel\n    weights: [[1, 0], [0, 1]]\n", transform.ErrInvalidKernel, ""},
		{"unknown kernel", "steps:\n  - op: kernel\n    kernel: laplace\n", transform.ErrInvalidKernel, ""},
		{"both kernel forms", "steps:\n  - op: kernel\n    kernel: sobel_x\n    weights: [[1]]\n", ErrInvalidStep, ""},
		{"no kernel", "steps:\n  - op: kernel\n", ErrInvalidStep, ""},
		{"zero sigma", "steps:\n  - op: gaussian\n", ErrInvalidStep, ""},
		{"negative scale", "steps:\n  - op: resample\n    scale: -1\n", ErrInvalidStep, ""},
		{"unknown field", "steps:\n  - op: blur\n    radius: 3\n", nil, "failed to parse recipe"},
		{"not yaml", "steps: [", nil, "failed to parse recipe"},
		{"name with path", "name: ../x\nsteps:\n  - op: edges\n", ErrInvalidName, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe, err := ParseRecipe(strings.NewReader(tt.doc))
			assert.Nil(t, recipe)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			if tt.text != "" {
				assert.ErrorContains(t, err, tt.text)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"edges", "blur_k3", "soft-edges", "V2"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", "../x", "a/b", "a b", ".", "x.yaml"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, name)
	}
}

func TestLoadRecipe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "darken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: darken\nsteps:\n  - op: brightness\n    factor: 0.2\n"), 0644))

	recipe, err := LoadRecipe(path)
	require.NoError(t, err)

	stages, err := recipe.Stages()
	require.NoError(t, err)

	img, err := pixel.FromSamples(1, 1, 1, []float64{1})
	require.NoError(t, err)
	out, err := Run(img, stages...)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2}, out.Samples())

	_, err = LoadRecipe(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestShippedRecipes(t *testing.T) {
	paths, err := filepath.Glob("../../recipes/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			recipe, err := LoadRecipe(path)
			require.NoError(t, err)
			assert.NotEmpty(t, recipe.Name)
			assert.NotEmpty(t, recipe.Steps)
		})
	}
}
