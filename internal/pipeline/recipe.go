package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/rm-hull/image-editor/internal/pipeline/stage"
	"github.com/rm-hull/image-editor/internal/transform"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownOp   = errors.New("unknown op")
	ErrInvalidStep = errors.New("invalid step")
	ErrInvalidName = errors.New("invalid recipe name")
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateName checks that a recipe name is safe to use as a single path
// component.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Step describes one stage in a recipe. Which fields are required depends on
// Op:
//
//	brightness  factor
//	contrast    factor, mid (default 0.5)
//	blur        size
//	kernel      kernel (a built-in name) or weights (a square matrix)
//	edges       -
//	gaussian    sigma
//	resample    scale
type Step struct {
	Op      string      `yaml:"op"`
	Factor  *float64    `yaml:"factor,omitempty"`
	Mid     *float64    `yaml:"mid,omitempty"`
	Size    int         `yaml:"size,omitempty"`
	Kernel  string      `yaml:"kernel,omitempty"`
	Weights [][]float64 `yaml:"weights,omitempty"`
	Sigma   float64     `yaml:"sigma,omitempty"`
	Scale   float64     `yaml:"scale,omitempty"`
}

// Recipe is an ordered list of steps, usually loaded from YAML:
//
//	name: edges
//	steps:
//	  - op: blur
//	    size: 3
//	  - op: edges
type Recipe struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

func ParseRecipe(r io.Reader) (*Recipe, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var recipe Recipe
	if err := decoder.Decode(&recipe); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if recipe.Name != "" {
		if err := ValidateName(recipe.Name); err != nil {
			return nil, err
		}
	}
	if _, err := recipe.Stages(); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func LoadRecipe(path string) (*Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	recipe, err := ParseRecipe(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recipe, nil
}

// Stages builds the stage for every step, failing on the first invalid one.
func (r *Recipe) Stages() ([]Stage, error) {
	stages := make([]Stage, 0, len(r.Steps))
	for i, step := range r.Steps {
		s, err := step.Stage()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		stages = append(stages, s)
	}
	return stages, nil
}

func (s Step) Stage() (Stage, error) {
	switch s.Op {
	case "brightness":
		if s.Factor == nil {
			return nil, fmt.Errorf("%w: brightness requires factor", ErrInvalidStep)
		}
		return &stage.BrightnessStage{Factor: *s.Factor}, nil

	case "contrast":
		if s.Factor == nil {
			return nil, fmt.Errorf("%w: contrast requires factor", ErrInvalidStep)
		}
		mid := transform.DefaultMid
		if s.Mid != nil {
			mid = *s.Mid
		}
		return &stage.ContrastStage{Factor: *s.Factor, Mid: mid}, nil

	case "blur":
		if s.Size <= 0 {
			return nil, fmt.Errorf("%w: blur requires a positive size", ErrInvalidStep)
		}
		return &stage.BlurStage{KernelSize: s.Size}, nil

	case "kernel":
		k, err := s.kernel()
		if err != nil {
			return nil, err
		}
		return &stage.KernelStage{Kernel: k}, nil

	case "edges":
		return &stage.EdgeStage{}, nil

	case "gaussian":
		if s.Sigma <= 0 {
			return nil, fmt.Errorf("%w: gaussian requires a positive sigma", ErrInvalidStep)
		}
		return &stage.GaussianBlurStage{Sigma: s.Sigma}, nil

	case "resample":
		if s.Scale <= 0 {
			return nil, fmt.Errorf("%w: resample requires a positive scale", ErrInvalidStep)
		}
		return &stage.ResampleStage{Scale: s.Scale}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownOp, s.Op)
}

func (s Step) kernel() (transform.Kernel, error) {
	switch {
	case s.Kernel != "" && s.Weights != nil:
		return transform.Kernel{}, fmt.Errorf("%w: kernel and weights are mutually exclusive", ErrInvalidStep)
	case s.Kernel != "":
		return transform.Named(s.Kernel)
	case s.Weights != nil:
		return transform.NewKernel(s.Weights)
	}
	return transform.Kernel{}, fmt.Errorf("%w: kernel requires kernel or weights", ErrInvalidStep)
}
