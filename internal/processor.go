package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rm-hull/image-editor/internal/imageio"
	"github.com/rm-hull/image-editor/internal/pipeline"
	"go.uber.org/zap"
)

var (
	ErrNoImages       = errors.New("no images to process")
	ErrDuplicateImage = errors.New("images share an output name")
)

const defaultFormat = ".png"

// Processor runs one recipe over every image in a directory using a fixed
// pool of workers. Each image is independent, so workers never share
// buffers.
type Processor struct {
	startTime time.Time
	endTime   time.Time
	inDir     string
	outDir    string
	format    string
	poolSize  int
	jobs      chan string
	results   chan error
	files     []string
	name      string
	stages    []pipeline.Stage
}

// NewProcessor lists the images in inDir and prepares to write results under
// outDir/<recipe name>/.
func NewProcessor(inDir, outDir string, poolSize int, recipe *pipeline.Recipe) (*Processor, error) {
	if poolSize < 1 {
		return nil, errors.New("pool size must be at least 1")
	}
	startTime := time.Now()

	stages, err := recipe.Stages()
	if err != nil {
		return nil, fmt.Errorf("failed to build recipe: %w", err)
	}

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", inDir, err)
	}

	name := recipe.Name
	if name == "" {
		name = "output"
	}
	if err := pipeline.ValidateName(name); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	stems := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !imageio.IsImageFile(entry.Name()) {
			continue
		}
		// case-insensitive filesystems would map A.png and a.bmp to one output
		stem := strings.ToLower(outputStem(entry.Name()))
		if other, ok := stems[stem]; ok {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateImage, other, entry.Name())
		}
		stems[stem] = entry.Name()
		files = append(files, filepath.Join(inDir, entry.Name()))
	}
	sort.Strings(files)

	zap.S().Infof("Directory %s contains %d images for recipe %s", inDir, len(files), name)
	if len(files) == 0 {
		return nil, ErrNoImages
	}

	return &Processor{
		startTime: startTime,
		inDir:     inDir,
		outDir:    outDir,
		format:    defaultFormat,
		poolSize:  poolSize,
		jobs:      make(chan string),
		results:   make(chan error),
		files:     files,
		name:      name,
		stages:    stages,
	}, nil
}

// Process starts the workers, dispatches every file and waits for them all.
func (p *Processor) Process() []error {
	p.StartWorkers()
	p.DispatchJobs()
	return p.Wait()
}

// DispatchJobs sends files to the jobs channel for processing by workers.
func (p *Processor) DispatchJobs() {
	go func() {
		for _, file := range p.files {
			p.jobs <- file
		}
		close(p.jobs)
	}()
}

func (p *Processor) StartWorkers() {
	zap.S().Infof("Starting processing images with pool size: %d", p.poolSize)

	for i := range p.poolSize {
		go p.worker(i)
	}
}

func (p *Processor) worker(i int) {
	zap.S().Debugf("Worker %d started", i)
	for file := range p.jobs {
		p.results <- p.processFile(file)
	}
	zap.S().Debugf("Worker %d finished", i)
}

// OutputPath is where the result for the input file at path is written.
func (p *Processor) OutputPath(path string) string {
	return filepath.Join(p.outDir, p.name, outputStem(path)+p.format)
}

// outputStem is the file name without directory or extension.
func outputStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func (p *Processor) processFile(file string) error {
	filename := p.OutputPath(file)

	// if the file already exists, skip processing
	if _, err := os.Stat(filename); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create path: %w", err)
	}

	img, err := imageio.Load(file)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", file, err)
	}

	out, err := pipeline.Run(img, p.stages...)
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", file, err)
	}

	tmpFile, err := os.CreateTemp(dir, "process-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanupTemp := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupTemp {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	if err := imageio.Encode(tmpFile, out, p.format); err != nil {
		return fmt.Errorf("failed to write processed image to temporary file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file before rename: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	cleanupTemp = false
	zap.S().Debugf("Wrote %s", filename)
	return nil
}

func (p *Processor) Wait() []error {
	waitFor := len(p.files)
	zap.S().Infof("Waiting for %d images to be processed", waitFor)

	errs := make([]error, 0, 10)
	for range waitFor {
		if err := <-p.results; err != nil {
			errs = append(errs, err)
		}
	}
	p.endTime = time.Now()
	elapsed := p.endTime.Sub(p.startTime)
	zap.S().Infof("All images processed in %s (errors=%d)", elapsed, len(errs))
	return errs
}
