package internal

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rm-hull/image-editor/internal/pipeline"
	"go.uber.org/zap"
)

// NewScheduler processes inDir once, then keeps re-processing it every
// interval so newly added images are picked up. Images whose output already
// exists are skipped.
func NewScheduler(inDir, outDir string, poolSize int, recipe *pipeline.Recipe, interval time.Duration) (gocron.Scheduler, error) {

	if err := RunBatch(inDir, outDir, poolSize, recipe); err != nil {
		return nil, fmt.Errorf("initial run of job failed: %w", err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := RunBatch(inDir, outDir, poolSize, recipe); err != nil {
				zap.S().Errorf("Batch run failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	zap.S().Infof("Watching %s every %s (recipe=%s)", inDir, interval, recipe.Name)
	scheduler.Start()
	return scheduler, nil
}

// RunBatch processes every image in inDir once. An empty directory is not an
// error.
func RunBatch(inDir, outDir string, poolSize int, recipe *pipeline.Recipe) error {
	p, err := NewProcessor(inDir, outDir, poolSize, recipe)
	if errors.Is(err, ErrNoImages) {
		return nil
	}
	if err != nil {
		return err
	}
	return errors.Join(p.Process()...)
}
