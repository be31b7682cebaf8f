package main

import (
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/rm-hull/image-editor/cmd"
	"github.com/rm-hull/image-editor/internal/logging"
	"github.com/rm-hull/image-editor/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var debug bool
	var flush func()

	rootCmd := &cobra.Command{
		Use:           "image-editor",
		Long:          `Brightness, contrast, blur and convolution filters for images`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			flush, err = logging.Install(debug)
			if err != nil {
				return err
			}
			if err := godotenv.Load(); err != nil {
				zap.S().Debug("No .env file found")
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (and pprof for api-server) - WARNING: do not enable in production")

	rootCmd.AddCommand(applyCommand(), animateCommand(), batchCommand(), apiServerCommand(&debug))

	err := rootCmd.Execute()
	if err != nil {
		zap.S().Error(err)
	}
	if flush != nil {
		flush()
	}
	if err != nil {
		os.Exit(1)
	}
}

func applyCommand() *cobra.Command {
	var input, output, recipePath string
	var factor, mid float64
	var step pipeline.Step

	applyCmd := &cobra.Command{
		Use:   "apply --input <file|url> --output <file> [--recipe <file> | --op <op> ...]",
		Short: "Apply a recipe or a single operation to one image",
		RunE: func(c *cobra.Command, _ []string) error {
			if c.Flags().Changed("factor") {
				step.Factor = &factor
			}
			if c.Flags().Changed("mid") {
				step.Mid = &mid
			}
			return cmd.Apply(input, output, recipePath, step)
		},
	}

	applyCmd.Flags().StringVar(&input, "input", "", "Input image path or http(s) URL")
	applyCmd.Flags().StringVar(&output, "output", "", "Output image path (.png, .jpg or .bmp)")
	applyCmd.Flags().StringVar(&recipePath, "recipe", "", "Path to a YAML recipe")
	applyCmd.Flags().StringVar(&step.Op, "op", "", "Single operation: brightness, contrast, blur, kernel, edges, gaussian or resample")
	applyCmd.Flags().Float64Var(&factor, "factor", 1, "Brightness or contrast factor")
	applyCmd.Flags().Float64Var(&mid, "mid", 0.5, "Contrast midpoint")
	applyCmd.Flags().IntVar(&step.Size, "size", 0, "Blur kernel size")
	applyCmd.Flags().StringVar(&step.Kernel, "kernel", "", "Named kernel: identity, sobel_x or sobel_y")
	applyCmd.Flags().Float64Var(&step.Sigma, "sigma", 0, "Gaussian blur radius")
	applyCmd.Flags().Float64Var(&step.Scale, "scale", 0, "Resample scale factor")
	_ = applyCmd.MarkFlagRequired("input")
	_ = applyCmd.MarkFlagRequired("output")
	return applyCmd
}

func animateCommand() *cobra.Command {
	var input, output, recipePath string
	var delay float64

	animateCmd := &cobra.Command{
		Use:   "animate --input <file|url> --output <file.png> [--recipe <file>] [--delay <seconds>]",
		Short: "Render every step of a recipe as an animated PNG",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.Animate(input, output, recipePath, delay)
		},
	}

	animateCmd.Flags().StringVar(&input, "input", "", "Input image path or http(s) URL")
	animateCmd.Flags().StringVar(&output, "output", "animation.png", "Output APNG path")
	animateCmd.Flags().StringVar(&recipePath, "recipe", "", "Path to a YAML recipe")
	animateCmd.Flags().Float64Var(&delay, "delay", 1.0, "Seconds per frame")
	_ = animateCmd.MarkFlagRequired("input")
	return animateCmd
}

func batchCommand() *cobra.Command {
	var inDir, outDir, recipePath string
	var workers int

	batchCmd := &cobra.Command{
		Use:   "batch --in <dir> --out <dir> [--recipe <file>] [--workers <n>]",
		Short: "Apply a recipe to every image in a directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.Batch(inDir, outDir, recipePath, workers)
		},
	}

	batchCmd.Flags().StringVar(&inDir, "in", "./input", "Directory of input images")
	batchCmd.Flags().StringVar(&outDir, "out", "./output", "Directory to write results to")
	batchCmd.Flags().StringVar(&recipePath, "recipe", "", "Path to a YAML recipe")
	batchCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of images processed concurrently")
	return batchCmd
}

func apiServerCommand(debug *bool) *cobra.Command {
	var cfg cmd.ServerConfig

	apiServerCmd := &cobra.Command{
		Use:   "api-server [--root <path>] [--port <port>] [--watch] [--interval <duration>]",
		Short: "Start HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg.Debug = *debug
			return cmd.ApiServer(cfg)
		},
	}

	apiServerCmd.Flags().StringVar(&cfg.RootDir, "root", ".", "Path to root folder (recipes/, input/ and output/)")
	apiServerCmd.Flags().IntVar(&cfg.Port, "port", 8080, "Port to run HTTP server on")
	apiServerCmd.Flags().BoolVar(&cfg.Watch, "watch", false, "Re-run the batch recipe over the input folder periodically")
	apiServerCmd.Flags().DurationVar(&cfg.Interval, "interval", time.Minute, "How often to re-run the batch in watch mode")
	return apiServerCmd
}
