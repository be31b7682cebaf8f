package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rm-hull/image-editor/internal"
	"github.com/rm-hull/image-editor/internal/imageio"
	"github.com/rm-hull/image-editor/internal/pipeline"
	"github.com/rm-hull/image-editor/internal/transform"
	healthcheck "github.com/tavsec/gin-healthcheck"
	"github.com/tavsec/gin-healthcheck/checks"
	hc_config "github.com/tavsec/gin-healthcheck/config"
	"go.uber.org/zap"
)

const (
	inputDirEnvVar = "IMAGE_EDITOR_INPUT_DIR"
	maxUploadBytes = 32 << 20
)

var (
	errBadImage = errors.New("bad image")
	floatParams = []string{"factor", "mid", "sigma", "scale"}
)

type ServerConfig struct {
	RootDir  string
	Port     int
	Debug    bool
	Watch    bool
	Interval time.Duration
}

func ApiServer(cfg ServerConfig) error {
	internal.ShowVersion()
	internal.UserInfo()
	if cfg.Debug {
		internal.EnvironmentVars()
	}

	outputDir := filepath.Join(cfg.RootDir, "output")

	if cfg.Watch {
		recipe, err := resolveRecipe("", pipeline.Step{})
		if err != nil {
			return err
		}
		inDir := os.Getenv(inputDirEnvVar)
		if inDir == "" {
			inDir = filepath.Join(cfg.RootDir, "input")
		}

		sched, err := internal.NewScheduler(inDir, outputDir, runtime.NumCPU(), recipe, cfg.Interval)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				zap.S().Errorf("failed to shutdown scheduler: %v", err)
			}
		}()
	}

	r, err := NewRouter(cfg.RootDir, cfg.Debug)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	zap.S().Infof("Starting HTTP API Server on port %d...", cfg.Port)
	if err := r.Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP API Server failed to start on port %d: %w", cfg.Port, err)
	}
	return nil
}

// NewRouter builds the HTTP API with metrics, health checks and, when debug
// is set, pprof. It registers metrics with the default prometheus registry so
// it may only be called once per process.
func NewRouter(rootDir string, debug bool) (*gin.Engine, error) {
	r := gin.New()

	prometheus := ginprom.New(
		ginprom.Engine(r),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/healthz"),
	)

	r.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/metrics"),
		prometheus.Instrument(),
	)

	if debug {
		zap.S().Warn("pprof endpoints are enabled and exposed. Do not run with this flag in production.")
		pprof.Register(r)
	}

	if err := healthcheck.New(r, hc_config.DefaultConfig(), []checks.Check{}); err != nil {
		return nil, fmt.Errorf("failed to initialize healthcheck: %w", err)
	}

	registerRoutes(r, rootDir)
	return r, nil
}

func registerRoutes(r gin.IRouter, rootDir string) {
	h := &handlers{rootDir: rootDir}

	v1 := r.Group("/v1")
	v1.GET("/version", h.version)
	v1.POST("/transform/:op", h.transform)
	v1.POST("/recipe", h.recipe)
	v1.Static("/images", filepath.Join(rootDir, "output"))
}

type handlers struct {
	rootDir string
}

func (h *handlers) version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": internal.Version()})
}

func (h *handlers) transform(c *gin.Context) {
	step, err := stepFromQuery(c.Param("op"), c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	s, err := step.Stage()
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.process(c, s)
}

func (h *handlers) recipe(c *gin.Context) {
	name := c.Query("recipe")
	if err := pipeline.ValidateName(name); err != nil {
		abortWithError(c, err)
		return
	}

	recipe, err := pipeline.LoadRecipe(filepath.Join(h.rootDir, "recipes", name+".yaml"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	stages, err := recipe.Stages()
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.process(c, stages...)
}

func (h *handlers) process(c *gin.Context, stages ...pipeline.Stage) {
	format := c.DefaultQuery("format", "png")
	if _, err := imageio.EncoderFor(format); err != nil {
		abortWithError(c, err)
		return
	}

	img, err := imageio.Decode(http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", errBadImage, err))
		return
	}

	out, err := pipeline.Run(img, stages...)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, out, format); err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, imageio.ContentType(format), buf.Bytes())
}

// stepFromQuery builds a recipe step from query parameters named like the
// recipe YAML fields.
func stepFromQuery(op string, c *gin.Context) (pipeline.Step, error) {
	step := pipeline.Step{Op: op, Kernel: c.Query("kernel")}

	floats := make(map[string]float64, len(floatParams))
	for _, name := range floatParams {
		value, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return step, fmt.Errorf("%w: %s=%q is not a number", pipeline.ErrInvalidStep, name, value)
		}
		floats[name] = f
	}

	if f, ok := floats["factor"]; ok {
		step.Factor = &f
	}
	if f, ok := floats["mid"]; ok {
		step.Mid = &f
	}
	step.Sigma = floats["sigma"]
	step.Scale = floats["scale"]

	if value, ok := c.GetQuery("size"); ok {
		size, err := strconv.Atoi(value)
		if err != nil {
			return step, fmt.Errorf("%w: size=%q is not an integer", pipeline.ErrInvalidStep, value)
		}
		step.Size = size
	}
	return step, nil
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.S().Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, errBadImage),
		errors.Is(err, pipeline.ErrUnknownOp),
		errors.Is(err, pipeline.ErrInvalidStep),
		errors.Is(err, pipeline.ErrInvalidName),
		errors.Is(err, transform.ErrInvalidKernel),
		errors.Is(err, transform.ErrDimensionMismatch),
		errors.Is(err, imageio.ErrUnsupportedFormat):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
