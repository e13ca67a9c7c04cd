// Package pipeline provides the kernel pipeline shared by the CLI and the
// query service.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Kernel: resolve orientations, then load or build the lookup table
//  2. Enhance: convolve an orientation field with the table (optional)
//  3. Render: draw a heat map of one table slice (optional)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Params:  kernel.Params{D33: 1.0, D44: 0.04, T: 1.0},
//	    Formats: []string{"png"},
//	})
//	png := result.Artifacts["png"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/enhancement"
	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/kernel"
	"github.com/matzehuels/sekernel/pkg/render"
	"github.com/matzehuels/sekernel/pkg/sphere"
)

// DefaultAxis is the spatial axis held fixed by rendered slices.
const DefaultAxis = render.AxisZ

// Options configures one pipeline run. Its JSON form is the request body of
// the query service.
type Options struct {
	Params       kernel.Params `json:"params"`
	Orientations int           `json:"orientations,omitempty"` // 0 selects the default set
	Seed         uint64        `json:"seed,omitempty"`
	Vertices     []r3.Vec      `json:"vertices,omitempty"` // explicit set, overrides Orientations
	TestMode     bool          `json:"test_mode,omitempty"`
	Workers      int           `json:"workers,omitempty"`
	Refresh      bool          `json:"refresh,omitempty"`
	TTL          time.Duration `json:"-"`

	Field     *enhancement.Field `json:"-"`
	Normalize bool               `json:"normalize,omitempty"`

	Formats []string    `json:"formats,omitempty"`
	SliceV  int         `json:"slice_v,omitempty"`
	SliceR  int         `json:"slice_r,omitempty"`
	Axis    render.Axis `json:"axis,omitempty"`
	Offset  int         `json:"offset,omitempty"`
	Title   string      `json:"title,omitempty"`

	Logger   *log.Logger           `json:"-"`
	Progress func(done, total int) `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string

	// Kernel is the constructed kernel with its lookup table.
	Kernel *enhancement.Kernel

	// Enhanced is the convolved field, if a field was given.
	Enhanced *enhancement.Field

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the table came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Orientations int
	Extent       int
	Cells        int
	KernelTime   time.Duration
	EnhanceTime  time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache use for the kernel stage.
type CacheInfo struct {
	KernelHit bool   // Whether the lookup table came from cache
	Key       string // Cache key of the table
}

// ValidateFormat rejects formats the renderer cannot encode.
func ValidateFormat(format string) error {
	if !render.ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: png, svg, pdf)", format)
	}
	return nil
}

func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults runs every stage's validation once; later calls
// return nil.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForKernel(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForKernel checks the kernel options.
func (o *Options) ValidateForKernel() error {
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if len(o.Vertices) == 0 && o.Orientations != 0 {
		if err := errors.ValidateOrientationCount(o.Orientations); err != nil {
			return err
		}
	}
	if err := errors.ValidateWorkers(o.Workers); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults fills the slice axis and a discarding logger.
func (o *Options) SetRenderDefaults() {
	if o.Axis == "" {
		o.Axis = DefaultAxis
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies render defaults, then checks axis and formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if _, err := render.ParseAxis(string(o.Axis)); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// Source returns the orientation source the options select.
func (o *Options) Source() sphere.Source {
	switch {
	case len(o.Vertices) > 0:
		return sphere.FromSet(o.Vertices)
	case o.Orientations > 0:
		return sphere.FromCount(o.Orientations, o.Seed)
	default:
		return sphere.Default()
	}
}

// ShouldEnhance reports whether a field was supplied.
func (o *Options) ShouldEnhance() bool {
	return o.Field != nil
}

// ShouldRender reports whether any output format was requested.
func (o *Options) ShouldRender() bool {
	return len(o.Formats) > 0
}
