package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sekernel/pkg/cache"
	"github.com/matzehuels/sekernel/pkg/enhancement"
	"github.com/matzehuels/sekernel/pkg/observability"
	"github.com/matzehuels/sekernel/pkg/render"
)

// Runner binds a cache and keyer to pipeline runs. It holds no per-run
// state; the CLI and the query service share one across goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a Runner. A nil cache disables caching, a nil keyer
// selects [cache.DefaultKeyer] and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// timed runs fn and returns how long it took.
func timed(fn func() error) (time.Duration, error) {
	start := time.Now()
	err := fn()
	return time.Since(start), err
}

// Execute obtains the kernel, then enhances opts.Field when one is set and
// renders a table slice when formats are requested.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{RunID: uuid.NewString(), Artifacts: map[string][]byte{}}
	opts.Logger = opts.Logger.With("run", res.RunID[:8])
	logger := opts.Logger

	var k *enhancement.Kernel
	d, err := timed(func() (err error) {
		k, err = r.Kernel(ctx, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	res.Kernel = k
	res.Stats = Stats{
		KernelTime:   d,
		Orientations: k.Sphere().Len(),
		Extent:       k.Extent().N,
		Cells:        k.LookupTable().Shape().Len(),
	}
	res.CacheInfo = CacheInfo{KernelHit: k.CacheHit(), Key: k.CacheKey()}
	logger.Info("kernel ready", "orientations", res.Stats.Orientations, "extent", res.Stats.Extent,
		"cached", k.CacheHit(), "duration", d)

	if opts.ShouldEnhance() {
		var out enhancement.Field
		d, err := timed(func() (err error) {
			out, err = r.Enhance(ctx, k, *opts.Field, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("enhance: %w", err)
		}
		res.Enhanced = &out
		res.Stats.EnhanceTime = d
		logger.Info("field enhanced", "voxels", out.Voxels(), "duration", d)
	}

	if opts.ShouldRender() {
		d, err := timed(func() (err error) {
			res.Artifacts, err = r.Render(ctx, k, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		res.Stats.RenderTime = d
		logger.Info("slice rendered", "formats", opts.Formats, "duration", d)
	}

	return res, nil
}

// Kernel loads the lookup table from the cache or builds it.
func (r *Runner) Kernel(ctx context.Context, opts Options) (*enhancement.Kernel, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateForKernel(); err != nil {
		return nil, err
	}

	return enhancement.New(ctx, enhancement.Config{
		Params:         opts.Params,
		Source:         opts.Source(),
		ForceRecompute: opts.Refresh,
		TestMode:       opts.TestMode,
		Workers:        opts.Workers,
		Cache:          r.Cache,
		Keyer:          r.Keyer,
		TTL:            opts.TTL,
		Logger:         opts.Logger,
		Progress:       opts.Progress,
	})
}

// Enhance convolves f with the kernel's lookup table.
func (r *Runner) Enhance(ctx context.Context, k *enhancement.Kernel, f enhancement.Field, opts Options) (enhancement.Field, error) {
	return enhancement.ConvolveSF(ctx, f, k.LookupTable(), enhancement.ConvolveOptions{
		Workers:   opts.Workers,
		Normalize: opts.Normalize,
	})
}

// Render draws the configured table slice once per requested format.
func (r *Runner) Render(ctx context.Context, k *enhancement.Kernel, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	var artifacts map[string][]byte
	d, err := timed(func() (err error) {
		artifacts, err = renderSlice(k, opts)
		return err
	})
	hooks.OnRenderComplete(ctx, opts.Formats, d, err)
	return artifacts, err
}

func renderSlice(k *enhancement.Kernel, opts Options) (map[string][]byte, error) {
	grid, err := render.Slice(k.LookupTable(), opts.SliceV, opts.SliceR, opts.Axis, opts.Offset)
	if err != nil {
		return nil, err
	}
	title := opts.Title
	if title == "" {
		title = render.Title(opts.SliceV, opts.SliceR, opts.Axis, opts.Offset)
	}
	p, err := render.HeatMap(grid, title)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		if out[f], err = render.Encode(p, f); err != nil {
			return nil, fmt.Errorf("encode %s: %w", f, err)
		}
	}
	return out, nil
}

// Close closes the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}
