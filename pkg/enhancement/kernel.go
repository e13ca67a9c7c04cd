// Package enhancement builds contextual-enhancement kernels and applies them
// to orientation fields.
//
// [New] resolves the orientation set, looks the lookup table up in a
// [cache.Cache] and computes it on a miss. The returned [Kernel] is immutable
// and safe to share:
//
//	k, err := enhancement.New(ctx, enhancement.Config{
//	    Params: kernel.Params{D33: 1.0, D44: 0.04, T: 1.0},
//	    Source: sphere.Default(),
//	    Cache:  fileCache,
//	})
//	out, err := enhancement.ConvolveSF(ctx, field, k.LookupTable(), enhancement.ConvolveOptions{Normalize: true})
package enhancement

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/cache"
	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/kernel"
	"github.com/matzehuels/sekernel/pkg/lut"
	"github.com/matzehuels/sekernel/pkg/observability"
	"github.com/matzehuels/sekernel/pkg/sphere"
)

// cacheKeyType labels cache events for this package.
const cacheKeyType = "kernel"

// Config configures New.
type Config struct {
	Params kernel.Params

	// Source provides the orientations. Nil selects sphere.Default().
	Source sphere.Source

	// ForceRecompute ignores any cached table. The fresh table is still
	// stored.
	ForceRecompute bool

	// TestMode builds a table with a single r orientation.
	TestMode bool

	// Workers bounds build parallelism. Zero uses GOMAXPROCS.
	Workers int

	// Cache stores tables between runs. Nil disables caching.
	Cache cache.Cache

	// Keyer derives cache keys. Nil uses cache.NewDefaultKeyer().
	Keyer cache.Keyer

	// TTL is passed to Cache.Set.
	TTL time.Duration

	// Logger receives progress and cache warnings. Nil discards them.
	Logger *log.Logger

	// Progress, if set, is called after each finished v slab.
	Progress func(done, total int)
}

// Kernel is a constructed enhancement kernel with its lookup table.
type Kernel struct {
	params    kernel.Params
	evaluator kernel.Evaluator
	sphere    *sphere.Sphere
	table     *lut.Table
	cacheKey  string
	cacheHit  bool
	testMode  bool
}

// New validates cfg, resolves the orientations and obtains the lookup table
// from the cache or by building it. An unreadable or mismatched cache entry
// is logged and recomputed; a failed cache write is logged and ignored.
func New(ctx context.Context, cfg Config) (*Kernel, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := cfg.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	keyer := cfg.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	src := cfg.Source
	if src == nil {
		src = sphere.Default()
	}

	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if err := errors.ValidateWorkers(cfg.Workers); err != nil {
		return nil, err
	}

	sph, err := src.Resolve()
	if err != nil {
		return nil, err
	}
	logger.Debug("orientations resolved", "source", src.Kind(), "sphere", sph)

	k := &Kernel{
		params:    cfg.Params,
		evaluator: kernel.NewEvaluator(cfg.Params),
		sphere:    sph,
		testMode:  cfg.TestMode,
	}

	keyOpts := cache.KernelKeyOpts{
		D33:          cfg.Params.D33,
		D44:          cfg.Params.D44,
		T:            cfg.Params.T,
		Orientations: sph.Len(),
		VerticesHash: cache.HashVertices(sph.Vertices()),
		TestMode:     cfg.TestMode,
	}
	k.cacheKey = keyer.KernelKey(keyOpts)

	if !cfg.ForceRecompute {
		if t := k.loadCached(ctx, c, logger); t != nil {
			k.table = t
			k.cacheHit = true
			logger.Info("lookup table loaded from cache", "table", keyOpts.Label(), "shape", t.Shape())
			return k, nil
		}
	}

	logger.Info("computing lookup table", "params", cfg.Params, "orientations", sph.Len(), "test_mode", cfg.TestMode)
	start := time.Now()
	ext := kernel.EstimateExtent(k.evaluator)
	logger.Debug("extent estimated", "n", ext.N)

	observability.Pipeline().OnBuildStart(ctx, cfg.Params.String(), sph.Len())
	t, err := lut.Build(ctx, k.evaluator, sph.Vertices(), ext, lut.BuildOptions{
		TestMode: cfg.TestMode,
		Workers:  cfg.Workers,
		Progress: cfg.Progress,
	})
	cells := 0
	if t != nil {
		cells = t.Shape().Len()
	}
	observability.Pipeline().OnBuildComplete(ctx, cells, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	k.table = t
	logger.Info("lookup table computed", "shape", t.Shape(), "elapsed", time.Since(start).Round(time.Millisecond))

	k.store(ctx, c, cfg.TTL, logger)
	return k, nil
}

// loadCached returns the cached table, or nil on a miss or any failure.
func (k *Kernel) loadCached(ctx context.Context, c cache.Cache, logger *log.Logger) *lut.Table {
	data, ok, err := c.Get(ctx, k.cacheKey)
	if err != nil {
		logger.Warn("cache read failed, recomputing", "error", errors.Wrap(errors.ErrCodeCacheRead, err, "get %s", k.cacheKey))
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil
	}

	t, err := lut.Decode(data)
	if err != nil {
		logger.Warn("cached table is unreadable, recomputing", "error", err)
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil
	}
	if want := k.expectedShape(t.Shape().N); t.Shape() != want {
		logger.Warn("cached table has the wrong shape, recomputing", "got", t.Shape(), "want", want)
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return t
}

// store writes the table to the cache. Failures are logged only.
func (k *Kernel) store(ctx context.Context, c cache.Cache, ttl time.Duration, logger *log.Logger) {
	data, err := lut.Encode(k.table)
	if err != nil {
		logger.Warn("could not encode lookup table", "error", err)
		return
	}
	if err := c.Set(ctx, k.cacheKey, data, ttl); err != nil {
		logger.Warn("could not store lookup table", "error", errors.Wrap(errors.ErrCodeCacheWrite, err, "set %s", k.cacheKey))
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
	logger.Debug("lookup table stored", "bytes", len(data))
}

func (k *Kernel) expectedShape(n int) lut.Shape {
	numR := k.sphere.Len()
	if k.testMode {
		numR = 1
	}
	return lut.Shape{NumV: k.sphere.Len(), NumR: numR, N: n}
}

// LookupTable returns the precomputed table.
func (k *Kernel) LookupTable() *lut.Table { return k.table }

// Orientations returns a copy of the orientation vectors.
func (k *Kernel) Orientations() []r3.Vec { return k.sphere.Vertices() }

// Sphere returns the resolved orientation set.
func (k *Kernel) Sphere() *sphere.Sphere { return k.sphere }

// Evaluate returns the kernel between position x with orientation r and
// position y with orientation v.
func (k *Kernel) Evaluate(x, y, r, v r3.Vec) float64 {
	return k.evaluator.K2(x, y, r, v)
}

// Params returns the diffusion parameters.
func (k *Kernel) Params() kernel.Params { return k.params }

// Extent returns the spatial window of the lookup table.
func (k *Kernel) Extent() kernel.Extent { return k.table.Extent() }

// CacheHit reports whether the table came from the cache.
func (k *Kernel) CacheHit() bool { return k.cacheHit }

// CacheKey returns the key the table is stored under.
func (k *Kernel) CacheKey() string { return k.cacheKey }

// TestMode reports whether the table has a single r orientation.
func (k *Kernel) TestMode() bool { return k.testMode }
