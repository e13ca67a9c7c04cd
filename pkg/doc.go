// Package pkg provides the core libraries for sekernel.
//
// # Overview
//
// sekernel computes the SE(3) contextual-enhancement kernel: the Green's
// function of a diffusion over positions and orientations that links a point
// with one orientation to nearby points with other orientations. Evaluating
// the kernel is expensive, so it is sampled once into a lookup table indexed
// by orientation pair and integer spatial offset, cached, and reused. The pkg
// directory is organized into four main areas:
//
//  1. [kernel] and [sphere] - Numeric core (kernel function, orientation sets)
//  2. [lut] and [enhancement] - Table building and use (build, convolve)
//  3. [cache] - Table persistence (file, Redis, none)
//  4. [pipeline], [render] and [api] - Orchestration and outer surfaces
//
// # Architecture
//
// The typical data flow through sekernel:
//
//	(D33, D44, t) + orientations
//	         ↓
//	    [cache] lookup by parameter key
//	         ↓ miss
//	    [kernel] extent estimate → [lut] parallel build
//	         ↓
//	    [enhancement] Kernel (table + evaluator)
//	         ↓
//	    field convolution / heat map / HTTP queries
//
// # Quick Start
//
// Construct a kernel and query its table:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/sekernel/pkg/cache"
//	    "github.com/matzehuels/sekernel/pkg/enhancement"
//	    "github.com/matzehuels/sekernel/pkg/kernel"
//	)
//
//	c, _ := cache.NewFileCache(dir)
//	k, _ := enhancement.New(context.Background(), enhancement.Config{
//	    Params: kernel.Params{D33: 1.0, D44: 0.02, T: 1.0},
//	    Cache:  c,
//	})
//	v := k.LookupTable().At(0, 0, 1, 0, 0)
//
// # Main Packages
//
// [kernel] - Euler angles, rotation matrices, the SE(3) coordinate map, the
// kernel function, the rotated evaluator K2 and the spatial extent estimate.
// Every function here is total; nothing returns an error.
//
// [sphere] - Orientation sets: explicit, generated by electrostatic repulsion,
// or the built-in 100-point set.
//
// [lut] - The immutable lookup table, its builder and .npy codec.
//
// [enhancement] - The orchestrator tying cache, builder and evaluator
// together, plus orientation fields and their convolution with the table.
//
// [cache] - Byte caches keyed by a hash of the kernel parameters.
//
// [pipeline] - kernel → enhance → render, shared by the CLI and the server.
//
// [render] - Heat maps of table slices (PNG, SVG, PDF).
//
// [api] - HTTP query service.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for builds, enhancement, rendering and HTTP.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/lut/...                # Specific package
//	SEKERNEL_TEST_REDIS_ADDR=localhost:6379 go test ./pkg/cache/
//
// [kernel]: https://pkg.go.dev/github.com/matzehuels/sekernel/pkg/kernel
// [sphere]: https://pkg.go.dev/github.com/matzehuels/sekernel/pkg/sphere
// [lut]: https://pkg.go.dev/github.com/matzehuels/sekernel/pkg/lut
// [enhancement]: https://pkg.go.dev/github.com/matzehuels/sekernel/pkg/enhancement
// [cache]: https://pkg.go.dev/github.com/matzehuels/sekernel/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sekernel/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/sekernel/pkg/render
// [api]: https://pkg.go.dev/github.com/matzehuels/sekernel/pkg/api
// [errors]: https://pkg.go.dev/github.com/matzehuels/sekernel/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/sekernel/pkg/observability
package pkg
