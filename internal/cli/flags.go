package cli

import (
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/kernel"
	"github.com/matzehuels/sekernel/pkg/pipeline"
)

// paramFlags binds the diffusion parameters.
type paramFlags struct {
	d33, d44, t float64
}

func addParamFlags(cmd *cobra.Command, f *paramFlags) {
	def := kernel.DefaultParams()
	cmd.Flags().Float64Var(&f.d33, "d33", def.D33, "spatial diffusion along the orientation")
	cmd.Flags().Float64Var(&f.d44, "d44", def.D44, "angular diffusion")
	cmd.Flags().Float64Var(&f.t, "t", def.T, "diffusion time")
}

// apply overrides kc with every parameter flag set on the command line.
func (f *paramFlags) apply(cmd *cobra.Command, kc *KernelConfig) {
	if cmd.Flags().Changed("d33") {
		kc.D33 = f.d33
	}
	if cmd.Flags().Changed("d44") {
		kc.D44 = f.d44
	}
	if cmd.Flags().Changed("t") {
		kc.T = f.t
	}
}

// kernelFlags binds everything that selects a lookup table.
type kernelFlags struct {
	paramFlags
	orientations int
	seed         uint64
	testMode     bool
	workers      int
	refresh      bool
	noCache      bool
}

func addKernelFlags(cmd *cobra.Command, f *kernelFlags) {
	addParamFlags(cmd, &f.paramFlags)
	cmd.Flags().IntVarP(&f.orientations, "orientations", "n", 0, "number of generated orientations (0 = built-in 100-point set)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for generated orientations")
	cmd.Flags().BoolVar(&f.testMode, "test-mode", false, "build a reduced table with a single r orientation")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "parallel workers (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore a cached table and rebuild it")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the table cache")
}

// options merges the config file with the flags set on the command line.
func (f *kernelFlags) options(cmd *cobra.Command, cfg Config) pipeline.Options {
	f.paramFlags.apply(cmd, &cfg.Kernel)
	if cmd.Flags().Changed("orientations") {
		cfg.Kernel.Orientations = f.orientations
	}
	if cmd.Flags().Changed("seed") {
		cfg.Kernel.Seed = f.seed
	}
	if cmd.Flags().Changed("test-mode") {
		cfg.Kernel.TestMode = f.testMode
	}
	if cmd.Flags().Changed("workers") {
		cfg.Kernel.Workers = f.workers
	}
	opts := cfg.options()
	opts.Refresh = f.refresh
	return opts
}

// parseVec reads a 3-vector flag value.
func parseVec(name string, v []float64) (r3.Vec, error) {
	if len(v) != 3 {
		return r3.Vec{}, errors.New(errors.ErrCodeInvalidInput, "--%s needs 3 components, got %d", name, len(v))
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

// parseOrientation reads a 3-vector flag value and normalises it.
func parseOrientation(name string, v []float64) (r3.Vec, error) {
	vec, err := parseVec(name, v)
	if err != nil {
		return vec, err
	}
	if r3.Norm(vec) == 0 {
		return vec, errors.New(errors.ErrCodeInvalidOrientations, "--%s must be a non-zero orientation", name)
	}
	return r3.Unit(vec), nil
}
