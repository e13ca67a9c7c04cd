package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/lut"
	"github.com/matzehuels/sekernel/pkg/pipeline"
)

// buildCommand creates the build command for computing lookup tables.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		kf     kernelFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build (or load from cache) the kernel lookup table",
		Long: `Build the lookup table of the SE(3) enhancement kernel for the configured
parameters and orientations. A table already in the cache is loaded instead
unless --refresh is given.`,
		Example: `  sekernel build
  sekernel build --d44 0.04 -n 60 --test-mode
  sekernel build -o table.npy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, kf.options(cmd, c.config), kf.noCache, output)
		},
	}

	addKernelFlags(cmd, &kf)
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the table to a .npy file")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, opts pipeline.Options, noCache bool, output string) error {
	ctx := cmd.Context()
	if output != "" {
		if err := errors.ValidateOutputPath(output, ".npy"); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	sp := newSpinner(ctx, cmd.ErrOrStderr(), "Building lookup table")
	opts.Progress = func(done, total int) {
		sp.progress(done, total)
		c.Logger.Debug("slab done", "done", done, "total", total)
	}

	sw := startStopwatch(c.Logger)
	sp.start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if sp.interrupted() {
			sp.stop()
		} else {
			sp.fail("Build failed")
		}
		return err
	}
	sp.succeed("Lookup table ready")
	sw.done("Kernel ready", "cached", result.CacheInfo.KernelHit)

	k := result.Kernel
	out := newPrinter(cmd.OutOrStdout())
	out.kernelStats(result.Stats.Orientations, result.Stats.Extent, result.CacheInfo.KernelHit)
	out.keyValue("Params", k.Params().String())
	out.keyValue("Shape", k.LookupTable().Shape().String())
	out.keyValue("Orientations", k.Sphere().String())
	out.keyValue("Cache key", result.CacheInfo.Key)

	if output != "" {
		data, err := lut.Encode(k.LookupTable())
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		out.file(output)
	}

	out.nextStep("Plot a slice", "sekernel plot -o slice.png")
	return nil
}
