package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sekernel/pkg/enhancement"
	"github.com/matzehuels/sekernel/pkg/errors"
)

// enhanceCommand creates the enhance command for convolving orientation fields.
func (c *CLI) enhanceCommand() *cobra.Command {
	var (
		kf        kernelFlags
		output    string
		normalize bool
	)

	cmd := &cobra.Command{
		Use:   "enhance <field.npy>",
		Short: "Enhance an orientation field with the kernel",
		Long: `Convolve an orientation field of shape (X, Y, Z, N) with the kernel lookup
table and write the result with the same shape. N must match the number of
orientations the table is built on.`,
		Example: `  sekernel enhance odf.npy -o enhanced.npy
  sekernel enhance odf.npy -o enhanced.npy --normalize -n 60`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidateOutputPath(output, ".npy"); err != nil {
				return err
			}

			field, err := enhancement.ReadField(args[0])
			if err != nil {
				return err
			}
			c.Logger.Debug("field loaded", "path", args[0], "voxels", field.Voxels(), "orientations", field.NOrient)

			runner, err := c.newRunner(ctx, kf.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := kf.options(cmd, c.config)
			opts.Field = &field
			opts.Normalize = normalize

			sw := startStopwatch(c.Logger)
			sp := newSpinner(ctx, cmd.ErrOrStderr(), "Enhancing field")
			sp.start()
			result, err := runner.Execute(ctx, opts)
			if err != nil {
				if sp.interrupted() {
					sp.stop()
				} else {
					sp.fail("Enhancement failed")
				}
				return err
			}
			sp.succeed("Field enhanced")
			sw.done("Enhancement complete", "voxels", result.Enhanced.Voxels())

			if err := enhancement.WriteField(output, *result.Enhanced); err != nil {
				return err
			}

			out := newPrinter(cmd.OutOrStdout())
			out.kernelStats(result.Stats.Orientations, result.Stats.Extent, result.CacheInfo.KernelHit)
			out.detail("%d voxels", result.Enhanced.Voxels())
			out.file(output)
			return nil
		},
	}

	addKernelFlags(cmd, &kf)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output .npy file (required)")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "scale the output so its maximum matches the input's")
	cmd.MarkFlagRequired("output")

	return cmd
}
