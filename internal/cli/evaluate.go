package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sekernel/pkg/kernel"
)

// evaluateCommand creates the evaluate command for a single K2 value.
func (c *CLI) evaluateCommand() *cobra.Command {
	var (
		pf         paramFlags
		x, y, r, v []float64
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate the kernel between two positions and orientations",
		Long: `Evaluate K2(x, y, r, v): the kernel value linking position y with
orientation r to position x with orientation v. Orientations are normalised.
No lookup table is built.`,
		Example: `  sekernel evaluate --x 1,0,0 --r 1,0,0 --v 0,0,1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config
			pf.apply(cmd, &cfg.Kernel)
			params := cfg.Kernel.Params()
			if err := params.Validate(); err != nil {
				return err
			}

			xv, err := parseVec("x", x)
			if err != nil {
				return err
			}
			yv, err := parseVec("y", y)
			if err != nil {
				return err
			}
			rv, err := parseOrientation("r", r)
			if err != nil {
				return err
			}
			vv, err := parseOrientation("v", v)
			if err != nil {
				return err
			}

			value := kernel.NewEvaluator(params).K2(xv, yv, rv, vv)
			c.Logger.Debug("evaluated", "params", params, "x", xv, "y", yv, "r", rv, "v", vv)
			fmt.Fprintf(cmd.OutOrStdout(), "%.17g\n", value)
			return nil
		},
	}

	addParamFlags(cmd, &pf)
	cmd.Flags().Float64SliceVar(&x, "x", []float64{0, 0, 0}, "target position")
	cmd.Flags().Float64SliceVar(&y, "y", []float64{0, 0, 0}, "source position")
	cmd.Flags().Float64SliceVar(&r, "r", []float64{0, 0, 1}, "source orientation")
	cmd.Flags().Float64SliceVar(&v, "v", []float64{0, 0, 1}, "target orientation")

	return cmd
}
