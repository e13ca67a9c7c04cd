package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sekernel/pkg/api"
)

// serveCommand creates the serve command for the HTTP query service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		kf   kernelFlags
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve kernel queries over HTTP",
		Long: `Build or load the lookup table, then answer kernel queries over HTTP until
interrupted. See GET /v1/kernel for the table the server holds.`,
		Example: `  sekernel serve --addr :8080 -n 60`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, kf.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			sw := startStopwatch(c.Logger)
			k, err := runner.Kernel(ctx, kf.options(cmd, c.config))
			if err != nil {
				return err
			}
			sw.done("Kernel ready", "cached", k.CacheHit())

			out := newPrinter(cmd.OutOrStdout())
			out.kernelStats(k.Sphere().Len(), k.Extent().N, k.CacheHit())
			out.info("Listening on %s", addr)

			return api.NewServer(k, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	addKernelFlags(cmd, &kf)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
