package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sekernel/pkg/render"
)

// plotCommand creates the plot command for rendering table slices.
func (c *CLI) plotCommand() *cobra.Command {
	var (
		kf      kernelFlags
		output  string
		formats string
		sliceV  int
		sliceR  int
		axis    string
		offset  int
		title   string
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a heat map of one lookup table slice",
		Long: `Render the plane of the lookup table cell (v, r) where one spatial offset is
held fixed. The output extension selects the format unless --format is given;
with several formats one file is written per format.`,
		Example: `  sekernel plot -o slice.png
  sekernel plot -o slice --format svg,pdf --axis x --v 3 --r 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			base, ext := output, strings.TrimPrefix(filepath.Ext(output), ".")
			if render.ValidFormats[ext] {
				base = strings.TrimSuffix(output, "."+ext)
				if formats == "" {
					formats = ext
				}
			}

			a, err := render.ParseAxis(axis)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, kf.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := kf.options(cmd, c.config)
			opts.Formats = parseFormats(formats)
			opts.SliceV = sliceV
			opts.SliceR = sliceR
			opts.Axis = a
			opts.Offset = offset
			opts.Title = title

			sw := startStopwatch(c.Logger)
			result, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}
			sw.done("Rendered slice", "formats", opts.Formats)

			out := newPrinter(cmd.OutOrStdout())
			out.success("Rendered %s", render.Title(sliceV, sliceR, opts.Axis, offset))
			out.kernelStats(result.Stats.Orientations, result.Stats.Extent, result.CacheInfo.KernelHit)
			for _, format := range opts.Formats {
				path := base + "." + format
				if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				out.file(path)
			}
			return nil
		},
	}

	addKernelFlags(cmd, &kf)
	cmd.Flags().StringVarP(&output, "output", "o", "slice.png", "output file")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output formats: png, svg, pdf (comma-separated)")
	cmd.Flags().IntVar(&sliceV, "v", 0, "index of the target orientation")
	cmd.Flags().IntVar(&sliceR, "r", 0, "index of the source orientation")
	cmd.Flags().StringVar(&axis, "axis", string(render.AxisZ), "axis held fixed: x, y or z")
	cmd.Flags().IntVar(&offset, "offset", 0, "offset along the fixed axis")
	cmd.Flags().StringVar(&title, "title", "", "plot title")

	return cmd
}
