package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skeletonize/pkg/errors"
	"github.com/matzehuels/skeletonize/pkg/pipeline"
)

// runCommand creates the run command, which thins one image file.
func (c *CLI) runCommand() *cobra.Command {
	var (
		opts     pipeline.Options
		useCache bool
	)

	cmd := &cobra.Command{
		Use:   "run --input FILE --output FILE",
		Short: "Thin an image and write its skeleton",
		Long: `Thin the black shapes of a black and white image down to a one-pixel-wide
skeleton and write it to the output file. The output format follows the
output extension: .png, .gif, .bmp, .tif or .tiff.

On success a single line is printed:

  <program>;<input>;<rounds>;<elapsed-ms>

Exit status is 2 when --input is missing, 3 when --output is missing and 1
for any other failure.`,
		Example: `  skeletonize run --input letter.png --output letter-skeleton.png
  skeletonize run -i scan.tif -o scan.bmp --strict --include-io`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Strict = flagOr(cmd, "strict", opts.Strict, c.Config.Run.Strict)
			opts.IncludeIOTime = flagOr(cmd, "include-io", opts.IncludeIOTime, c.Config.Run.IncludeIO)
			useCache = flagOr(cmd, "cache", useCache, c.Config.Cache.Enabled)

			if err := opts.Validate(); err != nil {
				if errors.IsUsage(err) {
					cmd.PrintErrln(cmd.UsageString())
				}
				return err
			}
			return c.runRun(cmd, opts, useCache)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "input image file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output image file")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject pixels that are neither pure black nor pure white")
	cmd.Flags().BoolVar(&opts.IncludeIOTime, "include-io", false, "include decode and encode time in the reported elapsed time")
	cmd.Flags().BoolVar(&useCache, "cache", false, "reuse and store results in the result cache")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results (fresh results are still stored)")
	completeFiles(cmd, "input", inputImageExtensions)
	completeFiles(cmd, "output", outputImageExtensions)

	return cmd
}

func (c *CLI) runRun(cmd *cobra.Command, opts pipeline.Options, useCache bool) error {
	ctx := cmd.Context()
	opts.Logger = loggerFromContext(ctx)

	runner := c.newRunner(ctx, useCache)
	defer runner.Close()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	opts.Logger.Debug("run complete",
		"size", fmt.Sprintf("%dx%d", res.Width, res.Height),
		"foreground", fmt.Sprintf("%d→%d", res.ForegroundBefore, res.ForegroundAfter),
		"decode", res.Stats.DecodeTime,
		"thin", res.Stats.ThinTime,
		"encode", res.Stats.EncodeTime,
		"cached", res.CacheHit)

	fmt.Fprintln(cmd.OutOrStdout(), pipeline.Summary(programName(), opts.Input, res.Rounds, res.Elapsed))
	return nil
}
