package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skeletonize/pkg/codec"
	"github.com/matzehuels/skeletonize/pkg/errors"
	"github.com/matzehuels/skeletonize/pkg/pipeline"
	"github.com/matzehuels/skeletonize/pkg/skelgraph"
)

// graphExtensions are the export formats of the graph command.
var graphExtensions = []string{".json", ".dot", ".svg"}

// graphCommand creates the graph command, which exports the skeleton as a
// node/edge graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		opts     pipeline.Options
		useCache bool
	)

	cmd := &cobra.Command{
		Use:   "graph --input FILE --output FILE",
		Short: "Export the skeleton as a graph of endpoints, junctions and curves",
		Long: `Thin the input image, then trace the skeleton into a graph: endpoints,
junctions and isolated pixels become nodes and the curves between them become
edges. The output extension picks the format:

  .json  nodes and edges with pixel paths
  .dot   Graphviz source
  .svg   rendered with the embedded Graphviz`,
		Example: `  skeletonize graph -i letter.png -o letter.svg`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Strict = flagOr(cmd, "strict", opts.Strict, c.Config.Run.Strict)
			useCache = flagOr(cmd, "cache", useCache, c.Config.Cache.Enabled)

			if err := opts.Validate(); err != nil {
				if errors.IsUsage(err) {
					cmd.PrintErrln(cmd.UsageString())
				}
				return err
			}
			if err := errors.ValidateExtension(opts.Output, graphExtensions); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), opts, useCache)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "input image file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (.json, .dot or .svg)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject pixels that are neither pure black nor pure white")
	cmd.Flags().BoolVar(&useCache, "cache", false, "reuse and store thinning results in the result cache")
	completeFiles(cmd, "input", inputImageExtensions)
	completeFiles(cmd, "output", graphOutputExtensions)

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, opts pipeline.Options, useCache bool) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger
	prog := newProgress(logger)

	data, err := codec.ReadFile(opts.Input)
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, useCache)
	defer runner.Close()

	res, err := runner.Thin(ctx, data, opts)
	if err != nil {
		return err
	}

	g := skelgraph.Extract(res.Bitmap)
	prog.done(fmt.Sprintf("Extracted %d nodes and %d edges", len(g.Nodes), len(g.Edges)))

	out, err := encodeGraph(ctx, g, strings.ToLower(filepath.Ext(opts.Output)))
	if err != nil {
		return err
	}
	if err := codec.WriteFile(opts.Output, out); err != nil {
		return err
	}

	printSuccess("Skeleton graph of %s", filepath.Base(opts.Input))
	printStats(len(g.Nodes), len(g.Edges), res.CacheHit)
	printFile(opts.Output)
	return nil
}

func encodeGraph(ctx context.Context, g *skelgraph.Graph, ext string) ([]byte, error) {
	switch ext {
	case ".json":
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncode, err, "encode graph")
		}
		return append(data, '\n'), nil
	case ".dot":
		return []byte(skelgraph.ToDOT(g)), nil
	default:
		spinner := newSpinnerWithContext(ctx, "Rendering SVG...")
		spinner.Start()
		svg, err := skelgraph.RenderSVG(ctx, skelgraph.ToDOT(g))
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return nil, errors.Wrap(errors.ErrCodeEncode, err, "render graph")
		}
		spinner.Stop()
		return svg, nil
	}
}
