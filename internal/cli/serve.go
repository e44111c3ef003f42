package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/skeletonize/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		maxUpload int64
		maxPixels int64
		useCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the thinning pipeline over HTTP",
		Long: `Start an HTTP server exposing the thinning pipeline.

  POST /v1/skeleton   image in, skeleton image out
  POST /v1/graph      image in, skeleton graph (JSON or DOT) out
  GET  /healthz       liveness check
  GET  /version       build information

The server stops gracefully on SIGINT.`,
		Example: `  skeletonize serve --addr :9000
  curl --data-binary @letter.png 'localhost:9000/v1/skeleton?format=bmp' > out.bmp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("max-upload") {
				maxUpload = c.Config.Server.MaxUploadBytes
			}
			if !cmd.Flags().Changed("max-pixels") {
				maxPixels = c.Config.Server.MaxPixels
			}
			useCache = flagOr(cmd, "cache", useCache, c.Config.Cache.Enabled)

			ctx := cmd.Context()
			runner := c.newRunner(ctx, useCache)
			defer runner.Close()

			srv := server.New(runner, loggerFromContext(ctx), server.Limits{
				MaxUploadBytes: maxUpload,
				MaxPixels:      maxPixels,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().Int64Var(&maxUpload, "max-upload", server.DefaultMaxUploadBytes, "maximum request body size in bytes")
	cmd.Flags().Int64Var(&maxPixels, "max-pixels", server.DefaultMaxPixels, "maximum decoded image size in pixels")
	cmd.Flags().BoolVar(&useCache, "cache", false, "reuse and store results in the result cache")

	return cmd
}
