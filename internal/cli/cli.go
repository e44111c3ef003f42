package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skeletonize/pkg/buildinfo"
	"github.com/matzehuels/skeletonize/pkg/cache"
	"github.com/matzehuels/skeletonize/pkg/config"
	"github.com/matzehuels/skeletonize/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "skeletonize"

// redisKeyPrefix scopes keys in a Redis instance shared with other tools.
const redisKeyPrefix = appName + ":"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a CLI whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Reduce black and white images to one-pixel-wide skeletons",
		Long: `skeletonize thins the black shapes of a two-colour image until only a
one-pixel-wide skeleton remains, preserving connectivity and line endpoints.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/skeletonize/config.toml)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration, applies the log level and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.Config = cfg

	level := cfg.LogLevel()
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, useCache bool) *pipeline.Runner {
	store, keyer := c.newCache(ctx, useCache)
	r := pipeline.NewRunner(store, keyer, c.Logger)
	r.TTL = c.Config.Cache.TTL
	return r
}

// newCache opens the configured backend. An unusable backend degrades to no
// caching with a warning; caching never fails a run.
func (c *CLI) newCache(ctx context.Context, enabled bool) (cache.Cache, cache.Keyer) {
	if !enabled {
		return cache.NewNullCache(), nil
	}

	switch c.Config.Cache.Backend {
	case config.BackendRedis:
		store, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.Config.Cache.RedisAddr})
		if err != nil {
			c.Logger.Warn("cache disabled", "backend", "redis", "err", err)
			return cache.NewNullCache(), nil
		}
		return store, cache.NewScopedKeyer(nil, redisKeyPrefix)
	case config.BackendMongo:
		store, err := cache.NewMongoCache(ctx, cache.MongoConfig{URI: c.Config.Cache.MongoURI})
		if err != nil {
			c.Logger.Warn("cache disabled", "backend", "mongo", "err", err)
			return cache.NewNullCache(), nil
		}
		return store, nil
	default:
		dir, err := c.Config.CacheDir()
		if err == nil {
			var store *cache.FileCache
			if store, err = cache.NewFileCache(dir); err == nil {
				return store, nil
			}
		}
		c.Logger.Warn("cache disabled", "backend", "file", "err", err)
		return cache.NewNullCache(), nil
	}
}

// flagOr returns the flag value when it was set explicitly, else fallback.
func flagOr(cmd *cobra.Command, name string, value, fallback bool) bool {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

// programName is the executable name reported in summary lines.
func programName() string {
	if len(os.Args) > 0 {
		return os.Args[0]
	}
	return appName
}
