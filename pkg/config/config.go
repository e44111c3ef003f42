// Package config loads skeletonize's TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/skeletonize/config.toml (falling back
// to ~/.config). Every key is optional:
//
//	[log]
//	level = "info"          # debug, info, warn, error
//
//	[run]
//	strict = false          # reject non black/white pixels
//	include_io = false      # count decode/encode time in the summary
//
//	[cache]
//	enabled = false
//	backend = "file"        # file, redis or mongo
//	dir = ""                # file backend; defaults to $XDG_CACHE_HOME/skeletonize
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
//	ttl = "168h"
//
//	[server]
//	addr = ":8080"
//	max_upload_bytes = 33554432
//	max_pixels = 67108864
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/skeletonize/pkg/errors"
)

const appName = "skeletonize"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the parsed contents of config.toml.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Run    RunConfig    `toml:"run"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LogConfig holds the [log] table.
type LogConfig struct {
	Level string `toml:"level"`
}

// RunConfig holds defaults for the run and graph commands.
type RunConfig struct {
	Strict    bool `toml:"strict"`
	IncludeIO bool `toml:"include_io"`
}

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	Enabled   bool          `toml:"enabled"`
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	MongoURI  string        `toml:"mongo_uri"`
	TTL       time.Duration `toml:"ttl"`
}

// ServerConfig holds the serve command's listen address and request limits.
type ServerConfig struct {
	Addr           string `toml:"addr"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
	MaxPixels      int64  `toml:"max_pixels"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			MongoURI:  "mongodb://localhost:27017",
			TTL:       7 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 32 << 20,
			MaxPixels:      64 << 20,
		},
	}
}

// Load reads the file at DefaultPath. A missing file yields Default().
func Load() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path on top of Default(). Unlike Load, the file must exist.
// Unknown keys are rejected so typos do not pass silently.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s is not valid TOML", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "log.level: %q is not a log level", c.Log.Level)
	}
	switch c.Cache.Backend {
	case BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if !strings.HasPrefix(c.Cache.MongoURI, "mongodb://") && !strings.HasPrefix(c.Cache.MongoURI, "mongodb+srv://") {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.mongo_uri: %q is not a mongodb:// URI", c.Cache.MongoURI)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend: %q (must be one of: file, redis, mongo)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_upload_bytes must be positive")
	}
	if c.Server.MaxPixels <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_pixels must be positive")
	}
	return nil
}

// LogLevel returns the parsed log level, or info when unset or invalid.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// DefaultPath returns $XDG_CONFIG_HOME/skeletonize/config.toml, falling
// back to ~/.config/skeletonize/config.toml.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the file cache directory: cache.dir when set, otherwise
// $XDG_CACHE_HOME/skeletonize or ~/.cache/skeletonize.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
