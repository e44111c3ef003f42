package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skeletonize/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by default")
	}
	if cfg.LogLevel() != log.InfoLevel {
		t.Errorf("LogLevel() = %v, want info", cfg.LogLevel())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[run]
strict = true
include_io = true

[cache]
enabled = true
backend = "redis"
redis_addr = "cache:6379"
ttl = "90m"

[server]
addr = "127.0.0.1:9000"
max_pixels = 1000000
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", cfg.LogLevel())
	}
	if !cfg.Run.Strict || !cfg.Run.IncludeIO {
		t.Errorf("run = %+v", cfg.Run)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("ttl = %v, want 90m", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.MaxPixels != 1000000 {
		t.Errorf("server.max_pixels = %d", cfg.Server.MaxPixels)
	}
	if cfg.Server.MaxUploadBytes != Default().Server.MaxUploadBytes {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode errors.Code
		wantText string
	}{
		{"syntax", "[log\nlevel=", errors.ErrCodeInvalidConfig, "not valid TOML"},
		{"unknown key", "[run]\nstrickt = true\n", errors.ErrCodeInvalidConfig, "run.strickt"},
		{"bad level", "[log]\nlevel = \"loud\"\n", errors.ErrCodeInvalidConfig, "log.level"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig, "cache.backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\nredis_addr = \"\"\n", errors.ErrCodeInvalidConfig, "redis_addr"},
		{"mongo bad uri", "[cache]\nbackend = \"mongo\"\nmongo_uri = \"localhost:27017\"\n", errors.ErrCodeInvalidConfig, "mongo_uri"},
		{"negative ttl", "[cache]\nttl = \"-1h\"\n", errors.ErrCodeInvalidConfig, "ttl"},
		{"zero upload", "[server]\nmax_upload_bytes = 0\n", errors.ErrCodeInvalidConfig, "max_upload_bytes"},
		{"zero pixels", "[server]\nmax_pixels = 0\n", errors.ErrCodeInvalidConfig, "max_pixels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("LoadFile() error = %v, want %s", err, tt.wantCode)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q does not mention %q", err, tt.wantText)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	_, err := LoadFile(path)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("LoadFile(missing) = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() without a file = %+v, want defaults", cfg)
	}
}

func TestLoadDefaultFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[run]\nstrict = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Run.Strict {
		t.Error("Load() ignored the file under XDG_CONFIG_HOME")
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")

	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg/config", appName, "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}

	cfg := Default()
	dir, err := cfg.CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg/cache", appName); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}

	cfg.Cache.Dir = "/custom"
	if dir, _ := cfg.CacheDir(); dir != "/custom" {
		t.Errorf("CacheDir() with cache.dir = %q, want /custom", dir)
	}
}

func TestPathsWithoutXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	path, _ := DefaultPath()
	if want := filepath.Join(home, ".config", appName, "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
	dir, _ := Default().CacheDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}
}
