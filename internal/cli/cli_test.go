package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/matzehuels/skeletonize/pkg/bitmap"
	"github.com/matzehuels/skeletonize/pkg/codec"
)

// isolate points config and cache lookups at temporary directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func writeImage(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := codec.Encode(path, bitmap.FromRows(rows...)); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// execute runs the CLI and returns the exit status with captured streams.
func execute(ctx context.Context, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Execute(ctx, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestFlagOr(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	cmd := c.runCommand()
	if err := cmd.Flags().Parse([]string{"--strict=false"}); err != nil {
		t.Fatal(err)
	}

	if got := flagOr(cmd, "strict", false, true); got {
		t.Error("explicit --strict=false should win over config")
	}
	if got := flagOr(cmd, "include-io", false, true); !got {
		t.Error("unset --include-io should fall back to config")
	}
}

func TestNewCacheDisabled(t *testing.T) {
	isolate(t)
	c := New(&bytes.Buffer{}, LogInfo)
	store, keyer := c.newCache(context.Background(), false)
	if _, _, err := store.Get(context.Background(), "k"); err != nil {
		t.Errorf("Get on disabled cache: %v", err)
	}
	if keyer != nil {
		t.Error("disabled cache should use the default keyer")
	}
}

func TestNewCacheRedisFallback(t *testing.T) {
	isolate(t)
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.Config.Cache.Backend = "redis"
	c.Config.Cache.RedisAddr = "127.0.0.1:1"

	store, _ := c.newCache(context.Background(), true)
	defer store.Close()
	if _, ok, err := store.Get(context.Background(), "k"); ok || err != nil {
		t.Errorf("fallback cache Get = %v, %v", ok, err)
	}
	if !bytes.Contains(logs.Bytes(), []byte("cache disabled")) {
		t.Errorf("expected a warning, got %q", logs.String())
	}
}
