package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skeletonize/pkg/bitmap"
	"github.com/matzehuels/skeletonize/pkg/cache"
	"github.com/matzehuels/skeletonize/pkg/codec"
	"github.com/matzehuels/skeletonize/pkg/errors"
	"github.com/matzehuels/skeletonize/pkg/observability"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// writeImage encodes rows (see bitmap.FromRows) to dir/name.
func writeImage(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := codec.Encode(path, bitmap.FromRows(rows...)); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantExit int
		wantCode errors.Code
	}{
		{"ok", Options{Input: "in.png", Output: "out.png"}, 0, ""},
		{"missing input", Options{Output: "out.png"}, ExitMissingInput, errors.ErrCodeUsage},
		{"missing output", Options{Input: "in.png"}, ExitMissingOutput, errors.ErrCodeUsage},
		{"missing both", Options{}, ExitMissingInput, errors.ErrCodeUsage},
		{"bad path", Options{Input: "in\x00.png", Output: "out.png"}, 1, errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantExit == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if got := errors.ExitCode(err, 1); got != tt.wantExit {
				t.Errorf("ExitCode = %d, want %d", got, tt.wantExit)
			}
			if tt.wantCode == errors.ErrCodeUsage {
				if _, ok := err.(*errors.UsageError); !ok {
					t.Errorf("err = %T, want *errors.UsageError", err)
				}
			} else if !errors.Is(err, tt.wantCode) {
				t.Errorf("err = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		program, input string
		rounds         int
		elapsed        time.Duration
		want           string
	}{
		{"/usr/local/bin/skeletonize", "images/letter.png", 7, 42 * time.Millisecond, "skeletonize;letter.png;7;42"},
		{"skeletonize", "in.png", 1, 999 * time.Microsecond, "skeletonize;in.png;1;0"},
		{"./skeletonize", "/tmp/a/b/c.bmp", 12, 2 * time.Second, "skeletonize;c.bmp;12;2000"},
	}
	for _, tt := range tests {
		if got := Summary(tt.program, tt.input, tt.rounds, tt.elapsed); got != tt.want {
			t.Errorf("Summary(%q, %q) = %q, want %q", tt.program, tt.input, got, tt.want)
		}
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatalf("NewRunner(nil, nil, nil) left nil fields: %+v", r)
	}
	if _, ok := r.Cache.(cache.NullCache); !ok {
		t.Errorf("default cache = %T, want cache.NullCache", r.Cache)
	}
}

func TestExecuteSquare(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "square.png", "###", "###", "###")
	out := filepath.Join(dir, "out.png")

	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{Input: in, Output: out})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Rounds != 2 || res.Erased != 8 {
		t.Errorf("rounds=%d erased=%d, want 2 and 8", res.Rounds, res.Erased)
	}
	if res.Width != 3 || res.Height != 3 {
		t.Errorf("size = %dx%d, want 3x3", res.Width, res.Height)
	}
	if res.ForegroundBefore != 9 || res.ForegroundAfter != 1 {
		t.Errorf("foreground %d -> %d, want 9 -> 1", res.ForegroundBefore, res.ForegroundAfter)
	}
	if res.CacheHit {
		t.Error("CacheHit with caching disabled")
	}
	if res.Elapsed != res.Stats.ThinTime {
		t.Errorf("Elapsed = %v, want ThinTime %v", res.Elapsed, res.Stats.ThinTime)
	}

	written, err := codec.Decode(out, codec.Options{Strict: true})
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := []string{"...", ".#.", "..."}
	if got := written.Rows(); !slices.Equal(got, want) {
		t.Errorf("output rows = %q, want %q", got, want)
	}
	if !written.Equal(res.Bitmap) {
		t.Error("written output differs from Result.Bitmap")
	}
}

func TestExecuteIncludeIOTime(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", "#####", "#####", "#####")

	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{
		Input:         in,
		Output:        filepath.Join(dir, "out.gif"),
		IncludeIOTime: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := res.Stats.DecodeTime + res.Stats.ThinTime + res.Stats.EncodeTime
	if res.Elapsed != want {
		t.Errorf("Elapsed = %v, want %v", res.Elapsed, want)
	}
}

func TestExecuteErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeImage(t, dir, "good.png", "##", "##")

	gray := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range gray.Pix {
		gray.Pix[i] = 0xff
	}
	gray.Set(1, 1, color.RGBA{128, 128, 128, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		t.Fatal(err)
	}
	grayPath := filepath.Join(dir, "gray.png")
	if err := os.WriteFile(grayPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
		wantPath string
	}{
		{"missing input", Options{Input: filepath.Join(dir, "nope.png"), Output: filepath.Join(dir, "o1.png")}, errors.ErrCodeFileNotFound, "nope.png"},
		{"unsupported output", Options{Input: good, Output: filepath.Join(dir, "o2.jpg")}, errors.ErrCodeInvalidFormat, "o2.jpg"},
		{"strict", Options{Input: grayPath, Output: filepath.Join(dir, "o3.png"), Strict: true}, errors.ErrCodeNonBinary, "gray.png"},
		{"unwritable output", Options{Input: good, Output: filepath.Join(dir, "no", "such", "o4.png")}, errors.ErrCodeEncode, "o4.png"},
	}
	r := NewRunner(nil, nil, quietLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), tt.opts)
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("Execute() error = %v, want %s", err, tt.wantCode)
			}
			if !strings.Contains(err.Error(), tt.wantPath) {
				t.Errorf("error %q does not name %s", err, tt.wantPath)
			}
			if _, statErr := os.Stat(tt.opts.Output); !os.IsNotExist(statErr) {
				t.Errorf("output %s exists after failed run", tt.opts.Output)
			}
		})
	}
}

func TestExecuteLenientAcceptsGray(t *testing.T) {
	dir := t.TempDir()
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.Pix = []uint8{0, 128, 255}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	in := filepath.Join(dir, "gray.png")
	if err := os.WriteFile(in, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewRunner(nil, nil, quietLogger()).Execute(context.Background(), Options{
		Input:  in,
		Output: filepath.Join(dir, "out.png"),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.ForegroundBefore != 1 {
		t.Errorf("ForegroundBefore = %d, want 1 (only pure black counts)", res.ForegroundBefore)
	}
}

func TestExecuteCanceled(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", "#")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, quietLogger()).Execute(ctx, Options{Input: in, Output: filepath.Join(dir, "out.png")})
	if err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestExecuteCache(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	in := writeImage(t, dir, "rect.png",
		"#########",
		"#########",
		"#########",
		"#########",
		"#########",
	)
	r := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	first, err := r.Execute(ctx, Options{Input: in, Output: filepath.Join(dir, "a.png")})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Fatal("first run should miss")
	}

	second, err := r.Execute(ctx, Options{Input: in, Output: filepath.Join(dir, "b.png")})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("second run should hit")
	}
	if second.Rounds != first.Rounds || second.Erased != first.Erased || second.Elapsed != first.Elapsed {
		t.Errorf("cached result %+v differs from original %+v", second, first)
	}
	if !second.Bitmap.Equal(first.Bitmap) {
		t.Error("cached bitmap differs from original")
	}
	a, _ := os.ReadFile(filepath.Join(dir, "a.png"))
	b, _ := os.ReadFile(filepath.Join(dir, "b.png"))
	if !bytes.Equal(a, b) {
		t.Error("cached output bytes differ from original")
	}

	strict, err := r.Execute(ctx, Options{Input: in, Output: filepath.Join(dir, "c.png"), Strict: true})
	if err != nil {
		t.Fatal(err)
	}
	if strict.CacheHit {
		t.Error("strict run should not reuse a lenient entry")
	}

	refreshed, err := r.Execute(ctx, Options{Input: in, Output: filepath.Join(dir, "d.png"), Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

type recordingHooks struct {
	observability.NoopThinningHooks
	starts, rounds, completes int
	lastErr                   error
}

func (h *recordingHooks) OnRunStart(context.Context, string, int, int) { h.starts++ }
func (h *recordingHooks) OnRound(context.Context, int, int, int)       { h.rounds++ }
func (h *recordingHooks) OnRunComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	h.completes++
	h.lastErr = err
}

func TestExecuteFiresHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetThinningHooks(hooks)
	t.Cleanup(observability.Reset)

	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", "###", "###", "###")
	r := NewRunner(nil, nil, quietLogger())

	if _, err := r.Execute(context.Background(), Options{Input: in, Output: filepath.Join(dir, "out.png")}); err != nil {
		t.Fatal(err)
	}
	if hooks.starts != 1 || hooks.rounds != 2 || hooks.completes != 1 {
		t.Errorf("hooks: starts=%d rounds=%d completes=%d, want 1/2/1", hooks.starts, hooks.rounds, hooks.completes)
	}

	_, err := r.Execute(context.Background(), Options{Input: filepath.Join(dir, "missing.png"), Output: filepath.Join(dir, "out.png")})
	if err == nil {
		t.Fatal("expected error")
	}
	if hooks.completes != 2 || hooks.lastErr == nil {
		t.Errorf("failed run should report completion with its error, got completes=%d err=%v", hooks.completes, hooks.lastErr)
	}
}

func TestSkeletonize(t *testing.T) {
	var in bytes.Buffer
	if err := codec.Write(&in, bitmap.FromRows("#", "#", "#"), codec.FormatPNG); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, quietLogger())
	out, res, err := r.Skeletonize(context.Background(), in.Bytes(), codec.FormatBMP, Options{})
	if err != nil {
		t.Fatalf("Skeletonize() error = %v", err)
	}
	if res.Rounds != 1 || res.Erased != 0 {
		t.Errorf("vertical line: rounds=%d erased=%d, want 1 and 0", res.Rounds, res.Erased)
	}
	b, format, err := codec.Read(bytes.NewReader(out), codec.Options{Strict: true})
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "bmp" {
		t.Errorf("output format = %q, want bmp", format)
	}
	if got := b.Rows(); !slices.Equal(got, []string{"#", "#", "#"}) {
		t.Errorf("rows = %q", got)
	}

	_, _, err = r.Skeletonize(context.Background(), []byte("garbage"), codec.FormatPNG, Options{})
	if !errors.Is(err, errors.ErrCodeDecode) {
		t.Errorf("garbage input: err = %v, want %s", err, errors.ErrCodeDecode)
	}
}

func TestExecuteCachedIncludeIOTime(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	in := writeImage(t, dir, "bar.png", "#####", "#####", "#####")
	r := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	first, err := r.Execute(ctx, Options{Input: in, Output: filepath.Join(dir, "a.png"), IncludeIOTime: true})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, Options{Input: in, Output: filepath.Join(dir, "b.png"), IncludeIOTime: true})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("second run should hit")
	}
	if second.Stats != first.Stats {
		t.Errorf("cached stats %+v, want the fresh run's %+v", second.Stats, first.Stats)
	}
	if second.Elapsed != first.Elapsed {
		t.Errorf("cached elapsed %v, want %v including file I/O", second.Elapsed, first.Elapsed)
	}
}

func TestThin(t *testing.T) {
	var in bytes.Buffer
	if err := codec.Write(&in, bitmap.FromRows("###", "###", "###"), codec.FormatPNG); err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	res, err := r.Thin(ctx, in.Bytes(), Options{})
	if err != nil {
		t.Fatalf("Thin() error = %v", err)
	}
	if got := res.Bitmap.Rows(); !slices.Equal(got, []string{"...", ".#.", "..."}) {
		t.Errorf("rows = %q", got)
	}

	// Thin and PNG Skeletonize share cache entries.
	_, again, err := r.Skeletonize(ctx, in.Bytes(), codec.FormatPNG, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit {
		t.Error("Skeletonize should reuse the entry stored by Thin")
	}
}

func TestRunWithoutOutputToleratesEncodeFailure(t *testing.T) {
	var in bytes.Buffer
	if err := codec.Write(&in, bitmap.FromRows("#"), codec.FormatPNG); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, quietLogger())
	unencodable := codec.Format("none")

	out, res, err := r.run(context.Background(), "k", "in", "in", in.Bytes(), unencodable, Options{}, false)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if out != nil || res == nil || res.Rounds != 1 {
		t.Errorf("run() = %v bytes, %+v", len(out), res)
	}

	_, _, err = r.run(context.Background(), "k", "in", "in", in.Bytes(), unencodable, Options{}, true)
	if err == nil {
		t.Error("run() with needOutput should fail when encoding fails")
	}
}

func TestMaxPixels(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	in := writeImage(t, dir, "bar.png", "####", "####")
	r := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	if _, err := r.Execute(ctx, Options{Input: in, Output: filepath.Join(dir, "a.png"), MaxPixels: 8}); err != nil {
		t.Fatalf("at the limit: %v", err)
	}

	// A cached result must not bypass a tighter limit.
	for _, refresh := range []bool{false, true} {
		_, err := r.Execute(ctx, Options{Input: in, Output: filepath.Join(dir, "b.png"), MaxPixels: 7, Refresh: refresh})
		if !errors.Is(err, errors.ErrCodeTooLarge) {
			t.Errorf("refresh=%v: err = %v, want %s", refresh, err, errors.ErrCodeTooLarge)
		}
	}
}
