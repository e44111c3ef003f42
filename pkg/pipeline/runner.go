package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skeletonize/pkg/cache"
	"github.com/matzehuels/skeletonize/pkg/codec"
	"github.com/matzehuels/skeletonize/pkg/errors"
	"github.com/matzehuels/skeletonize/pkg/observability"
	"github.com/matzehuels/skeletonize/pkg/thinning"
)

// keyType labels cache hook events emitted by the runner.
const keyType = "result"

// Runner executes runs with optional result caching.
//
// A Runner holds no per-run state; one instance may serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long stored results live; zero keeps them indefinitely.
	TTL time.Duration
}

// NewRunner creates a runner with TTL set to cache.TTLResult. A nil cache
// disables caching, a nil keyer selects cache.DefaultKeyer and a nil logger
// selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: cache.TTLResult}
}

// Execute reads opts.Input, thins it and writes the skeleton to opts.Output
// in the format implied by its extension. Nothing is written on failure.
func (r *Runner) Execute(ctx context.Context, opts Options) (res *Result, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	format, err := codec.FormatFromPath(opts.Output)
	if err != nil {
		return nil, err
	}

	defer func() { r.complete(ctx, opts.Input, res, err) }()

	readStart := time.Now()
	data, err := codec.ReadFile(opts.Input)
	if err != nil {
		return nil, err
	}
	readTime := time.Since(readStart)

	key := r.resultKey(data, format, opts)
	out, res, err := r.run(ctx, key, opts.Input, opts.Output, data, format, opts, true)
	if err != nil {
		return nil, err
	}

	writeStart := time.Now()
	if err := codec.WriteFile(opts.Output, out); err != nil {
		return nil, err
	}
	if !res.CacheHit {
		res.Stats.DecodeTime += readTime
		res.Stats.EncodeTime += time.Since(writeStart)
		res.Elapsed = res.Stats.elapsed(opts.IncludeIOTime)
		r.store(ctx, key, out, res, r.logger(opts))
	}

	r.logger(opts).Info("wrote skeleton",
		"output", opts.Output,
		"rounds", res.Rounds,
		"erased", res.Erased,
		"elapsed", res.Elapsed,
		"cached", res.CacheHit)
	return res, nil
}

// Skeletonize thins an in-memory image and returns it encoded in format.
// opts.Input, when set, only names the image in logs and error messages;
// opts.Output is ignored.
func (r *Runner) Skeletonize(ctx context.Context, data []byte, format codec.Format, opts Options) (out []byte, res *Result, err error) {
	name := opts.Input
	if name == "" {
		name = "input"
	}
	defer func() { r.complete(ctx, name, res, err) }()

	key := r.resultKey(data, format, opts)
	out, res, err = r.run(ctx, key, name, name, data, format, opts, true)
	if err != nil {
		return nil, nil, err
	}
	if !res.CacheHit {
		r.store(ctx, key, out, res, r.logger(opts))
	}
	return out, res, nil
}

// Thin thins an in-memory image for callers that only need the skeleton
// bitmap, such as graph export. Images the encoders reject, like empty
// ones, still succeed; their results are simply not cached. Cache entries
// are shared with PNG runs of Skeletonize.
func (r *Runner) Thin(ctx context.Context, data []byte, opts Options) (res *Result, err error) {
	name := opts.Input
	if name == "" {
		name = "input"
	}
	defer func() { r.complete(ctx, name, res, err) }()

	key := r.resultKey(data, codec.FormatPNG, opts)
	out, res, err := r.run(ctx, key, name, name, data, codec.FormatPNG, opts, false)
	if err != nil {
		return nil, err
	}
	if !res.CacheHit && out != nil {
		r.store(ctx, key, out, res, r.logger(opts))
	}
	return res, nil
}

func (r *Runner) resultKey(data []byte, format codec.Format, opts Options) string {
	return r.Keyer.ResultKey(cache.Hash(data), cache.ResultKeyOpts{
		Strict: opts.Strict,
		Format: string(format),
	})
}

// run thins data. name and target label the input and output in errors.
// When needOutput is false an encoding failure is not an error and the
// returned bytes are nil. run never stores; callers do once the result's
// stats are final.
func (r *Runner) run(ctx context.Context, key, name, target string, data []byte, format codec.Format, opts Options, needOutput bool) ([]byte, *Result, error) {
	logger := r.logger(opts)

	if !opts.Refresh {
		if out, res, ok := r.lookup(ctx, key, logger); ok {
			if opts.MaxPixels > 0 && int64(res.Width)*int64(res.Height) > opts.MaxPixels {
				return nil, nil, errors.New(errors.ErrCodeTooLarge,
					"%s is %d×%d (%d pixels, limit %d)", name, res.Width, res.Height,
					int64(res.Width)*int64(res.Height), opts.MaxPixels)
			}
			res.Elapsed = res.Stats.elapsed(opts.IncludeIOTime)
			logger.Debug("cache hit", "input", name, "key", key)
			return out, res, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	res := &Result{}
	decodeStart := time.Now()
	b, err := codec.DecodeBytes(name, data, codec.Options{Strict: opts.Strict, MaxPixels: opts.MaxPixels})
	if err != nil {
		return nil, nil, err
	}
	res.Stats.DecodeTime = time.Since(decodeStart)
	res.Width, res.Height = b.LogicalSize()
	res.ForegroundBefore = b.Count()

	hooks := observability.Thinning()
	hooks.OnRunStart(ctx, name, res.Width, res.Height)
	logger.Debug("decoded image",
		"input", name,
		"width", res.Width,
		"height", res.Height,
		"foreground", res.ForegroundBefore)

	engine := thinning.New(thinning.WithObserver(func(rd thinning.Round) {
		hooks.OnRound(ctx, rd.Index, rd.First, rd.Second)
		logger.Debug("round", "index", rd.Index, "first", rd.First, "second", rd.Second)
	}))
	thinned := engine.Run(b)
	res.Bitmap = thinned.Bitmap
	res.Rounds = thinned.Rounds
	res.Erased = thinned.Erased
	res.ForegroundAfter = thinned.Bitmap.Count()
	res.Stats.ThinTime = thinned.Elapsed

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	encodeStart := time.Now()
	var buf bytes.Buffer
	if err := codec.Write(&buf, res.Bitmap, format); err != nil {
		if !needOutput {
			logger.Debug("skeleton not encoded", "input", name, "err", err)
			res.Elapsed = res.Stats.elapsed(opts.IncludeIOTime)
			return nil, res, nil
		}
		return nil, nil, errors.Wrap(errors.GetCode(err), err, "%s was not properly saved", target)
	}
	res.Stats.EncodeTime = time.Since(encodeStart)
	res.Elapsed = res.Stats.elapsed(opts.IncludeIOTime)

	return buf.Bytes(), res, nil
}

// entry is the cached form of a result.
type entry struct {
	Output           []byte `json:"output"`
	Rounds           int    `json:"rounds"`
	Erased           int    `json:"erased"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	ForegroundBefore int    `json:"foreground_before"`
	ForegroundAfter  int    `json:"foreground_after"`
	Stats            Stats  `json:"stats"`
}

// lookup returns a cached result. Backend failures and undecodable entries
// are logged and treated as misses.
func (r *Runner) lookup(ctx context.Context, key string, logger *log.Logger) ([]byte, *Result, bool) {
	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		logger.Warn("cache lookup failed", "key", key, "err", err)
		return nil, nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		return nil, nil, false
	}
	b, _, err := codec.Read(bytes.NewReader(e.Output), codec.Options{})
	if err != nil {
		logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		return nil, nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)

	return e.Output, &Result{
		Bitmap:           b,
		Rounds:           e.Rounds,
		Erased:           e.Erased,
		Width:            e.Width,
		Height:           e.Height,
		ForegroundBefore: e.ForegroundBefore,
		ForegroundAfter:  e.ForegroundAfter,
		CacheHit:         true,
		Stats:            e.Stats,
	}, true
}

// store writes a fresh result to the cache. Failures are logged, never
// returned: the run itself succeeded.
func (r *Runner) store(ctx context.Context, key string, out []byte, res *Result, logger *log.Logger) {
	data, err := json.Marshal(entry{
		Output:           out,
		Rounds:           res.Rounds,
		Erased:           res.Erased,
		Width:            res.Width,
		Height:           res.Height,
		ForegroundBefore: res.ForegroundBefore,
		ForegroundAfter:  res.ForegroundAfter,
		Stats:            res.Stats,
	})
	if err != nil {
		logger.Warn("cache entry not stored", "key", key, "err", err)
		return
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, r.TTL)
	})
	if err != nil {
		logger.Warn("cache entry not stored", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) complete(ctx context.Context, input string, res *Result, err error) {
	rounds, elapsed := 0, time.Duration(0)
	if res != nil {
		rounds, elapsed = res.Rounds, res.Elapsed
	}
	observability.Thinning().OnRunComplete(ctx, input, rounds, elapsed, err)
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
