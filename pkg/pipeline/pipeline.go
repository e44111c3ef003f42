// Package pipeline drives a complete skeletonization: read the input image,
// thin it, encode the skeleton and write it out.
//
// The same [Runner] serves the CLI (file paths, [Runner.Execute]) and the
// HTTP server (in-memory bytes, [Runner.Skeletonize]), so caching, timing
// and hook calls behave identically on both surfaces.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Input:  "in.png",
//	    Output: "out.png",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(pipeline.Summary(os.Args[0], "in.png", res.Rounds, res.Elapsed))
//
// # Timing
//
// [Result.Elapsed] covers the thinning rounds only. With
// [Options.IncludeIOTime] set it also includes decoding and encoding.
package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skeletonize/pkg/bitmap"
	"github.com/matzehuels/skeletonize/pkg/errors"
)

// Exit statuses for missing required paths.
const (
	ExitMissingInput  = 2
	ExitMissingOutput = 3
)

// Options configures a single run.
type Options struct {
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`

	// Strict rejects images containing pixels that are neither pure black
	// nor pure white.
	Strict bool `json:"strict,omitempty"`

	// IncludeIOTime folds decode and encode time into Result.Elapsed.
	IncludeIOTime bool `json:"include_io_time,omitempty"`

	// Refresh bypasses cache lookups. Fresh results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// MaxPixels rejects inputs larger than this many pixels with
	// TOO_LARGE. Zero means no limit.
	MaxPixels int64 `json:"max_pixels,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Validate checks the paths needed by Runner.Execute. A missing input or
// output is reported as an *errors.UsageError carrying its exit status.
func (o Options) Validate() error {
	if o.Input == "" {
		return &errors.UsageError{Flag: "input", Message: "--input is required", ExitCode: ExitMissingInput}
	}
	if o.Output == "" {
		return &errors.UsageError{Flag: "output", Message: "--output is required", ExitCode: ExitMissingOutput}
	}
	if err := errors.ValidateImagePath(o.Input); err != nil {
		return err
	}
	return errors.ValidateImagePath(o.Output)
}

// Result describes a finished run.
type Result struct {
	// Bitmap is the padded skeleton.
	Bitmap *bitmap.Bitmap

	// Rounds counts every round, including the final one that erased nothing.
	Rounds int

	Erased  int
	Elapsed time.Duration

	// Logical dimensions of the input.
	Width, Height int

	ForegroundBefore int
	ForegroundAfter  int

	// CacheHit is set when the output came from the result cache. Rounds,
	// Erased and Stats then describe the run that produced the entry.
	CacheHit bool

	Stats Stats
}

// Stats breaks a run down by stage.
type Stats struct {
	DecodeTime time.Duration `json:"decode_time"`
	ThinTime   time.Duration `json:"thin_time"`
	EncodeTime time.Duration `json:"encode_time"`
}

// elapsed returns the figure reported as Result.Elapsed.
func (s Stats) elapsed(includeIO bool) time.Duration {
	if includeIO {
		return s.DecodeTime + s.ThinTime + s.EncodeTime
	}
	return s.ThinTime
}

// Summary formats the one-line run report:
//
//	<program>;<input>;<rounds>;<elapsed-ms>
//
// Program and input are reduced to their last path element.
func Summary(program, input string, rounds int, elapsed time.Duration) string {
	return fmt.Sprintf("%s;%s;%d;%d", filepath.Base(program), filepath.Base(input), rounds, elapsed.Milliseconds())
}
