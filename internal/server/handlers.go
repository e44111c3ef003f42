package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skeletonize/pkg/buildinfo"
	"github.com/matzehuels/skeletonize/pkg/codec"
	"github.com/matzehuels/skeletonize/pkg/errors"
	"github.com/matzehuels/skeletonize/pkg/pipeline"
	"github.com/matzehuels/skeletonize/pkg/skelgraph"
)

// Response headers describing a thinning run.
const (
	HeaderRounds  = "X-Skeleton-Rounds"
	HeaderErased  = "X-Skeleton-Erased"
	HeaderElapsed = "X-Skeleton-Elapsed-Ms"
	HeaderCache   = "X-Skeleton-Cache"
)

// uploadName labels request bodies in log lines and error messages.
const uploadName = "upload"

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleSkeleton(w http.ResponseWriter, r *http.Request) {
	format := codec.FormatPNG
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := codec.ParseFormat(v)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		format = f
	}

	data, opts, err := s.readImage(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, res, err := s.runner.Skeletonize(r.Context(), data, format, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setRunHeaders(w, res)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
	s.logger.Debug("skeleton served", "rounds", res.Rounds, "bytes", len(out), "id", RequestIDFrom(r.Context()))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if err := errors.ValidateFormat(format, []string{"json", "dot"}); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, opts, err := s.readImage(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Thin(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setRunHeaders(w, res)

	g := skelgraph.Extract(res.Bitmap)
	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, skelgraph.ToDOT(g))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// readImage reads the request body and the options shared by both
// thinning routes.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) ([]byte, pipeline.Options, error) {
	opts := pipeline.Options{
		Input:     uploadName,
		MaxPixels: s.limits.MaxPixels,
		Logger:    s.logger.With("id", RequestIDFrom(r.Context())),
	}
	if v := r.URL.Query().Get("strict"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, opts, errors.New(errors.ErrCodeInvalidInput, "strict must be a boolean, got %q", v)
		}
		opts.Strict = b
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.limits.MaxUploadBytes))
	if err != nil {
		if tooLarge, ok := err.(*http.MaxBytesError); ok {
			return nil, opts, errors.New(errors.ErrCodeTooLarge, "image exceeds %d bytes", tooLarge.Limit)
		}
		return nil, opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body could not be read")
	}
	if len(data) == 0 {
		return nil, opts, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return data, opts, nil
}

func setRunHeaders(w http.ResponseWriter, res *pipeline.Result) {
	h := w.Header()
	h.Set(HeaderRounds, strconv.Itoa(res.Rounds))
	h.Set(HeaderErased, strconv.Itoa(res.Erased))
	h.Set(HeaderElapsed, strconv.FormatInt(res.Elapsed.Milliseconds(), 10))
	if res.CacheHit {
		h.Set(HeaderCache, "hit")
	} else {
		h.Set(HeaderCache, "miss")
	}
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeNonBinary, errors.ErrCodeDecode:
		return http.StatusBadRequest
	case errors.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)

	level := log.WarnLevel
	if status >= http.StatusInternalServerError {
		level = log.ErrorLevel
	}
	s.logger.Log(level, "request failed", "code", code, "err", err, "id", RequestIDFrom(r.Context()))

	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		msg = fmt.Sprintf("internal error (request %s)", RequestIDFrom(r.Context()))
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
