// Package runner coordinates one visual-regression run: render, capture,
// then either approve (overwrite the golden) or compare and report. The
// workflow is an explicit state machine so the two load-bearing invariants —
// approve mode never compares, nothing ever retries — stay locally checkable.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/hazyhaar/snapgold/capture"
	"github.com/hazyhaar/snapgold/golden"
	"github.com/hazyhaar/snapgold/history"
	"github.com/hazyhaar/snapgold/serve"
)

// Capturer produces a screenshot buffer for a document URI. Satisfied by
// *capture.Session; tests substitute fakes.
type Capturer interface {
	Capture(ctx context.Context, uri string) (*capture.Result, error)
}

// Report is the final result of a run: what to print and how to exit.
type Report struct {
	ExitCode int
	Outcome  *golden.Outcome
	Message  string
	DiffPath string
}

// state enumerates the workflow positions. Transitions only ever move
// forward; there is no retry edge anywhere.
type state int

const (
	stateStart state = iota
	stateRendered
	stateCaptured
	stateApproved
	stateCompared
	stateReported
)

// Runner executes the workflow once. Create a new Runner per run; nothing is
// shared across invocations.
type Runner struct {
	cfg      Config
	renderer Renderer
	capturer Capturer
	hist     *history.Store // optional
	logger   *slog.Logger
}

// Option customises a Runner.
type Option func(*Runner)

// WithHistory records each run in the given store.
func WithHistory(s *history.Store) Option {
	return func(r *Runner) { r.hist = s }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New creates a Runner.
func New(cfg Config, renderer Renderer, capturer Capturer, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, renderer: renderer, capturer: capturer}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run drives the state machine to completion and returns the Report. Fatal
// errors short-circuit to the reported state with exit code 1; they are
// configuration or environment preconditions and retrying would not change
// the outcome.
func (r *Runner) Run(ctx context.Context) Report {
	start := time.Now()

	var (
		st      = stateStart
		docPath string
		res     *capture.Result
		rep     Report
	)

	for st != stateReported {
		switch st {
		case stateStart:
			path, err := r.renderer.Render(ctx)
			if err != nil {
				rep = r.fatal("render failed: %v", err)
				st = stateReported
				continue
			}
			docPath = path
			st = stateRendered

		case stateRendered:
			c, err := r.captureDocument(ctx, docPath)
			if err != nil {
				rep = r.fatal("%v", err)
				st = stateReported
				continue
			}
			res = c
			st = stateCaptured

		case stateCaptured:
			if r.cfg.Approve {
				st = stateApproved
			} else {
				st = stateCompared
			}

		case stateApproved:
			// Approve mode: overwrite and stop. No comparison, no artifact.
			if err := golden.Save(r.cfg.GoldenPath, res.Buffer); err != nil {
				rep = r.fatal("approve failed: %v", err)
			} else {
				rep = Report{
					ExitCode: 0,
					Message:  fmt.Sprintf("golden updated: %s (%dx%d)", r.cfg.GoldenPath, res.Buffer.Width, res.Buffer.Height),
				}
				r.logger.Info("runner: golden approved", "path", r.cfg.GoldenPath)
			}
			st = stateReported

		case stateCompared:
			rep = r.compare(res)
			st = stateReported
		}
	}

	r.record(ctx, start, rep)
	return rep
}

// captureDocument resolves the document URI (file:// by default, loopback
// http:// when configured) and runs the capture session against it.
func (r *Runner) captureDocument(ctx context.Context, docPath string) (*capture.Result, error) {
	uri, err := fileURI(docPath)
	if err != nil {
		return nil, err
	}

	if r.cfg.ServeHTTP {
		srv := serve.New(filepath.Dir(docPath), r.logger)
		if err := srv.Start(); err != nil {
			return nil, err
		}
		defer srv.Close()
		uri = srv.URL(filepath.Base(docPath))
	}

	return r.capturer.Capture(ctx, uri)
}

func (r *Runner) compare(res *capture.Result) Report {
	ref, err := golden.Load(r.cfg.GoldenPath)
	if err != nil {
		if errors.Is(err, golden.ErrNotFound) {
			return r.fatal("no golden at %s — approve the current capture first: %s",
				r.cfg.GoldenPath, r.cfg.ApproveCommand())
		}
		return r.fatal("load golden: %v", err)
	}

	out, err := golden.Compare(ref, res.Buffer)
	if err != nil {
		return r.fatal("compare: %v", err)
	}

	switch out.Kind {
	case golden.Match:
		r.logger.Info("runner: match", "golden", r.cfg.GoldenPath)
		return Report{
			ExitCode: 0,
			Outcome:  &out,
			Message:  fmt.Sprintf("screenshot matches golden %s", r.cfg.GoldenPath),
		}

	case golden.DimensionMismatch:
		// No per-pixel artifact exists for unequal sizes.
		return Report{
			ExitCode: 1,
			Outcome:  &out,
			Message: fmt.Sprintf("dimension mismatch: golden is %dx%d, screenshot is %dx%d — to accept, run: %s",
				out.WantWidth, out.WantHeight, out.GotWidth, out.GotHeight, r.cfg.ApproveCommand()),
		}

	default: // golden.PixelMismatch
		r.logger.Info("runner: pixel mismatch",
			"count", out.DiffCount, "percent", out.DiffPercent)

		diffPath, werr := golden.WriteDiff(r.cfg.OutputDir, out.Diff)
		if werr != nil {
			return Report{
				ExitCode: 1,
				Outcome:  &out,
				Message: fmt.Sprintf("%d pixels differ (%.2f%%), and writing the diff artifact failed: %v — to accept, run: %s",
					out.DiffCount, out.DiffPercent, werr, r.cfg.ApproveCommand()),
			}
		}
		return Report{
			ExitCode: 1,
			Outcome:  &out,
			DiffPath: diffPath,
			Message: fmt.Sprintf("%d pixels differ (%.2f%%), see %s — to accept, run: %s",
				out.DiffCount, out.DiffPercent, diffPath, r.cfg.ApproveCommand()),
		}
	}
}

func (r *Runner) fatal(format string, args ...any) Report {
	msg := fmt.Sprintf(format, args...)
	r.logger.Error("runner: " + msg)
	return Report{ExitCode: 1, Message: msg}
}

// record writes the run to history when a store is configured. Best effort:
// a history failure must not change the test outcome.
func (r *Runner) record(ctx context.Context, start time.Time, rep Report) {
	if r.hist == nil {
		return
	}

	e := history.Entry{
		StartedAt:  start,
		GoldenPath: r.cfg.GoldenPath,
		Mode:       "verify",
		Outcome:    "error",
		DiffPath:   rep.DiffPath,
		Duration:   time.Since(start),
	}
	if r.cfg.Approve {
		e.Mode = "approve"
		if rep.ExitCode == 0 {
			e.Outcome = "approved"
		}
	} else if rep.Outcome != nil {
		e.Outcome = rep.Outcome.Kind.String()
		e.DiffCount = rep.Outcome.DiffCount
		e.DiffPercent = rep.Outcome.DiffPercent
	}

	if err := r.hist.Record(ctx, e); err != nil {
		r.logger.Warn("runner: history record failed", "error", err)
	}
}

// fileURI converts a filesystem path into a file:// URI for navigation.
func fileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("runner: resolve %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
