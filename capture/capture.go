// Package capture drives a headless browser to turn a document URI into a
// raw pixel buffer. The browser is modelled as a small capability surface
// (Launcher / Browser / Page) so the workflow above it can run against fakes
// that never spawn a process; the rod-backed implementation lives in rod.go.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/snapgold/pixel"
)

// Sentinel errors mark which stage of the capture failed. All are fatal and
// deterministic — callers report them once and never retry.
var (
	ErrLaunch     = errors.New("capture: browser launch failed")
	ErrNavigation = errors.New("capture: navigation failed")
	ErrCapture    = errors.New("capture: screenshot failed")
)

// Launcher starts a browser process and hands back its handle.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is a running browser process.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single document context inside the browser.
type Page interface {
	Navigate(ctx context.Context, uri string) error
	// ContentHeight measures the full scrollable extent of the root content
	// container, with the width already clamped by SetViewport.
	ContentHeight(ctx context.Context) (int, error)
	SetViewport(width, height int) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Config configures a capture Session.
type Config struct {
	// ViewportWidth is the fixed capture width in CSS pixels. The height is
	// derived from the rendered content. Default: 1024.
	ViewportWidth int

	// NavTimeout bounds page navigation and load. Default: 30s.
	NavTimeout time.Duration

	// CaptureTimeout bounds measurement and the screenshot call. Default: 30s.
	CaptureTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1024
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.CaptureTimeout <= 0 {
		c.CaptureTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Result is a captured screenshot plus its provenance.
type Result struct {
	Buffer    *pixel.Buffer
	SourceURI string
}

// Session captures screenshots through a Launcher. One Session per run;
// concurrent runs need independent Sessions.
type Session struct {
	launcher Launcher
	cfg      Config
}

// NewSession creates a Session. Call Capture to do the work.
func NewSession(l Launcher, cfg Config) *Session {
	cfg.defaults()
	return &Session{launcher: l, cfg: cfg}
}

// Capture launches the browser, navigates to uri, sizes the viewport to the
// rendered content, and screenshots it. The browser is released on every exit
// path, exactly once.
func (s *Session) Capture(ctx context.Context, uri string) (*Result, error) {
	log := s.cfg.Logger

	browser, err := s.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	defer browser.Close()

	page, err := browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: new page: %v", ErrNavigation, err)
	}
	defer page.Close()

	// Clamp the width before navigation so the first layout pass already
	// wraps at the capture width. The height is provisional until measured.
	if err := page.SetViewport(s.cfg.ViewportWidth, 768); err != nil {
		return nil, fmt.Errorf("%w: set viewport: %v", ErrNavigation, err)
	}

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavTimeout)
	defer cancel()
	if err := page.Navigate(navCtx, uri); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, uri, err)
	}

	capCtx, capCancel := context.WithTimeout(ctx, s.cfg.CaptureTimeout)
	defer capCancel()

	height, err := page.ContentHeight(capCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: measure height: %v", ErrCapture, err)
	}
	if height <= 0 {
		height = 1
	}

	// Exact-fit viewport: no scrollbars, no vertical clipping.
	if err := page.SetViewport(s.cfg.ViewportWidth, height); err != nil {
		return nil, fmt.Errorf("%w: resize viewport: %v", ErrCapture, err)
	}

	log.Debug("capture: viewport sized", "width", s.cfg.ViewportWidth, "height", height, "uri", uri)

	shot, err := page.Screenshot(capCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}

	buf, err := pixel.Decode(shot)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrCapture, err)
	}

	log.Info("capture: screenshot taken",
		"uri", uri, "width", buf.Width, "height", buf.Height)

	return &Result{Buffer: buf, SourceURI: uri}, nil
}
