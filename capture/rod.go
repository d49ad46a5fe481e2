package capture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodConfig configures the rod-backed Launcher.
type RodConfig struct {
	// BinPath is the Chrome/Chromium executable. Empty = ResolveChromePath
	// then the launcher's own lookup/download.
	BinPath string

	// Stealth creates pages with anti-detection patches applied. Only useful
	// when capturing live URLs that fingerprint automation.
	Stealth bool

	Logger *slog.Logger
}

// RodLauncher launches a local headless Chrome via the rod launcher.
type RodLauncher struct {
	cfg RodConfig
}

// NewRodLauncher creates a Launcher backed by go-rod.
func NewRodLauncher(cfg RodConfig) *RodLauncher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &RodLauncher{cfg: cfg}
}

// Launch starts headless Chrome and connects to it.
func (l *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	ln := launcher.New().Headless(true)
	ln = ln.Set("disable-blink-features", "AutomationControlled")
	ln = ln.Set("hide-scrollbars")

	if bin := ResolveChromePath(l.cfg.BinPath); bin != "" {
		ln = ln.Bin(bin)
	}

	u, err := ln.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("capture: launch chrome: %w", err)
	}

	b := rod.New().Context(ctx).ControlURL(u)
	if err := b.Connect(); err != nil {
		ln.Cleanup()
		return nil, fmt.Errorf("capture: connect: %w", err)
	}

	l.cfg.Logger.Debug("capture: chrome launched", "url", u)

	return &rodBrowser{b: b, lnch: ln, stealth: l.cfg.Stealth}, nil
}

type rodBrowser struct {
	b       *rod.Browser
	lnch    *launcher.Launcher
	stealth bool
}

func (rb *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	var page *rod.Page
	var err error
	if rb.stealth {
		page, err = stealth.Page(rb.b)
	} else {
		page, err = rb.b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("capture: create page: %w", err)
	}
	return &rodPage{p: page.Context(ctx)}, nil
}

func (rb *rodBrowser) Close() error {
	err := rb.b.Close()
	rb.lnch.Cleanup()
	return err
}

type rodPage struct {
	p *rod.Page
}

func (rp *rodPage) Navigate(ctx context.Context, uri string) error {
	page := rp.p.Context(ctx)
	if err := page.Navigate(uri); err != nil {
		return err
	}
	return page.WaitLoad()
}

func (rp *rodPage) ContentHeight(ctx context.Context) (int, error) {
	res, err := rp.p.Context(ctx).Eval(`() => document.documentElement.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (rp *rodPage) SetViewport(width, height int) error {
	return rp.p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
}

func (rp *rodPage) Screenshot(ctx context.Context) ([]byte, error) {
	return rp.p.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (rp *rodPage) Close() error {
	return rp.p.Close()
}
