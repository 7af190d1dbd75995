package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// rodSession owns one launched Chrome process and at most one page.
type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	config   Config
}

// LaunchRod starts a local Chrome and connects to it.
func LaunchRod(ctx context.Context, config Config) (Session, error) {
	l := launcher.New().Context(ctx).Headless(config.Headless)
	if config.Bin != "" {
		l = l.Bin(config.Bin)
	}
	if config.IgnoreHTTPSErrors {
		l = l.Set("ignore-certificate-errors", "true")
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &rodSession{launcher: l, browser: b, config: config}, nil
}

func (s *rodSession) Render(ctx context.Context, url string, req RenderRequest) (string, string, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", "", fmt.Errorf("failed to create page: %w", err)
	}
	s.page = page

	page = page.Context(ctx)
	if s.config.Timeout > 0 {
		page = page.Timeout(s.config.Timeout)
	}

	if s.config.ViewportWidth > 0 && s.config.ViewportHeight > 0 {
		_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:  s.config.ViewportWidth,
			Height: s.config.ViewportHeight,
		})
	}

	if req.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{UserAgent: req.UserAgent}.Call(page)
	}

	if len(req.Headers) > 0 {
		networkHeaders := make(proto.NetworkHeaders, len(req.Headers))
		for k, v := range req.Headers {
			networkHeaders[k] = gson.New(v)
		}
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: networkHeaders}.Call(page)
	}

	if err := page.Navigate(url); err != nil {
		return "", "", fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", "", fmt.Errorf("wait load: %w", err)
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	html, err := page.HTML()
	if err != nil {
		return "", "", fmt.Errorf("read markup: %w", err)
	}
	return finalURL, html, nil
}

func (s *rodSession) Close() error {
	var firstErr error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.browser.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	s.launcher.Kill()
	s.launcher.Cleanup()
	return firstErr
}
