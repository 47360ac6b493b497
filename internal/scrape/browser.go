package scrape

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// newBrowser launches an isolated headless browser for one request and
// returns a blank page with the client identity applied. The cleanup func
// must run on every exit path; it terminates the browser and its launcher.
// Instances are never pooled or shared across requests.
func newBrowser() (*rod.Page, func(), error) {
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}
	cleanup := func() {
		if err := browser.Close(); err != nil {
			slog.Debug("browser close", slog.Any("error", err))
		}
		l.Cleanup()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: browserUserAgent}); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("set user agent: %w", err)
	}
	return page, cleanup, nil
}

// navigate drives the page to url and waits for the load event, both under
// one bounded deadline.
func navigate(page *rod.Page, url string, timeout time.Duration) error {
	p := page.Timeout(timeout)
	defer p.CancelTimeout()
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}
