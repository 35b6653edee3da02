package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// Each Open gets its own incognito browser context, so pages share no
// cookies or storage.
type BrowserFetcher struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      *config.BrowserConfig
	timeout  time.Duration
	agents   []string
	uaIndex  atomic.Int64
	logger   *slog.Logger
}

// NewBrowserFetcher launches (or connects to) a browser.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:     &cfg.Browser,
		timeout: cfg.Engine.RequestTimeout,
		agents:  cfg.Engine.UserAgents,
		logger:  logger.With("component", "browser_fetcher"),
	}

	controlURL := cfg.Browser.ControlURL
	if controlURL == "" {
		bf.launcher = bf.newLauncher()
		u, err := bf.launcher.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if bf.launcher != nil {
			bf.launcher.Kill()
		}
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	bf.logger.Info("browser fetcher ready",
		"remote", cfg.Browser.ControlURL != "",
		"headless", cfg.Browser.Headless,
		"stealth", cfg.Browser.Stealth,
	)

	return bf, nil
}

// newLauncher configures a Chromium instance with appropriate flags.
func (bf *BrowserFetcher) newLauncher() *launcher.Launcher {
	l := launcher.New().
		Headless(bf.cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	if bf.cfg.Bin != "" {
		l = l.Bin(bf.cfg.Bin)
	}
	return l
}

// Open creates an incognito context and a page inside it, navigates to
// url and waits for the page to settle. Closing the returned page
// disposes the whole context.
func (bf *BrowserFetcher) Open(ctx context.Context, url string) (types.Page, error) {
	start := time.Now()

	incognito, err := bf.browser.Incognito()
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: fmt.Errorf("create context: %w", err), Retryable: true}
	}

	var page *rod.Page
	if bf.cfg.Stealth {
		page, err = stealth.Page(incognito)
	} else {
		page, err = incognito.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		_ = incognito.Close()
		return nil, &types.FetchError{URL: url, Err: fmt.Errorf("create page: %w", err), Retryable: true}
	}

	bp := &browserPage{url: url, page: page.Context(ctx), context: incognito}

	if len(bf.agents) > 0 {
		ua := bf.agents[bf.uaIndex.Add(1)%int64(len(bf.agents))]
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	nav := bp.page.Timeout(bf.timeout)
	defer nav.CancelTimeout()

	if err := nav.Navigate(url); err != nil {
		_ = bp.Close()
		return nil, &types.FetchError{URL: url, Err: err, Retryable: !isContextError(ctx, err)}
	}
	if err := nav.WaitLoad(); err != nil {
		_ = bp.Close()
		return nil, &types.FetchError{URL: url, Err: fmt.Errorf("wait load: %w", err), Retryable: !isContextError(ctx, err)}
	}
	if bf.cfg.WaitStable > 0 {
		if err := nav.WaitStable(bf.cfg.WaitStable); err != nil {
			bf.logger.Warn("page stability timeout, continuing", "url", url, "error", err)
		}
	}

	if info, err := bp.page.Info(); err == nil && info != nil {
		bp.url = info.URL
	}

	bf.logger.Debug("browser fetch complete",
		"url", url,
		"final_url", bp.url,
		"duration", time.Since(start),
	)

	return bp, nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	var err error
	if bf.browser != nil && bf.launcher != nil {
		err = bf.browser.Close()
		bf.launcher.Kill()
	}
	return err
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}

func isContextError(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

// browserPage adapts a rod page to types.Page.
type browserPage struct {
	url     string
	page    *rod.Page
	context *rod.Browser
}

func (p *browserPage) URL() string { return p.url }

func (p *browserPage) Find(selector string) ([]types.Element, error) {
	expr, isXPath := types.SplitSelector(selector)

	var (
		els rod.Elements
		err error
	)
	if isXPath {
		els, err = p.page.ElementsX(expr)
	} else {
		els, err = p.page.Elements(expr)
	}
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}

// Close closes the page and disposes its incognito context.
func (p *browserPage) Close() error {
	pageErr := p.page.Close()
	ctxErr := p.context.Close()
	return errors.Join(pageErr, ctxErr)
}

type browserElement struct {
	el *rod.Element
}

func wrapElements(els rod.Elements) []types.Element {
	out := make([]types.Element, len(els))
	for i, el := range els {
		out[i] = &browserElement{el: el}
	}
	return out
}

// Text returns textContent, which ignores CSS text-transform and
// visibility, unlike rod's innerText-based Element.Text.
func (e *browserElement) Text() (string, error) {
	v, err := e.el.Property("textContent")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (e *browserElement) Attr(name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *browserElement) Find(selector string) ([]types.Element, error) {
	expr, isXPath := types.SplitSelector(selector)

	var (
		els rod.Elements
		err error
	)
	if isXPath {
		els, err = e.el.ElementsX(expr)
	} else {
		els, err = e.el.Elements(expr)
	}
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}
