package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/certiauth/ebay-sold-scraper/internal/scraper"
)

// Browser owns one playwright session: runtime, browser and context. It
// adapts playwright to the session interfaces the extraction engine
// consumes.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	logger  *slog.Logger
}

type Options struct {
	Headless       bool
	Mobile         bool
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	TimezoneID     string
	ProxyServer    string
	BlockResources bool
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1280,
		ViewportHeight: 720,
		Locale:         "en-GB",
		TimezoneID:     "Europe/London",
		BlockResources: true,
	}
}

// blockedResourcePattern matches heavy sub-resources the scraper never
// reads. Aborting them keeps bandwidth and memory in check.
const blockedResourcePattern = "**/*.{png,jpg,jpeg,gif,webp,svg,css,woff,woff2,mp4,webm}"

func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Mobile {
		opts.ViewportWidth = 390
		opts.ViewportHeight = 844
		opts.UserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--disable-gpu",
			"--no-first-run",
			"--disable-extensions",
			"--disable-background-timer-throttling",
			"--disable-renderer-backgrounding",
			"--memory-pressure-off",
		},
	}
	if opts.ProxyServer != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: opts.ProxyServer}
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	ctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  &opts.UserAgent,
		Locale:     &opts.Locale,
		TimezoneId: &opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if opts.BlockResources {
		if err := ctx.Route(blockedResourcePattern, func(route playwright.Route) {
			route.Abort()
		}); err != nil {
			ctx.Close()
			b.Close()
			pw.Stop()
			return nil, fmt.Errorf("failed to install resource blocking: %w", err)
		}
	}

	return &Browser{
		pw:      pw,
		browser: b,
		context: ctx,
		logger:  slog.Default().With("component", "browser"),
	}, nil
}

// NewSessionFactory returns the factory the scrape service uses to open a
// fresh session per run.
func NewSessionFactory(base *Options) scraper.SessionFactory {
	return func(headless, mobile bool) (scraper.Session, error) {
		opts := *DefaultOptions()
		if base != nil {
			opts = *base
		}
		opts.Headless = headless
		opts.Mobile = mobile
		return New(&opts)
	}
}

func (b *Browser) NewPage() (scraper.Page, error) {
	page, err := b.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	return &pageAdapter{page: page}, nil
}

func (b *Browser) Close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

// pageAdapter exposes a playwright page through the engine's Page interface.
type pageAdapter struct {
	page playwright.Page
}

func (p *pageAdapter) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	// Best effort; dynamically rendered cards often land after DOMContentLoaded.
	p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds()) / 2),
	})
	return nil
}

func (p *pageAdapter) Content() (string, error) {
	return p.page.Content()
}

func (p *pageAdapter) Title() (string, error) {
	return p.page.Title()
}

func (p *pageAdapter) Evaluate(script string) (interface{}, error) {
	return p.page.Evaluate(script)
}

func (p *pageAdapter) Locate(selector string) ([]scraper.Element, error) {
	locators, err := p.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	elements := make([]scraper.Element, 0, len(locators))
	for _, l := range locators {
		elements = append(elements, &elementAdapter{locator: l})
	}
	return elements, nil
}

func (p *pageAdapter) Close() error {
	return p.page.Close()
}

type elementAdapter struct {
	locator playwright.Locator
}

func (e *elementAdapter) Text() (string, error) {
	return e.locator.TextContent()
}

func (e *elementAdapter) Attribute(name string) (string, error) {
	v, err := e.locator.GetAttribute(name)
	if err != nil {
		return "", err
	}
	return v, nil
}
