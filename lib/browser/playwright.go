package browser

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

type playwrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    LaunchOptions
}

// Launch starts the playwright driver and a Chromium instance. The
// driver binaries must already be installed (`playwright install
// chromium` or the deploy image).
func Launch(opts LaunchOptions) (Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright driver: %w", err)
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &playwrightBrowser{pw: pw, browser: b, opts: opts}, nil
}

func (b *playwrightBrowser) NewPage() (Page, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if b.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(b.opts.UserAgent)
	}
	bctx, err := b.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	blockTrackers(page)
	return &playwrightPage{ctx: bctx, page: page}, nil
}

func (b *playwrightBrowser) Close() error {
	err := b.browser.Close()
	stopErr := b.pw.Stop()
	if err != nil {
		return err
	}
	return stopErr
}

// hosts that only slow page loads down, requests to them are aborted
var blockedHosts = []string{
	"googletagmanager.com",
	"google-analytics.com",
	"doubleclick.net",
	"connect.facebook.net",
	"hotjar.com",
}

func blockTrackers(page playwright.Page) {
	err := page.Route("**/*", func(route playwright.Route) {
		url := route.Request().URL()
		for _, host := range blockedHosts {
			if strings.Contains(url, host) {
				route.Abort()
				return
			}
		}
		route.Continue()
	})
	if err != nil {
		slog.Warn("failed to install tracker blocking", "err", err)
	}
}

type playwrightPage struct {
	ctx  playwright.BrowserContext
	page playwright.Page

	mu        sync.Mutex
	listeners []func(Response)
	attached  bool
}

func (p *playwrightPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) Settle(timeout time.Duration) {
	p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) QueryAll(selector string) ([]Element, error) {
	locator := p.page.Locator(selector)
	count, err := locator.Count()
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	elements := make([]Element, 0, count)
	for i := 0; i < count; i++ {
		elements = append(elements, playwrightElement{locator: locator.Nth(i)})
	}
	return elements, nil
}

func (p *playwrightPage) WaitForSelector(selector string, timeout time.Duration) (Element, error) {
	locator := p.page.Locator(selector).First()
	err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, err
	}
	return playwrightElement{locator: locator}, nil
}

func (p *playwrightPage) Fill(selector, value string, timeout time.Duration) error {
	return p.page.Fill(selector, value, playwright.PageFillOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) OnResponse(listener func(Response)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, listener)
	alreadyAttached := p.attached
	p.attached = true
	p.mu.Unlock()

	if alreadyAttached {
		return
	}
	p.page.OnResponse(func(res playwright.Response) {
		out := Response{
			URL:         res.URL(),
			Status:      res.Status(),
			ContentType: res.Headers()["content-type"],
		}
		if strings.Contains(out.ContentType, "json") {
			body, err := res.Body()
			if err != nil {
				// bodies can be gone by the time the event fires
				return
			}
			out.Body = body
		}

		p.mu.Lock()
		ls := append([]func(Response){}, p.listeners...)
		p.mu.Unlock()
		for _, l := range ls {
			l(out)
		}
	})
}

func (p *playwrightPage) Close() error {
	err := p.page.Close()
	ctxErr := p.ctx.Close()
	if err != nil {
		return err
	}
	return ctxErr
}

type playwrightElement struct {
	locator playwright.Locator
}

func (e playwrightElement) Text() (string, error) {
	return e.locator.TextContent()
}

func (e playwrightElement) Attribute(name string) (string, error) {
	return e.locator.GetAttribute(name)
}

func (e playwrightElement) Click(timeout time.Duration) error {
	return e.locator.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (e playwrightElement) ForceClick(timeout time.Duration) error {
	return e.locator.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(true),
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (e playwrightElement) ScriptClick() error {
	_, err := e.locator.Evaluate("el => el.click()", nil)
	return err
}
