// Package browsertest provides scripted in-memory fakes of the browser
// interfaces so scraping logic can be tested without a real Chromium.
package browsertest

import (
	"fmt"
	"time"

	"teetimes-backend/lib/browser"
)

// Browser hands out a single pre-built page.
type Browser struct {
	Page       *Page
	NewPageErr error

	NewPageCalls int
	Closed       bool
}

var _ browser.Browser = (*Browser)(nil)

func (b *Browser) NewPage() (browser.Page, error) {
	b.NewPageCalls++
	if b.NewPageErr != nil {
		return nil, b.NewPageErr
	}
	return b.Page, nil
}

func (b *Browser) Close() error {
	b.Closed = true
	return nil
}

// Page replays scripted markup and network responses keyed by url.
// Tests mutate the maps directly to describe the site being crawled.
type Page struct {
	// MarkupByURL is what Content returns for each navigated url.
	MarkupByURL map[string]string
	// ResponsesByURL is emitted to OnResponse listeners right after a
	// successful Goto of that url, in order.
	ResponsesByURL map[string][]browser.Response
	// GotoErrs makes navigation to a url fail.
	GotoErrs map[string]error
	// Elements resolves WaitForSelector and Fill by exact selector.
	Elements map[string]*Element

	Current    string
	NavLog     []string
	FillLog    []string
	Filled     map[string]string
	CloseCalls int

	listeners []func(browser.Response)
}

var _ browser.Page = (*Page)(nil)

func NewPage() *Page {
	return &Page{
		MarkupByURL:    map[string]string{},
		ResponsesByURL: map[string][]browser.Response{},
		GotoErrs:       map[string]error{},
		Elements:       map[string]*Element{},
		Filled:         map[string]string{},
	}
}

func (p *Page) Goto(url string, timeout time.Duration) error {
	p.NavLog = append(p.NavLog, url)
	if err, ok := p.GotoErrs[url]; ok {
		return err
	}
	p.Current = url
	for _, res := range p.ResponsesByURL[url] {
		p.Emit(res)
	}
	return nil
}

func (p *Page) Settle(timeout time.Duration) {}

func (p *Page) Content() (string, error) {
	return p.MarkupByURL[p.Current], nil
}

func (p *Page) URL() string {
	return p.Current
}

func (p *Page) QueryAll(selector string) ([]browser.Element, error) {
	el, ok := p.Elements[selector]
	if !ok {
		return nil, nil
	}
	return []browser.Element{el}, nil
}

func (p *Page) WaitForSelector(selector string, timeout time.Duration) (browser.Element, error) {
	el, ok := p.Elements[selector]
	if !ok {
		return nil, fmt.Errorf("timed out waiting for %q", selector)
	}
	return el, nil
}

func (p *Page) Fill(selector, value string, timeout time.Duration) error {
	if _, ok := p.Elements[selector]; !ok {
		return fmt.Errorf("no element matches %q", selector)
	}
	p.FillLog = append(p.FillLog, selector)
	p.Filled[selector] = value
	return nil
}

func (p *Page) OnResponse(listener func(browser.Response)) {
	p.listeners = append(p.listeners, listener)
}

// Emit delivers a response to every registered listener, the way a
// stray xhr would land outside of navigation.
func (p *Page) Emit(res browser.Response) {
	for _, listener := range p.listeners {
		listener(res)
	}
}

func (p *Page) Close() error {
	p.CloseCalls++
	return nil
}

// Element is a scripted control. Click strategies fail in order until
// the configured errors run out, OnClick runs on whichever one lands.
type Element struct {
	TextValue string
	Attrs     map[string]string

	ClickErr       error
	ForceClickErr  error
	ScriptClickErr error

	// OnClick mutates the page to simulate whatever the click caused,
	// a navigation or an xhr burst.
	OnClick func()

	Clicks int
}

var _ browser.Element = (*Element)(nil)

func (e *Element) Text() (string, error) {
	return e.TextValue, nil
}

func (e *Element) Attribute(name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *Element) Click(timeout time.Duration) error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.clicked()
	return nil
}

func (e *Element) ForceClick(timeout time.Duration) error {
	if e.ForceClickErr != nil {
		return e.ForceClickErr
	}
	e.clicked()
	return nil
}

func (e *Element) ScriptClick() error {
	if e.ScriptClickErr != nil {
		return e.ScriptClickErr
	}
	e.clicked()
	return nil
}

func (e *Element) clicked() {
	e.Clicks++
	if e.OnClick != nil {
		e.OnClick()
	}
}
