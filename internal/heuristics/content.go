// Package heuristics classifies rendered pages: login walls, visible
// tee-time availability and booking-link candidates. Every heuristic is
// a pure function over PageContent so it can be tested on plain markup.
package heuristics

import (
	"context"
	"net/url"
	"strings"

	"teetimes-backend/lib/htmlutil"
	"teetimes-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("teetimes.internal.heuristics")

// PageContent is the normalized view of a rendered page. Text is
// lowercased with whitespace collapsed, anchor names are lowercased and
// hrefs are resolved to absolute urls against the page url.
type PageContent struct {
	URL     *url.URL
	Text    string
	Anchors []htmlutil.Anchor
	Inputs  []htmlutil.Input
	Forms   []string
}

func ParseContent(ctx context.Context, markup string, base *url.URL) (PageContent, error) {
	ctx, span := tracer.Start(ctx, "ParseContent")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse markup")
		return PageContent{}, err
	}

	content := PageContent{URL: base}

	body := doc.Find("body")
	if len(body.Nodes) > 0 {
		content.Text = textutil.Normalize(htmlutil.GetText(body.Nodes[0]))
	}

	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find("a")) {
		href := resolveHref(base, anchor.Href)
		if href == "" {
			continue
		}
		content.Anchors = append(content.Anchors, htmlutil.Anchor{
			Name: strings.ToLower(anchor.Name),
			Href: href,
		})
	}

	content.Inputs = htmlutil.GetInputs(ctx, doc.Find("input"))

	doc.Find("form").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		class, _ := sel.Attr("class")
		action, _ := sel.Attr("action")
		content.Forms = append(content.Forms, strings.ToLower(id+" "+class+" "+action))
	})

	return content, nil
}

// drops pseudo-links and resolves relative hrefs against the page url
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}
	if base == nil {
		return href
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return ""
	}
	return resolved.String()
}
