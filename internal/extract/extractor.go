// Package extract locates resale listings on a rendered marketplace page
// and pulls structured fields out of their text. Page layouts change often
// and without notice, so location goes through an ordered selector cascade
// with progressively looser patterns, and a pair of whole-page fallbacks
// when nothing structured matches.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/eddychk/viagoscrap/internal/browser"
	"github.com/eddychk/viagoscrap/internal/models"
	"github.com/eddychk/viagoscrap/internal/price"
	"github.com/eddychk/viagoscrap/internal/robots"
	"github.com/eddychk/viagoscrap/internal/ui"
)

// UserAgent identifies the tracker to robots.txt rules.
const UserAgent = "viagoscrap/1.0"

const maxMarkupFallbackListings = 10

// Extractor runs one extraction pass per page load. It is stateless per
// invocation and safe to share across runs.
type Extractor struct {
	Browser browser.Browser
	Robots  *robots.Checker // optional; nil skips the check

	Timeout      time.Duration // page navigation
	SettleDelay  time.Duration // render settle after load
	ScrollPasses int
	ScrollPause  time.Duration
	ClickTimeout time.Duration

	Logger *slog.Logger
}

// New returns an Extractor with the default wait profile.
func New(b browser.Browser, logger *slog.Logger) *Extractor {
	return &Extractor{
		Browser:      b,
		Timeout:      30 * time.Second,
		SettleDelay:  2 * time.Second,
		ScrollPasses: 3,
		ScrollPause:  400 * time.Millisecond,
		ClickTimeout: 2 * time.Second,
		Logger:       logger,
	}
}

// Extract navigates to url and returns the deduplicated listings found on
// it. The browser resource is released on every exit path. A page where no
// cascade candidate matches yields an empty result, not an error; only
// navigation/render failures are errors.
func (e *Extractor) Extract(ctx context.Context, pageURL string) ([]models.Listing, error) {
	if e.Robots != nil {
		if ok, _ := e.Robots.IsAllowed(UserAgent, pageURL); !ok {
			return nil, fmt.Errorf("robots.txt disallows %s", pageURL)
		}
	}

	page, release, err := e.Browser.Navigate(ctx, pageURL, e.Timeout)
	if err != nil {
		return nil, fmt.Errorf("open listings page: %w", err)
	}
	defer release()

	// Listings are populated asynchronously after the initial load.
	page.WaitSettle(e.SettleDelay)

	if dismissed := e.dismissConsent(page); dismissed {
		e.debug("consent dialog dismissed")
	}
	if expanded := e.expandContent(page); expanded {
		e.debug("show-more control clicked")
	}

	nodes, mode, sel := e.matchCascade(page)
	if nodes == nil {
		e.debug("no cascade candidate matched", "url", pageURL)
		return nil, nil
	}
	ui.ReportProgress(ctx, fmt.Sprintf("Matched %d node(s) via %s", len(nodes), sel))

	var listings []models.Listing
	if mode == modeAggregate {
		for _, n := range nodes {
			listings = append(listings, e.aggregateListings(n, page.CurrentURL())...)
		}
	} else {
		for _, n := range nodes {
			if l, ok := e.singleListing(n, page.CurrentURL()); ok {
				listings = append(listings, l)
			}
		}
	}

	listings = dedupe(listings)
	if len(listings) == 0 {
		listings = e.fallbackListings(page)
	}
	e.debug("extraction finished", "url", pageURL, "listings", len(listings))
	return listings, nil
}

// dismissConsent clicks the first visible consent button in the first
// context (main document, then each frame) that yields one. Best effort:
// every failure is swallowed and only the outcome is reported.
func (e *Extractor) dismissConsent(page browser.Page) bool {
	contexts := append([]browser.Page{page}, page.Frames()...)
	for _, c := range contexts {
		for _, sel := range consentSelectors {
			for _, n := range c.QuerySelectorAll(sel) {
				if !n.Visible() {
					continue
				}
				if err := n.Click(e.ClickTimeout); err == nil {
					return true
				}
			}
		}
	}
	return false
}

// expandContent scrolls a fixed number of passes to trigger lazy loading,
// then tries to click one "show more" control. Best effort.
func (e *Extractor) expandContent(page browser.Page) bool {
	for i := 0; i < e.ScrollPasses; i++ {
		if err := page.ScrollDown(); err != nil {
			break
		}
		page.WaitSettle(e.ScrollPause)
	}
	for _, sel := range showMoreSelectors {
		for _, n := range page.QuerySelectorAll(sel) {
			if !n.Visible() {
				continue
			}
			if err := n.Click(e.ClickTimeout); err == nil {
				return true
			}
		}
	}
	return false
}

// matchCascade returns the nodes of the first candidate whose (filtered)
// match count is non-zero, or nil when the cascade is exhausted.
func (e *Extractor) matchCascade(page browser.Page) ([]browser.Node, selectorMode, string) {
	for _, c := range listingCascade {
		nodes := page.QuerySelectorAll(c.selector)
		if c.mode == modeRowsCurrency || c.mode == modeGenericCurrency {
			nodes = filterByCurrency(nodes)
		}
		if len(nodes) > 0 {
			return nodes, c.mode, c.selector
		}
	}
	return nil, 0, ""
}

func filterByCurrency(nodes []browser.Node) []browser.Node {
	var kept []browser.Node
	for _, n := range nodes {
		text, err := n.Text()
		if err != nil {
			continue
		}
		if price.HasCurrencyMarker(text) {
			kept = append(kept, n)
		}
	}
	return kept
}

// singleListing extracts one listing from a row/card node. Line 0 of the
// node text is the title, line 1 the date label. A node with no
// extractable price is discarded.
func (e *Extractor) singleListing(n browser.Node, pageURL string) (models.Listing, bool) {
	text, err := n.Text()
	if err != nil {
		return models.Listing{}, false
	}
	lines := nonEmptyLines(text)

	raw := extractRawPrice(text, lines)
	if raw == "" {
		return models.Listing{}, false
	}

	l := models.Listing{PriceRaw: raw, URL: nodeURL(n, pageURL)}
	if len(lines) > 0 {
		l.Title = lines[0]
	}
	if len(lines) > 1 {
		l.DateLabel = lines[1]
	}
	return l, true
}

// aggregateListings treats one container node as holding several listings
// concatenated: every distinct currency amount in its text becomes a
// listing sharing the node's title, date and URL. No amounts means no
// listings; there is no whole-line fallback in this mode.
func (e *Extractor) aggregateListings(n browser.Node, pageURL string) []models.Listing {
	text, err := n.Text()
	if err != nil {
		return nil
	}
	lines := nonEmptyLines(text)

	title := "Listing"
	if len(lines) > 0 {
		title = lines[0]
	}
	var date string
	if len(lines) > 1 {
		date = lines[1]
	}
	u := nodeURL(n, pageURL)

	seen := make(map[string]bool)
	var out []models.Listing
	for _, m := range price.AmountRe.FindAllString(text, -1) {
		key := compact(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.Listing{
			Title:     title,
			DateLabel: date,
			PriceRaw:  strings.TrimSpace(m),
			URL:       u,
		})
	}
	return out
}

// extractRawPrice prefers the first line carrying a currency marker: the
// matched amount substring when the amount pattern hits that line, the
// whole line otherwise. With no marked line it falls back to one amount
// occurrence in the compacted full text.
func extractRawPrice(text string, lines []string) string {
	for _, line := range lines {
		if price.HasCurrencyMarker(line) {
			if m := price.AmountRe.FindString(line); m != "" {
				return strings.TrimSpace(m)
			}
			return line
		}
	}
	return strings.TrimSpace(price.AmountRe.FindString(compact(text)))
}

// fallbackListings is the last line of defense once the cascade matched
// but produced nothing: first one price from the listings container text,
// then up to ten distinct amounts from the whole page markup. Failures
// here are swallowed and simply yield nothing.
func (e *Extractor) fallbackListings(page browser.Page) []models.Listing {
	if nodes := page.QuerySelectorAll(listingCascade[0].selector); len(nodes) > 0 {
		if text, err := nodes[0].Text(); err == nil {
			if m := price.AmountRe.FindString(text); m != "" {
				e.debug("container-text fallback produced a listing")
				return []models.Listing{{
					Title:    "Listing",
					PriceRaw: strings.TrimSpace(m),
					URL:      page.CurrentURL(),
				}}
			}
		}
	}

	markup, err := page.Content()
	if err != nil {
		return nil
	}
	text, err := markupText(markup)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []models.Listing
	for _, m := range price.AmountRe.FindAllString(text, -1) {
		key := compact(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.Listing{
			Title:    "Listing",
			PriceRaw: strings.TrimSpace(m),
			URL:      page.CurrentURL(),
		})
		if len(out) == maxMarkupFallbackListings {
			break
		}
	}
	if len(out) > 0 {
		e.debug("markup fallback produced listings", "count", len(out))
	}
	return out
}

// dedupe drops later listings repeating an earlier (title, price, url)
// tuple; first occurrence wins.
func dedupe(listings []models.Listing) []models.Listing {
	type key struct{ title, priceRaw, url string }
	seen := make(map[key]bool, len(listings))
	out := listings[:0]
	for _, l := range listings {
		k := key{l.Title, l.PriceRaw, l.URL}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l)
	}
	return out
}

// nodeURL resolves a node's href against the page URL; nodes without an
// href inherit the page URL itself.
func nodeURL(n browser.Node, pageURL string) string {
	href, ok := n.Attribute("href")
	if !ok || href == "" {
		return pageURL
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// markupText strips tags from raw page markup, skipping script and style
// bodies, so the amount pattern runs against visible text only.
func markupText(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String(), nil
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.Logger != nil {
		e.Logger.Debug(msg, args...)
	}
}
