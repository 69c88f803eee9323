package extract

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/eddychk/viagoscrap/internal/browser"
)

type fakeNode struct {
	text          string
	attrs         map[string]string
	visible       bool
	clicked       bool
	failFirstText bool
}

func (n *fakeNode) Text() (string, error) {
	if n.failFirstText {
		n.failFirstText = false
		return "", fmt.Errorf("node detached")
	}
	return n.text, nil
}

func (n *fakeNode) Attribute(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *fakeNode) Visible() bool { return n.visible }

func (n *fakeNode) Click(time.Duration) error {
	n.clicked = true
	return nil
}

type fakePage struct {
	nodes   map[string][]browser.Node
	frames  []browser.Page
	content string
	url     string
	scrolls int
}

func (p *fakePage) QuerySelectorAll(sel string) []browser.Node { return p.nodes[sel] }
func (p *fakePage) Frames() []browser.Page                     { return p.frames }
func (p *fakePage) Content() (string, error)                   { return p.content, nil }
func (p *fakePage) CurrentURL() string                         { return p.url }
func (p *fakePage) WaitSettle(time.Duration)                   {}
func (p *fakePage) ScrollDown() error                          { p.scrolls++; return nil }

type fakeBrowser struct {
	page     *fakePage
	navErr   error
	released bool
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string, timeout time.Duration) (browser.Page, func(), error) {
	if b.navErr != nil {
		return nil, nil, b.navErr
	}
	b.page.url = url
	return b.page, func() { b.released = true }, nil
}

func newTestExtractor(b browser.Browser) *Extractor {
	e := New(b, nil)
	e.SettleDelay = 0
	e.ScrollPause = 0
	return e
}

func rowNode(text string) *fakeNode {
	return &fakeNode{text: text, visible: true}
}

func TestExtractCascadeFirstMatchWins(t *testing.T) {
	page := &fakePage{nodes: map[string][]browser.Node{
		"li[data-testid='listing-row']": {
			rowNode("Stehplatz\nSa. 14.06.\n199,99 €"),
			rowNode("Sitzplatz Block A\nSa. 14.06.\n245 EUR"),
		},
		"article": {rowNode("should never be consulted\n1 €")},
	}}
	b := &fakeBrowser{page: page}

	listings, err := newTestExtractor(b).Extract(context.Background(), "https://example.com/event")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("listings = %d, want 2", len(listings))
	}
	if listings[0].Title != "Stehplatz" || listings[0].PriceRaw != "199,99 €" {
		t.Errorf("listing 0 = %+v", listings[0])
	}
	if listings[1].DateLabel != "Sa. 14.06." {
		t.Errorf("listing 1 date = %q", listings[1].DateLabel)
	}
	if !b.released {
		t.Error("browser resource not released")
	}
}

func TestExtractCurrencyFilterSkipsCandidate(t *testing.T) {
	// Rows without a currency marker are dropped by the filtered
	// candidate; the remaining row carries the price.
	page := &fakePage{nodes: map[string][]browser.Node{
		"div[data-testid='listing-row']": {
			rowNode("Ausverkauft\nSa. 14.06."),
			rowNode("Sitzplatz\nSa. 14.06.\nab 52,00 €"),
		},
	}}
	b := &fakeBrowser{page: page}

	listings, err := newTestExtractor(b).Extract(context.Background(), "https://example.com/event")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("listings = %d, want 1", len(listings))
	}
	if listings[0].PriceRaw != "52,00 €" {
		t.Errorf("price = %q, want %q", listings[0].PriceRaw, "52,00 €")
	}
}

func TestExtractAggregateContainer(t *testing.T) {
	text := "Taylor Swift - Paris\nSa. 14.06.2026\nab 199,99 € ab 245 EUR ab 199,99 € ab 310 €"
	page := &fakePage{nodes: map[string][]browser.Node{
		"div[data-testid='listings-container']": {rowNode(text)},
	}}
	b := &fakeBrowser{page: page}

	listings, err := newTestExtractor(b).Extract(context.Background(), "https://example.com/event")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("listings = %d, want 3 distinct amounts", len(listings))
	}
	for i, l := range listings {
		if l.Title != "Taylor Swift - Paris" {
			t.Errorf("listing %d title = %q", i, l.Title)
		}
		if l.DateLabel != "Sa. 14.06.2026" {
			t.Errorf("listing %d date = %q", i, l.DateLabel)
		}
		if l.URL != "https://example.com/event" {
			t.Errorf("listing %d url = %q", i, l.URL)
		}
	}
}

func TestExtractDedup(t *testing.T) {
	page := &fakePage{nodes: map[string][]browser.Node{
		"li[data-testid='listing-row']": {
			rowNode("Stehplatz\nSa. 14.06.\n199,99 €"),
			rowNode("Stehplatz\nSa. 14.06.\n199,99 €"),
			rowNode("Stehplatz\nSa. 14.06.\n245 €"),
		},
	}}
	b := &fakeBrowser{page: page}

	listings, err := newTestExtractor(b).Extract(context.Background(), "https://example.com/event")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("listings = %d, want 2 after dedup", len(listings))
	}
}

func TestExtractNoCandidateMatches(t *testing.T) {
	b := &fakeBrowser{page: &fakePage{nodes: map[string][]browser.Node{}}}

	listings, err := newTestExtractor(b).Extract(context.Background(), "https://example.com/event")
	if err != nil {
		t.Fatalf("cascade exhaustion must not be an error, got %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("listings = %d, want 0", len(listings))
	}
	if !b.released {
		t.Error("browser resource not released")
	}
}

func TestExtractNavigationError(t *testing.T) {
	b := &fakeBrowser{navErr: fmt.Errorf("net::ERR_NAME_NOT_RESOLVED")}

	_, err := newTestExtractor(b).Extract(context.Background(), "https://example.com/event")
	if err == nil {
		t.Fatal("want navigation error")
	}
}

func TestExtractContainerTextFallback(t *testing.T) {
	// The container's text read fails transiently during the aggregate
	// pass; the fallback re-reads it and salvages one listing.
	container := &fakeNode{
		text:          "Restbestand ab 89,50 €",
		visible:       true,
		failFirstText: true,
	}
	page := &fakePage{nodes: map[string][]browser.Node{
		"div[data-testid='listings-container']": {container},
	}}
	b := &fakeBrowser{page: page}

	listings, err := newTestExtractor(b).Extract(context.Background(), "https://example.com/event")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("listings = %d, want 1 from container fallback", len(listings))
	}
	if listings[0].Title != "Listing" || listings[0].PriceRaw != "89,50 €" {
		t.Errorf("fallback listing = %+v", listings[0])
	}
}

func TestExtractMarkupFallbackCapped(t *testing.T) {
	markup := "<html><body>"
	for i := 1; i <= 15; i++ {
		markup += fmt.Sprintf("<p>%d0,00 €</p>", i)
	}
	markup += "<script>var x = '999 €';</script></body></html>"

	page := &fakePage{
		nodes: map[string][]browser.Node{
			"div[data-testid='listing-row']": {rowNode("Ausverkauft")},
		},
		content: markup,
	}
	b := &fakeBrowser{page: page}

	listings, err := newTestExtractor(b).Extract(context.Background(), "https://example.com/event")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(listings) != maxMarkupFallbackListings {
		t.Fatalf("listings = %d, want cap of %d", len(listings), maxMarkupFallbackListings)
	}
	for _, l := range listings {
		if l.PriceRaw == "999 €" {
			t.Error("script body leaked into the fallback text")
		}
	}
}

func TestDismissConsentFallsBackToFrames(t *testing.T) {
	hidden := &fakeNode{text: "Accept", visible: false}
	frameBtn := &fakeNode{text: "Accept", visible: true}
	frame := &fakePage{nodes: map[string][]browser.Node{
		"#onetrust-accept-btn-handler": {frameBtn},
	}}
	page := &fakePage{
		nodes: map[string][]browser.Node{
			"#onetrust-accept-btn-handler": {hidden},
		},
		frames: []browser.Page{frame},
	}

	e := newTestExtractor(&fakeBrowser{page: page})
	if !e.dismissConsent(page) {
		t.Fatal("consent not dismissed")
	}
	if hidden.clicked {
		t.Error("invisible button was clicked")
	}
	if !frameBtn.clicked {
		t.Error("frame button not clicked")
	}
}

func TestExpandContentScrolls(t *testing.T) {
	btn := &fakeNode{text: "Mehr anzeigen", visible: true}
	page := &fakePage{nodes: map[string][]browser.Node{
		"button[data-testid='show-more']": {btn},
	}}

	e := newTestExtractor(&fakeBrowser{page: page})
	if !e.expandContent(page) {
		t.Fatal("show-more not clicked")
	}
	if page.scrolls != e.ScrollPasses {
		t.Errorf("scrolls = %d, want %d", page.scrolls, e.ScrollPasses)
	}
	if !btn.clicked {
		t.Error("show-more button not clicked")
	}
}

func TestNodeURLResolution(t *testing.T) {
	tests := []struct {
		href string
		has  bool
		want string
	}{
		{"https://other.example/x", true, "https://other.example/x"},
		{"/resale/123", true, "https://example.com/resale/123"},
		{"", false, "https://example.com/event"},
	}
	for _, tt := range tests {
		n := &fakeNode{attrs: map[string]string{}}
		if tt.has {
			n.attrs["href"] = tt.href
		}
		if got := nodeURL(n, "https://example.com/event"); got != tt.want {
			t.Errorf("nodeURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
