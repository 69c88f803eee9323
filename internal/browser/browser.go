// Package browser defines the rendered-page capability the extractor runs
// against. Keeping it behind small interfaces lets extraction be tested on
// fixture pages without a real browser.
package browser

import (
	"context"
	"time"
)

// Browser opens rendered pages.
type Browser interface {
	// Navigate loads url and returns the page plus a release function.
	// The release function must be called on every exit path; it tears
	// down the underlying browser resources.
	Navigate(ctx context.Context, url string, timeout time.Duration) (Page, func(), error)
}

// Page is one rendered document.
type Page interface {
	// QuerySelectorAll returns all nodes matching a CSS selector, in
	// document order. A selector that matches nothing returns an empty
	// slice, not an error.
	QuerySelectorAll(selector string) []Node

	// Frames returns the pages embedded in iframes, in document order.
	Frames() []Page

	// Content returns the full page markup.
	Content() (string, error)

	// CurrentURL is the page's resolved URL after navigation.
	CurrentURL() string

	// WaitSettle blocks for a fixed window to let client-side rendering
	// catch up after load or scroll.
	WaitSettle(d time.Duration)

	// ScrollDown scrolls the viewport down one step to trigger
	// lazy-loaded content.
	ScrollDown() error
}

// Node is one element matched on a page.
type Node interface {
	Text() (string, error)
	Attribute(name string) (string, bool)
	Visible() bool
	Click(timeout time.Duration) error
}
