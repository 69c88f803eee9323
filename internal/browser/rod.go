package browser

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodBrowser renders pages with a headless Chromium driven by rod, so
// client-side listing markup is populated before extraction.
type RodBrowser struct {
	Headless    bool
	LauncherURL string // optional remote launcher URL
}

func NewRod(headless bool) *RodBrowser {
	return &RodBrowser{Headless: headless}
}

func (r *RodBrowser) Navigate(ctx context.Context, url string, timeout time.Duration) (Page, func(), error) {
	var l *launcher.Launcher
	if r.LauncherURL != "" {
		l = launcher.MustNewManaged(r.LauncherURL)
	} else {
		l = launcher.New().Headless(r.Headless).Logger(io.Discard)
	}
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.Close()
		l.Cleanup()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}
	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1920,
		Height: 1080,
	}); err != nil {
		b.Close()
		l.Cleanup()
		return nil, nil, fmt.Errorf("set viewport: %w", err)
	}

	cleanup := func() {
		page.Close()
		b.Close()
		l.Cleanup()
	}

	timed := page.Timeout(timeout)
	if err := timed.Navigate(url); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := timed.WaitLoad(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wait for load: %w", err)
	}

	return &rodPage{page: page}, cleanup, nil
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) QuerySelectorAll(selector string) []Node {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil
	}
	nodes := make([]Node, 0, len(els))
	for _, el := range els {
		nodes = append(nodes, &rodNode{el: el})
	}
	return nodes
}

func (p *rodPage) Frames() []Page {
	els, err := p.page.Elements("iframe")
	if err != nil {
		return nil
	}
	var frames []Page
	for _, el := range els {
		f, err := el.Frame()
		if err != nil {
			continue
		}
		frames = append(frames, &rodPage{page: f})
	}
	return frames
}

func (p *rodPage) Content() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) CurrentURL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) WaitSettle(d time.Duration) {
	time.Sleep(d)
}

func (p *rodPage) ScrollDown() error {
	return p.page.Mouse.Scroll(0, 1200, 4)
}

type rodNode struct {
	el *rod.Element
}

func (n *rodNode) Text() (string, error) {
	return n.el.Text()
}

func (n *rodNode) Attribute(name string) (string, bool) {
	v, err := n.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (n *rodNode) Visible() bool {
	ok, err := n.el.Visible()
	return err == nil && ok
}

func (n *rodNode) Click(timeout time.Duration) error {
	return n.el.Timeout(timeout).Click(proto.InputMouseButtonLeft, 1)
}
