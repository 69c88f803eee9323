// Package robots checks marketplace URLs against robots.txt before the
// browser navigates to them. The check is best effort: an unreachable or
// unparseable robots.txt allows the request.
package robots

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// Checker caches robots.txt rules per domain.
type Checker struct {
	rules    map[string]*robotstxt.RobotsData
	expiry   map[string]time.Time
	mu       sync.RWMutex
	client   *http.Client
	cacheTTL time.Duration
	enabled  bool
}

// NewChecker creates a robots.txt checker. A disabled checker allows
// everything.
func NewChecker(client *http.Client, enabled bool) *Checker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Checker{
		rules:    make(map[string]*robotstxt.RobotsData),
		expiry:   make(map[string]time.Time),
		client:   client,
		cacheTTL: time.Hour,
		enabled:  enabled,
	}
}

// IsAllowed checks if the given URL is allowed for the user agent.
func (c *Checker) IsAllowed(userAgent, rawURL string) (bool, error) {
	if !c.enabled {
		return true, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false, err
	}

	domain := u.Scheme + "://" + u.Host
	data, err := c.getRobots(domain)
	if err != nil {
		// Unreachable robots.txt does not block tracking.
		return true, nil
	}

	return data.FindGroup(userAgent).Test(u.Path), nil
}

func (c *Checker) getRobots(domain string) (*robotstxt.RobotsData, error) {
	c.mu.RLock()
	data, ok := c.rules[domain]
	exp, expOK := c.expiry[domain]
	c.mu.RUnlock()

	if ok && expOK && time.Now().Before(exp) {
		return data, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if data, ok := c.rules[domain]; ok {
		if exp, ok := c.expiry[domain]; ok && time.Now().Before(exp) {
			return data, nil
		}
	}

	resp, err := c.client.Get(domain + "/robots.txt")
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err = robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	c.rules[domain] = data
	c.expiry[domain] = time.Now().Add(c.cacheTTL)
	return data, nil
}
