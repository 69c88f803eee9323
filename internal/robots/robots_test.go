package robots

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const testRobots = `User-agent: *
Disallow: /private/

User-agent: viagoscrap
Disallow: /blocked/
`

func TestIsAllowed(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		fetches.Add(1)
		w.Write([]byte(testRobots))
	}))
	defer srv.Close()

	c := NewChecker(srv.Client(), true)

	allowed, err := c.IsAllowed("viagoscrap", srv.URL+"/events/123")
	if err != nil || !allowed {
		t.Errorf("allowed path: allowed=%v err=%v", allowed, err)
	}
	allowed, _ = c.IsAllowed("viagoscrap", srv.URL+"/blocked/page")
	if allowed {
		t.Error("agent-specific disallow ignored")
	}
	allowed, _ = c.IsAllowed("otherbot", srv.URL+"/private/page")
	if allowed {
		t.Error("wildcard disallow ignored")
	}

	// All checks against one domain share one cached fetch.
	if fetches.Load() != 1 {
		t.Errorf("robots.txt fetches = %d, want 1", fetches.Load())
	}
}

func TestIsAllowedDisabled(t *testing.T) {
	c := NewChecker(nil, false)

	allowed, err := c.IsAllowed("viagoscrap", "https://example.com/anything")
	if err != nil || !allowed {
		t.Errorf("disabled checker must allow: allowed=%v err=%v", allowed, err)
	}
}

func TestIsAllowedUnreachableRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	srv.Close() // connection refused from here on

	c := NewChecker(nil, true)
	allowed, err := c.IsAllowed("viagoscrap", srv.URL+"/events/123")
	if err != nil || !allowed {
		t.Errorf("unreachable robots.txt must allow: allowed=%v err=%v", allowed, err)
	}
}
