package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/eddychk/viagoscrap/internal/models"
	"github.com/eddychk/viagoscrap/internal/sched"
	"github.com/eddychk/viagoscrap/internal/store"
	"github.com/eddychk/viagoscrap/internal/track"
)

type stubExtractor struct {
	listings []models.Listing
}

func (s *stubExtractor) Extract(ctx context.Context, url string) ([]models.Listing, error) {
	return s.listings, nil
}

func newTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ex := &stubExtractor{listings: []models.Listing{
		{Title: "Stehplatz", DateLabel: "Sa. 14.06.", PriceRaw: "99 €", URL: "https://example.com/ev"},
	}}
	tr := track.New(st, ex, nil, nil)
	srv := &Server{
		Store:   st,
		Tracker: tr,
		Sched:   sched.New(st, tr, nil, 15, 1),
		DBPath:  ":memory:",
	}
	return srv.App(), st
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, data
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"ok"`) {
		t.Errorf("body = %s", body)
	}
}

func TestHomeServesDashboard(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(string(body), "ViagoScrap Dashboard") {
		t.Error("dashboard markup missing")
	}
}

func TestCreateAndListEvents(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/events", nil)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("empty list: status=%d body=%s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/api/events", map[string]any{
		"name": "Taylor Swift Paris",
		"url":  "https://example.com/ev",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: status=%d body=%s", resp.StatusCode, body)
	}
	var ev models.TrackedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.ID == 0 || ev.Name != "Taylor Swift Paris" || !ev.Active {
		t.Errorf("event = %+v", ev)
	}

	resp, body = doJSON(t, app, http.MethodGet, "/api/events", nil)
	var events []models.TrackedEvent
	if err := json.Unmarshal(body, &events); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}
}

func TestCreateEventValidation(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing name", map[string]any{"url": "https://example.com/ev"}, fiber.StatusUnprocessableEntity},
		{"short url", map[string]any{"name": "x", "url": "http"}, fiber.StatusUnprocessableEntity},
		{"ok", map[string]any{"name": "x", "url": "https://example.com/ev"}, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, http.MethodPost, "/api/events", tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.want, body)
			}
		})
	}
}

func TestUpdateInterval(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/config/interval", map[string]any{
		"scrape_interval_min": 30,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	_, body := doJSON(t, app, http.MethodGet, "/api/config", nil)
	var cfg map[string]any
	json.Unmarshal(body, &cfg)
	if cfg["scrape_interval_min"].(float64) != 30 {
		t.Errorf("interval = %v, want 30", cfg["scrape_interval_min"])
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/config/interval", map[string]any{
		"scrape_interval_min": 0,
	})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for out-of-range interval", resp.StatusCode)
	}
}

func TestScrapeOne(t *testing.T) {
	app, st := newTestApp(t)
	id, _ := st.UpsertEvent("ev", "https://example.com/ev", true)

	resp, body := doJSON(t, app, http.MethodPost, "/api/events/1/scrape", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body = %s", resp.StatusCode, body)
	}
	var res models.RunResult
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Status != models.RunOK || res.ItemsSaved != 1 {
		t.Errorf("result = %+v", res)
	}

	// The run is on record afterwards.
	_, body = doJSON(t, app, http.MethodGet, "/api/runs", nil)
	var runs []models.ScrapeRun
	json.Unmarshal(body, &runs)
	if len(runs) != 1 || runs[0].EventID != id {
		t.Errorf("runs = %+v", runs)
	}
}

func TestScrapeUnknownEvent(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/events/99/scrape", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHistoryAndChart(t *testing.T) {
	app, st := newTestApp(t)
	st.UpsertEvent("ev", "https://example.com/ev", true)

	doJSON(t, app, http.MethodPost, "/api/events/1/scrape", nil)

	_, body := doJSON(t, app, http.MethodGet, "/api/events/1/history", nil)
	var entries []models.PriceEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 1 || entries[0].PriceRaw != "99 €" {
		t.Errorf("entries = %+v", entries)
	}

	_, body = doJSON(t, app, http.MethodGet, "/api/events/1/chart", nil)
	var points []models.ChartPoint
	if err := json.Unmarshal(body, &points); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if len(points) != 1 || points[0].MinPrice != 99 {
		t.Errorf("points = %+v", points)
	}
}

func TestSubscriberLifecycle(t *testing.T) {
	app, st := newTestApp(t)
	st.UpsertEvent("ev", "https://example.com/ev", true)

	resp, body := doJSON(t, app, http.MethodPost, "/api/subscribers", map[string]any{
		"email":    "Fan@Example.com",
		"event_id": 1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: status=%d body=%s", resp.StatusCode, body)
	}
	var sub models.Subscriber
	json.Unmarshal(body, &sub)
	if sub.Email != "fan@example.com" {
		t.Errorf("email = %q, want normalized", sub.Email)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/subscribers", map[string]any{
		"email": "not-an-email",
	})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("invalid email: status = %d, want 422", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/subscribers", map[string]any{
		"email":    "fan@example.com",
		"event_id": 42,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown event scope: status = %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/subscribers/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status = %d", resp.StatusCode)
	}
	_, body = doJSON(t, app, http.MethodGet, "/api/subscribers", nil)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("subscribers after delete = %s", body)
	}
}
