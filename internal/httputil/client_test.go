package httputil

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestDoWithRetryRecoversFrom5xx(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))
	defer srv.Close()

	client := NewHTTPClient(nil)
	req, err := http.NewRequest(http.MethodPost, srv.URL, bytes.NewReader([]byte("payload")))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := DoWithRetry(client, req, 2)
	if err != nil {
		t.Fatalf("DoWithRetry: %v", err)
	}
	defer resp.Body.Close()

	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "payload" {
		t.Errorf("body = %q; request body not reset on retry", body)
	}
}

func TestDoWithRetryGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(nil)
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	if _, err := DoWithRetry(client, req, 1); err == nil {
		t.Fatal("want error after exhausting retries")
	}
}

func TestReadBodyGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("hello"))
	zw.Close()

	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"gzip"}},
		Body:   io.NopCloser(&buf),
	}
	body, err := ReadBody(resp)
	if err != nil {
		t.Fatalf("ReadBody: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}
}

func TestReadBodyPlain(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{},
		Body:   io.NopCloser(bytes.NewReader([]byte("plain"))),
	}
	body, err := ReadBody(resp)
	if err != nil {
		t.Fatalf("ReadBody: %v", err)
	}
	if string(body) != "plain" {
		t.Errorf("body = %q", body)
	}
}
