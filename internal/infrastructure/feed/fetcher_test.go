package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchSendsConditionalHeaders(t *testing.T) {
	t.Parallel()

	var gotETag, gotModified string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotETag = r.Header.Get("If-None-Match")
		gotModified = r.Header.Get("If-Modified-Since")
		w.Header().Set("ETag", `"v2"`)
		w.Header().Set("Last-Modified", "Sun, 30 Aug 2026 06:00:00 GMT")
		w.Write([]byte("<rss/>"))
	}))
	defer srv.Close()

	res, err := NewFetcher(srv.Client(), "test-agent").Fetch(context.Background(), srv.URL, `"v1"`, "Sat, 29 Aug 2026 06:00:00 GMT")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotETag != `"v1"` {
		t.Errorf("If-None-Match = %q", gotETag)
	}
	if gotModified != "Sat, 29 Aug 2026 06:00:00 GMT" {
		t.Errorf("If-Modified-Since = %q", gotModified)
	}
	if res.NotModified {
		t.Error("unexpected not-modified")
	}
	if string(res.Body) != "<rss/>" {
		t.Errorf("body = %q", res.Body)
	}
	if res.ETag != `"v2"` || res.LastModified != "Sun, 30 Aug 2026 06:00:00 GMT" {
		t.Errorf("validators = %q / %q", res.ETag, res.LastModified)
	}
}

func TestFetchSkipsAbsentValidators(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["If-None-Match"]; ok {
			t.Error("If-None-Match must not be sent without a cached etag")
		}
		if _, ok := r.Header["If-Modified-Since"]; ok {
			t.Error("If-Modified-Since must not be sent without a cached value")
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	res, err := NewFetcher(srv.Client(), "test-agent").Fetch(context.Background(), srv.URL, "", "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// Server sent no validators: cached ones are cleared.
	if res.ETag != "" || res.LastModified != "" {
		t.Errorf("expected empty validators, got %q / %q", res.ETag, res.LastModified)
	}
}

func TestFetchNotModified(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	res, err := NewFetcher(srv.Client(), "test-agent").Fetch(context.Background(), srv.URL, `"v1"`, "")
	if err != nil {
		t.Fatalf("304 must not be an error: %v", err)
	}
	if !res.NotModified {
		t.Fatal("expected not-modified result")
	}
	if res.Body != nil {
		t.Fatalf("expected nil body, got %q", res.Body)
	}
}

func TestFetchErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	if _, err := NewFetcher(srv.Client(), "test-agent").Fetch(context.Background(), srv.URL, "", ""); err == nil {
		t.Fatal("expected error for 410 response")
	}
}
