package harvest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScrapeURLPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("the battery drains fast"))
	}))
	defer srv.Close()

	h := NewHarvester()
	text, err := h.ScrapeURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "the battery drains fast" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestScrapeURLCachesResult(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("cached body"))
	}))
	defer srv.Close()

	h := NewHarvester()
	for range 3 {
		if _, err := h.ScrapeURL(context.Background(), srv.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if hits != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", hits)
	}
}

func TestScrapeURLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	h := NewHarvester()
	if _, err := h.ScrapeURL(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><a href="/products/x">X</a></body></html>`))
	}))
	defer srv.Close()

	h := NewHarvester()
	page, err := h.FetchHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(page, `href="/products/x"`) {
		t.Fatalf("expected raw markup, got %q", page)
	}
}

func TestFetchHTMLRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	h := NewHarvester()
	if _, err := h.FetchHTML(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for non-HTML content")
	}
}
