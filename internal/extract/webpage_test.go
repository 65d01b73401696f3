package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testPage = `<!DOCTYPE html>
<html>
<head>
<title>Test Article</title>
<style>body { color: red; }</style>
</head>
<body>
<script>var hidden = "should not appear";</script>
<h1>Test Article</h1>
<p>This is the visible body text of the page.</p>
<noscript>also hidden</noscript>
</body>
</html>`

func TestWebpage_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.Contains(got, "Mozilla") {
			t.Errorf("expected browser-like User-Agent, got %q", got)
		}
		fmt.Fprint(w, testPage)
	}))
	defer srv.Close()

	res := NewWebpage().Extract(context.Background(), srv.URL)

	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Title != "Test Article" {
		t.Errorf("unexpected title %q", res.Title)
	}
	if !strings.Contains(res.FullText, "visible body text") {
		t.Errorf("body text missing from %q", res.FullText)
	}
	if strings.Contains(res.FullText, "should not appear") || strings.Contains(res.FullText, "also hidden") {
		t.Errorf("script/noscript content leaked into %q", res.FullText)
	}
	if !strings.HasPrefix(res.FullText, res.TextPreview) {
		t.Error("text_preview must be a prefix of full_text")
	}
}

func TestWebpage_Extract_TitleFallsBackToURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No title here at all.</p></body></html>`)
	}))
	defer srv.Close()

	res := NewWebpage().Extract(context.Background(), srv.URL)

	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Title != srv.URL {
		t.Errorf("expected URL fallback title, got %q", res.Title)
	}
}

func TestWebpage_Extract_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	res := NewWebpage().Extract(context.Background(), srv.URL)

	if res.Success {
		t.Fatal("expected failure for a 404 response")
	}
	if !strings.Contains(res.Error, "404") {
		t.Errorf("expected status in error, got %q", res.Error)
	}
}

func TestWebpage_Extract_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	res := NewWebpage().Extract(context.Background(), srv.URL)

	if res.Success {
		t.Fatal("expected failure for an unreachable host")
	}
	if res.Error == "" {
		t.Error("expected error description in the envelope")
	}
}
