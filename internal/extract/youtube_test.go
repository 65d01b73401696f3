package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/", "", false},
		{"https://www.youtube.com/channel/UCabc", "", false},
		{"https://www.youtube.com/watch?v=tooshort", "", false},
	}

	for _, tt := range tests {
		id, ok := VideoID(tt.url)
		if ok != tt.wantOK || id != tt.wantID {
			t.Errorf("VideoID(%q) = (%q, %v), want (%q, %v)", tt.url, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

type failingTransport struct{ t *testing.T }

func (f failingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.t.Errorf("unexpected network call to %s", r.URL)
	return nil, fmt.Errorf("network disabled")
}

func TestYouTube_Extract_InvalidURLNoNetwork(t *testing.T) {
	y := &YouTube{
		client:    &http.Client{Transport: failingTransport{t: t}},
		watchBase: "https://www.youtube.com",
	}

	res := y.Extract(context.Background(), "https://www.youtube.com/playlist?list=PLx")

	if res.Success {
		t.Fatal("expected failure for URL without a video ID")
	}
	if res.Error != "Invalid YouTube URL format" {
		t.Errorf("unexpected error %q", res.Error)
	}
}

func TestYouTube_Extract_Transcript(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			if got := r.URL.Query().Get("v"); got != "dQw4w9WgXcQ" {
				t.Errorf("unexpected video id %q", got)
			}
			fmt.Fprintf(w, `<html><head><title>My Video - YouTube</title></head>
<body><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/timedtext?lang=fr","languageCode":"fr"},{"baseUrl":"%s/timedtext?lang=en-asr","languageCode":"en","kind":"asr"},{"baseUrl":"%s/timedtext?lang=en","languageCode":"en"}]}}};</script></body></html>`,
				srv.URL, srv.URL, srv.URL)
		case "/timedtext":
			if got := r.URL.Query().Get("lang"); got != "en" {
				t.Errorf("expected the manual English track, got lang=%q", got)
			}
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>
<transcript><text start="0" dur="2">Never gonna</text><text start="2" dur="2">give you up</text><text start="4" dur="2"> </text></transcript>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	y := &YouTube{client: srv.Client(), watchBase: srv.URL}
	res := y.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Title != "My Video" {
		t.Errorf("unexpected title %q", res.Title)
	}
	if res.FullText != "Never gonna give you up" {
		t.Errorf("unexpected transcript %q", res.FullText)
	}
}

func TestYouTube_Extract_NoCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Silent - YouTube</title></head><body>no captions here</body></html>`)
	}))
	defer srv.Close()

	y := &YouTube{client: srv.Client(), watchBase: srv.URL}
	res := y.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	if res.Success {
		t.Fatal("expected failure when the page carries no caption tracks")
	}
	if !strings.Contains(res.Error, "no captions") {
		t.Errorf("unexpected error %q", res.Error)
	}
}

func TestYouTube_Extract_NoEnglishTrack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>"captionTracks":[{"baseUrl":"http://invalid/","languageCode":"fr"}]</body></html>`)
	}))
	defer srv.Close()

	y := &YouTube{client: srv.Client(), watchBase: srv.URL}
	res := y.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	if res.Success {
		t.Fatal("expected failure without an English track")
	}
	if !strings.Contains(res.Error, "no English transcript") {
		t.Errorf("unexpected error %q", res.Error)
	}
}

func TestEnglishTrack_PrefersManualOverASR(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "asr", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "manual", LanguageCode: "en-GB"},
	}
	track, ok := englishTrack(tracks)
	if !ok || track.BaseURL != "manual" {
		t.Errorf("expected the manual track, got (%+v, %v)", track, ok)
	}
}

func TestEnglishTrack_FallsBackToASR(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "fr", LanguageCode: "fr"},
		{BaseURL: "asr", LanguageCode: "en", Kind: "asr"},
	}
	track, ok := englishTrack(tracks)
	if !ok || track.BaseURL != "asr" {
		t.Errorf("expected the asr track, got (%+v, %v)", track, ok)
	}
}
