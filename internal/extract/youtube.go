package extract

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
)

const invalidYouTubeURL = "Invalid YouTube URL format"

var (
	videoIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/|/embed/|/shorts/|/live/)([A-Za-z0-9_-]{11})`)
	titlePattern   = regexp.MustCompile(`<title>(.*?)</title>`)
)

// VideoID pulls the 11-character video identifier out of a YouTube URL
func VideoID(rawURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// YouTube extracts English transcripts via the watch page's caption track
// list and the timedtext endpoint it points at. No official API key needed.
type YouTube struct {
	client    *http.Client
	watchBase string
}

func NewYouTube() *YouTube {
	return &YouTube{
		client: &http.Client{
			Timeout: fetchTimeout,
		},
		watchBase: "https://www.youtube.com",
	}
}

// Extract validates the URL shape before any network I/O: URLs without a
// parseable video ID (channels, playlists, malformed) fail immediately.
func (y *YouTube) Extract(ctx context.Context, rawURL string) Result {
	id, ok := VideoID(rawURL)
	if !ok {
		return failure(rawURL, invalidYouTubeURL)
	}

	title, text, err := y.transcript(ctx, id)
	if err != nil {
		return failure(rawURL, err.Error())
	}
	if title == "" {
		title = rawURL
	}
	return finish(rawURL, title, text)
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// transcript fetches the watch page, locates the caption track list embedded
// in the player response, picks the English track, and joins its segments.
// One attempt per stage; no fallback language.
func (y *YouTube) transcript(ctx context.Context, videoID string) (title, text string, err error) {
	page, err := y.get(ctx, y.watchBase+"/watch?v="+videoID)
	if err != nil {
		return "", "", fmt.Errorf("youtube: %w", err)
	}

	title = watchTitle(page)

	tracks, err := captionTracks(page)
	if err != nil {
		return title, "", fmt.Errorf("youtube: %w", err)
	}

	track, ok := englishTrack(tracks)
	if !ok {
		return title, "", errors.New("youtube: no English transcript available")
	}

	raw, err := y.get(ctx, track.BaseURL)
	if err != nil {
		return title, "", fmt.Errorf("youtube: %w", err)
	}

	text, err = decodeTimedText(raw)
	if err != nil {
		return title, "", fmt.Errorf("youtube: %w", err)
	}
	return title, text, nil
}

func (y *YouTube) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// captionTracks finds the "captionTracks" array inside the watch page's
// inlined player response. The decoder reads exactly one JSON value, so the
// surrounding script soup doesn't matter.
func captionTracks(page []byte) ([]captionTrack, error) {
	const marker = `"captionTracks":`
	idx := strings.Index(string(page), marker)
	if idx < 0 {
		return nil, errors.New("no captions available for this video")
	}

	dec := json.NewDecoder(strings.NewReader(string(page[idx+len(marker):])))
	var tracks []captionTrack
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decoding caption track list: %w", err)
	}
	if len(tracks) == 0 {
		return nil, errors.New("no captions available for this video")
	}
	return tracks, nil
}

// englishTrack prefers a manually authored English track over an
// auto-generated ("asr") one.
func englishTrack(tracks []captionTrack) (captionTrack, bool) {
	var asr captionTrack
	var haveASR bool
	for _, t := range tracks {
		if t.LanguageCode != "en" && !strings.HasPrefix(t.LanguageCode, "en-") {
			continue
		}
		if t.Kind == "asr" {
			if !haveASR {
				asr, haveASR = t, true
			}
			continue
		}
		return t, true
	}
	return asr, haveASR
}

// decodeTimedText joins the <text> segments of a timedtext XML document
// into a single space-separated transcript.
func decodeTimedText(raw []byte) (string, error) {
	var doc struct {
		Texts []struct {
			Value string `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decoding transcript: %w", err)
	}

	segments := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		s := strings.TrimSpace(html.UnescapeString(t.Value))
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return "", errors.New("transcript is empty")
	}
	return strings.Join(segments, " "), nil
}

func watchTitle(page []byte) string {
	m := titlePattern.FindSubmatch(page)
	if m == nil {
		return ""
	}
	title := html.UnescapeString(string(m[1]))
	return strings.TrimSpace(strings.TrimSuffix(title, " - YouTube"))
}
