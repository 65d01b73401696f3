package extract

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Kind identifies which extraction tool handles a URL
type Kind string

const (
	KindWebpage Kind = "webpage"
	KindYouTube Kind = "youtube"
)

const (
	maxFullText = 8000
	maxPreview  = 2000
)

// Result is the envelope every extraction tool returns. Tool failures are
// carried in Error with Success false; tools never return Go errors.
type Result struct {
	Success     bool   `json:"success"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	TextPreview string `json:"text_preview"`
	FullText    string `json:"full_text"`
	Language    string `json:"language,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Classify picks the extraction tool for a URL. A YouTube host marker
// anywhere in the URL wins; everything else is a generic webpage.
func Classify(rawURL string) Kind {
	lower := strings.ToLower(rawURL)
	if strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be") {
		return KindYouTube
	}
	return KindWebpage
}

// Extractor dispatches URLs to the matching tool
type Extractor struct {
	webpage *Webpage
	youtube *YouTube
	logger  *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{
		webpage: NewWebpage(),
		youtube: NewYouTube(),
		logger:  logger,
	}
}

// Extract runs exactly one tool, selected by Classify
func (e *Extractor) Extract(ctx context.Context, rawURL string) Result {
	kind := Classify(rawURL)
	e.logger.Info("extracting", "url", rawURL, "kind", string(kind))

	var res Result
	switch kind {
	case KindYouTube:
		res = e.youtube.Extract(ctx, rawURL)
	default:
		res = e.webpage.Extract(ctx, rawURL)
	}

	if !res.Success {
		e.logger.Warn("extraction failed", "url", rawURL, "error", res.Error)
	}
	return res
}

// finish builds a success envelope: whitespace normalized, text capped,
// preview always a prefix of the capped text.
func finish(rawURL, title, text string) Result {
	full := truncateRunes(normalizeWhitespace(text), maxFullText)
	return Result{
		Success:     true,
		URL:         rawURL,
		Title:       strings.TrimSpace(title),
		TextPreview: truncateRunes(full, maxPreview),
		FullText:    full,
		Language:    detectLanguage(full),
	}
}

func failure(rawURL, msg string) Result {
	return Result{Success: false, URL: rawURL, Error: msg}
}

// normalizeWhitespace collapses all whitespace runs into single spaces
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// detectLanguage returns the ISO 639-1 code of the text's language, or ""
// when the text is too short to classify reliably.
func detectLanguage(text string) string {
	if len(text) < 40 {
		return ""
	}
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English, lingua.Spanish, lingua.French, lingua.German,
				lingua.Italian, lingua.Portuguese, lingua.Dutch, lingua.Russian,
				lingua.Japanese, lingua.Chinese, lingua.Korean, lingua.Arabic,
			).
			Build()
	})
	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
