package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	fetchTimeout = 10 * time.Second
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Cap on response bytes read; extracted text is capped far lower anyway
	maxBodyBytes = 2 << 20
)

// Webpage fetches a page and extracts its readable text
type Webpage struct {
	client *http.Client
}

func NewWebpage() *Webpage {
	return &Webpage{
		client: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Extract performs a single GET (no retry) and parses the body as HTML.
// Any fetch or parse problem comes back as a failure envelope.
func (w *Webpage) Extract(ctx context.Context, rawURL string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return failure(rawURL, err.Error())
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return failure(rawURL, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(rawURL, fmt.Sprintf("fetch returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return failure(rawURL, err.Error())
	}

	title, text := parseHTML(rawURL, body)
	if title == "" {
		title = rawURL
	}
	return finish(rawURL, title, text)
}

// parseHTML prefers the readability article view and falls back to a plain
// goquery text pass with script/style stripped when readability finds nothing.
func parseHTML(rawURL string, body []byte) (title, text string) {
	if pageURL, err := url.Parse(rawURL); err == nil {
		parser := readability.NewParser()
		if article, err := parser.Parse(bytes.NewReader(body), pageURL); err == nil {
			title = strings.TrimSpace(article.Title)
			text = strings.TrimSpace(article.TextContent)
		}
	}
	if text != "" {
		return title, text
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return title, text
	}
	doc.Find("script,style,noscript").Remove()
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return title, doc.Find("body").Text()
}
