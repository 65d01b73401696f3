package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/urlingest/internal/config"
	"github.com/user/urlingest/internal/db"
	"github.com/user/urlingest/internal/extract"
	"github.com/user/urlingest/internal/synthesis"
)

const (
	SourceExtension = "extension"
	SourceCLI       = "cli"
)

// Visit is what the browser extension reports: a URL plus optional context.
// Values are filled once via Normalize and not touched afterwards.
type Visit struct {
	URL       string `json:"url"`
	TabID     *int64 `json:"tab_id"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// Normalize fills server-side defaults: current UTC time when the client
// sent no timestamp, "extension" when it sent no source.
func (v Visit) Normalize(now time.Time) Visit {
	if v.Timestamp == "" {
		v.Timestamp = now.UTC().Format(time.RFC3339)
	}
	if v.Source == "" {
		v.Source = SourceExtension
	}
	return v
}

// Outcome carries everything one visit produced. Stage failures land in
// Err; Process itself never fails.
type Outcome struct {
	Visit      Visit
	Extraction extract.Result
	Analysis   *synthesis.Analysis
	Err        string
}

// Extractor and Synthesizer are the two pipeline stages. The real
// implementations live in internal/extract and internal/synthesis.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) extract.Result
}

type Synthesizer interface {
	Analyze(ctx context.Context, text string) (*synthesis.Analysis, error)
}

// Pipeline runs extraction then synthesis for one visit and appends the
// combined record to the log.
type Pipeline struct {
	extractor   Extractor
	synthesizer Synthesizer
	store       db.Store
	logger      *slog.Logger
}

func New(cfg *config.Config, store db.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor:   extract.New(logger),
		synthesizer: synthesis.New(cfg),
		store:       store,
		logger:      logger,
	}
}

// Process runs the two stages strictly in order. A failed extraction
// short-circuits synthesis; there is nothing to analyze and the extraction
// error is the one worth reporting.
func (p *Pipeline) Process(ctx context.Context, visit Visit) Outcome {
	out := Outcome{Visit: visit}
	started := time.Now()

	out.Extraction = p.extractor.Extract(ctx, visit.URL)

	if !out.Extraction.Success {
		out.Err = fmt.Sprintf("extraction failed: %s", out.Extraction.Error)
	} else {
		analysis, err := p.synthesizer.Analyze(ctx, out.Extraction.FullText)
		if err != nil {
			out.Err = fmt.Sprintf("synthesis failed: %v", err)
		} else {
			out.Analysis = analysis
		}
	}

	p.append(ctx, &out)

	p.logger.Info("visit processed",
		"url", visit.URL,
		"ok", out.Err == "",
		"duration", time.Since(started).Round(time.Millisecond).String(),
	)
	return out
}

// append is best-effort: a storage problem is logged and does not alter the
// response the caller builds from the outcome.
func (p *Pipeline) append(ctx context.Context, out *Outcome) {
	rec := &db.Record{
		URL:         out.Visit.URL,
		TabID:       out.Visit.TabID,
		VisitedAt:   out.Visit.Timestamp,
		Source:      out.Visit.Source,
		Kind:        string(extract.Classify(out.Visit.URL)),
		Success:     out.Err == "",
		Title:       out.Extraction.Title,
		TextPreview: out.Extraction.TextPreview,
		FullText:    out.Extraction.FullText,
		Language:    out.Extraction.Language,
		Error:       out.Err,
	}
	if out.Analysis != nil {
		rec.KeyPoints = out.Analysis.KeyPoints
		rec.Concepts = out.Analysis.Concepts
		rec.Summary = out.Analysis.Summary
	}

	if err := p.store.Append(ctx, rec); err != nil {
		p.logger.Error("appending record", "url", out.Visit.URL, "error", err)
	}
}
