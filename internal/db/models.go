package db

import "time"

// Record is one entry in the append-only log: the visit that arrived, what
// extraction produced, and what synthesis made of it. Records are immutable
// once written; the integer id orders the log.
type Record struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	TabID       *int64    `json:"tab_id"`
	VisitedAt   string    `json:"timestamp"`
	Source      string    `json:"source"` // extension, cli
	Kind        string    `json:"kind"`   // webpage, youtube
	Success     bool      `json:"success"`
	Title       string    `json:"title,omitempty"`
	TextPreview string    `json:"text_preview,omitempty"`
	FullText    string    `json:"full_text,omitempty"`
	Language    string    `json:"language,omitempty"`
	KeyPoints   []string  `json:"key_points,omitempty"`
	Concepts    []string  `json:"concepts,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
