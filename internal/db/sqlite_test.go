package db

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndListRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tabID := int64(42)
	rec := &Record{
		URL:         "https://example.com/article",
		TabID:       &tabID,
		VisitedAt:   "2026-08-30T10:00:00Z",
		Source:      "extension",
		Kind:        "webpage",
		Success:     true,
		Title:       "An Article",
		TextPreview: "preview",
		FullText:    "preview and more",
		Language:    "en",
		KeyPoints:   []string{"first point", "second point"},
		Concepts:    []string{"testing", "sqlite"},
		Summary:     "A short summary.",
	}

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	if rec.ID == 0 {
		t.Error("append should set the record id")
	}

	records, err := store.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.URL != rec.URL || got.Title != rec.Title || got.Summary != rec.Summary {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.TabID == nil || *got.TabID != 42 {
		t.Errorf("tab_id lost: %+v", got.TabID)
	}
	if !reflect.DeepEqual(got.KeyPoints, rec.KeyPoints) {
		t.Errorf("key points lost: %v", got.KeyPoints)
	}
	if !reflect.DeepEqual(got.Concepts, rec.Concepts) {
		t.Errorf("concepts lost: %v", got.Concepts)
	}
}

func TestListRecent_NewestFirstWithLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		rec := &Record{
			URL:       fmt.Sprintf("https://example.com/%d", i),
			VisitedAt: "2026-08-30T10:00:00Z",
			Kind:      "webpage",
			Source:    "extension",
		}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	records, err := store.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, wantURL := range []string{"https://example.com/5", "https://example.com/4", "https://example.com/3"} {
		if records[i].URL != wantURL {
			t.Errorf("records[%d].URL = %q, want %q", i, records[i].URL, wantURL)
		}
	}
}

func TestAppend_NilTabIDAndEmptyLists(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := &Record{
		URL:       "https://example.com",
		VisitedAt: "2026-08-30T10:00:00Z",
		Kind:      "youtube",
		Source:    "cli",
		Error:     "Invalid YouTube URL format",
	}
	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	records, err := store.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := records[0]
	if got.TabID != nil {
		t.Errorf("expected nil tab_id, got %v", *got.TabID)
	}
	if got.KeyPoints != nil || got.Concepts != nil {
		t.Errorf("expected nil lists, got %v / %v", got.KeyPoints, got.Concepts)
	}
	if got.Error != rec.Error {
		t.Errorf("error lost: %q", got.Error)
	}
}

func TestCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := &Record{URL: "https://example.com", VisitedAt: "2026-08-30T10:00:00Z", Kind: "webpage", Source: "extension"}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}
}

func TestMarshalList_RoundTrip(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, nil},
		{[]string{}, nil},
		{[]string{"a", "b"}, []string{"a", "b"}},
	}

	for _, tt := range tests {
		got := unmarshalList(marshalList(tt.in))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("round-trip of %v = %v, want %v", tt.in, got, tt.want)
		}
	}
}
